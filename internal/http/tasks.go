package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookfinder/internal/entities"
	"github.com/mrlokans/bookfinder/internal/scheduler"
)

// TaskQueue is the part of the task client used by the API.
type TaskQueue interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
	EnqueueRefresh(ctx context.Context) (string, error)
}

// RefreshProgressReader reads the stored progress of the favorites refresh.
type RefreshProgressReader interface {
	Get() (*entities.RefreshProgress, error)
}

// RefreshScheduleReader reports the cron schedule of the favorites refresh.
type RefreshScheduleReader interface {
	Status() scheduler.Status
}

// TasksController handles task queue endpoints.
type TasksController struct {
	queue    TaskQueue
	progress RefreshProgressReader
	schedule RefreshScheduleReader
}

// NewTasksController creates a new TasksController. progress and schedule
// may be nil.
func NewTasksController(queue TaskQueue, progress RefreshProgressReader, schedule RefreshScheduleReader) *TasksController {
	return &TasksController{
		queue:    queue,
		progress: progress,
		schedule: schedule,
	}
}

// RefreshStatusResponse combines the last refresh run with the schedule.
type RefreshStatusResponse struct {
	Progress *entities.RefreshProgress `json:"progress"`
	Schedule *scheduler.Status         `json:"schedule,omitempty"`
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID, ok := requireParam(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// RefreshFavorites handles POST /api/tasks/refresh-favorites
// Queues a pass that fetches missing descriptions of all favorites.
func (tc *TasksController) RefreshFavorites(c *gin.Context) {
	id, err := tc.queue.EnqueueRefresh(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "enqueue refresh")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": id,
		"type":    "refresh_favorites",
		"message": "task enqueued",
	})
}

// RefreshStatus handles GET /api/tasks/refresh-favorites/status
func (tc *TasksController) RefreshStatus(c *gin.Context) {
	var resp RefreshStatusResponse

	if tc.progress != nil {
		progress, err := tc.progress.Get()
		if err != nil {
			respondInternalError(c, err, "refresh progress")
			return
		}
		resp.Progress = progress
	}
	if tc.schedule != nil {
		status := tc.schedule.Status()
		resp.Schedule = &status
	}

	c.JSON(http.StatusOK, resp)
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
