// Package scheduler runs periodic maintenance of the favorites.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RefreshEnqueuer queues a favorites refresh.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context) (string, error)
}

// Status describes the scheduler state.
type Status struct {
	Running     bool       `json:"running"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	LastTaskID  string     `json:"last_task_id,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

// RefreshScheduler enqueues a favorites refresh on a cron schedule.
type RefreshScheduler struct {
	enqueuer RefreshEnqueuer
	schedule string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
	lastTaskID string
	lastError  string
}

// NewRefreshScheduler creates a new scheduler instance.
func NewRefreshScheduler(enqueuer RefreshEnqueuer, schedule string) *RefreshScheduler {
	return &RefreshScheduler{
		enqueuer: enqueuer,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start validates the schedule and begins the scheduler. It stops when ctx
// is done.
func (s *RefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	if s.entryID == 0 {
		entryID, err := s.cron.AddFunc(s.schedule, s.runRefresh)
		if err != nil {
			return fmt.Errorf("failed to schedule refresh job: %w", err)
		}
		s.entryID = entryID
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("Refresh scheduler: started with schedule '%s' (%s). Next run: %v",
		s.schedule, CronDescription(s.schedule), nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	stopped := s.cron.Stop()
	s.mu.Unlock()

	// a running job takes the lock to record its result
	<-stopped.Done()
	if cancel != nil {
		cancel()
	}

	log.Printf("Refresh scheduler: stopped")
}

// RunNow enqueues a refresh immediately.
func (s *RefreshScheduler) RunNow(ctx context.Context) (string, error) {
	return s.enqueue(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status returns the scheduler state.
func (s *RefreshScheduler) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		Running:     s.isRunning,
		Schedule:    s.schedule,
		Description: CronDescription(s.schedule),
		LastTaskID:  s.lastTaskID,
		LastError:   s.lastError,
	}
	if s.isRunning {
		if entry := s.cron.Entry(s.entryID); entry.Valid() {
			next := entry.Next
			status.NextRun = &next
		}
	}
	return status
}

func (s *RefreshScheduler) runRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.enqueue(ctx); err != nil {
		log.Printf("Refresh scheduler: failed to enqueue refresh: %v", err)
	}
}

func (s *RefreshScheduler) enqueue(ctx context.Context) (string, error) {
	id, err := s.enqueuer.EnqueueRefresh(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastError = err.Error()
		return "", err
	}
	s.lastTaskID = id
	s.lastError = ""
	log.Printf("Refresh scheduler: enqueued refresh task %s", id)
	return id, nil
}
