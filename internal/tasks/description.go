package tasks

import (
	"context"
	"fmt"
	"log"

	"github.com/mikestefanello/backlite"
)

// DescriptionRefresher fetches and stores the description of a favorite.
type DescriptionRefresher interface {
	RefreshDescription(ctx context.Context, id string) (bool, error)
}

// FetchDescriptionTask stores the OpenLibrary description on a favorite, so
// the detail screen can show it offline.
type FetchDescriptionTask struct {
	BookID string `json:"book_id"`
}

// Config returns the queue configuration for description fetch tasks.
func (t FetchDescriptionTask) Config() backlite.QueueConfig {
	policy := currentPolicy()
	return backlite.QueueConfig{
		Name:        "fetch_description",
		MaxAttempts: policy.MaxRetries,
		Backoff:     policy.RetryDelay,
		Timeout:     policy.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   policy.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// FetchDescriptionProcessor creates a processor function for
// FetchDescriptionTask. Data errors are returned so backlite retries them.
func FetchDescriptionProcessor(refresher DescriptionRefresher) backlite.QueueProcessor[FetchDescriptionTask] {
	return func(ctx context.Context, task FetchDescriptionTask) error {
		if refresher == nil {
			return fmt.Errorf("description refresher not configured")
		}
		if task.BookID == "" {
			return fmt.Errorf("book id is required")
		}

		stored, err := refresher.RefreshDescription(ctx, task.BookID)
		if err != nil {
			return fmt.Errorf("fetch description for %s: %w", task.BookID, err)
		}

		if stored {
			log.Printf("[TASK] Stored description for %s", task.BookID)
		} else {
			log.Printf("[TASK] No description stored for %s", task.BookID)
		}
		return nil
	}
}

// NewFetchDescriptionQueue creates a backlite queue for description fetches.
func NewFetchDescriptionQueue(refresher DescriptionRefresher) backlite.Queue {
	return backlite.NewQueue(FetchDescriptionProcessor(refresher))
}
