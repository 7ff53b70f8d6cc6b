package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookfinder/internal/database/refresh"
	"github.com/mrlokans/bookfinder/internal/entities"
)

// MissingDescriptions lists favorites and refreshes their descriptions.
type MissingDescriptions interface {
	DescriptionRefresher
	FavoritesMissingDescription() ([]entities.Book, error)
}

// ProgressReporter records the progress of a refresh run.
type ProgressReporter interface {
	// Start claims the run; refresh.ErrAlreadyRunning means another run
	// holds it.
	Start(totalItems int) error
	Update(processed, succeeded, failed int, currentItem string) error
	Complete(succeeded bool, errorMsg string) error
	IsRunning() (bool, error)
}

// RefreshResult summarizes one refresh run.
type RefreshResult struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

// RefreshFavoritesTask back-fills descriptions of all favorites that have
// none. Favorites are processed one at a time so progress is reported as the
// run goes.
type RefreshFavoritesTask struct{}

// Config returns the queue configuration for bulk refresh tasks.
func (t RefreshFavoritesTask) Config() backlite.QueueConfig {
	policy := currentPolicy()
	return backlite.QueueConfig{
		Name:        "refresh_favorites",
		MaxAttempts: 1,
		Backoff:     policy.RetryDelay,
		Timeout:     60 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   policy.RetentionDuration,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RefreshFavorites runs one refresh pass. A run already in progress makes it
// return without doing anything.
func RefreshFavorites(ctx context.Context, books MissingDescriptions, progress ProgressReporter) (*RefreshResult, error) {
	running, err := progress.IsRunning()
	if err != nil {
		return nil, fmt.Errorf("check refresh status: %w", err)
	}
	if running {
		log.Println("[TASK] Favorites refresh already running, skipping")
		return &RefreshResult{}, nil
	}

	favs, err := books.FavoritesMissingDescription()
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	err = progress.Start(len(favs))
	if errors.Is(err, refresh.ErrAlreadyRunning) {
		log.Println("[TASK] Favorites refresh already running, skipping")
		return &RefreshResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("start progress: %w", err)
	}
	result := &RefreshResult{Total: len(favs)}

	for i, book := range favs {
		if err := ctx.Err(); err != nil {
			_ = progress.Complete(false, "refresh cancelled")
			return result, err
		}

		_ = progress.Update(i, result.Succeeded, result.Failed, book.Title)

		stored, err := books.RefreshDescription(ctx, book.ID)
		switch {
		case errors.Is(err, context.Canceled):
			_ = progress.Complete(false, "refresh cancelled")
			return result, err
		case err != nil:
			log.Printf("[TASK] Failed to refresh %s: %v", book.ID, err)
			result.Failed++
		case stored:
			result.Succeeded++
		default:
			result.Skipped++
		}
	}

	_ = progress.Update(len(favs), result.Succeeded, result.Failed, "")
	if err := progress.Complete(true, ""); err != nil {
		return result, fmt.Errorf("complete progress: %w", err)
	}
	return result, nil
}

// RefreshFavoritesProcessor creates a processor function for
// RefreshFavoritesTask.
func RefreshFavoritesProcessor(books MissingDescriptions, progress ProgressReporter) backlite.QueueProcessor[RefreshFavoritesTask] {
	return func(ctx context.Context, task RefreshFavoritesTask) error {
		if books == nil || progress == nil {
			return fmt.Errorf("refresh not configured")
		}

		result, err := RefreshFavorites(ctx, books, progress)
		if err != nil {
			return fmt.Errorf("refresh favorites: %w", err)
		}

		log.Printf("[TASK] Favorites refresh complete: %d total, %d stored, %d skipped, %d failed",
			result.Total, result.Succeeded, result.Skipped, result.Failed)
		return nil
	}
}

// NewRefreshFavoritesQueue creates a backlite queue for bulk refreshes.
func NewRefreshFavoritesQueue(books MissingDescriptions, progress ProgressReporter) backlite.Queue {
	return backlite.NewQueue(RefreshFavoritesProcessor(books, progress))
}
