package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookfinder/internal/covers"
	"github.com/mrlokans/bookfinder/internal/entities"
)

// FavoriteReader looks up a stored favorite.
type FavoriteReader interface {
	GetFavorite(id string) (*entities.Book, error)
}

// CoverFetcher downloads a cover into the local cache.
type CoverFetcher interface {
	GetCover(ctx context.Context, bookID, coverURL string) (string, error)
}

// CacheCoverTask downloads the cover of a favorite into the cover cache.
type CacheCoverTask struct {
	BookID string `json:"book_id"`
}

// Config returns the queue configuration for cover caching tasks.
func (t CacheCoverTask) Config() backlite.QueueConfig {
	policy := currentPolicy()
	return backlite.QueueConfig{
		Name:        "cache_cover",
		MaxAttempts: policy.MaxRetries,
		Backoff:     policy.RetryDelay,
		Timeout:     policy.TaskTimeout,
		Retention: &backlite.Retention{
			Duration:   policy.RetentionDuration,
			OnlyFailed: true,
		},
	}
}

// CacheCoverProcessor creates a processor function for CacheCoverTask. Books
// that are no longer favorites or have no cover are skipped.
func CacheCoverProcessor(favorites FavoriteReader, cache CoverFetcher) backlite.QueueProcessor[CacheCoverTask] {
	return func(ctx context.Context, task CacheCoverTask) error {
		if favorites == nil || cache == nil {
			return fmt.Errorf("cover cache not configured")
		}

		book, err := favorites.GetFavorite(task.BookID)
		if err != nil {
			return fmt.Errorf("load favorite %s: %w", task.BookID, err)
		}
		if book == nil {
			log.Printf("[TASK] Skipping cover for %s: no longer a favorite", task.BookID)
			return nil
		}

		path, err := cache.GetCover(ctx, book.ID, book.ImageURL)
		if errors.Is(err, covers.ErrNoCover) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cache cover for %s: %w", task.BookID, err)
		}

		log.Printf("[TASK] Cached cover for %s at %s", task.BookID, path)
		return nil
	}
}

// NewCacheCoverQueue creates a backlite queue for cover caching.
func NewCacheCoverQueue(favorites FavoriteReader, cache CoverFetcher) backlite.Queue {
	return backlite.NewQueue(CacheCoverProcessor(favorites, cache))
}
