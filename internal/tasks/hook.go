package tasks

import (
	"context"
	"log"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// CoverInvalidator drops cached covers of a book.
type CoverInvalidator interface {
	InvalidateCover(bookID string) error
}

// FavoriteHook schedules background work when favorites change: a new
// favorite gets its description and cover fetched, a removed one loses its
// cached cover.
type FavoriteHook struct {
	client *Client
	covers CoverInvalidator
}

// NewFavoriteHook creates a hook. Either argument may be nil to disable that
// part.
func NewFavoriteHook(client *Client, covers CoverInvalidator) *FavoriteHook {
	return &FavoriteHook{client: client, covers: covers}
}

// FavoriteAdded enqueues the description fetch (when the book has none) and,
// when covers are cached, the cover download.
func (h *FavoriteHook) FavoriteAdded(ctx context.Context, book entities.Book) {
	if h.client == nil {
		return
	}

	if h.covers != nil && book.ImageURL != "" {
		op := h.client.Add(CacheCoverTask{BookID: book.ID}).Ctx(ctx)
		if _, err := op.Save(); err != nil {
			log.Printf("[TASK] Failed to enqueue cover for %s: %v", book.ID, err)
		}
	}

	if book.Description != nil && *book.Description != "" {
		return
	}
	op := h.client.Add(FetchDescriptionTask{BookID: book.ID}).Ctx(ctx)
	if _, err := op.Save(); err != nil {
		log.Printf("[TASK] Failed to enqueue description for %s: %v", book.ID, err)
	}
}

// FavoriteRemoved drops the cached cover of the book.
func (h *FavoriteHook) FavoriteRemoved(_ context.Context, id string) {
	if h.covers == nil {
		return
	}
	if err := h.covers.InvalidateCover(id); err != nil {
		log.Printf("[TASK] Failed to remove cover of %s: %v", id, err)
	}
}
