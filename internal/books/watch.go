package books

import (
	"context"
	"log"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// WatchFavorites emits the favorites list now and again after every change to
// the store. The channel is closed when ctx is done. Read failures are logged
// and skipped.
func (r *Repository) WatchFavorites(ctx context.Context) <-chan []entities.Book {
	out := make(chan []entities.Book)
	changes, unsubscribe := r.store.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			books, err := r.FavoriteBooks()
			if err != nil {
				log.Printf("[FAVORITES] Failed to load favorites: %v", err)
			} else {
				select {
				case out <- books:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-changes:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// WatchIsFavorite emits whether the book is a favorite now and again each
// time that changes. The channel is closed when ctx is done.
func (r *Repository) WatchIsFavorite(ctx context.Context, id string) <-chan bool {
	out := make(chan bool)
	changes, unsubscribe := r.store.Subscribe()

	go func() {
		defer close(out)
		defer unsubscribe()

		var last *bool
		for {
			isFavorite, err := r.IsBookFavorite(id)
			if err != nil {
				log.Printf("[FAVORITES] Failed to check favorite %s: %v", id, err)
			} else if last == nil || *last != isFavorite {
				select {
				case out <- isFavorite:
					last = &isFavorite
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-changes:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
