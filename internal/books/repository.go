// Package books combines the OpenLibrary source and the local favorites
// store behind the operations the search and detail screens use.
package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/bookfinder/internal/entities"
	"github.com/mrlokans/bookfinder/internal/openlibrary"
)

// RemoteSource provides book data from OpenLibrary.
type RemoteSource interface {
	SearchBooks(ctx context.Context, req openlibrary.SearchRequest) (*openlibrary.SearchResponse, error)
	GetWork(ctx context.Context, workID string) (*openlibrary.Work, error)
}

// FavoriteStore keeps favorite books on this device.
type FavoriteStore interface {
	Upsert(fav entities.FavoriteBook) error
	List() ([]entities.FavoriteBook, error)
	Get(id string) (*entities.FavoriteBook, error)
	Exists(id string) (bool, error)
	Delete(id string) error
	SetDescription(id, description string) error
	ListMissingDescription() ([]entities.FavoriteBook, error)
	Subscribe() (<-chan struct{}, func())
}

// FavoriteHook is told about favorite changes after they are stored, e.g. to
// schedule background work for the book.
type FavoriteHook interface {
	FavoriteAdded(ctx context.Context, book entities.Book)
	FavoriteRemoved(ctx context.Context, id string)
}

// Page is one page of search results.
type Page struct {
	Books    []entities.Book `json:"books"`
	NumFound int             `json:"num_found"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
	HasMore  bool            `json:"has_more"`
}

// Repository is the single access point for book data.
type Repository struct {
	remote      RemoteSource
	store       FavoriteStore
	hook        FavoriteHook
	resultLimit int
}

// NewRepository creates a book repository. resultLimit is the page size used
// by SearchBooks; 0 leaves the OpenLibrary default.
func NewRepository(remote RemoteSource, store FavoriteStore, resultLimit int) *Repository {
	return &Repository{
		remote:      remote,
		store:       store,
		resultLimit: resultLimit,
	}
}

// SetFavoriteHook registers the hook called after favorite changes.
func (r *Repository) SetFavoriteHook(hook FavoriteHook) {
	r.hook = hook
}

// SearchBooks returns the first page of results for query.
func (r *Repository) SearchBooks(ctx context.Context, query string) ([]entities.Book, error) {
	page, err := r.SearchPage(ctx, query, 1, r.resultLimit)
	if err != nil {
		return nil, err
	}
	return page.Books, nil
}

// SearchPage returns one page of results for query. page starts at 1.
func (r *Repository) SearchPage(ctx context.Context, query string, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	res, err := r.remote.SearchBooks(ctx, openlibrary.SearchRequest{
		Query: strings.TrimSpace(query),
		Limit: limit,
		Page:  page,
	})
	if err != nil {
		return nil, err
	}

	books := make([]entities.Book, 0, len(res.Docs))
	for _, doc := range res.Docs {
		books = append(books, doc.ToBook())
	}

	hasMore := false
	if limit > 0 {
		hasMore = page*limit < res.NumFound
	}

	return &Page{
		Books:    books,
		NumFound: res.NumFound,
		Page:     page,
		Limit:    limit,
		HasMore:  hasMore,
	}, nil
}

// GetBookDescription returns the description of a work. A favorite with a
// stored description is answered without a network call. A nil result means
// OpenLibrary has no description for the work.
func (r *Repository) GetBookDescription(ctx context.Context, id string) (*string, error) {
	fav, err := r.store.Get(id)
	if err != nil {
		return nil, err
	}
	if fav != nil && fav.Description != nil && *fav.Description != "" {
		return fav.Description, nil
	}

	work, err := r.remote.GetWork(ctx, id)
	if err != nil {
		return nil, err
	}
	return work.Description.Value, nil
}

// RefreshDescription fetches the description of a favorite from OpenLibrary
// and stores it. It reports whether a description was stored; a book that
// is no longer a favorite is skipped.
func (r *Repository) RefreshDescription(ctx context.Context, id string) (bool, error) {
	fav, err := r.store.Get(id)
	if err != nil {
		return false, err
	}
	if fav == nil {
		return false, nil
	}

	work, err := r.remote.GetWork(ctx, id)
	if err != nil {
		return false, err
	}
	if work.Description.Value == nil || *work.Description.Value == "" {
		return false, nil
	}

	if err := r.store.SetDescription(id, *work.Description.Value); err != nil {
		return false, err
	}
	return true, nil
}

// FavoriteBooks returns all favorites in the order they were saved.
func (r *Repository) FavoriteBooks() ([]entities.Book, error) {
	favs, err := r.store.List()
	if err != nil {
		return nil, err
	}

	books := make([]entities.Book, 0, len(favs))
	for _, fav := range favs {
		books = append(books, fav.ToBook())
	}
	return books, nil
}

// FavoritesMissingDescription returns favorites that have no stored
// description yet.
func (r *Repository) FavoritesMissingDescription() ([]entities.Book, error) {
	favs, err := r.store.ListMissingDescription()
	if err != nil {
		return nil, err
	}

	books := make([]entities.Book, 0, len(favs))
	for _, fav := range favs {
		books = append(books, fav.ToBook())
	}
	return books, nil
}

// GetFavorite returns a favorite, or nil when the book is not a favorite.
func (r *Repository) GetFavorite(id string) (*entities.Book, error) {
	fav, err := r.store.Get(id)
	if err != nil || fav == nil {
		return nil, err
	}
	book := fav.ToBook()
	return &book, nil
}

// IsBookFavorite reports whether the book is stored as a favorite.
func (r *Repository) IsBookFavorite(id string) (bool, error) {
	return r.store.Exists(id)
}

// MarkAsFavorite stores the book as a favorite, replacing a stored copy. A
// description already stored is kept when the book carries none.
func (r *Repository) MarkAsFavorite(ctx context.Context, book entities.Book) error {
	if book.ID == "" {
		return fmt.Errorf("book id is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if book.Description == nil || *book.Description == "" {
		existing, err := r.store.Get(book.ID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Description != nil {
			book.Description = existing.Description
		}
	}

	if err := r.store.Upsert(entities.FavoriteFromBook(book)); err != nil {
		return err
	}

	if r.hook != nil {
		r.hook.FavoriteAdded(ctx, book)
	}
	return nil
}

// DeleteFromFavorites removes the book from favorites. Removing a book that
// is not a favorite is not an error.
func (r *Repository) DeleteFromFavorites(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.store.Delete(id); err != nil {
		return err
	}

	if r.hook != nil {
		r.hook.FavoriteRemoved(ctx, id)
	}
	return nil
}
