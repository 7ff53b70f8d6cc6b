// Package favorites provides database operations for the favorite books
// kept on this device.
//
// Write errors are classified with dataerror.FromStorage, so a full disk
// surfaces as dataerror.ErrDiskFull.
//
// # Usage
//
//	repo := favorites.NewRepository(db)
//	changes, unsubscribe := repo.Subscribe()
//	defer unsubscribe()
//	err := repo.Upsert(entities.FavoriteFromBook(book))
package favorites

import (
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookfinder/internal/dataerror"
	"github.com/mrlokans/bookfinder/internal/entities"
)

// Repository handles all favorites database operations.
type Repository struct {
	db *gorm.DB

	mu          sync.Mutex
	subscribers map[int]chan struct{}
	nextSubID   int
}

// NewRepository creates a new favorites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		subscribers: make(map[int]chan struct{}),
	}
}

// Upsert inserts a favorite or replaces the stored copy with the same ID.
// The original save time is kept so the list order does not change.
func (r *Repository) Upsert(fav entities.FavoriteBook) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "image_url", "languages", "authors",
			"first_publish_year", "ratings_average", "ratings_count",
			"num_pages_median", "num_editions", "updated_at",
		}),
	}).Create(&fav).Error
	if err != nil {
		return dataerror.FromStorage(err)
	}

	r.notify()
	return nil
}

// List returns all favorites in the order they were first saved.
func (r *Repository) List() ([]entities.FavoriteBook, error) {
	var favs []entities.FavoriteBook
	err := r.db.Order("created_at ASC, id ASC").Find(&favs).Error
	if err != nil {
		return nil, dataerror.FromStorage(err)
	}
	return favs, nil
}

// Get returns a favorite by ID, or nil when it is not stored.
func (r *Repository) Get(id string) (*entities.FavoriteBook, error) {
	var fav entities.FavoriteBook
	err := r.db.Where("id = ?", id).First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, dataerror.FromStorage(err)
	}
	return &fav, nil
}

// Exists reports whether a favorite with the ID is stored.
func (r *Repository) Exists(id string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.FavoriteBook{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, dataerror.FromStorage(err)
	}
	return count > 0, nil
}

// Delete removes a favorite. Deleting an unknown ID is not an error.
func (r *Repository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entities.FavoriteBook{})
	if result.Error != nil {
		return dataerror.FromStorage(result.Error)
	}
	if result.RowsAffected > 0 {
		r.notify()
	}
	return nil
}

// SetDescription stores a fetched description on an existing favorite.
func (r *Repository) SetDescription(id, description string) error {
	result := r.db.Model(&entities.FavoriteBook{}).
		Where("id = ?", id).
		Update("description", description)
	if result.Error != nil {
		return dataerror.FromStorage(result.Error)
	}
	if result.RowsAffected > 0 {
		r.notify()
	}
	return nil
}

// ListMissingDescription returns favorites that have no description yet.
func (r *Repository) ListMissingDescription() ([]entities.FavoriteBook, error) {
	var favs []entities.FavoriteBook
	err := r.db.Where("description IS NULL OR description = ''").
		Order("created_at ASC, id ASC").
		Find(&favs).Error
	if err != nil {
		return nil, dataerror.FromStorage(err)
	}
	return favs, nil
}

// Count returns the number of stored favorites.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.FavoriteBook{}).Count(&count).Error
	if err != nil {
		return 0, dataerror.FromStorage(err)
	}
	return count, nil
}

// Subscribe returns a channel that receives a signal after every write that
// changed the table. Signals coalesce: a slow reader sees one pending signal
// however many writes happened. Call the returned func to unsubscribe.
func (r *Repository) Subscribe() (<-chan struct{}, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSubID
	r.nextSubID++
	ch := make(chan struct{}, 1)
	r.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subscribers, id)
			r.mu.Unlock()
		})
	}
}

func (r *Repository) notify() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
