// Package refresh provides database operations for tracking bulk favorite
// refreshes.
//
// # Usage
//
//	repo := refresh.NewRepository(db, entities.RefreshTypeDescriptions)
//	err := repo.Start(len(favorites))
//	if errors.Is(err, refresh.ErrAlreadyRunning) {
//		// another run holds the record
//	}
package refresh

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// staleAfter is how long a running refresh may go without an update before
// it is treated as interrupted.
const staleAfter = 10 * time.Minute

// Repository handles all refresh progress database operations.
type Repository struct {
	db          *gorm.DB
	refreshType entities.RefreshType
}

// NewRepository creates a progress repository for one refresh type.
func NewRepository(db *gorm.DB, refreshType entities.RefreshType) *Repository {
	return &Repository{db: db, refreshType: refreshType}
}

// Get retrieves the progress record, or nil if the refresh never ran.
func (r *Repository) Get() (*entities.RefreshProgress, error) {
	var progress entities.RefreshProgress
	err := r.db.Where("refresh_type = ?", r.refreshType).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// ErrAlreadyRunning is returned by Start while another run holds the record.
var ErrAlreadyRunning = errors.New("refresh already running")

// Start claims the progress record for a new run. The claim is a single
// statement, so of two concurrent callers only one succeeds and the other
// gets ErrAlreadyRunning. A running record that has not reported for
// staleAfter is taken over.
func (r *Repository) Start(totalItems int) error {
	now := time.Now()

	first := entities.RefreshProgress{
		RefreshType: r.refreshType,
		Status:      entities.RefreshStatusRunning,
		TotalItems:  totalItems,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	created := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "refresh_type"}},
		DoNothing: true,
	}).Create(&first)
	if created.Error != nil {
		return created.Error
	}
	if created.RowsAffected == 1 {
		return nil
	}

	claimed := r.db.Model(&entities.RefreshProgress{}).
		Where("refresh_type = ? AND (status <> ? OR updated_at < ?)",
			r.refreshType, entities.RefreshStatusRunning, now.Add(-staleAfter)).
		Updates(map[string]any{
			"status":       entities.RefreshStatusRunning,
			"total_items":  totalItems,
			"processed":    0,
			"succeeded":    0,
			"failed":       0,
			"current_item": "",
			"error":        "",
			"started_at":   now,
			"updated_at":   now,
			"completed_at": nil,
		})
	if claimed.Error != nil {
		return claimed.Error
	}
	if claimed.RowsAffected == 0 {
		return ErrAlreadyRunning
	}
	return nil
}

// Update records the counters of a running refresh.
func (r *Repository) Update(processed, succeeded, failed int, currentItem string) error {
	return r.db.Model(&entities.RefreshProgress{}).
		Where("refresh_type = ?", r.refreshType).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// Complete marks the refresh as completed or failed.
func (r *Repository) Complete(succeeded bool, errorMsg string) error {
	now := time.Now()
	status := entities.RefreshStatusCompleted
	if !succeeded {
		status = entities.RefreshStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.RefreshProgress{}).
		Where("refresh_type = ?", r.refreshType).
		Updates(updates).Error
}

// IsRunning checks if a refresh is in progress. A run that has not reported
// for a while is marked failed and reported as not running.
func (r *Repository) IsRunning() (bool, error) {
	var progress entities.RefreshProgress
	err := r.db.Where("refresh_type = ? AND status = ?", r.refreshType, entities.RefreshStatusRunning).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-staleAfter)) {
		_ = r.Complete(false, "refresh was interrupted")
		return false, nil
	}

	return true, nil
}
