// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── favorites/       # Favorite books kept offline, change notification
//	└── refresh/         # Progress of bulk favorite refreshes
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./bookfinder.db")
//
//	favRepo := favorites.NewRepository(db.DB)
//	progressRepo := refresh.NewRepository(db.DB, entities.RefreshTypeDescriptions)
//
//	favs, err := favRepo.List()
//
// # Interface Implementations
//
//   - favorites.Repository: implements books.FavoriteStore
//   - refresh.Repository: implements tasks.ProgressReporter
package database
