package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookfinder/internal/bookdetail"
	"github.com/mrlokans/bookfinder/internal/booklist"
	"github.com/mrlokans/bookfinder/internal/books"
	"github.com/mrlokans/bookfinder/internal/covers"
	"github.com/mrlokans/bookfinder/internal/database"
	"github.com/mrlokans/bookfinder/internal/database/favorites"
	"github.com/mrlokans/bookfinder/internal/database/refresh"
	"github.com/mrlokans/bookfinder/internal/http"
	"github.com/mrlokans/bookfinder/internal/openlibrary"
	"github.com/mrlokans/bookfinder/internal/scheduler"
	"github.com/mrlokans/bookfinder/internal/sessions"
	"github.com/mrlokans/bookfinder/internal/tasks"
	"github.com/mrlokans/bookfinder/internal/websession"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// FavoriteStore implementations
var _ books.FavoriteStore = (*favorites.Repository)(nil)

// Refresh progress implementations
var _ tasks.ProgressReporter = (*refresh.Repository)(nil)
var _ http.RefreshProgressReader = (*refresh.Repository)(nil)

// Health check
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// External Services
// =============================================================================

// RemoteSource implementations
var _ books.RemoteSource = (*openlibrary.Client)(nil)

// =============================================================================
// Book Repository
// =============================================================================

var _ booklist.Books = (*books.Repository)(nil)
var _ bookdetail.Books = (*books.Repository)(nil)
var _ http.BookSearcher = (*books.Repository)(nil)
var _ http.FavoritesStore = (*books.Repository)(nil)
var _ http.FavoriteGetter = (*books.Repository)(nil)
var _ tasks.DescriptionRefresher = (*books.Repository)(nil)
var _ tasks.MissingDescriptions = (*books.Repository)(nil)
var _ tasks.FavoriteReader = (*books.Repository)(nil)

// =============================================================================
// Screen Sessions
// =============================================================================

var _ sessions.Session = (*booklist.Model)(nil)
var _ sessions.Session = (*bookdetail.Model)(nil)
var _ http.SearchSessionIDStore = (*websession.Manager)(nil)

// =============================================================================
// Background Work
// =============================================================================

// FavoriteHook implementations
var _ books.FavoriteHook = (*tasks.FavoriteHook)(nil)

// Cover cache
var _ tasks.CoverFetcher = (*covers.Cache)(nil)
var _ tasks.CoverInvalidator = (*covers.Cache)(nil)
var _ http.CoverSource = (*covers.Cache)(nil)

// Task queue and scheduler
var _ scheduler.RefreshEnqueuer = (*tasks.Client)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.RefreshScheduleReader = (*scheduler.RefreshScheduler)(nil)
