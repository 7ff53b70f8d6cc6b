package http

import (
	"github.com/mrlokans/bookfinder/internal/bookdetail"
	"github.com/mrlokans/bookfinder/internal/booklist"
	"github.com/mrlokans/bookfinder/internal/books"
	"github.com/mrlokans/bookfinder/internal/sessions"
	"github.com/mrlokans/bookfinder/internal/websession"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Books    *books.Repository
	Database Pinger

	// Search paging
	DefaultResultLimit int
	MaxResultLimit     int

	// Screen sessions
	SearchSessions *sessions.Registry[*booklist.Model]
	DetailSessions *sessions.Registry[*bookdetail.Model]
	SearchConfig   booklist.Config

	// Cookie sessions and CSRF protection (optional)
	SessionManager *websession.Manager
	CSRFSecret     []byte
	SecureCookies  bool

	// Cover caching (optional)
	CoverCache CoverSource

	// Task queue client (optional)
	TaskQueue       TaskQueue
	RefreshProgress RefreshProgressReader
	RefreshSchedule RefreshScheduleReader

	// Application info
	Version string
}
