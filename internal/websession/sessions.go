// Package websession provides cookie sessions and browser-facing protection
// middleware for the HTTP API.
//
// A cookie session remembers which search screen session belongs to the
// browser, so a reload can resume it through /api/sessions/search/current.
package websession

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/bookfinder/internal/config"
)

// Session data keys
const (
	SessionKeySearchSessionID = "search_session_id"
)

// Manager wraps scs.SessionManager with application-specific methods.
type Manager struct {
	*scs.SessionManager
}

// NewManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewManager(sqlDB *sql.DB, cfg config.Sessions) (*Manager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	lifetime := cfg.CookieLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &Manager{SessionManager: sm}, nil
}

// SetSearchSessionID remembers the search screen session of this browser.
func (m *Manager) SetSearchSessionID(r *http.Request, id string) {
	m.Put(r.Context(), SessionKeySearchSessionID, id)
}

// SearchSessionID returns the remembered search screen session, or "".
func (m *Manager) SearchSessionID(r *http.Request) string {
	return m.GetString(r.Context(), SessionKeySearchSessionID)
}

// ForgetSearchSessionID drops the remembered search screen session if it is
// id.
func (m *Manager) ForgetSearchSessionID(r *http.Request, id string) {
	if m.SearchSessionID(r) == id {
		m.Remove(r.Context(), SessionKeySearchSessionID)
	}
}
