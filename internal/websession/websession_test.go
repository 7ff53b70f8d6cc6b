package websession

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookfinder/internal/config"
)

var testSecret = []byte("test-secret-key-32-bytes-long!!!")

func init() {
	gin.SetMode(gin.TestMode)
}

func setupManager(t *testing.T) *Manager {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sessions.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	m, err := NewManager(sqlDB, config.Sessions{CookieLifetime: time.Hour})
	require.NoError(t, err)
	return m
}

func TestNewManager(t *testing.T) {
	m := setupManager(t)

	assert.Equal(t, "session", m.Cookie.Name)
	assert.True(t, m.Cookie.HttpOnly)
	assert.False(t, m.Cookie.Secure)
	assert.Equal(t, time.Hour, m.Lifetime)
	assert.Equal(t, 30*time.Minute, m.IdleTimeout)
}

func TestManager_SearchSessionIDRoundTrip(t *testing.T) {
	m := setupManager(t)

	router := gin.New()
	router.Use(m.LoadAndSave())
	router.POST("/remember/:id", func(c *gin.Context) {
		m.SetSearchSessionID(c.Request, c.Param("id"))
		c.Status(http.StatusNoContent)
	})
	router.GET("/current", func(c *gin.Context) {
		c.String(http.StatusOK, m.SearchSessionID(c.Request))
	})
	router.DELETE("/remember/:id", func(c *gin.Context) {
		m.ForgetSearchSessionID(c.Request, c.Param("id"))
		c.Status(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/remember/abc", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)

	get := func() string {
		req := httptest.NewRequest(http.MethodGet, "/current", nil)
		req.AddCookie(cookies[0])
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Body.String()
	}
	assert.Equal(t, "abc", get())

	// forgetting another id keeps the current one
	req := httptest.NewRequest(http.MethodDelete, "/remember/other", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", get())

	req = httptest.NewRequest(http.MethodDelete, "/remember/abc", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "", get())
}

func TestLoadAndSave_NoCookieWhenUntouched(t *testing.T) {
	m := setupManager(t)

	router := gin.New()
	router.Use(m.LoadAndSave())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

func TestCSRFMiddleware_SkipsRequestsWithoutSessionCookie(t *testing.T) {
	router := gin.New()
	router.Use(CSRFMiddleware(testSecret, false, "session"))
	router.POST("/api/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/test", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCSRFMiddleware_BlocksCookiePOSTWithoutToken(t *testing.T) {
	router := gin.New()
	router.Use(CSRFMiddleware(testSecret, false, "session"))
	router.POST("/api/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "token"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "CSRF token invalid or missing")
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestCSRFMiddleware_TokenRoundTrip(t *testing.T) {
	router := gin.New()
	router.Use(CSRFMiddleware(testSecret, false, "session"))
	router.GET("/api/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/api/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	sessionCookie := &http.Cookie{Name: "session", Value: "token"}

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.AddCookie(sessionCookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	token := rr.Body.String()
	require.NotEmpty(t, token)
	assert.Equal(t, token, rr.Header().Get(CSRFTokenHeader))

	req = httptest.NewRequest(http.MethodPost, "/api/test", nil)
	req.AddCookie(sessionCookie)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set(CSRFTokenHeader, token)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCSRFSecret(t *testing.T) {
	secret, generated, err := CSRFSecret("")
	require.NoError(t, err)
	assert.True(t, generated)
	assert.Len(t, secret, 32)

	other, _, err := CSRFSecret("")
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)

	hexKey := strings.Repeat("ab", 32)
	secret, generated, err = CSRFSecret(hexKey)
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, bytes.Repeat([]byte{0xab}, 32), secret)

	secret, generated, err = CSRFSecret("not-hex-but-long-enough-secret!!")
	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, []byte("not-hex-but-long-enough-secret!!"), secret)
}

func TestGetCSRFToken_NoToken(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "", GetCSRFToken(c))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.NotEmpty(t, rr.Header().Get("Permissions-Policy"))
}

func TestStrictTransportSecurityMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(StrictTransportSecurityMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Contains(t, rr.Header().Get("Strict-Transport-Security"), "max-age=31536000")
}
