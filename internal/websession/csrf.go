package websession

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenHeader is the header name for the CSRF token in API requests.
const CSRFTokenHeader = "X-CSRF-Token"

const csrfTokenKey = "csrf_token"

// GenerateSessionSecret creates a random 32-byte secret, hex encoded.
func GenerateSessionSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRFSecret returns the key for CSRF tokens. A hex value is decoded and any
// other value is used as raw bytes. An empty value gets a random key, and
// generated is true.
func CSRFSecret(configured string) (secret []byte, generated bool, err error) {
	if configured != "" {
		secret, err = hex.DecodeString(configured)
		if err != nil {
			// Not hex, use as raw bytes
			secret = []byte(configured)
		}
		return secret, false, nil
	}

	encoded, err := GenerateSessionSecret()
	if err != nil {
		return nil, false, err
	}
	secret, _ = hex.DecodeString(encoded)
	return secret, true, nil
}

// CSRFMiddleware creates a Gin middleware for CSRF protection of cookie
// clients. Requests that carry no session cookie cannot ride on a browser
// session and are let through, so CLI and server-to-server clients need no
// token. Safe methods (GET, HEAD, OPTIONS, TRACE) are never checked.
func CSRFMiddleware(secret []byte, secure bool, cookieName string) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if _, err := c.Request.Cookie(cookieName); err != nil {
			c.Next()
			return
		}

		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Set(csrfTokenKey, csrf.Token(r))
			c.Header(CSRFTokenHeader, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		r := c.Request
		if r.TLS == nil && c.GetHeader("X-Forwarded-Proto") != "https" {
			r = csrf.PlaintextHTTPRequest(r)
		}
		handler.ServeHTTP(c.Writer, r)
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing","code":"csrf"}`))
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfTokenKey); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
