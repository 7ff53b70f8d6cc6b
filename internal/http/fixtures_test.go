package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookfinder/internal/bookdetail"
	"github.com/mrlokans/bookfinder/internal/booklist"
	"github.com/mrlokans/bookfinder/internal/books"
	"github.com/mrlokans/bookfinder/internal/database"
	"github.com/mrlokans/bookfinder/internal/database/favorites"
	"github.com/mrlokans/bookfinder/internal/openlibrary"
	"github.com/mrlokans/bookfinder/internal/sessions"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRemote struct {
	mu       sync.Mutex
	docs     []openlibrary.SearchDoc
	numFound int
	works    map[string]*openlibrary.Work
	err      error
	lastReq  openlibrary.SearchRequest
}

func (f *fakeRemote) SearchBooks(_ context.Context, req openlibrary.SearchRequest) (*openlibrary.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &openlibrary.SearchResponse{NumFound: f.numFound, Docs: f.docs}, nil
}

func (f *fakeRemote) GetWork(_ context.Context, id string) (*openlibrary.Work, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if w, ok := f.works[id]; ok {
		return w, nil
	}
	return &openlibrary.Work{Key: "/works/" + id}, nil
}

func (f *fakeRemote) lastRequest() openlibrary.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq
}

type testEnv struct {
	db     *database.Database
	remote *fakeRemote
	books  *books.Repository
	search *sessions.Registry[*booklist.Model]
	detail *sessions.Registry[*bookdetail.Model]
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewDatabaseWithOptions(filepath.Join(t.TempDir(), "bookfinder.db"), database.Options{
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	remote := &fakeRemote{}
	env := &testEnv{
		db:     db,
		remote: remote,
		books:  books.NewRepository(remote, favorites.NewRepository(db.DB), 20),
		search: sessions.NewRegistry[*booklist.Model]("search", sessions.Config{}),
		detail: sessions.NewRegistry[*bookdetail.Model]("detail", sessions.Config{}),
	}
	t.Cleanup(env.search.Stop)
	t.Cleanup(env.detail.Stop)
	return env
}

func (e *testEnv) routerConfig() RouterConfig {
	return RouterConfig{
		Books:              e.books,
		Database:           e.db,
		DefaultResultLimit: 20,
		MaxResultLimit:     50,
		SearchSessions:     e.search,
		DetailSessions:     e.detail,
		SearchConfig: booklist.Config{
			Debounce:       10 * time.Millisecond,
			MinQueryLength: 2,
		},
		Version: "test",
	}
}

func (e *testEnv) router() *gin.Engine {
	return NewRouter(e.routerConfig())
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
