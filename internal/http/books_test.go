package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookfinder/internal/books"
	"github.com/mrlokans/bookfinder/internal/dataerror"
	"github.com/mrlokans/bookfinder/internal/openlibrary"
)

func strPtr(s string) *string { return &s }

func TestBooksController_Search(t *testing.T) {
	t.Run("requires a query", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doRequest(t, env.router(), "GET", "/api/books/search?q=%20%20", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns a page of books", func(t *testing.T) {
		env := setupTestEnv(t)
		env.remote.numFound = 45
		env.remote.docs = []openlibrary.SearchDoc{
			{Key: "/works/OL1W", Title: "Dune", CoverID: 11},
			{Key: "/works/OL2W", Title: "Dune Messiah"},
		}

		w := doRequest(t, env.router(), "GET", "/api/books/search?q=dune&page=2", "")

		require.Equal(t, http.StatusOK, w.Code)
		page := decodeJSON[books.Page](t, w)
		require.Len(t, page.Books, 2)
		assert.Equal(t, "OL1W", page.Books[0].ID)
		assert.Equal(t, 45, page.NumFound)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 20, page.Limit)
		assert.True(t, page.HasMore)

		req := env.remote.lastRequest()
		assert.Equal(t, "dune", req.Query)
		assert.Equal(t, 2, req.Page)
	})

	t.Run("caps the limit", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doRequest(t, env.router(), "GET", "/api/books/search?q=dune&limit=500", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 50, env.remote.lastRequest().Limit)
	})

	t.Run("rejects a bad page", func(t *testing.T) {
		env := setupTestEnv(t)

		w := doRequest(t, env.router(), "GET", "/api/books/search?q=dune&page=first", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("relays remote data errors", func(t *testing.T) {
		env := setupTestEnv(t)
		env.remote.err = dataerror.ErrTooManyRequests

		w := doRequest(t, env.router(), "GET", "/api/books/search?q=dune", "")

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		resp := decodeJSON[ErrorResponse](t, w)
		assert.Equal(t, "too_many_requests", resp.Code)
		assert.Equal(t, "Your quota seems to be exceeded.", resp.Error)
	})
}

func TestBooksController_Description(t *testing.T) {
	env := setupTestEnv(t)
	env.remote.works = map[string]*openlibrary.Work{
		"OL1W": {Description: openlibrary.Description{Value: strPtr("Spice and sand")}},
	}
	router := env.router()

	w := doRequest(t, router, "GET", "/api/books/OL1W/description", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"OL1W","description":"Spice and sand"}`, w.Body.String())

	w = doRequest(t, router, "GET", "/api/books/OL2W/description", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"OL2W","description":null}`, w.Body.String())

	env.remote.err = dataerror.ErrNoInternet
	w = doRequest(t, router, "GET", "/api/books/OL1W/description", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
