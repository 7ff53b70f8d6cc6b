package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookfinder/internal/books"
)

// BookSearcher provides read access to OpenLibrary books.
type BookSearcher interface {
	SearchPage(ctx context.Context, query string, page, limit int) (*books.Page, error)
	GetBookDescription(ctx context.Context, id string) (*string, error)
}

type BooksController struct {
	books        BookSearcher
	defaultLimit int
	maxLimit     int
}

func NewBooksController(searcher BookSearcher, defaultLimit, maxLimit int) *BooksController {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &BooksController{
		books:        searcher,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Search handles GET /api/books/search?q=&page=&limit=
func (bc *BooksController) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	page, ok := parseIntQuery(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := parseIntQuery(c, "limit", bc.defaultLimit)
	if !ok {
		return
	}
	if limit > bc.maxLimit {
		limit = bc.maxLimit
	}

	result, err := bc.books.SearchPage(c.Request.Context(), query, page, limit)
	if err != nil {
		respondDataError(c, err, "search books")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Description handles GET /api/books/:id/description
func (bc *BooksController) Description(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	desc, err := bc.books.GetBookDescription(c.Request.Context(), id)
	if err != nil {
		respondDataError(c, err, "get description")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          id,
		"description": desc,
	})
}
