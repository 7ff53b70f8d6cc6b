package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookfinder/internal/covers"
	"github.com/mrlokans/bookfinder/internal/entities"
)

// CoverSource returns the local path of a cached cover image.
type CoverSource interface {
	GetCover(ctx context.Context, bookID, coverURL string) (string, error)
}

// FavoriteGetter provides read access to a single favorite.
type FavoriteGetter interface {
	GetFavorite(id string) (*entities.Book, error)
}

// CoversController serves favorite cover images.
type CoversController struct {
	cache     CoverSource
	favorites FavoriteGetter
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverSource, favorites FavoriteGetter) *CoversController {
	return &CoversController{
		cache:     cache,
		favorites: favorites,
	}
}

// GetCover serves a cached favorite cover image.
// GET /api/favorites/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id := c.Param("id")

	book, err := cc.favorites.GetFavorite(id)
	if err != nil {
		respondDataError(c, err, "get cover")
		return
	}
	if book == nil || book.ImageURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	// Get cached cover (will fetch if not cached)
	cachePath, err := cc.cache.GetCover(c.Request.Context(), id, book.ImageURL)
	if err != nil {
		if !errors.Is(err, covers.ErrNoCover) {
			log.Printf("Cover fetch failed for %s: %v", id, err)
		}
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, book.ImageURL)
		return
	}

	// Serve the cached file
	c.File(cachePath)
}
