package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookfinder/internal/entities"
)

// FavoritesStore defines the favorite operations used by the API.
type FavoritesStore interface {
	FavoriteBooks() ([]entities.Book, error)
	GetFavorite(id string) (*entities.Book, error)
	IsBookFavorite(id string) (bool, error)
	MarkAsFavorite(ctx context.Context, book entities.Book) error
	DeleteFromFavorites(ctx context.Context, id string) error
}

type FavoritesController struct {
	store FavoritesStore
}

func NewFavoritesController(store FavoritesStore) *FavoritesController {
	return &FavoritesController{store: store}
}

// ListFavorites returns all favorites in the order they were saved.
// GET /api/favorites
func (fc *FavoritesController) ListFavorites(c *gin.Context) {
	favorites, err := fc.store.FavoriteBooks()
	if err != nil {
		respondDataError(c, err, "list favorites")
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": favorites, "count": len(favorites)})
}

// GetFavorite returns one favorite.
// GET /api/favorites/:id
func (fc *FavoritesController) GetFavorite(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	book, err := fc.store.GetFavorite(id)
	if err != nil {
		respondDataError(c, err, "get favorite")
		return
	}
	if book == nil {
		respondNotFound(c, "favorite")
		return
	}

	c.JSON(http.StatusOK, book)
}

// PutFavorite stores the request body as a favorite. The id in the path
// replaces any id in the body.
// PUT /api/favorites/:id
func (fc *FavoritesController) PutFavorite(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book: "+err.Error())
		return
	}
	book.ID = id

	if err := fc.store.MarkAsFavorite(c.Request.Context(), book); err != nil {
		respondDataError(c, err, "add favorite")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "favorite added", "book": book})
}

// DeleteFavorite removes a book from favorites. Removing a book that is not
// a favorite succeeds.
// DELETE /api/favorites/:id
func (fc *FavoritesController) DeleteFavorite(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	if err := fc.store.DeleteFromFavorites(c.Request.Context(), id); err != nil {
		respondDataError(c, err, "remove favorite")
		return
	}

	respondSuccess(c, "favorite removed")
}

// GetStatus reports whether a book is a favorite.
// GET /api/favorites/:id/status
func (fc *FavoritesController) GetStatus(c *gin.Context) {
	id, ok := requireParam(c, "id")
	if !ok {
		return
	}

	isFavorite, err := fc.store.IsBookFavorite(id)
	if err != nil {
		respondDataError(c, err, "favorite status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "is_favorite": isFavorite})
}
