package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookfinder/internal/bookdetail"
	"github.com/mrlokans/bookfinder/internal/entities"
	"github.com/mrlokans/bookfinder/internal/sessions"
)

// DetailSessionsController drives book detail screen sessions.
type DetailSessionsController struct {
	registry *sessions.Registry[*bookdetail.Model]
	books    bookdetail.Books
}

// NewDetailSessionsController creates a new DetailSessionsController.
func NewDetailSessionsController(registry *sessions.Registry[*bookdetail.Model], books bookdetail.Books) *DetailSessionsController {
	return &DetailSessionsController{
		registry: registry,
		books:    books,
	}
}

// Create opens a detail screen for the book in the request body.
// POST /api/sessions/detail
func (dc *DetailSessionsController) Create(c *gin.Context) {
	var book entities.Book
	if err := c.ShouldBindJSON(&book); err != nil {
		respondBadRequest(c, "invalid book: "+err.Error())
		return
	}
	if book.ID == "" {
		respondBadRequest(c, "book id is required")
		return
	}

	model := bookdetail.New(dc.books, book)
	id := dc.registry.Add(model)

	respondCreated(c, SessionResponse[bookdetail.State]{ID: id, State: model.State()})
}

// Get returns the state of a detail session.
// GET /api/sessions/detail/:id
func (dc *DetailSessionsController) Get(c *gin.Context) {
	id, model, ok := dc.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, SessionResponse[bookdetail.State]{ID: id, State: model.State()})
}

// Action applies a user action. Favorite toggles are finished when the
// response is written.
// POST /api/sessions/detail/:id/actions
func (dc *DetailSessionsController) Action(c *gin.Context) {
	id, model, ok := dc.lookup(c)
	if !ok {
		return
	}

	var req bookdetail.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid action: "+err.Error())
		return
	}
	action, err := req.Action()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	model.Dispatch(action)

	c.JSON(http.StatusOK, SessionResponse[bookdetail.State]{ID: id, State: model.State()})
}

// Events streams the session state as server-sent events.
// GET /api/sessions/detail/:id/events
func (dc *DetailSessionsController) Events(c *gin.Context) {
	_, model, ok := dc.lookup(c)
	if !ok {
		return
	}

	states, unsubscribe := model.Subscribe()
	streamStates(c, states, unsubscribe)
}

// Delete closes a detail session.
// DELETE /api/sessions/detail/:id
func (dc *DetailSessionsController) Delete(c *gin.Context) {
	if !dc.registry.Remove(c.Param("id")) {
		respondNotFound(c, "detail session")
		return
	}
	respondSuccess(c, "detail session closed")
}

func (dc *DetailSessionsController) lookup(c *gin.Context) (string, *bookdetail.Model, bool) {
	id := c.Param("id")
	model, ok := dc.registry.Get(id)
	if !ok {
		respondNotFound(c, "detail session")
		return "", nil, false
	}
	return id, model, true
}
