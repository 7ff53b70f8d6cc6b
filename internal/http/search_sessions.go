package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookfinder/internal/booklist"
	"github.com/mrlokans/bookfinder/internal/sessions"
)

// SessionResponse is a screen session id with its current state.
type SessionResponse[S any] struct {
	ID    string `json:"id"`
	State S      `json:"state"`
}

// SearchSessionIDStore remembers the search session of a browser.
type SearchSessionIDStore interface {
	SetSearchSessionID(r *http.Request, id string)
	SearchSessionID(r *http.Request) string
	ForgetSearchSessionID(r *http.Request, id string)
}

// SearchSessionsController drives search screen sessions.
type SearchSessionsController struct {
	registry *sessions.Registry[*booklist.Model]
	books    booklist.Books
	cfg      booklist.Config
	cookies  SearchSessionIDStore
}

// NewSearchSessionsController creates a new SearchSessionsController.
// cookies may be nil, in which case /current is never answered.
func NewSearchSessionsController(
	registry *sessions.Registry[*booklist.Model],
	books booklist.Books,
	cfg booklist.Config,
	cookies SearchSessionIDStore,
) *SearchSessionsController {
	return &SearchSessionsController{
		registry: registry,
		books:    books,
		cfg:      cfg,
		cookies:  cookies,
	}
}

// Create starts a new search screen session.
// POST /api/sessions/search
func (sc *SearchSessionsController) Create(c *gin.Context) {
	model := booklist.New(sc.books, sc.cfg)
	id := sc.registry.Add(model)

	if sc.cookies != nil {
		sc.cookies.SetSearchSessionID(c.Request, id)
	}

	respondCreated(c, SessionResponse[booklist.State]{ID: id, State: model.State()})
}

// Current returns the search session remembered for this browser.
// GET /api/sessions/search/current
func (sc *SearchSessionsController) Current(c *gin.Context) {
	if sc.cookies == nil {
		respondNotFound(c, "search session")
		return
	}

	id := sc.cookies.SearchSessionID(c.Request)
	model, ok := sc.registry.Get(id)
	if id == "" || !ok {
		respondNotFound(c, "search session")
		return
	}

	c.JSON(http.StatusOK, SessionResponse[booklist.State]{ID: id, State: model.State()})
}

// Get returns the state of a search session.
// GET /api/sessions/search/:id
func (sc *SearchSessionsController) Get(c *gin.Context) {
	id, model, ok := sc.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, SessionResponse[booklist.State]{ID: id, State: model.State()})
}

// Intent applies a user intent and returns the state right after it.
// Searches started by the intent finish later and show up on /events.
// POST /api/sessions/search/:id/intents
func (sc *SearchSessionsController) Intent(c *gin.Context) {
	id, model, ok := sc.lookup(c)
	if !ok {
		return
	}

	var req booklist.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid intent: "+err.Error())
		return
	}
	intent, err := req.Intent()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	model.Dispatch(intent)

	c.JSON(http.StatusAccepted, SessionResponse[booklist.State]{ID: id, State: model.State()})
}

// Events streams the session state as server-sent events.
// GET /api/sessions/search/:id/events
func (sc *SearchSessionsController) Events(c *gin.Context) {
	_, model, ok := sc.lookup(c)
	if !ok {
		return
	}

	states, unsubscribe := model.Subscribe()
	streamStates(c, states, unsubscribe)
}

// Delete closes a search session.
// DELETE /api/sessions/search/:id
func (sc *SearchSessionsController) Delete(c *gin.Context) {
	id := c.Param("id")
	if !sc.registry.Remove(id) {
		respondNotFound(c, "search session")
		return
	}

	if sc.cookies != nil {
		sc.cookies.ForgetSearchSessionID(c.Request, id)
	}
	respondSuccess(c, "search session closed")
}

func (sc *SearchSessionsController) lookup(c *gin.Context) (string, *booklist.Model, bool) {
	id := c.Param("id")
	model, ok := sc.registry.Get(id)
	if !ok {
		respondNotFound(c, "search session")
		return "", nil, false
	}
	return id, model, true
}
