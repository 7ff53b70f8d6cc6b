package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookfinder/internal/websession"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(websession.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(websession.StrictTransportSecurityMiddleware())
	}

	if cfg.SessionManager != nil {
		// CSRF must run before session so that session context is preserved
		if len(cfg.CSRFSecret) > 0 {
			router.Use(websession.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.SessionManager.Cookie.Name))
		}
		// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
		router.Use(cfg.SessionManager.LoadAndSave())
	}

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", ping)

	api := router.Group("/api")

	// Books API endpoints
	booksController := NewBooksController(cfg.Books, cfg.DefaultResultLimit, cfg.MaxResultLimit)
	api.GET("/books/search", booksController.Search)
	api.GET("/books/:id/description", booksController.Description)

	// Favorites endpoints
	favoritesController := NewFavoritesController(cfg.Books)
	api.GET("/favorites", favoritesController.ListFavorites)
	api.GET("/favorites/:id", favoritesController.GetFavorite)
	api.PUT("/favorites/:id", favoritesController.PutFavorite)
	api.DELETE("/favorites/:id", favoritesController.DeleteFavorite)
	api.GET("/favorites/:id/status", favoritesController.GetStatus)

	// Favorite cover endpoint
	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.CoverCache, cfg.Books)
		api.GET("/favorites/:id/cover", coversController.GetCover)
	}

	// Search screen sessions
	if cfg.SearchSessions != nil {
		var cookies SearchSessionIDStore
		if cfg.SessionManager != nil {
			cookies = cfg.SessionManager
		}
		search := NewSearchSessionsController(cfg.SearchSessions, cfg.Books, cfg.SearchConfig, cookies)
		api.POST("/sessions/search", search.Create)
		api.GET("/sessions/search/current", search.Current)
		api.GET("/sessions/search/:id", search.Get)
		api.POST("/sessions/search/:id/intents", search.Intent)
		api.GET("/sessions/search/:id/events", search.Events)
		api.DELETE("/sessions/search/:id", search.Delete)
	}

	// Detail screen sessions
	if cfg.DetailSessions != nil {
		detail := NewDetailSessionsController(cfg.DetailSessions, cfg.Books)
		api.POST("/sessions/detail", detail.Create)
		api.GET("/sessions/detail/:id", detail.Get)
		api.POST("/sessions/detail/:id/actions", detail.Action)
		api.GET("/sessions/detail/:id/events", detail.Events)
		api.DELETE("/sessions/detail/:id", detail.Delete)
	}

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.RefreshProgress, cfg.RefreshSchedule)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/refresh-favorites", tasksController.RefreshFavorites)
		api.GET("/tasks/refresh-favorites/status", tasksController.RefreshStatus)
	}

	return router
}
