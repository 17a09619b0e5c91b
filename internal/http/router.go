package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/legalshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(RequestLogger(cfg.Logger))
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware(31536000))
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFKey) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFKey, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	health := NewHealthController(cfg.Database, cfg.Library, cfg.Version)

	// Health endpoints stay outside the identity middleware so probes need no header.
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	api := router.Group("/api")
	api.Use(auth.IdentityMiddleware(cfg.SessionManager, cfg.Logger))

	booksController := NewBooksController(cfg.Library)
	favouritesController := NewFavouritesController(cfg.Library, cfg.Library)
	progressController := NewProgressController(cfg.Library, cfg.Library)
	notesController := NewNotesController(cfg.Library)
	libraryController := NewLibraryController(cfg.Library, cfg.Inbox)

	// Books API endpoints
	api.GET("/books", booksController.GetBooks)
	api.GET("/books/search", booksController.SearchBooks)
	api.GET("/books/favorites", booksController.GetFavoriteBooks)
	api.GET("/books/areas", booksController.GetAreas)
	api.GET("/books/:id", booksController.GetBook)
	api.POST("/books/:id/favorite", favouritesController.ToggleFavorite)
	api.PUT("/books/:id/progress", progressController.UpdateProgress)

	// Notes
	api.GET("/books/:id/notes", notesController.GetBookNotes)
	api.POST("/books/:id/notes", notesController.AddNote)
	api.DELETE("/notes/:id", notesController.DeleteNote)

	api.POST("/library/refresh", libraryController.Refresh)
	api.GET("/notifications", libraryController.Notifications)
	api.GET("/session", libraryController.Session)

	assistantController := NewAssistantController(cfg.Assistant, cfg.Library)
	api.POST("/assistant", assistantController.Ask)

	// Task management endpoints
	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
