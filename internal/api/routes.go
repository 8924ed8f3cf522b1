// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/bookstore-insights/backend/internal/storage"
	"github.com/bookstore-insights/backend/internal/views"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	SessionMgr        SessionManager
	Router            *views.Router
	AllowedExtensions []string
	AllowFileDeletion bool
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Session SessionHandler
	View    ViewHandler
	Upload  UploadHandler
	Export  ExportHandler

	allowFileDeletion bool
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:            NewHealthHandler(deps.Version, deps.SessionMgr),
		Session:           NewSessionHandler(deps.SessionMgr),
		View:              NewViewHandler(deps.Store, deps.SessionMgr, deps.Router, deps.AllowedExtensions),
		Upload:            NewUploadHandler(deps.Store, deps.SessionMgr),
		Export:            NewExportHandler(deps.SessionMgr),
		allowFileDeletion: deps.AllowFileDeletion,
	}
}

// RegisterRoutes registers all API routes under /api
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Navigation
	apiGroup.GET("/views", handlers.View.HandleListViews)

	// Sessions
	apiGroup.POST("/sessions", handlers.Session.HandleCreateSession)
	apiGroup.GET("/sessions", handlers.Session.HandleListSessions)
	apiGroup.GET("/sessions/:sessionId", handlers.Session.HandleGetSession)
	apiGroup.DELETE("/sessions/:sessionId", handlers.Session.HandleDeleteSession)
	apiGroup.POST("/sessions/:sessionId/keepalive", handlers.Session.HandleSessionKeepAlive)
	apiGroup.POST("/sessions/:sessionId/reload", handlers.Session.HandleReloadSession)

	// Views
	apiGroup.GET("/sessions/:sessionId/views/:view", handlers.View.HandleGetView)
	apiGroup.POST("/sessions/:sessionId/views/upload", handlers.View.HandleUploadView)
	apiGroup.POST("/sessions/:sessionId/views/feedback", handlers.View.HandleFeedbackView)

	// Export
	apiGroup.GET("/sessions/:sessionId/export", handlers.Export.HandleExport)

	// Uploaded files
	apiGroup.GET("/uploads/recent", handlers.Upload.HandleGetRecentFiles)
	apiGroup.GET("/uploads/:id", handlers.Upload.HandleGetFile)
	if handlers.allowFileDeletion {
		apiGroup.DELETE("/uploads/:id", handlers.Upload.HandleDeleteFile)
	}
	apiGroup.POST("/sessions/:sessionId/uploads/:fileId/activate", handlers.Upload.HandleActivateFile)
}

// SetupMiddleware installs the structured error handler
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
