// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/models"
	"github.com/bookstore-insights/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionHandler handles dashboard session lifecycle
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleListSessions(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
	HandleReloadSession(c echo.Context) error
}

// ViewHandler renders navigation destinations
type ViewHandler interface {
	HandleListViews(c echo.Context) error
	HandleGetView(c echo.Context) error
	HandleUploadView(c echo.Context) error
	HandleFeedbackView(c echo.Context) error
}

// UploadHandler handles previously uploaded files
type UploadHandler interface {
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleActivateFile(c echo.Context) error
}

// ExportHandler streams a session dataset in a file format
type ExportHandler interface {
	HandleExport(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	CreateSession(ctx context.Context) (*models.SessionInfo, error)
	GetSession(id string) (*models.SessionInfo, error)
	ListSessions() []*models.SessionInfo
	TouchSession(id string) bool
	DeleteSession(id string) bool
	Dataset(ctx context.Context, id string, which session.Which) (*dataset.Dataset, error)
	Reload(ctx context.Context, id string) (*models.SessionInfo, error)
	AttachUpload(ctx context.Context, id string, info models.FileInfo, d *dataset.Dataset) (*models.FileInfo, error)
	ActivateUpload(ctx context.Context, id string, info models.FileInfo) (*models.FileInfo, error)
	DeleteParsedFile(fileID string) error
}

var _ SessionManager = (*session.Manager)(nil)
