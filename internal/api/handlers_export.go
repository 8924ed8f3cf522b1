// handlers_export.go - Dataset download handlers
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bookstore-insights/backend/internal/export"
	"github.com/bookstore-insights/backend/internal/session"
	"github.com/labstack/echo/v4"
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	sessionMgr SessionManager
}

// NewExportHandler creates a new export handler instance
func NewExportHandler(sessionMgr SessionManager) ExportHandler {
	return &ExportHandlerImpl{sessionMgr: sessionMgr}
}

// HandleExport downloads a session dataset. Query parameters: format
// (csv, xlsx, arrow, parquet) and dataset (primary or upload).
func (h *ExportHandlerImpl) HandleExport(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return NewBadRequestError(err.Error(), nil)
	}
	which, err := session.ParseWhich(c.QueryParam("dataset"))
	if err != nil {
		return FromError(err)
	}

	d, err := h.sessionMgr.Dataset(c.Request().Context(), id, which)
	if err != nil {
		return FromError(err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, d, format); err != nil {
		return NewInternalError("failed to export dataset", err)
	}

	name := h.exportName(id, which) + format.Extension()
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	fmt.Printf("[Export %s] %s dataset as %s (%d rows, %d bytes)\n", shortID(id), which, format, d.Count(), buf.Len())
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

// exportName is "books" for the primary dataset and the upload's base name otherwise
func (h *ExportHandlerImpl) exportName(id string, which session.Which) string {
	if which != session.DatasetUpload {
		return "books"
	}
	info, err := h.sessionMgr.GetSession(id)
	if err != nil || info.Upload == nil {
		return "upload"
	}
	name := strings.TrimSuffix(info.Upload.Name, ".gz")
	return strings.TrimSuffix(name, filepath.Ext(name))
}
