// handlers_upload.go - Uploaded file handlers
package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/bookstore-insights/backend/internal/models"
	"github.com/bookstore-insights/backend/internal/parser"
	"github.com/bookstore-insights/backend/internal/session"
	"github.com/bookstore-insights/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// recentFilesLimit caps the recent uploads list
const recentFilesLimit = 20

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	store      storage.Store
	sessionMgr SessionManager
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(store storage.Store, sessionMgr SessionManager) UploadHandler {
	return &UploadHandlerImpl{
		store:      store,
		sessionMgr: sessionMgr,
	}
}

// HandleGetRecentFiles returns the most recently uploaded datasets
func (h *UploadHandlerImpl) HandleGetRecentFiles(c echo.Context) error {
	files, err := h.store.List(recentFilesLimit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return respond(c, http.StatusOK, files)
}

// HandleGetFile returns metadata for a single uploaded file
func (h *UploadHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return respond(c, http.StatusOK, info)
}

// HandleDeleteFile removes a file and its snapshot
func (h *UploadHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	// Clean up associated parsed data
	if h.sessionMgr != nil {
		if err := h.sessionMgr.DeleteParsedFile(id); err != nil {
			fmt.Printf("[Upload %s] Warning: %v\n", shortID(id), err)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleActivateFile makes a previous upload the session's uploaded dataset.
// The DuckDB snapshot is used when present; otherwise the stored file is
// parsed again and re-snapshotted.
func (h *UploadHandlerImpl) HandleActivateFile(c echo.Context) error {
	id := c.Param("sessionId")
	fileID := c.Param("fileId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	if fileID == "" {
		return NewValidationError("fileId")
	}

	info, err := h.store.Get(fileID)
	if err != nil {
		return NewNotFoundError("file", fileID)
	}

	ctx := c.Request().Context()
	activated, err := h.sessionMgr.ActivateUpload(ctx, id, *info)
	if errors.Is(err, session.ErrSnapshotNotFound) {
		activated, err = h.reparse(c, id, fileID)
	}
	if err != nil {
		return FromError(err)
	}

	if err := h.store.Update(activated); err != nil {
		fmt.Printf("[Upload %s] Warning: failed to update metadata: %v\n", shortID(fileID), err)
	}
	return respond(c, http.StatusOK, activated)
}

func (h *UploadHandlerImpl) reparse(c echo.Context, id, fileID string) (*models.FileInfo, error) {
	info, err := h.store.Get(fileID)
	if err != nil {
		return nil, err
	}
	path, err := h.store.GetFilePath(fileID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stored file: %w", err)
	}

	res, err := parser.ParseBytes(info.Name, data)
	if err != nil {
		return nil, NewBadRequestError(fmt.Sprintf("could not parse %s", info.Name), err)
	}
	attached, err := h.sessionMgr.AttachUpload(c.Request().Context(), id, *info, res.Dataset)
	if err != nil {
		return nil, err
	}
	attached.Errors = res.Errors
	return attached, nil
}
