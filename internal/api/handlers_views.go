// handlers_views.go - View rendering handlers
package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/bookstore-insights/backend/internal/dataset"
	"github.com/bookstore-insights/backend/internal/models"
	"github.com/bookstore-insights/backend/internal/session"
	"github.com/bookstore-insights/backend/internal/storage"
	"github.com/bookstore-insights/backend/internal/views"
	"github.com/labstack/echo/v4"
)

// ViewHandlerImpl implements the ViewHandler interface
type ViewHandlerImpl struct {
	store       storage.Store
	sessionMgr  SessionManager
	router      *views.Router
	allowedExts []string
}

// NewViewHandler creates a new view handler instance. An empty allowedExts
// accepts any upload.
func NewViewHandler(store storage.Store, sessionMgr SessionManager, router *views.Router, allowedExts []string) ViewHandler {
	if router == nil {
		router = views.NewRouter(nil)
	}
	return &ViewHandlerImpl{
		store:       store,
		sessionMgr:  sessionMgr,
		router:      router,
		allowedExts: allowedExts,
	}
}

// uploadResponse is the Upload view payload plus the stored file record
type uploadResponse struct {
	Payload *views.Payload   `json:"payload" msgpack:"payload"`
	File    *models.FileInfo `json:"file,omitempty" msgpack:"file,omitempty"`
}

// feedbackRequest accepts both JSON and form submissions
type feedbackRequest struct {
	Name string `json:"name" form:"name"`
	Text string `json:"text" form:"text"`
}

// HandleListViews returns the navigation keys in menu order
func (h *ViewHandlerImpl) HandleListViews(c echo.Context) error {
	return respond(c, http.StatusOK, views.AllKeys())
}

// HandleGetView renders one view for a session. Query parameters: q (search
// term) and dataset (primary or upload).
func (h *ViewHandlerImpl) HandleGetView(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	key, err := views.ParseKey(c.Param("view"))
	if err != nil {
		return NewNotFoundError("view", c.Param("view"))
	}

	d, err := h.datasetFor(c, id, key)
	if err != nil {
		return err
	}

	p := h.router.Render(key, views.Request{Dataset: d, Query: c.QueryParam("q")})
	return respond(c, http.StatusOK, p)
}

// datasetFor gates every view on the primary dataset having loaded, then
// returns the dataset the view should read.
func (h *ViewHandlerImpl) datasetFor(c echo.Context, id string, key views.Key) (*dataset.Dataset, error) {
	which, err := session.ParseWhich(c.QueryParam("dataset"))
	if err != nil {
		return nil, FromError(err)
	}

	ctx := c.Request().Context()
	primary, err := h.sessionMgr.Dataset(ctx, id, session.DatasetPrimary)
	if err != nil {
		return nil, FromError(err)
	}
	if !key.UsesDataset() || which == session.DatasetPrimary {
		return primary, nil
	}

	up, err := h.sessionMgr.Dataset(ctx, id, which)
	if err != nil {
		return nil, FromError(err)
	}
	return up, nil
}

// HandleUploadView stores a multipart "file", parses it and makes it the
// session's uploaded dataset. Parse failures come back inside the payload.
func (h *ViewHandlerImpl) HandleUploadView(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	if _, err := h.datasetFor(c, id, views.Upload); err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}
	if !storage.IsAllowedExtension(file.Filename, h.allowedExts) {
		return NewUnsupportedMediaError(file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return NewBadRequestError("failed to read uploaded file", err)
	}

	info, err := h.store.Save(file.Filename, bytes.NewReader(data))
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	in := &views.UploadInput{Name: file.Filename, Data: data}
	in.Result, in.Err = views.ParseUpload(file.Filename, data)

	if in.Err != nil {
		info.Status = models.FileStatusError
		info.Errors = []models.ParseError{{Reason: in.Err.Error()}}
	} else {
		attached, err := h.sessionMgr.AttachUpload(c.Request().Context(), id, *info, in.Result.Dataset)
		if err != nil {
			return FromError(err)
		}
		info = attached
		info.Errors = in.Result.Errors
	}
	if err := h.store.Update(info); err != nil {
		fmt.Printf("[Upload %s] Warning: failed to update metadata: %v\n", shortID(info.ID), err)
	}

	p := h.router.Render(views.Upload, views.Request{Upload: in})
	return respond(c, http.StatusOK, uploadResponse{Payload: p, File: info})
}

// HandleFeedbackView validates a feedback submission. Feedback is acknowledged
// and logged, never stored.
func (h *ViewHandlerImpl) HandleFeedbackView(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}
	if _, err := h.datasetFor(c, id, views.Feedback); err != nil {
		return err
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid feedback body", err)
	}

	p := h.router.Render(views.Feedback, views.Request{
		Feedback: &views.FeedbackInput{Name: req.Name, Text: req.Text},
	})
	if len(p.Messages(views.LevelSuccess)) > 0 {
		fmt.Printf("[Feedback %s] Received %d characters from %q\n", shortID(id), len(req.Text), req.Name)
	}
	return respond(c, http.StatusOK, p)
}

// shortID safely truncates an ID for logging
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
