// handlers_session.go - Dashboard session handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionHandlerImpl implements the SessionHandler interface
type SessionHandlerImpl struct {
	sessionMgr SessionManager
}

// NewSessionHandler creates a new session handler instance
func NewSessionHandler(sessionMgr SessionManager) SessionHandler {
	return &SessionHandlerImpl{sessionMgr: sessionMgr}
}

// HandleCreateSession starts a session and loads the primary dataset. A load
// failure still yields a session; its info carries loadError.
func (h *SessionHandlerImpl) HandleCreateSession(c echo.Context) error {
	info, err := h.sessionMgr.CreateSession(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to create session", err)
	}
	return respond(c, http.StatusCreated, info)
}

// HandleListSessions returns every live session
func (h *SessionHandlerImpl) HandleListSessions(c echo.Context) error {
	return respond(c, http.StatusOK, h.sessionMgr.ListSessions())
}

// HandleGetSession returns the status of one session
func (h *SessionHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	info, err := h.sessionMgr.GetSession(id)
	if err != nil {
		return NewNotFoundError("session", id)
	}
	return respond(c, http.StatusOK, info)
}

// HandleDeleteSession drops a session and its cached datasets
func (h *SessionHandlerImpl) HandleDeleteSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if !h.sessionMgr.DeleteSession(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive marks a session as recently used
func (h *SessionHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if ok := h.sessionMgr.TouchSession(id); !ok {
		return NewNotFoundError("session", id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleReloadSession discards the cached primary dataset and fetches it again
func (h *SessionHandlerImpl) HandleReloadSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	info, err := h.sessionMgr.Reload(c.Request().Context(), id)
	if err != nil {
		return FromError(err)
	}
	return respond(c, http.StatusOK, info)
}
