package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// StartSession creates a session for the optional admin_id in the body.
// POST /api/session/start
func (h *Handler) StartSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.StartSessionRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		}
	}

	session, err := h.service.StartSession(ctx, req.AdminID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

// StartAnonymousSession creates a session without an owner.
// POST /api/session/start-anonymous
func (h *Handler) StartAnonymousSession(c echo.Context) error {
	session, err := h.service.StartAnonymousSession(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

// EndSession ends an active session.
// POST /api/session/end
func (h *Handler) EndSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.EndSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id is required"})
	}

	session, err := h.service.EndSession(ctx, req.SessionID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

// GetSession returns one session.
// GET /api/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	session, err := h.service.GetSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, sessionResponse(session))
}

// GetSessionHistory returns a session's turns, oldest first.
// GET /api/sessions/:session_id/history
func (h *Handler) GetSessionHistory(c echo.Context) error {
	sessionID := c.Param("session_id")
	turns, err := h.service.GetSessionHistory(c.Request().Context(), sessionID, queryLimit(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"turns":      turns,
	})
}

// GetOwnerHistory returns an admin's latest turns, newest first.
// GET /api/admins/:admin_id/history
func (h *Handler) GetOwnerHistory(c echo.Context) error {
	adminID := c.Param("admin_id")
	turns, err := h.service.GetOwnerHistory(c.Request().Context(), adminID, queryLimit(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"admin_id": adminID,
		"turns":    turns,
	})
}

func queryLimit(c echo.Context) int {
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			return val
		}
	}
	return 0
}

func sessionResponse(s *domain.Session) domain.SessionResponse {
	resp := domain.SessionResponse{
		SessionID: s.SessionID,
		Status:    string(s.Status),
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	if s.EndedAt != nil {
		resp.EndedAt = s.EndedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
