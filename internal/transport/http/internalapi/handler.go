// Package internalapi provides operator-only HTTP handlers.
// These APIs are served on the internal port and never exposed publicly.
package internalapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// AuditService exposes the persisted audit trail and retrieval traces.
type AuditService interface {
	GetAuditTrail(ctx context.Context, sessionID string) ([]domain.AuditEntry, error)
	GetRetrievedContexts(ctx context.Context, sessionID string) ([]domain.RetrievedContext, error)
}

// Handler handles internal HTTP requests.
type Handler struct {
	service AuditService
}

// NewHandler creates a new internal API handler.
func NewHandler(service AuditService) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers internal routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/internal/sessions/:session_id/audit", h.GetAuditTrail)
	e.GET("/internal/sessions/:session_id/contexts", h.GetRetrievedContexts)
	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// GetAuditTrail returns the audit entries of a session.
// GET /internal/sessions/:session_id/audit
func (h *Handler) GetAuditTrail(c echo.Context) error {
	sessionID := c.Param("session_id")

	entries, err := h.service.GetAuditTrail(c.Request().Context(), sessionID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"entries":    entries,
	})
}

// GetRetrievedContexts returns the retrieval traces of a session.
// GET /internal/sessions/:session_id/contexts
func (h *Handler) GetRetrievedContexts(c echo.Context) error {
	sessionID := c.Param("session_id")

	contexts, err := h.service.GetRetrievedContexts(c.Request().Context(), sessionID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"contexts":   contexts,
	})
}

func errorJSON(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
