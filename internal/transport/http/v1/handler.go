// Package v1 provides the public chat and session HTTP handlers.
package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// ChatService is the orchestrator surface the handlers call.
type ChatService interface {
	HandleTurn(ctx context.Context, sessionID, message string) (*domain.TurnReply, error)
	StartSession(ctx context.Context, ownerID string) (*domain.Session, error)
	StartAnonymousSession(ctx context.Context) (*domain.Session, error)
	EndSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSessionHistory(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error)
	GetOwnerHistory(ctx context.Context, ownerID string, limit int) ([]domain.Turn, error)
}

// Handler handles HTTP requests.
type Handler struct {
	service ChatService
	log     *logger.Logger
}

// NewHandler creates a new handler.
func NewHandler(service ChatService, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		service: service,
		log:     log.Component("http"),
	}
}

// RegisterRoutes registers the public routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Chat
	api.POST("/chat/message", h.SendMessage)
	api.GET("/chat/ws", h.ChatWebSocket)

	// Session lifecycle
	api.POST("/session/start", h.StartSession)
	api.POST("/session/start-anonymous", h.StartAnonymousSession)
	api.POST("/session/end", h.EndSession)
	api.GET("/sessions/:session_id", h.GetSession)

	// History
	api.GET("/sessions/:session_id/history", h.GetSessionHistory)
	api.GET("/admins/:admin_id/history", h.GetOwnerHistory)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionNotActive):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (h *Handler) fail(c echo.Context, err error) error {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
