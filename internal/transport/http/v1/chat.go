package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// SendMessage runs one chat turn.
// POST /api/chat/message
func (h *Handler) SendMessage(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	reply, err := h.service.HandleTurn(ctx, req.SessionID, req.Message)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, domain.ChatResponse{
		Response:  reply.Reply,
		SessionID: reply.SessionID,
		Warning:   reply.Warning,
	})
}
