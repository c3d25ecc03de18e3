package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	wsReadLimit  = 64 * 1024
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsWriteWait  = 10 * time.Second
)

// Frame types exchanged over the chat websocket.
const (
	FrameMessage = "message"
	FrameReply   = "reply"
	FrameError   = "error"
)

// Frame is one websocket chat frame in either direction.
type Frame struct {
	Type      string `json:"type"`
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Response  string `json:"response,omitempty"`
	Warning   string `json:"warning,omitempty"`
	Error     string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ChatWebSocket runs chat turns over a websocket. The session carries over
// between frames unless a frame names another one.
// GET /api/chat/ws
func (h *Handler) ChatWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	send := make(chan Frame, 8)
	done := make(chan struct{})
	go h.writePump(conn, send, done)

	h.readLoop(c.Request().Context(), conn, c.QueryParam("session_id"), send)
	close(send)
	<-done
	return nil
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sessionID string, send chan<- Frame) {
	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Warn().Err(err).Str("session_id", sessionID).Msg("websocket read failed")
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			send <- Frame{Type: FrameError, SessionID: sessionID, Error: "invalid JSON message"}
			continue
		}
		if frame.Type != "" && frame.Type != FrameMessage {
			send <- Frame{Type: FrameError, SessionID: sessionID, Error: "unknown frame type: " + frame.Type}
			continue
		}
		if frame.SessionID != "" {
			sessionID = frame.SessionID
		}

		reply, err := h.service.HandleTurn(ctx, sessionID, frame.Message)
		if err != nil {
			send <- Frame{Type: FrameError, SessionID: sessionID, Error: err.Error()}
		} else {
			sessionID = reply.SessionID
			send <- Frame{Type: FrameReply, SessionID: reply.SessionID, Response: reply.Reply, Warning: reply.Warning}
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	}
}

// writePump owns all writes to conn. On exit it closes conn and drains send
// so the read loop never blocks on a dead connection.
func (h *Handler) writePump(conn *websocket.Conn, send <-chan Frame, done chan<- struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
		for range send {
		}
		close(done)
	}()

	for {
		select {
		case frame, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				h.log.Warn().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
