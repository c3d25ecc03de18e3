package v1

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

func dialChat(t *testing.T, svc ChatService, query string) *websocket.Conn {
	t.Helper()

	e := echo.New()
	NewHandler(svc, nil).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chat/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestChatWebSocketKeepsSession(t *testing.T) {
	svc := &mockService{}
	svc.On("HandleTurn", mock.Anything, "", "hi").
		Return(&domain.TurnReply{Reply: "Hello!", SessionID: "s1"}, nil)
	svc.On("HandleTurn", mock.Anything, "s1", "show me all leads").
		Return(&domain.TurnReply{Reply: "12 leads", SessionID: "s1"}, nil)

	conn := dialChat(t, svc, "")

	require.NoError(t, conn.WriteJSON(Frame{Type: FrameMessage, Message: "hi"}))
	f := readFrame(t, conn)
	assert.Equal(t, FrameReply, f.Type)
	assert.Equal(t, "Hello!", f.Response)
	assert.Equal(t, "s1", f.SessionID)

	// Session carries over when the frame omits it.
	require.NoError(t, conn.WriteJSON(Frame{Message: "show me all leads"}))
	f = readFrame(t, conn)
	assert.Equal(t, "12 leads", f.Response)

	svc.AssertExpectations(t)
}

func TestChatWebSocketErrors(t *testing.T) {
	svc := &mockService{}
	svc.On("HandleTurn", mock.Anything, "s9", "").
		Return(nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput))

	conn := dialChat(t, svc, "?session_id=s9")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	f := readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, "invalid JSON message", f.Error)

	require.NoError(t, conn.WriteJSON(Frame{Type: "subscribe"}))
	f = readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Contains(t, f.Error, "unknown frame type")

	require.NoError(t, conn.WriteJSON(Frame{Type: FrameMessage}))
	f = readFrame(t, conn)
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, "s9", f.SessionID)
	assert.Contains(t, f.Error, "invalid input")
}
