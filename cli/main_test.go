package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/http/v1"
)

// echoChat answers every message frame with a reply in session "s-1", or an
// error frame when the message is "boom".
func echoChat(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			var in v1.Frame
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			out := v1.Frame{Type: v1.FrameReply, SessionID: "s-1", Response: "you said " + in.Message}
			if in.Message == "boom" {
				out = v1.Frame{Type: v1.FrameError, Error: "boom"}
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}
		}
	}))
}

func TestClientAsk(t *testing.T) {
	srv := echoChat(t)
	defer srv.Close()

	client, err := NewClient("ws"+strings.TrimPrefix(srv.URL, "http"), "")
	require.NoError(t, err)
	defer client.Close()

	frame, err := client.Ask("hello")
	require.NoError(t, err)
	assert.Equal(t, "you said hello", frame.Response)
	assert.Equal(t, "s-1", client.SessionID())

	_, err = client.Ask("boom")
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, "s-1", client.SessionID())
}

func TestNewClientRejectsBadAddr(t *testing.T) {
	_, err := NewClient("ws://127.0.0.1:1/none", "abc")
	assert.Error(t, err)
}
