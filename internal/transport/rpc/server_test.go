package rpc

import (
	"context"
	"fmt"
	"net"
	"net/rpc/jsonrpc"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

type fakeChat struct{}

func (fakeChat) HandleTurn(ctx context.Context, sessionID, message string) (*domain.TurnReply, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if sessionID == "" {
		sessionID = "s-new"
	}
	return &domain.TurnReply{Reply: "echo: " + message, SessionID: sessionID, FinalState: domain.StateDone}, nil
}

func (fakeChat) StartSession(ctx context.Context, ownerID string) (*domain.Session, error) {
	return &domain.Session{SessionID: "s-started", OwnerID: ownerID, Status: domain.SessionStatusActive}, nil
}

func (fakeChat) EndSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID != "s-started" {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.Session{SessionID: sessionID, Status: domain.SessionStatusEnded}, nil
}

func TestServerRoundTrip(t *testing.T) {
	srv, err := NewServer(fakeChat{}, nil)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	client, err := jsonrpc.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var reply domain.TurnReply
	require.NoError(t, client.Call(ServiceName+".HandleTurn", &TurnArgs{Message: "hi"}, &reply))
	assert.Equal(t, "echo: hi", reply.Reply)
	assert.Equal(t, "s-new", reply.SessionID)

	err = client.Call(ServiceName+".HandleTurn", &TurnArgs{}, &reply)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")

	var session domain.Session
	require.NoError(t, client.Call(ServiceName+".StartSession", &SessionArgs{AdminID: "a1"}, &session))
	assert.Equal(t, "s-started", session.SessionID)

	require.NoError(t, client.Call(ServiceName+".EndSession", &SessionArgs{SessionID: "s-started"}, &session))
	assert.Equal(t, domain.SessionStatusEnded, session.Status)

	err = client.Call(ServiceName+".EndSession", &SessionArgs{}, &session)
	assert.EqualError(t, err, "session_id is required")
}

func TestShutdownWithoutStart(t *testing.T) {
	srv, err := NewServer(fakeChat{}, nil)
	require.NoError(t, err)
	assert.NoError(t, srv.Shutdown(context.Background()))
}
