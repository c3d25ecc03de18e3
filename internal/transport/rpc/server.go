// Package rpc exposes the chat operations over JSON-RPC for internal callers.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

// ServiceName is the JSON-RPC service prefix, e.g. "Chatbot.HandleTurn".
const ServiceName = "Chatbot"

// ChatService is the orchestrator surface served over RPC.
type ChatService interface {
	HandleTurn(ctx context.Context, sessionID, message string) (*domain.TurnReply, error)
	StartSession(ctx context.Context, ownerID string) (*domain.Session, error)
	EndSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// Server accepts JSON-RPC connections.
type Server struct {
	mu        sync.Mutex
	listener  net.Listener
	rpcServer *rpc.Server
	log       *logger.Logger
	done      chan struct{}
}

// NewServer creates a new RPC server bound to the chat service.
func NewServer(svc ChatService, log *logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Nop()
	}
	rpcServer := rpc.NewServer()
	handler := &Handler{service: svc}
	if err := rpcServer.RegisterName(ServiceName, handler); err != nil {
		return nil, fmt.Errorf("register rpc handler: %w", err)
	}

	return &Server{
		rpcServer: rpcServer,
		log:       log.Component("rpc"),
		done:      make(chan struct{}),
	}, nil
}

// Start begins accepting RPC connections on the given address. It blocks
// until Shutdown closes the listener.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				close(s.done)
				return nil
			}
			s.log.Warn().Err(err).Msg("rpc accept error")
			continue
		}

		go s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(conn))
	}
}

// Shutdown stops accepting new RPC connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}

	if err := ln.Close(); err != nil {
		return err
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler implements the RPC methods.
type Handler struct {
	service ChatService
}

// TurnArgs carries one chat message.
type TurnArgs struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SessionArgs identifies a session or an owner.
type SessionArgs struct {
	SessionID string `json:"session_id,omitempty"`
	AdminID   string `json:"admin_id,omitempty"`
}

// HandleTurn runs one chat turn.
func (h *Handler) HandleTurn(req *TurnArgs, resp *domain.TurnReply) error {
	if req == nil {
		return errors.New("turn request is required")
	}

	reply, err := h.service.HandleTurn(context.Background(), req.SessionID, req.Message)
	if err != nil {
		return err
	}
	if resp != nil && reply != nil {
		*resp = *reply
	}
	return nil
}

// StartSession creates a session for the optional admin id.
func (h *Handler) StartSession(req *SessionArgs, resp *domain.Session) error {
	var owner string
	if req != nil {
		owner = req.AdminID
	}

	session, err := h.service.StartSession(context.Background(), owner)
	if err != nil {
		return err
	}
	if resp != nil {
		*resp = *session
	}
	return nil
}

// EndSession ends an active session.
func (h *Handler) EndSession(req *SessionArgs, resp *domain.Session) error {
	if req == nil || req.SessionID == "" {
		return errors.New("session_id is required")
	}

	session, err := h.service.EndSession(context.Background(), req.SessionID)
	if err != nil {
		return err
	}
	if resp != nil {
		*resp = *session
	}
	return nil
}
