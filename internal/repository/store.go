// Package repository persists sessions, turns, audit entries and retrieval traces.
package repository

import (
	"context"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// SessionStore manages session lifecycle rows.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	TouchSession(ctx context.Context, sessionID string) error
	EndSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ExpireSession(ctx context.Context, sessionID string) error
}

// TurnStore is the append-only chat history.
type TurnStore interface {
	AppendTurn(ctx context.Context, turn *domain.Turn) error
	LoadRecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error)
	ListTurnsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Turn, error)
}

// AuditStore records audit entries and retrieval traces.
type AuditStore interface {
	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
	ListAudit(ctx context.Context, sessionID string) ([]domain.AuditEntry, error)
	SaveRetrievedContext(ctx context.Context, rc *domain.RetrievedContext) error
	ListRetrievedContexts(ctx context.Context, sessionID string) ([]domain.RetrievedContext, error)
}

// Store groups every persistence operation the service needs.
type Store interface {
	SessionStore
	TurnStore
	AuditStore

	Close() error
}
