// Package memory loads and saves the conversation history a turn works with.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/repository"
)

// DefaultWindow is the number of prior turns loaded when no limit is given.
const DefaultWindow = 5

// Manager reads recent turns and appends finished ones.
type Manager struct {
	turns   repository.TurnStore
	timeout time.Duration
	log     *logger.Logger
}

// NewManager creates a memory manager. timeout bounds each store call; zero means none.
func NewManager(turns repository.TurnStore, timeout time.Duration, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{turns: turns, timeout: timeout, log: log.Component("memory")}
}

// Load returns the session's latest turns, oldest first. A failed read yields
// an empty window tagged with FaultMemory.
func (m *Manager) Load(ctx context.Context, sessionID string, limit int) domain.Result[domain.ConversationWindow] {
	if limit <= 0 {
		limit = DefaultWindow
	}
	ctx, cancel := m.bound(ctx)
	defer cancel()

	turns, err := m.turns.LoadRecentTurns(ctx, sessionID, limit)
	if err != nil {
		m.log.Warn().Err(err).
			Str("session_id", sessionID).
			Str("stage", string(domain.StateLoadingMemory)).
			Msg("history unavailable, continuing with empty window")
		return domain.Degraded(domain.ConversationWindow{}, domain.FaultMemory, err)
	}
	return domain.Ok(domain.NewConversationWindow(turns, limit))
}

// Save appends one turn.
func (m *Manager) Save(ctx context.Context, turn *domain.Turn) error {
	ctx, cancel := m.bound(ctx)
	defer cancel()

	if err := m.turns.AppendTurn(ctx, turn); err != nil {
		return fmt.Errorf("save turn: %w", err)
	}
	return nil
}

func (m *Manager) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}
