package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// GetSessionHistory returns up to limit of the session's latest turns, oldest first.
func (s *Service) GetSessionHistory(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	turns, err := s.store.LoadRecentTurns(ctx, sessionID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("load history for session %s: %w", sessionID, err)
	}
	return turns, nil
}

// GetOwnerHistory returns up to limit of the owner's latest turns across
// sessions, newest first.
func (s *Service) GetOwnerHistory(ctx context.Context, ownerID string, limit int) ([]domain.Turn, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: admin_id is required", domain.ErrInvalidInput)
	}
	owner := normalizeOwner(ownerID)
	turns, err := s.store.ListTurnsByOwner(ctx, owner, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("load history for admin %s: %w", owner, err)
	}
	return turns, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	}
	return limit
}

// GetAuditTrail returns the session's audit entries in the order they were written.
func (s *Service) GetAuditTrail(ctx context.Context, sessionID string) ([]domain.AuditEntry, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListAudit(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load audit trail for session %s: %w", sessionID, err)
	}
	return entries, nil
}

// GetRetrievedContexts returns the session's retrieval traces, oldest first.
func (s *Service) GetRetrievedContexts(ctx context.Context, sessionID string) ([]domain.RetrievedContext, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	contexts, err := s.store.ListRetrievedContexts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load retrieved contexts for session %s: %w", sessionID, err)
	}
	return contexts, nil
}
