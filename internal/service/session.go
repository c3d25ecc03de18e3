package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// StartSession creates an active session for ownerID. Empty, "anonymous" or
// non-UUID owners are recorded as the anonymous owner.
func (s *Service) StartSession(ctx context.Context, ownerID string) (*domain.Session, error) {
	ctx, cancel := bound(ctx, s.opts.Timeouts.Session)
	defer cancel()

	session, err := s.createSession(ctx, normalizeOwner(ownerID))
	if err != nil {
		s.log.Error().Err(err).Str("admin_id", ownerID).Msg("failed to start session")
		return nil, err
	}
	return session, nil
}

// StartAnonymousSession creates a session owned by the anonymous owner.
func (s *Service) StartAnonymousSession(ctx context.Context) (*domain.Session, error) {
	return s.StartSession(ctx, "")
}

// EndSession moves an active session to ended.
func (s *Service) EndSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}
	ctx, cancel := bound(ctx, s.opts.Timeouts.Session)
	defer cancel()

	session, err := s.store.EndSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("end session %s: %w", sessionID, err)
	}
	s.log.Info().Str("session_id", sessionID).Msg("session ended")
	s.recordAudit(ctx, session.OwnerID, sessionID, domain.AuditSessionEnded, nil)
	return session, nil
}

// GetSession returns a session or ErrSessionNotFound.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrInvalidInput)
	}
	ctx, cancel := bound(ctx, s.opts.Timeouts.Session)
	defer cancel()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// resolveSession returns the active session the turn runs in, creating or
// replacing one as needed. Only a failed create yields FaultSession.
func (s *Service) resolveSession(ctx context.Context, sessionID string) domain.Result[*domain.Session] {
	ctx, cancel := bound(ctx, s.opts.Timeouts.Session)
	defer cancel()

	owner := domain.AnonymousOwnerID
	var replaced *domain.Session
	var reason string

	if sessionID != "" {
		existing, err := s.store.GetSession(ctx, sessionID)
		switch {
		case err != nil:
			s.log.Warn().Err(err).
				Str("session_id", sessionID).
				Str("stage", string(domain.StateValidatingSession)).
				Msg("session lookup failed, starting a new session")
		case existing == nil:
			s.log.Info().Str("session_id", sessionID).Msg("session not found, starting a new session")
		case !existing.Active():
			owner, replaced, reason = existing.OwnerID, existing, "inactive"
		case existing.IdleSince(s.now(), s.opts.SessionIdleTimeout):
			if err := s.store.ExpireSession(ctx, sessionID); err != nil {
				s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to expire idle session")
			}
			owner, replaced, reason = existing.OwnerID, existing, "idle"
		default:
			if err := s.store.TouchSession(ctx, sessionID); err != nil {
				s.log.Warn().Err(err).Str("session_id", sessionID).Msg("failed to update last activity")
			}
			return domain.Ok(existing)
		}
	}

	session, err := s.createSession(ctx, owner)
	if err != nil {
		return domain.Degraded[*domain.Session](nil, domain.FaultSession, err)
	}
	if replaced != nil {
		s.log.Warn().
			Str("session_id", replaced.SessionID).
			Str("status", string(replaced.Status)).
			Str("replacement_id", session.SessionID).
			Str("reason", reason).
			Msg("session not usable, replaced")
		s.recordAudit(ctx, owner, session.SessionID, domain.AuditSessionReplaced, map[string]string{
			"previous_session_id": replaced.SessionID,
			"previous_status":     string(replaced.Status),
			"reason":              reason,
		})
	}
	return domain.Ok(session)
}

func (s *Service) createSession(ctx context.Context, ownerID string) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		SessionID:    uuid.New().String(),
		OwnerID:      ownerID,
		Status:       domain.SessionStatusActive,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.log.Info().Str("session_id", session.SessionID).Str("admin_id", ownerID).Msg("session started")
	s.recordAudit(ctx, ownerID, session.SessionID, domain.AuditSessionStarted, nil)
	return session, nil
}

func normalizeOwner(ownerID string) string {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || ownerID == "anonymous" {
		return domain.AnonymousOwnerID
	}
	id, err := uuid.Parse(ownerID)
	if err != nil {
		return domain.AnonymousOwnerID
	}
	return id.String()
}
