package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// recordAudit appends an audit row. Failures are logged and dropped.
func (s *Service) recordAudit(ctx context.Context, ownerID, sessionID string, action domain.AuditAction, details any) {
	var metadata json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			s.log.Warn().Err(err).Str("action", string(action)).Msg("audit metadata not serializable")
		} else {
			metadata = b
		}
	}

	ctx, cancel := bound(context.WithoutCancel(ctx), s.opts.Timeouts.Persist)
	defer cancel()

	entry := &domain.AuditEntry{
		AuditID:   uuid.New().String(),
		OwnerID:   ownerID,
		SessionID: sessionID,
		Action:    action,
		Metadata:  metadata,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.log.Warn().Err(err).
			Str("session_id", sessionID).
			Str("action", string(action)).
			Msg("failed to write audit log")
	}
}

// recordContext keeps a trace of one dispatch attempt.
func (s *Service) recordContext(ctx context.Context, session *domain.Session, outcome *domain.RetrievalOutcome) {
	if outcome == nil {
		return
	}
	rc := &domain.RetrievedContext{
		ContextID:       uuid.New().String(),
		SessionID:       session.SessionID,
		OwnerID:         session.OwnerID,
		SourceType:      outcome.Source.SourceType(),
		QueryText:       outcome.Query,
		RecordCount:     outcome.RecordCount,
		ErrorMessage:    outcome.ErrorMessage,
		RetrievalTimeMs: outcome.Elapsed.Milliseconds(),
		CreatedAt:       s.now(),
	}
	if len(outcome.Records) > 0 {
		if b, err := json.Marshal(outcome.Records); err == nil {
			rc.Payload = b
		}
	}

	ctx, cancel := bound(context.WithoutCancel(ctx), s.opts.Timeouts.Persist)
	defer cancel()
	if err := s.store.SaveRetrievedContext(ctx, rc); err != nil {
		s.log.Warn().Err(err).
			Str("session_id", session.SessionID).
			Str("category", string(outcome.Source)).
			Msg("failed to record retrieved context")
	}
}

func elapsedMs(start, end time.Time) int64 {
	return end.Sub(start).Milliseconds()
}
