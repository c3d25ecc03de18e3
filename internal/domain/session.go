package domain

import (
	"encoding/json"
	"time"
)

// AnonymousOwnerID is the owner recorded for sessions started without a valid admin id.
const AnonymousOwnerID = "00000000-0000-0000-0000-000000000000"

// Session represents a conversation session.
type Session struct {
	SessionID    string        `json:"session_id"`
	OwnerID      string        `json:"admin_id"`
	Status       SessionStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
	EndedAt      *time.Time    `json:"ended_at,omitempty"`
}

// Active reports whether the session may accept new turns.
func (s *Session) Active() bool {
	return s != nil && s.Status == SessionStatusActive
}

// IdleSince reports whether the session has been idle for at least d as of now.
func (s *Session) IdleSince(now time.Time, d time.Duration) bool {
	if d <= 0 {
		return false
	}
	return now.Sub(s.LastActivity) >= d
}

// Turn is one user message paired with its assistant reply.
type Turn struct {
	TurnID            string     `json:"turn_id"`
	SessionID         string     `json:"session_id"`
	OwnerID           string     `json:"admin_id"`
	UserMessage       string     `json:"user_message"`
	AssistantResponse string     `json:"assistant_response"`
	SourceType        SourceType `json:"source_type"`
	RecordCount       int        `json:"record_count"`
	ResponseTimeMs    int64      `json:"response_time_ms"`
	TokensUsed        *int       `json:"tokens_used,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// AuditEntry is a single append-only audit log row.
type AuditEntry struct {
	AuditID   string          `json:"audit_id"`
	OwnerID   string          `json:"admin_id"`
	SessionID string          `json:"session_id,omitempty"`
	Action    AuditAction     `json:"action"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// RetrievedContext is the persisted trace of one dispatch attempt.
type RetrievedContext struct {
	ContextID       string          `json:"context_id"`
	SessionID       string          `json:"session_id"`
	OwnerID         string          `json:"admin_id"`
	SourceType      SourceType      `json:"source_type"`
	QueryText       string          `json:"query_text"`
	Payload         json.RawMessage `json:"payload,omitempty"`
	RecordCount     int             `json:"record_count"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	RetrievalTimeMs int64           `json:"retrieval_time_ms"`
	CreatedAt       time.Time       `json:"created_at"`
}
