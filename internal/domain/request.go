package domain

// ChatRequest is the body of POST /api/chat/message.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ChatResponse is returned for every processed chat message.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Warning   string `json:"warning,omitempty"`
}

// TurnReply is what the orchestrator hands back for one processed message.
type TurnReply struct {
	Reply       string     `json:"reply"`
	SessionID   string     `json:"session_id"`
	Category    Category   `json:"category"`
	SourceType  SourceType `json:"source_type"`
	RecordCount int        `json:"record_count"`
	FinalState  TurnState  `json:"final_state"`
	Warning     string     `json:"warning,omitempty"`
}

// StartSessionRequest is the optional body of POST /api/session/start.
type StartSessionRequest struct {
	AdminID string `json:"admin_id,omitempty"`
}

// EndSessionRequest is the body of POST /api/session/end.
type EndSessionRequest struct {
	SessionID string `json:"session_id"`
}

// SessionResponse describes a session after a lifecycle operation.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	EndedAt   string `json:"ended_at,omitempty"`
}
