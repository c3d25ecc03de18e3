// Package domain defines the core domain models for the chatbot orchestrator.
package domain

// Category is the unit of intent classification and dispatch routing.
type Category string

const (
	CategoryCRM     Category = "crm"
	CategoryLMS     Category = "lms"
	CategoryRMS     Category = "rms"
	CategoryRAG     Category = "rag"
	CategoryGeneral Category = "general"
)

// Categories is the closed category set, in classifier prompt order.
var Categories = []Category{CategoryCRM, CategoryLMS, CategoryRMS, CategoryRAG, CategoryGeneral}

// ParseCategory returns the category for a label, reporting whether it is one of the five.
func ParseCategory(label string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == label {
			return c, true
		}
	}
	return "", false
}

// DataBacked reports whether answers in this category must come from retrieved records.
func (c Category) DataBacked() bool {
	switch c {
	case CategoryCRM, CategoryLMS, CategoryRMS, CategoryRAG:
		return true
	}
	return false
}

// SourceType is the source recorded on a persisted turn.
type SourceType string

const (
	SourceCRM  SourceType = "crm"
	SourceLMS  SourceType = "lms"
	SourceRMS  SourceType = "rms"
	SourceRAG  SourceType = "rag"
	SourceNone SourceType = "none"
)

// SourceType maps a category to the value stored on a turn; general has no source.
func (c Category) SourceType() SourceType {
	if c.DataBacked() {
		return SourceType(c)
	}
	return SourceNone
}

// SessionStatus represents the status of a session.
type SessionStatus string

const (
	SessionStatusActive  SessionStatus = "active"
	SessionStatusEnded   SessionStatus = "ended"
	SessionStatusExpired SessionStatus = "expired"
)

// TurnState is a state of the per-turn orchestration machine.
type TurnState string

const (
	StateValidatingSession TurnState = "validating_session"
	StateLoadingMemory     TurnState = "loading_memory"
	StateClassifyingIntent TurnState = "classifying_intent"
	StateDispatching       TurnState = "dispatching"
	StateValidatingContext TurnState = "validating_context"
	StateGenerating        TurnState = "generating"
	StateSavingMemory      TurnState = "saving_memory"
	StateDone              TurnState = "done"
	StateErrorExit         TurnState = "error_exit"
)

// Terminal reports whether no further transitions follow this state.
func (s TurnState) Terminal() bool {
	return s == StateDone || s == StateErrorExit
}

// Fault tags the reason a stage degraded instead of succeeding.
type Fault string

const (
	FaultNone        Fault = ""
	FaultSession     Fault = "session"
	FaultMemory      Fault = "memory"
	FaultDispatch    Fault = "dispatch"
	FaultGeneration  Fault = "generation"
	FaultPersistence Fault = "persistence"
)

// ClassificationStage records which classifier stage produced a category.
type ClassificationStage string

const (
	StageGreeting       ClassificationStage = "greeting"
	StageKeyword        ClassificationStage = "keyword"
	StageDisambiguation ClassificationStage = "disambiguation"
	StageDefault        ClassificationStage = "default"
)

// ContextVerdict is the outcome of context validation.
type ContextVerdict string

const (
	VerdictProceed      ContextVerdict = "proceed"
	VerdictInsufficient ContextVerdict = "insufficient"
)

// InsufficientReason distinguishes a legitimately empty retrieval from a failed one.
type InsufficientReason string

const (
	ReasonNone  InsufficientReason = ""
	ReasonEmpty InsufficientReason = "empty"
	ReasonError InsufficientReason = "error"
)

// AuditAction names an entry in the append-only audit log.
type AuditAction string

const (
	AuditUserMessageReceived   AuditAction = "user_message_received"
	AuditSessionReplaced       AuditAction = "session_replaced"
	AuditSessionFault          AuditAction = "session_fault"
	AuditMemoryFault           AuditAction = "memory_fault"
	AuditNoDataFound           AuditAction = "no_data_found"
	AuditDispatchError         AuditAction = "dispatch_error"
	AuditPolicyBlocked         AuditAction = "policy_blocked"
	AuditLLMError              AuditAction = "llm_error"
	AuditChatHistorySaveFailed AuditAction = "chat_history_save_failed"
	AuditChatCompleted         AuditAction = "chat_completed"
	AuditSessionStarted        AuditAction = "session_started"
	AuditSessionEnded          AuditAction = "session_ended"
)
