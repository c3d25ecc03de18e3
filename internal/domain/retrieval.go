package domain

import (
	"iter"
	"time"
)

// Record is one source-specific row or document returned by a retrieval.
type Record map[string]any

// FailureKind tells why a retrieval produced no records.
type FailureKind string

const (
	FailureNone    FailureKind = ""
	FailureError   FailureKind = "error"
	FailureBlocked FailureKind = "blocked"
)

// RetrievalOutcome is the normalized result of one dispatch attempt.
// RecordCount always equals len(Records); an outcome with ErrorMessage set carries no records.
type RetrievalOutcome struct {
	Source       Category      `json:"source"`
	Query        string        `json:"query"`
	RecordCount  int           `json:"record_count"`
	Records      []Record      `json:"records,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Failure      FailureKind   `json:"failure,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// NewOutcome builds a successful outcome from the retrieved records.
func NewOutcome(source Category, query string, records []Record, elapsed time.Duration) *RetrievalOutcome {
	if len(records) == 0 {
		records = nil
	}
	return &RetrievalOutcome{
		Source:      source,
		Query:       query,
		RecordCount: len(records),
		Records:     records,
		Elapsed:     elapsed,
	}
}

// FailedOutcome builds an outcome for a retrieval that did not complete.
func FailedOutcome(source Category, query string, err error, elapsed time.Duration) *RetrievalOutcome {
	return failedOutcome(source, query, err, FailureError, elapsed)
}

// BlockedOutcome builds an outcome for a retrieval refused before it ran.
func BlockedOutcome(source Category, query string, err error, elapsed time.Duration) *RetrievalOutcome {
	return failedOutcome(source, query, err, FailureBlocked, elapsed)
}

func failedOutcome(source Category, query string, err error, kind FailureKind, elapsed time.Duration) *RetrievalOutcome {
	msg := "retrieval failed"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &RetrievalOutcome{
		Source:       source,
		Query:        query,
		ErrorMessage: msg,
		Failure:      kind,
		Elapsed:      elapsed,
	}
}

// Failed reports whether the retrieval itself failed, as opposed to finding nothing.
func (o *RetrievalOutcome) Failed() bool {
	return o != nil && o.ErrorMessage != ""
}

// Blocked reports whether the source policy refused the retrieval.
func (o *RetrievalOutcome) Blocked() bool {
	return o != nil && o.Failure == FailureBlocked
}

// ConversationWindow is a read-only snapshot of a session's most recent turns, oldest first.
type ConversationWindow struct {
	turns []Turn
}

// NewConversationWindow copies turns (oldest first) into a window of at most limit entries,
// keeping the most recent ones.
func NewConversationWindow(turns []Turn, limit int) ConversationWindow {
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	cp := make([]Turn, len(turns))
	copy(cp, turns)
	return ConversationWindow{turns: cp}
}

// Len returns the number of turns in the window.
func (w ConversationWindow) Len() int {
	return len(w.turns)
}

// Turns iterates the window oldest to newest. Each call starts a fresh pass.
func (w ConversationWindow) Turns() iter.Seq[Turn] {
	return func(yield func(Turn) bool) {
		for _, t := range w.turns {
			if !yield(t) {
				return
			}
		}
	}
}

// Classification is the classifier's decision for one message.
type Classification struct {
	Category Category            `json:"category"`
	Stage    ClassificationStage `json:"stage"`
	Matched  []Category          `json:"matched,omitempty"`
}

// ContextDecision is the validator's verdict on a retrieval.
type ContextDecision struct {
	Verdict ContextVerdict     `json:"verdict"`
	Reason  InsufficientReason `json:"reason,omitempty"`
}

// Proceed reports whether answer generation may run.
func (d ContextDecision) Proceed() bool {
	return d.Verdict == VerdictProceed
}
