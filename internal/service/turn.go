package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/answer"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/retrieval"
)

// MaxMessageLength bounds a single user message, in characters.
const MaxMessageLength = 4000

// turn is the working state of one HandleTurn call.
type turn struct {
	state    domain.TurnState
	start    time.Time
	message  string
	session  *domain.Session
	window   domain.ConversationWindow
	class    domain.Classification
	outcome  *domain.RetrievalOutcome
	decision domain.ContextDecision
	reply    string
	tokens   *int
	failed   bool
	faults   []domain.Fault
	warning  string
}

func (t *turn) fault(f domain.Fault) {
	t.faults = append(t.faults, f)
}

func (t *turn) sourceType() domain.SourceType {
	return t.class.Category.SourceType()
}

func (t *turn) recordCount() int {
	if t.outcome == nil {
		return 0
	}
	return t.outcome.RecordCount
}

// HandleTurn processes one user message and always returns a reply, unless
// the message itself is unusable, which fails with ErrInvalidInput.
func (s *Service) HandleTurn(ctx context.Context, sessionID, message string) (*domain.TurnReply, error) {
	message = strings.TrimSpace(message)
	if err := validateMessage(message); err != nil {
		return nil, err
	}

	t := &turn{
		state:   domain.StateValidatingSession,
		start:   s.now(),
		message: message,
	}
	for !t.state.Terminal() {
		switch t.state {
		case domain.StateValidatingSession:
			t.state = s.validateSession(ctx, t, strings.TrimSpace(sessionID))
		case domain.StateLoadingMemory:
			t.state = s.loadMemory(ctx, t)
		case domain.StateClassifyingIntent:
			t.state = s.classify(ctx, t)
		case domain.StateDispatching:
			t.state = s.dispatch(ctx, t)
		case domain.StateValidatingContext:
			t.state = s.validateContext(ctx, t)
		case domain.StateGenerating:
			t.state = s.generate(ctx, t)
		case domain.StateSavingMemory:
			t.state = s.saveTurn(ctx, t)
		default:
			return nil, fmt.Errorf("unexpected turn state %q", t.state)
		}
	}
	return s.finish(ctx, t), nil
}

func validateMessage(message string) error {
	if message == "" {
		return fmt.Errorf("%w: message is empty", domain.ErrInvalidInput)
	}
	if !utf8.ValidString(message) {
		return fmt.Errorf("%w: message is not valid UTF-8", domain.ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d characters", domain.ErrInvalidInput, MaxMessageLength)
	}
	return nil
}

func (s *Service) validateSession(ctx context.Context, t *turn, sessionID string) domain.TurnState {
	res := s.resolveSession(ctx, sessionID)
	if !res.OK() {
		// Keep the conversation alive with a synthetic session; the turn is
		// still saved best-effort and may fail for lack of a session row.
		t.session = &domain.Session{
			SessionID: uuid.New().String(),
			OwnerID:   domain.AnonymousOwnerID,
			Status:    domain.SessionStatusActive,
		}
		t.class = domain.Classification{Category: domain.CategoryGeneral, Stage: domain.StageDefault}
		t.reply = answer.ApologyReply
		t.failed = true
		t.fault(res.Fault)
		s.metrics.RecordFault(string(res.Fault))
		s.log.Error().Err(res.Err).
			Str("session_id", sessionID).
			Str("stage", string(domain.StateValidatingSession)).
			Msg("session store unavailable")
		s.recordAudit(ctx, domain.AnonymousOwnerID, "", domain.AuditSessionFault, map[string]string{
			"requested_session_id": sessionID,
			"error":                res.Err.Error(),
		})
		return domain.StateSavingMemory
	}

	t.session = res.Value
	s.recordAudit(ctx, t.session.OwnerID, t.session.SessionID, domain.AuditUserMessageReceived, map[string]any{
		"message_length": utf8.RuneCountInString(t.message),
	})
	return domain.StateLoadingMemory
}

func (s *Service) loadMemory(ctx context.Context, t *turn) domain.TurnState {
	res := s.memory.Load(ctx, t.session.SessionID, s.opts.HistoryWindow)
	t.window = res.Value
	if !res.OK() {
		t.fault(res.Fault)
		s.metrics.RecordFault(string(res.Fault))
		s.recordAudit(ctx, t.session.OwnerID, t.session.SessionID, domain.AuditMemoryFault, map[string]string{
			"error": errString(res.Err),
		})
	}
	return domain.StateClassifyingIntent
}

func (s *Service) classify(ctx context.Context, t *turn) domain.TurnState {
	cctx, cancel := bound(ctx, s.opts.Timeouts.Classify)
	defer cancel()

	t.class = s.classifier.Classify(cctx, t.message, t.window)
	if _, ok := domain.ParseCategory(string(t.class.Category)); !ok {
		t.class = domain.Classification{Category: domain.CategoryGeneral, Stage: domain.StageDefault}
	}
	s.metrics.RecordClassification(string(t.class.Category), string(t.class.Stage))
	s.log.Debug().
		Str("session_id", t.session.SessionID).
		Str("category", string(t.class.Category)).
		Str("classification_stage", string(t.class.Stage)).
		Msg("intent classified")
	return domain.StateDispatching
}

func (s *Service) dispatch(ctx context.Context, t *turn) domain.TurnState {
	if !t.class.Category.DataBacked() {
		return domain.StateValidatingContext
	}
	t.outcome = s.dispatcher.Dispatch(ctx, t.class.Category, t.message, t.session.OwnerID, t.window)
	s.recordContext(ctx, t.session, t.outcome)
	return domain.StateValidatingContext
}

func (s *Service) validateContext(ctx context.Context, t *turn) domain.TurnState {
	t.decision = retrieval.Validate(t.class.Category, t.outcome)
	if t.decision.Proceed() {
		if t.class.Stage == domain.StageGreeting {
			t.reply = answer.GreetingReply
			return domain.StateSavingMemory
		}
		return domain.StateGenerating
	}

	category := string(t.class.Category)
	switch t.decision.Reason {
	case domain.ReasonError:
		errMsg := "no retrieval outcome"
		if t.outcome != nil {
			errMsg = t.outcome.ErrorMessage
		}
		t.fault(domain.FaultDispatch)
		s.metrics.RecordFault(string(domain.FaultDispatch))
		s.log.Error().
			Str("session_id", t.session.SessionID).
			Str("category", category).
			Str("stage", string(domain.StateValidatingContext)).
			Str("reason", string(domain.ReasonError)).
			Str("error", errMsg).
			Msg("retrieval failed, answering with no-data reply")
		action := domain.AuditDispatchError
		if t.outcome.Blocked() {
			action = domain.AuditPolicyBlocked
		}
		s.recordAudit(ctx, t.session.OwnerID, t.session.SessionID, action, map[string]string{
			"category": category,
			"query":    t.message,
			"error":    errMsg,
		})
	default:
		s.log.Warn().
			Str("session_id", t.session.SessionID).
			Str("category", category).
			Str("stage", string(domain.StateValidatingContext)).
			Str("reason", string(domain.ReasonEmpty)).
			Msg("no records found, answering with no-data reply")
		s.recordAudit(ctx, t.session.OwnerID, t.session.SessionID, domain.AuditNoDataFound, map[string]string{
			"category": category,
			"query":    t.message,
		})
	}
	t.reply = answer.NoDataReply
	return domain.StateSavingMemory
}

func (s *Service) generate(ctx context.Context, t *turn) domain.TurnState {
	gctx, cancel := bound(ctx, s.opts.Timeouts.Generate)
	defer cancel()

	ans, err := s.generator.Generate(gctx, t.message, t.window, t.outcome)
	if err == nil && (ans == nil || strings.TrimSpace(ans.Text) == "") {
		err = errors.New("empty answer")
	}
	if err != nil {
		t.reply = answer.ErrorReply
		t.failed = true
		t.fault(domain.FaultGeneration)
		s.metrics.RecordFault(string(domain.FaultGeneration))
		s.log.Error().Err(err).
			Str("session_id", t.session.SessionID).
			Str("category", string(t.class.Category)).
			Str("stage", string(domain.StateGenerating)).
			Msg("answer generation failed")
		s.recordAudit(ctx, t.session.OwnerID, t.session.SessionID, domain.AuditLLMError, map[string]string{
			"category": string(t.class.Category),
			"error":    err.Error(),
		})
		return domain.StateSavingMemory
	}

	t.reply = ans.Text
	if ans.TokensUsed > 0 {
		n := ans.TokensUsed
		t.tokens = &n
	}
	return domain.StateSavingMemory
}

// saveTurn persists the turn exactly once. The caller's cancellation does not
// abort the write; the persist timeout still applies.
func (s *Service) saveTurn(ctx context.Context, t *turn) domain.TurnState {
	next := domain.StateDone
	if t.failed {
		next = domain.StateErrorExit
	}

	record := &domain.Turn{
		TurnID:            uuid.New().String(),
		SessionID:         t.session.SessionID,
		OwnerID:           t.session.OwnerID,
		UserMessage:       t.message,
		AssistantResponse: t.reply,
		SourceType:        t.sourceType(),
		RecordCount:       t.recordCount(),
		ResponseTimeMs:    elapsedMs(t.start, s.now()),
		TokensUsed:        t.tokens,
		CreatedAt:         s.now(),
	}

	sctx, cancel := bound(context.WithoutCancel(ctx), s.opts.Timeouts.Persist)
	defer cancel()
	if err := s.memory.Save(sctx, record); err != nil {
		t.fault(domain.FaultPersistence)
		t.warning = "conversation history could not be saved"
		s.metrics.RecordFault(string(domain.FaultPersistence))
		s.log.Error().Err(err).
			Str("session_id", t.session.SessionID).
			Str("category", string(t.class.Category)).
			Str("stage", string(domain.StateSavingMemory)).
			Msg("failed to save turn")
		s.recordAudit(ctx, t.session.OwnerID, t.session.SessionID, domain.AuditChatHistorySaveFailed, map[string]string{
			"error": err.Error(),
		})
	}
	return next
}

func (s *Service) finish(ctx context.Context, t *turn) *domain.TurnReply {
	elapsed := s.now().Sub(t.start)
	outcome := "ok"
	switch {
	case t.state == domain.StateErrorExit:
		outcome = "error"
	case !t.decision.Proceed() && t.class.Category.DataBacked():
		outcome = "no_data"
	}
	s.metrics.RecordTurn(string(t.sourceType()), outcome, elapsed)

	faults := make([]string, 0, len(t.faults))
	for _, f := range t.faults {
		faults = append(faults, string(f))
	}
	s.recordAudit(ctx, t.session.OwnerID, t.session.SessionID, domain.AuditChatCompleted, map[string]any{
		"category":         t.class.Category,
		"source_type":      t.sourceType(),
		"record_count":     t.recordCount(),
		"response_time_ms": elapsed.Milliseconds(),
		"final_state":      t.state,
		"faults":           faults,
	})
	s.log.Info().
		Str("session_id", t.session.SessionID).
		Str("category", string(t.class.Category)).
		Str("final_state", string(t.state)).
		Int("record_count", t.recordCount()).
		Dur("elapsed", elapsed).
		Msg("turn completed")

	return &domain.TurnReply{
		Reply:       t.reply,
		SessionID:   t.session.SessionID,
		Category:    t.class.Category,
		SourceType:  t.sourceType(),
		RecordCount: t.recordCount(),
		FinalState:  t.state,
		Warning:     t.warning,
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
