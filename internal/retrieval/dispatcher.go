// Package retrieval routes a classified message to its data source and judges
// whether the result is enough to answer from.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/metrics"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/policy"
)

// Retriever fetches records for one category.
type Retriever interface {
	Retrieve(ctx context.Context, text string, window domain.ConversationWindow) ([]domain.Record, error)
}

// RetrieverFunc adapts a function to Retriever.
type RetrieverFunc func(ctx context.Context, text string, window domain.ConversationWindow) ([]domain.Record, error)

// Retrieve calls f.
func (f RetrieverFunc) Retrieve(ctx context.Context, text string, window domain.ConversationWindow) ([]domain.Record, error) {
	return f(ctx, text, window)
}

// PolicyEvaluator decides whether a retrieval may run.
type PolicyEvaluator interface {
	Evaluate(ctx context.Context, in policy.Input) (policy.Decision, error)
}

// ErrPolicyBlocked marks an outcome refused by the source policy.
var ErrPolicyBlocked = errors.New("blocked by source policy")

// Dispatcher binds each data-backed category to one retriever.
type Dispatcher struct {
	retrievers map[domain.Category]Retriever
	policy     PolicyEvaluator
	timeout    time.Duration
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPolicy gates every dispatch through p.
func WithPolicy(p PolicyEvaluator) Option {
	return func(d *Dispatcher) { d.policy = p }
}

// WithTimeout bounds each retrieval.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithMetrics records dispatch counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a dispatcher over retrievers.
func NewDispatcher(retrievers map[domain.Category]Retriever, log *logger.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	d := &Dispatcher{
		retrievers: retrievers,
		log:        log.Component("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs the retriever bound to category. It returns nil for general
// and never returns an error: failures come back as an outcome with ErrorMessage set.
func (d *Dispatcher) Dispatch(ctx context.Context, category domain.Category, text, ownerID string, window domain.ConversationWindow) *domain.RetrievalOutcome {
	if !category.DataBacked() {
		return nil
	}
	start := time.Now()

	retriever, ok := d.retrievers[category]
	if !ok || retriever == nil {
		return d.finish(category, domain.FailedOutcome(category, text, fmt.Errorf("no retriever configured for %s", category), time.Since(start)), "error")
	}

	if d.policy != nil {
		decision, err := d.policy.Evaluate(ctx, policy.Input{Category: string(category), OwnerID: ownerID, Query: text})
		if err != nil {
			return d.finish(category, domain.FailedOutcome(category, text, fmt.Errorf("source policy unavailable: %w", err), time.Since(start)), "error")
		}
		if !decision.Allowed() {
			err := ErrPolicyBlocked
			if decision.Reason != "" {
				err = fmt.Errorf("%w: %s", ErrPolicyBlocked, decision.Reason)
			}
			return d.finish(category, domain.BlockedOutcome(category, text, err, time.Since(start)), "blocked")
		}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	records, err := d.call(ctx, retriever, text, window)
	if err != nil {
		return d.finish(category, domain.FailedOutcome(category, text, err, time.Since(start)), "error")
	}

	outcome := domain.NewOutcome(category, text, records, time.Since(start))
	result := "ok"
	if outcome.RecordCount == 0 {
		result = "empty"
	}
	return d.finish(category, outcome, result)
}

// call runs the retriever so that neither a panic nor a retriever ignoring
// ctx can hold the turn past its deadline.
func (d *Dispatcher) call(ctx context.Context, r Retriever, text string, window domain.ConversationWindow) ([]domain.Record, error) {
	type result struct {
		records []domain.Record
		err     error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("retriever panic: %v", p)}
			}
		}()
		records, err := r.Retrieve(ctx, text, window)
		done <- result{records: records, err: err}
	}()

	select {
	case res := <-done:
		return res.records, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) finish(category domain.Category, outcome *domain.RetrievalOutcome, result string) *domain.RetrievalOutcome {
	d.metrics.RecordDispatch(string(category), result, outcome.Elapsed)

	evt := d.log.Debug()
	if outcome.Failed() {
		evt = d.log.Warn().Str("error", outcome.ErrorMessage)
	}
	evt.Str("category", string(category)).
		Str("stage", string(domain.StateDispatching)).
		Str("result", result).
		Int("record_count", outcome.RecordCount).
		Dur("elapsed", outcome.Elapsed).
		Msg("dispatch finished")
	return outcome
}
