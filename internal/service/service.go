// Package service runs the per-turn conversation pipeline and the session
// lifecycle operations exposed to the transport layer.
package service

import (
	"context"
	"time"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/answer"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/config"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/metrics"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/repository"
)

// Memory loads the conversation window and persists finished turns.
type Memory interface {
	Load(ctx context.Context, sessionID string, limit int) domain.Result[domain.ConversationWindow]
	Save(ctx context.Context, turn *domain.Turn) error
}

// Classifier resolves a message to exactly one category.
type Classifier interface {
	Classify(ctx context.Context, text string, window domain.ConversationWindow) domain.Classification
}

// Dispatcher fetches data for a data-backed category.
type Dispatcher interface {
	Dispatch(ctx context.Context, category domain.Category, text, ownerID string, window domain.ConversationWindow) *domain.RetrievalOutcome
}

// Generator composes the assistant reply.
type Generator interface {
	Generate(ctx context.Context, text string, window domain.ConversationWindow, outcome *domain.RetrievalOutcome) (*answer.Answer, error)
}

// Options carries the conversation settings the service needs.
type Options struct {
	HistoryWindow      int
	SessionIdleTimeout time.Duration
	Timeouts           config.StageTimeouts
}

// OptionsFromConfig extracts service options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		HistoryWindow:      cfg.HistoryWindow,
		SessionIdleTimeout: cfg.SessionIdleTimeout,
		Timeouts:           cfg.Timeouts,
	}
}

type Service struct {
	store      repository.Store
	memory     Memory
	classifier Classifier
	dispatcher Dispatcher
	generator  Generator
	metrics    *metrics.Metrics
	log        *logger.Logger
	opts       Options
	now        func() time.Time
}

func New(store repository.Store, memory Memory, classifier Classifier, dispatcher Dispatcher, generator Generator, m *metrics.Metrics, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 5
	}
	return &Service{
		store:      store,
		memory:     memory,
		classifier: classifier,
		dispatcher: dispatcher,
		generator:  generator,
		metrics:    m,
		log:        log.Component("orchestrator"),
		opts:       opts,
		now:        time.Now,
	}
}

// bound applies a stage timeout; zero leaves ctx as is.
func bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
