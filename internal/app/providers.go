package app

import (
	"context"
	"database/sql"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/adapter/llm"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/answer"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/config"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/intent"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/memory"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/metrics"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/policy"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/rag"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/repository"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/retrieval"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/service"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/sources"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/tokens"
	httpserver "github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/http"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/transport/rpc"
)

// ProviderSet wires the whole process from a loaded *config.Config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideStore,
	ProvideSourceDB,
	ProvideLLMClient,
	ProvideTokenCounter,
	ProvideClassifier,
	ProvideRAGRetriever,
	ProvideRetrievers,
	ProvidePolicy,
	ProvideDispatcher,
	ProvideMemory,
	ProvideGenerator,
	ProvideService,
	ProvideExternalServer,
	ProvideInternalServer,
	ProvideRPCServer,
	NewApp,
)

func ProvideLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
}

func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(reg)
}

// ProvideStore opens the chatbot database; the cleanup closes it.
func ProvideStore(cfg *config.Config, log *logger.Logger) (*repository.SQLiteStore, func(), error) {
	store, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close chatbot database")
		}
	}, nil
}

// ProvideSourceDB opens the read-only CRM/LMS/RMS replica.
func ProvideSourceDB(cfg *config.Config, log *logger.Logger) (*sql.DB, func(), error) {
	db, err := sources.OpenReplica(cfg.SourceDatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return db, func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close source database")
		}
	}, nil
}

func ProvideLLMClient(cfg *config.Config) (llm.LLMClient, error) {
	return llm.NewLLMClient(context.Background(), llm.Options{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMBaseURL,
		APIKey:   cfg.LLMAPIKey,
		Model:    cfg.LLMModel,
		Region:   cfg.ArkRegion,
		Timeout:  cfg.LLMTimeout,
	})
}

func ProvideTokenCounter(cfg *config.Config) (*tokens.Estimator, error) {
	return tokens.ForModel(cfg.LLMModel)
}

func ProvideClassifier(cfg *config.Config, client llm.LLMClient, log *logger.Logger) *intent.Classifier {
	return intent.NewClassifier(
		intent.NewKeywordMatcher(cfg.Routing.Keywords),
		intent.NewGreetingDetector(cfg.Routing.Greetings),
		intent.NewLLMDisambiguator(client, cfg.ClassifierModel),
		log,
	)
}

// ProvideRAGRetriever returns nil when no qdrant host is configured; rag
// questions then route to the no-data reply.
func ProvideRAGRetriever(cfg *config.Config, log *logger.Logger) (*rag.Retriever, func(), error) {
	if cfg.QdrantHost == "" {
		log.Warn().Msg("QDRANT_HOST not set, document search disabled")
		return nil, func() {}, nil
	}
	client, err := rag.NewQdrantClient(cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantAPIKey)
	if err != nil {
		return nil, nil, err
	}
	embedder := rag.NewEmbeddingClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.LLMTimeout)
	retriever := rag.NewRetriever(embedder, client, cfg.QdrantCollection, cfg.Routing.RAG.Threshold, cfg.Routing.RAG.TopK, log)
	return retriever, func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close qdrant client")
		}
	}, nil
}

// ProvideRetrievers binds each data-backed category to its retriever.
func ProvideRetrievers(cfg *config.Config, db *sql.DB, ragRetriever *rag.Retriever, log *logger.Logger) map[domain.Category]retrieval.Retriever {
	retrievers := map[domain.Category]retrieval.Retriever{
		domain.CategoryCRM: sources.NewCRM(db, cfg.SourcePageSize, log),
		domain.CategoryLMS: sources.NewLMS(db, cfg.SourcePageSize, log),
		domain.CategoryRMS: sources.NewRMS(db, cfg.SourcePageSize, log),
	}
	if ragRetriever != nil {
		retrievers[domain.CategoryRAG] = ragRetriever
	}
	return retrievers
}

func ProvidePolicy(cfg *config.Config) (*policy.Engine, error) {
	return policy.NewEngineFromFile(context.Background(), cfg.PolicyFile)
}

func ProvideDispatcher(cfg *config.Config, retrievers map[domain.Category]retrieval.Retriever, engine *policy.Engine, m *metrics.Metrics, log *logger.Logger) *retrieval.Dispatcher {
	return retrieval.NewDispatcher(retrievers, log,
		retrieval.WithPolicy(engine),
		retrieval.WithTimeout(cfg.Timeouts.Dispatch),
		retrieval.WithMetrics(m),
	)
}

func ProvideMemory(cfg *config.Config, store *repository.SQLiteStore, log *logger.Logger) *memory.Manager {
	return memory.NewManager(store, cfg.Timeouts.Memory, log)
}

func ProvideGenerator(cfg *config.Config, client llm.LLMClient, counter *tokens.Estimator, log *logger.Logger) *answer.Generator {
	return answer.NewGenerator(client, cfg.LLMModel, counter, log)
}

func ProvideService(
	cfg *config.Config,
	store *repository.SQLiteStore,
	mem *memory.Manager,
	classifier *intent.Classifier,
	dispatcher *retrieval.Dispatcher,
	generator *answer.Generator,
	m *metrics.Metrics,
	log *logger.Logger,
) *service.Service {
	return service.New(store, mem, classifier, dispatcher, generator, m, log, service.OptionsFromConfig(cfg))
}

func ProvideExternalServer(svc *service.Service, reg *prometheus.Registry, log *logger.Logger) *httpserver.ExternalServer {
	return httpserver.NewExternalServer(svc, reg, log)
}

func ProvideInternalServer(svc *service.Service, reg *prometheus.Registry) *httpserver.InternalServer {
	return httpserver.NewInternalServer(svc, reg)
}

// ProvideRPCServer returns nil when RPC_ADDR is empty.
func ProvideRPCServer(cfg *config.Config, svc *service.Service, log *logger.Logger) (*rpc.Server, error) {
	if cfg.RPCAddr == "" {
		return nil, nil
	}
	return rpc.NewServer(svc, log)
}
