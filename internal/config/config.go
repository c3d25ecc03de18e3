// Package config provides configuration for the chatbot orchestrator.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort         int
	InternalHTTPPort int
	RPCAddr          string

	// Databases
	DatabaseURL       string
	SourceDatabaseURL string

	// LLM settings
	LLMProvider     string
	LLMBaseURL      string
	LLMAPIKey       string
	LLMModel        string
	ClassifierModel string
	LLMTimeout      time.Duration
	ArkRegion       string

	// Embedding and vector search
	EmbeddingBaseURL string
	EmbeddingAPIKey  string
	EmbeddingModel   string
	QdrantHost       string
	QdrantPort       int
	QdrantAPIKey     string
	QdrantCollection string

	// Conversation
	HistoryWindow      int
	SourcePageSize     int
	SessionIdleTimeout time.Duration

	// Per-stage timeouts
	Timeouts StageTimeouts

	// Routing (keywords, greetings, RAG thresholds)
	Routing Routing
	// Optional rego policy file for source access
	PolicyFile string

	// Logging
	LogLevel  string
	LogPretty bool
}

// StageTimeouts bounds every external call the orchestrator makes.
type StageTimeouts struct {
	Session  time.Duration
	Memory   time.Duration
	Classify time.Duration
	Dispatch time.Duration
	Generate time.Duration
	Persist  time.Duration
}

// Load loads configuration from environment variables, reading a .env file first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:          getEnvInt("HTTP_PORT", 8080),
		InternalHTTPPort:  getEnvInt("INTERNAL_HTTP_PORT", 8081),
		RPCAddr:           getEnv("RPC_ADDR", ""),
		DatabaseURL:       getEnv("DATABASE_URL", "file:chatbot.db?mode=rwc"),
		SourceDatabaseURL: getEnv("SOURCE_DATABASE_URL", "file:edify.db?mode=ro"),
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMBaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:         getEnv("LLM_API_KEY", ""),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o"),
		ClassifierModel:   getEnv("CLASSIFIER_MODEL", ""),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT_MS", 60000),
		ArkRegion:         getEnv("ARK_REGION", "cn-beijing"),
		EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
		EmbeddingAPIKey:   getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		QdrantHost:        getEnv("QDRANT_HOST", "localhost"),
		QdrantPort:        getEnvInt("QDRANT_PORT", 6334),
		QdrantAPIKey:      getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:  getEnv("QDRANT_COLLECTION", "rag_documents"),
		HistoryWindow:     getEnvInt("HISTORY_WINDOW", 5),
		SourcePageSize:    getEnvInt("SOURCE_PAGE_SIZE", 10),
		Timeouts: StageTimeouts{
			Session:  getEnvDuration("SESSION_TIMEOUT_MS", 5000),
			Memory:   getEnvDuration("MEMORY_TIMEOUT_MS", 3000),
			Classify: getEnvDuration("CLASSIFY_TIMEOUT_MS", 15000),
			Dispatch: getEnvDuration("DISPATCH_TIMEOUT_MS", 20000),
			Generate: getEnvDuration("GENERATE_TIMEOUT_MS", 60000),
			Persist:  getEnvDuration("PERSIST_TIMEOUT_MS", 5000),
		},
		PolicyFile: getEnv("POLICY_FILE", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogPretty:  getEnvBool("LOG_PRETTY", false),
	}
	cfg.SessionIdleTimeout = time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT_MIN", 0)) * time.Minute
	if cfg.LLMProvider == "ark" && os.Getenv("LLM_BASE_URL") == "" {
		cfg.LLMBaseURL = "https://ark." + cfg.ArkRegion + ".volces.com/api/v3"
	}
	if cfg.ClassifierModel == "" {
		cfg.ClassifierModel = cfg.LLMModel
	}

	routing := DefaultRouting()
	if path := getEnv("ROUTING_CONFIG", ""); path != "" {
		loaded, err := LoadRouting(path)
		if err != nil {
			return nil, err
		}
		routing = loaded
	}
	if v := getEnv("RAG_THRESHOLD", ""); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			routing.RAG.Threshold = float32(f)
		}
	}
	routing.RAG.TopK = getEnvInt("RAG_TOP_K", routing.RAG.TopK)
	cfg.Routing = routing

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultMs int) time.Duration {
	return time.Duration(getEnvInt(key, defaultMs)) * time.Millisecond
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
