package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 8081, cfg.InternalHTTPPort)
	assert.Empty(t, cfg.RPCAddr)
	assert.Equal(t, 5, cfg.HistoryWindow)
	assert.Equal(t, "gpt-4o", cfg.ClassifierModel)
	assert.Equal(t, time.Duration(0), cfg.SessionIdleTimeout)
	assert.Equal(t, 3, cfg.Routing.RAG.TopK)
	assert.Contains(t, cfg.Routing.Keywords[domain.CategoryCRM], "lead")
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("HISTORY_WINDOW", "8")
	t.Setenv("DISPATCH_TIMEOUT_MS", "1500")
	t.Setenv("SESSION_IDLE_TIMEOUT_MIN", "30")
	t.Setenv("RAG_THRESHOLD", "0.75")
	t.Setenv("LLM_PROVIDER", "MOCK")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 8, cfg.HistoryWindow)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeouts.Dispatch)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTimeout)
	assert.InDelta(t, 0.75, cfg.Routing.RAG.Threshold, 0.0001)
	assert.Equal(t, "mock", cfg.LLMProvider)
}

func TestLoadRoutingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	content := `
keywords:
  crm: [lead, deal]
  rms: [candidate]
rag:
  top_k: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	routing, err := LoadRouting(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"lead", "deal"}, routing.Keywords[domain.CategoryCRM])
	assert.NotContains(t, routing.Keywords, domain.CategoryLMS)
	assert.Equal(t, 5, routing.RAG.TopK)
	assert.InDelta(t, 0.5, routing.RAG.Threshold, 0.0001)
	assert.NotEmpty(t, routing.Greetings)
}

func TestLoadRoutingRejectsGeneralKeywords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keywords:\n  general: [weather]\n"), 0o600))

	_, err := LoadRouting(path)
	assert.Error(t, err)
}
