package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/answer"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/config"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTPPort:          0,
		DatabaseURL:       ":memory:",
		SourceDatabaseURL: ":memory:",
		LLMProvider:       "mock",
		LLMModel:          "gpt-4o",
		ClassifierModel:   "gpt-4o",
		HistoryWindow:     5,
		SourcePageSize:    10,
		Routing:           config.DefaultRouting(),
		LogLevel:          "error",
	}
}

func postMessage(t *testing.T, a *App, sessionID, message string) domain.ChatResponse {
	t.Helper()

	body, err := json.Marshal(domain.ChatRequest{Message: message, SessionID: sessionID})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/chat/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.external.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestInitializeAppServesChat(t *testing.T) {
	a, cleanup, err := InitializeApp(testConfig())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	assert.Nil(t, a.rpc)

	greeting := postMessage(t, a, "", "hello")
	assert.Equal(t, answer.GreetingReply, greeting.Response)
	require.NotEmpty(t, greeting.SessionID)

	// The replica has no CRM tables, so the lookup fails and the turn falls
	// back to the no-data reply.
	leads := postMessage(t, a, greeting.SessionID, "show me all leads")
	assert.Equal(t, answer.NoDataReply, leads.Response)
	assert.Equal(t, greeting.SessionID, leads.SessionID)

	general := postMessage(t, a, greeting.SessionID, "tell me a joke")
	assert.Equal(t, "[mock] tell me a joke", general.Response)

	// Document search is disabled without a qdrant host.
	docs := postMessage(t, a, greeting.SessionID, "what is the leave policy")
	assert.Equal(t, answer.NoDataReply, docs.Response)

	rec := httptest.NewRecorder()
	a.external.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+greeting.SessionID+"/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Turns []domain.Turn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history.Turns, 4)

	rec = httptest.NewRecorder()
	a.internal.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "edify_turns_total")
}

func TestInitializeAppWithRPC(t *testing.T) {
	cfg := testConfig()
	cfg.RPCAddr = "127.0.0.1:0"

	a, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	assert.NotNil(t, a.rpc)
}

func TestInitializeAppRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLMProvider = "carrier-pigeon"

	_, _, err := InitializeApp(cfg)
	assert.Error(t, err)
}
