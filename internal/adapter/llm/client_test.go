package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		assert.Equal(t, "Bearer sk-1", r.Header.Get("Authorization"))

		var req ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req.Model)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "sk-1", time.Second)
	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Content())
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 3, resp.Usage.TotalTokens)
}

func TestClientCreateChatCompletionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Model:    "gpt",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hello"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_request_error")
}

func TestClientNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"c1","choices":[]}`)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", time.Second).CreateChatCompletion(context.Background(), &ChatCompletionRequest{Model: "gpt"})
	assert.Error(t, err)
}

func TestMockClient(t *testing.T) {
	mock := NewMockClient()

	resp, err := mock.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "Classify. " + ClassifierMarker},
			{Role: RoleUser, Content: "what is new"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "general", resp.Content())

	resp, err = mock.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Messages: []ChatMessage{{Role: RoleUser, Content: "hello there"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "[mock] hello there", resp.Content())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = mock.CreateChatCompletion(ctx, &ChatCompletionRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeGenerator struct {
	got  []*schema.Message
	opts int
	out  *schema.Message
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	f.opts = len(opts)
	return f.out, f.err
}

func TestArkClientMapsMessagesAndUsage(t *testing.T) {
	gen := &fakeGenerator{out: &schema.Message{
		Role:    schema.Assistant,
		Content: "12 leads found",
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: "stop",
			Usage:        &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		},
	}}
	client := &ArkClient{model: gen, name: "doubao"}

	resp, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleAssistant, Content: "earlier"},
			{Role: RoleUser, Content: "show leads"},
		},
		Temperature: Float64(0.2),
	})
	require.NoError(t, err)
	assert.Equal(t, "12 leads found", resp.Content())
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	require.Len(t, gen.got, 3)
	assert.Equal(t, schema.System, gen.got[0].Role)
	assert.Equal(t, schema.Assistant, gen.got[1].Role)
	assert.Equal(t, schema.User, gen.got[2].Role)
	assert.Equal(t, 1, gen.opts)
}

func TestArkClientError(t *testing.T) {
	client := &ArkClient{model: &fakeGenerator{err: errors.New("throttled")}}
	_, err := client.CreateChatCompletion(context.Background(), &ChatCompletionRequest{})
	assert.ErrorContains(t, err, "throttled")
}

func TestNewLLMClient(t *testing.T) {
	c, err := NewLLMClient(context.Background(), Options{Provider: ProviderMock})
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)

	c, err = NewLLMClient(context.Background(), Options{BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.IsType(t, &Client{}, c)

	_, err = NewLLMClient(context.Background(), Options{Provider: "bard"})
	assert.Error(t, err)
}
