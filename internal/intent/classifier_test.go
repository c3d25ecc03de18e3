package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/adapter/llm"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/config"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

type mockDisambiguator struct {
	mock.Mock
}

func (m *mockDisambiguator) Disambiguate(ctx context.Context, text string, window domain.ConversationWindow, categories []domain.Category) (string, error) {
	args := m.Called(ctx, text, window, categories)
	return args.String(0), args.Error(1)
}

func newTestClassifier(d Disambiguator) *Classifier {
	routing := config.DefaultRouting()
	return NewClassifier(NewKeywordMatcher(routing.Keywords), NewGreetingDetector(routing.Greetings), d, nil)
}

func TestKeywordStageResolvesWithoutDisambiguation(t *testing.T) {
	d := &mockDisambiguator{}
	c := newTestClassifier(d)

	tests := []struct {
		text string
		want domain.Category
	}{
		{"show me all leads", domain.CategoryCRM},
		{"LEADS from yesterday", domain.CategoryCRM},
		{"upcoming batches", domain.CategoryLMS},
		{"what is the training schedule", domain.CategoryLMS},
		{"list candidates in Pune", domain.CategoryRMS},
		{"open job openings", domain.CategoryRMS},
		{"what is the leave policy", domain.CategoryRAG},
		{"hi, show leads", domain.CategoryCRM},
		{"hi show me all leads", domain.CategoryCRM},
		{"evening batch schedule", domain.CategoryLMS},
		{"hello there, list candidates in Pune", domain.CategoryRMS},
		{"morning batch timings", domain.CategoryLMS},
		{"hey what is the leave policy", domain.CategoryRAG},
	}
	for _, tt := range tests {
		got := c.Classify(context.Background(), tt.text, domain.ConversationWindow{})
		assert.Equal(t, tt.want, got.Category, tt.text)
		assert.Equal(t, domain.StageKeyword, got.Stage, tt.text)
	}
	d.AssertNotCalled(t, "Disambiguate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGreetingFastPath(t *testing.T) {
	d := &mockDisambiguator{}
	c := newTestClassifier(d)

	for _, text := range []string{"hi", "  Hello there ", "good morning team", "hey how are you"} {
		got := c.Classify(context.Background(), text, domain.ConversationWindow{})
		assert.Equal(t, domain.CategoryGeneral, got.Category, text)
		assert.Equal(t, domain.StageGreeting, got.Stage, text)
	}
	d.AssertNotCalled(t, "Disambiguate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGreetingWithSeveralCategoriesUsesDisambiguator(t *testing.T) {
	d := &mockDisambiguator{}
	d.On("Disambiguate", mock.Anything, "hello leads who became candidates", mock.Anything, domain.Categories).
		Return("crm", nil).Once()
	c := newTestClassifier(d)

	got := c.Classify(context.Background(), "hello leads who became candidates", domain.ConversationWindow{})
	assert.Equal(t, domain.CategoryCRM, got.Category)
	assert.Equal(t, domain.StageDisambiguation, got.Stage)
	d.AssertExpectations(t)
}

func TestMultipleMatchesUseDisambiguator(t *testing.T) {
	d := &mockDisambiguator{}
	d.On("Disambiguate", mock.Anything, "leads who became candidates", mock.Anything, domain.Categories).
		Return("rms", nil).Once()
	c := newTestClassifier(d)

	got := c.Classify(context.Background(), "leads who became candidates", domain.ConversationWindow{})
	assert.Equal(t, domain.CategoryRMS, got.Category)
	assert.Equal(t, domain.StageDisambiguation, got.Stage)
	assert.Equal(t, []domain.Category{domain.CategoryCRM, domain.CategoryRMS}, got.Matched)
	d.AssertExpectations(t)
}

func TestNoMatchUsesDisambiguator(t *testing.T) {
	d := &mockDisambiguator{}
	d.On("Disambiguate", mock.Anything, "what's the weather", mock.Anything, mock.Anything).
		Return(" General\n", nil).Once()
	c := newTestClassifier(d)

	got := c.Classify(context.Background(), "what's the weather", domain.ConversationWindow{})
	assert.Equal(t, domain.CategoryGeneral, got.Category)
	assert.Equal(t, domain.StageDisambiguation, got.Stage)
	d.AssertExpectations(t)
}

func TestInvalidLabelOrFailureDefaultsToGeneral(t *testing.T) {
	d := &mockDisambiguator{}
	d.On("Disambiguate", mock.Anything, "tell me about sales", mock.Anything, mock.Anything).Return("sales", nil)
	d.On("Disambiguate", mock.Anything, "anything else?", mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	c := newTestClassifier(d)

	got := c.Classify(context.Background(), "tell me about sales", domain.ConversationWindow{})
	assert.Equal(t, domain.CategoryGeneral, got.Category)
	assert.Equal(t, domain.StageDefault, got.Stage)

	got = c.Classify(context.Background(), "anything else?", domain.ConversationWindow{})
	assert.Equal(t, domain.CategoryGeneral, got.Category)
	assert.Equal(t, domain.StageDefault, got.Stage)
}

func TestKeywordMatcherWholeWords(t *testing.T) {
	m := NewKeywordMatcher(map[domain.Category][]string{
		domain.CategoryCRM: {"lead"},
		domain.CategoryRAG: {"policy"},
	})

	assert.Equal(t, []domain.Category{domain.CategoryCRM}, m.Match("new leads"))
	assert.Empty(t, m.Match("leadership offsite"))
	assert.Empty(t, m.Match("policies"))
}

type captureClient struct {
	req *llm.ChatCompletionRequest
}

func (c *captureClient) CreateChatCompletion(ctx context.Context, req *llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	c.req = req
	return &llm.ChatCompletionResponse{Choices: []llm.Choice{{Message: &llm.ChatMessage{Role: llm.RoleAssistant, Content: "crm"}}}}, nil
}

func TestLLMDisambiguatorPrompt(t *testing.T) {
	client := &captureClient{}
	d := NewLLMDisambiguator(client, "gpt-4o-mini")
	window := domain.NewConversationWindow([]domain.Turn{
		{UserMessage: "show leads", AssistantResponse: "Here are 3 leads."},
	}, 5)

	label, err := d.Disambiguate(context.Background(), "and the ones from yesterday?", window, domain.Categories)
	require.NoError(t, err)
	assert.Equal(t, "crm", label)

	require.NotNil(t, client.req)
	assert.Equal(t, "gpt-4o-mini", client.req.Model)
	require.Len(t, client.req.Messages, 4)
	assert.Equal(t, llm.RoleSystem, client.req.Messages[0].Role)
	assert.Contains(t, client.req.Messages[0].Content, llm.ClassifierMarker)
	assert.Contains(t, client.req.Messages[0].Content, "- rms:")
	assert.Equal(t, "show leads", client.req.Messages[1].Content)
	assert.Equal(t, "and the ones from yesterday?", client.req.Messages[3].Content)
}
