// Package answer composes the assistant reply from the message, recent
// history and retrieved records.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/adapter/llm"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

// TokenCounter estimates prompt and reply size when the provider reports no usage.
type TokenCounter interface {
	Count(texts ...string) int
}

// Answer is a generated reply.
type Answer struct {
	Text       string
	TokensUsed int
	Estimated  bool
}

// Generator calls the chat model with a source-specific prompt.
type Generator struct {
	client  llm.LLMClient
	model   string
	counter TokenCounter
	log     *logger.Logger
}

// NewGenerator creates a generator. counter may be nil.
func NewGenerator(client llm.LLMClient, model string, counter TokenCounter, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{client: client, model: model, counter: counter, log: log.Component("answer")}
}

const generalPrompt = `You are a helpful and professional Edify Admin Assistant.
Your role is to assist administrators.
Answer general greetings or navigational questions politely.
Do not invent any business data (names, deals, courses) that is not provided.`

const sourcePrompt = `You are a helpful Edify Admin Assistant.
Answer the user's query using ONLY the provided context from the %s system.

RULES:
1. Use ONLY the provided context.
2. Do not invent information.
3. If the context does not answer the question, say "The provided records do not contain the answer."
4. Create a clean, readable response (use bullet points or tables if data is structured).

CONTEXT (%d records):
%s`

// Generate produces the reply. outcome is nil for general questions.
func (g *Generator) Generate(ctx context.Context, text string, window domain.ConversationWindow, outcome *domain.RetrievalOutcome) (*Answer, error) {
	system, err := systemPrompt(outcome)
	if err != nil {
		return nil, err
	}

	messages := []llm.ChatMessage{{Role: llm.RoleSystem, Content: system}}
	for t := range window.Turns() {
		messages = append(messages,
			llm.ChatMessage{Role: llm.RoleUser, Content: t.UserMessage},
			llm.ChatMessage{Role: llm.RoleAssistant, Content: t.AssistantResponse},
		)
	}
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: text})

	resp, err := g.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: llm.Float64(0),
	})
	if err != nil {
		return nil, err
	}

	reply := strings.TrimSpace(resp.Content())
	if reply == "" {
		return nil, fmt.Errorf("model returned an empty reply")
	}

	ans := &Answer{Text: reply}
	switch {
	case resp.Usage != nil && resp.Usage.TotalTokens > 0:
		ans.TokensUsed = resp.Usage.TotalTokens
	case g.counter != nil:
		texts := make([]string, 0, len(messages)+1)
		for _, m := range messages {
			texts = append(texts, m.Content)
		}
		ans.TokensUsed = g.counter.Count(append(texts, reply)...)
		ans.Estimated = true
	}
	return ans, nil
}

func systemPrompt(outcome *domain.RetrievalOutcome) (string, error) {
	if outcome == nil {
		return generalPrompt, nil
	}
	payload, err := json.MarshalIndent(outcome.Records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode context: %w", err)
	}
	return fmt.Sprintf(sourcePrompt, strings.ToUpper(string(outcome.Source)), outcome.RecordCount, payload), nil
}
