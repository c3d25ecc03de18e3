package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/adapter/llm"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// Disambiguator picks one label for a message the keyword stage could not settle.
type Disambiguator interface {
	Disambiguate(ctx context.Context, text string, window domain.ConversationWindow, categories []domain.Category) (string, error)
}

// LLMDisambiguator asks a chat model for the label.
type LLMDisambiguator struct {
	client llm.LLMClient
	model  string
}

// NewLLMDisambiguator creates an LLM-backed disambiguator.
func NewLLMDisambiguator(client llm.LLMClient, model string) *LLMDisambiguator {
	return &LLMDisambiguator{client: client, model: model}
}

var categoryHints = map[domain.Category]string{
	domain.CategoryCRM:     "leads, campaigns, trainers, learners, courses, tasks, notes, activities",
	domain.CategoryLMS:     "training batches and schedules",
	domain.CategoryRMS:     "candidates, job openings, interviews, hiring companies",
	domain.CategoryRAG:     "policies, manuals, documents, the knowledge base",
	domain.CategoryGeneral: "greetings, small talk, off-topic or unclear requests",
}

// Disambiguate returns the raw label produced by the model.
func (d *LLMDisambiguator) Disambiguate(ctx context.Context, text string, window domain.ConversationWindow, categories []domain.Category) (string, error) {
	var sb strings.Builder
	sb.WriteString("You route admin questions for an education company to a data source.\nCategories:\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "- %s: %s\n", c, categoryHints[c])
	}
	sb.WriteString("Use the recent conversation only to resolve follow-up questions. ")
	sb.WriteString(llm.ClassifierMarker)

	messages := []llm.ChatMessage{{Role: llm.RoleSystem, Content: sb.String()}}
	for t := range window.Turns() {
		messages = append(messages,
			llm.ChatMessage{Role: llm.RoleUser, Content: t.UserMessage},
			llm.ChatMessage{Role: llm.RoleAssistant, Content: t.AssistantResponse},
		)
	}
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: text})

	resp, err := d.client.CreateChatCompletion(ctx, &llm.ChatCompletionRequest{
		Model:       d.model,
		Messages:    messages,
		Temperature: llm.Float64(0),
		MaxTokens:   llm.Int(5),
	})
	if err != nil {
		return "", err
	}
	return resp.Content(), nil
}
