package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// generator is the part of an eino chat model the ark client needs.
type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ArkClient serves chat completions through a Volcengine Ark model via eino.
type ArkClient struct {
	model generator
	name  string
}

// Ensure ArkClient implements LLMClient interface.
var _ LLMClient = (*ArkClient)(nil)

// ArkConfig configures the Ark chat model.
type ArkConfig struct {
	BaseURL string
	Region  string
	APIKey  string
	Model   string
}

// NewArkClient builds an eino ark chat model.
func NewArkClient(ctx context.Context, cfg ArkConfig) (*ArkClient, error) {
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Region:  cfg.Region,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ark chat model: %w", err)
	}
	return &ArkClient{model: chatModel, name: cfg.Model}, nil
}

// CreateChatCompletion maps the request onto eino messages and back.
func (c *ArkClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	messages := make([]*schema.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, schema.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, schema.AssistantMessage(m.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(m.Content))
		}
	}

	var opts []model.Option
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(float32(*req.Temperature)))
	}
	if req.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*req.MaxTokens))
	}

	out, err := c.model.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("ark generation failed: %w", err)
	}

	resp := &ChatCompletionResponse{
		Object: "chat.completion",
		Model:  c.name,
		Choices: []Choice{{
			Message: &ChatMessage{Role: RoleAssistant, Content: out.Content},
		}},
	}
	if out.ResponseMeta != nil {
		resp.Choices[0].FinishReason = out.ResponseMeta.FinishReason
		if u := out.ResponseMeta.Usage; u != nil {
			resp.Usage = &Usage{
				PromptTokens:     u.PromptTokens,
				CompletionTokens: u.CompletionTokens,
				TotalTokens:      u.TotalTokens,
			}
		}
	}
	return resp, nil
}
