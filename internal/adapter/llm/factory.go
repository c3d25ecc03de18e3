package llm

import (
	"context"
	"fmt"
	"time"
)

// Providers accepted by NewLLMClient.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
	ProviderMock   = "mock"
)

// Options selects and configures an LLM backend.
type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Region   string
	Timeout  time.Duration
}

// NewLLMClient creates the client for opts.Provider. Empty means openai.
func NewLLMClient(ctx context.Context, opts Options) (LLMClient, error) {
	switch opts.Provider {
	case ProviderMock:
		return NewMockClient(), nil
	case ProviderArk:
		client, err := NewArkClient(ctx, ArkConfig{
			BaseURL: opts.BaseURL,
			Region:  opts.Region,
			APIKey:  opts.APIKey,
			Model:   opts.Model,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case ProviderOpenAI, "":
		return NewClient(opts.BaseURL, opts.APIKey, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", opts.Provider)
	}
}
