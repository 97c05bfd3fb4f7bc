package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// AnthropicProvider serves Claude models through the Eino claude adapter.
type AnthropicProvider struct {
	apiKey    string
	baseURL   string
	maxTokens int
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(apiKey, baseURL string, maxTokens int) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, &types.ConfigurationError{Field: "providers.anthropic.apiKey", Msg: "missing API key"}
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &AnthropicProvider{apiKey: apiKey, baseURL: baseURL, maxTokens: maxTokens}, nil
}

func (p *AnthropicProvider) ID() string { return "anthropic" }

// StreamChat issues one streaming completion against the Claude API.
func (p *AnthropicProvider) StreamChat(ctx context.Context, req *Request) (Stream, error) {
	cfg := &claude.Config{
		APIKey:    p.apiKey,
		Model:     req.Model,
		MaxTokens: p.maxTokens,
	}
	if req.MaxTokens > 0 {
		cfg.MaxTokens = req.MaxTokens
	}
	if p.baseURL != "" {
		cfg.BaseURL = &p.baseURL
	}

	chatModel, err := claude.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Claude model: %w", err)
	}

	reader, err := chatModel.Stream(ctx, req.Messages,
		model.WithTemperature(float32(req.Temperature)),
	)
	if err != nil {
		return nil, &types.TransportError{Err: err}
	}
	return newEinoStream(reader), nil
}
