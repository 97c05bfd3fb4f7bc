package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// OpenAIProvider serves OpenAI-compatible models through the Eino openai
// adapter. A custom base URL makes it work against compatible backends.
type OpenAIProvider struct {
	apiKey    string
	baseURL   string
	maxTokens int
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(apiKey, baseURL string, maxTokens int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, &types.ConfigurationError{Field: "providers.openai.apiKey", Msg: "missing API key"}
	}
	if maxTokens <= 0 {
		maxTokens = 8192
	}
	return &OpenAIProvider{apiKey: apiKey, baseURL: baseURL, maxTokens: maxTokens}, nil
}

func (p *OpenAIProvider) ID() string { return "openai" }

// StreamChat issues one streaming completion against the OpenAI API.
func (p *OpenAIProvider) StreamChat(ctx context.Context, req *Request) (Stream, error) {
	maxTokens := p.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	cfg := &openai.ChatModelConfig{
		APIKey:              p.apiKey,
		Model:               req.Model,
		MaxCompletionTokens: &maxTokens,
	}
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}

	reader, err := chatModel.Stream(ctx, req.Messages,
		model.WithTemperature(float32(req.Temperature)),
	)
	if err != nil {
		return nil, &types.TransportError{Err: err}
	}
	return newEinoStream(reader), nil
}
