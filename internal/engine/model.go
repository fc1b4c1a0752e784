package engine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/go-playground/validator/v10"
)

// ModelConfig selects and configures the chat model backing the engine.
type ModelConfig struct {
	Provider  string `json:"provider" validate:"oneof=openai deepseek"`
	BaseURL   string `json:"base_url"`
	APIKey    string `json:"api_key" validate:"required"`
	Model     string `json:"model" validate:"required"`
	MaxTokens int    `json:"max_tokens"`
}

// NewChatModel builds the configured eino chat model.
func NewChatModel(ctx context.Context, cfg ModelConfig) (model.BaseChatModel, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid model configuration: %w", err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	switch cfg.Provider {
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: maxTokens,
		})
	case "openai":
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: &maxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
