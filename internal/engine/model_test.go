package engine

import (
	"context"
	"testing"
)

func TestNewChatModelRejectsInvalidConfig(t *testing.T) {
	ctx := context.Background()

	if _, err := NewChatModel(ctx, ModelConfig{Provider: "deepseek", Model: "deepseek-chat"}); err == nil {
		t.Error("expected error for missing API key")
	}
	if _, err := NewChatModel(ctx, ModelConfig{Provider: "deepseek", APIKey: "sk-test"}); err == nil {
		t.Error("expected error for missing model name")
	}
	if _, err := NewChatModel(ctx, ModelConfig{Provider: "anthropic", APIKey: "sk-test", Model: "m"}); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
