package llm

import (
	"context"
	"errors"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino-ext/components/model/openai"
	openai3 "github.com/cloudwego/eino-ext/libs/acl/openai"

	"github.com/hildam/indus-flow-go/entity/conf"
)

// NewChatModel 创建Chat模型
func NewChatModel(ctx context.Context, cfg conf.Model) (*openai.ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("chat model api key is empty")
	}

	temperature := cfg.Temperature
	llm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:       cfg.ModelID,
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Temperature: &temperature,
	})
	if err != nil {
		slog.Error("NewChatModel failed, model = %s, err = %v", cfg.ModelID, err)
		return nil, err
	}
	return llm, nil
}

// NewEmbedder 创建向量化模型
func NewEmbedder(ctx context.Context, cfg conf.EmbeddingConfig) (*openai3.EmbeddingClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("embedding api key is empty")
	}

	embedder, err := openai3.NewEmbeddingClient(ctx, &openai3.EmbeddingConfig{
		Model:   cfg.ModelID,
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
	})
	if err != nil {
		slog.Error("NewEmbedder failed, model = %s, err = %v", cfg.ModelID, err)
		return nil, err
	}
	return embedder, nil
}
