package infra

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"

	"github.com/hildam/indus-flow-go/agent"
	"github.com/hildam/indus-flow-go/entity/conf"
	"github.com/hildam/indus-flow-go/repo/callback"
	"github.com/hildam/indus-flow-go/repo/checkpoint"
	"github.com/hildam/indus-flow-go/repo/data"
	"github.com/hildam/indus-flow-go/repo/llm"
	"github.com/hildam/indus-flow-go/repo/rag"
	"github.com/hildam/indus-flow-go/repo/vectordb"
)

// Infra 进程级依赖容器，由 New 一次性构建后按指针传递
type Infra struct {
	Config       *conf.AppConfig
	ChatModel    model.BaseChatModel
	Embedder     embedding.Embedder
	VectorStore  vectordb.Store
	Pipeline     *rag.Pipeline
	Data         *data.Service
	Checkpoint   checkpoint.Store
	Orchestrator *agent.Orchestrator
}

// Option 容器选项
type Option func(o *options)

type options struct {
	chatModel model.BaseChatModel
	embedder  embedding.Embedder
	dataOpts  []data.Option
}

// WithChatModel 使用指定的对话模型，不再按配置创建
func WithChatModel(m model.BaseChatModel) Option {
	return func(o *options) {
		o.chatModel = m
	}
}

// WithEmbedder 使用指定的向量模型，不再按配置创建
func WithEmbedder(e embedding.Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}

// WithDataOptions 设置设备数据服务选项
func WithDataOptions(opts ...data.Option) Option {
	return func(o *options) {
		o.dataOpts = append(o.dataOpts, opts...)
	}
}

// New 按配置构建全部依赖，任一环节失败时释放已创建的资源
func New(ctx context.Context, cfg *conf.AppConfig, opts ...Option) (_ *Infra, err error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	in := &Infra{Config: cfg}
	defer func() {
		if err != nil {
			_ = in.Close(ctx)
		}
	}()

	if in.ChatModel = o.chatModel; in.ChatModel == nil {
		if in.ChatModel, err = llm.NewChatModel(ctx, cfg.Model.DefaultModel); err != nil {
			return nil, fmt.Errorf("init chat model: %w", err)
		}
	}
	if in.Embedder = o.embedder; in.Embedder == nil {
		if in.Embedder, err = llm.NewEmbedder(ctx, cfg.Model.Embedding); err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
	}

	if in.VectorStore, err = vectordb.New(ctx, cfg.VectorDB); err != nil {
		return nil, fmt.Errorf("init vector store: %w", err)
	}
	in.Pipeline = rag.NewPipeline(in.Embedder, in.VectorStore)
	if cfg.VectorDB.SeedOnStart {
		if _, err = in.Seed(ctx); err != nil {
			return nil, err
		}
	}

	if in.Data, err = data.Open(ctx, cfg.Data, o.dataOpts...); err != nil {
		return nil, fmt.Errorf("init data service: %w", err)
	}
	if in.Checkpoint, err = checkpoint.New(ctx, cfg.Checkpoint); err != nil {
		return nil, fmt.Errorf("init checkpoint: %w", err)
	}

	if in.Orchestrator, err = agent.NewOrchestrator(in.ChatModel, in.Pipeline,
		agent.WithCheckpoint(in.Checkpoint),
		agent.WithCallbacks(callback.NewMetricsCallback()),
		agent.WithMaxLimitToken(cfg.Setting.MaxLimitToken),
	); err != nil {
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}

	slog.Info("infra.New info, vector_db = %s, checkpoint = %s", cfg.VectorDB.Provider, cfg.Checkpoint.Provider)
	return in, nil
}

// Once 返回只构建一次容器的函数，并发调用得到同一个结果
func Once(ctx context.Context, cfg *conf.AppConfig, opts ...Option) func() (*Infra, error) {
	return sync.OnceValues(func() (*Infra, error) {
		return New(ctx, cfg, opts...)
	})
}

// Seed 写入内置的设备文档，返回写入的分块数
func (in *Infra) Seed(ctx context.Context) (int, error) {
	return SeedPipeline(ctx, in.Pipeline)
}

// SeedPipeline 向检索管道写入内置的设备文档
func SeedPipeline(ctx context.Context, p *rag.Pipeline) (int, error) {
	docs, err := rag.SeedDocuments()
	if err != nil {
		return 0, fmt.Errorf("load seed documents: %w", err)
	}
	n, err := p.AddDocuments(ctx, docs)
	if err != nil {
		slog.Error("SeedPipeline failed, add documents fail, err = %v", err)
		return 0, fmt.Errorf("seed documents: %w", err)
	}
	slog.Info("SeedPipeline info, documents = %d, chunks = %d", len(docs), n)
	return n, nil
}

// Close 释放数据库连接
func (in *Infra) Close(ctx context.Context) error {
	var errs []error
	if in.Pipeline != nil {
		errs = append(errs, in.Pipeline.Close(ctx))
	} else if in.VectorStore != nil {
		errs = append(errs, in.VectorStore.Close(ctx))
	}
	if in.Data != nil {
		errs = append(errs, in.Data.Close())
	}
	return errors.Join(errs...)
}
