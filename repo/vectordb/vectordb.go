package vectordb

import (
	"context"
	"fmt"

	"github.com/hildam/indus-flow-go/entity/conf"
)

// 支持的向量库
const (
	ProviderMemory   = "memory"
	ProviderPGVector = "pgvector"
)

// Record 写入向量库的文档片段
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]any
}

// SearchOptions 相似度检索参数
type SearchOptions struct {
	TopK    int
	Filters map[string]string // 元数据等值过滤
}

// Match 检索结果，Score 为余弦相似度
type Match struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]any
}

// Store 向量库
type Store interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]Match, error)
	Close(ctx context.Context) error
}

// defaultTopK 未指定 TopK 时返回的数量
const defaultTopK = 5

// New 根据配置创建向量库
func New(ctx context.Context, cfg conf.VectorDBConfig) (Store, error) {
	switch cfg.Provider {
	case "", ProviderMemory:
		return NewMemoryStore(), nil
	case ProviderPGVector:
		return NewPGVectorStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported vector_db provider %q", cfg.Provider)
	}
}
