package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/vectordb"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
	// defaultTopK 未指定数量时的检索条数
	defaultTopK = 5
	// contextTopK 拼接查询上下文时的检索条数
	contextTopK = 3
	// noDocsContext 没有检索到文档时的上下文
	noDocsContext = "No relevant documentation found."
)

// Pipeline 文档检索服务：切分、向量化、入库与相似度检索
type Pipeline struct {
	embedder embedding.Embedder
	store    vectordb.Store
	splitter textsplitter.TextSplitter
}

// NewPipeline 创建检索服务
func NewPipeline(embedder embedding.Embedder, store vectordb.Store) *Pipeline {
	return &Pipeline{
		embedder: embedder,
		store:    store,
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}
}

// AddDocuments 切分文档并写入向量库，返回写入的片段数
// 片段 ID 由来源和序号决定，重复写入同一文档会覆盖旧片段
func (p *Pipeline) AddDocuments(ctx context.Context, docs []model.SourceDocument) (int, error) {
	var (
		texts   []string
		records []vectordb.Record
	)
	for _, doc := range docs {
		chunks, err := p.splitter.SplitText(doc.Content)
		if err != nil {
			slog.Error("AddDocuments failed, split document fail, source = %s, err = %v", doc.Source, err)
			return 0, fmt.Errorf("split document %s: %w", doc.Source, err)
		}

		source := doc.Source
		if source == "" {
			source = consts.UnknownSource
		}
		for i, chunk := range chunks {
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			metadata := make(map[string]any, len(doc.Metadata)+1)
			for k, v := range doc.Metadata {
				metadata[k] = v
			}
			metadata[consts.MetaSource] = source

			texts = append(texts, chunk)
			records = append(records, vectordb.Record{
				ID:       chunkID(source, i),
				Text:     chunk,
				Metadata: metadata,
			})
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	vectors, err := p.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		slog.Error("AddDocuments failed, embed chunks fail, err = %v", err)
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(records) {
		return 0, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(records))
	}
	for i := range records {
		records[i].Embedding = toFloat32(vectors[i])
	}

	if err = p.store.Upsert(ctx, records); err != nil {
		slog.Error("AddDocuments failed, upsert records fail, err = %v", err)
		return 0, err
	}
	slog.Info("Added %d chunks from %d documents", len(records), len(docs))
	return len(records), nil
}

// Search 相似度检索，filter 为元数据等值过滤
func (p *Pipeline) Search(ctx context.Context, query string, k int, filter map[string]string) ([]model.Document, error) {
	matches, err := p.search(ctx, query, k, filter)
	if err != nil {
		return nil, err
	}
	return toDocuments(query, matches), nil
}

// SearchEquipmentDocs 检索指定设备的文档，equipmentID 为空时不过滤
func (p *Pipeline) SearchEquipmentDocs(ctx context.Context, query, equipmentID string, k int) ([]model.Document, error) {
	matches, err := p.searchEquipment(ctx, query, equipmentID, k)
	if err != nil {
		return nil, err
	}
	return toDocuments(query, matches), nil
}

func (p *Pipeline) searchEquipment(ctx context.Context, query, equipmentID string, k int) ([]vectordb.Match, error) {
	var filter map[string]string
	if equipmentID != "" {
		filter = map[string]string{consts.MetaEquipmentID: equipmentID}
	}
	return p.search(ctx, query, k, filter)
}

func toDocuments(query string, matches []vectordb.Match) []model.Document {
	docs := make([]model.Document, 0, len(matches))
	for _, m := range matches {
		docs = append(docs, model.Document{
			Content:  m.Text,
			Source:   sourceOf(m.Metadata),
			Metadata: m.Metadata,
		})
	}
	slog.Info("Retrieved %d results for query: %s...", len(docs), truncate(query, 50))
	return docs
}

// ContextForQuery 返回拼接好的文档上下文
func (p *Pipeline) ContextForQuery(ctx context.Context, query, equipmentID string) (string, error) {
	docs, err := p.SearchEquipmentDocs(ctx, query, equipmentID, contextTopK)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return noDocsContext, nil
	}

	parts := make([]string, 0, len(docs))
	for i, doc := range docs {
		parts = append(parts, fmt.Sprintf("Document %d (Source: %s):\n%s\n", i+1, doc.Source, doc.Content))
	}
	return strings.Join(parts, "\n"), nil
}

// Retrieve 实现 eino retriever.Retriever，DSLInfo 只支持按 equipment_id 过滤
func (p *Pipeline) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	topK := defaultTopK
	options := retriever.GetCommonOptions(&retriever.Options{TopK: &topK}, opts...)
	if options.TopK != nil {
		topK = *options.TopK
	}

	var equipmentID string
	for k, v := range options.DSLInfo {
		if k != consts.MetaEquipmentID {
			return nil, fmt.Errorf("unsupported filter key %q", k)
		}
		equipmentID = fmt.Sprint(v)
	}

	matches, err := p.searchEquipment(ctx, query, equipmentID, topK)
	if err != nil {
		return nil, err
	}
	docs := make([]*schema.Document, 0, len(matches))
	for _, m := range matches {
		doc := &schema.Document{ID: m.ID, Content: m.Text, MetaData: m.Metadata}
		docs = append(docs, doc.WithScore(m.Score))
	}
	return docs, nil
}

// Close 关闭向量库
func (p *Pipeline) Close(ctx context.Context) error {
	return p.store.Close(ctx)
}

func (p *Pipeline) search(ctx context.Context, query string, k int, filter map[string]string) ([]vectordb.Match, error) {
	if k <= 0 {
		k = defaultTopK
	}
	vectors, err := p.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		slog.Error("Search failed, embed query fail, err = %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	matches, err := p.store.Search(ctx, toFloat32(vectors[0]), vectordb.SearchOptions{TopK: k, Filters: filter})
	if err != nil {
		slog.Error("Search failed, vector search fail, err = %v", err)
		return nil, err
	}
	return matches, nil
}

func sourceOf(metadata map[string]any) string {
	if v, ok := metadata[consts.MetaSource]; ok {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return consts.UnknownSource
}

func chunkID(source string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s::%d", source, index)))
	return hex.EncodeToString(sum[:16])
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
