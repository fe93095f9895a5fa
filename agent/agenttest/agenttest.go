// Package agenttest 提供 agent 测试使用的模型与检索替身
package agenttest

import (
	"context"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"
)

// ChatModel 按系统提示词中的关键字返回预设回复
type ChatModel struct {
	// Replies 系统提示词关键字 -> 回复内容
	Replies map[string]string
	// Default 未命中任何关键字时的回复
	Default string
	// Errs 系统提示词关键字 -> 返回的错误
	Errs map[string]error

	mu    sync.Mutex
	calls [][]*schema.Message
}

// Generate 实现 model.BaseChatModel
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, input)
	m.mu.Unlock()

	sys := ""
	if len(input) > 0 && input[0].Role == schema.System {
		sys = input[0].Content
	}
	for key, err := range m.Errs {
		if strings.Contains(sys, key) {
			return nil, err
		}
	}
	for key, reply := range m.Replies {
		if strings.Contains(sys, key) {
			return schema.AssistantMessage(reply, nil), nil
		}
	}
	return schema.AssistantMessage(m.Default, nil), nil
}

// Stream 实现 model.BaseChatModel
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls 返回所有调用的输入
func (m *ChatModel) Calls() [][]*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]*schema.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// Retriever 返回固定文档的检索替身
type Retriever struct {
	Docs []*schema.Document
	Err  error

	mu      sync.Mutex
	queries []string
	options []*retriever.Options
}

// Retrieve 实现 retriever.Retriever
func (r *Retriever) Retrieve(ctx context.Context, query string, opts ...retriever.Option) ([]*schema.Document, error) {
	r.mu.Lock()
	r.queries = append(r.queries, query)
	r.options = append(r.options, retriever.GetCommonOptions(&retriever.Options{}, opts...))
	r.mu.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	return r.Docs, nil
}

// Queries 返回所有检索请求
func (r *Retriever) Queries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

// Options 返回所有检索请求的通用参数
func (r *Retriever) Options() []*retriever.Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*retriever.Options(nil), r.options...)
}

// Doc 构造带 source 元数据的文档
func Doc(source, content string) *schema.Document {
	return &schema.Document{
		ID:       source,
		Content:  content,
		MetaData: map[string]any{"source": source},
	}
}

// Embedder 以词表中每个词的出现次数作为向量
type Embedder struct {
	Vocabulary []string
	Err        error
}

// DefaultVocabulary 覆盖内置设备文档的词表
var DefaultVocabulary = []string{"pump", "compressor", "turbine", "vibration", "bearing"}

// EmbedStrings 实现 embedding.Embedder
func (e *Embedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	vocabulary := e.Vocabulary
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		lower := strings.ToLower(text)
		vec := make([]float64, len(vocabulary))
		for i, word := range vocabulary {
			vec[i] = float64(strings.Count(lower, word))
		}
		out = append(out, vec)
	}
	return out, nil
}
