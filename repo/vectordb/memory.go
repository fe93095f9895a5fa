package vectordb

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// memoryStore 进程内向量库，按写入顺序保存
type memoryStore struct {
	mu      sync.RWMutex
	records []Record
	index   map[string]int
}

// NewMemoryStore 创建内存向量库
func NewMemoryStore() Store {
	return &memoryStore{index: make(map[string]int)}
}

func (m *memoryStore) Upsert(ctx context.Context, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("memory: record id is empty")
		}
		rec.Embedding = append([]float32(nil), rec.Embedding...)
		if i, ok := m.index[rec.ID]; ok {
			m.records[i] = rec
			continue
		}
		m.index[rec.ID] = len(m.records)
		m.records = append(m.records, rec)
	}
	return nil
}

// Search 相似度相同时保持写入顺序
func (m *memoryStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]Match, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]Match, 0, len(m.records))
	for _, rec := range m.records {
		if !matchFilters(rec.Metadata, opts.Filters) {
			continue
		}
		matches = append(matches, Match{
			ID:       rec.ID,
			Score:    cosine(query, rec.Embedding),
			Text:     rec.Text,
			Metadata: rec.Metadata,
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *memoryStore) Close(ctx context.Context) error {
	return nil
}

func matchFilters(metadata map[string]any, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := metadata[key]
		if !ok || fmt.Sprint(got) != want {
			return false
		}
	}
	return true
}

// cosine 维度不一致或零向量时返回 0
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
