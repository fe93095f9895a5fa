package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildam/indus-flow-go/agent/agenttest"
	"github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/vectordb"
)

func seededPipeline(t *testing.T) (*Pipeline, int) {
	docs, err := SeedDocuments()
	require.NoError(t, err)

	p := NewPipeline(&agenttest.Embedder{}, vectordb.NewMemoryStore())
	n, err := p.AddDocuments(context.Background(), docs)
	require.NoError(t, err)
	return p, n
}

func TestSeedDocuments(t *testing.T) {
	docs, err := SeedDocuments()
	require.NoError(t, err)
	require.Len(t, docs, 5)

	assert.Equal(t, "COMP-001_Manual_v2.3.pdf", docs[0].Source)
	assert.Equal(t, "COMP-001", docs[0].Metadata["equipment_id"])
	assert.Contains(t, docs[2].Content, "Bearing Replacement Procedure")
	assert.NotContains(t, docs[3].Metadata, "equipment_id")
}

func TestAddDocumentsChunks(t *testing.T) {
	p, n := seededPipeline(t)
	assert.Greater(t, n, 5, "long manuals are split into several chunks")

	docs, err := p.Search(context.Background(), "pump", 1000, nil)
	require.NoError(t, err)
	assert.Len(t, docs, n)
	for _, doc := range docs {
		assert.LessOrEqual(t, len([]rune(doc.Content)), 1000)
		assert.NotEqual(t, "unknown", doc.Source)
		assert.Equal(t, doc.Source, doc.Metadata["source"])
	}

	// 重复写入覆盖已有片段
	seed, err := SeedDocuments()
	require.NoError(t, err)
	again, err := p.AddDocuments(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, n, again)
	docs, err = p.Search(context.Background(), "pump", 1000, nil)
	require.NoError(t, err)
	assert.Len(t, docs, n)
}

func TestAddDocumentsDefaults(t *testing.T) {
	p := NewPipeline(&agenttest.Embedder{}, vectordb.NewMemoryStore())

	n, err := p.AddDocuments(context.Background(), []model.SourceDocument{{Content: "pump notes"}, {Content: "   "}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	docs, err := p.Search(context.Background(), "pump", 3, nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "unknown", docs[0].Source)

	n, err = p.AddDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchEquipmentDocs(t *testing.T) {
	p, _ := seededPipeline(t)

	docs, err := p.SearchEquipmentDocs(context.Background(), "pump vibration bearing", "PUMP-007", 3)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	for _, doc := range docs {
		assert.Equal(t, "PUMP-007_Troubleshooting_Guide_v3.2.pdf", doc.Source)
		assert.Equal(t, "PUMP-007", doc.Metadata["equipment_id"])
	}

	docs, err = p.SearchEquipmentDocs(context.Background(), "vibration", "", 2)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = p.SearchEquipmentDocs(context.Background(), "vibration", "BOILER-404", 2)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestContextForQuery(t *testing.T) {
	p, _ := seededPipeline(t)

	text, err := p.ContextForQuery(context.Background(), "compressor", "COMP-001")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Document 1 (Source: COMP-001_Manual_v2.3.pdf):\n"), text)

	text, err = p.ContextForQuery(context.Background(), "compressor", "BOILER-404")
	require.NoError(t, err)
	assert.Equal(t, "No relevant documentation found.", text)
}

func TestRetrieve(t *testing.T) {
	p, _ := seededPipeline(t)

	docs, err := p.Retrieve(context.Background(), "turbine vibration",
		retriever.WithTopK(1),
		retriever.WithDSLInfo(map[string]any{"equipment_id": "TURB-003"}))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "TURB-003_Operations_Manual_v4.1.pdf", docs[0].MetaData["source"])
	assert.Greater(t, docs[0].Score(), 0.0)

	docs, err = p.Retrieve(context.Background(), "vibration")
	require.NoError(t, err)
	assert.Len(t, docs, 5, "defaults to five results")

	_, err = p.Retrieve(context.Background(), "vibration", retriever.WithDSLInfo(map[string]any{"source": "x"}))
	assert.ErrorContains(t, err, `unsupported filter key "source"`)
}

func TestRetrieveMatchesSearchEquipmentDocs(t *testing.T) {
	p, _ := seededPipeline(t)
	ctx := context.Background()

	for _, equipmentID := range []string{"PUMP-007", "", "BOILER-404"} {
		opts := []retriever.Option{retriever.WithTopK(3)}
		if equipmentID != "" {
			opts = append(opts, retriever.WithDSLInfo(map[string]any{"equipment_id": equipmentID}))
		}
		got, err := p.Retrieve(ctx, "pump vibration bearing", opts...)
		require.NoError(t, err)
		want, err := p.SearchEquipmentDocs(ctx, "pump vibration bearing", equipmentID, 3)
		require.NoError(t, err)

		var gotSources, wantSources []string
		for _, doc := range got {
			gotSources = append(gotSources, doc.Content+"|"+fmt.Sprint(doc.MetaData["source"]))
		}
		for _, doc := range want {
			wantSources = append(wantSources, doc.Content+"|"+doc.Source)
		}
		assert.ElementsMatch(t, wantSources, gotSources, "equipment_id = %q", equipmentID)
	}
}

func TestUpstreamErrors(t *testing.T) {
	boom := errors.New("embedding quota exceeded")
	p := NewPipeline(&agenttest.Embedder{Err: boom}, vectordb.NewMemoryStore())

	_, err := p.AddDocuments(context.Background(), []model.SourceDocument{{Content: "pump", Source: "a"}})
	assert.ErrorIs(t, err, boom)

	_, err = p.Search(context.Background(), "pump", 3, nil)
	assert.ErrorIs(t, err, boom)

	_, err = p.ContextForQuery(context.Background(), "pump", "")
	assert.ErrorIs(t, err, boom)

	_, err = p.Retrieve(context.Background(), "pump")
	assert.ErrorIs(t, err, boom)
}
