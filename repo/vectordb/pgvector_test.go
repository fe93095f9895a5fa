package vectordb

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildam/indus-flow-go/entity/conf"
)

func newMockStore(t *testing.T, ensureIndex bool) (Store, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS vector")).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "industrial_docs"`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	if ensureIndex {
		mock.ExpectExec(regexp.QuoteMeta(`CREATE INDEX IF NOT EXISTS "industrial_docs_embedding_idx"`)).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	store, err := NewPGVectorStoreWithPool(context.Background(), mock, conf.VectorDBConfig{
		Table:       "industrial_docs",
		Dimension:   2,
		EnsureIndex: ensureIndex,
	})
	require.NoError(t, err)
	return store, mock
}

func TestPGVectorSchema(t *testing.T) {
	_, mock := newMockStore(t, true)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVectorSchemaError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE EXTENSION").WillReturnError(errors.New("permission denied"))
	_, err = NewPGVectorStoreWithPool(context.Background(), mock, conf.VectorDBConfig{Dimension: 2})
	assert.ErrorContains(t, err, "enable extension")

	_, err = NewPGVectorStoreWithPool(context.Background(), mock, conf.VectorDBConfig{})
	assert.Error(t, err, "dimension must be positive")
}

func TestPGVectorUpsert(t *testing.T) {
	store, mock := newMockStore(t, false)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO \"industrial_docs\"").
		WithArgs("doc-1", pgxmock.AnyArg(), "pump text", []byte(`{"source":"PUMP-007_manual"}`), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.Upsert(context.Background(), []Record{{
		ID:        "doc-1",
		Text:      "pump text",
		Embedding: []float32{0.1, 0.2},
		Metadata:  map[string]any{"source": "PUMP-007_manual"},
	}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVectorUpsertDimensionMismatch(t *testing.T) {
	store, mock := newMockStore(t, false)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.Upsert(context.Background(), []Record{{ID: "doc-1", Embedding: []float32{0.1}}})
	assert.ErrorContains(t, err, "dimension mismatch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVectorSearch(t *testing.T) {
	store, mock := newMockStore(t, false)

	rows := mock.NewRows([]string{"id", "document", "metadata", "score"}).
		AddRow("doc-1", "pump text", []byte(`{"source":"PUMP-007_manual","equipment_id":"PUMP-007"}`), 0.92).
		AddRow("doc-2", "guide", []byte(nil), 0.41)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, document, metadata, 1 - (embedding <=> $1) AS score FROM "industrial_docs" WHERE 1=1 AND metadata ->> $2 = $3 ORDER BY embedding <=> $1 ASC LIMIT $4`)).
		WithArgs(pgxmock.AnyArg(), "equipment_id", "PUMP-007", 3).
		WillReturnRows(rows)

	matches, err := store.Search(context.Background(), []float32{1, 0}, SearchOptions{
		TopK:    3,
		Filters: map[string]string{"equipment_id": "PUMP-007"},
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "doc-1", matches[0].ID)
	assert.Equal(t, "PUMP-007_manual", matches[0].Metadata["source"])
	assert.InDelta(t, 0.92, matches[0].Score, 1e-9)
	assert.Empty(t, matches[1].Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGVectorSearchErrors(t *testing.T) {
	store, mock := newMockStore(t, false)

	_, err := store.Search(context.Background(), []float32{1}, SearchOptions{})
	assert.ErrorContains(t, err, "dimension mismatch")

	mock.ExpectQuery("SELECT id").WillReturnError(errors.New("connection reset"))
	_, err = store.Search(context.Background(), []float32{1, 0}, SearchOptions{})
	assert.ErrorContains(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
