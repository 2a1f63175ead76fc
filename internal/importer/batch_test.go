package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ceap/internal/importer"
	"github.com/JonMunkholm/ceap/internal/importer/importertest"
)

func TestBatchWriter_FlushesAtCapacity(t *testing.T) {
	ctx := context.Background()
	store := importertest.NewMemStore()
	w := importer.NewBatchWriter(store, 3)

	for i := 0; i < 7; i++ {
		require.NoError(t, w.Add(ctx, importer.Expense{RegistrantID: int32(i)}))
	}
	assert.Equal(t, []int{3, 3}, store.BatchSizes)
	assert.Equal(t, 1, w.Pending())

	require.NoError(t, w.Flush(ctx))
	assert.Equal(t, []int{3, 3, 1}, store.BatchSizes)
	assert.Equal(t, 7, w.Written())
	assert.Equal(t, 3, w.Batches())

	for i, e := range store.Expenses {
		assert.Equal(t, int32(i), e.RegistrantID, "insertion order is preserved")
	}
}

func TestBatchWriter_EmptyFlushIsNoop(t *testing.T) {
	store := importertest.NewMemStore()
	w := importer.NewBatchWriter(store, 0)

	require.NoError(t, w.Flush(context.Background()))
	assert.Empty(t, store.BatchSizes)
	assert.Zero(t, w.Batches())
}

func TestBatchWriter_FailureDropsBatch(t *testing.T) {
	ctx := context.Background()
	store := importertest.NewMemStore()
	store.BulkErr = errors.New("disk full")
	w := importer.NewBatchWriter(store, 2)

	require.NoError(t, w.Add(ctx, importer.Expense{}))
	err := w.Add(ctx, importer.Expense{})

	var pe *importer.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bulk insert expenses", pe.Op)
	assert.Zero(t, w.Pending())
	assert.Zero(t, w.Written())
}
