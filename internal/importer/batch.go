package importer

import "context"

// DefaultBatchSize is the number of expenses written per bulk insert.
const DefaultBatchSize = 10000

// BatchWriter buffers expenses and writes them in fixed-size chunks.
// Not safe for concurrent use.
type BatchWriter struct {
	store    Store
	capacity int
	pending  []Expense

	written int
	batches int
}

// NewBatchWriter returns a writer that flushes every capacity expenses.
// A non-positive capacity selects DefaultBatchSize.
func NewBatchWriter(store Store, capacity int) *BatchWriter {
	if capacity <= 0 {
		capacity = DefaultBatchSize
	}
	return &BatchWriter{
		store:    store,
		capacity: capacity,
		pending:  make([]Expense, 0, capacity),
	}
}

// Add buffers e and writes the batch as soon as it is full.
func (w *BatchWriter) Add(ctx context.Context, e Expense) error {
	w.pending = append(w.pending, e)
	if len(w.pending) < w.capacity {
		return nil
	}
	return w.Flush(ctx)
}

// Flush writes any buffered expenses as one bulk insert. Flushing an empty
// batch is a no-op. A failed batch is dropped, not retried.
func (w *BatchWriter) Flush(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}

	batch := w.pending
	w.pending = make([]Expense, 0, w.capacity)

	if err := w.store.BulkInsertExpenses(ctx, batch); err != nil {
		return persistenceErr("bulk insert expenses", err)
	}

	w.written += len(batch)
	w.batches++
	return nil
}

// Pending returns the number of buffered, unwritten expenses.
func (w *BatchWriter) Pending() int { return len(w.pending) }

// Written returns the number of expenses persisted so far.
func (w *BatchWriter) Written() int { return w.written }

// Batches returns the number of successful bulk inserts.
func (w *BatchWriter) Batches() int { return w.batches }
