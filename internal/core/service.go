package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/ceap/internal/importer"
	"github.com/JonMunkholm/ceap/internal/logging"
	"github.com/JonMunkholm/ceap/internal/metrics"
)

// ErrFileTooLarge is returned for uploads above Options.MaxFileSize.
var ErrFileTooLarge = errors.New("file too large")

// ErrUploadInterrupted marks a stream that ended early because the client
// went away, as opposed to a file that is itself malformed.
var ErrUploadInterrupted = errors.New("upload interrupted")

// TxRunner opens a transaction, hands fn a Store bound to it and commits
// only if fn returns nil.
type TxRunner interface {
	InTx(ctx context.Context, fn func(importer.Store) error) error
}

// Options tunes the import service. Zero values select defaults.
type Options struct {
	BatchSize     int
	MaxFileSize   int64
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
}

// Service runs CEAP imports, one transaction per import.
type Service struct {
	runner  TxRunner
	limiter *ImportLimiter
	metrics *metrics.Metrics
	opts    Options
}

// NewService creates a Service. A nil m records metrics into a private
// registry.
func NewService(runner TxRunner, m *metrics.Metrics, opts Options) *Service {
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = importer.DefaultBatchSize
	}
	return &Service{
		runner:  runner,
		limiter: NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		metrics: m,
		opts:    opts,
	}
}

// ImportResult describes a committed import.
type ImportResult struct {
	ImportID           string        `json:"import_id"`
	FileName           string        `json:"file_name,omitempty"`
	Rows               int           `json:"rows"`
	RowsSkipped        int           `json:"rows_skipped"`
	RegistrantsCreated int           `json:"registrants_created"`
	ExpensesInserted   int           `json:"expenses_inserted"`
	Batches            int           `json:"batches"`
	BytesRead          int64         `json:"bytes_read"`
	Duration           time.Duration `json:"duration_ns"`
}

// Import reads a CEAP export from r and stores it atomically: either every
// registrant and expense in the file is committed, or nothing is. size is
// the expected byte count, or zero when unknown.
//
// Returns ErrTooManyImports when no import slot frees up in time.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader, size int64) (*ImportResult, error) {
	if s.opts.MaxFileSize > 0 && size > s.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, s.opts.MaxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	s.metrics.ImportsInFlight.Inc()
	defer s.metrics.ImportsInFlight.Dec()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	importID := uuid.New().String()
	fields := append([]any{"import_id", importID, "file_name", fileName}, SourceFromContext(ctx).logArgs()...)
	logger := logging.WithFields(ctx, fields...)
	logger.Info("import started", "bytes_total", size)

	stream := importer.WrapForStreaming(r, size)

	var summary importer.Summary
	err := s.runner.InTx(ctx, func(store importer.Store) error {
		var runErr error
		summary, runErr = importer.Run(ctx, store, stream,
			importer.WithBatchSize(s.opts.BatchSize),
			importer.WithLogger(logger),
		)
		return runErr
	})
	if err != nil {
		outcome := metrics.OutcomeFailed
		switch {
		case errors.Is(err, ErrUploadInterrupted):
			outcome = metrics.OutcomeAborted
		case IsRejected(err):
			outcome = metrics.OutcomeRejected
		}
		s.metrics.ObserveImport(outcome, start)
		logger.Warn("import rolled back",
			"outcome", outcome,
			"state", summary.State.String(),
			"rows", summary.Rows,
			"line", ErrorLine(err),
			"error", err,
		)
		return nil, err
	}

	s.metrics.ObserveImport(metrics.OutcomeSuccess, start)
	s.metrics.AddCommitted(summary.RegistrantsCreated, summary.ExpensesInserted, summary.Skipped())

	result := &ImportResult{
		ImportID:           importID,
		FileName:           fileName,
		Rows:               summary.Rows,
		RowsSkipped:        summary.Skipped(),
		RegistrantsCreated: summary.RegistrantsCreated,
		ExpensesInserted:   summary.ExpensesInserted,
		Batches:            summary.Batches,
		BytesRead:          stream.BytesRead(),
		Duration:           time.Since(start),
	}
	logger.Info("import committed",
		"registrants_created", result.RegistrantsCreated,
		"expenses_inserted", result.ExpensesInserted,
		"rows_skipped", result.RowsSkipped,
		"duration", result.Duration,
	)
	return result, nil
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx is done.
// Call it during shutdown, after the HTTP server stops accepting requests.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
