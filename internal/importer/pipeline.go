package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
)

// Delimiter is the field separator of CEAP files.
const Delimiter = ';'

// State is a stage of a pipeline run.
type State int

const (
	StateStart State = iota
	StateReadingHeader
	StateStreamingRows
	StateFlushing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateReadingHeader:
		return "reading_header"
	case StateStreamingRows:
		return "streaming_rows"
	case StateFlushing:
		return "flushing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Summary describes what a run did. On failure the counts reflect progress
// up to the failing row; the caller's rollback discards the writes.
type Summary struct {
	State              State
	Rows               int // data rows read, header excluded
	Excluded           int // rows flagged out of scope
	MissingID          int // rows without a CPF
	RegistrantsCreated int
	RegistrantsSeen    int // distinct CPFs resolved
	ExpensesInserted   int
	Batches            int
}

// Skipped returns the number of rows dropped without error.
func (s Summary) Skipped() int { return s.Excluded + s.MissingID }

type options struct {
	batchSize int
	logger    *slog.Logger
}

// Option configures a run.
type Option func(*options)

// WithBatchSize sets the bulk insert chunk size.
func WithBatchSize(n int) Option {
	return func(o *options) { o.batchSize = n }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type pipeline struct {
	state    State
	logger   *slog.Logger
	resolver *Resolver
	writer   *BatchWriter
	summary  Summary
}

// Run imports the CEAP stream r through store. The first row must be the
// header. Any error aborts the run immediately; nothing is rolled back here,
// so store must be bound to a transaction the caller commits only when Run
// returns nil.
func Run(ctx context.Context, store Store, r io.Reader, opts ...Option) (Summary, error) {
	o := options{batchSize: DefaultBatchSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &pipeline{
		state:    StateStart,
		logger:   o.logger,
		resolver: NewResolver(store, o.logger),
		writer:   NewBatchWriter(store, o.batchSize),
	}
	err := p.run(ctx, r)
	p.summary.State = p.state
	return p.summary, err
}

func (p *pipeline) run(ctx context.Context, r io.Reader) error {
	p.state = StateReadingHeader

	cr := csv.NewReader(LiteralQuotes(r))
	cr.Comma = Delimiter
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	columns, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrEmptyStream
		}
		return p.fail(&HeaderError{Err: err})
	}
	header := NewHeader(columns)

	p.state = StateStreamingRows
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.fail(rowReadError(err))
		}

		line, _ := cr.FieldPos(0)
		p.summary.Rows++
		if err := p.processRow(ctx, header, line, fields); err != nil {
			return p.fail(err)
		}
	}

	p.state = StateFlushing
	if err := p.writer.Flush(ctx); err != nil {
		return p.fail(err)
	}

	p.state = StateDone
	p.collect()
	p.logger.Info("import finished",
		"rows", p.summary.Rows,
		"skipped", p.summary.Skipped(),
		"registrants_created", p.summary.RegistrantsCreated,
		"expenses_inserted", p.summary.ExpensesInserted,
		"batches", p.summary.Batches,
	)
	return nil
}

func (p *pipeline) processRow(ctx context.Context, header Header, line int, fields []string) error {
	rec, err := header.NewRecord(line, fields)
	if err != nil {
		return err
	}

	if rec.Excluded() {
		p.summary.Excluded++
		return nil
	}
	if _, ok := rec.NationalID(); !ok {
		p.summary.MissingID++
		return nil
	}

	id, created, err := p.resolver.Resolve(ctx, rec)
	if err != nil {
		return err
	}
	if created {
		p.summary.RegistrantsCreated++
	}

	expense, err := DecodeExpense(rec, id)
	if err != nil {
		return err
	}
	return p.writer.Add(ctx, expense)
}

func (p *pipeline) fail(err error) error {
	p.logger.Debug("import aborted", "state", p.state.String(), "rows", p.summary.Rows, "error", err)
	p.state = StateFailed
	p.collect()
	return err
}

func (p *pipeline) collect() {
	p.summary.RegistrantsSeen = p.resolver.Len()
	p.summary.ExpensesInserted = p.writer.Written()
	p.summary.Batches = p.writer.Batches()
}

// rowReadError converts a csv reader failure into a line-numbered
// MalformedRecordError.
func rowReadError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &MalformedRecordError{Line: pe.Line, Err: pe.Err}
	}
	return &MalformedRecordError{Err: err}
}
