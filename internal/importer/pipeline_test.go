package importer_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ceap/internal/importer"
	"github.com/JonMunkholm/ceap/internal/importer/importertest"
)

var quiet = importer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

func run(t *testing.T, store importer.Store, input string, opts ...importer.Option) (importer.Summary, error) {
	t.Helper()
	return importer.Run(context.Background(), store, strings.NewReader(input), append([]importer.Option{quiet}, opts...)...)
}

func TestRun_SampleScenario(t *testing.T) {
	store := importertest.NewMemStore()

	summary, err := run(t, store, importertest.Sample)
	require.NoError(t, err)

	assert.Equal(t, importer.StateDone, summary.State)
	assert.Equal(t, 4, summary.Rows)
	assert.Equal(t, 1, summary.Excluded)
	assert.Equal(t, 2, summary.RegistrantsCreated)
	assert.Equal(t, 3, summary.ExpensesInserted)
	assert.Equal(t, 1, summary.Batches)

	require.Len(t, store.Registrants, 2)
	require.Len(t, store.Expenses, 3)

	jorge, ze := store.Registrants[0], store.Registrants[1]
	assert.Equal(t, "Jorge", jorge.Name)
	assert.Equal(t, "PB", jorge.Region)
	assert.Equal(t, importertest.SampleCPFJorge, jorge.NationalID)
	assert.False(t, jorge.Affiliation.Valid)
	assert.Equal(t, "Zé", ze.Name)
	assert.Equal(t, "RJ", ze.Region)

	assert.Equal(t, jorge.ID, store.Expenses[0].RegistrantID)
	assert.Equal(t, ze.ID, store.Expenses[1].RegistrantID)
	assert.Equal(t, store.Expenses[0].RegistrantID, store.Expenses[2].RegistrantID)

	first := store.Expenses[0]
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), first.Period.Time)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), store.Expenses[1].Period.Time)
	amount, err := first.Amount.Float64Value()
	require.NoError(t, err)
	assert.Equal(t, 1467.0, amount.Float64)
	assert.Equal(t, "Fornecedor", first.Vendor)
	assert.Equal(t, "https://test.url/0001.pdf", first.DocumentURL.String)
	assert.True(t, first.IssuedAt.Valid)
}

func TestRun_ExcludedRowsAreNeverResolved(t *testing.T) {
	store := importertest.NewMemStore()
	input := importertest.CSV(
		importertest.Row(map[string]string{"sgUF": "NA", "cpf": "not-a-cpf", "vlrLiquido": "garbage", "numMes": "99"}),
		importertest.Row(map[string]string{"sgUF": "NA", "cpf": importertest.SampleCPFZe}),
	)

	summary, err := run(t, store, input)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Excluded)
	assert.Empty(t, store.Finds)
	assert.Zero(t, store.Inserts)
	assert.Empty(t, store.Expenses)
	assert.Empty(t, store.BatchSizes)
}

func TestRun_RowsWithoutCPFAreSkipped(t *testing.T) {
	store := importertest.NewMemStore()
	input := importertest.CSV(
		importertest.Row(map[string]string{"cpf": ""}),
		importertest.Row(map[string]string{"cpf": "   "}),
		importertest.Row(nil),
	)

	summary, err := run(t, store, input)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.MissingID)
	assert.Equal(t, 2, summary.Skipped())
	assert.Equal(t, 1, summary.ExpensesInserted)
}

func TestRun_RepeatedCPFHitsStorageOnce(t *testing.T) {
	store := importertest.NewMemStore()
	rows := make([][]string, 0, 5)
	for i := 0; i < 5; i++ {
		rows = append(rows, importertest.Row(nil))
	}

	summary, err := run(t, store, importertest.CSV(rows...))
	require.NoError(t, err)

	assert.Equal(t, 1, store.Finds[importertest.SampleCPFJorge])
	assert.Equal(t, 1, store.Inserts)
	assert.Equal(t, 1, summary.RegistrantsCreated)
	assert.Equal(t, 1, summary.RegistrantsSeen)
	assert.Len(t, store.Expenses, 5)
}

func TestRun_ExistingRegistrantIsReused(t *testing.T) {
	store := importertest.NewMemStore()
	// Stored CPFs are trusted even if they would no longer validate.
	id := store.Seed(importer.NewRegistrant{Name: "Legado", Region: "SP", NationalID: "12345678900"})

	input := importertest.CSV(
		importertest.Row(map[string]string{"cpf": "12345678900"}),
		importertest.Row(map[string]string{"cpf": "12345678900"}),
	)

	summary, err := run(t, store, input)
	require.NoError(t, err)

	assert.Zero(t, summary.RegistrantsCreated)
	assert.Zero(t, store.Inserts)
	assert.Equal(t, 1, store.Finds["12345678900"])
	for _, e := range store.Expenses {
		assert.Equal(t, id, e.RegistrantID)
	}
}

func TestRun_InvalidCPFAborts(t *testing.T) {
	store := importertest.NewMemStore()
	input := importertest.CSV(
		importertest.Row(nil),
		importertest.Row(map[string]string{"cpf": importertest.SampleCPFZe}),
		importertest.Row(map[string]string{"cpf": "12345678900"}),
		importertest.Row(map[string]string{"cpf": "52998224725"}),
	)

	summary, err := run(t, store, input)
	require.Error(t, err)

	var invalid *importer.InvalidIdentifierError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 4, invalid.Line)
	assert.Equal(t, "12345678900", invalid.NationalID)

	assert.Equal(t, importer.StateFailed, summary.State)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, 2, store.Inserts)
	assert.Zero(t, store.Finds["52998224725"], "rows after the failure must not be processed")
	assert.Empty(t, store.BatchSizes, "partial batch must not be flushed after a failure")
}

func TestRun_MalformedRows(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLine  int
		wantField string
		wantErr   error
	}{
		{
			name:     "short row",
			input:    importertest.CSV(importertest.Row(nil), []string{"Jorge", importertest.SampleCPFJorge, "x"}),
			wantLine: 3,
		},
		{
			name:      "bad amount",
			input:     importertest.CSV(importertest.Row(map[string]string{"vlrLiquido": "R$ 12"})),
			wantLine:  2,
			wantField: importer.ColNetAmount,
		},
		{
			name:      "bad month",
			input:     importertest.CSV(importertest.Row(map[string]string{"numMes": "13"})),
			wantLine:  2,
			wantField: importer.ColMonth,
		},
		{
			name:      "bad year",
			input:     importertest.CSV(importertest.Row(map[string]string{"numAno": "MMXXV"})),
			wantLine:  2,
			wantField: importer.ColYear,
		},
		{
			name:      "bad issue date",
			input:     importertest.CSV(importertest.Row(map[string]string{"datEmissao": "07/02/2025"})),
			wantLine:  2,
			wantField: importer.ColIssuedAt,
		},
		{
			name:      "empty vendor",
			input:     importertest.CSV(importertest.Row(map[string]string{"txtFornecedor": ""})),
			wantLine:  2,
			wantField: importer.ColVendor,
		},
		{
			name:      "empty name on new registrant",
			input:     importertest.CSV(importertest.Row(map[string]string{"txNomeParlamentar": ""})),
			wantLine:  2,
			wantField: importer.ColName,
		},
		{
			name:      "invalid encoding",
			input:     importertest.CSV(importertest.Row(map[string]string{"txtFornecedor": "caf\xe9"})),
			wantLine:  2,
			wantField: importer.ColVendor,
			wantErr:   importer.ErrInvalidEncoding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := importertest.NewMemStore()

			summary, err := run(t, store, tt.input)

			var malformed *importer.MalformedRecordError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.wantLine, malformed.Line)
			assert.Equal(t, tt.wantField, malformed.Field)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, importer.StateFailed, summary.State)
			assert.Empty(t, store.Expenses)
		})
	}
}

func TestRun_HeaderErrors(t *testing.T) {
	store := importertest.NewMemStore()

	summary, err := run(t, store, "")
	var headerErr *importer.HeaderError
	require.ErrorAs(t, err, &headerErr)
	assert.ErrorIs(t, err, importer.ErrEmptyStream)
	assert.Equal(t, importer.StateFailed, summary.State)
}

func TestRun_HeaderOnly(t *testing.T) {
	store := importertest.NewMemStore()

	summary, err := run(t, store, importertest.CSV())
	require.NoError(t, err)
	assert.Equal(t, importer.StateDone, summary.State)
	assert.Zero(t, summary.Rows)
	assert.Empty(t, store.BatchSizes)
}

func TestRun_ColumnsMatchedByName(t *testing.T) {
	store := importertest.NewMemStore()
	// Column 5 must stay the exclusion flag; everything else is shuffled and
	// an unknown column is added.
	input := "cpf;numAno;txtFornecedor;extra;numMes;sgUF;vlrLiquido;TXNOMEPARLAMENTAR;urlDocumento\n" +
		"71838787089;2024;Padaria;whatever;12;rj;-10.50;Zé;\n"

	_, err := run(t, store, input)
	require.NoError(t, err)

	require.Len(t, store.Registrants, 1)
	assert.Equal(t, "RJ", store.Registrants[0].Region)
	assert.Equal(t, "Zé", store.Registrants[0].Name)

	require.Len(t, store.Expenses, 1)
	e := store.Expenses[0]
	assert.Equal(t, "Padaria", e.Vendor)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), e.Period.Time)
	assert.False(t, e.DocumentURL.Valid)
	assert.False(t, e.IssuedAt.Valid)
	amount, err := e.Amount.Float64Value()
	require.NoError(t, err)
	assert.Equal(t, -10.5, amount.Float64)
}

func TestRun_DoubledQuotesReachStorage(t *testing.T) {
	store := importertest.NewMemStore()
	input := "cpf;numAno;txtFornecedor;numMes;sgUF;vlrLiquido;txNomeParlamentar\n" +
		`71838787089;2024;"POSTO ""BOM"" LTDA";12;"RJ";"10";"Zé"` + "\n"

	_, err := run(t, store, input)
	require.NoError(t, err)

	require.Len(t, store.Expenses, 1)
	assert.Equal(t, `POSTO ""BOM"" LTDA`, store.Expenses[0].Vendor)
}

func TestRun_PersistenceErrors(t *testing.T) {
	boom := errors.New("connection reset by peer")

	tests := []struct {
		name   string
		setup  func(s *importertest.MemStore)
		wantOp string
	}{
		{name: "find", setup: func(s *importertest.MemStore) { s.FindErr = boom }, wantOp: "find registrant"},
		{name: "insert", setup: func(s *importertest.MemStore) { s.InsertErr = boom }, wantOp: "insert registrant"},
		{name: "bulk insert", setup: func(s *importertest.MemStore) { s.BulkErr = boom }, wantOp: "bulk insert expenses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := importertest.NewMemStore()
			tt.setup(store)

			summary, err := run(t, store, importertest.Sample)

			var pe *importer.PersistenceError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantOp, pe.Op)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, importer.StateFailed, summary.State)
		})
	}
}

func TestRun_DuplicateInsertIsFatal(t *testing.T) {
	store := &racingStore{MemStore: importertest.NewMemStore()}

	_, err := run(t, store, importertest.CSV(importertest.Row(nil)))

	var pe *importer.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, importertest.ErrDuplicate)
	assert.Equal(t, 1, store.Inserts, "unique violations are not retried")
}

// racingStore hides registrants from lookups, as if another transaction
// inserted them after the lookup.
type racingStore struct {
	*importertest.MemStore
}

func (s *racingStore) FindRegistrantID(context.Context, string) (int32, bool, error) {
	return 0, false, nil
}

func (s *racingStore) InsertRegistrant(ctx context.Context, r importer.NewRegistrant) (importer.Registrant, error) {
	s.MemStore.Seed(r)
	return s.MemStore.InsertRegistrant(ctx, r)
}

// mockStore counts bulk inserts for batch boundary checks.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindRegistrantID(ctx context.Context, nationalID string) (int32, bool, error) {
	args := m.Called(ctx, nationalID)
	return args.Get(0).(int32), args.Bool(1), args.Error(2)
}

func (m *mockStore) InsertRegistrant(ctx context.Context, r importer.NewRegistrant) (importer.Registrant, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(importer.Registrant), args.Error(1)
}

func (m *mockStore) BulkInsertExpenses(ctx context.Context, expenses []importer.Expense) error {
	args := m.Called(ctx, expenses)
	return args.Error(0)
}

func batchOf(n int) interface{} {
	return mock.MatchedBy(func(es []importer.Expense) bool { return len(es) == n })
}

func rowsFor(n int) string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = importertest.Row(nil)
	}
	return importertest.CSV(rows...)
}

func TestRun_BatchBoundary(t *testing.T) {
	const capacity = 4

	t.Run("exactly capacity", func(t *testing.T) {
		store := new(mockStore)
		store.On("FindRegistrantID", mock.Anything, importertest.SampleCPFJorge).Return(int32(7), true, nil).Once()
		store.On("BulkInsertExpenses", mock.Anything, batchOf(capacity)).Return(nil).Once()

		summary, err := run(t, store, rowsFor(capacity), importer.WithBatchSize(capacity))
		require.NoError(t, err)

		store.AssertExpectations(t)
		store.AssertNumberOfCalls(t, "BulkInsertExpenses", 1)
		store.AssertNotCalled(t, "InsertRegistrant", mock.Anything, mock.Anything)
		assert.Equal(t, capacity, summary.ExpensesInserted)
	})

	t.Run("capacity plus one", func(t *testing.T) {
		store := new(mockStore)
		store.On("FindRegistrantID", mock.Anything, importertest.SampleCPFJorge).Return(int32(7), true, nil).Once()
		store.On("BulkInsertExpenses", mock.Anything, batchOf(capacity)).Return(nil).Once()
		store.On("BulkInsertExpenses", mock.Anything, batchOf(1)).Return(nil).Once()

		summary, err := run(t, store, rowsFor(capacity+1), importer.WithBatchSize(capacity))
		require.NoError(t, err)

		store.AssertExpectations(t)
		store.AssertNumberOfCalls(t, "BulkInsertExpenses", 2)
		assert.Equal(t, capacity+1, summary.ExpensesInserted)
		assert.Equal(t, 2, summary.Batches)
	})
}

func TestRun_LogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := importer.Run(context.Background(), importertest.NewMemStore(),
		strings.NewReader(importertest.Sample), importer.WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "registrant created")
	assert.Contains(t, out, "import finished")
	assert.Contains(t, out, "expenses_inserted=3")
	assert.NotContains(t, out, importertest.SampleCPFJorge)
}
