package importer_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ceap/internal/importer"
	"github.com/JonMunkholm/ceap/internal/importer/importertest"
)

func TestSkipBOM(t *testing.T) {
	out, err := io.ReadAll(importer.SkipBOM(strings.NewReader("\xEF\xBB\xBFcpf;sgUF\n")))
	require.NoError(t, err)
	assert.Equal(t, "cpf;sgUF\n", string(out))

	out, err = io.ReadAll(importer.SkipBOM(strings.NewReader("cpf")))
	require.NoError(t, err)
	assert.Equal(t, "cpf", string(out))

	out, err = io.ReadAll(importer.SkipBOM(strings.NewReader("")))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLiteralQuotes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "a;b\n", want: "a;b\n"},
		{name: "empty quoted", in: `"";"";x` + "\n", want: `"";"";x` + "\n"},
		{name: "doubled inside quotes", in: `a;"x""y";"z"` + "\n", want: `a;"x""""y";"z"` + "\n"},
		{name: "doubled at field start", in: `"""BOM"""` + "\r\n", want: `"""""BOM"""""` + "\r\n"},
		{name: "bare quote mid field", in: `POSTO "BOM";1` + "\n", want: `POSTO "BOM";1` + "\n"},
		{name: "quoted at end of stream", in: `a;""`, want: `a;""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := io.ReadAll(importer.LiteralQuotes(strings.NewReader(tt.in)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestLiteralQuotes_PropagatesReadError(t *testing.T) {
	cut := errors.New("connection reset")
	r := importer.LiteralQuotes(io.MultiReader(strings.NewReader(`a;"x""`), iotest.ErrReader(cut)))

	out, err := io.ReadAll(r)
	assert.ErrorIs(t, err, cut)
	assert.Equal(t, `a;"x""""`, string(out))
}

func TestCountingReader(t *testing.T) {
	cr := importer.WrapForStreaming(strings.NewReader("\xEF\xBB\xBF0123456789"), 13)
	assert.Zero(t, cr.Progress())

	_, err := io.ReadAll(cr)
	require.NoError(t, err)

	assert.Equal(t, int64(10), cr.BytesRead())
	assert.Equal(t, 76, cr.Progress())
}

func TestCountingReader_UnknownTotal(t *testing.T) {
	cr := importer.NewCountingReader(strings.NewReader("abc"), 0)
	_, err := io.ReadAll(cr)
	require.NoError(t, err)

	assert.Equal(t, int64(3), cr.BytesRead())
	assert.Zero(t, cr.Progress())
}

func TestRun_SkipsBOM(t *testing.T) {
	input := "\xEF\xBB\xBFtxNomeParlamentar;cpf;x;x;x;sgUF;x;txtFornecedor;vlrLiquido;numMes;numAno\n" +
		"Jorge;22488012033;;;;PB;;Loja;10;1;2025\n"
	store := importertest.NewMemStore()

	summary, err := importer.Run(context.Background(), store, importer.WrapForStreaming(strings.NewReader(input), 0), quiet)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ExpensesInserted)
}
