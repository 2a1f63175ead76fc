// Package importertest provides CEAP fixtures and an in-memory Store for
// tests of code built on the importer package.
package importertest

import "strings"

// Columns is the header of a CEAP open-data export.
var Columns = []string{
	"txNomeParlamentar", "cpf", "ideCadastro", "nuCarteiraParlamentar", "nuLegislatura",
	"sgUF", "sgPartido", "codLegislatura", "numSubCota", "txtDescricao",
	"numEspecificacaoSubCota", "txtDescricaoEspecificacao", "txtFornecedor", "txtCNPJCPF", "txtNumero",
	"indTipoDocumento", "datEmissao", "vlrDocumento", "vlrGlosa", "vlrLiquido",
	"numMes", "numAno", "numParcela", "txtPassageiro", "txtTrecho",
	"numLote", "numRessarcimento", "datPagamentoRestituicao", "vlrRestituicao", "nuDeputadoId",
	"ideDocumento", "urlDocumento",
}

var defaults = map[string]string{
	"txNomeParlamentar":       "Jorge",
	"cpf":                     "22488012033",
	"nuLegislatura":           "2023",
	"sgUF":                    "PB",
	"codLegislatura":          "57",
	"numSubCota":              "1",
	"txtDescricao":            "Descrição",
	"numEspecificacaoSubCota": "0",
	"txtFornecedor":           "Fornecedor",
	"txtCNPJCPF":              "CNPJ-fornecedor",
	"txtNumero":               "1984",
	"indTipoDocumento":        "0",
	"datEmissao":              "2025-02-07T00:00:00",
	"vlrDocumento":            "1467",
	"vlrGlosa":                "0",
	"vlrLiquido":              "1467",
	"numMes":                  "2",
	"numAno":                  "2025",
	"numParcela":              "0",
	"numLote":                 "0",
	"nuDeputadoId":            "0",
	"ideDocumento":            "0",
	"urlDocumento":            "https://test.url/0001.pdf",
}

// Row returns a full-width row built from sensible defaults, with the named
// columns overridden.
func Row(overrides map[string]string) []string {
	row := make([]string, len(Columns))
	for i, c := range Columns {
		if v, ok := overrides[c]; ok {
			row[i] = v
			continue
		}
		row[i] = defaults[c]
	}
	return row
}

// CSV renders the CEAP header followed by rows.
func CSV(rows ...[]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(Columns, ";"))
	for _, r := range rows {
		b.WriteByte('\n')
		b.WriteString(strings.Join(r, ";"))
	}
	b.WriteByte('\n')
	return b.String()
}

// Sample is a four-row export: one out-of-scope row, two registrants and a
// repeated expense for the first one.
const Sample = `txNomeParlamentar;cpf;ideCadastro;nuCarteiraParlamentar;nuLegislatura;sgUF;sgPartido;codLegislatura;numSubCota;txtDescricao;numEspecificacaoSubCota;txtDescricaoEspecificacao;txtFornecedor;txtCNPJCPF;txtNumero;indTipoDocumento;datEmissao;vlrDocumento;vlrGlosa;vlrLiquido;numMes;numAno;numParcela;txtPassageiro;txtTrecho;numLote;numRessarcimento;datPagamentoRestituicao;vlrRestituicao;nuDeputadoId;ideDocumento;urlDocumento
Ninguém;"";"";"";"2023";"NA";"";"57";"1";"Descrição";"0";"";"Fornecedor";"CNPJ-fornecedor";"1984";"0";"2025-02-07T00:00:00";"1467";"0";"1467";"1";"2025";"0";"";"";"0";"";"";"";"0";"0";"https://test.url/0000.pdf"
Jorge;22488012033;"";"";"2023";"PB";"";"57";"1";"Descrição";"0";"";"Fornecedor";"CNPJ-fornecedor";"1984";"0";"2025-02-07T00:00:00";"1467";"0";"1467";"2";"2025";"0";"";"";"0";"";"";"";"0";"0";"https://test.url/0001.pdf"
Zé;71838787089;"";"";"2023";"RJ";"";"57";"1";"Descrição";"0";"";"Fornecedor";"CNPJ-fornecedor";"1984";"0";"2025-02-07T00:00:00";"1467";"0";"1467";"3";"2025";"0";"";"";"0";"";"";"";"0";"0";"https://test.url/0002.pdf"
Jorge;22488012033;"";"";"2023";"PB";"";"57";"1";"Descrição";"0";"";"Fornecedor";"CNPJ-fornecedor";"1984";"0";"2025-02-07T00:00:00";"1467";"0";"1467";"2";"2025";"0";"";"";"0";"";"";"";"0";"0";"https://test.url/0001.pdf"
`

// CPFs used by Sample.
const (
	SampleCPFJorge = "22488012033"
	SampleCPFZe    = "71838787089"
)
