package importer

import "strings"

// CEAP column names, matched case-insensitively against the header row.
const (
	ColName        = "txNomeParlamentar"
	ColNationalID  = "cpf"
	ColRegion      = "sgUF"
	ColAffiliation = "sgPartido"
	ColVendor      = "txtFornecedor"
	ColIssuedAt    = "datEmissao"
	ColNetAmount   = "vlrLiquido"
	ColMonth       = "numMes"
	ColYear        = "numAno"
	ColDocumentURL = "urlDocumento"
)

// The exclusion flag is positional in the source format: column 5 holding
// "NA" marks a row that belongs to no state delegation and is out of scope.
const (
	ExclusionColumn = 5
	ExclusionValue  = "NA"
)

// FieldType is the semantic type a column is decoded into.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldInt
	FieldTimestamp
)

// FieldSpec describes one column used by a projection.
type FieldSpec struct {
	Name       string
	Type       FieldType
	Required   bool                // empty or missing is a malformed record
	Normalizer func(string) string // applied after cleaning, before type checks
}

// RegistrantFieldSpecs are the columns of the registrant projection.
var RegistrantFieldSpecs = []FieldSpec{
	{Name: ColName, Type: FieldText, Required: true},
	{Name: ColRegion, Type: FieldText, Required: true, Normalizer: strings.ToUpper},
	{Name: ColNationalID, Type: FieldText, Required: true},
	{Name: ColAffiliation, Type: FieldText},
}

// ExpenseFieldSpecs are the columns of the expense projection.
var ExpenseFieldSpecs = []FieldSpec{
	{Name: ColVendor, Type: FieldText, Required: true},
	{Name: ColNetAmount, Type: FieldNumeric, Required: true},
	{Name: ColMonth, Type: FieldInt, Required: true},
	{Name: ColYear, Type: FieldInt, Required: true},
	{Name: ColIssuedAt, Type: FieldTimestamp},
	{Name: ColDocumentURL, Type: FieldText},
}
