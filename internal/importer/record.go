package importer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	errMissingColumn = errors.New("missing required column")
	errEmptyField    = errors.New("empty required field")
	errFieldCount    = errors.New("wrong number of fields")
)

// HeaderIndex maps lowercased column names to their position in a row.
type HeaderIndex map[string]int

// Header is the header row of a stream, captured once and shared by every
// record decoded from that stream.
type Header struct {
	Columns []string
	Index   HeaderIndex
}

// NewHeader builds a Header from the first row of a stream.
func NewHeader(columns []string) Header {
	cols := make([]string, len(columns))
	idx := make(HeaderIndex, len(columns))
	for i, c := range columns {
		cols[i] = CleanCell(c)
		key := strings.ToLower(cols[i])
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return Header{Columns: cols, Index: idx}
}

// Record is one data row bound to its stream's header.
type Record struct {
	Line   int
	fields []string
	header Header
}

// NewRecord binds fields to header. The row must be as wide as the header
// and valid UTF-8.
func (h Header) NewRecord(line int, fields []string) (*Record, error) {
	if len(fields) != len(h.Columns) {
		return nil, &MalformedRecordError{
			Line: line,
			Err:  fmt.Errorf("%w: got %d, want %d", errFieldCount, len(fields), len(h.Columns)),
		}
	}
	for i, f := range fields {
		if !utf8.ValidString(f) {
			return nil, &MalformedRecordError{Line: line, Field: h.Columns[i], Err: ErrInvalidEncoding}
		}
	}
	return &Record{Line: line, fields: fields, header: h}, nil
}

// Excluded reports whether the row carries the out-of-scope flag.
func (r *Record) Excluded() bool {
	return len(r.fields) > ExclusionColumn && strings.TrimSpace(r.fields[ExclusionColumn]) == ExclusionValue
}

// NationalID returns the row's CPF. ok is false when the column is missing
// or empty, in which case the row has nothing to key on.
func (r *Record) NationalID() (id string, ok bool) {
	pos, found := r.header.Index[strings.ToLower(ColNationalID)]
	if !found {
		return "", false
	}
	id = CleanCell(r.fields[pos])
	return id, id != ""
}

// value returns the cleaned cell for spec, enforcing Required.
func (r *Record) value(spec FieldSpec) (string, error) {
	pos, ok := r.header.Index[strings.ToLower(spec.Name)]
	if !ok {
		if spec.Required {
			return "", r.malformed(spec.Name, errMissingColumn)
		}
		return "", nil
	}

	raw := CleanCell(r.fields[pos])
	if spec.Normalizer != nil {
		raw = spec.Normalizer(raw)
	}
	if raw == "" && spec.Required {
		return "", r.malformed(spec.Name, errEmptyField)
	}
	return raw, nil
}

func (r *Record) values(specs []FieldSpec) (map[string]string, error) {
	out := make(map[string]string, len(specs))
	for _, spec := range specs {
		v, err := r.value(spec)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = v
	}
	return out, nil
}

func (r *Record) malformed(field string, err error) error {
	return &MalformedRecordError{Line: r.Line, Field: field, Err: err}
}

// DecodeRegistrant extracts the registrant projection of r.
func DecodeRegistrant(r *Record) (NewRegistrant, error) {
	v, err := r.values(RegistrantFieldSpecs)
	if err != nil {
		return NewRegistrant{}, err
	}
	return NewRegistrant{
		Name:        v[ColName],
		Region:      v[ColRegion],
		NationalID:  v[ColNationalID],
		Affiliation: ToPgText(v[ColAffiliation]),
	}, nil
}

// DecodeExpense extracts the expense projection of r and attaches it to
// the registrant with the given id.
func DecodeExpense(r *Record, registrantID int32) (Expense, error) {
	v, err := r.values(ExpenseFieldSpecs)
	if err != nil {
		return Expense{}, err
	}

	amount := ToPgNumeric(v[ColNetAmount])
	if !amount.Valid {
		return Expense{}, r.malformed(ColNetAmount, fmt.Errorf("invalid number %q", v[ColNetAmount]))
	}

	month, ok := parseInt(v[ColMonth])
	if !ok {
		return Expense{}, r.malformed(ColMonth, fmt.Errorf("invalid integer %q", v[ColMonth]))
	}
	year, ok := parseInt(v[ColYear])
	if !ok {
		return Expense{}, r.malformed(ColYear, fmt.Errorf("invalid integer %q", v[ColYear]))
	}
	period := ToPgPeriod(year, month)
	if !period.Valid {
		return Expense{}, r.malformed(ColMonth, fmt.Errorf("invalid date: year %d month %d", year, month))
	}

	issued := ToPgTimestamp(v[ColIssuedAt])
	if v[ColIssuedAt] != "" && !issued.Valid {
		return Expense{}, r.malformed(ColIssuedAt, fmt.Errorf("invalid date %q", v[ColIssuedAt]))
	}

	return Expense{
		RegistrantID: registrantID,
		Vendor:       v[ColVendor],
		Amount:       amount,
		Period:       period,
		IssuedAt:     issued,
		DocumentURL:  ToPgText(v[ColDocumentURL]),
	}, nil
}
