package importer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStream is wrapped by HeaderError when the input has no rows.
	ErrEmptyStream = errors.New("empty stream")

	// ErrInvalidEncoding is wrapped by MalformedRecordError for rows that are not UTF-8.
	ErrInvalidEncoding = errors.New("invalid UTF-8")
)

// HeaderError reports that the stream has no parseable header row.
type HeaderError struct {
	Err error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("read header: %v", e.Err)
}

func (e *HeaderError) Unwrap() error { return e.Err }

// MalformedRecordError reports a row that could not be parsed or decoded.
// Line is 1-based and zero when unknown.
type MalformedRecordError struct {
	Line  int
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	var msg string
	if e.Line > 0 {
		msg = fmt.Sprintf("malformed record at line %d", e.Line)
	} else {
		msg = "malformed record"
	}
	if e.Field != "" {
		msg += fmt.Sprintf(": field %q", e.Field)
	}
	return msg + ": " + e.Err.Error()
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// InvalidIdentifierError reports a would-be new registrant whose CPF fails
// checksum validation.
type InvalidIdentifierError struct {
	Line       int
	NationalID string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid CPF %q at line %d", e.NationalID, e.Line)
}

// PersistenceError wraps any storage failure: constraint violations,
// connectivity loss, cancelled transactions.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistenceErr(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
