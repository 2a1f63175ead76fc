package core

// error_messages.go maps import failures to coded messages for API clients.
//
// Codes by category:
//
//	VAL001-VAL006  row content (dates, numbers, empty fields, columns, CPF)
//	FILE001-FILE006 the uploaded file itself (size, shape, encoding, cut short)
//	IMP001-IMP003  the import request (busy, cancelled, timed out)
//	DB001-DB006    storage failures
//	ERR000         anything else; check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/ceap/internal/importer"
)

// UserMessage is a client-facing description of an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Row content.
	{
		pattern: "invalid date",
		msg:     UserMessage{Message: "Invalid date", Action: "Use YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS and a month between 1 and 12", Code: "VAL001"},
	},
	{
		pattern: "invalid number",
		msg:     UserMessage{Message: "Invalid amount", Action: "Remove currency symbols and use a dot as decimal separator", Code: "VAL002"},
	},
	{
		pattern: "empty required field",
		msg:     UserMessage{Message: "Required field is empty", Action: "Fill in the field reported for this line", Code: "VAL003"},
	},
	{
		pattern: "missing required column",
		msg:     UserMessage{Message: "Required column is missing", Action: "Check the header row against the CEAP export format", Code: "VAL004"},
	},
	{
		pattern: "invalid cpf",
		msg:     UserMessage{Message: "CPF failed checksum validation", Action: "Correct the CPF on the reported line", Code: "VAL005"},
	},
	{
		pattern: "invalid integer",
		msg:     UserMessage{Message: "Invalid month or year", Action: "Use plain integers for numMes and numAno", Code: "VAL006"},
	},

	// File.
	{
		pattern: "file too large",
		msg:     UserMessage{Message: "File exceeds the maximum upload size", Action: "Split the file and import the parts separately", Code: "FILE001"},
	},
	{
		pattern: "invalid utf-8",
		msg:     UserMessage{Message: "File contains invalid characters", Action: "Save the file as UTF-8", Code: "FILE003"},
	},
	{
		pattern: "upload interrupted",
		msg:     UserMessage{Message: "The upload ended before the whole file arrived", Action: "Check the connection and send the file again", Code: "FILE006"},
	},
	{
		pattern: "no file provided",
		msg:     UserMessage{Message: "No file was sent", Action: "Send the CSV as a multipart form file", Code: "FILE004"},
	},
	{
		pattern: "empty stream",
		msg:     UserMessage{Message: "The file is empty", Action: "Upload a file with a header row", Code: "FILE005"},
	},
	{
		pattern: "wrong number of fields",
		msg:     UserMessage{Message: "Row width does not match the header", Action: "Check the delimiter is ';' and quotes are balanced", Code: "FILE002"},
	},
	{
		pattern: "malformed record",
		msg:     UserMessage{Message: "File is not a valid CEAP export", Action: "Check the delimiter is ';' and quotes are balanced", Code: "FILE002"},
	},
	{
		pattern: "read header",
		msg:     UserMessage{Message: "Header row could not be read", Action: "Check the file is a ';'-separated CSV", Code: "FILE002"},
	},

	// Request.
	{
		pattern: "too many imports",
		msg:     UserMessage{Message: "The server is busy with other imports", Action: "Please wait a moment and try again", Code: "IMP001"},
	},
	{
		pattern: "context canceled",
		msg:     UserMessage{Message: "Import was cancelled", Action: "Please try again", Code: "IMP002"},
	},
	{
		pattern: "context deadline exceeded",
		msg:     UserMessage{Message: "Import timed out", Action: "Split the file or try again later", Code: "IMP003"},
	},

	// Storage.
	{
		pattern: "duplicate key",
		msg:     UserMessage{Message: "A registrant with this CPF was created concurrently", Action: "Retry the import", Code: "DB001"},
	},
	{
		pattern: "violates foreign key",
		msg:     UserMessage{Message: "Referenced registrant does not exist", Action: "Retry the import", Code: "DB002"},
	},
	{
		pattern: "out of range",
		msg:     UserMessage{Message: "A value is too large to store", Action: "Check the amounts in the file", Code: "DB003"},
	},
	{
		pattern: "numeric field overflow",
		msg:     UserMessage{Message: "A value is too large to store", Action: "Check the amounts in the file", Code: "DB003"},
	},
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB004"},
	},
	{
		pattern: "connection reset",
		msg:     UserMessage{Message: "Database connection was interrupted", Action: "Please try again", Code: "DB005"},
	},
	{
		pattern: "deadlock",
		msg:     UserMessage{Message: "Database was busy with conflicting operations", Action: "Please try again", Code: "DB006"},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a client-facing message. Unknown errors map to
// ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsRejected reports whether err was caused by the submitted data rather
// than by the server. Rejected imports map to 4xx responses. An interrupted
// upload is not a rejection: the data never fully arrived.
func IsRejected(err error) bool {
	if errors.Is(err, ErrUploadInterrupted) {
		return false
	}
	var (
		headerErr    *importer.HeaderError
		malformedErr *importer.MalformedRecordError
		invalidErr   *importer.InvalidIdentifierError
	)
	return errors.As(err, &headerErr) ||
		errors.As(err, &malformedErr) ||
		errors.As(err, &invalidErr) ||
		errors.Is(err, ErrFileTooLarge)
}

// ErrorLine returns the 1-based line an import error refers to, or 0.
func ErrorLine(err error) int {
	var malformedErr *importer.MalformedRecordError
	if errors.As(err, &malformedErr) {
		return malformedErr.Line
	}
	var invalidErr *importer.InvalidIdentifierError
	if errors.As(err, &invalidErr) {
		return invalidErr.Line
	}
	return 0
}

// UserError pairs a technical error with its client-facing message.
type UserError struct {
	Technical error
	User      UserMessage
	Line      int
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
		Line:      ErrorLine(err),
	}
}
