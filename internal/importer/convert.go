package importer

// convert.go turns cleaned CSV cells into pgx types.
//
// The ToPg* helpers report failure with Valid=false; callers decide whether
// an invalid value is an error (required field) or a NULL (optional field).

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// Issue timestamps appear with and without a time part depending on the
// year of the export.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CleanCell trims whitespace and the Excel ="..." formula wrapper.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// ToPgText converts s to pgtype.Text; empty means NULL.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgNumeric converts a decimal string to pgtype.Numeric. Commas are
// treated as thousands separators.
func ToPgNumeric(s string) pgtype.Numeric {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || !numericRegex.MatchString(s) {
		return pgtype.Numeric{}
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{}
	}
	return n
}

// ToPgTimestamp parses an issue timestamp.
func ToPgTimestamp(s string) pgtype.Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Timestamp{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Timestamp{Time: t, Valid: true}
		}
	}
	return pgtype.Timestamp{}
}

// ToPgPeriod builds the first day of the given month.
func ToPgPeriod(year, month int) pgtype.Date {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return pgtype.Date{}
	}
	return pgtype.Date{
		Time:  time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}
