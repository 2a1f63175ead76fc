package importer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/ceap/internal/importer"
)

func TestCleanCell(t *testing.T) {
	tests := map[string]string{
		"  plain ": "plain",
		`="00123"`: "00123",
		`  ="x"  `: "x",
		`="`:       `="`,
		"":         "",
		`"quoted"`: `"quoted"`,
	}
	for in, want := range tests {
		assert.Equal(t, want, importer.CleanCell(in), "input %q", in)
	}
}

func TestToPgNumeric(t *testing.T) {
	valid := []string{"1467", "-10.50", "1,000.25", ".5", "+3"}
	for _, s := range valid {
		assert.True(t, importer.ToPgNumeric(s).Valid, "input %q", s)
	}

	invalid := []string{"", "R$ 12", "12,5.3.1", "abc", "1.2.3"}
	for _, s := range invalid {
		assert.False(t, importer.ToPgNumeric(s).Valid, "input %q", s)
	}
}

func TestToPgTimestamp(t *testing.T) {
	ts := importer.ToPgTimestamp("2025-02-07T08:15:00")
	assert.True(t, ts.Valid)
	assert.Equal(t, time.Date(2025, time.February, 7, 8, 15, 0, 0, time.UTC), ts.Time)

	assert.True(t, importer.ToPgTimestamp("2025-02-07").Valid)
	assert.False(t, importer.ToPgTimestamp("07/02/2025").Valid)
	assert.False(t, importer.ToPgTimestamp("").Valid)
}

func TestToPgPeriod(t *testing.T) {
	p := importer.ToPgPeriod(2025, 12)
	assert.True(t, p.Valid)
	assert.Equal(t, time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC), p.Time)

	assert.False(t, importer.ToPgPeriod(2025, 0).Valid)
	assert.False(t, importer.ToPgPeriod(2025, 13).Valid)
	assert.False(t, importer.ToPgPeriod(0, 1).Valid)
}
