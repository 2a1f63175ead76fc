package importer

import (
	"bufio"
	"bytes"
	"io"
	"sync/atomic"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM drops a leading UTF-8 byte order mark, which spreadsheet exports
// on Windows like to prepend to the header row.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CountingReader tracks bytes read so progress can be reported while a run
// is streaming. BytesRead may be called from another goroutine.
type CountingReader struct {
	r     io.Reader
	n     atomic.Int64
	Total int64 // zero when unknown
}

// NewCountingReader wraps r. total is the expected size, or zero.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{r: r, Total: total}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (c *CountingReader) BytesRead() int64 { return c.n.Load() }

// Progress returns read progress as a percentage, or 0 if Total is unknown.
func (c *CountingReader) Progress() int {
	if c.Total <= 0 {
		return 0
	}
	return int(c.n.Load() * 100 / c.Total)
}

// WrapForStreaming strips a BOM from r and counts the bytes that follow.
func WrapForStreaming(r io.Reader, total int64) *CountingReader {
	return NewCountingReader(SkipBOM(r), total)
}

// LiteralQuotes re-escapes doubled quotes inside quoted fields so that
// encoding/csv hands "" through unchanged instead of collapsing it to ".
// Line breaks are passed through untouched, so record line numbers hold.
func LiteralQuotes(r io.Reader) io.Reader {
	return &literalQuoteReader{br: bufio.NewReader(r), fieldStart: true}
}

type literalQuoteReader struct {
	br         *bufio.Reader
	out        []byte
	err        error
	inQuotes   bool
	fieldStart bool
}

func (q *literalQuoteReader) Read(p []byte) (int, error) {
	for len(q.out) < len(p) && q.err == nil {
		c, err := q.br.ReadByte()
		if err != nil {
			q.err = err
			break
		}
		q.step(c)
	}
	if len(q.out) == 0 && len(p) > 0 {
		return 0, q.err
	}
	n := copy(p, q.out)
	q.out = append(q.out[:0], q.out[n:]...)
	return n, nil
}

func (q *literalQuoteReader) step(c byte) {
	switch {
	case q.inQuotes && c == '"':
		next, err := q.br.Peek(1)
		if err == nil && next[0] == '"' {
			_, _ = q.br.Discard(1)
			q.out = append(q.out, `""""`...)
			return
		}
		if err != nil {
			q.err = err
		}
		q.inQuotes = false
	case q.inQuotes:
	case c == '"' && q.fieldStart:
		q.inQuotes = true
		q.fieldStart = false
	default:
		q.fieldStart = c == Delimiter || c == '\n' || c == '\r'
	}
	q.out = append(q.out, c)
}
