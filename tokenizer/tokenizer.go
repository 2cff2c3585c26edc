// Package tokenizer splits raw bytes into position-tagged tokens for the
// melt engine. Three variants exist (delimiter, whitespace run, fixed
// width); the set is closed and one is chosen at construction time.
package tokenizer

import (
	"bytes"

	"github.com/cran/meltr/warn"
)

// Tokenizer is the interface the melt engine pulls tokens through.
//
// Tokenize binds the tokenizer to a byte range. NextToken returns the next
// token, with an EOF token once the range is exhausted; calling it again
// after EOF keeps returning EOF. Progress reports (bytes consumed, total
// bytes); total is always >= 1 so the pair can be used as a fraction.
type Tokenizer interface {
	Tokenize(data []byte)
	SetWarnings(sink *warn.Sink)
	NextToken() Token
	Progress() (int64, int64)
}

// scanner holds the cursor state shared by all tokenizer variants.
type scanner struct {
	data []byte
	pos  int
	row  int
	col  int
	skip int // unconsumed leading lines still to drop

	warnings *warn.Sink
}

func (s *scanner) bind(data []byte, skip int) {
	s.data = data
	s.pos = 0
	s.row = 0
	s.col = 0
	s.skip = skip
}

func (s *scanner) setWarnings(sink *warn.Sink) {
	s.warnings = sink
}

func (s *scanner) warn(row, col int, expected, actual string) {
	if s.warnings != nil {
		s.warnings.Warn(row, col, expected, actual)
	}
}

func (s *scanner) progress() (int64, int64) {
	total := int64(len(s.data))
	if total < 1 {
		total = 1
	}
	consumed := int64(s.pos)
	if consumed > total {
		consumed = total
	}
	return consumed, total
}

func (s *scanner) atEOF() bool {
	return s.pos >= len(s.data)
}

func (s *scanner) peek() byte {
	if s.atEOF() {
		return 0
	}
	return s.data[s.pos]
}

// consumeNewline consumes a \n, \r\n or lone \r at the cursor and reports
// whether one was present. It does not touch row/col bookkeeping; callers
// decide whether the line counts.
func (s *scanner) consumeNewline() bool {
	switch s.peek() {
	case '\n':
		s.pos++
		return true
	case '\r':
		s.pos++
		if s.peek() == '\n' {
			s.pos++
		}
		return true
	}
	return false
}

func isNewline(c byte) bool {
	return c == '\n' || c == '\r'
}

// dropLine consumes up to and including the next line end.
func (s *scanner) dropLine() {
	for !s.atEOF() && !isNewline(s.peek()) {
		s.pos++
	}
	s.consumeNewline()
}

// dropSkippedLines drops the configured number of leading lines. Skipped
// lines do not count toward row numbering.
func (s *scanner) dropSkippedLines() {
	for s.skip > 0 && !s.atEOF() {
		s.dropLine()
		s.skip--
	}
	s.skip = 0
}

// atComment reports whether the cursor sits on the comment prefix.
func (s *scanner) atComment(comment string) bool {
	return comment != "" && bytes.HasPrefix(s.data[s.pos:], []byte(comment))
}

// naSet matches field text against the configured missing value markers.
type naSet []string

func (n naSet) matches(text string) bool {
	for _, na := range n {
		if text == na {
			return true
		}
	}
	return false
}

// DefaultNA is the missing value marker set used when none is configured.
func DefaultNA() []string {
	return []string{"NA"}
}
