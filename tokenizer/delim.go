package tokenizer

import (
	"strings"

	"github.com/cran/meltr/warn"
)

// DelimOptions are options for the delimiter tokenizer
type DelimOptions struct {
	// Quote is the field quoting character; 0 disables quoting.
	Quote rune
	// EscapeDouble treats a doubled quote inside a quoted field as a
	// literal quote.
	EscapeDouble bool
	// EscapeBackslash treats backslash as an escape character.
	EscapeBackslash bool
	// Comment is a prefix that starts a comment running to end of line.
	Comment string
	// Skip is the number of leading lines to drop before tokenizing.
	Skip int
	// TrimWS trims leading/trailing blanks from unquoted fields.
	TrimWS bool
	// NA is the set of strings recognized as missing value markers.
	NA []string
}

// DelimTokenizer splits input on a single-character delimiter, with
// optional quoting, escapes and comments. Quoted fields may span lines;
// an embedded newline does not advance the row counter.
type DelimTokenizer struct {
	scanner
	delim byte
	opts  DelimOptions
	na    naSet

	// pending is set after consuming a delimiter: the record owes one
	// more field even if the input ends right there.
	pending bool
}

// NewDelimTokenizer creates a new DelimTokenizer
func NewDelimTokenizer(delim rune, options ...DelimOptions) *DelimTokenizer {
	opts := DelimOptions{
		Quote:        '"',
		EscapeDouble: true,
		NA:           DefaultNA(),
	}
	if len(options) > 0 {
		opts = options[0]
	}

	return &DelimTokenizer{
		delim: byte(delim),
		opts:  opts,
		na:    naSet(opts.NA),
	}
}

// Tokenize binds the tokenizer to a byte range
func (t *DelimTokenizer) Tokenize(data []byte) {
	t.bind(data, t.opts.Skip)
	t.pending = false
}

// SetWarnings attaches the shared problem sink
func (t *DelimTokenizer) SetWarnings(sink *warn.Sink) {
	t.setWarnings(sink)
}

// Progress reports (bytes consumed, total bytes)
func (t *DelimTokenizer) Progress() (int64, int64) {
	return t.progress()
}

// NextToken returns the next field as a token, or an EOF token once the
// input is exhausted.
func (t *DelimTokenizer) NextToken() Token {
	for {
		if t.col == 0 {
			t.dropSkippedLines()
			if t.atComment(t.opts.Comment) {
				// whole-line comment: dropped lines take no row number
				t.dropLine()
				continue
			}
		}
		if t.atEOF() {
			if t.pending {
				// input ended on a delimiter: the trailing empty
				// field still belongs to the record
				t.pending = false
				return Token{Kind: Empty, Row: t.row, Col: t.col}
			}
			return Token{Kind: EOF, Row: t.row, Col: t.col}
		}
		return t.readField()
	}
}

// readField reads one field and advances the cursor past its separator.
func (t *DelimTokenizer) readField() Token {
	t.pending = false
	row, col := t.row, t.col

	var buf []byte
	quoted := false
	comment := false

	if t.opts.Quote != 0 && t.peek() == byte(t.opts.Quote) {
		quoted = true
		buf = t.readQuoted(row, col)
	}

	for !t.atEOF() {
		c := t.peek()
		if c == t.delim || isNewline(c) {
			break
		}
		if t.atComment(t.opts.Comment) {
			comment = true
			break
		}
		if t.opts.EscapeBackslash && c == '\\' {
			t.pos++
			if !t.atEOF() && !isNewline(t.peek()) {
				buf = append(buf, t.peek())
				t.pos++
			}
			continue
		}
		buf = append(buf, c)
		t.pos++
	}

	switch {
	case comment:
		t.dropLine()
		t.row++
		t.col = 0
	case t.atEOF():
		// nothing to consume; the next call yields EOF
	case t.peek() == t.delim:
		t.pos++
		t.col++
		t.pending = true
	default:
		t.consumeNewline()
		t.row++
		t.col = 0
	}

	return t.classify(row, col, string(buf), quoted)
}

// readQuoted reads a quoted field body, excluding the surrounding quotes.
// An unterminated quote is a recoverable problem: it is reported to the
// sink and the remainder of the input becomes the field text.
func (t *DelimTokenizer) readQuoted(row, col int) []byte {
	q := byte(t.opts.Quote)
	t.pos++ // opening quote

	var buf []byte

	for !t.atEOF() {
		c := t.data[t.pos]
		if t.opts.EscapeBackslash && c == '\\' {
			t.pos++
			if !t.atEOF() {
				buf = append(buf, t.data[t.pos])
				t.pos++
			}
			continue
		}
		if c == q {
			if t.opts.EscapeDouble && t.pos+1 < len(t.data) && t.data[t.pos+1] == q {
				buf = append(buf, q)
				t.pos += 2
				continue
			}
			t.pos++ // closing quote
			return buf
		}
		buf = append(buf, c)
		t.pos++
	}

	t.warn(row+1, col+1, "closing quote", "end of file")

	return buf
}

func (t *DelimTokenizer) classify(row, col int, text string, quoted bool) Token {
	if !quoted {
		if t.opts.TrimWS {
			text = strings.Trim(text, " \t")
		}
		if text == "" {
			return Token{Kind: Empty, Row: row, Col: col}
		}
		if t.na.matches(text) {
			return Token{Kind: Missing, Row: row, Col: col, Text: text}
		}
	} else if text == "" {
		return Token{Kind: Empty, Row: row, Col: col}
	}

	return Token{Kind: String, Row: row, Col: col, Text: text}
}
