package tokenizer

import "github.com/cran/meltr/warn"

// WSOptions are options for the whitespace tokenizer
type WSOptions struct {
	// Comment is a prefix that starts a comment running to end of line.
	Comment string
	// Skip is the number of leading lines to drop before tokenizing.
	Skip int
	// NA is the set of strings recognized as missing value markers.
	NA []string
}

// WSTokenizer splits input on runs of blanks. Any run of spaces or tabs
// separates tokens, so it can never emit an Empty token; newlines advance
// the row counter, blank lines included.
type WSTokenizer struct {
	scanner
	opts WSOptions
	na   naSet
}

// NewWSTokenizer creates a new WSTokenizer
func NewWSTokenizer(options ...WSOptions) *WSTokenizer {
	opts := WSOptions{
		NA: DefaultNA(),
	}
	if len(options) > 0 {
		opts = options[0]
	}

	return &WSTokenizer{
		opts: opts,
		na:   naSet(opts.NA),
	}
}

// Tokenize binds the tokenizer to a byte range
func (t *WSTokenizer) Tokenize(data []byte) {
	t.bind(data, t.opts.Skip)
}

// SetWarnings attaches the shared problem sink
func (t *WSTokenizer) SetWarnings(sink *warn.Sink) {
	t.setWarnings(sink)
}

// Progress reports (bytes consumed, total bytes)
func (t *WSTokenizer) Progress() (int64, int64) {
	return t.progress()
}

// NextToken returns the next whitespace-delimited token, or an EOF token
// once the input is exhausted.
func (t *WSTokenizer) NextToken() Token {
	t.dropSkippedLines()

	for {
		if t.atEOF() {
			return Token{Kind: EOF, Row: t.row, Col: t.col}
		}

		switch c := t.peek(); {
		case c == ' ' || c == '\t':
			t.pos++
		case isNewline(c):
			t.consumeNewline()
			t.row++
			t.col = 0
		case t.atComment(t.opts.Comment):
			t.dropLine()
			t.row++
			t.col = 0
		default:
			return t.readRun()
		}
	}
}

// readRun reads a run of non-blank characters as one token.
func (t *WSTokenizer) readRun() Token {
	row, col := t.row, t.col
	start := t.pos

	for !t.atEOF() {
		c := t.peek()
		if c == ' ' || c == '\t' || isNewline(c) {
			break
		}
		if t.atComment(t.opts.Comment) {
			break
		}
		t.pos++
	}

	text := string(t.data[start:t.pos])
	t.col++

	if t.na.matches(text) {
		return Token{Kind: Missing, Row: row, Col: col, Text: text}
	}

	return Token{Kind: String, Row: row, Col: col, Text: text}
}
