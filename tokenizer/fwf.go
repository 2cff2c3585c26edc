package tokenizer

import (
	"fmt"
	"strings"

	"github.com/cran/meltr/warn"
)

// FWFPositions holds the `[Begin, End)` byte positions of each fixed width
// field within a line. End may be -1 for the last field to let it run to
// the end of the line.
type FWFPositions struct {
	Begin []int
	End   []int
}

// Validate checks the positions describe a usable, ordered field layout.
func (p FWFPositions) Validate() error {
	if len(p.Begin) == 0 || len(p.Begin) != len(p.End) {
		return fmt.Errorf("%w: %d begin and %d end offsets", ErrBadPositions, len(p.Begin), len(p.End))
	}

	for i := range p.Begin {
		if p.Begin[i] < 0 {
			return fmt.Errorf("%w: negative begin offset %d", ErrBadPositions, p.Begin[i])
		}
		if p.End[i] >= 0 && p.End[i] <= p.Begin[i] {
			return fmt.Errorf("%w: field %d is empty or reversed", ErrBadPositions, i)
		}
		if p.End[i] < 0 && i != len(p.Begin)-1 {
			return fmt.Errorf("%w: only the last field may be open ended", ErrBadPositions)
		}
		if i > 0 && p.Begin[i] < p.Begin[i-1] {
			return fmt.Errorf("%w: fields must be ordered left to right", ErrBadPositions)
		}
	}

	return nil
}

// FWFOptions are options for the fixed width tokenizer
type FWFOptions struct {
	// Comment is a prefix that starts a comment running to end of line.
	Comment string
	// Skip is the number of leading lines to drop before tokenizing.
	Skip int
	// NA is the set of strings recognized as missing value markers.
	NA []string
}

// FWFTokenizer slices each line at fixed byte positions. Fields are
// trimmed of surrounding blanks; ragged short lines simply yield fewer
// tokens.
type FWFTokenizer struct {
	scanner
	positions FWFPositions
	opts      FWFOptions
	na        naSet

	queue []Token
}

// NewFWFTokenizer creates a new FWFTokenizer
func NewFWFTokenizer(positions FWFPositions, options ...FWFOptions) (*FWFTokenizer, error) {
	if err := positions.Validate(); err != nil {
		return nil, err
	}

	opts := FWFOptions{
		NA: DefaultNA(),
	}
	if len(options) > 0 {
		opts = options[0]
	}

	return &FWFTokenizer{
		positions: positions,
		opts:      opts,
		na:        naSet(opts.NA),
	}, nil
}

// Tokenize binds the tokenizer to a byte range
func (t *FWFTokenizer) Tokenize(data []byte) {
	t.bind(data, t.opts.Skip)
	t.queue = t.queue[:0]
}

// SetWarnings attaches the shared problem sink
func (t *FWFTokenizer) SetWarnings(sink *warn.Sink) {
	t.setWarnings(sink)
}

// Progress reports (bytes consumed, total bytes)
func (t *FWFTokenizer) Progress() (int64, int64) {
	return t.progress()
}

// NextToken returns the next field token, or an EOF token once the input
// is exhausted.
func (t *FWFTokenizer) NextToken() Token {
	for len(t.queue) == 0 {
		if t.atEOF() {
			return Token{Kind: EOF, Row: t.row, Col: 0}
		}
		t.fillLine()
	}

	tok := t.queue[0]
	t.queue = t.queue[1:]

	return tok
}

// fillLine consumes one input line and queues its field tokens.
func (t *FWFTokenizer) fillLine() {
	t.dropSkippedLines()

	if t.atComment(t.opts.Comment) {
		// whole-line comment: dropped lines take no row number
		t.dropLine()
		return
	}

	start := t.pos
	for !t.atEOF() && !isNewline(t.peek()) {
		t.pos++
	}

	line := t.data[start:t.pos]
	t.consumeNewline()

	if len(line) == 0 {
		t.row++
		return
	}

	for i := range t.positions.Begin {
		begin := t.positions.Begin[i]
		if begin >= len(line) {
			break
		}

		end := t.positions.End[i]
		if end < 0 || end > len(line) {
			end = len(line)
		}

		t.queue = append(t.queue, t.classify(t.row, i, string(line[begin:end])))
	}

	t.row++
}

func (t *FWFTokenizer) classify(row, col int, text string) Token {
	text = strings.Trim(text, " \t")

	if text == "" {
		return Token{Kind: Empty, Row: row, Col: col}
	}
	if t.na.matches(text) {
		return Token{Kind: Missing, Row: row, Col: col, Text: text}
	}

	return Token{Kind: String, Row: row, Col: col, Text: text}
}

// GuessFWFPositions infers fixed width field positions from the input by
// finding character columns that are blank on every sampled line, the same
// way fwf_empty does. At most sampleLines lines are examined.
func GuessFWFPositions(data []byte) FWFPositions {
	const sampleLines = 100

	width := 0
	filled := make([]bool, 0, 80)

	lines := 0
	start := 0
	for i := 0; i <= len(data) && lines < sampleLines; i++ {
		if i < len(data) && data[i] != '\n' {
			continue
		}

		line := strings.TrimRight(string(data[start:i]), "\r")
		start = i + 1

		if line == "" {
			continue
		}
		lines++

		if len(line) > width {
			width = len(line)
			for len(filled) < width {
				filled = append(filled, false)
			}
		}
		for j := 0; j < len(line); j++ {
			if line[j] != ' ' && line[j] != '\t' {
				filled[j] = true
			}
		}
	}

	var pos FWFPositions
	inField := false
	for j := 0; j < width; j++ {
		if filled[j] && !inField {
			pos.Begin = append(pos.Begin, j)
			inField = true
		}
		if !filled[j] && inField {
			pos.End = append(pos.End, j)
			inField = false
		}
	}
	if inField {
		pos.End = append(pos.End, -1)
	}

	return pos
}
