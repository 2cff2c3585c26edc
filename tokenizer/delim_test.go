package tokenizer

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/cran/meltr/warn"
)

// drain pulls every token up to and including EOF.
func drain(t *testing.T, tok Tokenizer, data string) []Token {
	t.Helper()

	tok.Tokenize([]byte(data))

	var tokens []Token
	for {
		token := tok.NextToken()
		tokens = append(tokens, token)
		if token.Kind == EOF {
			return tokens
		}
	}
}

func TestDelimTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		options  DelimOptions
		expected []Token
	}{
		{
			name:  "simple fields",
			input: "a,b\nc,d\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: String, Row: 0, Col: 1, Text: "b"},
				{Kind: String, Row: 1, Col: 0, Text: "c"},
				{Kind: String, Row: 1, Col: 1, Text: "d"},
			},
		},
		{
			name:  "no trailing newline",
			input: "a,b",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: String, Row: 0, Col: 1, Text: "b"},
			},
		},
		{
			name:  "crlf line endings",
			input: "a\r\nb\r\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: String, Row: 1, Col: 0, Text: "b"},
			},
		},
		{
			name:  "empty field",
			input: "a,,b\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: Empty, Row: 0, Col: 1},
				{Kind: String, Row: 0, Col: 2, Text: "b"},
			},
		},
		{
			name:  "missing markers",
			input: "1,NA\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "1"},
				{Kind: Missing, Row: 0, Col: 1, Text: "NA"},
			},
		},
		{
			name:    "custom missing markers",
			input:   "x,-\n",
			options: DelimOptions{Quote: '"', EscapeDouble: true, NA: []string{"-"}},
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "x"},
				{Kind: Missing, Row: 0, Col: 1, Text: "-"},
			},
		},
		{
			name:  "quoted field with delimiter",
			input: "\"a,b\",c\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a,b"},
				{Kind: String, Row: 0, Col: 1, Text: "c"},
			},
		},
		{
			name:  "doubled quote escape",
			input: "\"a\"\"b\"\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a\"b"},
			},
		},
		{
			name:  "quoted field with embedded newline keeps its row",
			input: "\"a\nb\",c\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a\nb"},
				{Kind: String, Row: 0, Col: 1, Text: "c"},
			},
		},
		{
			name:  "quoted empty field",
			input: "\"\",a\n",
			expected: []Token{
				{Kind: Empty, Row: 0, Col: 0},
				{Kind: String, Row: 0, Col: 1, Text: "a"},
			},
		},
		{
			name:    "backslash escape",
			input:   `a\,b,c` + "\n",
			options: DelimOptions{Quote: '"', EscapeBackslash: true, NA: []string{"NA"}},
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a,b"},
				{Kind: String, Row: 0, Col: 1, Text: "c"},
			},
		},
		{
			name:    "whole line comment takes no row number",
			input:   "# header\na,b\n",
			options: DelimOptions{Quote: '"', EscapeDouble: true, Comment: "#", NA: []string{"NA"}},
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: String, Row: 0, Col: 1, Text: "b"},
			},
		},
		{
			name:    "trailing comment ends the line",
			input:   "a,b #x\nc,d\n",
			options: DelimOptions{Quote: '"', EscapeDouble: true, Comment: "#", TrimWS: true, NA: []string{"NA"}},
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: String, Row: 0, Col: 1, Text: "b"},
				{Kind: String, Row: 1, Col: 0, Text: "c"},
				{Kind: String, Row: 1, Col: 1, Text: "d"},
			},
		},
		{
			name:    "skip leading lines",
			input:   "junk\na,b\n",
			options: DelimOptions{Quote: '"', EscapeDouble: true, Skip: 1, NA: []string{"NA"}},
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: String, Row: 0, Col: 1, Text: "b"},
			},
		},
		{
			name:    "trim whitespace",
			input:   " a , b \n",
			options: DelimOptions{Quote: '"', EscapeDouble: true, TrimWS: true, NA: []string{"NA"}},
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: String, Row: 0, Col: 1, Text: "b"},
			},
		},
		{
			name:  "trailing delimiter at end of input yields its empty field",
			input: "a,",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: Empty, Row: 0, Col: 1},
			},
		},
		{
			name:  "lone delimiter yields two empty fields",
			input: ",",
			expected: []Token{
				{Kind: Empty, Row: 0, Col: 0},
				{Kind: Empty, Row: 0, Col: 1},
			},
		},
		{
			name:  "trailing delimiter before newline yields its empty field",
			input: "a,\nb,c\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: Empty, Row: 0, Col: 1},
				{Kind: String, Row: 1, Col: 0, Text: "b"},
				{Kind: String, Row: 1, Col: 1, Text: "c"},
			},
		},
		{
			name:  "blank line yields an empty cell",
			input: "a\n\nb\n",
			expected: []Token{
				{Kind: String, Row: 0, Col: 0, Text: "a"},
				{Kind: Empty, Row: 1, Col: 0},
				{Kind: String, Row: 2, Col: 0, Text: "b"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tok Tokenizer
			if tt.options.NA == nil {
				tok = NewDelimTokenizer(',')
			} else {
				tok = NewDelimTokenizer(',', tt.options)
			}

			tokens := drain(t, tok, tt.input)

			assert.Equal(t, EOF, tokens[len(tokens)-1].Kind)
			assert.Equal(t, tt.expected, tokens[:len(tokens)-1])
		})
	}
}

func TestDelimTokenizerUnterminatedQuote(t *testing.T) {
	var sink warn.Sink

	tok := NewDelimTokenizer(',')
	tok.SetWarnings(&sink)

	tokens := drain(t, tok, "\"abc")

	assert.Equal(t, []Token{
		{Kind: String, Row: 0, Col: 0, Text: "abc"},
		{Kind: EOF, Row: 0, Col: 0},
	}, tokens)

	problems := sink.Problems()
	assert.Equal(t, 1, len(problems))
	assert.Equal(t, 1, problems[0].Row)
	assert.Equal(t, 1, problems[0].Col)
	assert.Equal(t, "closing quote", problems[0].Expected)
}

func TestDelimTokenizerEOFAfterExhaustion(t *testing.T) {
	tok := NewDelimTokenizer(',')
	tok.Tokenize([]byte("a\n"))

	assert.Equal(t, String, tok.NextToken().Kind)
	assert.Equal(t, EOF, tok.NextToken().Kind)
	assert.Equal(t, EOF, tok.NextToken().Kind)
}

func TestDelimTokenizerProgress(t *testing.T) {
	tok := NewDelimTokenizer(',')
	tok.Tokenize([]byte("a,b\n"))

	consumed, total := tok.Progress()
	assert.Equal(t, int64(0), consumed)
	assert.Equal(t, int64(4), total)

	drain(t, tok, "a,b\n")

	consumed, total = tok.Progress()
	assert.Equal(t, total, consumed)
}

func TestDelimTokenizerEmptyInputTotalIsClamped(t *testing.T) {
	tok := NewDelimTokenizer(',')
	tok.Tokenize(nil)

	_, total := tok.Progress()
	assert.Equal(t, int64(1), total)
	assert.Equal(t, EOF, tok.NextToken().Kind)
}
