package tokenizer

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrBadPositions = errors.New("invalid fixed width positions")
)

// TokenKind represents the kind of a token
type TokenKind int

const (
	// EOF is a sentinel; it terminates the stream and is never emitted as
	// real data.
	EOF TokenKind = iota
	String
	Missing
	Empty
)

// String returns the string representation of TokenKind
func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case String:
		return "STRING"
	case Missing:
		return "MISSING"
	case Empty:
		return "EMPTY"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexical unit of the input: a field value tagged with its
// 0-based row/column position. Tokens are immutable once emitted.
type Token struct {
	Kind TokenKind
	Row  int
	Col  int
	Text string
}

// String returns the string representation of Token
func (t Token) String() string {
	return fmt.Sprintf("%s(%d,%d): %q", t.Kind, t.Row, t.Col, t.Text)
}
