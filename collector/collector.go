// Package collector provides the growable typed output buffers the melt
// engine writes cells into. All collectors share one buffer core so the
// grow-with-headroom/trim-exactly capacity policy lives in a single place.
package collector

import (
	"strconv"

	"github.com/cran/meltr/tokenizer"
	"github.com/cran/meltr/warn"
)

// Collector is a growable typed output column.
//
// Resize grows or shrinks the buffer to n slots, preserving already
// written values up to min(old, n). SetValue writes (and converts if
// needed) a value at a 0-based index; a conversion it cannot do
// confidently records a problem and stores a best-effort value instead of
// failing. Vector returns the finalized column; the concrete element type
// depends on the collector. A collector marked Skip is excluded from
// output entirely.
type Collector interface {
	Resize(n int)
	Clear()
	Len() int
	SetValue(index int, value any)
	Vector() any
	Skip() bool
	SetWarnings(sink *warn.Sink)
}

// buffer is the shared growable storage core.
type buffer[T any] struct {
	vals     []T
	skip     bool
	warnings *warn.Sink
}

func (b *buffer[T]) Resize(n int) {
	switch {
	case n < 0:
		n = 0
		fallthrough
	case n <= len(b.vals):
		b.vals = b.vals[:n]
	case n <= cap(b.vals):
		// re-grow into trimmed capacity; stale slots must not leak
		old := len(b.vals)
		b.vals = b.vals[:n]
		var zero T
		for i := old; i < n; i++ {
			b.vals[i] = zero
		}
	default:
		grown := make([]T, n)
		copy(grown, b.vals)
		b.vals = grown
	}
}

func (b *buffer[T]) Clear() {
	b.vals = nil
	b.warnings = nil
}

func (b *buffer[T]) Len() int {
	return len(b.vals)
}

func (b *buffer[T]) Skip() bool {
	return b.skip
}

func (b *buffer[T]) SetSkip(skip bool) {
	b.skip = skip
}

func (b *buffer[T]) SetWarnings(sink *warn.Sink) {
	b.warnings = sink
}

func (b *buffer[T]) warn(row, col int, expected, actual string) {
	if b.warnings != nil {
		b.warnings.Warn(row, col, expected, actual)
	}
}

// Integer collects int values. String input is coerced; failed coercion
// records a problem and stores zero.
type Integer struct {
	buffer[int]
}

// NewInteger creates a new Integer collector
func NewInteger() *Integer {
	return &Integer{}
}

func (c *Integer) SetValue(index int, value any) {
	switch v := value.(type) {
	case int:
		c.vals[index] = v
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			c.warn(0, 0, "an integer", v)
		}
		c.vals[index] = n
	default:
		c.warn(0, 0, "an integer", "unsupported value")
	}
}

// Vector returns the collected column as []int.
func (c *Integer) Vector() any {
	return c.vals
}

// Character collects string values. A Token stores its raw text, with ""
// for an empty field.
type Character struct {
	buffer[string]
}

// NewCharacter creates a new Character collector
func NewCharacter() *Character {
	return &Character{}
}

func (c *Character) SetValue(index int, value any) {
	switch v := value.(type) {
	case string:
		c.vals[index] = v
	case tokenizer.Token:
		if v.Kind == tokenizer.Empty {
			c.vals[index] = ""
		} else {
			c.vals[index] = v.Text
		}
	default:
		c.warn(0, 0, "a character value", "unsupported value")
	}
}

// Vector returns the collected column as []string.
func (c *Character) Vector() any {
	return c.vals
}
