// Package warn collects non-fatal parse problems raised while melting a
// source. A single Sink is shared by the tokenizer, the output collectors
// and the melt engine, so every problem ends up in one place regardless of
// which component noticed it.
package warn

import "fmt"

// Problem records one value that could not be confidently tokenized or
// coerced. It annotates a cell; the cell itself is still emitted.
type Problem struct {
	// Row and Col are 1-based output positions. Zero means the component
	// that raised the problem had no position information.
	Row      int
	Col      int
	Expected string
	Actual   string
}

// String returns a one-line human readable form of the problem.
func (p Problem) String() string {
	return fmt.Sprintf("[%d, %d]: expected %s, got %s", p.Row, p.Col, p.Expected, p.Actual)
}

// Sink accumulates problems. It is not safe for concurrent use; the melt
// loop is strictly single-threaded.
type Sink struct {
	problems []Problem
}

// Warn records a problem at the given 1-based position.
func (s *Sink) Warn(row, col int, expected, actual string) {
	s.problems = append(s.problems, Problem{Row: row, Col: col, Expected: expected, Actual: actual})
}

// Len returns the number of recorded problems.
func (s *Sink) Len() int {
	return len(s.problems)
}

// Problems returns a copy of the recorded problems.
func (s *Sink) Problems() []Problem {
	out := make([]Problem, len(s.problems))
	copy(out, s.problems)
	return out
}

// Clear drops all recorded problems so the sink can be reused for the next
// melt call.
func (s *Sink) Clear() {
	s.problems = s.problems[:0]
}
