package meltr

import (
	"fmt"
	"os"

	"github.com/cran/meltr/collector"
	"github.com/cran/meltr/source"
	"github.com/cran/meltr/tokenizer"
	"github.com/cran/meltr/warn"
)

// Output column order is fixed: row, col, data_type, value.
const (
	colRow = iota
	colCol
	colType
	colValue
	numColumns
)

var defaultColNames = []string{"row", "col", "data_type", "value"}

// MeltEngine drives the melt loop: it pulls tokens from a tokenizer bound
// to a source and writes one cell per token into four output collectors.
// The engine is resumable: a bounded Melt call retains its boundary token,
// and the next call picks up exactly where the previous one stopped.
//
// All state is instance-owned and unguarded; an engine must only be used
// from one goroutine.
type MeltEngine struct {
	source     source.Source
	tok        tokenizer.Tokenizer
	collectors [numColumns]collector.Collector
	kept       []int
	names      []string
	progress   bool

	warnings warn.Sink

	// resumable cursor
	cur     tokenizer.Token
	started bool
}

// NewMeltEngine wires a source, a tokenizer and the four output
// collectors together. The tokenizer is bound to the source bytes and
// every component that can raise problems is attached to one shared sink.
// No tokens are pulled yet.
//
// colNames overrides the default output names (row, col, data_type,
// value); nil keeps the defaults. Collectors marked skip are excluded
// from the output and from problem reporting.
func NewMeltEngine(src source.Source, tok tokenizer.Tokenizer, collectors [numColumns]collector.Collector, progress bool, colNames []string) *MeltEngine {
	e := &MeltEngine{
		source:     src,
		tok:        tok,
		collectors: collectors,
		progress:   progress,
	}

	e.tok.Tokenize(src.Data())
	e.tok.SetWarnings(&e.warnings)

	names := colNames
	if names == nil {
		names = defaultColNames
	}

	for j, c := range e.collectors {
		if !c.Skip() {
			e.kept = append(e.kept, j)
			c.SetWarnings(&e.warnings)
			e.names = append(e.names, names[j])
		}
	}

	return e
}

// Problems returns the problems accumulated so far.
func (e *MeltEngine) Problems() []warn.Problem {
	return e.warnings.Problems()
}

func (e *MeltEngine) resizeAll(n int) {
	for _, c := range e.collectors {
		c.Resize(n)
	}
}

func (e *MeltEngine) clearAll() {
	for _, c := range e.collectors {
		c.Clear()
	}
}

// Melt processes tokens from the current cursor position until the
// tokenizer is exhausted or, when rowLimit >= 0, until rowLimit distinct
// source rows have been consumed in this call. The boundary token of a
// bounded call is not consumed; it is retained as the cursor for the next
// call. Repeated bounded calls together behave exactly like one unbounded
// call.
//
// It returns the number of cells written, or -1 when the stream was
// already exhausted before this call started. An EOF token reaching the
// loop body is a tokenizer protocol violation and returns ErrInvalidToken.
func (e *MeltEngine) Melt(l *Locale, rowLimit int) (int, error) {
	if e.started && e.cur.Kind == tokenizer.EOF {
		return -1, nil
	}

	// Initial capacity: a generous constant for unbounded calls, else an
	// empirical ~10 cells per row.
	n := 10000
	if rowLimit >= 0 {
		n = rowLimit * 10
	}
	e.resizeAll(n)

	lastRow := -1
	cells := 0

	var firstRow int
	if !e.started {
		e.cur = e.tok.NextToken()
		e.started = true
		firstRow = 0
	} else {
		firstRow = e.cur.Row
	}

	var bar *progressBar
	if e.progress {
		bar = newProgressBar(os.Stderr)
	}

	for e.cur.Kind != tokenizer.EOF {
		cells++

		if e.progress && cells%progressStep == 0 {
			bar.show(e.tok.Progress())
		}

		if rowLimit >= 0 && e.cur.Row-firstRow >= rowLimit {
			cells--
			break
		}

		if cells >= n {
			n = e.estimateCapacity(cells, n)
			e.resizeAll(n)
		}

		i := cells - 1
		e.collectors[colRow].SetValue(i, e.cur.Row+1)
		e.collectors[colCol].SetValue(i, e.cur.Col+1)
		e.collectors[colValue].SetValue(i, e.cur)

		switch e.cur.Kind {
		case tokenizer.String:
			e.collectors[colType].SetValue(i, GuessType(e.cur.Text, l))
		case tokenizer.Missing:
			e.collectors[colType].SetValue(i, TypeMissing)
		case tokenizer.Empty:
			e.collectors[colType].SetValue(i, TypeEmpty)
		default:
			return 0, fmt.Errorf("%w at row %d", ErrInvalidToken, e.cur.Row+1)
		}

		lastRow = e.cur.Row
		e.cur = e.tok.NextToken()
	}

	if e.progress {
		bar.show(e.tok.Progress())
		bar.stop()
	}

	// Trim the collectors to the exact number of cells written so callers
	// never observe stale trailing capacity.
	if lastRow == -1 {
		e.resizeAll(0)
	} else if cells < n {
		e.resizeAll(cells)
	}

	return cells, nil
}

// estimateCapacity re-estimates the total cell count from the tokenizer's
// progress fraction, with headroom. A zero fraction cannot be divided by,
// so growth falls back to doubling.
func (e *MeltEngine) estimateCapacity(cells, n int) int {
	consumed, total := e.tok.Progress()
	if consumed <= 0 || total <= 0 {
		return n * 2
	}

	frac := float64(consumed) / float64(total)
	est := int(float64(cells) / frac * 1.1)
	if est <= n {
		est = n * 2
	}

	return est
}

// MeltToDataFrame melts up to rowLimit rows (all rows when negative) and
// materializes the collectors into a four column table with the
// accumulated problems attached. It then clears the collectors and the
// problem sink so the engine can produce the next page.
func (e *MeltEngine) MeltToDataFrame(l *Locale, rowLimit int) (*DataFrame, error) {
	if _, err := e.Melt(l, rowLimit); err != nil {
		return nil, err
	}

	df := &DataFrame{problems: e.warnings.Problems()}
	for i, j := range e.kept {
		col := Column{Name: e.names[i]}
		switch v := e.collectors[j].Vector().(type) {
		case []int:
			col.Ints = append([]int{}, v...)
		case []string:
			col.Strs = append([]string{}, v...)
		}
		df.Columns = append(df.Columns, col)
	}

	e.clearAll()
	e.warnings.Clear()

	// Clear drops the collectors' sink reference; reattach for the next
	// page.
	for _, j := range e.kept {
		e.collectors[j].SetWarnings(&e.warnings)
	}

	return df, nil
}
