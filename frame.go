package meltr

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cran/meltr/warn"
)

// Column is one output column of a DataFrame. Exactly one of Ints and
// Strs is populated, depending on the column's type.
type Column struct {
	Name string
	Ints []int
	Strs []string
}

// Len returns the column length.
func (c Column) Len() int {
	if c.Ints != nil {
		return len(c.Ints)
	}
	return len(c.Strs)
}

// cell returns the string form of the value at index i.
func (c Column) cell(i int) string {
	if c.Ints != nil {
		return strconv.Itoa(c.Ints[i])
	}
	return c.Strs[i]
}

// DataFrame is the melted output table. It always carries the four melt
// columns (row, col, data_type, value) in that order, plus the problems
// accumulated while producing them.
type DataFrame struct {
	Columns []Column

	problems []warn.Problem
}

// NRow returns the number of rows in the frame.
func (d *DataFrame) NRow() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// Problems returns the non-fatal parse problems attached to the frame.
func (d *DataFrame) Problems() []warn.Problem {
	return d.problems
}

// WriteCSV writes the frame as CSV, header included.
func (d *DataFrame) WriteCSV(w io.Writer) error {
	return d.writeCSV(w, true)
}

// WriteCSVBody writes the frame rows without a header, for appending a
// windowed page to output started by an earlier page.
func (d *DataFrame) WriteCSVBody(w io.Writer) error {
	return d.writeCSV(w, false)
}

func (d *DataFrame) writeCSV(w io.Writer, header bool) error {
	cw := csv.NewWriter(w)

	record := make([]string, len(d.Columns))
	if header {
		for i, col := range d.Columns {
			record[i] = col.Name
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i := 0; i < d.NRow(); i++ {
		for j, col := range d.Columns {
			record[j] = col.cell(i)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// String renders a small aligned preview of the frame, capped at 20 rows.
func (d *DataFrame) String() string {
	const maxRows = 20

	var b strings.Builder

	widths := make([]int, len(d.Columns))
	for i, col := range d.Columns {
		widths[i] = len(col.Name)
		for r := 0; r < d.NRow() && r < maxRows; r++ {
			if n := len(col.cell(r)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, col := range d.Columns {
		fmt.Fprintf(&b, "%-*s  ", widths[i], col.Name)
	}
	b.WriteString("\n")

	for r := 0; r < d.NRow(); r++ {
		if r == maxRows {
			fmt.Fprintf(&b, "... %d more rows\n", d.NRow()-maxRows)
			break
		}
		for i, col := range d.Columns {
			fmt.Fprintf(&b, "%-*s  ", widths[i], col.cell(r))
		}
		b.WriteString("\n")
	}

	return b.String()
}
