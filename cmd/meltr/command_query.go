package main

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cran/meltr"
	"github.com/cran/meltr/tokenizer"
)

// Sentinel errors
var (
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrQueryExecution      = errors.New("query execution failed")
)

// QueryCmd melts a file into an in-memory SQLite table named melt
// (columns row, col, data_type, value) and runs SQL against it.
type QueryCmd struct {
	meltArgs
	SQL    string `short:"s" help:"SQL to run against the melt table" default:"SELECT * FROM melt"`
	Format string `short:"f" help:"Output format: table, csv or json" default:"table"`
	Delim  string `short:"d" help:"Field delimiter of the input" default:","`
}

// Run executes the query command
func (cmd *QueryCmd) Run(ctx *Context) error {
	switch cmd.Format {
	case "table", "csv", "json":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidOutputFormat, cmd.Format)
	}

	delim := []rune(cmd.Delim)
	if len(delim) != 1 {
		return fmt.Errorf("%w: %q", ErrBadDelimiter, cmd.Delim)
	}

	s, err := cmd.resolve(ctx)
	if err != nil {
		return err
	}

	src, err := cmd.openSource(s)
	if err != nil {
		return err
	}
	defer src.Close()

	var df *meltr.DataFrame
	if len(src.Data()) == 0 {
		df = meltr.EmptyFrame()
	} else {
		tok := tokenizer.NewDelimTokenizer(delim[0], cmd.delimOptions(s, quoteRune(s)))
		engine := meltr.NewMeltEngine(src, tok, meltr.DefaultCollectors(), false, nil)

		df, err = engine.MeltToDataFrame(s.locale, -1)
		if err != nil {
			return err
		}
	}

	reportProblems(ctx, df.Problems())

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := loadFrame(db, df); err != nil {
		return err
	}

	out, err := cmd.openOutput()
	if err != nil {
		return err
	}
	if out != os.Stdout {
		defer out.Close()
	}

	return cmd.execute(db, out)
}

// loadFrame bulk-inserts the melted cells inside one transaction.
func loadFrame(db *sql.DB, df *meltr.DataFrame) error {
	if _, err := db.Exec(`CREATE TABLE melt (row INTEGER, col INTEGER, data_type TEXT, value TEXT)`); err != nil {
		return fmt.Errorf("failed to create melt table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO melt (row, col, data_type, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := df.Columns[0].Ints
	cols := df.Columns[1].Ints
	types := df.Columns[2].Strs
	values := df.Columns[3].Strs

	for i := 0; i < df.NRow(); i++ {
		if _, err := stmt.Exec(rows[i], cols[i], types[i], values[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert cell %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func (cmd *QueryCmd) execute(db *sql.DB, out io.Writer) error {
	rows, err := db.Query(cmd.SQL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}

	var records [][]string

	scan := make([]any, len(columns))
	for rows.Next() {
		vals := make([]sql.NullString, len(columns))
		for i := range vals {
			scan[i] = &vals[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return fmt.Errorf("%w: %w", ErrQueryExecution, err)
		}

		record := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				record[i] = v.String
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrQueryExecution, err)
	}

	switch cmd.Format {
	case "csv":
		return writeCSVResult(out, columns, records)
	case "json":
		return writeJSONResult(out, columns, records)
	default:
		return writeTableResult(out, columns, records)
	}
}

func writeCSVResult(out io.Writer, columns []string, records [][]string) error {
	w := csv.NewWriter(out)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}

func writeJSONResult(out io.Writer, columns []string, records [][]string) error {
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		row := make(map[string]string, len(columns))
		for i, name := range columns {
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(rows)
}

func writeTableResult(out io.Writer, columns []string, records [][]string) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, record := range records {
		fmt.Fprintln(w, strings.Join(record, "\t"))
	}

	return w.Flush()
}
