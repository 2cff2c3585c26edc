package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/cran/meltr"
	"github.com/cran/meltr/source"
	"github.com/cran/meltr/tokenizer"
	"github.com/cran/meltr/warn"
)

// Sentinel errors
var (
	ErrBadDelimiter = errors.New("delimiter must be a single character")
	ErrBadPositions = errors.New("positions must be begin:end pairs like 0:5,5:10")
)

// meltArgs holds the flags shared by every melt command.
type meltArgs struct {
	File     string   `arg:"" help:"Input file, or - for stdin"`
	Output   string   `short:"o" help:"Output file (default stdout)"`
	Lines    int      `help:"Page size in source rows; negative melts everything in one call" default:"-1"`
	NA       []string `help:"Missing value markers (overrides config)"`
	Skip     int      `help:"Leading lines to skip"`
	Comment  string   `help:"Comment prefix"`
	TrimWS   bool     `help:"Trim whitespace around unquoted fields"`
	Progress bool     `help:"Show a progress indicator"`
}

// settings resolves config file values and flag overrides into the final
// tokenizer inputs.
type settings struct {
	config  *meltr.Config
	locale  *meltr.Locale
	na      []string
	skip    int
	comment string
	trimWS  bool
}

func (a *meltArgs) resolve(ctx *Context) (*settings, error) {
	config, err := meltr.LoadConfig(ctx.Config)
	if err != nil {
		return nil, err
	}

	locale, err := config.NewLocale()
	if err != nil {
		return nil, err
	}

	s := &settings{
		config:  config,
		locale:  locale,
		na:      config.NA,
		skip:    config.Skip,
		comment: config.Comment,
		trimWS:  config.TrimWS,
	}
	if len(a.NA) > 0 {
		s.na = a.NA
	}
	if a.Skip > 0 {
		s.skip = a.Skip
	}
	if a.Comment != "" {
		s.comment = a.Comment
	}
	if a.TrimWS {
		s.trimWS = true
	}

	return s, nil
}

func (a *meltArgs) openSource(s *settings) (source.Source, error) {
	decoder, err := s.locale.NewDecoder()
	if err != nil {
		return nil, err
	}

	if a.File == "-" {
		return source.NewReaderSource(os.Stdin, source.WithDecoder(decoder))
	}

	return source.NewFileSource(a.File, source.WithDecoder(decoder))
}

func (a *meltArgs) openOutput() (io.WriteCloser, error) {
	if a.Output == "" {
		return os.Stdout, nil
	}

	f, err := os.Create(a.Output)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return f, nil
}

// melt runs the shared melt loop: open, page through the engine, write
// CSV, report problems.
func (a *meltArgs) melt(ctx *Context, makeTok func(s *settings, data []byte) (tokenizer.Tokenizer, error)) error {
	s, err := a.resolve(ctx)
	if err != nil {
		return err
	}

	src, err := a.openSource(s)
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := a.openOutput()
	if err != nil {
		return err
	}
	if out != os.Stdout {
		defer out.Close()
	}

	if len(src.Data()) == 0 {
		return meltr.EmptyFrame().WriteCSV(out)
	}

	tok, err := makeTok(s, src.Data())
	if err != nil {
		return err
	}

	showProgress := a.Progress && !ctx.Quiet
	engine := meltr.NewMeltEngine(src, tok, meltr.DefaultCollectors(), showProgress, nil)

	first := true
	for {
		df, err := engine.MeltToDataFrame(s.locale, a.Lines)
		if err != nil {
			return err
		}

		if first {
			err = df.WriteCSV(out)
		} else {
			err = df.WriteCSVBody(out)
		}
		if err != nil {
			return err
		}

		reportProblems(ctx, df.Problems())

		if a.Lines < 0 || df.NRow() == 0 {
			break
		}
		first = false
	}

	return nil
}

func reportProblems(ctx *Context, problems []warn.Problem) {
	if ctx.Quiet || len(problems) == 0 {
		return
	}

	color.Yellow("Warning: %d parsing problem(s)", len(problems))
	if ctx.Verbose {
		for _, p := range problems {
			color.Yellow("  %s", p)
		}
	}
}

func (a *meltArgs) delimOptions(s *settings, quote rune) tokenizer.DelimOptions {
	return tokenizer.DelimOptions{
		Quote:        quote,
		EscapeDouble: true,
		Comment:      s.comment,
		Skip:         s.skip,
		TrimWS:       s.trimWS,
		NA:           s.na,
	}
}

func quoteRune(s *settings) rune {
	if s.config.Quote == "" {
		return 0
	}
	return []rune(s.config.Quote)[0]
}

// CsvCmd represents the csv command
type CsvCmd struct {
	meltArgs
}

// Run executes the csv command
func (cmd *CsvCmd) Run(ctx *Context) error {
	return cmd.melt(ctx, func(s *settings, _ []byte) (tokenizer.Tokenizer, error) {
		return tokenizer.NewDelimTokenizer(',', cmd.delimOptions(s, quoteRune(s))), nil
	})
}

// TsvCmd represents the tsv command
type TsvCmd struct {
	meltArgs
}

// Run executes the tsv command
func (cmd *TsvCmd) Run(ctx *Context) error {
	return cmd.melt(ctx, func(s *settings, _ []byte) (tokenizer.Tokenizer, error) {
		return tokenizer.NewDelimTokenizer('\t', cmd.delimOptions(s, quoteRune(s))), nil
	})
}

// DelimCmd represents the delim command
type DelimCmd struct {
	meltArgs
	Delim string `short:"d" required:"" help:"Field delimiter (single character)"`
}

// Run executes the delim command
func (cmd *DelimCmd) Run(ctx *Context) error {
	delim := []rune(cmd.Delim)
	if len(delim) != 1 {
		return fmt.Errorf("%w: %q", ErrBadDelimiter, cmd.Delim)
	}

	return cmd.melt(ctx, func(s *settings, _ []byte) (tokenizer.Tokenizer, error) {
		return tokenizer.NewDelimTokenizer(delim[0], cmd.delimOptions(s, quoteRune(s))), nil
	})
}

// TableCmd represents the table command
type TableCmd struct {
	meltArgs
}

// Run executes the table command
func (cmd *TableCmd) Run(ctx *Context) error {
	return cmd.melt(ctx, func(s *settings, _ []byte) (tokenizer.Tokenizer, error) {
		return tokenizer.NewWSTokenizer(tokenizer.WSOptions{
			Comment: s.comment,
			Skip:    s.skip,
			NA:      s.na,
		}), nil
	})
}

// FwfCmd represents the fwf command
type FwfCmd struct {
	meltArgs
	Positions string `short:"p" help:"Field positions as begin:end pairs, e.g. 0:5,5:10 (last end may be -1); guessed from blank columns when omitted"`
}

// Run executes the fwf command
func (cmd *FwfCmd) Run(ctx *Context) error {
	return cmd.melt(ctx, func(s *settings, data []byte) (tokenizer.Tokenizer, error) {
		positions, err := cmd.positions(data)
		if err != nil {
			return nil, err
		}

		return tokenizer.NewFWFTokenizer(positions, tokenizer.FWFOptions{
			Comment: s.comment,
			Skip:    s.skip,
			NA:      s.na,
		})
	})
}

func (cmd *FwfCmd) positions(data []byte) (tokenizer.FWFPositions, error) {
	if cmd.Positions == "" {
		return tokenizer.GuessFWFPositions(data), nil
	}

	var pos tokenizer.FWFPositions
	for _, pair := range strings.Split(cmd.Positions, ",") {
		begin, end, ok := strings.Cut(pair, ":")
		if !ok {
			return pos, fmt.Errorf("%w: %q", ErrBadPositions, pair)
		}

		b, err := strconv.Atoi(begin)
		if err != nil {
			return pos, fmt.Errorf("%w: %q", ErrBadPositions, pair)
		}
		e, err := strconv.Atoi(end)
		if err != nil {
			return pos, fmt.Errorf("%w: %q", ErrBadPositions, pair)
		}

		pos.Begin = append(pos.Begin, b)
		pos.End = append(pos.End, e)
	}

	return pos, nil
}
