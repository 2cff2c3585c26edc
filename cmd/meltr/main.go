package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
}

var CLI struct {
	Config  string `help:"Configuration file path" short:"c"`
	Verbose bool   `help:"Enable verbose output" short:"v"`
	Quiet   bool   `help:"Suppress output" short:"q"`

	Csv     CsvCmd     `cmd:"" help:"Melt a comma separated file"`
	Tsv     TsvCmd     `cmd:"" help:"Melt a tab separated file"`
	Delim   DelimCmd   `cmd:"" help:"Melt a file with a custom delimiter"`
	Table   TableCmd   `cmd:"" help:"Melt a whitespace separated file"`
	Fwf     FwfCmd     `cmd:"" help:"Melt a fixed width file"`
	Query   QueryCmd   `cmd:"" help:"Melt a file into SQLite and run SQL against it"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("meltr v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	appCtx := &Context{
		Config:  CLI.Config,
		Verbose: CLI.Verbose,
		Quiet:   CLI.Quiet,
	}

	err := ctx.Run(appCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
