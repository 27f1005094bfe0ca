package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/cryptofund"
	"github.com/etnz/cryptofund/renderer"
	"github.com/google/subcommands"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "fetch the price and market cap of coins" }
func (*quoteCmd) Usage() string {
	return `cfund quote <ticker>...

  Prints the price and the market cap of each coin, as used by calculate.
`
}

func (*quoteCmd) SetFlags(f *flag.FlagSet) {}

func (*quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one ticker is required")
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	enricher := a.enricher()
	status := subcommands.ExitSuccess
	var rows []cryptofund.Row
	for _, ticker := range f.Args() {
		row, err := enricher.TryEnrich(ctx, cryptofund.Row{Ticker: ticker})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			status = subcommands.ExitFailure
		}
		rows = append(rows, row)
	}
	printMarkdown(renderer.RowsMarkdown(rows))
	return status
}
