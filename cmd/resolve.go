package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type resolveCmd struct{}

func (*resolveCmd) Name() string     { return "resolve" }
func (*resolveCmd) Synopsis() string { return "print the CoinGecko id of tickers" }
func (*resolveCmd) Usage() string {
	return `cfund resolve <ticker>...

  Prints the CoinGecko id of each ticker, one per line, or "-" if there is none.
`
}

func (*resolveCmd) SetFlags(f *flag.FlagSet) {}

func (*resolveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one ticker is required")
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	r := a.resolver()
	for _, ticker := range f.Args() {
		id, ok := r.Resolve(ctx, ticker)
		if !ok {
			id = "-"
		}
		fmt.Println(id)
	}
	return subcommands.ExitSuccess
}
