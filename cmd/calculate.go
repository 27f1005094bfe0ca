package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/cryptofund"
	"github.com/etnz/cryptofund/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type calculateCmd struct {
	assetCap string
	capital  string
	currency string
	local    bool
}

func (*calculateCmd) Name() string     { return "calculate" }
func (*calculateCmd) Synopsis() string { return "allocate capital across coins, weighted by market cap" }
func (*calculateCmd) Usage() string {
	return `cfund calculate [-asset-cap <f>] [-capital <f>] [-currency <code>] [-local] <ticker[:mcap[:price]]>...

  Splits the capital across the given coins in proportion to their market cap,
  with no coin above the asset cap. Coins given without a price are completed
  with live market data first.
`
}

func (c *calculateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.assetCap, "asset-cap", "", "Maximum weight of a single coin, between 0 and 1 (defaults to the configuration)")
	f.StringVar(&c.capital, "capital", "", "Total capital to allocate (defaults to the configuration)")
	f.StringVar(&c.currency, "currency", "", "Currency code used to display values (defaults to the configuration)")
	f.BoolVar(&c.local, "local", false, "Compute the allocation in process instead of calling the allocation service")
}

func (c *calculateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one coin is required")
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	s := a.session(c.local)
	if s.AssetCap, err = decimalFlag(c.assetCap, s.AssetCap); err != nil {
		return fail(fmt.Errorf("invalid -asset-cap: %w", err))
	}
	if s.TotalCapital, err = decimalFlag(c.capital, s.TotalCapital); err != nil {
		return fail(fmt.Errorf("invalid -capital: %w", err))
	}
	currency := c.currency
	if currency == "" {
		currency = a.cfg.Defaults.Currency
	}

	s.Rows = parseRows(f.Args())
	// the trailing row is completed by the calculation itself.
	enricher := a.enricher()
	for i, r := range s.Rows.All()[:s.Rows.Last()] {
		if r.NeedsEnrichment() {
			s.Rows.Replace(i, enricher.Enrich(ctx, r))
		}
	}

	res, err := s.Calculate(ctx)
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.RenderResults(&renderer.Results{
		Currency:     currency,
		AssetCap:     s.AssetCap.InexactFloat64(),
		TotalCapital: s.TotalCapital.InexactFloat64(),
		Allocations:  res,
	}))
	return subcommands.ExitSuccess
}

// parseRows builds a row list from "ticker[:mcap[:price]]" arguments, one row per argument.
func parseRows(args []string) *cryptofund.Rows {
	rows := cryptofund.NewRows()
	fields := []cryptofund.Field{cryptofund.FieldTicker, cryptofund.FieldMarketCap, cryptofund.FieldPrice}
	for _, arg := range args {
		// a complete row has already grown the list.
		if !rows.Row(rows.Last()).IsBlank() {
			rows.AddRow()
		}
		i := rows.Last()
		for j, v := range strings.SplitN(arg, ":", len(fields)) {
			if v = strings.TrimSpace(v); v != "" {
				rows.SetField(i, fields[j], v)
			}
		}
	}
	return rows
}

// decimalFlag parses a decimal flag value, an empty value means def.
func decimalFlag(v string, def decimal.Decimal) (decimal.Decimal, error) {
	if v == "" {
		return def, nil
	}
	return decimal.NewFromString(v)
}
