package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/cryptofund/cache"
	"github.com/etnz/cryptofund/coingecko"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

type cacheCmd struct{}

func (*cacheCmd) Name() string     { return "cache" }
func (*cacheCmd) Synopsis() string { return "inspect or clear the coin list cache" }
func (*cacheCmd) Usage() string {
	return `cfund cache info|clear

  info  prints the age of the cached coin list and whether it is fresh.
  clear removes the cached coin list, the next lookup fetches it again.
`
}

func (*cacheCmd) SetFlags(f *flag.FlagSet) {}

func (*cacheCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "expected one of: info, clear")
		return subcommands.ExitUsageError
	}
	a, err := openApp()
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	switch f.Arg(0) {
	case "info":
		printMarkdown(cacheInfo(a.store, a.cfg.Cache.Backend, a.cfg.Cache.TTL, time.Now(), a.log))
	case "clear":
		if err := a.store.Clear(coingecko.CacheKey); err != nil {
			return fail(err)
		}
		fmt.Println("coin list cache cleared")
	default:
		fmt.Fprintf(os.Stderr, "unknown cache action %q, expected one of: info, clear\n", f.Arg(0))
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

// cacheInfo describes the cached coin list in markdown.
func cacheInfo(store cache.Store, backend string, ttl time.Duration, now time.Time, log *zap.Logger) string {
	coins, e, ok := cache.Get[[]coingecko.Coin](store, coingecko.CacheKey, log)
	if !ok {
		return fmt.Sprintf("No coin list in the %s cache.\n", backend)
	}
	fresh := "expired"
	if cache.IsFresh(e, ttl, now) {
		fresh = "fresh"
	}
	return fmt.Sprintf("Coin list in the %s cache: %d coins, written %s (%s ago), %s.\n",
		backend, len(coins), e.Timestamp.Format(time.RFC3339), now.Sub(e.Timestamp).Round(time.Second), fresh)
}
