package coingecko

import (
	"context"
	"strings"
	"time"

	"github.com/etnz/cryptofund/cache"
	"go.uber.org/zap"
)

// CacheKey is the key of the coin universe in the cache store.
const CacheKey = "coingecko-coinlist"

// DefaultTTL is how long a cached coin universe is used without refreshing it.
const DefaultTTL = 24 * time.Hour

// DefaultPriority maps the most traded tickers directly to their ids.
//
// Those tickers collide with many tokens in the coin universe.
var DefaultPriority = map[string]string{
	"btc": "bitcoin",
	"eth": "ethereum",
	"sol": "solana",
	"xrp": "ripple",
}

// Lister returns the coin universe.
type Lister interface {
	CoinList(ctx context.Context) ([]Coin, error)
}

// Resolver maps tickers to CoinGecko ids.
//
// Tickers in Priority are mapped directly. Other tickers are looked up in the
// coin universe, kept in Store for TTL. When the universe cannot be refreshed,
// an expired copy is used instead.
type Resolver struct {
	Source   Lister
	Store    cache.Store       // nil disables caching
	TTL      time.Duration     // defaults to DefaultTTL
	Priority map[string]string // nil means DefaultPriority
	Now      func() time.Time  // defaults to time.Now
	Logger   *zap.Logger       // defaults to zap.L()
}

func (r *Resolver) ttl() time.Duration {
	if r.TTL <= 0 {
		return DefaultTTL
	}
	return r.TTL
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.L()
	}
	return r.Logger
}

func (r *Resolver) priority() map[string]string {
	if r.Priority == nil {
		return DefaultPriority
	}
	return r.Priority
}

// Resolve returns the id of ticker. It never fails: when no coin matches or the
// universe is unavailable, it returns false.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (string, bool) {
	symbol := strings.ToLower(strings.TrimSpace(ticker))
	if symbol == "" {
		return "", false
	}
	if id, ok := r.priority()[symbol]; ok {
		return id, true
	}

	coins, err := r.Coins(ctx)
	if err != nil {
		r.logger().Warn("failed to get CoinGecko id", zap.String("ticker", ticker), zap.Error(err))
		return "", false
	}
	coin, ok := lookup(coins, symbol)
	if !ok {
		r.logger().Warn("ticker not found in the coin list", zap.String("ticker", ticker))
		return "", false
	}
	return coin.ID, true
}

// Coins returns the coin universe, from the cache if it is fresh, otherwise from the source.
//
// If the source fails, any cached copy is returned, however old.
func (r *Resolver) Coins(ctx context.Context) ([]Coin, error) {
	var (
		cached []Coin
		entry  cache.Entry
		hit    bool
	)
	if r.Store != nil {
		cached, entry, hit = cache.Get[[]Coin](r.Store, CacheKey, r.Logger)
		if hit && cache.IsFresh(entry, r.ttl(), r.now()) {
			return cached, nil
		}
	}

	fresh, err := r.Source.CoinList(ctx)
	if err != nil {
		if hit {
			r.logger().Warn("using expired coin list due to API failure",
				zap.Time("cached_at", entry.Timestamp),
				zap.Error(err))
			return cached, nil
		}
		return nil, err
	}
	if r.Store != nil {
		if err := cache.Put(r.Store, CacheKey, fresh); err != nil {
			r.logger().Warn("cannot cache coin list (ignored)", zap.Error(err))
		}
	}
	return fresh, nil
}

// lookup finds the coin with the given lower case symbol.
//
// When several coins share the symbol, the shortest id wins, then the smallest id.
func lookup(coins []Coin, symbol string) (best Coin, found bool) {
	for _, c := range coins {
		if strings.ToLower(c.Symbol) != symbol {
			continue
		}
		if !found || len(c.ID) < len(best.ID) || (len(c.ID) == len(best.ID) && c.ID < best.ID) {
			best, found = c, true
		}
	}
	return best, found
}
