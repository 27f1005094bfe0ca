package coingecko

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/etnz/cryptofund/cache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeLister serves a fixed universe and counts calls.
type fakeLister struct {
	coins []Coin
	err   error
	calls int
}

func (f *fakeLister) CoinList(context.Context) ([]Coin, error) {
	f.calls++
	return f.coins, f.err
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

var universe = []Coin{
	{ID: "bitcoin", Symbol: "btc"},
	{ID: "ethereum-wormhole", Symbol: "eth"},
	{ID: "dogecoin", Symbol: "doge"},
	{ID: "cardano", Symbol: "ada"},
}

func newTestResolver() (*Resolver, *fakeLister, *clock, *observer.ObservedLogs) {
	c := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	src := &fakeLister{coins: universe}
	core, logs := observer.New(zapcore.WarnLevel)
	return &Resolver{
		Source: src,
		Store:  cache.NewMemory(c.Now),
		TTL:    24 * time.Hour,
		Now:    c.Now,
		Logger: zap.New(core),
	}, src, c, logs
}

func TestResolver_Freshness(t *testing.T) {
	r, src, c, _ := newTestResolver()
	ctx := context.Background()

	if id, ok := r.Resolve(ctx, "DOGE"); !ok || id != "dogecoin" {
		t.Fatalf("Resolve(DOGE) = %q, %v, want dogecoin, true", id, ok)
	}
	if src.calls != 1 {
		t.Fatalf("source called %d times, want 1", src.calls)
	}

	c.t = c.t.Add(24*time.Hour - time.Millisecond)
	r.Resolve(ctx, "ada")
	if src.calls != 1 {
		t.Errorf("source called %d times before expiry, want 1", src.calls)
	}

	c.t = c.t.Add(2 * time.Millisecond)
	r.Resolve(ctx, "ada")
	if src.calls != 2 {
		t.Errorf("source called %d times after expiry, want 2", src.calls)
	}
}

func TestResolver_StaleFallback(t *testing.T) {
	r, src, c, logs := newTestResolver()
	ctx := context.Background()
	r.Resolve(ctx, "ada")

	c.t = c.t.Add(72 * time.Hour)
	src.err = errors.New("network down")
	id, ok := r.Resolve(ctx, "doge")
	if !ok || id != "dogecoin" {
		t.Errorf("Resolve(doge) = %q, %v, want dogecoin from the expired cache", id, ok)
	}
	if logs.FilterMessage("using expired coin list due to API failure").Len() != 1 {
		t.Errorf("expected a degraded mode warning, got %v", logs.All())
	}
}

func TestResolver_UndecodableCacheEntry(t *testing.T) {
	r, src, _, logs := newTestResolver()
	if err := r.Store.Write(CacheKey, []byte(`{"not":"a list"}`)); err != nil {
		t.Fatal(err)
	}
	if id, ok := r.Resolve(context.Background(), "doge"); !ok || id != "dogecoin" {
		t.Errorf("Resolve(doge) = %q, %v, want dogecoin from the source", id, ok)
	}
	if src.calls != 1 {
		t.Errorf("source called %d times, want 1", src.calls)
	}
	if logs.FilterMessage("ignoring undecodable cache entry").Len() != 1 {
		t.Errorf("expected the cache warning on the resolver logger, got %v", logs.All())
	}
}

func TestResolver_NoCacheAndSourceDown(t *testing.T) {
	r, src, _, logs := newTestResolver()
	src.err = errors.New("network down")
	if id, ok := r.Resolve(context.Background(), "doge"); ok {
		t.Errorf("Resolve(doge) = %q, want not found", id)
	}
	if logs.FilterMessage("failed to get CoinGecko id").Len() != 1 {
		t.Errorf("expected a resolution warning, got %v", logs.All())
	}
}

func TestResolver_PriorityOverride(t *testing.T) {
	r, src, _, _ := newTestResolver()
	// the universe maps eth to a bridged token, the priority table must win.
	id, ok := r.Resolve(context.Background(), "ETH")
	if !ok || id != "ethereum" {
		t.Errorf("Resolve(ETH) = %q, %v, want ethereum, true", id, ok)
	}
	if src.calls != 0 {
		t.Errorf("source called %d times for a priority ticker, want 0", src.calls)
	}
}

func TestResolver_CustomPriority(t *testing.T) {
	r, _, _, _ := newTestResolver()
	r.Priority = map[string]string{}
	if id, _ := r.Resolve(context.Background(), "eth"); id != "ethereum-wormhole" {
		t.Errorf("Resolve(eth) = %q without priority table, want ethereum-wormhole", id)
	}
}

func TestResolver_NotFound(t *testing.T) {
	r, _, _, _ := newTestResolver()
	for _, ticker := range []string{"nope", "", "  "} {
		if id, ok := r.Resolve(context.Background(), ticker); ok {
			t.Errorf("Resolve(%q) = %q, want not found", ticker, id)
		}
	}
}

func TestResolver_WithoutStore(t *testing.T) {
	r, src, _, _ := newTestResolver()
	r.Store = nil
	r.Resolve(context.Background(), "ada")
	r.Resolve(context.Background(), "ada")
	if src.calls != 2 {
		t.Errorf("source called %d times without store, want 2", src.calls)
	}
}

func TestLookup_TieBreak(t *testing.T) {
	coins := []Coin{
		{ID: "uniswap-wormhole", Symbol: "uni"},
		{ID: "universe-token", Symbol: "UNI"},
		{ID: "uniswap", Symbol: "uni"},
		{ID: "unicorn", Symbol: "uni"},
	}
	got, ok := lookup(coins, "uni")
	if !ok || got.ID != "unicorn" {
		t.Errorf("lookup(uni) = %+v, want unicorn (shortest, then smallest id)", got)
	}
	// order of the list must not matter.
	reversed := []Coin{coins[3], coins[2], coins[1], coins[0]}
	if got2, _ := lookup(reversed, "uni"); got2 != got {
		t.Errorf("lookup depends on list order: %+v != %+v", got2, got)
	}
}
