package config

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Fatalf("expected cache ttl 24h by default, got %v", cfg.Cache.TTL)
	}
	if got := cfg.Priority["xrp"]; got != "ripple" {
		t.Fatalf("expected xrp priority to be ripple, got %q", got)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Fatalf("expected file backend by default, got %q", cfg.Cache.Backend)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfund.yaml")
	data := `
coingecko:
  api_key: demo
cache:
  backend: sqlite
  ttl: 1h
defaults:
  asset_cap: 0.5
priority:
  doge: dogecoin
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, found, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !found {
		t.Fatal("LoadFile() did not find the file")
	}
	if cfg.CoinGecko.APIKey != "demo" {
		t.Errorf("api key = %q, want demo", cfg.CoinGecko.APIKey)
	}
	if cfg.Cache.Backend != BackendSQLite || cfg.Cache.TTL != time.Hour {
		t.Errorf("cache = %+v, want sqlite 1h", cfg.Cache)
	}
	if cfg.Defaults.AssetCap != 0.5 {
		t.Errorf("asset cap = %v, want 0.5", cfg.Defaults.AssetCap)
	}
	// unset values keep their defaults.
	if cfg.Binance.QuoteAsset != "USDT" {
		t.Errorf("quote asset = %q, want USDT", cfg.Binance.QuoteAsset)
	}
	// priority entries extend the default table.
	if cfg.Priority["doge"] != "dogecoin" || cfg.Priority["eth"] != "ethereum" {
		t.Errorf("priority = %v, want defaults plus doge", cfg.Priority)
	}
}

func TestLoadFile_PriorityKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfund.yaml")
	data := `
priority:
  ETH: ethereum-classic
  " Doge ": dogecoin
  sol: ""
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	want := map[string]string{
		"btc":  "bitcoin",
		"eth":  "ethereum-classic",
		"doge": "dogecoin",
		"xrp":  "ripple",
	}
	if !reflect.DeepEqual(cfg.Priority, want) {
		t.Errorf("priority = %v, want %v", cfg.Priority, want)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, found, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if found {
		t.Fatal("LoadFile() found a missing file")
	}
	if cfg.Defaults.AssetCap != Default().Defaults.AssetCap {
		t.Fatal("expected defaults for a missing file")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfund.yaml")
	if err := os.WriteFile(path, []byte("cache: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFile(path); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CFUND_COINGECKO_API_KEY", "k")
	t.Setenv("CFUND_COINGECKO_URL", "http://cg")
	t.Setenv("CFUND_BINANCE_URL", "http://bn")
	t.Setenv("CFUND_ALLOCATOR_URL", "http://alloc")
	t.Setenv("CFUND_CACHE_BACKEND", "memory")
	t.Setenv("CFUND_CACHE_PATH", "/tmp/x")
	t.Setenv("CFUND_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnv()

	checks := []struct{ name, got, want string }{
		{"api key", cfg.CoinGecko.APIKey, "k"},
		{"coingecko url", cfg.CoinGecko.BaseURL, "http://cg"},
		{"binance url", cfg.Binance.BaseURL, "http://bn"},
		{"allocator url", cfg.Allocator.URL, "http://alloc"},
		{"backend", cfg.Cache.Backend, "memory"},
		{"path", cfg.Cache.Path, "/tmp/x"},
		{"log level", cfg.Log.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero asset cap", func(c *Config) { c.Defaults.AssetCap = 0 }, "asset_cap"},
		{"asset cap above one", func(c *Config) { c.Defaults.AssetCap = 1.5 }, "asset_cap"},
		{"negative capital", func(c *Config) { c.Defaults.TotalCapital = -1 }, "total_capital"},
		{"infinite capital", func(c *Config) { c.Defaults.TotalCapital = math.Inf(1) }, "total_capital"},
		{"NaN asset cap", func(c *Config) { c.Defaults.AssetCap = math.NaN() }, "asset_cap"},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, "cache.ttl"},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "redis" }, "cache.backend"},
		{"no coingecko url", func(c *Config) { c.CoinGecko.BaseURL = " " }, "coingecko.base_url"},
		{"no binance url", func(c *Config) { c.Binance.BaseURL = "" }, "binance.base_url"},
		{"no allocator url", func(c *Config) { c.Allocator.URL = "" }, "allocator.url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() = %v, want an error about %s", err, tt.want)
			}
		})
	}

	cfg := Default()
	cfg.Defaults.AssetCap = 1
	cfg.Defaults.TotalCapital = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("boundary values rejected: %v", err)
	}
}
