// Package config holds the cfund configuration file.
//
// The file is YAML, loaded on top of Default, and selected values can be
// overridden from the environment with ApplyEnv.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "cfund.yaml"

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the content of the configuration file.
//
// Priority maps lower case tickers to CoinGecko ids, and is consulted before the
// coin list. File entries are merged into the default table: an entry with an
// empty id removes a default one.
type Config struct {
	CoinGecko CoinGeckoConfig   `yaml:"coingecko"`
	Binance   BinanceConfig     `yaml:"binance"`
	Allocator AllocatorConfig   `yaml:"allocator"`
	Cache     CacheConfig       `yaml:"cache"`
	Priority  map[string]string `yaml:"priority"`
	Defaults  DefaultsConfig    `yaml:"defaults"`
	Log       LogConfig         `yaml:"log"`
	HTTP      HTTPConfig        `yaml:"http"`
}

// CoinGeckoConfig locates the coin list and market data API.
type CoinGeckoConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	VsCurrency string `yaml:"vs_currency"`
}

// BinanceConfig locates the price API, prices are quoted in QuoteAsset.
type BinanceConfig struct {
	BaseURL    string `yaml:"base_url"`
	QuoteAsset string `yaml:"quote_asset"`
}

// AllocatorConfig is where the allocation service is called, and where serve listens.
type AllocatorConfig struct {
	URL    string `yaml:"url"`
	Listen string `yaml:"listen"`
}

// CacheConfig selects the cache store of the coin list.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	Path    string        `yaml:"path"` // directory for "file", database file for "sqlite"
	TTL     time.Duration `yaml:"ttl"`
}

// DefaultsConfig are the initial values of the allocation parameters.
type DefaultsConfig struct {
	AssetCap     float64 `yaml:"asset_cap"`
	TotalCapital float64 `yaml:"total_capital"`
	Currency     string  `yaml:"currency"` // ISO 4217 code used to display values
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Environment string `yaml:"environment"` // "development" or "production"
}

// HTTPConfig applies to every outgoing request.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when there is no file.
func Default() Config {
	return Config{
		CoinGecko: CoinGeckoConfig{
			BaseURL:    "https://api.coingecko.com/api/v3",
			VsCurrency: "usd",
		},
		Binance: BinanceConfig{
			BaseURL:    "https://api.binance.com",
			QuoteAsset: "USDT",
		},
		Allocator: AllocatorConfig{
			URL:    "http://localhost:8000",
			Listen: ":8000",
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     24 * time.Hour,
		},
		Priority: map[string]string{
			"btc": "bitcoin",
			"eth": "ethereum",
			"sol": "solana",
			"xrp": "ripple",
		},
		Defaults: DefaultsConfig{
			AssetCap:     0.1,
			TotalCapital: 10000,
			Currency:     "ZAR",
		},
		Log: LogConfig{
			Level:       "warn",
			Environment: "production",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
	}
}

// LoadFile reads path on top of Default.
//
// A missing file is not an error, found reports whether it existed.
func LoadFile(path string) (cfg Config, found bool, err error) {
	cfg = Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, err
	}
	// decode priority entries alone, then merge them in order.
	defaults := cfg.Priority
	cfg.Priority = nil
	err = yaml.Unmarshal(data, &cfg)
	cfg.Priority = mergePriority(defaults, cfg.Priority)
	if err != nil {
		return cfg, true, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return cfg, true, nil
}

// mergePriority returns base updated with entries. Tickers are lower cased, and
// an entry with an empty id removes the ticker.
func mergePriority(base, entries map[string]string) map[string]string {
	res := make(map[string]string, len(base)+len(entries))
	for ticker, id := range base {
		res[ticker] = id
	}
	for ticker, id := range entries {
		ticker = strings.ToLower(strings.TrimSpace(ticker))
		id = strings.TrimSpace(id)
		if ticker == "" {
			continue
		}
		if id == "" {
			delete(res, ticker)
			continue
		}
		res[ticker] = id
	}
	return res
}

// ApplyEnv overrides the configuration with the CFUND_* environment variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CFUND_COINGECKO_API_KEY"); v != "" {
		c.CoinGecko.APIKey = v
	}
	if v := os.Getenv("CFUND_COINGECKO_URL"); v != "" {
		c.CoinGecko.BaseURL = v
	}
	if v := os.Getenv("CFUND_BINANCE_URL"); v != "" {
		c.Binance.BaseURL = v
	}
	if v := os.Getenv("CFUND_ALLOCATOR_URL"); v != "" {
		c.Allocator.URL = v
	}
	if v := os.Getenv("CFUND_CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("CFUND_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("CFUND_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the values that would otherwise fail late, in the middle of a calculation.
func (c Config) Validate() error {
	if math.IsNaN(c.Defaults.AssetCap) || c.Defaults.AssetCap <= 0 || c.Defaults.AssetCap > 1 {
		return fmt.Errorf("defaults.asset_cap must be within (0,1], got %v", c.Defaults.AssetCap)
	}
	if math.IsNaN(c.Defaults.TotalCapital) || math.IsInf(c.Defaults.TotalCapital, 0) || c.Defaults.TotalCapital < 0 {
		return fmt.Errorf("defaults.total_capital must be a finite number >= 0, got %v", c.Defaults.TotalCapital)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be > 0, got %v", c.Cache.TTL)
	}
	switch strings.ToLower(c.Cache.Backend) {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("cache.backend must be one of %q, %q or %q, got %q", BackendFile, BackendSQLite, BackendMemory, c.Cache.Backend)
	}
	if strings.TrimSpace(c.CoinGecko.BaseURL) == "" {
		return errors.New("coingecko.base_url must not be empty")
	}
	if strings.TrimSpace(c.Binance.BaseURL) == "" {
		return errors.New("binance.base_url must not be empty")
	}
	if strings.TrimSpace(c.Allocator.URL) == "" {
		return errors.New("allocator.url must not be empty")
	}
	return nil
}

// AssetCap returns the default asset cap as a decimal.
func (c Config) AssetCap() decimal.Decimal { return decimal.NewFromFloat(c.Defaults.AssetCap) }

// TotalCapital returns the default total capital as a decimal.
func (c Config) TotalCapital() decimal.Decimal { return decimal.NewFromFloat(c.Defaults.TotalCapital) }
