// Package cmd implements the cfund CLI application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/cryptofund"
	"github.com/etnz/cryptofund/allocator"
	"github.com/etnz/cryptofund/binance"
	"github.com/etnz/cryptofund/cache"
	"github.com/etnz/cryptofund/coingecko"
	"github.com/etnz/cryptofund/config"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, groups[cmd.Name()])
	}
}

// Commands lists all cfund subcommands.
var Commands = []subcommands.Command{
	&calculateCmd{},
	&quoteCmd{},
	&resolveCmd{},
	&editCmd{},
	&serveCmd{},
	&cacheCmd{},
	&topicCmd{},
}

var groups = map[string]string{
	"calculate": "allocation",
	"edit":      "allocation",
	"quote":     "market data",
	"resolve":   "market data",
	"cache":     "market data",
	"serve":     "service",
	"topic":     "help",
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", config.DefaultPath, "Path to the configuration file (YAML)")
var verbose = flag.Bool("v", false, "Log debug messages")

// app holds the configuration and the services built from it, for the duration of one command.
type app struct {
	cfg    config.Config
	log    *zap.Logger
	store  cache.Store
	closer func() error
}

// openApp loads the configuration, installs the logger, and opens the cache store.
func openApp() (*app, error) {
	cfg, found, err := config.LoadFile(*configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	if !found {
		level := zap.DebugLevel
		if isSet("config") {
			level = zap.WarnLevel
		}
		logger.Log(level, "configuration file not found, using defaults", zap.String("path", *configPath))
	}

	a := &app{cfg: cfg, log: logger}
	if err := a.openStore(); err != nil {
		logger.Sync()
		return nil, err
	}
	return a, nil
}

// Close releases the cache store and flushes the logs.
func (a *app) Close() error {
	var err error
	if a.closer != nil {
		err = a.closer()
	}
	a.log.Sync()
	return err
}

// newLogger builds the zap logger described by cfg.
func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "development" {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.DisableStacktrace = true
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapConfig.Level = level

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func (a *app) openStore() error {
	c := a.cfg.Cache
	switch strings.ToLower(c.Backend) {
	case config.BackendMemory:
		a.store = cache.NewMemory(nil)
	case config.BackendSQLite:
		path := c.Path
		if path == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				dir = os.TempDir()
			}
			path = filepath.Join(dir, "cfund", "cache.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("cannot create cache folder: %w", err)
		}
		db, err := cache.OpenSQLite(path)
		if err != nil {
			return err
		}
		db.Logger = a.log
		a.store, a.closer = db, db.Close
	default:
		disk, err := cache.NewDisk(c.Path)
		if err != nil {
			return err
		}
		disk.Logger = a.log
		a.store = disk
	}
	a.log.Debug("cache store opened", zap.String("backend", c.Backend))
	return nil
}

func (a *app) httpClient() *http.Client {
	return &http.Client{Timeout: a.cfg.HTTP.Timeout}
}

func (a *app) coingecko() *coingecko.Client {
	return &coingecko.Client{
		BaseURL:  a.cfg.CoinGecko.BaseURL,
		APIKey:   a.cfg.CoinGecko.APIKey,
		Currency: a.cfg.CoinGecko.VsCurrency,
		HTTP:     a.httpClient(),
		Logger:   a.log,
	}
}

func (a *app) resolver() *coingecko.Resolver {
	return &coingecko.Resolver{
		Source:   a.coingecko(),
		Store:    a.store,
		TTL:      a.cfg.Cache.TTL,
		Priority: a.cfg.Priority,
		Logger:   a.log,
	}
}

func (a *app) enricher() *cryptofund.Enricher {
	return &cryptofund.Enricher{
		Prices:     &binance.Client{BaseURL: a.cfg.Binance.BaseURL, HTTP: a.httpClient(), Logger: a.log},
		Resolver:   a.resolver(),
		MarketData: a.coingecko(),
		QuoteAsset: a.cfg.Binance.QuoteAsset,
		Logger:     a.log,
	}
}

// allocator returns the remote allocation service, or an in process one if local is set.
func (a *app) allocator(local bool) cryptofund.Allocator {
	if local {
		return allocator.Local{}
	}
	return &allocator.Client{URL: a.cfg.Allocator.URL, HTTP: a.httpClient()}
}

func (a *app) session(local bool) *cryptofund.Session {
	return cryptofund.NewSession(a.cfg.AssetCap(), a.cfg.TotalCapital(), a.enricher(), a.allocator(local))
}

// isSet reports whether a global flag was given on the command line.
func isSet(name string) (set bool) {
	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return
}

// fail prints err and returns the matching exit status.
func fail(err error) subcommands.ExitStatus {
	var verr *cryptofund.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintf(os.Stderr, "Invalid input: %v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
