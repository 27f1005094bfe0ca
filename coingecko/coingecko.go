// Package coingecko reads the coin universe and market data from the CoinGecko API,
// and resolves tickers to CoinGecko coin ids.
package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/cryptofund/fetch"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	// DefaultCurrency is the currency market caps are read in.
	DefaultCurrency = "usd"
)

// Coin is an entry of the coin universe.
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Client is a minimal CoinGecko API client.
type Client struct {
	BaseURL  string       // defaults to DefaultBaseURL
	APIKey   string       // optional demo API key
	Currency string       // market cap currency, defaults to DefaultCurrency
	HTTP     *http.Client // defaults to http.DefaultClient
	Logger   *zap.Logger  // defaults to zap.L()
}

func (c *Client) base() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.L()
	}
	return c.Logger
}

func (c *Client) currency() string {
	if c.Currency == "" {
		return DefaultCurrency
	}
	return strings.ToLower(c.Currency)
}

func (c *Client) header() http.Header {
	h := make(http.Header)
	if c.APIKey != "" {
		h.Set("x-cg-demo-api-key", c.APIKey)
	}
	return h
}

// CoinList fetches the full coin universe.
func (c *Client) CoinList(ctx context.Context) ([]Coin, error) {
	// https://api.coingecko.com/api/v3/coins/list
	// [
	//   {"id": "bitcoin", "symbol": "btc", "name": "Bitcoin"},
	//   {"id": "ethereum", "symbol": "eth", "name": "Ethereum"},
	//   ...
	// ]
	var content []Coin
	if err := fetch.GetJSON(ctx, c.HTTP, c.base()+"/coins/list", c.header(), &content); err != nil {
		return nil, fmt.Errorf("failed to fetch coin list: %w", err)
	}
	return content, nil
}

// MarketCap fetches the market capitalization of coin id.
//
// A coin without market cap in the client currency has a zero market cap.
func (c *Client) MarketCap(ctx context.Context, id string) (decimal.Decimal, error) {
	// https://api.coingecko.com/api/v3/coins/ethereum
	// {
	//   "id": "ethereum",
	//   "market_data": {
	//     "current_price": {"usd": 3456.78, ...},
	//     "market_cap": {"usd": 415000000000, ...},
	//   ...
	addr := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		c.base(), url.PathEscape(id))

	var jobj any
	if err := fetch.GetJSON(ctx, c.HTTP, addr, c.header(), &jobj); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch market data for %q: %w", id, err)
	}
	path := "$.market_data.market_cap." + c.currency()
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		// missing keys are reported as errors by jsonpath.
		c.logger().Debug("no market cap", zap.String("id", id), zap.String("path", path), zap.Error(err))
		return decimal.Zero, nil
	}
	val, ok := jval.(float64)
	if !ok {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(val), nil
}
