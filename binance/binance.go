// Package binance reads spot prices from the Binance public API.
package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/cryptofund/fetch"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public spot API endpoint.
const DefaultBaseURL = "https://api.binance.com"

// Client is a minimal Binance spot API client.
type Client struct {
	BaseURL string       // defaults to DefaultBaseURL
	HTTP    *http.Client // defaults to http.DefaultClient
	Logger  *zap.Logger  // defaults to zap.L()
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.L()
	}
	return c.Logger
}

// Price returns the last price of a trading pair, e.g. "ETHUSDT".
//
// A pair unknown to Binance has a zero price. Only transport and server errors are returned.
func (c *Client) Price(ctx context.Context, pair string) (decimal.Decimal, error) {
	// https://api.binance.com/api/v3/ticker/price?symbol=ETHUSDT
	// {"symbol":"ETHUSDT","price":"3456.78000000"}
	//
	// unknown symbols are answered with a 400
	// {"code":-1121,"msg":"Invalid symbol."}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	addr := strings.TrimRight(base, "/") + "/api/v3/ticker/price?symbol=" + url.QueryEscape(pair)

	var content struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	err := fetch.GetJSON(ctx, c.HTTP, addr, nil, &content)
	var serr *fetch.StatusError
	if errors.As(err, &serr) && serr.Code == http.StatusBadRequest {
		c.logger().Warn("unknown trading pair, using a zero price", zap.String("pair", pair), zap.ByteString("response", serr.Body))
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch price of %s: %w", pair, err)
	}
	if content.Price == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(content.Price)
	if err != nil {
		return decimal.Zero, nil
	}
	return price, nil
}
