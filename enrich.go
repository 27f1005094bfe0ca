package cryptofund

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultQuoteAsset is the asset prices are quoted against.
const DefaultQuoteAsset = "USDT"

// PriceSource returns the last price of a trading pair such as "ETHUSDT".
//
// An unknown pair is not an error, it has a zero price.
type PriceSource interface {
	Price(ctx context.Context, pair string) (decimal.Decimal, error)
}

// Resolver maps a ticker to the id used by the market data source.
type Resolver interface {
	Resolve(ctx context.Context, ticker string) (id string, ok bool)
}

// MarketDataSource returns the market capitalization of a coin by id.
//
// A coin without market cap is not an error, it has a zero market cap.
type MarketDataSource interface {
	MarketCap(ctx context.Context, id string) (decimal.Decimal, error)
}

// Pair returns the trading pair symbol of ticker against quote.
func Pair(ticker, quote string) string {
	return strings.ToUpper(strings.TrimSpace(ticker)) + strings.ToUpper(quote)
}

// Enricher fills in the price and the market cap of a row that only has a ticker.
type Enricher struct {
	Prices     PriceSource
	Resolver   Resolver
	MarketData MarketDataSource
	QuoteAsset string      // defaults to DefaultQuoteAsset
	Logger     *zap.Logger // defaults to zap.L()
}

// enrichment is the state passed from stage to stage.
type enrichment struct {
	ticker    string
	price     decimal.Decimal
	id        string
	marketCap decimal.Decimal
}

// stage is one fallible step of the enrichment, stages run in order and the first failure stops the pipeline.
type stage struct {
	name string
	run  func(ctx context.Context, e *enrichment) error
}

func (e *Enricher) stages() []stage {
	return []stage{
		{"price", e.fetchPrice},
		{"resolve", e.resolve},
		{"market data", e.fetchMarketCap},
	}
}

func (e *Enricher) fetchPrice(ctx context.Context, st *enrichment) error {
	quote := e.QuoteAsset
	if quote == "" {
		quote = DefaultQuoteAsset
	}
	price, err := e.Prices.Price(ctx, Pair(st.ticker, quote))
	if err != nil {
		return err
	}
	st.price = price
	return nil
}

func (e *Enricher) resolve(ctx context.Context, st *enrichment) error {
	id, ok := e.Resolver.Resolve(ctx, st.ticker)
	if !ok {
		return ErrNotResolved
	}
	st.id = id
	return nil
}

func (e *Enricher) fetchMarketCap(ctx context.Context, st *enrichment) error {
	mcap, err := e.MarketData.MarketCap(ctx, st.id)
	if err != nil {
		return err
	}
	st.marketCap = mcap
	return nil
}

// TryEnrich runs the enrichment pipeline on row.
//
// On success it returns a new row with the same ticker and the fetched price and
// market cap. On failure it returns the original row and an *EnrichError.
// Rows that do not need enrichment are returned as is.
func (e *Enricher) TryEnrich(ctx context.Context, row Row) (Row, error) {
	if !row.NeedsEnrichment() {
		return row, nil
	}
	st := &enrichment{ticker: row.Ticker}
	for _, s := range e.stages() {
		if err := s.run(ctx, st); err != nil {
			return row, &EnrichError{Ticker: row.Ticker, Stage: s.name, Err: err}
		}
	}
	return Row{
		Ticker:    row.Ticker,
		MarketCap: st.marketCap.String(),
		Price:     st.price.String(),
	}, nil
}

// Enrich is TryEnrich on a best effort basis: failures are logged and the row is returned unchanged.
func (e *Enricher) Enrich(ctx context.Context, row Row) Row {
	res, err := e.TryEnrich(ctx, row)
	if err != nil {
		e.logger().Warn("enrichment failed, keeping row as is", zap.String("ticker", row.Ticker), zap.Error(err))
	}
	return res
}

func (e *Enricher) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.L()
}
