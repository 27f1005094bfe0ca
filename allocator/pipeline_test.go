package allocator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/etnz/cryptofund"
	"github.com/etnz/cryptofund/binance"
	"github.com/etnz/cryptofund/cache"
	"github.com/etnz/cryptofund/coingecko"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// upstream fakes Binance and CoinGecko on a single server.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/ticker/price", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"ETHUSDT","price":"2000.00000000"}`))
	})
	mux.HandleFunc("/coins/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/coins/ethereum", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"market_data":{"market_cap":{"usd":400000000000}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// countingAllocator counts calls made to the wrapped allocator.
type countingAllocator struct {
	cryptofund.Allocator
	calls atomic.Int32
}

func (c *countingAllocator) Allocate(ctx context.Context, req cryptofund.AllocationRequest) ([]cryptofund.Allocation, error) {
	c.calls.Add(1)
	return c.Allocator.Allocate(ctx, req)
}

func newPipeline(t *testing.T) (*cryptofund.Session, *countingAllocator) {
	t.Helper()
	up := upstream(t)
	service := httptest.NewServer(NewRouter(zap.NewNop()))
	t.Cleanup(service.Close)

	enricher := &cryptofund.Enricher{
		Prices: &binance.Client{BaseURL: up.URL},
		Resolver: &coingecko.Resolver{
			Source: &coingecko.Client{BaseURL: up.URL},
			Store:  cache.NewMemory(nil),
		},
		MarketData: &coingecko.Client{BaseURL: up.URL},
	}
	alloc := &countingAllocator{Allocator: &Client{URL: service.URL}}
	s := cryptofund.NewSession(decimal.RequireFromString("0.5"), decimal.NewFromInt(1000), enricher, alloc)
	return s, alloc
}

func TestPipeline_EndToEnd(t *testing.T) {
	s, _ := newPipeline(t)
	s.Rows.SetField(0, cryptofund.FieldTicker, "ETH")

	res, err := s.Calculate(context.Background())
	require.NoError(t, err)

	row := s.Rows.Row(0)
	for _, v := range []string{row.Price, row.MarketCap} {
		_, err := strconv.ParseFloat(v, 64)
		assert.NoError(t, err, "enriched value %q is not numeric", v)
	}
	assert.Equal(t, "2000", row.Price)
	assert.Equal(t, "400000000000", row.MarketCap)

	require.Len(t, res, 1)
	assert.Equal(t, "ETH", res[0].Ticker)
	assert.InDelta(t, 100, res[0].Percentage, 1e-9)
	assert.InDelta(t, 1000, res[0].Value, 1e-9)
	assert.InDelta(t, 0.5, res[0].Amount, 1e-9)
}

func TestPipeline_ValidationSkipsService(t *testing.T) {
	s, alloc := newPipeline(t)
	s.Rows = cryptofund.NewRows(cryptofund.Row{}, cryptofund.Row{MarketCap: "12"})

	_, err := s.Calculate(context.Background())
	var verr *cryptofund.ValidationError
	require.True(t, errors.As(err, &verr), "error = %v", err)
	assert.Nil(t, s.Results())
	assert.Zero(t, alloc.calls.Load())
}

func TestPipeline_LocalOverflowingMarketCap(t *testing.T) {
	s, _ := newPipeline(t)
	s.Allocator = Local{}
	s.Rows = cryptofund.NewRows(cryptofund.Row{Ticker: "eth", MarketCap: "1e400", Price: "1"})

	var err error
	require.NotPanics(t, func() { _, err = s.Calculate(context.Background()) })
	var ce *cryptofund.ComputationError
	require.True(t, errors.As(err, &ce), "error = %v", err)
	assert.Equal(t, http.StatusUnprocessableEntity, ce.Status)
	assert.Nil(t, s.Results())
}
