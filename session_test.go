package cryptofund

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// fakeAllocator records requests and returns a canned response.
type fakeAllocator struct {
	reqs []AllocationRequest
	res  []Allocation
	err  error
}

func (f *fakeAllocator) Allocate(_ context.Context, req AllocationRequest) ([]Allocation, error) {
	f.reqs = append(f.reqs, req)
	return f.res, f.err
}

func newTestSession(alloc Allocator) *Session {
	e, _, _ := newTestEnricher()
	return NewSession(decimal.RequireFromString("0.5"), decimal.NewFromInt(1000), e, alloc)
}

func TestSession_CalculateEnrichesTrailingRow(t *testing.T) {
	alloc := &fakeAllocator{res: []Allocation{{Ticker: "eth", Amount: 0.28, Value: 1000, Percentage: 100}}}
	s := newTestSession(alloc)
	s.Rows.SetField(0, FieldTicker, "eth")

	res, err := s.Calculate(context.Background())
	if err != nil {
		t.Fatalf("Calculate() unexpected error = %v", err)
	}
	if len(res) != 1 || res[0].Percentage != 100 {
		t.Errorf("Calculate() = %+v, want a single 100%% allocation", res)
	}
	if got := s.Rows.Row(0); got.Price != "3456.78" || got.MarketCap != "415000000000" {
		t.Errorf("Row(0) = %+v, want the enriched row", got)
	}
	if len(alloc.reqs) != 1 || len(alloc.reqs[0].Coins) != 1 {
		t.Fatalf("allocator received %+v, want one request with one coin", alloc.reqs)
	}
	if c := alloc.reqs[0].Coins[0]; c.Price != 3456.78 || c.MCap != 415000000000 {
		t.Errorf("submitted coin = %+v", c)
	}
	if s.Loading() {
		t.Error("Loading() = true after Calculate returned")
	}
}

func TestSession_ValidationClearsResults(t *testing.T) {
	alloc := &fakeAllocator{res: []Allocation{{Ticker: "eth"}}}
	s := newTestSession(alloc)
	s.Rows = NewRows(Row{Ticker: "eth", MarketCap: "1", Price: "1"})
	if _, err := s.Calculate(context.Background()); err != nil {
		t.Fatalf("Calculate() unexpected error = %v", err)
	}

	s.Rows = NewRows(Row{}, Row{MarketCap: "3"})
	_, err := s.Calculate(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Calculate() error = %v, want a *ValidationError", err)
	}
	if s.Results() != nil {
		t.Errorf("Results() = %+v, want nil after a failure", s.Results())
	}
	if !errors.Is(s.Err(), ErrNoValidCoins) {
		t.Errorf("Err() = %v, want %v", s.Err(), ErrNoValidCoins)
	}
	if len(alloc.reqs) != 1 {
		t.Errorf("allocator called %d times, want 1: invalid rows must not be submitted", len(alloc.reqs))
	}
}

func TestSession_ComputationError(t *testing.T) {
	s := newTestSession(&fakeAllocator{err: errors.New("connection refused")})
	s.Rows = NewRows(Row{Ticker: "eth", MarketCap: "1", Price: "1"})
	_, err := s.Calculate(context.Background())
	var cerr *ComputationError
	if !errors.As(err, &cerr) {
		t.Errorf("Calculate() error = %v, want a *ComputationError", err)
	}
}

func TestSession_Busy(t *testing.T) {
	s := newTestSession(&fakeAllocator{})
	s.loading.Store(true)
	if _, err := s.Calculate(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Calculate() error = %v, want %v", err, ErrBusy)
	}
	if _, err := s.EnrichTrailing(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("EnrichTrailing() error = %v, want %v", err, ErrBusy)
	}
}

func TestSession_EnrichTrailing(t *testing.T) {
	s := newTestSession(&fakeAllocator{})
	s.Rows.SetField(0, FieldTicker, "eth")
	changed, err := s.EnrichTrailing(context.Background())
	if err != nil || !changed {
		t.Fatalf("EnrichTrailing() = %v, %v, want true, nil", changed, err)
	}
	if s.Rows.Len() != 2 {
		t.Errorf("Len() = %d, want 2: the enriched trailing row is complete", s.Rows.Len())
	}
	changed, _ = s.EnrichTrailing(context.Background())
	if changed {
		t.Error("EnrichTrailing() changed a blank trailing row")
	}
}
