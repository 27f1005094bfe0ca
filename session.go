package cryptofund

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// RowEnricher completes a row that only has a ticker.
type RowEnricher interface {
	Enrich(ctx context.Context, row Row) Row
}

// Session is the state of one allocation workbench: the rows, the parameters and the last outcome.
//
// It is only updated through its methods. The loading flag serializes
// calculations; edits to the rows while an enrichment is in flight are not
// synchronized.
type Session struct {
	Rows         *Rows
	AssetCap     decimal.Decimal
	TotalCapital decimal.Decimal

	Enricher  RowEnricher
	Allocator Allocator

	results []Allocation
	err     error
	loading atomic.Bool
}

// NewSession returns a session with a single blank row.
func NewSession(assetCap, totalCapital decimal.Decimal, enricher RowEnricher, allocator Allocator) *Session {
	return &Session{
		Rows:         NewRows(),
		AssetCap:     assetCap,
		TotalCapital: totalCapital,
		Enricher:     enricher,
		Allocator:    allocator,
	}
}

// Loading reports whether an action is in flight.
func (s *Session) Loading() bool { return s.loading.Load() }

// Results returns the allocations of the last successful calculation, nil if there are none.
func (s *Session) Results() []Allocation { return s.results }

// Err returns the error of the last calculation, if any.
func (s *Session) Err() error { return s.err }

// begin enters the loading state, it returns false if already loading.
func (s *Session) begin() bool { return s.loading.CompareAndSwap(false, true) }

func (s *Session) end() { s.loading.Store(false) }

// EnrichTrailing enriches the trailing row if it has a ticker and no price.
//
// It reports whether the row was changed.
func (s *Session) EnrichTrailing(ctx context.Context) (bool, error) {
	if !s.begin() {
		return false, ErrBusy
	}
	defer s.end()
	return s.enrichTrailing(ctx), nil
}

func (s *Session) enrichTrailing(ctx context.Context) bool {
	last := s.Rows.Last()
	row := s.Rows.Row(last)
	if !row.NeedsEnrichment() || s.Enricher == nil {
		return false
	}
	enriched := s.Enricher.Enrich(ctx, row)
	if enriched == row {
		return false
	}
	s.Rows.Replace(last, enriched)
	return true
}

// Calculate enriches the trailing row if needed, then submits the rows to the allocator.
//
// Validation and computation failures are returned, recorded in Err, and clear
// the previous results.
func (s *Session) Calculate(ctx context.Context) ([]Allocation, error) {
	if !s.begin() {
		return nil, ErrBusy
	}
	defer s.end()
	s.err = nil

	s.enrichTrailing(ctx)

	req, err := BuildRequest(s.Rows.All(), s.AssetCap, s.TotalCapital)
	if err != nil {
		return nil, s.fail(err)
	}
	res, err := s.Allocator.Allocate(ctx, req)
	if err != nil {
		var ce *ComputationError
		if !errors.As(err, &ce) {
			err = &ComputationError{Err: err}
		}
		return nil, s.fail(err)
	}
	s.results = res
	return res, nil
}

func (s *Session) fail(err error) error {
	s.err = err
	s.results = nil
	return err
}
