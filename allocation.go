package cryptofund

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Coin is a row as sent to the allocation service.
type Coin struct {
	Ticker string  `json:"ticker"`
	MCap   float64 `json:"mcap"`
	Price  float64 `json:"price"`
}

// AllocationRequest is the body of a calculation request.
type AllocationRequest struct {
	AssetCap     float64 `json:"asset_cap"`
	TotalCapital float64 `json:"total_capital"`
	Coins        []Coin  `json:"coins"`
}

// Allocation is the share of the capital allocated to one coin.
type Allocation struct {
	Ticker     string  `json:"ticker"`
	Amount     float64 `json:"amount"`    // quantity of the coin to buy
	Value      float64 `json:"zar_value"` // value in the display currency
	Percentage float64 `json:"percentage"`
}

// Allocator computes allocations, usually by calling a remote service.
type Allocator interface {
	Allocate(ctx context.Context, req AllocationRequest) ([]Allocation, error)
}

// BuildRequest keeps the rows with a ticker and converts them into a request.
//
// It returns a *ValidationError if no row qualifies, or if the asset cap or the
// total capital does not fit in a float64.
func BuildRequest(rows []Row, assetCap, totalCapital decimal.Decimal) (AllocationRequest, error) {
	req := AllocationRequest{
		AssetCap:     assetCap.InexactFloat64(),
		TotalCapital: totalCapital.InexactFloat64(),
	}
	if math.IsInf(req.AssetCap, 0) || math.IsInf(req.TotalCapital, 0) {
		return req, &ValidationError{Err: fmt.Errorf("%w: asset cap %v, total capital %v", ErrOutOfRange, assetCap, totalCapital)}
	}
	for _, r := range rows {
		if r.Ticker == "" {
			continue
		}
		req.Coins = append(req.Coins, r.Coin())
	}
	if len(req.Coins) == 0 {
		return req, &ValidationError{Err: ErrNoValidCoins}
	}
	return req, nil
}

// NormalizeAllocations decodes an allocation service response without trusting its shape.
//
// Anything but a JSON array yields no allocation. Within each element, missing or
// invalid numbers become 0 and a missing ticker becomes "". Numbers encoded as
// strings are accepted.
func NormalizeAllocations(body []byte) []Allocation {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return []Allocation{}
	}
	res := make([]Allocation, 0, len(items))
	for _, item := range items {
		var obj map[string]any
		// a non object element is kept as a zero allocation.
		_ = json.Unmarshal(item, &obj)
		res = append(res, Allocation{
			Ticker:     jstring(obj["ticker"]),
			Amount:     jnumber(obj["amount"]),
			Value:      jnumber(obj["zar_value"]),
			Percentage: jnumber(obj["percentage"]),
		})
	}
	return res
}

func jstring(v any) string {
	s, _ := v.(string)
	return s
}

func jnumber(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		f = d.InexactFloat64()
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
