// Package allocator implements the allocation service: it splits some capital
// across coins in proportion to their market cap, with a maximum weight per coin.
//
// The service is exposed over HTTP by NewRouter, and Client calls it from the
// cryptofund pipeline.
package allocator

import (
	"errors"
	"fmt"
	"math"

	"github.com/etnz/cryptofund"
	"github.com/shopspring/decimal"
)

// ErrInvalidParams is the cause of all parameter validation errors.
var ErrInvalidParams = errors.New("invalid parameters")

var hundred = decimal.NewFromInt(100)

// Calculate allocates totalCapital across coins.
//
// Weights are proportional to the market caps, but no weight can exceed assetCap:
// the excess of a capped coin is redistributed over the other coins in
// proportion to their market cap, until no coin exceeds the cap. An assetCap
// below 1/n is raised to 1/n, where every coin gets the same weight.
//
// Results are in the same order as coins. A coin with no price gets a zero amount.
func Calculate(assetCap, totalCapital decimal.Decimal, coins []cryptofund.Coin) ([]cryptofund.Allocation, error) {
	if !assetCap.IsPositive() || assetCap.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: asset cap must be between 0 and 1, got %v", ErrInvalidParams, assetCap)
	}
	if !totalCapital.IsPositive() {
		return nil, fmt.Errorf("%w: total capital must be positive, got %v", ErrInvalidParams, totalCapital)
	}
	if len(coins) == 0 {
		return nil, fmt.Errorf("%w: at least one coin must be provided", ErrInvalidParams)
	}

	mcaps := make([]decimal.Decimal, len(coins))
	prices := make([]decimal.Decimal, len(coins))
	for i, c := range coins {
		var err error
		if mcaps[i], err = fromFloat("market cap of "+c.Ticker, c.MCap); err != nil {
			return nil, err
		}
		if mcaps[i].IsNegative() {
			return nil, fmt.Errorf("%w: market cap of %q is negative", ErrInvalidParams, c.Ticker)
		}
		if prices[i], err = fromFloat("price of "+c.Ticker, c.Price); err != nil {
			return nil, err
		}
	}

	minCap := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(len(coins))))
	if assetCap.LessThan(minCap) {
		assetCap = minCap
	}

	weights, err := cappedWeights(mcaps, assetCap)
	if err != nil {
		return nil, err
	}

	res := make([]cryptofund.Allocation, len(coins))
	for i, c := range coins {
		value := totalCapital.Mul(weights[i])
		amount := decimal.Zero
		if prices[i].IsPositive() {
			amount = value.Div(prices[i])
		}
		res[i] = cryptofund.Allocation{
			Ticker:     c.Ticker,
			Amount:     amount.InexactFloat64(),
			Value:      value.InexactFloat64(),
			Percentage: weights[i].Mul(hundred).InexactFloat64(),
		}
	}
	return res, nil
}

// allocate runs Calculate on a decoded request.
func allocate(req cryptofund.AllocationRequest) ([]cryptofund.Allocation, error) {
	assetCap, err := fromFloat("asset cap", req.AssetCap)
	if err != nil {
		return nil, err
	}
	totalCapital, err := fromFloat("total capital", req.TotalCapital)
	if err != nil {
		return nil, err
	}
	return Calculate(assetCap, totalCapital, req.Coins)
}

// fromFloat converts a request number to a decimal.
//
// NaN and infinities have no decimal representation and are invalid parameters.
func fromFloat(name string, f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %s is not a finite number", ErrInvalidParams, name)
	}
	return decimal.NewFromFloat(f), nil
}

// cappedWeights returns weights proportional to mcaps, none above limit, summing to 1.
func cappedWeights(mcaps []decimal.Decimal, limit decimal.Decimal) ([]decimal.Decimal, error) {
	if decimal.Sum(decimal.Zero, mcaps...).Sign() <= 0 {
		return nil, fmt.Errorf("%w: total market cap must be positive", ErrInvalidParams)
	}

	weights := make([]decimal.Decimal, len(mcaps))
	capped := make([]bool, len(mcaps))
	for {
		// the weight left once capped coins are served, and the market cap sharing it.
		free := decimal.NewFromInt(1)
		freeMcap := decimal.Zero
		for i := range mcaps {
			if capped[i] {
				free = free.Sub(limit)
			} else {
				freeMcap = freeMcap.Add(mcaps[i])
			}
		}

		newlyCapped := false
		for i := range mcaps {
			if capped[i] {
				weights[i] = limit
				continue
			}
			weights[i] = decimal.Zero
			if freeMcap.IsPositive() {
				weights[i] = free.Mul(mcaps[i]).Div(freeMcap)
			}
			if weights[i].GreaterThan(limit) {
				capped[i] = true
				newlyCapped = true
			}
		}
		if !newlyCapped {
			break
		}
	}

	// when only zero market cap coins are left uncapped, the free weight is lost: normalize.
	sum := decimal.Sum(decimal.Zero, weights...)
	for i := range weights {
		weights[i] = weights[i].Div(sum)
	}
	return weights, nil
}
