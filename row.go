package cryptofund

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one candidate asset as edited by the user.
//
// Fields are free-form text until they are validated by BuildRequest, so that a
// row can hold exactly what was typed, including partial or invalid numbers.
type Row struct {
	Ticker    string `json:"ticker"`
	MarketCap string `json:"mcap"`
	Price     string `json:"price"`
}

// Field identifies one of the editable columns of a Row.
type Field int

const (
	FieldTicker Field = iota
	FieldMarketCap
	FieldPrice
)

func (f Field) String() string {
	switch f {
	case FieldTicker:
		return "ticker"
	case FieldMarketCap:
		return "mcap"
	case FieldPrice:
		return "price"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField parses a column name as used on the command line.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ticker", "t":
		return FieldTicker, nil
	case "mcap", "marketcap", "market-cap", "m":
		return FieldMarketCap, nil
	case "price", "p":
		return FieldPrice, nil
	}
	return 0, fmt.Errorf("unknown field %q: must be one of ticker, mcap, price", s)
}

// With returns a copy of r with field f set to value.
func (r Row) With(f Field, value string) Row {
	switch f {
	case FieldTicker:
		r.Ticker = value
	case FieldMarketCap:
		r.MarketCap = value
	case FieldPrice:
		r.Price = value
	}
	return r
}

// Get returns the value of field f.
func (r Row) Get(f Field) string {
	switch f {
	case FieldTicker:
		return r.Ticker
	case FieldMarketCap:
		return r.MarketCap
	case FieldPrice:
		return r.Price
	}
	return ""
}

// IsBlank reports whether all the fields are empty.
func (r Row) IsBlank() bool { return r.Ticker == "" && r.MarketCap == "" && r.Price == "" }

// IsComplete reports whether all the fields are set.
func (r Row) IsComplete() bool { return r.Ticker != "" && r.MarketCap != "" && r.Price != "" }

// NeedsEnrichment reports whether the row has a ticker but no price yet.
func (r Row) NeedsEnrichment() bool { return r.Ticker != "" && r.Price == "" }

// Coin converts the row into its wire representation.
//
// Non numeric market cap and price are coerced to zero, and so are numbers too
// large for a float64.
func (r Row) Coin() Coin {
	return Coin{
		Ticker: r.Ticker,
		MCap:   finite(parseNumber(r.MarketCap)),
		Price:  finite(parseNumber(r.Price)),
	}
}

// finite converts d to a float64, or zero when it overflows.
func finite(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseNumber reads a user typed number, it returns zero for anything that is not a number.
func parseNumber(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
