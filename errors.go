package cryptofund

import (
	"errors"
	"fmt"
)

// ErrNotResolved is returned when a ticker cannot be mapped to a coin id.
var ErrNotResolved = errors.New("coin not found")

// ErrNoValidCoins is the cause of the validation error returned when no row has a ticker.
var ErrNoValidCoins = errors.New("please enter at least one valid coin ticker")

// ErrOutOfRange is the cause of the validation error returned when the asset cap
// or the total capital is too large to be sent.
var ErrOutOfRange = errors.New("number out of range")

// ErrBusy is returned when an action is started while another one is in flight.
var ErrBusy = errors.New("a calculation is already in progress")

// EnrichError describes which stage of the enrichment of a ticker failed.
//
// It is a recoverable condition: the row is left as it was.
type EnrichError struct {
	Ticker string
	Stage  string
	Err    error
}

func (e *EnrichError) Error() string {
	return fmt.Sprintf("cannot enrich %q: %s: %v", e.Ticker, e.Stage, e.Err)
}

func (e *EnrichError) Unwrap() error { return e.Err }

// ValidationError reports user input that cannot be submitted.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ComputationError reports that the allocation service could not be reached or refused the request.
type ComputationError struct {
	Status int // HTTP status, 0 if the service was not reached
	Err    error
}

func (e *ComputationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("calculation failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("calculation failed: %v", e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }
