package allocator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/etnz/cryptofund"
	"github.com/etnz/cryptofund/fetch"
	"github.com/google/uuid"
)

// DefaultURL is where the allocation service listens by default.
const DefaultURL = "http://localhost:8000"

// Client calls a remote allocation service, it implements cryptofund.Allocator.
type Client struct {
	URL  string       // defaults to DefaultURL
	HTTP *http.Client // defaults to http.DefaultClient
}

// Allocate submits req. Every failure is returned as a *cryptofund.ComputationError.
//
// The response is normalized with cryptofund.NormalizeAllocations.
func (c *Client) Allocate(ctx context.Context, req cryptofund.AllocationRequest) ([]cryptofund.Allocation, error) {
	base := c.URL
	if base == "" {
		base = DefaultURL
	}
	header := http.Header{RequestIDHeader: {uuid.NewString()}}
	body, err := fetch.PostJSON(ctx, c.HTTP, strings.TrimRight(base, "/")+"/calculate", header, req)

	var serr *fetch.StatusError
	if errors.As(err, &serr) {
		return nil, &cryptofund.ComputationError{Status: serr.Code, Err: errors.New(reason(serr))}
	}
	if err != nil {
		return nil, &cryptofund.ComputationError{Err: err}
	}
	return cryptofund.NormalizeAllocations(body), nil
}

// reason extracts the error message of a failed response.
func reason(serr *fetch.StatusError) string {
	var payload struct {
		Error  string `json:"error"`
		Detail any    `json:"detail"`
	}
	if json.Unmarshal(serr.Body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != nil {
			return fmt.Sprint(payload.Detail)
		}
	}
	return serr.Status
}
