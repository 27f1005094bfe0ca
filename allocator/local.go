package allocator

import (
	"context"
	"errors"
	"net/http"

	"github.com/etnz/cryptofund"
)

// Local computes allocations in process, it implements cryptofund.Allocator.
//
// Invalid parameters are reported the way the service would report them.
type Local struct{}

func (Local) Allocate(_ context.Context, req cryptofund.AllocationRequest) ([]cryptofund.Allocation, error) {
	res, err := allocate(req)
	if errors.Is(err, ErrInvalidParams) {
		return nil, &cryptofund.ComputationError{Status: http.StatusUnprocessableEntity, Err: err}
	}
	if err != nil {
		return nil, &cryptofund.ComputationError{Status: http.StatusInternalServerError, Err: err}
	}
	return res, nil
}
