// Package machine defines the interface to the physical dispensing machine.
package machine

import (
	"context"
	"errors"

	"github.com/quentinlb/cocktaild/core/model"
)

// ErrAckTimeout is returned when the machine does not acknowledge a cocktail
// before the deadline. A physical machine can hang, so every call is bounded.
var ErrAckTimeout = errors.New("timeout waiting for machine ack")

// Client sends a compiled dispense plan to the machine and reports the
// outcome. The call blocks for the duration of the physical dispensing, so
// callers run it off the request path and bound it with the context.
type Client interface {
	MakeCocktail(ctx context.Context, steps []model.MachineStep) error
}
