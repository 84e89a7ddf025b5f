package asyncfd

import (
	"context"

	"github.com/brickingsoft/asyncfd/pkg/reactor"
)

// ReadWith calls op until it returns something other than a would-block
// error, waiting for the descriptor to become readable between attempts.
// The first attempt is made without waiting. The terminal result of op is
// returned unchanged; a failure to wait is returned with the zero R.
func ReadWith[T Descriptor, R any](ctx context.Context, a *Async[T], op func(io T) (R, error)) (R, error) {
	return retryWith(ctx, a, reactor.Readable, op)
}

// WriteWith is ReadWith waiting for writability.
func WriteWith[T Descriptor, R any](ctx context.Context, a *Async[T], op func(io T) (R, error)) (R, error) {
	return retryWith(ctx, a, reactor.Writable, op)
}

func retryWith[T Descriptor, R any](ctx context.Context, a *Async[T], interest reactor.Interest, op func(io T) (R, error)) (r R, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		event := a.registration.Readiness(interest)
		r, err = op(a.Get())
		if !IsWouldBlock(err) {
			return
		}
		if interest == reactor.Readable {
			err = a.readable(ctx, event)
		} else {
			err = a.writable(ctx, event)
		}
		if err != nil {
			r = *(new(R))
			return
		}
	}
}
