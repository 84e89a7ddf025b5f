package asyncfd

import (
	"context"

	"github.com/brickingsoft/asyncfd/pkg/reactor"
)

// waker parks the goroutine of one readiness wait.
type waker struct {
	ch chan struct{}
}

func newWaker() *waker {
	return &waker{ch: make(chan struct{}, 1)}
}

func (w *waker) Wake() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

type pollState uint8

const (
	unpolled pollState = iota
	polled
)

// readiness waits once for one interest of a registration.
//
// The first poll clears the readiness seen in event, rearms the registration
// and queues the waker, then reports pending. The next poll completes.
type readiness struct {
	registration *reactor.Registration
	interest     reactor.Interest
	event        reactor.ReadyEvent
	state        pollState
	waiter       *reactor.Waiter
}

func (r *readiness) poll(w reactor.Waker) (done bool, err error) {
	if r.state == polled {
		done = true
		return
	}
	r.registration.ClearReadiness(r.event)
	if r.waiter, err = r.registration.Arm(r.interest, w); err != nil {
		done = true
		return
	}
	r.state = polled
	return
}

// cancel drops the queued waker of an abandoned wait.
func (r *readiness) cancel() {
	r.waiter.Cancel()
	r.waiter = nil
}

// await drives r on the calling goroutine. Cancelling ctx abandons the wait;
// the registration stays usable for the next wait.
func await(ctx context.Context, r *readiness) error {
	w := newWaker()
	for {
		done, err := r.poll(w)
		if done {
			return err
		}
		select {
		case <-w.ch:
		case <-ctx.Done():
			r.cancel()
			return ctx.Err()
		}
	}
}

func (a *Async[T]) readable(ctx context.Context, event reactor.ReadyEvent) error {
	return await(ctx, &readiness{
		registration: a.registration,
		interest:     reactor.Readable,
		event:        event,
	})
}

func (a *Async[T]) writable(ctx context.Context, event reactor.ReadyEvent) error {
	return await(ctx, &readiness{
		registration: a.registration,
		interest:     reactor.Writable,
		event:        event,
	})
}
