package asyncfd

import (
	"io"
	"sync/atomic"

	"github.com/brickingsoft/asyncfd/pkg/reactor"
)

// Async is a descriptor owning resource registered with a reactor.
//
// Operations on the resource go through ReadWith and WriteWith, which retry
// a non-blocking probe each time the reactor reports the descriptor ready.
type Async[T Descriptor] struct {
	adapter      *fdAdapter[T]
	registration *reactor.Registration
	release      func() error
	closed       atomic.Bool
}

// New wraps io and registers its descriptor once. io must already be in
// non-blocking mode. The error of a failed registration is returned as is.
func New[T Descriptor](io T, options ...Option) (*Async[T], error) {
	opt, err := buildOptions(options)
	if err != nil {
		return nil, err
	}
	r := opt.Reactor
	release := noopRelease
	if r == nil {
		r, release, err = acquireReactor()
		if err != nil {
			return nil, err
		}
	}
	adapter := &fdAdapter[T]{io: io}
	registration, err := r.Register(adapter, opt.Interest)
	if err != nil {
		_ = release()
		return nil, err
	}
	return &Async[T]{
		adapter:      adapter,
		registration: registration,
		release:      release,
	}, nil
}

// Get returns the wrapped resource.
func (a *Async[T]) Get() T {
	return a.adapter.io
}

// Fd returns the raw descriptor of the wrapped resource.
func (a *Async[T]) Fd() uintptr {
	return a.adapter.io.Fd()
}

// Registration returns the reactor registration of the descriptor.
func (a *Async[T]) Registration() *reactor.Registration {
	return a.registration
}

// Close deregisters the descriptor and closes the resource when it is an
// io.Closer. Calls after the first return ErrClosed.
func (a *Async[T]) Close() (err error) {
	if !a.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	err = a.deregister()
	if closer, ok := any(a.adapter.io).(io.Closer); ok {
		if closeErr := closer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	return
}

// Release deregisters the descriptor and hands the resource back without
// closing it.
func (a *Async[T]) Release() (resource T, err error) {
	resource = a.adapter.io
	if !a.closed.CompareAndSwap(false, true) {
		err = ErrClosed
		return
	}
	err = a.deregister()
	return
}

func (a *Async[T]) deregister() error {
	err := a.registration.Deregister()
	if releaseErr := a.release(); releaseErr != nil && err == nil {
		err = releaseErr
	}
	return err
}
