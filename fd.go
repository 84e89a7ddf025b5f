package asyncfd

import (
	"github.com/brickingsoft/asyncfd/pkg/reactor"
)

// Descriptor is implemented by resources that own an operating system
// descriptor, such as *os.File or RawFd. The descriptor must stay the same
// while the resource is registered.
type Descriptor interface {
	Fd() uintptr
}

// fdAdapter exposes the descriptor of T to the reactor registration protocol.
// It never reads from or writes to the resource.
type fdAdapter[T Descriptor] struct {
	io T
}

func (a *fdAdapter[T]) evented() reactor.EventedFd {
	return reactor.EventedFd(int(a.io.Fd()))
}

func (a *fdAdapter[T]) Register(poller reactor.Poller, token reactor.Token, interest reactor.Interest, opts reactor.PollOpt) error {
	return a.evented().Register(poller, token, interest, opts)
}

func (a *fdAdapter[T]) Reregister(poller reactor.Poller, token reactor.Token, interest reactor.Interest, opts reactor.PollOpt) error {
	return a.evented().Reregister(poller, token, interest, opts)
}

func (a *fdAdapter[T]) Deregister(poller reactor.Poller) error {
	return a.evented().Deregister(poller)
}
