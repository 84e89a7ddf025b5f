package reactor

import (
	"time"
)

// Poller is the readiness notification backend keyed on raw descriptors.
type Poller interface {
	// Register starts watching fd for interest and tags its events with token.
	Register(fd int, token Token, interest Interest, opts PollOpt) (err error)
	// Reregister replaces the interest and options of an existing registration.
	// It also makes the poller report a descriptor that is already ready, and
	// with Oneshot it rearms a fired registration.
	Reregister(fd int, token Token, interest Interest, opts PollOpt) (err error)
	// Deregister stops watching fd.
	Deregister(fd int) (err error)
	// Wait blocks until at least one event is ready, the timeout elapses or
	// Wakeup is called. A negative timeout blocks without limit.
	Wait(events []Event, timeout time.Duration) (n int, err error)
	// Wakeup interrupts a blocked Wait.
	Wakeup() (err error)
	Close() (err error)
}

// Source is anything that can be registered with a Poller.
type Source interface {
	Register(poller Poller, token Token, interest Interest, opts PollOpt) (err error)
	Reregister(poller Poller, token Token, interest Interest, opts PollOpt) (err error)
	Deregister(poller Poller) (err error)
}

// EventedFd is a Source for a raw descriptor that is owned elsewhere.
type EventedFd int

func (fd EventedFd) Register(poller Poller, token Token, interest Interest, opts PollOpt) error {
	return poller.Register(int(fd), token, interest, opts)
}

func (fd EventedFd) Reregister(poller Poller, token Token, interest Interest, opts PollOpt) error {
	return poller.Reregister(int(fd), token, interest, opts)
}

func (fd EventedFd) Deregister(poller Poller) error {
	return poller.Deregister(int(fd))
}
