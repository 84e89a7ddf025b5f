package asyncfd_test

import (
	"sync"
	"time"

	"github.com/brickingsoft/asyncfd/pkg/reactor"
)

// fakePoller records registration calls and delivers injected events.
// A Oneshot registration is disarmed by its first event, as epoll does, and
// drops events until it is reregistered.
type fakePoller struct {
	mu            sync.Mutex
	registerErr   error
	reregisterErr error
	rearmReady    reactor.Ready
	registers     int
	reregisters   int
	deregisters   int
	tokens        map[int]reactor.Token
	opts          map[int]reactor.PollOpt
	disarmed      map[int]bool
	events        chan reactor.Event
	wakeup        chan struct{}
	closed        chan struct{}
	closeOnce     sync.Once
}

func newFakePoller() *fakePoller {
	return &fakePoller{
		tokens:   make(map[int]reactor.Token),
		opts:     make(map[int]reactor.PollOpt),
		disarmed: make(map[int]bool),
		events:   make(chan reactor.Event, 64),
		wakeup:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

func (p *fakePoller) Register(fd int, token reactor.Token, interest reactor.Interest, opts reactor.PollOpt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.registerErr != nil {
		return p.registerErr
	}
	p.registers++
	p.tokens[fd] = token
	p.opts[fd] = opts
	p.disarmed[fd] = false
	return nil
}

func (p *fakePoller) Reregister(fd int, token reactor.Token, interest reactor.Interest, opts reactor.PollOpt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reregisterErr != nil {
		return p.reregisterErr
	}
	p.reregisters++
	p.opts[fd] = opts
	p.disarmed[fd] = false
	if p.rearmReady != 0 {
		p.deliver(fd, reactor.Event{Token: token, Ready: p.rearmReady})
	}
	return nil
}

func (p *fakePoller) Deregister(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deregisters++
	delete(p.tokens, fd)
	delete(p.opts, fd)
	delete(p.disarmed, fd)
	return nil
}

func (p *fakePoller) Wait(events []reactor.Event, timeout time.Duration) (int, error) {
	select {
	case ev := <-p.events:
		events[0] = ev
		n := 1
		for n < len(events) {
			select {
			case ev = <-p.events:
				events[n] = ev
				n++
				continue
			default:
			}
			break
		}
		return n, nil
	case <-p.wakeup:
		return 0, nil
	case <-p.closed:
		return 0, nil
	}
}

func (p *fakePoller) Wakeup() error {
	select {
	case p.wakeup <- struct{}{}:
	default:
	}
	return nil
}

func (p *fakePoller) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	return nil
}

// fire delivers ready for the descriptor fd.
func (p *fakePoller) fire(fd int, ready reactor.Ready) {
	p.mu.Lock()
	p.deliver(fd, reactor.Event{Token: p.tokens[fd], Ready: ready})
	p.mu.Unlock()
}

// deliver must be called with mu held.
func (p *fakePoller) deliver(fd int, ev reactor.Event) {
	if p.disarmed[fd] {
		return
	}
	if p.opts[fd].IsOneshot() {
		p.disarmed[fd] = true
	}
	p.events <- ev
}

func (p *fakePoller) counts() (registers, reregisters, deregisters int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.registers, p.reregisters, p.deregisters
}

func (p *fakePoller) setRearmReady(ready reactor.Ready) {
	p.mu.Lock()
	p.rearmReady = ready
	p.mu.Unlock()
}

// resource is a descriptor owner that is never touched by the reactor.
type resource struct {
	fd     uintptr
	closed int
}

func (r *resource) Fd() uintptr {
	return r.fd
}

func (r *resource) Close() error {
	r.closed++
	return nil
}
