package reactor

import (
	"sync"
	"sync/atomic"
)

// Open creates a Reactor on the platform poller.
func Open(options ...Option) (*Reactor, error) {
	poller, err := NewPoller()
	if err != nil {
		return nil, err
	}
	r, err := New(poller, options...)
	if err != nil {
		_ = poller.Close()
		return nil, err
	}
	return r, nil
}

// New creates a Reactor over poller and starts its driver goroutine.
// The reactor owns poller from now on and closes it in Close.
func New(poller Poller, options ...Option) (*Reactor, error) {
	opts := Options{
		Events:      DefaultEvents,
		WaitTimeout: DefaultWaitTimeout,
	}
	for _, option := range options {
		if err := option(&opts); err != nil {
			return nil, err
		}
	}
	r := &Reactor{
		poller:        poller,
		options:       opts,
		registrations: make(map[Token]*Registration),
		done:          make(chan struct{}),
	}
	go r.run()
	return r, nil
}

// Reactor drives a Poller and routes its events to registrations.
type Reactor struct {
	poller          Poller
	options         Options
	nextToken       atomic.Uint64
	registrationsMu sync.RWMutex
	registrations   map[Token]*Registration
	closed          atomic.Bool
	shutdown        atomic.Bool
	done            chan struct{}
	err             atomic.Value
}

// Register binds source to a new edge-triggered registration. The error of
// the source is returned unchanged.
func (r *Reactor) Register(source Source, interest Interest) (*Registration, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	token := Token(r.nextToken.Add(1))
	reg := newRegistration(r, token, source, interest, Edge)
	// visible before the poller can report it
	r.registrationsMu.Lock()
	r.registrations[token] = reg
	r.registrationsMu.Unlock()
	if err := source.Register(r.poller, token, interest, reg.opts); err != nil {
		r.remove(token)
		return nil, err
	}
	return reg, nil
}

// Len returns the number of live registrations.
func (r *Reactor) Len() int {
	r.registrationsMu.RLock()
	n := len(r.registrations)
	r.registrationsMu.RUnlock()
	return n
}

// Err returns the error that stopped the driver, if any.
func (r *Reactor) Err() error {
	if err, ok := r.err.Load().(error); ok {
		return err
	}
	return nil
}

// Closed reports whether the reactor was closed or its driver stopped.
func (r *Reactor) Closed() bool {
	return r.closed.Load()
}

// Close stops the driver, closes the poller and wakes every waiter. Waiters
// that try to rearm afterwards get ErrClosed.
func (r *Reactor) Close() (err error) {
	if !r.shutdown.CompareAndSwap(false, true) {
		return nil
	}
	r.closed.Store(true)
	if wakeErr := r.poller.Wakeup(); wakeErr == nil {
		<-r.done
	} else {
		err = wakeErr
	}
	if closeErr := r.poller.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	r.registrationsMu.Lock()
	regs := make([]*Registration, 0, len(r.registrations))
	for _, reg := range r.registrations {
		regs = append(regs, reg)
	}
	r.registrationsMu.Unlock()
	for _, reg := range regs {
		reg.wakeAll()
	}
	return
}

func (r *Reactor) run() {
	defer close(r.done)
	events := make([]Event, r.options.Events)
	for !r.closed.Load() {
		n, err := r.poller.Wait(events, r.options.WaitTimeout)
		if err != nil {
			if r.closed.Load() {
				return
			}
			r.err.Store(err)
			r.stop()
			return
		}
		for i := 0; i < n; i++ {
			r.dispatch(events[i])
		}
	}
}

// stop is the driver giving up after a poller failure.
func (r *Reactor) stop() {
	r.closed.Store(true)
	r.registrationsMu.RLock()
	regs := make([]*Registration, 0, len(r.registrations))
	for _, reg := range r.registrations {
		regs = append(regs, reg)
	}
	r.registrationsMu.RUnlock()
	for _, reg := range regs {
		reg.wakeAll()
	}
}

func (r *Reactor) dispatch(ev Event) {
	r.registrationsMu.RLock()
	reg, has := r.registrations[ev.Token]
	r.registrationsMu.RUnlock()
	if !has {
		return
	}
	reg.dispatch(ev.Ready)
}

func (r *Reactor) remove(token Token) {
	r.registrationsMu.Lock()
	delete(r.registrations, token)
	r.registrationsMu.Unlock()
}
