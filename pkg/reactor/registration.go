package reactor

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// ReadyEvent is a snapshot of a registration's readiness. Tick identifies the
// dispatch that produced it.
type ReadyEvent struct {
	Tick  uint32
	Ready Ready
}

func newRegistration(r *Reactor, token Token, source Source, interest Interest, opts PollOpt) *Registration {
	return &Registration{
		reactor:  r,
		token:    token,
		source:   source,
		interest: interest,
		opts:     opts,
		readers:  queue.New(),
		writers:  queue.New(),
	}
}

// Registration is the readiness slot of one Source inside a Reactor.
//
// The readiness word packs the dispatch tick in the high 32 bits and the
// Ready bits in the low 32 bits.
type Registration struct {
	reactor      *Reactor
	token        Token
	source       Source
	interest     Interest
	opts         PollOpt
	readiness    atomic.Uint64
	locker       sync.Mutex
	readers      *queue.Queue
	writers      *queue.Queue
	deregistered bool
}

// Token returns the token that tags the events of this registration.
func (reg *Registration) Token() Token {
	return reg.token
}

// Interest returns the interest the source was registered with.
func (reg *Registration) Interest() Interest {
	return reg.interest
}

// Source returns the registered source.
func (reg *Registration) Source() Source {
	return reg.source
}

// Readiness returns the current readiness restricted to interest.
func (reg *Registration) Readiness(interest Interest) ReadyEvent {
	cur := reg.readiness.Load()
	return ReadyEvent{
		Tick:  uint32(cur >> 32),
		Ready: Ready(uint32(cur)) & interest.Ready(),
	}
}

// ClearReadiness removes the bits of ev unless a newer dispatch happened
// after ev was taken.
func (reg *Registration) ClearReadiness(ev ReadyEvent) {
	if ev.Ready.IsEmpty() {
		return
	}
	for {
		cur := reg.readiness.Load()
		if uint32(cur>>32) != ev.Tick {
			return
		}
		next := cur &^ uint64(ev.Ready)
		if reg.readiness.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Waiter is a waker queued by Arm.
type Waiter struct {
	registration *Registration
	interest     Interest
	waker        Waker
}

// Cancel takes w off the waiter queue of an abandoned wait. It does nothing
// when w was already woken or is nil.
func (w *Waiter) Cancel() {
	if w == nil {
		return
	}
	reg := w.registration
	reg.locker.Lock()
	if w.interest.IsReadable() {
		unqueue(reg.readers, w)
	}
	if w.interest.IsWritable() {
		unqueue(reg.writers, w)
	}
	reg.locker.Unlock()
}

// Arm rearms the registration with the poller and queues waker for interest.
// If the readiness is already there the waker is woken before Arm returns and
// nothing is queued, so the returned Waiter is nil.
func (reg *Registration) Arm(interest Interest, waker Waker) (*Waiter, error) {
	reg.locker.Lock()
	if reg.deregistered || reg.reactor.closed.Load() {
		reg.locker.Unlock()
		return nil, ErrClosed
	}
	if interest&^reg.interest != 0 {
		reg.locker.Unlock()
		return nil, ErrInterest
	}
	if err := reg.source.Reregister(reg.reactor.poller, reg.token, reg.interest, reg.opts); err != nil {
		reg.locker.Unlock()
		return nil, err
	}
	// dispatch publishes readiness before taking the lock, so either it is
	// visible here or the waiter below is drained by it
	if Ready(uint32(reg.readiness.Load())).Matches(interest) {
		reg.locker.Unlock()
		waker.Wake()
		return nil, nil
	}
	w := &Waiter{
		registration: reg,
		interest:     interest,
		waker:        waker,
	}
	if interest.IsReadable() {
		reg.readers.Add(w)
	}
	if interest.IsWritable() {
		reg.writers.Add(w)
	}
	reg.locker.Unlock()
	return w, nil
}

// Waiters returns how many waiters are queued for interest.
func (reg *Registration) Waiters(interest Interest) (n int) {
	reg.locker.Lock()
	if interest.IsReadable() {
		n += reg.readers.Length()
	}
	if interest.IsWritable() {
		n += reg.writers.Length()
	}
	reg.locker.Unlock()
	return
}

// Deregister removes the source from the poller. Only the first call reaches
// the poller, later calls return ErrClosed.
func (reg *Registration) Deregister() (err error) {
	reg.locker.Lock()
	if reg.deregistered {
		reg.locker.Unlock()
		return ErrClosed
	}
	reg.deregistered = true
	if !reg.reactor.closed.Load() {
		err = reg.source.Deregister(reg.reactor.poller)
	}
	wakers := reg.drain(reg.readers, nil)
	wakers = reg.drain(reg.writers, wakers)
	reg.locker.Unlock()
	reg.reactor.remove(reg.token)
	for _, waker := range wakers {
		waker.Wake()
	}
	return
}

// Deregistered reports whether Deregister was called.
func (reg *Registration) Deregistered() bool {
	reg.locker.Lock()
	defer reg.locker.Unlock()
	return reg.deregistered
}

func (reg *Registration) dispatch(ready Ready) {
	for {
		cur := reg.readiness.Load()
		tick := uint32(cur>>32) + 1
		next := uint64(tick)<<32 | uint64(Ready(uint32(cur))|ready)
		if reg.readiness.CompareAndSwap(cur, next) {
			break
		}
	}
	var wakers []Waker
	reg.locker.Lock()
	if ready.Matches(Readable) {
		wakers = reg.drain(reg.readers, wakers)
	}
	if ready.Matches(Writable) {
		wakers = reg.drain(reg.writers, wakers)
	}
	reg.locker.Unlock()
	for _, waker := range wakers {
		waker.Wake()
	}
}

func (reg *Registration) wakeAll() {
	reg.locker.Lock()
	wakers := reg.drain(reg.readers, nil)
	wakers = reg.drain(reg.writers, wakers)
	reg.locker.Unlock()
	for _, waker := range wakers {
		waker.Wake()
	}
}

func (reg *Registration) drain(q *queue.Queue, wakers []Waker) []Waker {
	for q.Length() > 0 {
		wakers = append(wakers, q.Remove().(*Waiter).waker)
	}
	return wakers
}

// unqueue removes w from q keeping the order of the others.
func unqueue(q *queue.Queue, w *Waiter) {
	for i, n := 0, q.Length(); i < n; i++ {
		e := q.Remove().(*Waiter)
		if e != w {
			q.Add(e)
		}
	}
}
