package asyncfd

import (
	"sync"

	"github.com/brickingsoft/asyncfd/pkg/reactor"
	"github.com/brickingsoft/asyncfd/pkg/reference"
)

var (
	srLocker = new(sync.Mutex)
	sr       *reference.Pointer[*reactor.Reactor]
)

// acquireReactor returns the process wide reactor, opening it when no
// resource holds it.
func acquireReactor() (r *reactor.Reactor, release func() error, err error) {
	srLocker.Lock()
	defer srLocker.Unlock()
	if sr == nil || sr.Value().Closed() {
		opened, openErr := reactor.Open()
		if openErr != nil {
			err = openErr
			return
		}
		sr = reference.Make(opened)
	}
	p := sr
	r = p.Acquire()
	release = func() error {
		srLocker.Lock()
		defer srLocker.Unlock()
		closed, releaseErr := p.Release()
		if closed && sr == p {
			sr = nil
		}
		return releaseErr
	}
	return
}

func noopRelease() error {
	return nil
}
