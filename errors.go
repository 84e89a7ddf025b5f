package asyncfd

import (
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/brickingsoft/asyncfd/pkg/reactor"
)

var (
	// ErrClosed is returned by waits on a resource or reactor that was closed.
	ErrClosed = reactor.ErrClosed
	// ErrWouldBlock lets a probe that is not syscall based ask for a retry
	// once the descriptor is ready again.
	ErrWouldBlock = errors.New("asyncfd: operation would block")
)

// IsWouldBlock reports whether err asks ReadWith or WriteWith to wait for
// readiness and retry.
func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EWOULDBLOCK) ||
		errors.Is(err, ErrWouldBlock)
}

// IsClosed reports whether err comes from a closed resource or reactor.
func IsClosed(err error) bool {
	return reactor.IsClosed(err) || errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrClosed)
}

// IsUnsupported reports whether the platform has no poller.
func IsUnsupported(err error) bool {
	return reactor.IsUnsupported(err)
}
