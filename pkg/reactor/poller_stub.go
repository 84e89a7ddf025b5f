//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package reactor

// NewPoller reports ErrUnsupported on platforms without epoll or kqueue.
func NewPoller() (Poller, error) {
	return nil, ErrUnsupported
}
