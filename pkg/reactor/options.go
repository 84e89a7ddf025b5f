package reactor

import (
	"time"

	"github.com/brickingsoft/errors"
)

const (
	DefaultEvents      = 128
	DefaultWaitTimeout = time.Duration(-1)
)

// Options configures a Reactor.
type Options struct {
	Events      int
	WaitTimeout time.Duration
}

type Option func(options *Options) (err error)

// WithEvents
// 设置驱动每次 Wait 收集的事件数。默认为 DefaultEvents。
func WithEvents(n int) Option {
	return func(options *Options) error {
		if n < 1 {
			return errors.New("reactor: events must be greater than 0")
		}
		options.Events = n
		return nil
	}
}

// WithWaitTimeout
// 设置驱动每次 Wait 的超时时长。负值（默认）则一直阻塞到有事件或被唤醒。
func WithWaitTimeout(d time.Duration) Option {
	return func(options *Options) error {
		options.WaitTimeout = d
		return nil
	}
}
