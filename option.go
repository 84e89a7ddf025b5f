package asyncfd

import (
	"errors"
	"time"

	"github.com/brickingsoft/asyncfd/pkg/reactor"
	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/pkg/maxprocs"
)

const (
	DefaultInterest = reactor.Readable | reactor.Writable
)

type Options struct {
	RxpOptions rxp.Options
	Reactor    *reactor.Reactor
	Interest   reactor.Interest
}

func (options *Options) AsRxpOptions() []rxp.Option {
	opts := make([]rxp.Option, 0, 1)
	if n := options.RxpOptions.MaxprocsOptions.MinGOMAXPROCS; n > 0 {
		opts = append(opts, rxp.WithMinGOMAXPROCS(n))
	}
	if fn := options.RxpOptions.MaxprocsOptions.Procs; fn != nil {
		opts = append(opts, rxp.WithProcs(fn))
	}
	if fn := options.RxpOptions.MaxprocsOptions.RoundQuotaFunc; fn != nil {
		opts = append(opts, rxp.WithRoundQuotaFunc(fn))
	}
	if n := options.RxpOptions.MaxGoroutines; n > 0 {
		opts = append(opts, rxp.WithMaxGoroutines(n))
	}
	if n := options.RxpOptions.MaxReadyGoroutinesIdleDuration; n > 0 {
		opts = append(opts, rxp.WithMaxReadyGoroutinesIdleDuration(n))
	}
	if n := options.RxpOptions.CloseTimeout; n > 0 {
		opts = append(opts, rxp.WithCloseTimeout(n))
	}
	return opts
}

type Option func(options *Options) (err error)

// WithReactor
// 设置反应器。
//
// 默认使用进程共享的反应器，它在第一个资源创建时打开，在最后一个资源关闭时关闭。
// 自定义的反应器由调用方负责关闭。
func WithReactor(r *reactor.Reactor) Option {
	return func(options *Options) (err error) {
		if r == nil {
			err = errors.New("asyncfd: reactor is nil")
			return
		}
		options.Reactor = r
		return
	}
}

// WithInterest
// 设置注册的就绪兴趣。默认为可读与可写。
func WithInterest(interest reactor.Interest) Option {
	return func(options *Options) (err error) {
		if interest&(reactor.Readable|reactor.Writable) == 0 {
			err = errors.New("asyncfd: interest is empty")
			return
		}
		options.Interest = interest
		return
	}
}

// WithMinGOMAXPROCS
// 最小 GOMAXPROCS 值，只在 linux 环境下有效。一般用于 docker 容器环境。
func WithMinGOMAXPROCS(n int) Option {
	return func(options *Options) error {
		return rxp.WithMinGOMAXPROCS(n)(&options.RxpOptions)
	}
}

// WithProcsFunc
// 设置最大 GOMAXPROCS 构建函数。
func WithProcsFunc(fn maxprocs.ProcsFunc) Option {
	return func(options *Options) error {
		return rxp.WithProcs(fn)(&options.RxpOptions)
	}
}

// WithRoundQuotaFunc
// 设置整数配额函数
func WithRoundQuotaFunc(fn maxprocs.RoundQuotaFunc) Option {
	return func(options *Options) error {
		return rxp.WithRoundQuotaFunc(fn)(&options.RxpOptions)
	}
}

// WithMaxGoroutines
// 设置执行器最大协程数
func WithMaxGoroutines(n int) Option {
	return func(options *Options) error {
		return rxp.WithMaxGoroutines(n)(&options.RxpOptions)
	}
}

// WithMaxReadyGoroutinesIdleDuration
// 设置准备中协程最大闲置时长
func WithMaxReadyGoroutinesIdleDuration(d time.Duration) Option {
	return func(options *Options) error {
		return rxp.WithMaxReadyGoroutinesIdleDuration(d)(&options.RxpOptions)
	}
}

// WithCloseTimeout
// 设置执行器关闭超时时长
func WithCloseTimeout(timeout time.Duration) Option {
	return func(options *Options) error {
		return rxp.WithCloseTimeout(timeout)(&options.RxpOptions)
	}
}

func buildOptions(options []Option) (opt Options, err error) {
	opt = Options{
		RxpOptions: rxp.Options{},
		Interest:   DefaultInterest,
	}
	for _, option := range options {
		if err = option(&opt); err != nil {
			return
		}
	}
	return
}
