package asyncfd

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/brickingsoft/rxp"
)

var (
	executors     rxp.Executors = nil
	executorsOnce sync.Once
)

// Startup
// 启动执行器
//
// ReadWithFuture 与 WriteWithFuture 在执行器中运行重试循环。
// 默认提供一个执行器，如果需要定制化，则使用 Startup 完成。
// 注意：必须在程序起始位置调用，否则无效。
func Startup(options ...Option) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case error:
				err = e
			case string:
				err = errors.New(e)
			default:
				err = fmt.Errorf("%+v", r)
			}
		}
	}()
	opt, optErr := buildOptions(options)
	if optErr != nil {
		err = optErr
		return
	}
	executors = rxp.New(opt.AsRxpOptions()...)
	return
}

// Shutdown
// 关闭执行器
//
// 非优雅的，即不会等待所有协程执行完毕。
func Shutdown() error {
	runtime.SetFinalizer(executors, nil)
	return Executors().Close()
}

// ShutdownGracefully
// 优雅的关闭执行器
//
// 它会等待所有协程执行完毕。
func ShutdownGracefully() error {
	runtime.SetFinalizer(executors, nil)
	return Executors().CloseGracefully()
}

// Executors
// 获取执行器
func Executors() rxp.Executors {
	executorsOnce.Do(func() {
		if executors == nil {
			executors = rxp.New()
			runtime.SetFinalizer(executors, rxp.Executors.CloseGracefully)
		}
	})
	return executors
}
