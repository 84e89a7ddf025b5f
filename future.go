package asyncfd

import (
	"context"

	"github.com/brickingsoft/rxp"
	"github.com/brickingsoft/rxp/async"
)

// ReadWithFuture
// 在执行器中运行 ReadWith，并以其最终结果完成许诺。
func ReadWithFuture[T Descriptor, R any](ctx context.Context, a *Async[T], op func(io T) (R, error)) (future async.Future[R]) {
	return withFuture(ctx, func(ctx context.Context) (R, error) {
		return ReadWith(ctx, a, op)
	})
}

// WriteWithFuture
// 在执行器中运行 WriteWith，并以其最终结果完成许诺。
func WriteWithFuture[T Descriptor, R any](ctx context.Context, a *Async[T], op func(io T) (R, error)) (future async.Future[R]) {
	return withFuture(ctx, func(ctx context.Context) (R, error) {
		return WriteWith(ctx, a, op)
	})
}

func withFuture[R any](ctx context.Context, loop func(ctx context.Context) (R, error)) (future async.Future[R]) {
	if ctx == nil {
		ctx = context.Background()
	}
	exec := Executors()
	ctx = rxp.With(ctx, exec)
	promise, promiseErr := async.Make[R](ctx, async.WithWait())
	if promiseErr != nil {
		future = async.FailedImmediately[R](ctx, promiseErr)
		return
	}
	future = promise.Future()
	execErr := exec.Execute(ctx, func() {
		r, err := loop(ctx)
		if err != nil {
			promise.Fail(err)
			return
		}
		promise.Succeed(r)
	})
	if execErr != nil {
		promise.Fail(execErr)
	}
	return
}
