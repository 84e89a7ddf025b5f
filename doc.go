// Package asyncfd turns a non-blocking descriptor owning resource into an
// awaitable one.
//
// A resource is registered once with a reactor (see pkg/reactor) by New.
// ReadWith and WriteWith then run a caller supplied probe against it: a
// probe that reports would-block (syscall.EAGAIN or ErrWouldBlock) parks the
// calling goroutine until the reactor reports the matching readiness, after
// which the probe is retried. Any other result ends the loop and is returned
// unchanged.
//
//	a, err := asyncfd.New(conn)
//	if err != nil {
//		return err
//	}
//	defer a.Close()
//	n, err := asyncfd.ReadWith(ctx, a, func(conn *Conn) (int, error) {
//		return unix.Read(int(conn.Fd()), b)
//	})
//
// ReadWithFuture and WriteWithFuture run the same loops on the rxp executors
// and complete a future instead.
package asyncfd
