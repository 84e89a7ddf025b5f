package asyncfd_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/brickingsoft/asyncfd"
	"github.com/brickingsoft/asyncfd/pkg/reactor"
)

func TestReadWithFuture(t *testing.T) {
	r, poller := newTestReactor(t)
	poller.setRearmReady(reactor.ReadReady)
	a := newTestAsync(t, r, 3)
	op, calls := sequence(wouldBlock, wouldBlock, value(42))

	wg := new(sync.WaitGroup)
	wg.Add(1)
	asyncfd.ReadWithFuture(context.Background(), a, op).OnComplete(func(ctx context.Context, v int, err error) {
		defer wg.Done()
		if err != nil {
			t.Error(err)
			return
		}
		if v != 42 {
			t.Errorf("v=%d", v)
		}
	})
	wg.Wait()
	if calls() != 3 {
		t.Fatalf("calls=%d", calls())
	}
}

func TestWriteWithFuture_Failed(t *testing.T) {
	r, _ := newTestReactor(t)
	a := newTestAsync(t, r, 3)
	op, _ := sequence(func() (int, error) {
		return 0, os.ErrPermission
	})

	wg := new(sync.WaitGroup)
	wg.Add(1)
	asyncfd.WriteWithFuture(context.Background(), a, op).OnComplete(func(ctx context.Context, v int, err error) {
		defer wg.Done()
		if err != os.ErrPermission {
			t.Errorf("want ErrPermission got %v", err)
		}
	})
	wg.Wait()
}
