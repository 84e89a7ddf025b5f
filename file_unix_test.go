//go:build linux || darwin || freebsd

package asyncfd_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/brickingsoft/asyncfd"
	"golang.org/x/sys/unix"
)

func TestPipe_ReadWaitsForWrite(t *testing.T) {
	r, w, err := asyncfd.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte("hello world"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b := make([]byte, 64)
	n, err := r.ReadContext(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if string(b[:n]) != "hello world" {
		t.Fatalf("read %q", b[:n])
	}
}

func TestPipe_ReadTimeout(t *testing.T) {
	r, w, err := asyncfd.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = r.ReadContext(ctx, make([]byte, 8))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded got %v", err)
	}
}

func TestPipe_WriteWaitsForRead(t *testing.T) {
	r, w, err := asyncfd.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// larger than any default pipe buffer
	payload := bytes.Repeat([]byte("0123456789abcdef"), 1<<16)
	written := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, wErr := w.WriteContext(ctx, payload)
		_ = w.Close()
		written <- wErr
	}()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if err = <-written; err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read %d bytes want %d", len(got), len(payload))
	}
}

func TestPipe_EOF(t *testing.T) {
	r, w, err := asyncfd.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err = r.Read(make([]byte, 8)); err != io.EOF {
		t.Fatalf("want EOF got %v", err)
	}
}

func socketpair(t *testing.T) (*asyncfd.File, *asyncfd.File) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	a, err := asyncfd.OpenFile(fds[0])
	if err != nil {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
		t.Fatal(err)
	}
	b, err := asyncfd.OpenFile(fds[1])
	if err != nil {
		_ = a.Close()
		_ = unix.Close(fds[1])
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

// Sockets are writable while their reader waits, so write events keep
// arriving on the registration of a blocked read.
func TestSocketpair_ReadWaitsOnWritableSocket(t *testing.T) {
	a, b := socketpair(t)
	for round := 0; round < 3; round++ {
		msg := []byte{'a' + byte(round)}
		go func() {
			time.Sleep(20 * time.Millisecond)
			_, _ = b.Write(msg)
		}()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		buf := make([]byte, 8)
		n, err := a.ReadContext(ctx, buf)
		cancel()
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if !bytes.Equal(buf[:n], msg) {
			t.Fatalf("round %d: read %q", round, buf[:n])
		}
	}
}

func TestSocketpair_FullDuplex(t *testing.T) {
	a, b := socketpair(t)
	payload := bytes.Repeat([]byte("duplex"), 1<<15)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errs := make(chan error, 2)
	echoed := make(chan []byte, 1)
	// b echoes back everything it reads while a is still writing
	go func() {
		buf := make([]byte, 4096)
		got := 0
		for got < len(payload) {
			n, err := b.ReadContext(ctx, buf)
			if err != nil {
				errs <- err
				return
			}
			if _, err = b.WriteContext(ctx, buf[:n]); err != nil {
				errs <- err
				return
			}
			got += n
		}
		errs <- nil
	}()
	go func() {
		buf := make([]byte, 0, len(payload))
		tmp := make([]byte, 4096)
		for len(buf) < len(payload) {
			n, err := a.ReadContext(ctx, tmp)
			if err != nil {
				errs <- err
				echoed <- buf
				return
			}
			buf = append(buf, tmp[:n]...)
		}
		echoed <- buf
	}()
	if _, err := a.WriteContext(ctx, payload); err != nil {
		t.Fatal(err)
	}
	got := <-echoed
	if err := <-errs; err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("echoed %d bytes want %d", len(got), len(payload))
	}
}
