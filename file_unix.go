//go:build unix

package asyncfd

import (
	"context"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// RawFd is a descriptor owned by value.
type RawFd int

func (fd RawFd) Fd() uintptr {
	return uintptr(fd)
}

func (fd RawFd) Close() error {
	if err := unix.Close(int(fd)); err != nil {
		return os.NewSyscallError("close", err)
	}
	return nil
}

// OpenFile switches fd to non-blocking mode and registers it. The returned
// File owns fd.
func OpenFile(fd int, options ...Option) (*File, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, os.NewSyscallError("setnonblock", err)
	}
	a, err := New(RawFd(fd), options...)
	if err != nil {
		return nil, err
	}
	return &File{a: a}, nil
}

// Pipe returns a connected pair of non-blocking files.
func Pipe(options ...Option) (r *File, w *File, err error) {
	var p [2]int
	if err = unix.Pipe(p[:]); err != nil {
		err = os.NewSyscallError("pipe", err)
		return
	}
	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])
	if r, err = OpenFile(p[0], options...); err != nil {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
		return
	}
	if w, err = OpenFile(p[1], options...); err != nil {
		_ = r.Close()
		_ = unix.Close(p[1])
		r = nil
		return
	}
	return
}

// File reads and writes a non-blocking descriptor through ReadWith and
// WriteWith.
type File struct {
	a *Async[RawFd]
}

func (f *File) Async() *Async[RawFd] {
	return f.a
}

func (f *File) Fd() uintptr {
	return f.a.Fd()
}

func (f *File) Read(p []byte) (int, error) {
	return f.ReadContext(context.Background(), p)
}

func (f *File) ReadContext(ctx context.Context, p []byte) (n int, err error) {
	if len(p) == 0 {
		return
	}
	n, err = ReadWith(ctx, f.a, func(fd RawFd) (int, error) {
		for {
			rn, rErr := unix.Read(int(fd), p)
			if rErr == unix.EINTR {
				continue
			}
			if rErr != nil {
				return 0, os.NewSyscallError("read", rErr)
			}
			return rn, nil
		}
	})
	if err == nil && n == 0 {
		err = io.EOF
	}
	return
}

func (f *File) Write(p []byte) (int, error) {
	return f.WriteContext(context.Background(), p)
}

// WriteContext writes all of p unless an error occurs.
func (f *File) WriteContext(ctx context.Context, p []byte) (n int, err error) {
	for n < len(p) {
		b := p[n:]
		wn, wErr := WriteWith(ctx, f.a, func(fd RawFd) (int, error) {
			for {
				wn, wErr := unix.Write(int(fd), b)
				if wErr == unix.EINTR {
					continue
				}
				if wErr != nil {
					return 0, os.NewSyscallError("write", wErr)
				}
				return wn, nil
			}
		})
		n += wn
		if wErr != nil {
			err = wErr
			return
		}
	}
	return
}

func (f *File) Close() error {
	return f.a.Close()
}
