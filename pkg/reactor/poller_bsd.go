//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package reactor

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// NewPoller opens a kqueue(2) instance with a pipe used for wakeups.
func NewPoller() (Poller, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, newPollerErr("open kqueue failed", errMetaOpOpen, os.NewSyscallError("kqueue", err))
	}
	unix.CloseOnExec(fd)
	var pipe [2]int
	if err = unix.Pipe(pipe[:]); err != nil {
		_ = unix.Close(fd)
		return nil, newPollerErr("open kqueue failed", errMetaOpOpen, os.NewSyscallError("pipe", err))
	}
	for _, pfd := range pipe {
		unix.CloseOnExec(pfd)
		_ = unix.SetNonblock(pfd, true)
	}
	p := &KQueue{
		fd:     fd,
		rfd:    pipe[0],
		wfd:    pipe[1],
		tokens: make(map[int]Token),
	}
	var change unix.Kevent_t
	unix.SetKevent(&change, p.rfd, unix.EVFILT_READ, unix.EV_ADD|unix.EV_CLEAR)
	if _, err = unix.Kevent(fd, []unix.Kevent_t{change}, nil, nil); err != nil {
		_ = p.Close()
		return nil, newPollerErr("open kqueue failed", errMetaOpOpen, os.NewSyscallError("kevent", err))
	}
	return p, nil
}

// KQueue is the kqueue(2) Poller.
type KQueue struct {
	fd        int
	rfd       int
	wfd       int
	tokensMu  sync.RWMutex
	tokens    map[int]Token
	locker    sync.Mutex
	buf       []unix.Kevent_t
	closeOnce sync.Once
}

func (p *KQueue) Register(fd int, token Token, interest Interest, opts PollOpt) error {
	p.tokensMu.Lock()
	if _, has := p.tokens[fd]; has {
		p.tokensMu.Unlock()
		return ErrRegistered
	}
	p.tokens[fd] = token
	p.tokensMu.Unlock()
	if err := p.apply(fd, interest, opts); err != nil {
		p.tokensMu.Lock()
		delete(p.tokens, fd)
		p.tokensMu.Unlock()
		return newPollerErr("register failed", errMetaOpRegister, err)
	}
	return nil
}

func (p *KQueue) Reregister(fd int, token Token, interest Interest, opts PollOpt) error {
	p.tokensMu.Lock()
	p.tokens[fd] = token
	p.tokensMu.Unlock()
	if err := p.apply(fd, interest, opts); err != nil {
		return newPollerErr("reregister failed", errMetaOpReregister, err)
	}
	return nil
}

func (p *KQueue) Deregister(fd int) error {
	p.tokensMu.Lock()
	delete(p.tokens, fd)
	p.tokensMu.Unlock()
	changes := make([]unix.Kevent_t, 2)
	unix.SetKevent(&changes[0], fd, unix.EVFILT_READ, unix.EV_DELETE)
	unix.SetKevent(&changes[1], fd, unix.EVFILT_WRITE, unix.EV_DELETE)
	for i := range changes {
		// a filter that was never added reports ENOENT
		if _, err := unix.Kevent(p.fd, changes[i:i+1], nil, nil); err != nil && err != unix.ENOENT {
			return newPollerErr("deregister failed", errMetaOpDeregister, os.NewSyscallError("kevent", err))
		}
	}
	return nil
}

func (p *KQueue) apply(fd int, interest Interest, opts PollOpt) error {
	flags := unix.EV_ADD | unix.EV_ENABLE
	if opts.IsEdge() {
		flags |= unix.EV_CLEAR
	}
	if opts.IsOneshot() {
		flags |= unix.EV_ONESHOT
	}
	changes := make([]unix.Kevent_t, 0, 2)
	if interest.IsReadable() {
		var change unix.Kevent_t
		unix.SetKevent(&change, fd, unix.EVFILT_READ, flags)
		changes = append(changes, change)
	}
	if interest.IsWritable() {
		var change unix.Kevent_t
		unix.SetKevent(&change, fd, unix.EVFILT_WRITE, flags)
		changes = append(changes, change)
	}
	if _, err := unix.Kevent(p.fd, changes, nil, nil); err != nil {
		return os.NewSyscallError("kevent", err)
	}
	return nil
}

func (p *KQueue) Wait(events []Event, timeout time.Duration) (int, error) {
	p.locker.Lock()
	defer p.locker.Unlock()
	if cap(p.buf) < len(events) {
		p.buf = make([]unix.Kevent_t, len(events))
	}
	buf := p.buf[:len(events)]
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(int64(timeout))
		ts = &t
	}
	n, err := unix.Kevent(p.fd, nil, buf, ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, newPollerErr("wait failed", errMetaOpWait, os.NewSyscallError("kevent", err))
	}
	count := 0
	p.tokensMu.RLock()
	for i := 0; i < n; i++ {
		ev := &buf[i]
		fd := int(ev.Ident)
		if fd == p.rfd {
			var data [64]byte
			for {
				if rn, _ := unix.Read(p.rfd, data[:]); rn <= 0 {
					break
				}
			}
			continue
		}
		token, has := p.tokens[fd]
		if !has {
			continue
		}
		var ready Ready
		switch ev.Filter {
		case unix.EVFILT_READ:
			ready |= ReadReady
		case unix.EVFILT_WRITE:
			ready |= WriteReady
		}
		if ev.Flags&unix.EV_EOF != 0 {
			ready |= HupReady
		}
		if ev.Flags&unix.EV_ERROR != 0 {
			ready |= ErrorReady
		}
		events[count] = Event{Token: token, Ready: ready}
		count++
	}
	p.tokensMu.RUnlock()
	return count, nil
}

func (p *KQueue) Wakeup() error {
	if _, err := unix.Write(p.wfd, []byte{1}); err != nil && err != unix.EAGAIN {
		return newPollerErr("wakeup failed", errMetaOpWakeup, os.NewSyscallError("write", err))
	}
	return nil
}

func (p *KQueue) Close() (err error) {
	p.closeOnce.Do(func() {
		_ = unix.Close(p.rfd)
		_ = unix.Close(p.wfd)
		if cErr := unix.Close(p.fd); cErr != nil {
			err = newPollerErr("close failed", errMetaOpClose, os.NewSyscallError("close", cErr))
		}
	})
	return
}
