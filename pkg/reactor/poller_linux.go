//go:build linux

package reactor

import (
	"encoding/binary"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// NewPoller opens an epoll(7) instance with an eventfd used for wakeups.
func NewPoller() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, newPollerErr("open epoll failed", errMetaOpOpen, os.NewSyscallError("epoll_create1", err))
	}
	wfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(fd)
		return nil, newPollerErr("open epoll failed", errMetaOpOpen, os.NewSyscallError("eventfd", err))
	}
	p := &EPoll{
		fd:  fd,
		wfd: wfd,
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN}
	setEpollToken(&ev, wakeupToken)
	if err = unix.EpollCtl(fd, unix.EPOLL_CTL_ADD, wfd, &ev); err != nil {
		_ = unix.Close(wfd)
		_ = unix.Close(fd)
		return nil, newPollerErr("open epoll failed", errMetaOpOpen, os.NewSyscallError("epoll_ctl", err))
	}
	return p, nil
}

// EPoll is the epoll(7) Poller.
type EPoll struct {
	fd        int
	wfd       int
	locker    sync.Mutex
	buf       []unix.EpollEvent
	closeOnce sync.Once
}

func (p *EPoll) Register(fd int, token Token, interest Interest, opts PollOpt) error {
	ev := unix.EpollEvent{Events: epollEvents(interest, opts)}
	setEpollToken(&ev, token)
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return newPollerErr("register failed", errMetaOpRegister, os.NewSyscallError("epoll_ctl", err))
	}
	return nil
}

func (p *EPoll) Reregister(fd int, token Token, interest Interest, opts PollOpt) error {
	ev := unix.EpollEvent{Events: epollEvents(interest, opts)}
	setEpollToken(&ev, token)
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return newPollerErr("reregister failed", errMetaOpReregister, os.NewSyscallError("epoll_ctl", err))
	}
	return nil
}

func (p *EPoll) Deregister(fd int) error {
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return newPollerErr("deregister failed", errMetaOpDeregister, os.NewSyscallError("epoll_ctl", err))
	}
	return nil
}

func (p *EPoll) Wait(events []Event, timeout time.Duration) (int, error) {
	// only the reactor driver waits, the lock keeps buf private to it
	p.locker.Lock()
	defer p.locker.Unlock()
	if cap(p.buf) < len(events) {
		p.buf = make([]unix.EpollEvent, len(events))
	}
	buf := p.buf[:len(events)]
	msec := -1
	if timeout >= 0 {
		msec = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(p.fd, buf, msec)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, newPollerErr("wait failed", errMetaOpWait, os.NewSyscallError("epoll_wait", err))
	}
	count := 0
	for i := 0; i < n; i++ {
		token := epollToken(&buf[i])
		if token == wakeupToken {
			var data [8]byte
			_, _ = unix.Read(p.wfd, data[:])
			continue
		}
		events[count] = Event{Token: token, Ready: epollReady(buf[i].Events)}
		count++
	}
	return count, nil
}

func (p *EPoll) Wakeup() error {
	var data [8]byte
	binary.NativeEndian.PutUint64(data[:], 1)
	if _, err := unix.Write(p.wfd, data[:]); err != nil && err != unix.EAGAIN {
		return newPollerErr("wakeup failed", errMetaOpWakeup, os.NewSyscallError("write", err))
	}
	return nil
}

func (p *EPoll) Close() (err error) {
	p.closeOnce.Do(func() {
		if wErr := unix.Close(p.wfd); wErr != nil {
			err = newPollerErr("close failed", errMetaOpClose, os.NewSyscallError("close", wErr))
		}
		if pErr := unix.Close(p.fd); pErr != nil && err == nil {
			err = newPollerErr("close failed", errMetaOpClose, os.NewSyscallError("close", pErr))
		}
	})
	return
}

func epollEvents(interest Interest, opts PollOpt) (events uint32) {
	if interest.IsReadable() {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest.IsWritable() {
		events |= unix.EPOLLOUT
	}
	if opts.IsEdge() {
		events |= unix.EPOLLET
	}
	if opts.IsOneshot() {
		events |= unix.EPOLLONESHOT
	}
	return
}

func epollReady(events uint32) (r Ready) {
	if events&(unix.EPOLLIN|unix.EPOLLPRI) != 0 {
		r |= ReadReady
	}
	if events&unix.EPOLLOUT != 0 {
		r |= WriteReady
	}
	if events&unix.EPOLLERR != 0 {
		r |= ErrorReady
	}
	if events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		r |= HupReady
	}
	return
}

// the token is split over the two 32-bit data words of epoll_event
func setEpollToken(ev *unix.EpollEvent, token Token) {
	ev.Fd = int32(uint32(token))
	ev.Pad = int32(uint32(token >> 32))
}

func epollToken(ev *unix.EpollEvent) Token {
	return Token(uint32(ev.Fd)) | Token(uint32(ev.Pad))<<32
}
