/*
 * MIT License
 *
 * Copyright (c) 2024 stunnel contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

//go:build linux

package poller

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/matthewcooper/stunnel/fdslot"
)

// epollPoller implements Poller with a real epoll instance, grounded
// in the raw-fd idiom of mdlayher/socket's syscall.RawConn usage: each
// Add walks the slot's SyscallConn to reach the integer fd, which is
// then armed with EPOLLIN/EPOLLOUT/EPOLLERR via epoll_ctl.
type epollPoller struct {
	epfd    int
	fds     map[int]*registration
	results map[int]*Readiness
}

type registration struct {
	slot fdslot.FdSlot
	fd   int
}

// New returns the Linux epoll-backed Poller.
func New() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, ErrorEpollCreate.Error(err)
	}
	return &epollPoller{
		epfd:    epfd,
		fds:     make(map[int]*registration),
		results: make(map[int]*Readiness),
	}, nil
}

func (p *epollPoller) Reset() {
	for fd := range p.fds {
		_ = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	}
	p.fds = make(map[int]*registration)
	p.results = make(map[int]*Readiness)
}

func (p *epollPoller) Add(slot fdslot.FdSlot, wantRead, wantWrite bool) error {
	if !wantRead && !wantWrite {
		return nil
	}

	rc, err := slot.SyscallConn()
	if err != nil {
		return ErrorNotPollable.Error(err)
	}

	var fd int
	var ctlErr error
	if err = rc.Control(func(sysfd uintptr) {
		fd = int(sysfd)
	}); err != nil {
		return ErrorNotPollable.Error(err)
	}

	var events uint32 = unix.EPOLLERR
	if wantRead {
		events |= unix.EPOLLIN
	}
	if wantWrite {
		events |= unix.EPOLLOUT
	}

	ev := &unix.EpollEvent{Events: events, Fd: int32(fd)}

	if _, registered := p.fds[fd]; registered {
		ctlErr = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
	} else {
		ctlErr = unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev)
	}
	if ctlErr != nil {
		return ErrorEpollCtl.Error(ctlErr)
	}

	p.fds[fd] = &registration{slot: slot, fd: fd}
	p.results[fd] = &Readiness{}
	return nil
}

func (p *epollPoller) Wait(timeout time.Duration) error {
	events := make([]unix.EpollEvent, len(p.fds))
	if len(events) == 0 {
		time.Sleep(timeout)
		return ErrTimeout
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}

		n, err := unix.EpollWait(p.epfd, events, int(remaining.Milliseconds()))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return ErrorEpollWait.Error(err)
		}

		if n == 0 {
			return ErrTimeout
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			r, ok := p.results[fd]
			if !ok {
				continue
			}
			if events[i].Events&unix.EPOLLIN != 0 {
				r.CanRead = true
			}
			if events[i].Events&unix.EPOLLOUT != 0 {
				r.CanWrite = true
			}
			if events[i].Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				r.Error = true
			}
		}
		return nil
	}
}

func (p *epollPoller) Result(slot fdslot.FdSlot) Readiness {
	rc, err := slot.SyscallConn()
	if err != nil {
		return Readiness{}
	}

	var fd int
	if err = rc.Control(func(sysfd uintptr) { fd = int(sysfd) }); err != nil {
		return Readiness{}
	}

	if r, ok := p.results[fd]; ok {
		return *r
	}
	return Readiness{}
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
