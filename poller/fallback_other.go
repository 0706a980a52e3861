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

//go:build !linux

package poller

import (
	"sync"
	"time"

	"github.com/matthewcooper/stunnel/fdslot"
)

// fallbackPoller backs non-Linux platforms, which have no portable
// epoll-equivalent reachable from a syscall.RawConn without
// platform-specific build tags of their own (kqueue on BSD/Darwin,
// IOCP on Windows). Rather than fabricate a second real poller for
// each, Wait here always reports every registered interest as ready
// and simply sleeps for min(timeout, a short tick); the actual
// readiness test happens when the caller's subsequent Read/Write call
// (armed with its own deadline, as tlsengine and connectops already
// do) either succeeds immediately or times out. This trades a busier
// loop for correctness without inventing a fake platform poller.
type fallbackPoller struct {
	mu      sync.Mutex
	pending map[fdslot.FdSlot]bool
}

func New() (Poller, error) {
	return &fallbackPoller{pending: make(map[fdslot.FdSlot]bool)}, nil
}

func (p *fallbackPoller) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = make(map[fdslot.FdSlot]bool)
}

func (p *fallbackPoller) Add(slot fdslot.FdSlot, wantRead, wantWrite bool) error {
	if !wantRead && !wantWrite {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[slot] = true
	return nil
}

const tick = 20 * time.Millisecond

func (p *fallbackPoller) Wait(timeout time.Duration) error {
	p.mu.Lock()
	empty := len(p.pending) == 0
	p.mu.Unlock()

	if empty {
		time.Sleep(timeout)
		return ErrTimeout
	}

	if timeout < tick {
		time.Sleep(timeout)
		return nil
	}
	time.Sleep(tick)
	return nil
}

func (p *fallbackPoller) Result(slot fdslot.FdSlot) Readiness {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending[slot] {
		return Readiness{CanRead: true, CanWrite: true}
	}
	return Readiness{}
}

func (p *fallbackPoller) Close() error { return nil }
