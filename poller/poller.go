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

// Package poller implements the single blocking wait point of
// spec.md §4.9 step 3 / §5 ("all blocking within a session happens at
// exactly one point per iteration: the poller wait"). A caller
// registers up to four interests per iteration (socket-read,
// socket-write, TLS-side-read, TLS-side-write) and Wait blocks until
// one becomes ready or the timeout elapses.
package poller

import (
	"time"

	"github.com/matthewcooper/stunnel/fdslot"
)

// Interest is one (slot, want-read, want-write) registration for one
// iteration of the transfer loop.
type Interest struct {
	Slot      fdslot.FdSlot
	WantRead  bool
	WantWrite bool
}

// Readiness reports which of a registered Interest's directions woke
// the Wait call, plus whether the descriptor reported an error
// condition (spec.md §4.9 step 2's "also register error interest on
// all four").
type Readiness struct {
	CanRead  bool
	CanWrite bool
	Error    bool
}

// Poller is the contract transfer drives every iteration through.
// Reset clears the interest set, Add registers interests for the next
// Wait call; Wait blocks until any registered interest is ready or
// timeout elapses.
type Poller interface {
	// Reset clears all previously registered interests.
	Reset()

	// Add registers (or updates) interest for slot.
	Add(slot fdslot.FdSlot, wantRead, wantWrite bool) error

	// Wait blocks until at least one interest is ready, the timeout
	// elapses (returns ErrTimeout), or an error occurs.
	Wait(timeout time.Duration) error

	// Result returns the readiness observed for slot after Wait.
	// Calling it before Wait, or for a slot never Added, returns the
	// zero Readiness (not ready).
	Result(slot fdslot.FdSlot) Readiness

	Close() error
}

// ErrTimeout is returned by Wait when no interest became ready before
// the deadline — spec.md §4.9 step 3's "timeout return".
var ErrTimeout = errTimeout{}

type errTimeout struct{}

func (errTimeout) Error() string { return "poller: wait timed out" }
func (errTimeout) Timeout() bool { return true }
