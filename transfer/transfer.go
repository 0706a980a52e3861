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

// Package transfer implements spec.md §4.9, the core relay state
// machine: four logical channels (socket-read, socket-write,
// TLS-read, TLS-write) driven by a single poller wait per iteration,
// with full-duplex half-close propagation and a watchdog against a
// misbehaving TLS peer.
//
// crypto/tls.Conn has no non-blocking mode, so this package polls the
// real file descriptors underneath fdslot.FdSlot/Engine for readiness
// (the single blocking point §5 requires), then arms an immediate
// (already-elapsed) deadline before each TLS call so it returns
// whatever is already available rather than blocking further. A call
// that still reports WANT_READ/WANT_WRITE after that — real TLS
// renegotiation needing the other direction — is handled exactly as
// spec.md's cross-want flags describe.
package transfer

import (
	"context"
	"time"

	liberr "github.com/matthewcooper/stunnel/errors"
	"github.com/matthewcooper/stunnel/fdslot"
	"github.com/matthewcooper/stunnel/logger"
	"github.com/matthewcooper/stunnel/poller"
	"github.com/matthewcooper/stunnel/tlsengine"
)

// BuffSize is spec.md §3's BUFFSIZE.
const BuffSize = 16384

// BuffReserved is held back from BuffSize until X-Forwarded-For
// injection completes (or is skipped), per spec.md §3.
const BuffReserved = 128

// WatchdogLimit is spec.md §4.9 step 12's trip threshold.
const WatchdogLimit = 100

// Options configures one Run call. Session builds this after setup
// (handshake complete, protocol hook run) and owns the connections it
// references; closing them is Session's job during teardown (spec.md
// §7). Run does close the Poller when it returns, and half-close
// closes a plaintext write side outright when it has no CloseWrite.
type Options struct {
	// SockRead/SockWrite are the plaintext-side endpoints. Equal when
	// the plaintext side is one bidirectional socket; distinct for the
	// piped-stdio case (spec.md §9 Open Question 2).
	SockRead  fdslot.FdSlot
	SockWrite fdslot.FdSlot

	// Remote is the TLS-side socket, used only for poller registration
	// (TLS itself is driven through TLS, not read/written directly).
	Remote fdslot.FdSlot
	TLS    *tlsengine.Engine

	Poller poller.Poller

	// BufferSize overrides BuffSize; zero means use the default.
	BufferSize int

	// XForwardedFor enables header injection into the first
	// TLS-decrypted HTTP request, spec.md §6. PeerIP is the numeric
	// address inserted; an empty PeerIP with XForwardedFor set mimics
	// "getnameinfo failure" — boundary detection still runs but no
	// header is inserted.
	XForwardedFor bool
	PeerIP        string

	TimeoutIdle  time.Duration
	TimeoutClose time.Duration

	Logger logger.Logger
}

// Outcome reports the final byte counts and whether the session ended
// with a reset (dirty close, protocol fault, or watchdog trip) versus
// a clean exit. Session uses Reset to decide whether to arm
// SO_LINGER{0} during teardown (spec.md §3 Lifecycle / §7).
type Outcome struct {
	SockBytes uint64
	SSLBytes  uint64
	Reset     bool
}

// state is the live per-iteration working set, spec.md §4.9's state
// variables plus the buffers they govern.
type state struct {
	opt Options

	sockOpenRd, sockOpenWr bool
	sslOpenRd, sslOpenWr   bool

	readWantsRead, readWantsWrite   bool
	writeWantsRead, writeWantsWrite bool
	shutdownWantsRead, shutdownWantsWrite bool

	sockBuf []byte
	sockPtr int
	sslBuf  []byte
	sslPtr  int

	buffSize int

	crlfSeen    int
	headerEndAt int
	xffDone     bool

	watchdog int
	done     bool

	sockBytes uint64
	sslBytes  uint64
}

func newState(opt Options) *state {
	size := opt.BufferSize
	if size <= 0 {
		size = BuffSize
	}

	buffSize := size
	xffDone := !opt.XForwardedFor
	if opt.XForwardedFor {
		buffSize = size - BuffReserved
	}

	return &state{
		opt:         opt,
		sockOpenRd:  true,
		sockOpenWr:  true,
		sslOpenRd:   true,
		sslOpenWr:   true,
		sockBuf:     make([]byte, size),
		sslBuf:      make([]byte, size),
		buffSize:    buffSize,
		xffDone:     xffDone,
		headerEndAt: -1,
	}
}

// Run drives the loop until both write directions are closed and no
// close_notify is pending, or an unrecoverable condition unwinds it.
// A nil error means clean termination; a non-nil one always carries
// Outcome.Reset=true semantics reflected in the returned Outcome.
func Run(ctx context.Context, opt Options) (Outcome, liberr.Error) {
	s := newState(opt)
	defer s.opt.Poller.Close()

	for s.sockOpenWr || s.sslOpenWr || s.shutdownWantsRead || s.shutdownWantsWrite {
		select {
		case <-ctx.Done():
			return s.outcome(true), ErrorPollFailed.Error(ctx.Err())
		default:
		}

		if err := s.iterate(); err != nil {
			return s.outcome(true), err
		}
		if s.done {
			return s.outcome(false), nil
		}
	}

	return s.outcome(false), nil
}

func (s *state) outcome(reset bool) Outcome {
	return Outcome{SockBytes: s.sockBytes, SSLBytes: s.sslBytes, Reset: reset}
}
