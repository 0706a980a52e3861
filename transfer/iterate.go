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

package transfer

import (
	"errors"
	"io"
	"net"
	"time"

	liberr "github.com/matthewcooper/stunnel/errors"
	"github.com/matthewcooper/stunnel/poller"
	"github.com/matthewcooper/stunnel/tlsengine"
)

// iterate runs one pass of spec.md §4.9's twelve-step sequence. A
// non-nil return always means unwind-as-reset; a clean exit sets
// s.done and returns nil.
func (s *state) iterate() liberr.Error {
	moved := false

	// Step 1: recompute want flags (first pass).
	s.recomputeWants()

	// Step 2: register interests.
	sockReadInterest := s.sockOpenRd && s.sockPtr < s.buffSize
	sockWriteInterest := s.sockOpenWr && s.sslPtr > 0
	remoteReadInterest := s.readWantsRead || s.writeWantsRead || s.shutdownWantsRead
	remoteWriteInterest := s.readWantsWrite || s.writeWantsWrite || s.shutdownWantsWrite

	s.opt.Poller.Reset()
	if s.samePlaintextSlot() {
		if err := s.opt.Poller.Add(s.opt.SockRead, sockReadInterest, sockWriteInterest); err != nil {
			return ErrorPollFailed.Error(err)
		}
	} else {
		if err := s.opt.Poller.Add(s.opt.SockRead, sockReadInterest, false); err != nil {
			return ErrorPollFailed.Error(err)
		}
		if err := s.opt.Poller.Add(s.opt.SockWrite, false, sockWriteInterest); err != nil {
			return ErrorPollFailed.Error(err)
		}
	}
	if err := s.opt.Poller.Add(s.opt.Remote, remoteReadInterest, remoteWriteInterest); err != nil {
		return ErrorPollFailed.Error(err)
	}

	// Step 3: poll.
	activePhase := s.sockOpenRd || s.sslOpenRd || s.sockPtr > 0 || s.sslPtr > 0
	timeout := s.opt.TimeoutClose
	if activePhase {
		timeout = s.opt.TimeoutIdle
	}

	err := s.opt.Poller.Wait(timeout)
	if err != nil {
		if errors.Is(err, poller.ErrTimeout) {
			if activePhase {
				return ErrorTimeoutIdle.Error()
			}
			s.done = true
			return nil
		}
		return ErrorPollFailed.Error(err)
	}

	// Step 4: error scan.
	sockRd := s.opt.Poller.Result(s.opt.SockRead)
	sockWr := s.opt.Poller.Result(s.opt.SockWrite)
	remote := s.opt.Poller.Result(s.opt.Remote)
	if sockRd.Error || sockWr.Error || remote.Error {
		return ErrorDescriptorFailed.Error()
	}

	// Step 5: drive close_notify.
	if s.shutdownWantsRead || s.shutdownWantsWrite {
		s.shutdownWantsRead = false
		s.shutdownWantsWrite = false

		dir := tlsengine.WantWrite
		s.opt.TLS.SetWriteDeadline(time.Now())
		res := s.opt.TLS.Shutdown(dir)
		switch res.Code {
		case tlsengine.OK, tlsengine.ZeroReturn:
			// fully shut down, or peer already gone.
		case tlsengine.WantRead:
			s.shutdownWantsRead = true
		case tlsengine.WantWrite:
			s.shutdownWantsWrite = true
		default:
			return ErrorTLSProtocol.Error(res.Err)
		}
	}

	// Step 6: socket read.
	if s.sockOpenRd && sockRd.CanRead {
		n, rerr := s.opt.SockRead.Read(s.sockBuf[s.sockPtr:s.buffSize])
		if n > 0 {
			s.sockPtr += n
			s.sockBytes += uint64(n)
			moved = true
		}
		if rerr != nil {
			if rerr == io.EOF {
				s.sockOpenRd = false
			} else if !isTransient(rerr) {
				return ErrorSocketRead.Error(rerr)
			}
		}
	}

	// Step 7: socket write.
	if s.sockOpenWr && sockWr.CanWrite && s.sslPtr > 0 {
		n, werr := s.opt.SockWrite.Write(s.sslBuf[:s.sslPtr])
		if n > 0 {
			copy(s.sslBuf, s.sslBuf[n:s.sslPtr])
			s.sslPtr -= n
			moved = true
		}
		if werr != nil && !isTransient(werr) {
			return ErrorSocketWrite.Error(werr)
		}
	}

	// Step 8: recompute want flags a second time.
	s.recomputeWants()

	// Step 9: TLS read.
	doRead := (s.readWantsRead && (remote.CanRead || s.opt.TLS.Pending())) || (s.readWantsWrite && remote.CanWrite)
	if doRead {
		dir := tlsengine.WantRead
		if s.readWantsWrite {
			dir = tlsengine.WantWrite
		}
		s.opt.TLS.SetReadDeadline(time.Now())
		n, res := s.opt.TLS.Read(s.sslBuf[s.sslPtr:s.buffSize], dir)

		switch res.Code {
		case tlsengine.OK:
			start := s.sslPtr
			s.sslPtr += n
			s.sslBytes += uint64(n)
			s.readWantsWrite = false
			if n > 0 {
				moved = true
			}
			if s.opt.XForwardedFor && !s.xffDone {
				s.scanAndInjectXFF(start, s.sslPtr)
			}
		case tlsengine.WantWrite:
			s.readWantsWrite = true
			s.readWantsRead = false
		case tlsengine.WantRead:
			s.readWantsWrite = false
		case tlsengine.X509Lookup:
			// no-op, retry next iteration.
		case tlsengine.Syscall:
			if n == 0 {
				if s.sockPtr > 0 {
					return ErrorTLSProtocol.Error(res.Err)
				}
				s.sslOpenRd = false
				s.sslOpenWr = false
			} else {
				return ErrorTLSProtocol.Error(res.Err)
			}
		case tlsengine.ZeroReturn:
			s.sslOpenRd = false
			if s.opt.TLS.IsSSLv2() {
				s.sslOpenWr = false
			}
		case tlsengine.SSLError:
			return ErrorTLSProtocol.Error(res.Err)
		}
	}

	// Step 10: TLS write.
	doWrite := (s.writeWantsRead && remote.CanRead) || (s.writeWantsWrite && remote.CanWrite)
	if doWrite {
		dir := tlsengine.WantWrite
		if s.writeWantsRead {
			dir = tlsengine.WantRead
		}
		s.opt.TLS.SetWriteDeadline(time.Now())
		n, res := s.opt.TLS.Write(s.sockBuf[:s.sockPtr], dir)

		switch res.Code {
		case tlsengine.OK:
			copy(s.sockBuf, s.sockBuf[n:s.sockPtr])
			s.sockPtr -= n
			s.writeWantsRead = false
			if n > 0 {
				moved = true
			}
		case tlsengine.WantRead:
			s.writeWantsRead = true
			s.writeWantsWrite = false
		case tlsengine.WantWrite:
			s.writeWantsRead = false
		case tlsengine.X509Lookup:
			// no-op, retry.
		case tlsengine.Syscall:
			if n == 0 {
				if s.sockPtr > 0 {
					return ErrorTLSProtocol.Error(res.Err)
				}
				s.sslOpenRd = false
				s.sslOpenWr = false
			} else {
				return ErrorTLSProtocol.Error(res.Err)
			}
		case tlsengine.ZeroReturn:
			s.sslOpenRd = false
			if s.opt.TLS.IsSSLv2() {
				s.sslOpenWr = false
			}
		case tlsengine.SSLError:
			return ErrorTLSProtocol.Error(res.Err)
		}
	}

	// Step 11: half-close propagation.
	if s.sockOpenWr && !s.sslOpenRd && s.sslPtr == 0 {
		closeWrite(s.opt.SockWrite.NetConn())
		s.sockOpenWr = false
	}
	if s.sslOpenWr && !s.sockOpenRd && s.sockPtr == 0 {
		if s.opt.TLS.IsSSLv2() {
			// Dead branch: crypto/tls never negotiates SSLv2, kept per
			// DESIGN NOTES "SSLv2 special-case".
			closeWrite(s.opt.Remote.NetConn())
			s.opt.TLS.MarkShutdownComplete()
			s.sslOpenRd = false
			s.sslOpenWr = false
		} else {
			s.sslOpenWr = false
			s.shutdownWantsWrite = true
		}
	}

	// Step 12: watchdog.
	if moved {
		s.watchdog = 0
	} else {
		s.watchdog++
		if s.watchdog >= WatchdogLimit {
			s.logWatchdogState()
			return ErrorWatchdog.Error()
		}
	}

	return nil
}

// recomputeWants applies spec.md §4.9 step 1's two formulas. The
// cross flags (readWantsWrite, writeWantsRead) are not reset here —
// they are owned by the TLS read/write dispatch in steps 9/10, which
// clear them once the retried direction stops being needed.
func (s *state) recomputeWants() {
	s.readWantsRead = s.sslOpenRd && s.sslPtr < s.buffSize && !s.readWantsWrite
	s.writeWantsWrite = s.sslOpenWr && s.sockPtr > 0 && !s.writeWantsRead
}

// samePlaintextSlot reports whether SockRead and SockWrite wrap the
// same underlying handle, the bidirectional-socket case. The piped
// stdio case (spec.md §9 Open Question 2) wraps two distinct *os.File
// values and must register each direction separately.
func (s *state) samePlaintextSlot() bool {
	return s.opt.SockRead.Conn() == s.opt.SockWrite.Conn()
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func closeWrite(c net.Conn) {
	if c == nil {
		return
	}
	if cw, ok := c.(interface{ CloseWrite() error }); ok {
		cw.CloseWrite()
		return
	}
	c.Close()
}
