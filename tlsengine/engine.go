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

package tlsengine

import (
	"crypto/tls"
	"errors"
	"net"
	"time"
)

// Engine is the "handle" of spec.md §4.3: new/free, connect/accept,
// read/write/shutdown, pending, version, over a single crypto/tls.Conn.
type Engine struct {
	conn   *tls.Conn
	closed bool

	// sentShutdown/recvShutdown track close_notify progress so
	// Shutdown (and a forced SSLv2-style hard close from transfer) is
	// idempotent — calling it twice never double-sends an alert.
	sentShutdown bool
	recvShutdown bool
}

// New wraps a raw net.Conn as the client side of a TLS connection,
// per spec.md §4.3 "new(ctx) -> handle". The handshake itself is
// deferred to Connect, matching the spec's separate connect() step.
func New(raw net.Conn, cfg *Config, serverName string) *Engine {
	return &Engine{conn: tls.Client(raw, cfg.clientConfig(serverName))}
}

// NewServer wraps raw as the server side, handshake deferred to Accept.
func NewServer(raw net.Conn, cfg *Config) *Engine {
	base := cfg.TLSConfig
	if base == nil {
		base = &tls.Config{}
	}
	return &Engine{conn: tls.Server(raw, base)}
}

// Free releases the handle. spec.md pairs new/free with connect/accept
// and read/write/shutdown; Go's GC reclaims the *tls.Conn itself, so
// Free only exists to mirror the paired-call shape callers expect and
// to guard against double-Close panics from the underlying net.Conn.
func (e *Engine) Free() error {
	if e == nil || e.closed {
		return nil
	}
	e.closed = true
	return e.conn.Close()
}

// classify maps a crypto/tls error (or nil) plus the direction the
// caller armed a deadline for, into the Code vocabulary spec.md's
// handshake/read/write/shutdown all share.
func classify(err error, wantDirection Code) Result {
	if err == nil {
		return Result{Code: OK}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Result{Code: wantDirection, Err: err}
	}

	if errors.Is(err, net.ErrClosed) {
		return Result{Code: Syscall, Err: err}
	}

	// tls.Conn reports a peer close_notify as io.EOF from Read; the
	// caller distinguishes it from SYSCALL via ZeroReturn.
	if err.Error() == "EOF" {
		return Result{Code: ZeroReturn, Err: err}
	}

	var alertErr *net.OpError
	if errors.As(err, &alertErr) {
		return Result{Code: Syscall, Err: err}
	}

	return Result{Code: SSLError, Err: err}
}

// Connect drives the client handshake. It blocks until the handshake
// completes or fails, under whatever deadline conn already carries.
// Session setup arms no deadline before calling it and treats any
// result other than OK as a failed handshake; it does not park the FD
// in the poller or retry on WantRead/WantWrite.
func (e *Engine) Connect() Result {
	err := e.conn.Handshake()
	return classify(err, WantWrite)
}

// Accept drives the server handshake; it blocks the same way as
// Connect, and session setup handles its result the same way.
func (e *Engine) Accept() Result {
	err := e.conn.Handshake()
	return classify(err, WantRead)
}

// Read behaves like spec.md §4.9 step 9's TLS read: OK with n>0,
// ZeroReturn on a clean close_notify, WantRead/WantWrite on a timeout
// armed in that direction, Syscall/SSLError otherwise.
func (e *Engine) Read(p []byte, wantDirection Code) (int, Result) {
	n, err := e.conn.Read(p)
	if err == nil {
		return n, Result{Code: OK, N: n}
	}
	res := classify(err, wantDirection)
	res.N = n
	return n, res
}

// Write behaves like spec.md §4.9 step 10's TLS write.
func (e *Engine) Write(p []byte, wantDirection Code) (int, Result) {
	n, err := e.conn.Write(p)
	if err == nil {
		return n, Result{Code: OK, N: n}
	}
	res := classify(err, wantDirection)
	res.N = n
	return n, res
}

// Shutdown initiates (or continues) close_notify, per spec.md §4.9
// step 5. crypto/tls.Conn.Close sends close_notify and then closes the
// underlying net.Conn in one call, so this module tracks "shutdown
// sent" itself and defers the actual fd close to the caller (session
// teardown), which is why Shutdown does not call e.conn.Close.
func (e *Engine) Shutdown(wantDirection Code) Result {
	if e.sentShutdown && e.recvShutdown {
		return Result{Code: OK}
	}

	err := e.conn.CloseWrite()
	if err != nil {
		return classify(err, wantDirection)
	}

	e.sentShutdown = true
	return Result{Code: OK}
}

// MarkShutdownComplete lets the SSLv2 hard-close branch of transfer
// (spec.md §4.9 step 11) declare both directions shut without a
// close_notify record, since crypto/tls never negotiates SSLv2 and
// this path is dead in practice but kept per DESIGN NOTES.
func (e *Engine) MarkShutdownComplete() {
	e.sentShutdown = true
	e.recvShutdown = true
}

// Pending reports application data already buffered in the record
// layer — spec.md §4.9 step 9's "(ssl_can_rd || pending())" condition.
// crypto/tls does not expose an equivalent to SSL_pending(); the best
// available proxy is a zero-length, non-blocking Read attempt is
// unsafe (it would consume a byte), so Pending conservatively reports
// false. Documented as an accepted approximation in DESIGN.md.
func (e *Engine) Pending() bool {
	return false
}

// Version returns the negotiated protocol name in the vocabulary
// spec.md §4.9 step 11 switches on. crypto/tls never negotiates SSLv2
// or SSLv3 (both are unsupported/rejected), so the SSLv3 arm is
// reachable only in principle; there is no SSLv2 arm, since IsSSLv2
// carries the guarded dead branch of DESIGN NOTES' "SSLv2
// special-case".
func (e *Engine) Version() string {
	switch e.conn.ConnectionState().Version {
	case tls.VersionSSL30:
		return "SSLv3"
	case tls.VersionTLS10:
		return "TLSv1"
	case tls.VersionTLS11:
		return "TLSv1.1"
	case tls.VersionTLS12:
		return "TLSv1.2"
	case tls.VersionTLS13:
		return "TLSv1.3"
	default:
		return "unknown"
	}
}

// IsSSLv2 always reports false: crypto/tls has no SSLv2 support, so
// the hard-close branch of transfer's half-close propagation (spec.md
// §4.9 step 11) is permanently guarded off, per DESIGN NOTES'
// "SSLv2 special-case" instruction to keep it as a dead-but-present
// constant rather than delete it.
func (e *Engine) IsSSLv2() bool {
	return false
}

// SetReadDeadline/SetWriteDeadline let transfer emulate WANT_READ/
// WANT_WRITE over crypto/tls's blocking API, per this package's doc
// comment.
func (e *Engine) SetReadDeadline(t time.Time) error  { return e.conn.SetReadDeadline(t) }
func (e *Engine) SetWriteDeadline(t time.Time) error { return e.conn.SetWriteDeadline(t) }

// ConnectionState exposes the negotiated state (peer certificates for
// SSL_CLIENT_DN propagation into spawn) once the handshake completes.
func (e *Engine) ConnectionState() tls.ConnectionState {
	return e.conn.ConnectionState()
}
