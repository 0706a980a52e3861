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

// Package fdslot wraps a single plaintext- or TLS-side endpoint the way
// spec.md's FdSlot does: a read/write handle plus whether it is a
// socket. Go has no bare integer file descriptors in its networking
// API, so the handle here is a small interface satisfied by both
// *net.TCPConn/*net.UnixConn (the socket case) and *os.File (the
// piped-stdio case of a spawned local program).
package fdslot

import (
	"io"
	"net"
	"os"
	"syscall"
	"time"

	liberr "github.com/matthewcooper/stunnel/errors"
)

const (
	ErrorNilConn liberr.CodeError = iota + liberr.MinPkgFdSlot
	ErrorNotSyscallConn
	ErrorLinger
)

func init() {
	liberr.RegisterIdFctMessage(ErrorNilConn, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorNilConn:
		return "fdslot: nil connection"
	case ErrorNotSyscallConn:
		return "fdslot: underlying handle does not expose a raw file descriptor"
	case ErrorLinger:
		return "fdslot: cannot set SO_LINGER for reset"
	}
	return ""
}

// Conn is the minimal surface FdSlot needs from its underlying handle.
// Both net.Conn and *os.File satisfy it.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// FdSlot wraps one endpoint: (handle, is_socket) per spec.md §4.1.
// IsSocket is permitted false only for the plaintext side, when the
// handle is a piped *os.File rather than an accepted/dialed socket.
type FdSlot struct {
	conn     Conn
	isSocket bool
}

// New wraps conn, detecting IsSocket from its concrete type. Use
// NewExplicit to force the bit (e.g. a UDP/unix socket the caller
// already knows is a socket but which fails the type assertion).
func New(conn Conn) FdSlot {
	_, isNetConn := conn.(net.Conn)
	return FdSlot{conn: conn, isSocket: isNetConn}
}

// NewExplicit wraps conn with an explicit IsSocket bit, for a caller
// whose read and write handles may disagree — spec.md §9 Open
// Question 2. Package session does not call it; it uses New.
func NewExplicit(conn Conn, isSocket bool) FdSlot {
	return FdSlot{conn: conn, isSocket: isSocket}
}

func (f FdSlot) IsZero() bool    { return f.conn == nil }
func (f FdSlot) IsSocket() bool  { return f.isSocket }
func (f FdSlot) Conn() Conn      { return f.conn }
func (f FdSlot) NetConn() net.Conn {
	if c, ok := f.conn.(net.Conn); ok {
		return c
	}
	return nil
}

func (f FdSlot) SetReadDeadline(t time.Time) error {
	if f.conn == nil {
		return ErrorNilConn.Error()
	}
	return f.conn.SetReadDeadline(t)
}

func (f FdSlot) SetWriteDeadline(t time.Time) error {
	if f.conn == nil {
		return ErrorNilConn.Error()
	}
	return f.conn.SetWriteDeadline(t)
}

func (f FdSlot) Read(p []byte) (int, error)  { return f.conn.Read(p) }
func (f FdSlot) Write(p []byte) (int, error) { return f.conn.Write(p) }
func (f FdSlot) Close() error {
	if f.conn == nil {
		return nil
	}
	return f.conn.Close()
}

// SyscallConn exposes the raw file descriptor for components (poller,
// connectops) that must wait on readiness or set socket options
// directly. It fails for handles that do not implement syscall.Conn
// (there are none among net.Conn/*os.File, but the guard keeps the
// contract explicit rather than panicking on a bad type assertion).
func (f FdSlot) SyscallConn() (syscall.RawConn, error) {
	if f.conn == nil {
		return nil, ErrorNilConn.Error()
	}
	sc, ok := f.conn.(syscall.Conn)
	if !ok {
		return nil, ErrorNotSyscallConn.Error()
	}
	return sc.SyscallConn()
}

// LingerReset arms SO_LINGER{on=1, linger=0} so the next Close sends an
// RST instead of a FIN — spec.md §3 Lifecycle / §7 error=reset. A no-op
// (not an error) for non-socket handles, matching §4.1: "No polling of
// exceptions or linger on non-sockets."
func (f FdSlot) LingerReset() error {
	if !f.isSocket {
		return nil
	}

	tc, ok := f.conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tc.SetLinger(0); err != nil {
		return ErrorLinger.Error(err)
	}
	return nil
}

// AsFile adapts a raw OS file descriptor (e.g. one end of a socketpair
// created by connectops.MakeSockets) into the Conn interface required
// by FdSlot, without going through net.FileConn, e.g. for plain pipes
// rather than a bidirectional socket. No package in this module calls
// it.
func AsFile(f *os.File) Conn { return f }
