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

// Package tlsengine is a thin contract over crypto/tls matching
// spec.md §4.3: new/free, connect/accept, read/write/shutdown,
// pending, want_read/want_write observation, and a single-slot session
// cache. crypto/tls.Conn is synchronous — Read/Write/Handshake block —
// so this package reproduces the WANT_READ/WANT_WRITE contract a
// caller like transfer expects by arming a read or write deadline
// before each call and classifying a resulting timeout as the want
// signal for that direction.
package tlsengine

// Code is the outcome of a TlsEngine operation, mirroring the
// {OK, WANT_READ, WANT_WRITE, SYSCALL, SSL_ERROR, ZERO_RETURN,
// X509_LOOKUP} vocabulary of spec.md §4.3/§4.9.
type Code int

const (
	OK Code = iota
	WantRead
	WantWrite
	Syscall
	SSLError
	ZeroReturn
	X509Lookup
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case WantRead:
		return "WANT_READ"
	case WantWrite:
		return "WANT_WRITE"
	case Syscall:
		return "SYSCALL"
	case SSLError:
		return "SSL_ERROR"
	case ZeroReturn:
		return "ZERO_RETURN"
	case X509Lookup:
		return "X509_LOOKUP"
	default:
		return "UNKNOWN"
	}
}

// Result is the return value of every blocking Engine operation: a
// dispatch code, the byte count transferred (Read/Write only), the
// errno-equivalent for Syscall, and the underlying error for logging.
type Result struct {
	Code Code
	N    int
	Err  error
}
