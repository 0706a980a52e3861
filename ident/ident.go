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

// Package ident implements the RFC 1413 IDENT client spec.md §6
// describes at the protocol boundary: query the peer's ident daemon
// for the username owning a given (peer_port, local_port) pair and
// compare it byte-exact against the configured username.
package ident

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the per-call deadline spec.md's "Transient"
// classification implies for a protocol round trip that must not hang
// a session indefinitely: 60 seconds, RFC 1413's own suggested bound.
const DefaultTimeout = 60 * time.Second

// Query dials addr's IDENT port (113) and requests the username owning
// the (peerPort, localPort) connection, returning it on success.
func Query(ctx context.Context, addr string, peerPort, localPort int, timeout time.Duration) (string, error) {
	return queryHostPort(ctx, net.JoinHostPort(addr, "113"), peerPort, localPort, timeout)
}

// queryHostPort is Query's body parameterized on the full dial target,
// split out so tests can point it at an ephemeral-port fake server
// instead of the privileged well-known IDENT port.
func queryHostPort(ctx context.Context, hostport string, peerPort, localPort int, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", hostport)
	if err != nil {
		return "", ErrorDial.Error(err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if err = conn.SetDeadline(deadline); err != nil {
		return "", ErrorDial.Error(err)
	}

	// Request line format per spec.md §6: "<peer_port> , <local_port>\r\n"
	// (literal spaces around the comma, ASCII).
	req := fmt.Sprintf("%d , %d\r\n", peerPort, localPort)
	if _, err = conn.Write([]byte(req)); err != nil {
		return "", ErrorWrite.Error(err)
	}

	scanner := bufio.NewScanner(conn)
	if !scanner.Scan() {
		if err = scanner.Err(); err != nil {
			return "", ErrorRead.Error(err)
		}
		return "", ErrorFormat.Error()
	}

	return parseResponse(scanner.Text())
}

// parseResponse applies the pattern spec.md §6 specifies:
// "%*[^:]: USERID :%*[^:]:%s" — skip to the first colon, require
// "USERID" before the second, skip to the third, and take everything
// after it as the username.
func parseResponse(line string) (string, error) {
	fields := strings.SplitN(line, ":", 4)
	if len(fields) != 4 {
		return "", ErrorFormat.Error()
	}

	if strings.TrimSpace(fields[1]) != "USERID" {
		return "", ErrorFormat.Error()
	}

	username := strings.TrimSpace(fields[3])
	if username == "" {
		return "", ErrorFormat.Error()
	}

	return username, nil
}

// Verify queries addr and reports whether the returned username
// matches want byte-exact, per spec.md §6 "Username compared
// byte-exact."
func Verify(ctx context.Context, addr string, peerPort, localPort int, want string, timeout time.Duration) error {
	got, err := Query(ctx, addr, peerPort, localPort, timeout)
	if err != nil {
		return err
	}
	if got != want {
		return ErrorMismatch.Error()
	}
	return nil
}

func portFromAddr(a net.Addr) (int, error) {
	_, portStr, err := net.SplitHostPort(a.String())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}

// VerifyConn derives the peer and local ports from an already-accepted
// connection and runs Verify against them, the shape spec.md §6's
// session setup actually calls: the accepting side knows its own
// socket's two endpoints and nothing more.
func VerifyConn(ctx context.Context, conn net.Conn, want string, timeout time.Duration) error {
	peerPort, err := portFromAddr(conn.RemoteAddr())
	if err != nil {
		return ErrorFormat.Error(err)
	}

	localPort, err := portFromAddr(conn.LocalAddr())
	if err != nil {
		return ErrorFormat.Error(err)
	}

	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return ErrorFormat.Error(err)
	}

	return Verify(ctx, host, peerPort, localPort, want, timeout)
}
