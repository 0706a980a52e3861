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

package connectops

import (
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// MakeSockets implements spec.md §4.8's connected-FD-pair construction
// for a spawned local program: prefer a loopback TCP socketpair
// (listen on 127.0.0.1:0, dial it, accept), falling back to
// socketpair(AF_UNIX) where loopback TCP is unavailable (e.g. a
// network-namespace-restricted sandbox). The first return value is the
// end this process keeps; the second is handed to the child as its
// stdio.
func MakeSockets() (keep net.Conn, child *os.File, err error) {
	if keep, child, err = loopbackPair(); err == nil {
		return keep, child, nil
	}

	return unixSocketpair()
}

func loopbackPair() (net.Conn, *os.File, error) {
	ln, lerr := net.Listen("tcp", "127.0.0.1:0")
	if lerr != nil {
		return nil, nil, lerr
	}
	defer ln.Close()

	acceptc := make(chan net.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		c, e := ln.Accept()
		if e != nil {
			acceptErr <- e
			return
		}
		acceptc <- c
	}()

	dialConn, derr := net.Dial("tcp", ln.Addr().String())
	if derr != nil {
		return nil, nil, derr
	}

	var parentSide net.Conn
	select {
	case parentSide = <-acceptc:
	case e := <-acceptErr:
		dialConn.Close()
		return nil, nil, e
	}

	tcpConn, ok := dialConn.(*net.TCPConn)
	if !ok {
		parentSide.Close()
		dialConn.Close()
		return nil, nil, ErrorSocketpair.Error()
	}

	f, ferr := tcpConn.File()
	if ferr != nil {
		parentSide.Close()
		dialConn.Close()
		return nil, nil, ferr
	}
	// tcpConn.File duplicates the fd; close the original now that the
	// child-bound *os.File holds its own copy.
	dialConn.Close()

	return parentSide, f, nil
}

func unixSocketpair() (net.Conn, *os.File, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, nil, ErrorSocketpair.Error(err)
	}

	parentFile := os.NewFile(uintptr(fds[0]), "stunnel-socketpair-parent")
	childFile := os.NewFile(uintptr(fds[1]), "stunnel-socketpair-child")

	parentConn, cerr := net.FileConn(parentFile)
	if cerr != nil {
		parentFile.Close()
		childFile.Close()
		return nil, nil, cerr
	}
	// net.FileConn dup'd parentFile's fd; close our copy, keep the conn.
	parentFile.Close()

	return parentConn, childFile, nil
}
