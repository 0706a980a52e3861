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
	"errors"
	"net"
	"strconv"
	"syscall"
)

// LocalBind implements spec.md §4.7's local_bind: bind to the
// configured port first (ports below 1024 are rejected unless
// transparent mode is on); on EADDRINUSE, or always under transparent
// mode, retry with an ephemeral port.
func LocalBind(host string, port int, transparent bool) (*net.TCPListener, error) {
	if port != 0 && port < 1024 && !transparent {
		return nil, ErrorPrivilegedPort.Error()
	}

	if port != 0 && !transparent {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			return ln.(*net.TCPListener), nil
		}
		if !errors.Is(err, net.ErrClosed) && !isAddrInUse(err) {
			return nil, ErrorBind.Error(err)
		}
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return nil, ErrorBind.Error(err)
	}
	return ln.(*net.TCPListener), nil
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
