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

package session

import "github.com/matthewcooper/stunnel/transfer"

// teardown unwinds whatever setup managed to build, in reverse
// creation order, per spec.md §7: the TLS handle first (transfer has
// already driven its close_notify exchange or given up on one), then
// the TLS-side socket, then the plaintext side — a spawned child's
// Conn closes the same way a dialed one does, signaling EOF to its
// stdin. out.Reset marks sockets that were mid-transfer when the
// session unwound; those get SO_LINGER{0} so the close sends a RST
// instead of a clean FIN.
func (s *Session) teardown(out transfer.Outcome) {
	if s.tls != nil {
		s.tls.Free()
	}

	if !s.remoteFd.IsZero() {
		if out.Reset {
			s.remoteFd.LingerReset()
		}
		s.remoteFd.Close()
	}

	if !s.localRfd.IsZero() {
		if out.Reset {
			s.localRfd.LingerReset()
		}
		s.localRfd.Close()
	}

	if s.child != nil {
		s.child.Wait()
	}
}
