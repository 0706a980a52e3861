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
	"github.com/matthewcooper/stunnel/logger"
)

// scanAndInjectXFF looks for the blank line ending the HTTP request
// headers in the bytes just decrypted into sslBuf[start:end] (spec.md
// §4.9 step 9 / §8) and inserts an X-Forwarded-For header immediately
// before it. Only the newly appended span is scanned on each call — an
// unterminated line carries crlfSeen forward to the next TLS read
// rather than being re-scanned from the start.
//
// crlfSeen counts consecutive line terminators the way
// original_source/src/client.c:613-635 does: '\r' is ignored, '\n'
// increments the count, any other byte resets it to zero. Two in a
// row (either "\n\n" or "\r\n\r\n") marks the empty line, and the
// header is spliced in right before it.
func (s *state) scanAndInjectXFF(start, end int) {
	if s.xffDone {
		return
	}

	for i := start; i < end; i++ {
		switch s.sslBuf[i] {
		case '\r':
		case '\n':
			s.crlfSeen++
			if s.crlfSeen == 2 {
				pos := i
				if i > 0 && s.sslBuf[i-1] == '\r' {
					pos = i - 1
				}
				s.insertXFFHeader(pos)
				s.headerEndAt = pos
				s.xffDone = true
				return
			}
		default:
			s.crlfSeen = 0
		}
	}
}

// insertXFFHeader splices "X-Forwarded-For: <ip>\r\n" into sslBuf at
// pos, shifting the buffered tail right into the BuffReserved span
// held back by newState. A missing PeerIP (the getnameinfo-failure
// case) still stops the scan but inserts nothing.
func (s *state) insertXFFHeader(pos int) {
	capacity := len(s.sslBuf)
	s.buffSize = capacity

	if s.opt.PeerIP == "" {
		return
	}

	header := []byte("X-Forwarded-For: " + s.opt.PeerIP + "\r\n")

	need := len(header)
	if s.sslPtr+need > capacity {
		need = capacity - s.sslPtr
		if need <= 0 {
			return
		}
		header = header[:need]
	}

	copy(s.sslBuf[pos+need:s.sslPtr+need], s.sslBuf[pos:s.sslPtr])
	copy(s.sslBuf[pos:pos+need], header)

	s.sslPtr += need
	s.sslBytes += uint64(need)
}

// logWatchdogState emits the diagnostic snapshot spec.md §4.9 step 12
// expects when the watchdog trips, nil-safe since Options.Logger is
// optional.
func (s *state) logWatchdogState() {
	if s.opt.Logger == nil {
		return
	}
	s.opt.Logger.WithFields(logger.Fields{
		"sock_bytes": s.sockBytes,
		"ssl_bytes":  s.sslBytes,
		"sock_ptr":   s.sockPtr,
		"ssl_ptr":    s.sslPtr,
	}).Warning("transfer: watchdog tripped after repeated no-progress iterations", nil)
}
