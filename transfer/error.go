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

import liberr "github.com/matthewcooper/stunnel/errors"

// The error codes of spec.md §7. Run reports every one of them,
// poller failure included, with Outcome.Reset=true (dirty close /
// protocol fault / watchdog trip — the caller must linger-reset
// sockets before close). Clean termination returns a nil error.
const (
	ErrorPollFailed liberr.CodeError = iota + liberr.MinPkgTransfer
	ErrorDescriptorFailed
	ErrorSocketRead
	ErrorSocketWrite
	ErrorTLSProtocol
	ErrorTimeoutIdle
	ErrorWatchdog
)

func init() {
	liberr.RegisterIdFctMessage(ErrorPollFailed, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorPollFailed:
		return "transfer: poller wait failed"
	case ErrorDescriptorFailed:
		return "transfer: a registered descriptor reported an error condition"
	case ErrorSocketRead:
		return "transfer: plaintext-side read failed"
	case ErrorSocketWrite:
		return "transfer: plaintext-side write failed"
	case ErrorTLSProtocol:
		return "transfer: TLS protocol error"
	case ErrorTimeoutIdle:
		return "transfer: idle timeout with no progress"
	case ErrorWatchdog:
		return "transfer: watchdog tripped after 100 no-progress iterations"
	}
	return ""
}
