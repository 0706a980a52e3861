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

import liberr "github.com/matthewcooper/stunnel/errors"

const (
	ErrorNoCandidates liberr.CodeError = iota + liberr.MinPkgConnectOps
	ErrorExhausted
	ErrorPrivilegedPort
	ErrorBind
	ErrorSocketpair
)

func init() {
	liberr.RegisterIdFctMessage(ErrorNoCandidates, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorNoCandidates:
		return "connectops: address list is empty"
	case ErrorExhausted:
		return "connectops: every candidate address failed to connect"
	case ErrorPrivilegedPort:
		return "connectops: binding below port 1024 requires transparent mode"
	case ErrorBind:
		return "connectops: local bind failed"
	case ErrorSocketpair:
		return "connectops: failed to build a connected fd pair"
	}
	return ""
}
