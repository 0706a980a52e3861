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

package spawn

import liberr "github.com/matthewcooper/stunnel/errors"

const (
	ErrorSocketpair liberr.CodeError = iota + liberr.MinPkgSpawn
	ErrorStart
	ErrorPTYUnsupported
)

func init() {
	liberr.RegisterIdFctMessage(ErrorSocketpair, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorSocketpair:
		return "spawn: failed to build the child's stdio socket pair"
	case ErrorStart:
		return "spawn: failed to start the child process"
	case ErrorPTYUnsupported:
		return "spawn: pty allocation is not supported"
	}
	return ""
}

// ErrPtyUnsupported is returned by Spawn when Options.PTY is set.
// No pty-allocation library is present anywhere in the reference
// corpus; rather than fabricate a dependency, pty support is left
// unimplemented and documented here as a known gap.
var ErrPtyUnsupported = ErrorPTYUnsupported.Error()
