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

package errors

// Each package that can fail owns a 100-wide slice of the code space,
// declared here so two packages never collide. Add a new MinPkg* entry
// here (never renumber an existing one) when a new package grows its
// own error.go.
const (
	MinPkgConfig       = 100
	MinPkgFdSlot       = 200
	MinPkgAddrList     = 300
	MinPkgPoller       = 400
	MinPkgConnectOps   = 500
	MinPkgIdent        = 600
	MinPkgProtocolHook = 700
	MinPkgSpawn        = 800
	MinPkgTlsEngine    = 900
	MinPkgTransfer     = 1000
	MinPkgSession      = 1100

	MinAvailable = 1200
)
