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

import (
	"math"
	"sort"
	"strconv"
)

// idMsgFct maps the minimum code of a registered block to the function
// that renders a message for any code in that block.
var idMsgFct = make(map[CodeError]Message)

// Message renders a human-readable string for a registered code.
type Message func(code CodeError) (message string)

// CodeError is a numeric error code, namespaced per package via the
// MinPkg* constants in modules.go.
type CodeError uint16

const (
	// UnknownError is the fallback code for an error with no registered code.
	UnknownError CodeError = 0

	UnknownMessage = "unknown error"
	NullMessage    = ""
)

// ParseCodeError clamps an int64 into the CodeError range.
func ParseCodeError(i int64) CodeError {
	if i < 0 {
		return UnknownError
	} else if i >= int64(math.MaxUint16) {
		return math.MaxUint16
	}
	return CodeError(i)
}

func (c CodeError) Uint16() uint16 { return uint16(c) }
func (c CodeError) Int() int       { return int(c) }
func (c CodeError) String() string { return strconv.Itoa(c.Int()) }

// Message returns the registered message for this code, or
// UnknownMessage if no block covers it.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	}

	if f, ok := idMsgFct[findBlock(c)]; ok {
		if m := f(c); m != "" {
			return m
		}
	}

	return UnknownMessage
}

// Error builds an Error from this code, its registered message, and
// optional parent causes.
func (c CodeError) Error(parent ...error) Error {
	return New(c.Uint16(), c.Message(), parent...)
}

// RegisterIdFctMessage registers the message function covering every
// code from minCode up to (but not including) the next registered
// block's minCode. Called once from each package's error.go init().
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	if idMsgFct == nil {
		idMsgFct = make(map[CodeError]Message)
	}
	idMsgFct[minCode] = fct
}

// ExistInMapMessage reports whether the message function registered
// for code's block returns a non-empty message for code.
func ExistInMapMessage(code CodeError) bool {
	if f, ok := idMsgFct[findBlock(code)]; ok {
		return f(code) != NullMessage
	}
	return false
}

func blockKeys() []int {
	keys := make([]int, 0, len(idMsgFct))
	for k := range idMsgFct {
		keys = append(keys, k.Int())
	}
	sort.Ints(keys)
	return keys
}

// findBlock returns the largest registered minCode that is <= code.
func findBlock(code CodeError) CodeError {
	var res CodeError
	for _, k := range blockKeys() {
		ck := CodeError(k)
		if ck <= code && ck > res {
			res = ck
		}
	}
	return res
}

func unicCodeSlice(slice []CodeError) []CodeError {
	seen := make(map[CodeError]bool, len(slice))
	res := make([]CodeError, 0, len(slice))
	for _, c := range slice {
		if !seen[c] {
			seen[c] = true
			res = append(res, c)
		}
	}
	return res
}
