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

// Package errors provides the coded-error framework used across every
// package of this module: a per-package numeric code namespace, causal
// chains (a failure can carry the lower-level failure that caused it),
// and a single place to switch how errors render (bare message, coded,
// coded with call-site trace).
//
// The core state machine in package transfer never uses panic/recover
// to unwind a failed connection; it returns an Error (nil on success)
// from every fallible step, and Session.Run is the one frame that
// inspects it and dispatches to teardown.
package errors

import "errors"

// Error is the interface every coded error in this module implements.
// It composes the standard error interface with code inspection, a
// causal-chain (Add/GetParent), and rendering helpers.
type Error interface {
	error

	// Is reports whether err is equivalent to this error: by trace if
	// both carry one, else by message, else by code.
	Is(err error) bool

	// Add appends parent causes to this error's chain. A nil entry is
	// skipped; an *ers parent with the same message as this error
	// (compared case-insensitively, as IsError does) has its own parents
	// flattened in instead of nesting, to keep chains shallow.
	Add(parent ...error)

	// SetParent replaces the causal chain wholesale.
	SetParent(parent ...error)

	// Unwrap exposes the causal chain to errors.Is/errors.As.
	Unwrap() []error

	IsCode(code CodeError) bool
	HasCode(code CodeError) bool
	GetCode() CodeError
	GetParentCode() []CodeError

	IsError(err error) bool
	HasError(err error) bool
	HasParent() bool
	GetParent(withMainError bool) []error
	GetError() error
	GetErrorSlice() []error

	Code() uint16
	CodeSlice() []uint16

	StringError() string
	StringErrorSlice() []string

	GetTrace() string
	GetTraceSlice() []string

	CodeError(pattern string) string
	CodeErrorSlice(pattern string) []string
	CodeErrorTrace(pattern string) string
	CodeErrorTraceSlice(pattern string) []string

	Map(fct FuncMap) bool
	ContainsString(s string) bool
}

// FuncMap is applied to an error and every parent in its chain by Map;
// returning false stops the walk early.
type FuncMap func(e Error) bool

const (
	defaultPattern      = "[%d] %s"
	defaultPatternTrace = "[%d] %s (%s)"
)

// New builds an Error from a numeric code, a message, and optional
// parent causes.
func New(code uint16, message string, parent ...error) Error {
	e := newErs(code, message)
	e.Add(parent...)
	return e
}

// Newf builds an Error with a printf-formatted message.
func Newf(code uint16, format string, args ...interface{}) Error {
	return newErsf(code, format, args...)
}

// IfError returns a New Error only if at least one of the given causes
// is non-nil and carries a non-empty message; otherwise it returns nil.
// This lets call sites write `return errors.IfError(code, msg, err)`
// without an extra `if err != nil` guard.
func IfError(code uint16, message string, cause ...error) Error {
	filtered := make([]error, 0, len(cause))
	for _, c := range cause {
		if c != nil && c.Error() != "" {
			filtered = append(filtered, c)
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	return New(code, message, filtered...)
}

// Is reports whether err is a coded Error (of any package) equivalent
// to this module's errors.Error contract. It is a convenience wrapper
// over the standard errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
