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
	"errors"
	"fmt"
	"runtime"
	"strings"
)

type ers struct {
	c uint16
	e string
	p []Error
	t runtime.Frame
}

func newErs(code uint16, message string) *ers {
	return &ers{c: code, e: message, t: caller(2)}
}

func newErsf(code uint16, format string, args ...interface{}) *ers {
	return &ers{c: code, e: fmt.Sprintf(format, args...), t: caller(2)}
}

func (e *ers) is(other *ers) bool {
	if e == nil || other == nil {
		return false
	}

	if ss, sd := e.GetTrace(), other.GetTrace(); ss != "" || sd != "" {
		return ss != "" && sd != "" && strings.EqualFold(ss, sd)
	}

	if ss, sd := e.Error(), other.Error(); ss != "" || sd != "" {
		return ss != "" && sd != "" && strings.EqualFold(ss, sd)
	}

	cs, cd := e.Code(), other.Code()
	if cs > 0 || cd > 0 {
		return cs > 0 && cd > 0 && cs == cd
	}

	return false
}

func (e *ers) Is(err error) bool {
	if err == nil {
		return false
	}
	if other, ok := err.(*ers); ok {
		return e.is(other)
	}
	return e.IsError(err)
}

func (e *ers) Add(parent ...error) {
	for _, v := range parent {
		if v == nil {
			continue
		}

		if other, ok := v.(*ers); ok {
			if e.IsError(other) {
				for _, p := range other.p {
					e.Add(p)
				}
			} else {
				e.p = append(e.p, other)
			}
			continue
		}

		if other, ok := v.(Error); ok {
			e.p = append(e.p, other)
			continue
		}

		e.p = append(e.p, &ers{e: v.Error()})
	}
}

func (e *ers) SetParent(parent ...error) {
	e.p = make([]Error, 0, len(parent))
	e.Add(parent...)
}

func (e *ers) IsCode(code CodeError) bool { return e.c == code.Uint16() }

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}
	for _, p := range e.p {
		if p.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) GetCode() CodeError { return CodeError(e.c) }

func (e *ers) GetParentCode() []CodeError {
	res := []CodeError{e.GetCode()}
	for _, p := range e.p {
		res = append(res, p.GetParentCode()...)
	}
	return unicCodeSlice(res)
}

func (e *ers) IsError(err error) bool { return strings.EqualFold(e.e, err.Error()) }

func (e *ers) HasError(err error) bool {
	if e.IsError(err) {
		return true
	}
	for _, p := range e.p {
		if p.IsError(err) || p.HasError(err) {
			return true
		}
	}
	return false
}

func (e *ers) HasParent() bool { return len(e.p) > 0 }

func (e *ers) GetParent(withMainError bool) []error {
	res := make([]error, 0, len(e.p)+1)
	if withMainError {
		res = append(res, &ers{c: e.c, e: e.e, t: e.t})
	}
	for _, p := range e.p {
		res = append(res, p.GetParent(true)...)
	}
	return res
}

func (e *ers) Map(fct FuncMap) bool {
	if !fct(e) {
		return false
	}
	for _, p := range e.p {
		if !p.Map(fct) {
			return false
		}
	}
	return true
}

func (e *ers) ContainsString(s string) bool {
	if strings.Contains(e.e, s) {
		return true
	}
	for _, p := range e.p {
		if p.ContainsString(s) {
			return true
		}
	}
	return false
}

func (e *ers) Code() uint16 { return e.c }

func (e *ers) CodeSlice() []uint16 {
	r := []uint16{e.c}
	for _, p := range e.p {
		r = append(r, p.Code())
	}
	return r
}

func (e *ers) Error() string { return modeError.error(e) }

func (e *ers) StringError() string { return e.e }

func (e *ers) StringErrorSlice() []string {
	r := []string{e.e}
	for _, p := range e.p {
		r = append(r, p.Error())
	}
	return r
}

func (e *ers) GetError() error {
	//nolint:goerr113
	return errors.New(e.e)
}

func (e *ers) GetErrorSlice() []error {
	r := []error{e.GetError()}
	for _, p := range e.p {
		r = append(r, p.GetErrorSlice()...)
	}
	return r
}

func (e *ers) Unwrap() []error {
	if len(e.p) == 0 {
		return nil
	}
	r := make([]error, 0, len(e.p))
	for _, p := range e.p {
		r = append(r, p)
	}
	return r
}

func (e *ers) CodeError(pattern string) string {
	if pattern == "" {
		pattern = defaultPattern
	}
	return fmt.Sprintf(pattern, e.Code(), e.StringError())
}

func (e *ers) CodeErrorSlice(pattern string) []string {
	r := []string{e.CodeError(pattern)}
	for _, p := range e.p {
		r = append(r, p.CodeError(pattern))
	}
	return r
}

func (e *ers) CodeErrorTrace(pattern string) string {
	if pattern == "" {
		pattern = defaultPatternTrace
	}
	return fmt.Sprintf(pattern, e.Code(), e.StringError(), e.GetTrace())
}

func (e *ers) CodeErrorTraceSlice(pattern string) []string {
	r := []string{e.CodeErrorTrace(pattern)}
	for _, p := range e.p {
		r = append(r, p.CodeErrorTrace(pattern))
	}
	return r
}
