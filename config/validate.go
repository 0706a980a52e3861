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

package config

import (
	"fmt"

	libval "github.com/go-playground/validator/v10"

	liberr "github.com/matthewcooper/stunnel/errors"
)

// Validate checks struct-level constraints (required fields, min
// durations) and the cross-field rule that ExecName and RemoteAddress
// are mutually exclusive, then resolves RemoteAddress unless
// DelayedLookup defers it. Mirrors ftpclient.Config.Validate's shape:
// a validator.v10 pass folded into a single errors.Error chain.
func (o *Options) Validate() liberr.Error {
	e := ErrorValidation.Error()

	if err := libval.New().Struct(o); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		} else if vErrs, ok := err.(libval.ValidationErrors); ok {
			for _, er := range vErrs {
				//nolint #goerr113
				e.Add(fmt.Errorf("config field '%s' fails constraint '%s'", er.Namespace(), er.ActualTag()))
			}
		} else {
			e.Add(err)
		}
	}

	if o.IsExec() && o.RemoteAddress != "" {
		e.Add(ErrorExecAndRemoteBothSet.Error())
	}

	if !o.DelayedLookup && !o.IsExec() {
		if err := o.ResolveRemote(o.Context()); err != nil {
			e.Add(err)
		}
	}

	if !e.HasParent() {
		return nil
	}
	return e
}
