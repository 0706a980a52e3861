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

// Package logger wraps sirupsen/logrus with the leveled, field-carrying
// API the rest of this module logs through. Session and Transfer never
// reach for a package-global logger: every component that logs takes a
// Logger on construction (usually via config.Options), so the
// accept/dispatch layer this core plugs into decides the sink.
package logger

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	loglvl "github.com/matthewcooper/stunnel/logger/level"
)

// Logger is the leveled logging contract used throughout this module.
// A nil *logger is valid and every method on it is a silent no-op, so
// components can embed a Logger field that defaults to nothing without
// a separate "enabled" check at every call site.
type Logger interface {
	Debug(message string, data interface{}, args ...interface{})
	Info(message string, data interface{}, args ...interface{})
	Warning(message string, data interface{}, args ...interface{})
	Error(message string, data interface{}, args ...interface{})
	Fatal(message string, data interface{}, args ...interface{})

	// WithFields returns a derived Logger that merges fields into every
	// entry it emits, without mutating the receiver.
	WithFields(fields Fields) Logger

	SetLevel(lvl loglvl.Level)
}

type logger struct {
	log    *logrus.Logger
	fields Fields
}

// New returns a Logger writing JSON-formatted entries to stderr at
// InfoLevel, the same default nabbar-golib/logger.New ships.
func New() Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	l.SetLevel(loglvl.InfoLevel.Logrus())

	return &logger{log: l, fields: NewFields()}
}

func (o *logger) SetLevel(lvl loglvl.Level) {
	if o == nil {
		return
	}
	o.log.SetLevel(lvl.Logrus())
}

func (o *logger) WithFields(fields Fields) Logger {
	if o == nil {
		return nil
	}
	return &logger{log: o.log, fields: o.fields.Merge(fields)}
}

func (o *logger) entry(lvl loglvl.Level, message string, err interface{}, args []interface{}) *logrus.Entry {
	fields := o.fields
	if e, ok := err.(error); ok && e != nil {
		fields = fields.Add(FieldError, e.Error())
	} else if err != nil {
		fields = fields.Add(FieldData, err)
	}

	return o.log.WithFields(fields.Logrus()).WithField(FieldLevel, lvl.String())
}

const (
	FieldError = "error"
	FieldData  = "data"
)

func (o *logger) Debug(message string, data interface{}, args ...interface{}) {
	if o == nil {
		return
	}
	o.entry(loglvl.DebugLevel, message, data, args).Debug(fmt.Sprintf(message, args...))
}

func (o *logger) Info(message string, data interface{}, args ...interface{}) {
	if o == nil {
		return
	}
	o.entry(loglvl.InfoLevel, message, data, args).Info(fmt.Sprintf(message, args...))
}

func (o *logger) Warning(message string, data interface{}, args ...interface{}) {
	if o == nil {
		return
	}
	o.entry(loglvl.WarnLevel, message, data, args).Warning(fmt.Sprintf(message, args...))
}

func (o *logger) Error(message string, data interface{}, args ...interface{}) {
	if o == nil {
		return
	}
	o.entry(loglvl.ErrorLevel, message, data, args).Error(fmt.Sprintf(message, args...))
}

// Fatal logs at fatal level and calls os.Exit(1) through logrus. Reserve
// it for startup failures outside a session's lifetime — Session itself
// never calls Fatal, since one connection's fatal failure must not kill
// the process hosting other connections.
func (o *logger) Fatal(message string, data interface{}, args ...interface{}) {
	if o == nil {
		return
	}
	o.entry(loglvl.FatalLevel, message, data, args).Fatal(fmt.Sprintf(message, args...))
}
