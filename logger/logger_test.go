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

package logger_test

import (
	"testing"

	"github.com/onsi/gomega"

	"github.com/matthewcooper/stunnel/logger"
	loglvl "github.com/matthewcooper/stunnel/logger/level"
)

func TestNewLogsAtEveryLevelWithoutPanic(t *testing.T) {
	g := gomega.NewWithT(t)

	l := logger.New()
	g.Expect(l).NotTo(gomega.BeNil())

	// must not panic at any level, with or without an error payload.
	l.Debug("debug %s", nil, "msg")
	l.Info("info", nil)
	l.Warning("warn", errExample{})
	l.Error("err", errExample{})
}

func TestWithFieldsReturnsDerivedLoggers(t *testing.T) {
	g := gomega.NewWithT(t)

	base := logger.New().WithFields(logger.Fields{"session": "abc"})
	derived := base.WithFields(logger.Fields{"bytes": 10})

	g.Expect(base).NotTo(gomega.BeNil())
	g.Expect(derived).NotTo(gomega.BeNil())
}

func TestFieldsAddDoesNotMutateOriginal(t *testing.T) {
	g := gomega.NewWithT(t)

	base := logger.NewFields().Add("a", 1)
	derived := base.Add("b", 2)

	g.Expect(base).To(gomega.HaveLen(1))
	g.Expect(derived).To(gomega.HaveLen(2))
}

func TestLevelParseIsLenient(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(loglvl.Parse("WARN")).To(gomega.Equal(loglvl.WarnLevel))
	g.Expect(loglvl.Parse("err")).To(gomega.Equal(loglvl.ErrorLevel))
	g.Expect(loglvl.Parse("bogus")).To(gomega.Equal(loglvl.InfoLevel))
}

type errExample struct{}

func (errExample) Error() string { return "example" }
