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

package errors_test

import (
	"testing"

	. "github.com/onsi/gomega"

	liberr "github.com/matthewcooper/stunnel/errors"
)

const testCode liberr.CodeError = 50001

func init() {
	liberr.RegisterIdFctMessage(testCode, func(code liberr.CodeError) string {
		if code == testCode {
			return "test failure"
		}
		return ""
	})
}

func TestCodeError(t *testing.T) {
	g := NewWithT(t)

	e := testCode.Error()
	g.Expect(e.Code()).To(Equal(testCode.Uint16()))
	g.Expect(e.StringError()).To(Equal("test failure"))
}

func TestAddFlattensEquivalentChains(t *testing.T) {
	g := NewWithT(t)

	root := testCode.Error()
	child := testCode.Error(liberr.New(1, "leaf"))
	root.Add(child)

	// child IS root (same code+message), so its own parent ("leaf")
	// is flattened directly onto root instead of nesting child in.
	g.Expect(root.GetParentCode()).To(ContainElement(liberr.CodeError(1)))
}

func TestIfErrorNilWhenNoCause(t *testing.T) {
	g := NewWithT(t)

	g.Expect(liberr.IfError(1, "x")).To(BeNil())
	g.Expect(liberr.IfError(1, "x", liberr.New(2, "y"))).ToNot(BeNil())
}

func TestHasCodeWalksParents(t *testing.T) {
	g := NewWithT(t)

	inner := liberr.New(42, "inner")
	outer := liberr.New(43, "outer", inner)

	g.Expect(outer.HasCode(42)).To(BeTrue())
	g.Expect(outer.HasCode(99)).To(BeFalse())
}
