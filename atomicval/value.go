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

// Package atomicval provides a small generic lock-free value box used
// wherever this module needs to share mutable state across goroutines
// without a mutex: the round-robin address cursor in addrlist, and the
// per-service TLS session-resumption slot in tlsengine.
package atomicval

import "sync/atomic"

// Value is a generic, lock-free box around a single value of type T.
type Value[T any] struct {
	av atomic.Value
}

type box[T any] struct {
	v T
}

// New returns an empty Value; Load returns the zero value of T until
// the first Store.
func New[T any]() *Value[T] {
	return &Value[T]{}
}

// Load returns the current value, or the zero value of T if nothing
// has been stored yet.
func (v *Value[T]) Load() T {
	if b, ok := v.av.Load().(box[T]); ok {
		return b.v
	}
	var zero T
	return zero
}

// Store atomically replaces the current value.
func (v *Value[T]) Store(val T) {
	v.av.Store(box[T]{v: val})
}

// Swap atomically stores a new value and returns the one it replaced.
func (v *Value[T]) Swap(val T) (old T) {
	old = v.Load()
	v.av.Store(box[T]{v: val})
	return old
}
