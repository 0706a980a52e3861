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

// Package protocolhook runs an application-protocol negotiation step
// against the plaintext side of a connection before the TLS handshake
// begins, the ordering rule spec.md §4.4 step 5 requires.
package protocolhook

import (
	"context"
	"net"
	"sync"
)

// Mode tells a Hook which side of the tunnel it is running on.
type Mode int

const (
	ModeClient Mode = iota
	ModeServer
)

// Hook negotiates a plaintext protocol on conn before TLS starts —
// e.g. reading an SMTP banner and issuing STARTTLS. A Hook that
// returns a non-nil error aborts the session before any handshake
// happens.
type Hook func(ctx context.Context, conn net.Conn, mode Mode) error

// Registry maps a protocol name (as found in config.Options.Protocol)
// to the Hook that negotiates it.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]Hook
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[string]Hook)}
}

// Register associates name with h, overwriting any previous Hook under
// that name.
func (r *Registry) Register(name string, h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = h
}

// Lookup returns the Hook registered under name, if any.
func (r *Registry) Lookup(name string) (Hook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[name]
	return h, ok
}

// Default returns a Registry pre-populated with the protocols this
// module ships support for.
func Default() *Registry {
	r := NewRegistry()
	r.Register("smtp", SMTP)
	return r
}
