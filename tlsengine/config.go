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

package tlsengine

import (
	"crypto/tls"

	"github.com/matthewcooper/stunnel/atomicval"
)

// Config is the "ctx" of spec.md §6: a configured TLS context handed
// to the core fully built. Certificate loading, root CA bundling, and
// cipher-suite policy are out of scope (spec.md's Non-goals) — Config
// wraps a *tls.Config the enclosing layer already assembled, plus the
// single-slot session cache spec.md §3/§4.5 describes.
type Config struct {
	// TLSConfig is the caller-assembled certificate/cipher/curve
	// policy. tlsengine never mutates it beyond ClientSessionCache
	// wiring for the session slot below.
	TLSConfig *tls.Config `mapstructure:"-" json:"-" yaml:"-" toml:"-"`

	// session is the per-service single-slot resumption cache spec.md
	// §4.5 describes ("store the session handle into the
	// service-wide slot under a mutex, freeing the prior handle").
	// atomicval.Value gives lock-free load/store semantics; only the
	// last stored ticket is ever retained, matching "one session
	// handle per service" (spec.md's Non-goals: "does not cache
	// sessions").
	session *atomicval.Value[*tls.ClientSessionState]
}

// NewConfig wraps an already-built *tls.Config, initializing the
// service-wide session slot.
func NewConfig(base *tls.Config) *Config {
	return &Config{TLSConfig: base, session: atomicval.New[*tls.ClientSessionState]()}
}

func (c *Config) ensureSlot() {
	if c.session == nil {
		c.session = atomicval.New[*tls.ClientSessionState]()
	}
}

// SessionGet returns the last stored resumption ticket, or nil if none
// has been negotiated yet.
func (c *Config) SessionGet() *tls.ClientSessionState {
	c.ensureSlot()
	return c.session.Load()
}

// SessionSet overwrites the service-wide slot, freeing the prior
// handle implicitly (Go's GC reclaims it once unreferenced).
func (c *Config) SessionSet(s *tls.ClientSessionState) {
	c.ensureSlot()
	c.session.Store(s)
}

// clientConfig returns a shallow copy of TLSConfig with a
// single-entry ClientSessionCache backed by the service slot, so a
// successful client handshake's negotiated ticket flows back into
// SessionSet via clientSessionCache.Put.
func (c *Config) clientConfig(serverName string) *tls.Config {
	base := c.TLSConfig
	if base == nil {
		base = &tls.Config{}
	}
	cfg := base.Clone()
	if serverName != "" {
		cfg.ServerName = serverName
	}
	cfg.ClientSessionCache = &clientSessionCache{cfg: c}
	return cfg
}

// clientSessionCache adapts the service-wide single slot to the
// tls.ClientSessionCache interface crypto/tls expects, ignoring the
// session cache key since there is exactly one remote per service.
type clientSessionCache struct {
	cfg *Config
}

func (s *clientSessionCache) Get(string) (*tls.ClientSessionState, bool) {
	cs := s.cfg.SessionGet()
	return cs, cs != nil
}

func (s *clientSessionCache) Put(_ string, cs *tls.ClientSessionState) {
	s.cfg.SessionSet(cs)
}
