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

// Package config defines the per-service options a Session is built
// from — the Go rendition of stunnel's service_options block. Parsing
// it from a file, flag set, or environment is out of scope here: a
// caller builds an Options, calls Validate, and hands it to session.New
// fully populated.
package config

import (
	"context"
	"time"

	"github.com/matthewcooper/stunnel/addrlist"
	"github.com/matthewcooper/stunnel/addrlist/failover"
	"github.com/matthewcooper/stunnel/logger"
	"github.com/matthewcooper/stunnel/tlsengine"
)

// Mode selects which side of the TLS boundary this service sits on.
type Mode uint8

const (
	ModeClient Mode = iota
	ModeServer
)

func (m Mode) String() string {
	if m == ModeServer {
		return "server"
	}
	return "client"
}

// Timeouts mirrors spec.md §6's timeouts{busy, idle, close} trio, all
// in seconds on the wire but held here as time.Duration.
type Timeouts struct {
	Busy  time.Duration `mapstructure:"busy" json:"busy" yaml:"busy" toml:"busy" validate:"min=0"`
	Idle  time.Duration `mapstructure:"idle" json:"idle" yaml:"idle" toml:"idle" validate:"min=0"`
	Close time.Duration `mapstructure:"close" json:"close" yaml:"close" toml:"close" validate:"min=0"`
}

// DefaultTimeouts matches stunnel.conf's shipped defaults (seconds).
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Busy:  300 * time.Second,
		Idle:  43200 * time.Second,
		Close: 60 * time.Second,
	}
}

// Options is the Go rendition of spec.md §6's service_options.
type Options struct {
	// ServiceName identifies this service in logs and IDENT lookups.
	ServiceName string `mapstructure:"servname" json:"servname" yaml:"servname" toml:"servname" validate:"required"`

	Mode Mode `mapstructure:"mode" json:"mode" yaml:"mode" toml:"mode"`

	// Transparent enables transparent proxying: the local connection
	// is made to appear to originate from the remote client's address.
	Transparent bool `mapstructure:"transparent" json:"transparent" yaml:"transparent" toml:"transparent"`

	// XForwardedFor enables HTTP X-Forwarded-For header injection into
	// the headers of the first request seen after the handshake, just
	// before the blank line that ends them (spec.md §4.9).
	XForwardedFor bool `mapstructure:"xforwardedfor" json:"xforwardedfor" yaml:"xforwardedfor" toml:"xforwardedfor"`

	// Retry is carried in the configuration only: no component of this
	// module reads it, and a failed connect fails the session outright.
	Retry bool `mapstructure:"retry" json:"retry" yaml:"retry" toml:"retry"`

	// PTY requests a pseudo-terminal for a spawned local program.
	// No library in this module's dependency set provides PTY
	// allocation; spawn.Spawn returns spawn.ErrPtyUnsupported when set.
	PTY bool `mapstructure:"pty" json:"pty" yaml:"pty" toml:"pty"`

	// DelayedLookup makes Validate skip DNS resolution of RemoteAddress;
	// the caller then resolves it with ResolveRemote before a session
	// dials, since the session does not resolve it itself.
	DelayedLookup bool `mapstructure:"delayed_lookup" json:"delayed_lookup" yaml:"delayed_lookup" toml:"delayed_lookup"`

	Timeouts Timeouts `mapstructure:"timeouts" json:"timeouts" yaml:"timeouts" toml:"timeouts"`

	// KeepAlive sets SO_KEEPALIVE's probe interval on the accepted and
	// dialed/backend TCP sockets (spec.md §4.4 step 1), applied before
	// ACL/IDENT, together with TCP_NODELAY. Zero enables SO_KEEPALIVE
	// with the OS default probe interval; a negative value leaves both
	// socket options alone.
	KeepAlive time.Duration `mapstructure:"keepalive" json:"keepalive" yaml:"keepalive" toml:"keepalive"`

	// Failover selects the policy AddrList uses when RemoteAddress
	// resolves to more than one address.
	Failover failover.Policy `mapstructure:"failover" json:"failover" yaml:"failover" toml:"failover"`

	// RemoteAddress is the unresolved "host:port" string; empty means
	// DEFAULT_LOOPBACK per spec.md §6. RemoteAddr, once resolved, is
	// attached by ResolveRemote (or eagerly at Validate time, unless
	// DelayedLookup is set).
	RemoteAddress string          `mapstructure:"remote_address" json:"remote_address" yaml:"remote_address" toml:"remote_address"`
	RemoteAddr    *addrlist.List  `mapstructure:"-" json:"-" yaml:"-" toml:"-"`

	// SourceAddr is the resolved local bind address list used for
	// outbound dials (spec.md §4.2 item 2); nil means "let the kernel
	// pick".
	SourceAddr *addrlist.List `mapstructure:"-" json:"-" yaml:"-" toml:"-"`

	// Username, when non-empty, requires an IDENT (RFC 1413) response
	// matching it before the local connection proceeds.
	Username string `mapstructure:"username" json:"username" yaml:"username" toml:"username"`

	// ExecName, with ExecArgs, spawns a local program instead of
	// dialing RemoteAddress — spec.md §4.6.
	ExecName string   `mapstructure:"execname" json:"execname" yaml:"execname" toml:"execname"`
	ExecArgs []string `mapstructure:"execargs" json:"execargs" yaml:"execargs" toml:"execargs"`

	// TLS holds the shared engine configuration (certificates, cipher
	// policy, session cache slot) consumed by tlsengine.New.
	TLS tlsengine.Config `mapstructure:"tls" json:"tls" yaml:"tls" toml:"tls"`

	// LocalAddr is advertised to the IDENT server as this side's
	// address when querying who owns the peer connection.
	LocalAddr string `mapstructure:"local_addr" json:"local_addr" yaml:"local_addr" toml:"local_addr"`

	// Protocol names a protocolhook.Registry entry to run before the
	// TLS handshake (spec.md §4, item 6), e.g. "smtp". Empty means no
	// pre-TLS negotiation.
	Protocol string `mapstructure:"protocol" json:"protocol" yaml:"protocol" toml:"protocol"`

	// BufferSize is spec.md §3's BUFFSIZE, the per-direction relay
	// buffer capacity. Zero means transfer.BuffSize.
	BufferSize int `mapstructure:"buffer_size" json:"buffer_size" yaml:"buffer_size" toml:"buffer_size" validate:"min=0"`

	Logger logger.Logger `mapstructure:"-" json:"-" yaml:"-" toml:"-"`

	fctx func() context.Context
}

// DefaultLoopback is spec.md §6's DEFAULT_LOOPBACK sentinel: used when
// RemoteAddress is empty, matching stunnel's historical default of
// binding accept sockets to the loopback interface only.
const DefaultLoopback = "127.0.0.1:0"

// RegisterContext mirrors ftpclient.Config.RegisterContext: a deferred
// hook so callers that build Options before a context.Context exists
// (e.g. at process-config-parse time) can wire it in later.
func (o *Options) RegisterContext(fct func() context.Context) {
	o.fctx = fct
}

// RegisterLogger mirrors RegisterContext for the logger dependency.
func (o *Options) RegisterLogger(l logger.Logger) {
	o.Logger = l
}

func (o *Options) Context() context.Context {
	if o.fctx != nil {
		if c := o.fctx(); c != nil {
			return c
		}
	}
	return context.Background()
}

// ResolveRemote resolves RemoteAddress (or DefaultLoopback) into
// o.RemoteAddr. Called by Validate unless DelayedLookup is set, in
// which case the caller must invoke it explicitly before the first
// connect.
func (o *Options) ResolveRemote(ctx context.Context) error {
	addr := o.RemoteAddress
	if addr == "" {
		addr = DefaultLoopback
	}

	list, err := addrlist.Resolve(ctx, addr, o.Failover)
	if err != nil {
		return ErrorResolveRemote.Error(err)
	}
	o.RemoteAddr = list
	return nil
}

// IsExec reports whether this service spawns a local program instead
// of dialing RemoteAddress.
func (o *Options) IsExec() bool { return o.ExecName != "" }
