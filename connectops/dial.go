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

// Package connectops implements spec.md §4.7's connect_remote and
// local_bind: non-blocking outbound dials over a candidate address
// list, with best-effort transparent-proxy socket options on Linux.
package connectops

import (
	"context"
	"net"
	"time"

	"github.com/matthewcooper/stunnel/addrlist"
	liberr "github.com/matthewcooper/stunnel/errors"
)

// DialOptions configures one connect_remote attempt.
type DialOptions struct {
	Timeout     time.Duration
	SourceAddr  *addrlist.List
	Transparent bool
}

// DialTimeout iterates addrs.Order(), attempting a non-blocking
// connect with opt.Timeout to each in turn. It returns the first
// successful connection and logs (via the returned address) which one
// bound; if every candidate fails, it unwinds with ErrorExhausted
// wrapping every per-candidate error.
func DialTimeout(ctx context.Context, addrs *addrlist.List, opt DialOptions) (net.Conn, liberr.Error) {
	order := addrs.Order()
	if len(order) == 0 {
		return nil, ErrorNoCandidates.Error()
	}

	agg := ErrorExhausted.Error()
	dialer := &net.Dialer{Timeout: opt.Timeout}

	if opt.SourceAddr != nil && opt.SourceAddr.Len() > 0 {
		local := opt.SourceAddr.At(0)
		bound, err := boundLocalAddr(local, opt.Transparent)
		if err != nil {
			return nil, ErrorBind.Error(err)
		}
		dialer.LocalAddr = bound
	}

	if opt.Transparent {
		dialer.Control = transparentControl
	}

	for _, candidate := range order {
		conn, err := dialer.DialContext(ctx, "tcp", candidate.String())
		if err != nil {
			agg.Add(err)
			continue
		}
		return conn, nil
	}

	return nil, agg
}

// boundLocalAddr runs spec.md §4.7's local_bind (configured port
// first, ephemeral retry on EADDRINUSE) against local's host/port,
// then releases the listener and hands back the address it reserved
// so net.Dialer.LocalAddr pins the outbound connect to that exact
// source port instead of silently falling back to an OS-chosen one.
func boundLocalAddr(local *net.TCPAddr, transparent bool) (*net.TCPAddr, error) {
	ln, err := LocalBind(local.IP.String(), local.Port, transparent)
	if err != nil {
		return nil, err
	}
	bound := ln.Addr().(*net.TCPAddr)
	ln.Close()
	return &net.TCPAddr{IP: bound.IP, Port: bound.Port, Zone: local.Zone}, nil
}
