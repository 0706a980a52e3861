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

// Package addrlist holds an ordered set of resolved peer addresses
// with a rotating cursor, as spec.md §4.2 item 2 and §4.7. Order()
// returns the addresses an outbound connect attempt should try, in
// the order failover.Policy dictates.
package addrlist

import (
	"context"
	"net"
	"strconv"

	"github.com/matthewcooper/stunnel/addrlist/failover"
	"github.com/matthewcooper/stunnel/atomicval"
	liberr "github.com/matthewcooper/stunnel/errors"
)

// List is a resolved, ordered address set plus its failover policy.
// The zero value is not usable; build one with Resolve or New.
type List struct {
	addrs  []*net.TCPAddr
	policy failover.Policy
	cursor *atomicval.Value[uint32]
}

// New wraps an already-resolved address slice. Used by tests and by
// callers that resolved addresses themselves (e.g. source_addr, which
// spec.md §6 says is "resolved" up front, unlike remote_address).
func New(addrs []*net.TCPAddr, policy failover.Policy) *List {
	return &List{addrs: addrs, policy: policy, cursor: atomicval.New[uint32]()}
}

// Resolve looks up hostport (a "host:port" string) and builds a List.
// A race on the rotating cursor across concurrent Resolve callers does
// not occur since each List owns its own cursor.
func Resolve(ctx context.Context, hostport string, policy failover.Policy) (*List, liberr.Error) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, ErrorInvalidAddress.Error(err)
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, ErrorInvalidAddress.Error(err)
	}

	ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, ErrorResolve.Error(err)
	}
	if len(ips) == 0 {
		return nil, ErrorResolve.Error()
	}

	addrs := make([]*net.TCPAddr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, &net.TCPAddr{IP: ip.IP, Port: portNum, Zone: ip.Zone})
	}

	return New(addrs, policy), nil
}

func (l *List) Len() int { return len(l.addrs) }

func (l *List) Policy() failover.Policy { return l.policy }

// At returns the address at position i, wrapping modulo Len.
func (l *List) At(i int) *net.TCPAddr {
	n := len(l.addrs)
	if n == 0 {
		return nil
	}
	return l.addrs[((i%n)+n)%n]
}

// Order returns the sequence of addresses connect_remote should try,
// per spec.md §4.7: PRIO always starts at 0; RR starts at the atomic
// cursor (advanced modulo N first) and wraps around the whole list
// from there. A torn read/write on the cursor under concurrent callers
// is tolerated — it is a hint, not a correctness requirement.
func (l *List) Order() []*net.TCPAddr {
	n := len(l.addrs)
	if n == 0 {
		return nil
	}

	start := 0
	if l.policy == failover.RR {
		next := (l.cursor.Load() + 1) % uint32(n)
		l.cursor.Store(next)
		start = int(next)
	}

	out := make([]*net.TCPAddr, n)
	for i := 0; i < n; i++ {
		out[i] = l.At(start + i)
	}
	return out
}
