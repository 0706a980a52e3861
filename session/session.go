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

// Package session owns one client connection end to end, as spec.md
// §3/§4.4/§7 describe: setup (socket options, IDENT, protocol hook,
// TLS handshake) → transfer → teardown, with linger-reset applied to
// sockets that were mid-transfer when a session unwinds. The accept
// loop, threading/process model, and config parsing all live outside
// this package (spec.md §1's Out of scope); Session is handed a
// single already-accepted net.Conn per connection.
package session

import (
	"context"
	"net"

	"github.com/google/uuid"

	"github.com/matthewcooper/stunnel/config"
	liberr "github.com/matthewcooper/stunnel/errors"
	"github.com/matthewcooper/stunnel/fdslot"
	"github.com/matthewcooper/stunnel/logger"
	"github.com/matthewcooper/stunnel/poller"
	"github.com/matthewcooper/stunnel/protocolhook"
	"github.com/matthewcooper/stunnel/spawn"
	"github.com/matthewcooper/stunnel/tlsengine"
	"github.com/matthewcooper/stunnel/transfer"
)

// Session is one per-connection run of the engine. The zero value is
// not usable; build one with New.
type Session struct {
	id       uuid.UUID
	opt      *config.Options
	registry *protocolhook.Registry

	// accepted is the side the enclosing accept/dispatch layer handed
	// in: the local plaintext connection in client mode, the raw
	// (pre-handshake) TLS-side connection in server mode.
	accepted net.Conn
	peerAddr net.Addr

	localConn net.Conn
	child     *spawn.Child

	localRfd, localWfd fdslot.FdSlot
	remoteConn          net.Conn
	remoteFd            fdslot.FdSlot
	tls                 *tlsengine.Engine

	log logger.Logger
}

// New builds a Session around an already-accepted connection. registry
// resolves opt.Protocol to a Hook; pass protocolhook.Default() for the
// built-in set, or nil if opt.Protocol is always empty.
func New(opt *config.Options, accepted net.Conn, registry *protocolhook.Registry) *Session {
	id := uuid.New()
	log := opt.Logger
	if log != nil {
		log = log.WithFields(logger.Fields{"session_id": id.String(), "service": opt.ServiceName})
	}

	return &Session{
		id:       id,
		opt:      opt,
		registry: registry,
		accepted: accepted,
		log:      log,
	}
}

// Run drives setup → transfer → teardown (spec.md §3 Lifecycle). A
// non-nil error means the session never reached, or did not cleanly
// finish, the transfer phase; Outcome.Reset (valid even alongside a
// non-nil error once transfer has started) tells the caller whether
// linger-reset was already applied during teardown.
func (s *Session) Run(ctx context.Context) (transfer.Outcome, liberr.Error) {
	if err := s.setup(ctx); err != nil {
		if s.log != nil {
			s.log.Error("session: setup failed", err)
		}
		s.teardown(transfer.Outcome{Reset: true})
		return transfer.Outcome{}, err
	}

	p, perr := poller.New()
	if perr != nil {
		s.teardown(transfer.Outcome{Reset: true})
		return transfer.Outcome{}, ErrorPoller.Error(perr)
	}

	out, terr := transfer.Run(ctx, transfer.Options{
		SockRead:      s.localRfd,
		SockWrite:     s.localWfd,
		Remote:        s.remoteFd,
		TLS:           s.tls,
		BufferSize:    s.opt.BufferSize,
		XForwardedFor: s.opt.XForwardedFor && s.opt.Mode == config.ModeServer,
		PeerIP:        numericHost(s.peerAddr),
		TimeoutIdle:   s.opt.Timeouts.Idle,
		TimeoutClose:  s.opt.Timeouts.Close,
		Poller:        p,
		Logger:        s.log,
	})

	s.teardown(out)
	return out, terr
}

func numericHost(a net.Addr) string {
	if a == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(a.String())
	if err != nil {
		return a.String()
	}
	return host
}
