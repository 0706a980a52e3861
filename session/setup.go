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

package session

import (
	"context"
	"net"
	"time"

	"github.com/matthewcooper/stunnel/config"
	"github.com/matthewcooper/stunnel/connectops"
	liberr "github.com/matthewcooper/stunnel/errors"
	"github.com/matthewcooper/stunnel/fdslot"
	"github.com/matthewcooper/stunnel/ident"
	"github.com/matthewcooper/stunnel/protocolhook"
	"github.com/matthewcooper/stunnel/spawn"
	"github.com/matthewcooper/stunnel/tlsengine"
)

// remoteFd always carries the TLS-side FdSlot, regardless of mode —
// spec.md §3's data model names it that way. In client mode accepted
// is the local (plaintext) side and remote is dialed out; in server
// mode accepted is remote (pre-handshake) and local is dialed or
// spawned. setup walks spec.md §4.4 steps 1-5 in that order.
func (s *Session) setup(ctx context.Context) liberr.Error {
	if err := s.identCheck(ctx); err != nil {
		return err
	}

	if s.opt.Mode == config.ModeClient {
		return s.setupClient(ctx)
	}
	return s.setupServer(ctx)
}

// identCheck runs spec.md §4.4 step 1: socket options are applied to
// the accepted side first, then ACL/IDENT (only when it's a real
// socket and a username is configured) — a piped or otherwise
// non-socket accepted conn skips both.
func (s *Session) identCheck(ctx context.Context) liberr.Error {
	s.peerAddr = s.accepted.RemoteAddr()

	tcp, ok := s.accepted.(*net.TCPConn)
	if !ok {
		return nil
	}
	applyTCPSocketOptions(tcp, s.opt.KeepAlive)

	if s.opt.Username == "" {
		return nil
	}

	if err := ident.VerifyConn(ctx, s.accepted, s.opt.Username, s.opt.Timeouts.Busy); err != nil {
		return ErrorIdentRejected.Error(err)
	}
	return nil
}

// applyTCPSocketOptions sets TCP_NODELAY and SO_KEEPALIVE (spec.md
// §4.4 step 1) on an accepted or dialed TCP socket, whichever side of
// the tunnel it is. A negative keepAlive leaves
// both alone, matching "let the OS/teacher defaults stand".
func applyTCPSocketOptions(conn *net.TCPConn, keepAlive time.Duration) {
	if keepAlive < 0 {
		return
	}
	_ = conn.SetNoDelay(true)
	_ = conn.SetKeepAlive(true)
	if keepAlive > 0 {
		_ = conn.SetKeepAlivePeriod(keepAlive)
	}
}

// setupClient: accepted is local, remote is dialed and then, per
// spec.md §4.4 step 5, run through the protocol hook (if any) before
// its own TLS handshake.
func (s *Session) setupClient(ctx context.Context) liberr.Error {
	s.localConn = s.accepted
	s.localRfd = fdslot.New(s.localConn)
	s.localWfd = s.localRfd

	raw, err := s.dialRemote(ctx)
	if err != nil {
		return err
	}
	s.remoteConn = raw
	s.remoteFd = fdslot.New(raw)

	if hook, ok := s.lookupHook(); ok {
		if herr := hook(ctx, raw, protocolhook.ModeClient); herr != nil {
			return ErrorProtocolHook.Error(herr)
		}
	} else if s.opt.Protocol != "" {
		return ErrorUnknownProtocol.Error()
	}

	engine := tlsengine.New(raw, &s.opt.TLS, serverName(s.opt.RemoteAddress))
	res := engine.Connect()
	if res.Code != tlsengine.OK {
		return ErrorHandshake.Error(res.Err)
	}
	s.tls = engine
	return nil
}

// setupServer: accepted is remote (pre-handshake). No hook configured
// means handshake first so an unauthenticated client is rejected
// before a backend connection is ever opened; a configured hook must
// run on the raw remote socket before the handshake starts, so the
// backend opens first instead (spec.md §4.4 step 5).
func (s *Session) setupServer(ctx context.Context) liberr.Error {
	s.remoteConn = s.accepted
	s.remoteFd = fdslot.New(s.remoteConn)

	hook, hasHook := s.lookupHook()
	if s.opt.Protocol != "" && !hasHook {
		return ErrorUnknownProtocol.Error()
	}

	if !hasHook {
		if err := s.handshakeServer(); err != nil {
			return err
		}
		return s.openLocal(ctx)
	}

	if err := s.openLocal(ctx); err != nil {
		return err
	}
	if herr := hook(ctx, s.remoteConn, protocolhook.ModeServer); herr != nil {
		return ErrorProtocolHook.Error(herr)
	}
	return s.handshakeServer()
}

func (s *Session) handshakeServer() liberr.Error {
	engine := tlsengine.NewServer(s.remoteConn, &s.opt.TLS)
	res := engine.Accept()
	if res.Code != tlsengine.OK {
		return ErrorHandshake.Error(res.Err)
	}
	s.tls = engine
	return nil
}

func (s *Session) lookupHook() (protocolhook.Hook, bool) {
	if s.opt.Protocol == "" || s.registry == nil {
		return nil, false
	}
	return s.registry.Lookup(s.opt.Protocol)
}

// dialRemote opens the TLS-side connection in client mode, or the
// backend connection in server mode (via openLocal): spec.md §4.7's
// connect_remote over the resolved RemoteAddr candidate list.
func (s *Session) dialRemote(ctx context.Context) (net.Conn, liberr.Error) {
	if s.opt.RemoteAddr == nil {
		return nil, ErrorOpenBackend.Error()
	}

	conn, err := connectops.DialTimeout(ctx, s.opt.RemoteAddr, connectops.DialOptions{
		Timeout:     s.opt.Timeouts.Busy,
		SourceAddr:  s.opt.SourceAddr,
		Transparent: s.opt.Transparent,
	})
	if err != nil {
		return nil, ErrorOpenBackend.Error(err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		applyTCPSocketOptions(tcp, s.opt.KeepAlive)
	}
	return conn, nil
}

// openLocal opens the plaintext-side connection in server mode, either
// by spawning opt.ExecName (spec.md §4.8) or dialing RemoteAddr as a
// backend (spec.md §4.7). When the handshake has already completed by
// this point, the spawned child's environment carries the peer
// certificate's subject/issuer per §4.8.
func (s *Session) openLocal(ctx context.Context) liberr.Error {
	if s.opt.IsExec() {
		env := spawn.NewEnv(s.peerAddr)
		if s.tls != nil {
			cs := s.tls.ConnectionState()
			if len(cs.PeerCertificates) > 0 {
				cert := cs.PeerCertificates[0]
				env = env.WithClientCert(cert.Subject.String(), cert.Issuer.String())
			}
		}

		child, err := spawn.Spawn(ctx, spawn.Options{
			Name: s.opt.ExecName,
			Args: s.opt.ExecArgs,
			Env:  env,
			PTY:  s.opt.PTY,
		})
		if err != nil {
			return ErrorOpenBackend.Error(err)
		}
		s.child = child
		s.localConn = child.Conn
		s.localRfd = fdslot.New(s.localConn)
		s.localWfd = s.localRfd
		return nil
	}

	conn, err := s.dialRemote(ctx)
	if err != nil {
		return err
	}
	s.localConn = conn
	s.localRfd = fdslot.New(s.localConn)
	s.localWfd = s.localRfd
	return nil
}

// serverName derives the SNI value from a "host:port" string, falling
// back to the bare string when it carries no port (e.g. a bare host
// left for the kernel's default port resolution).
func serverName(hostport string) string {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport
	}
	return host
}
