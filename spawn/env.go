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

package spawn

import (
	"fmt"
	"net"
	"strings"
)

// Env holds the extra environment variables §4.8 exports to a spawned
// child describing the peer connection and, in server mode with a
// client certificate, the certificate's subject/issuer.
type Env struct {
	RemoteHost   string
	LDPreload    string
	SSLClientDN  string
	SSLClientIDN string
}

// NewEnv builds an Env from the peer address, stripping the port per
// §4.8's "REMOTE_HOST=<peer-ip> with :port stripped".
func NewEnv(peer net.Addr) Env {
	host := peer.String()
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return Env{RemoteHost: host}
}

// WithLDPreload sets the transparent-mode connect()-hijacking hook
// path, §4.8's LD_PRELOAD/_RLD_LIST mechanism for letting a spawned
// program's outbound connections appear to originate from the
// original client.
func (e Env) WithLDPreload(path string) Env {
	e.LDPreload = path
	return e
}

// WithClientCert sets SSL_CLIENT_DN/SSL_CLIENT_I_DN from the peer
// certificate's subject and issuer, sanitized to a single line with
// control bytes escaped per §4.8.
func (e Env) WithClientCert(subject, issuer string) Env {
	e.SSLClientDN = sanitizeDN(subject)
	e.SSLClientIDN = sanitizeDN(issuer)
	return e
}

// Strings renders e as "KEY=VALUE" entries suitable for appending to
// exec.Cmd.Env, omitting any field left empty.
func (e Env) Strings() []string {
	var out []string
	if e.RemoteHost != "" {
		out = append(out, fmt.Sprintf("REMOTE_HOST=%s", e.RemoteHost))
	}
	if e.LDPreload != "" {
		out = append(out, fmt.Sprintf("LD_PRELOAD=%s", e.LDPreload))
		out = append(out, fmt.Sprintf("_RLD_LIST=%s", e.LDPreload))
	}
	if e.SSLClientDN != "" {
		out = append(out, fmt.Sprintf("SSL_CLIENT_DN=%s", e.SSLClientDN))
	}
	if e.SSLClientIDN != "" {
		out = append(out, fmt.Sprintf("SSL_CLIENT_I_DN=%s", e.SSLClientIDN))
	}
	return out
}

// sanitizeDN collapses a certificate name to one line and replaces
// non-printable bytes with '?', matching §4.8's "control characters
// sanitized" requirement for values placed in a child's environment.
func sanitizeDN(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' {
			b.WriteByte(' ')
			continue
		}
		if r < 0x20 || r == 0x7f {
			b.WriteByte('?')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
