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

package session_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/matthewcooper/stunnel/addrlist"
	"github.com/matthewcooper/stunnel/addrlist/failover"
	"github.com/matthewcooper/stunnel/config"
	"github.com/matthewcooper/stunnel/session"
	"github.com/matthewcooper/stunnel/tlsengine"
)

func genCert() tls.Certificate {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	Expect(err).ToNot(HaveOccurred())

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{Organization: []string{"stunnel test"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	Expect(err).ToNot(HaveOccurred())

	cert, err := x509.ParseCertificate(der)
	Expect(err).ToNot(HaveOccurred())

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv, Leaf: cert}
}

// startEchoTLSServer listens with a real TLS server (via tlsengine, so
// it exercises exactly the handshake machinery the client side uses)
// and echoes whatever it reads back to the same connection.
func startEchoTLSServer(cfg *tlsengine.Config) (addr *net.TCPAddr, stop func()) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())

	go func() {
		raw, aerr := ln.Accept()
		if aerr != nil {
			return
		}
		engine := tlsengine.NewServer(raw, cfg)
		if res := engine.Accept(); res.Code != tlsengine.OK {
			raw.Close()
			return
		}
		buf := make([]byte, 4096)
		for {
			n, res := engine.Read(buf, tlsengine.WantRead)
			if res.Code != tlsengine.OK {
				break
			}
			if _, wres := engine.Write(buf[:n], tlsengine.WantWrite); wres.Code != tlsengine.OK {
				break
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr), func() { ln.Close() }
}

// tcpPair returns two ends of a real loopback TCP connection — the
// epoll-backed Poller needs a syscall-exposed fd, which net.Pipe does
// not provide.
func tcpPair() (a, b net.Conn) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	Expect(err).ToNot(HaveOccurred())

	return client, <-accepted
}

var _ = Describe("Session", func() {
	It("relays client-mode traffic through a real TLS handshake and echo backend", func() {
		cert := genCert()
		pool := x509.NewCertPool()
		pool.AddCert(cert.Leaf)

		serverCfg := tlsengine.NewConfig(&tls.Config{Certificates: []tls.Certificate{cert}})
		remoteAddr, stop := startEchoTLSServer(serverCfg)
		defer stop()

		clientCfg := tlsengine.NewConfig(&tls.Config{RootCAs: pool})

		appSide, localSide := tcpPair()
		defer appSide.Close()

		opt := &config.Options{
			ServiceName: "test",
			Mode:        config.ModeClient,
			RemoteAddr:  addrlist.New([]*net.TCPAddr{remoteAddr}, failover.PRIO),
			Timeouts: config.Timeouts{
				Busy:  2 * time.Second,
				Idle:  2 * time.Second,
				Close: time.Second,
			},
			TLS: *clientCfg,
		}

		sess := session.New(opt, localSide, nil)

		done := make(chan error, 1)
		go func() {
			_, err := sess.Run(context.Background())
			var plain error
			if err != nil {
				plain = err
			}
			done <- plain
		}()

		_, werr := appSide.Write([]byte("ping"))
		Expect(werr).ToNot(HaveOccurred())

		buf := make([]byte, 4)
		appSide.SetReadDeadline(time.Now().Add(3 * time.Second))
		_, rerr := io.ReadFull(appSide, buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf)).To(Equal("ping"))

		Expect(appSide.Close()).To(Succeed())
		Eventually(done, 3*time.Second).Should(Receive())
	})
})
