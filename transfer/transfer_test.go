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

package transfer_test

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

	"github.com/matthewcooper/stunnel/fdslot"
	"github.com/matthewcooper/stunnel/poller"
	"github.com/matthewcooper/stunnel/tlsengine"
	"github.com/matthewcooper/stunnel/transfer"
)

func genCertificate() tls.Certificate {
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

// tcpPair returns two ends of a real loopback TCP connection, needed
// because the epoll-backed Poller requires a syscall-exposed fd —
// net.Pipe does not provide one.
func tcpPair() (a, b net.Conn) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	Expect(err).ToNot(HaveOccurred())
	defer ln.Close()

	done := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		done <- c
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	Expect(err).ToNot(HaveOccurred())

	return client, <-done
}

var _ = Describe("Run", func() {
	It("relays a request/response pair and exits cleanly on close", func() {
		cert := genCertificate()
		pool := x509.NewCertPool()
		pool.AddCert(cert.Leaf)

		app, localSide := tcpPair()
		defer app.Close()

		peerRaw, remoteSide := tcpPair()

		serverCfg := tlsengine.NewConfig(&tls.Config{Certificates: []tls.Certificate{cert}})
		engine := tlsengine.NewServer(remoteSide, serverCfg)

		handshakeDone := make(chan tlsengine.Result, 1)
		go func() { handshakeDone <- engine.Accept() }()

		peerConn := tls.Client(peerRaw, &tls.Config{RootCAs: pool, ServerName: "localhost"})
		Expect(peerConn.Handshake()).To(Succeed())
		Expect((<-handshakeDone).Code).To(Equal(tlsengine.OK))

		p, err := poller.New()
		Expect(err).ToNot(HaveOccurred())

		localSlot := fdslot.New(localSide)
		remoteSlot := fdslot.New(remoteSide)

		opt := transfer.Options{
			SockRead:     localSlot,
			SockWrite:    localSlot,
			Remote:       remoteSlot,
			TLS:          engine,
			Poller:       p,
			TimeoutIdle:  300 * time.Millisecond,
			TimeoutClose: 150 * time.Millisecond,
		}

		runDone := make(chan struct {
			out transfer.Outcome
			err error
		}, 1)
		go func() {
			out, rerr := transfer.Run(context.Background(), opt)
			var plain error
			if rerr != nil {
				plain = rerr
			}
			runDone <- struct {
				out transfer.Outcome
				err error
			}{out, plain}
		}()

		_, werr := app.Write([]byte("ping"))
		Expect(werr).ToNot(HaveOccurred())

		buf := make([]byte, 4)
		peerConn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, rerr := peerConn.Read(buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf)).To(Equal("ping"))

		_, werr = peerConn.Write([]byte("pong"))
		Expect(werr).ToNot(HaveOccurred())

		app.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, rerr = app.Read(buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf)).To(Equal("pong"))

		Expect(app.Close()).To(Succeed())
		peerConn.Close()

		Eventually(runDone, 3*time.Second).Should(Receive())
	})

	It("injects X-Forwarded-For immediately before the end-of-headers blank line", func() {
		cert := genCertificate()
		pool := x509.NewCertPool()
		pool.AddCert(cert.Leaf)

		app, localSide := tcpPair()
		defer app.Close()

		peerRaw, remoteSide := tcpPair()

		serverCfg := tlsengine.NewConfig(&tls.Config{Certificates: []tls.Certificate{cert}})
		engine := tlsengine.NewServer(remoteSide, serverCfg)

		handshakeDone := make(chan tlsengine.Result, 1)
		go func() { handshakeDone <- engine.Accept() }()

		peerConn := tls.Client(peerRaw, &tls.Config{RootCAs: pool, ServerName: "localhost"})
		Expect(peerConn.Handshake()).To(Succeed())
		Expect((<-handshakeDone).Code).To(Equal(tlsengine.OK))

		p, err := poller.New()
		Expect(err).ToNot(HaveOccurred())

		localSlot := fdslot.New(localSide)
		remoteSlot := fdslot.New(remoteSide)

		opt := transfer.Options{
			SockRead:      localSlot,
			SockWrite:     localSlot,
			Remote:        remoteSlot,
			TLS:           engine,
			Poller:        p,
			TimeoutIdle:   300 * time.Millisecond,
			TimeoutClose:  150 * time.Millisecond,
			XForwardedFor: true,
			PeerIP:        "203.0.113.9",
		}

		runDone := make(chan struct{}, 1)
		go func() {
			transfer.Run(context.Background(), opt)
			runDone <- struct{}{}
		}()

		request := "GET / HTTP/1.0\r\nHost: x\r\n\r\n"
		_, werr := app.Write([]byte(request))
		Expect(werr).ToNot(HaveOccurred())

		buf := make([]byte, len(request)+len("X-Forwarded-For: 203.0.113.9\r\n"))
		peerConn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, rerr := io.ReadFull(peerConn, buf)
		Expect(rerr).ToNot(HaveOccurred())

		got := string(buf[:n])
		Expect(got).To(Equal("GET / HTTP/1.0\r\nHost: x\r\nX-Forwarded-For: 203.0.113.9\r\n\r\n"))

		Expect(app.Close()).To(Succeed())
		peerConn.Close()

		Eventually(runDone, 3*time.Second).Should(Receive())
	})
})
