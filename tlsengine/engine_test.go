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

package tlsengine_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/matthewcooper/stunnel/tlsengine"
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

var _ = Describe("Engine", func() {
	It("completes a client/server handshake over loopback and relays bytes", func() {
		cert := genCertificate()

		serverCfg := tlsengine.NewConfig(&tls.Config{Certificates: []tls.Certificate{cert}})
		clientCfg := tlsengine.NewConfig(&tls.Config{RootCAs: rootPoolFor(cert), InsecureSkipVerify: false})

		clientRaw, serverRaw := net.Pipe()

		clientEngine := tlsengine.New(clientRaw, clientCfg, "localhost")
		serverEngine := tlsengine.NewServer(serverRaw, serverCfg)

		done := make(chan tlsengine.Result, 1)
		go func() { done <- serverEngine.Accept() }()

		res := clientEngine.Connect()
		Expect(res.Code).To(Equal(tlsengine.OK))

		serverRes := <-done
		Expect(serverRes.Code).To(Equal(tlsengine.OK))

		Expect(clientEngine.Version()).To(Equal("TLSv1.3"))
		Expect(clientEngine.IsSSLv2()).To(BeFalse())

		written := make(chan tlsengine.Result, 1)
		go func() {
			_, r := clientEngine.Write([]byte("hello"), tlsengine.WantWrite)
			written <- r
		}()

		buf := make([]byte, 16)
		n, rres := serverEngine.Read(buf, tlsengine.WantRead)
		Expect(rres.Code).To(Equal(tlsengine.OK))
		Expect(string(buf[:n])).To(Equal("hello"))

		wres := <-written
		Expect(wres.Code).To(Equal(tlsengine.OK))

		Expect(clientEngine.Free()).To(Succeed())
		Expect(serverEngine.Free()).To(Succeed())
	})
})

func rootPoolFor(cert tls.Certificate) *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(cert.Leaf)
	return pool
}
