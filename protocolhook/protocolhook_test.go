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

package protocolhook_test

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/matthewcooper/stunnel/protocolhook"
)

var _ = Describe("Registry", func() {
	It("registers and looks up by name", func() {
		r := protocolhook.NewRegistry()
		called := false
		r.Register("custom", func(ctx context.Context, conn net.Conn, mode protocolhook.Mode) error {
			called = true
			return nil
		})

		h, ok := r.Lookup("custom")
		Expect(ok).To(BeTrue())
		Expect(h(context.Background(), nil, protocolhook.ModeClient)).To(Succeed())
		Expect(called).To(BeTrue())
	})

	It("reports absence of an unregistered name", func() {
		r := protocolhook.NewRegistry()
		_, ok := r.Lookup("nope")
		Expect(ok).To(BeFalse())
	})

	It("ships SMTP registered by default", func() {
		r := protocolhook.Default()
		_, ok := r.Lookup("smtp")
		Expect(ok).To(BeTrue())
	})
})

var _ = Describe("SMTP", func() {
	It("completes the STARTTLS exchange over a pipe", func() {
		client, server := net.Pipe()
		defer client.Close()
		defer server.Close()

		client.SetDeadline(time.Now().Add(2 * time.Second))
		server.SetDeadline(time.Now().Add(2 * time.Second))

		errc := make(chan error, 1)
		go func() {
			errc <- protocolhook.SMTP(context.Background(), server, protocolhook.ModeServer)
		}()

		err := protocolhook.SMTP(context.Background(), client, protocolhook.ModeClient)
		Expect(err).ToNot(HaveOccurred())
		Expect(<-errc).ToNot(HaveOccurred())
	})

	It("fails when the server never advertises STARTTLS", func() {
		client, server := net.Pipe()
		defer client.Close()
		defer server.Close()

		client.SetDeadline(time.Now().Add(2 * time.Second))
		server.SetDeadline(time.Now().Add(2 * time.Second))

		go func() {
			server.Write([]byte("220 plain ESMTP\r\n"))
			buf := make([]byte, 512)
			server.Read(buf)
			server.Write([]byte("250 no extensions here\r\n"))
		}()

		err := protocolhook.SMTP(context.Background(), client, protocolhook.ModeClient)
		Expect(err).To(HaveOccurred())
	})
})
