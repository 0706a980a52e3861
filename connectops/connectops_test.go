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

package connectops_test

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/matthewcooper/stunnel/addrlist"
	"github.com/matthewcooper/stunnel/addrlist/failover"
	"github.com/matthewcooper/stunnel/connectops"
)

var _ = Describe("DialTimeout", func() {
	It("connects to the first reachable candidate and skips the rest", func() {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()

		accepted := make(chan net.Conn, 1)
		go func() {
			c, _ := ln.Accept()
			accepted <- c
		}()

		goodAddr := ln.Addr().(*net.TCPAddr)
		badAddr := &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 1}

		addrs := addrlist.New([]*net.TCPAddr{badAddr, goodAddr}, failover.PRIO)

		conn, derr := connectops.DialTimeout(context.Background(), addrs, connectops.DialOptions{Timeout: time.Second})
		Expect(derr).ToNot(HaveOccurred())
		Expect(conn).ToNot(BeNil())
		conn.Close()

		server := <-accepted
		server.Close()
	})

	It("exhausts and reports every candidate's failure", func() {
		addrs := addrlist.New([]*net.TCPAddr{
			{IP: net.ParseIP("127.0.0.1"), Port: 1},
		}, failover.PRIO)

		_, derr := connectops.DialTimeout(context.Background(), addrs, connectops.DialOptions{Timeout: 200 * time.Millisecond})
		Expect(derr).To(HaveOccurred())
	})
})

var _ = Describe("MakeSockets", func() {
	It("returns a usable connected pair", func() {
		keep, childFile, err := connectops.MakeSockets()
		Expect(err).ToNot(HaveOccurred())
		defer keep.Close()
		defer childFile.Close()

		child, cerr := net.FileConn(childFile)
		Expect(cerr).ToNot(HaveOccurred())
		defer child.Close()

		_, werr := keep.Write([]byte("ping"))
		Expect(werr).ToNot(HaveOccurred())

		buf := make([]byte, 4)
		child.SetReadDeadline(time.Now().Add(time.Second))
		n, rerr := child.Read(buf)
		Expect(rerr).ToNot(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("ping"))
	})
})

var _ = Describe("LocalBind", func() {
	It("rejects a privileged port when transparent mode is off", func() {
		_, err := connectops.LocalBind("127.0.0.1", 80, false)
		Expect(err).To(HaveOccurred())
	})

	It("binds an ephemeral port when none is requested", func() {
		ln, err := connectops.LocalBind("127.0.0.1", 0, false)
		Expect(err).ToNot(HaveOccurred())
		defer ln.Close()
		Expect(ln.Addr().(*net.TCPAddr).Port).ToNot(Equal(0))
	})
})
