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

package addrlist_test

import (
	"context"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/matthewcooper/stunnel/addrlist"
	"github.com/matthewcooper/stunnel/addrlist/failover"
)

func tcpAddrs(ports ...int) []*net.TCPAddr {
	out := make([]*net.TCPAddr, 0, len(ports))
	for _, p := range ports {
		out = append(out, &net.TCPAddr{IP: net.ParseIP("10.0.0.1"), Port: p})
	}
	return out
}

var _ = Describe("List", func() {
	It("orders PRIO candidates starting at index 0 every time", func() {
		l := addrlist.New(tcpAddrs(1, 2, 3), failover.PRIO)

		first := l.Order()
		Expect(first).To(HaveLen(3))
		Expect(first[0].Port).To(Equal(1))

		second := l.Order()
		Expect(second[0].Port).To(Equal(1))
	})

	It("advances the RR cursor by one address per call", func() {
		l := addrlist.New(tcpAddrs(1, 2, 3), failover.RR)

		first := l.Order()
		Expect(first[0].Port).To(Equal(2))

		second := l.Order()
		Expect(second[0].Port).To(Equal(3))

		third := l.Order()
		Expect(third[0].Port).To(Equal(1))
	})

	It("wraps the RR order around the full list from the cursor", func() {
		l := addrlist.New(tcpAddrs(1, 2, 3), failover.RR)

		order := l.Order()
		Expect(order).To(HaveLen(3))

		seen := map[int]bool{}
		for _, a := range order {
			seen[a.Port] = true
		}
		Expect(seen).To(HaveLen(3))
	})

	It("rejects an address missing a port", func() {
		_, err := addrlist.Resolve(context.Background(), "localhost", failover.PRIO)
		Expect(err).To(HaveOccurred())
	})

	It("resolves loopback to at least one address", func() {
		l, err := addrlist.Resolve(context.Background(), "localhost:8080", failover.PRIO)
		Expect(err).ToNot(HaveOccurred())
		Expect(l.Len()).To(BeNumerically(">=", 1))
	})
})
