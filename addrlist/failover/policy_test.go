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

package failover_test

import (
	"encoding/json"
	"testing"

	"github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	"github.com/matthewcooper/stunnel/addrlist/failover"
)

func TestParseRoundTrip(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(failover.Parse("rr")).To(gomega.Equal(failover.RR))
	g.Expect(failover.Parse("round-robin")).To(gomega.Equal(failover.RR))
	g.Expect(failover.Parse("ROUND_ROBIN")).To(gomega.Equal(failover.RR))
	g.Expect(failover.Parse("prio")).To(gomega.Equal(failover.PRIO))
	g.Expect(failover.Parse("anything-else")).To(gomega.Equal(failover.PRIO))
}

func TestJSONMarshalUnmarshal(t *testing.T) {
	g := gomega.NewWithT(t)

	b, err := json.Marshal(failover.RR)
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(string(b)).To(gomega.Equal(`"rr"`))

	var p failover.Policy
	g.Expect(json.Unmarshal(b, &p)).To(gomega.Succeed())
	g.Expect(p).To(gomega.Equal(failover.RR))
}

func TestYAMLMarshalUnmarshal(t *testing.T) {
	g := gomega.NewWithT(t)

	b, err := yaml.Marshal(failover.PRIO)
	g.Expect(err).ToNot(gomega.HaveOccurred())

	var p failover.Policy
	g.Expect(yaml.Unmarshal(b, &p)).To(gomega.Succeed())
	g.Expect(p).To(gomega.Equal(failover.PRIO))
}

func TestList(t *testing.T) {
	g := gomega.NewWithT(t)
	g.Expect(failover.List()).To(gomega.ConsistOf(failover.PRIO, failover.RR))
}
