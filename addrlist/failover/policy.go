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

// Package failover defines the policy AddrList uses to pick among
// several resolved addresses for one name: PRIO (always try in
// resolution order) or RR (round robin).
package failover

import "strings"

// Policy selects how addrlist.List.Order walks a multi-address list.
type Policy int

const (
	// PRIO always starts from the first address and falls through to
	// later ones only on failure — spec.md §4.7's default behavior.
	PRIO Policy = iota

	// RR rotates the starting point on every call, spreading load
	// across the resolved set.
	RR
)

func List() []Policy {
	return []Policy{PRIO, RR}
}

func (p Policy) String() string {
	switch p {
	case RR:
		return "rr"
	case PRIO:
		return "prio"
	default:
		return ""
	}
}

// Parse is case- and punctuation-insensitive, accepting the spellings
// a config file is likely to use ("round-robin", "round_robin", "rr").
func Parse(s string) Policy {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.TrimSpace(s)

	switch s {
	case "rr", "roundrobin":
		return RR
	default:
		return PRIO
	}
}

func ParseBytes(p []byte) Policy { return Parse(string(p)) }
