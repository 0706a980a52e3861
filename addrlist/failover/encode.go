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

package failover

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

func (p *Policy) unmarshal(val []byte) error {
	*p = ParseBytes(val)
	return nil
}

func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Policy) UnmarshalJSON(b []byte) error {
	return p.unmarshal(b)
}

func (p Policy) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

func (p *Policy) UnmarshalYAML(value *yaml.Node) error {
	return p.unmarshal([]byte(value.Value))
}

func (p Policy) MarshalTOML() ([]byte, error) {
	return []byte("\"" + p.String() + "\""), nil
}

func (p *Policy) UnmarshalTOML(i interface{}) error {
	if s, ok := i.(string); ok {
		return p.unmarshal([]byte(s))
	}
	if b, ok := i.([]byte); ok {
		return p.unmarshal(b)
	}
	return fmt.Errorf("failover policy: value not in valid format")
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(b []byte) error {
	return p.unmarshal(b)
}

func (p Policy) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.String())
}

func (p *Policy) UnmarshalCBOR(b []byte) error {
	var s string
	if err := cbor.Unmarshal(b, &s); err != nil {
		return err
	}
	*p = Parse(s)
	return nil
}
