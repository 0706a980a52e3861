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

package protocolhook

import liberr "github.com/matthewcooper/stunnel/errors"

const (
	ErrorSMTPBanner liberr.CodeError = iota + liberr.MinPkgProtocolHook
	ErrorSMTPWrite
	ErrorSMTPEhlo
	ErrorSMTPNoStartTLS
	ErrorSMTPStartTLS
	ErrorSMTPMalformed
	ErrorUnknownProtocol
)

func init() {
	liberr.RegisterIdFctMessage(ErrorSMTPBanner, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorSMTPBanner:
		return "protocolhook: did not receive a 220 SMTP banner"
	case ErrorSMTPWrite:
		return "protocolhook: failed writing an SMTP command"
	case ErrorSMTPEhlo:
		return "protocolhook: EHLO exchange failed"
	case ErrorSMTPNoStartTLS:
		return "protocolhook: peer does not advertise STARTTLS"
	case ErrorSMTPStartTLS:
		return "protocolhook: STARTTLS was not accepted"
	case ErrorSMTPMalformed:
		return "protocolhook: malformed SMTP reply"
	case ErrorUnknownProtocol:
		return "protocolhook: no hook registered for the configured protocol name"
	}
	return ""
}
