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

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
)

// SMTP negotiates STARTTLS per RFC 3207: on the client side it reads
// the server's banner, sends EHLO, looks for STARTTLS in the EHLO
// reply, requests it, and waits for the 220 continuation before
// handing control back for the TLS handshake. On the server side it
// emits the equivalent banner/EHLO/STARTTLS exchange from the other
// end.
func SMTP(ctx context.Context, conn net.Conn, mode Mode) error {
	r := bufio.NewReader(conn)

	if mode == ModeClient {
		return smtpClient(r, conn)
	}
	return smtpServer(r, conn)
}

func smtpClient(r *bufio.Reader, w net.Conn) error {
	if _, err := readSMTPReply(r, 220); err != nil {
		return ErrorSMTPBanner.Error(err)
	}

	if _, err := w.Write([]byte("EHLO stunnel\r\n")); err != nil {
		return ErrorSMTPWrite.Error(err)
	}

	lines, err := readSMTPReply(r, 250)
	if err != nil {
		return ErrorSMTPEhlo.Error(err)
	}

	if !hasStartTLS(lines) {
		return ErrorSMTPNoStartTLS.Error()
	}

	if _, err = w.Write([]byte("STARTTLS\r\n")); err != nil {
		return ErrorSMTPWrite.Error(err)
	}

	if _, err = readSMTPReply(r, 220); err != nil {
		return ErrorSMTPStartTLS.Error(err)
	}

	return nil
}

func smtpServer(r *bufio.Reader, w net.Conn) error {
	if _, err := w.Write([]byte("220 stunnel ESMTP ready\r\n")); err != nil {
		return ErrorSMTPWrite.Error(err)
	}

	line, err := r.ReadString('\n')
	if err != nil {
		return ErrorSMTPEhlo.Error(err)
	}
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(line)), "EHLO") {
		return ErrorSMTPEhlo.Error()
	}

	if _, err = w.Write([]byte("250-stunnel\r\n250 STARTTLS\r\n")); err != nil {
		return ErrorSMTPWrite.Error(err)
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return ErrorSMTPStartTLS.Error(err)
	}
	if strings.ToUpper(strings.TrimSpace(line)) != "STARTTLS" {
		return ErrorSMTPNoStartTLS.Error()
	}

	if _, err = w.Write([]byte("220 go ahead\r\n")); err != nil {
		return ErrorSMTPWrite.Error(err)
	}

	return nil
}

// readSMTPReply reads one or more lines of a (possibly multi-line,
// "code-text" vs "code text") SMTP reply and requires its status code
// match want.
func readSMTPReply(r *bufio.Reader, want int) ([]string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		lines = append(lines, line)

		if len(line) < 4 {
			return nil, ErrorSMTPMalformed.Error()
		}
		code, err := strconv.Atoi(line[:3])
		if err != nil {
			return nil, ErrorSMTPMalformed.Error(err)
		}
		if code != want {
			return nil, ErrorSMTPMalformed.Error()
		}

		if line[3] == ' ' {
			return lines, nil
		}
		// '-' continuation marker: keep reading.
	}
}

func hasStartTLS(lines []string) bool {
	for _, l := range lines {
		if strings.Contains(strings.ToUpper(l), "STARTTLS") {
			return true
		}
	}
	return false
}
