/*
 * MIT License
 *
 * Copyright (c) 2026 tcpiface contributors
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

// Package preamble decodes the C-escape-style literal used to configure a
// handshake byte string sent immediately after every (re)connect, and
// writes it to a live connection.
//
// The grammar is the one parse_preamble() implements in kplex's tcp.c:
// named single-letter escapes, \xHH hex bytes, and \DDD octal bytes
// bounded below 0x200 (512). It is not a general C-string unescaper —
// the \DDD fallback-to-literal-byte rule on a non-octal first digit is
// specific to this grammar and has no stdlib equivalent.
package preamble

import (
	"io"

	liberr "github.com/kplexd/tcpiface/errors"
)

// MaxLen is the decoded-length cap of a preamble (MAXPREAMBLE in the
// original source): a preamble that decodes to MaxLen bytes or more is
// rejected, so the longest accepted one is MaxLen-1 bytes. The
// retrieved source did not carry the header that
// defines it; 256 is chosen as a generous handshake-sized bound and
// recorded as an open-question decision in DESIGN.md.
const MaxLen = 256

// GPSDWatch is the preamble gpsd=yes synthesizes when no explicit
// preamble is configured.
const GPSDWatch = `?WATCH={"enable":true,"nmea":true}`

// Parse decodes a C-escape-style literal into its byte sequence.
func Parse(s string) ([]byte, liberr.Error) {
	out := make([]byte, 0, len(s))
	i := 0

	for i < len(s) {
		if len(out) >= MaxLen {
			return nil, ErrorTooLong.Error(nil)
		}

		c := s[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}

		// c is the backslash; the escaped char follows at i+1.
		if i+1 >= len(s) {
			return nil, ErrorTruncated.Error(nil)
		}

		esc := s[i+1]
		switch esc {
		case 'a':
			out = append(out, '\a')
			i += 2
		case 'b':
			out = append(out, '\b')
			i += 2
		case 'f':
			out = append(out, '\f')
			i += 2
		case 'n':
			out = append(out, '\n')
			i += 2
		case 'r':
			out = append(out, '\r')
			i += 2
		case 't':
			out = append(out, '\t')
			i += 2
		case 'v':
			out = append(out, '\v')
			i += 2
		case '\'':
			out = append(out, '\'')
			i += 2
		case '"':
			out = append(out, '"')
			i += 2
		case '?':
			out = append(out, '?')
			i += 2
		case 'x':
			b, n, err := parseHex(s, i+2)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
			i = n
		default:
			b, n, literal, err := parseOctal(s, i+1)
			if err != nil {
				return nil, err
			}
			if literal {
				out = append(out, esc)
				i = i + 2
			} else {
				out = append(out, b)
				i = n
			}
		}
	}

	if len(out) >= MaxLen {
		// The input ended at the exact instant the cap was reached: the
		// original source rejects this too (its loop counter and the
		// post-loop length check are the same variable).
		return nil, ErrorTooLong.Error(nil)
	}

	return out, nil
}

// parseHex decodes the two hex digits starting at s[at], returning the
// byte and the index just past them.
func parseHex(s string, at int) (byte, int, liberr.Error) {
	var v byte

	for k := 0; k < 2; k++ {
		if at+k >= len(s) {
			return 0, 0, ErrorTruncated.Error(nil)
		}

		d, ok := hexDigit(s[at+k])
		if !ok {
			return 0, 0, ErrorBadEscape.Error(nil)
		}

		v = v<<4 | d
	}

	return v, at + 2, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// parseOctal decodes up to three octal digits starting at s[at]. If the
// first digit is not octal, it reports literal=true so the caller emits
// the raw byte at s[at] instead (the "\D where D is not octal" rule).
func parseOctal(s string, at int) (b byte, next int, literal bool, err liberr.Error) {
	var tval int

	for k := 0; k < 3; k++ {
		pos := at + k
		if pos >= len(s) || s[pos] < '0' || s[pos] > '7' {
			if k == 0 {
				return 0, 0, true, nil
			}
			return 0, 0, false, ErrorBadEscape.Error(nil)
		}
		tval = tval<<3 + int(s[pos]-'0')
	}

	if tval >= 512 {
		return 0, 0, false, ErrorBadEscape.Error(nil)
	}

	return byte(tval), at + 3, false, nil
}

// Send writes b to w in full, looping on short writes the way
// do_preamble() loops on write()'s partial-write return.
func Send(w io.Writer, b []byte) liberr.Error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return ErrorWrite.Error(err)
		}
		if n <= 0 {
			return ErrorWrite.Error(nil)
		}
		b = b[n:]
	}
	return nil
}
