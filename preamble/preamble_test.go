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

package preamble_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kplexd/tcpiface/preamble"
)

func TestParse_NamedEscapes(t *testing.T) {
	got, err := preamble.Parse(`\a\b\f\n\r\t\v\'\"\?`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{'\a', '\b', '\f', '\n', '\r', '\t', '\v', '\'', '"', '?'}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

// S5: "\x0d\x0a\101\n" parses to {0x0D, 0x0A, 0x41, 0x0A}.
func TestParse_S5(t *testing.T) {
	got, err := preamble.Parse(`\x0d\x0a\101\n`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{0x0D, 0x0A, 0x41, 0x0A}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParse_S5_BadHex(t *testing.T) {
	if _, err := preamble.Parse(`\x0Z`); err == nil {
		t.Fatal("expected error for non-hex digit")
	}
}

// parseOctal only ever consumes three octal digits, so the largest
// representable \DDD value is \777 == 511 decimal: the >=512 (0o1000)
// rejection some option-table notes describe can never trigger under
// this three-digit grammar, the same property the reference parser's
// own check has. This exercises the largest legal value instead,
// including the byte() truncation of 511 down to 0xFF.
func TestParse_OctalMaxValue(t *testing.T) {
	got, err := preamble.Parse(`\777`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{0xFF}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestParse_Hex(t *testing.T) {
	for hi := 0; hi < 16; hi++ {
		for lo := 0; lo < 16; lo++ {
			h := "0123456789abcdef"
			s := `\x` + string(h[hi]) + string(h[lo])
			got, err := preamble.Parse(s)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", s, err)
			}
			if len(got) != 1 || got[0] != byte(hi<<4|lo) {
				t.Fatalf("parse(%q) = %v, want [%d]", s, got, hi<<4|lo)
			}
		}
	}
}

func TestParse_OctalLiteralFallback(t *testing.T) {
	// \q: q is not octal and not a named escape -> literal 'q', backslash dropped.
	got, err := preamble.Parse(`\q`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "q" {
		t.Fatalf("got %q want %q", got, "q")
	}
}

func TestParse_TruncatedBackslash(t *testing.T) {
	if _, err := preamble.Parse(`abc\`); err == nil {
		t.Fatal("expected error for trailing backslash")
	}
}

func TestParse_PassThrough(t *testing.T) {
	got, err := preamble.Parse("hello world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "hello world" {
		t.Fatalf("got %q", got)
	}
}

// Property 8: exactly MaxLen bytes is rejected, MaxLen-1 is accepted.
func TestParse_LengthBoundary(t *testing.T) {
	ok := strings.Repeat("a", preamble.MaxLen-1)
	if _, err := preamble.Parse(ok); err != nil {
		t.Fatalf("expected MaxLen-1 to be accepted: %v", err)
	}

	tooLong := strings.Repeat("a", preamble.MaxLen)
	if _, err := preamble.Parse(tooLong); err == nil {
		t.Fatal("expected exactly MaxLen bytes to be rejected")
	}
}

func TestSend_FullWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := preamble.Send(&buf, []byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "hello" {
		t.Fatalf("got %q", buf.String())
	}
}

type shortWriter struct {
	chunks [][]byte
}

func (s *shortWriter) Write(p []byte) (int, error) {
	// Only ever accept one byte at a time, forcing Send to loop.
	n := 1
	if len(p) < n {
		n = len(p)
	}
	s.chunks = append(s.chunks, append([]byte(nil), p[:n]...))
	return n, nil
}

func TestSend_LoopsOnShortWrites(t *testing.T) {
	w := &shortWriter{}
	if err := preamble.Send(w, []byte("hi")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.chunks) != 2 {
		t.Fatalf("expected 2 short writes, got %d", len(w.chunks))
	}
}

func TestGPSDWatch_Literal(t *testing.T) {
	if preamble.GPSDWatch != `?WATCH={"enable":true,"nmea":true}` {
		t.Fatalf("unexpected gpsd watch literal: %q", preamble.GPSDWatch)
	}
}
