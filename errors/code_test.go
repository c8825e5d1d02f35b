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

package errors_test

import (
	"errors"
	"fmt"
	"testing"

	liberr "github.com/kplexd/tcpiface/errors"
)

func TestCodeError_Message_Unregistered(t *testing.T) {
	c := liberr.CodeError(65000)
	if got := c.String(); got != "65000" {
		t.Fatalf("expected numeric fallback, got %q", got)
	}

	if got := c.Message(); got != "65000" {
		t.Fatalf("expected message fallback to the numeric string, got %q", got)
	}
}

func TestError_ParentChain(t *testing.T) {
	const code liberr.CodeError = liberr.MinPkgPreamble + 1

	root := fmt.Errorf("root cause")
	e := code.Error(root)

	if !e.HasParent() {
		t.Fatal("expected HasParent() true")
	}

	if !errors.Is(e, root) {
		t.Fatal("expected errors.Is to see through Unwrap()")
	}

	if e.Code() != code {
		t.Fatalf("expected code %v, got %v", code, e.Code())
	}
}

func TestError_NoParent(t *testing.T) {
	const code liberr.CodeError = liberr.MinPkgPreamble + 2

	e := code.Error(nil)
	if e.HasParent() {
		t.Fatal("expected HasParent() false for a nil parent")
	}
}
