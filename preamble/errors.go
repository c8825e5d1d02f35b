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

package preamble

import (
	"fmt"

	liberr "github.com/kplexd/tcpiface/errors"
)

const (
	ErrorTooLong liberr.CodeError = iota + liberr.MinPkgPreamble
	ErrorBadEscape
	ErrorTruncated
	ErrorWrite
)

func init() {
	if liberr.ExistInMapMessage(ErrorTooLong) {
		panic(fmt.Errorf("error code collision with package tcpiface/preamble"))
	}
	liberr.RegisterIdFctMessage(ErrorTooLong, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorTooLong:
		return fmt.Sprintf("preamble: specified string is too long, max %d bytes", MaxLen-1)
	case ErrorBadEscape:
		return "preamble: invalid escape sequence"
	case ErrorTruncated:
		return "preamble: escape sequence cut off at end of string"
	case ErrorWrite:
		return "preamble: failed to write preamble to connection"
	}
	return liberr.NullMessage
}
