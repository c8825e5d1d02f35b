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

package transport

import liberr "github.com/kplexd/tcpiface/errors"

const (
	ErrorResolve liberr.CodeError = liberr.MinPkgTransport + iota
	ErrorConnect
	ErrorTerminal
	ErrorRead
	ErrorWrite
)

func init() {
	if liberr.ExistInMapMessage(liberr.MinPkgTransport) {
		panic("tcpiface/transport: MinPkgTransport code range already registered")
	}
	liberr.RegisterIdFctMessage(liberr.MinPkgTransport, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorResolve:
		return "could not resolve address"
	case ErrorConnect:
		return "could not establish connection"
	case ErrorTerminal:
		return "interface is permanently failed"
	case ErrorRead:
		return "read failed"
	case ErrorWrite:
		return "write failed"
	}
	return liberr.NullMessage
}
