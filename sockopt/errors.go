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

package sockopt

import (
	"fmt"

	liberr "github.com/kplexd/tcpiface/errors"
)

const (
	// ErrorKeepaliveEnable is the one hard failure in this package: every
	// other knob is best-effort.
	ErrorKeepaliveEnable liberr.CodeError = iota + liberr.MinPkgSockopt
	ErrorSndTimeout
)

func init() {
	if liberr.ExistInMapMessage(ErrorKeepaliveEnable) {
		panic(fmt.Errorf("error code collision with package tcpiface/sockopt"))
	}
	liberr.RegisterIdFctMessage(ErrorKeepaliveEnable, getMessage)
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorKeepaliveEnable:
		return "sockopt: could not enable SO_KEEPALIVE"
	case ErrorSndTimeout:
		return "sockopt: could not set send timeout/buffer"
	}
	return liberr.NullMessage
}
