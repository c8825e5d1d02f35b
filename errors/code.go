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

package errors

import (
	"sort"
	"strconv"
	"sync"
)

// Message generates the human-readable text for a registered CodeError.
type Message func(code CodeError) (message string)

// CodeError is a package-scoped numeric error code, the same role HTTP
// status codes play but namespaced per package via MinPkg* ranges.
type CodeError uint16

const (
	// UnknownError is used when no specific code applies.
	UnknownError CodeError = 0

	// NullMessage is returned when no message is registered for a code.
	NullMessage = ""
)

var (
	muMsg sync.RWMutex
	idMsg = make(map[CodeError]Message)
)

// RegisterIdFctMessage registers the message function covering every code
// in [minCode, next registered minCode). Called once from each package's
// init().
func RegisterIdFctMessage(minCode CodeError, fct Message) {
	muMsg.Lock()
	defer muMsg.Unlock()

	idMsg[minCode] = fct
}

// ExistInMapMessage reports whether a message function is already
// registered for minCode, letting a package's init() panic loudly on a
// range collision instead of silently shadowing another package.
func ExistInMapMessage(minCode CodeError) bool {
	muMsg.RLock()
	defer muMsg.RUnlock()

	_, ok := idMsg[minCode]
	return ok
}

// sortedMinCodes returns every registered range floor, ascending.
func sortedMinCodes() []CodeError {
	muMsg.RLock()
	defer muMsg.RUnlock()

	out := make([]CodeError, 0, len(idMsg))
	for k := range idMsg {
		out = append(out, k)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Message returns the registered text for c, falling back to its numeric
// value when no package claimed the range it falls in.
func (c CodeError) Message() string {
	if c == UnknownError {
		return NullMessage
	}

	var owner CodeError
	found := false

	for _, min := range sortedMinCodes() {
		if c >= min {
			owner = min
			found = true
		}
	}

	if !found {
		return c.String()
	}

	muMsg.RLock()
	fct := idMsg[owner]
	muMsg.RUnlock()

	if fct == nil {
		return c.String()
	}

	if msg := fct(c); msg != NullMessage {
		return msg
	}

	return c.String()
}

// String returns the decimal representation of the code.
func (c CodeError) String() string {
	return strconv.Itoa(int(c))
}

// Uint16 returns c as a uint16.
func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

// Error builds a new Error carrying this code and an optional parent
// error chain.
func (c CodeError) Error(parent error) Error {
	return newError(c, parent)
}

// ErrorParent builds a new Error carrying this code and one or more
// parent errors (e.g. the underlying syscall error plus a contextual
// fmt.Errorf).
func (c CodeError) ErrorParent(parent ...error) Error {
	return newError(c, parent...)
}
