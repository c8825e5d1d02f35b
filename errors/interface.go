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

import "strings"

// Error is the value every package in this module returns in place of a
// bare error, carrying a CodeError alongside the underlying cause chain.
type Error interface {
	error

	// Code returns the package-scoped error code.
	Code() CodeError

	// HasParent reports whether any underlying cause was attached.
	HasParent() bool

	// Parents returns the underlying cause chain, oldest first.
	Parents() []error

	// Unwrap exposes the first parent for errors.Is/errors.As interop.
	Unwrap() error
}

type baseError struct {
	code    CodeError
	parents []error
}

func newError(code CodeError, parent ...error) Error {
	e := &baseError{code: code}

	for _, p := range parent {
		if p != nil {
			e.parents = append(e.parents, p)
		}
	}

	return e
}

func (e *baseError) Code() CodeError {
	return e.code
}

func (e *baseError) HasParent() bool {
	return len(e.parents) > 0
}

func (e *baseError) Parents() []error {
	return e.parents
}

func (e *baseError) Unwrap() error {
	if len(e.parents) == 0 {
		return nil
	}

	return e.parents[0]
}

func (e *baseError) Error() string {
	var b strings.Builder

	b.WriteString(e.code.Message())

	for _, p := range e.parents {
		if p == nil {
			continue
		}

		b.WriteString(": ")
		b.WriteString(p.Error())
	}

	return b.String()
}

// Is reports whether err is a tcpiface Error wrapping code anywhere in
// its parent chain.
func Is(err error, code CodeError) bool {
	for err != nil {
		if e, ok := err.(Error); ok {
			if e.Code() == code {
				return true
			}

			err = e.Unwrap()
			continue
		}

		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}

		err = u.Unwrap()
	}

	return false
}
