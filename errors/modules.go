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

// Package errors provides a small package-scoped error-code system: each
// package in this module reserves a numeric range and registers its own
// message table.
package errors

// Each consuming package reserves a contiguous range of CodeError values
// here.
const (
	MinPkgPreamble  CodeError = 100
	MinPkgSockopt   CodeError = 200
	MinPkgTransport CodeError = 300
	MinPkgServer    CodeError = 400
	MinPkgIface     CodeError = 500
	MinPkgQueue     CodeError = 600
	MinPkgConfig    CodeError = 700

	MinAvailable CodeError = 1000
)
