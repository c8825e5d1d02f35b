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

//go:build !linux && !darwin

package sockopt

import (
	"net"
	"time"
)

// Platforms without TCP_KEEPIDLE/TCP_KEEPINTVL/TCP_KEEPCNT support (or
// without an x/sys/unix binding the repo tests against) fall back to
// SetKeepAlive only, already applied in Tune. These are no-ops that
// always report success; setSendTimeout below is one too.
func setKeepIdle(conn *net.TCPConn, d time.Duration) error  { return nil }
func setKeepIntvl(conn *net.TCPConn, d time.Duration) error { return nil }
func setKeepCnt(conn *net.TCPConn, n int) error             { return nil }

func setSendBuffer(conn *net.TCPConn, bytes int) error {
	if bytes <= 0 {
		return nil
	}
	return conn.SetWriteBuffer(bytes)
}

func setSendTimeout(conn *net.TCPConn, d time.Duration) error {
	return nil
}
