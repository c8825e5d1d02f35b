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

// Package sockopt tunes a connected TCP socket: Nagle, keepalive
// (idle/interval/count), send timeout and send buffer, following
// establish_keepalive() in kplex's tcp.c. Platform-specific keepalive
// knobs live in sockopt_linux.go / sockopt_darwin.go / sockopt_other.go,
// the idiomatic Go analogue of the C source's #ifdef __APPLE__ branch.
package sockopt

import (
	"net"
	"time"

	liberr "github.com/kplexd/tcpiface/errors"
)

// Tristate mirrors the Shared.keepalive tri-state knob: unset lets
// persist-mode defaults apply, on/off are explicit.
type Tristate int

const (
	Unset Tristate = iota
	On
	Off
)

// Params bundles the persist-mode socket knobs a Shared carries.
type Params struct {
	Keepalive Tristate
	KeepIdle  time.Duration
	KeepIntvl time.Duration
	KeepCnt   int

	SndTimeout time.Duration
	SndBuf     int

	NoDelay bool
}

// Tune applies Params to conn. Every knob except enabling SO_KEEPALIVE
// itself is best-effort and leaves the socket usable: a send
// timeout/buffer failure is returned as ErrorSndTimeout for the caller
// to log, while keep-idle, keep-interval and keep-count failures are
// ignored and not reported at all.
func Tune(conn *net.TCPConn, p Params) liberr.Error {
	if p.NoDelay {
		_ = conn.SetNoDelay(true)
	}

	if p.Keepalive == On {
		if err := conn.SetKeepAlive(true); err != nil {
			return ErrorKeepaliveEnable.Error(err)
		}

		if p.KeepIdle > 0 {
			_ = setKeepIdle(conn, p.KeepIdle)
		}
		if p.KeepIntvl > 0 {
			_ = setKeepIntvl(conn, p.KeepIntvl)
		}
		if p.KeepCnt > 0 {
			_ = setKeepCnt(conn, p.KeepCnt)
		}
	} else if p.Keepalive == Off {
		_ = conn.SetKeepAlive(false)
	}

	if p.SndTimeout > 0 {
		// The original source sets SO_SNDTIMEO and SO_SNDBUF in one
		// joint block and (per a documented indentation bug, resolved
		// in DESIGN.md) should only report an error when a syscall
		// actually failed.
		errTimeout := setSendTimeout(conn, p.SndTimeout)
		errBuf := setSendBuffer(conn, p.SndBuf)

		if errTimeout != nil || errBuf != nil {
			return ErrorSndTimeout.ErrorParent(errTimeout, errBuf)
		}
	}

	return nil
}
