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

//go:build linux

package sockopt

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

func setKeepIdle(conn *net.TCPConn, d time.Duration) error {
	return controlInt(conn, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(d.Seconds()))
}

func setKeepIntvl(conn *net.TCPConn, d time.Duration) error {
	return controlInt(conn, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(d.Seconds()))
}

func setKeepCnt(conn *net.TCPConn, n int) error {
	return controlInt(conn, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, n)
}

func setSendBuffer(conn *net.TCPConn, bytes int) error {
	if bytes <= 0 {
		return nil
	}
	return controlInt(conn, unix.SOL_SOCKET, unix.SO_SNDBUF, bytes)
}

func setSendTimeout(conn *net.TCPConn, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())

	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var serr error
	err = rc.Control(func(fd uintptr) {
		serr = unix.SetsockoptTimeval(int(fd), unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv)
	})
	if err != nil {
		return err
	}
	return serr
}

func controlInt(conn *net.TCPConn, level, opt, value int) error {
	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var serr error
	err = rc.Control(func(fd uintptr) {
		serr = unix.SetsockoptInt(int(fd), level, opt, value)
	})
	if err != nil {
		return err
	}
	return serr
}
