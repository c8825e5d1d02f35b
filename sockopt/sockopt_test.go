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

package sockopt_test

import (
	"net"
	"testing"
	"time"

	"github.com/kplexd/tcpiface/sockopt"
)

func dialLoopback(t *testing.T) (*net.TCPConn, *net.TCPConn, func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	acceptCh := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		acceptCh <- c
	}()

	cli, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	srv := <-acceptCh
	cleanup := func() {
		_ = cli.Close()
		if srv != nil {
			_ = srv.Close()
		}
		_ = ln.Close()
	}

	return cli.(*net.TCPConn), srv.(*net.TCPConn), cleanup
}

func TestTune_KeepaliveOn(t *testing.T) {
	cli, _, cleanup := dialLoopback(t)
	defer cleanup()

	err := sockopt.Tune(cli, sockopt.Params{
		Keepalive: sockopt.On,
		KeepIdle:  30 * time.Second,
		KeepIntvl: 5 * time.Second,
		KeepCnt:   3,
		NoDelay:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error enabling keepalive: %v", err)
	}
}

func TestTune_Unset_IsNoop(t *testing.T) {
	cli, _, cleanup := dialLoopback(t)
	defer cleanup()

	if err := sockopt.Tune(cli, sockopt.Params{}); err != nil {
		t.Fatalf("unexpected error with zero-value Params: %v", err)
	}
}

func TestTune_SendTimeoutAndBuffer(t *testing.T) {
	cli, _, cleanup := dialLoopback(t)
	defer cleanup()

	err := sockopt.Tune(cli, sockopt.Params{
		SndTimeout: time.Second,
		SndBuf:     4096,
	})
	if err != nil {
		t.Fatalf("unexpected error setting send timeout/buffer: %v", err)
	}
}
