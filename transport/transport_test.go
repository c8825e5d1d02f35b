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

package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/kplexd/tcpiface/queue"
	"github.com/kplexd/tcpiface/sockopt"
	"github.com/kplexd/tcpiface/transport"
)

// listenOnce starts a TCP listener on an ephemeral port and returns the
// dialable host/port plus a channel that yields every accepted conn.
func listenOnce(t *testing.T) (host, port string, accepted <-chan net.Conn, closeLn func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ch := make(chan net.Conn, 8)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				close(ch)
				return
			}
			ch <- c
		}
	}()

	h, p, _ := net.SplitHostPort(ln.Addr().String())
	return h, p, ch, func() { _ = ln.Close() }
}

func TestConnect_Success(t *testing.T) {
	host, port, accepted, closeLn := listenOnce(t)
	defer closeLn()

	conn, err := transport.Connect(context.Background(), transport.ConnectParams{
		Host: host,
		Port: port,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer conn.Close()

	select {
	case c := <-accepted:
		defer c.Close()
	case <-time.After(time.Second):
		t.Fatal("server never observed the connection")
	}
}

func TestConnect_NonPersistFailsFast(t *testing.T) {
	// Nothing listens on this port.
	_, err := transport.Connect(context.Background(), transport.ConnectParams{
		Host:        "127.0.0.1",
		Port:        "1", // reserved, should refuse
		DialTimeout: 200 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected a connect failure")
	}
}

func TestConnect_PersistRetriesUntilListenerAppears(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, port, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close() // nobody listens yet

	done := make(chan struct{})
	go func() {
		time.Sleep(30 * time.Millisecond)
		ln2, err := net.Listen("tcp", host+":"+port)
		if err == nil {
			go func() {
				c, _ := ln2.Accept()
				if c != nil {
					c.Close()
				}
			}()
			<-done
			ln2.Close()
		}
	}()

	var slept int
	conn, cerr := transport.Connect(context.Background(), transport.ConnectParams{
		Host:        host,
		Port:        port,
		Persist:     true,
		Retry:       10 * time.Millisecond,
		DialTimeout: 50 * time.Millisecond,
		Sleep: func(d time.Duration) {
			slept++
			time.Sleep(d)
		},
	})
	close(done)
	if cerr != nil {
		t.Fatalf("expected eventual success, got %v", cerr)
	}
	defer conn.Close()
	if slept == 0 {
		t.Fatal("expected at least one retry sleep")
	}
}

// TestWrite_SimplexErrorIsTerminal covers the non-persistent path: a
// single write error is returned directly, no recovery attempted.
func TestWrite_SimplexErrorIsTerminal(t *testing.T) {
	host, port, accepted, closeLn := listenOnce(t)
	defer closeLn()

	conn, err := transport.Connect(context.Background(), transport.ConnectParams{
		Host: host, Port: port, DialTimeout: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	var peer net.Conn
	select {
	case peer = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("server never accepted")
	}
	peer.Close()
	conn.Close() // force the subsequent write to fail locally

	st := transport.NewSimplex(conn)
	q := queue.NewChan(1)
	q.Push(&queue.Message{Data: []byte("x")})
	q.Close()

	werr := transport.Write(context.Background(), st, q, nil, nil)
	if werr == nil {
		t.Fatal("expected a write error on a closed non-persistent socket")
	}
}

// TestPairedRecovery_ConvergesAfterPeerKilled exercises scenario S2's
// setup: a BOTH pair shares one Shared, a reader is blocked in its
// read, and the peer is closed mid-stream before the writer sends. It
// asserts only that the writer finishes within the deadline (no
// deadlock in the recovery protocol); which side ends up fixing, and
// whether both resume, is not checked.
func TestPairedRecovery_ConvergesAfterPeerKilled(t *testing.T) {
	host, port, accepted, closeLn := listenOnce(t)
	defer closeLn()

	shared := transport.NewShared(host, port, true, transport.ConnectRetry{
		Delay:       10 * time.Millisecond,
		DialTimeout: 200 * time.Millisecond,
	}, sockopt.Params{}, true, nil)

	conn, cerr := transport.Connect(context.Background(), transport.ConnectParams{
		Host: host, Port: port, DialTimeout: 200 * time.Millisecond,
	})
	if cerr != nil {
		t.Fatalf("initial connect: %v", cerr)
	}
	shared.SetConn(conn)

	var peer net.Conn
	select {
	case peer = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("server never accepted initial connection")
	}

	readerState := transport.NewStateFromShared(shared)
	writerState := transport.NewStateFromShared(shared)

	readErrCh := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		_, err := transport.Read(context.Background(), readerState, buf, nil)
		readErrCh <- error(nil)
		_ = err
	}()

	// Give the reader a moment to enter its blocking read.
	time.Sleep(20 * time.Millisecond)

	// Kill the peer so the writer's next write fails.
	peer.Close()

	q := queue.NewChan(1)
	q.Push(&queue.Message{Data: []byte("hello")})
	q.Close()

	done := make(chan struct{})
	go func() {
		_ = transport.Write(context.Background(), writerState, q, nil, nil)
		close(done)
	}()

	// A fresh listener takes over the same host:port is not possible
	// once closed in this test harness; instead assert the pair
	// eventually converges without deadlocking.
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("writer never finished: recovery protocol likely deadlocked")
	}
}
