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

package server_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/kplexd/tcpiface/iface"
	"github.com/kplexd/tcpiface/queue"
	"github.com/kplexd/tcpiface/server"
)

// TestAcceptor_UniquePeerIDsAndIndependentLifetimes drives S1: the
// acceptor hands each accepted connection its own Interface with a
// distinct id, and one peer's connection dropping does not stop the
// acceptor from serving others.
func TestAcceptor_UniquePeerIDsAndIndependentLifetimes(t *testing.T) {
	ln, lerr := server.Listen("127.0.0.1:0")
	if lerr != nil {
		t.Fatalf("listen: %v", lerr)
	}

	parent := &iface.Interface{ID: 100, Name: "ingest", Direction: iface.DirIn}
	ingest := queue.NewChan(16)

	var mu sync.Mutex
	var peers []*iface.Interface

	a := &server.Acceptor{
		Parent:      parent,
		IngestQueue: ingest,
		OnPeer: func(peer *iface.Interface) {
			mu.Lock()
			peers = append(peers, peer)
			mu.Unlock()

			go func() {
				buf := make([]byte, 256)
				for {
					_, err := peer.Read(context.Background(), peer, buf)
					if err != nil {
						return
					}
				}
			}()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.Serve(ctx, ln)

	dial := func() net.Conn {
		c, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		return c
	}

	c1 := dial()
	c2 := dial()
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	if len(peers) != 2 {
		mu.Unlock()
		t.Fatalf("expected 2 spawned peers, got %d", len(peers))
	}
	if peers[0].ID == peers[1].ID {
		mu.Unlock()
		t.Fatalf("expected distinct peer ids, both were %d", peers[0].ID)
	}
	mu.Unlock()

	// Killing one peer's connection must not disturb the acceptor's
	// ability to keep serving new connections.
	c1.Close()
	time.Sleep(50 * time.Millisecond)

	c3 := dial()
	defer c3.Close()
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(peers) != 3 {
		t.Fatalf("expected acceptor to keep accepting after a peer dropped, got %d peers", len(peers))
	}

	c2.Close()
}

func TestAcceptor_BothDirectionSpawnsSiblingPair(t *testing.T) {
	ln, lerr := server.Listen("127.0.0.1:0")
	if lerr != nil {
		t.Fatalf("listen: %v", lerr)
	}

	parent := &iface.Interface{ID: 200, Name: "both-iface", Direction: iface.DirBoth}
	ingest := queue.NewChan(16)

	var mu sync.Mutex
	var peers []*iface.Interface

	a := &server.Acceptor{
		Parent:      parent,
		IngestQueue: ingest,
		OnPeer: func(peer *iface.Interface) {
			mu.Lock()
			peers = append(peers, peer)
			mu.Unlock()
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.Serve(ctx, ln)

	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(peers) != 2 {
		t.Fatalf("expected a sibling pair spawned for a BOTH-direction server, got %d peers", len(peers))
	}
	if peers[0].State.Shared != peers[1].State.Shared {
		t.Fatal("expected the spawned sibling pair to share the same transport state")
	}
}
