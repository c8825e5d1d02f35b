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

// Package server implements the acceptor and per-connection peer
// spawning (C8), grounded on tcp_server/new_tcp_conn in the reference
// tcp.c.
package server

import (
	"context"
	"net"
	"sync/atomic"

	liberr "github.com/kplexd/tcpiface/errors"
	"github.com/kplexd/tcpiface/iface"
	"github.com/kplexd/tcpiface/logger"
	"github.com/kplexd/tcpiface/metrics"
	"github.com/kplexd/tcpiface/queue"
	"github.com/kplexd/tcpiface/sockopt"
	"github.com/kplexd/tcpiface/transport"
)

// DefaultBacklog is tcp_server's listen(fd, 5). Go's net.Listen does
// not expose a backlog parameter (it derives one internally from
// SOMAXCONN); DefaultBacklog is kept only as documentation of the
// reference value; actually requesting it back would mean hand-rolling
// socket/bind/listen, which is a bigger portability risk than the
// minor divergence it fixes (see DESIGN.md).
const DefaultBacklog = 5

// QueueFactory builds a fresh per-connection outbound queue for a peer
// whose direction is OUT or the OUT half of a BOTH pair.
type QueueFactory func() queue.Queue

// Acceptor owns the listening socket for a server-role Interface and
// spawns one (or, for BOTH, two) peer Interfaces per accepted
// connection.
type Acceptor struct {
	Parent      *iface.Interface
	IngestQueue queue.Queue
	NewQueue    QueueFactory
	Log         logger.Logger

	// OnPeer is invoked once per spawned peer (and again for its
	// sibling, if any), letting the host start each in its own
	// goroutine and register it for heartbeat/shutdown.
	OnPeer func(peer *iface.Interface)

	ln       net.Listener
	nextID   uint32
	stopping int32
}

// Listen binds addr. DefaultBacklog documents the reference backlog;
// see its comment for why this uses net.Listen rather than a raw
// socket/bind/listen sequence.
func Listen(addr string) (net.Listener, liberr.Error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, ErrorListen.Error(err)
	}
	return ln, nil
}

// Serve accepts connections until ctx is done or Stop is called,
// spawning a peer Interface per accepted connection. Accept failures
// are logged and the loop continues; they are never fatal to the
// listener, matching §4.7.
func (a *Acceptor) Serve(ctx context.Context, ln net.Listener) liberr.Error {
	a.ln = ln

	go func() {
		<-ctx.Done()
		atomic.StoreInt32(&a.stopping, 1)
		_ = ln.Close()
	}()

	for {
		if atomic.LoadInt32(&a.stopping) != 0 || a.Parent.Direction == iface.DirNone {
			return nil
		}

		conn, err := ln.Accept()
		if err != nil {
			if atomic.LoadInt32(&a.stopping) != 0 {
				return nil
			}
			if a.Log != nil {
				a.Log.Warn("accept failed, continuing", logger.F("err", err))
			}
			continue
		}

		a.spawnPeer(ctx, conn.(*net.TCPConn))
	}
}

// Stop causes the next accept-loop iteration to exit and closes the
// listener, unblocking any in-flight Accept.
func (a *Acceptor) Stop() {
	atomic.StoreInt32(&a.stopping, 1)
	if a.ln != nil {
		_ = a.ln.Close()
	}
}

// spawnPeer assigns each accepted connection a unique minor id derived
// from a per-acceptor counter (rather than the OS file descriptor
// number, which new_tcp_conn used but which Go does not expose without
// reaching into SyscallConn for no real benefit here) and builds the
// peer Interface(s) for it.
func (a *Acceptor) spawnPeer(ctx context.Context, conn *net.TCPConn) {
	minor := atomic.AddUint32(&a.nextID, 1) & 0xFFFF
	id := uint16(uint32(a.Parent.ID) + minor)
	metrics.ForInterface(a.Parent.ID).ConnectionAccepted()

	peer := &iface.Interface{
		ID:        id,
		Name:      a.Parent.Name,
		Persist:   false, // per-connection peers are never persistent (§4.7)
		Filters:   a.Parent.Filters,
		TagOutput: a.Parent.TagOutput,
		Checksum:  a.Parent.Checksum,
		Strict:    a.Parent.Strict,
		Heartbeat: a.Parent.Heartbeat,
	}

	switch a.Parent.Direction {
	case iface.DirIn:
		peer.Direction = iface.DirIn
		peer.Queue = a.IngestQueue
		peer.State = transport.NewSimplex(conn)
		a.startPeer(peer)

	case iface.DirBoth:
		peer.Direction = iface.DirOut
		peer.Queue = a.newOutQueue()
		_ = conn.SetNoDelay(true)

		// A BOTH-direction peer spawns two Interfaces (in and out)
		// sharing the one accepted socket, so it needs the same Shared
		// coordination as a persistent BOTH pair (DESIGN.md, Open
		// Questions #3) even though this peer is never itself persistent
		// — a bare NewSimplex State would let the two sides race on the
		// same fd with no recovery protocol between them.
		shared := transport.NewShared(conn.RemoteAddr().String(), "", false, transport.ConnectRetry{}, sockopt.Params{}, true, nil)
		shared.OnReconnectAttempt = metrics.ForInterface(id).ReconnectAttempt
		shared.SetConn(conn)
		peer.State = transport.NewStateFromShared(shared)
		a.startPeer(peer)

		sibling := peer.Dup(iface.DirIn, a.IngestQueue)
		a.startPeer(sibling)

	default: // DirOut or DirNone treated as outbound peer
		peer.Direction = iface.DirOut
		peer.Queue = a.newOutQueue()
		peer.State = transport.NewSimplex(conn)
		_ = conn.SetNoDelay(true)
		a.startPeer(peer)
	}
}

func (a *Acceptor) newOutQueue() queue.Queue {
	if a.NewQueue != nil {
		return a.NewQueue()
	}
	return queue.NewChan(64)
}

func (a *Acceptor) startPeer(peer *iface.Interface) {
	iface.WireTransport(peer)
	if a.OnPeer != nil {
		a.OnPeer(peer)
	}
}
