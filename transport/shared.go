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

// Package transport implements the connection state machine, the
// paired-thread fault-recovery protocol, and the read/write paths of a
// persistent bidirectional TCP interface, grounded directly on
// do_connect/reconnect/reread/read_tcp/write_tcp in the reference tcp.c.
package transport

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kplexd/tcpiface/sockopt"
)

// Shared is the heap object two paired goroutines (a persistent
// bidirectional client's reader and writer) reference through the same
// pointer. It is also used, unpaired, by any single-goroutine
// persistent interface (simplex IN or OUT) — in that case critical
// never exceeds 1 and the close/wait-for-notice handshake below
// never triggers, but the sticky-terminal and retry behavior are
// identical, so one implementation covers both shapes.
//
// This mildly extends the "Shared exists iff persistent" rule to also
// cover non-persistent BOTH pairs (see DESIGN.md, Open Questions) —
// what the critical/fixing dance actually guards against
// is a racy double-close between two goroutines sharing one fd, which
// matters whether or not the interface retries on failure. Persist
// controls retry behavior only: Persist=false means the first failure
// is immediately terminal.
type Shared struct {
	mu   sync.Mutex
	cond *sync.Cond

	// Connection identity and retry policy.
	Host    string
	Port    string
	Persist bool
	Retry   ConnectRetry
	Sockopt sockopt.Params
	NoDelay bool
	Preamble []byte

	conn     *net.TCPConn
	terminal bool

	critical int
	fixing   bool
	noticed  bool

	// refs replaces the original donewith one-bit flag with an actual
	// reference count: New sets it to 1, Dup increments it, Release
	// decrements it and reports whether this call was the one to reach
	// zero (see iface.Interface.Dup / Cleanup).
	refs int32

	// OnReconnectAttempt, if set, is invoked once per call into attempt()
	// inside recover — the metrics package's reconnect-attempts counter
	// hooks in here without transport importing metrics directly.
	OnReconnectAttempt func()
}

// ConnectRetry bundles the knobs Connect needs on every
// reconnect, so Shared doesn't have to repeat ConnectParams' shape.
type ConnectRetry struct {
	Delay       time.Duration
	DialTimeout time.Duration
}

// NewShared constructs a Shared with a single reference.
func NewShared(host, port string, persist bool, retry ConnectRetry, sp sockopt.Params, nodelay bool, pre []byte) *Shared {
	s := &Shared{
		Host:     host,
		Port:     port,
		Persist:  persist,
		Retry:    retry,
		Sockopt:  sp,
		NoDelay:  nodelay,
		Preamble: pre,
		refs:     1,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// AddRef increments the reference count; called by Dup when a sibling
// is created.
func (s *Shared) AddRef() {
	atomic.AddInt32(&s.refs, 1)
}

// Release decrements the reference count and reports whether this call
// brought it to zero — the signal that it is safe to free the Shared
// (its mutex needs no explicit destruction in Go, but the preamble
// buffer and host/port strings become eligible for collection, and any
// caller-side handle pool entry can be returned).
func (s *Shared) Release() (last bool) {
	return atomic.AddInt32(&s.refs, -1) == 0
}

// SetConn installs the connection established by an initial (single-
// threaded) connect. It must not be called once any goroutine may be
// concurrently reading Conn/Terminal.
func (s *Shared) SetConn(c *net.TCPConn) {
	s.mu.Lock()
	s.conn = c
	s.terminal = false
	s.mu.Unlock()
}

// Terminal reports whether the sticky fd=-1 state has been reached.
func (s *Shared) Terminal() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.terminal
}

// Connected reports whether a live connection is currently installed,
// used by the deferred-connect callback (§4.8) to decide whether the
// first call into either slot still needs to perform the initial
// connect.
func (s *Shared) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// CriticalCount reports how many goroutines are currently inside the
// critical I/O region (0, 1, or 2), for the critical gauge metric.
func (s *Shared) CriticalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.critical
}

// enter is the top half of the critical region in §4.4: it returns the
// live connection and increments critical, or reports ok=false if the
// sticky terminal state was already reached.
func (s *Shared) enter() (conn *net.TCPConn, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal {
		return nil, false
	}
	s.critical++
	return s.conn, true
}

// exit is the bottom half of the critical region on the success path:
// no recovery is needed, just release the slot and wake the fixer if
// one happens to be waiting on critical dropping (it isn't, in the
// success path, but Broadcast is cheap and this keeps exit and recover
// symmetric).
func (s *Shared) exit() {
	s.mu.Lock()
	s.critical--
	if s.fixing {
		s.cond.Broadcast()
	}
	s.mu.Unlock()
}

// recover implements the §4.4 fault-recovery protocol. attempt is
// either the writer's reconnect() or the reader's reread() adapter; it
// runs with Shared.mu NOT held (see Connect's docstring) and returns
// the new connection plus ok=true on success, or ok=false on permanent
// failure. recover returns whether the Shared is now terminal.
func (s *Shared) recover(attempt func() (*net.TCPConn, bool)) bool {
	s.mu.Lock()

	if s.fixing {
		// Someone else is already fixing: announce that we've noticed
		// the fault (this wakes a fixer that is waiting on the
		// shutdown it issued to take effect), then wait for recovery to
		// finish.
		s.noticed = true
		s.cond.Broadcast()
		for s.fixing {
			s.cond.Wait()
		}
		s.critical--
		term := s.terminal
		s.mu.Unlock()
		return term
	}

	s.fixing = true
	if s.critical == 2 {
		// The sibling is currently blocked in its own I/O; kick it out
		// so it can reach this same function and signal back.
		if s.conn != nil {
			_ = s.conn.Close()
		}
		for !s.noticed {
			s.cond.Wait()
		}
		s.noticed = false
	} else if s.conn != nil {
		// critical == 1: no sibling blocked on this fd, but it is still
		// faulted and about to be replaced. Close it here or it leaks —
		// net.TCPConn has no finalizer that does this for us.
		_ = s.conn.Close()
	}
	s.mu.Unlock()

	// A non-persistent Shared never reconnects: its first fault is
	// terminal.
	var newConn *net.TCPConn
	ok := false
	if s.Persist {
		if s.OnReconnectAttempt != nil {
			s.OnReconnectAttempt()
		}
		newConn, ok = attempt()
	}

	s.mu.Lock()
	if ok {
		s.conn = newConn
		s.terminal = false
	} else {
		s.terminal = true
		s.conn = nil
	}
	s.fixing = false
	s.cond.Broadcast()
	s.critical--
	term := s.terminal
	s.mu.Unlock()

	return term
}
