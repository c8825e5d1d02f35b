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

package transport

import "net"

// State is the per-interface TCP transport record (§3 "TCP transport
// state"): a bare connection for a simplex, non-persistent interface,
// or a pointer into a Shared for anything persistent or paired.
type State struct {
	// Conn is used directly only when Shared is nil.
	Conn *net.TCPConn

	// Shared is non-nil for any persistent interface, and for any
	// bidirectional (BOTH) pair regardless of persistence (see
	// Shared's doc comment).
	Shared *Shared
}

// NewSimplex wraps an already-connected, non-persistent socket.
func NewSimplex(conn *net.TCPConn) *State {
	return &State{Conn: conn}
}

// NewStateFromShared wraps a Shared, for persistent or paired
// interfaces. Both siblings of a BOTH pair hold a *State pointing at
// the same *Shared.
func NewStateFromShared(s *Shared) *State {
	return &State{Shared: s}
}

// Dup builds the sibling's transport state for §4.9 interface
// duplication: it references the same Shared (bumping its refcount)
// rather than copying connection state byte-for-byte, since in this
// design there is nothing per-sibling to copy — the fd lives once, on
// Shared, not duplicated per side.
func (st *State) Dup() *State {
	if st.Shared == nil {
		// A non-persistent simplex interface has no sibling in this
		// design; duplication only applies to BOTH pairs, which always
		// carry a Shared (see Shared's doc comment).
		return &State{Conn: st.Conn}
	}
	st.Shared.AddRef()
	return &State{Shared: st.Shared}
}

// Release drops this side's reference to the underlying Shared (a
// no-op for a bare simplex State) and reports whether this was the
// last reference, i.e. whether the caller should finish tearing down
// the Shared (mutex, preamble buffer, host/port strings).
func (st *State) Release() (last bool) {
	if st.Shared == nil {
		return true
	}
	return st.Shared.Release()
}
