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

// Package iface owns the Interface entity (§3) and its lifecycle (C9):
// option interpretation, role wiring, deferred connect under
// instant-persist, and sibling duplication (§4.9), grounded on
// init_tcp/ifdup_tcp/cleanup_tcp in the reference tcp.c.
package iface

import (
	"context"
	"time"

	liberr "github.com/kplexd/tcpiface/errors"
	"github.com/kplexd/tcpiface/logger"
	"github.com/kplexd/tcpiface/metrics"
	"github.com/kplexd/tcpiface/queue"
	"github.com/kplexd/tcpiface/transport"
)

// Direction mirrors the host's generic interface direction enum.
type Direction int

const (
	DirNone Direction = iota
	DirIn
	DirOut
	DirBoth
)

func (d Direction) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirBoth:
		return "both"
	default:
		return "none"
	}
}

// ReadFunc/WriteFunc/CleanupFunc are the callback slots the host
// installs on and invokes against an Interface (§6 "Installed on the
// Interface").
type ReadFunc func(ctx context.Context, ifc *Interface, buf []byte) (int, liberr.Error)
type WriteFunc func(ctx context.Context, ifc *Interface) liberr.Error
type CleanupFunc func(ifc *Interface)

// Interface is the generic record the surrounding host owns; this
// module attaches transport-specific state (State) and installs the
// transport's read/write/cleanup callbacks on it.
type Interface struct {
	ID        uint16
	Name      string
	Direction Direction

	Persist        bool
	InstantPersist bool

	// Host-owned collaborators this core does not implement (§1
	// Explicitly out of scope): filters, tag formatting, heartbeat.
	// Carried as opaque slots so the record shape matches the host's
	// expectations without this module reimplementing them.
	Filters   []string
	TagOutput bool
	Checksum  bool
	Strict    bool
	Heartbeat time.Duration

	Queue   queue.Queue
	Sibling *Interface
	State   *transport.State

	Read    ReadFunc
	Write   WriteFunc
	Cleanup CleanupFunc
	ReadBuf func(buf []byte) // the generic do_read's readbuf callback

	Tag transport.TagFunc

	log logger.Logger
}

// Dup implements §4.9: build the sibling transport state (referencing
// the same Shared, bumping its refcount) and copy every field the
// parent's role wiring says to copy, then give the new record its own
// direction and queue as the caller (role wiring or C8's peer spawning)
// decides.
func (ifc *Interface) Dup(dir Direction, q queue.Queue) *Interface {
	dup := &Interface{
		ID:        ifc.ID,
		Name:      ifc.Name,
		Direction: dir,

		Persist:        ifc.Persist,
		InstantPersist: ifc.InstantPersist,

		Filters:   ifc.Filters,
		TagOutput: ifc.TagOutput,
		Checksum:  ifc.Checksum,
		Strict:    ifc.Strict,
		Heartbeat: ifc.Heartbeat,

		Queue: q,
		State: ifc.State.Dup(),

		Tag: ifc.Tag,
		log: ifc.log,
	}

	dup.Sibling = ifc
	ifc.Sibling = dup

	wireCallbacks(dup)
	return dup
}

// CleanupInterface releases this side's reference to the shared
// transport state and, once both siblings (if any) have done so, runs
// the host-supplied Cleanup hook exactly once — the Go analogue of
// cleanup_tcp's donewith-gated free, expressed as a real refcount (see
// DESIGN.md, Open Questions #1).
func (ifc *Interface) CleanupInterface() {
	last := true
	if ifc.State != nil {
		last = ifc.State.Release()
	}
	if last && ifc.Cleanup != nil {
		ifc.Cleanup(ifc)
	}
}

// WireTransport installs the blocking read/write callbacks against
// ifc.State. Exported so the server package (C8) can wire each spawned
// peer without iface depending on server in turn.
func WireTransport(ifc *Interface) {
	wireCallbacks(ifc)
}

func wireCallbacks(ifc *Interface) {
	rec := metrics.ForInterface(ifc.ID)

	ifc.Read = func(ctx context.Context, target *Interface, buf []byte) (int, liberr.Error) {
		n, err := transport.Read(ctx, target.State, buf, target.log)
		rec.BytesRead(n)
		if target.State != nil && target.State.Shared != nil {
			rec.SetCritical(target.State.Shared.CriticalCount())
		}
		if err != nil && liberr.Is(err, transport.ErrorTerminal) {
			rec.ReconnectTerminal()
		}
		return n, err
	}
	ifc.Write = func(ctx context.Context, target *Interface) liberr.Error {
		var tag transport.TagFunc
		if target.TagOutput {
			tag = target.Tag
		}
		err := transport.Write(ctx, target.State, target.Queue, tag, target.log)
		if target.State != nil && target.State.Shared != nil {
			rec.SetCritical(target.State.Shared.CriticalCount())
		}
		if err != nil && liberr.Is(err, transport.ErrorTerminal) {
			rec.ReconnectTerminal()
		}
		return err
	}
}
