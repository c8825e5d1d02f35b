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

// Package queue models the message-queue collaborator the transport
// core consumes but does not own: next_senblk/senblk_free/flush_queue/
// init_q in the original source. The core only ever sees the Queue
// interface; Chan is one in-memory implementation so the module runs
// standalone.
package queue

import "context"

// Message is one outbound or inbound line-oriented payload.
type Message struct {
	Data []byte
}

// Queue is the external collaborator the write path drains and the
// host's ingest path feeds. Next blocks until a message is available,
// the queue is closed, or ctx is done.
type Queue interface {
	// Next blocks for the next message. ok is false when the queue has
	// been permanently closed or ctx is done; a Flush does not close the
	// queue, it only discards whatever was currently buffered.
	Next(ctx context.Context) (msg *Message, ok bool)

	// Free releases a message obtained from Next.
	Free(msg *Message)

	// Flush discards any currently buffered messages without closing
	// the queue, per the write-side reconnect policy: messages produced
	// during an outage are dropped, not replayed.
	Flush()
}

// Chan is a channel-backed Queue.
type Chan struct {
	ch     chan *Message
	closed chan struct{}
}

// NewChan builds a Chan with the given buffer size (the interface's
// configured queue size).
func NewChan(size int) *Chan {
	if size < 0 {
		size = 0
	}
	return &Chan{
		ch:     make(chan *Message, size),
		closed: make(chan struct{}),
	}
}

// Push enqueues a message, blocking while the buffer is full. A message
// pushed after Close is discarded.
func (c *Chan) Push(msg *Message) {
	select {
	case <-c.closed:
		return
	default:
	}
	c.ch <- msg
}

func (c *Chan) Next(ctx context.Context) (*Message, bool) {
	// Hand out anything already buffered before honouring Close, so a
	// closed queue is drained rather than cut off.
	select {
	case msg := <-c.ch:
		return msg, true
	default:
	}

	select {
	case msg, ok := <-c.ch:
		if !ok {
			return nil, false
		}
		return msg, true
	case <-c.closed:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// Free is a no-op here: this implementation keeps no pool to return
// messages to.
func (c *Chan) Free(*Message) {}

// Flush drains whatever is currently buffered without closing the
// channel.
func (c *Chan) Flush() {
	for {
		select {
		case <-c.ch:
		default:
			return
		}
	}
}

// Close permanently closes the queue; a subsequent Next returns
// ok=false once drained.
func (c *Chan) Close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}
