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

import (
	"context"
	"net"
	"time"

	liberr "github.com/kplexd/tcpiface/errors"
	"github.com/kplexd/tcpiface/logger"
)

// Read blocks until one non-empty chunk is available on st, or the
// interface reaches a terminal failure. Non-persistent interfaces
// (st.Shared == nil) propagate EOF/error directly. Persistent
// interfaces wrap each attempt in the critical region and, on fault,
// run the reader-specific recovery variant (reread, §4.4) before
// retrying the outer loop.
func Read(ctx context.Context, st *State, buf []byte, log logger.Logger) (int, liberr.Error) {
	if st.Shared == nil {
		n, err := st.Conn.Read(buf)
		if err != nil {
			return 0, ErrorRead.Error(err)
		}
		return n, nil
	}

	s := st.Shared
	for {
		conn, ok := s.enter()
		if !ok {
			return 0, ErrorTerminal.Error(nil)
		}

		n, rerr := conn.Read(buf)
		if rerr == nil && n > 0 {
			s.exit()
			return n, nil
		}

		// Reader-specific optimization (reread): a read error (or a
		// 0-byte EOF from an unblocked keepalive probe) might just mean
		// a signal interrupted the call while data was already queued
		// in the kernel receive buffer. Try once more, briefly, before
		// paying for the full fault-recovery handshake. This check
		// happens outside the mutex: it doesn't coordinate with the
		// sibling, it only avoids waking it for a spurious fault.
		if n2, ok2 := tryQuickReread(conn, buf); ok2 {
			s.exit()
			return n2, nil
		}

		if log != nil {
			log.Warn("read fault, entering recovery", logger.F("err", rerr))
		}

		terminal := s.recover(s.reread(ctx, log))
		if terminal {
			return 0, ErrorTerminal.Error(rerr)
		}
		// loop: re-enter the critical region against the (possibly new)
		// connection and try again.
	}
}

// tryQuickReread briefly arms a read deadline and attempts one more
// read, the portable analogue of reread()'s "set O_NONBLOCK, read
// once, restore blocking mode": if data was already queued in the
// kernel receive buffer, this succeeds without reconnecting.
func tryQuickReread(conn *net.TCPConn, buf []byte) (int, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	defer conn.SetReadDeadline(time.Time{})

	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// reread builds the reader's recovery adapter: resolve+connect with
// the shared retry policy, tune and send the preamble on success.
func (s *Shared) reread(ctx context.Context, log logger.Logger) func() (*net.TCPConn, bool) {
	return func() (*net.TCPConn, bool) {
		conn, err := Connect(ctx, ConnectParams{
			Host:        s.Host,
			Port:        s.Port,
			Retry:       s.Retry.Delay,
			Persist:     s.Persist,
			DialTimeout: s.Retry.DialTimeout,
		})
		if err != nil {
			if log != nil {
				log.Error("reread: reconnect failed permanently", logger.F("err", err))
			}
			return nil, false
		}

		if ferr := FinishConnect(conn, s.NoDelay, s.Sockopt, s.Preamble, log); ferr != nil {
			if log != nil {
				log.Error("reread: keepalive/preamble setup failed, reconnect rejected", logger.F("err", ferr))
			}
			_ = conn.Close()
			return nil, false
		}
		return conn, true
	}
}
