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
	"errors"
	"net"
	"os"
	"time"

	liberr "github.com/kplexd/tcpiface/errors"
	"github.com/kplexd/tcpiface/logger"
	"github.com/kplexd/tcpiface/queue"
)

// TagFunc formats the scatter/gather tag prefix for one message. A
// non-nil error disables tagging for the remainder of this interface's
// life (the caller folds that decision in, not TagFunc itself).
type TagFunc func(msg *queue.Message) ([]byte, error)

// Write drains q until it is closed or the interface reaches a
// terminal failure, writing each message to st. When tag is non-nil,
// each write uses two-segment scatter/gather (tag | payload); if tag
// ever fails, tagging is disabled permanently for the rest of this
// call and writes continue payload-only.
func Write(ctx context.Context, st *State, q queue.Queue, tag TagFunc, log logger.Logger) liberr.Error {
	for {
		msg, ok := q.Next(ctx)
		if !ok {
			return nil
		}

		err := writeOne(ctx, st, q, msg, &tag, log)
		q.Free(msg)
		if err != nil {
			return err
		}
	}
}

func writeOne(ctx context.Context, st *State, q queue.Queue, msg *queue.Message, tag *TagFunc, log logger.Logger) liberr.Error {
	if st.Shared == nil {
		_, err := writevMsg(st.Conn, msg, tag)
		if err != nil {
			return ErrorWrite.Error(err)
		}
		return nil
	}

	s := st.Shared
	for {
		conn, ok := s.enter()
		if !ok {
			return ErrorTerminal.Error(nil)
		}

		n, werr := writevMsg(conn, msg, tag)
		if werr == nil && n > 0 {
			s.exit()
			return nil
		}

		timedOut := isTimeout(werr)
		if log != nil {
			log.Warn("write fault, entering recovery", logger.F("err", werr), logger.F("timeout", timedOut))
		}

		terminal := s.recover(s.reconnectForWrite(ctx, q, timedOut, log))
		if terminal {
			return ErrorTerminal.Error(werr)
		}
		// loop: retry this same message against the new connection.
	}
}

func writevMsg(conn *net.TCPConn, msg *queue.Message, tag *TagFunc) (int, error) {
	if tag == nil || *tag == nil {
		return conn.Write(msg.Data)
	}

	prefix, terr := (*tag)(msg)
	if terr != nil {
		// Tag formatting failed: disable tagging permanently for the
		// rest of this interface's life, but keep sending payload-only.
		*tag = nil
		return conn.Write(msg.Data)
	}

	buffers := net.Buffers{prefix, msg.Data}
	n64, werr := buffers.WriteTo(conn)
	return int(n64), werr
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}

// reconnectForWrite builds the writer's recovery adapter (reconnect()
// in tcp.c): sleeps Retry before retrying unless the fault was a send
// timeout (EAGAIN equivalent), in which case it retries immediately;
// flushes the interface queue on successful reconnect so messages
// produced during the outage are dropped, per the documented
// most-recent-is-what-matters policy.
func (s *Shared) reconnectForWrite(ctx context.Context, q queue.Queue, skipInitialSleep bool, log logger.Logger) func() (*net.TCPConn, bool) {
	return func() (*net.TCPConn, bool) {
		if !skipInitialSleep && s.Retry.Delay > 0 {
			time.Sleep(s.Retry.Delay)
		}

		conn, err := Connect(ctx, ConnectParams{
			Host:        s.Host,
			Port:        s.Port,
			Retry:       s.Retry.Delay,
			Persist:     s.Persist,
			DialTimeout: s.Retry.DialTimeout,
		})
		if err != nil {
			if log != nil {
				log.Error("reconnect failed permanently", logger.F("err", err))
			}
			return nil, false
		}

		if ferr := FinishConnect(conn, s.NoDelay, s.Sockopt, s.Preamble, log); ferr != nil {
			if log != nil {
				log.Error("reconnect: keepalive/preamble setup failed, reconnect rejected", logger.F("err", ferr))
			}
			_ = conn.Close()
			return nil, false
		}

		q.Flush()
		return conn, true
	}
}
