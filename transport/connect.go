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
	"fmt"
	"io"
	"net"
	"time"

	liberr "github.com/kplexd/tcpiface/errors"
	"github.com/kplexd/tcpiface/logger"
	"github.com/kplexd/tcpiface/preamble"
	"github.com/kplexd/tcpiface/sockopt"
)

// ConnectParams is everything do_connect needs to resolve an address
// and open one stream socket (§4.3).
type ConnectParams struct {
	Host string
	Port string

	// Retry is the delay between attempts. Zero means no delay (still
	// legal for Persist=false, where it is never used).
	Retry time.Duration

	// Persist makes resolution and connection retry indefinitely
	// instead of failing after one pass over the candidate addresses.
	Persist bool

	Resolver    *net.Resolver
	DialTimeout time.Duration

	// Sleep is injectable so tests don't actually wait out Retry.
	Sleep func(time.Duration)
}

func (p ConnectParams) resolver() *net.Resolver {
	if p.Resolver != nil {
		return p.Resolver
	}
	return net.DefaultResolver
}

func (p ConnectParams) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (p ConnectParams) dialTimeout() time.Duration {
	if p.DialTimeout > 0 {
		return p.DialTimeout
	}
	return 10 * time.Second
}

// Connect resolves host:port for AF_UNSPEC/SOCK_STREAM, iterates the
// candidate addresses and opens the first one that accepts a
// connection. Transient resolver errors (temporary, not-found, or
// timeout — the Go analogues of EAI_AGAIN/EAI_NONAME/EAI_SYSTEM) retry
// with Retry when Persist is set; any other resolver error is returned
// at once, Persist or not. Exhausting every candidate address is
// permanent unless Persist is set, in which case the whole
// resolve+connect cycle restarts after Retry.
//
// Callers invoking Connect from the recovery protocol (§4.4) are
// expected to hold Shared.mu only around the bookkeeping, never across
// this call: Connect may sleep for Retry on every iteration, and a
// mutex held across that sleep would starve the paired sibling.
func Connect(ctx context.Context, p ConnectParams) (*net.TCPConn, liberr.Error) {
	for {
		ips, err := p.resolver().LookupHost(ctx, p.Host)
		if err != nil {
			if p.Persist && isTransientResolveErr(err) {
				p.sleep(p.Retry)
				continue
			}
			return nil, ErrorResolve.Error(err)
		}

		for _, ip := range ips {
			addr := net.JoinHostPort(ip, p.Port)
			conn, derr := net.DialTimeout("tcp", addr, p.dialTimeout())
			if derr == nil {
				return conn.(*net.TCPConn), nil
			}
		}

		if !p.Persist {
			return nil, ErrorConnect.Error(fmt.Errorf("no address reachable for %s:%s", p.Host, p.Port))
		}
		p.sleep(p.Retry)
	}
}

func isTransientResolveErr(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsNotFound || dnsErr.IsTimeout
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// FinishConnect applies the post-connect sequence common to the
// initial connect and every reconnection: TCP_NODELAY, socket tuning
// (C2), and the configured preamble. Only sockopt.ErrorKeepaliveEnable
// and a preamble write failure are escalated to the caller; every
// other tuning sub-failure (send timeout, send buffer) is logged here
// and otherwise ignored, per §4.2 — the socket stays usable without
// those knobs set.
func FinishConnect(conn *net.TCPConn, nodelay bool, sp sockopt.Params, pre []byte, log logger.Logger) liberr.Error {
	if nodelay {
		_ = conn.SetNoDelay(true)
	}

	if err := sockopt.Tune(conn, sp); err != nil {
		if liberr.Is(err, sockopt.ErrorKeepaliveEnable) {
			return err
		}
		if log != nil {
			log.Warn("socket tuning failed, continuing without it", logger.F("err", err))
		}
	}

	if len(pre) > 0 {
		if err := preamble.Send(io.Writer(conn), pre); err != nil {
			return err
		}
	}

	return nil
}
