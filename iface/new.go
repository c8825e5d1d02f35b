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

package iface

import (
	"context"
	"sync"
	"time"

	"github.com/kplexd/tcpiface/config"
	liberr "github.com/kplexd/tcpiface/errors"
	"github.com/kplexd/tcpiface/logger"
	"github.com/kplexd/tcpiface/metrics"
	"github.com/kplexd/tcpiface/preamble"
	"github.com/kplexd/tcpiface/queue"
	"github.com/kplexd/tcpiface/sockopt"
	"github.com/kplexd/tcpiface/transport"
)

// New builds an Interface from parsed options (§4.8), resolves its
// role, and wires it up:
//
//   - client, initial connect succeeded: blocking read/write callbacks,
//     preamble already sent, sibling pair duplicated for BOTH.
//   - client, initial connect failed but InstantPersist set: deferred-
//     connect callbacks installed on both slots instead of failing.
//   - server: no connection attempted here; the record is handed to the
//     server package, which owns the accept loop and peer spawning.
func New(ctx context.Context, opts *config.Options, q queue.Queue, log logger.Logger) (*Interface, liberr.Error) {
	dir := parseDirection(opts.Direction, opts.Mode)

	pre, perr := parsePreamble(opts)
	if perr != nil {
		return nil, perr
	}

	ifc := &Interface{
		Name:      opts.Address,
		Direction: dir,
		Queue:     q,
		log:       log,

		Persist:        opts.Persist,
		InstantPersist: opts.InstantPersist,
		TagOutput:      false,
	}

	if opts.Mode == config.ModeServer {
		// The acceptor callback is installed by the server package, not
		// here, to avoid iface depending on server (server already
		// depends on iface to spawn peers).
		return ifc, nil
	}

	sp := sockoptParams(opts)
	retry := transport.ConnectRetry{
		Delay:       time.Duration(opts.Retry) * time.Second,
		DialTimeout: 10 * time.Second,
	}
	nodelay := opts.NoDelay == nil || *opts.NoDelay

	if !opts.Persist {
		conn, cerr := transport.Connect(ctx, transport.ConnectParams{
			Host: opts.Address,
			Port: opts.Port,
		})
		if cerr != nil {
			return nil, cerr
		}
		if ferr := transport.FinishConnect(conn, nodelay, sockopt.Params{}, pre, log); ferr != nil {
			return nil, ferr
		}

		ifc.State = transport.NewSimplex(conn)
		wireCallbacks(ifc)

		if dir == DirBoth {
			shared := transport.NewShared(opts.Address, opts.Port, false, retry, sockopt.Params{}, nodelay, pre)
			rec := metrics.ForInterface(ifc.ID)
			shared.OnReconnectAttempt = rec.ReconnectAttempt
			shared.SetConn(conn)
			ifc.State = transport.NewStateFromShared(shared)
			ifc.Direction = DirOut
			ifc.Dup(DirIn, q)
		}

		return ifc, nil
	}

	shared := transport.NewShared(opts.Address, opts.Port, true, retry, sp, nodelay, pre)
	shared.OnReconnectAttempt = metrics.ForInterface(ifc.ID).ReconnectAttempt

	conn, cerr := transport.Connect(ctx, transport.ConnectParams{
		Host:        opts.Address,
		Port:        opts.Port,
		Persist:     false, // initial attempt from init is single-pass; retry is the recovery protocol's job thereafter
		DialTimeout: 10 * time.Second,
	})
	if cerr != nil {
		if opts.InstantPersist {
			ifc.State = transport.NewStateFromShared(shared)
			installDeferredConnect(ifc, shared, retry, log)
			return ifc, nil
		}
		return nil, cerr
	}

	if ferr := transport.FinishConnect(conn, nodelay, sp, pre, log); ferr != nil {
		return nil, ferr
	}
	shared.SetConn(conn)
	ifc.State = transport.NewStateFromShared(shared)
	wireCallbacks(ifc)

	if dir == DirBoth {
		ifc.Direction = DirOut
		ifc.Dup(DirIn, q)
	}

	return ifc, nil
}

// installDeferredConnect wires both callback slots to a thunk that
// performs the resolve+connect (with full persist retry this time)
// before entering the normal I/O loop — the §4.8 "client, initial
// connect failed but instant-persist set" path. The connect is
// serialised: when both slots start at once, only the first connects
// and the other waits for it and then uses that connection.
func installDeferredConnect(ifc *Interface, shared *transport.Shared, retry transport.ConnectRetry, log logger.Logger) {
	var connectMu sync.Mutex
	connectOnce := func(ctx context.Context) liberr.Error {
		connectMu.Lock()
		defer connectMu.Unlock()
		if shared.Connected() {
			return nil
		}

		conn, err := transport.Connect(ctx, transport.ConnectParams{
			Host:        shared.Host,
			Port:        shared.Port,
			Retry:       retry.Delay,
			Persist:     true,
			DialTimeout: retry.DialTimeout,
		})
		if err != nil {
			return err
		}
		if ferr := transport.FinishConnect(conn, shared.NoDelay, shared.Sockopt, shared.Preamble, log); ferr != nil {
			return ferr
		}
		shared.SetConn(conn)
		return nil
	}

	ifc.Read = func(ctx context.Context, target *Interface, buf []byte) (int, liberr.Error) {
		if !shared.Connected() {
			if err := connectOnce(ctx); err != nil {
				return 0, err
			}
			wireCallbacks(target)
		}
		return transport.Read(ctx, target.State, buf, target.log)
	}
	ifc.Write = func(ctx context.Context, target *Interface) liberr.Error {
		if !shared.Connected() {
			if err := connectOnce(ctx); err != nil {
				return err
			}
			wireCallbacks(target)
		}
		return target.Write(ctx, target)
	}
}

func parseDirection(raw string, mode config.Mode) Direction {
	switch raw {
	case "in":
		return DirIn
	case "out":
		return DirOut
	case "both":
		return DirBoth
	}
	if mode == config.ModeServer {
		return DirIn
	}
	return DirOut
}

func parsePreamble(opts *config.Options) ([]byte, liberr.Error) {
	if opts.GPSD {
		return []byte(preamble.GPSDWatch), nil
	}
	if opts.Preamble == "" {
		return nil, nil
	}
	if opts.Mode == config.ModeServer {
		return nil, ErrorOption.Error(nil)
	}
	b, err := preamble.Parse(opts.Preamble)
	if err != nil {
		return nil, ErrorPreamble.ErrorParent(err)
	}
	return b, nil
}

func sockoptParams(opts *config.Options) sockopt.Params {
	sp := sockopt.Params{}

	if opts.Keepalive != nil {
		if *opts.Keepalive {
			sp.Keepalive = sockopt.On
		} else {
			sp.Keepalive = sockopt.Off
		}
	}
	sp.KeepIdle = time.Duration(opts.KeepIdle) * time.Second
	sp.KeepIntvl = time.Duration(opts.KeepIntvl) * time.Second
	sp.KeepCnt = opts.KeepCnt
	sp.SndTimeout = time.Duration(opts.Timeout) * time.Second
	sp.SndBuf = opts.SndBuf
	sp.NoDelay = opts.NoDelay != nil && *opts.NoDelay

	return sp
}
