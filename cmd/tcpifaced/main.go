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

// Command tcpifaced runs one TCP transport interface standalone: a
// client dialing out, or a server accepting peers. It exists so the
// core packages are reachable from a real binary rather than tests
// alone; a host embedding this module as a library would wire iface.New
// and server.Acceptor directly instead of going through this CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kplexd/tcpiface/config"
	"github.com/kplexd/tcpiface/iface"
	"github.com/kplexd/tcpiface/logger"
	"github.com/kplexd/tcpiface/queue"
	"github.com/kplexd/tcpiface/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		color.Red("tcpifaced: %v", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "tcpifaced",
		Short: "Persistent bidirectional TCP transport interface for NMEA-0183 routing",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a config file (yaml/json/toml)")

	root.AddCommand(newClientCommand(&cfgPath), newServerCommand(&cfgPath))
	return root
}

func newClientCommand(cfgPath *string) *cobra.Command {
	opts := &config.Options{Mode: config.ModeClient}

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Connect out to a remote NMEA-0183 TCP source/sink",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandalone(cmd.Context(), *cfgPath, opts)
		},
	}
	bindClientFlags(cmd, opts)
	return cmd
}

func newServerCommand(cfgPath *string) *cobra.Command {
	opts := &config.Options{Mode: config.ModeServer}

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Accept inbound NMEA-0183 TCP connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStandalone(cmd.Context(), *cfgPath, opts)
		},
	}
	bindServerFlags(cmd, opts)
	return cmd
}

func bindClientFlags(cmd *cobra.Command, opts *config.Options) {
	cmd.Flags().StringVar(&opts.Address, "address", "", "remote host to dial")
	cmd.Flags().StringVar(&opts.Port, "port", "", "remote port (default "+config.DefaultPort+")")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "in, out, or both")
	cmd.Flags().BoolVar(&opts.Persist, "persist", false, "retry indefinitely on connection loss")
	cmd.Flags().BoolVar(&opts.InstantPersist, "ipersist", false, "do not fail startup if the initial connect fails")
	cmd.Flags().IntVar(&opts.Retry, "retry", 0, "seconds between reconnect attempts")
	cmd.Flags().IntVar(&opts.Timeout, "timeout", 0, "send timeout in seconds")
	cmd.Flags().IntVar(&opts.SndBuf, "sndbuf", 0, "SO_SNDBUF size in bytes")
	cmd.Flags().BoolVar(&opts.GPSD, "gpsd", false, "send the gpsd ?WATCH preamble on connect")
	cmd.Flags().StringVar(&opts.Preamble, "preamble", "", "literal preamble to send on connect")
	cmd.Flags().IntVar(&opts.QueueSize, "queuesize", 64, "outbound queue buffer size")
}

func bindServerFlags(cmd *cobra.Command, opts *config.Options) {
	cmd.Flags().StringVar(&opts.Address, "address", "", "address to bind (empty means all interfaces)")
	cmd.Flags().StringVar(&opts.Port, "port", "", "port to bind (default "+config.DefaultPort+")")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "in, out, or both")
	cmd.Flags().IntVar(&opts.QueueSize, "queuesize", 64, "per-connection outbound queue buffer size")
}

// runStandalone builds one Interface from opts (optionally overridden
// by --config), starts its I/O loop (client) or acceptor (server), and
// blocks until SIGINT/SIGTERM.
func runStandalone(ctx context.Context, cfgPath string, flagOpts *config.Options) error {
	opts := flagOpts
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		opts = loaded
	} else {
		opts.Port = defaultedPort(opts)
		if verr := opts.Validate(); verr != nil {
			return fmt.Errorf("validating flags: %w", verr)
		}
	}

	log := logger.New(logrus.StandardLogger())
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	q := queue.NewChan(opts.QueueSize)

	if opts.Mode == config.ModeServer {
		return runServer(ctx, opts, q, log)
	}
	return runClient(ctx, opts, q, log)
}

func runClient(ctx context.Context, opts *config.Options, q queue.Queue, log logger.Logger) error {
	ifc, err := iface.New(ctx, opts, q, log)
	if err != nil {
		return fmt.Errorf("starting client interface: %w", err)
	}

	color.Green("tcpifaced: connected to %s:%s (direction=%s, persist=%v)", opts.Address, opts.Port, ifc.Direction, opts.Persist)

	runInterface(ctx, ifc, log)
	if ifc.Sibling != nil {
		runInterface(ctx, ifc.Sibling, log)
	}

	<-ctx.Done()
	return nil
}

func runServer(ctx context.Context, opts *config.Options, q queue.Queue, log logger.Logger) error {
	parent, err := iface.New(ctx, opts, q, log)
	if err != nil {
		return fmt.Errorf("building server interface: %w", err)
	}

	addr := opts.Address + ":" + opts.Port
	ln, lerr := server.Listen(addr)
	if lerr != nil {
		return fmt.Errorf("listening on %s: %w", addr, lerr)
	}

	a := &server.Acceptor{
		Parent:      parent,
		IngestQueue: q,
		Log:         log,
		OnPeer: func(peer *iface.Interface) {
			runInterface(ctx, peer, log)
		},
	}

	color.Green("tcpifaced: listening on %s (direction=%s)", addr, parent.Direction)

	go func() {
		<-ctx.Done()
		a.Stop()
	}()

	if serr := a.Serve(ctx, ln); serr != nil {
		return fmt.Errorf("accept loop: %w", serr)
	}
	return nil
}

// runInterface starts ifc's blocking read and/or write loop in its own
// goroutine(s), logging and returning on a terminal failure rather than
// ever panicking the process.
func runInterface(ctx context.Context, ifc *iface.Interface, log logger.Logger) {
	switch ifc.Direction {
	case iface.DirIn:
		go readLoop(ctx, ifc, log)
	case iface.DirOut:
		go writeLoop(ctx, ifc, log)
	case iface.DirBoth:
		go readLoop(ctx, ifc, log)
		go writeLoop(ctx, ifc, log)
	}
}

func readLoop(ctx context.Context, ifc *iface.Interface, log logger.Logger) {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := ifc.Read(ctx, ifc, buf)
		if err != nil {
			log.Error("interface read terminated", logger.F("iface", ifc.ID), logger.F("err", err))
			return
		}
		if pusher, ok := ifc.Queue.(interface{ Push(*queue.Message) }); ok && n > 0 {
			msg := make([]byte, n)
			copy(msg, buf[:n])
			pusher.Push(&queue.Message{Data: msg})
		}
	}
}

func writeLoop(ctx context.Context, ifc *iface.Interface, log logger.Logger) {
	if err := ifc.Write(ctx, ifc); err != nil {
		log.Error("interface write terminated", logger.F("iface", ifc.ID), logger.F("err", err))
	}
}

func defaultedPort(opts *config.Options) string {
	if opts.Port != "" {
		return opts.Port
	}
	if opts.GPSD {
		return config.DefaultGPSDPort
	}
	return config.DefaultPort
}
