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

// Package metrics registers the Prometheus collectors a running
// interface reports against: reconnect attempts and failures, bytes
// moved in each direction, accepted connections, and the live
// "critical" count on the paired fault-recovery protocol. Components
// fetch their per-interface recorder with ForInterface and report
// against it directly; this package owns only collector registration
// and label plumbing.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tcpiface"

var (
	reconnectAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconnect_attempts_total",
		Help:      "Reconnect attempts made by a persistent interface's fault-recovery protocol.",
	}, []string{"iface"})

	reconnectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconnect_terminal_total",
		Help:      "Times a persistent interface's reconnect loop reached the sticky terminal state.",
	}, []string{"iface"})

	bytesRead = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_read_total",
		Help:      "Bytes read from the peer socket.",
	}, []string{"iface"})

	bytesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_written_total",
		Help:      "Bytes written to the peer socket.",
	}, []string{"iface"})

	connectionsAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_accepted_total",
		Help:      "Connections accepted by a server-role interface's acceptor.",
	}, []string{"iface"})

	criticalGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "critical_current",
		Help:      "Current count of goroutines inside a paired interface's critical I/O region (0-2).",
	}, []string{"iface"})
)

func init() {
	prometheus.MustRegister(
		reconnectAttempts,
		reconnectFailures,
		bytesRead,
		bytesWritten,
		connectionsAccepted,
		criticalGauge,
	)
}

// Recorder is the per-interface handle components hold onto and report
// against; it exists so callers don't repeat the "iface" label on every
// call site.
type Recorder struct {
	label string
}

// ForInterface returns the Recorder for interface id. Collectors are
// created lazily by the label, so calling this repeatedly for the same
// id is cheap and returns equivalent series.
func ForInterface(id uint16) Recorder {
	return Recorder{label: strconv.Itoa(int(id))}
}

func (r Recorder) ReconnectAttempt() {
	reconnectAttempts.WithLabelValues(r.label).Inc()
}

func (r Recorder) ReconnectTerminal() {
	reconnectFailures.WithLabelValues(r.label).Inc()
}

func (r Recorder) BytesRead(n int) {
	if n > 0 {
		bytesRead.WithLabelValues(r.label).Add(float64(n))
	}
}

func (r Recorder) BytesWritten(n int) {
	if n > 0 {
		bytesWritten.WithLabelValues(r.label).Add(float64(n))
	}
}

func (r Recorder) ConnectionAccepted() {
	connectionsAccepted.WithLabelValues(r.label).Inc()
}

func (r Recorder) SetCritical(n int) {
	criticalGauge.WithLabelValues(r.label).Set(float64(n))
}
