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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_CountersIncrement(t *testing.T) {
	const label = "9001"
	rec := ForInterface(9001)

	rec.ReconnectAttempt()
	rec.ReconnectAttempt()
	rec.ReconnectTerminal()
	rec.BytesRead(128)
	rec.BytesRead(0) // must not register a zero-byte sample
	rec.ConnectionAccepted()
	rec.SetCritical(2)

	if got := testutil.ToFloat64(reconnectAttempts.WithLabelValues(label)); got != 2 {
		t.Fatalf("reconnect attempts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(reconnectFailures.WithLabelValues(label)); got != 1 {
		t.Fatalf("reconnect terminal = %v, want 1", got)
	}
	if got := testutil.ToFloat64(bytesRead.WithLabelValues(label)); got != 128 {
		t.Fatalf("bytes read = %v, want 128", got)
	}
	if got := testutil.ToFloat64(connectionsAccepted.WithLabelValues(label)); got != 1 {
		t.Fatalf("connections accepted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(criticalGauge.WithLabelValues(label)); got != 2 {
		t.Fatalf("critical gauge = %v, want 2", got)
	}
}

func TestForInterface_DistinctLabelsDoNotShare(t *testing.T) {
	a := ForInterface(1)
	b := ForInterface(2)

	a.ReconnectAttempt()

	if got := testutil.ToFloat64(reconnectAttempts.WithLabelValues("2")); got != 0 {
		t.Fatalf("interface 2's counter should be untouched by interface 1's recorder, got %v", got)
	}
	_ = b
}
