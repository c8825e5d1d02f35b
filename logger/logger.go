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

// Package logger provides the structured logging surface every other
// package in this module logs through: read/write faults entering
// recovery, failed reconnects, socket-tuning failures and accept
// failures are logged through it. Connect's own resolve/dial retries
// are not logged.
package logger

import (
	"github.com/sirupsen/logrus"
)

// Field is one structured key/value attached to a log entry.
type Field struct {
	Key string
	Val interface{}
}

// F builds a Field inline: logger.F("fd", fd).
func F(key string, val interface{}) Field {
	return Field{Key: key, Val: val}
}

// Logger is the minimal structured-logging contract this module's
// packages depend on.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithIface returns a Logger that tags every entry with the owning
	// interface's id and name, the way a request-scoped logger tags a
	// trace id.
	WithIface(id uint16, name string) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New wraps l as a Logger. A nil l falls back to logrus.StandardLogger().
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (g *logrusLogger) with(fields []Field) *logrus.Entry {
	if len(fields) == 0 {
		return g.entry
	}

	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Val
	}
	return g.entry.WithFields(data)
}

func (g *logrusLogger) Debug(msg string, fields ...Field) { g.with(fields).Debug(msg) }
func (g *logrusLogger) Info(msg string, fields ...Field)  { g.with(fields).Info(msg) }
func (g *logrusLogger) Warn(msg string, fields ...Field)  { g.with(fields).Warn(msg) }
func (g *logrusLogger) Error(msg string, fields ...Field) { g.with(fields).Error(msg) }

func (g *logrusLogger) WithIface(id uint16, name string) Logger {
	return &logrusLogger{entry: g.entry.WithFields(logrus.Fields{
		"iface_id":   id,
		"iface_name": name,
	})}
}

// Nop returns a Logger that discards everything, for tests and for
// callers that have not wired a real sink yet.
func Nop() Logger {
	l := logrus.New()
	l.SetOutput(discard{})
	return New(l)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
