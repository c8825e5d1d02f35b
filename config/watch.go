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

package config

import (
	"github.com/fsnotify/fsnotify"

	liberr "github.com/kplexd/tcpiface/errors"
)

// Watch reloads path on every write event and invokes onChange with the
// newly parsed, defaulted and validated Options. Only the retry and
// keepalive knobs are meaningful to change on a live interface (the
// recovery protocol reads Shared.Retry/Sockopt on every reconnect
// attempt); address/mode/direction changes are reported to onChange
// like any other but applying them is the caller's responsibility
// (typically: tear down and reconstruct the Interface).
func Watch(path string, onChange func(*Options)) (stop func() error, err liberr.Error) {
	watcher, werr := fsnotify.NewWatcher()
	if werr != nil {
		return nil, ErrorLoad.Error(werr)
	}

	if werr := watcher.Add(path); werr != nil {
		_ = watcher.Close()
		return nil, ErrorLoad.Error(werr)
	}

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if o, lerr := Load(path); lerr == nil {
					onChange(o)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}
