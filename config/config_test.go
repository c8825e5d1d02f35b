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

package config_test

import (
	"testing"

	"github.com/kplexd/tcpiface/config"
)

func TestValidate_GPSDAndPreambleMutuallyExclusive(t *testing.T) {
	o := &config.Options{
		Address:  "127.0.0.1",
		Mode:     config.ModeClient,
		GPSD:     true,
		Preamble: `\x01`,
	}
	if err := o.Validate(); err == nil {
		t.Fatal("expected validation error for gpsd+preamble")
	}
}

func TestValidate_PreambleInvalidForServer(t *testing.T) {
	o := &config.Options{
		Mode:     config.ModeServer,
		Preamble: `\x01`,
	}
	if err := o.Validate(); err == nil {
		t.Fatal("expected validation error for server+preamble")
	}
}

func TestValidate_PersistInvalidForServer(t *testing.T) {
	o := &config.Options{
		Mode:    config.ModeServer,
		Persist: true,
	}
	if err := o.Validate(); err == nil {
		t.Fatal("expected validation error for server+persist")
	}
}

func TestValidate_ClientRequiresAddress(t *testing.T) {
	o := &config.Options{
		Mode: config.ModeClient,
	}
	if err := o.Validate(); err == nil {
		t.Fatal("expected validation error for missing address")
	}
}

func TestValidate_MinimalClientOK(t *testing.T) {
	o := &config.Options{
		Address: "127.0.0.1",
		Mode:    config.ModeClient,
	}
	if err := o.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
