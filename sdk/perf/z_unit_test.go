// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package perf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/dicelab/errs"
)

func TestRunModes(t *testing.T) {
	dir := t.TempDir()
	calls := 0
	exe := func() error { calls++; return nil }

	for _, mode := range []string{"", "cpu", "heap", "allocs"} {
		if err := Run(exe, mode, dir); err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
	}
	if calls != 4 {
		t.Fatalf("exe should run once per mode, got %d", calls)
	}
	for _, f := range []string{"cpu.pprof", "heap.pprof", "allocs.pprof"} {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			t.Fatalf("%s missing: %v", f, err)
		}
	}
}

func TestRunUnknownMode(t *testing.T) {
	called := false
	err := Run(func() error { called = true; return nil }, "block", t.TempDir())
	if !errors.Is(err, errs.Validation) || called {
		t.Fatalf("unknown mode should fail before running: %v %v", err, called)
	}
}

func TestRunPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	if err := Run(func() error { return boom }, "heap", t.TempDir()); !errors.Is(err, boom) {
		t.Fatalf("exe error should propagate, got %v", err)
	}
}
