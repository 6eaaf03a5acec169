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

// Package perf 包裝 runtime/pprof，讓 CLI 能以單一旗標對一次模擬做 profiling。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/dicelab/errs"
)

// DefaultDir pprof 檔案寫入路徑
const DefaultDir = "build/profiling"

// Run 依 mode 執行 exe：""（不 profiling）、cpu、heap、allocs。
//
// 輸出檔為 dir/<mode>.pprof；未知 mode 回傳 Validation 且不執行 exe。
func Run(exe func() error, mode string, dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "":
		return exe()
	case "cpu":
		return cpu(exe, dir)
	case "heap", "allocs":
		return snapshot(exe, mode, dir)
	default:
		return errs.Kindf(errs.Validation, "unknown pprof mode %q ('', cpu, heap, allocs)", mode)
	}
}

func create(dir, mode string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create pprof dir")
	}
	f, err := os.Create(filepath.Join(dir, mode+".pprof"))
	if err != nil {
		return nil, errs.Wrap(err, "create "+mode+".pprof")
	}
	return f, nil
}

// cpu profile 涵蓋整個 exe；輸出也可當作 pgo 的 default.pgo
func cpu(exe func() error, dir string) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// heap 為 exe 結束後的 in-use 快照（先 GC）；allocs 為累積配置。
func snapshot(exe func() error, mode string, dir string) error {
	if err := exe(); err != nil {
		return err
	}
	f, err := create(dir, mode)
	if err != nil {
		return err
	}
	defer f.Close()
	if mode == "heap" {
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return errs.Wrap(err, "write heap profile")
		}
		return nil
	}
	if prof := pprof.Lookup("allocs"); prof != nil {
		if err := prof.WriteTo(f, 0); err != nil {
			return errs.Wrap(err, "write allocs profile")
		}
	}
	return nil
}
