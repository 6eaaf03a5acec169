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

// ops 是開發用的任務腳本：go run ./scripts <task>
package main

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

type task struct {
	desc string
	run  func() error
}

var tasks = map[string]task{
	"check":       {"gofmt -l、go vet、go build，任何一步失敗即中止", runCheck},
	"test":        {"先跑 check，再精簡測試輸出，只列 ok / FAIL", runTest},
	"test-all":    {"全部套件測試並顯示覆蓋率", runTestAll},
	"test-detail": {"verbose 測試，略過沒有測試檔的套件", runTestDetail},
	"cover":       {"輸出覆蓋率檔案到 build/cover.out", runCover},
	"demo":        {"以預設實驗跑一次模擬", runDemo},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	t, ok := tasks[os.Args[1]]
	if !ok {
		yellow.Printf("Unknown task: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
	if err := t.run(); err != nil {
		red.Printf("\n%s finished with errors: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: go run ./scripts [task]")
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-12s %s\n", name, tasks[name].desc)
	}
}

func cleanCache() error {
	return attached("go", "clean", "-testcache")
}

// runCheck 是編譯閘門：未使用的 import、格式錯誤都在這裡擋下
func runCheck() error {
	green.Println("checking format / vet / build")
	files, err := goFiles(".")
	if err != nil {
		return err
	}
	out, err := exec.Command("gofmt", append([]string{"-l"}, files...)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("gofmt: %w: %s", err, out)
	}
	if bad := strings.TrimSpace(string(out)); bad != "" {
		red.Println(bad)
		return fmt.Errorf("gofmt: files need formatting")
	}
	if err := attached("go", "vet", "./..."); err != nil {
		return err
	}
	return attached("go", "build", "./...")
}

func runTest() error {
	if err := runCheck(); err != nil {
		return err
	}
	green.Println("running tests")
	if err := cleanCache(); err != nil {
		return err
	}
	return filtered(func(line string) {
		switch {
		case strings.HasPrefix(line, "ok"):
			green.Println(line)
		case strings.HasPrefix(line, "FAIL"), strings.Contains(line, "build failed"), strings.Contains(line, "setup failed"):
			red.Println(line)
		}
	}, "go", "test", "./...", "-cover", "-count=1")
}

func runTestAll() error {
	green.Println("running tests (all with coverage)")
	if err := cleanCache(); err != nil {
		return err
	}
	return attached("go", "test", "./...", "-cover")
}

func runTestDetail() error {
	green.Println("running tests (detail)")
	if err := cleanCache(); err != nil {
		return err
	}
	return filtered(func(line string) {
		switch {
		case strings.Contains(line, "[no test files]"):
		case strings.HasPrefix(line, "ok"):
			green.Println(line)
		case strings.HasPrefix(line, "FAIL"):
			red.Println(line)
		default:
			fmt.Println(line)
		}
	}, "go", "test", "./...", "-v", "-count=1")
}

func runCover() error {
	if err := os.MkdirAll("build", 0o755); err != nil {
		return err
	}
	if err := attached("go", "test", "./...", "-count=1", "-coverprofile=build/cover.out"); err != nil {
		return err
	}
	return attached("go", "tool", "cover", "-func=build/cover.out")
}

func runDemo() error {
	return attached("go", "run", "./cmd/run", "-lab", "fair_pair")
}

// goFiles 與 go 工具一致：略過 _ 與 . 開頭的目錄（例如 _examples）
func goFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(name, ".go") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

func attached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// filtered 合併 stdout/stderr 後逐行交給 each，編譯錯誤也看得到
func filtered(each func(string), name string, args ...string) error {
	cmd := exec.Command(name, args...)
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		done <- err
	}()
	sc := bufio.NewScanner(pr)
	for sc.Scan() {
		each(sc.Text())
	}
	if err := sc.Err(); err != nil {
		red.Printf("scanner error: %v\n", err)
		_, _ = io.Copy(io.Discard, pr)
	}
	return <-done
}
