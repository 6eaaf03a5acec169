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

// Package catalog 從一或多個扁平的設定 FS 建立實驗索引，以實驗名稱查詢設定。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/spec"
)

var ErrDupName = errs.NewFatal("duplicate lab name")

type Entry struct {
	Name       string `json:"name"`
	Desc       string `json:"desc,omitempty"`
	ConfigName string `json:"config"`
	Dice       int    `json:"dice"`
}

type Catalog struct {
	byName map[string]Entry
	names  []string // 用來穩定排序
	config *multiFS
}

// New 掃描所有 FS 的設定檔並逐一解析；任何一份設定不合法都會讓整個 Catalog 建立失敗。
func New(cfg ...fs.FS) (*Catalog, error) {
	multFS, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	c := &Catalog{
		byName: map[string]Entry{},
		names:  make([]string, 0, len(multFS.index)),
		config: multFS,
	}
	files := make([]string, 0, len(multFS.index))
	for name := range multFS.index {
		files = append(files, name)
	}
	sort.Strings(files)
	for _, file := range files {
		ls, err := c.load(file)
		if err != nil {
			return nil, err
		}
		if _, ok := c.byName[ls.Name]; ok {
			return nil, errs.WrapWithExtra(ErrDupName, "can not create catalog", ls.Name)
		}
		c.byName[ls.Name] = Entry{Name: ls.Name, Desc: ls.Desc, ConfigName: file, Dice: len(ls.Game)}
		c.names = append(c.names, ls.Name)
	}
	sort.Strings(c.names)
	return c, nil
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	m, ok := c.byName[name]
	return m, ok
}

func (c *Catalog) Names() []string {
	if len(c.names) == 0 {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) All() []Entry {
	m := make([]Entry, 0, len(c.names))
	for _, n := range c.names {
		m = append(m, c.byName[n])
	}
	return m
}

// SettingByName
//
// 每次呼叫都重新讀檔解析，回傳的設定可自由修改
func (c *Catalog) SettingByName(name string) (*spec.LabSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.Kindf(errs.OutOfRange, "lab %q does not exist in catalog", name)
	}
	return c.load(e.ConfigName)
}

func (c *Catalog) load(file string) (*spec.LabSetting, error) {
	if err := validFileName(file); err != nil {
		return nil, err
	}
	src, ok := c.config.GetFS(file)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, file)
	if err != nil {
		return nil, errs.Wrap(err, "catalog read file error")
	}
	ls, err := spec.Parse(filepath.Ext(file), raw)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "catalog parse file error", file)
	}
	return ls, nil
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 1) 不能包含路徑或類似字元
	if strings.ContainsAny(file, `/\:`) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must be a basename; no / \\\\ :) ", file))
	}
	// 2) 必須以 .yaml/.yml/.json 結尾（大小寫不敏感）
	if !isConfigFile(file) {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file))
	}
	// 3) 不能以 . 開頭
	if strings.HasPrefix(file, ".") {
		return errs.NewFatal(fmt.Sprintf("invalid config filename: %q (cannot start with '.')", file))
	}
	return nil
}

func isConfigFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")
}

type multiFS struct {
	src   []fs.FS
	index map[string]int // name -> src index
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	for i, s := range src {
		if s == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}

	m := &multiFS{
		src:   src,
		index: make(map[string]int, 16),
	}

	for i := 0; i < len(src); i++ {
		err := fs.WalkDir(src[i], ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// 設定目錄必須扁平，只允許根目錄
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("config FS must be flat (no subdirectories): %q", path))
			}
			// 非設定檔（例如 README）直接略過
			if !isConfigFile(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i))
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) GetFS(name string) (fs.FS, bool) {
	if id, ok := m.index[name]; ok {
		return m.src[id], ok
	}
	return nil, false
}
