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

// Package dicelab 提供加權骰子實驗室的「組裝入口（assembler）」。
//
// Lab 把兩個地基組裝在一起，並提供建立 Simulator 的入口：
//  1. Catalog：實驗目錄，定義有哪些實驗、各自對應的設定檔名稱。
//  2. PRNGFactory：亂數核心工廠，保證同一個 seed 可重現同一批擲骰結果。
//
// Lab 本身不綁定任何檔案路徑：設定檔來源一律以 fs.FS 的形式注入
// （go:embed、os.DirFS 或 fstest.MapFS 皆可）。
//
//	lab, _ := dicelab.NewLab(configs.FS)
//	sim, _ := lab.NewSimulator("fair_pair", 42)
//	report, used, _ := sim.Run(100000, true)
package dicelab

import (
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/dicelab/catalog"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/spec"
)

// Configs 用來把一或多個設定檔來源打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

type Lab struct {
	cat *catalog.Catalog
	pf  core.PRNGFactory
	log *slog.Logger
}

// New 建立 Lab；pf 不可為 nil，cfgs 至少一個。
//
// 所有設定檔在這裡就會被解析與檢查，任何一份不合法都會讓 New 失敗。
func New(pf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	if pf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cat, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{
		cat: cat,
		pf:  pf,
		log: slog.New(slog.DiscardHandler),
	}, nil
}

// NewLab 使用預設 PCG64 工廠建立 Lab
func NewLab(cfgs ...fs.FS) (*Lab, error) {
	return New(core.Default(), Configs(cfgs...))
}

// SetLogger 設定模擬器使用的 logger；nil 代表不輸出。
func (l *Lab) SetLogger(log *slog.Logger) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	l.log = log
}

func (l *Lab) Names() []string {
	return l.cat.Names()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

func (l *Lab) Entry(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

// Setting 回傳實驗設定的新複本
func (l *Lab) Setting(name string) (*spec.LabSetting, error) {
	return l.cat.SettingByName(name)
}

// NewSimulator 以目錄中的實驗建立模擬器
func (l *Lab) NewSimulator(name string, seed int64) (*Simulator, error) {
	ls, err := l.cat.SettingByName(name)
	if err != nil {
		return nil, err
	}
	return l.NewSimulatorFromSetting(ls, seed)
}

// NewSimulatorAuto 使用設定檔內的 seed；設定沒有 seed 時以 crypto/rand 取種。
func (l *Lab) NewSimulatorAuto(name string) (*Simulator, error) {
	ls, err := l.cat.SettingByName(name)
	if err != nil {
		return nil, err
	}
	return l.NewSimulatorFromSetting(ls, autoSeed(ls, -1))
}

// seed < 0 時改用設定檔的 seed，設定也沒有時以 crypto/rand 取種
func autoSeed(ls *spec.LabSetting, seed int64) int64 {
	if seed >= 0 {
		return seed
	}
	if ls.Seed != 0 {
		return ls.Seed
	}
	return core.RandomSeed()
}

// NewSimulatorFromSetting 以外部設定建立模擬器（例如 HTTP 請求帶入的設定），設定不需登記在目錄中。
func (l *Lab) NewSimulatorFromSetting(ls *spec.LabSetting, seed int64) (*Simulator, error) {
	if err := ls.Validate(); err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ls, l.pf, seed, l.log)
}

// NewSimulatorByConfig 以原始設定檔內容建立模擬器，ext 決定格式（.yaml / .yml / .json）。
//
// seed < 0 代表沿用設定檔的 seed（沒有時隨機）。
func (l *Lab) NewSimulatorByConfig(ext string, raw []byte, seed int64) (*Simulator, error) {
	ls, err := spec.Parse(ext, raw)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(ls, l.pf, autoSeed(ls, seed), l.log)
}

func (l *Lab) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	return l.NewSimulatorByConfig(".yaml", raw, seed)
}

func (l *Lab) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	return l.NewSimulatorByConfig(".json", raw, seed)
}
