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

// Package spec 定義實驗設定 (LabSetting)：要用哪些骰子、每顆骰子的骰面與權重、
// 遊戲中的骰子順序，以及預設擲骰次數與 seed。
//
// 設定可用 YAML 或 JSON 撰寫，載入時會先經過內嵌的 JSON Schema 結構檢查，
// 再做語意檢查（id 唯一、遊戲引用存在、權重與骰面數量一致）。
package spec

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/dice"
	"github.com/zintix-labs/dicelab/sdk/game"
)

// DieSetting 單顆骰子設定
//
// Faces / Weights 保持未定型，交由 dice.FacesOf 與 Die.SetWeightValue 做邊界檢查。
type DieSetting struct {
	ID      string `yaml:"id"                json:"id"`
	Faces   []any  `yaml:"faces,flow"        json:"faces"`
	Weights []any  `yaml:"weights,flow,omitempty" json:"weights,omitempty"`
}

// LabSetting 一組實驗設定
type LabSetting struct {
	Name  string       `yaml:"name"           json:"name"`
	Desc  string       `yaml:"desc,omitempty" json:"desc,omitempty"`
	Rolls int          `yaml:"rolls"          json:"rolls"`
	Seed  int64        `yaml:"seed,omitempty" json:"seed,omitempty"`
	Dice  []DieSetting `yaml:"dice"           json:"dice"`
	Game  []string     `yaml:"game,flow"      json:"game"`
}

// CoreSource 依骰子在 Dice 中的位置提供亂數核心
type CoreSource func(dieIdx int) *core.Core

// init 正規化並檢查設定
func (ls *LabSetting) init() error {
	ls.Name = strings.ToLower(strings.TrimSpace(ls.Name))
	if ls.Name == "" {
		return errs.Kindf(errs.Validation, "lab setting: name required")
	}
	if ls.Rolls < 0 {
		return errs.Kindf(errs.Validation, "lab %s: rolls must be >= 0", ls.Name)
	}
	if len(ls.Dice) == 0 {
		return errs.Kindf(errs.Validation, "lab %s: dice is empty", ls.Name)
	}
	if len(ls.Game) == 0 {
		return errs.Kindf(errs.Validation, "lab %s: game is empty", ls.Name)
	}

	ids := make(map[string]struct{}, len(ls.Dice))
	for i := range ls.Dice {
		ds := &ls.Dice[i]
		ds.ID = strings.TrimSpace(ds.ID)
		if ds.ID == "" {
			return errs.Kindf(errs.Validation, "lab %s: dice[%d] id required", ls.Name, i)
		}
		if _, dup := ids[ds.ID]; dup {
			return errs.Kindf(errs.Validation, "lab %s: duplicate die id %q", ls.Name, ds.ID)
		}
		ids[ds.ID] = struct{}{}
		// 試建一次，提早暴露骰面/權重錯誤
		if _, err := ds.build(nil); err != nil {
			return errs.Wrap(err, fmt.Sprintf("lab %s: die %q", ls.Name, ds.ID))
		}
	}
	for i, ref := range ls.Game {
		ls.Game[i] = strings.TrimSpace(ref)
		if _, ok := ids[ls.Game[i]]; !ok {
			return errs.Kindf(errs.Validation, "lab %s: game[%d] references unknown die %q", ls.Name, i, ref)
		}
	}
	return nil
}

// build 建立單顆骰子並套用權重；c 為 nil 時骰子自行取種。
func (ds *DieSetting) build(c *core.Core) (*dice.Die, error) {
	d, err := dice.NewFromAny(ds.Faces, dice.WithCore(c))
	if err != nil {
		return nil, err
	}
	if len(ds.Weights) == 0 {
		return d, nil
	}
	if len(ds.Weights) != d.Len() {
		return nil, errs.Kindf(errs.Validation, "weights has %d values, faces has %d", len(ds.Weights), d.Len())
	}
	for i, f := range d.Faces() {
		if err := d.SetWeightValue(f, ds.Weights[i]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// BuildDice 依 Dice 順序建立骰子；src 為 nil 時每顆骰子自行取種。
func (ls *LabSetting) BuildDice(src CoreSource) ([]*dice.Die, error) {
	out := make([]*dice.Die, len(ls.Dice))
	for i := range ls.Dice {
		var c *core.Core
		if src != nil {
			c = src(i)
		}
		d, err := ls.Dice[i].build(c)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("lab %s: die %q", ls.Name, ls.Dice[i].ID))
		}
		out[i] = d
	}
	return out, nil
}

// BuildGame 建立遊戲：Game 中重複引用的 id 會得到同一顆骰子物件。
func (ls *LabSetting) BuildGame(src CoreSource) (*game.Game, error) {
	ds, err := ls.BuildDice(src)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*dice.Die, len(ds))
	for i, d := range ds {
		byID[ls.Dice[i].ID] = d
	}
	seq := make([]*dice.Die, len(ls.Game))
	for i, ref := range ls.Game {
		d, ok := byID[ref]
		if !ok {
			return nil, errs.Kindf(errs.Validation, "lab %s: unknown die %q", ls.Name, ref)
		}
		seq[i] = d
	}
	return game.New(seq)
}

// DieIDs 回傳遊戲中每個位置的骰子 id
func (ls *LabSetting) DieIDs() []string {
	out := make([]string, len(ls.Game))
	copy(out, ls.Game)
	return out
}
