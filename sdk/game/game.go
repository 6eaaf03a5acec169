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

// Package game 把多顆加權骰子組成一場遊戲：每次 Play 把每顆骰子各自擲 times 次，
// 並以 roll_number x 骰子位置 的寬表保存完整歷史。
package game

import (
	"fmt"
	"strings"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/dice"
	"github.com/zintix-labs/dicelab/sdk/table"
)

const (
	IndexName = "roll_number" // 歷史表的索引名稱
	DieLevel  = "die"         // 窄表新增的索引層名稱
)

// Format 結果輸出格式
type Format uint8

const (
	Wide   Format = iota // 每次擲骰一列，每顆骰子一欄
	Narrow               // 每個 (擲骰, 骰子) 組合一列，單一值欄
)

func (f Format) String() string {
	switch f {
	case Wide:
		return "wide"
	case Narrow:
		return "narrow"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat 解析 "wide" / "narrow"（不分大小寫），空字串視為 wide。
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wide":
		return Wide, nil
	case "narrow":
		return Narrow, nil
	default:
		return Wide, errs.Kindf(errs.Validation, "game: format needs to be narrow or wide, got %q", s)
	}
}

// Game 擲骰序列
//
// dice 建立後固定（同一顆骰子可重複出現）；history 在每次 Play 時整張替換。
type Game struct {
	dice    []*dice.Die
	history *table.Table[dice.Face]
}

// New 以有序骰子列表建立遊戲。
//
// 不檢查骰子是否互異或骰面型別是否一致；空列表或 nil 骰子回傳 Validation。
func New(ds []*dice.Die) (*Game, error) {
	if len(ds) == 0 {
		return nil, errs.Kindf(errs.Validation, "game: needs at least one die")
	}
	for i, d := range ds {
		if d == nil {
			return nil, errs.Kindf(errs.Validation, "game: die %d is nil", i)
		}
	}
	g := &Game{dice: make([]*dice.Die, len(ds))}
	copy(g.dice, ds)
	return g, nil
}

// Play 依序讓每顆骰子獨立擲 times 次，並以新歷史取代舊歷史。
//
// times == 0 得到 (0, k) 的空歷史；失敗時（times < 0 或任一骰子無法擲骰）舊歷史保持不變。
func (g *Game) Play(times int) error {
	if times < 0 {
		return errs.Kindf(errs.Validation, "game: times must be >= 0, got %d", times)
	}
	cols := make([][]dice.Face, len(g.dice))
	for i, d := range g.dice {
		out, err := d.Roll(times)
		if err != nil {
			return errs.Wrap(err, fmt.Sprintf("game: die %d", i))
		}
		cols[i] = out
	}

	labels := make([]dice.Face, len(g.dice))
	for i := range labels {
		labels[i] = dice.Int(int64(i))
	}
	h := table.New[dice.Face]([]string{IndexName}, labels)
	row := make([]dice.Face, len(g.dice))
	for r := 0; r < times; r++ {
		for i := range cols {
			row[i] = cols[i][r]
		}
		if err := h.Append([]dice.Face{dice.Int(int64(r))}, row); err != nil {
			return errs.Wrap(err, "game: build history")
		}
	}
	g.history = h
	return nil
}

// Results 以指定格式回傳歷史的複本；修改回傳值不影響遊戲內部狀態。
//
// 不支援的格式回傳 Validation；尚未 Play 回傳 NoData。
func (g *Game) Results(f Format) (*table.Table[dice.Face], error) {
	if f != Wide && f != Narrow {
		return nil, errs.Kindf(errs.Validation, "game: format needs to be narrow or wide, got %s", f)
	}
	if g.history == nil {
		return nil, errs.Kindf(errs.NoData, "game: no rolls yet, call Play first")
	}
	if f == Narrow {
		return g.history.Stack(DieLevel), nil
	}
	return g.history.Copy(), nil
}

// Dice 回傳骰子列表（slice 複本，骰子本身為同一個參考）
func (g *Game) Dice() []*dice.Die {
	out := make([]*dice.Die, len(g.dice))
	copy(out, g.dice)
	return out
}

// Played 是否已有歷史
func (g *Game) Played() bool { return g.history != nil }

// Rolls 最近一次 Play 的次數；尚未 Play 為 0
func (g *Game) Rolls() int {
	if g.history == nil {
		return 0
	}
	return g.history.Len()
}
