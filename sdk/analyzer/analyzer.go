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

// Package analyzer 對一場遊戲的擲骰歷史計算統計：
// 大獎 (jackpot) 次數、每次擲骰的骰面計數、組合 (不計順序) 與排列 (計順序) 次數。
//
// Analyzer 只持有 Game 的參考，每次呼叫都從當下的歷史重新計算。
// 遊戲尚未擲骰時，所有方法一律回傳 errs.NoData。
package analyzer

import (
	"slices"
	"strconv"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/dice"
	"github.com/zintix-labs/dicelab/sdk/game"
	"github.com/zintix-labs/dicelab/sdk/table"
)

type Analyzer struct {
	g *game.Game
}

// New 建立分析器；g 為 nil 時回傳 Validation。
func New(g *game.Game) (*Analyzer, error) {
	if g == nil {
		return nil, errs.Kindf(errs.Validation, "analyzer: the input must be a game")
	}
	return &Analyzer{g: g}, nil
}

// Game 回傳被分析的遊戲
func (a *Analyzer) Game() *game.Game { return a.g }

func (a *Analyzer) wide() (*table.Table[dice.Face], error) {
	w, err := a.g.Results(game.Wide)
	if err != nil {
		return nil, errs.Wrap(err, "analyzer: read history")
	}
	return w, nil
}

// Jackpot 回傳所有骰子結果相同的擲骰次數；只有一顆骰子時每一列都算。
func (a *Analyzer) Jackpot() (int, error) {
	w, err := a.wide()
	if err != nil {
		return 0, err
	}
	return w.Filter(func(_ []dice.Face, row []dice.Face) bool { return isJackpot(row) }).Len(), nil
}

func isJackpot(row []dice.Face) bool {
	for _, f := range row[1:] {
		if f != row[0] {
			return false
		}
	}
	return true
}

// FaceCounts 回傳 roll_number x 骰面 的計數表。
//
// 欄位為歷史中出現過的所有骰面（依 Face 順序排序），沒出現的格子為 0。
func (a *Analyzer) FaceCounts() (*table.Table[int], error) {
	w, err := a.wide()
	if err != nil {
		return nil, err
	}
	seen := make(map[dice.Face]struct{})
	for i := 0; i < w.Len(); i++ {
		for _, f := range w.Row(i) {
			seen[f] = struct{}{}
		}
	}
	faces := make([]dice.Face, 0, len(seen))
	for f := range seen {
		faces = append(faces, f)
	}
	slices.SortFunc(faces, dice.Face.Compare)
	col := make(map[dice.Face]int, len(faces))
	for j, f := range faces {
		col[f] = j
	}

	out := table.New[int]([]string{game.IndexName}, faces)
	for i := 0; i < w.Len(); i++ {
		counts := make([]int, len(faces))
		for _, f := range w.Row(i) {
			counts[col[f]]++
		}
		if err := out.Append(w.Key(i), counts); err != nil {
			return nil, errs.Wrap(err, "analyzer: face counts")
		}
	}
	return out, nil
}

// ComboCounts 把每次擲骰視為不計順序的多重集合，回傳每種組合出現的次數。
//
// 索引為排序後的骰面（0..k-1 層），唯一欄位為 count；列依 count 由大到小、再依鍵排序。
func (a *Analyzer) ComboCounts() (*table.Table[int], error) {
	w, err := a.wide()
	if err != nil {
		return nil, err
	}
	return table.GroupCount(w, positionNames(len(a.g.Dice())), func(row []dice.Face) []dice.Face {
		key := slices.Clone(row)
		slices.SortFunc(key, dice.Face.Compare)
		return key
	}), nil
}

// PermutationCounts 與 ComboCounts 相同，但骰子順序有意義：(1,2) 與 (2,1) 分開計數。
func (a *Analyzer) PermutationCounts() (*table.Table[int], error) {
	w, err := a.wide()
	if err != nil {
		return nil, err
	}
	return table.GroupCount(w, positionNames(len(a.g.Dice())), func(row []dice.Face) []dice.Face {
		return slices.Clone(row)
	}), nil
}

func positionNames(k int) []string {
	out := make([]string, k)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}
	return out
}
