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

package sampler

import (
	"math"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
)

// FloatAliasTable 是浮點權重版本的 Alias Table，用於權重含小數的骰子（例如 0.5）。
//
// Prob[i] 為槽位 i 保留自己的機率，範圍 [0,1]。
type FloatAliasTable struct {
	Prob    []float64
	Aliases []int
	Size    int
}

// BuildFloatAliasTable 根據非負浮點權重建立 FloatAliasTable。
//
// 權重不需正規化；負數、NaN、Inf 或全零回傳 Validation 錯誤。
func BuildFloatAliasTable(weights []float64) (*FloatAliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.Kindf(errs.Validation, "alias table: no weights")
	}
	total := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errs.Kindf(errs.Validation, "alias table: invalid weight %v at %d", w, i)
		}
		total += w
	}
	if total == 0 || math.IsInf(total, 0) {
		return nil, errs.Kindf(errs.Validation, "alias table: weight sum must be positive and finite")
	}

	prob := make([]float64, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	scale := float64(n) / total
	for i, w := range weights {
		aliases[i] = i
		prob[i] = w * scale
		if prob[i] < 1 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		prob[l] = prob[l] + prob[s] - 1

		if prob[l] < 1 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 浮點誤差留下的槽位視為滿格，但零權重槽位必須保持 0，確保永遠不會被選中
	for _, i := range large {
		prob[i] = 1
	}
	heaviest := 0
	for i, w := range weights {
		if w > weights[heaviest] {
			heaviest = i
		}
	}
	for _, i := range small {
		if weights[i] == 0 {
			prob[i] = 0
			aliases[i] = heaviest
			continue
		}
		prob[i] = 1
	}

	return &FloatAliasTable{Prob: prob, Aliases: aliases, Size: n}, nil
}

// Pick 抽取一個索引，若表為空則回傳 -1。
func (at *FloatAliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.Float64() < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
