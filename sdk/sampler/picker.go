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

	"github.com/zintix-labs/dicelab/sdk/core"
)

// Picker 是加權抽樣表的共同介面：給定亂數核心，回傳被抽中的索引。
type Picker interface {
	Pick(c *core.Core) int
}

// Build 依權重內容選擇抽樣表：
//   - 全部為整數（且不溢位）時使用整數版 AliasTable，抽樣完全不經過浮點比較。
//   - 否則使用 FloatAliasTable。
func Build(weights []float64) (Picker, error) {
	if ints, ok := asInts(weights); ok {
		if at, err := BuildAliasTable(ints); err == nil {
			return at, nil
		}
	}
	return BuildFloatAliasTable(weights)
}

// asInts 若所有權重都是可安全轉為 int 的整數值則回傳轉換結果。
func asInts[T Floaters](weights []T) ([]int, bool) {
	out := make([]int, len(weights))
	for i, w := range weights {
		f := float64(w)
		if f != math.Trunc(f) || f < 0 || f > 1<<40 {
			return nil, false
		}
		out[i] = int(f)
	}
	return out, true
}
