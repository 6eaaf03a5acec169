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

// Package sampler 提供骰子擲骰所需的加權抽樣演算法。
//
// 本檔案 (aliastable.go) 實作了 Vose's Alias Method 加權抽樣演算法 (整數版)。
//
// 演算法原理：
//   - 將任意離散分佈轉換為均勻分佈的組合。
//   - 每個槽位 (Bucket) 只存放「自己」和「別名 (Alias)」兩個選項。
//   - 抽樣時先選槽位，再根據機率決定是自己還是別名。
//
// 特性：
//   - 建表時間：O(N)。
//   - 抽樣時間：O(1)，固定作2次IntN亂數。
//   - 採用全整數運算，權重皆為整數的骰子不會有浮點數精度誤差。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
)

// AliasTable 是整數版本的 Alias Table。
//
// - Prob: 每個槽位「調整後機率」，以 weight * Size 做整數 scaling。
// - Aliases: 別名索引，指向補足機率的元素。
// - Size: 元素數量。
// - Total: 權重總和。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 根據非負整數權重建立 AliasTable。
//
// 權重可為零，但不可為負、不可全為零、總和與 total*n 不可溢位，否則回傳 Validation 錯誤。
func BuildAliasTable(weights []int) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.Kindf(errs.Validation, "alias table: no weights")
	}

	total := uint64(0)
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Kindf(errs.Validation, "alias table: negative weight at %d", i)
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			return nil, errs.Kindf(errs.Validation, "alias table: total weight overflow int range")
		}
		total += uint64(w)
	}
	if total == 0 {
		return nil, errs.Kindf(errs.Validation, "alias table: all weights are zero")
	}
	if !isSafeMultiply(int(total), n) {
		return nil, errs.Kindf(errs.Validation, "alias table: weights are too large")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		aliases[i] = i
		prob[i] = w * n
		if prob[i] < int(total) {
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

		aliases[s] = l                           // s 的剩餘機率由 l 補足
		prob[l] = prob[l] + prob[s] - int(total) // 維持 sum(prob) = total * n

		if prob[l] < int(total) {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 剩下的槽位機率必定為滿格
	for _, i := range large {
		prob[i] = int(total)
	}
	for _, i := range small {
		prob[i] = int(total)
	}

	return &AliasTable{
		Prob:    prob,
		Aliases: aliases,
		Size:    n,
		Total:   int(total),
	}, nil
}

// isSafeMultiply 檢查 a*b 是否會超過 math.MaxInt64。
func isSafeMultiply(a, b int) bool {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi == 0 && (lo <= math.MaxInt64)
}

// Pick 從 AliasTable 中抽取一個索引，若表為空則回傳 -1。
//
// 判斷條件 IntN(Total) < Prob[idx] 是浮點版 U < p[idx] 的整數放大版本。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
