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

// Package core 提供骰子模擬所需的亂數核心。
//
// 每一顆骰子都持有自己的 *Core（依賴注入），因此：
//   - 相同 seed 必定得到相同的擲骰序列，測試與重播可重現。
//   - 不依賴全域亂數狀態，不同骰子之間互不干擾。
package core

import (
	"crypto/rand"
	"math"
	"math/big"
)

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 加權擲骰只需要 IntN（選槽位）與 Float64（槽位內的機率比較），
// Uint64 保留給需要原始位元的呼叫端。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約：在同一個實作與同一個版本下，New(seed) 必須是決定性的，
	// 相同的 seed 必須產生相同的輸出序列。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory (PCG64)
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，作為骰子的熵來源。
type Core struct {
	PRNG
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng}
}

// NewWithSeed 以預設 PRNG 與指定 seed 建立 Core。
func NewWithSeed(seed int64) *Core {
	return New(Default().New(seed))
}

// NewDefault 以 crypto/rand 產生的 seed 建立 Core。
func NewDefault() *Core {
	return NewWithSeed(RandomSeed())
}

// RandomSeed 從 crypto/rand 取得 [0, MaxInt64) 的 seed。
//
// crypto/rand 在支援的平台上不會失敗；若真的失敗則退回固定 seed 1，
// 讓呼叫端仍拿到可用（但可重現）的 Core。
func RandomSeed() int64 {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 1
	}
	return seed.Int64()
}
