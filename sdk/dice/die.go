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

// Package dice 提供加權骰子 (Die)：固定且有序的骰面集合，加上可變的每面權重。
//
// 擲骰時，每一面被抽中的機率 = 該面權重 / 當下權重總和。
// 一次 Roll(n) 呼叫中分佈固定不變（只建一次抽樣表），呼叫之間權重可以被修改。
package dice

import (
	"encoding/json"
	"math"
	"reflect"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/sampler"
)

// DefaultWeight 為建立骰子時每一面的初始權重
const DefaultWeight float64 = 1

// FaceWeight 為 State() 的快照單元
type FaceWeight struct {
	Face   Face    `json:"face"   yaml:"face"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Die 加權骰子
//
// 不變量：weights 的 key 集合永遠等於 faces（建立後只允許修改值，不允許增減）。
type Die struct {
	faces   []Face       // 建立時固定，決定迭代順序
	index   map[Face]int // face -> 在 faces 中的位置
	weights []float64    // 與 faces 對齊
	core    *core.Core   // 熵來源
}

// Option 建立骰子時的可選設定
type Option func(*Die)

// WithCore 注入亂數核心。多顆骰子可以共用同一個 Core（單執行緒下安全）。
func WithCore(c *core.Core) Option {
	return func(d *Die) {
		if c != nil {
			d.core = c
		}
	}
}

// New 以骰面序列建立骰子，所有權重初始化為 1。
//
// 骰面不可為空、不可重複，否則回傳 Validation 錯誤。
// 未注入 Core 時，骰子會自帶一個以 crypto/rand 取種的 PCG64。
func New(faces []Face, opts ...Option) (*Die, error) {
	if len(faces) == 0 {
		return nil, errs.Kindf(errs.Validation, "die: faces must not be empty")
	}
	d := &Die{
		faces:   make([]Face, len(faces)),
		index:   make(map[Face]int, len(faces)),
		weights: make([]float64, len(faces)),
	}
	for i, f := range faces {
		if !f.Valid() {
			return nil, errs.Kindf(errs.Validation, "die: invalid face at %d", i)
		}
		if _, dup := d.index[f]; dup {
			return nil, errs.Kindf(errs.Validation, "die: faces are not all unique (%s)", f)
		}
		d.faces[i] = f
		d.index[f] = i
		d.weights[i] = DefaultWeight
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.core == nil {
		d.core = core.NewDefault()
	}
	return d, nil
}

// NewFromAny 先以 FacesOf 檢查並轉換未定型序列，再建立骰子。
func NewFromAny(v any, opts ...Option) (*Die, error) {
	faces, err := FacesOf(v)
	if err != nil {
		return nil, err
	}
	return New(faces, opts...)
}

// SetWeight 修改單一骰面的權重。
//
//   - face 不在骰面集合內：OutOfRange。
//   - 權重為負、NaN、Inf：Validation。
func (d *Die) SetWeight(face Face, w float64) error {
	i, ok := d.index[face]
	if !ok {
		return errs.Kindf(errs.OutOfRange, "die: invalid face value %s", face)
	}
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return errs.Kindf(errs.Validation, "die: weight must be finite and non-negative, got %v", w)
	}
	d.weights[i] = w
	return nil
}

// SetWeightValue 是未定型輸入（設定檔、JSON）的權重入口。
//
// 只接受整數與浮點數型別（含 json.Number）；bool、字串及其他型別回傳 TypeMismatch。
func (d *Die) SetWeightValue(face Face, v any) error {
	if _, ok := d.index[face]; !ok {
		return errs.Kindf(errs.OutOfRange, "die: invalid face value %s", face)
	}
	w, ok := numeric(v)
	if !ok {
		return errs.Kindf(errs.TypeMismatch, "die: invalid weight type %T", v)
	}
	return d.SetWeight(face, w)
}

// SetWeightOf 是編譯期檢查的權重入口：非數值型別無法通過編譯。
func SetWeightOf[N sampler.Numbers](d *Die, face Face, w N) error {
	return d.SetWeight(face, float64(w))
}

func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Roll 擲骰 n 次（放回抽樣），依抽出順序回傳骰面。
//
// 一次呼叫只建一張抽樣表，因此整次呼叫的分佈固定。
// n < 0 回傳 Validation；n == 0 回傳空序列；權重全為 0 回傳 Validation。
func (d *Die) Roll(n int) ([]Face, error) {
	if n < 0 {
		return nil, errs.Kindf(errs.Validation, "die: rolls must be >= 0, got %d", n)
	}
	if n == 0 {
		return []Face{}, nil
	}
	p, err := sampler.Build(d.weights)
	if err != nil {
		return nil, errs.Wrap(err, "die: cannot roll")
	}
	out := make([]Face, n)
	for i := range out {
		out[i] = d.faces[p.Pick(d.core)]
	}
	return out, nil
}

// State 回傳目前骰面與權重的快照（複本），保持骰面順序。
func (d *Die) State() []FaceWeight {
	out := make([]FaceWeight, len(d.faces))
	for i, f := range d.faces {
		out[i] = FaceWeight{Face: f, Weight: d.weights[i]}
	}
	return out
}

// Weight 查詢單一骰面權重
func (d *Die) Weight(face Face) (float64, bool) {
	i, ok := d.index[face]
	if !ok {
		return 0, false
	}
	return d.weights[i], true
}

// Probabilities 回傳與 Faces() 對齊的理論機率；權重全為 0 時全部為 0。
func (d *Die) Probabilities() []float64 {
	total := 0.0
	for _, w := range d.weights {
		total += w
	}
	out := make([]float64, len(d.weights))
	if total == 0 {
		return out
	}
	for i, w := range d.weights {
		out[i] = w / total
	}
	return out
}

// Faces 回傳骰面集合的複本
func (d *Die) Faces() []Face {
	out := make([]Face, len(d.faces))
	copy(out, d.faces)
	return out
}

func (d *Die) Len() int { return len(d.faces) }

// Has 回傳骰面是否屬於此骰子
func (d *Die) Has(face Face) bool {
	_, ok := d.index[face]
	return ok
}
