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

// Package table 提供擲骰歷史與統計結果所需的最小表格結構。
//
// 一張表由三部分組成：
//   - index：每列的鍵（可為多層，例如 (roll_number, die)），以 IndexNames 命名各層。
//   - columns：欄位標籤。
//   - cells：rows x cols 的值矩陣。
//
// 只實作實際用到的操作：複製、過濾、堆疊 (wide → narrow)、分組計數。
package table

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/dice"
)

// Table 是以 dice.Face 作為索引與欄位標籤的泛型表格
type Table[V any] struct {
	indexNames []string
	columns    []dice.Face
	index      [][]dice.Face
	cells      [][]V
}

// New 建立空表。indexNames 至少一層。
func New[V any](indexNames []string, columns []dice.Face) *Table[V] {
	return &Table[V]{
		indexNames: slices.Clone(indexNames),
		columns:    slices.Clone(columns),
		index:      make([][]dice.Face, 0),
		cells:      make([][]V, 0),
	}
}

// Append 新增一列；key 長度需等於索引層數，row 長度需等於欄位數。
func (t *Table[V]) Append(key []dice.Face, row []V) error {
	if len(key) != len(t.indexNames) {
		return errs.Kindf(errs.Validation, "table: key has %d levels, want %d", len(key), len(t.indexNames))
	}
	if len(row) != len(t.columns) {
		return errs.Kindf(errs.Validation, "table: row has %d cells, want %d", len(row), len(t.columns))
	}
	t.index = append(t.index, slices.Clone(key))
	t.cells = append(t.cells, slices.Clone(row))
	return nil
}

// Shape 回傳 (列數, 欄數)
func (t *Table[V]) Shape() (int, int) { return len(t.cells), len(t.columns) }

func (t *Table[V]) Len() int { return len(t.cells) }

func (t *Table[V]) IndexNames() []string { return slices.Clone(t.indexNames) }

func (t *Table[V]) Columns() []dice.Face { return slices.Clone(t.columns) }

// Key 回傳第 i 列的索引鍵（複本）
func (t *Table[V]) Key(i int) []dice.Face { return slices.Clone(t.index[i]) }

// Row 回傳第 i 列的值（複本）
func (t *Table[V]) Row(i int) []V { return slices.Clone(t.cells[i]) }

// Cell 回傳 (i, j) 的值
func (t *Table[V]) Cell(i, j int) V { return t.cells[i][j] }

// Set 修改 (i, j) 的值
func (t *Table[V]) Set(i, j int, v V) { t.cells[i][j] = v }

// ColumnIndex 回傳欄位標籤的位置
func (t *Table[V]) ColumnIndex(label dice.Face) (int, bool) {
	i := slices.Index(t.columns, label)
	return i, i >= 0
}

// Column 依標籤取出整欄（複本）
func (t *Table[V]) Column(label dice.Face) ([]V, bool) {
	j, ok := t.ColumnIndex(label)
	if !ok {
		return nil, false
	}
	out := make([]V, len(t.cells))
	for i, row := range t.cells {
		out[i] = row[j]
	}
	return out, true
}

// Lookup 依完整索引鍵找出該列（複本）
func (t *Table[V]) Lookup(key ...dice.Face) ([]V, bool) {
	for i, k := range t.index {
		if slices.Equal(k, key) {
			return slices.Clone(t.cells[i]), true
		}
	}
	return nil, false
}

// Copy 深複製
func (t *Table[V]) Copy() *Table[V] {
	out := &Table[V]{
		indexNames: slices.Clone(t.indexNames),
		columns:    slices.Clone(t.columns),
		index:      make([][]dice.Face, len(t.index)),
		cells:      make([][]V, len(t.cells)),
	}
	for i := range t.cells {
		out.index[i] = slices.Clone(t.index[i])
		out.cells[i] = slices.Clone(t.cells[i])
	}
	return out
}

// Filter 回傳符合條件的列組成的新表（保留原順序）
func (t *Table[V]) Filter(keep func(key []dice.Face, row []V) bool) *Table[V] {
	out := New[V](t.indexNames, t.columns)
	for i := range t.cells {
		if keep(t.index[i], t.cells[i]) {
			out.index = append(out.index, slices.Clone(t.index[i]))
			out.cells = append(out.cells, slices.Clone(t.cells[i]))
		}
	}
	return out
}

// Stack 把寬表攤平成窄表：每個 (原索引, 欄位) 組合一列，只剩一個值欄位 (標籤 0)。
//
// 新索引多一層，名稱為 level，值為原欄位標籤。列順序為原列順序，列內依欄位順序。
func (t *Table[V]) Stack(level string) *Table[V] {
	names := append(slices.Clone(t.indexNames), level)
	out := New[V](names, []dice.Face{dice.Int(0)})
	for i := range t.cells {
		for j, col := range t.columns {
			key := append(slices.Clone(t.index[i]), col)
			out.index = append(out.index, key)
			out.cells = append(out.cells, []V{t.cells[i][j]})
		}
	}
	return out
}

// CountColumn 為分組計數結果的欄位名稱
const CountColumn = "count"

// GroupCount 以 keyOf 算出每列的分組鍵並計數，回傳只有 count 欄的表。
//
// 一次走訪、以 map 計數。輸出順序：count 由大到小，相同時依鍵字典序。
func GroupCount[V any](t *Table[V], indexNames []string, keyOf func(row []V) []dice.Face) *Table[int] {
	type group struct {
		key   []dice.Face
		count int
	}
	pos := make(map[string]int)
	groups := make([]group, 0)
	for _, row := range t.cells {
		key := keyOf(row)
		enc := encodeKey(key)
		if i, ok := pos[enc]; ok {
			groups[i].count++
			continue
		}
		pos[enc] = len(groups)
		groups = append(groups, group{key: key, count: 1})
	}
	slices.SortFunc(groups, func(a, b group) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return dice.CompareSeq(a.key, b.key)
	})

	out := New[int](indexNames, []dice.Face{dice.Str(CountColumn)})
	for _, g := range groups {
		out.index = append(out.index, g.key)
		out.cells = append(out.cells, []int{g.count})
	}
	return out
}

func encodeKey(key []dice.Face) string {
	var sb strings.Builder
	for _, f := range key {
		sb.WriteString(f.Key())
		sb.WriteByte('|')
	}
	return sb.String()
}

// Record 為單列的輸出形式
type Record[V any] struct {
	Index  []dice.Face `json:"index"  yaml:"index,flow"`
	Values []V         `json:"values" yaml:"values,flow"`
}

// Records 回傳所有列的複本
func (t *Table[V]) Records() []Record[V] {
	out := make([]Record[V], len(t.cells))
	for i := range t.cells {
		out[i] = Record[V]{Index: slices.Clone(t.index[i]), Values: slices.Clone(t.cells[i])}
	}
	return out
}

type tableJSON[V any] struct {
	IndexNames []string    `json:"index_names"`
	Columns    []dice.Face `json:"columns"`
	Rows       []Record[V] `json:"rows"`
}

// MarshalJSON 以 {index_names, columns, rows} 形式輸出
func (t *Table[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON[V]{
		IndexNames: t.indexNames,
		Columns:    t.columns,
		Rows:       t.Records(),
	})
}

// MarshalYAML 與 JSON 形式相同（滿足 yaml.v3 Marshaler）
func (t *Table[V]) MarshalYAML() (any, error) {
	return struct {
		IndexNames []string    `yaml:"index_names,flow"`
		Columns    []dice.Face `yaml:"columns,flow"`
		Rows       []Record[V] `yaml:"rows"`
	}{t.indexNames, t.columns, t.Records()}, nil
}
