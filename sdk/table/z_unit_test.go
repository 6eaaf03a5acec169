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

package table

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/dice"
)

// wide 建立 roll_number x die 的測試寬表
func wide(t *testing.T, rows ...[]dice.Face) *Table[dice.Face] {
	t.Helper()
	cols := make([]dice.Face, len(rows[0]))
	for i := range cols {
		cols[i] = dice.Int(int64(i))
	}
	tb := New[dice.Face]([]string{"roll_number"}, cols)
	for i, r := range rows {
		if err := tb.Append([]dice.Face{dice.Int(int64(i))}, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return tb
}

func TestAppendValidatesShape(t *testing.T) {
	tb := New[int]([]string{"k"}, []dice.Face{dice.Int(0), dice.Int(1)})
	if err := tb.Append([]dice.Face{dice.Int(0)}, []int{1}); !errors.Is(err, errs.Validation) {
		t.Fatalf("short row: expected validation, got %v", err)
	}
	if err := tb.Append(nil, []int{1, 2}); !errors.Is(err, errs.Validation) {
		t.Fatalf("missing key: expected validation, got %v", err)
	}
	if r, c := tb.Shape(); r != 0 || c != 2 {
		t.Fatalf("failed appends must not change shape, got (%d,%d)", r, c)
	}
}

func TestCopyIsDeep(t *testing.T) {
	tb := wide(t, dice.Ints(1, 2), dice.Ints(3, 4))
	cp := tb.Copy()
	cp.Set(0, 0, dice.Int(9))
	if tb.Cell(0, 0) != dice.Int(1) {
		t.Fatalf("copy must not share cells")
	}
	row := tb.Row(1)
	row[0] = dice.Int(9)
	if tb.Cell(1, 0) != dice.Int(3) {
		t.Fatalf("Row must return a copy")
	}
}

func TestStack(t *testing.T) {
	tb := wide(t, dice.Ints(1, 2), dice.Ints(3, 4), dice.Ints(5, 6))
	n := tb.Stack("die")
	if r, c := n.Shape(); r != 6 || c != 1 {
		t.Fatalf("narrow shape (%d,%d) want (6,1)", r, c)
	}
	if !slices.Equal(n.IndexNames(), []string{"roll_number", "die"}) {
		t.Fatalf("index names %v", n.IndexNames())
	}
	v, ok := n.Lookup(dice.Int(1), dice.Int(1))
	if !ok || v[0] != dice.Int(4) {
		t.Fatalf("lookup (1,1) = %v %v", v, ok)
	}
}

func TestFilterAndColumn(t *testing.T) {
	tb := wide(t, dice.Ints(1, 1), dice.Ints(1, 2), dice.Ints(2, 2))
	same := tb.Filter(func(_ []dice.Face, row []dice.Face) bool { return row[0] == row[1] })
	if same.Len() != 2 {
		t.Fatalf("filter len %d want 2", same.Len())
	}
	if !slices.Equal(same.Key(1), []dice.Face{dice.Int(2)}) {
		t.Fatalf("filter must keep original keys, got %v", same.Key(1))
	}
	col, ok := tb.Column(dice.Int(1))
	if !ok || !slices.Equal(col, dice.Ints(1, 2, 2)) {
		t.Fatalf("column = %v %v", col, ok)
	}
	if _, ok := tb.Column(dice.Int(5)); ok {
		t.Fatalf("unknown column must not be found")
	}
}

func TestGroupCountOrdering(t *testing.T) {
	tb := wide(t, dice.Ints(2, 1), dice.Ints(1, 2), dice.Ints(1, 2), dice.Ints(3, 3), dice.Ints(1, 1))
	g := GroupCount(tb, []string{"0", "1"}, func(row []dice.Face) []dice.Face { return row })
	if !slices.Equal(g.Columns(), []dice.Face{dice.Str(CountColumn)}) {
		t.Fatalf("columns %v", g.Columns())
	}
	wantKeys := [][]dice.Face{dice.Ints(1, 2), dice.Ints(1, 1), dice.Ints(2, 1), dice.Ints(3, 3)}
	wantCounts := []int{2, 1, 1, 1}
	if g.Len() != len(wantKeys) {
		t.Fatalf("groups %d want %d", g.Len(), len(wantKeys))
	}
	for i := range wantKeys {
		if !slices.Equal(g.Key(i), wantKeys[i]) || g.Cell(i, 0) != wantCounts[i] {
			t.Fatalf("row %d = %v:%d want %v:%d", i, g.Key(i), g.Cell(i, 0), wantKeys[i], wantCounts[i])
		}
	}
}

func TestGroupCountMixedKinds(t *testing.T) {
	tb := wide(t, []dice.Face{dice.Int(1), dice.Str("1")}, []dice.Face{dice.Str("1"), dice.Int(1)})
	g := GroupCount(tb, []string{"0", "1"}, func(row []dice.Face) []dice.Face { return row })
	if g.Len() != 2 {
		t.Fatalf("int 1 and string \"1\" must be distinct groups, got %d", g.Len())
	}
}

func TestMarshalJSON(t *testing.T) {
	tb := wide(t, []dice.Face{dice.Int(1), dice.Str("H")})
	b, err := json.Marshal(tb)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"index_names":["roll_number"],"columns":[0,1],"rows":[{"index":[0],"values":[1,"H"]}]}`
	if string(b) != want {
		t.Fatalf("json\n got %s\nwant %s", b, want)
	}
}
