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

package dice

import (
	"encoding/json"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
)

func newD6(t *testing.T, seed int64) *Die {
	t.Helper()
	d, err := New(Range(1, 6), WithCore(core.NewWithSeed(seed)))
	if err != nil {
		t.Fatalf("new die: %v", err)
	}
	return d
}

// -----------------------------------------------------------------------------
// Face
// -----------------------------------------------------------------------------

func TestFaceOrdering(t *testing.T) {
	got := []Face{Str("b"), Float(2.5), Int(3), Str("a"), Int(1), Float(-0.5)}
	slices.SortFunc(got, Face.Compare)
	want := []Face{Float(-0.5), Int(1), Float(2.5), Int(3), Str("a"), Str("b")}
	if !slices.Equal(got, want) {
		t.Fatalf("order mismatch: got %v want %v", got, want)
	}
}

func TestIntegralFloatIsInt(t *testing.T) {
	for _, v := range []float64{1, -3, 0, math.Copysign(0, -1), 1e15} {
		if f := Float(v); f != Int(int64(v)) || f.Compare(Int(int64(v))) != 0 || f.Key() != Int(int64(v)).Key() {
			t.Fatalf("Float(%v) should equal Int(%d), got %#v", v, int64(v), f)
		}
	}
	if f, err := FaceOf(float32(4)); err != nil || f != Int(4) {
		t.Fatalf("FaceOf(float32(4)) = %v, %v", f, err)
	}
	if f, err := FaceOf(json.Number("2.0")); err != nil || f != Int(2) {
		t.Fatalf("FaceOf(2.0) = %v, %v", f, err)
	}
	if Float(1e300).Compare(Int(1)) <= 0 || Float(math.Inf(1)) == Int(0) {
		t.Fatalf("out of range floats stay floats")
	}
	if _, err := New([]Face{Int(1), Float(1)}); !errors.Is(err, errs.Validation) {
		t.Fatalf("faces 1 and 1.0 are duplicates, got %v", err)
	}
}

func TestFaceOf(t *testing.T) {
	cases := []struct {
		in   any
		want Face
		ok   bool
	}{
		{3, Int(3), true},
		{uint8(4), Int(4), true},
		{int64(-2), Int(-2), true},
		{0.5, Float(0.5), true},
		{"H", Str("H"), true},
		{json.Number("7"), Int(7), true},
		{json.Number("7.5"), Float(7.5), true},
		{true, Face{}, false},
		{nil, Face{}, false},
		{math.NaN(), Face{}, false},
		{[]int{1}, Face{}, false},
		{uint64(math.MaxUint64), Face{}, false},
	}
	for _, c := range cases {
		got, err := FaceOf(c.in)
		if c.ok {
			if err != nil || got != c.want {
				t.Errorf("FaceOf(%v) = %v, %v; want %v", c.in, got, err, c.want)
			}
			continue
		}
		if !errors.Is(err, errs.Validation) {
			t.Errorf("FaceOf(%v): expected validation error, got %v", c.in, err)
		}
	}
}

func TestFacesOfRejectsNonSequence(t *testing.T) {
	for _, v := range []any{nil, 6, "123456", map[int]int{1: 1}, []any{1, []int{2}}, []bool{true}} {
		if _, err := FacesOf(v); !errors.Is(err, errs.Validation) {
			t.Errorf("FacesOf(%v): expected validation error, got %v", v, err)
		}
	}
	faces, err := FacesOf([]any{1, "H", 2.5})
	if err != nil {
		t.Fatalf("mixed sequence: %v", err)
	}
	if !slices.Equal(faces, []Face{Int(1), Str("H"), Float(2.5)}) {
		t.Fatalf("unexpected faces %v", faces)
	}
	if faces, err := FacesOf([3]int{4, 5, 6}); err != nil || len(faces) != 3 {
		t.Fatalf("array input: %v %v", faces, err)
	}
}

func TestFaceJSON(t *testing.T) {
	b, err := json.Marshal([]Face{Int(1), Float(0.5), Str("T")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `[1,0.5,"T"]` {
		t.Fatalf("unexpected json %s", b)
	}
	var back []Face
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !slices.Equal(back, []Face{Int(1), Float(0.5), Str("T")}) {
		t.Fatalf("round trip mismatch: %v", back)
	}
	var f Face
	if err := json.Unmarshal([]byte(`true`), &f); !errors.Is(err, errs.Validation) {
		t.Fatalf("expected validation error for bool face, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// Die construction / weights
// -----------------------------------------------------------------------------

func TestNewDieStateAllOnes(t *testing.T) {
	for _, faces := range [][]Face{Range(1, 6), Strs("H", "T"), {Float(0.5), Int(2), Str("x")}} {
		d, err := New(faces)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		st := d.State()
		if len(st) != len(faces) {
			t.Fatalf("state len %d want %d", len(st), len(faces))
		}
		for i, fw := range st {
			if fw.Face != faces[i] || fw.Weight != 1 {
				t.Fatalf("state[%d] = %+v", i, fw)
			}
		}
	}
}

func TestNewDieValidation(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, errs.Validation) {
		t.Fatalf("empty faces: expected validation error, got %v", err)
	}
	if _, err := New(Ints(1, 2, 2)); !errors.Is(err, errs.Validation) {
		t.Fatalf("duplicate faces: expected validation error, got %v", err)
	}
	if _, err := NewFromAny("HT"); !errors.Is(err, errs.Validation) {
		t.Fatalf("non-sequence: expected validation error, got %v", err)
	}
	if _, err := NewFromAny([]string{"H", "T"}); err != nil {
		t.Fatalf("string slice: %v", err)
	}
}

func TestSetWeight(t *testing.T) {
	d := newD6(t, 1)
	if err := d.SetWeight(Int(1), 0.5); err != nil {
		t.Fatalf("set weight: %v", err)
	}
	st := d.State()
	for _, fw := range st {
		want := 1.0
		if fw.Face == Int(1) {
			want = 0.5
		}
		if fw.Weight != want {
			t.Fatalf("face %s weight %v want %v", fw.Face, fw.Weight, want)
		}
	}

	if err := d.SetWeight(Int(7), 2); !errors.Is(err, errs.OutOfRange) {
		t.Fatalf("unknown face: expected out of range, got %v", err)
	}
	if err := d.SetWeight(Int(2), -1); !errors.Is(err, errs.Validation) {
		t.Fatalf("negative weight: expected validation, got %v", err)
	}
	if err := d.SetWeight(Int(2), math.Inf(1)); !errors.Is(err, errs.Validation) {
		t.Fatalf("inf weight: expected validation, got %v", err)
	}
	if w, _ := d.Weight(Int(2)); w != 1 {
		t.Fatalf("failed set must not mutate, got %v", w)
	}
}

func TestSetWeightValue(t *testing.T) {
	d := newD6(t, 2)
	for _, v := range []any{3, int8(2), uint(4), float32(0.25), 1.5} {
		if err := d.SetWeightValue(Int(3), v); err != nil {
			t.Fatalf("numeric %T: %v", v, err)
		}
	}
	for _, v := range []any{true, "2", nil, []int{1}} {
		if err := d.SetWeightValue(Int(3), v); !errors.Is(err, errs.TypeMismatch) {
			t.Fatalf("%T: expected type mismatch, got %v", v, err)
		}
	}
	if err := d.SetWeightValue(Str("x"), 1); !errors.Is(err, errs.OutOfRange) {
		t.Fatalf("unknown face: expected out of range, got %v", err)
	}
	if err := SetWeightOf(d, Int(4), uint16(9)); err != nil {
		t.Fatalf("SetWeightOf: %v", err)
	}
	if w, _ := d.Weight(Int(4)); w != 9 {
		t.Fatalf("weight want 9 got %v", w)
	}
}

func TestStateIsCopy(t *testing.T) {
	d := newD6(t, 3)
	st := d.State()
	st[0].Weight = 100
	if w, _ := d.Weight(Int(1)); w != 1 {
		t.Fatalf("state must be a copy")
	}
	faces := d.Faces()
	faces[0] = Int(99)
	if !d.Has(Int(1)) || d.Faces()[0] != Int(1) {
		t.Fatalf("faces must be a copy")
	}
}

// -----------------------------------------------------------------------------
// Roll
// -----------------------------------------------------------------------------

func TestRollLengthAndMembership(t *testing.T) {
	d := newD6(t, 4)
	for _, n := range []int{0, 1, 10, 1000} {
		out, err := d.Roll(n)
		if err != nil {
			t.Fatalf("roll %d: %v", n, err)
		}
		if len(out) != n {
			t.Fatalf("roll %d returned %d", n, len(out))
		}
		for _, f := range out {
			if !d.Has(f) {
				t.Fatalf("rolled face %s not in die", f)
			}
		}
	}
	if _, err := d.Roll(-1); !errors.Is(err, errs.Validation) {
		t.Fatalf("negative rolls: expected validation, got %v", err)
	}
}

func TestRollUniformDistribution(t *testing.T) {
	d := newD6(t, 5)
	const n = 100000
	out, err := d.Roll(n)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	counts := map[Face]int{}
	for _, f := range out {
		counts[f]++
	}
	for _, f := range d.Faces() {
		p := float64(counts[f]) / n
		if math.Abs(p-1.0/6) > 0.01 {
			t.Errorf("face %s freq %.4f not ~ 1/6", f, p)
		}
	}
}

func TestRollWeighted(t *testing.T) {
	d := newD6(t, 6)
	_ = d.SetWeight(Int(6), 4)
	_ = d.SetWeight(Int(1), 0)
	out, err := d.Roll(100000)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	sixes := 0
	for _, f := range out {
		if f == Int(1) {
			t.Fatalf("zero-weight face rolled")
		}
		if f == Int(6) {
			sixes++
		}
	}
	if p := float64(sixes) / 100000; math.Abs(p-0.5) > 0.01 {
		t.Fatalf("face 6 freq %.4f not ~ 0.5", p)
	}
}

func TestRollFractionalWeights(t *testing.T) {
	d, err := New(Strs("H", "T"), WithCore(core.NewWithSeed(7)))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_ = d.SetWeight(Str("H"), 0.25)
	_ = d.SetWeight(Str("T"), 0.75)
	out, _ := d.Roll(100000)
	heads := 0
	for _, f := range out {
		if f == Str("H") {
			heads++
		}
	}
	if p := float64(heads) / 100000; math.Abs(p-0.25) > 0.01 {
		t.Fatalf("heads freq %.4f not ~ 0.25", p)
	}
}

func TestRollAllZeroWeights(t *testing.T) {
	d, _ := New(Ints(1, 2))
	_ = d.SetWeight(Int(1), 0)
	_ = d.SetWeight(Int(2), 0)
	if _, err := d.Roll(1); !errors.Is(err, errs.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRollDeterministicWithSeed(t *testing.T) {
	a, _ := newD6(t, 42).Roll(50)
	b, _ := newD6(t, 42).Roll(50)
	if !slices.Equal(a, b) {
		t.Fatalf("same seed must produce same rolls")
	}
}

func TestProbabilities(t *testing.T) {
	d, _ := New(Ints(1, 2, 3, 4))
	_ = d.SetWeight(Int(4), 5)
	p := d.Probabilities()
	want := []float64{0.125, 0.125, 0.125, 0.625}
	for i := range want {
		if math.Abs(p[i]-want[i]) > 1e-12 {
			t.Fatalf("prob[%d] = %v want %v", i, p[i], want[i])
		}
	}
}
