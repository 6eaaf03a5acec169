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
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/zintix-labs/dicelab/errs"
)

type faceKind uint8

const (
	kindInt faceKind = iota + 1
	kindFloat
	kindString
)

// Face 是骰面標籤：整數、浮點數或字串。
//
// Face 是可比較的值型別，可直接作為 map key。不同骰子可以使用不同種類的標籤
// （例如一顆 1~6 的骰子與一枚 H/T 的硬幣放在同一場遊戲中）。
// 零值 Face 不是合法標籤。
type Face struct {
	k faceKind
	i int64
	f float64
	s string
}

// Int 建立整數骰面
func Int(v int64) Face { return Face{k: kindInt, i: v} }

// Float 建立數值骰面。整數值且落在 int64 範圍內的浮點數（含 -0）會正規化為 Int，
// 因此 Float(1) == Int(1)。NaN 不是合法標籤，請用 FaceOf 做檢查。
func Float(v float64) Face {
	if v == math.Trunc(v) && v >= -(1<<63) && v < 1<<63 {
		return Int(int64(v))
	}
	return Face{k: kindFloat, f: v}
}

// Str 建立字串骰面
func Str(v string) Face { return Face{k: kindString, s: v} }

// Ints 便利方法：把多個整數轉成骰面序列
func Ints(vs ...int) []Face {
	out := make([]Face, len(vs))
	for i, v := range vs {
		out[i] = Int(int64(v))
	}
	return out
}

// Strs 便利方法：把多個字串轉成骰面序列
func Strs(vs ...string) []Face {
	out := make([]Face, len(vs))
	for i, v := range vs {
		out[i] = Str(v)
	}
	return out
}

// Range 回傳 [lo, hi] 的整數骰面，例如 Range(1, 6) 為標準六面骰。
func Range(lo, hi int) []Face {
	if hi < lo {
		return []Face{}
	}
	out := make([]Face, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, Int(int64(v)))
	}
	return out
}

func (f Face) Valid() bool {
	switch f.k {
	case kindInt, kindString:
		return true
	case kindFloat:
		return !math.IsNaN(f.f)
	default:
		return false
	}
}

func (f Face) IsNumber() bool { return f.k == kindInt || f.k == kindFloat }

// Value 回傳底層值：int64、float64 或 string；零值 Face 回傳 nil。
func (f Face) Value() any {
	switch f.k {
	case kindInt:
		return f.i
	case kindFloat:
		return f.f
	case kindString:
		return f.s
	default:
		return nil
	}
}

func (f Face) String() string {
	switch f.k {
	case kindInt:
		return strconv.FormatInt(f.i, 10)
	case kindFloat:
		return strconv.FormatFloat(f.f, 'g', -1, 64)
	case kindString:
		return f.s
	default:
		return "<nil>"
	}
}

// Key 回傳無歧義的編碼字串，讓 []Face 可以作為分組用的 map key。
func (f Face) Key() string {
	switch f.k {
	case kindInt:
		return "i" + strconv.FormatInt(f.i, 10)
	case kindFloat:
		return "f" + strconv.FormatFloat(f.f, 'g', -1, 64)
	case kindString:
		return "s" + strconv.Itoa(len(f.s)) + ":" + f.s
	default:
		return "-"
	}
}

// Compare 定義骰面的全序：
//   - 數字（整數與浮點）依數值比較；整數值的浮點已正規化為 Int，因此不會與整數並列。
//   - 所有數字排在字串之前。
//   - 字串依字典序。
//
// 只有兩個 Face 完全相同時才回傳 0。
func (f Face) Compare(o Face) int {
	fn, on := f.IsNumber(), o.IsNumber()
	switch {
	case fn && !on:
		return -1
	case !fn && on:
		return 1
	case !fn && !on:
		if c := cmp.Compare(f.k, o.k); c != 0 {
			return c
		}
		return cmp.Compare(f.s, o.s)
	}
	if f.k == kindInt && o.k == kindInt {
		return cmp.Compare(f.i, o.i)
	}
	if c := cmp.Compare(f.float(), o.float()); c != 0 {
		return c
	}
	return cmp.Compare(f.k, o.k) // 超出 int64 的浮點與極大整數的精度誤差
}

func (f Face) float() float64 {
	if f.k == kindInt {
		return float64(f.i)
	}
	return f.f
}

// CompareSeq 以字典序比較兩個骰面序列
func CompareSeq(a, b []Face) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// MarshalJSON 輸出原生 JSON 純量（數字或字串）
func (f Face) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Value())
}

// UnmarshalJSON 接受 JSON 數字或字串
func (f *Face) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return errs.WrapAs(err, errs.Warn, errs.Validation, "face: invalid json")
	}
	face, err := FaceOf(v)
	if err != nil {
		return err
	}
	*f = face
	return nil
}

// MarshalYAML 輸出原生 YAML 純量（滿足 yaml.v3 Marshaler）
func (f Face) MarshalYAML() (any, error) {
	return f.Value(), nil
}

// FaceOf 把未定型的純量轉成 Face。
//
// 接受：所有整數型別、浮點型別（NaN 除外）、字串、json.Number、Face。
// bool 與其他型別回傳 Validation 錯誤。
func FaceOf(v any) (Face, error) {
	switch x := v.(type) {
	case Face:
		if !x.Valid() {
			return Face{}, errs.Kindf(errs.Validation, "face: invalid label %v", x)
		}
		return x, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		fl, err := x.Float64()
		if err != nil {
			return Face{}, errs.Kindf(errs.Validation, "face: bad number %q", x.String())
		}
		return FaceOf(fl)
	case nil:
		return Face{}, errs.Kindf(errs.Validation, "face: nil label")
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Face{}, errs.Kindf(errs.Validation, "face: %d overflows int64", u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		fl := rv.Float()
		if math.IsNaN(fl) {
			return Face{}, errs.Kindf(errs.Validation, "face: NaN is not a valid label")
		}
		return Float(fl), nil
	case reflect.String:
		return Str(rv.String()), nil
	default:
		return Face{}, errs.Kindf(errs.Validation, "face: unsupported label type %T", v)
	}
}

// FacesOf 把未定型的序列（slice 或 array）轉成骰面序列。
//
// 非序列（nil、map、純量…）或序列中含不支援的元素時回傳 Validation 錯誤。
func FacesOf(v any) ([]Face, error) {
	switch x := v.(type) {
	case []Face:
		out := make([]Face, len(x))
		for i, f := range x {
			if !f.Valid() {
				return nil, errs.Kindf(errs.Validation, "faces: invalid label at %d", i)
			}
			out[i] = f
		}
		return out, nil
	case nil:
		return nil, errs.Kindf(errs.Validation, "faces: must be a sequence, got nil")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, errs.Kindf(errs.Validation, "faces: must be a sequence, got %T", v)
	}
	out := make([]Face, rv.Len())
	for i := range out {
		f, err := FaceOf(rv.Index(i).Interface())
		if err != nil {
			return nil, errs.Wrap(err, fmt.Sprintf("faces: element %d", i))
		}
		out[i] = f
	}
	return out, nil
}
