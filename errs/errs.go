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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : 錯誤類別，描述「哪一種合約被違反」，與嚴重度 (ErrLevel) 互相獨立。
//
// Kind 本身實作 error，可直接當作 errors.Is 的比對目標：
//
//	if errors.Is(err, errs.OutOfRange) { ... }
type Kind uint8

const (
	Unknown      Kind = iota
	Validation        // 建構/參數驗證失敗：型別不符、重複骰面、非法格式
	OutOfRange        // 指定的 key 不存在，例如改權重時給了不存在的骰面
	TypeMismatch      // 值的型別不被接受，例如權重不是數值
	NoData            // 尚未有資料可供分析（還沒擲過骰）
)

var kindMap = map[Kind]string{
	Unknown:      "unknown",
	Validation:   "validation",
	OutOfRange:   "out of range",
	TypeMismatch: "type mismatch",
	NoData:       "no data",
}

func (k Kind) Error() string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return "unknown"
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重度；Kind 表示違反的合約類別。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Kind != Unknown {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), e.Kind.Error(), e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// Is 讓 errors.Is(err, errs.Validation) 這類以 Kind 為目標的比對成立。
func (e *E) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k != Unknown && e.Kind == k
}

// New 依錯誤碼與參數建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// Kindf 建立帶有 Kind 的呼叫端錯誤（Warn 等級）。
//
// 骰子/遊戲/分析器的所有合約違反都屬於「呼叫端可修正」的問題，因此一律為 Warn。
func Kindf(k Kind, format string, a ...any) *E {
	return &E{Message: fmt.Sprintf(format, a...), ErrLv: Warn, Kind: k}
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與類別）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / Kindf 並自行指定等級），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	r := New(Fatal, msg)
	if e, ok := AsErr(cause); ok {
		r.ErrLv = e.ErrLv
		r.Kind = e.Kind
	}
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，另外附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

// WrapAs 以指定的等級與類別包裝三方錯誤（例如 yaml / jsonschema 的解析錯誤）。
func WrapAs(cause error, errLv ErrLevel, k Kind, msg string) *E {
	return &E{Message: msg, Cause: cause, ErrLv: errLv, Kind: k}
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
