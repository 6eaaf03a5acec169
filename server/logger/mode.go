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

// Package logger 組裝 dicelab 使用的 *slog.Logger。
//
// 兩種注入方式：
//   - 直接用 New(LogMode) / NewAsync(buf, LogMode) 取得預設組裝好的 *slog.Logger。
//   - 自行組裝 slog.Handler（JSON/Text/ReplaceAttr/LevelVar...），再用 AsyncHandler 包成非阻塞 handler。
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/zintix-labs/dicelab/errs"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
)

var modeNames = map[LogMode]string{
	ModeDev:     "dev",
	ModeProd:    "prod",
	ModeSilence: "silence",
}

func (m LogMode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return "unknown"
}

// ParseMode 解析 dev / prod / silence（不分大小寫，空字串視為 dev）
func ParseMode(s string) (LogMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev":
		return ModeDev, nil
	case "prod":
		return ModeProd, nil
	case "silence", "silent", "off":
		return ModeSilence, nil
	default:
		return ModeDev, errs.Kindf(errs.Validation, "unknown log mode %q (dev|prod|silence)", s)
	}
}

func (m LogMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText 讓 LogMode 可以直接從環境變數或 flag 文字解析
func (m *LogMode) UnmarshalText(b []byte) error {
	mode, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// New 依 LogMode 建立同步 logger
func New(mode LogMode) *slog.Logger {
	return slog.New(Handler(mode))
}

// NewAsync 依 LogMode 建立非同步 logger，並回傳 handler 供關閉時 drain。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(Handler(mode), buf)
	return slog.New(ah), ah
}

// Handler 回傳 LogMode 對應的基礎 handler
func Handler(mode LogMode) slog.Handler {
	switch mode {
	case ModeDev:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	case ModeProd:
		// 正式環境：JSON + stdout
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	case ModeSilence:
		return slog.DiscardHandler
	default:
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}
}
