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

// Package corefmt 負責亂數核心快照的傳輸格式。
//
// 多顆骰子的快照以長度前綴框架 (uvarint(len) || payload) 依序串接，
// 需要走 JSON / HTTP 時再轉成 base64url 文字。
package corefmt

import (
	"encoding/base64"
	"encoding/binary"

	"github.com/zintix-labs/dicelab/errs"
)

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.WrapAs(err, errs.Warn, errs.Validation, "decode base64url failed")
	}
	return b, nil
}

// AppendBlobFrame 把 payload 以長度前綴框架附加到 dst 之後。
func AppendBlobFrame(dst []byte, payload []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(payload)))
	return append(dst, payload...)
}

// NextBlobFrame 從 src 讀出第一個框架，回傳 payload 與剩餘位元組。
//
// payload 為複本，不持有 src 的底層陣列。
func NextBlobFrame(src []byte) (payload []byte, rest []byte, err error) {
	n, size := binary.Uvarint(src)
	if size <= 0 {
		return nil, nil, errs.Kindf(errs.Validation, "decode blob frame failed: invalid varint length")
	}
	if uint64(len(src)-size) < n {
		return nil, nil, errs.Kindf(errs.Validation, "decode blob frame failed: truncated payload")
	}
	end := size + int(n)
	payload = make([]byte, n)
	copy(payload, src[size:end])
	return payload, src[end:], nil
}

// EncodeFrames 將多段 payload 依序框起來並轉成 base64url。
func EncodeFrames(payloads [][]byte) string {
	var out []byte
	for _, p := range payloads {
		out = AppendBlobFrame(out, p)
	}
	return EncodeBase64URL(out)
}

// DecodeFrames 是 EncodeFrames 的反向操作，want 為預期的框架數。
func DecodeFrames(s string, want int) ([][]byte, error) {
	raw, err := DecodeBase64URL(s)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, want)
	for len(raw) > 0 {
		var p []byte
		if p, raw, err = NextBlobFrame(raw); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if len(out) != want {
		return nil, errs.Kindf(errs.Validation, "frame count mismatch: want %d got %d", want, len(out))
	}
	return out, nil
}
