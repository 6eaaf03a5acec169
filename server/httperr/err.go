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

// Package httperr 把 errs.E 的等級與類別映射成 HTTP 狀態碼與 JSON 錯誤內容。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/dicelab/errs"
)

// Body 錯誤回應內容
type Body struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	ReqID string `json:"req_id,omitempty"`
}

func StatusCode(err error) int {
	// 1) context 取消/超時（即使被 wrap 也能被 errors.Is 命中）
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout // 504
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout // 408
	}

	// 2) 類別優先於等級
	switch {
	case errors.Is(err, errs.OutOfRange):
		return http.StatusNotFound
	case errors.Is(err, errs.NoData):
		return http.StatusConflict
	}

	// 3) 等級
	var e *errs.E
	if errors.As(err, &e) {
		switch e.ErrLv {
		case errs.Warn:
			return http.StatusBadRequest // 400
		case errs.Fatal:
			return http.StatusInternalServerError // 500
		}
	}
	return http.StatusInternalServerError
}

// Errs 寫回 JSON 錯誤；reqID 可為空。
func Errs(w http.ResponseWriter, err error, reqID string) {
	if err == nil {
		return
	}
	body := Body{Error: err.Error(), ReqID: reqID}
	if e, ok := errs.AsErr(err); ok && e.Kind != errs.Unknown {
		body.Kind = e.Kind.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(body)
}

// Log 只記錄伺服器端值得注意的錯誤：逾時類為 warn，5xx 為 error，其餘呼叫端錯誤交給 access log。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil {
		return
	}
	status := StatusCode(err)
	if (status == 408) || (status == 504) {
		log.Warn(msg, slog.Any("err", err))
	} else if (status >= 500) && (status < 600) {
		log.Error(msg, slog.Any("err", err))
	}
}
