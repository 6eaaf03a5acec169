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

// Package v1 提供 /v1 底下的實驗 API。
package v1

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/dicelab"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/server/httperr"
	"github.com/zintix-labs/dicelab/server/netsvr/middleware"
	"github.com/zintix-labs/dicelab/server/svrcfg"
)

// 請求本體上限
const maxBodyBytes = 1 << 20

type Handler struct {
	Lab      *dicelab.Lab
	Log      *slog.Logger
	MaxRolls int
	MaxRows  int
}

func NewHandler(sc *svrcfg.SvrCfg) (*Handler, error) {
	if sc == nil || sc.Lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	return &Handler{
		Lab:      sc.Lab,
		Log:      sc.Log,
		MaxRolls: sc.MaxRolls,
		MaxRows:  sc.MaxResultRows,
	}, nil
}

// runRequest 是 /v1/sim 與 /v1/results 共用的請求格式。
//
// lab 與 setting 擇一：lab 指目錄中的實驗，setting 為完整的實驗設定 (JSON)。
// checkpoint 為上一次 /v1/sim 回傳的亂數狀態，帶上時從該狀態接續擲骰。
type runRequest struct {
	Lab        string          `json:"lab,omitempty"`
	Setting    json.RawMessage `json:"setting,omitempty"`
	Rolls      int             `json:"rolls"`
	Seed       *int64          `json:"seed,omitempty"`
	Format     string          `json:"format,omitempty"`
	Checkpoint string          `json:"checkpoint,omitempty"`
}

func decodeRun(w http.ResponseWriter, r *http.Request) (*runRequest, error) {
	req := new(runRequest)
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, errs.WrapAs(err, errs.Warn, errs.Validation, "invalid json")
	}
	return req, nil
}

// simulator 依請求建立模擬器，並檢查擲骰次數在 [1, limit] 之間。
func (h *Handler) simulator(req *runRequest, limit int) (*dicelab.Simulator, int64, error) {
	hasLab := req.Lab != ""
	hasSetting := len(bytes.TrimSpace(req.Setting)) > 0 && !bytes.Equal(bytes.TrimSpace(req.Setting), []byte("null"))
	if hasLab == hasSetting {
		return nil, 0, errs.Kindf(errs.Validation, "exactly one of lab or setting is required")
	}
	if req.Rolls < 1 || req.Rolls > limit {
		return nil, 0, errs.Kindf(errs.Validation, "rolls must be between 1 and %d", limit)
	}
	seed := core.RandomSeed()
	if req.Seed != nil {
		if *req.Seed < 0 {
			return nil, 0, errs.Kindf(errs.Validation, "seed must be >= 0")
		}
		seed = *req.Seed
	}
	var (
		sim *dicelab.Simulator
		err error
	)
	if hasLab {
		sim, err = h.Lab.NewSimulator(req.Lab, seed)
	} else {
		sim, err = h.Lab.NewSimulatorByJSON(req.Setting, seed)
	}
	if err != nil {
		return nil, 0, err
	}
	if req.Checkpoint != "" {
		if err := sim.Restore(req.Checkpoint); err != nil {
			return nil, 0, err
		}
	}
	return sim, seed, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	httperr.Log(h.Log, msg, err)
	httperr.Errs(w, err, middleware.GetReqId(r))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func urlParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}
