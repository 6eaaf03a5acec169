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

package v1

import (
	"net/http"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/dice"
	"github.com/zintix-labs/dicelab/sdk/game"
	"github.com/zintix-labs/dicelab/sdk/table"
	"github.com/zintix-labs/dicelab/stats"
)

// Sim POST /v1/sim
func (h *Handler) Sim(w http.ResponseWriter, r *http.Request) {
	type SimResponse struct {
		Stats      *stats.Report `json:"stats"`
		Seed       int64         `json:"seed"`
		UsedTime   int64         `json:"used_ms"`
		Checkpoint string        `json:"checkpoint"`
	}
	req, err := decodeRun(w, r)
	if err != nil {
		h.fail(w, r, "sim decode", err)
		return
	}
	sim, seed, err := h.simulator(req, h.MaxRolls)
	if err != nil {
		h.fail(w, r, "build simulator", err)
		return
	}
	st, used, err := sim.Run(req.Rolls, false)
	if err != nil {
		h.fail(w, r, "simulate", errs.Wrap(err, "simulate err"))
		return
	}
	if err := r.Context().Err(); err != nil {
		h.fail(w, r, "simulate", errs.Wrap(err, "request ended during simulation"))
		return
	}
	cp, err := sim.Checkpoint()
	if err != nil {
		h.fail(w, r, "checkpoint", err)
		return
	}
	writeJSON(w, SimResponse{Stats: st, Seed: seed, UsedTime: used.Milliseconds(), Checkpoint: cp})
}

// Results POST /v1/results
//
// 回傳寬表（每列一次擲骰）或窄表（每列一顆骰子的一次結果）；列數受 MaxRows 限制。
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	type ResultsResponse struct {
		Lab     string                  `json:"lab"`
		Seed    int64                   `json:"seed"`
		Format  string                  `json:"format"`
		Jackpot int                     `json:"jackpot"`
		Table   *table.Table[dice.Face] `json:"table"`
	}
	req, err := decodeRun(w, r)
	if err != nil {
		h.fail(w, r, "results decode", err)
		return
	}
	f, err := game.ParseFormat(req.Format)
	if err != nil {
		h.fail(w, r, "results format", err)
		return
	}
	sim, seed, err := h.simulator(req, h.MaxRows)
	if err != nil {
		h.fail(w, r, "build simulator", err)
		return
	}
	if err := sim.Game().Play(req.Rolls); err != nil {
		h.fail(w, r, "play", errs.Wrap(err, "play err"))
		return
	}
	t, err := sim.Results(f)
	if err != nil {
		h.fail(w, r, "results", err)
		return
	}
	jp, err := sim.Analyzer().Jackpot()
	if err != nil {
		h.fail(w, r, "results", err)
		return
	}
	writeJSON(w, ResultsResponse{Lab: sim.LabName, Seed: seed, Format: f.String(), Jackpot: jp, Table: t})
}
