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

package dicelab

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/dicelab/corefmt"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/analyzer"
	"github.com/zintix-labs/dicelab/sdk/core"
	"github.com/zintix-labs/dicelab/sdk/dice"
	"github.com/zintix-labs/dicelab/sdk/game"
	"github.com/zintix-labs/dicelab/sdk/table"
	"github.com/zintix-labs/dicelab/spec"
	"github.com/zintix-labs/dicelab/stats"
)

// 模擬流程的階段數（擲骰、分析、報表），用於進度條
const runStages = 3

// Simulator 以單一執行緒跑一個實驗：擲骰 → 分析 → 報表。
//
// 每顆不同的骰子都由 seedMaker 從初始 seed 推導出自己的 PCG64，
// 因此相同 seed 的模擬完全可重現，骰子之間也不共用亂數流。
type Simulator struct {
	LabName   string
	ls        *spec.LabSetting
	initSeed  int64
	seedmaker *seedMaker
	cores     []*core.Core // 依骰子建立順序，每顆不同的骰子一個
	g         *game.Game
	an        *analyzer.Analyzer
	log       *slog.Logger
}

func newSimulatorWithSeed(ls *spec.LabSetting, pf core.PRNGFactory, seed int64, log *slog.Logger) (*Simulator, error) {
	s := &Simulator{
		LabName:   ls.Name,
		ls:        ls,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		log:       log,
	}
	g, err := ls.BuildGame(func(int) *core.Core {
		c := core.New(pf.New(s.seedmaker.next()))
		s.cores = append(s.cores, c)
		return c
	})
	if err != nil {
		return nil, err
	}
	an, err := analyzer.New(g)
	if err != nil {
		return nil, err
	}
	s.g = g
	s.an = an
	return s, nil
}

// Run 擲 rolls 次並回傳統計報告與用時；rolls < 1 時使用設定檔的 rolls。
//
// 重複呼叫會以新的歷史取代舊歷史，骰子的亂數流則持續往下走。
func (s *Simulator) Run(rolls int, showpb bool) (*stats.Report, time.Duration, error) {
	if rolls < 1 {
		rolls = s.ls.Rolls
	}
	if rolls < 1 {
		return nil, 0, errs.Kindf(errs.Validation, "rolls must > 0")
	}
	s.log.Debug("sim start", slog.String("lab", s.LabName), slog.Int64("seed", s.initSeed), slog.Int("rolls", rolls))

	bar := pb.StartNew(runStages)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	if err := s.g.Play(rolls); err != nil {
		bar.Finish()
		return nil, 0, errs.Wrap(err, "sim play failed")
	}
	bar.Increment()
	rep, err := stats.Build(stats.Input{
		Name:     s.LabName,
		Seed:     s.initSeed,
		IDs:      s.ls.DieIDs(),
		Analyzer: s.an,
	})
	if err != nil {
		bar.Finish()
		return nil, 0, errs.Wrap(err, "sim analyze failed")
	}
	bar.Add(runStages - 1)
	used := time.Since(bar.StartTime())
	bar.Finish()

	s.log.Debug("sim done", slog.String("lab", s.LabName), slog.Int("jackpots", rep.Summary.Jackpots), slog.Duration("used", used))
	return rep, used, nil
}

// Results 回傳最近一次 Run 的歷史；尚未執行時回傳 NoData。
func (s *Simulator) Results(f game.Format) (*table.Table[dice.Face], error) {
	return s.g.Results(f)
}

// Checkpoint 把所有骰子目前的亂數狀態編成一段 base64url 文字。
//
// 之後以 Restore 還原，下一次 Run 會得到與當下繼續執行完全相同的結果。
func (s *Simulator) Checkpoint() (string, error) {
	frames := make([][]byte, 0, len(s.cores))
	for i, c := range s.cores {
		b, err := c.Snapshot()
		if err != nil {
			return "", errs.Wrap(err, fmt.Sprintf("snapshot die core %d failed", i))
		}
		frames = append(frames, b)
	}
	return corefmt.EncodeFrames(frames), nil
}

// Restore 以 Checkpoint 的輸出還原所有骰子的亂數狀態。
//
// 框架數量必須與骰子數一致；任何一顆還原失敗時，其他骰子的狀態維持不變。
func (s *Simulator) Restore(cp string) error {
	frames, err := corefmt.DecodeFrames(cp, len(s.cores))
	if err != nil {
		return errs.Wrap(err, "restore checkpoint failed")
	}
	olds := make([][]byte, len(s.cores))
	for i, c := range s.cores {
		if olds[i], err = c.Snapshot(); err != nil {
			return errs.Wrap(err, "restore checkpoint failed")
		}
	}
	for i, c := range s.cores {
		if err := c.Restore(frames[i]); err != nil {
			for j := 0; j < i; j++ {
				_ = s.cores[j].Restore(olds[j])
			}
			return errs.WrapAs(err, errs.Warn, errs.Validation, fmt.Sprintf("restore die core %d failed", i))
		}
	}
	s.log.Debug("sim restored", slog.String("lab", s.LabName), slog.Int("cores", len(s.cores)))
	return nil
}

func (s *Simulator) Seed() int64 { return s.initSeed }

func (s *Simulator) Setting() *spec.LabSetting { return s.ls }

func (s *Simulator) Game() *game.Game { return s.g }

func (s *Simulator) Analyzer() *analyzer.Analyzer { return s.an }

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	return &seedMaker{state: uint64(seed) & mask63}
}

// state 走全週期（不重複），再用可逆 mix63 打散
func (s *seedMaker) next() int64 {
	s.state = (s.state*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
	return int64(mix63(s.state))                                              // 一定非負
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
