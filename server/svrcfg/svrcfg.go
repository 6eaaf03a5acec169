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

package svrcfg

import (
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/zintix-labs/dicelab"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/server/logger"
)

const (
	DefaultAddr     = ":5808"
	DefaultMaxRolls = 1_000_000
	// 單次請求可回傳的歷史列數上限
	DefaultMaxResultRows = 10_000
)

// Env 為可由環境變數覆蓋的執行期設定
type Env struct {
	Addr          string         `env:"DICELAB_ADDR"            envDefault:":5808"`
	LogMode       logger.LogMode `env:"DICELAB_LOG_MODE"        envDefault:"dev"`
	MaxRolls      int            `env:"DICELAB_MAX_ROLLS"       envDefault:"1000000"`
	MaxResultRows int            `env:"DICELAB_MAX_RESULT_ROWS" envDefault:"10000"`
}

// ParseEnv 讀取環境變數
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return e, errs.WrapAs(err, errs.Fatal, errs.Validation, "parse env")
	}
	return e, nil
}

type SvrCfg struct {
	Env
	Log *slog.Logger
	Lab *dicelab.Lab
}

// Valid 補上預設值並檢查必要依賴
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.New(sc.LogMode)
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if sc.MaxRolls < 1 {
		sc.MaxRolls = DefaultMaxRolls
	}
	if sc.MaxResultRows < 1 {
		sc.MaxResultRows = DefaultMaxResultRows
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}
	return nil
}
