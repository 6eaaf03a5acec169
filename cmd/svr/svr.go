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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/dicelab/demo"
	"github.com/zintix-labs/dicelab/server"
	"github.com/zintix-labs/dicelab/server/logger"
	"github.com/zintix-labs/dicelab/server/svrcfg"
)

// 環境變數 (DICELAB_*) 提供預設值，旗標覆蓋環境變數。
func main() {
	cfg, closeLog, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closeLog()
	if err := server.Run(cfg); err != nil {
		closeLog()
		os.Exit(1)
	}
}

func loadConfig(args []string) (*svrcfg.SvrCfg, func(), error) {
	e, err := svrcfg.ParseEnv()
	if err != nil {
		return nil, nil, err
	}
	fs := flag.NewFlagSet("svr", flag.ContinueOnError)
	fs.StringVar(&e.Addr, "addr", e.Addr, "listen address")
	fs.TextVar(&e.LogMode, "log-mode", e.LogMode, "log mode: dev|prod|silence")
	fs.IntVar(&e.MaxRolls, "max-rolls", e.MaxRolls, "max rolls per /v1/sim request")
	fs.IntVar(&e.MaxResultRows, "max-rows", e.MaxResultRows, "max rolls per /v1/results request")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	log, ah := logger.NewAsync(4096, e.LogMode)
	lab, err := demo.NewLab()
	if err != nil {
		ah.Close()
		return nil, nil, err
	}
	lab.SetLogger(log)
	return &svrcfg.SvrCfg{Env: e, Log: log, Lab: lab}, ah.Close, nil
}
