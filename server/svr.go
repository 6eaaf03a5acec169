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

// Package server 是 HTTP 服務的組裝入口：驗證設定、建立 chi server、註冊路由並交給 app 管理生命週期。
//
// server 不決定設定檔或環境變數的來源，所有依賴都由 svrcfg.SvrCfg 注入。
package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/server/api"
	"github.com/zintix-labs/dicelab/server/app"
	"github.com/zintix-labs/dicelab/server/netsvr"
	"github.com/zintix-labs/dicelab/server/svrcfg"
)

// New 建立已註冊完路由的預設 server（尚未啟動）
func New(sCfg *svrcfg.SvrCfg) (netsvr.NetSvr, error) {
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	svr := netsvr.NewChiServer(sCfg.Addr, netsvr.DefaultTimeouts)
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return nil, err
	}
	return svr, nil
}

// Run 建立預設 server 並阻塞直到收到終止信號。
//
// 設定驗證失敗時 logger 可能不可用，因此額外輸出到 stderr。
func Run(sCfg *svrcfg.SvrCfg) error {
	svr, err := New(sCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return serve(sCfg, svr)
}

// RunWithSvr 與 Run 相同，但使用呼叫端提供的 NetSvr（自訂 listener、TLS、逾時...）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("default server is not ready")
	}
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return err
	}
	return serve(sCfg, svr)
}

func serve(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	a := app.NewWith(sCfg.Log, svr)
	sCfg.Log.Info("[dicelab] listening", slog.String("addr", sCfg.Addr), slog.Int("max_rolls", sCfg.MaxRolls))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
