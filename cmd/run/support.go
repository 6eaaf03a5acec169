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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/zintix-labs/dicelab"
	"github.com/zintix-labs/dicelab/demo"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	lab       string
	file      string
	rolls     int
	seed      int64
	out       string
	showpb    bool
	list      bool
	pprofmode string
}

func bindVar(args []string) (*config, error) {
	cfg := new(config)
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.StringVar(&cfg.lab, "lab", "fair_pair", "demo lab name")
	fs.StringVar(&cfg.file, "config", "", "path to a lab yaml/json (overrides -lab)")
	fs.IntVar(&cfg.rolls, "rolls", 0, "number of rolls (0: use the lab setting)")
	fs.Int64Var(&cfg.seed, "seed", -1, "int64 seed (<0: lab setting seed or crypto/rand)")
	fs.StringVar(&cfg.out, "out", "table", "output: table|json|yaml")
	fs.BoolVar(&cfg.showpb, "pb", true, "show progress bar")
	fs.BoolVar(&cfg.list, "list", false, "list demo labs and exit")
	fs.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.rolls < 0 {
		return nil, errs.Kindf(errs.Validation, "rolls must >= 0")
	}
	if _, err := stats.RenderOf(cfg.out); err != nil {
		return nil, err
	}
	return cfg, nil
}

// 這裡組裝實驗室並執行模擬
func execute(cfg *config, w io.Writer) error {
	lab, err := demo.NewLab()
	if err != nil {
		return err
	}
	if cfg.list {
		for _, e := range lab.All() {
			fmt.Fprintf(w, "%-12s %d dice  %s\n", e.Name, e.Dice, e.Desc)
		}
		return nil
	}

	sim, err := newSimulator(lab, cfg)
	if err != nil {
		return err
	}
	rolls := cfg.rolls
	if rolls == 0 {
		rolls = sim.Setting().Rolls
	}

	// 至此確保可執行
	p := message.NewPrinter(language.English)
	if cfg.out == "table" {
		banner := p.Sprintf("[LAB:%s] [DICE:%d] [ROLLS:%d] [SEED:%d]", sim.LabName, len(sim.Setting().Game), rolls, sim.Seed())
		color.New(color.FgGreen, color.Bold).Fprintln(w, banner)
	}

	rep, used, err := sim.Run(rolls, cfg.showpb && cfg.out == "table")
	if err != nil {
		return err
	}
	if cfg.out == "table" {
		rep.Fprint(w, used)
		return nil
	}
	render, _ := stats.RenderOf(cfg.out)
	return rep.WriteWith(w, render)
}

// newSimulator: -config 優先於 -lab；-seed < 0 時沿用設定檔的 seed
func newSimulator(lab *dicelab.Lab, cfg *config) (*dicelab.Simulator, error) {
	if cfg.file != "" {
		raw, err := os.ReadFile(cfg.file)
		if err != nil {
			return nil, errs.Wrap(err, "read config")
		}
		return lab.NewSimulatorByConfig(strings.ToLower(filepath.Ext(cfg.file)), raw, cfg.seed)
	}
	if cfg.seed < 0 {
		return lab.NewSimulatorAuto(cfg.lab)
	}
	return lab.NewSimulator(cfg.lab, cfg.seed)
}
