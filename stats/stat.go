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

// Package stats 把一次模擬的歷史整理成報表：頭獎（所有骰子同面）次數與信賴區間、
// 每顆骰子的骰面分佈與卡方檢定、最常見的組合與排列，並提供 JSON/YAML/表格輸出。
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/dicelab/errs"
	"github.com/zintix-labs/dicelab/sdk/analyzer"
	"github.com/zintix-labs/dicelab/sdk/dice"
	"github.com/zintix-labs/dicelab/sdk/game"
	"github.com/zintix-labs/dicelab/sdk/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// Confidence 報表使用的信賴水準
const Confidence = 0.95

// DefaultTopN 組合/排列預設保留的筆數
const DefaultTopN = 10

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// Report 一次模擬的統計報告
type Report struct {
	Summary      *SummaryReport `json:"Summary"      yaml:"Summary"`
	Dice         []*DieReport   `json:"Dice"         yaml:"Dice"`
	Combos       []Tally        `json:"Combos"       yaml:"Combos"`
	Permutations []Tally        `json:"Permutations" yaml:"Permutations"`
}

type SummaryReport struct {
	LabName         string  `json:"LabName"         yaml:"LabName"`
	Seed            int64   `json:"Seed"            yaml:"Seed"`
	Rolls           int     `json:"Rolls"           yaml:"Rolls"`
	DiceCount       int     `json:"DiceCount"       yaml:"DiceCount"`
	Jackpots        int     `json:"Jackpots"        yaml:"Jackpots"`
	JackpotRate     float64 `json:"JackpotRate"     yaml:"JackpotRate"`
	JackpotCI       CI      `json:"JackpotCI"       yaml:"JackpotCI"`
	ExpectedJackpot float64 `json:"ExpectedJackpot" yaml:"ExpectedJackpot"`
	DistinctCombos  int     `json:"DistinctCombos"  yaml:"DistinctCombos"`
	DistinctPerms   int     `json:"DistinctPerms"   yaml:"DistinctPerms"`
}

// DieReport 單一骰子位置的分佈
//
// Mean/Std 只對全數值骰面有意義，否則不輸出。
type DieReport struct {
	Position     int         `json:"Position"            yaml:"Position"`
	ID           string      `json:"ID,omitempty"        yaml:"ID,omitempty"`
	Faces        []dice.Face `json:"Faces"               yaml:"Faces"`
	Counts       []int       `json:"Counts"              yaml:"Counts"`
	Observed     []float64   `json:"Observed"            yaml:"Observed"`
	Expected     []float64   `json:"Expected"            yaml:"Expected"`
	ChiSquare    float64     `json:"ChiSquare"           yaml:"ChiSquare"`
	DF           int         `json:"DF"                  yaml:"DF"`
	PValue       float64     `json:"PValue"              yaml:"PValue"`
	Mean         *float64    `json:"Mean,omitempty"      yaml:"Mean,omitempty"`
	ExpectedMean *float64    `json:"ExpectedMean,omitempty" yaml:"ExpectedMean,omitempty"`
	Std          *float64    `json:"Std,omitempty"       yaml:"Std,omitempty"`
}

// Tally 一種組合或排列的出現次數
type Tally struct {
	Key   []dice.Face `json:"Key"   yaml:"Key"`
	Count int         `json:"Count" yaml:"Count"`
	Rate  float64     `json:"Rate"  yaml:"Rate"`
}

// Input 建立報表需要的資料
type Input struct {
	Name     string
	Seed     int64
	IDs      []string // 與遊戲骰子位置對齊，可為空
	Analyzer *analyzer.Analyzer
	TopN     int // <= 0 使用 DefaultTopN
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Build 依分析器目前持有的歷史建立報表；尚未擲骰時回傳 NoData。
func Build(in Input) (*Report, error) {
	if in.Analyzer == nil {
		return nil, errs.Kindf(errs.Validation, "stats: analyzer is nil")
	}
	g := in.Analyzer.Game()
	wide, err := g.Results(game.Wide)
	if err != nil {
		return nil, err
	}
	jackpots, err := in.Analyzer.Jackpot()
	if err != nil {
		return nil, err
	}
	combos, err := in.Analyzer.ComboCounts()
	if err != nil {
		return nil, err
	}
	perms, err := in.Analyzer.PermutationCounts()
	if err != nil {
		return nil, err
	}
	topN := in.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	ds := g.Dice()
	n := wide.Len()
	rate, ci := proportionCICP(jackpots, n, Confidence)
	r := &Report{
		Summary: &SummaryReport{
			LabName:         in.Name,
			Seed:            in.Seed,
			Rolls:           n,
			DiceCount:       len(ds),
			Jackpots:        jackpots,
			JackpotRate:     rate,
			JackpotCI:       ci,
			ExpectedJackpot: expectedJackpot(ds),
			DistinctCombos:  combos.Len(),
			DistinctPerms:   perms.Len(),
		},
		Dice:         make([]*DieReport, len(ds)),
		Combos:       tallies(combos, n, topN),
		Permutations: tallies(perms, n, topN),
	}
	cols := wide.Columns()
	for i, d := range ds {
		col, _ := wide.Column(cols[i])
		dr := dieReport(i, d, col)
		if i < len(in.IDs) {
			dr.ID = in.IDs[i]
		}
		r.Dice[i] = dr
	}
	return r, nil
}

func (r *Report) WriteWith(w io.Writer, rep Render) error {
	return rep.Write(w, r)
}

// StdOut 以表格輸出報表與用時
func (r *Report) StdOut(ut time.Duration) {
	r.Fprint(os.Stdout, ut)
}

func (r *Report) Fprint(w io.Writer, ut time.Duration) {
	fmt.Fprint(w, formatDuration(ut, r.Summary.Rolls))
	fmt.Fprint(w, r.Tables())
}

// Tables 回傳完整的表格字串
func (r *Report) Tables() string {
	var sb strings.Builder
	sk, sm := r.fmtBasic()
	sb.WriteString(fmtTable(r.Summary.LabName, sk, sm))
	for _, d := range r.Dice {
		dk, dm := d.fmtDie()
		sb.WriteString(fmtTable(d.title(), dk, dm))
	}
	if len(r.Combos) > 0 {
		ck, cm := fmtTallies(r.Combos)
		sb.WriteString(fmtTable("Top Combos", ck, cm))
	}
	if len(r.Permutations) > 0 {
		pk, pm := fmtTallies(r.Permutations)
		sb.WriteString(fmtTable("Top Permutations", pk, pm))
	}
	return sb.String()
}

// ============================================================
// ** 內部方法 **
// ============================================================

func dieReport(pos int, d *dice.Die, col []dice.Face) *DieReport {
	faces := d.Faces()
	probs := d.Probabilities()
	idx := make(map[dice.Face]int, len(faces))
	for i, f := range faces {
		idx[f] = i
	}
	counts := make([]int, len(faces))
	for _, f := range col {
		counts[idx[f]]++
	}
	obs := make([]float64, len(faces))
	weights := make([]float64, len(faces))
	for i, c := range counts {
		weights[i] = float64(c)
		if len(col) > 0 {
			obs[i] = float64(c) / float64(len(col))
		}
	}
	x2, df, p := chiSquareGOF(counts, probs)
	dr := &DieReport{
		Position:  pos,
		Faces:     faces,
		Counts:    counts,
		Observed:  obs,
		Expected:  probs,
		ChiSquare: x2,
		DF:        df,
		PValue:    p,
	}
	if mean, std := numericMoments(faces, weights); !math.IsNaN(mean) {
		dr.Mean, dr.Std = &mean, &std
	}
	if em, _ := numericMoments(faces, probs); !math.IsNaN(em) {
		dr.ExpectedMean = &em
	}
	return dr
}

func tallies(t *table.Table[int], n int, topN int) []Tally {
	size := min(t.Len(), topN)
	out := make([]Tally, size)
	for i := 0; i < size; i++ {
		c := t.Cell(i, 0)
		out[i] = Tally{Key: t.Key(i), Count: c, Rate: float64(c) / float64(n)}
	}
	return out
}

func formatDuration(d time.Duration, rolls int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	rps := int(float64(rolls) / sec)
	if sec < 60.0 {
		return p.Sprintf("used: %.2f seconds\nrps : %d rolls/sec\n", sec, rps)
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		return p.Sprintf("used: %dm %ds\nrps : %d rolls/sec\n", m, s, rps)
	}
	return p.Sprintf("used: %dh:%dm:%ds\nrps : %d rolls/sec\n", h, m, s, rps)
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Summary
	basic := map[string]string{
		"Lab Name":         p.Sprintf("%s", s.LabName),
		"Seed":             fmt.Sprintf("%d", s.Seed),
		"Total Rolls":      p.Sprintf("%d", s.Rolls),
		"Dice":             p.Sprintf("%d", s.DiceCount),
		"Jackpots":         p.Sprintf("%d", s.Jackpots),
		"Jackpot Rate":     p.Sprintf("%.4f %%", 100.0*s.JackpotRate),
		"Jackpot 95% CI":   p.Sprintf("[%.4f%%,%.4f%%]", 100.0*s.JackpotCI.Lo, 100.0*s.JackpotCI.Hi),
		"Expected Jackpot": p.Sprintf("%.4f %%", 100.0*s.ExpectedJackpot),
		"Distinct Combos":  p.Sprintf("%d", s.DistinctCombos),
		"Distinct Perms":   p.Sprintf("%d", s.DistinctPerms),
	}
	keys := []string{"Lab Name", "Seed", "Total Rolls", "Dice", "Jackpots", "Jackpot Rate", "Jackpot 95% CI", "Expected Jackpot", "Distinct Combos", "Distinct Perms"}
	return keys, basic
}

func (d *DieReport) title() string {
	if d.ID == "" {
		return fmt.Sprintf("Die %d", d.Position)
	}
	return fmt.Sprintf("Die %d (%s)", d.Position, d.ID)
}

func (d *DieReport) fmtDie() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(d.Faces)+3)
	msg := make(map[string]string, len(d.Faces)+3)
	for i, f := range d.Faces {
		k := "face " + f.String()
		keys = append(keys, k)
		msg[k] = p.Sprintf("%d (%.3f%% / exp %.3f%%)", d.Counts[i], 100.0*d.Observed[i], 100.0*d.Expected[i])
	}
	keys = append(keys, "chi-square", "p-value")
	msg["chi-square"] = p.Sprintf("%.3f (df=%d)", d.ChiSquare, d.DF)
	msg["p-value"] = p.Sprintf("%.4f", d.PValue)
	if d.Mean != nil && d.ExpectedMean != nil {
		keys = append(keys, "mean")
		msg["mean"] = p.Sprintf("%.4f (exp %.4f, std %.4f)", *d.Mean, *d.ExpectedMean, *d.Std)
	}
	return keys, msg
}

func fmtTallies(ts []Tally) ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, len(ts))
	msg := make(map[string]string, len(ts))
	for i, t := range ts {
		parts := make([]string, len(t.Key))
		for j, f := range t.Key {
			parts[j] = f.String()
		}
		k := "(" + strings.Join(parts, ", ") + ")"
		keys[i] = k
		msg[k] = p.Sprintf("%d (%.3f%%)", t.Count, 100.0*t.Rate)
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	// 標題比內容寬時把值欄撐開
	if tw := runewidth.StringWidth(title); tw > maxKeyLen+maxValLen+1 {
		maxValLen = tw - maxKeyLen - 1
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
