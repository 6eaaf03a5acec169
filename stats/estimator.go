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

package stats

import (
	"math"

	"github.com/zintix-labs/dicelab/sdk/dice"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// Pearson 卡方適合度檢定
//
// 期望機率為 0 的骰面不計入（也不會被擲出）；df = 有效骰面數 - 1。
// df 為 0（只有一個可能結果）時 p-value 定義為 1。
func chiSquareGOF(observed []int, probs []float64) (x2 float64, df int, pValue float64) {
	n := 0
	for _, o := range observed {
		n += o
	}
	if n == 0 {
		return 0, 0, 1
	}
	cells := 0
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		cells++
		e := p * float64(n)
		d := float64(observed[i]) - e
		x2 += d * d / e
	}
	df = cells - 1
	if df < 1 {
		return x2, 0, 1
	}
	chi := distuv.ChiSquared{K: float64(df)}
	return x2, df, chi.Survival(x2)
}

// 所有骰子同時出現同一面的理論機率：對第一顆骰子的每個骰面，把各骰子出現該面的機率相乘後加總。
func expectedJackpot(ds []*dice.Die) float64 {
	if len(ds) == 0 {
		return 0
	}
	probs := make([]map[dice.Face]float64, len(ds))
	for i, d := range ds {
		m := make(map[dice.Face]float64, d.Len())
		for j, p := range d.Probabilities() {
			m[d.Faces()[j]] = p
		}
		probs[i] = m
	}
	total := 0.0
	for f, p := range probs[0] {
		prod := p
		for _, m := range probs[1:] {
			prod *= m[f]
			if prod == 0 {
				break
			}
		}
		total += prod
	}
	return total
}

// 數值骰面的平均與標準差；含字串骰面時回傳 NaN。
func numericMoments(faces []dice.Face, weights []float64) (mean, std float64) {
	xs := make([]float64, len(faces))
	for i, f := range faces {
		v, ok := faceFloat(f)
		if !ok {
			return math.NaN(), math.NaN()
		}
		xs[i] = v
	}
	if len(xs) == 0 {
		return math.NaN(), math.NaN()
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return math.NaN(), math.NaN()
	}
	mean = stat.Mean(xs, weights)
	if len(xs) == 1 {
		return mean, 0
	}
	return mean, math.Sqrt(stat.PopVariance(xs, weights))
}

func faceFloat(f dice.Face) (float64, bool) {
	switch v := f.Value().(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
