package models

import (
	"math"
	"sort"
)

// Stump is a depth-one regression tree fitted to the logistic residuals.
type Stump struct {
	Feature   int
	Threshold float64
	LeftVal   float64
	RightVal  float64
}

type GradientBoosting struct {
	NEstimators        int
	LearningRate       float64
	MinSamples         int
	MaxThresholdsPerFe int
	Features           int
	Init               float64
	Trees              []Stump
}

func NewGradientBoosting() *GradientBoosting {
	return &GradientBoosting{NEstimators: 50, LearningRate: 0.1, MaxThresholdsPerFe: 32}
}

func (gb *GradientBoosting) Name() string { return "GradientBoosting" }

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func (gb *GradientBoosting) Fit(X [][]float64, y []int) error {
	n := len(X)
	if n == 0 {
		return ErrNoSamples
	}
	if n != len(y) {
		return ErrLabelCount
	}
	pos := 0
	for _, v := range y {
		pos += v
	}
	base := math.Min(math.Max(float64(pos)/float64(n), 1e-3), 1-1e-3)
	gb.Init = math.Log(base / (1.0 - base))
	gb.Trees = gb.Trees[:0]

	F := make([]float64, n)
	for i := range F {
		F[i] = gb.Init
	}
	r := make([]float64, n)
	nFeats := len(X[0])
	gb.Features = nFeats
	for m := 0; m < gb.NEstimators; m++ {
		for i := 0; i < n; i++ {
			r[i] = float64(y[i]) - sigmoid(F[i])
		}
		best, ok := gb.bestStump(X, r, nFeats)
		if !ok {
			break
		}
		gb.Trees = append(gb.Trees, best)
		for i := 0; i < n; i++ {
			F[i] += gb.LearningRate * best.value(X[i])
		}
	}
	return nil
}

func (gb *GradientBoosting) bestStump(X [][]float64, r []float64, nFeats int) (Stump, bool) {
	best := Stump{Feature: -1}
	bestSSE := math.MaxFloat64
	for j := 0; j < nFeats; j++ {
		for _, thr := range gbCandidateThresholds(X, j, gb.MaxThresholdsPerFe) {
			var leftSum, rightSum float64
			var leftCount, rightCount int
			for i := range X {
				if X[i][j] <= thr {
					leftSum += r[i]
					leftCount++
				} else {
					rightSum += r[i]
					rightCount++
				}
			}
			if leftCount == 0 || rightCount == 0 || leftCount < gb.MinSamples || rightCount < gb.MinSamples {
				continue
			}
			leftAvg := leftSum / float64(leftCount)
			rightAvg := rightSum / float64(rightCount)
			sse := 0.0
			for i := range X {
				d := r[i] - rightAvg
				if X[i][j] <= thr {
					d = r[i] - leftAvg
				}
				sse += d * d
			}
			if sse < bestSSE {
				bestSSE = sse
				best = Stump{Feature: j, Threshold: thr, LeftVal: leftAvg, RightVal: rightAvg}
			}
		}
	}
	return best, best.Feature >= 0
}

func (s Stump) value(x []float64) float64 {
	if x[s.Feature] > s.Threshold {
		return s.RightVal
	}
	return s.LeftVal
}

func (gb *GradientBoosting) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		f := gb.Init
		for _, t := range gb.Trees {
			f += gb.LearningRate * t.value(X[i])
		}
		out[i] = sigmoid(f)
	}
	return out
}

func (gb *GradientBoosting) Predict(X [][]float64) []int { return labelsFromProba(gb.PredictProba(X)) }

// gbCandidateThresholds takes evenly spaced quantiles of feature j.
func gbCandidateThresholds(X [][]float64, j int, nCand int) []float64 {
	if nCand <= 0 {
		nCand = 16
	}
	n := len(X)
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = X[i][j]
	}
	sort.Float64s(vals)
	out := make([]float64, 0, nCand)
	for k := 1; k < nCand; k++ {
		idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
		if idx <= 0 || idx >= n {
			continue
		}
		if thr := vals[idx]; len(out) == 0 || thr != out[len(out)-1] {
			out = append(out, thr)
		}
	}
	if len(out) == 0 {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		out = append(out, sum/float64(n))
	}
	return out
}
