package models

import (
	"math"
	"math/rand"
)

type DTNode struct {
	Feature   int
	Threshold float64
	Left      *DTNode
	Right     *DTNode
	IsLeaf    bool
	ProbaLeaf float64
}

type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               int64
	Features           int
	Root               *DTNode

	rng *rand.Rand
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 6, MinSamplesSplit: 100, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return ErrNoSamples
	}
	if len(X) != len(y) {
		return ErrLabelCount
	}
	if dt.rng == nil {
		dt.rng = rand.New(rand.NewSource(dt.Seed))
	}
	dt.Features = len(X[0])
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = dt.build(X, y, idx, 0)
	return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int { return labelsFromProba(dt.PredictProba(X)) }

func (dt *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = dt.predictProbaOne(X[i])
	}
	return out
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
	n := dt.Root
	if n == nil {
		return 0.5
	}
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		if n == nil {
			return 0.5
		}
	}
	return n.ProbaLeaf
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *DTNode {
	p := classProba(y, idx)
	if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || p == 0 || p == 1 {
		return &DTNode{IsLeaf: true, ProbaLeaf: p}
	}

	bestFeature := -1
	bestThr := 0.0
	bestImp := math.MaxFloat64
	var leftBest, rightBest []int
	for _, f := range pickFeatures(dt.rng, len(X[0]), dt.MaxFeatures) {
		for _, thr := range candidateThresholds(dt.rng, X, idx, f, dt.MaxThresholdsPerFe) {
			l, r := splitIdx(X, idx, f, thr)
			if len(l) == 0 || len(r) == 0 {
				continue
			}
			if imp := giniImpurity(y, l, r); imp < bestImp {
				bestImp, bestFeature, bestThr = imp, f, thr
				leftBest, rightBest = l, r
			}
		}
	}
	if bestFeature == -1 {
		return &DTNode{IsLeaf: true, ProbaLeaf: p}
	}
	return &DTNode{
		Feature:   bestFeature,
		Threshold: bestThr,
		Left:      dt.build(X, y, leftBest, depth+1),
		Right:     dt.build(X, y, rightBest, depth+1),
	}
}

func classProba(y []int, idx []int) float64 {
	sum := 0
	for _, i := range idx {
		sum += y[i]
	}
	return float64(sum) / float64(len(idx))
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr {
			l = append(l, i)
		} else {
			r = append(r, i)
		}
	}
	return l, r
}

// giniImpurity is the size-weighted impurity of a split.
func giniImpurity(y []int, lIdx, rIdx []int) float64 {
	g := func(ids []int) float64 {
		p := classProba(y, ids)
		return p * (1 - p)
	}
	wl := float64(len(lIdx))
	wr := float64(len(rIdx))
	n := wl + wr
	return (wl/n)*g(lIdx) + (wr/n)*g(rIdx)
}

// candidateThresholds samples up to maxC observed values of feature f.
func candidateThresholds(rng *rand.Rand, X [][]float64, idx []int, f int, maxC int) []float64 {
	values := make([]float64, len(idx))
	for j, i := range idx {
		values[j] = X[i][f]
	}
	rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	if maxC > 0 && maxC < len(values) {
		values = values[:maxC]
	}
	return values
}

func pickFeatures(rng *rand.Rand, nFeats int, maxFeats int) []int {
	idx := make([]int, nFeats)
	for i := range idx {
		idx[i] = i
	}
	if maxFeats <= 0 || maxFeats >= nFeats {
		return idx
	}
	rng.Shuffle(nFeats, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx[:maxFeats]
}
