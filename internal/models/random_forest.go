package models

import (
	"math"
	"math/rand"
)

// RandomForest averages bootstrapped decision trees. With MaxFeatures at
// or above the feature count every split sees all features, which is plain
// bagging.
type RandomForest struct {
	Kind               string
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               int64
	Trees              []*DecisionTree
}

func NewRandomForest() *RandomForest {
	return &RandomForest{Kind: "RandomForest", NEstimators: 30, MaxDepth: 6, MinSamples: 100, MaxThresholdsPerFe: 32}
}

func NewBagging() *RandomForest {
	rf := NewRandomForest()
	rf.Kind = "Bagging"
	rf.MaxFeatures = math.MaxInt32
	return rf
}

func (rf *RandomForest) Name() string {
	if rf.Kind == "" {
		return "RandomForest"
	}
	return rf.Kind
}

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return ErrNoSamples
	}
	if len(X) != len(y) {
		return ErrLabelCount
	}
	if rf.NEstimators <= 0 {
		rf.NEstimators = 30
	}
	n := len(X)
	nFeats := len(X[0])
	maxFeats := rf.MaxFeatures
	if maxFeats <= 0 {
		maxFeats = int(math.Max(1, math.Sqrt(float64(nFeats))))
	}
	rng := rand.New(rand.NewSource(rf.Seed))
	rf.Trees = make([]*DecisionTree, 0, rf.NEstimators)
	for k := 0; k < rf.NEstimators; k++ {
		Xb := make([][]float64, n)
		yb := make([]int, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			Xb[i], yb[i] = X[j], y[j]
		}
		dt := NewDecisionTree()
		dt.MaxDepth = rf.MaxDepth
		dt.MinSamplesSplit = rf.MinSamples
		dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
		dt.MaxFeatures = maxFeats
		dt.Seed = rng.Int63()
		if err := dt.Fit(Xb, yb); err != nil {
			return err
		}
		rf.Trees = append(rf.Trees, dt)
	}
	return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int { return labelsFromProba(rf.PredictProba(X)) }

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(rf.Trees) == 0 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for _, dt := range rf.Trees {
		for i, p := range dt.PredictProba(X) {
			out[i] += p
		}
	}
	m := float64(len(rf.Trees))
	for i := range out {
		out[i] /= m
	}
	return out
}
