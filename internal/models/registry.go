package models

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	AlgoDecisionTree     = "dt"
	AlgoRandomForest     = "rf"
	AlgoBagging          = "bagging"
	AlgoGradientBoosting = "gb"
)

var (
	ErrUnknownAlgo = errors.New("unknown model algorithm")
	ErrEmptyModel  = errors.New("model has no trees")
	ErrNoSamples   = errors.New("no training samples")
	ErrLabelCount  = errors.New("label count does not match sample count")
	ErrWidth       = errors.New("model feature width does not match")
)

var modelFiles = map[string]string{
	AlgoDecisionTree:     "dt_model.gob",
	AlgoRandomForest:     "rf_model.gob",
	AlgoBagging:          "bag_model.gob",
	AlgoGradientBoosting: "gb_model.gob",
}

// Algorithms lists the accepted algorithm keys.
func Algorithms() []string {
	return []string{AlgoDecisionTree, AlgoRandomForest, AlgoBagging, AlgoGradientBoosting}
}

// DefaultPath is where the trainer writes, and the API reads, a model of
// the given algorithm.
func DefaultPath(algo string) string {
	name, ok := modelFiles[strings.ToLower(algo)]
	if !ok {
		name = algo + "_model.gob"
	}
	return filepath.Join("models", name)
}

// Build returns an untrained model for algo configured from p.
func Build(algo string, p Params) (ProbabilityModel, error) {
	key := strings.ToLower(algo)
	switch key {
	case AlgoDecisionTree:
		dt := NewDecisionTree()
		if p.MaxDepth > 0 {
			dt.MaxDepth = p.MaxDepth
		}
		if p.MinSamples > 0 {
			dt.MinSamplesSplit = p.MinSamples
		}
		dt.Seed = p.Seed
		return dt, nil
	case AlgoRandomForest, AlgoBagging:
		rf := NewRandomForest()
		if key == AlgoBagging {
			rf = NewBagging()
		}
		if p.Estimators > 0 {
			rf.NEstimators = p.Estimators
		}
		if p.MaxDepth > 0 {
			rf.MaxDepth = p.MaxDepth
		}
		if p.MinSamples > 0 {
			rf.MinSamples = p.MinSamples
		}
		rf.Seed = p.Seed
		return rf, nil
	case AlgoGradientBoosting:
		gb := NewGradientBoosting()
		if p.Estimators > 0 {
			gb.NEstimators = p.Estimators
		}
		if p.LearningRate > 0 {
			gb.LearningRate = p.LearningRate
		}
		gb.MinSamples = p.MinSamples
		return gb, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAlgo, algo)
}

// Save gob-encodes a trained model to path, creating parent directories.
func Save(path string, m Model) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", m.Name(), err)
	}
	return f.Close()
}

// Load decodes a model saved by Save. A missing, corrupt or untrained model
// is an error, as is one fitted on vectors of a width other than width; the
// API cannot serve without one.
func Load(path, algo string, width int) (ProbabilityModel, error) {
	m, err := Build(algo, Params{})
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if !trained(m) {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyModel)
	}
	if got := InputWidth(m); got != width {
		return nil, fmt.Errorf("%s: %w: fitted on %d features, want %d", path, ErrWidth, got, width)
	}
	return m, nil
}

func trained(m Model) bool {
	switch v := m.(type) {
	case *DecisionTree:
		return v.Root != nil
	case *RandomForest:
		return len(v.Trees) > 0
	case *GradientBoosting:
		return len(v.Trees) > 0
	}
	return false
}

// InputWidth is the vector width m was fitted on, or 0 when unknown. Every
// tree of a forest must agree.
func InputWidth(m Model) int {
	switch v := m.(type) {
	case *DecisionTree:
		return v.Features
	case *RandomForest:
		if len(v.Trees) == 0 {
			return 0
		}
		w := v.Trees[0].Features
		for _, t := range v.Trees[1:] {
			if t.Features != w {
				return 0
			}
		}
		return w
	case *GradientBoosting:
		return v.Features
	}
	return 0
}
