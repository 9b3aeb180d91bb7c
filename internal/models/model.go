package models

// Model is a binary classifier over reconciled feature vectors.
type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	Name() string
}

// ProbabilityModel also reports P(label=1) per row.
type ProbabilityModel interface {
	Model
	PredictProba(X [][]float64) []float64
}

// Params are the shared hyperparameters for Build. Zero values keep each
// algorithm's defaults.
type Params struct {
	Estimators   int
	MaxDepth     int
	MinSamples   int
	LearningRate float64
	Seed         int64
}

func labelsFromProba(ps []float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		if ps[i] >= 0.5 {
			out[i] = 1
		}
	}
	return out
}
