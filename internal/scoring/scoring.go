// Package scoring wraps a trained classifier behind an all-or-nothing batch
// call over reconciled feature vectors.
package scoring

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"fraudscore/internal/data"
	"fraudscore/internal/features"
	"fraudscore/internal/models"
)

var (
	ErrUnavailable = errors.New("classifier unavailable")
	ErrShape       = errors.New("feature vector does not match the contract")
	ErrScoring     = errors.New("scoring failed")
)

const (
	VerdictFraud  = "FRAUD DETECTED"
	VerdictNormal = "Normal transaction"
)

// Prediction is the outcome for one row. Probability is [P(0), P(1)] when
// the classifier reports probabilities and nil otherwise.
type Prediction struct {
	Label       int       `json:"prediction"`
	Probability []float64 `json:"proba"`
}

func (p Prediction) Fraud() bool { return p.Label == 1 }

func (p Prediction) Verdict() string { return Verdict(p.Label) }

func Verdict(label int) string {
	if label == 1 {
		return VerdictFraud
	}
	return VerdictNormal
}

// Service turns contract-shaped vectors into predictions with one model.
type Service struct {
	model  models.Model
	proba  models.ProbabilityModel
	width  int
	logger *zap.Logger
}

// New fails with ErrUnavailable when no model is given.
func New(m models.Model, logger *zap.Logger) (*Service, error) {
	if m == nil {
		return nil, ErrUnavailable
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{model: m, width: features.Width(), logger: logger}
	s.proba, _ = m.(models.ProbabilityModel)
	return s, nil
}

func (s *Service) ModelName() string { return s.model.Name() }

// Score returns one prediction per vector, in order. Either every row is
// scored or an error is returned and nothing is.
func (s *Service) Score(vectors [][]float64) (preds []Prediction, err error) {
	for i, v := range vectors {
		if len(v) != s.width {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(v), s.width)
		}
	}
	if len(vectors) == 0 {
		return []Prediction{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("classifier panicked", zap.String("model", s.model.Name()), zap.Any("panic", r))
			preds, err = nil, fmt.Errorf("%w: %s panicked: %v", ErrScoring, s.model.Name(), r)
		}
	}()

	labels := s.model.Predict(vectors)
	if len(labels) != len(vectors) {
		return nil, fmt.Errorf("%w: %d labels for %d rows", ErrScoring, len(labels), len(vectors))
	}
	var ps []float64
	if s.proba != nil {
		ps = s.proba.PredictProba(vectors)
		if len(ps) != len(vectors) {
			return nil, fmt.Errorf("%w: %d probabilities for %d rows", ErrScoring, len(ps), len(vectors))
		}
	}

	out := make([]Prediction, len(vectors))
	for i, l := range labels {
		if l != 0 && l != 1 {
			return nil, fmt.Errorf("%w: row %d has label %d", ErrScoring, i, l)
		}
		out[i].Label = l
		if ps != nil {
			out[i].Probability = []float64{1 - ps[i], ps[i]}
		}
	}
	return out, nil
}

// ScoreTable reconciles an uploaded table and scores every row.
func (s *Service) ScoreTable(t data.Table) ([]Prediction, error) {
	return s.Score(features.Reconcile(t))
}

// ScoreRecord reconciles and scores a single manual record.
func (s *Service) ScoreRecord(rec data.RawRecord) (Prediction, error) {
	preds, err := s.Score([][]float64{features.ReconcileRecord(rec)})
	if err != nil {
		return Prediction{}, err
	}
	return preds[0], nil
}
