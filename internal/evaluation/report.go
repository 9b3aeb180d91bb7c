package evaluation

import (
	"fraudscore/internal/models"
)

// ThresholdPolicy picks the decision threshold used for the holdout
// metrics. With Auto set it searches a validation slice for the best F1
// (or accuracy when Metric is "acc"), then clamps to [Min, Max].
type ThresholdPolicy struct {
	Fixed  float64
	Auto   bool
	Metric string
	Min    float64
	Max    float64
}

func (tp ThresholdPolicy) Choose(y []int, ps []float64) float64 {
	thr := tp.Fixed
	if tp.Auto {
		if tp.Metric == "acc" {
			thr, _ = BestThresholdAcc(y, ps)
		} else {
			thr, _ = BestThresholdF1(y, ps)
		}
	}
	if tp.Max > tp.Min {
		thr = max(tp.Min, min(thr, tp.Max))
	}
	return thr
}

type Report struct {
	Model     string
	Threshold float64
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	ROCAUC    float64
	PRAUC     float64
}

func Evaluate(name string, y []int, ps []float64, thr float64) Report {
	prec, rec, f1 := PRF1(y, ps, thr)
	return Report{
		Model:     name,
		Threshold: thr,
		Accuracy:  Accuracy(y, ProbaToPred(ps, thr)),
		Precision: prec,
		Recall:    rec,
		F1:        f1,
		ROCAUC:    ROCAUC(y, ps),
		PRAUC:     PRAUC(y, ps),
	}
}

// Tail returns the last frac of the samples, at least floor of them and
// at most all of them. The trainer uses it as the threshold validation set.
func Tail(X [][]float64, y []int, frac float64, floor int) ([][]float64, []int) {
	n := int(frac * float64(len(X)))
	n = min(max(n, floor), len(X))
	return X[len(X)-n:], y[len(y)-n:]
}

// LearningCurve fits a fresh model on each prefix of the training set and
// scores it on that prefix and on the test set.
func LearningCurve(build func() (models.ProbabilityModel, error), Xtrain [][]float64, ytrain []int, Xtest [][]float64, ytest []int, sizes []int, policy ThresholdPolicy) ([]CurvePoint, error) {
	out := make([]CurvePoint, 0, len(sizes))
	for _, s := range sizes {
		subX, subY := Xtrain[:s], ytrain[:s]
		m, err := build()
		if err != nil {
			return nil, err
		}
		if err := m.Fit(subX, subY); err != nil {
			return nil, err
		}
		vX, vY := Tail(subX, subY, 0.1, 50)
		thr := policy.Choose(vY, m.PredictProba(vX))

		train := Evaluate(m.Name(), subY, m.PredictProba(subX), thr)
		test := Evaluate(m.Name(), ytest, m.PredictProba(Xtest), thr)
		out = append(out, CurvePoint{
			Size:     s,
			TrainAcc: train.Accuracy,
			TestAcc:  test.Accuracy,
			TrainF1:  train.F1,
			TestF1:   test.F1,
			TrainROC: train.ROCAUC,
			TestROC:  test.ROCAUC,
			TrainPR:  train.PRAUC,
			TestPR:   test.PRAUC,
		})
	}
	return out, nil
}

// StratifiedSplit shuffles each class separately and puts trainFrac of
// each into the training set, so both sets keep the class balance.
func StratifiedSplit(X [][]float64, y []int, trainFrac float64, perm func(int) []int) (Xtrain [][]float64, ytrain []int, Xtest [][]float64, ytest []int) {
	var pos, neg []int
	for i := range y {
		if y[i] == 1 {
			pos = append(pos, i)
		} else {
			neg = append(neg, i)
		}
	}
	var trainIdx, testIdx []int
	for _, class := range [][]int{pos, neg} {
		order := perm(len(class))
		cut := int(trainFrac * float64(len(class)))
		for k, j := range order {
			if k < cut {
				trainIdx = append(trainIdx, class[j])
			} else {
				testIdx = append(testIdx, class[j])
			}
		}
	}
	gather := func(idx []int) ([][]float64, []int) {
		xs := make([][]float64, len(idx))
		ys := make([]int, len(idx))
		for k, j := range perm(len(idx)) {
			xs[k], ys[k] = X[idx[j]], y[idx[j]]
		}
		return xs, ys
	}
	Xtrain, ytrain = gather(trainIdx)
	Xtest, ytest = gather(testIdx)
	return
}
