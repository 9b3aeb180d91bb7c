package evaluation

import (
	"math"
	"sort"
)

func Accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

func ProbaToPred(ps []float64, thr float64) []int {
	out := make([]int, len(ps))
	for i := range ps {
		if ps[i] >= thr {
			out[i] = 1
		}
	}
	return out
}

func Confusion(y []int, ps []float64, thr float64) (tp, fp, tn, fn int) {
	for i := range y {
		pred := ps[i] >= thr
		switch {
		case pred && y[i] == 1:
			tp++
		case pred:
			fp++
		case y[i] == 0:
			tn++
		default:
			fn++
		}
	}
	return
}

func PRF1(y []int, ps []float64, thr float64) (precision, recall, f1 float64) {
	tp, fp, _, fn := Confusion(y, ps, thr)
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return
}

type scored struct {
	s float64
	y int
}

func byScoreDesc(y []int, ps []float64) []scored {
	pairs := make([]scored, len(y))
	for i := range y {
		pairs[i] = scored{ps[i], y[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })
	return pairs
}

// ROCAUC integrates the ROC curve with the trapezoid rule; tied scores
// form one step. It is 0 when only one class is present.
func ROCAUC(y []int, ps []float64) float64 {
	pairs := byScoreDesc(y, ps)
	var pos, neg int
	for _, p := range pairs {
		if p.y == 1 {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return 0
	}
	tp, fp := 0, 0
	prevS := math.Inf(1)
	var auc, prevTPR, prevFPR float64
	for _, p := range pairs {
		if p.s != prevS {
			tpr := float64(tp) / float64(pos)
			fpr := float64(fp) / float64(neg)
			auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
			prevTPR, prevFPR = tpr, fpr
			prevS = p.s
		}
		if p.y == 1 {
			tp++
		} else {
			fp++
		}
	}
	tpr := float64(tp) / float64(pos)
	fpr := float64(fp) / float64(neg)
	return auc + (fpr-prevFPR)*(tpr+prevTPR)/2.0
}

// PRAUC is average precision over the score ranking.
func PRAUC(y []int, ps []float64) float64 {
	pairs := byScoreDesc(y, ps)
	var tp, fp, fn int
	for _, p := range pairs {
		fn += p.y
	}
	var prevRec, auc float64
	for _, p := range pairs {
		if p.y == 1 {
			tp++
			fn--
		} else {
			fp++
		}
		var prec, rec float64
		if tp+fp > 0 {
			prec = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			rec = float64(tp) / float64(tp+fn)
		}
		auc += (rec - prevRec) * prec
		prevRec = rec
	}
	return auc
}

const thresholdSteps = 200

// BestThresholdF1 scans [0,1] and returns the threshold with the highest F1.
func BestThresholdF1(y []int, ps []float64) (thr float64, best float64) {
	return bestThreshold(ps, func(t float64) float64 {
		_, _, f1 := PRF1(y, ps, t)
		return f1
	})
}

func BestThresholdAcc(y []int, ps []float64) (thr float64, best float64) {
	return bestThreshold(ps, func(t float64) float64 { return Accuracy(y, ProbaToPred(ps, t)) })
}

func bestThreshold(ps []float64, metric func(float64) float64) (thr float64, best float64) {
	if len(ps) == 0 {
		return 0.5, 0
	}
	best, thr = -1, 0.5
	for i := 0; i <= thresholdSteps; i++ {
		t := float64(i) / thresholdSteps
		if m := metric(t); m > best {
			best, thr = m, t
		}
	}
	return thr, best
}
