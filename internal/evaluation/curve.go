package evaluation

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// CurvePoint holds the metrics for one training-set size.
type CurvePoint struct {
	Size              int
	TrainAcc, TestAcc float64
	TrainF1, TestF1   float64
	TrainROC, TestROC float64
	TrainPR, TestPR   float64
}

var curveHeader = []string{"size", "train_acc", "test_acc", "train_f1", "test_f1", "train_roc_auc", "test_roc_auc", "train_pr_auc", "test_pr_auc"}

// CurveSizes returns strictly increasing training sizes from min to
// totalTrain, spaced geometrically when useLog is set. The last size is
// always totalTrain.
func CurveSizes(totalTrain, points, min int, useLog bool) []int {
	if totalTrain <= 0 {
		return nil
	}
	if points <= 1 {
		points = 2
	}
	if min < 10 {
		min = 10
	}
	if min > totalTrain {
		min = int(math.Max(1, float64(totalTrain)/2))
	}
	sizes := make([]int, 0, points)
	for i := 0; i < points; i++ {
		var s int
		if useLog {
			ratio := math.Pow(float64(totalTrain)/float64(min), 1.0/float64(points-1))
			s = int(math.Round(float64(min) * math.Pow(ratio, float64(i))))
		} else {
			step := float64(totalTrain-min) / float64(points-1)
			s = int(math.Round(float64(min) + float64(i)*step))
		}
		sizes = append(sizes, s)
	}

	cleaned := make([]int, 0, len(sizes))
	last := 0
	for _, s := range sizes {
		if s <= last {
			s = last + 1
		}
		if s > totalTrain {
			s = totalTrain
		}
		if s != last {
			cleaned = append(cleaned, s)
			last = s
		}
	}
	cleaned[len(cleaned)-1] = totalTrain
	return cleaned
}

func WriteCurveCSV(path string, points []CurvePoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(curveHeader); err != nil {
		return err
	}
	ff := func(v float64) string { return fmt.Sprintf("%.6f", v) }
	for _, p := range points {
		rec := []string{strconv.Itoa(p.Size),
			ff(p.TrainAcc), ff(p.TestAcc), ff(p.TrainF1), ff(p.TestF1),
			ff(p.TrainROC), ff(p.TestROC), ff(p.TrainPR), ff(p.TestPR),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// PlotCurvePNG charts accuracy and F1 against training size.
func PlotCurvePNG(path string, points []CurvePoint) error {
	p := plot.New()
	p.Title.Text = "Learning curve"
	p.X.Label.Text = "Training samples"
	p.Y.Label.Text = "Metric"
	p.Y.Min = 0
	p.Y.Max = 1

	series := func(get func(CurvePoint) float64) plotter.XYs {
		pts := make(plotter.XYs, len(points))
		for i, cp := range points {
			pts[i].X = float64(cp.Size)
			pts[i].Y = get(cp)
		}
		return pts
	}
	err := plotutil.AddLinePoints(p,
		"Train (Acc)", series(func(c CurvePoint) float64 { return c.TrainAcc }),
		"Test (Acc)", series(func(c CurvePoint) float64 { return c.TestAcc }),
		"Train (F1)", series(func(c CurvePoint) float64 { return c.TrainF1 }),
		"Test (F1)", series(func(c CurvePoint) float64 { return c.TestF1 }),
	)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
