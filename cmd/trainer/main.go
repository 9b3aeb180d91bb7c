package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"go.uber.org/zap"

	"fraudscore/internal/data"
	"fraudscore/internal/evaluation"
	"fraudscore/internal/features"
	"fraudscore/internal/models"
	"fraudscore/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	regen := flag.Bool("regen", true, "Regenerate the synthetic dataset")
	n := flag.Int("n", 50000, "Number of synthetic transactions")
	fraudRate := flag.Float64("fraud_rate", 0.08, "Base fraud rate of the generator")
	seed := flag.Int64("seed", 42, "Seed for generation, split and model")
	out := flag.String("out", "data/synthetic.csv", "Labelled CSV to write (regen) and read")
	algo := flag.String("algo", models.AlgoRandomForest, "Algorithm: "+strings.Join(models.Algorithms(), "|"))
	modelOut := flag.String("model_out", "", "Model path (default models/<algo>_model.gob)")
	estimators := flag.Int("estimators", 30, "Estimators in the ensemble (rf/bagging/gb)")
	maxDepth := flag.Int("max_depth", 6, "Maximum tree depth")
	minSamples := flag.Int("min_samples", 100, "Minimum samples to split")
	lr := flag.Float64("lr", 0.1, "Learning rate for gradient boosting")
	curve := flag.Bool("curve", true, "Write the learning curve (PNG and CSV)")
	curvePoints := flag.Int("curve_points", 10, "Points on the learning curve")
	curveImg := flag.String("curve_out_img", "static/learning_curve.png", "Learning curve PNG")
	curveCsv := flag.String("curve_out_csv", "data/learning_curve.csv", "Learning curve CSV")
	curveMin := flag.Int("curve_min", 500, "Smallest training size on the curve")
	curveLog := flag.Bool("curve_log", true, "Space curve sizes geometrically")
	threshold := flag.Float64("threshold", 0.5, "Decision threshold for holdout metrics")
	thresholdAuto := flag.Bool("threshold_auto", true, "Pick the threshold on a validation slice")
	thresholdMetric := flag.String("threshold_metric", "f1", "Metric for threshold search: f1|acc")
	thrMin := flag.Float64("threshold_min", 0.05, "Lower clamp for the chosen threshold")
	thrMax := flag.Float64("threshold_max", 0.95, "Upper clamp for the chosen threshold")
	flag.Parse()

	if *regen {
		logger.Info("generating synthetic dataset", zap.Int("n", *n), zap.String("out", *out))
		if err := data.GenerateSyntheticTransactions(*n, *fraudRate, *seed, *out); err != nil {
			logger.Fatal("could not generate dataset", zap.Error(err))
		}
	}

	f, err := os.Open(*out)
	if err != nil {
		logger.Fatal("could not open CSV", zap.Error(err))
	}
	table, err := data.ReadCSV(f)
	f.Close()
	if err != nil {
		logger.Fatal("could not read CSV", zap.String("path", *out), zap.Error(err))
	}
	if missing := features.MissingColumns(table.Header); len(missing) > 0 {
		logger.Warn("dataset is missing columns, filling with 0", zap.Strings("missing", missing))
	}
	y, ok := features.Labels(table)
	if !ok {
		logger.Fatal("dataset has no label column", zap.String("column", features.LabelColumn))
	}
	X := features.Reconcile(table)

	var pos int
	for _, v := range y {
		pos += v
	}
	logger.Info("class balance", zap.Int("positive", pos), zap.Int("negative", len(y)-pos))

	rng := rand.New(rand.NewSource(*seed))
	Xtrain, ytrain, Xtest, ytest := evaluation.StratifiedSplit(X, y, 0.8, rng.Perm)

	params := models.Params{
		Estimators:   *estimators,
		MaxDepth:     *maxDepth,
		MinSamples:   *minSamples,
		LearningRate: *lr,
		Seed:         *seed,
	}
	build := func() (models.ProbabilityModel, error) { return models.Build(*algo, params) }

	mdl, err := build()
	if err != nil {
		logger.Fatal("unknown algorithm", zap.String("algo", *algo), zap.Error(err))
	}
	if err := mdl.Fit(Xtrain, ytrain); err != nil {
		logger.Fatal("training failed", zap.String("model", mdl.Name()), zap.Error(err))
	}

	policy := evaluation.ThresholdPolicy{
		Fixed:  *threshold,
		Auto:   *thresholdAuto,
		Metric: *thresholdMetric,
		Min:    *thrMin,
		Max:    *thrMax,
	}
	valX, valY := evaluation.Tail(Xtrain, ytrain, 0.1, 100)
	thr := policy.Choose(valY, mdl.PredictProba(valX))
	rep := evaluation.Evaluate(mdl.Name(), ytest, mdl.PredictProba(Xtest), thr)
	logger.Info("holdout metrics",
		zap.String("model", rep.Model),
		zap.Float64("accuracy", rep.Accuracy),
		zap.Float64("f1", rep.F1),
		zap.Float64("precision", rep.Precision),
		zap.Float64("recall", rep.Recall),
		zap.Float64("roc_auc", rep.ROCAUC),
		zap.Float64("pr_auc", rep.PRAUC),
		zap.Float64("threshold", rep.Threshold),
	)

	path := *modelOut
	if path == "" {
		path = models.DefaultPath(*algo)
	}
	if err := models.Save(path, mdl); err != nil {
		logger.Fatal("could not save model", zap.String("path", path), zap.Error(err))
	}
	logger.Info("model saved", zap.String("path", path))
	fmt.Println("Model:", mdl.Name())

	if !*curve {
		return
	}
	sizes := evaluation.CurveSizes(len(Xtrain), *curvePoints, *curveMin, *curveLog)
	points, err := evaluation.LearningCurve(build, Xtrain, ytrain, Xtest, ytest, sizes, policy)
	if err != nil {
		logger.Fatal("learning curve training failed", zap.Error(err))
	}
	if err := evaluation.WriteCurveCSV(*curveCsv, points); err != nil {
		logger.Warn("could not write curve CSV", zap.Error(err))
	}
	if err := evaluation.PlotCurvePNG(*curveImg, points); err != nil {
		logger.Warn("could not write curve PNG", zap.Error(err))
	} else {
		logger.Info("learning curve written", zap.String("png", *curveImg), zap.String("csv", *curveCsv))
	}
}
