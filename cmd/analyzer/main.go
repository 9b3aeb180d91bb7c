package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"fraudscore/internal/data"
	"fraudscore/internal/evaluation"
	"fraudscore/internal/features"
	"fraudscore/internal/models"
	"fraudscore/internal/scoring"
	"fraudscore/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	algo := flag.String("algo", models.AlgoRandomForest, "Algorithm: "+strings.Join(models.Algorithms(), "|"))
	modelPath := flag.String("model", "", "Model path (default models/<algo>_model.gob)")
	dataPath := flag.String("data", "data/synthetic.csv", "CSV to score")
	threshold := flag.Float64("threshold", 0.5, "Threshold for precision/recall/F1")
	flag.Parse()

	path := *modelPath
	if path == "" {
		path = models.DefaultPath(*algo)
	}
	mdl, err := models.Load(path, *algo, features.Width())
	if err != nil {
		logger.Fatal("could not load model", zap.String("path", path), zap.Error(err))
	}
	scorer, err := scoring.New(mdl, logger)
	if err != nil {
		logger.Fatal("scoring service unavailable", zap.Error(err))
	}

	f, err := os.Open(*dataPath)
	if err != nil {
		logger.Fatal("could not open CSV", zap.Error(err))
	}
	table, err := data.ReadCSV(f)
	f.Close()
	if err != nil {
		logger.Fatal("could not read CSV", zap.String("path", *dataPath), zap.Error(err))
	}
	if missing := features.MissingColumns(table.Header); len(missing) > 0 {
		logger.Warn("missing columns, filled with 0", zap.Strings("missing", missing))
	}

	preds, err := scorer.ScoreTable(table)
	if err != nil {
		logger.Fatal("scoring failed", zap.Error(err))
	}
	fraud := 0
	ps := make([]float64, len(preds))
	for i, p := range preds {
		if p.Fraud() {
			fraud++
		}
		ps[i] = p.Probability[1]
	}
	fmt.Printf("%s | rows=%d | fraud=%d | normal=%d\n", scorer.ModelName(), len(preds), fraud, len(preds)-fraud)

	y, ok := features.Labels(table)
	if !ok {
		return
	}
	rep := evaluation.Evaluate(scorer.ModelName(), y, ps, *threshold)
	fmt.Printf("accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f roc_auc=%.4f pr_auc=%.4f threshold=%.2f\n",
		rep.Accuracy, rep.Precision, rep.Recall, rep.F1, rep.ROCAUC, rep.PRAUC, rep.Threshold)
}
