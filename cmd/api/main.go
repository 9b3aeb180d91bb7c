package main

import (
	"go.uber.org/zap"

	"fraudscore/internal/api"
	"fraudscore/internal/config"
	"fraudscore/internal/features"
	"fraudscore/internal/models"
	"fraudscore/internal/results"
	"fraudscore/internal/scoring"
	"fraudscore/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := utils.Logger()
		l.Fatal("invalid configuration", zap.Error(err))
	}

	logger, err := utils.Init(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		logger = utils.Logger()
		logger.Warn("log file unavailable, logging to stdout only", zap.String("log_file", cfg.LogFile), zap.Error(err))
	}
	defer logger.Sync()

	model, err := models.Load(cfg.ModelPath, cfg.ModelAlgo, features.Width())
	if err != nil {
		logger.Fatal("could not load model; run cmd/trainer first",
			zap.String("algo", cfg.ModelAlgo),
			zap.String("path", cfg.ModelPath),
			zap.Error(err),
		)
	}
	scorer, err := scoring.New(model, logger)
	if err != nil {
		logger.Fatal("scoring service unavailable", zap.Error(err))
	}

	store := results.New(results.Options{
		PageSize:    cfg.PageSize,
		MaxSessions: cfg.MaxSessions,
		TTL:         cfg.SessionTTL,
	})
	srv := api.New(scorer, store, logger, api.Options{
		PageSize:       cfg.PageSize,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	logger.Info("listening",
		zap.String("port", cfg.Port),
		zap.String("model", scorer.ModelName()),
		zap.Int("max_sessions", cfg.MaxSessions),
		zap.Duration("session_ttl", cfg.SessionTTL),
	)
	if err := srv.Router().Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
