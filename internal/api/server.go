// Package api exposes the upload, result browsing, row lookup and manual
// scoring endpoints over gin.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fraudscore/internal/results"
	"fraudscore/internal/scoring"
)

type Server struct {
	scorer    *scoring.Service
	store     *results.Store
	logger    *zap.Logger
	pageSize  int
	maxUpload int64
}

type Options struct {
	PageSize       int
	MaxUploadBytes int64
}

func New(scorer *scoring.Service, store *results.Store, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = results.DefaultPageSize
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{scorer: scorer, store: store, logger: logger, pageSize: opts.PageSize, maxUpload: opts.MaxUploadBytes}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/", s.handleIndex)
	r.POST("/upload", s.handleUpload)
	r.GET("/results", s.handleResults)
	r.GET("/get_prediction/:results_id/:row_index", s.handleRowPrediction)
	r.GET("/manual", s.handleManualForm)
	r.POST("/predict_manual", s.handlePredictManual)
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
