package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fraudscore/internal/data"
	"fraudscore/internal/features"
	"fraudscore/internal/results"
)

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"expected_columns": features.ExpectedColumns()})
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		case c.Request.MultipartForm != nil && len(c.Request.MultipartForm.Value["file"]) > 0:
			// a file input submitted without a file arrives as a plain value
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file selected"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		}
		return
	}
	if fh.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file selected"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read CSV: " + err.Error()})
		return
	}
	defer f.Close()
	table, err := data.ReadCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read CSV: " + err.Error()})
		return
	}

	warnings := []string{}
	if missing := features.MissingColumns(table.Header); len(missing) > 0 {
		warnings = append(warnings, "missing columns: "+strings.Join(missing, ", "))
		s.logger.Warn("upload is missing expected columns", zap.Strings("missing", missing))
	}

	preds, err := s.scorer.ScoreTable(table)
	if err != nil {
		s.logger.Error("scoring failed", zap.String("file", fh.Filename), zap.Int("rows", table.Len()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring failed"})
		return
	}
	id, err := s.store.Create(c.Request.Context(), table, preds)
	if err != nil {
		s.logger.Error("storing results failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store results"})
		return
	}

	sum, err := s.store.Summary(id)
	if err != nil {
		s.logger.Error("stored results vanished", zap.String("results_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store results"})
		return
	}
	s.logger.Info("predictions stored",
		zap.String("results_id", id),
		zap.Int("rows", sum.TotalRows),
		zap.Int("fraud", sum.FraudCount),
		zap.String("model", s.scorer.ModelName()),
	)

	loc := "/results?" + url.Values{"results_id": {id}, "page": {"1"}}.Encode()
	c.Header("Location", loc)
	c.JSON(http.StatusSeeOther, gin.H{
		"results_id":   id,
		"location":     loc,
		"total_rows":   sum.TotalRows,
		"fraud_count":  sum.FraudCount,
		"normal_count": sum.NormalCount,
		"warnings":     warnings,
	})
}

func (s *Server) handleResults(c *gin.Context) {
	id := c.Query("results_id")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	if id == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result data available"})
		return
	}
	p, err := s.store.GetPage(id, page, s.pageSize)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no result data available"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleRowPrediction(c *gin.Context) {
	id := c.Param("results_id")
	row, err := strconv.Atoi(c.Param("row_index"))
	if err != nil || row < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "row not found"})
		return
	}
	s.logger.Debug("row prediction requested", zap.String("results_id", id), zap.Int("row_index", row))

	pred, err := s.store.GetRowPrediction(id, row)
	switch {
	case errors.Is(err, results.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "results not found"})
	case err != nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "row not found"})
	default:
		c.JSON(http.StatusOK, gin.H{"prediction": pred.Label, "message": pred.Verdict()})
	}
}

func (s *Server) handleManualForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"field_types":      features.Constraints(),
		"expected_columns": features.ExpectedColumns(),
	})
}

func (s *Server) handlePredictManual(c *gin.Context) {
	form := data.RawRecord{}
	for _, col := range features.Contract() {
		form[col] = c.PostForm(col)
	}

	if errs := features.Validate(form); len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": errs, "form_data": form})
		return
	}

	pred, err := s.scorer.ScoreRecord(form)
	if err != nil {
		s.logger.Error("manual scoring failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring failed"})
		return
	}
	color := "success"
	if pred.Fraud() {
		color = "danger"
	}
	c.JSON(http.StatusOK, gin.H{
		"result": gin.H{
			"prediction": pred.Label,
			"proba":      pred.Probability,
			"color":      color,
			"text":       pred.Verdict(),
		},
		"form_data": form,
	})
}
