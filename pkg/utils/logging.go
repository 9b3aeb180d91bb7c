package utils

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger *zap.Logger
)

// Logger returns the process logger, building it from LOG_FILE and
// LOG_LEVEL on first use.
func Logger() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger != nil {
		return logger
	}
	l, err := NewLogger(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		l, _ = zap.NewProduction()
		l.Warn("log file unavailable, logging to stdout only", zap.Error(err))
	}
	logger = l
	return logger
}

// Init replaces the process logger.
func Init(file, level string) (*zap.Logger, error) {
	l, err := NewLogger(file, level)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	logger = l
	mu.Unlock()
	return l, nil
}

// NewLogger writes JSON to stdout, and also appends to file when set.
func NewLogger(file, level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
	if file == "" {
		return zap.New(consoleCore), nil
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	fileCore := zapcore.NewCore(enc.Clone(), zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore)), nil
}
