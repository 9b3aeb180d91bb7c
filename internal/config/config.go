package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"fraudscore/internal/models"
)

// FileEnv names an optional YAML file read before the environment.
const FileEnv = "FRAUDSCORE_CONFIG"

type Config struct {
	Port           string        `mapstructure:"port"`
	ModelAlgo      string        `mapstructure:"model_algo"`
	ModelPath      string        `mapstructure:"model_path"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level"`
	PageSize       int           `mapstructure:"page_size"`
	MaxSessions    int           `mapstructure:"max_sessions"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
}

var defaults = map[string]any{
	"port":             "8080",
	"model_algo":       models.AlgoRandomForest,
	"model_path":       "",
	"log_file":         "",
	"log_level":        "info",
	"page_size":        100,
	"max_sessions":     1000,
	"session_ttl":      "2h",
	"max_upload_bytes": 32 << 20,
}

// Load reads defaults, then the optional file named by FRAUDSCORE_CONFIG,
// then environment variables named after each key in upper case (PORT,
// MODEL_ALGO, MAX_SESSIONS, ...).
func Load() (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if path := os.Getenv(FileEnv); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ModelAlgo = strings.ToLower(cfg.ModelAlgo)
	if cfg.ModelPath == "" {
		cfg.ModelPath = models.DefaultPath(cfg.ModelAlgo)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Port == "" {
		err = multierr.Append(err, errors.New("port must be set"))
	}
	if !slices.Contains(models.Algorithms(), c.ModelAlgo) {
		err = multierr.Append(err, fmt.Errorf("model_algo %q: must be one of %s", c.ModelAlgo, strings.Join(models.Algorithms(), "|")))
	}
	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log_level: %w", lerr))
	}
	if c.PageSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("page_size %d: must be positive", c.PageSize))
	}
	if c.MaxSessions < 0 {
		err = multierr.Append(err, fmt.Errorf("max_sessions %d: must not be negative", c.MaxSessions))
	}
	if c.SessionTTL < 0 {
		err = multierr.Append(err, fmt.Errorf("session_ttl %s: must not be negative", c.SessionTTL))
	}
	if c.MaxUploadBytes <= 0 {
		err = multierr.Append(err, fmt.Errorf("max_upload_bytes %d: must be positive", c.MaxUploadBytes))
	}
	return err
}
