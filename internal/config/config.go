package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/park285/Cheese-GameReview/internal/chess/eval"
)

type AppConfig struct {
	StockfishPath  string `yaml:"stockfish_path"`
	EngineThreads  int    `yaml:"engine_threads"`
	EngineHashMB   int    `yaml:"engine_hash_mb"`
	EnginePoolSize int    `yaml:"engine_pool_size"`

	LimitType    string  `yaml:"limit_type"`
	TimeLimitSec float64 `yaml:"time_limit"`
	DepthLimit   int     `yaml:"depth_limit"`
	Tone         string  `yaml:"tone"`
	OpeningPlies int     `yaml:"opening_plies"`

	OpeningCatalogPath string `yaml:"opening_catalog_path"`
	OpeningBookPath    string `yaml:"opening_book_path"`
	MessagesDir        string `yaml:"messages_dir"`

	RedisURL        string `yaml:"redis_url"`
	EvalCacheTTLSec int    `yaml:"eval_cache_ttl"`
	DatabaseURL     string `yaml:"database_url"`

	HTTPAddr          string `yaml:"http_addr"`
	WebhookURL        string `yaml:"webhook_url"`
	WebhookTimeoutSec int    `yaml:"webhook_timeout"`
	WebhookToken      string `yaml:"webhook_token"`
}

func defaults() *AppConfig {
	return &AppConfig{
		EngineThreads:     1,
		EngineHashMB:      64,
		LimitType:         string(eval.LimitTime),
		TimeLimitSec:      0.25,
		DepthLimit:        15,
		Tone:              "standard",
		OpeningPlies:      11,
		EvalCacheTTLSec:   86400,
		HTTPAddr:          ":8080",
		WebhookTimeoutSec: 10,
	}
}

// Load applies defaults, then the YAML file named by REVIEW_CONFIG_FILE, then
// the environment. Unparseable numbers in the environment are ignored.
func Load() (*AppConfig, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("REVIEW_CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.StockfishPath, "STOCKFISH_PATH")
	setPositiveInt(&cfg.EngineThreads, "ENGINE_THREADS")
	setPositiveInt(&cfg.EngineHashMB, "ENGINE_HASH_MB")
	setPositiveInt(&cfg.EnginePoolSize, "ENGINE_POOL_SIZE")

	setString(&cfg.LimitType, "REVIEW_LIMIT_TYPE")
	if v := strings.TrimSpace(os.Getenv("REVIEW_TIME_LIMIT")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.TimeLimitSec = f
		}
	}
	setPositiveInt(&cfg.DepthLimit, "REVIEW_DEPTH_LIMIT")
	setString(&cfg.Tone, "REVIEW_TONE")
	setPositiveInt(&cfg.OpeningPlies, "REVIEW_OPENING_PLIES")

	setString(&cfg.OpeningCatalogPath, "OPENING_CATALOG_PATH")
	setString(&cfg.OpeningBookPath, "OPENING_BOOK_PATH")
	setString(&cfg.MessagesDir, "REVIEW_MESSAGES_DIR")

	setString(&cfg.RedisURL, "REDIS_URL")
	setPositiveInt(&cfg.EvalCacheTTLSec, "EVAL_CACHE_TTL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")

	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.WebhookURL, "WEBHOOK_URL")
	setPositiveInt(&cfg.WebhookTimeoutSec, "WEBHOOK_TIMEOUT")
	setString(&cfg.WebhookToken, "WEBHOOK_TOKEN")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) validate() error {
	c.LimitType = strings.ToLower(strings.TrimSpace(c.LimitType))
	c.Tone = strings.ToLower(strings.TrimSpace(c.Tone))
	if _, err := c.Limit(); err != nil {
		return err
	}
	switch c.Tone {
	case "standard", "roast":
	default:
		return fmt.Errorf("REVIEW_TONE must be standard or roast, got %q", c.Tone)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("HTTP_ADDR is required")
	}
	return nil
}

// Limit is the configured search limit for reviews.
func (c *AppConfig) Limit() (eval.Limit, error) {
	l, err := eval.ParseLimit(c.LimitType, c.TimeLimitSec, c.DepthLimit)
	if err != nil {
		return eval.Limit{}, fmt.Errorf("review limit: %w", err)
	}
	return l, nil
}

func (c *AppConfig) EvalCacheTTL() time.Duration {
	return time.Duration(c.EvalCacheTTLSec) * time.Second
}

func (c *AppConfig) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutSec) * time.Second
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setPositiveInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*dst = n
		}
	}
}
