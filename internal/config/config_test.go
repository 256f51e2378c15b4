package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/Cheese-GameReview/internal/chess/eval"
)

var envKeys = []string{
	"REVIEW_CONFIG_FILE", "STOCKFISH_PATH", "ENGINE_THREADS", "ENGINE_HASH_MB", "ENGINE_POOL_SIZE",
	"REVIEW_LIMIT_TYPE", "REVIEW_TIME_LIMIT", "REVIEW_DEPTH_LIMIT", "REVIEW_TONE", "REVIEW_OPENING_PLIES",
	"OPENING_CATALOG_PATH", "OPENING_BOOK_PATH", "REVIEW_MESSAGES_DIR", "REDIS_URL", "EVAL_CACHE_TTL",
	"DATABASE_URL", "HTTP_ADDR", "WEBHOOK_URL", "WEBHOOK_TIMEOUT", "WEBHOOK_TOKEN",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	limit, err := cfg.Limit()
	require.NoError(t, err)
	assert.Equal(t, eval.TimeLimit(250*time.Millisecond), limit)
	assert.Equal(t, "standard", cfg.Tone)
	assert.Equal(t, 11, cfg.OpeningPlies)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.EvalCacheTTL())
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeout())
	assert.Equal(t, 1, cfg.EngineThreads)
	assert.Zero(t, cfg.EnginePoolSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STOCKFISH_PATH", " /usr/bin/stockfish ")
	t.Setenv("REVIEW_LIMIT_TYPE", "Depth")
	t.Setenv("REVIEW_DEPTH_LIMIT", "18")
	t.Setenv("REVIEW_TONE", "roast")
	t.Setenv("ENGINE_HASH_MB", "not-a-number")
	t.Setenv("EVAL_CACHE_TTL", "60")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/stockfish", cfg.StockfishPath)
	limit, err := cfg.Limit()
	require.NoError(t, err)
	assert.Equal(t, eval.DepthLimit(18), limit)
	assert.Equal(t, "roast", cfg.Tone)
	assert.Equal(t, 64, cfg.EngineHashMB, "invalid numbers keep the default")
	assert.Equal(t, time.Minute, cfg.EvalCacheTTL())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "review.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stockfish_path: /opt/sf
limit_type: time
time_limit: 1.5
tone: roast
database_url: sqlite://reviews.db
http_addr: ":9000"
`), 0o644))
	t.Setenv("REVIEW_CONFIG_FILE", path)
	t.Setenv("HTTP_ADDR", ":9100")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/sf", cfg.StockfishPath)
	assert.Equal(t, "sqlite://reviews.db", cfg.DatabaseURL)
	assert.Equal(t, ":9100", cfg.HTTPAddr)
	limit, err := cfg.Limit()
	require.NoError(t, err)
	assert.Equal(t, eval.TimeLimit(1500*time.Millisecond), limit)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("REVIEW_LIMIT_TYPE", "nodes")
	_, err := Load()
	assert.ErrorIs(t, err, eval.ErrInvalidLimit)

	clearEnv(t)
	t.Setenv("REVIEW_TONE", "sarcastic")
	_, err = Load()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("REVIEW_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err)
}
