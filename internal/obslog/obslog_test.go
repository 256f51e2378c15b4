package obslog

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
		"fatal":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOptionsFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_TO_CONSOLE", "LOG_TO_FILE", "LOG_FILE", "LOG_FORMAT", "LOG_CALLER"} {
		t.Setenv(k, "")
	}
	opts := OptionsFromEnv()
	if opts.Level != zapcore.InfoLevel || !opts.Console || opts.File != "" || opts.Format != "legacy" {
		t.Fatalf("unexpected defaults: %+v", opts)
	}

	t.Setenv("LOG_TO_FILE", "true")
	if got := OptionsFromEnv().File; got != filepath.Join("logs", "review.log") {
		t.Fatalf("default log file = %q", got)
	}
}

func TestInitFromEnvWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "review.log")
	t.Setenv("LOG_TO_CONSOLE", "false")
	t.Setenv("LOG_TO_FILE", "true")
	t.Setenv("LOG_FILE", path)
	t.Setenv("LOG_FORMAT", "json")
	defer Set(nil)

	if err := InitFromEnv(); err != nil {
		t.Fatalf("InitFromEnv: %v", err)
	}
	L().Info("review_completed")
	_ = L().Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("expected a log line in %s", path)
	}
}
