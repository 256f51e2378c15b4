// Package reviewbuilder wires the review service from configuration.
package reviewbuilder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	corechess "github.com/park285/Cheese-GameReview/internal/chess"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/openingbook"
	"github.com/park285/Cheese-GameReview/internal/config"
	"github.com/park285/Cheese-GameReview/internal/msgcat"
	"github.com/park285/Cheese-GameReview/internal/narrate"
	"github.com/park285/Cheese-GameReview/internal/notify"
	"github.com/park285/Cheese-GameReview/internal/service/cache"
	"github.com/park285/Cheese-GameReview/internal/service/review"
)

type Deps struct {
	Service *review.Service
	Engine  *corechess.Engine
	Cache   *cache.CacheService
	Repo    review.Repository
	Book    *openingbook.Book
	DB      *sql.DB
}

func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.StockfishPath) == "" {
		return nil, fmt.Errorf("STOCKFISH_PATH is required for chess engine")
	}
	limit, err := cfg.Limit()
	if err != nil {
		return nil, err
	}

	deps := &Deps{}
	ok := false
	defer func() {
		if !ok {
			deps.Close()
		}
	}()

	// Engine
	deps.Engine, err = corechess.NewEngine(corechess.EngineConfig{
		BinaryPath: cfg.StockfishPath,
		Threads:    cfg.EngineThreads,
		HashMB:     cfg.EngineHashMB,
		PoolSize:   cfg.EnginePoolSize,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}

	// Cache (Redis optional)
	if strings.TrimSpace(cfg.RedisURL) != "" {
		cconf, perr := parseRedisURL(cfg.RedisURL)
		if perr != nil {
			return nil, fmt.Errorf("parse redis url: %w", perr)
		}
		deps.Cache, err = cache.NewCacheService(*cconf, logger)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
	} else {
		logger.Info("eval_cache_disabled")
	}

	// Repository (memory when DATABASE_URL is empty)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	deps.Repo, deps.DB, err = openRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	deps.Book, err = openingbook.New(openingbook.Options{
		CatalogPath:  cfg.OpeningCatalogPath,
		PolyglotPath: cfg.OpeningBookPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init opening book: %w", err)
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("init message catalog: %w", err)
	}

	var notifier review.Notifier
	if strings.TrimSpace(cfg.WebhookURL) != "" {
		opts := []notify.Option{notify.WithTimeout(cfg.WebhookTimeout()), notify.WithLogger(logger)}
		if token := strings.TrimSpace(cfg.WebhookToken); token != "" {
			opts = append(opts, notify.WithHeaderProvider(func() map[string]string {
				return map[string]string{"Authorization": "Bearer " + token}
			}))
		}
		notifier = notify.NewClient(cfg.WebhookURL, opts...)
	}

	svcCfg := review.Config{
		DefaultTone:  narrate.Tone(cfg.Tone),
		DefaultLimit: limit,
		OpeningPlies: cfg.OpeningPlies,
	}
	deps.Service, err = review.NewService(
		evaluatorFactory(deps.Engine, deps.Cache, cfg.EvalCacheTTL(), logger),
		deps.Book,
		catalog,
		deps.Repo,
		review.NewSVGBoardRenderer(),
		notifier,
		svcCfg,
		logger,
	)
	if err != nil {
		return nil, err
	}

	ok = true
	return deps, nil
}

// Close releases the engine processes, the redis client and the database.
func (d *Deps) Close() error {
	if d == nil {
		return nil
	}
	var errs []error
	if d.Engine != nil {
		errs = append(errs, d.Engine.Close())
	}
	if d.Cache != nil {
		errs = append(errs, d.Cache.Close())
	}
	if d.DB != nil {
		errs = append(errs, d.DB.Close())
	}
	return errors.Join(errs...)
}

// evaluatorFactory binds the shared engine pool to each request's limit and
// puts the redis cache, when configured, in front of it.
func evaluatorFactory(engine *corechess.Engine, c *cache.CacheService, ttl time.Duration, logger *zap.Logger) review.EvaluatorFactory {
	return func(limit eval.Limit) (eval.Evaluator, error) {
		bound, err := engine.WithLimit(limit)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return bound, nil
		}
		return cache.NewCachingEvaluator(bound, c, limit, ttl, logger), nil
	}
}

func openRepository(ctx context.Context, raw string) (review.Repository, *sql.DB, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return review.NewMemoryRepository(), nil, nil
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		db, err := sql.Open("postgres", raw)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		// basic pool settings
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(8)
		db.SetConnMaxLifetime(30 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		repo := review.NewRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	case strings.HasPrefix(raw, "sqlite://"), strings.HasPrefix(raw, "file:"):
		dsn := raw
		if path, found := strings.CutPrefix(raw, "sqlite://"); found {
			dsn = "file:" + path
		}
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// pragmas are per connection
		db.SetMaxOpenConns(1)
		repo, err := review.NewSQLiteRepository(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", raw)
	}
}

func parseRedisURL(raw string) (*cache.CacheConfig, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	host := u.Hostname()
	portStr := u.Port()
	if portStr == "" {
		portStr = "6379"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &cache.CacheConfig{Host: host, Port: port, Password: pass, DB: db, TLS: u.Scheme == "rediss"}, nil
}
