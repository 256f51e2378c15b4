package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/metrics"
)

// DefaultEvalTTL is how long cached analyses live.
const DefaultEvalTTL = 24 * time.Hour

type cachedAnalysis struct {
	CP     int      `json:"cp"`
	IsMate bool     `json:"is_mate,omitempty"`
	MateIn int      `json:"mate_in,omitempty"`
	Best   string   `json:"best,omitempty"`
	PV     []string `json:"pv,omitempty"`
	Depth  int      `json:"depth,omitempty"`
}

func fromAnalysis(a eval.Analysis) cachedAnalysis {
	c := cachedAnalysis{CP: a.CP, IsMate: a.IsMate, MateIn: a.MateIn, Depth: a.Depth}
	if !a.BestMove.IsNull() {
		c.Best = a.BestMove.UCI()
	}
	for _, m := range a.PV {
		c.PV = append(c.PV, m.UCI())
	}
	return c
}

// toAnalysis rejects entries whose best move no longer parses or is illegal
// in pos, so a stale or foreign entry reads as a miss.
func (c cachedAnalysis) toAnalysis(pos *board.Position) (eval.Analysis, bool) {
	a := eval.Analysis{CP: c.CP, IsMate: c.IsMate, MateIn: c.MateIn, Depth: c.Depth, BestMove: board.NullMove}
	if c.Best != "" {
		m, err := board.ParseUCI(c.Best)
		if err != nil || !pos.IsLegal(m) {
			return eval.Analysis{}, false
		}
		a.BestMove = m
	}
	for _, s := range c.PV {
		m, err := board.ParseUCI(s)
		if err != nil {
			return eval.Analysis{}, false
		}
		a.PV = append(a.PV, m)
	}
	return a, true
}

// CachingEvaluator answers from Redis when it can and otherwise asks the
// wrapped evaluator. Entries are keyed by search limit and full FEN. Redis
// failures fall through to the wrapped evaluator.
type CachingEvaluator struct {
	inner    eval.Evaluator
	cache    *CacheService
	limitKey string
	ttl      time.Duration
	logger   *zap.Logger
	group    singleflight.Group
}

func NewCachingEvaluator(inner eval.Evaluator, c *CacheService, limit eval.Limit, ttl time.Duration, logger *zap.Logger) *CachingEvaluator {
	if ttl <= 0 {
		ttl = DefaultEvalTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachingEvaluator{inner: inner, cache: c, limitKey: limit.Key(), ttl: ttl, logger: logger}
}

func (e *CachingEvaluator) Key(pos *board.Position) string {
	return "eval:" + e.limitKey + ":" + pos.FEN()
}

func (e *CachingEvaluator) Analyse(ctx context.Context, pos *board.Position) (eval.Analysis, error) {
	key := e.Key(pos)
	var hit cachedAnalysis
	ok, err := e.cache.GetOK(ctx, key, &hit)
	if err != nil {
		e.logger.Warn("eval_cache_get_failed", zap.String("key", key), zap.Error(err))
	}
	if ok {
		if a, valid := hit.toAnalysis(pos); valid {
			metrics.EvaluatorHit(metrics.SourceCache)
			return a, nil
		}
		e.logger.Warn("eval_cache_stale_entry", zap.String("key", key))
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		a, err := e.inner.Analyse(ctx, pos)
		if err != nil {
			return eval.Analysis{}, err
		}
		if err := e.cache.Set(ctx, key, fromAnalysis(a), e.ttl); err != nil {
			e.logger.Warn("eval_cache_set_failed", zap.String("key", key), zap.Error(err))
		}
		return a, nil
	})
	if err != nil {
		return eval.Analysis{}, err
	}
	return v.(eval.Analysis), nil
}
