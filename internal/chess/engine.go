package chess

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/uci"
	"github.com/park285/Cheese-GameReview/internal/metrics"
	"github.com/park285/Cheese-GameReview/internal/obslog"
)

const (
	defaultThreads = 1
	defaultHashMB  = 64
)

type EngineConfig struct {
	BinaryPath string
	Threads    int
	HashMB     int
	PoolSize   int
	Limit      eval.Limit
}

// Engine is a UCI-backed eval.Evaluator. Its limit is fixed at construction;
// use WithLimit to get an evaluator with a different one over the same pool.
type Engine struct {
	pool  *uci.Pool
	limit eval.Limit
	owner bool
}

func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Limit.Validate(); err != nil {
		return nil, err
	}
	opt := uci.Options{Threads: cfg.Threads, HashMB: cfg.HashMB}
	if opt.Threads <= 0 {
		opt.Threads = defaultThreads
	}
	if opt.HashMB <= 0 {
		opt.HashMB = defaultHashMB
	}
	pool, err := uci.NewPool(uci.PoolConfig{BinaryPath: cfg.BinaryPath, Options: opt, Size: cfg.PoolSize})
	if err != nil {
		return nil, err
	}
	return &Engine{pool: pool, limit: cfg.Limit, owner: true}, nil
}

func (e *Engine) Limit() eval.Limit { return e.limit }

// WithLimit shares the process pool. Closing the returned engine is a no-op.
func (e *Engine) WithLimit(l eval.Limit) (*Engine, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Engine{pool: e.pool, limit: l}, nil
}

func (e *Engine) Analyse(ctx context.Context, pos *board.Position) (eval.Analysis, error) {
	session, err := e.pool.Acquire(ctx)
	if err != nil {
		return eval.Analysis{}, fmt.Errorf("%w: acquire engine: %v", eval.ErrEvaluatorFailure, err)
	}
	var releaseErr error
	defer func() {
		e.pool.Release(session, releaseErr)
	}()

	start := time.Now()
	resp, err := session.Search(ctx, uci.SearchRequest{FEN: pos.FEN(), Limits: searchLimits(e.limit)})
	if err != nil {
		releaseErr = err
		if errors.Is(err, uci.ErrSearchTimeout) {
			return eval.Analysis{}, fmt.Errorf("%w: %v", eval.ErrEvaluatorTimeout, err)
		}
		if ctx.Err() != nil {
			return eval.Analysis{}, ctx.Err()
		}
		return eval.Analysis{}, fmt.Errorf("%w: %v", eval.ErrEvaluatorFailure, err)
	}
	metrics.ObserveSearch(time.Since(start))

	a, err := toAnalysis(pos, resp)
	if err != nil {
		obslog.L().Warn("engine_bad_response",
			zap.String("fen", pos.FEN()),
			zap.String("bestmove", resp.BestMove),
			zap.Error(err))
		return eval.Analysis{}, err
	}
	return a, nil
}

func toAnalysis(pos *board.Position, resp uci.SearchResponse) (eval.Analysis, error) {
	a := eval.Analysis{
		CP:       resp.Score.CP,
		IsMate:   resp.Score.IsMate,
		MateIn:   resp.Score.Mate,
		Depth:    resp.Score.Depth,
		BestMove: board.NullMove,
	}
	if resp.BestMove == "" {
		if len(pos.LegalMoves()) > 0 {
			return eval.Analysis{}, fmt.Errorf("%w: no bestmove for %s", eval.ErrMalformedResponse, pos.FEN())
		}
		if pos.InCheck() {
			a.IsMate, a.MateIn = true, 0
		}
		return a, nil
	}
	best, err := board.ParseUCI(resp.BestMove)
	if err != nil || !pos.IsLegal(best) {
		return eval.Analysis{}, fmt.Errorf("%w: bestmove %q for %s", eval.ErrMalformedResponse, resp.BestMove, pos.FEN())
	}
	a.BestMove = best
	for _, tok := range resp.Principal {
		mv, err := board.ParseUCI(tok)
		if err != nil {
			break
		}
		a.PV = append(a.PV, mv)
	}
	if len(a.PV) == 0 || a.PV[0] != best {
		a.PV = append([]board.Move{best}, a.PV...)
	}
	return a, nil
}

func (e *Engine) Close() error {
	if e.pool == nil || !e.owner {
		return nil
	}
	return e.pool.Close()
}
