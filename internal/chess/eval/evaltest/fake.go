// Package evaltest provides a scripted evaluator for tests.
package evaltest

import (
	"context"
	"sync"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
)

// Fake answers from a table keyed by Position.Key. Unknown positions score 0
// and name the first legal move as best.
type Fake struct {
	mu      sync.Mutex
	table   map[string]eval.Analysis
	err     error
	calls   int
	Default func(pos *board.Position) eval.Analysis
}

func New() *Fake {
	return &Fake{table: make(map[string]eval.Analysis)}
}

// Set scripts the analysis for the position given by fen.
func (f *Fake) Set(fen string, a eval.Analysis) *Fake {
	pos, err := board.FromFEN(fen)
	if err != nil {
		panic(err)
	}
	f.SetPosition(pos, a)
	return f
}

func (f *Fake) SetPosition(pos *board.Position, a eval.Analysis) *Fake {
	f.mu.Lock()
	f.table[pos.Key()] = a
	f.mu.Unlock()
	return f
}

// CP scripts a centipawn score, relative to the side to move, and a best move.
func (f *Fake) CP(pos *board.Position, cp int, best string) *Fake {
	return f.SetPosition(pos, eval.Analysis{CP: cp, BestMove: mustMove(pos, best)})
}

// Mate scripts a mate report, relative to the side to move.
func (f *Fake) Mate(pos *board.Position, mateIn int, best string) *Fake {
	a := eval.Analysis{IsMate: true, MateIn: mateIn}
	if best != "" {
		a.BestMove = mustMove(pos, best)
	} else {
		a.BestMove = board.NullMove
	}
	return f.SetPosition(pos, a)
}

// Fail makes every subsequent call return err.
func (f *Fake) Fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *Fake) Analyse(ctx context.Context, pos *board.Position) (eval.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return eval.Analysis{}, err
	}
	f.mu.Lock()
	f.calls++
	err := f.err
	a, ok := f.table[pos.Key()]
	def := f.Default
	f.mu.Unlock()
	if err != nil {
		return eval.Analysis{}, err
	}
	if ok {
		if len(a.PV) == 0 && !a.BestMove.IsNull() {
			a.PV = []board.Move{a.BestMove}
		}
		return a, nil
	}
	if def != nil {
		return def(pos), nil
	}
	return defaultAnalysis(pos), nil
}

func defaultAnalysis(pos *board.Position) eval.Analysis {
	legal := pos.LegalMoves()
	if len(legal) == 0 {
		if pos.InCheck() {
			return eval.Analysis{IsMate: true, MateIn: 0, BestMove: board.NullMove}
		}
		return eval.Analysis{BestMove: board.NullMove}
	}
	return eval.Analysis{BestMove: legal[0], PV: []board.Move{legal[0]}}
}

func mustMove(pos *board.Position, s string) board.Move {
	m, err := pos.ParseMove(s)
	if err != nil {
		panic(err)
	}
	return m
}
