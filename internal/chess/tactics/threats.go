package tactics

import (
	"context"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
)

// The predicates below need the evaluator. Errors are returned as-is so the
// caller can abort the review.

// MoveWinsTempo reports a move that attacks a piece and gains points by
// plain centipawn measure.
func MoveWinsTempo(ctx context.Context, ev eval.Evaluator, pos *board.Position, m board.Move) (bool, error) {
	if !MoveAttacksPiece(pos, m) {
		return false, nil
	}
	gain, err := eval.PointsGained(ctx, ev, pos, m)
	if err != nil {
		return false, err
	}
	return gain.IsPlain() && gain.Delta > 0, nil
}

// MoveThreatensMate reports a quiet move (no check) after which the mover,
// given a free second move, has a forced mate.
func MoveThreatensMate(ctx context.Context, ev eval.Evaluator, pos *board.Position, m board.Move) (bool, error) {
	next := after(pos, m)
	if next.InCheck() || len(next.LegalMoves()) == 0 {
		return false, nil
	}
	passed := next.Pass()
	a, err := ev.Analyse(ctx, passed)
	if err != nil {
		return false, err
	}
	return a.IsMate && a.MateIn > 0, nil
}

// MoveMissesMate reports whether the mover had a forced mate in pos and no
// longer has one after m.
func MoveMissesMate(ctx context.Context, ev eval.Evaluator, pos *board.Position, m board.Move) (bool, error) {
	mover := pos.Turn()
	before, err := ev.Analyse(ctx, pos)
	if err != nil {
		return false, err
	}
	if md, ok := before.Mate(mover); !ok || md.Winner != mover || md.Distance == 0 {
		return false, nil
	}
	next := after(pos, m)
	if next.IsCheckmate() {
		return false, nil
	}
	a, err := ev.Analyse(ctx, next)
	if err != nil {
		return false, err
	}
	md, ok := a.Mate(next.Turn())
	return !ok || md.Winner != mover, nil
}

// MoveAllowsMate reports whether a forced mate exists after m and, if so,
// which side delivers it.
func MoveAllowsMate(ctx context.Context, ev eval.Evaluator, pos *board.Position, m board.Move) (board.Color, bool, error) {
	next := after(pos, m)
	a, err := ev.Analyse(ctx, next)
	if err != nil {
		return board.NoColor, false, err
	}
	md, ok := a.Mate(next.Turn())
	if !ok {
		return board.NoColor, false, nil
	}
	return md.Winner, true, nil
}
