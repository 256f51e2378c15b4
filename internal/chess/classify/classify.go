package classify

import (
	"context"
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/tactics"
)

// Lower bounds, in centipawns gained by the mover, of each tier.
const (
	ExcellentFloor  = -20
	GoodFloor       = -100
	InaccuracyFloor = -250
	MistakeFloor    = -450
)

// Tier maps a plain centipawn delta to its tier.
func Tier(delta int) Kind {
	switch {
	case delta >= ExcellentFloor:
		return Excellent
	case delta >= GoodFloor:
		return Good
	case delta >= InaccuracyFloor:
		return Inaccuracy
	case delta >= MistakeFloor:
		return Mistake
	default:
		return Blunder
	}
}

// Decide classifies a move from its points gained and advances the mate
// sequence. isTop reports whether the move was the evaluator's first choice.
func Decide(g eval.Gain, mover board.Color, isTop bool, state MateState) (Classification, MateState) {
	prev := state.For(mover)
	topOr := func(k Kind) Kind {
		if isTop {
			return Best
		}
		return k
	}
	switch g.Kind {
	case eval.GainStartsMate:
		c := Classification{Kind: StartsMate, N: g.Distance, Grade: topOr(Excellent)}
		return c, settle(Winning(mover, g.Distance))
	case eval.GainContinuesMate:
		grade := topOr(Good)
		if prev.Status == MateWinning && g.Distance > prev.Distance {
			grade = Good
		}
		c := Classification{Kind: ContinuesMate, N: g.Distance, Grade: grade}
		return c, settle(Winning(mover, g.Distance))
	case eval.GainContinuesGetsMated:
		grade := topOr(Good)
		if prev.Status == MateLosing && g.Distance < prev.Distance {
			grade = Good
		}
		c := Classification{Kind: ContinuesGetsMated, N: g.Distance, Grade: grade}
		return c, settle(Losing(mover, g.Distance))
	case eval.GainGetsMated:
		c := Classification{Kind: GetsMated, N: g.Distance, Grade: Blunder}
		return c, settle(Losing(mover, g.Distance))
	case eval.GainLostMate:
		return Classification{Kind: LostMate, Grade: Blunder}, NoMate
	}
	k := Tier(g.Delta)
	if isTop {
		k = Best
	}
	return Plain(k), NoMate
}

// A delivered mate ends the sequence.
func settle(s MateState) MateState {
	if s.Distance == 0 {
		return NoMate
	}
	return s
}

// Verdict is a classified move together with the evaluator's preferred move
// in the same position.
type Verdict struct {
	Classification
	Best board.Move
	Gain eval.Gain
}

// Move classifies m, played in pos, against the evaluator. A sacrifice graded
// best, excellent or good is upgraded to brilliant. m must be a move of the
// side to move; anything else panics.
func Move(ctx context.Context, ev eval.Evaluator, pos *board.Position, m board.Move, state MateState) (Verdict, MateState, error) {
	if pc := pos.PieceAt(m.From); pc.IsEmpty() || pc.Color != pos.Turn() {
		panic(fmt.Sprintf("classify: %s is not a move of %s in %s", m, pos.Turn(), pos.FEN()))
	}
	best, err := eval.BestMove(ctx, ev, pos)
	if err != nil {
		return Verdict{}, state, err
	}
	gain, err := eval.PointsGained(ctx, ev, pos, m)
	if err != nil {
		return Verdict{}, state, err
	}
	c, next := Decide(gain, pos.Turn(), m == best, state)
	if c.Kind == c.Grade && upgradable(c.Grade) && tactics.IsPossibleSacrifice(pos, m) {
		c = Plain(Brilliant)
	}
	return Verdict{Classification: c, Best: best, Gain: gain}, next, nil
}

func upgradable(k Kind) bool {
	return k == Best || k == Excellent || k == Good
}
