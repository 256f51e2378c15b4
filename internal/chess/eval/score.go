package eval

import (
	"context"
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

// MateScore is the sentinel magnitude for a forced mate. It is never a real
// centipawn value; branch on IsMate before doing arithmetic.
const MateScore = 10000

// cplMateCap replaces the sentinel when scores are averaged into centipawn
// loss.
const cplMateCap = 1000

// Score is a centipawn value, positive when White is better.
type Score int

func (s Score) IsMate() bool { return s == MateScore || s == -MateScore }

// Capped is the score with the mate sentinel clamped to ±1000.
func (s Score) Capped() int {
	switch s {
	case MateScore:
		return cplMateCap
	case -MateScore:
		return -cplMateCap
	default:
		return int(s)
	}
}

// MateFor returns the sentinel that means "c forces mate".
func MateFor(c board.Color) Score {
	if c == board.Black {
		return -MateScore
	}
	return MateScore
}

type MateDescriptor struct {
	Distance int
	Winner   board.Color
}

type GainKind int

const (
	GainPlain GainKind = iota
	GainStartsMate
	GainContinuesMate
	GainContinuesGetsMated
	GainGetsMated
	GainLostMate
)

func (k GainKind) String() string {
	switch k {
	case GainStartsMate:
		return "starts_mate"
	case GainContinuesMate:
		return "continues_mate"
	case GainContinuesGetsMated:
		return "continues_gets_mated"
	case GainGetsMated:
		return "gets_mated"
	case GainLostMate:
		return "lost_mate"
	default:
		return "plain"
	}
}

// Gain is the outcome of one move as seen by the evaluator: either a plain
// centipawn delta for the mover or one of the mate transitions.
type Gain struct {
	Kind     GainKind
	Delta    int
	Distance int
}

func (g Gain) IsPlain() bool { return g.Kind == GainPlain }

// CompareScores applies the points-gained table to the White-normalized scores
// before and after a move by mover. distance is the mate distance reported
// for the position after the move.
func CompareScores(before, after Score, mover board.Color, distance int) Gain {
	win := MateFor(mover)
	lose := -win
	switch {
	case before != win && after == win:
		return Gain{Kind: GainStartsMate, Distance: distance}
	case before == win && after == win:
		return Gain{Kind: GainContinuesMate, Distance: distance}
	case before == lose && after == lose:
		return Gain{Kind: GainContinuesGetsMated, Distance: distance}
	case before != lose && after == lose:
		return Gain{Kind: GainGetsMated, Distance: distance}
	case before == win && after != win:
		return Gain{Kind: GainLostMate}
	}
	delta := int(after - before)
	if mover == board.Black {
		delta = -delta
	}
	return Gain{Kind: GainPlain, Delta: delta}
}

// PointsGained evaluates pos and the position after m and compares them from
// the mover's point of view.
func PointsGained(ctx context.Context, ev Evaluator, pos *board.Position, m board.Move) (Gain, error) {
	next, err := pos.Apply(m)
	if err != nil {
		return Gain{}, err
	}
	before, err := ev.Analyse(ctx, pos)
	if err != nil {
		return Gain{}, fmt.Errorf("evaluate before %s: %w", m, err)
	}
	after, err := ev.Analyse(ctx, next)
	if err != nil {
		return Gain{}, fmt.Errorf("evaluate after %s: %w", m, err)
	}
	distance := 0
	if md, ok := after.Mate(next.Turn()); ok {
		distance = md.Distance
	}
	return CompareScores(before.Score(pos.Turn()), after.Score(next.Turn()), pos.Turn(), distance), nil
}
