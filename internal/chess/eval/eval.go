// Package eval holds the contract between the review core and whatever
// supplies position evaluations: the search limit, the raw analysis of a
// position and the White-normalized score derived from it.
package eval

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

var (
	ErrEvaluatorFailure  = errors.New("evaluator failure")
	ErrEvaluatorTimeout  = errors.New("evaluator timeout")
	ErrMalformedResponse = errors.New("malformed evaluator response")
	ErrInvalidLimit      = errors.New("invalid search limit")
)

type LimitKind string

const (
	LimitTime  LimitKind = "time"
	LimitDepth LimitKind = "depth"
)

// Limit bounds one evaluator search. A Limit is a value: it is fixed when an
// evaluator is constructed and never changed during a review.
type Limit struct {
	Kind     LimitKind
	Movetime time.Duration
	Depth    int
}

func TimeLimit(d time.Duration) Limit { return Limit{Kind: LimitTime, Movetime: d} }
func DepthLimit(depth int) Limit      { return Limit{Kind: LimitDepth, Depth: depth} }

// ParseLimit builds a limit from the user-facing pair used in configs and
// requests: kind "time" takes seconds, kind "depth" takes plies.
func ParseLimit(kind string, seconds float64, depth int) (Limit, error) {
	var l Limit
	switch LimitKind(kind) {
	case LimitTime, "":
		l = TimeLimit(time.Duration(seconds * float64(time.Second)))
	case LimitDepth:
		l = DepthLimit(depth)
	default:
		return Limit{}, fmt.Errorf("%w: kind %q", ErrInvalidLimit, kind)
	}
	return l, l.Validate()
}

func (l Limit) Validate() error {
	switch l.Kind {
	case LimitTime:
		if l.Movetime < time.Millisecond {
			return fmt.Errorf("%w: movetime %s", ErrInvalidLimit, l.Movetime)
		}
	case LimitDepth:
		if l.Depth <= 0 {
			return fmt.Errorf("%w: depth %d", ErrInvalidLimit, l.Depth)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidLimit, l.Kind)
	}
	return nil
}

// Key is a short stable identifier used in cache keys, e.g. "t250" or "d15".
func (l Limit) Key() string {
	if l.Kind == LimitDepth {
		return "d" + strconv.Itoa(l.Depth)
	}
	return "t" + strconv.FormatInt(l.Movetime.Milliseconds(), 10)
}

func (l Limit) String() string {
	if l.Kind == LimitDepth {
		return fmt.Sprintf("depth %d", l.Depth)
	}
	return fmt.Sprintf("time %s", l.Movetime)
}

// Analysis is the evaluator's report for one position, relative to the side
// to move.
type Analysis struct {
	CP     int
	IsMate bool
	// MateIn is the reported mate distance in moves. Negative when the side to
	// move is being mated; zero when the side to move is already checkmated.
	MateIn   int
	BestMove board.Move
	PV       []board.Move
	Depth    int
}

// Evaluator analyses arbitrary legal positions, including scratch positions
// produced by Position.Pass. Implementations carry their own search limit.
type Evaluator interface {
	Analyse(ctx context.Context, pos *board.Position) (Analysis, error)
}

// Relative returns the score from the side to move's point of view with mate
// collapsed to the sentinel.
func (a Analysis) Relative() int {
	if !a.IsMate {
		return a.CP
	}
	if a.MateIn > 0 {
		return MateScore
	}
	return -MateScore
}

// Score normalizes the analysis of a position to White's point of view.
func (a Analysis) Score(turn board.Color) Score {
	r := a.Relative()
	if turn == board.Black {
		r = -r
	}
	return Score(r)
}

// Mate describes the forced mate in the analysis, if there is one.
func (a Analysis) Mate(turn board.Color) (MateDescriptor, bool) {
	if !a.IsMate {
		return MateDescriptor{}, false
	}
	if a.MateIn > 0 {
		return MateDescriptor{Distance: a.MateIn, Winner: turn}, true
	}
	return MateDescriptor{Distance: -a.MateIn, Winner: turn.Other()}, true
}

// Evaluate is the contract's evaluate(position): the White-normalized score.
func Evaluate(ctx context.Context, ev Evaluator, pos *board.Position) (Score, error) {
	a, err := ev.Analyse(ctx, pos)
	if err != nil {
		return 0, err
	}
	return a.Score(pos.Turn()), nil
}

// BestMove is the contract's bestMove(position). A position without legal
// moves has no best move and yields NullMove.
func BestMove(ctx context.Context, ev Evaluator, pos *board.Position) (board.Move, error) {
	if len(pos.LegalMoves()) == 0 {
		return board.NullMove, nil
	}
	a, err := ev.Analyse(ctx, pos)
	if err != nil {
		return board.NullMove, err
	}
	if a.BestMove.IsNull() || !pos.IsLegal(a.BestMove) {
		return board.NullMove, fmt.Errorf("%w: best move %s not legal in %s", ErrMalformedResponse, a.BestMove, pos.FEN())
	}
	return a.BestMove, nil
}

// PrincipalVariation is the contract's principalVariation(position).
func PrincipalVariation(ctx context.Context, ev Evaluator, pos *board.Position) ([]board.Move, error) {
	a, err := ev.Analyse(ctx, pos)
	if err != nil {
		return nil, err
	}
	return append([]board.Move(nil), a.PV...), nil
}
