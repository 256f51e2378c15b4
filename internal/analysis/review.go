// Package analysis drives a full game review: per-ply classification with
// supporting motifs, centipawn loss, accuracy and rating estimates, and the
// board metric samples for every position.
package analysis

import (
	"context"
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/classify"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/tactics"
)

// DefaultOpeningPlies is how many plies are checked against the opening
// lookup.
const DefaultOpeningPlies = 11

// OpeningLookup names exact opening lines. A miss is not an error.
type OpeningLookup interface {
	Lookup(san []string) (string, bool)
}

// OpeningLabeler is optionally implemented by an OpeningLookup to label the
// game as a whole, typically with an ECO code.
type OpeningLabeler interface {
	Label(san []string) (code, title string, ok bool)
}

type Options struct {
	OpeningPlies int
	Openings     OpeningLookup
	// Progress, when set, is called after each reviewed ply.
	Progress func(done, total int)
}

// Reviewer reviews whole games against one evaluator. It holds no per-game
// state and may be reused sequentially or concurrently as far as the
// evaluator allows.
type Reviewer struct {
	ev   eval.Evaluator
	opts Options
}

func NewReviewer(ev eval.Evaluator, opts Options) *Reviewer {
	if opts.OpeningPlies <= 0 {
		opts.OpeningPlies = DefaultOpeningPlies
	}
	return &Reviewer{ev: ev, opts: opts}
}

// MoveReview is the verdict for one ply.
type MoveReview struct {
	Ply            int
	Color          board.Color
	Move           board.Move
	SAN            string
	Classification classify.Classification
	Opening        string
	Best           board.Move
	BestSAN        string
	Reply          board.Move
	ReplySAN       string
	Gain           eval.Gain
	Motifs         []Motif
	// BestMotifs describes the best alternative when the played move was
	// neither book nor best.
	BestMotifs []Motif
}

// Result is the full review of one game.
type Result struct {
	Tags         map[string]string
	OpeningCode  string
	OpeningTitle string
	Moves        []MoveReview
	FENs         []string
	Scores       []int
	Loss         Loss
	ACPL         Sides
	Accuracy     Sides
	Rating       tactics.Pair
	Development  []tactics.Pair
	Tension      []tactics.Pair
	Mobility     []tactics.Pair
	Control      []tactics.Pair
	Lost         tactics.Lost
	// MateState is the mate sequence after the last ply. Checkmate ends it,
	// so a game won on the board always leaves it empty.
	MateState classify.MateState
}

// Review analyses g end to end. Any evaluator failure aborts the review and
// no partial result is returned.
func (r *Reviewer) Review(ctx context.Context, g *Game) (*Result, error) {
	res := &Result{Tags: g.Tags}

	loss, err := CentipawnLoss(ctx, r.ev, g)
	if err != nil {
		return nil, err
	}
	res.Loss = loss
	res.Scores = loss.Scores
	res.ACPL = loss.Average()
	fullMoves := len(loss.Scores) / 2
	res.Rating = tactics.Pair{
		White: EstimateRating(res.ACPL.White, fullMoves),
		Black: EstimateRating(res.ACPL.Black, fullMoves),
	}
	res.Accuracy = Accuracy(loss.Scores, g.Start.Turn())

	for _, pos := range g.Positions {
		res.FENs = append(res.FENs, pos.FEN())
		res.Development = append(res.Development, tactics.Development(pos))
		res.Mobility = append(res.Mobility, tactics.Mobility(pos))
		res.Tension = append(res.Tension, tactics.Tension(pos))
		res.Control = append(res.Control, tactics.Control(pos))
	}
	final := g.Start
	if n := len(g.Positions); n > 0 {
		final = g.Positions[n-1]
	}
	res.Lost = tactics.LostPieces(final)

	if labeler, ok := r.opts.Openings.(OpeningLabeler); ok {
		res.OpeningCode, res.OpeningTitle, _ = labeler.Label(g.SAN)
	}

	state := classify.NoMate
	var prev []Motif
	for i := range g.Moves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mr, next, err := r.reviewPly(ctx, g, i, state, prev)
		if err != nil {
			return nil, fmt.Errorf("review ply %d (%s): %w", i+1, g.SAN[i], err)
		}
		state = next
		prev = mr.Motifs
		res.Moves = append(res.Moves, mr)
		if r.opts.Progress != nil {
			r.opts.Progress(i+1, g.Len())
		}
	}
	res.MateState = state
	return res, nil
}

func (r *Reviewer) reviewPly(ctx context.Context, g *Game, i int, state classify.MateState, prev []Motif) (MoveReview, classify.MateState, error) {
	pos := g.Before(i)
	m := g.Moves[i]
	next := g.Positions[i]
	mr := MoveReview{Ply: i + 1, Color: pos.Turn(), Move: m, SAN: g.SAN[i], Best: board.NullMove, Reply: board.NullMove}

	if i < r.opts.OpeningPlies && r.opts.Openings != nil {
		if name, ok := r.opts.Openings.Lookup(g.SAN[:i+1]); ok {
			best, err := eval.BestMove(ctx, r.ev, pos)
			if err != nil {
				return mr, state, err
			}
			mr.Classification = classify.Plain(classify.Book)
			mr.Opening = name
			if err := r.setBest(&mr, pos, best); err != nil {
				return mr, state, err
			}
			return mr, state, nil
		}
	}

	verdict, nextState, err := classify.Move(ctx, r.ev, pos, m, state)
	if err != nil {
		return mr, state, err
	}
	mr.Classification = verdict.Classification
	mr.Gain = verdict.Gain
	if err := r.setBest(&mr, pos, verdict.Best); err != nil {
		return mr, state, err
	}

	reply, err := eval.BestMove(ctx, r.ev, next)
	if err != nil {
		return mr, state, err
	}
	if !reply.IsNull() {
		mr.Reply = reply
		if mr.ReplySAN, err = next.SAN(reply); err != nil {
			return mr, state, err
		}
	}

	c := mr.Classification
	switch {
	case c.Kind == c.Grade && c.Positive():
		mr.Motifs, err = positiveMotifs(ctx, r.ev, pos, m, prev)
	case c.Kind == c.Grade && c.Negative():
		mr.Motifs, err = negativeMotifs(ctx, r.ev, pos, m, verdict.Best, reply)
	case c.Kind == classify.GetsMated || c.Kind == classify.LostMate:
		mr.Motifs, err = r.mateMotifs(ctx, pos, &mr)
	}
	if err != nil {
		return mr, state, err
	}

	if c.Kind != classify.Best && !verdict.Best.IsNull() && verdict.Best != m {
		if mr.BestMotifs, err = positiveMotifs(ctx, r.ev, pos, verdict.Best, prev); err != nil {
			return mr, state, err
		}
	}
	return mr, nextState, nil
}

// mateMotifs explains a move that let a mate in or gave one away.
func (r *Reviewer) mateMotifs(ctx context.Context, pos *board.Position, mr *MoveReview) ([]Motif, error) {
	var out []Motif
	if mr.Classification.Kind == classify.LostMate {
		missed, err := tactics.MoveMissesMate(ctx, r.ev, pos, mr.Move)
		if err != nil {
			return nil, err
		}
		if missed {
			out = append(out, Motif{Kind: MotifMissedMate, Move: mr.BestSAN})
		}
	} else {
		winner, ok, err := tactics.MoveAllowsMate(ctx, r.ev, pos, mr.Move)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, Motif{Kind: MotifAllowsMate, Side: winner})
		}
	}
	if !mr.Reply.IsNull() {
		out = append(out, Motif{Kind: MotifOpponentReply, Move: mr.ReplySAN})
	}
	return out, nil
}

func (r *Reviewer) setBest(mr *MoveReview, pos *board.Position, best board.Move) error {
	mr.Best = best
	if best.IsNull() {
		return nil
	}
	san, err := pos.SAN(best)
	if err != nil {
		return err
	}
	mr.BestSAN = san
	return nil
}

// CentipawnLoss compares, ply by ply, the score after the evaluator's best
// move with the score after the move played. Mate scores are capped to
// ±1000 first.
func CentipawnLoss(ctx context.Context, ev eval.Evaluator, g *Game) (Loss, error) {
	var out Loss
	for i := range g.Moves {
		pos := g.Before(i)
		best, err := eval.BestMove(ctx, ev, pos)
		if err != nil {
			return Loss{}, fmt.Errorf("best move at ply %d: %w", i+1, err)
		}
		scoreBest := 0
		if !best.IsNull() {
			s, err := eval.Evaluate(ctx, ev, pos.MustApply(best))
			if err != nil {
				return Loss{}, fmt.Errorf("evaluate best at ply %d: %w", i+1, err)
			}
			scoreBest = s.Capped()
		}
		s, err := eval.Evaluate(ctx, ev, g.Positions[i])
		if err != nil {
			return Loss{}, fmt.Errorf("evaluate ply %d: %w", i+1, err)
		}
		scorePlayer := s.Capped()
		out.Scores = append(out.Scores, scorePlayer)

		cpl := scoreBest - scorePlayer
		if cpl < 0 {
			cpl = -cpl
		}
		if pos.Turn() == board.White {
			out.White = append(out.White, cpl)
		} else {
			out.Black = append(out.Black, cpl)
		}
	}
	return out, nil
}
