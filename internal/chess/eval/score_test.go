package eval_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/eval/evaltest"
)

func TestParseLimit(t *testing.T) {
	l, err := eval.ParseLimit("time", 0.25, 0)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, l.Movetime)
	assert.Equal(t, "t250", l.Key())

	l, err = eval.ParseLimit("depth", 0, 15)
	require.NoError(t, err)
	assert.Equal(t, "d15", l.Key())

	_, err = eval.ParseLimit("nodes", 1, 1)
	assert.ErrorIs(t, err, eval.ErrInvalidLimit)
	_, err = eval.ParseLimit("depth", 0, 0)
	assert.ErrorIs(t, err, eval.ErrInvalidLimit)
}

func TestAnalysisNormalization(t *testing.T) {
	a := eval.Analysis{CP: 35}
	assert.Equal(t, eval.Score(35), a.Score(board.White))
	assert.Equal(t, eval.Score(-35), a.Score(board.Black))

	mating := eval.Analysis{IsMate: true, MateIn: 2}
	assert.Equal(t, eval.Score(-eval.MateScore), mating.Score(board.Black))
	md, ok := mating.Mate(board.Black)
	require.True(t, ok)
	assert.Equal(t, eval.MateDescriptor{Distance: 2, Winner: board.Black}, md)

	mated := eval.Analysis{IsMate: true, MateIn: 0}
	assert.Equal(t, eval.Score(eval.MateScore), mated.Score(board.Black))
	md, _ = mated.Mate(board.Black)
	assert.Equal(t, board.White, md.Winner)
	assert.Equal(t, 0, md.Distance)

	assert.Equal(t, 1000, eval.Score(eval.MateScore).Capped())
	assert.Equal(t, -1000, eval.Score(-eval.MateScore).Capped())
	assert.Equal(t, 999, eval.Score(999).Capped())
}

func TestCompareScoresTable(t *testing.T) {
	const m = eval.MateScore
	cases := []struct {
		name          string
		before, after eval.Score
		mover         board.Color
		want          eval.GainKind
	}{
		{"white starts", 120, m, board.White, eval.GainStartsMate},
		{"white continues", m, m, board.White, eval.GainContinuesMate},
		{"white continues gets mated", -m, -m, board.White, eval.GainContinuesGetsMated},
		{"white gets mated", 40, -m, board.White, eval.GainGetsMated},
		{"white lost mate", m, 300, board.White, eval.GainLostMate},
		{"black starts", 0, -m, board.Black, eval.GainStartsMate},
		{"black continues gets mated", m, m, board.Black, eval.GainContinuesGetsMated},
		{"black lost mate", -m, -200, board.Black, eval.GainLostMate},
		{"plain", 10, 50, board.White, eval.GainPlain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, eval.CompareScores(tc.before, tc.after, tc.mover, 1).Kind)
		})
	}

	assert.Equal(t, 40, eval.CompareScores(10, 50, board.White, 0).Delta)
	assert.Equal(t, -40, eval.CompareScores(10, 50, board.Black, 0).Delta)
}

func TestPointsGained(t *testing.T) {
	ctx := context.Background()
	start := board.Start()
	after := start.MustApply(board.Move{From: board.E2, To: board.NewSquare(4, 3)})

	fake := evaltest.New().CP(start, 30, "e2e4").CP(after, -10, "e7e5")
	g, err := eval.PointsGained(ctx, fake, start, board.Move{From: board.E2, To: board.NewSquare(4, 3)})
	require.NoError(t, err)
	assert.Equal(t, eval.Gain{Kind: eval.GainPlain, Delta: -20}, g)

	fake.Mate(after, -3, "e7e5")
	g, err = eval.PointsGained(ctx, fake, start, board.Move{From: board.E2, To: board.NewSquare(4, 3)})
	require.NoError(t, err)
	assert.Equal(t, eval.Gain{Kind: eval.GainStartsMate, Distance: 3}, g)

	boom := errors.New("engine died")
	fake.Fail(boom)
	_, err = eval.PointsGained(ctx, fake, start, board.Move{From: board.E2, To: board.NewSquare(4, 3)})
	assert.ErrorIs(t, err, boom)
}

func TestBestMoveRejectsIllegalReport(t *testing.T) {
	start := board.Start()
	fake := evaltest.New().SetPosition(start, eval.Analysis{BestMove: board.Move{From: board.E2, To: board.E7}})
	_, err := eval.BestMove(context.Background(), fake, start)
	assert.ErrorIs(t, err, eval.ErrMalformedResponse)

	mated, err := board.FromFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	mv, err := eval.BestMove(context.Background(), fake, mated)
	require.NoError(t, err)
	assert.True(t, mv.IsNull())
}
