package narrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/Cheese-GameReview/internal/analysis"
	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/classify"
	"github.com/park285/Cheese-GameReview/internal/chess/tactics"
	"github.com/park285/Cheese-GameReview/internal/msgcat"
)

func newNarrator(t *testing.T, tone Tone) *Narrator {
	t.Helper()
	cat, err := msgcat.New("")
	require.NoError(t, err)
	return New(cat, tone)
}

func mustMove(t *testing.T, s string) board.Move {
	t.Helper()
	m, err := board.ParseUCI(s)
	require.NoError(t, err)
	return m
}

func TestParseTone(t *testing.T) {
	tone, err := ParseTone(" Roast ")
	require.NoError(t, err)
	assert.Equal(t, Roast, tone)
	tone, err = ParseTone("")
	require.NoError(t, err)
	assert.Equal(t, Standard, tone)
	_, err = ParseTone("sarcastic")
	assert.ErrorIs(t, err, ErrUnknownTone)
}

func TestList(t *testing.T) {
	assert.Equal(t, "", List(nil))
	assert.Equal(t, "knight", List([]string{"knight"}))
	assert.Equal(t, "knight and rook", List([]string{"knight", "rook"}))
	assert.Equal(t, "pawn, knight, and rook", List([]string{"pawn", "knight", "rook"}))
}

func TestMistakeWithMotifs(t *testing.T) {
	n := newNarrator(t, Standard)
	mr := analysis.MoveReview{
		Color:          board.White,
		Move:           mustMove(t, "e3e4"),
		SAN:            "e4",
		Classification: classify.Plain(classify.Mistake),
		Best:           mustMove(t, "e1d2"),
		BestSAN:        "Kd2",
		Motifs: []analysis.Motif{
			{Kind: analysis.MotifHangs, Squares: []board.Square{board.D4}, Pieces: []board.PieceType{board.Knight}},
			{Kind: analysis.MotifOpponentReply, Move: "Rxd4"},
		},
	}
	text, best, err := n.Move(mr)
	require.NoError(t, err)
	assert.Equal(t, "e4 is a mistake. This move leaves a knight hanging on d4. The opponent can play Rxd4.", text)
	assert.Equal(t, "The best move was Kd2.", best)

	roast, _, err := newNarrator(t, Roast).Move(mr)
	require.NoError(t, err)
	assert.Contains(t, roast, "Free real estate")
}

func TestBookAndBest(t *testing.T) {
	n := newNarrator(t, Standard)
	e4 := mustMove(t, "e2e4")
	text, best, err := n.Move(analysis.MoveReview{
		Color: board.White, Move: e4, SAN: "e4",
		Classification: classify.Plain(classify.Book), Opening: "King's Pawn Opening",
		Best: mustMove(t, "d2d4"), BestSAN: "d4",
	})
	require.NoError(t, err)
	assert.Equal(t, "This is a book move. The opening is called King's Pawn Opening.", text)
	assert.Empty(t, best)

	text, _, err = newNarrator(t, Roast).Move(analysis.MoveReview{
		Color: board.White, Move: e4, SAN: "e4", Classification: classify.Plain(classify.Best),
		Best: e4, BestSAN: "e4",
	})
	require.NoError(t, err)
	assert.Equal(t, "e4 is the best move, somehow.", text)
}

func TestMateProse(t *testing.T) {
	n := newNarrator(t, Standard)
	cases := []struct {
		c    classify.Classification
		want string
	}{
		{classify.Classification{Kind: classify.StartsMate, N: 3, Grade: classify.Best}, "Bc4 starts a checkmate sequence. White mates in 3."},
		{classify.Classification{Kind: classify.ContinuesMate, N: 2, Grade: classify.Best}, "Bc4 continues the checkmate sequence. White mates in 2."},
		{classify.Classification{Kind: classify.ContinuesMate, N: 2, Grade: classify.Good}, "Bc4 is good, but there was a faster way to checkmate. White mates in 2."},
		{classify.Classification{Kind: classify.ContinuesMate, N: 0, Grade: classify.Best}, "Checkmate!"},
		{classify.Classification{Kind: classify.ContinuesGetsMated, N: 1, Grade: classify.Best}, "Bc4 is good, but White will still get checkmated. White gets mated in 1."},
		{classify.Classification{Kind: classify.GetsMated, N: 2, Grade: classify.Blunder}, "Bc4 is a blunder and allows checkmate. White gets mated in 2."},
		{classify.Plain(classify.LostMate), "This loses the checkmate sequence."},
	}
	m := mustMove(t, "f1c4")
	for _, tc := range cases {
		text, _, err := n.Move(analysis.MoveReview{Color: board.White, Move: m, SAN: "Bc4", Classification: tc.c, Best: m, BestSAN: "Bc4"})
		require.NoError(t, err)
		assert.Equal(t, tc.want, text, tc.c.String())
	}

	text, _, err := n.Move(analysis.MoveReview{
		Color: board.White, Move: m, SAN: "Bc4",
		Classification: classify.Classification{Kind: classify.GetsMated, N: 1, Grade: classify.Blunder},
		Motifs: []analysis.Motif{
			{Kind: analysis.MotifAllowsMate, Side: board.Black},
			{Kind: analysis.MotifOpponentReply, Move: "Qxf2#"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Black now has a forced checkmate. The opponent can play Qxf2#. Bc4 is a blunder and allows checkmate. White gets mated in 1.", text)
}

func TestUnknownMotifFails(t *testing.T) {
	n := newNarrator(t, Standard)
	_, _, err := n.Move(analysis.MoveReview{
		Color: board.White, SAN: "e4", Classification: classify.Plain(classify.Good),
		Motifs: []analysis.Motif{{Kind: "made_up"}},
	})
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	n := newNarrator(t, Standard)
	out, err := n.Summary(&analysis.Result{
		OpeningCode:  "C50",
		OpeningTitle: "Italian Game",
		Accuracy:     analysis.Sides{White: 91.25, Black: 60},
		ACPL:         analysis.Sides{White: 12.4, Black: 80.6},
		Rating:       tactics.Pair{White: 2400, Black: 1100},
	})
	require.NoError(t, err)
	assert.Equal(t, "Opening: C50 Italian Game. "+
		"White played with 91.2% accuracy (12 average centipawn loss), roughly a 2400 performance. "+
		"Black played with 60.0% accuracy (81 average centipawn loss), roughly a 1100 performance.", out)
}
