package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFEN(t *testing.T, fen string) *Position {
	t.Helper()
	p, err := FromFEN(fen)
	require.NoError(t, err)
	return p
}

func mustUCI(t *testing.T, s string) Move {
	t.Helper()
	m, err := ParseUCI(s)
	require.NoError(t, err)
	return m
}

func TestStartPosition(t *testing.T) {
	p := Start()
	assert.Equal(t, White, p.Turn())
	assert.Len(t, p.LegalMoves(), 20)
	assert.Equal(t, StartFEN, p.FEN())
	assert.Equal(t, Piece{Type: Queen, Color: White}, p.PieceAt(D1))
	assert.Equal(t, Piece{Type: King, Color: Black}, p.PieceAt(E8))
	assert.True(t, p.PieceAt(NewSquare(4, 3)).IsEmpty())
}

func TestFromFENRejectsGarbage(t *testing.T) {
	for _, fen := range []string{"", "8/8/8 w - -", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"} {
		_, err := FromFEN(fen)
		assert.ErrorIs(t, err, ErrInvalidFEN, fen)
	}
}

func TestApplyIsCopyOnWrite(t *testing.T) {
	p := Start()
	next, err := p.Apply(mustUCI(t, "e2e4"))
	require.NoError(t, err)

	assert.Equal(t, StartFEN, p.FEN())
	assert.Equal(t, Black, next.Turn())
	assert.True(t, next.PieceAt(E2).IsEmpty())
	assert.Equal(t, Piece{Type: Pawn, Color: White}, next.PieceAt(NewSquare(4, 3)))

	_, err = p.Apply(mustUCI(t, "e2e5"))
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestPassFlipsSideOnly(t *testing.T) {
	p := mustFEN(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
	passed := p.Pass()

	assert.Equal(t, Black, passed.Turn())
	assert.Equal(t, NoSquare, passed.EnPassant())
	assert.Equal(t, White, p.Turn())
	for sq := Square(0); sq < 64; sq++ {
		assert.Equal(t, p.PieceAt(sq), passed.PieceAt(sq))
	}
}

func TestSANAndParseMove(t *testing.T) {
	p := Start()
	san, err := p.SAN(mustUCI(t, "g1f3"))
	require.NoError(t, err)
	assert.Equal(t, "Nf3", san)

	mv, err := p.ParseMove("Nf3")
	require.NoError(t, err)
	assert.Equal(t, "g1f3", mv.UCI())

	mv, err = p.ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, E2, mv.From)

	_, err = p.ParseMove("Ke2")
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestCheckmateAndCheck(t *testing.T) {
	mated := mustFEN(t, "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	assert.True(t, mated.InCheck())
	assert.True(t, mated.IsCheckmate())
	assert.Empty(t, mated.LegalMoves())

	stale := mustFEN(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.True(t, stale.IsStalemate())
}

func TestMoveKinds(t *testing.T) {
	p := mustFEN(t, "r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 1")
	assert.True(t, p.IsCastling(mustUCI(t, "e1g1")))
	assert.True(t, p.IsCastling(mustUCI(t, "e1c1")))
	assert.False(t, p.IsCastling(mustUCI(t, "e1f1")))
	assert.True(t, p.IsEnPassant(mustUCI(t, "e5d6")))
	assert.True(t, p.IsCapture(mustUCI(t, "e5d6")))
	assert.False(t, p.IsCapture(mustUCI(t, "e5e6")))
	assert.True(t, p.IsCapture(mustUCI(t, "a1a8")))
}

func TestParseUCI(t *testing.T) {
	m, err := ParseUCI("e7e8q")
	require.NoError(t, err)
	assert.Equal(t, Move{From: E7, To: E8, Promo: Queen}, m)
	assert.Equal(t, "e7e8q", m.UCI())

	for _, bad := range []string{"", "e7", "e7e9", "e7e8k", "z1a1"} {
		_, err := ParseUCI(bad)
		assert.Error(t, err, bad)
	}
}
