package tactics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

func TestStartMetrics(t *testing.T) {
	pos := board.Start()
	assert.Equal(t, Pair{White: 39, Black: 39}, Material(pos))
	assert.Equal(t, Pair{}, Development(pos))
	assert.Equal(t, Pair{}, Tension(pos))
	assert.Equal(t, Pair{White: 4, Black: 4}, Mobility(pos))
	assert.Equal(t, Pair{White: 38, Black: 38}, Control(pos))
}

func TestDevelopmentAndTension(t *testing.T) {
	pos := board.Start().
		MustApply(mv(t, "e2e4")).
		MustApply(mv(t, "d7d5")).
		MustApply(mv(t, "g1f3"))
	assert.Equal(t, Pair{White: 1, Black: 0}, Development(pos))
	// exd5 for White, dxe4 for Black.
	assert.Equal(t, Pair{White: 1, Black: 1}, Tension(pos))
}

func TestPassDoesNotLeak(t *testing.T) {
	pos := board.Start().MustApply(mv(t, "e2e4"))
	fen := pos.FEN()
	Mobility(pos)
	Tension(pos)
	assert.Equal(t, fen, pos.FEN())
	assert.Equal(t, board.Black, pos.Turn())
}

func TestLostPieces(t *testing.T) {
	assert.Empty(t, LostPieces(board.Start()).White)

	pos := mustFEN(t, "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPP1/RNBQKBNR w - - 0 1")
	lost := LostPieces(pos)
	assert.Equal(t, []board.PieceType{board.Pawn}, lost.White)
	assert.Equal(t, []board.PieceType{board.Queen}, lost.Black)

	bare := LostPieces(mustFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1"))
	assert.Len(t, bare.White, 15)
	assert.Equal(t, board.Queen, bare.White[0])
	assert.Equal(t, board.Pawn, bare.White[14])
}
