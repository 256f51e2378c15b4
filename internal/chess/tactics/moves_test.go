package tactics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

func TestMoveHangsAndDefends(t *testing.T) {
	pos := mustFEN(t, "3rk3/8/8/8/3N4/4P3/8/4K3 w - - 0 1")
	assert.True(t, MoveHangsPiece(pos, mv(t, "e3e4")))
	assert.Equal(t, []board.Square{sq(t, "d4")}, HangingAfter(pos, mv(t, "e3e4")))
	assert.False(t, MoveHangsPiece(pos, mv(t, "e1d2")))

	loose := mustFEN(t, "3rk3/8/8/8/3N4/8/4P3/4K3 w - - 0 1")
	assert.Equal(t, []board.Square{sq(t, "d4")}, DefendedByMove(loose, mv(t, "e2e3")))
	assert.True(t, MoveDefendsHangingPiece(loose, mv(t, "e2e3")))
	assert.False(t, MoveDefendsHangingPiece(loose, mv(t, "e2e4")))
}

func TestCastlingDefendsNothing(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/4K2R w K - 0 1")
	assert.Nil(t, DefendedByMove(pos, mv(t, "e1g1")))
}

func TestMoveForks(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/5b2/8/1r6/4N3/4K3 w - - 0 1")
	fork := mv(t, "e2d4")
	assert.Equal(t, []board.Square{sq(t, "b3"), sq(t, "f5")}, ForkedByMove(pos, fork))
	assert.True(t, MoveCreatesFork(pos, fork))
	assert.Equal(t, []board.Move{fork}, ForkingMoves(pos))
	assert.True(t, MoveMissesFork(pos, mv(t, "e1d1")))
	assert.False(t, MoveMissesFork(pos, fork))
}

func TestMoveAllowsFork(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/1n6/8/7P/R3K3 w - - 0 1")
	replies := ForkingReplies(pos, mv(t, "h2h3"))
	assert.Contains(t, replies, mv(t, "b4c2"))
	assert.True(t, MoveAllowsFork(pos, mv(t, "h2h3")))
	assert.False(t, MoveAllowsFork(pos, mv(t, "a1a4")))
}

func TestMoveBlocksCheck(t *testing.T) {
	pos := mustFEN(t, "4k3/4r3/8/8/8/8/3B4/4K3 w - - 0 1")
	assert.True(t, MoveBlocksCheck(pos, mv(t, "d2e3")))
	assert.False(t, MoveBlocksCheck(pos, mv(t, "e1d1")))
	assert.False(t, MoveBlocksCheck(board.Start(), mv(t, "e2e4")))
}

func TestDevelopmentMoves(t *testing.T) {
	start := board.Start()
	assert.Equal(t, board.Knight, DevelopingPiece(start, mv(t, "g1f3")))
	assert.Equal(t, board.NoPieceType, DevelopingPiece(start, mv(t, "e2e4")))
	assert.False(t, IsDevelopingMove(start, mv(t, "e2e4")))

	pos := mustFEN(t, "rnbqkbnr/pppppppp/8/8/8/6P1/PPPPPP1P/RNBQKBNR w - - 0 1")
	assert.True(t, IsFianchetto(pos, mv(t, "f1g2")))
	assert.False(t, IsFianchetto(pos, mv(t, "f1h3")))
}

func TestTradesAndSacrifices(t *testing.T) {
	cases := []struct {
		name      string
		fen       string
		move      string
		trade     bool
		sacrifice bool
	}{
		{"minor for minor", "4k3/8/2p5/3b4/8/4N3/8/4K3 w - - 0 1", "e3d5", true, false},
		{"bishop takes knight", "4k3/8/2p5/3n4/8/8/6B1/4K3 w - - 0 1", "g2d5", true, false},
		{"queen takes defended knight", "4k3/8/2p5/3n4/8/8/8/3QK3 w - - 0 1", "d1d5", false, true},
		{"queen into pawn attack", "4k3/8/2p5/8/8/8/8/3QK3 w - - 0 1", "d1d5", false, true},
		{"knight offers trade", "4k3/8/8/1n6/8/8/3P4/1N2K3 w - - 0 1", "b1c3", true, false},
		{"knight into bishop attack", "4k3/1b6/8/8/8/8/8/4K1N1 w - - 0 1", "g1f3", true, false},
		{"queen facing queen", "3qk3/8/8/8/8/8/8/3QK3 w - - 0 1", "d1d5", true, false},
		{"knight meets knight", "4k3/8/8/6n1/8/8/8/4K1N1 w - - 0 1", "g1f3", true, false},
		{"queen into knight attack", "4k3/4n3/8/8/8/8/8/3Q3K w - - 0 1", "d1d5", false, true},
		{"queen into pinned knight", "4k3/4n3/8/8/8/8/8/3QR2K w - - 0 1", "d1d5", false, false},
		{"pawn push", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", "e2e4", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			m := mv(t, tc.move)
			assert.Equal(t, tc.trade, IsPossibleTrade(pos, m), "trade")
			assert.Equal(t, tc.sacrifice, IsPossibleSacrifice(pos, m), "sacrifice")
		})
	}
}

func TestDiscoveredCheck(t *testing.T) {
	pos := mustFEN(t, "r3k3/8/8/8/4B3/8/8/4R1K1 w - - 0 1")
	m := mv(t, "e4d5")
	assert.True(t, MoveIsDiscoveredCheck(pos, m))
	assert.Equal(t, []board.Square{board.A8}, DiscoveredCheckTargets(pos, m))
	assert.True(t, MoveIsDiscoveredCheckAndAttacks(pos, m))

	direct := mustFEN(t, "4k3/8/8/8/8/8/8/R5K1 w - - 0 1")
	assert.False(t, MoveIsDiscoveredCheck(direct, mv(t, "a1a8")))

	// Nd6 checks with both pieces; Nc5 uncovers the rook only.
	double := mustFEN(t, "4k3/8/8/8/4N3/8/8/4R1K1 w - - 0 1")
	assert.False(t, MoveIsDiscoveredCheck(double, mv(t, "e4d6")))
	assert.True(t, MoveIsDiscoveredCheck(double, mv(t, "e4c5")))
}

func TestPins(t *testing.T) {
	pos := mustFEN(t, "4k3/3n4/8/8/8/8/8/3BK3 w - - 0 1")
	pinned, ok := PinnedByMove(pos, mv(t, "d1a4"))
	require.True(t, ok)
	assert.Equal(t, sq(t, "d7"), pinned)
	assert.Equal(t, []board.Move{mv(t, "d1a4")}, PinMoves(pos))
	assert.True(t, BoardHasPin(pos))
	assert.True(t, MoveMissesPin(pos, mv(t, "e1e2")))
	assert.False(t, MoveMissesPin(pos, mv(t, "d1a4")))
}

func TestMoveTrapsPiece(t *testing.T) {
	pos := mustFEN(t, "4k3/b1P5/1P6/2P5/8/2N5/8/4K3 w - - 0 1")
	m := mv(t, "c3b5")
	assert.Equal(t, []board.Square{sq(t, "a7")}, TrappedByMove(pos, m))
	assert.True(t, MoveTrapsOpponentsPiece(pos, m))
}

func TestRookAndKingMoves(t *testing.T) {
	rook := mustFEN(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	assert.True(t, MovesRookToOpenFile(rook, mv(t, "a1d1")))
	assert.False(t, MovesRookToOpenFile(rook, mv(t, "a1a5")))

	bare := mustFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	assert.True(t, MoveMovesKingOffBackrank(bare, mv(t, "e1e2")))
	assert.False(t, MoveMovesKingOffBackrank(bare, mv(t, "e1d1")))
}

func TestAttacksAndCaptures(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3r4/8/8/8/4KB2 w - - 0 1")
	target, ok := AttackedByMove(pos, mv(t, "f1c4"))
	require.True(t, ok)
	assert.Equal(t, sq(t, "d5"), target)

	free := mustFEN(t, "4k3/8/8/3r4/8/8/8/3RK3 w - - 0 1")
	assert.True(t, MoveCapturesFreePiece(free, mv(t, "d1d5")))
	assert.False(t, MoveCapturesHigherPiece(free, mv(t, "d1d5")))
	assert.Equal(t, []board.Move{mv(t, "d1d5")}, FreeCaptures(free))
	assert.True(t, MoveMissesFreePiece(free, mv(t, "e1e2")))

	higher := mustFEN(t, "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1")
	assert.True(t, MoveCapturesHigherPiece(higher, mv(t, "e4d5")))
}

func TestMoverMustBeSideToMove(t *testing.T) {
	assert.Panics(t, func() { MoveHangsPiece(board.Start(), mv(t, "e7e5")) })
}
