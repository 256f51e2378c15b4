package tactics

import (
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

// after plays m on a copy of pos. Predicates are only asked about moves that
// are legal in pos; anything else is a caller bug.
func after(pos *board.Position, m board.Move) *board.Position {
	if mover := pos.PieceAt(m.From); mover.IsEmpty() || mover.Color != pos.Turn() {
		panic(fmt.Sprintf("tactics: move %s is not by the side to move in %s", m, pos.FEN()))
	}
	return pos.MustApply(m)
}

func contains(moves []board.Move, m board.Move) bool {
	for _, mv := range moves {
		if mv == m {
			return true
		}
	}
	return false
}

// HangingAfter lists the hanging squares of either color after m.
func HangingAfter(pos *board.Position, m board.Move) []board.Square {
	return HangingSquares(after(pos, m)).Squares()
}

// MoveHangsPiece reports whether m changes the set of hanging squares.
func MoveHangsPiece(pos *board.Position, m board.Move) bool {
	return HangingSquares(pos) != HangingSquares(after(pos, m))
}

// DefendedByMove lists the mover's pieces that were undefended before m and
// are attacked by the moved piece afterwards. Castling defends nothing.
func DefendedByMove(pos *board.Position, m board.Move) []board.Square {
	if pos.IsCastling(m) {
		return nil
	}
	next := after(pos, m)
	mover := pos.Turn()
	var out []board.Square
	for _, sq := range next.Attacks(m.To).Squares() {
		pc := next.PieceAt(sq)
		if pc.IsEmpty() || pc.Color != mover {
			continue
		}
		if !IsDefendedBy(pos, sq, mover) {
			out = append(out, sq)
		}
	}
	return out
}

func MoveDefendsHangingPiece(pos *board.Position, m board.Move) bool {
	return len(DefendedByMove(pos, m)) > 0
}

// ForkedByMove returns the squares the moved piece forks after m.
func ForkedByMove(pos *board.Position, m board.Move) []board.Square {
	return ForkedSquares(after(pos, m), m.To)
}

func MoveCreatesFork(pos *board.Position, m board.Move) bool {
	return len(ForkedByMove(pos, m)) >= 2
}

// ForkingMoves lists the legal moves in pos that create a fork.
func ForkingMoves(pos *board.Position) []board.Move {
	var out []board.Move
	for _, mv := range pos.LegalMoves() {
		if MoveCreatesFork(pos, mv) {
			out = append(out, mv)
		}
	}
	return out
}

// ForkingReplies lists the opponent's replies to m that create a fork.
func ForkingReplies(pos *board.Position, m board.Move) []board.Move {
	return ForkingMoves(after(pos, m))
}

func MoveAllowsFork(pos *board.Position, m board.Move) bool {
	return len(ForkingReplies(pos, m)) > 0
}

// MoveMissesFork reports whether a fork was available in pos and m is not
// one of the forking moves.
func MoveMissesFork(pos *board.Position, m board.Move) bool {
	forks := ForkingMoves(pos)
	return len(forks) > 0 && !contains(forks, m)
}

// MoveBlocksCheck reports a non-capturing, non-king answer to check.
func MoveBlocksCheck(pos *board.Position, m board.Move) bool {
	if !pos.InCheck() || pos.IsCapture(m) {
		return false
	}
	king, ok := pos.KingSquare(pos.Turn())
	if !ok {
		return false
	}
	return after(pos, m).PieceAt(king).Type == board.King
}

// DevelopingPiece returns the type of the piece m moves off its home square,
// or NoPieceType when m is not a developing move.
func DevelopingPiece(pos *board.Position, m board.Move) board.PieceType {
	t := pos.PieceAt(m.From).Type
	switch m.From {
	case board.B1, board.G1, board.B8, board.G8:
		if t == board.Knight {
			return t
		}
	case board.C1, board.F1, board.C8, board.F8:
		if t == board.Bishop {
			return t
		}
	case board.D1, board.D8:
		if t == board.Queen {
			return t
		}
	case board.A1, board.H1, board.A8, board.H8:
		if t == board.Rook {
			return t
		}
	}
	return board.NoPieceType
}

func IsDevelopingMove(pos *board.Position, m board.Move) bool {
	return DevelopingPiece(pos, m) != board.NoPieceType
}

// IsFianchetto reports a bishop going from its home square to b2, g2, b7 or
// g7.
func IsFianchetto(pos *board.Position, m board.Move) bool {
	if pos.PieceAt(m.From).Type != board.Bishop {
		return false
	}
	switch m.From {
	case board.C1, board.F1, board.C8, board.F8:
	default:
		return false
	}
	switch m.To {
	case board.B2, board.G2, board.B7, board.G7:
		return true
	}
	return false
}

// IsPossibleTrade reports a capture onto a square the opponent defends with
// an equal piece (Knight and Bishop count as equal), or a non-capture onto a
// square an opposing piece attacks where either nothing of the mover's covers
// the square or an equal, unpinned piece is the attacker. Non-captures are
// judged on pos, so the arriving piece counts among the square's defenders.
func IsPossibleTrade(pos *board.Position, m board.Move) bool {
	moved := pos.PieceAt(m.From)
	if moved.IsEmpty() {
		return false
	}
	mover := pos.Turn()
	if pos.IsCapture(m) {
		if !IsDefendedBy(pos, m.To, mover.Other()) {
			return false
		}
		captured := pos.PieceAt(m.To).Type
		return captured == moved.Type || board.MinorPair(captured, moved.Type)
	}
	attackers := pos.Attackers(mover.Other(), m.To).Squares()
	if len(attackers) == 0 {
		return false
	}
	if pos.Attackers(mover, m.To).Empty() {
		return true
	}
	for _, a := range attackers {
		at := pos.PieceAt(a).Type
		if at == moved.Type && !pos.IsPinned(mover.Other(), a) {
			return true
		}
		if board.MinorPair(at, moved.Type) {
			return true
		}
	}
	return false
}

// IsPossibleSacrifice reports a non-pawn move that gives material: a capture
// of a lower piece on a square whose first defender is lower than the
// capturer, or a move onto an attacked square that is either uncovered or
// attacked by a lower, unpinned piece. As in IsPossibleTrade, non-captures
// are judged on pos. A Bishop taking a Knight and a Knight attacking a Bishop
// are not sacrifices.
func IsPossibleSacrifice(pos *board.Position, m board.Move) bool {
	moved := pos.PieceAt(m.From)
	if moved.IsEmpty() || moved.Type == board.Pawn {
		return false
	}
	mover := pos.Turn()
	if pos.IsCapture(m) {
		defenders := Defenders(pos, m.To, mover.Other()).Squares()
		if len(defenders) == 0 {
			return false
		}
		captured := pos.PieceAt(m.To).Type
		if !captured.Less(moved.Type) {
			return false
		}
		if captured == board.Knight && moved.Type == board.Bishop {
			return false
		}
		return pos.PieceAt(defenders[0]).Type.Less(moved.Type)
	}
	attackers := pos.Attackers(mover.Other(), m.To).Squares()
	if len(attackers) == 0 {
		return false
	}
	if pos.Attackers(mover, m.To).Empty() {
		return true
	}
	for _, a := range attackers {
		at := pos.PieceAt(a).Type
		if !at.Less(moved.Type) {
			continue
		}
		if at == board.Knight && moved.Type == board.Bishop {
			continue
		}
		if !pos.IsPinned(mover.Other(), a) {
			return true
		}
	}
	return false
}

// MoveIsDiscoveredCheck reports a check given by a piece other than the one
// that moved.
func MoveIsDiscoveredCheck(pos *board.Position, m board.Move) bool {
	next := after(pos, m)
	if !next.InCheck() {
		return false
	}
	king, ok := next.KingSquare(next.Turn())
	return ok && !next.Attacks(m.To).Has(king)
}

// DiscoveredCheckTargets lists the opposing pieces the moved piece attacks
// while a discovered check is on: pieces hanging to the mover or pieces of
// higher rank than the moved one.
func DiscoveredCheckTargets(pos *board.Position, m board.Move) []board.Square {
	if !MoveIsDiscoveredCheck(pos, m) {
		return nil
	}
	next := after(pos, m)
	mover := pos.Turn()
	moved := next.PieceAt(m.To)
	var out []board.Square
	for _, sq := range next.Attacks(m.To).Squares() {
		pc := next.PieceAt(sq)
		if pc.IsEmpty() || pc.Color == mover {
			continue
		}
		if IsHanging(next, sq, mover) || pc.Type.Greater(moved.Type) {
			out = append(out, sq)
		}
	}
	return out
}

func MoveIsDiscoveredCheckAndAttacks(pos *board.Position, m board.Move) bool {
	return len(DiscoveredCheckTargets(pos, m)) > 0
}

// TrappedByMove lists opposing pieces attacked by the moved piece that are
// trapped after m.
func TrappedByMove(pos *board.Position, m board.Move) []board.Square {
	next := after(pos, m)
	mover := pos.Turn()
	var out []board.Square
	for _, sq := range next.Attacks(m.To).Squares() {
		pc := next.PieceAt(sq)
		if pc.IsEmpty() || pc.Color == mover {
			continue
		}
		if IsTrapped(next, sq, mover) {
			out = append(out, sq)
		}
	}
	return out
}

func MoveTrapsOpponentsPiece(pos *board.Position, m board.Move) bool {
	return len(TrappedByMove(pos, m)) > 0
}

// PinnedByMove returns an opposing piece attacked by the moved piece that is
// pinned to its king after m. A moved piece that can be taken for free pins
// nothing.
func PinnedByMove(pos *board.Position, m board.Move) (board.Square, bool) {
	next := after(pos, m)
	mover := pos.Turn()
	opp := mover.Other()
	if next.IsAttackedBy(opp, m.To) && Defenders(next, m.To, mover).Empty() {
		return board.NoSquare, false
	}
	for _, sq := range next.Attacks(m.To).Squares() {
		pc := next.PieceAt(sq)
		if pc.IsEmpty() || pc.Color != opp {
			continue
		}
		if next.IsPinned(opp, sq) {
			return sq, true
		}
	}
	return board.NoSquare, false
}

func MovePinsOpponent(pos *board.Position, m board.Move) bool {
	_, ok := PinnedByMove(pos, m)
	return ok
}

// PinMoves lists the legal moves in pos that pin an opposing piece.
func PinMoves(pos *board.Position) []board.Move {
	var out []board.Move
	for _, mv := range pos.LegalMoves() {
		if MovePinsOpponent(pos, mv) {
			out = append(out, mv)
		}
	}
	return out
}

func BoardHasPin(pos *board.Position) bool {
	return len(PinMoves(pos)) > 0
}

func MoveMissesPin(pos *board.Position, m board.Move) bool {
	pins := PinMoves(pos)
	return len(pins) > 0 && !contains(pins, m)
}

// MovesRookToOpenFile reports a rook leaving rank 1, 2, 7 or 8 sideways onto
// a file holding fewer than three pieces.
func MovesRookToOpenFile(pos *board.Position, m board.Move) bool {
	if pos.PieceAt(m.From).Type != board.Rook {
		return false
	}
	switch m.From.Rank() {
	case 0, 1, 6, 7:
	default:
		return false
	}
	if d := int(m.From) - int(m.To); d >= 8 || d <= -8 {
		return false
	}
	n := 0
	for rank := 0; rank < 8; rank++ {
		if !pos.PieceAt(board.NewSquare(m.To.File(), rank)).IsEmpty() {
			n++
		}
	}
	return n < 3
}

// MoveMovesKingOffBackrank reports, in an endgame, a king stepping off the
// first or last rank.
func MoveMovesKingOffBackrank(pos *board.Position, m board.Move) bool {
	if pos.PieceAt(m.From).Type != board.King || !IsEndgame(pos) {
		return false
	}
	back := func(sq board.Square) bool { return sq.Rank() == 0 || sq.Rank() == 7 }
	return back(m.From) && !back(m.To)
}

// AttackedByMove returns the first opposing non-king piece the moved piece
// attacks after m that is either of higher rank or hanging to the mover. The
// moved piece must be defended or on a square the opponent did not attack.
func AttackedByMove(pos *board.Position, m board.Move) (board.Square, bool) {
	next := after(pos, m)
	mover := pos.Turn()
	opp := mover.Other()
	if !IsDefended(next, m.To) && pos.IsAttackedBy(opp, m.To) {
		return board.NoSquare, false
	}
	moved := next.PieceAt(m.To)
	for _, sq := range next.Attacks(m.To).Squares() {
		pc := next.PieceAt(sq)
		if pc.IsEmpty() || pc.Type == board.King || pc.Color == mover {
			continue
		}
		if pc.Type.Greater(moved.Type) || IsHanging(next, sq, mover) {
			return sq, true
		}
	}
	return board.NoSquare, false
}

func MoveAttacksPiece(pos *board.Position, m board.Move) bool {
	_, ok := AttackedByMove(pos, m)
	return ok
}

func MoveCapturesFreePiece(pos *board.Position, m board.Move) bool {
	return pos.IsCapture(m) && IsHanging(pos, m.To, pos.Turn())
}

// FreeCaptures lists the legal captures of hanging pieces in pos.
func FreeCaptures(pos *board.Position) []board.Move {
	var out []board.Move
	for _, mv := range pos.LegalMoves() {
		if MoveCapturesFreePiece(pos, mv) {
			out = append(out, mv)
		}
	}
	return out
}

func MoveMissesFreePiece(pos *board.Position, m board.Move) bool {
	free := FreeCaptures(pos)
	return len(free) > 0 && !contains(free, m)
}

func MoveCapturesHigherPiece(pos *board.Position, m board.Move) bool {
	return pos.IsCapture(m) && pos.PieceAt(m.From).Type.Less(pos.PieceAt(m.To).Type)
}
