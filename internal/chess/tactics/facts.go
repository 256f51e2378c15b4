// Package tactics holds the pure tactical predicates used to justify a move
// classification. Every function is a pure function of its Position
// arguments; applying a move always produces a new Position.
package tactics

import (
	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

// Defenders returns the pieces of color by that attack sq. NoColor means the
// occupant's own color. An empty square has no defenders.
func Defenders(pos *board.Position, sq board.Square, by board.Color) board.SquareSet {
	pc := pos.PieceAt(sq)
	if pc.IsEmpty() {
		return 0
	}
	if by == board.NoColor {
		by = pc.Color
	}
	return pos.Attackers(by, sq)
}

// IsDefended reports whether the occupant of sq is defended by its own side.
func IsDefended(pos *board.Position, sq board.Square) bool {
	return !Defenders(pos, sq, board.NoColor).Empty()
}

func IsDefendedBy(pos *board.Position, sq board.Square, by board.Color) bool {
	return !Defenders(pos, sq, by).Empty()
}

// HangingAttackers returns the attackers that could take the occupant of sq
// for free. With capturableBy set, those attackers are of that color and the
// defence is counted for the other color; otherwise the occupant's colors are
// used. The result is empty when the piece is not hanging.
func HangingAttackers(pos *board.Position, sq board.Square, capturableBy board.Color) board.SquareSet {
	pc := pos.PieceAt(sq)
	if pc.IsEmpty() {
		return 0
	}
	if capturableBy == board.NoColor {
		capturableBy = pc.Color.Other()
	}
	if IsDefendedBy(pos, sq, capturableBy.Other()) {
		return 0
	}
	return pos.Attackers(capturableBy, sq)
}

func IsHanging(pos *board.Position, sq board.Square, capturableBy board.Color) bool {
	return !HangingAttackers(pos, sq, capturableBy).Empty()
}

// HangingPieces maps every hanging piece of either color to its attackers.
func HangingPieces(pos *board.Position) map[board.Square]board.SquareSet {
	out := make(map[board.Square]board.SquareSet)
	for _, sq := range pos.Occupied(board.NoColor).Squares() {
		if attackers := HangingAttackers(pos, sq, board.NoColor); !attackers.Empty() {
			out[sq] = attackers
		}
	}
	return out
}

// HangingSquares is the key set of HangingPieces.
func HangingSquares(pos *board.Position) board.SquareSet {
	var set board.SquareSet
	for sq := range HangingPieces(pos) {
		set = set.With(sq)
	}
	return set
}

// ForkedSquares returns the opposing pieces that the piece on sq forks. A
// target counts when it is undefended, outranks the forker, or is a King. A
// forker that can itself be taken for free forks nothing.
func ForkedSquares(pos *board.Position, sq board.Square) []board.Square {
	forker := pos.PieceAt(sq)
	if forker.IsEmpty() {
		return nil
	}
	opp := forker.Color.Other()
	if pos.IsAttackedBy(opp, sq) && !IsDefendedBy(pos, sq, forker.Color) {
		return nil
	}
	var out []board.Square
	for _, t := range pos.Attacks(sq).Squares() {
		target := pos.PieceAt(t)
		if target.IsEmpty() || target.Color == forker.Color {
			continue
		}
		switch {
		case !IsDefended(pos, t):
			out = append(out, t)
		case target.Type.Greater(forker.Type):
			out = append(out, t)
		case target.Type == board.King:
			out = append(out, t)
		}
	}
	return out
}

func IsForking(pos *board.Position, sq board.Square) bool {
	return len(ForkedSquares(pos, sq)) >= 2
}

// IsTrapped reports whether the occupant of sq, attacked by a lower piece of
// color by, has no safe square to go to. Candidate squares are those it
// attacks that are empty or hold an enemy piece of equal or lower rank. The
// search looks one ply deep only: a candidate is unsafe when a defender of
// color by guards it and is not neutralized, and deeper refutations are
// never checked. A piece with no candidate squares at all is trapped.
func IsTrapped(pos *board.Position, sq board.Square, by board.Color) bool {
	pc := pos.PieceAt(sq)
	if pc.IsEmpty() || pc.Type == board.King || pc.Color == by {
		return false
	}
	if !IsCapturableByLower(pos, sq, by) {
		return false
	}
	for _, dest := range pos.Attacks(sq).Squares() {
		occupant := pos.PieceAt(dest)
		if !occupant.IsEmpty() && (occupant.Color == pc.Color || occupant.Type.Greater(pc.Type)) {
			continue
		}
		if !escapeCovered(pos, pc, dest, by) {
			return false
		}
	}
	return true
}

// escapeCovered reports whether some defender of color by makes dest unsafe
// for piece pc. A lower defender covers unless pinned. An equal defender
// covers unless pinned or supported by more than one piece of pc's color.
// Higher defenders never cover.
func escapeCovered(pos *board.Position, pc board.Piece, dest board.Square, by board.Color) bool {
	for _, d := range pos.Attackers(by, dest).Squares() {
		defender := pos.PieceAt(d)
		if pos.IsPinned(by, d) {
			continue
		}
		switch {
		case defender.Type.Less(pc.Type):
			return true
		case defender.Type == pc.Type:
			if pos.Attackers(pc.Color, d).Len() <= 1 {
				return true
			}
		}
	}
	return false
}

// IsEndgame reports whether fewer than six knights, bishops, rooks and queens
// remain on the board in total.
func IsEndgame(pos *board.Position) bool {
	n := 0
	for _, sq := range pos.Occupied(board.NoColor).Squares() {
		switch pos.PieceAt(sq).Type {
		case board.Knight, board.Bishop, board.Rook, board.Queen:
			n++
		}
	}
	return n < 6
}

func IsCapturableByLower(pos *board.Position, sq board.Square, by board.Color) bool {
	pc := pos.PieceAt(sq)
	if pc.IsEmpty() {
		return false
	}
	for _, a := range pos.Attackers(by, sq).Squares() {
		if pos.PieceAt(a).Type.Less(pc.Type) {
			return true
		}
	}
	return false
}

// CapturableByLower lists the pieces of the side not to move that the side to
// move can take with a lower piece.
func CapturableByLower(pos *board.Position) []board.Square {
	var out []board.Square
	for _, sq := range pos.Occupied(pos.Turn().Other()).Squares() {
		if IsCapturableByLower(pos, sq, pos.Turn()) {
			out = append(out, sq)
		}
	}
	return out
}
