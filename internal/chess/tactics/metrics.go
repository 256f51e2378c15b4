package tactics

import (
	"sort"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

// Pair is a (White, Black) sample.
type Pair struct {
	White int `json:"white"`
	Black int `json:"black"`
}

func (p *Pair) add(c board.Color, n int) {
	if c == board.White {
		p.White += n
	} else {
		p.Black += n
	}
}

// Material sums piece values per side.
func Material(pos *board.Position) Pair {
	var p Pair
	for _, sq := range pos.Occupied(board.NoColor).Squares() {
		pc := pos.PieceAt(sq)
		p.add(pc.Color, pc.Type.Value())
	}
	return p
}

var homeSquares = []struct {
	sq board.Square
	pc board.Piece
}{
	{board.A1, board.Piece{Type: board.Rook, Color: board.White}},
	{board.H1, board.Piece{Type: board.Rook, Color: board.White}},
	{board.B1, board.Piece{Type: board.Knight, Color: board.White}},
	{board.G1, board.Piece{Type: board.Knight, Color: board.White}},
	{board.C1, board.Piece{Type: board.Bishop, Color: board.White}},
	{board.F1, board.Piece{Type: board.Bishop, Color: board.White}},
	{board.D1, board.Piece{Type: board.Queen, Color: board.White}},
	{board.A8, board.Piece{Type: board.Rook, Color: board.Black}},
	{board.H8, board.Piece{Type: board.Rook, Color: board.Black}},
	{board.B8, board.Piece{Type: board.Knight, Color: board.Black}},
	{board.G8, board.Piece{Type: board.Knight, Color: board.Black}},
	{board.C8, board.Piece{Type: board.Bishop, Color: board.Black}},
	{board.F8, board.Piece{Type: board.Bishop, Color: board.Black}},
	{board.D8, board.Piece{Type: board.Queen, Color: board.Black}},
}

// Development counts, per side, the home squares of rooks, knights, bishops
// and the queen that no longer hold their original piece.
func Development(pos *board.Position) Pair {
	var p Pair
	for _, h := range homeSquares {
		if pos.PieceAt(h.sq) != h.pc {
			p.add(h.pc.Color, 1)
		}
	}
	return p
}

// Tension counts legal captures for each side. The side not to move is
// measured on a passed copy of the position.
func Tension(pos *board.Position) Pair {
	return perSide(pos, func(p *board.Position, m board.Move) bool {
		return p.IsCapture(m)
	})
}

// Mobility counts legal non-pawn moves for each side.
func Mobility(pos *board.Position) Pair {
	return perSide(pos, func(p *board.Position, m board.Move) bool {
		return p.PieceAt(m.From).Type != board.Pawn
	})
}

func perSide(pos *board.Position, keep func(*board.Position, board.Move) bool) Pair {
	count := func(p *board.Position) int {
		n := 0
		for _, m := range p.LegalMoves() {
			if keep(p, m) {
				n++
			}
		}
		return n
	}
	var out Pair
	out.add(pos.Turn(), count(pos))
	passed := pos.Pass()
	out.add(passed.Turn(), count(passed))
	return out
}

// Control sums the attacked squares of every piece per side.
func Control(pos *board.Position) Pair {
	var p Pair
	for _, sq := range pos.Occupied(board.NoColor).Squares() {
		p.add(pos.PieceAt(sq).Color, pos.Attacks(sq).Len())
	}
	return p
}

// Lost lists the captured pieces of each side relative to the starting set,
// highest rank first.
type Lost struct {
	White []board.PieceType `json:"white"`
	Black []board.PieceType `json:"black"`
}

var startingSet = map[board.PieceType]int{
	board.Pawn: 8, board.Knight: 2, board.Bishop: 2, board.Rook: 2, board.Queen: 1, board.King: 1,
}

func LostPieces(pos *board.Position) Lost {
	counts := map[board.Color]map[board.PieceType]int{
		board.White: {},
		board.Black: {},
	}
	for _, sq := range pos.Occupied(board.NoColor).Squares() {
		pc := pos.PieceAt(sq)
		counts[pc.Color][pc.Type]++
	}
	missing := func(c board.Color) []board.PieceType {
		var out []board.PieceType
		for t, n := range startingSet {
			for i := counts[c][t]; i < n; i++ {
				out = append(out, t)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
		return out
	}
	return Lost{White: missing(board.White), Black: missing(board.Black)}
}
