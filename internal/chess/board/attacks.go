package board

var (
	knightSteps   = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps     = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays      = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays    = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	whitePawnHits = [2][2]int{{-1, 1}, {1, 1}}
	blackPawnHits = [2][2]int{{-1, -1}, {1, -1}}
)

func step(sq Square, df, dr int) Square {
	return NewSquare(sq.File()+df, sq.Rank()+dr)
}

// Attacks returns the squares attacked by the piece on sq. Sliding attacks stop
// at and include the first occupied square of either color. An empty square
// attacks nothing.
func (p *Position) Attacks(sq Square) SquareSet {
	pc := p.PieceAt(sq)
	var set SquareSet
	switch pc.Type {
	case Pawn:
		hits := whitePawnHits
		if pc.Color == Black {
			hits = blackPawnHits
		}
		for _, d := range hits {
			if t := step(sq, d[0], d[1]); t != NoSquare {
				set = set.With(t)
			}
		}
	case Knight:
		for _, d := range knightSteps {
			if t := step(sq, d[0], d[1]); t != NoSquare {
				set = set.With(t)
			}
		}
	case King:
		for _, d := range kingSteps {
			if t := step(sq, d[0], d[1]); t != NoSquare {
				set = set.With(t)
			}
		}
	case Bishop:
		set = p.slide(sq, bishopRays[:])
	case Rook:
		set = p.slide(sq, rookRays[:])
	case Queen:
		set = p.slide(sq, bishopRays[:]) | p.slide(sq, rookRays[:])
	}
	return set
}

func (p *Position) slide(from Square, rays [][2]int) SquareSet {
	var set SquareSet
	for _, d := range rays {
		for t := step(from, d[0], d[1]); t != NoSquare; t = step(t, d[0], d[1]) {
			set = set.With(t)
			if !p.placement[t].IsEmpty() {
				break
			}
		}
	}
	return set
}

// Attackers returns the squares of pieces of color c that attack sq. Pinned
// pieces are included.
func (p *Position) Attackers(c Color, sq Square) SquareSet {
	var set SquareSet
	if !sq.Valid() {
		return set
	}
	for from := Square(0); from < 64; from++ {
		pc := p.placement[from]
		if pc.IsEmpty() || pc.Color != c {
			continue
		}
		if p.Attacks(from).Has(sq) {
			set = set.With(from)
		}
	}
	return set
}

func (p *Position) IsAttackedBy(c Color, sq Square) bool {
	return !p.Attackers(c, sq).Empty()
}

func (p *Position) KingSquare(c Color) (Square, bool) {
	for sq := Square(0); sq < 64; sq++ {
		if pc := p.placement[sq]; pc.Type == King && pc.Color == c {
			return sq, true
		}
	}
	return NoSquare, false
}

// IsPinned reports whether the piece on sq is absolutely pinned to the king of
// color c: it is the only piece between that king and an enemy slider moving
// along the same line.
func (p *Position) IsPinned(c Color, sq Square) bool {
	king, ok := p.KingSquare(c)
	if !ok || king == sq || p.PieceAt(sq).IsEmpty() {
		return false
	}
	df := sign(sq.File() - king.File())
	dr := sign(sq.Rank() - king.Rank())
	fileGap := sq.File() - king.File()
	rankGap := sq.Rank() - king.Rank()
	diagonal := df != 0 && dr != 0
	if diagonal && abs(fileGap) != abs(rankGap) {
		return false
	}
	if !diagonal && fileGap != 0 && rankGap != 0 {
		return false
	}

	t := step(king, df, dr)
	for ; t != NoSquare && t != sq; t = step(t, df, dr) {
		if !p.placement[t].IsEmpty() {
			return false
		}
	}
	if t != sq {
		return false
	}
	for t = step(sq, df, dr); t != NoSquare; t = step(t, df, dr) {
		pc := p.placement[t]
		if pc.IsEmpty() {
			continue
		}
		if pc.Color == c {
			return false
		}
		if pc.Type == Queen {
			return true
		}
		if diagonal {
			return pc.Type == Bishop
		}
		return pc.Type == Rook
	}
	return false
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
