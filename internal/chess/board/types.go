package board

import (
	"fmt"
	"math/bits"
	"strings"
)

type Color int8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType is ordered Pawn < Knight < Bishop < Rook < Queen < King. Tactical
// predicates compare types by this order; Knight and Bishop are treated as a
// trade pair only where a predicate says so explicitly.
type PieceType int8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Value is the material value in pawns. Knight and Bishop are equal, the King
// carries no material.
func (t PieceType) Value() int {
	switch t {
	case Pawn:
		return 1
	case Knight, Bishop:
		return 3
	case Rook:
		return 5
	case Queen:
		return 9
	default:
		return 0
	}
}

func (t PieceType) Less(o PieceType) bool    { return t < o }
func (t PieceType) Greater(o PieceType) bool { return t > o }

// MinorPair reports whether a and b are one Knight and one Bishop.
func MinorPair(a, b PieceType) bool {
	return (a == Knight && b == Bishop) || (a == Bishop && b == Knight)
}

func (t PieceType) Letter() string {
	switch t {
	case Pawn:
		return "p"
	case Knight:
		return "n"
	case Bishop:
		return "b"
	case Rook:
		return "r"
	case Queen:
		return "q"
	case King:
		return "k"
	default:
		return ""
	}
}

func (t PieceType) String() string {
	switch t {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "none"
	}
}

func pieceTypeFromLetter(r byte) PieceType {
	switch r {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	default:
		return NoPieceType
	}
}

type Piece struct {
	Type  PieceType
	Color Color
}

var NoPiece = Piece{}

func (p Piece) IsEmpty() bool { return p.Type == NoPieceType }

// FEN returns the FEN letter for the piece, upper case for White.
func (p Piece) FEN() string {
	l := p.Type.Letter()
	if p.Color == White {
		return strings.ToUpper(l)
	}
	return l
}

// Square indexes the board from a1 = 0 to h8 = 63.
type Square int8

const NoSquare Square = -1

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
)

func NewSquare(file, rank int) Square {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare
	}
	return Square(rank*8 + file)
}

func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }
func (s Square) Valid() bool {
	return s >= 0 && s < 64
}

func (s Square) String() string {
	if !s.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q", name)
	}
	f := int(name[0]) - 'a'
	r := int(name[1]) - '1'
	sq := NewSquare(f, r)
	if sq == NoSquare {
		return NoSquare, fmt.Errorf("invalid square %q", name)
	}
	return sq, nil
}

// SquareSet is a bitboard. Iteration is always in ascending square order.
type SquareSet uint64

func (s SquareSet) Has(sq Square) bool       { return sq.Valid() && s&(1<<uint(sq)) != 0 }
func (s SquareSet) With(sq Square) SquareSet { return s | 1<<uint(sq) }
func (s SquareSet) Len() int                 { return bits.OnesCount64(uint64(s)) }
func (s SquareSet) Empty() bool              { return s == 0 }

func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Len())
	for b := uint64(s); b != 0; b &= b - 1 {
		out = append(out, Square(bits.TrailingZeros64(b)))
	}
	return out
}

func (s SquareSet) String() string {
	names := make([]string, 0, s.Len())
	for _, sq := range s.Squares() {
		names = append(names, sq.String())
	}
	return "[" + strings.Join(names, " ") + "]"
}

type Move struct {
	From  Square
	To    Square
	Promo PieceType
}

var NullMove = Move{From: NoSquare, To: NoSquare}

func (m Move) IsNull() bool { return m.From == NoSquare || m.To == NoSquare }

// UCI renders the move in coordinate notation, e.g. e7e8q.
func (m Move) UCI() string {
	if m.IsNull() {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.Promo != NoPieceType {
		s += m.Promo.Letter()
	}
	return s
}

func (m Move) String() string { return m.UCI() }

func ParseUCI(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return NullMove, fmt.Errorf("invalid uci move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NullMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NullMove, err
	}
	mv := Move{From: from, To: to}
	if len(s) == 5 {
		mv.Promo = pieceTypeFromLetter(s[4])
		if mv.Promo == NoPieceType || mv.Promo == Pawn || mv.Promo == King {
			return NullMove, fmt.Errorf("invalid promotion in %q", s)
		}
	}
	return mv, nil
}
