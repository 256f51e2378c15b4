package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	chesslib "github.com/corentings/chess/v2"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidFEN  = errors.New("invalid fen")
	ErrIllegalMove = errors.New("illegal move")
)

// Position is an immutable board snapshot. Every method that changes the
// board returns a new Position; the receiver is never modified.
type Position struct {
	fen       string
	placement [64]Piece
	turn      Color
	castling  string
	enPassant Square
	halfmove  int
	fullmove  int

	lib   *chesslib.Position
	legal []Move
}

func Start() *Position {
	p, err := FromFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

func FromFEN(fen string) (*Position, error) {
	fen = strings.TrimSpace(fen)
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFEN, fen)
	}
	for len(fields) < 6 {
		switch len(fields) {
		case 4:
			fields = append(fields, "0")
		case 5:
			fields = append(fields, "1")
		}
	}

	p := &Position{castling: fields[2], enPassant: NoSquare}
	if err := parsePlacement(fields[0], &p.placement); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	switch fields[1] {
	case "w":
		p.turn = White
	case "b":
		p.turn = Black
	default:
		return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}
	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		p.enPassant = sq
	}
	p.halfmove, _ = strconv.Atoi(fields[4])
	p.fullmove, _ = strconv.Atoi(fields[5])
	if p.fullmove <= 0 {
		p.fullmove = 1
	}
	p.fen = strings.Join(fields[:6], " ")

	opt, err := chesslib.FEN(p.fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	p.lib = chesslib.NewGame(opt).Position()
	p.legal = collectLegal(p.lib)
	return p, nil
}

func parsePlacement(field string, out *[64]Piece) error {
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("placement needs 8 ranks, got %d", len(ranks))
	}
	for i, row := range ranks {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}
			t := pieceTypeFromLetter(c)
			if t == NoPieceType || file > 7 {
				return fmt.Errorf("bad placement rank %q", row)
			}
			color := Black
			if c >= 'A' && c <= 'Z' {
				color = White
			}
			out[NewSquare(file, rank)] = Piece{Type: t, Color: color}
			file++
		}
		if file != 8 {
			return fmt.Errorf("bad placement rank %q", row)
		}
	}
	return nil
}

func collectLegal(pos *chesslib.Position) []Move {
	valid := pos.ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, mv := range valid {
		out = append(out, Move{
			From:  Square(mv.S1()),
			To:    Square(mv.S2()),
			Promo: fromLibType(mv.Promo()),
		})
	}
	return out
}

func fromLibType(t chesslib.PieceType) PieceType {
	switch t {
	case chesslib.Pawn:
		return Pawn
	case chesslib.Knight:
		return Knight
	case chesslib.Bishop:
		return Bishop
	case chesslib.Rook:
		return Rook
	case chesslib.Queen:
		return Queen
	case chesslib.King:
		return King
	default:
		return NoPieceType
	}
}

func (p *Position) FEN() string       { return p.fen }
func (p *Position) String() string    { return p.fen }
func (p *Position) Turn() Color       { return p.turn }
func (p *Position) Castling() string  { return p.castling }
func (p *Position) EnPassant() Square { return p.enPassant }
func (p *Position) Fullmove() int     { return p.fullmove }

// Key identifies the position for lookups that ignore move counters.
func (p *Position) Key() string {
	fields := strings.Fields(p.fen)
	return strings.Join(fields[:4], " ")
}

func (p *Position) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return p.placement[sq]
}

// Occupied returns every occupied square, optionally restricted to one color.
func (p *Position) Occupied(c Color) SquareSet {
	var set SquareSet
	for sq := Square(0); sq < 64; sq++ {
		pc := p.placement[sq]
		if pc.IsEmpty() {
			continue
		}
		if c == NoColor || pc.Color == c {
			set = set.With(sq)
		}
	}
	return set
}

// LegalMoves returns a copy of the legal moves for the side to move.
func (p *Position) LegalMoves() []Move {
	return append([]Move(nil), p.legal...)
}

func (p *Position) IsLegal(m Move) bool {
	for _, mv := range p.legal {
		if mv == m {
			return true
		}
	}
	return false
}

func (p *Position) IsCapture(m Move) bool {
	target := p.PieceAt(m.To)
	if !target.IsEmpty() {
		return target.Color != p.PieceAt(m.From).Color
	}
	return p.IsEnPassant(m)
}

func (p *Position) IsEnPassant(m Move) bool {
	mover := p.PieceAt(m.From)
	return mover.Type == Pawn && m.To == p.enPassant && m.From.File() != m.To.File()
}

func (p *Position) IsCastling(m Move) bool {
	if p.PieceAt(m.From).Type != King {
		return false
	}
	df := m.To.File() - m.From.File()
	return df == 2 || df == -2
}

func (p *Position) InCheck() bool {
	king, ok := p.KingSquare(p.turn)
	if !ok {
		return false
	}
	return p.IsAttackedBy(p.turn.Other(), king)
}

func (p *Position) IsCheckmate() bool { return len(p.legal) == 0 && p.InCheck() }
func (p *Position) IsStalemate() bool { return len(p.legal) == 0 && !p.InCheck() }

// Apply plays m and returns the resulting position.
func (p *Position) Apply(m Move) (*Position, error) {
	if !p.IsLegal(m) {
		return nil, fmt.Errorf("%w: %s in %s", ErrIllegalMove, m, p.fen)
	}
	opt, err := chesslib.FEN(p.fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	game := chesslib.NewGame(opt)
	if err := game.PushNotationMove(m.UCI(), chesslib.UCINotation{}, nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIllegalMove, m, err)
	}
	return FromFEN(game.FEN())
}

// MustApply is Apply for moves known to be legal in p. An illegal move is a
// programming error.
func (p *Position) MustApply(m Move) *Position {
	next, err := p.Apply(m)
	if err != nil {
		panic(err)
	}
	return next
}

// Pass hands the move to the other side without touching the placement. The
// en passant square is cleared. The result is a scratch position: it is never
// part of a game record.
func (p *Position) Pass() *Position {
	fields := strings.Fields(p.fen)
	fields[1] = "w"
	if p.turn == White {
		fields[1] = "b"
	}
	fields[3] = "-"
	next, err := FromFEN(strings.Join(fields, " "))
	if err != nil {
		panic(fmt.Sprintf("pass from %s: %v", p.fen, err))
	}
	return next
}

func (p *Position) SAN(m Move) (string, error) {
	mv, err := chesslib.UCINotation{}.Decode(p.lib, m.UCI())
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrIllegalMove, m, err)
	}
	return chesslib.AlgebraicNotation{}.Encode(p.lib, mv), nil
}

// ParseMove accepts SAN (Nf3, exd5, O-O) or UCI (g1f3).
func (p *Position) ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if mv, err := ParseUCI(s); err == nil && p.IsLegal(mv) {
		return mv, nil
	}
	mv, err := chesslib.AlgebraicNotation{}.Decode(p.lib, s)
	if err != nil {
		return NullMove, fmt.Errorf("%w: %q: %v", ErrIllegalMove, s, err)
	}
	out := Move{From: Square(mv.S1()), To: Square(mv.S2()), Promo: fromLibType(mv.Promo())}
	if !p.IsLegal(out) {
		return NullMove, fmt.Errorf("%w: %q", ErrIllegalMove, s)
	}
	return out, nil
}
