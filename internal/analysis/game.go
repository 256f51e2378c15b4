package analysis

import (
	"errors"
	"fmt"
	"strings"

	chesslib "github.com/corentings/chess/v2"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

var ErrInvalidGame = errors.New("invalid game")

// Game is a parsed game record: the starting position, the moves in order and
// the position after every ply.
type Game struct {
	Tags      map[string]string
	Start     *board.Position
	Moves     []board.Move
	SAN       []string
	Positions []*board.Position
}

// Before returns the position in which ply i (0-based) was played.
func (g *Game) Before(i int) *board.Position {
	if i == 0 {
		return g.Start
	}
	return g.Positions[i-1]
}

func (g *Game) Len() int { return len(g.Moves) }

func (g *Game) Tag(name string) string { return g.Tags[name] }

// pgnTags are the tag pairs carried into a review: the seven-tag roster plus
// the setup and rating tags.
var pgnTags = []string{
	"Event", "Site", "Date", "Round", "White", "Black", "Result",
	"WhiteElo", "BlackElo", "ECO", "Opening", "TimeControl", "Termination",
	"SetUp", "FEN",
}

// ParsePGN reads the main line of the first game in text.
func ParsePGN(text string) (*Game, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty pgn", ErrInvalidGame)
	}
	opt, err := chesslib.PGN(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGame, err)
	}
	parsed := chesslib.NewGame(opt)

	tags := make(map[string]string)
	for _, k := range pgnTags {
		if v := parsed.GetTagPair(k); v != "" {
			tags[k] = v
		}
	}

	start := board.Start()
	if fen := strings.TrimSpace(tags["FEN"]); fen != "" {
		if start, err = board.FromFEN(fen); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGame, err)
		}
	}

	moves := make([]string, 0, len(parsed.Moves()))
	for _, mv := range parsed.Moves() {
		moves = append(moves, mv.String())
	}
	return NewGame(start, tags, moves)
}

// NewGame replays moves, given in SAN or UCI, from start.
func NewGame(start *board.Position, tags map[string]string, moves []string) (*Game, error) {
	if start == nil {
		start = board.Start()
	}
	if tags == nil {
		tags = make(map[string]string)
	}
	g := &Game{
		Tags:      tags,
		Start:     start,
		Moves:     make([]board.Move, 0, len(moves)),
		SAN:       make([]string, 0, len(moves)),
		Positions: make([]*board.Position, 0, len(moves)),
	}
	pos := start
	for i, text := range moves {
		m, err := pos.ParseMove(text)
		if err != nil {
			return nil, fmt.Errorf("%w: ply %d: %v", ErrInvalidGame, i+1, err)
		}
		san, err := pos.SAN(m)
		if err != nil {
			return nil, fmt.Errorf("%w: ply %d: %v", ErrInvalidGame, i+1, err)
		}
		next, err := pos.Apply(m)
		if err != nil {
			return nil, fmt.Errorf("%w: ply %d: %v", ErrInvalidGame, i+1, err)
		}
		g.Moves = append(g.Moves, m)
		g.SAN = append(g.SAN, san)
		g.Positions = append(g.Positions, next)
		pos = next
	}
	return g, nil
}

// MoveText renders SAN moves the way opening lines are written:
// "1. e4 e5 2. Nf3".
func MoveText(san []string, first board.Color, fullmove int) string {
	var sb strings.Builder
	n := fullmove
	for i, s := range san {
		white := (i%2 == 0) == (first == board.White)
		switch {
		case white:
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%d. %s", n, s)
		case i == 0:
			fmt.Fprintf(&sb, "%d... %s", n, s)
		default:
			sb.WriteByte(' ')
			sb.WriteString(s)
		}
		if !white {
			n++
		}
	}
	return sb.String()
}
