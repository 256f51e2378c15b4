package classify

import (
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

type MateStatus int

const (
	MateNone MateStatus = iota
	MateWinning
	MateLosing
)

// MateState is the forced-mate sequence carried from ply to ply. Status and
// Distance describe the sequence from Side's point of view; use For to read
// it from the other side.
type MateState struct {
	Status   MateStatus
	Distance int
	Side     board.Color
}

var NoMate = MateState{}

func Winning(side board.Color, n int) MateState {
	return MateState{Status: MateWinning, Distance: n, Side: side}
}

func Losing(side board.Color, n int) MateState {
	return MateState{Status: MateLosing, Distance: n, Side: side}
}

// For re-expresses the state from c's point of view.
func (s MateState) For(c board.Color) MateState {
	if s.Status == MateNone || s.Side == c {
		return s
	}
	flipped := MateState{Distance: s.Distance, Side: c}
	switch s.Status {
	case MateWinning:
		flipped.Status = MateLosing
	case MateLosing:
		flipped.Status = MateWinning
	}
	return flipped
}

func (s MateState) IsNone() bool { return s.Status == MateNone }

func (s MateState) String() string {
	switch s.Status {
	case MateWinning:
		return fmt.Sprintf("%s winning(%d)", s.Side, s.Distance)
	case MateLosing:
		return fmt.Sprintf("%s losing(%d)", s.Side, s.Distance)
	default:
		return "none"
	}
}
