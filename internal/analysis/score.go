package analysis

import (
	"math"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
)

// Sides is a per-color float sample.
type Sides struct {
	White float64 `json:"white"`
	Black float64 `json:"black"`
}

// Loss holds the centipawn loss of every ply split by mover, plus the capped
// White-normalized score after each ply.
type Loss struct {
	White  []int
	Black  []int
	Scores []int
}

// Average returns the ACPL per color. A color without moves averages 0.
func (l Loss) Average() Sides {
	return Sides{White: mean(l.White), Black: mean(l.Black)}
}

func mean[T int | float64](xs []T) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	return sum / float64(len(xs))
}

// EstimateRating maps an ACPL and a full-move count to a rating, rounded up
// to the next hundred.
func EstimateRating(acpl float64, moves int) int {
	if acpl > 500 {
		return 100
	}
	estimate := 3000 * math.Exp(-0.01*acpl) * math.Sqrt(float64(moves)/50)
	return int(math.Ceil(estimate/100)) * 100
}

// WinPercent is White's winning chance for a White-normalized score.
func WinPercent(cp int) float64 {
	return 50 + 50*(2/(1+math.Exp(-0.00368208*float64(cp)))-1)
}

// MoveAccuracy converts a drop in winning chance to an accuracy percentage.
func MoveAccuracy(drop float64) float64 {
	if drop <= 0 {
		return 100
	}
	return 100.0307234*math.Exp(-0.1008298*drop) - 0.03076726
}

// Accuracy computes the game accuracy per color from the score after each
// ply, first being the side that made the first ply. The game starts from an
// even score.
func Accuracy(scores []int, first board.Color) Sides {
	win := make([]float64, 0, len(scores)+1)
	win = append(win, WinPercent(0))
	for _, s := range scores {
		win = append(win, WinPercent(s))
	}
	var white, black []float64
	for i := 0; i+1 < len(win); i++ {
		if moverAt(first, i) == board.White {
			white = append(white, MoveAccuracy(win[i]-win[i+1]))
		} else {
			black = append(black, MoveAccuracy((100-win[i])-(100-win[i+1])))
		}
	}
	return Sides{White: mean(white), Black: mean(black)}
}

// moverAt returns the side that made ply index i.
func moverAt(first board.Color, i int) board.Color {
	if i%2 == 0 {
		return first
	}
	return first.Other()
}
