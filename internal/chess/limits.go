package chess

import (
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/uci"
)

func searchLimits(l eval.Limit) uci.Limits {
	switch l.Kind {
	case eval.LimitDepth:
		return uci.Limits{Depth: l.Depth}
	default:
		ms := int(l.Movetime.Milliseconds())
		if ms <= 0 {
			ms = 1
		}
		return uci.Limits{MoveTimeMillis: ms}
	}
}
