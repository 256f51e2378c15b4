package analysis

import (
	"context"

	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/tactics"
)

type MotifKind string

// Motifs found in good moves.
const (
	MotifTrade           MotifKind = "trade"
	MotifOffersTrade     MotifKind = "offers_trade"
	MotifDefends         MotifKind = "defends"
	MotifFork            MotifKind = "fork"
	MotifAttacks         MotifKind = "attacks"
	MotifBlocksCheck     MotifKind = "blocks_check"
	MotifDevelops        MotifKind = "develops"
	MotifFianchetto      MotifKind = "fianchetto"
	MotifPins            MotifKind = "pins"
	MotifRookOpenFile    MotifKind = "rook_open_file"
	MotifKingOffBackrank MotifKind = "king_off_backrank"
	MotifTempo           MotifKind = "tempo"
	MotifCapturesHigher  MotifKind = "captures_higher"
	MotifCapturesFree    MotifKind = "captures_free"
	MotifDiscoveredCheck MotifKind = "discovered_check"
	MotifTraps           MotifKind = "traps"
	MotifSacrifice       MotifKind = "sacrifice"
	MotifThreatensMate   MotifKind = "threatens_mate"
)

// Motifs found in inaccuracies, mistakes and blunders. The missed_* kinds
// name the best move in Move.
const (
	MotifHangs                 MotifKind = "hangs"
	MotifCapturableByLower     MotifKind = "capturable_by_lower"
	MotifAllowsFork            MotifKind = "allows_fork"
	MotifMissedFork            MotifKind = "missed_fork"
	MotifMissedPin             MotifKind = "missed_pin"
	MotifMissedFreePiece       MotifKind = "missed_free_piece"
	MotifMissedMateThreat      MotifKind = "missed_mate_threat"
	MotifMissedAttack          MotifKind = "missed_attack"
	MotifMissedDiscoveredCheck MotifKind = "missed_discovered_check"
	MotifMissedTrap            MotifKind = "missed_trap"
	MotifAllowsAttack          MotifKind = "allows_attack"
	MotifAllowsDiscoveredCheck MotifKind = "allows_discovered_check"
	MotifAllowsTrap            MotifKind = "allows_trap"
	MotifAllowsTempo           MotifKind = "allows_tempo"
	MotifOpponentReply         MotifKind = "opponent_reply"
	MotifMissedMate            MotifKind = "missed_mate"
	MotifAllowsMate            MotifKind = "allows_mate"
)

// Motif is one tactical fact supporting a classification. Squares and Pieces
// are parallel. Side is set for allows_mate only and names the mating side.
type Motif struct {
	Kind    MotifKind         `json:"kind"`
	Squares []board.Square    `json:"-"`
	Pieces  []board.PieceType `json:"-"`
	Move    string            `json:"move,omitempty"`
	Side    board.Color       `json:"-"`
}

func has(ms []Motif, kinds ...MotifKind) bool {
	for _, m := range ms {
		for _, k := range kinds {
			if m.Kind == k {
				return true
			}
		}
	}
	return false
}

func piecesOn(pos *board.Position, sqs []board.Square) []board.PieceType {
	out := make([]board.PieceType, len(sqs))
	for i, s := range sqs {
		out[i] = pos.PieceAt(s).Type
	}
	return out
}

func on(kind MotifKind, pos *board.Position, sqs ...board.Square) Motif {
	return Motif{Kind: kind, Squares: sqs, Pieces: piecesOn(pos, sqs)}
}

// positiveMotifs collects the facts behind a good move. prev holds the motifs
// of the previous ply: a recapture after a trade is not a free capture.
func positiveMotifs(ctx context.Context, ev eval.Evaluator, pos *board.Position, m board.Move, prev []Motif) ([]Motif, error) {
	next := pos.MustApply(m)
	var out []Motif

	trade := tactics.IsPossibleTrade(pos, m) && !tactics.MoveIsDiscoveredCheck(pos, m)
	if trade {
		kind := MotifOffersTrade
		if pos.IsCapture(m) {
			kind = MotifTrade
		}
		out = append(out, Motif{Kind: kind})
	}

	if !trade {
		var defended []board.Square
		for _, s := range tactics.DefendedByMove(pos, m) {
			if pos.PieceAt(s).Type != board.King {
				defended = append(defended, s)
			}
		}
		if len(defended) > 0 {
			out = append(out, on(MotifDefends, pos, defended...))
		}
	}

	if forked := tactics.ForkedByMove(pos, m); len(forked) >= 2 {
		out = append(out, on(MotifFork, next, forked...))
	} else if target, ok := tactics.AttackedByMove(pos, m); ok {
		out = append(out, on(MotifAttacks, next, target))
	}

	if tactics.MoveBlocksCheck(pos, m) {
		out = append(out, Motif{Kind: MotifBlocksCheck})
	}
	if pt := tactics.DevelopingPiece(pos, m); pt != board.NoPieceType {
		out = append(out, Motif{Kind: MotifDevelops, Pieces: []board.PieceType{pt}})
	}
	if tactics.IsFianchetto(pos, m) {
		out = append(out, Motif{Kind: MotifFianchetto})
	}
	if s, ok := tactics.PinnedByMove(pos, m); ok {
		out = append(out, on(MotifPins, next, s))
	}
	if tactics.MovesRookToOpenFile(pos, m) {
		out = append(out, Motif{Kind: MotifRookOpenFile})
	}
	if tactics.MoveMovesKingOffBackrank(pos, m) {
		out = append(out, Motif{Kind: MotifKingOffBackrank})
	}

	tempo, err := tactics.MoveWinsTempo(ctx, ev, pos, m)
	if err != nil {
		return nil, err
	}
	if tempo {
		out = append(out, Motif{Kind: MotifTempo})
	}

	if !has(prev, MotifTrade, MotifOffersTrade) {
		if tactics.MoveCapturesHigherPiece(pos, m) {
			out = append(out, on(MotifCapturesHigher, pos, m.To))
		}
		if !has(prev, MotifCapturesHigher) && tactics.MoveCapturesFreePiece(pos, m) {
			out = append(out, on(MotifCapturesFree, pos, m.To))
		}
	}

	if targets := tactics.DiscoveredCheckTargets(pos, m); len(targets) > 0 {
		out = append(out, on(MotifDiscoveredCheck, next, targets...))
	}
	if trapped := tactics.TrappedByMove(pos, m); len(trapped) > 0 {
		out = append(out, on(MotifTraps, next, trapped...))
	}
	if tactics.IsPossibleSacrifice(pos, m) {
		out = append(out, on(MotifSacrifice, pos, m.From))
	}

	threat, err := tactics.MoveThreatensMate(ctx, ev, pos, m)
	if err != nil {
		return nil, err
	}
	if threat {
		out = append(out, Motif{Kind: MotifThreatensMate})
	}
	return out, nil
}

// negativeMotifs collects what went wrong with m. best is the evaluator's
// choice in pos and reply its choice after m; either may be NullMove.
func negativeMotifs(ctx context.Context, ev eval.Evaluator, pos *board.Position, m, best, reply board.Move) ([]Motif, error) {
	next := pos.MustApply(m)
	mover := pos.Turn()
	trade := tactics.IsPossibleTrade(pos, m)
	var out []Motif

	var hanging []board.Square
	for _, s := range tactics.HangingAfter(pos, m) {
		if trade && s == m.To {
			continue
		}
		if pc := next.PieceAt(s); !pc.IsEmpty() && pc.Color == mover {
			hanging = append(hanging, s)
		}
	}
	if len(hanging) > 0 {
		out = append(out, on(MotifHangs, next, hanging...))
	}

	var lower []board.Square
	for _, s := range tactics.CapturableByLower(next) {
		if !containsSquare(hanging, s) {
			lower = append(lower, s)
		}
	}
	if len(lower) > 0 && !next.InCheck() && !trade {
		out = append(out, on(MotifCapturableByLower, next, lower...))
	}

	hasReply := !reply.IsNull()
	if hasReply && containsMove(tactics.ForkingReplies(pos, m), reply) {
		out = append(out, Motif{Kind: MotifAllowsFork})
	}

	missedBest := !best.IsNull() && m != best
	if missedBest {
		bestSAN, err := pos.SAN(best)
		if err != nil {
			return nil, err
		}
		if containsMove(tactics.ForkingMoves(pos), best) {
			out = append(out, Motif{Kind: MotifMissedFork, Move: bestSAN})
		}
		if containsMove(tactics.PinMoves(pos), best) {
			out = append(out, Motif{Kind: MotifMissedPin, Move: bestSAN})
		}
		if containsMove(tactics.FreeCaptures(pos), best) {
			out = append(out, Motif{Kind: MotifMissedFreePiece, Move: bestSAN, Squares: []board.Square{best.To}, Pieces: piecesOn(pos, []board.Square{best.To})})
		}
		threat, err := tactics.MoveThreatensMate(ctx, ev, pos, best)
		if err != nil {
			return nil, err
		}
		if threat {
			out = append(out, Motif{Kind: MotifMissedMateThreat, Move: bestSAN})
		}
		if target, ok := tactics.AttackedByMove(pos, best); ok {
			mo := on(MotifMissedAttack, pos.MustApply(best), target)
			mo.Move = bestSAN
			out = append(out, mo)
		}
		if targets := tactics.DiscoveredCheckTargets(pos, best); len(targets) > 0 {
			mo := on(MotifMissedDiscoveredCheck, pos, targets...)
			mo.Move = bestSAN
			out = append(out, mo)
		}
		if trapped := tactics.TrappedByMove(pos, best); len(trapped) > 0 {
			mo := on(MotifMissedTrap, pos, trapped...)
			mo.Move = bestSAN
			out = append(out, mo)
		}
	}

	if hasReply {
		if tactics.MoveAttacksPiece(next, reply) {
			out = append(out, Motif{Kind: MotifAllowsAttack})
		}
		discovered := tactics.DiscoveredCheckTargets(next, reply)
		if len(discovered) > 0 {
			out = append(out, on(MotifAllowsDiscoveredCheck, next, discovered...))
		} else if trapped := tactics.TrappedByMove(next, reply); len(trapped) > 0 {
			out = append(out, on(MotifAllowsTrap, next, trapped...))
		}
		tempo, err := tactics.MoveWinsTempo(ctx, ev, next, reply)
		if err != nil {
			return nil, err
		}
		if tempo {
			out = append(out, Motif{Kind: MotifAllowsTempo})
		}
		replyMotif, err := replyOf(next, reply)
		if err != nil {
			return nil, err
		}
		out = append(out, replyMotif)
	}
	return out, nil
}

func replyOf(next *board.Position, reply board.Move) (Motif, error) {
	san, err := next.SAN(reply)
	if err != nil {
		return Motif{}, err
	}
	return Motif{Kind: MotifOpponentReply, Move: san}, nil
}

func containsMove(ms []board.Move, m board.Move) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

func containsSquare(ss []board.Square, s board.Square) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
