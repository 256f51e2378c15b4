// Package review runs game reviews end to end: it parses the submitted game,
// drives the analysis against an evaluator built for the requested limit,
// narrates every ply, stores the record and renders positions from it.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/Cheese-GameReview/internal/analysis"
	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/chess/tactics"
	"github.com/park285/Cheese-GameReview/internal/domain"
	"github.com/park285/Cheese-GameReview/internal/metrics"
	"github.com/park285/Cheese-GameReview/internal/msgcat"
	"github.com/park285/Cheese-GameReview/internal/narrate"
)

var (
	ErrNotFound       = errors.New("review not found")
	ErrInvalidRequest = errors.New("invalid review request")
)

const (
	maxListLimit    = 50
	defaultPGNLimit = 256 << 10
	notifyTimeout   = 15 * time.Second
)

// EvaluatorFactory returns an evaluator bound to limit for the length of one
// review.
type EvaluatorFactory func(limit eval.Limit) (eval.Evaluator, error)

// Notifier is told about every stored review. Failures are logged only.
type Notifier interface {
	ReviewCompleted(ctx context.Context, rev *domain.Review) error
}

type Config struct {
	DefaultTone  narrate.Tone
	DefaultLimit eval.Limit
	OpeningPlies int
	ListLimit    int
	MaxPGNBytes  int
}

type SubmitRequest struct {
	PGN  string
	Tone string
	// Limit overrides the configured search limit when set.
	Limit *eval.Limit
	// Progress is called after each reviewed ply.
	Progress func(done, total int)
}

type Service struct {
	evaluators EvaluatorFactory
	openings   analysis.OpeningLookup
	catalog    *msgcat.Catalog
	repo       Repository
	renderer   BoardRenderer
	notifier   Notifier
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(
	evaluators EvaluatorFactory,
	openings analysis.OpeningLookup,
	catalog *msgcat.Catalog,
	repo Repository,
	renderer BoardRenderer,
	notifier Notifier,
	cfg Config,
	logger *zap.Logger,
) (*Service, error) {
	if evaluators == nil {
		return nil, fmt.Errorf("evaluator factory is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("message catalog is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("review repository is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("board renderer is required")
	}
	if cfg.DefaultTone == "" {
		cfg.DefaultTone = narrate.Standard
	}
	if _, err := narrate.ParseTone(string(cfg.DefaultTone)); err != nil {
		return nil, fmt.Errorf("default tone validation failed: %w", err)
	}
	if cfg.DefaultLimit.Kind == "" {
		cfg.DefaultLimit = eval.TimeLimit(250 * time.Millisecond)
	}
	if err := cfg.DefaultLimit.Validate(); err != nil {
		return nil, fmt.Errorf("default limit validation failed: %w", err)
	}
	if cfg.OpeningPlies <= 0 {
		cfg.OpeningPlies = analysis.DefaultOpeningPlies
	}
	if cfg.ListLimit <= 0 || cfg.ListLimit > maxListLimit {
		cfg.ListLimit = defaultListLimit
	}
	if cfg.MaxPGNBytes <= 0 {
		cfg.MaxPGNBytes = defaultPGNLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		evaluators: evaluators,
		openings:   openings,
		catalog:    catalog,
		repo:       repo,
		renderer:   renderer,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Submit reviews one game and stores the result. Evaluator failures abort the
// review and nothing is stored.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (rev *domain.Review, err error) {
	started := s.now()
	defer func() { metrics.ReviewFinished(err) }()

	tone, limit, game, err := s.prepare(req)
	if err != nil {
		return nil, err
	}

	ev, err := s.evaluators(limit)
	if err != nil {
		return nil, fmt.Errorf("build evaluator: %w", err)
	}
	reviewer := analysis.NewReviewer(ev, analysis.Options{
		OpeningPlies: s.cfg.OpeningPlies,
		Openings:     s.openings,
		Progress:     req.Progress,
	})
	res, err := reviewer.Review(ctx, game)
	if err != nil {
		s.logger.Warn("review_failed", zap.Int("plies", game.Len()), zap.String("limit", limit.String()), zap.Error(err))
		return nil, fmt.Errorf("review game: %w", err)
	}

	rev, err = s.buildRecord(req.PGN, game, res, tone, limit)
	if err != nil {
		return nil, err
	}
	rev.Duration = s.now().Sub(started)
	for _, m := range rev.Moves {
		metrics.Classified(m.Classification)
	}

	if err := s.repo.Insert(ctx, rev); err != nil {
		return nil, fmt.Errorf("store review: %w", err)
	}
	s.logger.Info("review_completed",
		zap.String("review_id", rev.ID),
		zap.Int("plies", len(rev.Moves)),
		zap.String("tone", rev.Tone),
		zap.String("limit", rev.Limit),
		zap.Duration("elapsed", rev.Duration),
	)
	s.notify(ctx, rev)
	return rev, nil
}

func (s *Service) prepare(req SubmitRequest) (narrate.Tone, eval.Limit, *analysis.Game, error) {
	tone := s.cfg.DefaultTone
	if strings.TrimSpace(req.Tone) != "" {
		t, err := narrate.ParseTone(req.Tone)
		if err != nil {
			return "", eval.Limit{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		tone = t
	}
	limit := s.cfg.DefaultLimit
	if req.Limit != nil {
		if err := req.Limit.Validate(); err != nil {
			return "", eval.Limit{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		limit = *req.Limit
	}
	if len(req.PGN) > s.cfg.MaxPGNBytes {
		return "", eval.Limit{}, nil, fmt.Errorf("%w: pgn larger than %d bytes", ErrInvalidRequest, s.cfg.MaxPGNBytes)
	}
	game, err := analysis.ParsePGN(req.PGN)
	if err != nil {
		return "", eval.Limit{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return tone, limit, game, nil
}

func (s *Service) notify(ctx context.Context, rev *domain.Review) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.notifier.ReviewCompleted(nctx, rev); err != nil {
		s.logger.Warn("review_notify_failed", zap.String("review_id", rev.ID), zap.Error(err))
	}
}

func (s *Service) buildRecord(pgn string, game *analysis.Game, res *analysis.Result, tone narrate.Tone, limit eval.Limit) (*domain.Review, error) {
	n := narrate.New(s.catalog, tone)
	rev := &domain.Review{
		ID:           uuid.NewString(),
		CreatedAt:    s.now().UTC(),
		PGN:          pgn,
		Tags:         res.Tags,
		White:        game.Tag("White"),
		Black:        game.Tag("Black"),
		Result:       game.Tag("Result"),
		Tone:         string(tone),
		Limit:        limit.String(),
		OpeningCode:  res.OpeningCode,
		OpeningTitle: res.OpeningTitle,
		StartFEN:     game.Start.FEN(),
		Moves:        make([]domain.ReviewedMove, 0, len(res.Moves)),
		Series: domain.Series{
			Development: samples(res.Development),
			Tension:     samples(res.Tension),
			Mobility:    samples(res.Mobility),
			Control:     samples(res.Control),
		},
	}
	rev.WhiteSummary = domain.SideSummary{
		ACPL:     res.ACPL.White,
		Accuracy: res.Accuracy.White,
		Rating:   res.Rating.White,
		Counts:   map[string]int{},
		Lost:     pieceNames(res.Lost.White),
	}
	rev.BlackSummary = domain.SideSummary{
		ACPL:     res.ACPL.Black,
		Accuracy: res.Accuracy.Black,
		Rating:   res.Rating.Black,
		Counts:   map[string]int{},
		Lost:     pieceNames(res.Lost.Black),
	}

	for i, mr := range res.Moves {
		text, best, err := n.Move(mr)
		if err != nil {
			return nil, fmt.Errorf("narrate ply %d: %w", mr.Ply, err)
		}
		c := mr.Classification
		m := domain.ReviewedMove{
			Ply:            mr.Ply,
			Color:          strings.ToLower(mr.Color.String()),
			UCI:            mr.Move.UCI(),
			SAN:            mr.SAN,
			Classification: c.Kind.String(),
			Opening:        mr.Opening,
			BestSAN:        mr.BestSAN,
			ReplySAN:       mr.ReplySAN,
			Text:           text,
			BestText:       best,
		}
		if c.Kind.IsMate() {
			m.Grade = c.Grade.String()
			m.MateIn = c.N
		}
		if !mr.Best.IsNull() {
			m.BestUCI = mr.Best.UCI()
		}
		for _, mo := range mr.Motifs {
			m.Motifs = append(m.Motifs, string(mo.Kind))
		}
		if i < len(res.Scores) {
			m.Score = res.Scores[i]
		}
		if i < len(res.FENs) {
			m.FEN = res.FENs[i]
		}
		if mr.Color == board.White {
			rev.WhiteSummary.Counts[m.Classification]++
		} else {
			rev.BlackSummary.Counts[m.Classification]++
		}
		rev.Moves = append(rev.Moves, m)
	}

	summary, err := n.Summary(res)
	if err != nil {
		return nil, fmt.Errorf("narrate summary: %w", err)
	}
	rev.Summary = summary
	return rev, nil
}

func samples(ps []tactics.Pair) []domain.Sample {
	out := make([]domain.Sample, len(ps))
	for i, p := range ps {
		out[i] = domain.Sample{White: p.White, Black: p.Black}
	}
	return out
}

func pieceNames(ts []board.PieceType) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.String())
	}
	return out
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Review, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	rev, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rev, nil
}

// List returns the most recent reviews, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]domain.ReviewListItem, error) {
	if limit <= 0 || limit > s.cfg.ListLimit {
		limit = s.cfg.ListLimit
	}
	return s.repo.List(ctx, limit)
}

// RenderPosition draws the position after ply (0 is the starting position)
// with the played move highlighted and its classification in the header.
func (s *Service) RenderPosition(ctx context.Context, id string, ply int) ([]byte, error) {
	rev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ply < 0 || ply > len(rev.Moves) {
		return nil, fmt.Errorf("%w: ply %d of %d", ErrNotFound, ply, len(rev.Moves))
	}

	fen := rev.StartFEN
	opts := RenderOptions{HUDHeader: reviewTitle(rev), HUDScore: "0.00"}
	if ply > 0 {
		m := rev.Moves[ply-1]
		fen = m.FEN
		before := rev.StartFEN
		if ply > 1 {
			before = rev.Moves[ply-2].FEN
		}
		header, highlight, err := moveHeader(before, m)
		if err != nil {
			return nil, err
		}
		opts.HUDHeader = header
		opts.Highlight = highlight
		opts.HUDScore = formatScore(m)
	}
	pos, err := board.FromFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("stored position for ply %d: %w", ply, err)
	}
	opts.HUDTurn = pos.Turn().String() + " to move"

	data, err := s.renderer.RenderPNG(ctx, pos, opts)
	if err != nil {
		s.logger.Warn("render_position_failed", zap.String("review_id", id), zap.Int("ply", ply), zap.Error(err))
		return nil, err
	}
	return data, nil
}

func reviewTitle(rev *domain.Review) string {
	white, black := rev.White, rev.Black
	if white == "" {
		white = "White"
	}
	if black == "" {
		black = "Black"
	}
	return white + " vs " + black
}

func moveHeader(beforeFEN string, m domain.ReviewedMove) (string, *MoveHighlight, error) {
	before, err := board.FromFEN(beforeFEN)
	if err != nil {
		return "", nil, fmt.Errorf("stored position before ply %d: %w", m.Ply, err)
	}
	mv, err := board.ParseUCI(m.UCI)
	if err != nil {
		return "", nil, fmt.Errorf("stored move for ply %d: %w", m.Ply, err)
	}
	header := analysis.MoveText([]string{m.SAN}, before.Turn(), before.Fullmove())
	if m.Classification != "" && m.Classification != "unknown" {
		header += " (" + m.Classification + ")"
	}
	return header, &MoveHighlight{From: mv.From, To: mv.To, Badge: badgeColor(m.Classification)}, nil
}

// formatScore shows centipawns as pawns, or the mate distance for mate
// kinds, which are the only ones carrying a grade.
func formatScore(m domain.ReviewedMove) string {
	if m.Grade == "" {
		return fmt.Sprintf("%+.2f", float64(m.Score)/100)
	}
	sign := ""
	if m.Score < 0 {
		sign = "-"
	}
	if m.MateIn == 0 {
		return sign + "#"
	}
	return fmt.Sprintf("%sM%d", sign, m.MateIn)
}
