package httpapi

import (
	"fmt"

	"github.com/park285/Cheese-GameReview/internal/chess/eval"
	"github.com/park285/Cheese-GameReview/internal/domain"
	"github.com/park285/Cheese-GameReview/internal/service/review"
	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

// submitRequest validates the body and turns it into a service request.
func (s *Server) submitRequest(body reviewdto.SubmitRequest) (review.SubmitRequest, *reviewdto.DomainError) {
	if err := s.validate.Struct(body); err != nil {
		return review.SubmitRequest{}, &reviewdto.DomainError{Code: reviewdto.CodeInvalidRequest, Message: validationMessage(err)}
	}
	req := review.SubmitRequest{PGN: body.PGN, Tone: body.Tone}
	if body.LimitType != "" {
		limit, err := eval.ParseLimit(body.LimitType, body.TimeLimit, body.DepthLimit)
		if err != nil {
			return review.SubmitRequest{}, &reviewdto.DomainError{Code: reviewdto.CodeInvalidRequest, Message: err.Error()}
		}
		req.Limit = &limit
	}
	return req, nil
}

func positionURL(id string, ply int) string {
	return fmt.Sprintf("/v1/reviews/%s/positions/%d.png", id, ply)
}

// ToReview maps a stored review to its API shape, with position image links.
func ToReview(r *domain.Review) *reviewdto.Review {
	if r == nil {
		return nil
	}
	moves := make([]reviewdto.Move, len(r.Moves))
	for i, m := range r.Moves {
		moves[i] = reviewdto.Move{
			Ply:            m.Ply,
			Color:          m.Color,
			UCI:            m.UCI,
			SAN:            m.SAN,
			Classification: m.Classification,
			Grade:          m.Grade,
			MateIn:         m.MateIn,
			Opening:        m.Opening,
			BestUCI:        m.BestUCI,
			BestSAN:        m.BestSAN,
			ReplySAN:       m.ReplySAN,
			Motifs:         m.Motifs,
			Text:           m.Text,
			BestText:       m.BestText,
			Score:          m.Score,
			FEN:            m.FEN,
			ImageURL:       positionURL(r.ID, m.Ply),
		}
	}
	return &reviewdto.Review{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Tags:         r.Tags,
		White:        r.White,
		Black:        r.Black,
		Result:       r.Result,
		Tone:         r.Tone,
		Limit:        r.Limit,
		OpeningCode:  r.OpeningCode,
		OpeningTitle: r.OpeningTitle,
		StartFEN:     r.StartFEN,
		Moves:        moves,
		WhiteSummary: toSide(r.WhiteSummary),
		BlackSummary: toSide(r.BlackSummary),
		Summary:      r.Summary,
		Series: reviewdto.Series{
			Development: toSamples(r.Series.Development),
			Tension:     toSamples(r.Series.Tension),
			Mobility:    toSamples(r.Series.Mobility),
			Control:     toSamples(r.Series.Control),
		},
		DurationMS: r.Duration.Milliseconds(),
	}
}

func toSide(s domain.SideSummary) reviewdto.Side {
	return reviewdto.Side{
		ACPL:     s.ACPL,
		Accuracy: s.Accuracy,
		Rating:   s.Rating,
		Counts:   s.Counts,
		Lost:     s.Lost,
	}
}

func toSamples(in []domain.Sample) []reviewdto.Sample {
	out := make([]reviewdto.Sample, len(in))
	for i, s := range in {
		out[i] = reviewdto.Sample{White: s.White, Black: s.Black}
	}
	return out
}

func toListItems(items []domain.ReviewListItem) []reviewdto.ReviewListItem {
	out := make([]reviewdto.ReviewListItem, len(items))
	for i, it := range items {
		out[i] = reviewdto.ReviewListItem{
			ID:            it.ID,
			CreatedAt:     it.CreatedAt,
			White:         it.White,
			Black:         it.Black,
			Result:        it.Result,
			OpeningCode:   it.OpeningCode,
			Plies:         it.Plies,
			WhiteAccuracy: it.WhiteAccuracy,
			BlackAccuracy: it.BlackAccuracy,
		}
	}
	return out
}
