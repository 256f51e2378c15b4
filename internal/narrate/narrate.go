// Package narrate turns reviewed plies into prose from the message catalog.
package narrate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/park285/Cheese-GameReview/internal/analysis"
	"github.com/park285/Cheese-GameReview/internal/chess/board"
	"github.com/park285/Cheese-GameReview/internal/chess/classify"
	"github.com/park285/Cheese-GameReview/internal/msgcat"
)

type Tone string

const (
	Standard Tone = "standard"
	Roast    Tone = "roast"
)

var ErrUnknownTone = errors.New("unknown tone")

func ParseTone(s string) (Tone, error) {
	switch Tone(strings.ToLower(strings.TrimSpace(s))) {
	case "", Standard:
		return Standard, nil
	case Roast:
		return Roast, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTone, s)
}

// Narrator renders in one tone. Keys missing from the tone fall back to the
// standard text.
type Narrator struct {
	cat  *msgcat.Catalog
	tone Tone
}

func New(cat *msgcat.Catalog, tone Tone) *Narrator {
	if tone == "" {
		tone = Standard
	}
	return &Narrator{cat: cat, tone: tone}
}

func (n *Narrator) Tone() Tone { return n.tone }

type line struct {
	SAN      string
	Label    string
	Opening  string
	Side     string
	N        int
	Move     string
	Pieces   string
	Squares  string
	Accuracy string
	ACPL     string
	Rating   int
	Code     string
	Title    string
}

func (n *Narrator) render(key string, data line) (string, error) {
	full := string(n.tone) + "." + key
	if !n.cat.Has(full) {
		full = string(Standard) + "." + key
	}
	out, err := n.cat.Render(full, data)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", full, err)
	}
	return out, nil
}

// Move returns the prose for one ply and, when the played move was neither
// book nor best, the prose for the best alternative.
func (n *Narrator) Move(mr analysis.MoveReview) (text, best string, err error) {
	var parts []string
	add := func(key string, data line) error {
		s, err := n.render(key, data)
		if err != nil {
			return err
		}
		parts = append(parts, s)
		return nil
	}
	motifs := func(ms []analysis.Motif) error {
		for _, m := range ms {
			if err := add("motif."+string(m.Kind), motifLine(m)); err != nil {
				return err
			}
		}
		return nil
	}

	c := mr.Classification
	side := mr.Color.String()
	switch c.Kind {
	case classify.Unknown:
		return "", "", nil
	case classify.Book:
		err = add("book", line{Opening: mr.Opening})
	case classify.StartsMate, classify.ContinuesMate:
		switch {
		case c.N == 0:
			err = add("checkmate", line{})
		case c.Kind == classify.ContinuesMate && c.Grade == classify.Good:
			err = add("slower_mate", line{SAN: mr.SAN, Side: side, N: c.N})
		case c.Kind == classify.StartsMate:
			err = add("starts_mate", line{SAN: mr.SAN, Side: side, N: c.N})
		default:
			err = add("continues_mate", line{SAN: mr.SAN, Side: side, N: c.N})
		}
	case classify.ContinuesGetsMated:
		err = add("continues_gets_mated", line{SAN: mr.SAN, Side: side, N: c.N})
	case classify.GetsMated:
		if err = motifs(mr.Motifs); err == nil {
			err = add("gets_mated", line{SAN: mr.SAN, Side: side, N: c.N})
		}
	case classify.LostMate:
		if err = add("lost_mate", line{}); err == nil {
			err = motifs(mr.Motifs)
		}
	default:
		if err = add("verdict", line{SAN: mr.SAN, Label: n.label(c.Kind)}); err == nil {
			err = motifs(mr.Motifs)
		}
	}
	if err != nil {
		return "", "", err
	}
	text = strings.Join(parts, " ")

	if c.Kind == classify.Book || c.Kind == classify.Best || mr.BestSAN == "" || mr.Best == mr.Move {
		return text, "", nil
	}
	parts = parts[:0]
	if err := add("best_alternative", line{Move: mr.BestSAN}); err != nil {
		return "", "", err
	}
	if err := motifs(mr.BestMotifs); err != nil {
		return "", "", err
	}
	return text, strings.Join(parts, " "), nil
}

func (n *Narrator) label(k classify.Kind) string {
	s, err := n.render("label."+k.String(), line{})
	if err != nil {
		return k.String()
	}
	return s
}

// Summary describes each side's accuracy and the opening label.
func (n *Narrator) Summary(res *analysis.Result) (string, error) {
	var parts []string
	if res.OpeningCode != "" {
		s, err := n.render("opening_label", line{Code: res.OpeningCode, Title: res.OpeningTitle})
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	sides := []struct {
		c        board.Color
		acc, cpl float64
		rating   int
	}{
		{board.White, res.Accuracy.White, res.ACPL.White, res.Rating.White},
		{board.Black, res.Accuracy.Black, res.ACPL.Black, res.Rating.Black},
	}
	for _, s := range sides {
		out, err := n.render("summary", line{
			Side:     s.c.String(),
			Accuracy: fmt.Sprintf("%.1f", s.acc),
			ACPL:     fmt.Sprintf("%.0f", math.Round(s.cpl)),
			Rating:   s.rating,
		})
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, " "), nil
}

func motifLine(m analysis.Motif) line {
	l := line{Move: m.Move, Side: m.Side.String()}
	names := make([]string, 0, len(m.Pieces))
	for _, p := range m.Pieces {
		names = append(names, p.String())
	}
	l.Pieces = List(names)
	sqs := make([]string, 0, len(m.Squares))
	for _, s := range m.Squares {
		sqs = append(sqs, s.String())
	}
	l.Squares = List(sqs)
	return l
}

// List joins items as "a", "a and b" or "a, b, and c".
func List(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
