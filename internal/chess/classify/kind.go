// Package classify turns evaluator score changes into move-quality tiers and
// tracks forced-mate sequences across the plies of a game.
package classify

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	Unknown Kind = iota
	Book
	Best
	Brilliant
	Excellent
	Good
	Inaccuracy
	Mistake
	Blunder
	StartsMate
	ContinuesMate
	ContinuesGetsMated
	GetsMated
	LostMate
)

var kindNames = map[Kind]string{
	Unknown:            "unknown",
	Book:               "book",
	Best:               "best",
	Brilliant:          "brilliant",
	Excellent:          "excellent",
	Good:               "good",
	Inaccuracy:         "inaccuracy",
	Mistake:            "mistake",
	Blunder:            "blunder",
	StartsMate:         "starts_mate",
	ContinuesMate:      "continues_mate",
	ContinuesGetsMated: "continues_gets_mated",
	GetsMated:          "gets_mated",
	LostMate:           "lost_mate",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s && k != Unknown {
			return k, nil
		}
	}
	return Unknown, fmt.Errorf("unknown classification %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsMate reports the kinds that carry a mate distance.
func (k Kind) IsMate() bool {
	switch k {
	case StartsMate, ContinuesMate, ContinuesGetsMated, GetsMated:
		return true
	}
	return false
}

// Classification is the verdict for one move. Kind is what happened; Grade is
// the quality tier it is reported under. They differ only for the mate kinds,
// where for example a continues_mate that found a slower mate grades good.
type Classification struct {
	Kind  Kind `json:"kind"`
	N     int  `json:"n,omitempty"`
	Grade Kind `json:"grade"`
}

func Plain(k Kind) Classification { return Classification{Kind: k, Grade: k} }

// String renders plain kinds by name and mate kinds as name(n).
func (c Classification) String() string {
	if c.Kind.IsMate() {
		return c.Kind.String() + "(" + strconv.Itoa(c.N) + ")"
	}
	return c.Kind.String()
}

// ParseClassification reverses String. The grade of a parsed mate kind
// defaults to the kind itself since the text does not carry it.
func ParseClassification(s string) (Classification, error) {
	name, rest, hasN := strings.Cut(s, "(")
	k, err := ParseKind(name)
	if err != nil {
		return Classification{}, err
	}
	c := Plain(k)
	if hasN {
		n, err := strconv.Atoi(strings.TrimSuffix(rest, ")"))
		if err != nil || !k.IsMate() {
			return Classification{}, fmt.Errorf("malformed classification %q", s)
		}
		c.N = n
	}
	return c, nil
}

// Positive reports the grades reviewed for good motifs.
func (c Classification) Positive() bool {
	switch c.Grade {
	case Best, Brilliant, Excellent, Good:
		return true
	}
	return false
}

// Negative reports the grades reviewed for mistakes.
func (c Classification) Negative() bool {
	switch c.Grade {
	case Inaccuracy, Mistake, Blunder:
		return true
	}
	return false
}
