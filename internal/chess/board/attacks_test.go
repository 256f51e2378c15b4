package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func set(sqs ...Square) SquareSet {
	var s SquareSet
	for _, sq := range sqs {
		s = s.With(sq)
	}
	return s
}

func sq(t *testing.T, name string) Square {
	t.Helper()
	s, err := ParseSquare(name)
	if err != nil {
		t.Fatalf("square %s: %v", name, err)
	}
	return s
}

func TestAttacksIncludeFirstBlocker(t *testing.T) {
	p := Start()
	assert.Equal(t, set(sq(t, "a3"), sq(t, "c3"), D2), p.Attacks(B1))
	assert.Equal(t, set(D1, F1, D2, E2, F2), p.Attacks(E1))
	assert.Equal(t, set(B2, D2), p.Attacks(C1))
	assert.True(t, p.Attacks(sq(t, "e4")).Empty())

	r := mustFEN(t, "k7/8/8/8/1p2R2P/8/8/4K3 w - - 0 1")
	want := set(sq(t, "b4"), sq(t, "c4"), sq(t, "d4"), sq(t, "f4"), sq(t, "g4"), sq(t, "h4"),
		sq(t, "e5"), sq(t, "e6"), sq(t, "e7"), E8, sq(t, "e3"), E2, E1)
	assert.Equal(t, want, r.Attacks(sq(t, "e4")))
}

func TestPawnAttacksAreDiagonal(t *testing.T) {
	p := mustFEN(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1")
	assert.Equal(t, set(sq(t, "d5"), sq(t, "f5")), p.Attacks(sq(t, "e4")))
	assert.Equal(t, set(sq(t, "c4"), sq(t, "e4")), p.Attacks(sq(t, "d5")))
	assert.Equal(t, set(sq(t, "d5")), p.Attackers(Black, sq(t, "e4")))
	assert.Equal(t, set(sq(t, "e4")), p.Attackers(White, sq(t, "d5")))
}

func TestAttackersIncludePinnedPieces(t *testing.T) {
	p := mustFEN(t, "4k3/8/8/8/4r3/8/4N1p1/4K3 w - - 0 1")
	assert.True(t, p.IsPinned(White, E2))
	assert.True(t, p.Attackers(White, sq(t, "g1")).Has(E2))
}

func TestIsPinned(t *testing.T) {
	cases := []struct {
		name string
		fen  string
		c    Color
		sq   string
		want bool
	}{
		{"rook pins on file", "4k3/8/8/8/4r3/8/4N3/4K3 w - - 0 1", White, "e2", true},
		{"bishop pins on diagonal", "4k3/8/8/7b/8/8/4N3/3K4 w - - 0 1", White, "e2", true},
		{"rook does not pin on diagonal", "4k3/8/8/7r/8/8/4N3/3K4 w - - 0 1", White, "e2", false},
		{"two blockers", "4k3/8/8/8/4r3/4P3/4N3/4K3 w - - 0 1", White, "e2", false},
		{"own piece behind", "4k3/8/8/8/4R3/8/4N3/4K3 w - - 0 1", White, "e2", false},
		{"queen pins black knight", "4k3/4n3/8/8/8/8/4Q3/4K3 b - - 0 1", Black, "e7", true},
		{"off line", "4k3/8/8/8/4r3/8/3N4/4K3 w - - 0 1", White, "d2", false},
		{"knight does not pin", "4k3/8/8/8/8/5n2/4N3/4K3 w - - 0 1", White, "e2", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustFEN(t, tc.fen)
			assert.Equal(t, tc.want, p.IsPinned(tc.c, sq(t, tc.sq)))
		})
	}
}

func TestSquareSetOrder(t *testing.T) {
	s := set(H8, A1, E2)
	assert.Equal(t, []Square{A1, E2, H8}, s.Squares())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "[a1 e2 h8]", s.String())
}

func TestSquareConstantsMatchNames(t *testing.T) {
	for name, want := range map[string]Square{"a1": A1, "h1": H1, "d4": D4, "e5": E5, "c3": C3, "f6": F6, "h8": H8} {
		assert.Equal(t, want, sq(t, name), name)
		assert.Equal(t, name, want.String())
	}
}
