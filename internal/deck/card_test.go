package deck

import (
	"testing"

	"github.com/algopoker/algopoker/internal/randutil"
)

func TestCardString(t *testing.T) {
	t.Parallel()
	cases := []struct {
		card Card
		want string
	}{
		{Card{Rank: Ace, Suit: Spades}, "As"},
		{Card{Rank: Ten, Suit: Diamonds}, "Td"},
		{Card{Rank: Two, Suit: Clubs}, "2c"},
		{Card{Rank: King, Suit: Hearts}, "Kh"},
		{Card{Rank: Nine, Suit: Clubs}, "9c"},
	}

	for _, tc := range cases {
		if got := tc.card.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := Card{Rank: rank, Suit: suit}
			parsed, err := Parse(c.String())
			if err != nil {
				t.Fatalf("Parse(%q): %v", c.String(), err)
			}
			if parsed != c {
				t.Errorf("Parse(%q) = %v, want %v", c.String(), parsed, c)
			}
		}
	}
}

func TestParseRejectsJunk(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "A", "Asd", "1s", "Ax", "??", "aS"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) should fail", s)
		}
	}
}

func TestDeckDealsAllDistinct(t *testing.T) {
	t.Parallel()
	d := New(randutil.New(1))

	seen := make(map[Card]bool)
	cards := d.Deal(52)
	if cards == nil {
		t.Fatal("expected 52 cards")
	}
	for _, c := range cards {
		if seen[c] {
			t.Errorf("duplicate card %s", c)
		}
		seen[c] = true
	}
	if len(seen) != 52 {
		t.Errorf("expected 52 distinct cards, got %d", len(seen))
	}
	if d.Deal(1) != nil {
		t.Error("deal from empty deck should return nil")
	}
}

func TestDeckDeterministicBySeed(t *testing.T) {
	t.Parallel()
	a := New(randutil.New(42))
	b := New(randutil.New(42))

	for i := 0; i < 52; i++ {
		if ca, cb := a.DealOne(), b.DealOne(); ca != cb {
			t.Fatalf("card %d differs: %s vs %s", i, ca, cb)
		}
	}

	c := New(randutil.New(43))
	d := New(randutil.New(42))
	same := true
	for i := 0; i < 52; i++ {
		if c.DealOne() != d.DealOne() {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical decks")
	}
}
