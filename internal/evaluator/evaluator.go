// Package evaluator ranks poker hands. Evaluate picks the best five-card hand
// from five to seven cards and returns a totally ordered key, so callers
// compare hands with plain integer comparison.
package evaluator

import (
	"sort"

	"github.com/algopoker/algopoker/internal/deck"
)

// Category enumerates hand categories from weakest to strongest.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandRank is a packed, totally ordered hand key: the category sits in the
// high bits with up to five 4-bit tiebreaker ranks below, so standard poker
// ordering (including kickers, compared high to low) is plain uint32 ordering.
type HandRank uint32

// Category returns the hand category encoded in the rank.
func (r HandRank) Category() Category {
	return Category(r >> 20)
}

func (r HandRank) String() string {
	return r.Category().String()
}

func pack(cat Category, tiebreakers ...deck.Rank) HandRank {
	r := uint32(cat) << 20
	shift := 16
	for _, tb := range tiebreakers {
		r |= uint32(tb) << shift
		shift -= 4
	}
	return HandRank(r)
}

// Evaluate returns the rank of the best five-card hand makeable from the
// given cards. Accepts five to seven cards; panics otherwise.
func Evaluate(cards []deck.Card) HandRank {
	n := len(cards)
	if n < 5 || n > 7 {
		panic("evaluator: need 5 to 7 cards")
	}
	if n == 5 {
		return evaluate5(cards)
	}

	var best HandRank
	hand := make([]deck.Card, 5)
	for i := 0; i < n-4; i++ {
		for j := i + 1; j < n-3; j++ {
			for k := j + 1; k < n-2; k++ {
				for l := k + 1; l < n-1; l++ {
					for m := l + 1; m < n; m++ {
						hand[0], hand[1], hand[2], hand[3], hand[4] =
							cards[i], cards[j], cards[k], cards[l], cards[m]
						if r := evaluate5(hand); r > best {
							best = r
						}
					}
				}
			}
		}
	}
	return best
}

func evaluate5(cards []deck.Card) HandRank {
	flush := true
	for i := 1; i < 5; i++ {
		if cards[i].Suit != cards[0].Suit {
			flush = false
			break
		}
	}

	ranks := make([]deck.Rank, 5)
	for i, c := range cards {
		ranks[i] = c.Rank
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i] > ranks[j] })

	straightHigh, straight := straightHigh(ranks)

	if straight && flush {
		return pack(StraightFlush, straightHigh)
	}

	// Group ranks by multiplicity, largest group first, ties by rank.
	counts := map[deck.Rank]int{}
	for _, r := range ranks {
		counts[r]++
	}
	type group struct {
		rank  deck.Rank
		count int
	}
	groups := make([]group, 0, len(counts))
	for r, c := range counts {
		groups = append(groups, group{rank: r, count: c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].rank > groups[j].rank
	})

	switch {
	case groups[0].count == 4:
		return pack(FourOfAKind, groups[0].rank, groups[1].rank)
	case groups[0].count == 3 && groups[1].count == 2:
		return pack(FullHouse, groups[0].rank, groups[1].rank)
	case flush:
		return pack(Flush, ranks...)
	case straight:
		return pack(Straight, straightHigh)
	case groups[0].count == 3:
		return pack(ThreeOfAKind, groups[0].rank, groups[1].rank, groups[2].rank)
	case groups[0].count == 2 && groups[1].count == 2:
		return pack(TwoPair, groups[0].rank, groups[1].rank, groups[2].rank)
	case groups[0].count == 2:
		return pack(Pair, groups[0].rank, groups[1].rank, groups[2].rank, groups[3].rank)
	default:
		return pack(HighCard, ranks...)
	}
}

// straightHigh reports whether five distinct descending ranks form a straight
// and returns the high card. The wheel (A-2-3-4-5) counts as a 5-high straight.
func straightHigh(desc []deck.Rank) (deck.Rank, bool) {
	for i := 1; i < 5; i++ {
		if desc[i] == desc[i-1] {
			return 0, false
		}
	}
	if desc[0] == deck.Ace && desc[1] == deck.Five && desc[2] == deck.Four &&
		desc[3] == deck.Three && desc[4] == deck.Two {
		return deck.Five, true
	}
	for i := 1; i < 5; i++ {
		if desc[i-1]-desc[i] != 1 {
			return 0, false
		}
	}
	return desc[0], true
}
