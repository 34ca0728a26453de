package game

import "sort"

// Pot is a main or side pot. Eligible holds the tournament seats that can win
// it, in ascending seat order.
type Pot struct {
	Amount   int
	Eligible []int
}

// BuildPots derives the pot structure from the players' total commitments.
// It layers pots at each distinct commitment level; a player is eligible for
// a layer if they have not folded and either matched the layer or can still
// act. Adjacent layers with identical eligible sets are merged, as is any
// trailing layer nobody remains eligible for (folded chips).
func BuildPots(players []*Player) []Pot {
	var levels []int
	seen := make(map[int]bool)
	for _, p := range players {
		if p.TotalBet > 0 && !seen[p.TotalBet] {
			seen[p.TotalBet] = true
			levels = append(levels, p.TotalBet)
		}
	}
	sort.Ints(levels)

	var pots []Pot
	carry := 0
	prev := 0
	for _, level := range levels {
		amount := carry
		carry = 0
		var eligible []int
		for _, p := range players {
			contrib := min(p.TotalBet, level) - min(p.TotalBet, prev)
			amount += contrib
			if !p.Folded && (p.TotalBet >= level || p.CanAct()) {
				eligible = append(eligible, p.Seat)
			}
		}
		prev = level
		if amount == 0 {
			continue
		}
		if len(eligible) == 0 {
			carry = amount
			continue
		}
		if n := len(pots); n > 0 && equalSeats(pots[n-1].Eligible, eligible) {
			pots[n-1].Amount += amount
			continue
		}
		pots = append(pots, Pot{Amount: amount, Eligible: eligible})
	}
	if carry > 0 && len(pots) > 0 {
		pots[len(pots)-1].Amount += carry
	}
	return pots
}

func equalSeats(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
