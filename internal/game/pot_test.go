package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func potPlayer(seat, totalBet int, folded, allIn bool) *Player {
	return &Player{Seat: seat, TotalBet: totalBet, Folded: folded, AllIn: allIn}
}

func TestBuildPotsSingle(t *testing.T) {
	players := []*Player{
		potPlayer(0, 100, false, false),
		potPlayer(1, 100, false, false),
		potPlayer(2, 100, false, false),
	}
	pots := BuildPots(players)
	require.Equal(t, []Pot{{Amount: 300, Eligible: []int{0, 1, 2}}}, pots)
}

func TestBuildPotsLayered(t *testing.T) {
	// Three all-ins at 300, 1000 and 2000.
	players := []*Player{
		potPlayer(0, 300, false, true),
		potPlayer(1, 1000, false, true),
		potPlayer(2, 2000, false, true),
	}
	pots := BuildPots(players)
	require.Equal(t, []Pot{
		{Amount: 900, Eligible: []int{0, 1, 2}},
		{Amount: 1400, Eligible: []int{1, 2}},
		{Amount: 1000, Eligible: []int{2}},
	}, pots)
}

func TestBuildPotsFoldedChips(t *testing.T) {
	// A folded after committing 100; the dead chips swell the single pot.
	players := []*Player{
		potPlayer(0, 100, true, false),
		potPlayer(1, 300, false, true),
		potPlayer(2, 300, false, false),
	}
	pots := BuildPots(players)
	require.Equal(t, []Pot{{Amount: 700, Eligible: []int{1, 2}}}, pots)
}

func TestBuildPotsFoldedTopLevel(t *testing.T) {
	// The largest commitment belongs to a folded player; the surplus layer
	// has no eligible seats and folds into the pot below it.
	players := []*Player{
		potPlayer(0, 500, true, false),
		potPlayer(1, 300, false, true),
		potPlayer(2, 300, false, true),
	}
	pots := BuildPots(players)
	require.Equal(t, []Pot{{Amount: 1100, Eligible: []int{1, 2}}}, pots)
}

func TestBuildPotsLiveBettorEligibleAboveCommitment(t *testing.T) {
	// Mid-street: seat 2 has not yet matched the short all-in but can still
	// act, so it stays eligible for every layer.
	players := []*Player{
		potPlayer(0, 200, false, true),
		potPlayer(1, 450, false, true),
		potPlayer(2, 300, false, false),
	}
	pots := BuildPots(players)
	require.Equal(t, []Pot{
		{Amount: 600, Eligible: []int{0, 1, 2}},
		{Amount: 350, Eligible: []int{1, 2}},
	}, pots)
}

func TestBuildPotsNoCommitments(t *testing.T) {
	players := []*Player{potPlayer(0, 0, false, false), potPlayer(1, 0, false, false)}
	require.Empty(t, BuildPots(players))
}
