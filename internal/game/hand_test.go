package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algopoker/algopoker/internal/deck"
	"github.com/algopoker/algopoker/internal/randutil"
)

func newTestHand(t *testing.T, stacks []int, dealer, sb, bb int) *Hand {
	t.Helper()
	players := make([]*Player, len(stacks))
	for i, s := range stacks {
		players[i] = &Player{Seat: i, Name: string(rune('A' + i)), Stack: s}
	}
	h, err := NewHand(randutil.New(1), players, dealer, 1, sb, bb)
	require.NoError(t, err)
	return h
}

// mustApply asserts the expected actor before applying their move.
func mustApply(t *testing.T, h *Hand, actor int, action ActionType, amount int) {
	t.Helper()
	require.Equal(t, actor, h.Actor, "wrong player to act")
	require.NoError(t, h.Apply(action, amount))
}

func actionTypes(actions []ValidAction) []ActionType {
	out := make([]ActionType, len(actions))
	for i, a := range actions {
		out[i] = a.Type
	}
	return out
}

func findAction(t *testing.T, h *Hand, typ ActionType) ValidAction {
	t.Helper()
	for _, a := range h.ValidActions() {
		if a.Type == typ {
			return a
		}
	}
	t.Fatalf("action %v not available", typ)
	return ValidAction{}
}

func TestNewHandBlindsAndPositions(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)
	require.Equal(t, 1, h.SmallBlind)
	require.Equal(t, 2, h.BigBlind)
	require.Equal(t, 50, h.Players[1].Bet)
	require.Equal(t, 100, h.Players[2].Bet)
	require.Equal(t, 100, h.CurrentBet())
	require.Equal(t, 100, h.MinRaise())
	// First to act preflop is the seat left of the big blind.
	require.Equal(t, 0, h.Actor)
	for _, p := range h.Players {
		require.Len(t, p.HoleCards, 2)
	}
}

func TestNewHandHeadsUpPositions(t *testing.T) {
	// Heads-up the dealer posts the small blind and acts first preflop.
	h := newTestHand(t, []int{1000, 1000}, 1, 50, 100)
	require.Equal(t, 1, h.SmallBlind)
	require.Equal(t, 0, h.BigBlind)
	require.Equal(t, 1, h.Actor)
}

func TestNewHandShortBlindIsAllIn(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 60}, 0, 50, 100)
	bb := h.Players[2]
	require.Equal(t, 0, bb.Stack)
	require.True(t, bb.AllIn)
	require.Equal(t, 60, bb.Bet)
	// The table still owes the full big blind.
	require.Equal(t, 100, h.CurrentBet())
}

func TestNewHandRejectsBadInput(t *testing.T) {
	players := []*Player{{Seat: 0, Stack: 100}}
	_, err := NewHand(randutil.New(1), players, 0, 1, 50, 100)
	require.Error(t, err)

	players = []*Player{{Seat: 0, Stack: 100}, {Seat: 1, Stack: 0}}
	_, err = NewHand(randutil.New(1), players, 0, 1, 50, 100)
	require.Error(t, err)
}

func TestBigBlindOption(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)
	mustApply(t, h, 0, Call, 0)
	mustApply(t, h, 1, Call, 0)
	// Everyone limped; the big blind may still check or raise.
	require.Equal(t, 2, h.Actor)
	require.ElementsMatch(t, []ActionType{Fold, Check, Raise}, actionTypes(h.ValidActions()))
	mustApply(t, h, 2, Check, 0)
	require.Equal(t, Flop, h.Street)
	require.Len(t, h.Community, 3)
	// Postflop action starts left of the dealer.
	require.Equal(t, 1, h.Actor)
}

func TestMinRaiseProgression(t *testing.T) {
	h := newTestHand(t, []int{5000, 5000, 5000}, 0, 50, 100)

	raise := findAction(t, h, Raise)
	require.Equal(t, 200, raise.MinAmount)
	require.Equal(t, 5000, raise.MaxAmount)

	mustApply(t, h, 0, Raise, 300)
	require.Equal(t, 300, h.CurrentBet())
	require.Equal(t, 200, h.MinRaise())

	raise = findAction(t, h, Raise)
	require.Equal(t, 500, raise.MinAmount)

	mustApply(t, h, 1, Raise, 900)
	require.Equal(t, 600, h.MinRaise())
	raise = findAction(t, h, Raise)
	require.Equal(t, 1500, raise.MinAmount)
}

func TestRaiseAmountClamped(t *testing.T) {
	h := newTestHand(t, []int{5000, 5000, 5000}, 0, 50, 100)
	// 150 is below the minimum raise to 200; it is clamped up, not rejected.
	mustApply(t, h, 0, Raise, 150)
	require.Equal(t, 200, h.CurrentBet())

	// 99999 exceeds the stack; clamped down to all-in.
	mustApply(t, h, 1, Raise, 99999)
	require.Equal(t, 5000, h.CurrentBet())
	require.True(t, h.Players[1].AllIn)
}

func TestShortAllInDoesNotReopen(t *testing.T) {
	h := newTestHand(t, []int{5000, 450, 5000}, 0, 50, 100)

	mustApply(t, h, 0, Raise, 300)
	// Seat 1 goes all-in for 450, a raise increment of 150 under the
	// 200 minimum.
	mustApply(t, h, 1, Raise, 450)
	require.Equal(t, 450, h.CurrentBet())
	require.Equal(t, 200, h.MinRaise())

	// Seat 2 never acted, so a full raise remains available to them.
	raise := findAction(t, h, Raise)
	require.Equal(t, 650, raise.MinAmount)
	mustApply(t, h, 2, Call, 0)

	// Seat 0 already matched 300; facing the short all-in they may only
	// call the difference or fold.
	require.Equal(t, 0, h.Actor)
	require.ElementsMatch(t, []ActionType{Fold, Call}, actionTypes(h.ValidActions()))
	call := findAction(t, h, Call)
	require.Equal(t, 150, call.Amount)
	require.Error(t, h.Apply(Raise, 900))
	mustApply(t, h, 0, Call, 0)

	require.Equal(t, Flop, h.Street)
}

func TestFullRaiseReopensAction(t *testing.T) {
	h := newTestHand(t, []int{5000, 5000, 5000}, 0, 50, 100)
	mustApply(t, h, 0, Raise, 300)
	mustApply(t, h, 1, Raise, 600)
	mustApply(t, h, 2, Fold, 0)
	// Seat 0 faces a full raise and may raise again.
	require.Contains(t, actionTypes(h.ValidActions()), Raise)
}

func TestFoldToWin(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)
	mustApply(t, h, 0, Fold, 0)
	mustApply(t, h, 1, Fold, 0)

	require.True(t, h.Done())
	res := h.Result()
	require.NotNil(t, res)
	require.False(t, res.Showdown)
	require.Empty(t, res.Revealed)
	// The big blind collects the small blind's 50 for a net gain of 50.
	require.Equal(t, 150, res.Payouts[2])
	require.Equal(t, []Winner{{Seat: 2, Name: "C", AmountWon: 50}}, res.Winners)
	require.Equal(t, 1050, h.Players[2].Stack)
}

func TestCheckFacingBetRejected(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)
	require.Error(t, h.Apply(Check, 0))
	// The turn does not advance on a rejected action.
	require.Equal(t, 0, h.Actor)
}

func TestCallWithNothingOwedRejected(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)
	mustApply(t, h, 0, Call, 0)
	mustApply(t, h, 1, Call, 0)
	require.Error(t, h.Apply(Call, 0))
}

func TestAllInRunOut(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000}, 0, 50, 100)
	mustApply(t, h, 0, Raise, 1000)
	mustApply(t, h, 1, Call, 0)

	require.True(t, h.Done())
	require.Len(t, h.Community, 5)
	res := h.Result()
	require.True(t, res.Showdown)
	require.ElementsMatch(t, []int{0, 1}, res.Revealed)

	// Chips are conserved.
	total := 0
	for seat := range res.Payouts {
		total += res.Payouts[seat]
	}
	require.Equal(t, 2000, total)
	require.Equal(t, 2000, h.Players[0].Stack+h.Players[1].Stack)
}

func TestBlindsAllInRunsOutImmediately(t *testing.T) {
	// Both blinds are forced all-in by posting; no actions are requested.
	h := newTestHand(t, []int{40, 70}, 0, 50, 100)
	require.True(t, h.Done())
	require.Len(t, h.Community, 5)
}

func TestSidePotDistribution(t *testing.T) {
	// Three stacks all-in preflop form a main pot and two side pots.
	h := newTestHand(t, []int{2000, 300, 1000}, 0, 50, 100)
	mustApply(t, h, 0, Raise, 2000)
	mustApply(t, h, 1, Call, 0)
	mustApply(t, h, 2, Call, 0)

	require.True(t, h.Done())
	res := h.Result()
	require.True(t, res.Showdown)

	total := 0
	for _, p := range h.Players {
		total += p.Stack
	}
	require.Equal(t, 3300, total)

	// The short stack can win at most three times its 300.
	require.LessOrEqual(t, res.Payouts[1], 900)
}

func TestShowdownBoardPlaysSplitWithOddChips(t *testing.T) {
	// Four players see a river; the small blind folded preflop leaving a
	// 350 pot for three players who all play the board.
	h := newTestHand(t, []int{1000, 1000, 1000, 1000}, 3, 50, 100)
	mustApply(t, h, 2, Call, 0)
	mustApply(t, h, 3, Call, 0)
	mustApply(t, h, 0, Fold, 0)
	mustApply(t, h, 1, Check, 0)

	for street := 0; street < 2; street++ {
		mustApply(t, h, 1, Check, 0)
		mustApply(t, h, 2, Check, 0)
		mustApply(t, h, 3, Check, 0)
	}
	require.Equal(t, River, h.Street)

	// Rig the river so the board is a royal flush and every live hand
	// plays it.
	h.Community = []deck.Card{
		deck.MustParse("Ah"), deck.MustParse("Kh"), deck.MustParse("Qh"),
		deck.MustParse("Jh"), deck.MustParse("Th"),
	}
	rigged := []string{"2c3c", "2d3d", "2h3h", "2s3s"}
	for i, p := range h.Players {
		p.HoleCards = []deck.Card{deck.MustParse(rigged[i][:2]), deck.MustParse(rigged[i][2:])}
	}

	mustApply(t, h, 1, Check, 0)
	mustApply(t, h, 2, Check, 0)
	mustApply(t, h, 3, Check, 0)

	require.True(t, h.Done())
	res := h.Result()
	require.True(t, res.Showdown)
	require.ElementsMatch(t, []int{1, 2, 3}, res.Revealed)

	// 350 splits into 116 each with two odd chips handed out clockwise
	// from the seat left of the dealer (seat 0).
	require.Equal(t, 117, res.Payouts[1])
	require.Equal(t, 117, res.Payouts[2])
	require.Equal(t, 116, res.Payouts[3])
	require.Equal(t, []Winner{
		{Seat: 1, Name: "B", AmountWon: 17},
		{Seat: 2, Name: "C", AmountWon: 17},
		{Seat: 3, Name: "D", AmountWon: 16},
	}, res.Winners)
}

func TestForceFoldInTurn(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)
	h.ForceFold(0)
	require.Equal(t, 1, h.Actor)
	require.True(t, h.Players[0].Folded)
}

func TestForceFoldOutOfTurn(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000, 1000}, 0, 50, 100)
	h.ForceFold(2)
	require.True(t, h.Players[2].Folded)
	// Seat 0 is still to act.
	require.Equal(t, 0, h.Actor)
	h.ForceFold(1)
	// Only one player remains; the hand settles without a showdown.
	require.True(t, h.Done())
	require.False(t, h.Result().Showdown)
	require.Equal(t, 1150, h.Players[0].Stack)
}

func TestApplyAfterDoneRejected(t *testing.T) {
	h := newTestHand(t, []int{1000, 1000}, 0, 50, 100)
	mustApply(t, h, 0, Fold, 0)
	require.True(t, h.Done())
	require.Error(t, h.Apply(Check, 0))
	require.Nil(t, h.ValidActions())
}
