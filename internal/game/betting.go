package game

import "fmt"

// Street identifies a stage of a hand.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "preflop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	case Showdown:
		return "showdown"
	}
	return fmt.Sprintf("Street(%d)", int(s))
}

// ActionType is one of the four moves a player can make when it is their
// turn.
type ActionType int

const (
	Fold ActionType = iota
	Check
	Call
	Raise
)

func (a ActionType) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	case Raise:
		return "raise"
	}
	return fmt.Sprintf("ActionType(%d)", int(a))
}

// ParseActionType maps a wire action name to its ActionType.
func ParseActionType(s string) (ActionType, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "raise":
		return Raise, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// ValidAction describes one legal move for the player to act. Amount is the
// chips needed to call; MinAmount and MaxAmount bound the total bet a raise
// may be raised to. Fields not relevant to the action type are zero.
type ValidAction struct {
	Type      ActionType
	Amount    int
	MinAmount int
	MaxAmount int
}

// bettingRound tracks the open bet on the current street.
//
// acted marks players who have acted since the last full raise. A raise whose
// increment falls short of the minimum (a short all-in) leaves the flags set,
// so players who already matched the previous bet may only call or fold.
type bettingRound struct {
	currentBet    int
	minRaise      int
	lastAggressor int
	acted         []bool
}

func newBettingRound(numPlayers, currentBet, minRaise, lastAggressor int) *bettingRound {
	return &bettingRound{
		currentBet:    currentBet,
		minRaise:      minRaise,
		lastAggressor: lastAggressor,
		acted:         make([]bool, numPlayers),
	}
}

// reopen clears the acted flags after a full raise by idx.
func (b *bettingRound) reopen(idx int) {
	for i := range b.acted {
		b.acted[i] = false
	}
	b.acted[idx] = true
	b.lastAggressor = idx
}

// owesAction reports whether player p at index idx still has action pending
// this street.
func (b *bettingRound) owesAction(idx int, p *Player) bool {
	if !p.CanAct() {
		return false
	}
	return p.Bet != b.currentBet || !b.acted[idx]
}
