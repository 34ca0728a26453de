package game

import "github.com/algopoker/algopoker/internal/deck"

// Player is one seat's state within a single hand. Seat is the permanent
// tournament seat index; all chip amounts are integers.
type Player struct {
	Seat  int
	Name  string
	Stack int

	HoleCards []deck.Card

	// Bet is the amount committed on the current street; TotalBet is the
	// amount committed across the whole hand, including Bet.
	Bet      int
	TotalBet int

	Folded bool
	AllIn  bool
}

// CanAct reports whether the player can still be asked for an action.
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllIn
}

// InHand reports whether the player still contests the pot.
func (p *Player) InHand() bool {
	return !p.Folded
}

// commit moves up to amount chips from the stack into the current bet.
// It returns the amount actually moved.
func (p *Player) commit(amount int) int {
	if amount > p.Stack {
		amount = p.Stack
	}
	p.Stack -= amount
	p.Bet += amount
	p.TotalBet += amount
	if p.Stack == 0 {
		p.AllIn = true
	}
	return amount
}
