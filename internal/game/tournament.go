package game

import (
	"fmt"
	"math/rand/v2"
)

// blindSchedule maps hand numbers to blind levels. Levels hold until the
// next threshold; the last level holds forever.
var blindSchedule = []struct {
	fromHand int
	sb, bb   int
}{
	{1, 50, 100},
	{10, 100, 200},
	{20, 200, 400},
	{30, 400, 800},
	{40, 800, 1600},
	{50, 1600, 3200},
}

// BlindsForHand returns the small and big blind for the given hand number.
func BlindsForHand(handNumber int) (sb, bb int) {
	sb, bb = blindSchedule[0].sb, blindSchedule[0].bb
	for _, level := range blindSchedule {
		if handNumber >= level.fromHand {
			sb, bb = level.sb, level.bb
		}
	}
	return sb, bb
}

// Entrant is one tournament participant. Seats are assigned in join order
// and never change; an eliminated entrant keeps their seat.
type Entrant struct {
	Seat       int
	Name       string
	Stack      int
	Eliminated bool
}

// Tournament tracks the roster, blind level, and dealer button across hands.
// It is not safe for concurrent use; the caller serializes access.
type Tournament struct {
	Entrants   []*Entrant
	HandNumber int
	DealerSeat int

	rng *rand.Rand
}

// NewTournament creates an empty tournament. Hands are dealt from rng.
func NewTournament(rng *rand.Rand) *Tournament {
	return &Tournament{DealerSeat: -1, rng: rng}
}

// AddEntrant seats a new player with the given starting stack.
func (t *Tournament) AddEntrant(name string, stack int) *Entrant {
	e := &Entrant{Seat: len(t.Entrants), Name: name, Stack: stack}
	t.Entrants = append(t.Entrants, e)
	return e
}

// Active returns the entrants still holding chips, in seat order.
func (t *Tournament) Active() []*Entrant {
	var out []*Entrant
	for _, e := range t.Entrants {
		if !e.Eliminated {
			out = append(out, e)
		}
	}
	return out
}

// Over reports whether at most one entrant still has chips.
func (t *Tournament) Over() bool {
	return len(t.Active()) <= 1
}

// Champion returns the last entrant standing, or nil if the tournament is
// still running.
func (t *Tournament) Champion() *Entrant {
	active := t.Active()
	if len(active) != 1 {
		return nil
	}
	return active[0]
}

// NextHand advances the dealer button and deals the next hand. The button
// moves to the next active seat clockwise; eliminated seats are skipped.
func (t *Tournament) NextHand() (*Hand, error) {
	active := t.Active()
	if len(active) < 2 {
		return nil, fmt.Errorf("cannot deal a hand with %d active players", len(active))
	}

	t.HandNumber++
	t.DealerSeat = t.nextActiveSeat(t.DealerSeat + 1)

	players := make([]*Player, len(active))
	dealer := -1
	for i, e := range active {
		players[i] = &Player{Seat: e.Seat, Name: e.Name, Stack: e.Stack}
		if e.Seat == t.DealerSeat {
			dealer = i
		}
	}

	sb, bb := BlindsForHand(t.HandNumber)
	return NewHand(t.rng, players, dealer, t.HandNumber, sb, bb)
}

// nextActiveSeat finds the first non-eliminated seat at or after `from`,
// wrapping around the table.
func (t *Tournament) nextActiveSeat(from int) int {
	n := len(t.Entrants)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if !t.Entrants[seat].Eliminated {
			return seat
		}
	}
	return -1
}

// Settle copies final hand stacks back to the roster and marks eliminations.
// It returns the newly eliminated entrants in seat order.
func (t *Tournament) Settle(h *Hand) []*Entrant {
	var out []*Entrant
	for _, p := range h.Players {
		e := t.Entrants[p.Seat]
		e.Stack = p.Stack
		if e.Stack == 0 && !e.Eliminated {
			e.Eliminated = true
			out = append(out, e)
		}
	}
	return out
}
