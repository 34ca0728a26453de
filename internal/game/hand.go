package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/algopoker/algopoker/internal/deck"
	"github.com/algopoker/algopoker/internal/evaluator"
)

var (
	errHandOver      = errors.New("hand is over")
	errNotYourTurn   = errors.New("not this player's turn")
	errCheckFacing   = errors.New("cannot check facing a bet")
	errNothingToCall = errors.New("nothing to call")
	errCannotRaise   = errors.New("raising is not available")
)

// Hand runs a single hand of no-limit hold'em. Players holds the live
// (non-eliminated) tournament players in seat order; all position fields
// below are indices into that slice, not tournament seats.
type Hand struct {
	Number     int
	Players    []*Player
	Dealer     int
	SmallBlind int
	BigBlind   int
	SBAmount   int
	BBAmount   int

	Street    Street
	Community []deck.Card
	Actor     int

	betting *bettingRound
	deck    *deck.Deck
	done    bool
	result  *Result
}

// NewHand deals a fresh hand. players must have length 2..9 with positive
// stacks; dealer indexes into players. Blinds are posted and hole cards dealt
// before it returns, so the first actor is already selected (or the hand has
// already run out if the blinds put everyone all-in).
func NewHand(rng *rand.Rand, players []*Player, dealer, number, sbAmount, bbAmount int) (*Hand, error) {
	n := len(players)
	if n < 2 || n > 9 {
		return nil, fmt.Errorf("hand needs 2 to 9 players, got %d", n)
	}
	if dealer < 0 || dealer >= n {
		return nil, fmt.Errorf("dealer index %d out of range", dealer)
	}
	for _, p := range players {
		if p.Stack <= 0 {
			return nil, fmt.Errorf("player %s has no chips", p.Name)
		}
	}

	h := &Hand{
		Number:   number,
		Players:  players,
		Dealer:   dealer,
		SBAmount: sbAmount,
		BBAmount: bbAmount,
		Street:   Preflop,
		Actor:    -1,
		deck:     deck.New(rng),
	}

	// Heads-up the dealer posts the small blind.
	if n == 2 {
		h.SmallBlind = dealer
		h.BigBlind = (dealer + 1) % n
	} else {
		h.SmallBlind = (dealer + 1) % n
		h.BigBlind = (dealer + 2) % n
	}
	players[h.SmallBlind].commit(sbAmount)
	players[h.BigBlind].commit(bbAmount)

	for _, p := range players {
		p.HoleCards = h.deck.Deal(2)
	}

	// The big blind owes the full amount even when posted short.
	h.betting = newBettingRound(n, bbAmount, bbAmount, h.BigBlind)

	h.Actor = h.nextToAct(h.BigBlind + 1)
	if h.Actor == -1 {
		h.endStreet()
	}
	return h, nil
}

// Done reports whether the hand has finished.
func (h *Hand) Done() bool { return h.done }

// CurrentBet returns the open bet on the current street.
func (h *Hand) CurrentBet() int { return h.betting.currentBet }

// MinRaise returns the current minimum raise increment.
func (h *Hand) MinRaise() int { return h.betting.minRaise }

// PotTotal returns all chips no longer in player stacks, including bets not
// yet swept into the pot.
func (h *Hand) PotTotal() int {
	total := 0
	for _, p := range h.Players {
		total += p.TotalBet
	}
	return total
}

// Pots returns the current pot structure.
func (h *Hand) Pots() []Pot { return BuildPots(h.Players) }

// ActorPlayer returns the player to act, or nil if no action is pending.
func (h *Hand) ActorPlayer() *Player {
	if h.done || h.Actor < 0 {
		return nil
	}
	return h.Players[h.Actor]
}

// ValidActions returns the legal moves for the current actor. Folding is
// always legal; exactly one of check or call is; raising requires chips
// beyond the call and an action that has not been closed by a short all-in.
func (h *Hand) ValidActions() []ValidAction {
	p := h.ActorPlayer()
	if p == nil {
		return nil
	}
	actions := []ValidAction{{Type: Fold}}
	toCall := h.betting.currentBet - p.Bet
	if toCall <= 0 {
		actions = append(actions, ValidAction{Type: Check})
	} else {
		actions = append(actions, ValidAction{Type: Call, Amount: min(toCall, p.Stack)})
	}
	if p.Stack > toCall && !h.betting.acted[h.Actor] {
		maxTo := p.Bet + p.Stack
		minTo := min(maxTo, h.betting.currentBet+h.betting.minRaise)
		actions = append(actions, ValidAction{Type: Raise, MinAmount: minTo, MaxAmount: maxTo})
	}
	return actions
}

// Apply performs the current actor's move and advances the turn. amount is
// only meaningful for raises, where it is the total amount to raise to; it is
// clamped into the legal range rather than rejected.
func (h *Hand) Apply(action ActionType, amount int) error {
	if h.done {
		return errHandOver
	}
	p := h.ActorPlayer()
	if p == nil {
		return errNotYourTurn
	}
	idx := h.Actor
	b := h.betting
	toCall := b.currentBet - p.Bet

	switch action {
	case Fold:
		p.Folded = true
		b.acted[idx] = true

	case Check:
		if toCall > 0 {
			return errCheckFacing
		}
		b.acted[idx] = true

	case Call:
		if toCall <= 0 {
			return errNothingToCall
		}
		p.commit(toCall)
		b.acted[idx] = true

	case Raise:
		if p.Stack <= toCall || b.acted[idx] {
			return errCannotRaise
		}
		maxTo := p.Bet + p.Stack
		minTo := min(maxTo, b.currentBet+b.minRaise)
		if amount < minTo {
			amount = minTo
		}
		if amount > maxTo {
			amount = maxTo
		}
		increment := amount - b.currentBet
		p.commit(amount - p.Bet)
		b.currentBet = amount
		if increment >= b.minRaise {
			b.minRaise = increment
			b.reopen(idx)
		} else {
			// Short all-in: the bet grows but action does not reopen.
			b.acted[idx] = true
		}

	default:
		return fmt.Errorf("unknown action %v", action)
	}

	h.advance()
	return nil
}

// ForceFold folds the player at index idx regardless of whose turn it is,
// used when a player disconnects or times out. Folding out of turn never
// changes whose turn it is unless the hand ends.
func (h *Hand) ForceFold(idx int) {
	if h.done || idx < 0 || idx >= len(h.Players) {
		return
	}
	p := h.Players[idx]
	if p.Folded {
		return
	}
	p.Folded = true
	h.betting.acted[idx] = true
	if idx == h.Actor {
		h.advance()
		return
	}
	if h.unfoldedCount() == 1 {
		h.finish()
	}
}

func (h *Hand) advance() {
	if h.unfoldedCount() == 1 {
		h.finish()
		return
	}
	next := h.nextToAct(h.Actor + 1)
	if next == -1 {
		h.endStreet()
		return
	}
	h.Actor = next
}

// nextToAct scans cyclically from index `from` for a player owing action.
func (h *Hand) nextToAct(from int) int {
	n := len(h.Players)
	for i := 0; i < n; i++ {
		idx := (from + i) % n
		if h.betting.owesAction(idx, h.Players[idx]) {
			return idx
		}
	}
	return -1
}

// endStreet sweeps bets and either deals the next street, runs out the board
// when at most one player can still act, or goes to showdown after the river.
func (h *Hand) endStreet() {
	h.Actor = -1
	for _, p := range h.Players {
		p.Bet = 0
	}

	if h.Street == River {
		h.Street = Showdown
		h.finish()
		return
	}

	if h.actableCount() <= 1 {
		h.runOut()
		return
	}

	h.dealNext()
	h.betting = newBettingRound(len(h.Players), 0, h.BBAmount, -1)
	h.Actor = h.nextToAct(h.Dealer + 1)
	if h.Actor == -1 {
		h.endStreet()
	}
}

// runOut deals the remaining community cards with no further betting.
func (h *Hand) runOut() {
	for h.Street != River {
		h.dealNext()
	}
	h.Street = Showdown
	h.finish()
}

func (h *Hand) dealNext() {
	switch h.Street {
	case Preflop:
		h.Street = Flop
		h.Community = append(h.Community, h.deck.Deal(3)...)
	case Flop:
		h.Street = Turn
		h.Community = append(h.Community, h.deck.DealOne())
	case Turn:
		h.Street = River
		h.Community = append(h.Community, h.deck.DealOne())
	}
}

func (h *Hand) unfoldedCount() int {
	n := 0
	for _, p := range h.Players {
		if !p.Folded {
			n++
		}
	}
	return n
}

func (h *Hand) actableCount() int {
	n := 0
	for _, p := range h.Players {
		if p.CanAct() {
			n++
		}
	}
	return n
}

// Winner is one player's positive net result for the hand.
type Winner struct {
	Seat      int
	Name      string
	AmountWon int
}

// Result is the settled outcome of a hand. Payouts maps seat to gross chips
// returned from the pots; Winners lists only players who profited, by net
// amount. Revealed holds the seats whose hole cards were shown.
type Result struct {
	Showdown bool
	Payouts  map[int]int
	Winners  []Winner
	Revealed []int
}

// finish settles the pots and moves winnings into stacks.
func (h *Hand) finish() {
	if h.done {
		return
	}
	h.done = true
	h.Actor = -1

	res := &Result{
		Showdown: h.Street == Showdown && h.unfoldedCount() > 1,
		Payouts:  make(map[int]int),
	}

	bySeat := make(map[int]*Player, len(h.Players))
	ranks := make(map[int]evaluator.HandRank)
	for _, p := range h.Players {
		bySeat[p.Seat] = p
		if !p.Folded && res.Showdown {
			ranks[p.Seat] = evaluator.Evaluate(append(append([]deck.Card{}, p.HoleCards...), h.Community...))
			res.Revealed = append(res.Revealed, p.Seat)
		}
	}

	for _, pot := range BuildPots(h.Players) {
		winners := pot.Eligible
		if res.Showdown {
			winners = bestOf(pot.Eligible, ranks)
		}
		share := pot.Amount / len(winners)
		odd := pot.Amount % len(winners)
		for _, seat := range h.oddChipOrder(winners)[:odd] {
			res.Payouts[seat]++
			bySeat[seat].Stack++
		}
		for _, seat := range winners {
			res.Payouts[seat] += share
			bySeat[seat].Stack += share
		}
	}

	for _, p := range h.Players {
		if net := res.Payouts[p.Seat] - p.TotalBet; net > 0 {
			res.Winners = append(res.Winners, Winner{Seat: p.Seat, Name: p.Name, AmountWon: net})
		}
	}
	sort.Slice(res.Winners, func(i, j int) bool { return res.Winners[i].Seat < res.Winners[j].Seat })
	h.result = res
}

// Result returns the settled outcome, or nil while the hand is live.
func (h *Hand) Result() *Result { return h.result }

// bestOf returns the seats holding the strongest hand among eligible.
func bestOf(eligible []int, ranks map[int]evaluator.HandRank) []int {
	var best evaluator.HandRank
	var winners []int
	for _, seat := range eligible {
		r, ok := ranks[seat]
		if !ok {
			continue
		}
		switch {
		case len(winners) == 0 || r > best:
			best = r
			winners = winners[:0]
			winners = append(winners, seat)
		case r == best:
			winners = append(winners, seat)
		}
	}
	if len(winners) == 0 {
		// Everyone eligible folded; chips go back uncontested.
		return eligible
	}
	return winners
}

// oddChipOrder sorts seats by clockwise distance from the seat left of the
// dealer, the order in which odd chips are handed out.
func (h *Hand) oddChipOrder(seats []int) []int {
	maxSeat := 0
	for _, p := range h.Players {
		if p.Seat > maxSeat {
			maxSeat = p.Seat
		}
	}
	mod := maxSeat + 1
	start := h.Players[h.Dealer].Seat + 1
	out := append([]int{}, seats...)
	sort.Slice(out, func(i, j int) bool {
		return (out[i]-start+mod)%mod < (out[j]-start+mod)%mod
	})
	return out
}

// IndexOfSeat returns the hand index of the given tournament seat, or -1.
func (h *Hand) IndexOfSeat(seat int) int {
	for i, p := range h.Players {
		if p.Seat == seat {
			return i
		}
	}
	return -1
}
