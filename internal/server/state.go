package server

import (
	"github.com/algopoker/algopoker/internal/deck"
	"github.com/algopoker/algopoker/internal/game"
	"github.com/algopoker/algopoker/internal/protocol"
)

// gameStateFor projects the live hand into the wire snapshot seen by one
// seat. Only that seat's hole cards are revealed; everyone else's show as
// protocol.HiddenCard. The actor's legal moves are included for every
// recipient so the whole table can follow the action.
func gameStateFor(h *game.Hand, perspectiveSeat int) protocol.GameState {
	pots := h.Pots()
	wirePots := make([]protocol.SidePot, 0, len(pots))
	for _, pot := range pots {
		eligible := pot.Eligible
		if eligible == nil {
			eligible = []int{}
		}
		wirePots = append(wirePots, protocol.SidePot{Amount: pot.Amount, EligibleSeats: eligible})
	}

	players := make([]protocol.SeatState, 0, len(h.Players))
	for i, p := range h.Players {
		known := p.Seat == perspectiveSeat
		cards := make([]string, 0, len(p.HoleCards))
		for _, c := range p.HoleCards {
			if known {
				cards = append(cards, c.String())
			} else {
				cards = append(cards, protocol.HiddenCard)
			}
		}
		players = append(players, protocol.SeatState{
			Seat:           p.Seat,
			Name:           p.Name,
			Stack:          p.Stack,
			CurrentBet:     p.Bet,
			IsActive:       !p.Folded,
			IsAllIn:        !p.Folded && p.AllIn,
			IsDealer:       i == h.Dealer,
			IsSmallBlind:   i == h.SmallBlind,
			IsBigBlind:     i == h.BigBlind,
			HoleCards:      cards,
			HoleCardsKnown: known,
		})
	}

	var actorSeat *int
	if actor := h.ActorPlayer(); actor != nil {
		seat := actor.Seat
		actorSeat = &seat
	}

	return protocol.GameState{
		Street:           h.Street.String(),
		HandNumber:       h.Number,
		CommunityCards:   deck.Strings(h.Community),
		Pot:              protocol.PotState{Total: h.PotTotal(), Pots: wirePots},
		Players:          players,
		ActorSeat:        actorSeat,
		ValidActions:     validActionsWire(h),
		DealerSeat:       h.Players[h.Dealer].Seat,
		SmallBlindSeat:   h.Players[h.SmallBlind].Seat,
		BigBlindSeat:     h.Players[h.BigBlind].Seat,
		SmallBlindAmount: h.SBAmount,
		BigBlindAmount:   h.BBAmount,
	}
}

// validActionsWire converts the engine's legal moves to wire form.
func validActionsWire(h *game.Hand) []protocol.ValidAction {
	actions := h.ValidActions()
	out := make([]protocol.ValidAction, 0, len(actions))
	for _, a := range actions {
		wa := protocol.ValidAction{Type: a.Type.String()}
		switch a.Type {
		case game.Call:
			amount := a.Amount
			wa.Amount = &amount
		case game.Raise:
			minAmount, maxAmount := a.MinAmount, a.MaxAmount
			wa.MinAmount = &minAmount
			wa.MaxAmount = &maxAmount
		}
		out = append(out, wa)
	}
	return out
}
