package server

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/algopoker/algopoker/internal/deck"
	"github.com/algopoker/algopoker/internal/game"
	"github.com/algopoker/algopoker/internal/protocol"
)

// bot is one registered connection. seat is assigned in join order and
// becomes the tournament seat at game_start.
type bot struct {
	name      string
	seat      int
	conn      *Conn
	connected bool
}

// resolution is the outcome of one pending action request.
type resolution struct {
	action   game.ActionType
	amount   int
	timedOut bool
}

// pendingRequest is the rendezvous point for one decision. The actor's
// frame, the timeout timer, and a disconnect can all try to fulfill it;
// the buffered channel makes the first producer win.
type pendingRequest struct {
	id      int
	seat    int
	resolve chan resolution
}

func (p *pendingRequest) fulfill(r resolution) {
	select {
	case p.resolve <- r:
	default:
	}
}

// Coordinator runs the lobby and then the tournament. Connections are
// pumped by per-connection goroutines; a single loop goroutine (Run) owns
// the hand engine, so every broadcast happens in a fixed order.
type Coordinator struct {
	cfg    Settings
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand

	mu         sync.Mutex
	bots       []*bot
	started    bool
	startTimer *quartz.Timer
	tour       *game.Tournament
	hand       *game.Hand
	pending    *pendingRequest
	requestSeq int

	startCh chan struct{}
}

// NewCoordinator creates a coordinator for a single tournament.
func NewCoordinator(cfg Settings, logger *log.Logger, clock quartz.Clock, rng *rand.Rand) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		logger:  logger.WithPrefix("tournament"),
		clock:   clock,
		rng:     rng,
		startCh: make(chan struct{}),
	}
}

// HandleConn owns one bot connection from handshake to disconnect. The
// first frame must be a valid join within the configured deadline.
func (co *Coordinator) HandleConn(c *Conn) {
	co.logger.Info("New connection", "remote", c.RemoteAddr())

	b := co.handshake(c)
	if b == nil {
		return
	}

	for frame := range c.Frames() {
		co.handleFrame(b, frame)
	}
	co.handleDisconnect(b)
}

// handshake runs the join protocol. It returns nil if the connection was
// rejected, with the error already sent and the connection closed.
func (co *Coordinator) handshake(c *Conn) *bot {
	reject := func(code, message string) *bot {
		_ = c.Send(protocol.NewError(code, message))
		_ = c.Close()
		return nil
	}

	deadline := make(chan struct{})
	timer := co.clock.AfterFunc(co.cfg.JoinTimeoutDuration(), func() {
		close(deadline)
	})
	var first []byte
	select {
	case frame, ok := <-c.Frames():
		timer.Stop()
		if !ok {
			_ = c.Close()
			return nil
		}
		first = frame
	case <-deadline:
		return reject(protocol.CodeBadJoin, "No join message received in time.")
	}

	msg, err := protocol.DecodeClient(first)
	if err != nil || msg.Type != protocol.TypeJoin {
		return reject(protocol.CodeBadJoin, `First message must be {"type": "join", "name": "..."}.`)
	}

	name := strings.TrimSpace(msg.Join.Name)
	if name == "" || len([]rune(name)) > 32 {
		return reject(protocol.CodeBadName, "Name must be 1-32 non-whitespace characters.")
	}

	co.mu.Lock()
	if co.started {
		co.mu.Unlock()
		return reject(protocol.CodeTournamentStarted, "Tournament already in progress.")
	}
	if len(co.bots) >= co.cfg.MaxPlayers {
		co.mu.Unlock()
		return reject(protocol.CodeTournamentFull, fmt.Sprintf("Table is full (%d players).", co.cfg.MaxPlayers))
	}
	for _, other := range co.bots {
		if other.name == name {
			co.mu.Unlock()
			return reject(protocol.CodeBadName, fmt.Sprintf("Name %q is already taken.", name))
		}
	}

	b := &bot{name: name, conn: c, connected: true}
	co.bots = append(co.bots, b)
	count := len(co.bots)

	// A full table starts at once; otherwise each join restarts the
	// lobby countdown so stragglers can still make it in. The timer is
	// rearmed before the waiting broadcast so a bot that has seen the
	// recount knows the countdown is running.
	if co.startTimer != nil {
		co.startTimer.Stop()
		co.startTimer = nil
	}
	if count == co.cfg.MaxPlayers {
		co.startLocked()
	} else if count >= co.cfg.MinPlayers {
		co.startTimer = co.clock.AfterFunc(co.cfg.LobbyWaitDuration(), co.tryStart)
	}

	waiting := &protocol.Waiting{
		Type:           protocol.TypeWaiting,
		CurrentPlayers: count,
		MinPlayers:     co.cfg.MinPlayers,
		MaxPlayers:     co.cfg.MaxPlayers,
	}
	for _, other := range co.bots {
		_ = other.conn.Send(waiting)
	}
	co.logger.Info("Player joined", "name", name, "players", count, "max", co.cfg.MaxPlayers)
	co.mu.Unlock()

	return b
}

// tryStart fires when the lobby countdown elapses.
func (co *Coordinator) tryStart() {
	co.mu.Lock()
	defer co.mu.Unlock()
	if len(co.bots) >= co.cfg.MinPlayers {
		co.startLocked()
	}
}

// startLocked freezes the roster and releases Run. Caller holds co.mu.
func (co *Coordinator) startLocked() {
	if co.started {
		return
	}
	co.started = true
	close(co.startCh)
}

// handleFrame processes one post-join frame from a bot.
func (co *Coordinator) handleFrame(b *bot, frame []byte) {
	msg, err := protocol.DecodeClient(frame)
	switch {
	case errors.Is(err, protocol.ErrBadJSON):
		_ = b.conn.Send(protocol.NewError(protocol.CodeBadJSON, "Message is not valid JSON."))
		return
	case errors.Is(err, protocol.ErrMalformedAction):
		co.resolveInvalid(b, "Malformed action object.")
		return
	case errors.Is(err, protocol.ErrUnknownType):
		_ = b.conn.Send(protocol.NewError(protocol.CodeUnknownType, "Unknown message type. Expected 'action'."))
		return
	case err != nil:
		return
	}

	if msg.Type != protocol.TypeAction {
		_ = b.conn.Send(protocol.NewError(protocol.CodeUnknownType, "Unknown message type. Expected 'action'."))
		return
	}

	co.handleAction(b, msg.Action)
}

// handleAction validates the actor's reply against the pending request.
// Frames from anyone but the awaited actor are discarded.
func (co *Coordinator) handleAction(b *bot, a *protocol.Action) {
	co.mu.Lock()
	p := co.pending
	h := co.hand
	if p == nil || h == nil || p.seat != b.seat {
		co.mu.Unlock()
		return
	}
	valid := h.ValidActions()
	co.mu.Unlock()

	actionType, err := game.ParseActionType(a.Type)
	if err != nil || !hasActionType(valid, actionType) {
		co.resolveInvalid(b, fmt.Sprintf("Action type %q is not valid right now.", a.Type))
		return
	}
	if actionType == game.Raise && a.Amount == nil {
		co.resolveInvalid(b, "Raise requires an 'amount'.")
		return
	}

	amount := 0
	if a.Amount != nil {
		amount = *a.Amount
	}
	p.fulfill(resolution{action: actionType, amount: amount})
}

func hasActionType(valid []game.ValidAction, t game.ActionType) bool {
	for _, v := range valid {
		if v.Type == t {
			return true
		}
	}
	return false
}

// resolveInvalid reports BAD_ACTION to the awaited actor and folds their
// pending request. Invalid frames from anyone else are discarded without a
// reply, like any other out-of-turn frame. The connection stays open.
func (co *Coordinator) resolveInvalid(b *bot, message string) {
	co.mu.Lock()
	p := co.pending
	co.mu.Unlock()
	if p == nil || p.seat != b.seat {
		return
	}

	_ = b.conn.Send(protocol.NewError(protocol.CodeBadAction, message))
	co.logger.Warn("Invalid action, auto-folding", "name", b.name, "reason", message)
	p.fulfill(resolution{action: game.Fold})
}

// handleDisconnect cleans up after a bot's connection drops. Before the
// start it frees the lobby slot; afterwards the seat stays and auto-folds
// whenever it is asked to act.
func (co *Coordinator) handleDisconnect(b *bot) {
	co.mu.Lock()
	b.connected = false

	if !co.started {
		for i, other := range co.bots {
			if other == b {
				co.bots = append(co.bots[:i], co.bots[i+1:]...)
				break
			}
		}
		count := len(co.bots)
		if count < co.cfg.MinPlayers && co.startTimer != nil {
			co.startTimer.Stop()
			co.startTimer = nil
		}
		waiting := &protocol.Waiting{
			Type:           protocol.TypeWaiting,
			CurrentPlayers: count,
			MinPlayers:     co.cfg.MinPlayers,
			MaxPlayers:     co.cfg.MaxPlayers,
		}
		for _, other := range co.bots {
			_ = other.conn.Send(waiting)
		}
		co.mu.Unlock()
		co.logger.Info("Player left lobby", "name", b.name, "players", count)
		_ = b.conn.Close()
		return
	}

	p := co.pending
	co.mu.Unlock()
	co.logger.Info("Player disconnected", "name", b.name)

	if p != nil && p.seat == b.seat {
		p.fulfill(resolution{action: game.Fold, timedOut: true})
	}
	_ = b.conn.Close()
}

// Run blocks until the lobby fills, then plays the tournament to
// completion. It returns nil once a champion is decided, or the context
// error if shut down early.
func (co *Coordinator) Run(ctx context.Context) error {
	select {
	case <-co.startCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	co.startTournament()

	for {
		co.mu.Lock()
		over := co.tour.Over()
		co.mu.Unlock()
		if over {
			break
		}
		if err := co.runHand(ctx); err != nil {
			return err
		}
	}

	co.finishTournament()
	return nil
}

// startTournament freezes seats in join order and announces game_start.
func (co *Coordinator) startTournament() {
	co.mu.Lock()
	co.tour = game.NewTournament(co.rng)
	names := make([]string, len(co.bots))
	stacks := make([]int, len(co.bots))
	for i, b := range co.bots {
		b.seat = i
		co.tour.AddEntrant(b.name, co.cfg.StartingStack)
		names[i] = b.name
		stacks[i] = co.cfg.StartingStack
	}
	co.mu.Unlock()

	sb, bb := game.BlindsForHand(1)
	co.logger.Info("Tournament starting", "players", len(names))
	co.broadcast(&protocol.GameStart{
		Type:           protocol.TypeGameStart,
		PlayerNames:    names,
		StartingStacks: stacks,
		SmallBlind:     sb,
		BigBlind:       bb,
	})
}

// runHand plays a single hand: hand_start, the action loop, then
// hand_end with settlement.
func (co *Coordinator) runHand(ctx context.Context) error {
	co.mu.Lock()
	names := make([]string, 0, len(co.tour.Entrants))
	stacks := make([]int, 0, len(co.tour.Entrants))
	for _, e := range co.tour.Active() {
		names = append(names, e.Name)
		stacks = append(stacks, e.Stack)
	}
	hand, err := co.tour.NextHand()
	if err != nil {
		co.mu.Unlock()
		return err
	}
	co.hand = hand
	co.mu.Unlock()

	co.logger.Info("Hand starting",
		"hand", hand.Number,
		"players", len(hand.Players),
		"dealer", hand.Players[hand.Dealer].Seat,
		"blinds", fmt.Sprintf("%d/%d", hand.SBAmount, hand.BBAmount))

	co.broadcastPersonalized(func(seat int) any {
		msg := &protocol.HandStart{
			Type:             protocol.TypeHandStart,
			HandNumber:       hand.Number,
			DealerSeat:       hand.Players[hand.Dealer].Seat,
			SmallBlindSeat:   hand.Players[hand.SmallBlind].Seat,
			BigBlindSeat:     hand.Players[hand.BigBlind].Seat,
			SmallBlindAmount: hand.SBAmount,
			BigBlindAmount:   hand.BBAmount,
			PlayerNames:      names,
			Stacks:           stacks,
			HoleCards:        []string{},
		}
		if idx := hand.IndexOfSeat(seat); idx >= 0 {
			msg.HoleCards = deck.Strings(hand.Players[idx].HoleCards)
		}
		return msg
	})

	for !hand.Done() {
		if err := co.collectAction(ctx, hand); err != nil {
			return err
		}
	}

	co.settleHand(hand)
	return nil
}

// collectAction asks the current actor for a decision and applies the
// outcome, broadcasting action_request and action_result around it.
func (co *Coordinator) collectAction(ctx context.Context, hand *game.Hand) error {
	actorIdx := hand.Actor
	actor := hand.Players[actorIdx]

	co.mu.Lock()
	co.requestSeq++
	req := &pendingRequest{id: co.requestSeq, seat: actor.Seat, resolve: make(chan resolution, 1)}
	co.pending = req
	actorConnected := co.bots[actor.Seat].connected
	co.mu.Unlock()

	// Armed before the broadcast so the deadline is live by the time any
	// bot sees the request.
	timer := co.clock.AfterFunc(co.cfg.ActionTimeoutDuration(), func() {
		co.logger.Warn("Action timeout, auto-folding", "seat", req.seat, "request", req.id)
		req.fulfill(resolution{action: game.Fold, timedOut: true})
	})
	defer timer.Stop()

	co.broadcastPersonalized(func(seat int) any {
		return &protocol.ActionRequest{
			Type:           protocol.TypeActionRequest,
			ActorSeat:      actor.Seat,
			TimeoutSeconds: co.cfg.ActionTimeout,
			GameState:      gameStateFor(hand, seat),
		}
	})

	if !actorConnected {
		req.fulfill(resolution{action: game.Fold, timedOut: true})
	}

	var res resolution
	select {
	case res = <-req.resolve:
	case <-ctx.Done():
		co.mu.Lock()
		co.pending = nil
		co.mu.Unlock()
		return ctx.Err()
	}

	co.mu.Lock()
	co.pending = nil
	if err := hand.Apply(res.action, res.amount); err != nil {
		// The engine refused the move; the seat folds instead.
		co.logger.Warn("Action rejected by engine", "seat", actor.Seat, "error", err)
		hand.ForceFold(actorIdx)
		res = resolution{action: game.Fold, timedOut: res.timedOut}
	}
	var wireAmount *int
	if res.action == game.Raise {
		raisedTo := hand.CurrentBet()
		wireAmount = &raisedTo
	}
	co.mu.Unlock()

	co.logger.Info("Action",
		"hand", hand.Number,
		"seat", actor.Seat,
		"name", actor.Name,
		"action", res.action.String(),
		"timed_out", res.timedOut)

	co.broadcastPersonalized(func(seat int) any {
		return &protocol.ActionResult{
			Type:       protocol.TypeActionResult,
			ActorSeat:  actor.Seat,
			PlayerName: actor.Name,
			Action:     protocol.Action{Type: res.action.String(), Amount: wireAmount},
			TimedOut:   res.timedOut,
			GameState:  gameStateFor(hand, seat),
		}
	})
	return nil
}

// settleHand applies the hand result to the roster and broadcasts
// hand_end.
func (co *Coordinator) settleHand(hand *game.Hand) {
	co.mu.Lock()
	result := hand.Result()
	eliminated := co.tour.Settle(hand)
	co.hand = nil

	winners := make([]protocol.HandWinner, 0, len(result.Winners))
	for _, w := range result.Winners {
		winners = append(winners, protocol.HandWinner{Seat: w.Seat, Name: w.Name, AmountWon: w.AmountWon})
	}
	revealed := make([]protocol.RevealedCards, 0, len(result.Revealed))
	for _, seat := range result.Revealed {
		idx := hand.IndexOfSeat(seat)
		revealed = append(revealed, protocol.RevealedCards{
			Seat:      seat,
			Name:      hand.Players[idx].Name,
			HoleCards: deck.Strings(hand.Players[idx].HoleCards),
		})
	}
	eliminatedSeats := make([]int, 0, len(eliminated))
	for _, e := range eliminated {
		co.logger.Info("Player eliminated", "name", e.Name, "seat", e.Seat)
		eliminatedSeats = append(eliminatedSeats, e.Seat)
	}
	allNames := make([]string, len(co.tour.Entrants))
	allStacks := make([]int, len(co.tour.Entrants))
	for i, e := range co.tour.Entrants {
		allNames[i] = e.Name
		allStacks[i] = e.Stack
	}
	co.mu.Unlock()

	co.broadcast(&protocol.HandEnd{
		Type:              protocol.TypeHandEnd,
		HandNumber:        hand.Number,
		Winners:           winners,
		HoleCardsRevealed: revealed,
		CommunityCards:    deck.Strings(hand.Community),
		FinalStacks:       allStacks,
		PlayerNames:       allNames,
		EliminatedSeats:   eliminatedSeats,
	})
}

// finishTournament announces the champion and closes every connection.
func (co *Coordinator) finishTournament() {
	co.mu.Lock()
	champion := co.tour.Champion()
	winnerName := "?"
	winnerSeat := -1
	if champion != nil {
		winnerName = champion.Name
		winnerSeat = champion.Seat
	}
	allNames := make([]string, len(co.tour.Entrants))
	allStacks := make([]int, len(co.tour.Entrants))
	for i, e := range co.tour.Entrants {
		allNames[i] = e.Name
		allStacks[i] = e.Stack
	}
	totalHands := co.tour.HandNumber
	co.mu.Unlock()

	co.logger.Info("Tournament over", "winner", winnerName, "hands", totalHands)
	co.broadcast(&protocol.GameEnd{
		Type:        protocol.TypeGameEnd,
		Winner:      winnerName,
		WinnerSeat:  winnerSeat,
		FinalStacks: allStacks,
		PlayerNames: allNames,
		TotalHands:  totalHands,
	})
	co.CloseAll()
}

// broadcast sends one message to every surviving connected bot.
func (co *Coordinator) broadcast(msg any) {
	for _, b := range co.recipients() {
		_ = b.conn.Send(msg)
	}
}

// broadcastPersonalized builds a per-seat message for every surviving
// connected bot.
func (co *Coordinator) broadcastPersonalized(build func(seat int) any) {
	for _, b := range co.recipients() {
		_ = b.conn.Send(build(b.seat))
	}
}

// recipients snapshots the bots still entitled to broadcasts: connected
// and, once the game is running, not yet eliminated.
func (co *Coordinator) recipients() []*bot {
	co.mu.Lock()
	defer co.mu.Unlock()
	out := make([]*bot, 0, len(co.bots))
	for _, b := range co.bots {
		if !b.connected {
			continue
		}
		if co.tour != nil && co.tour.Entrants[b.seat].Eliminated {
			continue
		}
		out = append(out, b)
	}
	return out
}

// CloseAll drops every connection, pending request included.
func (co *Coordinator) CloseAll() {
	co.mu.Lock()
	bots := append([]*bot{}, co.bots...)
	p := co.pending
	co.mu.Unlock()

	if p != nil {
		p.fulfill(resolution{action: game.Fold, timedOut: true})
	}
	for _, b := range bots {
		_ = b.conn.Close()
	}
}
