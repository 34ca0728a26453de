package protocol

// MessageType identifies the type of message.
type MessageType = string

const (
	// Bot -> Server
	TypeJoin   = "join"
	TypeAction = "action"

	// Server -> Bot
	TypeWaiting       = "waiting"
	TypeGameStart     = "game_start"
	TypeHandStart     = "hand_start"
	TypeActionRequest = "action_request"
	TypeActionResult  = "action_result"
	TypeHandEnd       = "hand_end"
	TypeGameEnd       = "game_end"
	TypeError         = "error"
)

// Error codes carried by Error messages.
const (
	CodeBadJoin           = "BAD_JOIN"
	CodeBadName           = "BAD_NAME"
	CodeTournamentFull    = "TOURNAMENT_FULL"
	CodeTournamentStarted = "TOURNAMENT_STARTED"
	CodeBadJSON           = "BAD_JSON"
	CodeUnknownType       = "UNKNOWN_TYPE"
	CodeBadAction         = "BAD_ACTION"
)

// HiddenCard is what an opponent's hole card looks like in a game state.
const HiddenCard = "??"

// Bot -> Server messages

// Join registers a bot with the lobby. It must be the first frame sent.
type Join struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Action is the move object nested in an "action" message and echoed in
// every ActionResult. Amount is null except for raises, where it is the
// total amount to raise to.
type Action struct {
	Type   string `json:"type"`
	Amount *int   `json:"amount"`
}

// ActionMsg is a bot's reply to an ActionRequest.
type ActionMsg struct {
	Type   string `json:"type"`
	Action Action `json:"action"`
}

// Server -> Bot messages

// Waiting is broadcast after every successful join.
type Waiting struct {
	Type           string `json:"type"`
	CurrentPlayers int    `json:"current_players"`
	MinPlayers     int    `json:"min_players"`
	MaxPlayers     int    `json:"max_players"`
}

// GameStart announces the tournament. Indices into the parallel name and
// stack slices are seat numbers, here and in every later message.
type GameStart struct {
	Type           string   `json:"type"`
	PlayerNames    []string `json:"player_names"`
	StartingStacks []int    `json:"starting_stacks"`
	SmallBlind     int      `json:"small_blind"`
	BigBlind       int      `json:"big_blind"`
}

// HandStart is personalised per recipient: HoleCards holds only that
// player's two cards.
type HandStart struct {
	Type             string   `json:"type"`
	HandNumber       int      `json:"hand_number"`
	DealerSeat       int      `json:"dealer_seat"`
	SmallBlindSeat   int      `json:"small_blind_seat"`
	BigBlindSeat     int      `json:"big_blind_seat"`
	SmallBlindAmount int      `json:"small_blind_amount"`
	BigBlindAmount   int      `json:"big_blind_amount"`
	PlayerNames      []string `json:"player_names"`
	Stacks           []int    `json:"stacks"`
	HoleCards        []string `json:"hole_cards"`
}

// ActionRequest tells one bot it is their turn. Every player receives a
// copy so the table can follow the action; only the actor may answer.
type ActionRequest struct {
	Type           string    `json:"type"`
	ActorSeat      int       `json:"actor_seat"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	GameState      GameState `json:"game_state"`
}

// ActionResult broadcasts a resolved action to the whole table.
type ActionResult struct {
	Type       string    `json:"type"`
	ActorSeat  int       `json:"actor_seat"`
	PlayerName string    `json:"player_name"`
	Action     Action    `json:"action"`
	TimedOut   bool      `json:"timed_out"`
	GameState  GameState `json:"game_state"`
}

// HandEnd closes out a hand. FinalStacks and PlayerNames cover every seat
// ever dealt in, eliminated ones included.
type HandEnd struct {
	Type              string          `json:"type"`
	HandNumber        int             `json:"hand_number"`
	Winners           []HandWinner    `json:"winners"`
	HoleCardsRevealed []RevealedCards `json:"hole_cards_revealed"`
	CommunityCards    []string        `json:"community_cards"`
	FinalStacks       []int           `json:"final_stacks"`
	PlayerNames       []string        `json:"player_names"`
	EliminatedSeats   []int           `json:"eliminated_seats"`
}

// HandWinner is one player's positive net winnings in a hand.
type HandWinner struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	AmountWon int    `json:"amount_won"`
}

// RevealedCards shows a player's hole cards at showdown.
type RevealedCards struct {
	Seat      int      `json:"seat"`
	Name      string   `json:"name"`
	HoleCards []string `json:"hole_cards"`
}

// GameEnd declares the tournament champion.
type GameEnd struct {
	Type        string   `json:"type"`
	Winner      string   `json:"winner"`
	WinnerSeat  int      `json:"winner_seat"`
	FinalStacks []int    `json:"final_stacks"`
	PlayerNames []string `json:"player_names"`
	TotalHands  int      `json:"total_hands"`
}

// Error reports a protocol violation or rejected request.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewError builds an Error message.
func NewError(code, message string) *Error {
	return &Error{Type: TypeError, Code: code, Message: message}
}

// GameState is a snapshot of the hand from one player's perspective.
// Opponents' hole cards are censored to HiddenCard.
type GameState struct {
	Street           string        `json:"street"`
	HandNumber       int           `json:"hand_number"`
	CommunityCards   []string      `json:"community_cards"`
	Pot              PotState      `json:"pot"`
	Players          []SeatState   `json:"players"`
	ActorSeat        *int          `json:"actor_seat"`
	ValidActions     []ValidAction `json:"valid_actions"`
	DealerSeat       int           `json:"dealer_seat"`
	SmallBlindSeat   int           `json:"small_blind_seat"`
	BigBlindSeat     int           `json:"big_blind_seat"`
	SmallBlindAmount int           `json:"small_blind_amount"`
	BigBlindAmount   int           `json:"big_blind_amount"`
}

// PotState carries the pot total and the main/side pot breakdown. Total
// counts every chip no longer in a stack, live street bets included.
type PotState struct {
	Total int       `json:"total"`
	Pots  []SidePot `json:"pots"`
}

// SidePot is one pot layer and the seats that can win it.
type SidePot struct {
	Amount        int   `json:"amount"`
	EligibleSeats []int `json:"eligible_seats"`
}

// SeatState is one player's public state within a GameState.
type SeatState struct {
	Seat           int      `json:"seat"`
	Name           string   `json:"name"`
	Stack          int      `json:"stack"`
	CurrentBet     int      `json:"current_bet"`
	IsActive       bool     `json:"is_active"`
	IsAllIn        bool     `json:"is_all_in"`
	IsDealer       bool     `json:"is_dealer"`
	IsSmallBlind   bool     `json:"is_small_blind"`
	IsBigBlind     bool     `json:"is_big_blind"`
	HoleCards      []string `json:"hole_cards"`
	HoleCardsKnown bool     `json:"hole_cards_known"`
}

// ValidAction describes one legal move for the actor. Amount is set for
// calls; MinAmount and MaxAmount bound raises.
type ValidAction struct {
	Type      string `json:"type"`
	Amount    *int   `json:"amount,omitempty"`
	MinAmount *int   `json:"min_amount,omitempty"`
	MaxAmount *int   `json:"max_amount,omitempty"`
}
