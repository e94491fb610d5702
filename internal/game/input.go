package game

import "github.com/lox/coven/internal/deck"

// InputKind tags the decision a pending InputRequest is asking for.
type InputKind string

const (
	InputDeclare          InputKind = "declare"
	InputSeal             InputKind = "seal"
	InputChooseCard       InputKind = "choose_card"
	InputGraceHandSwap    InputKind = "grace_hand_swap"
	InputUpgradePick      InputKind = "upgrade_pick"
	InputFourthPlaceBonus InputKind = "fourth_place_bonus"
	InputWorkerActions    InputKind = "worker_actions"
	InputDebtOffset       InputKind = "debt_offset"
)

// ActionTag names a worker action or a once-per-round bonus action.
type ActionTag string

const (
	ActionTrade   ActionTag = "TRADE"
	ActionHunt    ActionTag = "HUNT"
	ActionRecruit ActionTag = "RECRUIT"
	ActionPray    ActionTag = "PRAY" // grace economy only

	// Bonus actions; at most one per round, each behind an unlock.
	ActionConvertGold   ActionTag = "CONVERT_GOLD"   // gold to grace
	ActionConvertWorker ActionTag = "CONVERT_WORKER" // retire a worker for grace
)

// BonusChoice is the fourth-place rescue decision.
type BonusChoice string

const (
	BonusGold  BonusChoice = "gold"
	BonusGrace BonusChoice = "grace"
)

// PlayerView is the public slice of a player's state carried inside an
// InputRequest so both strategies and presentation layers can decide
// without reaching into the engine.
type PlayerView struct {
	Seat         int
	Name         string
	Round        int // 0-based
	Gold         int
	VP           int
	Grace        int
	Workers      int
	PendingHires int
	Declared     int
	TricksWon    int
	TradeLevel   int
	HuntLevel    int
	TradeYield   int
	HuntYield    int
	WitchCount   int
	ExpectedWage int // bill due this round at current worker counts
}

// InputRequest asks one player for one decision. The engine holds at most
// one at a time; bot players consume the same request through their
// strategy without pausing.
type InputRequest struct {
	Kind   InputKind
	Seat   int
	Player PlayerView

	// declare / seal / choose_card / grace_hand_swap
	Hand       []deck.Card
	Legal      []deck.Card
	Lead       *deck.Card
	PlaysSoFar []SeatCard
	SealCount  int
	DeclareMin int
	DeclareMax int

	// choose_card: turn-order override availability
	CanDefer  bool
	DeferCost int

	// grace_hand_swap
	SwapCost int

	// upgrade_pick
	Revealed []UpgradeCard
	Eligible []bool
	TakeGold int

	// fourth_place_bonus
	GoldOption  int
	GraceOption int

	// worker_actions
	WorkerCount  int
	Actions      []ActionTag
	BonusActions []ActionTag

	// debt_offset
	Shortfall  int
	OffsetCost int // grace per gold
}

// InputResponse carries one decision back into the engine. Only the fields
// relevant to the request's kind are read.
type InputResponse struct {
	Declare int

	Seal []deck.Card

	Card deck.Card
	// Defer moves a non-leader to last position in the current trick
	// instead of playing now. Costs grace, once per round.
	Defer bool

	// Swap is the card to exchange for the top of the stock; nil skips.
	Swap *deck.Card

	Upgrade  UpgradeCard
	TakeGold bool

	Bonus BonusChoice

	Actions     []ActionTag
	BonusAction ActionTag // "" for none

	// OffsetGold is how much of the shortfall to cover with grace.
	OffsetGold int
}

// DeclareResponse is a convenience constructor for scripted drivers.
func DeclareResponse(n int) InputResponse { return InputResponse{Declare: n} }

// PlayResponse is a convenience constructor for scripted drivers.
func PlayResponse(c deck.Card) InputResponse { return InputResponse{Card: c} }
