package game

import (
	rand "math/rand/v2"
	"sort"

	"github.com/lox/coven/internal/deck"
)

// Strategy answers every decision kind for a bot seat. Implementations
// must return responses that pass the same validation external input goes
// through; an illegal bot response is an engine invariant failure.
type Strategy interface {
	Name() string
	Decide(req *InputRequest, rng *rand.Rand) InputResponse
}

// StrategyNames lists the built-in strategies.
var StrategyNames = []string{"conservative", "aggressive", "balanced", "debtavoid"}

// NewStrategy returns a built-in strategy by name. An empty name selects
// balanced.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "", "balanced":
		return &heuristicStrategy{name: "balanced", declareBias: 0, hunts: true, wantsGrace: true}, nil
	case "conservative":
		return &heuristicStrategy{name: "conservative", declareBias: -1}, nil
	case "aggressive":
		return &heuristicStrategy{name: "aggressive", declareBias: 1, hunts: true, recruits: true, wantsGrace: true}, nil
	case "debtavoid":
		return &heuristicStrategy{name: "debtavoid", declareBias: -1, wagesFirst: true}, nil
	default:
		return nil, configErr("strategy", "unknown strategy %q", name)
	}
}

// heuristicStrategy is a parameterised rule-of-thumb player. The knobs
// shift its declarations, its worker allocation, and its appetite for
// grace.
type heuristicStrategy struct {
	name        string
	declareBias int  // shifts the trick estimate
	hunts       bool // spends spare workers on VP instead of gold
	recruits    bool // grows the crew even when wages are tight
	wagesFirst  bool // trades until the wage bill is covered
	wantsGrace  bool // prays, converts, and takes the grace rescue
}

func (s *heuristicStrategy) Name() string { return s.name }

func (s *heuristicStrategy) Decide(req *InputRequest, rng *rand.Rand) InputResponse {
	switch req.Kind {
	case InputDeclare:
		return InputResponse{Declare: s.declare(req)}
	case InputSeal:
		return InputResponse{Seal: s.seal(req)}
	case InputChooseCard:
		return InputResponse{Card: s.chooseCard(req, rng)}
	case InputGraceHandSwap:
		return InputResponse{Swap: s.handSwap(req)}
	case InputUpgradePick:
		return s.upgradePick(req)
	case InputFourthPlaceBonus:
		return InputResponse{Bonus: s.rescue(req)}
	case InputWorkerActions:
		return s.workerActions(req, rng)
	case InputDebtOffset:
		return InputResponse{OffsetGold: s.debtOffset(req)}
	default:
		return InputResponse{}
	}
}

// strongCard is the threshold rank above which a card is counted as a
// probable trick winner.
const strongCard = 10

// declare estimates tricks from trumps and high ranks, then applies the
// bias and clamps to the legal range.
func (s *heuristicStrategy) declare(req *InputRequest) int {
	est := 0
	for _, c := range req.Hand {
		if c.IsTrump() || c.Rank >= strongCard {
			est++
		}
	}
	est += s.declareBias
	if est < req.DeclareMin {
		est = req.DeclareMin
	}
	if est > req.DeclareMax {
		est = req.DeclareMax
	}
	return est
}

// seal puts away the cards least useful for the declaration: the weakest
// cards when tricks are wanted, the strongest when declaring zero.
func (s *heuristicStrategy) seal(req *InputRequest) []deck.Card {
	hand := append([]deck.Card(nil), req.Hand...)
	sort.Slice(hand, func(a, b int) bool {
		return cardStrength(hand[a]) < cardStrength(hand[b])
	})
	if req.Player.Declared == 0 {
		return hand[len(hand)-req.SealCount:]
	}
	return hand[:req.SealCount]
}

// cardStrength orders cards for heuristics; trumps beat everything.
func cardStrength(c deck.Card) int {
	if c.IsTrump() {
		return 100
	}
	return c.Rank
}

// chooseCard plays to the declaration: strongest legal card while the
// declared count is short, weakest once it is met.
func (s *heuristicStrategy) chooseCard(req *InputRequest, rng *rand.Rand) deck.Card {
	legal := append([]deck.Card(nil), req.Legal...)
	sort.Slice(legal, func(a, b int) bool {
		return cardStrength(legal[a]) < cardStrength(legal[b])
	})
	if req.Player.TricksWon < req.Player.Declared {
		return legal[len(legal)-1]
	}
	if len(legal) > 1 && rng.IntN(8) == 0 {
		// Occasionally burn the second-weakest to vary the discard line.
		return legal[1]
	}
	return legal[0]
}

// handSwap trades the weakest card for a blind draw when grace is cheap
// relative to the stash.
func (s *heuristicStrategy) handSwap(req *InputRequest) *deck.Card {
	if !s.wantsGrace || req.Player.Grace < req.SwapCost*2 {
		return nil
	}
	worst := req.Hand[0]
	for _, c := range req.Hand[1:] {
		if cardStrength(c) < cardStrength(worst) {
			worst = c
		}
	}
	if worst.IsTrump() || worst.Rank > 4 {
		return nil
	}
	return &worst
}

// upgradePick walks a preference order over the revealed cards and falls
// back to gold. A debt-minded player takes gold whenever the wage bill is
// not covered.
func (s *heuristicStrategy) upgradePick(req *InputRequest) InputResponse {
	if s.wagesFirst && req.Player.Gold < req.Player.ExpectedWage {
		return InputResponse{TakeGold: true}
	}
	for _, want := range s.upgradeOrder() {
		for i, c := range req.Revealed {
			if c == want && req.Eligible[i] {
				return InputResponse{Upgrade: c}
			}
		}
	}
	// Any witch beats gold for board presence.
	for i, c := range req.Revealed {
		if c.IsWitch() && req.Eligible[i] {
			return InputResponse{Upgrade: c}
		}
	}
	return InputResponse{TakeGold: true}
}

func (s *heuristicStrategy) upgradeOrder() []UpgradeCard {
	if s.hunts {
		return []UpgradeCard{UpgradeHunt, WitchBloodhunt, WitchRitual, UpgradeTrade, RecruitDouble}
	}
	if s.wagesFirst {
		return []UpgradeCard{WitchBarrier, RecruitWageDiscount, UpgradeTrade, WitchBlackroad}
	}
	return []UpgradeCard{UpgradeTrade, WitchBlackroad, UpgradeHunt, WitchRitual}
}

func (s *heuristicStrategy) rescue(req *InputRequest) BonusChoice {
	if s.wantsGrace && req.GraceOption > 0 {
		return BonusGrace
	}
	return BonusGold
}

// workerActions fills the worker slots: cover the wage bill with trades
// first, then spend the rest on the profile's preference.
func (s *heuristicStrategy) workerActions(req *InputRequest, rng *rand.Rand) InputResponse {
	short := req.Player.ExpectedWage - req.Player.Gold
	tradeYield := req.Player.TradeYield
	actions := make([]ActionTag, 0, req.WorkerCount)

	for len(actions) < req.WorkerCount {
		switch {
		case short > 0:
			actions = append(actions, ActionTrade)
			short -= tradeYield
		case s.recruits && !containsAction(actions, ActionRecruit):
			actions = append(actions, ActionRecruit)
		case s.wantsGrace && containsAction(req.Actions, ActionPray) && rng.IntN(3) == 0:
			actions = append(actions, ActionPray)
		case s.hunts:
			actions = append(actions, ActionHunt)
		default:
			actions = append(actions, ActionTrade)
		}
	}

	var bonus ActionTag
	if s.wantsGrace && len(req.BonusActions) > 0 {
		bonus = req.BonusActions[0]
	}
	return InputResponse{Actions: actions, BonusAction: bonus}
}

// debtOffset burns grace to cover as much of the shortfall as possible;
// the VP penalty is always worse than the grace spent.
func (s *heuristicStrategy) debtOffset(req *InputRequest) int {
	offset := req.Player.Grace / req.OffsetCost
	if offset > req.Shortfall {
		offset = req.Shortfall
	}
	return offset
}
