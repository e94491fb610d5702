package game

import (
	rand "math/rand/v2"

	"github.com/lox/coven/internal/deck"
)

// Controller says where a player's decisions come from.
type Controller int

const (
	// Bot players answer every decision from their strategy, seeded from
	// their private stream. They never pause the engine.
	Bot Controller = iota
	// External players pause the engine with an InputRequest and resume it
	// through ProvideInput.
	External
)

func (c Controller) String() string {
	if c == External {
		return "external"
	}
	return "bot"
}

// PlayerSpec describes one seat at game construction.
type PlayerSpec struct {
	Name       string
	Controller Controller
	Strategy   string // ignored for external players
}

// Player holds all per-player state. Gold and grace are clamped at zero;
// VP may go negative through debt penalties.
type Player struct {
	Seat       int
	Name       string
	Controller Controller

	// rng is the player's private stream. It advances only when this
	// player makes an autonomous decision.
	rng      *rand.Rand
	strategy Strategy

	Gold  int
	VP    int
	Grace int

	Workers      int // active this round
	PendingHires int // activate at the round boundary
	TradeLevel   int // 0..2
	HuntLevel    int // 0..2

	Held           []UpgradeCard // every ability card taken, in pick order
	RecruitUpgrade UpgradeCard   // "" or the single recruit slot card

	// One-time unlocks granted by witches.
	GoldConvertUnlocked   bool
	WorkerConvertUnlocked bool

	// sets are the pre-dealt hands, one per round slot.
	sets [][]deck.Card

	// Per-round ephemeral state, reset at round start.
	Declared        int
	TricksWon       int
	UsedTurnOrder   bool
	UsedBonusAction bool
	HiredThisRound  int
}

// WitchCount returns the number of permanent witches held.
func (p *Player) WitchCount() int {
	n := 0
	for _, c := range p.Held {
		if c.IsWitch() {
			n++
		}
	}
	return n
}

func (p *Player) holds(card UpgradeCard) bool {
	for _, c := range p.Held {
		if c == card {
			return true
		}
	}
	return false
}

// TradeYield returns gold produced by one Trade action.
func (p *Player) TradeYield() int {
	y := 2 + p.TradeLevel
	if p.holds(WitchBlackroad) {
		y++
	}
	return y
}

// HuntYield returns VP produced by one Hunt action.
func (p *Player) HuntYield() int {
	y := 1 + p.HuntLevel
	if p.holds(WitchBloodhunt) {
		y++
	}
	return y
}

// DeclarationBonus returns the VP paid when the declaration matches.
// The Ritual witch sharpens it by one.
func (p *Player) DeclarationBonus(base int) int {
	if p.holds(WitchRitual) {
		return base + 1
	}
	return base
}

// CanTakeUpgrade reports whether the player may pick the given card.
func (p *Player) CanTakeUpgrade(card UpgradeCard) bool {
	switch card {
	case UpgradeTrade:
		return p.TradeLevel < 2
	case UpgradeHunt:
		return p.HuntLevel < 2
	}
	return true
}

// applyUpgrade applies a picked card's effect. It returns a card to discard
// when the pick displaces a previously-held recruit upgrade.
func (p *Player) applyUpgrade(card UpgradeCard) (displaced UpgradeCard) {
	p.Held = append(p.Held, card)
	switch {
	case card == UpgradeTrade:
		if p.TradeLevel < 2 {
			p.TradeLevel++
		}
	case card == UpgradeHunt:
		if p.HuntLevel < 2 {
			p.HuntLevel++
		}
	case card.IsRecruitUpgrade():
		if p.RecruitUpgrade != "" {
			displaced = p.RecruitUpgrade
			p.removeHeld(displaced)
		}
		p.RecruitUpgrade = card
	case card == WitchInspect:
		p.GoldConvertUnlocked = true
	case card == WitchHerd:
		p.WorkerConvertUnlocked = true
	}
	return displaced
}

func (p *Player) removeHeld(card UpgradeCard) {
	for i, c := range p.Held {
		if c == card {
			p.Held = append(p.Held[:i], p.Held[i+1:]...)
			return
		}
	}
}

// resetRound clears per-round ephemeral state.
func (p *Player) resetRound() {
	p.Declared = 0
	p.TricksWon = 0
	p.UsedTurnOrder = false
	p.UsedBonusAction = false
	p.HiredThisRound = 0
}

// addGold adds delta to gold, clamping at zero.
func (p *Player) addGold(delta int) {
	p.Gold += delta
	if p.Gold < 0 {
		p.Gold = 0
	}
}

// addGrace adds delta to grace, clamping at zero.
func (p *Player) addGrace(delta int) {
	p.Grace += delta
	if p.Grace < 0 {
		p.Grace = 0
	}
}
