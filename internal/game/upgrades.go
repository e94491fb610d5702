package game

import rand "math/rand/v2"

// UpgradeCard identifies an ability card in the upgrade economy.
type UpgradeCard string

const (
	UpgradeTrade        UpgradeCard = "UP_TRADE"              // trade level +1, max 2
	UpgradeHunt         UpgradeCard = "UP_HUNT"               // hunt level +1, max 2
	RecruitDouble       UpgradeCard = "RECRUIT_DOUBLE"        // each Recruit hires 2
	RecruitWageDiscount UpgradeCard = "RECRUIT_WAGE_DISCOUNT" // wage -1 per hire this round
	WitchBlackroad      UpgradeCard = "WITCH_BLACKROAD"       // +1 trade yield
	WitchBloodhunt      UpgradeCard = "WITCH_BLOODHUNT"       // +1 hunt yield
	WitchHerd           UpgradeCard = "WITCH_HERD"            // unlocks worker-to-grace conversion
	WitchRitual         UpgradeCard = "WITCH_RITUAL"          // +1 grace each round, +1 declaration bonus
	WitchInspect        UpgradeCard = "WITCH_INSPECT"         // unlocks gold-to-grace conversion
	WitchBarrier        UpgradeCard = "WITCH_BARRIER"         // wage bill -1 each round
)

// IsWitch reports whether the card is a permanent witch. Witch count is the
// second key of the upgrade pick order.
func (u UpgradeCard) IsWitch() bool {
	switch u {
	case WitchBlackroad, WitchBloodhunt, WitchHerd, WitchRitual, WitchInspect, WitchBarrier:
		return true
	}
	return false
}

// IsRecruitUpgrade reports whether the card occupies the single recruit
// upgrade slot (taking a second one discards the first).
func (u UpgradeCard) IsRecruitUpgrade() bool {
	return u == RecruitDouble || u == RecruitWageDiscount
}

// initialUpgradeCards returns the fixed composition of the upgrade deck.
func initialUpgradeCards() []UpgradeCard {
	cards := make([]UpgradeCard, 0, 22)
	for i := 0; i < 6; i++ {
		cards = append(cards, UpgradeTrade)
	}
	for i := 0; i < 6; i++ {
		cards = append(cards, UpgradeHunt)
	}
	cards = append(cards, RecruitDouble, RecruitDouble)
	cards = append(cards, RecruitWageDiscount, RecruitWageDiscount)
	cards = append(cards,
		WitchBlackroad, WitchBloodhunt, WitchHerd,
		WitchRitual, WitchInspect, WitchBarrier)
	return cards
}

// UpgradeDeck is the draw/discard economy for ability cards. The multiset
// draw + discard + held-by-players never changes over a game.
type UpgradeDeck struct {
	draw    []UpgradeCard
	discard []UpgradeCard
}

// NewUpgradeDeck builds the deck and shuffles the draw pile with the shared
// engine stream.
func NewUpgradeDeck(rng *rand.Rand) *UpgradeDeck {
	d := &UpgradeDeck{draw: initialUpgradeCards()}
	shuffleUpgrades(d.draw, rng)
	return d
}

func shuffleUpgrades(cards []UpgradeCard, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Reveal takes n cards from the top of the draw pile. The discard pile is
// reshuffled into the draw pile only when the draw pile is short; never
// preemptively.
func (d *UpgradeDeck) Reveal(n int, rng *rand.Rand) []UpgradeCard {
	if len(d.draw) < n {
		d.draw = append(d.draw, d.discard...)
		d.discard = nil
		shuffleUpgrades(d.draw, rng)
	}
	if n > len(d.draw) {
		n = len(d.draw)
	}
	out := make([]UpgradeCard, n)
	copy(out, d.draw[:n])
	d.draw = d.draw[n:]
	return out
}

// Discard appends unchosen revealed cards to the discard pile.
func (d *UpgradeDeck) Discard(cards []UpgradeCard) {
	d.discard = append(d.discard, cards...)
}

// DrawLen returns the draw pile size.
func (d *UpgradeDeck) DrawLen() int { return len(d.draw) }

// DiscardLen returns the discard pile size.
func (d *UpgradeDeck) DiscardLen() int { return len(d.discard) }

// Census counts cards by id across draw and discard piles.
func (d *UpgradeDeck) Census() map[UpgradeCard]int {
	m := make(map[UpgradeCard]int)
	for _, c := range d.draw {
		m[c]++
	}
	for _, c := range d.discard {
		m[c]++
	}
	return m
}
