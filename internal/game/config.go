package game

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// DebtPolicy selects how a wage shortfall converts into a VP penalty.
type DebtPolicy string

const (
	// DebtMultiplier charges shortfall * multiplier VP, optionally capped.
	DebtMultiplier DebtPolicy = "multiplier"
	// DebtTiered charges a flat penalty looked up from a tier table.
	DebtTiered DebtPolicy = "tiers"
)

// DebtTier is one row of the tiered shortfall table. A shortfall is charged
// the penalty of the first tier whose UpTo covers it; shortfalls beyond the
// last tier pay the last tier's penalty.
type DebtTier struct {
	UpTo    int
	Penalty int
}

// GraceThreshold is one row of the end-game grace conversion table.
// Only the single highest qualifying threshold pays out.
type GraceThreshold struct {
	Points  int
	BonusVP int
}

// GraceConfig holds the optional secondary point economy.
type GraceConfig struct {
	Enabled bool

	// Gains
	PrayYield          int // grace per Pray worker action
	GoldConvertCost    int // gold spent by the conversion bonus action
	GoldConvertYield   int // grace gained by it
	WorkerConvertYield int // grace for retiring one worker
	ZeroDeclareBonus   int // declaring and winning zero tricks
	FourthPlaceGrace   int // grace option of the rescue bonus

	// Spends
	HandSwapCost   int // pre-seal card swap
	TurnOrderCost  int // once-per-round move-to-last
	DebtOffsetCost int // grace per gold of shortfall offset

	Thresholds []GraceThreshold
}

// Config holds every tunable constant of a game. It is an immutable value
// constructed once per game and validated before any state exists.
type Config struct {
	Players        int
	Rounds         int
	HandSize       int // cards seen per round
	TricksPerRound int // tricks actually played (< HandSize)
	SetsPerGame    int
	MaxRank        int
	DeckCopies     int
	TrumpCards     int

	StartingGold    int
	StartingWorkers int
	WageCurve       []int // per round, base worker class
	HiredWageCurve  []int // per round, workers beyond the starting count

	DebtPolicy     DebtPolicy
	DebtMultiplier int
	DebtCap        int // 0 means uncapped
	DebtTiers      []DebtTier

	DeclareMin         int
	DeclareMax         int
	DeclarationBonusVP int

	RevealCount     int // upgrade cards revealed per round
	TakeGoldAmount  int
	FourthPlaceGold int
	GoldPerVP       int // end-game conversion divisor, 0 disables

	EventLogSize int // bounded recent-event log in snapshots

	Grace GraceConfig
}

// DefaultConfig returns the canonical 4-player ruleset.
func DefaultConfig() Config {
	return Config{
		Players:        4,
		Rounds:         4,
		HandSize:       6,
		TricksPerRound: 4,
		SetsPerGame:    4,
		MaxRank:        13,
		DeckCopies:     2,
		TrumpCards:     4,

		StartingGold:    5,
		StartingWorkers: 2,
		WageCurve:       []int{1, 1, 2, 3},
		HiredWageCurve:  []int{1, 2, 3, 4},

		DebtPolicy:     DebtMultiplier,
		DebtMultiplier: 1,

		DeclareMin:         0,
		DeclareMax:         4,
		DeclarationBonusVP: 1,

		RevealCount:     5,
		TakeGoldAmount:  2,
		FourthPlaceGold: 2,
		GoldPerVP:       3,

		EventLogSize: 50,

		Grace: GraceConfig{
			Enabled:            true,
			PrayYield:          1,
			GoldConvertCost:    2,
			GoldConvertYield:   2,
			WorkerConvertYield: 3,
			ZeroDeclareBonus:   2,
			FourthPlaceGrace:   2,
			HandSwapCost:       1,
			TurnOrderCost:      1,
			DebtOffsetCost:     1,
			Thresholds: []GraceThreshold{
				{Points: 5, BonusVP: 2},
				{Points: 10, BonusVP: 5},
				{Points: 13, BonusVP: 8},
			},
		},
	}
}

// Validate checks every value against its domain.
func (c Config) Validate() error {
	if c.Players < 2 {
		return configErr("players", "need at least 2, got %d", c.Players)
	}
	if c.Rounds < 1 {
		return configErr("rounds", "must be positive, got %d", c.Rounds)
	}
	if c.TricksPerRound < 1 || c.TricksPerRound >= c.HandSize {
		return configErr("tricks_per_round", "must be in [1, hand_size), got %d with hand_size %d", c.TricksPerRound, c.HandSize)
	}
	if c.SetsPerGame < c.Rounds {
		return configErr("sets_per_game", "need at least one set per round, got %d for %d rounds", c.SetsPerGame, c.Rounds)
	}
	if c.MaxRank < 2 {
		return configErr("max_rank", "must be at least 2, got %d", c.MaxRank)
	}
	if c.DeckCopies < 1 {
		return configErr("deck_copies", "must be positive, got %d", c.DeckCopies)
	}
	if c.TrumpCards < 0 {
		return configErr("trump_cards", "must be non-negative, got %d", c.TrumpCards)
	}
	total := c.DeckCopies*4*c.MaxRank + c.TrumpCards
	need := c.Players * c.SetsPerGame * c.HandSize
	if total < need {
		return configErr("deck_copies", "deck of %d cards cannot deal %d", total, need)
	}
	if c.StartingGold < 0 {
		return configErr("starting_gold", "must be non-negative, got %d", c.StartingGold)
	}
	if c.StartingWorkers < 1 {
		return configErr("starting_workers", "must be positive, got %d", c.StartingWorkers)
	}
	if len(c.WageCurve) < c.Rounds {
		return configErr("wage_curve", "need a rate for each of %d rounds, got %d", c.Rounds, len(c.WageCurve))
	}
	if len(c.HiredWageCurve) < c.Rounds {
		return configErr("hired_wage_curve", "need a rate for each of %d rounds, got %d", c.Rounds, len(c.HiredWageCurve))
	}
	for i, w := range c.WageCurve {
		if w < 0 {
			return configErr("wage_curve", "negative rate %d at round %d", w, i+1)
		}
	}
	for i, w := range c.HiredWageCurve {
		if w < 0 {
			return configErr("hired_wage_curve", "negative rate %d at round %d", w, i+1)
		}
	}
	switch c.DebtPolicy {
	case DebtMultiplier:
		if c.DebtMultiplier < 0 {
			return configErr("debt_multiplier", "must be non-negative, got %d", c.DebtMultiplier)
		}
		if c.DebtCap < 0 {
			return configErr("debt_cap", "must be non-negative, got %d", c.DebtCap)
		}
	case DebtTiered:
		if len(c.DebtTiers) == 0 {
			return configErr("debt_tier", "tiered policy requires at least one tier")
		}
		prev := 0
		for i, t := range c.DebtTiers {
			if t.UpTo <= prev {
				return configErr("debt_tier", "tiers must be strictly increasing, tier %d up_to %d", i+1, t.UpTo)
			}
			if t.Penalty < 0 {
				return configErr("debt_tier", "negative penalty %d in tier %d", t.Penalty, i+1)
			}
			prev = t.UpTo
		}
	default:
		return configErr("debt_policy", "unknown policy %q", c.DebtPolicy)
	}
	if c.DeclareMin < 0 || c.DeclareMax > c.TricksPerRound || c.DeclareMin > c.DeclareMax {
		return configErr("declare_min", "range [%d,%d] outside [0,%d]", c.DeclareMin, c.DeclareMax, c.TricksPerRound)
	}
	if c.RevealCount < 1 {
		return configErr("reveal_count", "must be positive, got %d", c.RevealCount)
	}
	if c.TakeGoldAmount < 0 || c.FourthPlaceGold < 0 {
		return configErr("take_gold_amount", "bonus amounts must be non-negative")
	}
	if c.GoldPerVP < 0 {
		return configErr("gold_per_vp", "must be non-negative, got %d", c.GoldPerVP)
	}
	if c.EventLogSize < 1 {
		return configErr("event_log_size", "must be positive, got %d", c.EventLogSize)
	}
	if c.Grace.Enabled {
		g := c.Grace
		if g.HandSwapCost < 0 || g.TurnOrderCost < 0 || g.DebtOffsetCost < 1 {
			return configErr("grace", "costs must be non-negative (debt_offset_cost at least 1)")
		}
		if g.PrayYield < 0 || g.GoldConvertYield < 0 || g.WorkerConvertYield < 0 || g.ZeroDeclareBonus < 0 || g.FourthPlaceGrace < 0 {
			return configErr("grace", "yields must be non-negative")
		}
		if g.GoldConvertCost < 0 {
			return configErr("grace.gold_convert_cost", "must be non-negative, got %d", g.GoldConvertCost)
		}
		prev := 0
		for i, t := range g.Thresholds {
			if t.Points <= prev {
				return configErr("grace.threshold", "thresholds must be strictly increasing, row %d points %d", i+1, t.Points)
			}
			if t.BonusVP < 0 {
				return configErr("grace.threshold", "negative bonus in row %d", i+1)
			}
			prev = t.Points
		}
	}
	return nil
}

// fileConfig is the HCL shape of a config file. Pointer fields distinguish
// "unset" from a deliberate zero so zero-valued settings survive merging.
type fileConfig struct {
	Game  *fileGame  `hcl:"game,block"`
	Grace *fileGrace `hcl:"grace,block"`
}

type fileGame struct {
	Players        *int `hcl:"players,optional"`
	Rounds         *int `hcl:"rounds,optional"`
	HandSize       *int `hcl:"hand_size,optional"`
	TricksPerRound *int `hcl:"tricks_per_round,optional"`
	SetsPerGame    *int `hcl:"sets_per_game,optional"`
	MaxRank        *int `hcl:"max_rank,optional"`
	DeckCopies     *int `hcl:"deck_copies,optional"`
	TrumpCards     *int `hcl:"trump_cards,optional"`

	StartingGold    *int  `hcl:"starting_gold,optional"`
	StartingWorkers *int  `hcl:"starting_workers,optional"`
	WageCurve       []int `hcl:"wage_curve,optional"`
	HiredWageCurve  []int `hcl:"hired_wage_curve,optional"`

	DebtPolicy     *string        `hcl:"debt_policy,optional"`
	DebtMultiplier *int           `hcl:"debt_multiplier,optional"`
	DebtCap        *int           `hcl:"debt_cap,optional"`
	DebtTiers      []fileDebtTier `hcl:"debt_tier,block"`

	DeclareMin         *int `hcl:"declare_min,optional"`
	DeclareMax         *int `hcl:"declare_max,optional"`
	DeclarationBonusVP *int `hcl:"declaration_bonus_vp,optional"`

	RevealCount     *int `hcl:"reveal_count,optional"`
	TakeGoldAmount  *int `hcl:"take_gold_amount,optional"`
	FourthPlaceGold *int `hcl:"fourth_place_gold,optional"`
	GoldPerVP       *int `hcl:"gold_per_vp,optional"`

	EventLogSize *int `hcl:"event_log_size,optional"`
}

type fileDebtTier struct {
	UpTo    int `hcl:"up_to"`
	Penalty int `hcl:"penalty"`
}

type fileGrace struct {
	Enabled *bool `hcl:"enabled,optional"`

	PrayYield          *int `hcl:"pray_yield,optional"`
	GoldConvertCost    *int `hcl:"gold_convert_cost,optional"`
	GoldConvertYield   *int `hcl:"gold_convert_yield,optional"`
	WorkerConvertYield *int `hcl:"worker_convert_yield,optional"`
	ZeroDeclareBonus   *int `hcl:"zero_declare_bonus,optional"`
	FourthPlaceGrace   *int `hcl:"fourth_place_grace,optional"`

	HandSwapCost   *int `hcl:"hand_swap_cost,optional"`
	TurnOrderCost  *int `hcl:"turn_order_cost,optional"`
	DebtOffsetCost *int `hcl:"debt_offset_cost,optional"`

	Thresholds []fileThreshold `hcl:"threshold,block"`
}

type fileThreshold struct {
	Points  int `hcl:"points"`
	BonusVP int `hcl:"bonus_vp"`
}

// LoadConfig loads a Config from an HCL file. A missing file yields the
// defaults; a present file overrides only the values it sets.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if fc.Game != nil {
		mergeGame(&cfg, fc.Game)
	}
	if fc.Grace != nil {
		mergeGrace(&cfg.Grace, fc.Grace)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeGame(c *Config, f *fileGame) {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&c.Players, f.Players)
	setInt(&c.Rounds, f.Rounds)
	setInt(&c.HandSize, f.HandSize)
	setInt(&c.TricksPerRound, f.TricksPerRound)
	setInt(&c.SetsPerGame, f.SetsPerGame)
	setInt(&c.MaxRank, f.MaxRank)
	setInt(&c.DeckCopies, f.DeckCopies)
	setInt(&c.TrumpCards, f.TrumpCards)
	setInt(&c.StartingGold, f.StartingGold)
	setInt(&c.StartingWorkers, f.StartingWorkers)
	if len(f.WageCurve) > 0 {
		c.WageCurve = f.WageCurve
	}
	if len(f.HiredWageCurve) > 0 {
		c.HiredWageCurve = f.HiredWageCurve
	}
	if f.DebtPolicy != nil {
		c.DebtPolicy = DebtPolicy(*f.DebtPolicy)
	}
	setInt(&c.DebtMultiplier, f.DebtMultiplier)
	setInt(&c.DebtCap, f.DebtCap)
	if len(f.DebtTiers) > 0 {
		c.DebtTiers = make([]DebtTier, len(f.DebtTiers))
		for i, t := range f.DebtTiers {
			c.DebtTiers[i] = DebtTier{UpTo: t.UpTo, Penalty: t.Penalty}
		}
	}
	setInt(&c.DeclareMin, f.DeclareMin)
	setInt(&c.DeclareMax, f.DeclareMax)
	setInt(&c.DeclarationBonusVP, f.DeclarationBonusVP)
	setInt(&c.RevealCount, f.RevealCount)
	setInt(&c.TakeGoldAmount, f.TakeGoldAmount)
	setInt(&c.FourthPlaceGold, f.FourthPlaceGold)
	setInt(&c.GoldPerVP, f.GoldPerVP)
	setInt(&c.EventLogSize, f.EventLogSize)
}

func mergeGrace(g *GraceConfig, f *fileGrace) {
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	if f.Enabled != nil {
		g.Enabled = *f.Enabled
	}
	setInt(&g.PrayYield, f.PrayYield)
	setInt(&g.GoldConvertCost, f.GoldConvertCost)
	setInt(&g.GoldConvertYield, f.GoldConvertYield)
	setInt(&g.WorkerConvertYield, f.WorkerConvertYield)
	setInt(&g.ZeroDeclareBonus, f.ZeroDeclareBonus)
	setInt(&g.FourthPlaceGrace, f.FourthPlaceGrace)
	setInt(&g.HandSwapCost, f.HandSwapCost)
	setInt(&g.TurnOrderCost, f.TurnOrderCost)
	setInt(&g.DebtOffsetCost, f.DebtOffsetCost)
	if len(f.Thresholds) > 0 {
		g.Thresholds = make([]GraceThreshold, len(f.Thresholds))
		for i, t := range f.Thresholds {
			g.Thresholds[i] = GraceThreshold{Points: t.Points, BonusVP: t.BonusVP}
		}
	}
}
