package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := &Engine{cfg: cfg}
	return e
}

func TestWageBillCurves(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine(t, cfg)

	// Two base workers in round 3 (rate 2).
	p := &Player{Workers: 2}
	b := e.wageBill(p, 2)
	require.Equal(t, 4, b.Net)

	// A third worker pays the hired curve.
	p = &Player{Workers: 3}
	b = e.wageBill(p, 2)
	require.Equal(t, 2*2+3, b.Net)

	// Pending hires are paid from the round they were hired.
	p = &Player{Workers: 2, PendingHires: 1}
	b = e.wageBill(p, 2)
	require.Equal(t, 2*2+3, b.Net)
	require.Equal(t, 3, b.WorkersPaid)
}

func TestWageBillDiscounts(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine(t, cfg)

	p := &Player{Workers: 2, PendingHires: 1, HiredThisRound: 1, RecruitUpgrade: RecruitWageDiscount}
	b := e.wageBill(p, 2)
	require.Equal(t, 1, b.Discount)
	require.Equal(t, 2*2+3-1, b.Net)

	p.applyUpgrade(WitchBarrier)
	b = e.wageBill(p, 2)
	require.Equal(t, 2, b.Discount)

	// The bill never goes negative.
	p = &Player{Workers: 1}
	p.applyUpgrade(WitchBarrier)
	b = e.wageBill(p, 0)
	require.Equal(t, 0, b.Net)
}

func TestSettleWagesShortfallPenalty(t *testing.T) {
	// Net bill 7 against 4 gold under a 2x multiplier: paid 4, shortfall 3,
	// gold zeroed, 6 VP charged.
	cfg := DefaultConfig()
	cfg.DebtMultiplier = 2
	e := testEngine(t, cfg)

	p := &Player{Gold: 4, VP: 10}
	b := WageBill{Net: 7}
	e.settleWages(p, &b)

	require.Equal(t, 4, b.Paid)
	require.Equal(t, 3, b.Shortfall)
	require.Equal(t, 6, b.Penalty)
	require.Equal(t, 0, p.Gold)
	require.Equal(t, 4, p.VP)
}

func TestSettleWagesCovered(t *testing.T) {
	e := testEngine(t, DefaultConfig())
	p := &Player{Gold: 9, VP: 5}
	b := WageBill{Net: 7}
	e.settleWages(p, &b)
	require.Equal(t, 7, b.Paid)
	require.Zero(t, b.Shortfall)
	require.Equal(t, 2, p.Gold)
	require.Equal(t, 5, p.VP)
}

func TestDebtPenaltyPolicies(t *testing.T) {
	tests := []struct {
		name      string
		cfg       func(*Config)
		shortfall int
		want      int
	}{
		{
			name:      "multiplier",
			cfg:       func(c *Config) { c.DebtMultiplier = 2 },
			shortfall: 3,
			want:      6,
		},
		{
			name:      "multiplier capped",
			cfg:       func(c *Config) { c.DebtMultiplier = 2; c.DebtCap = 5 },
			shortfall: 4,
			want:      5,
		},
		{
			name: "tiered first match",
			cfg: func(c *Config) {
				c.DebtPolicy = DebtTiered
				c.DebtTiers = []DebtTier{{UpTo: 2, Penalty: 1}, {UpTo: 5, Penalty: 4}}
			},
			shortfall: 2,
			want:      1,
		},
		{
			name: "tiered beyond last",
			cfg: func(c *Config) {
				c.DebtPolicy = DebtTiered
				c.DebtTiers = []DebtTier{{UpTo: 2, Penalty: 1}, {UpTo: 5, Penalty: 4}}
			},
			shortfall: 9,
			want:      4,
		},
		{
			name:      "no shortfall no penalty",
			cfg:       func(c *Config) { c.DebtMultiplier = 3 },
			shortfall: 0,
			want:      0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.cfg(&cfg)
			e := testEngine(t, cfg)
			require.Equal(t, tt.want, e.debtPenalty(tt.shortfall))
		})
	}
}

func TestResolveActions(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine(t, cfg)

	p := &Player{Workers: 3, Gold: 1}
	e.resolveActions(p, []ActionTag{ActionTrade, ActionHunt, ActionPray}, "")
	require.Equal(t, 1+2, p.Gold)
	require.Equal(t, 1, p.VP)
	require.Equal(t, 1, p.Grace)

	// Recruit queues hires without activating them.
	e.resolveActions(p, []ActionTag{ActionRecruit}, "")
	require.Equal(t, 1, p.PendingHires)
	require.Equal(t, 3, p.Workers)

	// The double-recruit upgrade queues two per action.
	p.RecruitUpgrade = RecruitDouble
	e.resolveActions(p, []ActionTag{ActionRecruit}, "")
	require.Equal(t, 3, p.PendingHires)
	require.Equal(t, 3, p.HiredThisRound)
}

func TestResolveBonusActions(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine(t, cfg)

	p := &Player{Gold: 3, Workers: 2}
	e.resolveActions(p, nil, ActionConvertGold)
	require.Equal(t, 1, p.Gold)
	require.Equal(t, 2, p.Grace)
	require.True(t, p.UsedBonusAction)

	p2 := &Player{Workers: 2}
	e.resolveActions(p2, nil, ActionConvertWorker)
	require.Equal(t, 1, p2.Workers)
	require.Equal(t, 3, p2.Grace)
}

func TestLegalBonusActions(t *testing.T) {
	cfg := DefaultConfig()
	e := testEngine(t, cfg)

	p := &Player{Gold: 5, Workers: 2, GoldConvertUnlocked: true, WorkerConvertUnlocked: true}
	require.ElementsMatch(t, []ActionTag{ActionConvertGold, ActionConvertWorker}, e.legalBonusActions(p))

	// Once per round.
	p.UsedBonusAction = true
	require.Empty(t, e.legalBonusActions(p))

	// Short on gold; the last worker cannot be retired.
	p2 := &Player{Gold: 1, Workers: 1, GoldConvertUnlocked: true, WorkerConvertUnlocked: true}
	require.Empty(t, e.legalBonusActions(p2))

	// Locked without the witches.
	p3 := &Player{Gold: 9, Workers: 4}
	require.Empty(t, e.legalBonusActions(p3))
}

func TestGraceThresholdBonus(t *testing.T) {
	thresholds := DefaultConfig().Grace.Thresholds

	tests := []struct {
		points int
		want   int
	}{
		{0, 0},
		{4, 0},
		{5, 2},
		{9, 2},
		{10, 5},
		{13, 8},
		// Only the single highest threshold pays; bonuses never stack.
		{14, 8},
		{100, 8},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, graceThresholdBonus(thresholds, tt.points), "points %d", tt.points)
	}
}
