package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/coven/internal/deck"
	"github.com/lox/coven/internal/randutil"
)

func TestNewStrategy(t *testing.T) {
	for _, name := range StrategyNames {
		s, err := NewStrategy(name)
		require.NoError(t, err)
		require.Equal(t, name, s.Name())
	}

	s, err := NewStrategy("")
	require.NoError(t, err)
	require.Equal(t, "balanced", s.Name())

	_, err = NewStrategy("bogus")
	require.Error(t, err)
}

// Every strategy must answer every request kind with a legal response;
// the engine treats anything else as a fatal invariant failure.
func TestStrategiesProduceLegalResponses(t *testing.T) {
	hand := func(s string) []deck.Card {
		cards, err := deck.ParseCards(s)
		require.NoError(t, err)
		return cards
	}
	view := PlayerView{Gold: 3, Grace: 4, Workers: 2, Declared: 1, ExpectedWage: 4, TradeYield: 2}

	requests := []*InputRequest{
		{
			Kind: InputDeclare, Player: view,
			Hand: hand("S12 H03 T C07 D11 S02"), DeclareMin: 0, DeclareMax: 4,
		},
		{
			Kind: InputSeal, Player: view,
			Hand: hand("S12 H03 T C07 D11 S02"), SealCount: 2,
		},
		{
			Kind: InputChooseCard, Player: view,
			Hand: hand("S12 S02 H03"), Legal: hand("S12 S02"),
			CanDefer: true, DeferCost: 1,
		},
		{
			Kind: InputGraceHandSwap, Player: view,
			Hand: hand("S12 H03 C02"), SwapCost: 1,
		},
		{
			Kind: InputUpgradePick, Player: view,
			Revealed: []UpgradeCard{UpgradeTrade, UpgradeHunt, WitchRitual},
			Eligible: []bool{true, false, true}, TakeGold: 2,
		},
		{
			Kind: InputFourthPlaceBonus, Player: view,
			GoldOption: 2, GraceOption: 2,
		},
		{
			Kind: InputWorkerActions, Player: view,
			WorkerCount: 3,
			Actions:     []ActionTag{ActionTrade, ActionHunt, ActionRecruit, ActionPray},
			BonusActions: []ActionTag{ActionConvertGold},
		},
		{
			Kind: InputDebtOffset, Player: view,
			Shortfall: 3, OffsetCost: 1,
		},
	}

	for _, name := range StrategyNames {
		name := name
		t.Run(name, func(t *testing.T) {
			s, err := NewStrategy(name)
			require.NoError(t, err)
			rng := randutil.New(1)

			for _, req := range requests {
				for trial := 0; trial < 20; trial++ {
					resp := s.Decide(req, rng)
					switch req.Kind {
					case InputDeclare:
						assert.GreaterOrEqual(t, resp.Declare, req.DeclareMin)
						assert.LessOrEqual(t, resp.Declare, req.DeclareMax)
					case InputSeal:
						require.Len(t, resp.Seal, req.SealCount)
						remaining := append([]deck.Card(nil), req.Hand...)
						for _, c := range resp.Seal {
							var ok bool
							remaining, ok = removeCard(remaining, c)
							require.True(t, ok, "sealed card %s not in hand", c)
						}
					case InputChooseCard:
						if !resp.Defer {
							assert.True(t, containsCard(req.Legal, resp.Card),
								"played %s outside legal set", resp.Card)
						}
					case InputGraceHandSwap:
						if resp.Swap != nil {
							assert.True(t, containsCard(req.Hand, *resp.Swap))
						}
					case InputUpgradePick:
						if !resp.TakeGold {
							found := false
							for i, c := range req.Revealed {
								if c == resp.Upgrade && req.Eligible[i] {
									found = true
								}
							}
							assert.True(t, found, "picked ineligible card %s", resp.Upgrade)
						}
					case InputFourthPlaceBonus:
						assert.Contains(t, []BonusChoice{BonusGold, BonusGrace}, resp.Bonus)
					case InputWorkerActions:
						require.Len(t, resp.Actions, req.WorkerCount)
						for _, a := range resp.Actions {
							assert.True(t, containsAction(req.Actions, a), "action %s not offered", a)
						}
						if resp.BonusAction != "" {
							assert.True(t, containsAction(req.BonusActions, resp.BonusAction))
						}
					case InputDebtOffset:
						assert.GreaterOrEqual(t, resp.OffsetGold, 0)
						assert.LessOrEqual(t, resp.OffsetGold, req.Shortfall)
						assert.LessOrEqual(t, resp.OffsetGold*req.OffsetCost, req.Player.Grace)
					}
				}
			}
		})
	}
}

func TestDeclareEstimates(t *testing.T) {
	mk := func(s string) []deck.Card {
		cards, _ := deck.ParseCards(s)
		return cards
	}
	req := func(hand string) *InputRequest {
		return &InputRequest{Kind: InputDeclare, Hand: mk(hand), DeclareMin: 0, DeclareMax: 4}
	}
	rng := randutil.New(1)

	aggressive, _ := NewStrategy("aggressive")
	conservative, _ := NewStrategy("conservative")

	strong := req("T S13 H05 C04 D03 S02")
	weak := req("S02 H03 C04 D05 S06 H07")

	aHi := aggressive.Decide(strong, rng).Declare
	cHi := conservative.Decide(strong, rng).Declare
	assert.Greater(t, aHi, cHi)

	assert.Zero(t, conservative.Decide(weak, rng).Declare)
}

func TestChooseCardChasesDeclaration(t *testing.T) {
	legal, _ := deck.ParseCards("S02 S08 S13")
	rng := randutil.New(1)
	s, _ := NewStrategy("balanced")

	// Short of the declaration: play the strongest card.
	req := &InputRequest{
		Kind:   InputChooseCard,
		Player: PlayerView{Declared: 2, TricksWon: 0},
		Legal:  legal,
	}
	resp := s.Decide(req, rng)
	require.Equal(t, legal[2], resp.Card)

	// Declaration met: dump a weak card.
	req.Player.TricksWon = 2
	for i := 0; i < 10; i++ {
		resp = s.Decide(req, rng)
		require.NotEqual(t, legal[2], resp.Card)
	}
}

func TestDebtAvoidCoversWages(t *testing.T) {
	s, _ := NewStrategy("debtavoid")
	rng := randutil.New(1)

	req := &InputRequest{
		Kind:        InputWorkerActions,
		Player:      PlayerView{Gold: 0, ExpectedWage: 4, TradeYield: 2},
		WorkerCount: 2,
		Actions:     []ActionTag{ActionTrade, ActionHunt, ActionRecruit, ActionPray},
	}
	resp := s.Decide(req, rng)
	require.Equal(t, []ActionTag{ActionTrade, ActionTrade}, resp.Actions)
}
