package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/coven/internal/deck"
)

// bareEngine builds an engine with hand-placed state, bypassing New, for
// exercising single phase transitions.
func bareEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e := &Engine{
		cfg:    cfg,
		clock:  quartz.NewMock(t),
		logger: log.New(io.Discard),
		phase:  PhaseRoundStart,
	}
	for i := 0; i < cfg.Players; i++ {
		e.players = append(e.players, &Player{
			Seat:    i,
			Name:    []string{"A", "B", "C", "D"}[i],
			Gold:    cfg.StartingGold,
			Workers: cfg.StartingWorkers,
		})
	}
	return e
}

func TestRankForUpgrade(t *testing.T) {
	tests := []struct {
		name    string
		leader  int
		tricks  [4]int
		witches [4]int
		want    []int
	}{
		{
			name:   "tricks dominate",
			leader: 0,
			tricks: [4]int{0, 3, 1, 0},
			want:   []int{1, 2, 0, 3},
		},
		{
			name:    "witches break trick ties",
			leader:  2,
			tricks:  [4]int{1, 1, 1, 1},
			witches: [4]int{1, 0, 0, 0},
			want:    []int{0, 2, 3, 1},
		},
		{
			name:   "leader proximity breaks full ties",
			leader: 3,
			tricks: [4]int{1, 1, 1, 1},
			want:   []int{3, 0, 1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := bareEngine(t, DefaultConfig())
			e.rs = &roundState{leader: tt.leader}
			for i, p := range e.players {
				p.TricksWon = tt.tricks[i]
				if tt.witches[i] > 0 {
					p.Held = append(p.Held, WitchBlackroad)
				}
			}
			require.Equal(t, tt.want, e.rankForUpgrade())
		})
	}
}

// fullRoundState fabricates a consistent end-of-tricks round: empty
// playable hands, two sealed cards per seat, and four recorded tricks with
// one play per seat each.
func fullRoundState(cfg Config) *roundState {
	rs := &roundState{
		leader:  0,
		trickNo: cfg.TricksPerRound,
		sealed:  make([][]deck.Card, cfg.Players),
		hands:   make([][]deck.Card, cfg.Players),
	}
	filler := deck.NewCard(deck.Spades, 2)
	for seat := 0; seat < cfg.Players; seat++ {
		rs.sealed[seat] = []deck.Card{filler, filler}
	}
	for n := 0; n < cfg.TricksPerRound; n++ {
		tr := TrickRecord{LeadSuit: deck.Spades, Winner: 0}
		for seat := 0; seat < cfg.Players; seat++ {
			tr.Plays = append(tr.Plays, SeatCard{Seat: seat, Card: filler})
		}
		rs.history = append(rs.history, tr)
	}
	return rs
}

func TestFinishTricksBonuses(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	e.rs = fullRoundState(cfg)

	// Exact declaration pays the bonus.
	e.players[0].Declared, e.players[0].TricksWon = 2, 2
	// Exact zero pays the bonus and the grace kicker.
	e.players[1].Declared, e.players[1].TricksWon = 0, 0
	// A miss pays nothing.
	e.players[2].Declared, e.players[2].TricksWon = 3, 1
	// Ritual sharpens the bonus.
	e.players[3].Declared, e.players[3].TricksWon = 1, 1
	e.players[3].Held = append(e.players[3].Held, WitchRitual)

	require.NoError(t, e.finishTricks())

	assert.Equal(t, 1, e.players[0].VP)
	assert.Equal(t, 1, e.players[1].VP)
	assert.Equal(t, cfg.Grace.ZeroDeclareBonus, e.players[1].Grace)
	assert.Equal(t, 0, e.players[2].VP)
	assert.Equal(t, 2, e.players[3].VP)

	assert.Equal(t, PhaseUpgradePick, e.phase)
	assert.Zero(t, e.cursor)
	assert.Len(t, e.pickOrder, 4)
}

func TestResolveFinalTrickClearsInFlightPlays(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	e.stock = deck.New(nil)

	// Three tricks recorded, the fourth fully played but not yet resolved.
	rs := fullRoundState(cfg)
	last := rs.history[len(rs.history)-1]
	rs.history = rs.history[:len(rs.history)-1]
	rs.trickNo = cfg.TricksPerRound - 1
	rs.plays = last.Plays
	lead := last.Plays[0].Card
	rs.lead = &lead
	e.rs = rs

	// Resolution must count the final trick exactly once: the round holds
	// hands(0) + sealed(2) + history(4) = 6 cards per seat.
	require.NoError(t, e.resolveTrick())
	assert.Equal(t, PhaseUpgradePick, e.phase)
	assert.Len(t, e.rs.history, cfg.TricksPerRound)
	assert.Nil(t, e.rs.plays)
	assert.Nil(t, e.rs.lead)

	// The snapshot no longer shows a stale completed trick.
	assert.Nil(t, e.State().CurrentTrick)
}

func TestFinishTricksCardConservation(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	e.rs = fullRoundState(cfg)

	// Vanish one of seat 2's sealed cards.
	e.rs.sealed[2] = e.rs.sealed[2][:1]

	err := e.finishTricks()
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	require.Equal(t, "card_conservation", inv.Check)
}

func TestEndRoundActivatesHires(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	e.players[1].PendingHires = 2

	e.endRound()

	assert.Equal(t, 2, e.players[0].Workers)
	assert.Equal(t, 4, e.players[1].Workers)
	assert.Zero(t, e.players[1].PendingHires)
	assert.Equal(t, 1, e.round)
	assert.Equal(t, PhaseRoundStart, e.phase)
}

func TestEndRoundAfterLastRoundEndsGame(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	e.round = cfg.Rounds - 1

	e.endRound()
	require.Equal(t, PhaseGameEnd, e.phase)
}

func TestFinishGameScoring(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)

	// 14 grace crosses the 13 threshold for +8, not a stacked +15;
	// 7 gold converts to +2 at 3 gold per VP.
	e.players[0].VP, e.players[0].Grace, e.players[0].Gold = 10, 14, 7
	e.players[1].VP, e.players[1].Grace, e.players[1].Gold = 20, 4, 2
	e.players[2].VP, e.players[2].Grace, e.players[2].Gold = 3, 10, 0
	e.players[3].VP, e.players[3].Grace, e.players[3].Gold = 0, 0, 5

	e.finishGame()

	assert.Equal(t, 20, e.players[0].VP)
	assert.Equal(t, 20, e.players[1].VP)
	assert.Equal(t, 8, e.players[2].VP)
	assert.Equal(t, 1, e.players[3].VP)
	assert.Equal(t, PhaseGameEnd, e.phase)
}

func TestFinishGameGraceDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grace.Enabled = false
	e := bareEngine(t, cfg)
	e.players[0].VP, e.players[0].Grace = 5, 14

	e.finishGame()
	require.Equal(t, 5, e.players[0].VP)
}

func TestApplyDebtOffset(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)

	// Round 0: three workers bill 2*1 + 1*1 = 3 against 0 gold.
	p := e.players[0]
	p.Gold, p.Grace, p.Workers = 0, 5, 3

	// More than the shortfall is rejected.
	err := e.applyDebtOffset(0, 4)
	require.Error(t, err)
	require.Equal(t, 5, p.Grace)

	require.NoError(t, e.applyDebtOffset(0, 2))
	assert.Equal(t, 3, p.Grace)
	// Offset covered 2 of the 3 due; the rest is a shortfall penalty.
	assert.Equal(t, 0, p.Gold)
	assert.Equal(t, -1, p.VP)
	assert.Equal(t, 1, e.cursor)
}

func TestTurnOrderDefer(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	lead := deck.NewCard(deck.Hearts, 5)
	e.rs = &roundState{
		order:    []int{1, 2, 3, 0},
		orderPos: 1,
		lead:     &lead,
		plays:    []SeatCard{{Seat: 1, Card: lead}},
		hands:    make([][]deck.Card, 4),
	}
	e.players[2].Grace = 2

	require.NoError(t, e.applyPlay(2, InputResponse{Defer: true}))
	assert.Equal(t, []int{1, 3, 0, 2}, e.rs.order)
	assert.Equal(t, 1, e.rs.orderPos)
	assert.True(t, e.players[2].UsedTurnOrder)
	assert.Equal(t, 1, e.players[2].Grace)

	// Once per round.
	e.rs.order = []int{1, 3, 2, 0}
	err := e.applyPlay(2, InputResponse{Defer: true})
	var inv *InvalidInputError
	require.ErrorAs(t, err, &inv)
}

func TestDeferUnavailableAtLastPosition(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	lead := deck.NewCard(deck.Hearts, 5)
	e.rs = &roundState{
		order:    []int{0, 1, 2, 3},
		orderPos: 3,
		lead:     &lead,
		hands:    make([][]deck.Card, 4),
	}
	e.players[3].Grace = 5

	err := e.applyPlay(3, InputResponse{Defer: true})
	require.Error(t, err)
}

func TestApplyHandSwap(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	swapped := deck.NewCard(deck.Clubs, 2)
	kept := deck.NewCard(deck.Spades, 9)
	top := deck.NewCard(deck.Hearts, 12)
	e.stock = deck.New([]deck.Card{top, deck.NewCard(deck.Diamonds, 4)})
	e.rs = &roundState{fullHands: [][]deck.Card{{kept, swapped}, nil, nil, nil}}
	e.players[0].Grace = 2

	require.NoError(t, e.applyHandSwap(0, &swapped))
	assert.ElementsMatch(t, []deck.Card{kept, top}, e.rs.fullHands[0])
	assert.Equal(t, 1, e.players[0].Grace)
	assert.Equal(t, 1, e.cursor)

	// The swapped card went to the bottom of the stock.
	e.stock.Deal()
	bottom, _ := e.stock.Deal()
	assert.Equal(t, swapped, bottom)
}

func TestApplyHandSwapSkip(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	e.stock = deck.New(nil)
	e.rs = &roundState{fullHands: make([][]deck.Card, 4)}

	require.NoError(t, e.applyHandSwap(0, nil))
	assert.Equal(t, 1, e.cursor)
}

func TestApplyHandSwapRejectsForeignCard(t *testing.T) {
	cfg := DefaultConfig()
	e := bareEngine(t, cfg)
	e.stock = deck.New([]deck.Card{deck.NewCard(deck.Hearts, 1)})
	e.rs = &roundState{fullHands: [][]deck.Card{{deck.NewCard(deck.Spades, 9)}, nil, nil, nil}}
	e.players[0].Grace = 2

	notHeld := deck.NewCard(deck.Clubs, 13)
	err := e.applyHandSwap(0, &notHeld)
	var inv *InvalidInputError
	require.ErrorAs(t, err, &inv)
	assert.Zero(t, e.cursor)
}
