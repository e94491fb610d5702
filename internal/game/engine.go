package game

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/coven/internal/deck"
	"github.com/lox/coven/internal/randutil"
)

// StepResult is the outcome of one Step call.
type StepResult int

const (
	// Continue means one atomic sub-step completed; call Step again.
	Continue StepResult = iota
	// Waiting means an InputRequest is pending; Step is a no-op until
	// ProvideInput resolves it.
	Waiting
	// Ended means the game is over and the engine is immutable.
	Ended
)

func (r StepResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Waiting:
		return "waiting"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Phase tags the engine's position in the round graph.
type Phase string

const (
	PhaseRoundStart      Phase = "round_start"
	PhaseDeclaration     Phase = "declaration"
	PhaseHandSwap        Phase = "grace_hand_swap"
	PhaseSeal            Phase = "seal"
	PhaseTrick           Phase = "trick"
	PhaseUpgradePick     Phase = "upgrade_pick"
	PhaseFourthPlace     Phase = "fourth_place_bonus"
	PhaseWorkerPlacement Phase = "worker_placement"
	PhaseWagePayment     Phase = "wage_payment"
	PhaseGameEnd         Phase = "game_end"
)

// roundState is the per-round scratch state, rebuilt each round.
type roundState struct {
	setIndex int
	leader   int

	fullHands [][]deck.Card // per seat, before sealing
	sealed    [][]deck.Card
	hands     [][]deck.Card // playable hands during trick play

	trickNo     int
	trickLeader int
	order       []int // seat order for the current trick
	orderPos    int
	plays       []SeatCard
	lead        *deck.Card

	history []TrickRecord
}

// Engine is the resumable turn engine. It is single-threaded: all state is
// owned by the engine and callers only see copies through State and
// InputRequest contexts.
//
// The suspension point is explicit state: a phase tag, a seat cursor, and
// at most one pending InputRequest. This lets the engine be driven across
// call stacks (or HTTP requests) without any goroutine parked inside it.
type Engine struct {
	cfg    Config
	logger *log.Logger
	sink   EventSink
	clock  quartz.Clock

	players []*Player
	// shared is the engine-level stream for shuffles and reveals. It
	// advances at fixed points regardless of who controls each seat.
	shared   *rand.Rand
	upgrades *UpgradeDeck
	stock    *deck.Deck

	round     int // 0-based
	phase     Phase
	cursor    int // seat cursor within per-seat phases
	rs        *roundState
	revealed  []UpgradeCard
	pickOrder []int

	pending *InputRequest
	recent  []Event
	failed  error
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger; the default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSink attaches the append-only event sink.
func WithSink(s EventSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithClock substitutes the clock used for event timestamps.
func WithClock(c quartz.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New builds an engine from a validated config, a master seed, and one spec
// per seat. Player streams and the shared stream are all derived from the
// master seed, so a seed plus an ordered external-response script replays
// bit-identically.
func New(cfg Config, seed int64, specs []PlayerSpec, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(specs) != cfg.Players {
		return nil, configErr("players", "config wants %d players, got %d specs", cfg.Players, len(specs))
	}

	e := &Engine{
		cfg:    cfg,
		logger: log.New(io.Discard),
		clock:  quartz.NewReal(),
		shared: randutil.Derive(seed, 0),
		phase:  PhaseRoundStart,
	}
	for _, opt := range opts {
		opt(e)
	}

	for i, spec := range specs {
		p := &Player{
			Seat:       i,
			Name:       spec.Name,
			Controller: spec.Controller,
			Gold:       cfg.StartingGold,
			Workers:    cfg.StartingWorkers,
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("P%d", i+1)
		}
		if spec.Controller == Bot {
			p.rng = randutil.Derive(seed, i+1)
			strat, err := NewStrategy(spec.Strategy)
			if err != nil {
				return nil, err
			}
			p.strategy = strat
		}
		e.players = append(e.players, p)
	}

	e.emit(EventGameStart, map[string]any{
		"seed":    seed,
		"players": e.playerNames(),
		"rounds":  cfg.Rounds,
	})
	e.upgrades = NewUpgradeDeck(e.shared)
	e.dealSets()
	return e, nil
}

// dealSets builds and shuffles the stock, then deals every round's hand up
// front. The remainder stays as the shared stock for grace hand swaps.
func (e *Engine) dealSets() {
	e.stock = deck.New(deck.Build(e.cfg.MaxRank, e.cfg.DeckCopies, e.cfg.TrumpCards))
	e.stock.Shuffle(e.shared)

	perPlayer := e.cfg.SetsPerGame * e.cfg.HandSize
	hands := map[string][]string{}
	for _, p := range e.players {
		cards := e.stock.DealN(perPlayer)
		p.sets = make([][]deck.Card, e.cfg.SetsPerGame)
		for s := 0; s < e.cfg.SetsPerGame; s++ {
			set := make([]deck.Card, e.cfg.HandSize)
			copy(set, cards[s*e.cfg.HandSize:(s+1)*e.cfg.HandSize])
			p.sets[s] = set
		}
		hands[p.Name] = cardStrings(cards)
	}
	e.emit(EventDealHands, map[string]any{
		"cards_per_set": e.cfg.HandSize,
		"hands":         hands,
	})
}

// Step performs exactly one atomic unit of game logic. It returns Waiting
// without doing anything while an InputRequest is outstanding, and Ended
// once the game is over or the engine has failed an invariant check.
func (e *Engine) Step() (StepResult, error) {
	if e.failed != nil {
		return Ended, e.failed
	}
	if e.phase == PhaseGameEnd {
		return Ended, nil
	}
	if e.pending != nil {
		return Waiting, nil
	}

	if err := e.advance(); err != nil {
		var inv *InvariantError
		if errors.As(err, &inv) {
			e.failed = err
			return Ended, err
		}
		return Ended, err
	}

	if e.pending != nil {
		return Waiting, nil
	}
	if e.phase == PhaseGameEnd {
		return Ended, nil
	}
	return Continue, nil
}

// PendingInput returns a copy of the outstanding request, or nil.
func (e *Engine) PendingInput() *InputRequest {
	if e.pending == nil {
		return nil
	}
	req := *e.pending
	return &req
}

// ProvideInput resolves the pending request. The response is validated
// with the same legality functions the bot path uses; on InvalidInputError
// the engine state is unchanged and the request stays pending.
func (e *Engine) ProvideInput(resp InputResponse) error {
	if e.failed != nil {
		return e.failed
	}
	if e.pending == nil {
		return fmt.Errorf("no pending input")
	}
	req := e.pending
	if err := e.apply(req, resp); err != nil {
		var inv *InvariantError
		if errors.As(err, &inv) {
			e.failed = err
		}
		return err
	}
	e.pending = nil
	return nil
}

// decide routes one decision: bots answer immediately from their strategy,
// external seats park the request and suspend the engine. Both paths feed
// the identical request into the identical apply function.
func (e *Engine) decide(req *InputRequest) error {
	p := e.players[req.Seat]
	if p.Controller == External {
		e.pending = req
		return nil
	}
	resp := p.strategy.Decide(req, p.rng)
	if err := e.apply(req, resp); err != nil {
		return invariant("bot_decision", "%s (%s) produced an illegal %s response: %v",
			p.Name, p.strategy.Name(), req.Kind, err)
	}
	return nil
}

// apply validates and applies one response for one request kind. It must
// not mutate anything before validation succeeds.
func (e *Engine) apply(req *InputRequest, resp InputResponse) error {
	switch req.Kind {
	case InputDeclare:
		return e.applyDeclare(req.Seat, resp.Declare)
	case InputSeal:
		return e.applySeal(req.Seat, resp.Seal)
	case InputChooseCard:
		return e.applyPlay(req.Seat, resp)
	case InputGraceHandSwap:
		return e.applyHandSwap(req.Seat, resp.Swap)
	case InputUpgradePick:
		return e.applyUpgradePick(req.Seat, resp)
	case InputFourthPlaceBonus:
		return e.applyFourthPlace(req.Seat, resp.Bonus)
	case InputWorkerActions:
		return e.applyWorkerActions(req.Seat, resp)
	case InputDebtOffset:
		return e.applyDebtOffset(req.Seat, resp.OffsetGold)
	default:
		return invariant("apply", "unknown input kind %q", req.Kind)
	}
}

// view builds the PlayerView embedded in every request.
func (e *Engine) view(p *Player) PlayerView {
	return PlayerView{
		Seat:         p.Seat,
		Name:         p.Name,
		Round:        e.round,
		Gold:         p.Gold,
		VP:           p.VP,
		Grace:        p.Grace,
		Workers:      p.Workers,
		PendingHires: p.PendingHires,
		Declared:     p.Declared,
		TricksWon:    p.TricksWon,
		TradeLevel:   p.TradeLevel,
		HuntLevel:    p.HuntLevel,
		TradeYield:   p.TradeYield(),
		HuntYield:    p.HuntYield(),
		WitchCount:   p.WitchCount(),
		ExpectedWage: e.expectedWage(p, e.round),
	}
}

func (e *Engine) playerNames() []string {
	names := make([]string, len(e.players))
	for i, p := range e.players {
		names[i] = p.Name
	}
	return names
}

func cardStrings(cards []deck.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
