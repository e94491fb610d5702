package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lox/coven/internal/deck"
	"github.com/lox/coven/internal/game"
)

// PlayCmd drives one game to completion. All seats are bots by default; a
// human seat suspends the engine and reads decisions from stdin.
type PlayCmd struct {
	Config     string   `kong:"help='HCL config file (optional)'"`
	Seed       *int64   `kong:"help='Master RNG seed (random when omitted)'"`
	Strategies []string `kong:"default='balanced,conservative,aggressive,debtavoid',help='Bot strategy per seat'"`
	Human      *int     `kong:"help='Seat index (0-based) controlled from stdin'"`
	Events     string   `kong:"help='Append events as JSONL to this file'"`
	Debug      bool     `kong:"help='Enable debug logging'"`
}

func (c *PlayCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := game.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	logger.Info("starting game", "seed", seed)

	if len(c.Strategies) != cfg.Players {
		return fmt.Errorf("need %d strategies, got %d", cfg.Players, len(c.Strategies))
	}
	specs := make([]game.PlayerSpec, cfg.Players)
	for i := range specs {
		specs[i] = game.PlayerSpec{
			Name:       fmt.Sprintf("%s-%d", c.Strategies[i], i+1),
			Controller: game.Bot,
			Strategy:   c.Strategies[i],
		}
		if c.Human != nil && *c.Human == i {
			specs[i] = game.PlayerSpec{Name: "you", Controller: game.External}
		}
	}

	opts := []game.Option{game.WithLogger(logger)}
	if c.Events != "" {
		sink, closeSink, err := newJSONLSink(c.Events)
		if err != nil {
			return err
		}
		defer closeSink()
		opts = append(opts, game.WithSink(sink))
	}

	eng, err := game.New(cfg, seed, specs, opts...)
	if err != nil {
		return err
	}

	prompter := &stdinPrompter{in: bufio.NewScanner(os.Stdin), out: os.Stdout}
	for {
		res, err := eng.Step()
		if err != nil {
			return err
		}
		switch res {
		case game.Ended:
			printFinal(eng.State())
			return nil
		case game.Waiting:
			if err := prompter.resolve(eng); err != nil {
				return err
			}
		}
	}
}

func printFinal(snap game.Snapshot) {
	fmt.Println("final standings:")
	for _, p := range snap.Players {
		fmt.Printf("  %-16s vp=%-4d gold=%-3d grace=%d\n", p.Name, p.VP, p.Gold, p.Grace)
	}
}

// stdinPrompter turns pending InputRequests into stdin prompts, retrying
// until the engine accepts the response.
type stdinPrompter struct {
	in  *bufio.Scanner
	out *os.File
}

func (p *stdinPrompter) resolve(eng *game.Engine) error {
	for {
		req := eng.PendingInput()
		if req == nil {
			return nil
		}
		resp, err := p.prompt(req)
		if err != nil {
			return err
		}
		if err := eng.ProvideInput(resp); err != nil {
			var inv *game.InvalidInputError
			if errors.As(err, &inv) {
				fmt.Fprintf(p.out, "rejected: %s\n", inv.Reason)
				continue
			}
			return err
		}
		return nil
	}
}

func (p *stdinPrompter) prompt(req *game.InputRequest) (game.InputResponse, error) {
	pv := req.Player
	fmt.Fprintf(p.out, "\n[round %d] %s  gold=%d vp=%d grace=%d workers=%d wage=%d\n",
		pv.Round+1, pv.Name, pv.Gold, pv.VP, pv.Grace, pv.Workers, pv.ExpectedWage)

	switch req.Kind {
	case game.InputDeclare:
		fmt.Fprintf(p.out, "hand: %s\n", deck.Format(req.Hand))
		line, err := p.read(fmt.Sprintf("declare tricks [%d-%d]: ", req.DeclareMin, req.DeclareMax))
		if err != nil {
			return game.InputResponse{}, err
		}
		n, _ := strconv.Atoi(line)
		return game.InputResponse{Declare: n}, nil

	case game.InputSeal:
		fmt.Fprintf(p.out, "hand: %s\n", deck.Format(req.Hand))
		line, err := p.read(fmt.Sprintf("seal %d cards (e.g. S05 H12): ", req.SealCount))
		if err != nil {
			return game.InputResponse{}, err
		}
		cards, err := deck.ParseCards(line)
		if err != nil {
			fmt.Fprintf(p.out, "rejected: %v\n", err)
			return p.prompt(req)
		}
		return game.InputResponse{Seal: cards}, nil

	case game.InputChooseCard:
		fmt.Fprintf(p.out, "hand: %s  legal: %s\n", deck.Format(req.Hand), deck.Format(req.Legal))
		if req.Lead != nil {
			fmt.Fprintf(p.out, "lead: %s\n", req.Lead)
		}
		hint := "play card: "
		if req.CanDefer {
			hint = fmt.Sprintf("play card (or 'defer' for %d grace): ", req.DeferCost)
		}
		line, err := p.read(hint)
		if err != nil {
			return game.InputResponse{}, err
		}
		if strings.EqualFold(line, "defer") {
			return game.InputResponse{Defer: true}, nil
		}
		card, err := deck.ParseCard(line)
		if err != nil {
			fmt.Fprintf(p.out, "rejected: %v\n", err)
			return p.prompt(req)
		}
		return game.InputResponse{Card: card}, nil

	case game.InputGraceHandSwap:
		fmt.Fprintf(p.out, "hand: %s\n", deck.Format(req.Hand))
		line, err := p.read(fmt.Sprintf("swap a card for %d grace (enter to skip): ", req.SwapCost))
		if err != nil {
			return game.InputResponse{}, err
		}
		if line == "" {
			return game.InputResponse{}, nil
		}
		card, err := deck.ParseCard(line)
		if err != nil {
			fmt.Fprintf(p.out, "rejected: %v\n", err)
			return p.prompt(req)
		}
		return game.InputResponse{Swap: &card}, nil

	case game.InputUpgradePick:
		for i, card := range req.Revealed {
			marker := " "
			if !req.Eligible[i] {
				marker = "x"
			}
			fmt.Fprintf(p.out, "  %s %s\n", marker, card)
		}
		line, err := p.read(fmt.Sprintf("pick a card (or 'gold' for %d): ", req.TakeGold))
		if err != nil {
			return game.InputResponse{}, err
		}
		if strings.EqualFold(line, "gold") {
			return game.InputResponse{TakeGold: true}, nil
		}
		return game.InputResponse{Upgrade: game.UpgradeCard(strings.ToUpper(line))}, nil

	case game.InputFourthPlaceBonus:
		line, err := p.read(fmt.Sprintf("rescue: 'gold' (+%d) or 'grace' (+%d): ",
			req.GoldOption, req.GraceOption))
		if err != nil {
			return game.InputResponse{}, err
		}
		return game.InputResponse{Bonus: game.BonusChoice(strings.ToLower(line))}, nil

	case game.InputWorkerActions:
		fmt.Fprintf(p.out, "actions: %v  bonus: %v\n", req.Actions, req.BonusActions)
		line, err := p.read(fmt.Sprintf("assign %d workers (e.g. TRADE HUNT [+CONVERT_GOLD]): ", req.WorkerCount))
		if err != nil {
			return game.InputResponse{}, err
		}
		var resp game.InputResponse
		for _, f := range strings.Fields(strings.ToUpper(line)) {
			if bonus, ok := strings.CutPrefix(f, "+"); ok {
				resp.BonusAction = game.ActionTag(bonus)
				continue
			}
			resp.Actions = append(resp.Actions, game.ActionTag(f))
		}
		return resp, nil

	case game.InputDebtOffset:
		line, err := p.read(fmt.Sprintf("shortfall %d; cover how much with grace (%d each): ",
			req.Shortfall, req.OffsetCost))
		if err != nil {
			return game.InputResponse{}, err
		}
		n, _ := strconv.Atoi(line)
		return game.InputResponse{OffsetGold: n}, nil
	}
	return game.InputResponse{}, fmt.Errorf("unhandled input kind %q", req.Kind)
}

func (p *stdinPrompter) read(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("stdin closed")
	}
	return strings.TrimSpace(p.in.Text()), nil
}
