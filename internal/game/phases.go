package game

import (
	"sort"

	"github.com/lox/coven/internal/deck"
)

// advance runs exactly one atomic sub-step of the current phase. It either
// completes a bot decision, parks an InputRequest for an external seat, or
// performs one engine-driven transition.
func (e *Engine) advance() error {
	switch e.phase {
	case PhaseRoundStart:
		return e.stepRoundStart()
	case PhaseDeclaration:
		return e.stepDeclaration()
	case PhaseHandSwap:
		return e.stepHandSwap()
	case PhaseSeal:
		return e.stepSeal()
	case PhaseTrick:
		return e.stepTrick()
	case PhaseUpgradePick:
		return e.stepUpgradePick()
	case PhaseFourthPlace:
		return e.stepFourthPlace()
	case PhaseWorkerPlacement:
		return e.stepWorkerPlacement()
	case PhaseWagePayment:
		return e.stepWagePayment()
	default:
		return invariant("phase", "advance called in phase %q", e.phase)
	}
}

// --- round start -----------------------------------------------------------

func (e *Engine) stepRoundStart() error {
	n := e.cfg.Players
	e.rs = &roundState{
		setIndex:  e.round % e.cfg.SetsPerGame,
		leader:    e.round % n,
		fullHands: make([][]deck.Card, n),
		sealed:    make([][]deck.Card, n),
		hands:     make([][]deck.Card, n),
	}
	for _, p := range e.players {
		p.resetRound()
		hand := make([]deck.Card, e.cfg.HandSize)
		copy(hand, p.sets[e.rs.setIndex])
		e.rs.fullHands[p.Seat] = hand

		if e.cfg.Grace.Enabled && p.holds(WitchRitual) {
			p.addGrace(1)
		}
	}

	e.revealed = e.upgrades.Reveal(e.cfg.RevealCount, e.shared)

	e.logger.Debug("round started",
		"round", e.round+1, "set", e.rs.setIndex+1, "leader", e.players[e.rs.leader].Name)
	e.emit(EventRoundStart, map[string]any{
		"round":  e.round + 1,
		"set":    e.rs.setIndex + 1,
		"leader": e.players[e.rs.leader].Name,
	})
	e.emit(EventRevealUpgrades, map[string]any{
		"round":    e.round + 1,
		"revealed": upgradeStrings(e.revealed),
	})

	e.phase = PhaseDeclaration
	e.cursor = 0
	return nil
}

// --- declaration -----------------------------------------------------------

func (e *Engine) stepDeclaration() error {
	seat := e.cursor
	p := e.players[seat]
	req := &InputRequest{
		Kind:       InputDeclare,
		Seat:       seat,
		Player:     e.view(p),
		Hand:       copyCards(e.rs.fullHands[seat]),
		DeclareMin: e.cfg.DeclareMin,
		DeclareMax: e.cfg.DeclareMax,
	}
	return e.decide(req)
}

func (e *Engine) applyDeclare(seat, n int) error {
	if n < e.cfg.DeclareMin || n > e.cfg.DeclareMax {
		return invalidInput(InputDeclare, seat, "declaration %d outside [%d,%d]", n, e.cfg.DeclareMin, e.cfg.DeclareMax)
	}
	p := e.players[seat]
	p.Declared = n
	e.emit(EventDeclare, map[string]any{
		"round":    e.round + 1,
		"player":   p.Name,
		"declared": n,
	})

	e.cursor++
	if e.cursor == e.cfg.Players {
		e.cursor = 0
		if e.cfg.Grace.Enabled {
			e.phase = PhaseHandSwap
		} else {
			e.phase = PhaseSeal
		}
	}
	return nil
}

// --- grace hand swap -------------------------------------------------------

func (e *Engine) stepHandSwap() error {
	seat := e.cursor
	p := e.players[seat]
	if p.Grace < e.cfg.Grace.HandSwapCost || e.stock.Len() == 0 {
		e.advanceHandSwap()
		return nil
	}
	req := &InputRequest{
		Kind:     InputGraceHandSwap,
		Seat:     seat,
		Player:   e.view(p),
		Hand:     copyCards(e.rs.fullHands[seat]),
		SwapCost: e.cfg.Grace.HandSwapCost,
	}
	return e.decide(req)
}

func (e *Engine) applyHandSwap(seat int, swap *deck.Card) error {
	p := e.players[seat]
	if swap != nil {
		if !containsCard(e.rs.fullHands[seat], *swap) {
			return invalidInput(InputGraceHandSwap, seat, "card %s not in hand", swap)
		}
		if p.Grace < e.cfg.Grace.HandSwapCost {
			return invalidInput(InputGraceHandSwap, seat, "not enough grace")
		}
		drawn, ok := e.stock.Deal()
		if !ok {
			return invalidInput(InputGraceHandSwap, seat, "stock is empty")
		}
		hand, _ := removeCard(e.rs.fullHands[seat], *swap)
		e.rs.fullHands[seat] = append(hand, drawn)
		e.stock.PlaceBottom(*swap)
		p.addGrace(-e.cfg.Grace.HandSwapCost)
		e.emit(EventHandSwap, map[string]any{
			"round":   e.round + 1,
			"player":  p.Name,
			"swapped": swap.String(),
			"drawn":   drawn.String(),
		})
	}
	e.advanceHandSwap()
	return nil
}

func (e *Engine) advanceHandSwap() {
	e.cursor++
	if e.cursor == e.cfg.Players {
		e.cursor = 0
		e.phase = PhaseSeal
	}
}

// --- seal ------------------------------------------------------------------

func (e *Engine) stepSeal() error {
	seat := e.cursor
	p := e.players[seat]
	req := &InputRequest{
		Kind:      InputSeal,
		Seat:      seat,
		Player:    e.view(p),
		Hand:      copyCards(e.rs.fullHands[seat]),
		SealCount: e.cfg.HandSize - e.cfg.TricksPerRound,
	}
	return e.decide(req)
}

func (e *Engine) applySeal(seat int, cards []deck.Card) error {
	k := e.cfg.HandSize - e.cfg.TricksPerRound
	if len(cards) != k {
		return invalidInput(InputSeal, seat, "need exactly %d cards, got %d", k, len(cards))
	}
	remaining := copyCards(e.rs.fullHands[seat])
	for _, c := range cards {
		var ok bool
		remaining, ok = removeCard(remaining, c)
		if !ok {
			return invalidInput(InputSeal, seat, "card %s not in hand", c)
		}
	}
	if len(remaining) != e.cfg.TricksPerRound {
		return invariant("seal", "playable hand is %d cards, want %d", len(remaining), e.cfg.TricksPerRound)
	}

	p := e.players[seat]
	e.rs.sealed[seat] = copyCards(cards)
	e.rs.hands[seat] = remaining
	e.emit(EventSeal, map[string]any{
		"round":  e.round + 1,
		"player": p.Name,
		"sealed": cardStrings(cards),
	})

	e.cursor++
	if e.cursor == e.cfg.Players {
		e.cursor = 0
		e.rs.trickLeader = e.rs.leader
		e.initTrick()
		e.phase = PhaseTrick
	}
	return nil
}

// --- trick play ------------------------------------------------------------

func (e *Engine) initTrick() {
	n := e.cfg.Players
	e.rs.order = make([]int, n)
	for i := 0; i < n; i++ {
		e.rs.order[i] = (e.rs.trickLeader + i) % n
	}
	e.rs.orderPos = 0
	e.rs.plays = nil
	e.rs.lead = nil
}

// canDefer reports whether the seat at the current order position may pay
// grace to move itself to last position in this trick.
func (e *Engine) canDefer(seat int) bool {
	if !e.cfg.Grace.Enabled {
		return false
	}
	p := e.players[seat]
	return e.rs.orderPos > 0 &&
		e.rs.orderPos < len(e.rs.order)-1 &&
		!p.UsedTurnOrder &&
		p.Grace >= e.cfg.Grace.TurnOrderCost
}

func (e *Engine) stepTrick() error {
	seat := e.rs.order[e.rs.orderPos]
	p := e.players[seat]
	req := &InputRequest{
		Kind:       InputChooseCard,
		Seat:       seat,
		Player:     e.view(p),
		Hand:       copyCards(e.rs.hands[seat]),
		Legal:      LegalPlays(e.rs.hands[seat], e.rs.lead),
		Lead:       e.rs.lead,
		PlaysSoFar: append([]SeatCard(nil), e.rs.plays...),
		CanDefer:   e.canDefer(seat),
		DeferCost:  e.cfg.Grace.TurnOrderCost,
	}
	return e.decide(req)
}

func (e *Engine) applyPlay(seat int, resp InputResponse) error {
	p := e.players[seat]

	if resp.Defer {
		if !e.canDefer(seat) {
			return invalidInput(InputChooseCard, seat, "turn-order override not available")
		}
		pos := e.rs.orderPos
		e.rs.order = append(e.rs.order[:pos], e.rs.order[pos+1:]...)
		e.rs.order = append(e.rs.order, seat)
		p.UsedTurnOrder = true
		p.addGrace(-e.cfg.Grace.TurnOrderCost)
		e.emit(EventTurnOrderDefer, map[string]any{
			"round":  e.round + 1,
			"trick":  e.rs.trickNo + 1,
			"player": p.Name,
		})
		// orderPos stays put; the next seat has shifted into this slot.
		return nil
	}

	legal := LegalPlays(e.rs.hands[seat], e.rs.lead)
	if !containsCard(legal, resp.Card) {
		return invalidInput(InputChooseCard, seat, "card %s is not a legal play", resp.Card)
	}

	hand, _ := removeCard(e.rs.hands[seat], resp.Card)
	e.rs.hands[seat] = hand
	e.rs.plays = append(e.rs.plays, SeatCard{Seat: seat, Card: resp.Card})
	if e.rs.lead == nil {
		lead := resp.Card
		e.rs.lead = &lead
	}
	e.emit(EventPlay, map[string]any{
		"round":  e.round + 1,
		"trick":  e.rs.trickNo + 1,
		"player": p.Name,
		"card":   resp.Card.String(),
	})

	if e.rs.orderPos < len(e.rs.order)-1 {
		e.rs.orderPos++
		return nil
	}
	return e.resolveTrick()
}

func (e *Engine) resolveTrick() error {
	leadSuit := e.rs.lead.Suit
	winner := trickWinner(e.rs.plays, leadSuit)
	e.players[winner].TricksWon++
	e.rs.history = append(e.rs.history, TrickRecord{
		Plays:    e.rs.plays,
		LeadSuit: leadSuit,
		Winner:   winner,
	})
	e.rs.plays = nil
	e.rs.lead = nil
	e.logger.Debug("trick won",
		"round", e.round+1, "trick", e.rs.trickNo+1, "winner", e.players[winner].Name)
	e.emit(EventTrickWon, map[string]any{
		"round":  e.round + 1,
		"trick":  e.rs.trickNo + 1,
		"winner": e.players[winner].Name,
		"lead":   leadSuit.String(),
	})

	e.rs.trickNo++
	e.rs.trickLeader = winner
	if e.rs.trickNo < e.cfg.TricksPerRound {
		e.initTrick()
		return nil
	}
	return e.finishTricks()
}

func (e *Engine) finishTricks() error {
	if err := e.checkCardConservation(); err != nil {
		return err
	}
	for _, p := range e.players {
		if p.TricksWon == p.Declared {
			bonus := p.DeclarationBonus(e.cfg.DeclarationBonusVP)
			p.VP += bonus
			e.emit(EventDeclarationBonus, map[string]any{
				"round":    e.round + 1,
				"player":   p.Name,
				"declared": p.Declared,
				"bonus_vp": bonus,
			})
			if e.cfg.Grace.Enabled && p.Declared == 0 {
				p.addGrace(e.cfg.Grace.ZeroDeclareBonus)
				e.emit(EventZeroDeclareGrace, map[string]any{
					"round":  e.round + 1,
					"player": p.Name,
					"grace":  e.cfg.Grace.ZeroDeclareBonus,
				})
			}
		}
	}

	e.pickOrder = e.rankForUpgrade()
	e.phase = PhaseUpgradePick
	e.cursor = 0
	return nil
}

// rankForUpgrade orders seats by tricks won (desc), permanent witch count
// (desc), then seat proximity to the round leader (asc).
func (e *Engine) rankForUpgrade() []int {
	n := e.cfg.Players
	seats := make([]int, n)
	for i := range seats {
		seats[i] = i
	}
	dist := func(seat int) int {
		return (seat - e.rs.leader + n) % n
	}
	sort.SliceStable(seats, func(a, b int) bool {
		pa, pb := e.players[seats[a]], e.players[seats[b]]
		if pa.TricksWon != pb.TricksWon {
			return pa.TricksWon > pb.TricksWon
		}
		if pa.WitchCount() != pb.WitchCount() {
			return pa.WitchCount() > pb.WitchCount()
		}
		return dist(seats[a]) < dist(seats[b])
	})
	return seats
}

// --- upgrade pick ----------------------------------------------------------

func (e *Engine) stepUpgradePick() error {
	seat := e.pickOrder[e.cursor]
	p := e.players[seat]
	eligible := make([]bool, len(e.revealed))
	for i, c := range e.revealed {
		eligible[i] = p.CanTakeUpgrade(c)
	}
	req := &InputRequest{
		Kind:     InputUpgradePick,
		Seat:     seat,
		Player:   e.view(p),
		Revealed: append([]UpgradeCard(nil), e.revealed...),
		Eligible: eligible,
		TakeGold: e.cfg.TakeGoldAmount,
	}
	return e.decide(req)
}

func (e *Engine) applyUpgradePick(seat int, resp InputResponse) error {
	p := e.players[seat]
	if resp.TakeGold {
		p.Gold += e.cfg.TakeGoldAmount
		e.emit(EventUpgradePick, map[string]any{
			"round":  e.round + 1,
			"player": p.Name,
			"choice": "GOLD",
			"gold":   e.cfg.TakeGoldAmount,
		})
	} else {
		idx := -1
		for i, c := range e.revealed {
			if c == resp.Upgrade {
				idx = i
				break
			}
		}
		if idx < 0 {
			return invalidInput(InputUpgradePick, seat, "card %s is not revealed", resp.Upgrade)
		}
		if !p.CanTakeUpgrade(resp.Upgrade) {
			return invalidInput(InputUpgradePick, seat, "not eligible for %s", resp.Upgrade)
		}
		e.revealed = append(e.revealed[:idx], e.revealed[idx+1:]...)
		if displaced := p.applyUpgrade(resp.Upgrade); displaced != "" {
			e.upgrades.Discard([]UpgradeCard{displaced})
		}
		e.emit(EventUpgradePick, map[string]any{
			"round":  e.round + 1,
			"player": p.Name,
			"choice": string(resp.Upgrade),
		})
	}

	e.cursor++
	if e.cursor == e.cfg.Players {
		e.upgrades.Discard(e.revealed)
		e.revealed = nil
		e.cursor = 0
		e.phase = PhaseFourthPlace
	}
	return nil
}

// --- fourth place bonus ----------------------------------------------------

func (e *Engine) stepFourthPlace() error {
	seat := e.pickOrder[len(e.pickOrder)-1]
	p := e.players[seat]
	if !e.cfg.Grace.Enabled {
		p.Gold += e.cfg.FourthPlaceGold
		e.emit(EventRescue, map[string]any{
			"round":  e.round + 1,
			"player": p.Name,
			"choice": string(BonusGold),
			"amount": e.cfg.FourthPlaceGold,
		})
		e.phase = PhaseWorkerPlacement
		e.cursor = 0
		return nil
	}
	req := &InputRequest{
		Kind:        InputFourthPlaceBonus,
		Seat:        seat,
		Player:      e.view(p),
		GoldOption:  e.cfg.FourthPlaceGold,
		GraceOption: e.cfg.Grace.FourthPlaceGrace,
	}
	return e.decide(req)
}

func (e *Engine) applyFourthPlace(seat int, choice BonusChoice) error {
	p := e.players[seat]
	switch choice {
	case BonusGold:
		p.Gold += e.cfg.FourthPlaceGold
	case BonusGrace:
		p.addGrace(e.cfg.Grace.FourthPlaceGrace)
	default:
		return invalidInput(InputFourthPlaceBonus, seat, "choice must be %q or %q", BonusGold, BonusGrace)
	}
	e.emit(EventRescue, map[string]any{
		"round":  e.round + 1,
		"player": p.Name,
		"choice": string(choice),
	})
	e.phase = PhaseWorkerPlacement
	e.cursor = 0
	return nil
}

// --- worker placement ------------------------------------------------------

func (e *Engine) stepWorkerPlacement() error {
	seat := e.cursor
	p := e.players[seat]
	req := &InputRequest{
		Kind:         InputWorkerActions,
		Seat:         seat,
		Player:       e.view(p),
		WorkerCount:  p.Workers,
		Actions:      e.legalWorkerActions(),
		BonusActions: e.legalBonusActions(p),
	}
	return e.decide(req)
}

func (e *Engine) applyWorkerActions(seat int, resp InputResponse) error {
	p := e.players[seat]
	if len(resp.Actions) != p.Workers {
		return invalidInput(InputWorkerActions, seat, "need %d actions, got %d", p.Workers, len(resp.Actions))
	}
	legal := e.legalWorkerActions()
	for _, a := range resp.Actions {
		if !containsAction(legal, a) {
			return invalidInput(InputWorkerActions, seat, "unknown action %q", a)
		}
	}
	if resp.BonusAction != "" && !containsAction(e.legalBonusActions(p), resp.BonusAction) {
		return invalidInput(InputWorkerActions, seat, "bonus action %q not available", resp.BonusAction)
	}

	before := map[string]int{"gold": p.Gold, "vp": p.VP, "grace": p.Grace}
	e.resolveActions(p, resp.Actions, resp.BonusAction)
	e.emit(EventWorkerActions, map[string]any{
		"round":   e.round + 1,
		"player":  p.Name,
		"actions": actionStrings(resp.Actions),
		"bonus":   string(resp.BonusAction),
		"before":  before,
		"after":   map[string]int{"gold": p.Gold, "vp": p.VP, "grace": p.Grace},
	})

	e.cursor++
	if e.cursor == e.cfg.Players {
		e.cursor = 0
		e.phase = PhaseWagePayment
	}
	return nil
}

// --- wage payment ----------------------------------------------------------

func (e *Engine) stepWagePayment() error {
	seat := e.cursor
	p := e.players[seat]
	bill := e.wageBill(p, e.round)

	if e.cfg.Grace.Enabled && bill.Net > p.Gold && p.Grace >= e.cfg.Grace.DebtOffsetCost {
		req := &InputRequest{
			Kind:       InputDebtOffset,
			Seat:       seat,
			Player:     e.view(p),
			Shortfall:  bill.Net - p.Gold,
			OffsetCost: e.cfg.Grace.DebtOffsetCost,
		}
		return e.decide(req)
	}
	e.settleSeat(seat, 0)
	return nil
}

func (e *Engine) applyDebtOffset(seat, offsetGold int) error {
	p := e.players[seat]
	bill := e.wageBill(p, e.round)
	shortfall := bill.Net - p.Gold
	if shortfall < 0 {
		shortfall = 0
	}
	maxOffset := min(shortfall, p.Grace/e.cfg.Grace.DebtOffsetCost)
	if offsetGold < 0 || offsetGold > maxOffset {
		return invalidInput(InputDebtOffset, seat, "offset %d outside [0,%d]", offsetGold, maxOffset)
	}
	e.settleSeat(seat, offsetGold)
	return nil
}

// settleSeat applies the optional grace offset, settles the wage bill, and
// advances the cursor; the last seat triggers hire activation and the round
// boundary.
func (e *Engine) settleSeat(seat, offsetGold int) {
	p := e.players[seat]
	if offsetGold > 0 {
		p.addGrace(-offsetGold * e.cfg.Grace.DebtOffsetCost)
		p.Gold += offsetGold
		e.emit(EventDebtOffset, map[string]any{
			"round":  e.round + 1,
			"player": p.Name,
			"gold":   offsetGold,
		})
	}
	bill := e.wageBill(p, e.round)
	e.settleWages(p, &bill)
	e.emit(EventWageResult, map[string]any{
		"round":     e.round + 1,
		"player":    p.Name,
		"net":       bill.Net,
		"paid":      bill.Paid,
		"shortfall": bill.Shortfall,
		"penalty":   bill.Penalty,
		"gold":      p.Gold,
		"vp":        p.VP,
	})

	e.cursor++
	if e.cursor == e.cfg.Players {
		e.cursor = 0
		e.endRound()
	}
}

// endRound activates pending hires (the only point worker totals grow) and
// either starts the next round or finishes the game.
func (e *Engine) endRound() {
	for _, p := range e.players {
		if p.PendingHires > 0 {
			p.Workers += p.PendingHires
			e.emit(EventHireActivation, map[string]any{
				"round":     e.round + 1,
				"player":    p.Name,
				"activated": p.PendingHires,
				"workers":   p.Workers,
			})
			p.PendingHires = 0
		}
	}
	e.emit(EventRoundEnd, map[string]any{"round": e.round + 1})

	e.round++
	if e.round == e.cfg.Rounds {
		e.finishGame()
		return
	}
	e.phase = PhaseRoundStart
}

// finishGame applies the end-game transformations and freezes the engine.
func (e *Engine) finishGame() {
	for _, p := range e.players {
		if e.cfg.Grace.Enabled {
			if bonus := graceThresholdBonus(e.cfg.Grace.Thresholds, p.Grace); bonus > 0 {
				p.VP += bonus
			}
		}
		if e.cfg.GoldPerVP > 0 {
			p.VP += p.Gold / e.cfg.GoldPerVP
		}
	}

	ranking := make([]int, len(e.players))
	for i := range ranking {
		ranking[i] = i
	}
	sort.SliceStable(ranking, func(a, b int) bool {
		pa, pb := e.players[ranking[a]], e.players[ranking[b]]
		if pa.VP != pb.VP {
			return pa.VP > pb.VP
		}
		return pa.Gold > pb.Gold
	})
	final := make([]map[string]any, len(ranking))
	for i, seat := range ranking {
		p := e.players[seat]
		final[i] = map[string]any{"rank": i + 1, "player": p.Name, "vp": p.VP, "gold": p.Gold}
	}
	e.emit(EventGameEnd, map[string]any{"ranking": final})
	e.phase = PhaseGameEnd
}

// graceThresholdBonus returns the bonus of the single highest threshold the
// points qualify for; thresholds are not cumulative.
func graceThresholdBonus(thresholds []GraceThreshold, points int) int {
	bonus := 0
	for _, t := range thresholds {
		if points >= t.Points {
			bonus = t.BonusVP
		}
	}
	return bonus
}

// checkCardConservation verifies that every card dealt to this round's
// hands is accounted for across playable hands, sealed piles, and trick
// history.
func (e *Engine) checkCardConservation() error {
	for seat := range e.players {
		played := 0
		for _, tr := range e.rs.history {
			for _, sc := range tr.Plays {
				if sc.Seat == seat {
					played++
				}
			}
		}
		for _, sc := range e.rs.plays {
			if sc.Seat == seat {
				played++
			}
		}
		total := len(e.rs.hands[seat]) + len(e.rs.sealed[seat]) + played
		if total != e.cfg.HandSize {
			return invariant("card_conservation",
				"seat %d accounts for %d cards, want %d", seat, total, e.cfg.HandSize)
		}
	}
	return nil
}

func copyCards(cards []deck.Card) []deck.Card {
	return append([]deck.Card(nil), cards...)
}

func containsAction(actions []ActionTag, a ActionTag) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

func actionStrings(actions []ActionTag) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

func upgradeStrings(cards []UpgradeCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = string(c)
	}
	return out
}
