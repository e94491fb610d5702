package game

// legalWorkerActions returns the action tags a worker may take.
func (e *Engine) legalWorkerActions() []ActionTag {
	actions := []ActionTag{ActionTrade, ActionHunt, ActionRecruit}
	if e.cfg.Grace.Enabled {
		actions = append(actions, ActionPray)
	}
	return actions
}

// legalBonusActions returns the unlocked once-per-round bonus actions for
// a player.
func (e *Engine) legalBonusActions(p *Player) []ActionTag {
	if !e.cfg.Grace.Enabled || p.UsedBonusAction {
		return nil
	}
	var actions []ActionTag
	if p.GoldConvertUnlocked && p.Gold >= e.cfg.Grace.GoldConvertCost {
		actions = append(actions, ActionConvertGold)
	}
	if p.WorkerConvertUnlocked && p.Workers > 1 {
		actions = append(actions, ActionConvertWorker)
	}
	return actions
}

// resolveActions applies one worker action batch in order. Side effects are
// immediate and visible to later actions in the same batch.
func (e *Engine) resolveActions(p *Player, actions []ActionTag, bonus ActionTag) {
	for _, a := range actions {
		switch a {
		case ActionTrade:
			p.addGold(p.TradeYield())
		case ActionHunt:
			p.VP += p.HuntYield()
		case ActionRecruit:
			hires := 1
			if p.RecruitUpgrade == RecruitDouble {
				hires = 2
			}
			p.PendingHires += hires
			p.HiredThisRound += hires
		case ActionPray:
			p.addGrace(e.cfg.Grace.PrayYield)
		}
	}
	switch bonus {
	case ActionConvertGold:
		p.addGold(-e.cfg.Grace.GoldConvertCost)
		p.addGrace(e.cfg.Grace.GoldConvertYield)
		p.UsedBonusAction = true
	case ActionConvertWorker:
		p.Workers--
		p.addGrace(e.cfg.Grace.WorkerConvertYield)
		p.UsedBonusAction = true
	}
}

// WageBill is the wage computation for one player at round end.
type WageBill struct {
	Rate        int
	HiredRate   int
	WorkersPaid int
	Gross       int
	Discount    int
	Net         int
	Paid        int
	Shortfall   int
	Penalty     int
}

// wageBill computes the bill before any grace offset. New hires have not
// acted yet but are paid from the round they were hired. Workers beyond the
// starting count pay the hired curve.
func (e *Engine) wageBill(p *Player, round int) WageBill {
	b := WageBill{
		Rate:      e.cfg.WageCurve[round],
		HiredRate: e.cfg.HiredWageCurve[round],
	}
	b.WorkersPaid = p.Workers + p.PendingHires
	base := min(e.cfg.StartingWorkers, b.WorkersPaid)
	hired := b.WorkersPaid - base
	b.Gross = base*b.Rate + hired*b.HiredRate

	if p.RecruitUpgrade == RecruitWageDiscount {
		b.Discount += p.HiredThisRound
	}
	if p.holds(WitchBarrier) {
		b.Discount++
	}
	b.Net = b.Gross - b.Discount
	if b.Net < 0 {
		b.Net = 0
	}
	return b
}

// settleWages pays the bill and converts any shortfall into a VP penalty
// under the configured debt policy. Gold is zeroed on shortfall; VP is
// charged even if it goes negative.
func (e *Engine) settleWages(p *Player, b *WageBill) {
	if p.Gold >= b.Net {
		b.Paid = b.Net
		p.Gold -= b.Net
		return
	}
	b.Paid = p.Gold
	b.Shortfall = b.Net - p.Gold
	p.Gold = 0
	b.Penalty = e.debtPenalty(b.Shortfall)
	p.VP -= b.Penalty
}

// debtPenalty maps a shortfall to a VP penalty under the configured policy.
func (e *Engine) debtPenalty(shortfall int) int {
	if shortfall <= 0 {
		return 0
	}
	switch e.cfg.DebtPolicy {
	case DebtTiered:
		tiers := e.cfg.DebtTiers
		for _, t := range tiers {
			if shortfall <= t.UpTo {
				return t.Penalty
			}
		}
		return tiers[len(tiers)-1].Penalty
	default:
		pen := shortfall * e.cfg.DebtMultiplier
		if e.cfg.DebtCap > 0 && pen > e.cfg.DebtCap {
			pen = e.cfg.DebtCap
		}
		return pen
	}
}

// expectedWage estimates the net bill due this round at current worker
// counts. Strategies use it to budget trades.
func (e *Engine) expectedWage(p *Player, round int) int {
	b := e.wageBill(p, round)
	return b.Net
}
