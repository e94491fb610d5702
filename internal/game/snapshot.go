package game

// PlayerSnapshot is one seat's state inside a Snapshot.
type PlayerSnapshot struct {
	Seat           int      `json:"seat"`
	Name           string   `json:"name"`
	Controller     string   `json:"controller"`
	Gold           int      `json:"gold"`
	VP             int      `json:"vp"`
	Grace          int      `json:"grace,omitempty"`
	Workers        int      `json:"workers"`
	PendingHires   int      `json:"pending_hires,omitempty"`
	TradeLevel     int      `json:"trade_level"`
	HuntLevel      int      `json:"hunt_level"`
	Held           []string `json:"held,omitempty"`
	RecruitUpgrade string   `json:"recruit_upgrade,omitempty"`
	Declared       int      `json:"declared"`
	TricksWon      int      `json:"tricks_won"`
	Hand           []string `json:"hand,omitempty"`
}

// TrickSnapshot is one play sequence, resolved or in progress.
type TrickSnapshot struct {
	Plays  []PlaySnapshot `json:"plays"`
	Lead   string         `json:"lead,omitempty"`
	Winner int            `json:"winner"`
}

// PlaySnapshot is one card placed into a trick.
type PlaySnapshot struct {
	Seat int    `json:"seat"`
	Card string `json:"card"`
}

// PendingSnapshot identifies the outstanding input request, if any.
type PendingSnapshot struct {
	Kind InputKind `json:"kind"`
	Seat int       `json:"seat"`
}

// Snapshot is a full, read-only view of the engine, deep-copied so holders
// can never mutate live state. It is the omniscient view; presentation
// layers decide what each seat may see.
type Snapshot struct {
	Round        int              `json:"round"` // 1-based; 0 before the first round starts
	Phase        Phase            `json:"phase"`
	Ended        bool             `json:"ended"`
	Leader       int              `json:"leader"`
	StockLeft    int              `json:"stock_left"`
	Players      []PlayerSnapshot `json:"players"`
	Revealed     []string         `json:"revealed,omitempty"`
	Tricks       []TrickSnapshot  `json:"tricks,omitempty"`
	CurrentTrick *TrickSnapshot   `json:"current_trick,omitempty"`
	Pending      *PendingSnapshot `json:"pending,omitempty"`
	RecentEvents []Event          `json:"recent_events,omitempty"`
}

// State captures the current engine state.
func (e *Engine) State() Snapshot {
	snap := Snapshot{
		Round:     e.round + 1,
		Phase:     e.phase,
		Ended:     e.phase == PhaseGameEnd || e.failed != nil,
		StockLeft: e.stock.Len(),
		Revealed:  upgradeStrings(e.revealed),
	}
	if e.round >= e.cfg.Rounds {
		snap.Round = e.cfg.Rounds
	}

	for _, p := range e.players {
		ps := PlayerSnapshot{
			Seat:           p.Seat,
			Name:           p.Name,
			Controller:     p.Controller.String(),
			Gold:           p.Gold,
			VP:             p.VP,
			Grace:          p.Grace,
			Workers:        p.Workers,
			PendingHires:   p.PendingHires,
			TradeLevel:     p.TradeLevel,
			HuntLevel:      p.HuntLevel,
			Held:           upgradeStrings(p.Held),
			RecruitUpgrade: string(p.RecruitUpgrade),
			Declared:       p.Declared,
			TricksWon:      p.TricksWon,
		}
		if e.rs != nil {
			if hand := e.rs.hands[p.Seat]; hand != nil {
				ps.Hand = cardStrings(hand)
			} else {
				ps.Hand = cardStrings(e.rs.fullHands[p.Seat])
			}
		}
		snap.Players = append(snap.Players, ps)
	}

	if e.rs != nil {
		snap.Leader = e.rs.leader
		for _, tr := range e.rs.history {
			snap.Tricks = append(snap.Tricks, trickSnapshot(tr.Plays, tr.LeadSuit.String(), tr.Winner))
		}
		if len(e.rs.plays) > 0 {
			lead := ""
			if e.rs.lead != nil {
				lead = e.rs.lead.Suit.String()
			}
			cur := trickSnapshot(e.rs.plays, lead, -1)
			snap.CurrentTrick = &cur
		}
	}

	if e.pending != nil {
		snap.Pending = &PendingSnapshot{Kind: e.pending.Kind, Seat: e.pending.Seat}
	}
	snap.RecentEvents = append([]Event(nil), e.recent...)
	return snap
}

func trickSnapshot(plays []SeatCard, lead string, winner int) TrickSnapshot {
	ts := TrickSnapshot{Lead: lead, Winner: winner}
	for _, sc := range plays {
		ts.Plays = append(ts.Plays, PlaySnapshot{Seat: sc.Seat, Card: sc.Card.String()})
	}
	return ts
}
