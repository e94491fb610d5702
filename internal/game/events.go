package game

import "time"

// EventType names a game event. Event names and payloads are the whole of
// the engine's logging surface; sinks never feed back into the engine.
type EventType string

const (
	EventGameStart        EventType = "game_start"
	EventDealHands        EventType = "deal_hands"
	EventRoundStart       EventType = "round_start"
	EventRevealUpgrades   EventType = "reveal_upgrades"
	EventDeclare          EventType = "declare"
	EventHandSwap         EventType = "grace_hand_swap"
	EventSeal             EventType = "seal_cards"
	EventPlay             EventType = "trick_play"
	EventTurnOrderDefer   EventType = "turn_order_defer"
	EventTrickWon         EventType = "trick_won"
	EventDeclarationBonus EventType = "declaration_bonus"
	EventZeroDeclareGrace EventType = "zero_declare_grace"
	EventUpgradePick      EventType = "upgrade_pick"
	EventRescue           EventType = "rescue"
	EventWorkerActions    EventType = "worker_actions"
	EventDebtOffset       EventType = "debt_offset"
	EventWageResult       EventType = "wage_result"
	EventHireActivation   EventType = "hire_activation"
	EventRoundEnd         EventType = "round_end"
	EventGameEnd          EventType = "game_end"
)

func (et EventType) String() string {
	return string(et)
}

// Event is one state transition, as handed to the sink and kept in the
// bounded recent log.
type Event struct {
	Type    EventType      `json:"event"`
	At      time.Time      `json:"ts"`
	Payload map[string]any `json:"payload"`
}

// EventSink receives every engine event, append-only. Implementations must
// not call back into the engine.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the EventSink interface.
type SinkFunc func(Event)

// Emit implements EventSink.
func (f SinkFunc) Emit(e Event) { f(e) }

// emit timestamps an event, forwards it to the sink, and appends it to the
// bounded recent log.
func (e *Engine) emit(t EventType, payload map[string]any) {
	ev := Event{Type: t, At: e.clock.Now(), Payload: payload}
	if e.sink != nil {
		e.sink.Emit(ev)
	}
	e.recent = append(e.recent, ev)
	if over := len(e.recent) - e.cfg.EventLogSize; over > 0 {
		e.recent = e.recent[over:]
	}
}
