package game

import "github.com/lox/coven/internal/deck"

// SeatCard is one play within a trick.
type SeatCard struct {
	Seat int
	Card deck.Card
}

// TrickRecord is the resolved history of one trick, kept for display.
type TrickRecord struct {
	Plays    []SeatCard
	LeadSuit deck.Suit
	Winner   int
}

// LegalPlays returns the exact set of cards a hand may play. Both the bot
// path and external input validation draw from this one function.
//
// Leading: any non-trump card, unless the hand is trump-only. Following:
// the lead-suit subset when non-empty, otherwise the whole hand (trump
// included).
func LegalPlays(hand []deck.Card, lead *deck.Card) []deck.Card {
	if lead == nil {
		nonTrump := make([]deck.Card, 0, len(hand))
		for _, c := range hand {
			if !c.IsTrump() {
				nonTrump = append(nonTrump, c)
			}
		}
		if len(nonTrump) == 0 {
			return append([]deck.Card(nil), hand...)
		}
		return nonTrump
	}

	if !lead.IsTrump() {
		follow := make([]deck.Card, 0, len(hand))
		for _, c := range hand {
			if c.Suit == lead.Suit {
				follow = append(follow, c)
			}
		}
		if len(follow) > 0 {
			return follow
		}
	}
	return append([]deck.Card(nil), hand...)
}

// containsCard reports whether cards contains c.
func containsCard(cards []deck.Card, c deck.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}

// removeCard removes the first occurrence of c and reports success.
func removeCard(cards []deck.Card, c deck.Card) ([]deck.Card, bool) {
	for i, x := range cards {
		if x == c {
			return append(cards[:i], cards[i+1:]...), true
		}
	}
	return cards, false
}

// trickWinner resolves a completed trick. If any trump was played, the
// trump nearest the leader in play order wins. Otherwise the highest rank
// in the lead suit wins, ties to the earlier play.
func trickWinner(plays []SeatCard, leadSuit deck.Suit) int {
	for _, p := range plays {
		if p.Card.IsTrump() {
			return p.Seat
		}
	}
	winner := plays[0].Seat
	best := -1
	for _, p := range plays {
		if p.Card.Suit == leadSuit && p.Card.Rank > best {
			best = p.Card.Rank
			winner = p.Seat
		}
	}
	return winner
}
