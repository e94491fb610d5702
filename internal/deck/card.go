package deck

import (
	"fmt"
	"strconv"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
	// TrumpSuit marks the suit-less trump card. Trump beats every normal
	// suit; its rank carries no meaning.
	TrumpSuit
)

// Suits lists the normal (non-trump) suits in deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the single-letter representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "S"
	case Hearts:
		return "H"
	case Diamonds:
		return "D"
	case Clubs:
		return "C"
	case TrumpSuit:
		return "T"
	default:
		return "?"
	}
}

// Card represents a playing card. Cards are immutable value types;
// two cards are equal when suit and rank match.
type Card struct {
	Suit Suit
	Rank int
}

// NewCard creates a new card
func NewCard(suit Suit, rank int) Card {
	return Card{Suit: suit, Rank: rank}
}

// Trump returns the suit-less trump card.
func Trump() Card {
	return Card{Suit: TrumpSuit}
}

// IsTrump returns true if the card is the trump marker
func (c Card) IsTrump() bool {
	return c.Suit == TrumpSuit
}

// String returns the string representation of a card (e.g., "S13", "H07", "T")
func (c Card) String() string {
	if c.IsTrump() {
		return "T"
	}
	return fmt.Sprintf("%s%02d", c.Suit, c.Rank)
}

// ParseCard parses a card from its string form ("S13", "H07", "T").
func ParseCard(s string) (Card, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Card{}, fmt.Errorf("empty card string")
	}
	if s == "T" {
		return Trump(), nil
	}
	var suit Suit
	switch s[0] {
	case 'S':
		suit = Spades
	case 'H':
		suit = Hearts
	case 'D':
		suit = Diamonds
	case 'C':
		suit = Clubs
	default:
		return Card{}, fmt.Errorf("invalid suit %q", s[0])
	}
	rank, err := strconv.Atoi(s[1:])
	if err != nil {
		return Card{}, fmt.Errorf("invalid rank in %q: %w", s, err)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// ParseCards parses a space-separated list of card strings.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Format renders a hand as a space-separated string.
func Format(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
