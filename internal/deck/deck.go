package deck

import rand "math/rand/v2"

// Deck represents an ordered pile of cards. All randomness is injected so
// that deals are reproducible from a seed.
type Deck struct {
	cards []Card
}

// Build constructs the card multiset for a game: copies full runs of the
// normal suits at ranks 1..maxRank, plus trumps suit-less trump cards.
func Build(maxRank, copies, trumps int) []Card {
	cards := make([]Card, 0, copies*len(Suits)*maxRank+trumps)
	for i := 0; i < copies; i++ {
		for _, s := range Suits {
			for r := 1; r <= maxRank; r++ {
				cards = append(cards, NewCard(s, r))
			}
		}
	}
	for i := 0; i < trumps; i++ {
		cards = append(cards, Trump())
	}
	return cards
}

// New creates a deck from the given cards. The slice is copied.
func New(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// Shuffle randomizes the order of cards using the provided stream.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top card from the deck
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// DealN deals n cards from the deck
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, n)
	for i := 0; i < n; i++ {
		cards[i], _ = d.Deal()
	}
	return cards
}

// PlaceBottom returns a card to the bottom of the deck.
func (d *Deck) PlaceBottom(c Card) {
	d.cards = append(d.cards, c)
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// Peek returns the top card without removing it from the deck
func (d *Deck) Peek() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	return d.cards[0], true
}
