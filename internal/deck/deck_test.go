package deck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/coven/internal/randutil"
)

func TestBuildComposition(t *testing.T) {
	cards := Build(13, 2, 4)
	require.Len(t, cards, 2*4*13+4)

	counts := map[Card]int{}
	for _, c := range cards {
		counts[c]++
	}
	require.Equal(t, 2, counts[NewCard(Spades, 1)])
	require.Equal(t, 2, counts[NewCard(Clubs, 13)])
	require.Equal(t, 4, counts[Trump()])
}

func TestShuffleDeterministic(t *testing.T) {
	a := New(Build(13, 2, 4))
	b := New(Build(13, 2, 4))
	a.Shuffle(randutil.New(42))
	b.Shuffle(randutil.New(42))
	require.Equal(t, a.DealN(a.Len()), b.DealN(b.Len()))

	c := New(Build(13, 2, 4))
	c.Shuffle(randutil.New(43))
	a2 := New(Build(13, 2, 4))
	a2.Shuffle(randutil.New(42))
	require.NotEqual(t, a2.DealN(a2.Len()), c.DealN(c.Len()))
}

func TestDealAndPlaceBottom(t *testing.T) {
	d := New([]Card{NewCard(Spades, 1), NewCard(Hearts, 2)})

	top, ok := d.Deal()
	require.True(t, ok)
	require.Equal(t, NewCard(Spades, 1), top)
	require.Equal(t, 1, d.Len())

	d.PlaceBottom(NewCard(Clubs, 9))
	require.Equal(t, 2, d.Len())

	next, _ := d.Deal()
	require.Equal(t, NewCard(Hearts, 2), next)
	last, _ := d.Deal()
	require.Equal(t, NewCard(Clubs, 9), last)

	_, ok = d.Deal()
	require.False(t, ok)
}

func TestDealNShort(t *testing.T) {
	d := New([]Card{NewCard(Spades, 1)})
	cards := d.DealN(5)
	require.Len(t, cards, 1)
	require.Equal(t, 0, d.Len())
}
