package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/coven/internal/randutil"
)

func TestUpgradeDeckComposition(t *testing.T) {
	d := NewUpgradeDeck(randutil.New(1))
	require.Equal(t, 22, d.DrawLen())

	census := d.Census()
	require.Equal(t, 6, census[UpgradeTrade])
	require.Equal(t, 6, census[UpgradeHunt])
	require.Equal(t, 2, census[RecruitDouble])
	require.Equal(t, 2, census[RecruitWageDiscount])
	for _, w := range []UpgradeCard{WitchBlackroad, WitchBloodhunt, WitchHerd, WitchRitual, WitchInspect, WitchBarrier} {
		require.Equal(t, 1, census[w], "witch %s", w)
	}
}

func TestUpgradeDeckConservation(t *testing.T) {
	rng := randutil.New(2)
	d := NewUpgradeDeck(rng)

	// Cycle reveal/discard many times; the multiset never changes.
	want := d.Census()
	for i := 0; i < 20; i++ {
		revealed := d.Reveal(5, rng)
		require.Len(t, revealed, 5)
		d.Discard(revealed)
	}
	require.Equal(t, want, d.Census())
}

func TestUpgradeDeckReshufflesOnlyWhenShort(t *testing.T) {
	rng := randutil.New(3)
	d := NewUpgradeDeck(rng)

	// First four reveals come straight off the 22-card draw pile.
	for i := 0; i < 4; i++ {
		d.Discard(d.Reveal(5, rng))
	}
	require.Equal(t, 2, d.DrawLen())
	require.Equal(t, 20, d.DiscardLen())

	// The fifth reveal is short, so the discard folds back in.
	revealed := d.Reveal(5, rng)
	require.Len(t, revealed, 5)
	require.Equal(t, 17, d.DrawLen())
	require.Equal(t, 0, d.DiscardLen())
}

func TestUpgradeDeckDeterministic(t *testing.T) {
	a := NewUpgradeDeck(randutil.New(9))
	b := NewUpgradeDeck(randutil.New(9))
	require.Equal(t, a.Reveal(5, randutil.New(10)), b.Reveal(5, randutil.New(10)))
}
