package randutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDeterministic(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
}

func TestNewDifferentSeeds(t *testing.T) {
	a, b := New(7), New(8)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	require.Zero(t, same)
}

func TestDeriveIndependentStreams(t *testing.T) {
	// Substreams of the same master must not collide with each other or
	// with the master stream.
	master := New(42)
	s0 := Derive(42, 0)
	s1 := Derive(42, 1)

	for i := 0; i < 100; i++ {
		m, a, b := master.Uint64(), s0.Uint64(), s1.Uint64()
		require.NotEqual(t, a, b)
		require.NotEqual(t, m, a)
	}

	// Same master and index replays the same stream.
	x, y := Derive(42, 3), Derive(42, 3)
	for i := 0; i < 100; i++ {
		require.Equal(t, x.Uint64(), y.Uint64())
	}
}
