package statistics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SeatResult is one seat's outcome in a finished game.
type SeatResult struct {
	Strategy string
	VP       int
	Gold     int
	Grace    int
	Rank     int // 1 = winner
}

// GameResult is the outcome of a single simulated game.
type GameResult struct {
	Seed  int64 // master seed, for replay
	Seats []SeatResult
}

// StrategyStats aggregates one strategy's results across games.
type StrategyStats struct {
	Games  int
	Wins   int
	SumVP  float64
	SumVP2 float64 // sum of squares for variance
	VPs    []float64
}

// MeanVP returns the strategy's average final score.
func (s *StrategyStats) MeanVP() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumVP / float64(s.Games)
}

// StdDev returns the sample standard deviation of the strategy's scores.
func (s *StrategyStats) StdDev() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.MeanVP()
	v := (s.SumVP2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// WinRate returns the fraction of games the strategy placed first.
func (s *StrategyStats) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// MedianVP returns the median final score.
func (s *StrategyStats) MedianVP() float64 {
	if len(s.VPs) == 0 {
		return 0
	}
	vals := append([]float64(nil), s.VPs...)
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}

// Statistics aggregates simulation results per strategy.
type Statistics struct {
	Games      int
	ByStrategy map[string]*StrategyStats
}

// New returns an empty aggregate.
func New() *Statistics {
	return &Statistics{ByStrategy: make(map[string]*StrategyStats)}
}

// Add folds one game result into the aggregate.
func (s *Statistics) Add(r GameResult) {
	s.Games++
	for _, seat := range r.Seats {
		st := s.ByStrategy[seat.Strategy]
		if st == nil {
			st = &StrategyStats{}
			s.ByStrategy[seat.Strategy] = st
		}
		st.Games++
		if seat.Rank == 1 {
			st.Wins++
		}
		vp := float64(seat.VP)
		st.SumVP += vp
		st.SumVP2 += vp * vp
		st.VPs = append(st.VPs, vp)
	}
}

// Validate checks internal consistency of the aggregate.
func (s *Statistics) Validate() error {
	totalSeats := 0
	wins := 0
	for name, st := range s.ByStrategy {
		if st.Games != len(st.VPs) {
			return fmt.Errorf("strategy %s: %d games but %d scores", name, st.Games, len(st.VPs))
		}
		totalSeats += st.Games
		wins += st.Wins
	}
	if s.Games > 0 && totalSeats%s.Games != 0 {
		return fmt.Errorf("seat results (%d) not divisible by games (%d)", totalSeats, s.Games)
	}
	if wins != s.Games {
		return fmt.Errorf("%d wins recorded across %d games", wins, s.Games)
	}
	return nil
}

// Summary renders a per-strategy table sorted by mean score.
func (s *Statistics) Summary() string {
	names := make([]string, 0, len(s.ByStrategy))
	for name := range s.ByStrategy {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		return s.ByStrategy[names[a]].MeanVP() > s.ByStrategy[names[b]].MeanVP()
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%d games\n", s.Games)
	fmt.Fprintf(&b, "%-14s %6s %8s %8s %8s %8s\n", "strategy", "games", "win%", "mean", "median", "stddev")
	for _, name := range names {
		st := s.ByStrategy[name]
		fmt.Fprintf(&b, "%-14s %6d %7.1f%% %8.2f %8.2f %8.2f\n",
			name, st.Games, st.WinRate()*100, st.MeanVP(), st.MedianVP(), st.StdDev())
	}
	return b.String()
}
