package simulator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/coven/internal/game"
	"github.com/lox/coven/internal/statistics"
)

// Config holds the simulation parameters.
type Config struct {
	Games      int
	Strategies []string // one per seat; rotated each game to cancel seat bias
	Seed       int64    // game i runs with Seed+i
	Workers    int      // concurrent games; 0 means one per strategy seat
	GameConfig game.Config
	Logger     *log.Logger
}

// Simulator runs batches of all-bot games and aggregates the results. Games
// are driven through the same Step loop an interactive driver uses; one
// engine per goroutine, so no shared mutable state.
type Simulator struct {
	config Config
}

// New creates a simulator.
func New(config Config) (*Simulator, error) {
	if config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", config.Games)
	}
	if len(config.Strategies) != config.GameConfig.Players {
		return nil, fmt.Errorf("need %d strategies, got %d",
			config.GameConfig.Players, len(config.Strategies))
	}
	for _, s := range config.Strategies {
		if _, err := game.NewStrategy(s); err != nil {
			return nil, err
		}
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Simulator{config: config}, nil
}

// Run plays every game and returns the validated aggregate.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	stats := statistics.New()
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	workers := s.config.Workers
	if workers <= 0 {
		workers = len(s.config.Strategies)
	}
	g.SetLimit(workers)

	for i := 0; i < s.config.Games; i++ {
		gameNo := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := s.playGame(gameNo)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", gameNo+1, result.Seed, err)
			}
			mu.Lock()
			stats.Add(result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

// playGame runs one complete all-bot game to the end.
func (s *Simulator) playGame(gameNo int) (statistics.GameResult, error) {
	seed := s.config.Seed + int64(gameNo)
	result := statistics.GameResult{Seed: seed}

	n := len(s.config.Strategies)
	specs := make([]game.PlayerSpec, n)
	strategyBySeat := make([]string, n)
	for seat := 0; seat < n; seat++ {
		// Rotate the strategy assignment so every strategy visits every
		// seat equally often across the batch.
		strat := s.config.Strategies[(seat+gameNo)%n]
		strategyBySeat[seat] = strat
		specs[seat] = game.PlayerSpec{
			Name:       fmt.Sprintf("%s-%d", strat, seat+1),
			Controller: game.Bot,
			Strategy:   strat,
		}
	}

	eng, err := game.New(s.config.GameConfig, seed, specs)
	if err != nil {
		return result, err
	}

	for {
		res, err := eng.Step()
		if err != nil {
			return result, err
		}
		if res == game.Ended {
			break
		}
		if res == game.Waiting {
			return result, fmt.Errorf("all-bot game suspended for input")
		}
	}

	snap := eng.State()
	seats := make([]statistics.SeatResult, n)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := snap.Players[order[a]], snap.Players[order[b]]
		if pa.VP != pb.VP {
			return pa.VP > pb.VP
		}
		return pa.Gold > pb.Gold
	})
	for rank, seat := range order {
		p := snap.Players[seat]
		seats[seat] = statistics.SeatResult{
			Strategy: strategyBySeat[seat],
			VP:       p.VP,
			Gold:     p.Gold,
			Grace:    p.Grace,
			Rank:     rank + 1,
		}
	}
	result.Seats = seats

	s.config.Logger.Debug("game finished", "game", gameNo+1, "seed", seed,
		"winner", snap.Players[order[0]].Name, "vp", snap.Players[order[0]].VP)
	return result, nil
}
