package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lox/coven/internal/game"
	"github.com/lox/coven/internal/simulator"
)

// SimulateCmd runs seeded all-bot games in parallel and prints per-strategy
// balance statistics.
type SimulateCmd struct {
	Games      int      `kong:"default='1000',help='Number of games to simulate'"`
	Config     string   `kong:"help='HCL config file (optional)'"`
	Seed       int64    `kong:"default='0',help='Base RNG seed (0 for random)'"`
	Strategies []string `kong:"default='balanced,conservative,aggressive,debtavoid',help='Strategy per seat, rotated each game'"`
	Workers    int      `kong:"default='0',help='Concurrent games (0 = one per seat)'"`
	Debug      bool     `kong:"help='Enable debug logging'"`
}

func (c *SimulateCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := game.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim, err := simulator.New(simulator.Config{
		Games:      c.Games,
		Strategies: c.Strategies,
		Seed:       seed,
		Workers:    c.Workers,
		GameConfig: cfg,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("simulating", "games", c.Games, "seed", seed, "strategies", c.Strategies)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("done", "elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Print(stats.Summary())
	return nil
}
