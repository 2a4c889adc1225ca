package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/black-block-blast/game/config"
	"github.com/wricardo/black-block-blast/game/engine"
)

// SimulationResult summarizes a headless game
type SimulationResult struct {
	Strategy string
	Seed     uint64
	State    *engine.GameState
	Elapsed  time.Duration
}

// Simulate plays a game locally until game over or maxPieces pieces have locked
func Simulate(ctx context.Context, gameConfig *engine.GameConfig, seed uint64, strategy Strategy, maxPieces int) (*SimulationResult, error) {
	game, err := engine.NewEngine(gameConfig, engine.NewRandomizer(seed))
	if err != nil {
		return nil, err
	}

	started := time.Now()
	game.Start()
	for game.Status() == engine.Running && game.GetState().PiecesLocked < maxPieces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, command := range strategy.Plan(game.Board(), game.Active()) {
			game.HandleCommand(command)
		}
		for {
			outcome := game.SoftDrop()
			if outcome.Locked || !outcome.Changed {
				break
			}
		}
	}

	return &SimulationResult{
		Strategy: strategy.Name(),
		Seed:     seed,
		State:    game.GetState(),
		Elapsed:  time.Since(started),
	}, nil
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Play a headless game with a built-in strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "rule set name (default: the directory default)"},
			&cli.Uint64Flag{Name: "seed", Aliases: []string{"s"}, Value: 1, Usage: "piece sequence seed"},
			&cli.StringFlag{Name: "strategy", Value: "greedy", Usage: "greedy, random or drop"},
			&cli.IntFlag{Name: "max-pieces", Value: 500, Usage: "stop after this many locked pieces"},
			&cli.BoolFlag{Name: "board", Usage: "print the final board"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			gameConfig, err := loadGameConfig(cmd.String("config-dir"), cmd.String("config"))
			if err != nil {
				return err
			}

			seed := cmd.Uint64("seed")
			strategy, err := NewStrategy(cmd.String("strategy"), seed)
			if err != nil {
				return err
			}

			result, err := Simulate(ctx, gameConfig, seed, strategy, int(cmd.Int("max-pieces")))
			if err != nil {
				return err
			}

			log.Debug().
				Str("config", gameConfig.Name).
				Str("strategy", result.Strategy).
				Dur("elapsed", result.Elapsed).
				Msg("simulation finished")

			printResult(cmd.Root().Writer, result, cmd.Bool("board"))
			return nil
		},
	}
}

// loadGameConfig resolves a rule set from dir, falling back to the built-in
// default when dir does not exist and no name was given
func loadGameConfig(dir, name string) (*engine.GameConfig, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		if name == "" {
			return engine.DefaultGameConfig(), nil
		}
		return nil, err
	}
	if name == "" {
		return manager.GetDefault(), nil
	}
	return manager.LoadConfig(name)
}

func printResult(w io.Writer, result *SimulationResult, board bool) {
	state := result.State
	fmt.Fprintf(w, "config:   %s\n", state.ConfigName)
	fmt.Fprintf(w, "strategy: %s (seed %d)\n", result.Strategy, result.Seed)
	fmt.Fprintf(w, "status:   %s\n", state.Status)
	fmt.Fprintf(w, "score:    %d\n", state.Score)
	fmt.Fprintf(w, "lines:    %d\n", state.LinesCleared)
	fmt.Fprintf(w, "pieces:   %d\n", state.PiecesLocked)
	if board {
		fmt.Fprintf(w, "\n%s\n", engine.RenderBoard(state))
	}
}
