package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/black-block-blast/game/engine"
	"github.com/wricardo/black-block-blast/game/service"
)

// APIClient drives a game on a running server through the REST API
type APIClient struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// CreateSession opens a new session and remembers its ID
func (c *APIClient) CreateSession(ctx context.Context, configName string, seed *uint64) (*service.SessionInfo, error) {
	req := map[string]interface{}{}
	if configName != "" {
		req["config_id"] = configName
	}
	if seed != nil {
		req["seed"] = *seed
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return &session, nil
}

func (c *APIClient) Start(ctx context.Context) (*engine.GameState, error) {
	var resp struct {
		State *engine.GameState `json:"state"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/start", nil, &resp); err != nil {
		return nil, err
	}
	return resp.State, nil
}

func (c *APIClient) Command(ctx context.Context, command engine.Command) (*service.CommandResult, error) {
	var result service.CommandResult
	req := map[string]string{"command": string(command)}
	if err := c.do(ctx, http.MethodPost, "/api/sessions/"+c.sessionID+"/command", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PlayRemote steers pieces on the server until game over or maxPieces locks.
// Server-side gravity keeps running, so a plan may finish on the next piece.
func PlayRemote(ctx context.Context, client *APIClient, strategy Strategy, maxPieces int, delay time.Duration) (*engine.GameState, error) {
	state, err := client.Start(ctx)
	if err != nil {
		return nil, err
	}

	for state.Status == engine.Running && state.PiecesLocked < maxPieces {
		board, piece := boardFromState(state)
		commands := append(strategy.Plan(board, piece), engine.CmdDown)

		for i := 0; i < len(commands); i++ {
			result, err := client.Command(ctx, commands[i])
			if err != nil {
				return state, err
			}
			state = result.GameState

			if result.Outcome.Locked || state.Status != engine.Running {
				break
			}
			// keep dropping until the piece locks
			if i == len(commands)-1 && result.Outcome.Changed {
				commands = append(commands, engine.CmdDown)
			}
			if delay > 0 {
				select {
				case <-ctx.Done():
					return state, ctx.Err()
				case <-time.After(delay):
				}
			}
		}

		log.Debug().
			Str("session", client.sessionID).
			Int("score", state.Score).
			Int("pieces", state.PiecesLocked).
			Msg("piece placed")
	}

	return state, nil
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a session on a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("BLOCKCTL_URL")},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "rule set name"},
			&cli.Uint64Flag{Name: "seed", Aliases: []string{"s"}, Usage: "piece sequence seed (random when unset)"},
			&cli.StringFlag{Name: "strategy", Value: "greedy", Usage: "greedy, random or drop"},
			&cli.IntFlag{Name: "max-pieces", Value: 200, Usage: "stop after this many locked pieces"},
			&cli.DurationFlag{Name: "delay", Usage: "pause between commands"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var seed *uint64
			if cmd.IsSet("seed") {
				s := cmd.Uint64("seed")
				seed = &s
			}

			client := NewAPIClient(cmd.String("url"))
			session, err := client.CreateSession(ctx, cmd.String("config"), seed)
			if err != nil {
				return err
			}
			log.Info().
				Str("session", session.ID).
				Str("config", session.ConfigName).
				Uint64("seed", session.Seed).
				Msg("session created")

			strategy, err := NewStrategy(cmd.String("strategy"), session.Seed)
			if err != nil {
				return err
			}

			state, err := PlayRemote(ctx, client, strategy, int(cmd.Int("max-pieces")), cmd.Duration("delay"))
			if err != nil {
				return err
			}

			printResult(cmd.Root().Writer, &SimulationResult{
				Strategy: strategy.Name(),
				Seed:     session.Seed,
				State:    state,
			}, true)
			fmt.Fprintf(cmd.Root().Writer, "\nsession: %s\n", session.ID)
			return nil
		},
	}
}
