// Package engine provides the core game logic for Black Block Blast.
//
// The engine package implements the falling-block mechanics including:
//   - A fixed-size board of color cells with lock and line-clear
//   - Tetromino pieces that move, rotate and drop with collision checks
//   - The Idle → Running → GameOver state machine
//   - Linear line-clear scoring
//   - Rule set validation
//
// Core Types:
//
// The Engine interface defines the command surface, implemented by
// GameEngine. Board and Piece hold the grid and the falling tetromino,
// GameState is the snapshot handed to renderers, and GameConfig describes
// board size, gravity interval, palette and scoring.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultGameConfig(), engine.NewRandomizer(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Start()
//	gameEngine.HandleCommand(engine.CmdLeft)
//	gameEngine.Tick()
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Every move, rotation and drop is validated before it is committed; an
// attempt that would collide is silently discarded. When a drop is blocked
// the piece locks, full rows are cleared for PointsPerLine each, and a new
// piece spawns at the top center. A piece that collides on spawn ends the
// game.
//
// Concurrency:
//
// GameEngine is not safe for concurrent use. A single driver issues ticks
// and commands one at a time; the service package enforces this per session.
package engine
