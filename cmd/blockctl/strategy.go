package main

import (
	"fmt"
	"math"

	"github.com/wricardo/black-block-blast/game/engine"
)

// Strategy decides how to steer the falling piece before it is dropped
type Strategy interface {
	Name() string
	// Plan returns the commands that position piece; the caller soft-drops afterwards
	Plan(board *engine.Board, piece *engine.Piece) []engine.Command
}

// NewStrategy returns the named strategy: greedy, random or drop
func NewStrategy(name string, seed uint64) (Strategy, error) {
	switch name {
	case "greedy", "":
		return greedyStrategy{}, nil
	case "random":
		return &randomStrategy{rng: engine.NewRandomizer(seed)}, nil
	case "drop":
		return dropStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown strategy %q (expected greedy, random or drop)", name)
}

// Heuristic weights for evaluating a landed position
const (
	heightWeight    = -0.510066
	linesWeight     = 0.760666
	holesWeight     = -0.35663
	bumpinessWeight = -0.184483
)

// greedyStrategy tries every rotation and column for the current piece and
// keeps the landing spot with the best board score.
type greedyStrategy struct{}

func (greedyStrategy) Name() string { return "greedy" }

func (greedyStrategy) Plan(board *engine.Board, piece *engine.Piece) []engine.Command {
	if piece == nil {
		return nil
	}

	best := math.Inf(-1)
	var plan []engine.Command
	for turns := 0; turns < 4; turns++ {
		for dx := -board.Cols(); dx <= board.Cols(); dx++ {
			commands, score, ok := evaluate(board, piece, turns, dx)
			if ok && score > best {
				best, plan = score, commands
			}
		}
	}
	return plan
}

// evaluate replays turns rotations and a dx shift on a copy of piece, drops it
// and scores the resulting board. ok is false when the moves do not fit.
func evaluate(board *engine.Board, piece *engine.Piece, turns, dx int) ([]engine.Command, float64, bool) {
	trial := *piece
	trial.Shape = piece.Shape.Clone()

	commands := make([]engine.Command, 0, turns+abs(dx))
	for i := 0; i < turns; i++ {
		if !trial.Rotate(board) {
			return nil, 0, false
		}
		commands = append(commands, engine.CmdRotate)
	}

	step, command := 1, engine.CmdRight
	if dx < 0 {
		step, command = -1, engine.CmdLeft
	}
	for i := 0; i < abs(dx); i++ {
		if !trial.Move(board, step) {
			return nil, 0, false
		}
		commands = append(commands, command)
	}

	for trial.Drop(board) {
	}

	scratch := cloneBoard(board)
	scratch.Lock(&trial)
	lines := scratch.ClearLines()
	return commands, scoreGrid(scratch.Grid(), lines), true
}

// scoreGrid rates a board after a lock; higher is better
func scoreGrid(grid [][]string, lines int) float64 {
	heights := engine.ColumnHeights(grid)

	aggregate, bumpiness := 0, 0
	for x, h := range heights {
		aggregate += h
		if x > 0 {
			bumpiness += abs(h - heights[x-1])
		}
	}

	return heightWeight*float64(aggregate) +
		linesWeight*float64(lines) +
		holesWeight*float64(countHoles(grid)) +
		bumpinessWeight*float64(bumpiness)
}

// countHoles counts empty cells that have a block somewhere above them
func countHoles(grid [][]string) int {
	if len(grid) == 0 {
		return 0
	}
	holes := 0
	for x := range grid[0] {
		covered := false
		for y := range grid {
			if grid[y][x] != engine.Empty {
				covered = true
			} else if covered {
				holes++
			}
		}
	}
	return holes
}

func cloneBoard(src *engine.Board) *engine.Board {
	board := engine.NewBoard(src.Rows(), src.Cols())
	for y, row := range src.Grid() {
		for x, cell := range row {
			board.Set(x, y, cell)
		}
	}
	return board
}

// boardFromState rebuilds a board and piece from a snapshot received over the API
func boardFromState(state *engine.GameState) (*engine.Board, *engine.Piece) {
	board := engine.NewBoard(state.Rows, state.Cols)
	for y, row := range state.Grid {
		for x, cell := range row {
			board.Set(x, y, cell)
		}
	}

	if state.Active == nil {
		return board, nil
	}
	return board, &engine.Piece{
		Kind:  state.Active.Kind,
		Color: state.Active.Color,
		Shape: engine.Shape(state.Active.Shape),
		X:     state.Active.Position.X,
		Y:     state.Active.Position.Y,
	}
}

// randomStrategy shuffles the piece around without looking at the board
type randomStrategy struct {
	rng engine.Randomizer
}

func (s *randomStrategy) Name() string { return "random" }

func (s *randomStrategy) Plan(board *engine.Board, piece *engine.Piece) []engine.Command {
	moves := []engine.Command{engine.CmdLeft, engine.CmdRight, engine.CmdRotate}
	commands := make([]engine.Command, s.rng.Intn(board.Cols()))
	for i := range commands {
		commands[i] = moves[s.rng.Intn(len(moves))]
	}
	return commands
}

// dropStrategy drops every piece where it spawns
type dropStrategy struct{}

func (dropStrategy) Name() string { return "drop" }

func (dropStrategy) Plan(*engine.Board, *engine.Piece) []engine.Command { return nil }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
