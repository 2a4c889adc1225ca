package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	Start() *GameState
	Stop() *GameState
	Status() Status
	IsGameOver() bool

	// Gravity and input
	Tick() Outcome
	HandleCommand(cmd Command) Outcome
	MoveLeft() Outcome
	MoveRight() Outcome
	Rotate() Outcome
	SoftDrop() Outcome

	// Snapshot
	GetState() *GameState
	GetScore() int
	GetConfig() *GameConfig
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; callers serialize ticks and commands.
type GameEngine struct {
	config *GameConfig
	rng    Randomizer
	board  *Board
	active *Piece

	status       Status
	score        int
	linesCleared int
	piecesLocked int
	ticks        int
	message      string
}

// NewEngine creates a new idle game engine with the provided configuration
// and random source.
func NewEngine(config *GameConfig, rng Randomizer) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("randomizer cannot be nil")
	}

	return &GameEngine{
		config:  config,
		rng:     rng,
		board:   NewBoard(config.Rows, config.Cols),
		status:  Idle,
		message: config.Messages.Welcome,
	}, nil
}

// NewEngineWithDefaults creates an engine with the classic rule set
func NewEngineWithDefaults(seed uint64) *GameEngine {
	engine, err := NewEngine(DefaultGameConfig(), NewRandomizer(seed))
	if err != nil {
		// The built-in config always validates
		panic(err)
	}
	return engine
}

// Start clears the board and score, spawns the first piece and enters Running
func (e *GameEngine) Start() *GameState {
	e.board.Reset()
	e.score = 0
	e.linesCleared = 0
	e.piecesLocked = 0
	e.ticks = 0
	e.active = nil
	e.status = Running
	e.message = e.config.Messages.Welcome
	e.Spawn()
	return e.GetState()
}

// Stop leaves Running so no further ticks or commands apply. The board and
// piece are kept for display.
func (e *GameEngine) Stop() *GameState {
	if e.status == Running {
		e.status = Idle
		if e.config.Messages.Stopped != "" {
			e.message = e.config.Messages.Stopped
		}
	}
	return e.GetState()
}

// Status returns the current lifecycle state
func (e *GameEngine) Status() Status {
	return e.status
}

// IsGameOver returns whether the last spawn collided
func (e *GameEngine) IsGameOver() bool {
	return e.status == GameOver
}

// Spawn places a random piece at the top center. A piece that collides on
// arrival ends the game without being locked.
func (e *GameEngine) Spawn() Outcome {
	kind := Kinds[e.rng.Intn(len(Kinds))]
	color := e.config.Palette[e.rng.Intn(len(e.config.Palette))]
	x := (e.board.Cols() - Shapes[kind].Width()) / 2

	e.active = NewPiece(kind, color, x, 0)
	if e.active.Collides(e.board) {
		e.status = GameOver
		e.message = e.config.Messages.GameOver
		return Outcome{Changed: true, Spawned: true, GameOver: true}
	}
	return Outcome{Changed: true, Spawned: true}
}

// Tick applies one gravity step
func (e *GameEngine) Tick() Outcome {
	if e.status != Running {
		return Outcome{}
	}
	e.ticks++
	return e.descend()
}

// HandleCommand dispatches an input command; unknown commands and any
// command outside Running are ignored.
func (e *GameEngine) HandleCommand(cmd Command) Outcome {
	switch cmd {
	case CmdLeft:
		return e.MoveLeft()
	case CmdRight:
		return e.MoveRight()
	case CmdRotate:
		return e.Rotate()
	case CmdDown:
		return e.SoftDrop()
	}
	return Outcome{}
}

// MoveLeft nudges the active piece one column left
func (e *GameEngine) MoveLeft() Outcome {
	return e.try(func(p *Piece) bool { return p.Move(e.board, -1) })
}

// MoveRight nudges the active piece one column right
func (e *GameEngine) MoveRight() Outcome {
	return e.try(func(p *Piece) bool { return p.Move(e.board, 1) })
}

// Rotate turns the active piece clockwise when it fits
func (e *GameEngine) Rotate() Outcome {
	return e.try(func(p *Piece) bool { return p.Rotate(e.board) })
}

// SoftDrop moves the active piece down one row, locking it when it has landed
func (e *GameEngine) SoftDrop() Outcome {
	if e.status != Running || e.active == nil {
		return Outcome{}
	}
	return e.descend()
}

func (e *GameEngine) try(attempt func(p *Piece) bool) Outcome {
	if e.status != Running || e.active == nil {
		return Outcome{}
	}
	return Outcome{Changed: attempt(e.active)}
}

// descend drops the piece, or locks it, clears lines and respawns
func (e *GameEngine) descend() Outcome {
	if e.active.Drop(e.board) {
		return Outcome{Changed: true}
	}

	e.board.Lock(e.active)
	e.piecesLocked++
	e.active = nil

	lines := e.board.ClearLines()
	if lines > 0 {
		e.linesCleared += lines
		e.score += lines * e.config.PointsPerLine
		if e.config.Messages.LineClear != "" {
			e.message = fmt.Sprintf(e.config.Messages.LineClear, lines)
		}
	}

	spawn := e.Spawn()
	return Outcome{
		Changed:      true,
		Locked:       true,
		LinesCleared: lines,
		Spawned:      spawn.Spawned,
		GameOver:     spawn.GameOver,
	}
}

// GetState returns a deep-copied snapshot for rendering
func (e *GameEngine) GetState() *GameState {
	state := &GameState{
		Grid:         e.board.Grid(),
		Rows:         e.board.Rows(),
		Cols:         e.board.Cols(),
		Score:        e.score,
		Status:       e.status,
		LinesCleared: e.linesCleared,
		PiecesLocked: e.piecesLocked,
		Ticks:        e.ticks,
		Message:      e.message,
		ConfigName:   e.config.Name,
	}
	if e.active != nil {
		state.Active = e.active.View()
	}
	return state
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	return e.score
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Board exposes the board for inspection by tests and tools
func (e *GameEngine) Board() *Board {
	return e.board
}

// Active returns the falling piece, or nil
func (e *GameEngine) Active() *Piece {
	return e.active
}
