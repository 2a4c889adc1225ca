package engine

// Status represents the lifecycle state of a game
type Status string

const (
	Idle     Status = "idle"
	Running  Status = "running"
	GameOver Status = "game_over"
)

// Command is an input command forwarded by an input collaborator
type Command string

const (
	CmdLeft   Command = "left"
	CmdRight  Command = "right"
	CmdRotate Command = "rotate"
	CmdDown   Command = "down"
)

// Kind identifies one of the seven tetromino shapes
type Kind string

const (
	KindI Kind = "I"
	KindO Kind = "O"
	KindT Kind = "T"
	KindS Kind = "S"
	KindZ Kind = "Z"
	KindJ Kind = "J"
	KindL Kind = "L"
)

const (
	// Validation constants
	MinRows          = 4
	MaxRows          = 40
	MinCols          = 4
	MaxCols          = 40
	MinTickInterval  = 50
	MaxTickInterval  = 5000
	DefaultRows      = 20
	DefaultCols      = 10
	DefaultTickMS    = 600
	DefaultLinePoint = 100

	WebSocketBufferSize = 256
)

// Empty is the value of an unoccupied board cell
const Empty = ""

// Position represents x,y coordinates in board space
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ActivePiece is the renderable view of the falling piece
type ActivePiece struct {
	Kind     Kind     `json:"kind"`
	Color    string   `json:"color"`
	Shape    [][]bool `json:"shape"`
	Position Position `json:"position"`
}

// GameState is a snapshot of everything a renderer needs to redraw
type GameState struct {
	Grid         [][]string   `json:"grid"`
	Rows         int          `json:"rows"`
	Cols         int          `json:"cols"`
	Active       *ActivePiece `json:"active,omitempty"`
	Score        int          `json:"score"`
	Status       Status       `json:"status"`
	LinesCleared int          `json:"lines_cleared"`
	PiecesLocked int          `json:"pieces_locked"`
	Ticks        int          `json:"ticks"`
	Message      string       `json:"message"`
	ConfigName   string       `json:"config_name"`
}

// Outcome describes what a single tick or command did to the game
type Outcome struct {
	Changed      bool `json:"changed"`
	Locked       bool `json:"locked,omitempty"`
	LinesCleared int  `json:"lines_cleared,omitempty"`
	Spawned      bool `json:"spawned,omitempty"`
	GameOver     bool `json:"game_over,omitempty"`
}

// ParseCommand converts raw input into a Command, reporting whether it is known
func ParseCommand(raw string) (Command, bool) {
	switch Command(raw) {
	case CmdLeft, CmdRight, CmdRotate, CmdDown:
		return Command(raw), true
	}
	return "", false
}
