package service

import (
	"time"

	"github.com/wricardo/black-block-blast/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	Seed           uint64             `json:"seed"`
	Ticking        bool               `json:"ticking"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// CommandResult contains the result of a command or manual tick
type CommandResult struct {
	Command   string            `json:"command"`
	Applied   bool              `json:"applied"`
	Outcome   engine.Outcome    `json:"outcome"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "start", "stop", "lock", "line_clear", "spawn", "game_over"
	Message   string    `json:"message,omitempty"`
	Lines     int       `json:"lines,omitempty"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename       string `json:"filename"`
	ConfigID       string `json:"config_id"` // The identifier to use for session creation
	Name           string `json:"name"`      // Display name
	Description    string `json:"description"`
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	TickIntervalMS int    `json:"tick_interval_ms"`
	PointsPerLine  int    `json:"points_per_line"`
}
