package engine

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPalette is the Pan-African color set used when a config omits one
var DefaultPalette = []string{"#ef4444", "#22c55e", "#facc15", "#3b82f6", "#eab308"}

// GameConfig represents a rule set loaded from JSON or HCL
type GameConfig struct {
	Name           string   `json:"name" hcl:"name"`
	Description    string   `json:"description" hcl:"description"`
	Rows           int      `json:"rows" hcl:"rows,optional"`
	Cols           int      `json:"cols" hcl:"cols,optional"`
	TickIntervalMS int      `json:"tick_interval_ms" hcl:"tick_interval_ms,optional"`
	PointsPerLine  int      `json:"points_per_line" hcl:"points_per_line,optional"`
	Palette        []string `json:"palette" hcl:"palette,optional"`
	Messages       Messages `json:"messages" hcl:"messages,block"`
}

// Messages are the player-facing texts attached to game events
type Messages struct {
	Welcome   string `json:"welcome" hcl:"welcome"`
	GameOver  string `json:"game_over" hcl:"game_over"`
	LineClear string `json:"line_clear,omitempty" hcl:"line_clear,optional"`
	Stopped   string `json:"stopped,omitempty" hcl:"stopped,optional"`
}

// TickInterval returns the gravity interval as a duration
func (c *GameConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// DefaultGameConfig returns the classic 20x10 rule set
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Classic 10x20 well, 600ms gravity, 100 points per line",
		Rows:           DefaultRows,
		Cols:           DefaultCols,
		TickIntervalMS: DefaultTickMS,
		PointsPerLine:  DefaultLinePoint,
		Palette:        append([]string(nil), DefaultPalette...),
		Messages: Messages{
			Welcome:   "Press start to play Black Block Blast!",
			GameOver:  "Game over! The well is full.",
			LineClear: "Cleared %d line(s)!",
			Stopped:   "Game stopped.",
		},
	}
}

// ApplyDefaults fills unset numeric fields and the palette from the classic rule set
func ApplyDefaults(config *GameConfig) {
	if config.Rows == 0 {
		config.Rows = DefaultRows
	}
	if config.Cols == 0 {
		config.Cols = DefaultCols
	}
	if config.TickIntervalMS == 0 {
		config.TickIntervalMS = DefaultTickMS
	}
	if config.PointsPerLine == 0 {
		config.PointsPerLine = DefaultLinePoint
	}
	if len(config.Palette) == 0 {
		config.Palette = append([]string(nil), DefaultPalette...)
	}
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is required")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Rows < MinRows || config.Rows > MaxRows {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinRows, MaxRows, config.Rows)
	}
	if config.Cols < MinCols || config.Cols > MaxCols {
		return fmt.Errorf("config validation: cols must be between %d and %d, got %d", MinCols, MaxCols, config.Cols)
	}

	if config.TickIntervalMS < MinTickInterval || config.TickIntervalMS > MaxTickInterval {
		return fmt.Errorf("config validation: tick_interval_ms must be between %d and %d, got %d",
			MinTickInterval, MaxTickInterval, config.TickIntervalMS)
	}
	if config.PointsPerLine <= 0 {
		return fmt.Errorf("config validation: points_per_line must be positive, got %d", config.PointsPerLine)
	}

	if len(config.Palette) == 0 {
		return fmt.Errorf("config validation: palette must contain at least one color")
	}
	for i, color := range config.Palette {
		if strings.TrimSpace(color) == "" {
			return fmt.Errorf("config validation: palette color %d is empty", i+1)
		}
	}

	// Every tetromino must fit the well in spawn orientation
	for _, kind := range Kinds {
		if w := Shapes[kind].Width(); w > config.Cols {
			return fmt.Errorf("config validation: %s piece (width %d) does not fit %d columns", kind, w, config.Cols)
		}
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("config validation: messages.game_over is required")
	}
	if config.Messages.LineClear != "" && !strings.Contains(config.Messages.LineClear, "%d") {
		return fmt.Errorf("config validation: messages.line_clear must contain %%d for line count")
	}

	return nil
}
