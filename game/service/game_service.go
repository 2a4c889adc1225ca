package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/black-block-blast/game/engine"
)

// ErrUnknownCommand is returned for input that is neither a gameplay command
// nor start/stop
var ErrUnknownCommand = errors.New("unknown command")

// Lifecycle commands accepted by Command alongside the engine commands
const (
	CmdStart = "start"
	CmdStop  = "stop"
)

// Event names pushed to a StateNotifier
const (
	EventStateUpdate = "state_update"
	EventGameOver    = "game_over"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string, seed *uint64) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int

	// Game Operations
	Start(ctx context.Context, sessionID string) (*engine.GameState, error)
	Stop(ctx context.Context, sessionID string) (*engine.GameState, error)
	Command(ctx context.Context, sessionID, command string) (*CommandResult, error)
	Tick(ctx context.Context, sessionID string) (*CommandResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Shutdown stops every gravity schedule and waits for them to exit
	Shutdown()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig, seed uint64) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) []string
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// StateNotifier receives a snapshot whenever a session changes
type StateNotifier interface {
	NotifyState(sessionID, event string, state *engine.GameState)
}

// Session represents an active game session. Every engine call made through
// the service holds the session lock.
type Session struct {
	ID        string
	Engine    *engine.GameEngine
	Config    *engine.GameConfig
	Seed      uint64
	CreatedAt time.Time

	mu sync.Mutex

	accessMu       sync.RWMutex
	lastAccessedAt time.Time
}

// Touch records t as the last access time
func (s *Session) Touch(t time.Time) {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	s.lastAccessedAt = t
}

// LastAccessed returns the last access time
func (s *Session) LastAccessed() time.Time {
	s.accessMu.RLock()
	defer s.accessMu.RUnlock()
	return s.lastAccessedAt
}

// Do runs fn with the session lock held
func (s *Session) Do(fn func(e *engine.GameEngine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Engine)
}
