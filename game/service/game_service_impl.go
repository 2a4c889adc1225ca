package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/black-block-blast/game/engine"
)

// Option configures a game service
type Option func(*gameServiceImpl)

// WithNotifier pushes every state change to n
func WithNotifier(n StateNotifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// WithScheduler enables server-side gravity: started sessions tick on their
// config interval until stopped, game over, deletion, or ctx is done.
func WithScheduler(ctx context.Context) Option {
	return func(s *gameServiceImpl) {
		s.scheduler = NewScheduler(ctx, s.scheduledTick)
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	notifier  StateNotifier
	scheduler *Scheduler
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new idle game session. A nil seed picks a random one.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed *uint64) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found (available configs: %v): %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	gameSeed := rand.Uint64()
	if seed != nil {
		gameSeed = *seed
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config, gameSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	log.Info().
		Str("session", session.ID).
		Str("config", configID).
		Uint64("seed", gameSeed).
		Msg("session created")

	info := s.sessionInfo(session)
	info.ConfigName = configID
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession stops the session's gravity schedule and removes it
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.stopSchedule(session.ID)
	if err := s.sessions.Delete(session.ID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}

	log.Info().Str("session", session.ID).Msg("session deleted")
	return nil
}

// CleanupExpiredSessions removes sessions idle for longer than maxAge
func (s *gameServiceImpl) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) int {
	removed := s.sessions.CleanupExpiredSessions(maxAge)
	for _, id := range removed {
		s.stopSchedule(id)
	}
	if len(removed) > 0 {
		log.Info().Int("removed", len(removed)).Msg("expired sessions cleaned up")
	}
	return len(removed)
}

// Start resets the session's game and begins play
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string) (*engine.GameState, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	session.Do(func(e *engine.GameEngine) {
		state = e.Start()
		if state.Status == engine.Running && s.scheduler != nil {
			s.scheduler.Start(session.ID, session.Config.TickInterval())
		}
		s.notify(session.ID, state)
	})

	log.Info().Str("session", session.ID).Str("config", session.Config.Name).Msg("game started")
	return state, nil
}

// Stop halts gravity and detaches input until the next Start
func (s *gameServiceImpl) Stop(ctx context.Context, sessionID string) (*engine.GameState, error) {
	state, _, err := s.stop(sessionID)
	return state, err
}

// stop reports whether the game was running; stopping an idle or finished
// game leaves it untouched
func (s *gameServiceImpl) stop(sessionID string) (*engine.GameState, bool, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, false, err
	}

	var state *engine.GameState
	var changed bool
	session.Do(func(e *engine.GameEngine) {
		changed = e.Status() == engine.Running
		state = e.Stop()
		s.stopSchedule(session.ID)
		if changed {
			s.notify(session.ID, state)
		}
	})

	if changed {
		log.Info().Str("session", session.ID).Int("score", state.Score).Msg("game stopped")
	}
	return state, changed, nil
}

// Command applies a gameplay command (left, right, rotate, down) or a
// lifecycle command (start, stop)
func (s *gameServiceImpl) Command(ctx context.Context, sessionID, command string) (*CommandResult, error) {
	name := strings.ToLower(strings.TrimSpace(command))

	switch name {
	case CmdStart:
		state, err := s.Start(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		return lifecycleResult(name, state, true), nil
	case CmdStop:
		state, changed, err := s.stop(sessionID)
		if err != nil {
			return nil, err
		}
		return lifecycleResult(name, state, changed), nil
	}

	cmd, ok := engine.ParseCommand(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected left, right, rotate, down, start or stop)", ErrUnknownCommand, command)
	}

	return s.apply(sessionID, name, func(e *engine.GameEngine) engine.Outcome {
		return e.HandleCommand(cmd)
	})
}

// Tick applies one gravity step on behalf of a caller that owns its own clock
func (s *gameServiceImpl) Tick(ctx context.Context, sessionID string) (*CommandResult, error) {
	return s.apply(sessionID, "tick", func(e *engine.GameEngine) engine.Outcome {
		return e.Tick()
	})
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	var state *engine.GameState
	session.Do(func(e *engine.GameEngine) {
		state = e.GetState()
	})
	return state, nil
}

// ListConfigs returns available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// Shutdown stops every gravity schedule
func (s *gameServiceImpl) Shutdown() {
	if s.scheduler != nil {
		s.scheduler.StopAll()
	}
}

// apply runs one engine step under the session lock and reports what it did
func (s *gameServiceImpl) apply(sessionID, label string, step func(e *engine.GameEngine) engine.Outcome) (*CommandResult, error) {
	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	result := &CommandResult{Command: label}
	session.Do(func(e *engine.GameEngine) {
		outcome := step(e)
		state := e.GetState()

		result.Applied = outcome.Changed
		result.Outcome = outcome
		result.GameState = state
		result.Events = outcomeEvents(outcome, state)

		if outcome.GameOver {
			s.stopSchedule(session.ID)
		}
		if outcome.Changed {
			s.notify(session.ID, state)
		}
	})

	log.Debug().
		Str("session", session.ID).
		Str("command", label).
		Bool("applied", result.Applied).
		Int("lines", result.Outcome.LinesCleared).
		Int("score", result.GameState.Score).
		Msg("command processed")

	return result, nil
}

// scheduledTick is the Scheduler callback; it ends the schedule once the
// game leaves Running or the session is gone
func (s *gameServiceImpl) scheduledTick(ctx context.Context, sessionID string) bool {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return false
	}

	keepGoing := true
	session.Do(func(e *engine.GameEngine) {
		// A stop may have raced with this tick
		if ctx.Err() != nil || e.Status() != engine.Running {
			keepGoing = false
			return
		}

		outcome := e.Tick()
		if outcome.Changed {
			s.notify(session.ID, e.GetState())
		}
		if outcome.GameOver {
			log.Info().Str("session", session.ID).Int("score", e.GetScore()).Msg("game over")
			keepGoing = false
		}
	})
	return keepGoing
}

func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(session.ID)
	return session, nil
}

func (s *gameServiceImpl) stopSchedule(sessionID string) {
	if s.scheduler != nil {
		s.scheduler.Stop(sessionID)
	}
}

func (s *gameServiceImpl) notify(sessionID string, state *engine.GameState) {
	if s.notifier == nil {
		return
	}
	event := EventStateUpdate
	if state.Status == engine.GameOver {
		event = EventGameOver
	}
	s.notifier.NotifyState(sessionID, event, state)
}

func (s *gameServiceImpl) sessionInfo(session *Session) *SessionInfo {
	var state *engine.GameState
	session.Do(func(e *engine.GameEngine) {
		state = e.GetState()
	})

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name), // Return config_id consistently
		Seed:           session.Seed,
		Ticking:        s.scheduler != nil && s.scheduler.Running(session.ID),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessed(),
		GameState:      state,
		GameConfig:     session.Config,
	}
}

// lifecycleResult describes a start or stop; a no-op carries no events
func lifecycleResult(command string, state *engine.GameState, changed bool) *CommandResult {
	result := &CommandResult{
		Command:   command,
		Applied:   changed,
		GameState: state,
	}
	if !changed {
		return result
	}

	result.Outcome = engine.Outcome{Changed: true, Spawned: command == CmdStart, GameOver: state.Status == engine.GameOver}
	result.Events = []GameEvent{{
		Type:      command,
		Message:   state.Message,
		Score:     state.Score,
		Timestamp: time.Now(),
	}}
	return result
}

// outcomeEvents expands an Outcome into the events a client displays
func outcomeEvents(outcome engine.Outcome, state *engine.GameState) []GameEvent {
	now := time.Now()
	var events []GameEvent

	if outcome.Locked {
		events = append(events, GameEvent{Type: "lock", Score: state.Score, Timestamp: now})
	}
	if outcome.LinesCleared > 0 {
		events = append(events, GameEvent{
			Type:      "line_clear",
			Message:   state.Message,
			Lines:     outcome.LinesCleared,
			Score:     state.Score,
			Timestamp: now,
		})
	}
	if outcome.GameOver {
		events = append(events, GameEvent{Type: "game_over", Message: state.Message, Score: state.Score, Timestamp: now})
	} else if outcome.Spawned {
		events = append(events, GameEvent{Type: "spawn", Score: state.Score, Timestamp: now})
	}
	return events
}
