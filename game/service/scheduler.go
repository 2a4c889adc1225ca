package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// TickFunc applies one scheduled gravity step. Returning false ends the
// schedule. ctx is cancelled once the schedule has been stopped.
type TickFunc func(ctx context.Context, sessionID string) bool

// Scheduler runs one ticker goroutine per running session
type Scheduler struct {
	parent context.Context
	tick   TickFunc

	mu   sync.Mutex
	runs map[string]*run
	wg   sync.WaitGroup
}

type run struct {
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler whose schedules all end when parent is done
func NewScheduler(parent context.Context, tick TickFunc) *Scheduler {
	return &Scheduler{
		parent: parent,
		tick:   tick,
		runs:   make(map[string]*run),
	}
}

// Start begins ticking sessionID every interval, replacing any running schedule
func (s *Scheduler) Start(sessionID string, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.runs[sessionID]; ok {
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(s.parent)
	r := &run{cancel: cancel}
	s.runs[sessionID] = r

	s.wg.Add(1)
	go s.loop(ctx, r, sessionID, interval)

	log.Debug().Str("session", sessionID).Dur("interval", interval).Msg("scheduler started")
}

// Stop cancels the schedule for sessionID without waiting for it to exit.
// It is safe to call while holding the session lock.
func (s *Scheduler) Stop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.runs[sessionID]; ok {
		r.cancel()
		delete(s.runs, sessionID)
		log.Debug().Str("session", sessionID).Msg("scheduler stopped")
	}
}

// Running reports whether sessionID has an active schedule
func (s *Scheduler) Running(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.runs[sessionID]
	return ok
}

// Count returns the number of active schedules
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// StopAll cancels every schedule and waits for the goroutines to return
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	for id, r := range s.runs {
		r.cancel()
		delete(s.runs, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, r *run, sessionID string, interval time.Duration) {
	defer s.wg.Done()
	defer s.release(r, sessionID)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.tick(ctx, sessionID) {
				return
			}
		}
	}
}

// release drops the map entry when it still belongs to r
func (s *Scheduler) release(r *run, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.cancel()
	if current, ok := s.runs[sessionID]; ok && current == r {
		delete(s.runs, sessionID)
	}
}
