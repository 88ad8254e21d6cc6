package simulator

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/uploadsim/internal/errors"
	"github.com/NamanBalaji/uploadsim/internal/logger"
	"github.com/NamanBalaji/uploadsim/internal/progress"
	"github.com/NamanBalaji/uploadsim/internal/registry"
	"github.com/NamanBalaji/uploadsim/internal/ticker"
)

// Sink receives the increments produced by a Simulator.
type Sink interface {
	ApplyProgress(id uuid.UUID, delta float64) registry.Outcome
}

// Simulator drives simulated progress for exactly one task. It owns the
// task's tick handle from Start until Stop or natural completion.
type Simulator struct {
	scheduler ticker.Scheduler
	interval  time.Duration
	source    progress.Source

	// mu serializes tick delivery against Stop
	mu      sync.Mutex
	id      uuid.UUID
	sink    Sink
	handle  ticker.Handle
	started bool
	stopped bool
	ticks   int
}

func New(scheduler ticker.Scheduler, interval time.Duration, source progress.Source) *Simulator {
	return &Simulator{
		scheduler: scheduler,
		interval:  interval,
		source:    source,
	}
}

// Start begins ticking for id. Scheduler failures are returned wrapped and
// leave the simulator startable again.
func (s *Simulator) Start(id uuid.UUID, sink Sink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return errors.NewLifecycleError(errors.ErrSimulatorStopped, "start", id)
	}

	if s.started {
		return errors.NewLifecycleError(errors.ErrAlreadyStarted, "start", id)
	}

	s.id = id
	s.sink = sink

	h, err := s.scheduler.Every(s.interval, s.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule ticks for %s: %w", id, err)
	}

	s.handle = h
	s.started = true

	logger.Debugf("Simulator started for %s every %s", id, s.interval)

	return nil
}

// Stop cancels the tick source. It is idempotent, and once it returns the
// sink receives no further calls from this simulator.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.haltLocked()
}

// Stopped reports whether the simulator was stopped or completed.
func (s *Simulator) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stopped
}

// Ticks returns how many ticks reached the sink.
func (s *Simulator) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ticks
}

func (s *Simulator) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || !s.started {
		return
	}

	s.ticks++

	if s.sink.ApplyProgress(s.id, s.source.Next()) == registry.OutcomeCompleted {
		logger.Debugf("Simulator for %s finished after %d ticks", s.id, s.ticks)
		s.haltLocked()
	}
}

func (s *Simulator) haltLocked() {
	if s.stopped {
		return
	}

	s.stopped = true

	if s.handle != nil {
		s.handle.Stop()
	}
}
