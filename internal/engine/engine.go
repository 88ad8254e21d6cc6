package engine

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/uploadsim/internal/common"
	"github.com/NamanBalaji/uploadsim/internal/config"
	"github.com/NamanBalaji/uploadsim/internal/errors"
	"github.com/NamanBalaji/uploadsim/internal/logger"
	"github.com/NamanBalaji/uploadsim/internal/mimeclass"
	"github.com/NamanBalaji/uploadsim/internal/progress"
	"github.com/NamanBalaji/uploadsim/internal/registry"
	"github.com/NamanBalaji/uploadsim/internal/simulator"
	"github.com/NamanBalaji/uploadsim/internal/status"
	"github.com/NamanBalaji/uploadsim/internal/ticker"
)

const untitled = "untitled"

// Engine turns file-pick events into tracked uploads and owns the
// simulator of every task until the task is removed or the screen is torn down.
type Engine struct {
	mu sync.Mutex

	registry   *registry.Registry
	simulators map[uuid.UUID]*simulator.Simulator

	scheduler ticker.Scheduler
	newSource progress.Factory
	interval  time.Duration
	newID     func() uuid.UUID
	now       func() time.Time

	closed bool
}

type Option func(*Engine)

// WithScheduler sets the tick source. If s has a Wait method, teardown
// blocks on it, so s must not be shared with other owners.
func WithScheduler(s ticker.Scheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

func WithSourceFactory(f progress.Factory) Option {
	return func(e *Engine) {
		e.newSource = f
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator replaces uuid.New for task ids.
func WithIDGenerator(gen func() uuid.UUID) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// New creates an Engine from cfg. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		simulators: make(map[uuid.UUID]*simulator.Simulator),
		scheduler:  ticker.New(cfg.MaxTimers),
		newSource:  progress.NewFactory(cfg.Seed, cfg.MinIncrement, cfg.MaxIncrement),
		interval:   cfg.TickInterval,
		newID:      uuid.New,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.registry = registry.New(registry.WithClock(e.now))

	return e, nil
}

// OnFileSelected creates a task for desc and starts simulating its upload.
// When no timer can be acquired the task stays Pending, its id is returned
// together with a retryable error, and Retry can start it later.
func (e *Engine) OnFileSelected(desc common.FileDescriptor) (uuid.UUID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return uuid.Nil, errors.NewLifecycleError(errors.ErrEngineClosed, "select", uuid.Nil)
	}

	name := strings.TrimSpace(desc.Name)
	if name == "" {
		name = untitled
	}

	mimeType := strings.TrimSpace(desc.MimeTypeHint)
	if mimeType == "" {
		mimeType = mimeclass.DefaultMIME
	}

	id, err := e.registry.Insert(common.UploadTask{
		ID:          e.newID(),
		DisplayName: name,
		MimeType:    mimeType,
		MimeClass:   mimeclass.Infer(name, desc.MimeTypeHint),
		CreatedAt:   e.now(),
	})
	if err != nil {
		return uuid.Nil, err
	}

	logger.Infof("Tracking upload %s (%s, %s)", id, name, mimeType)

	err = e.startLocked(id)
	if err != nil {
		return id, err
	}

	return id, nil
}

// Retry starts the simulator of a task left Pending by a failed start.
// Tasks in any other state are left alone.
func (e *Engine) Retry(id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.NewLifecycleError(errors.ErrEngineClosed, "retry", id)
	}

	task, ok := e.registry.Get(id)
	if !ok {
		return errors.NewLifecycleError(errors.ErrTaskNotFound, "retry", id)
	}

	if task.State != status.Pending {
		return nil
	}

	return e.startLocked(id)
}

// OnRemoveRequested stops the task's simulator and deletes the task.
// It is idempotent and safe to call while ticks are in flight.
func (e *Engine) OnRemoveRequested(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sim, ok := e.simulators[id]; ok {
		sim.Stop()
	}

	e.registry.Remove(id)
	delete(e.simulators, id)
}

// OnScreenTorndown removes every task, stops every simulator and closes
// subscriber channels. It must be called by the host when the screen goes
// away; later file selections fail with ErrEngineClosed.
func (e *Engine) OnScreenTorndown() {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return
	}

	e.closed = true

	// Shutdown stops every attached simulator; completed ones already halted.
	e.registry.Shutdown()

	stopped := len(e.simulators)
	e.simulators = make(map[uuid.UUID]*simulator.Simulator)

	e.mu.Unlock()

	if w, ok := e.scheduler.(interface{ Wait() }); ok {
		w.Wait()
	}

	e.registry.Close()

	logger.Infof("Screen torn down, %d simulators released", stopped)
}

// Snapshot returns all tasks, newest first.
func (e *Engine) Snapshot() []common.UploadTask {
	return e.registry.Snapshot()
}

func (e *Engine) Get(id uuid.UUID) (common.UploadTask, bool) {
	return e.registry.Get(id)
}

func (e *Engine) Stats() common.Stats {
	return e.registry.Stats()
}

// Subscribe registers ch for change notifications. Channels are closed on teardown.
func (e *Engine) Subscribe(name string, ch chan<- common.Change) {
	e.registry.Subscribe(name, ch)
}

func (e *Engine) Unsubscribe(name string) {
	e.registry.Unsubscribe(name)
}

// Simulators returns how many simulators the engine still tracks.
func (e *Engine) Simulators() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.simulators)
}

func (e *Engine) startLocked(id uuid.UUID) error {
	sim := simulator.New(e.scheduler, e.interval, e.newSource())

	err := sim.Start(id, e.registry)
	if err != nil {
		logger.Warnf("Upload %s left pending: %v", id, err)
		return err
	}

	if !e.registry.Activate(id, sim) {
		sim.Stop()
		return errors.NewInvariantError(errors.New("task not pending at activation"), "activate", id)
	}

	e.simulators[id] = sim

	return nil
}
