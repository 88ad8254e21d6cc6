package registry

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/NamanBalaji/uploadsim/internal/common"
	"github.com/NamanBalaji/uploadsim/internal/errors"
	"github.com/NamanBalaji/uploadsim/internal/logger"
	"github.com/NamanBalaji/uploadsim/internal/status"
)

// Outcome reports what ApplyProgress did.
type Outcome int

const (
	// OutcomeIgnored means the task is gone or not in progress; nothing changed.
	OutcomeIgnored Outcome = iota
	OutcomeApplied
	// OutcomeCompleted means this call wrote 1.0 and the tick source must stop.
	OutcomeCompleted
)

// Stopper tears down the tick source attached to an in-progress task.
type Stopper interface {
	Stop()
}

type entry struct {
	task    common.UploadTask
	stopper Stopper
	seq     uint64
}

// Registry is the single source of truth for upload tasks. Every mutation
// runs under mu. Stoppers are only called after mu is released, so a tick
// blocked on the registry can never deadlock a removal.
type Registry struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*entry
	used  map[uuid.UUID]struct{}
	seq   uint64

	now      func() time.Time
	notifier *Notifier
}

type Option func(*Registry)

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		tasks:    make(map[uuid.UUID]*entry),
		used:     make(map[uuid.UUID]struct{}),
		now:      time.Now,
		notifier: NewNotifier(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Insert adds task in Pending and returns its id. Reusing an id, live or
// removed, is an invariant violation.
func (r *Registry) Insert(task common.UploadTask) (uuid.UUID, error) {
	if task.ID == uuid.Nil {
		return uuid.Nil, errors.NewInvariantError(errors.New("nil task id"), "insert", uuid.Nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.used[task.ID]; ok {
		logger.Errorf("Rejected duplicate task id %s", task.ID)
		return uuid.Nil, errors.NewInvariantError(errors.ErrDuplicateTask, "insert", task.ID)
	}

	task.State = status.Pending
	task.Progress = clamp(task.Progress)
	task.CompletedAt = time.Time{}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = r.now()
	}

	r.seq++
	r.used[task.ID] = struct{}{}
	r.tasks[task.ID] = &entry{task: task, seq: r.seq}

	r.publishLocked(task, common.ChangeInserted)

	return task.ID, nil
}

// Activate attaches the task's tick source and promotes it to InProgress.
// It returns false, leaving everything untouched, unless the task is Pending.
func (r *Registry) Activate(id uuid.UUID, stopper Stopper) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok || e.task.State != status.Pending {
		return false
	}

	e.task.State = status.InProgress
	e.stopper = stopper

	r.publishLocked(e.task, common.ChangeActivated)

	return true
}

// ApplyProgress advances an InProgress task by delta, clamped to 1.0.
// Calls for unknown or inactive tasks are silently ignored.
func (r *Registry) ApplyProgress(id uuid.UUID, delta float64) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.tasks[id]
	if !ok || e.task.State != status.InProgress {
		return OutcomeIgnored
	}

	if math.IsNaN(delta) || delta < 0 {
		delta = 0
	}

	next := e.task.Progress + delta
	if next < 1 {
		e.task.Progress = next
		r.publishLocked(e.task, common.ChangeProgressed)

		return OutcomeApplied
	}

	e.task.Progress = 1
	e.task.State = status.Completed
	e.task.CompletedAt = r.now()
	// the simulator stops itself on OutcomeCompleted
	e.stopper = nil

	r.publishLocked(e.task, common.ChangeCompleted)
	logger.Debugf("Task %s completed", id)

	return OutcomeCompleted
}

// Remove marks the task Removed, deletes it, and stops its tick source.
// Removing an unknown id is a no-op.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()

	e, ok := r.tasks[id]
	if !ok {
		r.mu.Unlock()
		return
	}

	stopper := r.removeLocked(e)
	r.mu.Unlock()

	if stopper != nil {
		stopper.Stop()
	}
}

// Shutdown removes every task and stops every attached tick source.
// The registry remains usable afterwards.
func (r *Registry) Shutdown() {
	r.mu.Lock()

	stoppers := make([]Stopper, 0, len(r.tasks))
	for _, e := range r.entriesLocked() {
		if s := r.removeLocked(e); s != nil {
			stoppers = append(stoppers, s)
		}
	}

	r.mu.Unlock()

	for _, s := range stoppers {
		s.Stop()
	}

	logger.Infof("Registry shut down, %d tick sources stopped", len(stoppers))
}

// Snapshot returns a point-in-time copy of all tasks, newest first.
func (r *Registry) Snapshot() []common.UploadTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Map(r.entriesLocked(), func(e *entry, _ int) common.UploadTask {
		return e.task
	})
}

// Get returns a copy of a single task.
func (r *Registry) Get(id uuid.UUID) (common.UploadTask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.tasks[id]
	if !ok {
		return common.UploadTask{}, false
	}

	return e.task, true
}

// Len returns the number of live tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tasks)
}

// Stats returns task counts by state.
func (r *Registry) Stats() common.Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := lo.Values(r.tasks)
	byState := func(s status.State) int {
		return lo.CountBy(tasks, func(e *entry) bool { return e.task.State == s })
	}

	return common.Stats{
		Total:      len(tasks),
		Pending:    byState(status.Pending),
		InProgress: byState(status.InProgress),
		Completed:  byState(status.Completed),
	}
}

// Subscribe registers ch for change notifications under name.
func (r *Registry) Subscribe(name string, ch chan<- common.Change) {
	r.notifier.RegisterListener(name, ch)
}

func (r *Registry) Unsubscribe(name string) {
	r.notifier.UnregisterListener(name)
}

// Close closes all subscriber channels.
func (r *Registry) Close() {
	r.notifier.Close()
}

func (r *Registry) removeLocked(e *entry) Stopper {
	e.task.State = status.Removed
	stopper := e.stopper
	e.stopper = nil

	delete(r.tasks, e.task.ID)
	r.publishLocked(e.task, common.ChangeRemoved)

	return stopper
}

func (r *Registry) entriesLocked() []*entry {
	entries := lo.Values(r.tasks)
	slices.SortFunc(entries, func(a, b *entry) int {
		switch {
		case a.seq > b.seq:
			return -1
		case a.seq < b.seq:
			return 1
		default:
			return 0
		}
	})

	return entries
}

func (r *Registry) publishLocked(task common.UploadTask, kind common.ChangeKind) {
	r.notifier.publish(common.Change{
		TaskID:    task.ID,
		Kind:      kind,
		State:     task.State,
		Progress:  task.Progress,
		Timestamp: r.now(),
	})
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p) || p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
