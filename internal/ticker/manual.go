package ticker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/uploadsim/internal/errors"
)

// Manual is a Scheduler whose ticks are delivered only when the caller
// fires them, on the caller's goroutine.
type Manual struct {
	mu      sync.Mutex
	handles []*ManualHandle
	maxLive int
}

func NewManual() *Manual {
	return &Manual{}
}

// SetLimit bounds live handles; zero means unlimited.
func (m *Manual) SetLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.maxLive = n
}

func (m *Manual) Every(interval time.Duration, fn func()) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxLive > 0 && m.liveLocked() >= m.maxLive {
		return nil, errors.NewResourceError(errors.ErrSchedulerExhausted, "schedule", uuid.Nil)
	}

	h := &ManualHandle{Interval: interval, fn: fn}
	m.handles = append(m.handles, h)

	return h, nil
}

// Handles returns every handle ever scheduled, in order.
func (m *Manual) Handles() []*ManualHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*ManualHandle, len(m.handles))
	copy(out, m.handles)

	return out
}

// Live returns the number of handles not yet stopped.
func (m *Manual) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.liveLocked()
}

// Advance fires every live handle n times, in scheduling order.
func (m *Manual) Advance(n int) {
	for range n {
		for _, h := range m.Handles() {
			if !h.Stopped() {
				h.Fire()
			}
		}
	}
}

func (m *Manual) liveLocked() int {
	live := 0
	for _, h := range m.handles {
		if !h.Stopped() {
			live++
		}
	}

	return live
}

type ManualHandle struct {
	Interval time.Duration
	fn       func()
	stopped  atomic.Bool
	fired    atomic.Int64
}

func (h *ManualHandle) Stop() {
	h.stopped.Store(true)
}

func (h *ManualHandle) Stopped() bool {
	return h.stopped.Load()
}

// Fire runs the callback even if the handle is stopped, the way a tick
// already queued on a real timer can still be delivered after Stop.
func (h *ManualHandle) Fire() {
	h.fired.Add(1)
	h.fn()
}

// Fired returns how many times Fire ran.
func (h *ManualHandle) Fired() int {
	return int(h.fired.Load())
}
