//go:generate go run go.uber.org/mock/mockgen -source=ticker.go -destination=../../mocks/mock_ticker.go -package=mocks
package ticker

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/uploadsim/internal/errors"
)

// Handle cancels a periodic callback. Stop must be idempotent.
type Handle interface {
	Stop()
}

// Scheduler runs fn every interval until the returned Handle is stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (Handle, error)
}

// Real is a Scheduler backed by time.Ticker, one goroutine per handle.
// A positive maxLive bounds the number of simultaneously live handles.
type Real struct {
	mu      sync.Mutex
	live    int
	maxLive int
	wg      sync.WaitGroup
}

func New(maxLive int) *Real {
	return &Real{maxLive: maxLive}
}

func (r *Real) Every(interval time.Duration, fn func()) (Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid tick interval %s", interval)
	}

	r.mu.Lock()
	if r.maxLive > 0 && r.live >= r.maxLive {
		r.mu.Unlock()
		return nil, errors.NewResourceError(errors.ErrSchedulerExhausted, "schedule", uuid.Nil)
	}
	r.live++
	r.mu.Unlock()

	h := &realHandle{
		t:       time.NewTicker(interval),
		done:    make(chan struct{}),
		release: r.release,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		for {
			select {
			case <-h.done:
				return
			case <-h.t.C:
				fn()
			}
		}
	}()

	return h, nil
}

// Live returns the number of handles not yet stopped.
func (r *Real) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.live
}

// Wait blocks until every callback goroutine has exited.
func (r *Real) Wait() {
	r.wg.Wait()
}

func (r *Real) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.live--
}

type realHandle struct {
	t       *time.Ticker
	done    chan struct{}
	once    sync.Once
	release func()
}

func (h *realHandle) Stop() {
	h.once.Do(func() {
		h.t.Stop()
		close(h.done)
		h.release()
	})
}
