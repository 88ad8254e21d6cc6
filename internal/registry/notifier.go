package registry

import (
	"sync"

	"github.com/samber/lo"

	"github.com/NamanBalaji/uploadsim/internal/common"
)

// Notifier fans registry changes out to listeners without blocking.
// A listener that is not ready misses the change; Snapshot is the source of truth.
type Notifier struct {
	listeners  map[string]chan<- common.Change
	listenerMu sync.RWMutex
	closed     bool
}

func NewNotifier() *Notifier {
	return &Notifier{
		listeners: make(map[string]chan<- common.Change),
	}
}

// RegisterListener adds a change listener. A channel is held under one id
// only: registering it again under another id moves it.
func (n *Notifier) RegisterListener(id string, listener chan<- common.Change) {
	n.listenerMu.Lock()
	defer n.listenerMu.Unlock()

	if n.closed {
		close(listener)
		return
	}

	for other, ch := range n.listeners {
		if ch == listener && other != id {
			delete(n.listeners, other)
		}
	}

	if old, ok := n.listeners[id]; ok && old != listener {
		close(old)
	}

	n.listeners[id] = listener
}

// UnregisterListener removes a change listener
func (n *Notifier) UnregisterListener(id string) {
	n.listenerMu.Lock()
	defer n.listenerMu.Unlock()

	delete(n.listeners, id)
}

// Close closes every listener channel. Later publishes are dropped.
func (n *Notifier) Close() {
	n.listenerMu.Lock()
	defer n.listenerMu.Unlock()

	if n.closed {
		return
	}

	n.closed = true

	for _, ch := range lo.Uniq(lo.Values(n.listeners)) {
		close(ch)
	}
	n.listeners = make(map[string]chan<- common.Change)
}

func (n *Notifier) publish(change common.Change) {
	n.listenerMu.RLock()
	defer n.listenerMu.RUnlock()

	for _, listener := range n.listeners {
		select {
		case listener <- change:
		default:
		}
	}
}
