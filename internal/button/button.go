// Package button provides the physical wiggler toggle. On a desktop
// build the "button" is a global key combo captured with gohook; the
// listener debounces the edge and emits one event per press on a
// buffered channel drained by the main loop.
package button

import (
	"sync"
	"time"

	hook "github.com/robotn/gohook"
)

// debounce suppresses contact chatter and key auto-repeat.
const debounce = 200 * time.Millisecond

// Listener watches the configured key combo and emits toggle edges.
type Listener struct {
	keys []string
	ch   chan struct{}
	done chan struct{}
	once sync.Once

	mu       sync.Mutex
	lastEdge time.Time
}

// NewListener creates a Listener for the given key combo.
// keys should be lowercase key names (e.g., ["ctrl", "shift", "w"]).
func NewListener(keys []string) *Listener {
	return &Listener{
		keys: keys,
		ch:   make(chan struct{}, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives toggle edges.
// The channel is closed when Stop is called.
func (l *Listener) Events() <-chan struct{} {
	return l.ch
}

// Start begins listening for the combo.
// This function blocks until Stop is called. Run it in a goroutine.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
		if !l.debounced() {
			return
		}
		select {
		case l.ch <- struct{}{}:
		default: // don't block the hook thread if the loop is behind
		}
	})

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// debounced reports whether enough time has passed since the last
// accepted edge, and records this one if so.
func (l *Listener) debounced() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.Sub(l.lastEdge) < debounce {
		return false
	}
	l.lastEdge = now
	return true
}

// Stop terminates the listener.
// It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}
