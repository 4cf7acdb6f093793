// Package indicator maps the bridge's coarse state onto the status LED.
// The policy is a pure function of (wiggler active, connected); actually
// driving the LED hardware is the Sink's problem.
package indicator

import (
	"log/slog"
	"sync"
)

// Mode is one of the three visual states, lowest priority first.
type Mode int

const (
	// ModeAdvertising: not connected, waiting for a central.
	ModeAdvertising Mode = iota
	// ModeConnected: a central is connected.
	ModeConnected
	// ModeWiggling: the wiggler is active (shown regardless of connection).
	ModeWiggling
)

func (m Mode) String() string {
	switch m {
	case ModeAdvertising:
		return "advertising"
	case ModeConnected:
		return "connected"
	case ModeWiggling:
		return "wiggling"
	default:
		return "unknown"
	}
}

// Evaluate applies the fixed priority: wiggler-active > connected >
// advertising.
func Evaluate(wiggling, connected bool) Mode {
	switch {
	case wiggling:
		return ModeWiggling
	case connected:
		return ModeConnected
	default:
		return ModeAdvertising
	}
}

// Sink receives the evaluated mode. Implementations must tolerate being
// handed the same mode repeatedly.
type Sink interface {
	Apply(mode Mode) error
}

// Controller owns the two policy inputs and pushes a fresh evaluation to
// the sink on every mutation, so the visible indicator is never stale.
// Safe for concurrent use from the transport callbacks and the main loop.
type Controller struct {
	mu        sync.Mutex
	sink      Sink
	wiggling  bool
	connected bool
}

// NewController creates a Controller and applies the initial
// (advertising) mode to the sink.
func NewController(sink Sink) *Controller {
	c := &Controller{sink: sink}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(ModeAdvertising)
	return c
}

// SetWiggling updates the wiggler input and re-evaluates. The sink is
// applied inside the critical section so concurrent mutations reach it
// in commit order and the last applied mode matches the final inputs.
func (c *Controller) SetWiggling(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.wiggling = active
	c.applyLocked(Evaluate(c.wiggling, c.connected))
}

// SetConnected updates the connection input and re-evaluates.
func (c *Controller) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = connected
	c.applyLocked(Evaluate(c.wiggling, c.connected))
}

// applyLocked pushes the mode to the sink. Caller must hold mu; the
// sink must not call back into the Controller. The LED is cosmetic, so
// sink failures are logged and dropped.
func (c *Controller) applyLocked(mode Mode) {
	if err := c.sink.Apply(mode); err != nil {
		slog.Warn("[LED] apply failed", "mode", mode, "error", err)
	}
}
