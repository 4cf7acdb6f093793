// Package link owns the single authoritative connection flag for the
// BLE transport and the recovery rule attached to it: every disconnect,
// graceful or not, puts the device back into advertising.
package link

import (
	"log/slog"
	"sync"

	"github.com/blewig/blewig/internal/indicator"
)

// State of the BLE link. Connect and disconnect are atomic edges; there
// are no intermediate states.
type State int

const (
	// StateAdvertising is the initial state and the state re-entered on
	// every disconnect.
	StateAdvertising State = iota
	// StateConnected means a central is connected.
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "connected"
	}
	return "advertising"
}

// Advertiser resumes advertising. Resume must be idempotent: calling it
// while already advertising is harmless.
type Advertiser interface {
	Resume() error
}

// Monitor is the connection state machine. The transport invokes
// HandleConnect/HandleDisconnect from its callback context; the main
// loop may read State concurrently.
type Monitor struct {
	mu        sync.Mutex
	state     State
	adv       Advertiser
	indicator *indicator.Controller
}

// NewMonitor creates a Monitor in the advertising state.
func NewMonitor(adv Advertiser, ind *indicator.Controller) *Monitor {
	return &Monitor{adv: adv, indicator: ind}
}

// State returns the current link state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// HandleConnect records the connect edge and refreshes the indicator.
func (m *Monitor) HandleConnect() {
	m.mu.Lock()
	m.state = StateConnected
	m.mu.Unlock()

	slog.Info("[LINK] central connected")
	m.indicator.SetConnected(true)
}

// HandleDisconnect records the disconnect edge, refreshes the indicator,
// and unconditionally resumes advertising. Disconnect reasons are
// informational only and never block re-advertising; there is no
// give-up state.
func (m *Monitor) HandleDisconnect() {
	m.mu.Lock()
	m.state = StateAdvertising
	m.mu.Unlock()

	slog.Info("[LINK] central disconnected, resuming advertising")
	m.indicator.SetConnected(false)

	if err := m.adv.Resume(); err != nil {
		slog.Error("[LINK] resume advertising failed", "error", err)
	}
}
