package link

import (
	"sync"
	"testing"

	"github.com/blewig/blewig/internal/indicator"
)

// countingAdvertiser counts Resume calls.
type countingAdvertiser struct {
	mu      sync.Mutex
	resumes int
}

func (a *countingAdvertiser) Resume() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resumes++
	return nil
}

func (a *countingAdvertiser) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resumes
}

// nullSink discards indicator modes.
type nullSink struct{}

func (nullSink) Apply(indicator.Mode) error { return nil }

func newTestMonitor() (*Monitor, *countingAdvertiser) {
	adv := &countingAdvertiser{}
	return NewMonitor(adv, indicator.NewController(nullSink{})), adv
}

func TestMonitorStartsAdvertising(t *testing.T) {
	m, _ := newTestMonitor()
	if m.State() != StateAdvertising {
		t.Errorf("initial State() = %v, want advertising", m.State())
	}
}

func TestMonitorConnectDisconnect(t *testing.T) {
	m, adv := newTestMonitor()

	m.HandleConnect()
	if m.State() != StateConnected {
		t.Errorf("State() after connect = %v, want connected", m.State())
	}
	if adv.count() != 0 {
		t.Errorf("Resume called %d times before any disconnect", adv.count())
	}

	m.HandleDisconnect()
	if m.State() != StateAdvertising {
		t.Errorf("State() after disconnect = %v, want advertising", m.State())
	}
	if adv.count() != 1 {
		t.Errorf("Resume called %d times, want exactly 1", adv.count())
	}
}

func TestMonitorDisconnectWhileAdvertisingStillResumes(t *testing.T) {
	// An ungraceful drop can surface after the state already fell back;
	// resume must be unconditional and the advertiser idempotent.
	m, adv := newTestMonitor()

	m.HandleDisconnect()
	if m.State() != StateAdvertising {
		t.Errorf("State() = %v, want advertising", m.State())
	}
	if adv.count() != 1 {
		t.Errorf("Resume called %d times, want 1", adv.count())
	}
}

func TestMonitorRepeatedCycles(t *testing.T) {
	m, adv := newTestMonitor()

	for i := 0; i < 3; i++ {
		m.HandleConnect()
		m.HandleDisconnect()
	}
	if adv.count() != 3 {
		t.Errorf("Resume called %d times after 3 cycles, want 3", adv.count())
	}
}
