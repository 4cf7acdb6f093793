// Package wiggler implements the host-keep-awake actuator: a periodic
// pair of equal-and-opposite pointer nudges with no net cursor drift.
package wiggler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/blewig/blewig/internal/indicator"
)

const (
	// DefaultInterval between wiggle fires.
	DefaultInterval = 30 * time.Second

	// moveMagnitude is the size of each nudge in HID units.
	moveMagnitude = 10

	// returnDelay separates the two opposite moves so the host never
	// sees a single-direction jump.
	returnDelay = 120 * time.Millisecond
)

// Pointer is the slice of the HID output the scheduler needs.
type Pointer interface {
	MoveRel(dx, dy int8) error
}

// Mirror receives every state change so the notify characteristic stays
// consistent with the actuation flag.
type Mirror interface {
	WigglerChanged(active bool)
}

// Scheduler owns the actuation flag and the fire timer. SetActive is
// the only mutation path and is shared by the physical button edge and
// the characteristic write; both serialize through one mutex so the
// mirrored characteristic and the indicator never disagree.
type Scheduler struct {
	mu        sync.Mutex
	active    bool
	lastFire  time.Time
	direction bool // flips every fire

	interval time.Duration
	out      Pointer
	mirror   Mirror
	ind      *indicator.Controller

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates an inactive Scheduler. interval <= 0 selects the default.
func New(out Pointer, mirror Mirror, ind *indicator.Controller, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		out:      out,
		mirror:   mirror,
		ind:      ind,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Active returns the current actuation flag.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActive sets the actuation flag. Every call mirrors the value to
// the characteristic (which notifies subscribers) and re-evaluates the
// indicator, regardless of trigger. The publishes happen inside the
// critical section: concurrent callers resolve to last-write-wins and
// their notifications land in commit order, so the last notified value
// always matches the final state.
func (s *Scheduler) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setActiveLocked(active)
}

// Toggle flips the actuation flag and returns the new value.
func (s *Scheduler) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setActiveLocked(!s.active)
	return s.active
}

// setActiveLocked commits and publishes one state write. Caller must
// hold mu. The mirror and indicator must not call back into the
// Scheduler.
func (s *Scheduler) setActiveLocked(active bool) {
	if active && !s.active {
		// Fresh activation: the first fire happens one full interval out.
		s.lastFire = s.now()
	}
	s.active = active

	slog.Info("[WIGGLER] state", "active", active)
	s.mirror.WigglerChanged(active)
	s.ind.SetWiggling(active)
}

// Tick is called from the main cooperative loop. When the interval has
// elapsed it emits the two-part wiggle. The 120 ms delay between the
// moves blocks only the caller's loop; characteristic writes keep
// landing on the transport context and simply wait on the mutex for the
// brief bookkeeping section, never for the delay. A fire sequence that
// has started always runs to completion.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	if !s.active || s.now().Sub(s.lastFire) < s.interval {
		s.mu.Unlock()
		return
	}
	s.lastFire = s.now()
	s.direction = !s.direction
	delta := int8(moveMagnitude)
	if !s.direction {
		delta = -moveMagnitude
	}
	s.mu.Unlock()

	slog.Debug("[WIGGLER] fire", "delta", delta)
	if err := s.out.MoveRel(delta, 0); err != nil {
		slog.Warn("[WIGGLER] move failed", "error", err)
	}
	s.sleep(returnDelay)
	if err := s.out.MoveRel(-delta, 0); err != nil {
		slog.Warn("[WIGGLER] return move failed", "error", err)
	}
}
