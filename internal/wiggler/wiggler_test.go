package wiggler

import (
	"sync"
	"testing"
	"time"

	"github.com/blewig/blewig/internal/indicator"
)

type recordPointer struct {
	moves [][2]int8
}

func (p *recordPointer) MoveRel(dx, dy int8) error {
	p.moves = append(p.moves, [2]int8{dx, dy})
	return nil
}

type recordMirror struct {
	values []bool
}

func (m *recordMirror) WigglerChanged(active bool) {
	m.values = append(m.values, active)
}

type nullSink struct{}

func (nullSink) Apply(indicator.Mode) error { return nil }

type fixture struct {
	s      *Scheduler
	out    *recordPointer
	mirror *recordMirror
	clock  time.Time
	slept  []time.Duration
}

func newFixture(interval time.Duration) *fixture {
	f := &fixture{
		out:    &recordPointer{},
		mirror: &recordMirror{},
		clock:  time.Unix(1000, 0),
	}
	f.s = New(f.out, f.mirror, indicator.NewController(nullSink{}), interval)
	f.s.now = func() time.Time { return f.clock }
	f.s.sleep = func(d time.Duration) { f.slept = append(f.slept, d) }
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func TestSetActiveMirrorsEveryCall(t *testing.T) {
	f := newFixture(0)

	f.s.SetActive(true)
	f.s.SetActive(false)

	if got := f.mirror.values; len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("mirrored values = %v, want [true false]", got)
	}
	if f.s.Active() {
		t.Error("Active() = true after toggling back off")
	}
}

// gateMirror parks inside WigglerChanged until released, exposing the
// window between committing a write and publishing it.
type gateMirror struct {
	entered chan bool
	release chan struct{}

	mu     sync.Mutex
	values []bool
}

func (m *gateMirror) WigglerChanged(active bool) {
	m.entered <- active
	<-m.release
	m.mu.Lock()
	m.values = append(m.values, active)
	m.mu.Unlock()
}

func (m *gateMirror) recorded() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.values...)
}

func TestConcurrentWritesNotifyInCommitOrder(t *testing.T) {
	mirror := &gateMirror{entered: make(chan bool), release: make(chan struct{})}
	s := New(&recordPointer{}, mirror, indicator.NewController(nullSink{}), 0)

	onDone := make(chan struct{})
	go func() {
		s.SetActive(true)
		close(onDone)
	}()
	if got := <-mirror.entered; got != true {
		t.Fatalf("first publish = %v, want true", got)
	}

	// The opposite write from the other trigger arrives while the first
	// publish is still in flight.
	offDone := make(chan struct{})
	go func() {
		s.SetActive(false)
		close(offDone)
	}()

	// It must not publish before the first write's publish completes;
	// otherwise subscribers end up believing the inverse of the state.
	select {
	case got := <-mirror.entered:
		t.Fatalf("second write published %v before the first completed", got)
	case <-time.After(50 * time.Millisecond):
	}

	close(mirror.release)
	if got := <-mirror.entered; got != false {
		t.Fatalf("second publish = %v, want false", got)
	}
	<-onDone
	<-offDone

	values := mirror.recorded()
	if len(values) != 2 || values[0] != true || values[1] != false {
		t.Errorf("notified values = %v, want [true false]", values)
	}
	if last := values[len(values)-1]; last != s.Active() {
		t.Errorf("last notified value = %v, state = %v; must agree", last, s.Active())
	}
}

func TestToggleReturnsNewValue(t *testing.T) {
	f := newFixture(0)

	if !f.s.Toggle() {
		t.Error("first Toggle() = false, want true")
	}
	if f.s.Toggle() {
		t.Error("second Toggle() = true, want false")
	}
	if len(f.mirror.values) != 2 {
		t.Errorf("mirror notified %d times, want 2", len(f.mirror.values))
	}
}

func TestTickInactiveDoesNothing(t *testing.T) {
	f := newFixture(time.Second)
	f.advance(time.Hour)
	f.s.Tick()
	if len(f.out.moves) != 0 {
		t.Errorf("inactive Tick emitted moves: %v", f.out.moves)
	}
}

func TestTickFiresAfterInterval(t *testing.T) {
	f := newFixture(30 * time.Second)
	f.s.SetActive(true)

	f.advance(29 * time.Second)
	f.s.Tick()
	if len(f.out.moves) != 0 {
		t.Fatalf("fired before interval elapsed: %v", f.out.moves)
	}

	f.advance(time.Second)
	f.s.Tick()
	if len(f.out.moves) != 2 {
		t.Fatalf("got %d moves, want 2 (out and back)", len(f.out.moves))
	}
	if f.out.moves[0] != [2]int8{10, 0} || f.out.moves[1] != [2]int8{-10, 0} {
		t.Errorf("moves = %v, want equal and opposite 10-unit nudges", f.out.moves)
	}
	if len(f.slept) != 1 || f.slept[0] != returnDelay {
		t.Errorf("slept %v, want one %v delay between the moves", f.slept, returnDelay)
	}
}

func TestTickAlternatesDirection(t *testing.T) {
	f := newFixture(time.Second)
	f.s.SetActive(true)

	f.advance(time.Second)
	f.s.Tick()
	f.advance(time.Second)
	f.s.Tick()

	if len(f.out.moves) != 4 {
		t.Fatalf("got %d moves, want 4", len(f.out.moves))
	}
	// Second fire leads in the opposite direction of the first.
	if f.out.moves[0][0] != -f.out.moves[2][0] {
		t.Errorf("fires led with %d then %d, want opposite directions",
			f.out.moves[0][0], f.out.moves[2][0])
	}
}

func TestTickDoesNotFireImmediatelyOnActivation(t *testing.T) {
	f := newFixture(time.Second)
	f.advance(time.Hour) // long idle before activation
	f.s.SetActive(true)
	f.s.Tick()
	if len(f.out.moves) != 0 {
		t.Errorf("fired immediately on activation: %v", f.out.moves)
	}
}
