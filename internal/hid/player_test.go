package hid

import (
	"fmt"
	"testing"
	"time"
)

// recordOutput records every call as a formatted op string.
type recordOutput struct {
	ops  []string
	fail bool
}

func (r *recordOutput) record(format string, args ...any) error {
	if r.fail {
		return fmt.Errorf("output down")
	}
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
	return nil
}

func (r *recordOutput) TypeText(text string) error { return r.record("type %q", text) }
func (r *recordOutput) TapKey(key Key) error       { return r.record("tap %s", key) }

func (r *recordOutput) SetButtons(m ButtonMask) error { return r.record("buttons %03b", m) }
func (r *recordOutput) MoveRel(dx, dy int8) error     { return r.record("move %d,%d", dx, dy) }
func (r *recordOutput) ScrollRel(d int8) error        { return r.record("scroll %d", d) }

func (r *recordOutput) ConsumerDown(u uint16) error { return r.record("consumer down 0x%04X", u) }
func (r *recordOutput) ConsumerUp() error           { return r.record("consumer up") }

func newTestPlayer(out Output) (*Player, *[]time.Duration) {
	p := NewPlayer(out)
	var slept []time.Duration
	p.sleep = func(d time.Duration) { slept = append(slept, d) }
	return p, &slept
}

func TestPlayerPerformsInOrder(t *testing.T) {
	out := &recordOutput{}
	p, _ := newTestPlayer(out)

	err := p.Perform([]Action{
		EmitText{Text: "hi"},
		PressKey{Key: KeyEnter},
		SetButtons{Buttons: ButtonLeft},
		MoveRel{DX: 5, DY: -3},
		ScrollRel{Delta: 1},
	})
	if err != nil {
		t.Fatalf("Perform() error = %v", err)
	}

	want := []string{
		`type "hi"`,
		"tap enter",
		"buttons 001",
		"move 5,-3",
		"scroll 1",
	}
	if len(out.ops) != len(want) {
		t.Fatalf("got %d ops %v, want %d", len(out.ops), out.ops, len(want))
	}
	for i := range want {
		if out.ops[i] != want[i] {
			t.Errorf("op[%d] = %q, want %q", i, out.ops[i], want[i])
		}
	}
}

func TestPlayerConsumerTapPulses(t *testing.T) {
	out := &recordOutput{}
	p, slept := newTestPlayer(out)

	if err := p.Perform([]Action{ConsumerTap{Usage: UsagePlayPause}}); err != nil {
		t.Fatalf("Perform() error = %v", err)
	}

	if len(out.ops) != 2 || out.ops[0] != "consumer down 0x00CD" || out.ops[1] != "consumer up" {
		t.Errorf("ops = %v, want press then release", out.ops)
	}
	if len(*slept) != 1 || (*slept)[0] != ConsumerPulse {
		t.Errorf("slept = %v, want one %v pulse", *slept, ConsumerPulse)
	}
}

func TestPlayerStopsOnError(t *testing.T) {
	out := &recordOutput{fail: true}
	p, _ := newTestPlayer(out)

	err := p.Perform([]Action{EmitText{Text: "a"}, PressKey{Key: KeyEnter}})
	if err == nil {
		t.Fatal("Perform() with failing output should error")
	}
	if len(out.ops) != 0 {
		t.Errorf("failing output recorded ops: %v", out.ops)
	}
}
