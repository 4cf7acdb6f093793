package hid

import (
	"fmt"
	"time"
)

// Output is the backend that turns actions into host-visible input.
// Implemented by the USB gadget report writer and the robotgo desktop
// injector.
type Output interface {
	// TypeText types a run of printable text.
	TypeText(text string) error
	// TapKey presses and releases a discrete key.
	TapKey(key Key) error
	// SetButtons asserts the absolute state of all three mouse buttons.
	SetButtons(mask ButtonMask) error
	// MoveRel moves the pointer by a relative delta.
	MoveRel(dx, dy int8) error
	// ScrollRel scrolls the wheel by a relative delta.
	ScrollRel(delta int8) error
	// ConsumerDown presses a consumer-control usage.
	ConsumerDown(usage uint16) error
	// ConsumerUp releases the active consumer-control usage.
	ConsumerUp() error
}

// ConsumerPulse is how long a consumer usage is held before release.
// Consumer keys on this class of device are pulse-style, not hold-style.
const ConsumerPulse = 5 * time.Millisecond

// Player executes translator action sequences against an Output.
type Player struct {
	out   Output
	sleep func(time.Duration) // injectable for tests
}

// NewPlayer creates a Player for the given output backend.
// Panics if out is nil (programmer error).
func NewPlayer(out Output) *Player {
	if out == nil {
		panic("hid: NewPlayer called with nil output")
	}
	return &Player{out: out, sleep: time.Sleep}
}

// Perform executes the actions in order. The first failing action stops
// the sequence; partial delivery is acceptable for a best-effort input
// stream, so callers typically just log the error.
func (p *Player) Perform(actions []Action) error {
	for _, a := range actions {
		if err := p.perform(a); err != nil {
			return err
		}
	}
	return nil
}

func (p *Player) perform(a Action) error {
	switch a := a.(type) {
	case EmitText:
		return p.out.TypeText(a.Text)
	case PressKey:
		return p.out.TapKey(a.Key)
	case SetButtons:
		return p.out.SetButtons(a.Buttons)
	case MoveRel:
		return p.out.MoveRel(a.DX, a.DY)
	case ScrollRel:
		return p.out.ScrollRel(a.Delta)
	case ConsumerTap:
		if err := p.out.ConsumerDown(a.Usage); err != nil {
			return err
		}
		p.sleep(ConsumerPulse)
		return p.out.ConsumerUp()
	default:
		return fmt.Errorf("hid: unknown action type %T", a)
	}
}
