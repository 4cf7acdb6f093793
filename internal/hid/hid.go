// Package hid defines the HID action vocabulary produced by the protocol
// translators and the output backends that realize those actions as USB
// reports (gadget mode) or local input injection (desktop mode).
package hid

// Key identifies a discrete non-printing key.
type Key uint8

const (
	// KeyEnter is the Return/Enter key.
	KeyEnter Key = iota
	// KeyBackspace is the Backspace key.
	KeyBackspace
)

// String returns the key name for logging.
func (k Key) String() string {
	switch k {
	case KeyEnter:
		return "enter"
	case KeyBackspace:
		return "backspace"
	default:
		return "unknown"
	}
}

// ButtonMask is the absolute state of the three mouse buttons.
// Every mouse packet fully re-asserts all three bits.
type ButtonMask uint8

const (
	ButtonLeft   ButtonMask = 1 << 0
	ButtonRight  ButtonMask = 1 << 1
	ButtonMiddle ButtonMask = 1 << 2
)

// Consumer page usage codes (USB HID Usage Tables, page 0x0C).
const (
	UsagePlayPause  uint16 = 0x00CD
	UsageScanNext   uint16 = 0x00B5
	UsageScanPrev   uint16 = 0x00B6
	UsageStop       uint16 = 0x00B7
	UsageMute       uint16 = 0x00E2
	UsageVolumeUp   uint16 = 0x00E9
	UsageVolumeDown uint16 = 0x00EA
)

// Action is one element of the ordered sequence a translator produces.
// Actions are consumed immediately by a Player; nothing is persisted.
type Action interface {
	isAction()
}

// EmitText types a run of printable text as one batched burst.
type EmitText struct {
	Text string
}

// PressKey taps a discrete control key.
type PressKey struct {
	Key Key
}

// SetButtons re-asserts the absolute pressed/released state of all
// three mouse buttons.
type SetButtons struct {
	Buttons ButtonMask
}

// MoveRel moves the pointer by a relative delta.
type MoveRel struct {
	DX, DY int8
}

// ScrollRel scrolls the wheel by a relative delta.
type ScrollRel struct {
	Delta int8
}

// ConsumerTap pulses a consumer-control usage (press, short hold, release).
type ConsumerTap struct {
	Usage uint16
}

func (EmitText) isAction()    {}
func (PressKey) isAction()    {}
func (SetButtons) isAction()  {}
func (MoveRel) isAction()     {}
func (ScrollRel) isAction()   {}
func (ConsumerTap) isAction() {}
