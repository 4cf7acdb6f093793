package translate

import "github.com/blewig/blewig/internal/hid"

// MousePacketSize is the fixed mouse characteristic payload size:
// buttons, dx, dy, wheel. There is no partial-packet buffering; a
// truncated packet loses the whole event.
const MousePacketSize = 4

// Mouse translates a mouse characteristic payload. Payloads that are
// not exactly 4 bytes are silently dropped (best-effort stream, no
// error back to the sender).
//
// Button state is absolute, not edge-triggered: every packet re-asserts
// the pressed/released state of all three buttons, so a zero bit
// explicitly releases that button. Motion and wheel are emitted as two
// separate relative actions because they are distinct HID reports.
func Mouse(payload []byte) []hid.Action {
	if len(payload) != MousePacketSize {
		return nil
	}

	buttons := hid.ButtonMask(payload[0]) & (hid.ButtonLeft | hid.ButtonRight | hid.ButtonMiddle)
	dx := int8(payload[1])
	dy := int8(payload[2])
	wheel := int8(payload[3])

	actions := []hid.Action{hid.SetButtons{Buttons: buttons}}
	if dx != 0 || dy != 0 {
		actions = append(actions, hid.MoveRel{DX: dx, DY: dy})
	}
	if wheel != 0 {
		actions = append(actions, hid.ScrollRel{Delta: wheel})
	}
	return actions
}
