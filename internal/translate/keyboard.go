// Package translate converts raw GATT characteristic payloads into
// ordered HID action sequences. Every translator is stateless per call:
// one characteristic write is one call, and nothing is buffered across
// calls. A multi-byte UTF-8 sequence split across two writes is not
// reassembled; that is an accepted limitation of the wire format.
package translate

import "github.com/blewig/blewig/internal/hid"

const backspace = 0x08

// Keyboard translates a keyboard characteristic payload. Printable runs
// are batched into a single EmitText so the host sees one type-string
// burst instead of one report pair per character; control bytes
// (backspace, newline) flush the pending run and become discrete key
// taps. Empty input yields no actions.
func Keyboard(payload []byte) []hid.Action {
	var actions []hid.Action
	var pending []byte

	flush := func() {
		if len(pending) > 0 {
			actions = append(actions, hid.EmitText{Text: string(pending)})
			pending = pending[:0]
		}
	}

	for _, b := range payload {
		switch b {
		case backspace:
			flush()
			actions = append(actions, hid.PressKey{Key: hid.KeyBackspace})
		case '\n', '\r':
			flush()
			actions = append(actions, hid.PressKey{Key: hid.KeyEnter})
		default:
			pending = append(pending, b)
		}
	}
	flush()

	return actions
}
