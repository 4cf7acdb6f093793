package hid

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Desktop injects HID actions into the local session using robotgo.
// It exists for development on a workstation without gadget hardware;
// in production the gadget backend writes real USB reports instead.
type Desktop struct {
	buttons ButtonMask // last asserted state, to toggle only what changed
}

// Compile-time interface satisfaction check.
var _ Output = (*Desktop)(nil)

// NewDesktop creates the robotgo-backed output.
func NewDesktop() *Desktop {
	return &Desktop{}
}

func (d *Desktop) TypeText(text string) error {
	robotgo.Type(text)
	return nil
}

func (d *Desktop) TapKey(key Key) error {
	if err := robotgo.KeyTap(key.String()); err != nil {
		return fmt.Errorf("hid: key tap %s: %w", key, err)
	}
	return nil
}

// SetButtons re-asserts all three buttons. robotgo only exposes
// press/release toggles, so unchanged buttons are left alone and the net
// host-visible state still matches the mask exactly.
func (d *Desktop) SetButtons(mask ButtonMask) error {
	for _, b := range []struct {
		bit  ButtonMask
		name string
	}{
		{ButtonLeft, "left"},
		{ButtonRight, "right"},
		{ButtonMiddle, "center"},
	} {
		want := mask&b.bit != 0
		have := d.buttons&b.bit != 0
		if want == have {
			continue
		}
		dir := "up"
		if want {
			dir = "down"
		}
		if err := robotgo.Toggle(b.name, dir); err != nil {
			return fmt.Errorf("hid: toggle %s %s: %w", b.name, dir, err)
		}
	}
	d.buttons = mask
	return nil
}

func (d *Desktop) MoveRel(dx, dy int8) error {
	robotgo.MoveRelative(int(dx), int(dy))
	return nil
}

func (d *Desktop) ScrollRel(delta int8) error {
	robotgo.Scroll(0, int(delta))
	return nil
}

// ConsumerDown taps the media key immediately. robotgo has no separate
// press/release for media keys, so the pulse collapses to a single tap
// and ConsumerUp is a no-op.
func (d *Desktop) ConsumerDown(usage uint16) error {
	name, ok := consumerKeyName(usage)
	if !ok {
		return nil
	}
	if err := robotgo.KeyTap(name); err != nil {
		return fmt.Errorf("hid: media key tap %s: %w", name, err)
	}
	return nil
}

func (d *Desktop) ConsumerUp() error { return nil }

// consumerKeyName maps a consumer usage to a robotgo key name.
func consumerKeyName(usage uint16) (string, bool) {
	switch usage {
	case UsagePlayPause:
		return "audio_play", true
	case UsageScanNext:
		return "audio_next", true
	case UsageScanPrev:
		return "audio_prev", true
	case UsageStop:
		return "audio_stop", true
	case UsageMute:
		return "audio_mute", true
	case UsageVolumeUp:
		return "audio_vol_up", true
	case UsageVolumeDown:
		return "audio_vol_down", true
	default:
		return "", false
	}
}
