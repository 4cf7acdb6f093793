// Package gadget is the USB device-side backend: it writes boot
// keyboard, mouse and consumer-control reports to the /dev/hidg*
// functions of an externally configured composite gadget, and watches
// the gadget's FunctionFS control endpoint for the host's control
// transfers. Gadget bring-up itself (configfs descriptors, UDC binding)
// is out of scope and handled by the provisioning scripts.
package gadget

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/blewig/blewig/internal/hid"
)

// Boot keyboard report: modifiers, reserved, six key slots.
const keyboardReportSize = 8

// Emitter writes HID reports to the three gadget function devices.
type Emitter struct {
	mu       sync.Mutex
	keyboard io.Writer
	mouse    io.Writer
	consumer io.Writer
	buttons  hid.ButtonMask // carried into every mouse report
}

// Compile-time interface satisfaction check.
var _ hid.Output = (*Emitter)(nil)

// NewEmitter creates an Emitter over the given report writers.
func NewEmitter(keyboard, mouse, consumer io.Writer) *Emitter {
	return &Emitter{keyboard: keyboard, mouse: mouse, consumer: consumer}
}

// Open opens the three hidg character devices and returns an Emitter
// backed by them.
func Open(keyboardPath, mousePath, consumerPath string) (*Emitter, func() error, error) {
	var files []*os.File
	closeAll := func() error {
		var first error
		for _, f := range files {
			if err := f.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	for _, path := range []string{keyboardPath, mousePath, consumerPath} {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("gadget: open %s: %w", path, err)
		}
		files = append(files, f)
	}

	return NewEmitter(files[0], files[1], files[2]), closeAll, nil
}

// TypeText types the string one key at a time. Runes with no slot in
// the US keymap are skipped; this is a best-effort stream.
func (e *Emitter) TypeText(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range text {
		stroke, ok := lookupKey(r)
		if !ok {
			continue
		}
		if err := e.writeKeyLocked(stroke); err != nil {
			return err
		}
	}
	return nil
}

// TapKey presses and releases a discrete control key.
func (e *Emitter) TapKey(key hid.Key) error {
	var usage uint8
	switch key {
	case hid.KeyEnter:
		usage = usageEnter
	case hid.KeyBackspace:
		usage = usageBackspace
	default:
		return fmt.Errorf("gadget: no usage for key %s", key)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeKeyLocked(keystroke{usage: usage})
}

// writeKeyLocked sends a press report followed by an all-up release
// report. Caller must hold mu.
func (e *Emitter) writeKeyLocked(k keystroke) error {
	press := [keyboardReportSize]byte{0: k.modifiers, 2: k.usage}
	if _, err := e.keyboard.Write(press[:]); err != nil {
		return fmt.Errorf("gadget: keyboard press report: %w", err)
	}
	release := [keyboardReportSize]byte{}
	if _, err := e.keyboard.Write(release[:]); err != nil {
		return fmt.Errorf("gadget: keyboard release report: %w", err)
	}
	return nil
}

// SetButtons re-asserts the absolute button mask with no motion.
func (e *Emitter) SetButtons(mask hid.ButtonMask) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buttons = mask
	return e.writeMouseLocked(0, 0, 0)
}

// MoveRel moves the pointer, carrying the current button state.
func (e *Emitter) MoveRel(dx, dy int8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeMouseLocked(dx, dy, 0)
}

// ScrollRel scrolls the wheel, carrying the current button state.
func (e *Emitter) ScrollRel(delta int8) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeMouseLocked(0, 0, delta)
}

// writeMouseLocked sends one 4-byte boot mouse report. Caller must
// hold mu.
func (e *Emitter) writeMouseLocked(dx, dy, wheel int8) error {
	report := [4]byte{byte(e.buttons), byte(dx), byte(dy), byte(wheel)}
	if _, err := e.mouse.Write(report[:]); err != nil {
		return fmt.Errorf("gadget: mouse report: %w", err)
	}
	return nil
}

// ConsumerDown presses a consumer usage (16-bit little-endian report).
func (e *Emitter) ConsumerDown(usage uint16) error {
	var report [2]byte
	binary.LittleEndian.PutUint16(report[:], usage)
	if _, err := e.consumer.Write(report[:]); err != nil {
		return fmt.Errorf("gadget: consumer press report: %w", err)
	}
	return nil
}

// ConsumerUp releases by reporting usage zero.
func (e *Emitter) ConsumerUp() error {
	report := [2]byte{}
	if _, err := e.consumer.Write(report[:]); err != nil {
		return fmt.Errorf("gadget: consumer release report: %w", err)
	}
	return nil
}
