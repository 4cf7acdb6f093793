package gadget

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/blewig/blewig/internal/hid"
)

type buffers struct {
	keyboard, mouse, consumer bytes.Buffer
}

func newTestEmitter() (*Emitter, *buffers) {
	b := &buffers{}
	return NewEmitter(&b.keyboard, &b.mouse, &b.consumer), b
}

// reports splits a buffer into fixed-size reports.
func reports(b *bytes.Buffer, size int) [][]byte {
	raw := b.Bytes()
	var out [][]byte
	for len(raw) >= size {
		out = append(out, raw[:size])
		raw = raw[size:]
	}
	return out
}

func TestTypeTextPressReleasePairs(t *testing.T) {
	e, b := newTestEmitter()

	if err := e.TypeText("aB"); err != nil {
		t.Fatalf("TypeText() error = %v", err)
	}

	got := reports(&b.keyboard, keyboardReportSize)
	want := [][]byte{
		{0x00, 0, 0x04, 0, 0, 0, 0, 0}, // a down
		{0x00, 0, 0x00, 0, 0, 0, 0, 0}, // release
		{0x02, 0, 0x05, 0, 0, 0, 0, 0}, // shift+b down
		{0x00, 0, 0x00, 0, 0, 0, 0, 0}, // release
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("keyboard reports = %v, want %v", got, want)
	}
}

func TestTypeTextSkipsUntypableRunes(t *testing.T) {
	e, b := newTestEmitter()

	if err := e.TypeText("aéb"); err != nil { // é has no boot-keyboard slot
		t.Fatalf("TypeText() error = %v", err)
	}
	if got := len(reports(&b.keyboard, keyboardReportSize)); got != 4 {
		t.Errorf("got %d reports, want 4 (two keys, é skipped)", got)
	}
}

func TestTapKey(t *testing.T) {
	e, b := newTestEmitter()

	if err := e.TapKey(hid.KeyEnter); err != nil {
		t.Fatalf("TapKey() error = %v", err)
	}

	got := reports(&b.keyboard, keyboardReportSize)
	if len(got) != 2 || got[0][2] != usageEnter || got[1][2] != 0 {
		t.Errorf("keyboard reports = %v, want enter press then release", got)
	}
}

func TestMouseReportsCarryButtonState(t *testing.T) {
	e, b := newTestEmitter()

	if err := e.SetButtons(hid.ButtonLeft); err != nil {
		t.Fatal(err)
	}
	if err := e.MoveRel(5, -3); err != nil {
		t.Fatal(err)
	}
	if err := e.ScrollRel(-1); err != nil {
		t.Fatal(err)
	}
	if err := e.SetButtons(0); err != nil {
		t.Fatal(err)
	}

	got := reports(&b.mouse, 4)
	want := [][]byte{
		{0x01, 0, 0, 0},    // left down, no motion
		{0x01, 5, 0xFD, 0}, // drag
		{0x01, 0, 0, 0xFF}, // scroll while held
		{0x00, 0, 0, 0},    // release
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mouse reports = %v, want %v", got, want)
	}
}

func TestConsumerPulseReports(t *testing.T) {
	e, b := newTestEmitter()

	if err := e.ConsumerDown(hid.UsagePlayPause); err != nil {
		t.Fatal(err)
	}
	if err := e.ConsumerUp(); err != nil {
		t.Fatal(err)
	}

	got := reports(&b.consumer, 2)
	want := [][]byte{{0xCD, 0x00}, {0x00, 0x00}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("consumer reports = %v, want %v", got, want)
	}
}

func TestLookupKeyCoverage(t *testing.T) {
	tests := []struct {
		r    rune
		want keystroke
	}{
		{'a', keystroke{usage: 0x04}},
		{'z', keystroke{usage: 0x1D}},
		{'A', keystroke{usage: 0x04, modifiers: modLeftShift}},
		{'1', keystroke{usage: 0x1E}},
		{'0', keystroke{usage: 0x27}},
		{'!', keystroke{usage: 0x1E, modifiers: modLeftShift}},
		{')', keystroke{usage: 0x27, modifiers: modLeftShift}},
		{' ', keystroke{usage: usageSpace}},
		{'?', keystroke{usage: 0x38, modifiers: modLeftShift}},
		{'\'', keystroke{usage: 0x34}},
	}
	for _, tt := range tests {
		got, ok := lookupKey(tt.r)
		if !ok {
			t.Errorf("lookupKey(%q) not found", tt.r)
			continue
		}
		if got != tt.want {
			t.Errorf("lookupKey(%q) = %+v, want %+v", tt.r, got, tt.want)
		}
	}

	if _, ok := lookupKey('é'); ok {
		t.Error("lookupKey(é) = ok, want miss")
	}
}
