package gadget

import (
	"bytes"
	"os"
	"testing"
	"testing/iotest"
	"time"

	"github.com/blewig/blewig/internal/hostos"
)

// recordSink records session edges and control requests.
type recordSink struct {
	mounts, unmounts int
	requests         []hostos.ControlRequest
}

func (s *recordSink) HandleMount()   { s.mounts++ }
func (s *recordSink) HandleUnmount() { s.unmounts++ }
func (s *recordSink) ObserveControl(req hostos.ControlRequest) {
	s.requests = append(s.requests, req)
}

// ffsEvent builds one wire event. setup may be nil for non-SETUP types.
func ffsEvent(typ byte, setup []byte) []byte {
	event := make([]byte, ffsEventSize)
	copy(event, setup)
	event[8] = typ
	return event
}

func TestDecodeSetup(t *testing.T) {
	// GET_DESCRIPTOR for the MS OS string: 80 06 EE 03 00 00 12 00
	req := decodeSetup([]byte{0x80, 0x06, 0xEE, 0x03, 0x00, 0x00, 0x12, 0x00})

	want := hostos.ControlRequest{
		RequestType: 0x80,
		Request:     0x06,
		Value:       0x03EE,
		Index:       0x0000,
		Length:      0x0012,
	}
	if req != want {
		t.Errorf("decodeSetup() = %+v, want %+v", req, want)
	}
}

func TestPumpEventsSessionLifecycle(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(ffsEvent(ffsEventBind, nil))
	stream.Write(ffsEvent(ffsEventEnable, nil))
	stream.Write(ffsEvent(ffsEventSetup, []byte{0x21, 0x0A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}))
	stream.Write(ffsEvent(ffsEventDisable, nil))

	sink := &recordSink{}
	if err := pumpEvents(&stream, sink); err != nil {
		t.Fatalf("pumpEvents() error = %v", err)
	}

	if sink.mounts != 1 || sink.unmounts != 1 {
		t.Errorf("mounts=%d unmounts=%d, want 1 and 1", sink.mounts, sink.unmounts)
	}
	if len(sink.requests) != 1 {
		t.Fatalf("got %d control requests, want 1", len(sink.requests))
	}
	if got := sink.requests[0]; got.RequestType != 0x21 || got.Request != 0x0A {
		t.Errorf("request = %+v, want SET_IDLE", got)
	}
}

func TestPumpEventsHandlesPackedReads(t *testing.T) {
	// Two events arriving in one read.
	var stream bytes.Buffer
	stream.Write(ffsEvent(ffsEventEnable, nil))
	stream.Write(ffsEvent(ffsEventUnbind, nil))

	sink := &recordSink{}
	if err := pumpEvents(&stream, sink); err != nil {
		t.Fatalf("pumpEvents() error = %v", err)
	}
	if sink.mounts != 1 || sink.unmounts != 1 {
		t.Errorf("mounts=%d unmounts=%d, want 1 and 1", sink.mounts, sink.unmounts)
	}
}

func TestPumpEventsReassemblesSplitReads(t *testing.T) {
	// Events delivered one byte per read; every event boundary is split.
	var stream bytes.Buffer
	stream.Write(ffsEvent(ffsEventEnable, nil))
	stream.Write(ffsEvent(ffsEventSetup, []byte{0x80, 0x06, 0xEE, 0x03, 0x00, 0x00, 0x12, 0x00}))

	sink := &recordSink{}
	if err := pumpEvents(iotest.OneByteReader(&stream), sink); err != nil {
		t.Fatalf("pumpEvents() error = %v", err)
	}
	if sink.mounts != 1 {
		t.Errorf("mounts = %d, want 1", sink.mounts)
	}
	if len(sink.requests) != 1 {
		t.Fatalf("got %d control requests, want 1", len(sink.requests))
	}
	if got := sink.requests[0].Value; got != 0x03EE {
		t.Errorf("request Value = 0x%04X, want 0x03EE", got)
	}
}

// signalSink reports mount edges on a channel, for cross-goroutine
// synchronization.
type signalSink struct {
	mounted chan struct{}
}

func (s *signalSink) HandleMount() {
	select {
	case s.mounted <- struct{}{}:
	default:
	}
}

func (s *signalSink) HandleUnmount() {}

func (s *signalSink) ObserveControl(hostos.ControlRequest) {}

func TestWatcherCloseUnblocksRun(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	defer w.Close()

	sink := &signalSink{mounted: make(chan struct{}, 1)}
	watcher := &Watcher{ep0: r, sink: sink, done: make(chan struct{})}

	runErr := make(chan error, 1)
	go func() { runErr <- watcher.Run() }()

	// Deliver one event, then leave Run parked in the read.
	if _, err := w.Write(ffsEvent(ffsEventEnable, nil)); err != nil {
		t.Fatalf("write event: %v", err)
	}
	select {
	case <-sink.mounted:
	case <-time.After(time.Second):
		t.Fatal("event never dispatched")
	}

	if err := watcher.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	select {
	case err := <-runErr:
		if err != nil {
			t.Errorf("Run() after Close = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}
