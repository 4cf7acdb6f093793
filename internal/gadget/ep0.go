package gadget

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/blewig/blewig/internal/hostos"
)

// FunctionFS event types (linux/usb/functionfs.h).
const (
	ffsEventBind    = 0
	ffsEventUnbind  = 1
	ffsEventEnable  = 2
	ffsEventDisable = 3
	ffsEventSetup   = 4
	ffsEventSuspend = 5
	ffsEventResume  = 6
)

// ffsEventSize is sizeof(struct usb_functionfs_event): an 8-byte setup
// packet union, one type byte, three pad bytes.
const ffsEventSize = 12

// SessionSink receives the USB session edges and observed control
// transfers. Implemented by hostos.Detector.
type SessionSink interface {
	HandleMount()
	HandleUnmount()
	ObserveControl(req hostos.ControlRequest)
}

// Watcher pumps FunctionFS ep0 events into a SessionSink. The gadget's
// descriptors are written by the provisioning scripts with the
// all-control-recipients flag set, so the host's descriptor probes and
// HID class requests all surface here as SETUP events.
type Watcher struct {
	ep0  *os.File
	sink SessionSink

	once sync.Once
	done chan struct{}
}

// NewWatcher opens the ep0 endpoint file at path. The open is
// nonblocking so the fd registers with the runtime poller and Close can
// interrupt a Read parked on the endpoint.
func NewWatcher(path string, sink SessionSink) (*Watcher, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("gadget: open ep0 %s: %w", path, err)
	}
	return &Watcher{
		ep0:  os.NewFile(uintptr(fd), path),
		sink: sink,
		done: make(chan struct{}),
	}, nil
}

// Run reads events until Close is called or the endpoint fails. It
// blocks; run it in a goroutine.
func (w *Watcher) Run() error {
	err := pumpEvents(w.ep0, w.sink)
	select {
	case <-w.done:
		return nil // closed on purpose
	default:
		return err
	}
}

// Close stops the watcher. Safe to call multiple times.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.ep0.Close()
	})
	return err
}

// pumpEvents decodes the event stream from r and dispatches each event.
// A single read may return several packed events or end mid-event; a
// trailing partial event is carried over and completed by later reads.
func pumpEvents(r io.Reader, sink SessionSink) error {
	buf := make([]byte, 4*ffsEventSize)
	fill := 0
	for {
		n, err := r.Read(buf[fill:])
		fill += n
		off := 0
		for ; off+ffsEventSize <= fill; off += ffsEventSize {
			dispatchEvent(buf[off:off+ffsEventSize], sink)
		}
		fill = copy(buf, buf[off:fill])
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("gadget: read ep0: %w", err)
		}
	}
}

// dispatchEvent routes one decoded event into the sink.
func dispatchEvent(event []byte, sink SessionSink) {
	typ := event[8]
	switch typ {
	case ffsEventEnable:
		sink.HandleMount()
	case ffsEventDisable, ffsEventUnbind:
		sink.HandleUnmount()
	case ffsEventSetup:
		sink.ObserveControl(decodeSetup(event[:8]))
	case ffsEventBind, ffsEventSuspend, ffsEventResume:
		slog.Debug("[USB] ep0 event", "type", typ)
	default:
		slog.Debug("[USB] unknown ep0 event", "type", typ)
	}
}

// decodeSetup parses the 8-byte little-endian usb_ctrlrequest at the
// head of a SETUP event.
func decodeSetup(raw []byte) hostos.ControlRequest {
	return hostos.ControlRequest{
		RequestType: raw[0],
		Request:     raw[1],
		Value:       binary.LittleEndian.Uint16(raw[2:4]),
		Index:       binary.LittleEndian.Uint16(raw[4:6]),
		Length:      binary.LittleEndian.Uint16(raw[6:8]),
	}
}
