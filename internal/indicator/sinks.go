package indicator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// LEDSink drives a sysfs LED. Advertising blinks via the kernel timer
// trigger, connected is solid on, wiggling uses the heartbeat trigger.
type LEDSink struct {
	dir string // e.g. /sys/class/leds/blewig:status
}

var _ Sink = (*LEDSink)(nil)

// NewLEDSink creates a sink for the LED at the given sysfs directory.
func NewLEDSink(dir string) *LEDSink {
	return &LEDSink{dir: dir}
}

func (s *LEDSink) Apply(mode Mode) error {
	var trigger string
	var brightness string
	switch mode {
	case ModeAdvertising:
		trigger, brightness = "timer", "1"
	case ModeConnected:
		trigger, brightness = "none", "1"
	case ModeWiggling:
		trigger, brightness = "heartbeat", "1"
	default:
		return fmt.Errorf("indicator: unknown mode %d", mode)
	}

	if err := s.write("trigger", trigger); err != nil {
		return err
	}
	return s.write("brightness", brightness)
}

func (s *LEDSink) write(attr, value string) error {
	path := filepath.Join(s.dir, attr)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("indicator: write %s: %w", path, err)
	}
	return nil
}

// LogSink logs mode changes instead of driving hardware. Used when no
// LED path is configured and in the desktop backend.
type LogSink struct {
	last Mode
	seen bool
}

var _ Sink = (*LogSink)(nil)

func (s *LogSink) Apply(mode Mode) error {
	if s.seen && mode == s.last {
		return nil
	}
	s.last, s.seen = mode, true
	slog.Info("[LED] indicator", "mode", mode)
	return nil
}
