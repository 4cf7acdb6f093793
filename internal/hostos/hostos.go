// Package hostos infers the operating system of the USB host by fusing
// an explicit client report with passive observations of the control
// transfers the host issues during and after enumeration. Different
// hosts probe differently: Windows asks for the Microsoft OS string
// descriptor, macOS asks for the device qualifier, and Linux does
// neither but still drives the HID class requests.
package hostos

import (
	"log/slog"
	"sync"
	"time"
)

// OS is the inferred host operating system.
type OS byte

const (
	OSUnknown OS = iota
	OSWindows
	OSMacOS
	OSLinux
	OSAndroid
	OSIOS
	OSChromeOS

	osMax = OSChromeOS
)

func (o OS) String() string {
	switch o {
	case OSWindows:
		return "windows"
	case OSMacOS:
		return "macos"
	case OSLinux:
		return "linux"
	case OSAndroid:
		return "android"
	case OSIOS:
		return "ios"
	case OSChromeOS:
		return "chromeos"
	default:
		return "unknown"
	}
}

// ParseOS maps a wire byte to an OS code. Out-of-range values degrade
// to OSUnknown rather than failing.
func ParseOS(b byte) OS {
	if OS(b) > osMax {
		return OSUnknown
	}
	return OS(b)
}

// Source records which signal sources have justified the current
// classification.
type Source byte

const (
	// SourceExplicit: the client wrote the host-OS characteristic.
	SourceExplicit Source = 1 << 0
	// SourceUSBHeuristic: inferred from passive USB observation.
	SourceUSBHeuristic Source = 1 << 1
)

// LinuxGrace is how long after USB mount HID class traffic must have
// been seen, with no vendor probe, before defaulting to Linux. ChromeOS
// is indistinguishable from Linux here and is never inferred.
const LinuxGrace = 1200 * time.Millisecond

// Notifier publishes a changed (os, sources) pair, typically as a
// characteristic notification.
type Notifier interface {
	HostOSChanged(os OS, sources Source)
}

// Detector owns the classification plus the ephemeral per-USB-session
// observation. Safe for concurrent use from the USB watcher, the BLE
// callback context, and the main loop.
type Detector struct {
	mu      sync.Mutex
	os      OS
	sources Source

	// Ephemeral observation, reset on every unmount.
	mounted     bool
	mountedAt   time.Time
	sawHIDClass bool

	notifier Notifier
	now      func() time.Time
}

// New creates a Detector with no classification.
// Panics if notifier is nil (programmer error).
func New(notifier Notifier) *Detector {
	if notifier == nil {
		panic("hostos: New called with nil notifier")
	}
	return &Detector{notifier: notifier, now: time.Now}
}

// Snapshot returns the current classification and provenance.
func (d *Detector) Snapshot() (OS, Source) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.os, d.sources
}

// HandleMount starts a new USB session observation window.
func (d *Detector) HandleMount() {
	d.mu.Lock()
	d.mounted = true
	d.mountedAt = d.now()
	d.sawHIDClass = false
	d.mu.Unlock()
	slog.Info("[HOSTOS] usb mounted")
}

// HandleUnmount discards the ephemeral observation. The classification
// itself persists until overwritten or device reset.
func (d *Detector) HandleUnmount() {
	d.mu.Lock()
	d.mounted = false
	d.mountedAt = time.Time{}
	d.sawHIDClass = false
	d.mu.Unlock()
	slog.Info("[HOSTOS] usb unmounted")
}

// ObserveControl feeds one decoded control transfer into the heuristic.
func (d *Detector) ObserveControl(req ControlRequest) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case req.isMSOSStringRequest():
		// Definitive Windows signal: overrides any lower-confidence
		// classification already made this session.
		d.applyLocked(OSWindows, d.sources|SourceUSBHeuristic)

	case req.isDeviceQualifierRequest():
		// macOS signal, but never a downgrade from Windows. The probes
		// can arrive in either order and this asymmetry keeps the
		// result stable.
		if d.os != OSWindows {
			d.applyLocked(OSMacOS, d.sources|SourceUSBHeuristic)
		}

	case req.isHIDClassRequest():
		d.sawHIDClass = true
		d.evaluateGraceLocked()
	}
}

// ReportExplicit applies a client-written OS code directly, independent
// of probe precedence. This is the only path that can produce the
// Android, iOS and ChromeOS classifications.
func (d *Detector) ReportExplicit(code byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyLocked(ParseOS(code), d.sources|SourceExplicit)
}

// Tick polls the Linux grace window. Called from the main cooperative
// loop; there is no dedicated timer for this.
func (d *Detector) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.evaluateGraceLocked()
}

// evaluateGraceLocked applies the Linux fallback: HID class traffic was
// seen, no vendor probe classified the host, and the grace window has
// elapsed since mount. Caller must hold mu.
func (d *Detector) evaluateGraceLocked() {
	if !d.mounted || !d.sawHIDClass || d.os != OSUnknown {
		return
	}
	if d.now().Sub(d.mountedAt) < LinuxGrace {
		return
	}
	d.applyLocked(OSLinux, d.sources|SourceUSBHeuristic)
}

// applyLocked records the new tuple and publishes it, suppressing
// notifications when neither the code nor the provenance changed.
// Caller must hold mu.
func (d *Detector) applyLocked(os OS, sources Source) {
	if d.os == os && d.sources == sources {
		return
	}
	d.os = os
	d.sources = sources
	slog.Info("[HOSTOS] classified", "os", os, "sources", sources)
	d.notifier.HostOSChanged(os, sources)
}
