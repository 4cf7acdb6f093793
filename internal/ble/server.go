package ble

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blewig/blewig/internal/hid"
	"github.com/blewig/blewig/internal/hostos"
	"github.com/blewig/blewig/internal/translate"
	"github.com/blewig/blewig/internal/wiggler"
)

// Server owns the bridge's GATT surface. It also implements the
// outward-facing hooks of its collaborators: link.Advertiser (Resume),
// wiggler.Mirror (WigglerChanged) and hostos.Notifier (HostOSChanged),
// so state changes from any trigger land back on the notify
// characteristics.
type Server struct {
	transport Transport
	name      string

	player   *hid.Player
	wiggler  *wiggler.Scheduler
	detector *hostos.Detector
	onLink   func(connected bool)

	mu          sync.Mutex
	wigglerChar Characteristic
	hostOSChar  Characteristic
}

// NewServer creates a Server advertising under the given local name.
func NewServer(transport Transport, name string) *Server {
	return &Server{transport: transport, name: name}
}

// Attach wires in the collaborators. Must be called before Start.
// onLink receives the transport's connect/disconnect edges (the
// connection state machine's input).
func (s *Server) Attach(player *hid.Player, wig *wiggler.Scheduler, det *hostos.Detector, onLink func(connected bool)) {
	s.player = player
	s.wiggler = wig
	s.detector = det
	s.onLink = onLink
}

// charDef is one row of the dispatch table: a characteristic identity
// bound to either a pure translator or a state-mutation closure.
type charDef struct {
	uuid      string
	flags     Flags
	value     []byte
	translate func([]byte) []hid.Action // payload → HID actions
	mutate    func([]byte)              // payload → owned-state setter
}

// table builds the dispatch table. Translator rows share one write
// path; state rows mutate through their owners' serialized setters.
func (s *Server) table() []charDef {
	return []charDef{
		{
			uuid:      KeyboardCharUUID,
			flags:     FlagWriteWithoutResponse,
			translate: translate.Keyboard,
		},
		{
			uuid:      MouseCharUUID,
			flags:     FlagWriteWithoutResponse,
			translate: translate.Mouse,
		},
		{
			uuid:   WigglerCharUUID,
			flags:  FlagRead | FlagWrite | FlagNotify,
			value:  []byte{0},
			mutate: s.writeWiggler,
		},
		{
			uuid:      MediaCharUUID,
			flags:     FlagWriteWithoutResponse,
			translate: translate.Media,
		},
		{
			uuid:   HostOSCharUUID,
			flags:  FlagRead | FlagWrite | FlagNotify,
			value:  []byte{byte(hostos.OSUnknown), 0},
			mutate: s.writeHostOS,
		},
	}
}

// Start enables the adapter, registers the service, and begins
// advertising.
func (s *Server) Start() error {
	if s.player == nil {
		return fmt.Errorf("ble: Start before Attach")
	}
	if err := s.transport.Enable(); err != nil {
		return err
	}

	defs := s.table()
	configs := make([]CharacteristicConfig, len(defs))
	for i, def := range defs {
		configs[i] = CharacteristicConfig{
			UUID:    def.uuid,
			Flags:   def.flags,
			Value:   def.value,
			OnWrite: s.writeHandler(def),
		}
	}
	handles, err := s.transport.AddService(ServiceUUID, configs)
	if err != nil {
		return err
	}
	s.mu.Lock()
	for i, def := range defs {
		switch def.uuid {
		case WigglerCharUUID:
			s.wigglerChar = handles[i]
		case HostOSCharUUID:
			s.hostOSChar = handles[i]
		}
	}
	s.mu.Unlock()

	s.transport.SetConnectHandler(s.onLink)

	if err := s.transport.Advertise(s.name, ServiceUUID); err != nil {
		return err
	}
	slog.Info("[BLE] advertising", "name", s.name, "service", ServiceUUID)
	return nil
}

// writeHandler binds a table row to the shared write path. Empty and
// malformed payloads fall out naturally: translators return no actions
// for them, and no error goes back to the sender (the writes are
// without response anyway).
func (s *Server) writeHandler(def charDef) func([]byte) {
	return func(value []byte) {
		if len(value) == 0 {
			return
		}
		if def.translate != nil {
			actions := def.translate(value)
			if len(actions) == 0 {
				return
			}
			if err := s.player.Perform(actions); err != nil {
				slog.Warn("[BLE] HID emission failed", "char", def.uuid, "error", err)
			}
		}
		if def.mutate != nil {
			def.mutate(value)
		}
	}
}

// writeWiggler parses the 1-byte wiggler payload: byte 0 or ASCII '0'
// is off, anything else is on.
func (s *Server) writeWiggler(value []byte) {
	active := value[0] != 0 && value[0] != '0'
	s.wiggler.SetActive(active)
}

// writeHostOS applies an explicit host-OS report from the client.
func (s *Server) writeHostOS(value []byte) {
	s.detector.ReportExplicit(value[0])
}

// Resume restarts advertising; the link monitor calls this on every
// disconnect.
func (s *Server) Resume() error {
	return s.transport.Resume()
}

// WigglerChanged mirrors the actuation flag to the wiggler
// characteristic and notifies subscribers.
func (s *Server) WigglerChanged(active bool) {
	var b byte
	if active {
		b = 1
	}
	s.updateChar(&s.wigglerChar, []byte{b})
}

// HostOSChanged publishes a changed classification tuple.
func (s *Server) HostOSChanged(os hostos.OS, sources hostos.Source) {
	s.updateChar(&s.hostOSChar, []byte{byte(os), byte(sources)})
}

// updateChar writes through a characteristic handle if the service is
// up. Mirror updates before Start (e.g. a button press during bring-up)
// are dropped; the readable value is re-synced by the next change.
func (s *Server) updateChar(char *Characteristic, data []byte) {
	s.mu.Lock()
	c := *char
	s.mu.Unlock()
	if c == nil {
		return
	}
	if err := c.Update(data); err != nil {
		slog.Warn("[BLE] characteristic update failed", "error", err)
	}
}
