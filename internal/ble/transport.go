// Package ble serves the bridge's GATT surface in the peripheral role:
// five characteristics in one service, dispatched through a per-
// characteristic handler table. The BLE stack invokes write callbacks
// on its own execution context, concurrent with the main loop; handlers
// only touch shared state through the owning objects' guarded setters.
package ble

// Bridge service and characteristic UUIDs.
const (
	ServiceUUID      = "5a1a0000-8f19-4a86-9a9e-7b4f7f9b0001"
	KeyboardCharUUID = "5a1a0001-8f19-4a86-9a9e-7b4f7f9b0001"
	MouseCharUUID    = "5a1a0002-8f19-4a86-9a9e-7b4f7f9b0001"
	WigglerCharUUID  = "5a1a0003-8f19-4a86-9a9e-7b4f7f9b0001"
	MediaCharUUID    = "5a1a0004-8f19-4a86-9a9e-7b4f7f9b0001"
	HostOSCharUUID   = "5a1a0005-8f19-4a86-9a9e-7b4f7f9b0001"
)

// Flags describes a served characteristic's properties.
type Flags uint8

const (
	FlagRead Flags = 1 << iota
	FlagWrite
	FlagWriteWithoutResponse
	FlagNotify
)

// Characteristic is a served characteristic handle. Update sets the
// readable value and notifies any subscribed central.
type Characteristic interface {
	Update(data []byte) error
}

// CharacteristicConfig declares one characteristic of the service.
type CharacteristicConfig struct {
	UUID    string
	Flags   Flags
	Value   []byte       // initial readable value
	OnWrite func([]byte) // invoked on the transport's callback context
}

// Transport abstracts the peripheral-role BLE stack for testing.
type Transport interface {
	// Enable powers on the BLE adapter.
	Enable() error
	// AddService registers the service and returns one handle per
	// characteristic, in declaration order.
	AddService(serviceUUID string, chars []CharacteristicConfig) ([]Characteristic, error)
	// Advertise configures the advertisement payload and starts it.
	Advertise(localName, serviceUUID string) error
	// Resume restarts advertising after a disconnect. Idempotent:
	// calling it while already advertising is a no-op.
	Resume() error
	// SetConnectHandler registers the connect/disconnect callback.
	SetConnectHandler(handler func(connected bool))
}
