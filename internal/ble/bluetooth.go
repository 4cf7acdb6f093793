package ble

import (
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"
)

// BluetoothTransport implements Transport on tinygo-org/bluetooth
// (BlueZ on Linux, CoreBluetooth on macOS).
type BluetoothTransport struct {
	adapter *bluetooth.Adapter

	mu          sync.Mutex
	adv         *bluetooth.Advertisement
	advertising bool
}

// Compile-time check that BluetoothTransport implements Transport.
var _ Transport = (*BluetoothTransport)(nil)

// NewBluetoothTransport creates a transport on the default adapter.
func NewBluetoothTransport() *BluetoothTransport {
	return &BluetoothTransport{adapter: bluetooth.DefaultAdapter}
}

func (t *BluetoothTransport) Enable() error {
	if err := t.adapter.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}
	return nil
}

func (t *BluetoothTransport) AddService(serviceUUID string, chars []CharacteristicConfig) ([]Characteristic, error) {
	svcUUID, err := bluetooth.ParseUUID(serviceUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: parse service UUID: %w", err)
	}

	handles := make([]*bluetooth.Characteristic, len(chars))
	configs := make([]bluetooth.CharacteristicConfig, len(chars))
	for i, c := range chars {
		charUUID, err := bluetooth.ParseUUID(c.UUID)
		if err != nil {
			return nil, fmt.Errorf("ble: parse characteristic UUID %s: %w", c.UUID, err)
		}
		handles[i] = &bluetooth.Characteristic{}
		cfg := bluetooth.CharacteristicConfig{
			Handle: handles[i],
			UUID:   charUUID,
			Value:  c.Value,
			Flags:  translateFlags(c.Flags),
		}
		if onWrite := c.OnWrite; onWrite != nil {
			cfg.WriteEvent = func(client bluetooth.Connection, offset int, value []byte) {
				onWrite(value)
			}
		}
		configs[i] = cfg
	}

	if err := t.adapter.AddService(&bluetooth.Service{
		UUID:            svcUUID,
		Characteristics: configs,
	}); err != nil {
		return nil, fmt.Errorf("ble: add service: %w", err)
	}

	out := make([]Characteristic, len(handles))
	for i, h := range handles {
		out[i] = &bluetoothCharacteristic{char: h}
	}
	return out, nil
}

func (t *BluetoothTransport) Advertise(localName, serviceUUID string) error {
	svcUUID, err := bluetooth.ParseUUID(serviceUUID)
	if err != nil {
		return fmt.Errorf("ble: parse service UUID: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.adv = t.adapter.DefaultAdvertisement()
	if err := t.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    localName,
		ServiceUUIDs: []bluetooth.UUID{svcUUID},
	}); err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	if err := t.adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertising: %w", err)
	}
	t.advertising = true
	return nil
}

func (t *BluetoothTransport) Resume() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.adv == nil {
		return fmt.Errorf("ble: resume before Advertise")
	}
	if t.advertising {
		return nil
	}
	if err := t.adv.Start(); err != nil {
		return fmt.Errorf("ble: resume advertising: %w", err)
	}
	t.advertising = true
	return nil
}

func (t *BluetoothTransport) SetConnectHandler(handler func(connected bool)) {
	t.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		if connected {
			// The stack parks advertising while a central is connected.
			t.mu.Lock()
			t.advertising = false
			t.mu.Unlock()
		}
		handler(connected)
	})
}

// translateFlags maps our property flags to the stack's permissions.
func translateFlags(f Flags) bluetooth.CharacteristicPermissions {
	var p bluetooth.CharacteristicPermissions
	if f&FlagRead != 0 {
		p |= bluetooth.CharacteristicReadPermission
	}
	if f&FlagWrite != 0 {
		p |= bluetooth.CharacteristicWritePermission
	}
	if f&FlagWriteWithoutResponse != 0 {
		p |= bluetooth.CharacteristicWriteWithoutResponsePermission
	}
	if f&FlagNotify != 0 {
		p |= bluetooth.CharacteristicNotifyPermission
	}
	return p
}

// bluetoothCharacteristic adapts a served characteristic handle.
type bluetoothCharacteristic struct {
	char *bluetooth.Characteristic
}

func (c *bluetoothCharacteristic) Update(data []byte) error {
	_, err := c.char.Write(data)
	return err
}
