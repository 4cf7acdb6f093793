// Package bluez is a startup health check for the BlueZ daemon: the
// peripheral stack silently fails to advertise when bluetooth.service
// is down or the adapter is soft-blocked, so the daemon verifies and
// powers the adapter before bringing up the GATT service.
package bluez

import (
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	busName      = "org.bluez"
	adapterIface = "org.bluez.Adapter1"
	propsIface   = "org.freedesktop.DBus.Properties"
	objManIface  = "org.freedesktop.DBus.ObjectManager"
)

// Doctor wraps a system D-Bus connection for the adapter check.
type Doctor struct {
	conn *dbus.Conn
}

// NewDoctor connects to the system bus and verifies BlueZ is present.
func NewDoctor() (*Doctor, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, fmt.Errorf("bluez: connect to system bus: %w", err)
	}

	var names []string
	if err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bluez: list bus names: %w", err)
	}
	found := false
	for _, n := range names {
		if n == busName {
			found = true
			break
		}
	}
	if !found {
		conn.Close()
		return nil, fmt.Errorf("bluez: org.bluez not found on system bus (is bluetooth.service running?)")
	}
	return &Doctor{conn: conn}, nil
}

// Close releases the bus connection.
func (d *Doctor) Close() error {
	return d.conn.Close()
}

// EnsurePowered finds the first adapter and powers it on if needed.
// Returns the adapter's object path.
func (d *Doctor) EnsurePowered() (string, error) {
	path, err := d.findAdapter()
	if err != nil {
		return "", err
	}

	powered, err := d.getBool(path, adapterIface, "Powered")
	if err != nil {
		return "", fmt.Errorf("bluez: read Powered on %s: %w", path, err)
	}
	if powered {
		return string(path), nil
	}

	slog.Info("[BLUEZ] adapter off, powering on", "adapter", path)
	if err := d.setProp(path, adapterIface, "Powered", true); err != nil {
		return "", fmt.Errorf("bluez: power on %s: %w", path, err)
	}
	return string(path), nil
}

// findAdapter walks the BlueZ object tree for the first object
// implementing Adapter1.
func (d *Doctor) findAdapter() (dbus.ObjectPath, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	obj := d.conn.Object(busName, "/")
	if err := obj.Call(objManIface+".GetManagedObjects", 0).Store(&objects); err != nil {
		return "", fmt.Errorf("bluez: get managed objects: %w", err)
	}
	for path, ifaces := range objects {
		if _, ok := ifaces[adapterIface]; ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("bluez: no bluetooth adapter found")
}

func (d *Doctor) getBool(path dbus.ObjectPath, iface, prop string) (bool, error) {
	var v dbus.Variant
	obj := d.conn.Object(busName, path)
	if err := obj.Call(propsIface+".Get", 0, iface, prop).Store(&v); err != nil {
		return false, err
	}
	val, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("property %s is not bool", prop)
	}
	return val, nil
}

func (d *Doctor) setProp(path dbus.ObjectPath, iface, prop string, val interface{}) error {
	obj := d.conn.Object(busName, path)
	return obj.Call(propsIface+".Set", 0, iface, prop, dbus.MakeVariant(val)).Err
}
