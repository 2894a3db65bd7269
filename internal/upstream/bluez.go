// Package upstream forwards AACP events to consumers outside this
// module. The only implementation here publishes battery readings to
// BlueZ's BatteryProviderManager1 D-Bus interface, the same surface
// GNOME Settings and other desktop battery indicators read from.
package upstream

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/go-aacp/aacp-session/internal/aacp"
)

const (
	bluezService                = "org.bluez"
	adapterPath                 = "/org/bluez/hci0"
	batteryProviderManagerIface = "org.bluez.BatteryProviderManager1"
	batteryProviderIface        = "org.bluez.BatteryProvider1"
	providerPath                = "/org/go_aacp/aacp_session/battery"

	providerIntrospectXML = `
<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"
"http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">
<node>
	<interface name="org.freedesktop.DBus.ObjectManager">
		<method name="GetManagedObjects">
			<arg name="objects" type="a{oa{sa{sv}}}" direction="out"/>
		</method>
	</interface>
</node>`

	batteryIntrospectXML = `
<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"
"http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">
<node>
	<interface name="org.bluez.BatteryProvider1">
		<property name="Percentage" type="y" access="read"/>
		<property name="Source" type="s" access="read"/>
	</interface>
</node>`
)

type batteryObject struct {
	path       dbus.ObjectPath
	percentage uint8
	component  string
}

// BlueZBatteryProvider is an aacp.EventSink that mirrors every battery
// reading from each BatteryInfoEvent into BlueZ, one object per battery
// component (case, left, right).
type BlueZBatteryProvider struct {
	conn *dbus.Conn
	mu   sync.Mutex
	objs map[string]*batteryObject
}

// NewBlueZBatteryProvider opens a system bus connection, exports the
// ObjectManager root, and registers with BlueZ's battery provider
// manager for the default adapter.
func NewBlueZBatteryProvider() (*BlueZBatteryProvider, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("upstream: connecting to system bus: %w", err)
	}

	p := &BlueZBatteryProvider{conn: conn, objs: make(map[string]*batteryObject)}

	if err := conn.Export(p, providerPath, "org.freedesktop.DBus.ObjectManager"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("upstream: exporting object manager: %w", err)
	}
	if err := conn.Export(introspect.Introspectable(providerIntrospectXML), providerPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("upstream: exporting introspection: %w", err)
	}

	obj := conn.Object(bluezService, dbus.ObjectPath(adapterPath))
	if call := obj.Call(batteryProviderManagerIface+".RegisterBatteryProvider", 0, dbus.ObjectPath(providerPath)); call.Err != nil {
		conn.Close()
		return nil, fmt.Errorf("upstream: registering battery provider: %w", call.Err)
	}

	return p, nil
}

// HandleAACPEvent implements aacp.EventSink, publishing every
// BatteryInfoEvent's readings and ignoring everything else.
func (p *BlueZBatteryProvider) HandleAACPEvent(e aacp.Event) {
	ev, ok := e.(aacp.BatteryInfoEvent)
	if !ok {
		return
	}
	for _, b := range ev.Batteries {
		p.publish(b.Component.String(), b.Level)
	}
}

func (p *BlueZBatteryProvider) publish(component string, level uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()

	obj, exists := p.objs[component]
	if !exists {
		path := dbus.ObjectPath(fmt.Sprintf("%s/%s", providerPath, component))
		obj = &batteryObject{path: path, component: component}
		p.objs[component] = obj

		if err := p.conn.Export(obj, path, "org.freedesktop.DBus.Properties"); err != nil {
			return
		}
		if err := p.conn.Export(introspect.Introspectable(batteryIntrospectXML), path, "org.freedesktop.DBus.Introspectable"); err != nil {
			return
		}

		interfaces := map[string]map[string]dbus.Variant{
			batteryProviderIface: {
				"Percentage": dbus.MakeVariant(level),
				"Source":     dbus.MakeVariant("aacp-session"),
			},
		}
		_ = p.conn.Emit(providerPath, "org.freedesktop.DBus.ObjectManager.InterfacesAdded", path, interfaces)
	}

	obj.percentage = level
	changes := map[string]dbus.Variant{"Percentage": dbus.MakeVariant(level)}
	_ = p.conn.Emit(obj.path, "org.freedesktop.DBus.Properties.PropertiesChanged", batteryProviderIface, changes, []string{})
}

// Get implements org.freedesktop.DBus.Properties.Get for a battery object.
func (b *batteryObject) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	if iface != batteryProviderIface {
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []interface{}{iface})
	}
	switch property {
	case "Percentage":
		return dbus.MakeVariant(b.percentage), nil
	case "Source":
		return dbus.MakeVariant("aacp-session"), nil
	default:
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.UnknownProperty", []interface{}{property})
	}
}

// GetAll implements org.freedesktop.DBus.Properties.GetAll for a battery object.
func (b *batteryObject) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	if iface != batteryProviderIface {
		return nil, dbus.NewError("org.freedesktop.DBus.Error.UnknownInterface", []interface{}{iface})
	}
	return map[string]dbus.Variant{
		"Percentage": dbus.MakeVariant(b.percentage),
		"Source":     dbus.MakeVariant("aacp-session"),
	}, nil
}

// GetManagedObjects implements org.freedesktop.DBus.ObjectManager.
func (p *BlueZBatteryProvider) GetManagedObjects() (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, *dbus.Error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[dbus.ObjectPath]map[string]map[string]dbus.Variant, len(p.objs))
	for _, obj := range p.objs {
		out[obj.path] = map[string]map[string]dbus.Variant{
			batteryProviderIface: {
				"Percentage": dbus.MakeVariant(obj.percentage),
				"Source":     dbus.MakeVariant("aacp-session"),
			},
		}
	}
	return out, nil
}

// Close unregisters the provider and closes the D-Bus connection.
func (p *BlueZBatteryProvider) Close() error {
	obj := p.conn.Object(bluezService, dbus.ObjectPath(adapterPath))
	_ = obj.Call(batteryProviderManagerIface+".UnregisterBatteryProvider", 0, dbus.ObjectPath(providerPath)).Err
	return p.conn.Close()
}
