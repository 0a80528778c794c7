package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	// Interface is the control interface name.
	Interface = "io.github.jmylchreest.GitIsland"
	// Path is the control object path.
	Path = "/io/github/jmylchreest/GitIsland"
	// BusName is the bus name claimed by the daemon.
	BusName = "io.github.jmylchreest.GitIsland"
)

// Status is a snapshot of the island as reported over the bus.
type Status struct {
	Status    string `json:"status" yaml:"status"`         // "closed" or "opened"
	Hovering  bool   `json:"hovering" yaml:"hovering"`     // pointer over the notch or panel
	Visible   bool   `json:"visible" yaml:"visible"`       // island view shown
	SessionID string `json:"session_id" yaml:"session_id"` // current panel session, empty when closed
	Session   string `json:"session" yaml:"session"`       // idle, loading, loaded, failed
	Phase     string `json:"phase" yaml:"phase"`           // reveal phase
	Username  string `json:"username" yaml:"username"`
	Total     int    `json:"total" yaml:"total"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Variants encodes s as an a{sv} dictionary.
func (s Status) Variants() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"status":     dbus.MakeVariant(s.Status),
		"hovering":   dbus.MakeVariant(s.Hovering),
		"visible":    dbus.MakeVariant(s.Visible),
		"session_id": dbus.MakeVariant(s.SessionID),
		"session":    dbus.MakeVariant(s.Session),
		"phase":      dbus.MakeVariant(s.Phase),
		"username":   dbus.MakeVariant(s.Username),
		"total":      dbus.MakeVariant(int32(s.Total)),
		"error":      dbus.MakeVariant(s.Error),
	}
}

// StatusFromVariants decodes an a{sv} dictionary produced by Variants.
// Unknown keys are ignored and missing keys keep their zero value.
func StatusFromVariants(m map[string]dbus.Variant) (Status, error) {
	var s Status
	for key, v := range m {
		var ok bool
		switch key {
		case "status":
			s.Status, ok = v.Value().(string)
		case "hovering":
			s.Hovering, ok = v.Value().(bool)
		case "visible":
			s.Visible, ok = v.Value().(bool)
		case "session_id":
			s.SessionID, ok = v.Value().(string)
		case "session":
			s.Session, ok = v.Value().(string)
		case "phase":
			s.Phase, ok = v.Value().(string)
		case "username":
			s.Username, ok = v.Value().(string)
		case "error":
			s.Error, ok = v.Value().(string)
		case "total":
			var n int32
			n, ok = v.Value().(int32)
			s.Total = int(n)
		default:
			ok = true
		}
		if !ok {
			return Status{}, fmt.Errorf("status field %q has unexpected type %s", key, v.Signature())
		}
	}
	return s, nil
}

// StatusChange is the payload of the StatusChanged signal.
type StatusChange struct {
	Old    string
	New    string
	Reason string
}
