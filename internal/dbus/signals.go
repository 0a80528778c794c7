package dbus

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// EmitStatusChanged emits the StatusChanged signal.
func (s *Server) EmitStatusChanged(change StatusChange) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(Path, Interface+".StatusChanged", change.Old, change.New, change.Reason)
	if err != nil {
		return fmt.Errorf("failed to emit StatusChanged signal: %w", err)
	}

	s.logger.Debug("emitted StatusChanged signal", "old", change.Old, "new", change.New, "reason", change.Reason)
	return nil
}

// Connection returns the underlying D-Bus connection.
func (s *Server) Connection() *dbus.Conn {
	return s.conn
}

// parseStatusChanged decodes a StatusChanged signal body.
func parseStatusChanged(sig *dbus.Signal) (StatusChange, bool) {
	if sig == nil || sig.Name != Interface+".StatusChanged" || len(sig.Body) != 3 {
		return StatusChange{}, false
	}
	var c StatusChange
	var ok1, ok2, ok3 bool
	c.Old, ok1 = sig.Body[0].(string)
	c.New, ok2 = sig.Body[1].(string)
	c.Reason, ok3 = sig.Body[2].(string)
	return c, ok1 && ok2 && ok3
}
