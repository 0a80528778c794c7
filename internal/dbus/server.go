package dbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// Controller is the island as seen by the bus service. Methods are called
// from the D-Bus goroutine and must marshal onto the UI context themselves.
type Controller interface {
	Open() bool
	Close() bool
	Toggle() bool
	Status() Status
	ResetAnimation() error
}

// Server exports a Controller on the session bus.
type Server struct {
	conn       *dbus.Conn
	logger     *slog.Logger
	controller Controller

	mu      sync.RWMutex
	running bool
}

// NewServer creates a Server for controller.
func NewServer(controller Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:     logger,
		controller: controller,
	}
}

// Start connects to the session bus, exports the service and claims the
// bus name. It fails when another instance already owns the name.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: islandMethods(),
				Signals: islandSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken, is gitisland already running?", BusName)
	}

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus control service started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared; leave it open.
	}

	s.logger.Info("D-Bus control service stopped")
	return nil
}

// Open opens the panel.
// D-Bus method: Open() -> b
func (s *Server) Open() (bool, *dbus.Error) {
	s.logger.Debug("Open called")
	return s.controller.Open(), nil
}

// Close closes the panel.
// D-Bus method: Close() -> b
func (s *Server) Close() (bool, *dbus.Error) {
	s.logger.Debug("Close called")
	return s.controller.Close(), nil
}

// Toggle flips the panel.
// D-Bus method: Toggle() -> b
func (s *Server) Toggle() (bool, *dbus.Error) {
	s.logger.Debug("Toggle called")
	return s.controller.Toggle(), nil
}

// Status returns the current island status.
// D-Bus method: Status() -> a{sv}
func (s *Server) Status() (map[string]dbus.Variant, *dbus.Error) {
	return s.controller.Status().Variants(), nil
}

// ResetAnimation clears the first-run flag so the next grid animates.
// D-Bus method: ResetAnimation() -> nothing
func (s *Server) ResetAnimation() *dbus.Error {
	s.logger.Debug("ResetAnimation called")
	if err := s.controller.ResetAnimation(); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func islandMethods() []introspect.Method {
	toggleArgs := func() []introspect.Arg {
		return []introspect.Arg{{Name: "changed", Type: "b", Direction: "out"}}
	}
	return []introspect.Method{
		{Name: "Open", Args: toggleArgs()},
		{Name: "Close", Args: toggleArgs()},
		{Name: "Toggle", Args: toggleArgs()},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "status", Type: "a{sv}", Direction: "out"},
			},
		},
		{Name: "ResetAnimation"},
	}
}

func islandSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "StatusChanged",
			Args: []introspect.Arg{
				{Name: "old", Type: "s"},
				{Name: "new", Type: "s"},
				{Name: "reason", Type: "s"},
			},
		},
	}
}
