package display

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
)

// selectMonitor picks the island's monitor. Index 0 prefers the built-in
// panel and falls back to the first monitor; 1+ selects a monitor by
// position.
func selectMonitor(display *gdk.Display, index int, logger *slog.Logger) *gdk.Monitor {
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}
	n := monitors.NItems()

	if index > 0 {
		if uint(index) <= n {
			return wrapMonitor(monitors.Item(uint(index - 1)))
		}
		logger.Warn("configured monitor not found, using default", "monitor", index, "available", n)
	}

	for i := uint(0); i < n; i++ {
		m := wrapMonitor(monitors.Item(i))
		if m != nil && IsBuiltinConnector(m.Connector()) {
			return m
		}
	}
	return wrapMonitor(monitors.Item(0))
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor. gotk4 does not
// export its own wrapper; gdk.Monitor embeds *glib.Object as its only
// field.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
