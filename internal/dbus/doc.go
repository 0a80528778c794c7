// Package dbus exposes the island on the session bus as
// io.github.jmylchreest.GitIsland and provides the matching client used by
// the CLI. It also sends desktop notifications through
// org.freedesktop.Notifications for internal daemon events.
package dbus
