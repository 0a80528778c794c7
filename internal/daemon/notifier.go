package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/dbus"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// SendFunc delivers a desktop notification, typically dbus.Notifier.Send.
type SendFunc func(n *dbus.Notification) (uint32, error)

// InternalNotifier reports daemon events (reloads, fetch failures) as
// desktop notifications. The same key is not repeated within minInterval.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	clock  clock.Clock

	send SendFunc

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates an InternalNotifier. A nil send disables
// delivery; events are still logged.
func NewInternalNotifier(send SendFunc, c clock.Clock, logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = clock.Real()
	}
	return &InternalNotifier{
		logger:         logger,
		clock:          c,
		send:           send,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notification unless key was used within the minimum
// interval.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return
	}

	if n.send == nil {
		n.logger.Debug("internal notification skipped: no sender", "summary", summary)
		return
	}

	now := n.clock.Now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.logger.Debug("internal notification rate-limited", "key", key, "summary", summary)
		return
	}
	n.lastNotifyTime[key] = now

	urgency := dbus.UrgencyNormal
	icon := "dialog-warning"
	switch level {
	case NotificationLevelInfo:
		urgency, icon = dbus.UrgencyLow, "dialog-information"
	case NotificationLevelError:
		urgency, icon = dbus.UrgencyCritical, "dialog-error"
	}

	notification := &dbus.Notification{
		AppName: "gitisland",
		AppIcon: icon,
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(urgency),
			"transient":     godbus.MakeVariant(true),
			"desktop-entry": godbus.MakeVariant("gitisland"),
		},
		ExpireTimeout: 5000,
	}

	n.logger.Debug("sending internal notification", "key", key, "summary", summary, "level", level)
	if _, err := n.send(notification); err != nil {
		n.logger.Warn("failed to send internal notification", "summary", summary, "error", err)
	}
}

// NotifyConfigReloaded reports a successful reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"gitisland configuration has been reloaded.", NotificationLevelInfo)
}

// NotifyConfigError reports a config file that failed to load. The
// previous configuration stays active.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), NotificationLevelWarning)
}

// NotifyFetchError reports a failed activity fetch.
func (n *InternalNotifier) NotifyFetchError(err error) {
	n.Notify("fetch-error", "Activity Unavailable", err.Error(), NotificationLevelWarning)
}

// NotifyAudioError reports a failed open cue.
func (n *InternalNotifier) NotifyAudioError(err error) {
	n.Notify("audio-error", "Audio Error",
		"Failed to play open sound: "+err.Error(), NotificationLevelWarning)
}
