package audio

import (
	"log/slog"
	"os"
	"sync"

	"github.com/jmylchreest/gitisland/internal/config"
)

// Manager plays the open cue according to the audio configuration.
type Manager struct {
	mu     sync.RWMutex
	logger *slog.Logger
	player *Player
	config config.AudioConfig
	sound  string // resolved open sound, empty = built-in chime
}

// NewManager creates a new audio manager.
func NewManager(cfg config.AudioConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		logger: logger,
		player: NewPlayer(logger),
	}
	m.apply(cfg)
	return m
}

func (m *Manager) apply(cfg config.AudioConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = cfg
	m.player.SetVolume(float64(cfg.Volume) / 100.0)

	m.sound = ""
	if cfg.OpenSound != "" {
		path := expandPath(cfg.OpenSound)
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("open sound not found, using built-in chime", "path", path)
		} else {
			m.sound = path
		}
	}
}

// Start preloads the configured sound.
func (m *Manager) Start() {
	m.mu.RLock()
	enabled, sound := m.config.Enabled, m.sound
	m.mu.RUnlock()

	if !enabled || sound == "" {
		return
	}
	if err := m.player.Preload(sound); err != nil {
		m.logger.Warn("failed to preload sound", "path", sound, "error", err)
	}
}

// Enabled reports whether the cue will play.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.Enabled && m.config.Volume > 0
}

// SoundPath returns the configured sound file, or "" for the built-in
// chime.
func (m *Manager) SoundPath() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sound
}

// PlayOpen plays the open cue. It never blocks on playback.
func (m *Manager) PlayOpen() error {
	if !m.Enabled() {
		return nil
	}

	if path := m.SoundPath(); path != "" {
		return m.player.Play(path)
	}

	chime, err := Chime(DefaultSampleRate)
	if err != nil {
		return err
	}
	return m.player.PlayStreamer(chime, DefaultSampleRate)
}

// UpdateConfig applies a hot-reloaded configuration.
func (m *Manager) UpdateConfig(cfg config.AudioConfig) {
	m.player.ClearCache()
	m.apply(cfg)
	m.Start()
	m.logger.Debug("audio manager config updated", "enabled", cfg.Enabled, "volume", cfg.Volume)
}

// Stop shuts down playback.
func (m *Manager) Stop() {
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}
