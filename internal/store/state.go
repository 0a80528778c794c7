// Package store persists the small amount of state gitisland keeps between
// runs.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DataDir returns the path to the gitisland data directory.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/gitisland.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "gitisland"), nil
}

// StateFilePath returns the path to the state file.
func StateFilePath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "state.json"), nil
}

// SharedState is shared between the daemon and the CLI.
// This is persisted to ~/.local/share/gitisland/state.json
type SharedState struct {
	// First-run reveal animation
	LoadingAnimationShown   bool  `json:"loading_animation_shown"`
	LoadingAnimationShownAt int64 `json:"loading_animation_shown_at,omitempty"` // Unix timestamp

	// Statistics
	LastOpenedAt  int64  `json:"last_opened_at,omitempty"`
	LastSessionID string `json:"last_session_id,omitempty"`
	OpenCount     int    `json:"open_count,omitempty"`

	SchemaVersion int `json:"schema_version"`
}

// CurrentSchemaVersion is the current version of the state schema.
const CurrentSchemaVersion = 1

// stateFileMutex protects concurrent access to state files.
var stateFileMutex sync.RWMutex

// DefaultSharedState returns a new SharedState with default values.
func DefaultSharedState() *SharedState {
	return &SharedState{SchemaVersion: CurrentSchemaVersion}
}

// LoadSharedState loads the shared state from the default path.
func LoadSharedState() (*SharedState, error) {
	path, err := StateFilePath()
	if err != nil {
		return nil, err
	}
	return LoadSharedStateFrom(path)
}

// LoadSharedStateFrom loads the shared state from path.
// If the file doesn't exist, returns a default state. A corrupt file is an
// error so the caller can decide how to degrade.
func LoadSharedStateFrom(path string) (*SharedState, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSharedState(), nil
		}
		return nil, err
	}

	var state SharedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	return &state, nil
}

// SaveSharedState saves the shared state to the default path.
func SaveSharedState(state *SharedState) error {
	path, err := StateFilePath()
	if err != nil {
		return err
	}
	return SaveSharedStateTo(path, state)
}

// SaveSharedStateTo saves the shared state to path.
func SaveSharedStateTo(path string, state *SharedState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// MarkAnimationShown sets the first-run flag.
func (s *SharedState) MarkAnimationShown() {
	s.LoadingAnimationShown = true
	s.LoadingAnimationShownAt = time.Now().Unix()
}

// ResetAnimation clears the first-run flag.
func (s *SharedState) ResetAnimation() {
	s.LoadingAnimationShown = false
	s.LoadingAnimationShownAt = 0
}

// RecordOpen updates the open statistics.
func (s *SharedState) RecordOpen(sessionID string) {
	s.LastOpenedAt = time.Now().Unix()
	s.LastSessionID = sessionID
	s.OpenCount++
}
