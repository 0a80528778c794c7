package store

import (
	"fmt"
	"sync"
)

// FlagStore reads and writes the "loading animation already shown" flag.
type FlagStore interface {
	AnimationShown() (bool, error)
	MarkAnimationShown() error
}

// FileFlagStore keeps the flag in the shared state file.
type FileFlagStore struct {
	path string
}

// NewFileFlagStore creates a FileFlagStore backed by path. An empty path
// uses StateFilePath.
func NewFileFlagStore(path string) (*FileFlagStore, error) {
	if path == "" {
		p, err := StateFilePath()
		if err != nil {
			return nil, fmt.Errorf("resolve state path: %w", err)
		}
		path = p
	}
	return &FileFlagStore{path: path}, nil
}

// Path returns the backing file.
func (f *FileFlagStore) Path() string { return f.path }

// AnimationShown implements FlagStore.
func (f *FileFlagStore) AnimationShown() (bool, error) {
	state, err := LoadSharedStateFrom(f.path)
	if err != nil {
		return false, fmt.Errorf("load state: %w", err)
	}
	return state.LoadingAnimationShown, nil
}

// MarkAnimationShown implements FlagStore.
func (f *FileFlagStore) MarkAnimationShown() error {
	return f.update(func(s *SharedState) { s.MarkAnimationShown() })
}

// ResetAnimation clears the flag so the next reveal animates again.
func (f *FileFlagStore) ResetAnimation() error {
	return f.update(func(s *SharedState) { s.ResetAnimation() })
}

// RecordOpen stores open statistics alongside the flag.
func (f *FileFlagStore) RecordOpen(sessionID string) error {
	return f.update(func(s *SharedState) { s.RecordOpen(sessionID) })
}

func (f *FileFlagStore) update(fn func(*SharedState)) error {
	state, err := LoadSharedStateFrom(f.path)
	if err != nil {
		// A corrupt file is replaced rather than blocking the write.
		state = DefaultSharedState()
	}
	fn(state)
	if err := SaveSharedStateTo(f.path, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// MemoryFlagStore is an in-process FlagStore. ReadErr and WriteErr, when
// set, are returned by the corresponding calls.
type MemoryFlagStore struct {
	mu       sync.Mutex
	shown    bool
	writes   int
	ReadErr  error
	WriteErr error
}

// NewMemoryFlagStore creates a MemoryFlagStore with the given initial value.
func NewMemoryFlagStore(shown bool) *MemoryFlagStore {
	return &MemoryFlagStore{shown: shown}
}

// AnimationShown implements FlagStore.
func (m *MemoryFlagStore) AnimationShown() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return false, m.ReadErr
	}
	return m.shown, nil
}

// MarkAnimationShown implements FlagStore.
func (m *MemoryFlagStore) MarkAnimationShown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.shown = true
	return nil
}

// Writes returns how many times MarkAnimationShown was called.
func (m *MemoryFlagStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// ResetAnimation clears the flag.
func (m *MemoryFlagStore) ResetAnimation() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.shown = false
	return nil
}
