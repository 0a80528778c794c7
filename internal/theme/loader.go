package theme

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/gitisland/internal/mainloop"
	"github.com/jmylchreest/gitisland/internal/store"
)

// Loader owns the CSS provider for the island window.
type Loader struct {
	mu         sync.RWMutex
	logger     *slog.Logger
	dispatcher mainloop.Dispatcher
	provider   *gtk.CSSProvider
	themesDir  string
	theme      *Theme
	watcher    *store.FileWatcher
}

// NewLoader creates a loader. Provider updates triggered by file changes
// are posted to dispatcher, which must run on the GTK main thread.
func NewLoader(dispatcher mainloop.Dispatcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if dispatcher == nil {
		dispatcher = mainloop.Immediate{}
	}

	themesDir, err := ThemesDir()
	if err != nil {
		logger.Warn("failed to get themes directory", "error", err)
		themesDir = ""
	}

	return &Loader{
		logger:     logger,
		dispatcher: dispatcher,
		provider:   gtk.NewCSSProvider(),
		themesDir:  themesDir,
	}
}

// LoadTheme loads a theme by name: a user theme of that name first, then
// a bundled one, then the default.
func (l *Loader) LoadTheme(name string) error {
	if name == "" {
		name = DefaultThemeName
	}

	theme := l.resolve(name)

	l.mu.Lock()
	l.theme = theme
	l.mu.Unlock()

	l.provider.LoadFromString(theme.CSS + "\n" + ColorRules())
	l.logger.Info("loaded theme", "name", theme.Name, "path", theme.Path)
	return nil
}

func (l *Loader) resolve(name string) *Theme {
	if l.themesDir != "" {
		path := filepath.Join(l.themesDir, name+".css")
		if _, err := os.Stat(path); err == nil {
			theme, err := NewTheme(name, path)
			if err == nil {
				return theme
			}
			l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	if theme, found := NewBundledTheme(name); found {
		return theme
	}

	l.logger.Warn("theme not found, using default", "theme", name)
	theme, _ := NewBundledTheme(DefaultThemeName)
	return theme
}

// Apply installs the provider on display, or the default display when nil.
func (l *Loader) Apply(display *gdk.Display) {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		l.logger.Warn("no display available, cannot apply theme")
		return
	}

	gtk.StyleContextAddProviderForDisplay(
		display,
		l.provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}

// StartHotReload watches the current user theme. Bundled themes are not
// watched.
func (l *Loader) StartHotReload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.theme == nil || l.theme.IsBundled {
		l.logger.Debug("not starting hot-reload for bundled theme")
		return
	}
	if l.watcher != nil {
		_ = l.watcher.Stop()
	}

	theme := l.theme
	fw, err := store.NewFileWatcher(theme.Path, func() {
		l.dispatcher.Post(func() { l.reload(theme) })
	}, l.logger)
	if err == nil {
		err = fw.Start()
	}
	if err != nil {
		l.logger.Warn("failed to start theme watcher", "error", err)
		return
	}
	l.watcher = fw
}

func (l *Loader) reload(theme *Theme) {
	l.mu.RLock()
	current := l.theme
	l.mu.RUnlock()
	if current != theme {
		return
	}

	changed, err := theme.Reload()
	if err != nil {
		l.logger.Warn("failed to reload theme", "name", theme.Name, "error", err)
		return
	}
	if changed {
		l.provider.LoadFromString(theme.CSS + "\n" + ColorRules())
		l.logger.Info("hot-reloaded theme", "name", theme.Name)
	}
}

// StopHotReload stops watching the theme.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watcher != nil {
		_ = l.watcher.Stop()
		l.watcher = nil
	}
}

// Theme returns the loaded theme.
func (l *Loader) Theme() *Theme {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.theme
}
