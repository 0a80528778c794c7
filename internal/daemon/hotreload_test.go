package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/gitisland/internal/config"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
}

func TestConfigWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitisland.toml")
	w := NewConfigWatcher(path, nil)

	var reloaded []*config.Config
	var failed []error
	w.SetReloadCallback(func(c *config.Config) { reloaded = append(reloaded, c) })
	w.SetErrorCallback(func(err error) { failed = append(failed, err) })
	w.currentConfig = config.DefaultConfig()

	writeConfig(t, path, "[labels]\npolicy = \"first-of-month\"\n")
	w.reload()
	require.Len(t, reloaded, 1)
	assert.Equal(t, "first-of-month", w.GetCurrentConfig().Labels.Policy)

	// Unchanged content is not reported twice.
	w.reload()
	assert.Len(t, reloaded, 1)

	writeConfig(t, path, "[island]\nopened_width = 5\n")
	w.reload()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Error(), "opened_width")
	assert.Equal(t, "first-of-month", w.GetCurrentConfig().Labels.Policy, "previous config stays active")
}

func TestConfigWatcher_WatchesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gitisland.toml")
	w := NewConfigWatcher(path, nil)

	reloaded := make(chan *config.Config, 4)
	w.SetReloadCallback(func(c *config.Config) { reloaded <- c })

	require.NoError(t, w.Start(config.DefaultConfig()))
	t.Cleanup(w.Stop)

	writeConfig(t, path, "[audio]\nenabled = true\nvolume = 20\n")

	select {
	case c := <-reloaded:
		assert.True(t, c.Audio.Enabled)
		assert.Equal(t, 20, c.Audio.Volume)
	case <-time.After(2 * time.Second):
		t.Fatal("config change not detected")
	}
}

func TestConfigWatcher_StopIsIdempotent(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "gitisland.toml"), nil)
	w.Stop()
	require.NoError(t, w.Start(nil))
	w.Stop()
	w.Stop()
}
