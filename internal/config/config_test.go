package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, time.Second, cfg.Island.HoverDelay.Duration())
	assert.Equal(t, 350*time.Millisecond, cfg.Island.HideDelay.Duration())
	assert.Equal(t, 50*time.Millisecond, cfg.Island.Throttle.Duration())
	assert.Equal(t, 400, cfg.Island.OpenedWidth)
	assert.Equal(t, 175, cfg.Island.OpenedHeight)
	assert.Equal(t, 52.0, cfg.HitTest.OpenedSlack)
	assert.True(t, cfg.Reveal.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Reveal.Duration.Duration())
	assert.Equal(t, "github", cfg.Activity.Provider)
	assert.Equal(t, "GITHUB_TOKEN", cfg.Activity.TokenEnv)
	assert.Equal(t, "shifted", cfg.Labels.Policy)
	assert.False(t, cfg.Audio.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/gitisland.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitisland.toml")
	content := `
[island]
hover_delay = "750ms"
hide_delay = 400
opened_width = 480

[activity]
username = "torvalds"
provider = "profile"
weeks = 30

[labels]
policy = "first-of-month"

[audio]
enabled = true
volume = 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Island.HoverDelay.Duration())
	assert.Equal(t, 400*time.Millisecond, cfg.Island.HideDelay.Duration())
	assert.Equal(t, 480, cfg.Island.OpenedWidth)
	assert.Equal(t, 175, cfg.Island.OpenedHeight, "unset keys keep defaults")
	assert.Equal(t, "torvalds", cfg.Activity.Username)
	assert.Equal(t, "profile", cfg.Activity.Provider)
	assert.Equal(t, 30, cfg.Activity.Weeks)
	assert.Equal(t, "first-of-month", cfg.Labels.Policy)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 25, cfg.Audio.Volume)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitisland.toml")
	require.NoError(t, os.WriteFile(path, []byte("[island\nhover_delay = "), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitisland.toml")
	require.NoError(t, os.WriteFile(path, []byte("[island]\nhover_delay = \"soon\"\n"), 0600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid duration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"hide delay too short", func(c *Config) { c.Island.HideDelay = Duration(100 * time.Millisecond) }, "island.hide_delay"},
		{"hide delay too long", func(c *Config) { c.Island.HideDelay = Duration(time.Second) }, "island.hide_delay"},
		{"hide delay upper bound", func(c *Config) { c.Island.HideDelay = Duration(500 * time.Millisecond) }, ""},
		{"zero hover delay", func(c *Config) { c.Island.HoverDelay = 0 }, "island.hover_delay"},
		{"zero throttle", func(c *Config) { c.Island.Throttle = 0 }, "island.throttle"},
		{"narrow panel", func(c *Config) { c.Island.OpenedWidth = 10 }, "island.opened_width: must be at least 100"},
		{"unknown provider", func(c *Config) { c.Activity.Provider = "gitlab" }, "activity.provider: must be one of"},
		{"missing username", func(c *Config) { c.Activity.Username = "" }, "activity.username: is required"},
		{"too many weeks", func(c *Config) { c.Activity.Weeks = 60 }, "activity.weeks"},
		{"bad label policy", func(c *Config) { c.Labels.Policy = "weekly" }, "labels.policy"},
		{"volume", func(c *Config) { c.Audio.Volume = 101 }, "audio.volume: must be at most 100"},
		{"layer", func(c *Config) { c.Display.Layer = "background" }, "display.layer"},
		{"notch width only", func(c *Config) { c.Display.NotchWidth = 185 }, "display.notch_width and display.notch_height"},
		{"notch", func(c *Config) { c.Display.NotchWidth, c.Display.NotchHeight = 185, 32 }, ""},
		{"reveal shorter than a tick", func(c *Config) { c.Reveal.Duration = Duration(time.Millisecond) }, "reveal.duration"},
		{"zero timeout", func(c *Config) { c.Activity.Timeout = 0 }, "activity.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "gitisland.toml")

	cfg := DefaultConfig()
	cfg.Activity.Username = "someone"
	cfg.Island.HideDelay = Duration(420 * time.Millisecond)
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	assert.Equal(t, "/tmp/xdg-config/gitisland/gitisland.toml", Path())
}

func TestResolveToken(t *testing.T) {
	a := ActivityConfig{TokenEnv: "GITISLAND_TEST_TOKEN", Token: "from-file"}

	t.Setenv("GITISLAND_TEST_TOKEN", "")
	assert.Equal(t, "from-file", a.ResolveToken())

	t.Setenv("GITISLAND_TEST_TOKEN", " from-env ")
	assert.Equal(t, "from-env", a.ResolveToken())
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1500")))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	require.NoError(t, d.UnmarshalText([]byte("2m")))
	assert.Equal(t, 2*time.Minute, d.Duration())

	text, err := Duration(350 * time.Millisecond).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "350ms", string(text))
}
