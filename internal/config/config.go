// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultUsername  = "octocat"
	DefaultTokenEnv  = "GITHUB_TOKEN"
	DefaultProvider  = "github"
	DefaultWeeks     = 22
	DefaultVolume    = 60
	DefaultLayer     = "overlay"
	MinHideDelay     = 350 * time.Millisecond
	MaxHideDelay     = 500 * time.Millisecond
	MaxThrottle      = time.Second
	DefaultNamespace = "gitisland"

	// DefaultTheme is the bundled stylesheet.
	DefaultTheme = "default"
)

// Config is the gitisland configuration.
// Loaded from ~/.config/gitisland/gitisland.toml
type Config struct {
	Island   IslandConfig   `toml:"island"`
	HitTest  HitTestConfig  `toml:"hit_test"`
	Reveal   RevealConfig   `toml:"reveal"`
	Activity ActivityConfig `toml:"activity"`
	Labels   LabelsConfig   `toml:"labels"`
	Audio    AudioConfig    `toml:"audio"`
	Display  DisplayConfig  `toml:"display"`
}

// IslandConfig holds interaction timing and panel size.
type IslandConfig struct {
	HoverDelay   Duration `toml:"hover_delay"`                              // Rest time before hover opens
	HideDelay    Duration `toml:"hide_delay"`                               // Close-to-hide delay, 350ms-500ms
	Throttle     Duration `toml:"throttle"`                                 // Pointer move coalescing window
	OpenedWidth  int      `toml:"opened_width" validate:"gte=100,lte=2000"` // Panel width in pixels
	OpenedHeight int      `toml:"opened_height" validate:"gte=50,lte=1000"` // Panel height in pixels
	WindowHeight int      `toml:"window_height" validate:"gte=0,lte=4000"`  // Overlay height, 0 = default
}

// HitTestConfig holds the margins added around the notch and panel.
type HitTestConfig struct {
	ClosedPadX  float64 `toml:"closed_pad_x" validate:"gte=0,lte=100"`
	ClosedPadY  float64 `toml:"closed_pad_y" validate:"gte=0,lte=100"`
	OpenedSlack float64 `toml:"opened_slack" validate:"gte=0,lte=400"`
}

// RevealConfig controls the first-run loading animation.
type RevealConfig struct {
	Enabled  bool     `toml:"enabled"`
	Period   Duration `toml:"period"`   // Tick period
	Duration Duration `toml:"duration"` // Total animation length
	Fade     Duration `toml:"fade"`     // Per-cell fade-out window
}

// ActivityConfig selects where contribution data comes from.
type ActivityConfig struct {
	Username   string   `toml:"username" validate:"required,max=39"`
	Provider   string   `toml:"provider" validate:"oneof=github profile mock"`
	Token      string   `toml:"token"`     // Prefer token_env
	TokenEnv   string   `toml:"token_env"` // Environment variable holding the token
	Endpoint   string   `toml:"endpoint"`  // GraphQL endpoint override
	ProfileURL string   `toml:"profile_url"`
	Weeks      int      `toml:"weeks" validate:"gte=1,lte=53"`
	Timeout    Duration `toml:"timeout"`
}

// LabelsConfig controls the month header.
type LabelsConfig struct {
	Policy string `toml:"policy" validate:"oneof=shifted first-of-month"`
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled   bool   `toml:"enabled"`
	Volume    int    `toml:"volume" validate:"gte=0,lte=100"` // 0-100
	OpenSound string `toml:"open_sound"`                      // Empty = built-in chime
}

// DisplayConfig contains display host settings.
type DisplayConfig struct {
	Monitor   int    `toml:"monitor" validate:"gte=0"` // 0 = built-in or first, 1+ = specific monitor
	Layer     string `toml:"layer" validate:"oneof=overlay top"`
	Namespace string `toml:"namespace"`
	Theme     string `toml:"theme"` // user theme name or a bundled one

	// NotchWidth and NotchHeight declare a physical cutout in logical
	// pixels. Zero means the display has none.
	NotchWidth  int `toml:"notch_width" validate:"gte=0,lte=1000"`
	NotchHeight int `toml:"notch_height" validate:"gte=0,lte=200"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Island: IslandConfig{
			HoverDelay:   Duration(time.Second),
			HideDelay:    Duration(350 * time.Millisecond),
			Throttle:     Duration(50 * time.Millisecond),
			OpenedWidth:  400,
			OpenedHeight: 175,
			WindowHeight: 750,
		},
		HitTest: HitTestConfig{
			ClosedPadX:  10,
			ClosedPadY:  5,
			OpenedSlack: 52,
		},
		Reveal: RevealConfig{
			Enabled:  true,
			Period:   Duration(30 * time.Millisecond),
			Duration: Duration(3 * time.Second),
			Fade:     Duration(800 * time.Millisecond),
		},
		Activity: ActivityConfig{
			Username: DefaultUsername,
			Provider: DefaultProvider,
			TokenEnv: DefaultTokenEnv,
			Weeks:    DefaultWeeks,
			Timeout:  Duration(15 * time.Second),
		},
		Labels: LabelsConfig{
			Policy: "shifted",
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		Display: DisplayConfig{
			Monitor:   0,
			Layer:     DefaultLayer,
			Namespace: DefaultNamespace,
			Theme:     DefaultTheme,
		},
	}
}

// Path returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "gitisland", "gitisland.toml")
}

// Load loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Overlay file contents on the defaults
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}

	if c.Island.HoverDelay <= 0 {
		return fmt.Errorf("island.hover_delay must be positive, got %s", c.Island.HoverDelay)
	}
	if hd := c.Island.HideDelay.Duration(); hd < MinHideDelay || hd > MaxHideDelay {
		return fmt.Errorf("island.hide_delay must be between %s and %s, got %s", MinHideDelay, MaxHideDelay, hd)
	}
	if th := c.Island.Throttle.Duration(); th <= 0 || th > MaxThrottle {
		return fmt.Errorf("island.throttle must be between 1ms and %s, got %s", MaxThrottle, th)
	}

	if c.Reveal.Period <= 0 || c.Reveal.Fade <= 0 {
		return errors.New("reveal.period and reveal.fade must be positive")
	}
	if c.Reveal.Duration < c.Reveal.Period {
		return fmt.Errorf("reveal.duration (%s) must be at least one period (%s)", c.Reveal.Duration, c.Reveal.Period)
	}

	if (c.Display.NotchWidth == 0) != (c.Display.NotchHeight == 0) {
		return errors.New("display.notch_width and display.notch_height must be set together")
	}

	if c.Activity.Timeout <= 0 {
		return fmt.Errorf("activity.timeout must be positive, got %s", c.Activity.Timeout)
	}

	return nil
}

// ResolveToken returns the GitHub token, preferring the environment.
func (a ActivityConfig) ResolveToken() string {
	if a.TokenEnv != "" {
		if tok := strings.TrimSpace(os.Getenv(a.TokenEnv)); tok != "" {
			return tok
		}
	}
	return strings.TrimSpace(a.Token)
}
