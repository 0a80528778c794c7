package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/geometry"
	"github.com/jmylchreest/gitisland/internal/tui"
)

var previewOpts struct {
	width   float64
	height  float64
	notch   string
	mock    bool
	logFile string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the island in the terminal",
	Long: `Run the island against a simulated display inside the terminal. The
terminal stands in for the top of the screen: move the mouse over the
notch to open the panel, click outside it to close.

Logs go to a file so they do not tear the screen.`,
	Example: `  gitisland preview
  gitisland preview --notch none
  gitisland preview --mock --width 1728 --height 1117 --notch 200x38`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().Float64Var(&previewOpts.width, "width", 1512,
		"Simulated display width in points")
	previewCmd.Flags().Float64Var(&previewOpts.height, "height", 982,
		"Simulated display height in points")
	previewCmd.Flags().StringVar(&previewOpts.notch, "notch", "200x37",
		`Simulated notch size as WxH, or "none"`)
	previewCmd.Flags().BoolVar(&previewOpts.mock, "mock", false,
		"Use recorded activity instead of fetching")
	previewCmd.Flags().StringVar(&previewOpts.logFile, "log-file", "",
		"Log file (default: ~/.cache/gitisland/preview.log)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	notch, err := parseNotch(previewOpts.notch)
	if err != nil {
		return err
	}

	logPath := previewOpts.logFile
	if logPath == "" {
		logPath = defaultPreviewLog()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	setupLogger(f, slog.LevelInfo)

	opts := tui.Options{
		Config:     cfg,
		ConfigPath: configPath(),
		Screen:     geometry.Size{W: previewOpts.width, H: previewOpts.height},
		Notch:      notch,
		Logger:     logger,
	}
	if previewOpts.mock {
		opts.Provider = activity.NewMock()
	}

	logger.Info("starting preview", "screen", opts.Screen, "notch", notch, "mock", previewOpts.mock)
	return tui.Run(opts)
}

// parseNotch reads "WxH" or "none".
func parseNotch(s string) (geometry.Size, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "none" {
		return geometry.Size{}, nil
	}
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return geometry.Size{}, fmt.Errorf("invalid notch %q: want WxH or none", s)
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil || width <= 0 {
		return geometry.Size{}, fmt.Errorf("invalid notch width %q", w)
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil || height <= 0 {
		return geometry.Size{}, fmt.Errorf("invalid notch height %q", h)
	}
	return geometry.Size{W: width, H: height}, nil
}

func defaultPreviewLog() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gitisland", "preview.log")
}
