package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/gitisland/internal/dbus"
)

var statusOpts struct {
	format string
	watch  bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running island",
	Long: `Show the state of the running island.

With --watch the status is printed again after every open or close. The
waybar format suits a Waybar custom module:

  "custom/gitisland": {
    "exec": "gitisland status --watch --format waybar",
    "return-type": "json",
    "on-click": "gitisland toggle"
  }`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", formatText,
		"Output format (text, json, yaml, waybar)")
	statusCmd.Flags().BoolVarP(&statusOpts.watch, "watch", "w", false,
		"Print the status again after every change")
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := checkFormat(statusOpts.format, formatText, formatJSON, formatYAML, formatWaybar); err != nil {
		return err
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	out := cmd.OutOrStdout()

	show := func() error {
		s, err := client.Status(ctx)
		if err != nil {
			return err
		}
		return writeStatus(out, statusOpts.format, s)
	}

	if err := show(); err != nil {
		return err
	}
	if !statusOpts.watch {
		return nil
	}

	return client.Watch(ctx, func(change dbus.StatusChange) {
		logger.Debug("status changed", "old", change.Old, "new", change.New, "reason", change.Reason)
		if err := show(); err != nil {
			logger.Warn("failed to query status", "error", err)
		}
	})
}

func writeStatus(w io.Writer, format string, s dbus.Status) error {
	switch strings.ToLower(format) {
	case formatWaybar:
		return json.NewEncoder(w).Encode(waybarStatus(s))
	case formatJSON, formatYAML:
		return writeStructured(w, format, s)
	default:
		_, err := io.WriteString(w, statusText(s))
		return err
	}
}

func statusText(s dbus.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "status:   %s\n", s.Status)
	fmt.Fprintf(&b, "visible:  %t\n", s.Visible)
	fmt.Fprintf(&b, "hovering: %t\n", s.Hovering)
	fmt.Fprintf(&b, "user:     %s\n", s.Username)
	fmt.Fprintf(&b, "session:  %s", s.Session)
	if s.SessionID != "" {
		fmt.Fprintf(&b, " (%s)", s.SessionID)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "reveal:   %s\n", s.Phase)
	if s.Total > 0 {
		fmt.Fprintf(&b, "total:    %s\n", humanize.Comma(int64(s.Total)))
	}
	if s.Error != "" {
		fmt.Fprintf(&b, "error:    %s\n", s.Error)
	}
	return b.String()
}

// waybarStatus maps a status to a Waybar module: the class follows the
// island status, and a failed fetch wins over everything else.
func waybarStatus(s dbus.Status) WaybarStatus {
	ws := WaybarStatus{
		Alt:     s.Status,
		Class:   s.Status,
		Tooltip: s.Username + ": " + s.Status,
	}
	if s.Total > 0 {
		ws.Text = humanize.Comma(int64(s.Total))
		ws.Tooltip = fmt.Sprintf("%s: %s contributions", s.Username, ws.Text)
	}
	if s.Error != "" {
		ws.Alt, ws.Class = "error", "error"
		ws.Tooltip = s.Username + ": " + s.Error
	}
	return ws
}
