package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/daemon"
)

var fetchOpts struct {
	username string
	provider string
	format   string
	labels   string
	table    bool
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [username]",
	Short: "Fetch a contribution graph and print it",
	Long: `Fetch a contribution graph the way the island does when it opens and
print it. Useful for checking tokens and provider settings.`,
	Example: `  gitisland fetch
  gitisland fetch torvalds --provider profile
  gitisland fetch --format json | jq .total`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOpts.format, "format", "f", formatText,
		"Output format (text, json, yaml)")
	fetchCmd.Flags().StringVar(&fetchOpts.provider, "provider", "",
		"Override the configured provider (github, profile, mock)")
	fetchCmd.Flags().StringVar(&fetchOpts.labels, "labels", "",
		"Month label placement (shifted, first-of-month)")
	fetchCmd.Flags().BoolVar(&fetchOpts.table, "table", false,
		"Print per-week counts as a table (text format only)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if err := checkFormat(fetchOpts.format, formatText, formatJSON, formatYAML); err != nil {
		return err
	}

	activityCfg := cfg.Activity
	if len(args) == 1 {
		activityCfg.Username = args[0]
	}
	if fetchOpts.provider != "" {
		activityCfg.Provider = fetchOpts.provider
	}

	policyName := cfg.Labels.Policy
	if fetchOpts.labels != "" {
		policyName = fetchOpts.labels
	}
	policy, err := activity.ParseLabelPolicy(policyName)
	if err != nil {
		return err
	}

	provider, name := daemon.NewProvider(activityCfg, logger)
	logger.Debug("fetching activity", "provider", name, "username", activityCfg.Username)

	timeout := activityCfg.Timeout.Duration()
	if timeout <= 0 {
		timeout = daemon.DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	grid, err := provider.Fetch(ctx, activityCfg.Username)
	if err != nil {
		return err
	}
	if err := grid.Validate(); err != nil {
		return fmt.Errorf("provider %s returned an invalid grid: %w", name, err)
	}

	out := cmd.OutOrStdout()
	if fetchOpts.format != formatText {
		return writeStructured(out, fetchOpts.format, grid)
	}
	return writeGridText(out, grid, activity.MonthLabels(grid, policy), fetchOpts.table, time.Now())
}

// levelGlyphs draws levels 0-4 in plain text.
var levelGlyphs = [activity.MaxLevel + 1]string{"·", "░", "▒", "▓", "█"}

// levelGrid renders the grid one character per day, weeks left to right.
func levelGrid(g *activity.Grid, labels []activity.MonthLabel) string {
	header := []rune(strings.Repeat(" ", len(g.Weeks)))
	end := 0
	for _, l := range labels {
		name := []rune(l.Name)
		if l.Week < end || l.Week+len(name) > len(header) {
			continue
		}
		copy(header[l.Week:], name)
		end = l.Week + len(name) + 1
	}

	lines := []string{strings.TrimRight(string(header), " ")}
	for d := 0; d < activity.DaysPerWeek; d++ {
		var b strings.Builder
		for _, week := range g.Weeks {
			if d >= len(week.Days) {
				b.WriteByte(' ')
				continue
			}
			level := min(max(week.Days[d].Level, 0), activity.MaxLevel)
			b.WriteString(levelGlyphs[level])
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}

// weekTable lists per-day counts for every week.
func weekTable(g *activity.Grid) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("week", "sun", "mon", "tue", "wed", "thu", "fri", "sat", "total")

	for _, week := range g.Weeks {
		if len(week.Days) == 0 {
			continue
		}
		row := make([]string, 0, 9)
		row = append(row, week.Days[0].Date.Format(activity.DateLayout))
		cells := make([]string, activity.DaysPerWeek)
		total := 0
		// partial weeks are aligned on the weekday of each date
		for _, day := range week.Days {
			cells[day.Date.Weekday()] = strconv.Itoa(day.Count)
			total += day.Count
		}
		row = append(row, cells...)
		row = append(row, strconv.Itoa(total))
		t.Row(row...)
	}
	return t.String()
}

func writeGridText(w io.Writer, g *activity.Grid, labels []activity.MonthLabel, withTable bool, now time.Time) error {
	fmt.Fprintf(w, "%s: %s\n\n", g.Username, activity.Summary(g))
	fmt.Fprintln(w, levelGrid(g, labels))
	if withTable {
		fmt.Fprintln(w)
		fmt.Fprintln(w, weekTable(g))
	}
	_, err := fmt.Fprintf(w, "\nfetched %s (%s)\n", activity.FetchedAgo(g, now), g.FetchedAt.Format(time.RFC3339))
	return err
}
