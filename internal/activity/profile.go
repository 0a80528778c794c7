package activity

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// DefaultProfileURL serves the public contribution calendar fragment. %s is
// replaced by the username.
const DefaultProfileURL = "https://github.com/users/%s/contributions"

// countPerLevel approximates a day's count from its level; the public page
// only exposes levels.
const countPerLevel = 3

const profileUserAgent = "Mozilla/5.0 (X11; Linux x86_64) gitisland"

var (
	dateThenLevel = regexp.MustCompile(`(?s)data-date="([^"]+)"[^>]*?data-level="([^"]+)"`)
	levelThenDate = regexp.MustCompile(`(?s)data-level="([^"]+)"[^>]*?data-date="([^"]+)"`)
)

// Profile reads contribution levels from the public profile page. It
// needs no token, but counts are approximate.
type Profile struct {
	urlFormat string
	weeks     int
	client    *http.Client
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfile creates a profile-page provider. urlFormat defaults to
// DefaultProfileURL.
func NewProfile(urlFormat string, weeks int, client *http.Client, logger *slog.Logger) *Profile {
	if urlFormat == "" {
		urlFormat = DefaultProfileURL
	}
	if weeks <= 0 {
		weeks = DefaultWeeks
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Profile{urlFormat: urlFormat, weeks: weeks, client: client, logger: logger, now: time.Now}
}

// Fetch implements Provider.
func (p *Profile) Fetch(ctx context.Context, identity string) (*Grid, error) {
	fail := func(op string, err error) error {
		return &FetchError{Identity: identity, Op: op, Cause: err}
	}

	url := fmt.Sprintf(p.urlFormat, identity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail("build request", err)
	}
	req.Header.Set("User-Agent", profileUserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fail("request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fail("request", ErrUserNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail("request", fmt.Errorf("unexpected status %s", resp.Status))
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fail("read page", err)
	}

	days, err := ParseProfilePage(string(page))
	if err != nil {
		return nil, fail("parse page", err)
	}

	if limit := p.weeks * DaysPerWeek; len(days) > limit {
		days = days[len(days)-limit:]
	}

	grid := &Grid{
		Username:  identity,
		Weeks:     groupWeeks(days),
		FetchedAt: p.now(),
	}
	for _, d := range days {
		grid.Total += d.Count
	}
	p.logger.Debug("parsed profile calendar", "user", identity, "days", len(days), "weeks", len(grid.Weeks))
	return grid, nil
}

// ParseProfilePage extracts days from the calendar markup, sorted by date.
// The calendar table is laid out weekday-major, so document order is not
// date order.
func ParseProfilePage(page string) ([]Day, error) {
	type pair struct{ date, level string }

	var pairs []pair
	for _, m := range dateThenLevel.FindAllStringSubmatch(page, -1) {
		pairs = append(pairs, pair{date: m[1], level: m[2]})
	}
	if len(pairs) == 0 {
		for _, m := range levelThenDate.FindAllStringSubmatch(page, -1) {
			pairs = append(pairs, pair{date: m[2], level: m[1]})
		}
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("no contribution cells found (%d data-date attributes)",
			strings.Count(page, `data-date="`))
	}

	days := make([]Day, 0, len(pairs))
	for _, pr := range pairs {
		date, err := time.Parse(DateLayout, pr.date)
		if err != nil {
			return nil, fmt.Errorf("cell date %q: %w", pr.date, err)
		}
		level, err := strconv.Atoi(pr.level)
		if err != nil {
			return nil, fmt.Errorf("cell level %q: %w", pr.level, err)
		}
		level = min(max(level, 0), MaxLevel)
		days = append(days, Day{Date: date, Level: level, Count: level * countPerLevel})
	}

	slices.SortFunc(days, func(a, b Day) int { return a.Date.Compare(b.Date) })
	return slices.CompactFunc(days, func(a, b Day) bool { return a.Date.Equal(b.Date) }), nil
}

// groupWeeks splits date-ordered days into Sunday-started weeks.
func groupWeeks(days []Day) []Week {
	var weeks []Week
	var current []Day
	for _, d := range days {
		if d.Date.Weekday() == time.Sunday && len(current) > 0 {
			weeks = append(weeks, Week{Days: current})
			current = nil
		}
		current = append(current, d)
	}
	if len(current) > 0 {
		weeks = append(weeks, Week{Days: current})
	}
	return weeks
}
