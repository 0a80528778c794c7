package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/dbus"
	"github.com/jmylchreest/gitisland/internal/geometry"
)

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("JSON", formatText, formatJSON))
	err := checkFormat("xml", formatText, formatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text, json")
}

func TestWriteStructured(t *testing.T) {
	s := dbus.Status{Status: "opened", Username: "octocat", Total: 12}

	var buf bytes.Buffer
	require.NoError(t, writeStructured(&buf, formatJSON, s))
	var decoded dbus.Status
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, s, decoded)

	buf.Reset()
	require.NoError(t, writeStructured(&buf, formatYAML, s))
	assert.Contains(t, buf.String(), "status: opened\n")

	assert.Error(t, writeStructured(&buf, "toml", s))
}

func TestStatusText(t *testing.T) {
	text := statusText(dbus.Status{
		Status:    "opened",
		Visible:   true,
		SessionID: "01J0000000000000000000000",
		Session:   "loaded",
		Phase:     "running",
		Username:  "octocat",
		Total:     1234,
	})
	assert.Contains(t, text, "status:   opened\n")
	assert.Contains(t, text, "session:  loaded (01J0000000000000000000000)\n")
	assert.Contains(t, text, "total:    1,234\n")
	assert.NotContains(t, text, "error:")
}

func TestWaybarStatus(t *testing.T) {
	ws := waybarStatus(dbus.Status{Status: "closed", Username: "octocat"})
	assert.Equal(t, "closed", ws.Class)
	assert.Empty(t, ws.Text)

	ws = waybarStatus(dbus.Status{Status: "opened", Username: "octocat", Total: 1500})
	assert.Equal(t, "1,500", ws.Text)
	assert.Equal(t, "octocat: 1,500 contributions", ws.Tooltip)

	ws = waybarStatus(dbus.Status{Status: "opened", Username: "octocat", Error: "timeout"})
	assert.Equal(t, "error", ws.Class)
	assert.Equal(t, "octocat: timeout", ws.Tooltip)
}

func TestParseNotch(t *testing.T) {
	size, err := parseNotch("200x37")
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{W: 200, H: 37}, size)

	size, err = parseNotch("none")
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{}, size)

	for _, bad := range []string{"200", "0x37", "ax37", "200x-1"} {
		_, err := parseNotch(bad)
		assert.Error(t, err, bad)
	}
}

func TestWriteGridText(t *testing.T) {
	fetched := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	g := activity.MockGrid("octocat", fetched)
	labels := activity.MonthLabels(g, activity.LabelPolicyShifted)

	grid := levelGrid(g, labels)
	lines := strings.Split(grid, "\n")
	require.Len(t, lines, activity.DaysPerWeek+1)
	for _, line := range lines[1:] {
		assert.LessOrEqual(t, len([]rune(line)), len(g.Weeks))
	}

	var buf bytes.Buffer
	require.NoError(t, writeGridText(&buf, g, labels, true, fetched.Add(2*time.Hour)))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "octocat: "+activity.Summary(g)+"\n"))
	assert.Contains(t, out, "sun")
	assert.Contains(t, out, "2 hours ago")
}
