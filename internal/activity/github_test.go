package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calendarResponse(weeks int) string {
	var b strings.Builder
	b.WriteString(`{"data":{"user":{"contributionsCollection":{"contributionCalendar":{"totalContributions":42,"weeks":[`)
	start := date("2025-01-05")
	for w := range weeks {
		if w > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"contributionDays":[`)
		for d := range DaysPerWeek {
			if d > 0 {
				b.WriteString(",")
			}
			day := start.AddDate(0, 0, w*7+d)
			fmt.Fprintf(&b, `{"contributionCount":%d,"date":%q,"contributionLevel":"FIRST_QUARTILE"}`, d, day.Format(DateLayout))
		}
		b.WriteString(`]}`)
	}
	b.WriteString(`]}}}}}`)
	return b.String()
}

func TestGitHub_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "octocat", req.Variables["userName"])
		assert.Contains(t, req.Query, "contributionCalendar")

		_, _ = w.Write([]byte(calendarResponse(53)))
	}))
	defer srv.Close()

	p := NewGitHub(GitHubConfig{Endpoint: srv.URL, Token: "s3cret"}, nil)
	g, err := p.Fetch(context.Background(), "octocat")
	require.NoError(t, err)

	assert.Equal(t, "octocat", g.Username)
	assert.Equal(t, 42, g.Total)
	require.Len(t, g.Weeks, DefaultWeeks, "only the trailing weeks are kept")
	require.NoError(t, g.Validate())

	last := g.Weeks[len(g.Weeks)-1].Days[6]
	assert.Equal(t, date("2025-01-05").AddDate(0, 0, 53*7-1), last.Date)
	assert.Equal(t, 6, last.Count)
	assert.Equal(t, 1, last.Level)
	assert.False(t, g.FetchedAt.IsZero())
}

func TestGitHub_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		token   string
		wantOp  string
		wantMsg string
	}{
		{"no token", 0, "", "", "authenticate", "no GitHub token"},
		{"bad status", http.StatusUnauthorized, `{}`, "t", "request", "401"},
		{"bad json", http.StatusOK, `{`, "t", "decode response", ""},
		{"graphql errors", http.StatusOK, `{"errors":[{"message":"rate limited"}]}`, "t", "query", "rate limited"},
		{"unknown user", http.StatusOK, `{"data":{"user":null}}`, "t", "query", "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewGitHub(GitHubConfig{Endpoint: srv.URL, Token: tt.token}, nil)
			_, err := p.Fetch(context.Background(), "octocat")

			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.wantOp, fe.Op)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, 0, parseLevel("NONE"))
	assert.Equal(t, 1, parseLevel("FIRST_QUARTILE"))
	assert.Equal(t, 2, parseLevel("SECOND_QUARTILE"))
	assert.Equal(t, 3, parseLevel("THIRD_QUARTILE"))
	assert.Equal(t, 4, parseLevel("FOURTH_QUARTILE"))
	assert.Equal(t, 0, parseLevel("bogus"))
}
