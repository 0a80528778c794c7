package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultGraphQLEndpoint is the public GitHub GraphQL API.
const DefaultGraphQLEndpoint = "https://api.github.com/graphql"

const contributionsQuery = `query($userName:String!) {
  user(login: $userName){
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            contributionLevel
          }
        }
      }
    }
  }
}`

// GitHubConfig configures a GitHub provider.
type GitHubConfig struct {
	Endpoint string
	Token    string
	Weeks    int
	Client   *http.Client
}

// GitHub fetches the contribution calendar through the GraphQL API.
type GitHub struct {
	endpoint string
	token    string
	weeks    int
	client   *http.Client
	logger   *slog.Logger
	now      func() time.Time
}

// NewGitHub creates a GitHub provider. A token is required by the API.
func NewGitHub(cfg GitHubConfig, logger *slog.Logger) *GitHub {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultGraphQLEndpoint
	}
	if cfg.Weeks <= 0 {
		cfg.Weeks = DefaultWeeks
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 15 * time.Second}
	}
	return &GitHub{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		weeks:    cfg.Weeks,
		client:   cfg.Client,
		logger:   logger,
		now:      time.Now,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []struct {
							ContributionCount int    `json:"contributionCount"`
							Date              string `json:"date"`
							ContributionLevel string `json:"contributionLevel"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Fetch implements Provider.
func (p *GitHub) Fetch(ctx context.Context, identity string) (*Grid, error) {
	fail := func(op string, err error) error {
		return &FetchError{Identity: identity, Op: op, Cause: err}
	}

	if p.token == "" {
		return nil, fail("authenticate", errors.New("no GitHub token configured"))
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     contributionsQuery,
		Variables: map[string]any{"userName": identity},
	})
	if err != nil {
		return nil, fail("encode query", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fail("build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	p.logger.Debug("fetching contributions", "user", identity, "endpoint", p.endpoint)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fail("request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fail("request", fmt.Errorf("unexpected status %s", resp.Status))
	}

	var decoded graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fail("decode response", err)
	}
	if len(decoded.Errors) > 0 {
		msgs := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fail("query", errors.New(strings.Join(msgs, "; ")))
	}
	if decoded.Data.User == nil {
		return nil, fail("query", ErrUserNotFound)
	}

	calendar := decoded.Data.User.ContributionsCollection.ContributionCalendar
	weeks := make([]Week, 0, len(calendar.Weeks))
	for _, w := range calendar.Weeks {
		days := make([]Day, 0, len(w.ContributionDays))
		for _, d := range w.ContributionDays {
			date, err := time.Parse(DateLayout, d.Date)
			if err != nil {
				p.logger.Debug("skipping day with bad date", "date", d.Date, "error", err)
				continue
			}
			days = append(days, Day{
				Date:  date,
				Count: max(d.ContributionCount, 0),
				Level: parseLevel(d.ContributionLevel),
			})
		}
		if len(days) > 0 {
			weeks = append(weeks, Week{Days: days})
		}
	}

	return &Grid{
		Username:  identity,
		Total:     calendar.TotalContributions,
		Weeks:     trimWeeks(weeks, p.weeks),
		FetchedAt: p.now(),
	}, nil
}

// parseLevel maps a GraphQL ContributionLevel to 0..4.
func parseLevel(s string) int {
	switch s {
	case "FIRST_QUARTILE":
		return 1
	case "SECOND_QUARTILE":
		return 2
	case "THIRD_QUARTILE":
		return 3
	case "FOURTH_QUARTILE":
		return 4
	default:
		return 0
	}
}
