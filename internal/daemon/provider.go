package daemon

import (
	"log/slog"
	"net/http"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/config"
)

// NewProvider builds the activity provider named by cfg.Provider and
// returns it with the name actually used. The GitHub API needs a token;
// without one the recorded mock data is served instead.
func NewProvider(cfg config.ActivityConfig, logger *slog.Logger) (activity.Provider, string) {
	if logger == nil {
		logger = slog.Default()
	}
	client := &http.Client{Timeout: cfg.Timeout.Duration()}

	switch cfg.Provider {
	case "profile":
		return activity.NewProfile(cfg.ProfileURL, cfg.Weeks, client, logger), "profile"
	case "mock":
		return activity.NewMock(), "mock"
	}

	token := cfg.ResolveToken()
	if token == "" {
		logger.Warn("no GitHub token configured, using mock activity data", "token_env", cfg.TokenEnv)
		return activity.NewMock(), "mock"
	}
	return activity.NewGitHub(activity.GitHubConfig{
		Endpoint: cfg.Endpoint,
		Token:    token,
		Weeks:    cfg.Weeks,
		Client:   client,
	}, logger), "github"
}
