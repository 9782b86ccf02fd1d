package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcheck/pkg/domain/interfaces"
	githubinfra "github.com/m-mizutani/relcheck/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub API configuration
type GitHub struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKey     string
	Owner          string
	Repo           string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token (optional, raises rate limits)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("RELCHECK_GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID (alternative to token auth)",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("RELCHECK_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("RELCHECK_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("RELCHECK_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "repo-owner",
			Usage:       "Default repository owner for requests that omit repo_owner",
			Value:       "esphome",
			Destination: &c.Owner,
			Sources:     cli.EnvVars("RELCHECK_REPO_OWNER"),
		},
		&cli.StringFlag{
			Name:        "repo-name",
			Usage:       "Default repository name for requests that omit repo_name",
			Value:       "esphome",
			Destination: &c.Repo,
			Sources:     cli.EnvVars("RELCHECK_REPO_NAME"),
		},
	}
}

// Configure builds the GitHub client. App authentication wins when an App ID
// is set; otherwise token auth is used, falling back to anonymous access.
func (c *GitHub) Configure() (interfaces.GitHubClient, error) {
	if c.AppID != 0 {
		if c.InstallationID == 0 || c.PrivateKey == "" {
			return nil, goerr.New("GitHub App auth requires installation ID and private key")
		}
		return githubinfra.NewAppClient(c.AppID, c.InstallationID, []byte(c.PrivateKey))
	}
	return githubinfra.NewClient(c.Token), nil
}
