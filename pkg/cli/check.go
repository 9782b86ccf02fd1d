package cli

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relcheck/pkg/cli/config"
	"github.com/m-mizutani/relcheck/pkg/domain/model"
	"github.com/m-mizutani/relcheck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// cmdCheck is a one-shot resolution of a batch without the HTTP layer,
// useful for scripting and for debugging the resolver against real repos
func cmdCheck() *cli.Command {
	var (
		githubCfg  config.GitHub
		cacheCfg   config.Cache
		releaseTag string
	)

	flags := append(githubCfg.Flags(), cacheCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "release-tag",
			Usage:       "Release tag or moving branch to check against",
			Required:    true,
			Destination: &releaseTag,
			Sources:     cli.EnvVars("RELCHECK_RELEASE_TAG"),
		},
	)

	return &cli.Command{
		Name:      "check",
		Usage:     "Check PR numbers against a release and print the results as JSON",
		ArgsUsage: "PR_NUMBER [PR_NUMBER...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			args := c.Args().Slice()
			if len(args) == 0 {
				return goerr.New("at least one PR number is required")
			}

			prNumbers := make([]int, 0, len(args))
			for _, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return goerr.Wrap(err, "invalid PR number", goerr.V("arg", arg))
				}
				prNumbers = append(prNumbers, n)
			}

			githubClient, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			cacheStore, closeCache, err := cacheCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeCache() // Error ignored, process is exiting anyway
			}()

			statusUC := usecase.NewReleaseStatus(githubClient, cacheStore, cacheCfg.Policy())

			results, err := statusUC.CheckRelease(ctx, &model.ReleaseQuery{
				Owner:      githubCfg.Owner,
				Repo:       githubCfg.Repo,
				ReleaseTag: releaseTag,
				PRNumbers:  prNumbers,
			})
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(results)
		},
	}
}
