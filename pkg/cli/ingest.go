package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hemlix/simkb/pkg/cli/config"
	"github.com/hemlix/simkb/pkg/service/loader"
	"github.com/hemlix/simkb/pkg/utils/logging"
	"github.com/hemlix/simkb/pkg/utils/safe"
)

func cmdIngest() *cli.Command {
	var kbDir string
	var year int
	var repoCfg config.Repository
	var profileCfg config.Profile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "kb-dir",
			Usage:       "Knowledge base directory to import",
			Required:    true,
			Sources:     cli.EnvVars("SIMKB_KB_DIR"),
			Destination: &kbDir,
		},
		&cli.IntFlag{
			Name:        "year",
			Usage:       "Knowledge base year to import",
			Value:       loader.DefaultYear,
			Sources:     cli.EnvVars("SIMKB_KB_YEAR"),
			Destination: &year,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Import a knowledge base directory into the repository",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := profileCfg.Configure(); err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			svc := loader.New(repo, kbDir,
				loader.WithYear(year),
				loader.WithProducts(profileCfg.ProductCatalog()),
			)
			stats, err := svc.LoadAll(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load knowledge base", goerr.V("dir", kbDir))
			}

			logging.Default().Info("Ingest completed",
				"organizations", stats.Organizations,
				"products", stats.Products,
				"roles", stats.Roles,
				"documents", stats.Documents,
			)
			return nil
		},
	}
}
