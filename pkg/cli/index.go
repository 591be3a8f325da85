package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hemlix/simkb/pkg/cli/config"
	"github.com/hemlix/simkb/pkg/domain/interfaces"
	"github.com/hemlix/simkb/pkg/service/semsearch"
	"github.com/hemlix/simkb/pkg/utils/logging"
	"github.com/hemlix/simkb/pkg/utils/safe"
)

func cmdIndex() *cli.Command {
	var documentTitle string
	var repoCfg config.Repository
	var llmCfg config.LLM
	var profileCfg config.Profile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "document",
			Usage:       "Index only the document whose title contains this text",
			Destination: &documentTitle,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:  "index",
		Usage: "Generate embeddings for semantic search",
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

			llm, err := llmCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM client")
			}

			search := semsearch.New(repo, llm, profileCfg.SearchOptions()...)

			if documentTitle != "" {
				doc, err := repo.Document().FindOne(ctx, interfaces.DocumentQuery{TitleContains: documentTitle})
				if err != nil {
					return goerr.Wrap(err, "failed to find document", goerr.V("title", documentTitle))
				}
				if doc == nil {
					return goerr.New("no document matches title", goerr.V("title", documentTitle))
				}

				if err := search.IndexDocument(ctx, doc.ID); err != nil {
					return goerr.Wrap(err, "failed to index document", goerr.V("id", doc.ID))
				}
				logging.Default().Info("Document indexed", "title", doc.Title)
				return nil
			}

			n, err := search.IndexAll(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to index documents")
			}
			logging.Default().Info("Indexing completed", "documents", n)
			return nil
		},
	}
}
