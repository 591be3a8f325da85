package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hemlix/simkb/pkg/agent/tool/kb"
	"github.com/hemlix/simkb/pkg/cli/config"
	httpctrl "github.com/hemlix/simkb/pkg/controller/http"
	"github.com/hemlix/simkb/pkg/repository/memory"
	"github.com/hemlix/simkb/pkg/service/loader"
	"github.com/hemlix/simkb/pkg/service/semsearch"
	"github.com/hemlix/simkb/pkg/usecase"
	"github.com/hemlix/simkb/pkg/utils/logging"
	"github.com/hemlix/simkb/pkg/utils/safe"
)

func cmdServe() *cli.Command {
	var addr string
	var kbDir string
	var repoCfg config.Repository
	var llmCfg config.LLM
	var profileCfg config.Profile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SIMKB_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "kb-dir",
			Usage:       "Knowledge base directory to ingest at startup (useful with the memory backend)",
			Sources:     cli.EnvVars("SIMKB_KB_DIR"),
			Destination: &kbDir,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
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

			if kbDir != "" {
				svc := loader.New(repo, kbDir, loader.WithProducts(profileCfg.ProductCatalog()))
				if _, err := svc.LoadAll(ctx); err != nil {
					return goerr.Wrap(err, "failed to load knowledge base", goerr.V("dir", kbDir))
				}
			}

			search := semsearch.New(repo, llm, profileCfg.SearchOptions()...)
			tools := kb.New(repo, search,
				kb.WithSearchTuning(profileCfg.Search.Limit, profileCfg.Search.MinSimilarity))
			chatUC := usecase.NewChatUseCase(repo, memory.NewSessionStore(), llm, tools,
				usecase.WithLLMTimeout(llmCfg.Timeout()))

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(chatUC),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
