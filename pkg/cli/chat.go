package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/hemlix/simkb/pkg/agent/tool"
	"github.com/hemlix/simkb/pkg/agent/tool/kb"
	"github.com/hemlix/simkb/pkg/cli/config"
	"github.com/hemlix/simkb/pkg/domain/types"
	"github.com/hemlix/simkb/pkg/repository/memory"
	"github.com/hemlix/simkb/pkg/service/loader"
	"github.com/hemlix/simkb/pkg/service/semsearch"
	"github.com/hemlix/simkb/pkg/usecase"
	"github.com/hemlix/simkb/pkg/utils/logging"
	"github.com/hemlix/simkb/pkg/utils/safe"
)

func cmdChat() *cli.Command {
	var sessionID string
	var kbDir string
	var buildIndex bool
	var repoCfg config.Repository
	var llmCfg config.LLM
	var profileCfg config.Profile

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "session",
			Usage:       "Session ID to resume (random when empty)",
			Destination: &sessionID,
		},
		&cli.StringFlag{
			Name:        "kb-dir",
			Usage:       "Knowledge base directory to ingest at startup (useful with the memory backend)",
			Sources:     cli.EnvVars("SIMKB_KB_DIR"),
			Destination: &kbDir,
		},
		&cli.BoolFlag{
			Name:        "index",
			Usage:       "Generate embeddings after loading so semantic search is available",
			Destination: &buildIndex,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, llmCfg.Flags()...)
	flags = append(flags, profileCfg.Flags()...)

	return &cli.Command{
		Name:    "chat",
		Aliases: []string{"c"},
		Usage:   "Start interactive chat",
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
			if buildIndex {
				n, err := search.IndexAll(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to index documents")
				}
				logging.Default().Info("documents indexed", "count", n)
			}

			if ok, err := search.Available(ctx); err != nil {
				return goerr.Wrap(err, "failed to check search availability")
			} else if !ok {
				color.New(color.FgYellow).Println("Semantic search not available - run `simkb index` to enable")
			}

			tools := kb.New(repo, search,
				kb.WithSearchTuning(profileCfg.Search.Limit, profileCfg.Search.MinSimilarity))
			chatUC := usecase.NewChatUseCase(repo, memory.NewSessionStore(), llm, tools,
				usecase.WithLLMTimeout(llmCfg.Timeout()))

			id := types.SessionID(sessionID)
			if id == "" {
				id = types.NewSessionID()
			}

			return runREPL(ctx, chatUC, id)
		},
	}
}

func runREPL(ctx context.Context, chatUC *usecase.ChatUseCase, sessionID types.SessionID) error {
	prompt := color.New(color.FgCyan, color.Bold)
	answer := color.New(color.FgGreen)
	progress := color.New(color.FgHiBlack)
	errOut := color.New(color.FgRed)

	// Tool progress lines appear while the model is working
	ctx = tool.WithUpdate(ctx, func(ctx context.Context, msg string) {
		progress.Printf("  %s\n", msg)
	})

	fmt.Println(usecase.HelpText)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		prompt.Print("You> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			fmt.Println("Goodbye!")
			return nil
		}

		reply, err := chatUC.Chat(ctx, sessionID, line)
		if err != nil {
			errOut.Printf("Error: %s\n", err.Error())
			continue
		}

		answer.Println(reply)
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return goerr.Wrap(err, "failed to read input")
	}
	return nil
}
