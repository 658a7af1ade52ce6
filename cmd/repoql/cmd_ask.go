package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
	"github.com/mqin/repoql/internal/retrieval"
	"github.com/mqin/repoql/pkg/models"
)

// handleAsk implements the ask subcommand
func handleAsk(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	repoID := fs.String("id", "", "Repository identifier (required)")
	repoName := fs.String("name", "", "Repository display name")
	repoDesc := fs.String("desc", "", "Repository description")
	repoLang := fs.String("lang", "", "Repository main language")
	contextOnly := fs.Bool("context-only", false, "Print the assembled context without generating an answer")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    repoql ask -id <repository> [options] <question>

DESCRIPTION:
    Retrieve the most relevant chunks for a question and generate an
    answer. With -context-only the retrieved context is printed instead,
    which needs no chat credentials.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    repoql ask -id my-project "how is configuration loaded?"
    repoql ask -id my-project -context-only "where is the main loop?"
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatal().Err(err).Msg("failed to parse arguments")
	}
	if *repoID == "" || fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	question := strings.Join(fs.Args(), " ")

	store, mgr, err := openManager(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open index")
	}
	defer store.Close()

	ctx := context.Background()
	exists, err := mgr.Exists(ctx, *repoID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to check repository")
	}
	if !exists {
		log.Fatal().Str("repository", *repoID).Msg("repository is not indexed; run `repoql index` first")
	}

	retriever := retrieval.New(mgr, &cfg.Retrieval)
	result, err := retriever.AnswerContext(ctx, *repoID, question)
	if err != nil {
		log.Fatal().Err(err).Msg("retrieval failed")
	}

	if *contextOnly {
		fmt.Println(result.Context)
		printSources(result)
		return
	}

	apiKey := cfg.Embedding.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	answerer, err := retrieval.NewAnswerer(apiKey, cfg.Retrieval.ChatModel)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot generate answers (use -context-only to inspect retrieval)")
	}

	info := &models.RepositoryInfo{Name: *repoName, Description: *repoDesc, Language: *repoLang}
	if info.Name == "" {
		info.Name = *repoID
	}

	answer, err := answerer.Answer(ctx, question, result.Context, nil, info)
	if err != nil {
		log.Fatal().Err(err).Msg("answer generation failed")
	}

	fmt.Println(answer)
	printSources(result)
}

func printSources(result *retrieval.Result) {
	if len(result.UsedSources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, src := range result.UsedSources {
		fmt.Printf("   %-40s %-18s relevance %.2f\n", src.Path, src.ChunkKind, src.Relevance)
	}
	if len(result.AllSourcePaths) > len(result.UsedSources) {
		fmt.Printf("   (%d files retrieved in total)\n", len(result.AllSourcePaths))
	}
}
