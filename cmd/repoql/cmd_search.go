package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
)

// handleSearch implements the search subcommand
func handleSearch(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	repoID := fs.String("id", "", "Repository identifier (required)")
	mode := fs.String("mode", "vector", "Search mode: vector or keyword")
	topK := fs.Int("k", 8, "Number of results")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    repoql search -id <repository> [options] <query>

DESCRIPTION:
    Search a repository's indexed chunks directly. Vector mode ranks by
    embedding distance; keyword mode uses the full-text index and works
    best for exact identifiers.

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    repoql search -id my-project "connection pooling"
    repoql search -id my-project -mode keyword ParseConfig
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatal().Err(err).Msg("failed to parse arguments")
	}
	if *repoID == "" || fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}
	query := strings.Join(fs.Args(), " ")

	store, mgr, err := openManager(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open index")
	}
	defer store.Close()

	switch *mode {
	case "vector":
		hits, err := mgr.Query(context.Background(), *repoID, query, *topK, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("search failed")
		}
		if len(hits) == 0 {
			fmt.Println("No results.")
			return
		}
		for i, hit := range hits {
			fmt.Printf("%2d. %s:%d-%d  (%s, distance %.3f)\n",
				i+1, hit.Meta.FilePath, hit.Meta.StartLine, hit.Meta.EndLine,
				hit.Meta.ChunkKind, hit.Distance)
			fmt.Println(indentSnippet(hit.Content, 4))
		}
	case "keyword":
		hits, err := mgr.SearchKeyword(*repoID, query, *topK)
		if err != nil {
			log.Fatal().Err(err).Msg("search failed")
		}
		if len(hits) == 0 {
			fmt.Println("No results.")
			return
		}
		for i, hit := range hits {
			fmt.Printf("%2d. %s:%d-%d  (%s, score %.3f)\n",
				i+1, hit.Path, hit.LineStart, hit.LineEnd, hit.Kind, hit.Score)
			fmt.Println(indentSnippet(hit.Snippet, 4))
		}
	default:
		log.Fatal().Str("mode", *mode).Msg("unknown search mode")
	}
}

// indentSnippet trims a snippet to its first lines and indents it for
// display under the result header.
func indentSnippet(content string, maxLines int) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines = append(lines, "...")
	}
	for i := range lines {
		lines[i] = "      " + lines[i]
	}
	return strings.Join(lines, "\n")
}
