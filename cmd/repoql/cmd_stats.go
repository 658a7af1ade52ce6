package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
	"github.com/mqin/repoql/internal/textindex"
	"github.com/mqin/repoql/internal/vectorstore"
)

// handleStats implements the stats subcommand
func handleStats(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	repoID := fs.String("id", "", "Repository identifier (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    repoql stats -id <repository>

DESCRIPTION:
    Show index statistics for one repository.
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		log.Fatal().Err(err).Msg("failed to parse arguments")
	}
	if *repoID == "" {
		fs.Usage()
		os.Exit(1)
	}

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
		fmt.Printf("Repository %q is not indexed.\n", *repoID)
		return
	}

	chunkCount, err := mgr.Count(ctx, *repoID)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to count chunks")
	}

	var keywordDocs uint64
	textDir := textindex.Dir(cfg.Store.Path, vectorstore.CollectionName(*repoID))
	if textIdx, err := textindex.Open(textDir); err == nil {
		keywordDocs, _ = textIdx.DocCount()
		_ = textIdx.Close()
	}

	fmt.Printf("Repository:    %s\n", *repoID)
	fmt.Printf("Collection:    %s\n", vectorstore.CollectionName(*repoID))
	fmt.Printf("Chunks:        %d\n", chunkCount)
	fmt.Printf("Keyword docs:  %d\n", keywordDocs)
	fmt.Printf("Store path:    %s\n", cfg.Store.Path)
}
