package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
	"github.com/mqin/repoql/internal/ingest"
)

// fileBatch is how many files are chunked and embedded per add call.
const fileBatch = 16

// handleIndex implements the index subcommand
func handleIndex(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	repoPath := fs.String("repo", ".", "Repository path to index")
	repoID := fs.String("id", "", "Repository identifier (default: repo directory name)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    repoql index [options]

DESCRIPTION:
    Index a repository for question answering.
    This will:
      1. Walk the repository and collect source files
      2. Split each file into line-addressable chunks
      3. Embed every chunk through the configured provider
      4. Persist vectors and a keyword index

OPTIONS:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
EXAMPLES:
    # Index the current directory
    repoql index

    # Index another repository under an explicit identifier
    repoql index -repo /path/to/project -id my-project
`)
	}

	if err := fs.Parse(args); err != nil {
		log.Fatal().Err(err).Msg("failed to parse arguments")
	}

	absPath, err := filepath.Abs(*repoPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve repository path")
	}
	id := *repoID
	if id == "" {
		id = filepath.Base(absPath)
	}

	fmt.Printf("Indexing %s as %q\n\n", absPath, id)
	startTime := time.Now()

	files, err := ingest.Collect(absPath, &cfg.Ingest, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to collect files")
	}
	if len(files) == 0 {
		log.Fatal().Str("path", absPath).Msg("no ingestible files found")
	}

	store, mgr, err := openManager(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open index")
	}
	defer store.Close()

	ctx := context.Background()
	col, err := mgr.Create(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create collection")
	}

	bar := newProgressBar(len(files), progressEnabled())
	chunkCount := 0
	for start := 0; start < len(files); start += fileBatch {
		end := start + fileBatch
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]
		ids, err := mgr.Add(ctx, col, batch)
		if err != nil {
			finishBar(bar)
			log.Fatal().Err(err).Msg("indexing failed")
		}
		chunkCount += len(ids)
		incrementBar(bar, len(batch))
	}
	finishBar(bar)

	fmt.Println()
	fmt.Println("Indexing completed.")
	fmt.Printf("\nDuration: %v\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Println("\nStatistics:")
	fmt.Printf("   Files:  %6d\n", len(files))
	fmt.Printf("   Chunks: %6d\n", chunkCount)
	fmt.Printf("\nAsk away: repoql ask -id %s \"how does this work?\"\n", id)
}
