package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
)

// handleDelete implements the delete subcommand
func handleDelete(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	repoID := fs.String("id", "", "Repository identifier (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `USAGE:
    repoql delete -id <repository>

DESCRIPTION:
    Delete a repository's vector collection and keyword index. Deleting a
    repository that was never indexed succeeds quietly.
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

	if err := mgr.Delete(context.Background(), *repoID); err != nil {
		log.Fatal().Err(err).Msg("delete failed")
	}
	fmt.Printf("Deleted index for %q.\n", *repoID)
}
