package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
	"github.com/mqin/repoql/internal/embedding"
	"github.com/mqin/repoql/internal/index"
	"github.com/mqin/repoql/internal/splitter"
	"github.com/mqin/repoql/internal/vectorstore"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Environment-file credentials are optional.
	_ = godotenv.Load()

	configPath := ""
	verbose := false
	args := os.Args[1:]

	for _, arg := range args {
		if arg == "-h" || arg == "-help" || arg == "--help" {
			printUsage()
			os.Exit(0)
		}
		if arg == "-version" || arg == "--version" {
			fmt.Printf("repoql version %s\n", version)
			os.Exit(0)
		}
	}

	validSubcommands := map[string]bool{
		"index":  true,
		"ask":    true,
		"search": true,
		"stats":  true,
		"delete": true,
	}

	subcommandIndex := -1
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && validSubcommands[arg] {
			subcommandIndex = i
			break
		}
	}
	if subcommandIndex == -1 {
		fmt.Fprintf(os.Stderr, "Error: no subcommand specified\n\n")
		printUsage()
		os.Exit(1)
	}

	globalFlags := args[:subcommandIndex]
	for i := 0; i < len(globalFlags); i++ {
		switch flag := globalFlags[i]; flag {
		case "-config", "--config":
			if i+1 < len(globalFlags) {
				configPath = globalFlags[i+1]
				i++
			}
		case "-v", "--verbose":
			verbose = true
		default:
			if strings.HasPrefix(flag, "-") {
				fmt.Fprintf(os.Stderr, "Error: unknown global flag: %s\n\n", flag)
				printUsage()
				os.Exit(1)
			}
		}
	}

	log := newLogger(verbose)

	subcommand := args[subcommandIndex]
	cfg, err := loadConfig(configPath, subcommand)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	subcommandArgs := args[subcommandIndex+1:]
	switch subcommand {
	case "index":
		handleIndex(cfg, log, subcommandArgs)
	case "ask":
		handleAsk(cfg, log, subcommandArgs)
	case "search":
		handleSearch(cfg, log, subcommandArgs)
	case "stats":
		handleStats(cfg, log, subcommandArgs)
	case "delete":
		handleDelete(cfg, log, subcommandArgs)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// loadConfig loads the configuration, seeding a default template on first
// use of the index subcommand.
func loadConfig(path, subcommand string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromFile(path)
	}
	if err == nil {
		return cfg, nil
	}

	var notFound *config.NotFoundError
	if config.IsNotFound(err) && subcommand == "index" {
		notFound = err.(*config.NotFoundError)
		created, createErr := config.WriteDefaultTemplate(notFound.RequestedPath)
		if createErr != nil {
			return nil, fmt.Errorf("%v (and could not create default: %v)", err, createErr)
		}
		if created {
			fmt.Fprintf(os.Stderr, "Created default config at %s\n", notFound.RequestedPath)
			fmt.Fprintln(os.Stderr, "Update the embedding credentials and rerun `repoql index`.")
		}
		os.Exit(1)
	}
	return nil, err
}

// openManager wires the store, embedder, and splitter into an index
// manager. Callers must Close the returned store.
func openManager(cfg *config.Config, log zerolog.Logger) (*vectorstore.Store, *index.Manager, error) {
	store, err := vectorstore.Open(cfg.Store.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	embedder, err := embedding.NewService(&cfg.Embedding)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	split := splitter.New(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	return store, index.New(store, embedder, split, cfg.Store.Path, log), nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `repoql - ask questions about a code repository

USAGE:
    repoql [global options] <subcommand> [options]

GLOBAL OPTIONS:
    -config <path>    Config file (default: ~/.repoql/config/repoql.yaml)
    -v                Verbose logging
    -version          Print version
    -h                Show this help

SUBCOMMANDS:
    index     Index a repository for retrieval
    ask       Ask a question about an indexed repository
    search    Search indexed chunks (vector or keyword)
    stats     Show index statistics for a repository
    delete    Delete a repository's index

Run 'repoql <subcommand> -h' for subcommand options.
`)
}
