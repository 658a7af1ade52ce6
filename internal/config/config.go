package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking,omitempty"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Retrieval RetrievalConfig `yaml:"retrieval,omitempty"`
	Ingest    IngestConfig    `yaml:"ingest,omitempty"`
}

// ChunkingConfig holds the splitter parameters
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size,omitempty"`    // Sliding-window budget in characters
	ChunkOverlap int `yaml:"chunk_overlap,omitempty"` // Overlap budget in characters
}

// EmbeddingConfig holds embedding service configuration
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "openai" | "volcengine"

	// OpenAI specific
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty"`
	OpenAIModel  string `yaml:"openai_model,omitempty"`

	// VolcEngine specific
	APIKey   string `yaml:"api_key,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`

	// Pipeline parameters
	Dimensions int `yaml:"dimensions"`           // Vector dimension of the model
	BatchSize  int `yaml:"batch_size,omitempty"` // Texts per provider call
	Workers    int `yaml:"workers,omitempty"`    // Concurrent embedding workers
}

// StoreConfig holds collection storage configuration
type StoreConfig struct {
	// Path to the directory holding the vector and keyword indexes.
	// If empty, uses ~/.repoql/data
	Path string `yaml:"path,omitempty"`
}

// RetrievalConfig holds retrieval and context assembly configuration
type RetrievalConfig struct {
	TopK             int    `yaml:"top_k,omitempty"`              // Results fetched per question
	MaxContextTokens int    `yaml:"max_context_tokens,omitempty"` // Context budget (estimated tokens)
	HistoryTurns     int    `yaml:"history_turns,omitempty"`      // Prior turns forwarded to answer generation
	ChatModel        string `yaml:"chat_model,omitempty"`         // Model used for answer generation
}

// IngestConfig holds repository ingestion configuration
type IngestConfig struct {
	MaxFileSize int64    `yaml:"max_file_size,omitempty"` // Bytes; larger files are skipped
	Exclude     []string `yaml:"exclude,omitempty"`       // doublestar glob patterns
}

// Load loads configuration from the default config file
// Default location: ~/.repoql/config/repoql.yaml
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".repoql", "config", "repoql.yaml")
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".repoql", "config", "repoql.yaml")
			return nil, &NotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied and no
// provider credentials. Useful for tests and embedded use.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// NotFoundError is returned when the config file is not found
type NotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag",
		e.RequestedPath, e.DefaultPath)
}

// IsNotFound checks if error is config not found
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// expandPath expands ~ and $HOME to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "$HOME/") || path == "$HOME" {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			var err error
			homeDir, err = os.UserHomeDir()
			if err != nil {
				return path
			}
		}
		if path == "$HOME" {
			return homeDir
		}
		return filepath.Join(homeDir, path[6:])
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Chunking.ChunkSize == 0 {
		c.Chunking.ChunkSize = 1000
	}
	if c.Chunking.ChunkOverlap == 0 {
		c.Chunking.ChunkOverlap = 200
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.OpenAIModel == "" {
		c.Embedding.OpenAIModel = "text-embedding-3-small"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "doubao-embedding-text-240715"
	}
	if c.Embedding.Endpoint == "" {
		c.Embedding.Endpoint = "https://ark.cn-beijing.volces.com/api/v3/embeddings"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 32
	}
	if c.Embedding.Workers == 0 {
		c.Embedding.Workers = 4
	}

	if c.Store.Path == "" {
		if homeDir, err := os.UserHomeDir(); err == nil {
			c.Store.Path = filepath.Join(homeDir, ".repoql", "data")
		}
	} else {
		c.Store.Path = expandPath(c.Store.Path)
	}

	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = 8
	}
	if c.Retrieval.MaxContextTokens == 0 {
		c.Retrieval.MaxContextTokens = 3000
	}
	if c.Retrieval.HistoryTurns == 0 {
		c.Retrieval.HistoryTurns = 10
	}
	if c.Retrieval.ChatModel == "" {
		c.Retrieval.ChatModel = "gpt-4-turbo-preview"
	}

	if c.Ingest.MaxFileSize == 0 {
		c.Ingest.MaxFileSize = 1 << 20 // 1 MiB
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.OpenAIAPIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("openai provider requires openai_api_key or OPENAI_API_KEY")
		}
	case "volcengine":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("volcengine provider requires api_key")
		}
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got: %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize <= 0 || c.Embedding.BatchSize > 256 {
		return fmt.Errorf("batch_size must be between 1 and 256, got: %d", c.Embedding.BatchSize)
	}
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got: %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got: %d", c.Chunking.ChunkOverlap)
	}

	return nil
}

const defaultConfigTemplate = `# repoql configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.repoql/config/repoql.yaml

chunking:
  chunk_size: 1000
  chunk_overlap: 200

embedding:
  # Provider: "openai" or "volcengine"
  provider: openai
  openai_api_key: your-openai-api-key
  openai_model: text-embedding-3-small
  dimensions: 1536
  batch_size: 32

  # VolcEngine configuration (alternative)
  # provider: volcengine
  # api_key: your-volcengine-api-key
  # endpoint: https://ark.cn-beijing.volces.com/api/v3/embeddings
  # model: doubao-embedding-text-240715
  # dimensions: 1024

store:
  path: ~/.repoql/data

retrieval:
  top_k: 8
  max_context_tokens: 3000
  history_turns: 10
  chat_model: gpt-4-turbo-preview
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
