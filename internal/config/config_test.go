package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Chunking.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want 1000", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %d, want 200", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Embedding.Provider)
	}
	if cfg.Embedding.BatchSize != 32 {
		t.Errorf("BatchSize = %d, want 32", cfg.Embedding.BatchSize)
	}
	if cfg.Embedding.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Embedding.Workers)
	}
	if cfg.Retrieval.TopK != 8 {
		t.Errorf("TopK = %d, want 8", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.MaxContextTokens != 3000 {
		t.Errorf("MaxContextTokens = %d, want 3000", cfg.Retrieval.MaxContextTokens)
	}
	if cfg.Retrieval.HistoryTurns != 10 {
		t.Errorf("HistoryTurns = %d, want 10", cfg.Retrieval.HistoryTurns)
	}
	if cfg.Store.Path == "" {
		t.Error("Store.Path default is empty")
	}
	if cfg.Ingest.MaxFileSize != 1<<20 {
		t.Errorf("MaxFileSize = %d, want 1MiB", cfg.Ingest.MaxFileSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
chunking:
  chunk_size: 500
  chunk_overlap: 50

embedding:
  provider: volcengine
  api_key: test-key
  dimensions: 1024
  batch_size: 16

store:
  path: /tmp/repoql-test

retrieval:
  top_k: 4
`
	path := filepath.Join(t.TempDir(), "repoql.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Chunking.ChunkSize != 500 || cfg.Chunking.ChunkOverlap != 50 {
		t.Errorf("chunking = %d/%d, want 500/50", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	}
	if cfg.Embedding.Provider != "volcengine" || cfg.Embedding.APIKey != "test-key" {
		t.Error("embedding provider settings not loaded")
	}
	if cfg.Embedding.Dimensions != 1024 {
		t.Errorf("Dimensions = %d, want 1024", cfg.Embedding.Dimensions)
	}
	if cfg.Store.Path != "/tmp/repoql-test" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("TopK = %d, want 4", cfg.Retrieval.TopK)
	}
	// Unset values still get defaults.
	if cfg.Retrieval.MaxContextTokens != 3000 {
		t.Errorf("MaxContextTokens = %d, want default 3000", cfg.Retrieval.MaxContextTokens)
	}
	if cfg.Embedding.Workers != 4 {
		t.Errorf("Workers = %d, want default 4", cfg.Embedding.Workers)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound() = false for %T", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unsupported provider",
			mutate:  func(c *Config) { c.Embedding.Provider = "bogus" },
			wantErr: "unsupported embedding provider",
		},
		{
			name:    "volcengine without key",
			mutate:  func(c *Config) { c.Embedding.Provider = "volcengine"; c.Embedding.APIKey = "" },
			wantErr: "api_key",
		},
		{
			name:    "negative dimensions",
			mutate:  func(c *Config) { c.Embedding.Dimensions = -1 },
			wantErr: "dimensions",
		},
		{
			name:    "oversized batch",
			mutate:  func(c *Config) { c.Embedding.BatchSize = 512 },
			wantErr: "batch_size",
		},
		{
			name:    "overlap not below chunk size",
			mutate:  func(c *Config) { c.Chunking.ChunkOverlap = c.Chunking.ChunkSize },
			wantErr: "chunk_overlap",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Embedding.Provider = "volcengine"
			cfg.Embedding.APIKey = "k"
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefaultTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "repoql.yaml")

	created, err := WriteDefaultTemplate(path)
	if err != nil {
		t.Fatalf("WriteDefaultTemplate() error: %v", err)
	}
	if !created {
		t.Fatal("expected template to be created")
	}

	created, err = WriteDefaultTemplate(path)
	if err != nil {
		t.Fatalf("second WriteDefaultTemplate() error: %v", err)
	}
	if created {
		t.Error("template recreated over existing file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if !strings.Contains(string(data), "chunk_size: 1000") {
		t.Error("template missing chunking defaults")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandPath("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("expandPath(~/data) = %q", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("expandPath(/abs/path) = %q", got)
	}
}
