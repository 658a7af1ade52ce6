package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
)

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", []byte("package main\n"))
	writeFile(t, root, "docs/guide.md", []byte("# Guide\n"))
	writeFile(t, root, "node_modules/dep/index.js", []byte("ignored"))
	writeFile(t, root, ".git/config", []byte("ignored"))
	writeFile(t, root, "logo.png", []byte{0x89, 0x50, 0x4e, 0x47})
	writeFile(t, root, "blob.dat", []byte{0x00, 0x01, 0x02})

	files, err := Collect(root, &config.IngestConfig{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}

	got := make(map[string]string, len(files))
	for _, f := range files {
		got[f.Path] = f.Language
	}
	if len(files) != 2 {
		t.Fatalf("collected %v, want exactly main.go and docs/guide.md", got)
	}
	if got["main.go"] != "go" {
		t.Errorf("main.go language = %q, want go", got["main.go"])
	}
	if got["docs/guide.md"] != "markdown" {
		t.Errorf("guide.md language = %q, want markdown", got["docs/guide.md"])
	}
}

func TestCollectExcludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "keep.go", []byte("package keep\n"))
	writeFile(t, root, "gen/schema_gen.go", []byte("package gen\n"))
	writeFile(t, root, "notes.txt", []byte("notes\n"))

	cfg := &config.IngestConfig{Exclude: []string{"gen/**", "*.txt"}}
	files, err := Collect(root, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(files) != 1 || files[0].Path != "keep.go" {
		t.Errorf("collected %v, want only keep.go", files)
	}
}

func TestCollectMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "small.go", []byte("package small\n"))
	// Fill huge.go with text so only the size check rejects it.
	big := make([]byte, 100)
	for i := range big {
		big[i] = 'a'
	}
	writeFile(t, root, "huge.go", big)

	cfg := &config.IngestConfig{MaxFileSize: 50}
	files, err := Collect(root, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(files) != 1 || files[0].Path != "small.go" {
		t.Errorf("collected %v, want only small.go", files)
	}
}

func TestCollectMissingRoot(t *testing.T) {
	if _, err := Collect(filepath.Join(t.TempDir(), "nope"), &config.IngestConfig{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestShouldIndex(t *testing.T) {
	filter := NewFilter(&config.IngestConfig{Exclude: []string{"**/*_test.go"}})

	tests := []struct {
		path string
		want bool
	}{
		{"internal/app/app.go", true},
		{"internal/app/app_test.go", false},
		{"vendor/lib/lib.go", false},
		{"assets/logo.svg", false},
		{"README.md", true},
	}
	for _, tt := range tests {
		if got := filter.ShouldIndex(tt.path); got != tt.want {
			t.Errorf("ShouldIndex(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGuessLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a/b/main.go", "go"},
		{"script.py", "python"},
		{"ui/app.tsx", "typescript"},
		{"README.md", "markdown"},
		{"Dockerfile", "dockerfile"},
		{"conf.yaml", "yaml"},
		{"weird.xyz", "xyz"},
		{"noext", ""},
	}
	for _, tt := range tests {
		if got := GuessLanguage(tt.path); got != tt.want {
			t.Errorf("GuessLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
