package textindex

import (
	"path/filepath"
	"testing"
)

func TestCreateAddSearch(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "text", "repo_x")

	idx, err := Create(dir)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	defer idx.Close()

	docs := map[string]Doc{
		"d1": {
			Content:   "func ParseConfig(path string) (*Config, error) {",
			Path:      "internal/config/config.go",
			Language:  "go",
			Kind:      "structural_unit",
			LineStart: 10,
			LineEnd:   24,
		},
		"d2": {
			Content:   "## Installation\nRun make install.",
			Path:      "README.md",
			Language:  "markdown",
			Kind:      "markdown_section",
			LineStart: 3,
			LineEnd:   4,
		},
	}
	for id, doc := range docs {
		if err := idx.Add(id, doc); err != nil {
			t.Fatalf("Add(%q) error: %v", id, err)
		}
	}

	hits, err := idx.Search("ParseConfig", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("no hits for indexed identifier")
	}
	if hits[0].Path != "internal/config/config.go" {
		t.Errorf("top hit path = %q, want config.go", hits[0].Path)
	}
	if hits[0].LineStart != 10 || hits[0].LineEnd != 24 {
		t.Errorf("top hit lines = %d-%d, want 10-24", hits[0].LineStart, hits[0].LineEnd)
	}
	if hits[0].Snippet == "" {
		t.Error("hit carries no snippet")
	}

	n, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount() error: %v", err)
	}
	if n != 2 {
		t.Errorf("DocCount() = %d, want 2", n)
	}
}

func TestCreateReplacesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	idx, err := Create(dir)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := idx.Add("old", Doc{Content: "stale chunk", Path: "old.go"}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	idx, err = Create(dir)
	if err != nil {
		t.Fatalf("recreate error: %v", err)
	}
	defer idx.Close()

	n, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount() error: %v", err)
	}
	if n != 0 {
		t.Errorf("recreated index has %d docs, want 0", n)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "idx")

	if err := Delete(dir); err != nil {
		t.Errorf("deleting a missing index errored: %v", err)
	}

	idx, err := Create(dir)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := Delete(dir); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
	if err := Delete(dir); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
}

func TestDir(t *testing.T) {
	got := Dir("/data", "repo_abc")
	want := filepath.Join("/data", "text", "repo_abc")
	if got != want {
		t.Errorf("Dir() = %q, want %q", got, want)
	}
}
