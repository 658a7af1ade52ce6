package ingest

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/config"
	"github.com/mqin/repoql/pkg/models"
)

// skipDirs are directory names never descended into, independent of the
// configured exclude patterns.
var skipDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	".idea":         true,
	".vscode":       true,
	".cache":        true,
	".venv":         true,
	"venv":          true,
	"__pycache__":   true,
	".pytest_cache": true,
	"node_modules":  true,
	"vendor":        true,
	"target":        true,
	"build":         true,
	"dist":          true,
	"coverage":      true,
}

// skipExts are extensions of files that are never worth embedding.
var skipExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	".svg": true, ".ico": true, ".pdf": true, ".zip": true, ".gz": true,
	".tar": true, ".exe": true, ".dll": true, ".so": true, ".dylib": true,
	".lock": true, ".sum": true, ".bin": true, ".woff": true, ".woff2": true,
}

// Filter decides which repository files get ingested.
type Filter struct {
	exclude     []string
	maxFileSize int64
}

// NewFilter builds a Filter from the ingestion configuration.
func NewFilter(cfg *config.IngestConfig) *Filter {
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = 1 << 20
	}
	return &Filter{
		exclude:     cfg.Exclude,
		maxFileSize: maxSize,
	}
}

// ShouldIndex reports whether a file at the repo-relative path passes the
// exclude patterns. Patterns are matched against the full relative path
// and against the basename.
func (f *Filter) ShouldIndex(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, part := range strings.Split(relPath, "/") {
		if skipDirs[part] {
			return false
		}
	}
	if skipExts[strings.ToLower(filepath.Ext(relPath))] {
		return false
	}
	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return false
		}
		if matched, _ := doublestar.Match(pattern, filepath.Base(relPath)); matched {
			return false
		}
	}
	return true
}

// Collect walks the repository root and returns every ingestible file in
// lexical walk order. Oversize and binary files are skipped, never errors.
func Collect(root string, cfg *config.IngestConfig, log zerolog.Logger) ([]models.SourceFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}

	filter := NewFilter(cfg)
	var files []models.SourceFile

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if !filter.ShouldIndex(relPath) {
			log.Debug().Str("path", relPath).Msg("excluded by filter")
			return nil
		}

		fileInfo, err := d.Info()
		if err != nil {
			return err
		}
		if fileInfo.Size() > filter.maxFileSize {
			log.Debug().Str("path", relPath).Int64("size", fileInfo.Size()).Msg("skipped oversize file")
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", relPath, err)
		}
		if isBinary(content) {
			log.Debug().Str("path", relPath).Msg("skipped binary file")
			return nil
		}

		files = append(files, models.SourceFile{
			Path:     relPath,
			Content:  string(content),
			Language: GuessLanguage(relPath),
			Size:     fileInfo.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk repository: %w", err)
	}
	return files, nil
}

// GuessLanguage maps a file path to a language name by extension. Unknown
// extensions map to the bare extension so the splitter falls back to
// sliding windows.
func GuessLanguage(path string) string {
	base := strings.ToLower(filepath.Base(path))
	switch base {
	case "dockerfile":
		return "dockerfile"
	case "makefile":
		return "makefile"
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".jsx", ".mjs":
		return "javascript"
	case ".ts", ".tsx":
		return "typescript"
	case ".md", ".markdown":
		return "markdown"
	case ".sh", ".bash":
		return "shell"
	case ".rb":
		return "ruby"
	case ".java":
		return "java"
	case ".rs":
		return "rust"
	case ".c", ".h":
		return "c"
	case ".cpp", ".cc", ".hpp":
		return "cpp"
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	case ".html", ".htm":
		return "html"
	case ".css":
		return "css"
	case ".sql":
		return "sql"
	case ".tf":
		return "terraform"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}

// isBinary treats any NUL byte in the first 8000 bytes as binary, the same
// heuristic git uses.
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	return bytes.IndexByte(probe, 0) >= 0
}
