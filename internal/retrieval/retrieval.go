package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/mqin/repoql/internal/config"
	"github.com/mqin/repoql/internal/embedding"
	"github.com/mqin/repoql/internal/index"
	"github.com/mqin/repoql/internal/vectorstore"
	"github.com/mqin/repoql/pkg/models"
)

// Source is one retrieved chunk's provenance for display: where it came
// from and how close it was to the question.
type Source struct {
	Path      string
	ChunkKind string
	Relevance float64
}

// Result is the assembled retrieval context for one question.
type Result struct {
	// Context is the concatenated chunk blocks, bounded by the token budget.
	Context string
	// UsedSources lists the top-ranked results regardless of whether their
	// block fit into Context.
	UsedSources []Source
	// AllSourcePaths is every distinct file path across the retrieved
	// results, in rank order.
	AllSourcePaths []string
}

// topSources is how many ranked results are reported as provenance.
const topSources = 3

// Retriever turns a question into a token-budgeted context ready for
// answer generation. It performs no generation itself.
type Retriever struct {
	index            *index.Manager
	topK             int
	maxContextTokens int
	historyTurns     int
}

// New creates a Retriever over an index manager.
func New(mgr *index.Manager, cfg *config.RetrievalConfig) *Retriever {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 8
	}
	maxTokens := cfg.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = 3000
	}
	turns := cfg.HistoryTurns
	if turns <= 0 {
		turns = 10
	}
	return &Retriever{
		index:            mgr,
		topK:             topK,
		maxContextTokens: maxTokens,
		historyTurns:     turns,
	}
}

// AnswerContext retrieves the chunks nearest to question and assembles
// them into a context string. Blocks are appended in rank order until the
// next block would push the estimated token total past the budget; a block
// that does not fit is dropped whole, never truncated.
func (r *Retriever) AnswerContext(ctx context.Context, repoID, question string) (*Result, error) {
	hits, err := r.index.Query(ctx, repoID, question, r.topK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	var blocks []string
	totalTokens := 0
	for _, hit := range hits {
		block := fmt.Sprintf("File: %s\nLanguage: %s\nContent:\n%s\n---\n",
			hit.Meta.FilePath, languageOrUnknown(hit.Meta.Language), hit.Content)
		blockTokens := embedding.CountTokens(block)
		if totalTokens+blockTokens > r.maxContextTokens {
			break
		}
		blocks = append(blocks, block)
		totalTokens += blockTokens
	}

	result := &Result{
		Context:        strings.Join(blocks, "\n"),
		AllSourcePaths: dedupePaths(hits),
	}
	for i, hit := range hits {
		if i >= topSources {
			break
		}
		result.UsedSources = append(result.UsedSources, Source{
			Path:      hit.Meta.FilePath,
			ChunkKind: hit.Meta.ChunkKind,
			Relevance: 1 - hit.Distance,
		})
	}
	return result, nil
}

// RecentHistory returns the most recent turns to forward to answer
// generation, preserving order.
func (r *Retriever) RecentHistory(history []models.Turn) []models.Turn {
	if len(history) <= r.historyTurns {
		return history
	}
	return history[len(history)-r.historyTurns:]
}

// SampleContext retrieves a small cross-section of the repository's chunks
// for summarization prompts. Each sample carries at most 200 characters of
// content.
func (r *Retriever) SampleContext(ctx context.Context, repoID string) (string, error) {
	hits, err := r.index.Query(ctx, repoID, "main function class API", 5, nil)
	if err != nil {
		return "", fmt.Errorf("sample repository: %w", err)
	}
	var parts []string
	for _, hit := range hits {
		content := hit.Content
		if len(content) > 200 {
			content = content[:200]
		}
		parts = append(parts, fmt.Sprintf("File: %s\n%s...", hit.Meta.FilePath, content))
	}
	return strings.Join(parts, "\n"), nil
}

func languageOrUnknown(language string) string {
	if language == "" {
		return "unknown"
	}
	return language
}

func dedupePaths(hits []vectorstore.SearchResult) []string {
	seen := make(map[string]bool, len(hits))
	var paths []string
	for _, hit := range hits {
		if seen[hit.Meta.FilePath] {
			continue
		}
		seen[hit.Meta.FilePath] = true
		paths = append(paths, hit.Meta.FilePath)
	}
	return paths
}
