package index

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mqin/repoql/internal/embedding"
	"github.com/mqin/repoql/internal/splitter"
	"github.com/mqin/repoql/internal/textindex"
	"github.com/mqin/repoql/internal/vectorstore"
	"github.com/mqin/repoql/pkg/models"
)

// IndexingError wraps a failure of one index operation with enough context
// to report which repository it concerned.
type IndexingError struct {
	Op     string
	RepoID string
	Err    error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("index %s %s: %v", e.Op, e.RepoID, e.Err)
}

func (e *IndexingError) Unwrap() error {
	return e.Err
}

// Collection is a handle to one repository's indexed content.
type Collection struct {
	Name   string
	RepoID string
}

// Manager owns the full indexing pipeline for all repositories: splitting
// files into chunks, embedding them, and persisting both the vector
// collection and the keyword index.
type Manager struct {
	store    *vectorstore.Store
	embedder *embedding.Service
	splitter *splitter.Splitter
	root     string
	log      zerolog.Logger
}

// New creates a Manager. root is the store directory; keyword indexes live
// under it next to the collection database.
func New(store *vectorstore.Store, embedder *embedding.Service, split *splitter.Splitter, root string, log zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		embedder: embedder,
		splitter: split,
		root:     root,
		log:      log,
	}
}

// Create makes a fresh collection for the repository, replacing any
// existing one along with its entries and keyword index.
func (m *Manager) Create(ctx context.Context, repoID string) (*Collection, error) {
	name := vectorstore.CollectionName(repoID)
	if err := m.store.Create(ctx, name, repoID, m.embedder.Dimensions()); err != nil {
		return nil, &IndexingError{Op: "create", RepoID: repoID, Err: err}
	}
	textIdx, err := textindex.Create(textindex.Dir(m.root, name))
	if err != nil {
		return nil, &IndexingError{Op: "create", RepoID: repoID, Err: err}
	}
	if err := textIdx.Close(); err != nil {
		return nil, &IndexingError{Op: "create", RepoID: repoID, Err: err}
	}
	m.log.Info().Str("repository", repoID).Str("collection", name).Msg("collection created")
	return &Collection{Name: name, RepoID: repoID}, nil
}

// Add splits the given files into chunks, embeds every chunk in one
// order-preserving pass, and persists the results. Chunks are stored in
// file order, then chunk order within each file. Returns the generated
// entry ids in that same order. If embedding fails nothing is persisted.
func (m *Manager) Add(ctx context.Context, col *Collection, files []models.SourceFile) ([]string, error) {
	exists, err := m.store.Exists(ctx, col.Name)
	if err != nil {
		return nil, &IndexingError{Op: "add", RepoID: col.RepoID, Err: err}
	}
	if !exists {
		return nil, &IndexingError{Op: "add", RepoID: col.RepoID, Err: fmt.Errorf("collection %s does not exist", col.Name)}
	}

	type pending struct {
		chunk      splitter.Chunk
		chunkIndex int
	}
	var chunks []pending
	for _, file := range files {
		split := m.splitter.Split(file.Content, file.Language, file.Path)
		for i, chunk := range split {
			chunks = append(chunks, pending{chunk: chunk, chunkIndex: i})
		}
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, p := range chunks {
		texts[i] = p.chunk.Content
	}
	vectors, err := m.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, &IndexingError{Op: "add", RepoID: col.RepoID, Err: err}
	}

	ids := make([]string, len(chunks))
	entries := make([]vectorstore.Entry, len(chunks))
	for i, p := range chunks {
		ids[i] = uuid.NewString()
		entries[i] = vectorstore.Entry{
			ID:      ids[i],
			Vector:  vectors[i],
			Content: p.chunk.Content,
			Meta: vectorstore.Metadata{
				FilePath:   p.chunk.FilePath,
				Language:   p.chunk.Language,
				ChunkIndex: p.chunkIndex,
				ChunkKind:  string(p.chunk.Kind),
				StartLine:  p.chunk.StartLine,
				EndLine:    p.chunk.EndLine,
			},
		}
	}
	if err := m.store.Insert(ctx, col.Name, entries); err != nil {
		return nil, &IndexingError{Op: "add", RepoID: col.RepoID, Err: err}
	}

	textIdx, err := textindex.Open(textindex.Dir(m.root, col.Name))
	if err != nil {
		return nil, &IndexingError{Op: "add", RepoID: col.RepoID, Err: err}
	}
	defer textIdx.Close()
	for i, p := range chunks {
		doc := textindex.Doc{
			Content:   p.chunk.Content,
			Path:      p.chunk.FilePath,
			Language:  p.chunk.Language,
			Kind:      string(p.chunk.Kind),
			LineStart: p.chunk.StartLine,
			LineEnd:   p.chunk.EndLine,
		}
		if err := textIdx.Add(ids[i], doc); err != nil {
			return nil, &IndexingError{Op: "add", RepoID: col.RepoID, Err: err}
		}
	}

	m.log.Info().
		Str("repository", col.RepoID).
		Int("files", len(files)).
		Int("chunks", len(chunks)).
		Msg("chunks indexed")
	return ids, nil
}

// Query embeds the text and returns the nearest chunks by ascending
// distance. A repository that was never indexed yields an empty result,
// not an error.
func (m *Manager) Query(ctx context.Context, repoID, text string, topK int, filter vectorstore.Filter) ([]vectorstore.SearchResult, error) {
	vector, err := m.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, &IndexingError{Op: "query", RepoID: repoID, Err: err}
	}
	hits, err := m.store.Search(ctx, vectorstore.CollectionName(repoID), vector, topK, filter)
	if err != nil {
		return nil, &IndexingError{Op: "query", RepoID: repoID, Err: err}
	}
	return hits, nil
}

// SearchKeyword runs a full-text query against the repository's keyword
// index. A repository that was never indexed yields an empty result.
func (m *Manager) SearchKeyword(repoID, query string, topK int) ([]textindex.Hit, error) {
	dir := textindex.Dir(m.root, vectorstore.CollectionName(repoID))
	textIdx, err := textindex.Open(dir)
	if err != nil {
		return nil, nil
	}
	defer textIdx.Close()
	hits, err := textIdx.Search(query, topK)
	if err != nil {
		return nil, &IndexingError{Op: "search", RepoID: repoID, Err: err}
	}
	return hits, nil
}

// Delete removes the repository's collection and keyword index. Deleting a
// repository that was never indexed succeeds.
func (m *Manager) Delete(ctx context.Context, repoID string) error {
	name := vectorstore.CollectionName(repoID)
	if err := m.store.Delete(ctx, name); err != nil {
		return &IndexingError{Op: "delete", RepoID: repoID, Err: err}
	}
	if err := textindex.Delete(textindex.Dir(m.root, name)); err != nil {
		return &IndexingError{Op: "delete", RepoID: repoID, Err: err}
	}
	m.log.Info().Str("repository", repoID).Msg("collection deleted")
	return nil
}

// Exists reports whether the repository has an indexed collection.
func (m *Manager) Exists(ctx context.Context, repoID string) (bool, error) {
	return m.store.Exists(ctx, vectorstore.CollectionName(repoID))
}

// Count returns the number of indexed chunks for the repository.
func (m *Manager) Count(ctx context.Context, repoID string) (int, error) {
	return m.store.Count(ctx, vectorstore.CollectionName(repoID))
}
