package splitter

// ChunkKind classifies how a chunk was produced.
type ChunkKind string

const (
	KindStructuralUnit  ChunkKind = "structural_unit"
	KindTextWindow      ChunkKind = "text_window"
	KindMarkdownSection ChunkKind = "markdown_section"
)

// Chunk is a contiguous, line-addressable fragment of one source file.
// StartLine and EndLine are 0-based and inclusive.
type Chunk struct {
	Content      string
	Kind         ChunkKind
	StartLine    int
	EndLine      int
	Language     string
	FilePath     string
	SectionTitle string
}

// Splitter splits file content into chunks. It is a pure function over its
// inputs: identical input always yields identical chunks, and no method
// ever blocks or errors.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	strategies   []strategy
}

// A strategy examines content and either claims it (non-empty result) or
// passes (nil). Strategies are tried in registration order; structural
// parse failures are absorbed here as a nil result, never surfaced.
type strategy func(content, language string) []Chunk

// New creates a Splitter. chunkSize is the sliding-window budget in
// characters, chunkOverlap the overlap budget scaled against it.
func New(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	s := &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
	s.strategies = []strategy{
		splitStructural,
		splitMarkdown,
		s.splitWindow,
	}
	return s
}

// Split splits content into an ordered sequence of chunks. It never returns
// an empty sequence for non-empty content: the sliding-window strategy is
// the unconditional fallback.
func (s *Splitter) Split(content, language, filePath string) []Chunk {
	for _, strat := range s.strategies {
		chunks := strat(content, language)
		if len(chunks) == 0 {
			continue
		}
		for i := range chunks {
			if chunks[i].Language == "" {
				chunks[i].Language = language
			}
			chunks[i].FilePath = filePath
		}
		return chunks
	}
	return nil
}
