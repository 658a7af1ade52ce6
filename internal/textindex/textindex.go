package textindex

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
)

// Doc is one chunk as seen by the keyword index. Content is indexed and
// stored so hits can carry a snippet without going back to disk.
type Doc struct {
	Content   string `json:"content"`
	Path      string `json:"path"`
	Language  string `json:"language"`
	Kind      string `json:"kind"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

// Hit is one keyword-search match, best score first.
type Hit struct {
	Path      string
	Kind      string
	LineStart int
	LineEnd   int
	Score     float64
	Snippet   string
}

// Index is a full-text keyword index over one collection's chunks. It
// complements vector search: exact identifiers and rare terms that
// embeddings blur together stay findable here.
type Index struct {
	index bleve.Index
}

// Dir returns the on-disk location of a collection's keyword index under
// the store root.
func Dir(root, collection string) string {
	return filepath.Join(root, "text", collection)
}

// Create makes a fresh keyword index at dir, replacing any existing one.
func Create(dir string) (*Index, error) {
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("reset text index dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create text index dir: %w", err)
	}
	index, err := bleve.New(dir, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &Index{index: index}, nil
}

// Open opens an existing keyword index.
func Open(dir string) (*Index, error) {
	index, err := bleve.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open bleve index: %w", err)
	}
	return &Index{index: index}, nil
}

// Delete removes a collection's keyword index from disk. Removing an index
// that does not exist is not an error.
func Delete(dir string) error {
	return os.RemoveAll(dir)
}

// Add indexes one document under the given id.
func (x *Index) Add(id string, doc Doc) error {
	return x.index.Index(id, doc)
}

// Search runs a keyword query and returns up to topK hits by descending
// score. Content matches score highest; path matches are boosted so
// asking for a file by name still works.
func (x *Index) Search(query string, topK int) ([]Hit, error) {
	if topK <= 0 {
		topK = 10
	}

	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")
	contentQuery.SetBoost(1.0)
	pathQuery := bleve.NewMatchQuery(query)
	pathQuery.SetField("path")
	pathQuery.SetBoost(1.5)

	disjunction := bleve.NewDisjunctionQuery([]blevequery.Query{contentQuery, pathQuery}...)

	req := bleve.NewSearchRequestOptions(disjunction, topK, 0, false)
	req.Fields = []string{"content", "path", "kind", "line_start", "line_end"}

	res, err := x.index.Search(req)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for _, hit := range res.Hits {
		pathVal, _ := hit.Fields["path"].(string)
		kindVal, _ := hit.Fields["kind"].(string)
		snippet, _ := hit.Fields["content"].(string)
		hits = append(hits, Hit{
			Path:      pathVal,
			Kind:      kindVal,
			LineStart: parseLineField(hit.Fields["line_start"]),
			LineEnd:   parseLineField(hit.Fields["line_end"]),
			Score:     hit.Score,
			Snippet:   snippet,
		})
	}
	return hits, nil
}

// DocCount reports the number of indexed documents.
func (x *Index) DocCount() (uint64, error) {
	return x.index.DocCount()
}

// Close releases the underlying bleve index.
func (x *Index) Close() error {
	return x.index.Close()
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "content"

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = true
	contentField.Index = true
	docMapping.AddFieldMappingsAt("content", contentField)

	pathField := bleve.NewTextFieldMapping()
	pathField.Store = true
	pathField.Index = true
	docMapping.AddFieldMappingsAt("path", pathField)

	languageField := bleve.NewTextFieldMapping()
	languageField.Store = true
	languageField.Index = true
	languageField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("language", languageField)

	kindField := bleve.NewTextFieldMapping()
	kindField.Store = true
	kindField.Index = true
	kindField.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt("kind", kindField)

	lineField := bleve.NewNumericFieldMapping()
	lineField.Store = true
	lineField.Index = false
	docMapping.AddFieldMappingsAt("line_start", lineField)
	docMapping.AddFieldMappingsAt("line_end", lineField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func parseLineField(val any) int {
	switch v := val.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	default:
		return 0
	}
}
