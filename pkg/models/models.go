package models

// SourceFile is one already-filtered file handed to the indexing pipeline.
// The ingestion side owns filtering (size, secrets, ignored paths); the core
// treats the record as immutable.
type SourceFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
	Size     int64  `json:"size"`
}

// RepositoryInfo is the descriptive record passed through to answer
// generation. The core never interprets it.
type RepositoryInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Turn is a single prior conversation turn. Role follows the usual
// "user"/"assistant" convention.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
