package vectorstore

import (
	"context"
	"encoding/json"
	"math"
	"sort"
)

// Search performs brute-force nearest-neighbour search over one collection.
// Results come back ordered by ascending distance; equal distances keep
// insertion order. A missing or empty collection yields an empty slice,
// never an error.
func (s *Store) Search(ctx context.Context, name string, vector []float32, limit int, filter Filter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	queryVec, queryNorm := toFloat64Vector(vector)
	if len(queryVec) == 0 || queryNorm == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT file_path, language, chunk_index, chunk_kind,
		start_line, end_line, content, vector
		FROM entries WHERE collection = ? ORDER BY rowid`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []SearchResult
	for rows.Next() {
		var meta Metadata
		var content, vectorJSON string
		if err := rows.Scan(&meta.FilePath, &meta.Language, &meta.ChunkIndex, &meta.ChunkKind,
			&meta.StartLine, &meta.EndLine, &content, &vectorJSON); err != nil {
			return nil, err
		}
		if filter != nil && !filter(meta) {
			continue
		}
		vec, err := decodeVector(vectorJSON)
		if err != nil {
			continue
		}
		distance := 1 - cosineSimilarity(queryVec, vec, queryNorm)
		if distance < 0 {
			distance = 0
		}
		hits = append(hits, SearchResult{
			Content:  content,
			Meta:     meta,
			Distance: distance,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func encodeVector(vec []float32) (string, error) {
	data := make([]float64, len(vec))
	for i, val := range vec {
		data[i] = float64(val)
	}
	out, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeVector(raw string) ([]float64, error) {
	var vec []float64
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func toFloat64Vector(vec []float32) ([]float64, float64) {
	out := make([]float64, len(vec))
	var sum float64
	for i, val := range vec {
		v := float64(val)
		out[i] = v
		sum += v * v
	}
	return out, math.Sqrt(sum)
}

func cosineSimilarity(query []float64, vec []float64, queryNorm float64) float64 {
	if len(query) == 0 || len(vec) == 0 || queryNorm == 0 {
		return 0
	}
	if len(query) != len(vec) {
		return 0
	}
	var dot float64
	var norm float64
	for i, val := range vec {
		dot += query[i] * val
		norm += val * val
	}
	if norm == 0 {
		return 0
	}
	return dot / (queryNorm * math.Sqrt(norm))
}
