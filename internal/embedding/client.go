package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/mqin/repoql/internal/config"
)

// Client is the interface for embedding API clients
type Client interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// NewClient creates an embedding client for the configured provider
func NewClient(cfg *config.EmbeddingConfig) (Client, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg)
	case "volcengine":
		return NewVolcEngineClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// EchoClient is a deterministic in-process client for tests and offline use.
// Identical text always maps to the identical vector, so an exact-text query
// retrieves its own chunk at distance zero.
type EchoClient struct {
	dim int
}

// NewEchoClient creates an EchoClient with the given dimension
func NewEchoClient(dim int) *EchoClient {
	if dim <= 0 {
		dim = 64
	}
	return &EchoClient{dim: dim}
}

// EmbedBatch derives one unit-length vector per text from byte histograms
func (e *EchoClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, e.dim)
		for pos := 0; pos < len(text); pos++ {
			vec[(int(text[pos])+pos)%e.dim]++
		}
		if len(text) == 0 {
			vec[0] = 1
		}
		normalize(vec)
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the dimension of the embeddings
func (e *EchoClient) Dimensions() int {
	return e.dim
}

func normalize(v []float32) {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(float64(sum)))
	for i := range v {
		v[i] *= inv
	}
}
