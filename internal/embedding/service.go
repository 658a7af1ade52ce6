package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/mqin/repoql/internal/config"
)

// Error reports a failure of the external embedding capability. The whole
// Embed call fails; no partial vectors are ever returned.
type Error struct {
	BatchStart int
	BatchEnd   int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("embedding batch %d-%d failed: %v", e.BatchStart, e.BatchEnd, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service batches texts and runs provider calls on a bounded worker pool,
// keeping embedding work off the request-handling path. Batch boundaries are
// invisible to callers: output order always matches input order.
type Service struct {
	client    Client
	batchSize int
	workers   int
}

// NewService creates an embedding service for the configured provider
func NewService(cfg *config.EmbeddingConfig) (*Service, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return NewServiceWithClient(client, cfg.BatchSize, cfg.Workers), nil
}

// NewServiceWithClient wraps an existing client; used by tests and embedders
// that bring their own provider.
func NewServiceWithClient(client Client, batchSize, workers int) *Service {
	if batchSize <= 0 {
		batchSize = 32
	}
	if workers <= 0 {
		workers = 4
	}
	return &Service{
		client:    client,
		batchSize: batchSize,
		workers:   workers,
	}
}

type batchJob struct {
	start int
	end   int
}

// Embed generates one vector per input text, order-preserving. It blocks
// until every batch has completed or any batch has failed; on failure no
// vectors are returned. Cancellation takes effect between batches, never
// mid-batch.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))

	jobs := make(chan batchJob)
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	workers := s.workers
	if batches := (len(texts) + s.batchSize - 1) / s.batchSize; workers > batches {
		workers = batches
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					fail(ctx.Err())
					return
				default:
				}

				vectors, err := s.client.EmbedBatch(ctx, texts[job.start:job.end])
				if err != nil {
					fail(&Error{BatchStart: job.start, BatchEnd: job.end, Err: err})
					return
				}
				if len(vectors) != job.end-job.start {
					fail(&Error{
						BatchStart: job.start,
						BatchEnd:   job.end,
						Err:        fmt.Errorf("expected %d vectors, got %d", job.end-job.start, len(vectors)),
					})
					return
				}
				// Disjoint ranges: no locking needed.
				copy(results[job.start:job.end], vectors)
			}
		}()
	}

dispatch:
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		select {
		case jobs <- batchJob{start: start, end: end}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// EmbedOne embeds a single text as a one-item batch
func (s *Service) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, &Error{Err: fmt.Errorf("no embedding returned")}
	}
	return vectors[0], nil
}

// Dimensions returns the dimension of the embeddings
func (s *Service) Dimensions() int {
	return s.client.Dimensions()
}

// CountTokens estimates the token count of text. Without an exact tokenizer
// the estimate is length/4; callers must treat it as an estimate, not an
// exact bound.
func (s *Service) CountTokens(text string) int {
	return CountTokens(text)
}

// CountTokens is the package-level token estimate: one token per four
// characters.
func CountTokens(text string) int {
	return len(text) / 4
}
