package embedding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
)

// fakeClient returns a vector encoding each text's numeric payload so tests
// can verify ordering across batches and workers.
type fakeClient struct {
	mu         sync.Mutex
	batchSizes []int
	failAfter  int // fail once this many batches have been served; 0 = never
	served     int
}

func (f *fakeClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.served++
	f.batchSizes = append(f.batchSizes, len(texts))
	shouldFail := f.failAfter > 0 && f.served > f.failAfter
	f.mu.Unlock()

	if shouldFail {
		return nil, errors.New("provider unreachable")
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil, fmt.Errorf("unexpected text %q", text)
		}
		out[i] = []float32{float32(n)}
	}
	return out, nil
}

func (f *fakeClient) Dimensions() int { return 1 }

func TestServiceEmbed_PreservesOrder(t *testing.T) {
	client := &fakeClient{}
	svc := NewServiceWithClient(client, 7, 3)

	texts := make([]string, 100)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}

	vectors, err := svc.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	for i, vec := range vectors {
		if len(vec) != 1 || vec[0] != float32(i) {
			t.Errorf("vector %d = %v, want [%d]", i, vec, i)
		}
	}
}

func TestServiceEmbed_BatchSizeBound(t *testing.T) {
	client := &fakeClient{}
	svc := NewServiceWithClient(client, 32, 1)

	texts := make([]string, 70)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}

	if _, err := svc.Embed(context.Background(), texts); err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.batchSizes) != 3 {
		t.Fatalf("got %d batches, want 3", len(client.batchSizes))
	}
	for i, size := range client.batchSizes {
		if size > 32 {
			t.Errorf("batch %d size = %d, exceeds 32", i, size)
		}
	}
}

func TestServiceEmbed_FailureAbortsWholeCall(t *testing.T) {
	client := &fakeClient{failAfter: 1}
	svc := NewServiceWithClient(client, 4, 1)

	texts := make([]string, 12)
	for i := range texts {
		texts[i] = strconv.Itoa(i)
	}

	vectors, err := svc.Embed(context.Background(), texts)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if vectors != nil {
		t.Errorf("expected no partial results, got %d vectors", len(vectors))
	}

	var embErr *Error
	if !errors.As(err, &embErr) {
		t.Fatalf("error type = %T, want *embedding.Error", err)
	}
}

func TestServiceEmbed_EmptyInput(t *testing.T) {
	svc := NewServiceWithClient(&fakeClient{}, 32, 2)
	vectors, err := svc.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("got %d vectors for empty input", len(vectors))
	}
}

func TestServiceEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewServiceWithClient(&fakeClient{}, 2, 1)
	_, err := svc.Embed(ctx, []string{"1", "2", "3", "4"})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestEchoClient_Deterministic(t *testing.T) {
	echo := NewEchoClient(32)

	a, err := echo.EmbedBatch(context.Background(), []string{"def f():", "def f():", "other"})
	if err != nil {
		t.Fatalf("EmbedBatch() error: %v", err)
	}

	for i := range a[0] {
		if a[0][i] != a[1][i] {
			t.Fatal("identical texts produced different vectors")
		}
	}

	same := true
	for i := range a[0] {
		if a[0][i] != a[2][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestCountTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"abcd", 1},
		{"12345678", 2},
	}
	for _, tt := range tests {
		if got := CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
