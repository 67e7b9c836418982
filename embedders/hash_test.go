package embedders

import (
	"context"
	"math"
	"testing"

	"github.com/vietbot-labs/ragcore/config"
)

func newHashEmbedder(t *testing.T, dimension int) *HashEmbedder {
	t.Helper()
	e, err := NewHashEmbedder(&config.EmbedderConfig{
		Provider:  "hash",
		Dimension: dimension,
	})
	if err != nil {
		t.Fatalf("NewHashEmbedder() error = %v", err)
	}
	return e
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := newHashEmbedder(t, 64)
	ctx := context.Background()

	first, err := e.Embed(ctx, "Khung năng lực số là gì?")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	second, err := e.Embed(ctx, "Khung năng lực số là gì?")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(first) != 64 {
		t.Fatalf("len(vector) = %d, want configured dimension 64", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestHashEmbedder_DistinctTextsDistinctVectors(t *testing.T) {
	e := newHashEmbedder(t, 64)
	ctx := context.Background()

	a, err := e.Embed(ctx, "học phí khóa Java")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	b, err := e.Embed(ctx, "giờ làm việc của trung tâm")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("unrelated texts produced identical vectors")
	}
}

func TestHashEmbedder_VectorsAreUnitLength(t *testing.T) {
	e := newHashEmbedder(t, 32)

	vector, err := e.Embed(context.Background(), "sao lưu dữ liệu")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if norm := math.Sqrt(sum); math.Abs(norm-1) > 1e-5 {
		t.Errorf("norm = %v, want 1", norm)
	}
}

func TestHashEmbedder_EmptyTextIsZeroVector(t *testing.T) {
	e := newHashEmbedder(t, 16)

	vector, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vector) != 16 {
		t.Fatalf("len(vector) = %d, want 16", len(vector))
	}
	for i, v := range vector {
		if v != 0 {
			t.Fatalf("vector[%d] = %v, want 0", i, v)
		}
	}
}

func TestHashEmbedder_ShortTextStillEmbeds(t *testing.T) {
	e := newHashEmbedder(t, 16)

	vector, err := e.Embed(context.Background(), "ab")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	nonZero := false
	for _, v := range vector {
		if v != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("text shorter than one gram produced a zero vector")
	}
}

func TestHashEmbedder_CancelledContext(t *testing.T) {
	e := newHashEmbedder(t, 16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Embed(ctx, "câu hỏi"); err == nil {
		t.Error("Embed() error = nil, want cancellation error")
	}
}
