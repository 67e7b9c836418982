package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vietbot-labs/ragcore/search"
)

func newTestGrader(scorer *fakeScorer) *Grader {
	return NewGrader(scorer, testGraderConfig(), testSearchConfig())
}

func TestGrader_KeepsDocumentsClearingBothFloors(t *testing.T) {
	docs := []search.Document{
		{DocumentID: "doc-1", Description: "Hướng dẫn kỹ năng số", SimilarityScore: 0.5},
		{DocumentID: "doc-2", Description: "Tài liệu không liên quan", SimilarityScore: 0.3},
	}
	scorer := &fakeScorer{scores: []float64{0.7, 0.65}}

	got, err := newTestGrader(scorer).Grade(context.Background(), "kỹ năng số", docs)
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if got.Status != StatusSufficient {
		t.Fatalf("Status = %q, want %q", got.Status, StatusSufficient)
	}
	if len(got.Qualified) != 2 {
		t.Fatalf("Qualified = %d, want 2", len(got.Qualified))
	}
	if len(got.References) != 2 {
		t.Fatalf("References = %d, want 2", len(got.References))
	}
	if got.References[0].Type != ReferenceDocument {
		t.Errorf("reference type = %q, want %q", got.References[0].Type, ReferenceDocument)
	}
	if got.References[0].RerankScore != 0.7 {
		t.Errorf("reference rerank = %v, want 0.7", got.References[0].RerankScore)
	}
}

func TestGrader_SortsByRerankScore(t *testing.T) {
	docs := []search.Document{
		{DocumentID: "doc-low", Description: "A", SimilarityScore: 0.5},
		{DocumentID: "doc-high", Description: "B", SimilarityScore: 0.4},
	}
	scorer := &fakeScorer{scores: []float64{0.61, 0.92}}

	got, err := newTestGrader(scorer).Grade(context.Background(), "q", docs)
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if got.Qualified[0].DocumentID != "doc-high" {
		t.Errorf("Qualified[0] = %s, want doc-high", got.Qualified[0].DocumentID)
	}
	if got.Qualified[1].DocumentID != "doc-low" {
		t.Errorf("Qualified[1] = %s, want doc-low", got.Qualified[1].DocumentID)
	}
}

func TestGrader_BothFloorsAreRequired(t *testing.T) {
	tests := []struct {
		name       string
		doc        search.Document
		score      float64
		wantStatus string
	}{
		{
			name:       "high rerank cannot rescue low similarity",
			doc:        search.Document{DocumentID: "doc-1", Description: "A", SimilarityScore: 0.1},
			score:      0.9,
			wantStatus: StatusInsufficient,
		},
		{
			name:       "high similarity cannot rescue low rerank",
			doc:        search.Document{DocumentID: "doc-1", Description: "A", SimilarityScore: 0.8},
			score:      0.5,
			wantStatus: StatusInsufficient,
		},
		{
			name:       "both floors are inclusive",
			doc:        search.Document{DocumentID: "doc-1", Description: "A", SimilarityScore: 0.2},
			score:      0.6,
			wantStatus: StatusSufficient,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &fakeScorer{scores: []float64{tt.score}}
			got, err := newTestGrader(scorer).Grade(context.Background(), "q", []search.Document{tt.doc})
			if err != nil {
				t.Fatalf("Grade() error = %v", err)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestGrader_NoDocumentsIsInsufficient(t *testing.T) {
	scorer := &fakeScorer{}
	got, err := newTestGrader(scorer).Grade(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if got.Status != StatusInsufficient {
		t.Errorf("Status = %q, want %q", got.Status, StatusInsufficient)
	}
	if scorer.calls != 0 {
		t.Errorf("cross-encoder called %d times without documents, want 0", scorer.calls)
	}
}

func TestGrader_ScorerFailureIsFatal(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("cross-encoder down")}
	docs := []search.Document{{DocumentID: "doc-1", Description: "A", SimilarityScore: 0.5}}

	_, err := newTestGrader(scorer).Grade(context.Background(), "q", docs)
	if err == nil {
		t.Fatal("Grade() error = nil, want fatal rerank error")
	}
	if !strings.Contains(err.Error(), "cross-encoder down") {
		t.Errorf("error %q does not wrap the scorer failure", err)
	}
}

func TestGrader_TruncatesPassages(t *testing.T) {
	long := strings.Repeat("ă", 620)
	scorer := &fakeScorer{scores: []float64{0.9}}
	docs := []search.Document{{DocumentID: "doc-1", Description: long, SimilarityScore: 0.5}}

	if _, err := newTestGrader(scorer).Grade(context.Background(), "q", docs); err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if len(scorer.passages) != 1 {
		t.Fatalf("scored %d passages, want 1", len(scorer.passages))
	}
	if got := utf8.RuneCountInString(scorer.passages[0]); got != passagePreviewRunes {
		t.Errorf("passage length = %d runes, want %d", got, passagePreviewRunes)
	}
}

func TestGrader_DoesNotMutateInput(t *testing.T) {
	docs := []search.Document{
		{DocumentID: "doc-1", Description: "A", SimilarityScore: 0.5},
		{DocumentID: "doc-2", Description: "B", SimilarityScore: 0.5},
	}
	scorer := &fakeScorer{scores: []float64{0.3, 0.9}}

	if _, err := newTestGrader(scorer).Grade(context.Background(), "q", docs); err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if docs[0].RerankScore != 0 || docs[1].RerankScore != 0 {
		t.Error("Grade() mutated the caller's documents")
	}
	if docs[0].DocumentID != "doc-1" {
		t.Error("Grade() reordered the caller's documents")
	}
}
