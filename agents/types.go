// Package agents implements the nine conversational agents the workflow
// routes between: the classifier, the FAQ responder, the document
// retriever/grader/generator pipeline, and the terminal responders for
// chatter, system reports, out-of-scope requests, and missing
// information.
package agents

import (
	"context"
	"math"

	"github.com/vietbot-labs/ragcore/search"
)

// ============================================================================
// SHARED TYPES
// ============================================================================

// Routing labels produced by the classifier.
const (
	LabelFAQ      = "FAQ"
	LabelChatter  = "CHATTER"
	LabelReporter = "REPORTER"
	LabelOther    = "OTHER"
)

// Result statuses carried through the pipeline and into responses.
const (
	StatusSuccess      = "SUCCESS"
	StatusError        = "ERROR"
	StatusNotFound     = "NOT_FOUND"
	StatusSufficient   = "SUFFICIENT"
	StatusInsufficient = "INSUFFICIENT"
	StatusStreaming    = "STREAMING"
)

// Reference types attached to answers.
const (
	ReferenceDocument         = "DOCUMENT"
	ReferenceFAQ              = "FAQ"
	ReferenceSupport          = "SUPPORT"
	ReferenceSystem           = "SYSTEM"
	ReferenceGeneralKnowledge = "GENERAL_KNOWLEDGE"
)

// minAnswerRunes rejects degenerate model output; shorter replies are
// replaced by each agent's fallback text.
const minAnswerRunes = 10

// Reference points an answer back at its source material.
type Reference struct {
	DocumentID      string  `json:"document_id"`
	Type            string  `json:"type"`
	Description     string  `json:"description,omitempty"`
	RerankScore     float64 `json:"rerank_score,omitempty"`
	SimilarityScore float64 `json:"similarity_score,omitempty"`
}

// Classification is the classifier branch's verdict for one request.
type Classification struct {
	Label                  string
	ContextualizedQuestion string
	ContextSummary         string
	IsFollowUp             bool
	Reasoning              string
}

// FAQResult is the FAQ branch outcome. StatusNotFound means the branch
// deferred to document retrieval.
type FAQResult struct {
	Status     string
	Answer     string
	References []Reference
}

// RetrievalResult carries document candidates into grading. When no
// candidate clears the similarity floor the full candidate list is kept
// so the grader still gets a look.
type RetrievalResult struct {
	Status    string
	Documents []search.Document
}

// GradeResult is the grader's verdict over retrieved documents.
type GradeResult struct {
	Status     string
	Qualified  []search.Document
	References []Reference
}

// StreamedAnswer is a terminal agent's reply. Text arrives on Chunks in
// model order; references and status are fixed up front so callers can
// frame the stream.
type StreamedAnswer struct {
	Chunks     <-chan string
	References []Reference
	Status     string
}

// SearchService is the slice of the vector search layer the agents
// consume.
type SearchService interface {
	SearchDocuments(ctx context.Context, query string, topK int) ([]search.Document, error)
	SearchFAQs(ctx context.Context, query string, topK int) ([]search.FAQ, error)
	CheckConnection(ctx context.Context) (bool, map[string]int)
}

// Scorer scores (query, passage) pairs with the cross-encoder.
type Scorer interface {
	Score(ctx context.Context, query string, passages []string) ([]float64, error)
}

// roundScore trims scores to four decimals for reference payloads
func roundScore(v float64) float64 {
	return math.Round(v*10000) / 10000
}
