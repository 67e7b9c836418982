package workflow

import (
	"github.com/vietbot-labs/ragcore/agents"
)

// ============================================================================
// DECISION ROUTER
// ============================================================================

// Route names the terminal stage a conversation turn is dispatched to once
// the parallel analysis branches have reported.
type Route string

const (
	RouteChatter       Route = "chatter"
	RouteReporter      Route = "reporter"
	RouteOther         Route = "other"
	RouteFAQAnswer     Route = "faq_answer"
	RouteGrader        Route = "grader"
	RouteNotEnoughInfo Route = "not_enough_info"
)

// Decide picks the terminal route for a turn. The rules apply in strict
// priority order:
//
//  1. A non-FAQ classification wins outright. Complaints, outage reports and
//     off-topic chatter are answered directly no matter what the document
//     branches found.
//  2. A direct FAQ hit terminates the turn with the stored or synthesized
//     answer.
//  3. Any retrieved candidates, even ones that missed the similarity floor,
//     go to the grader. Its cross-encoder makes the final relevance call.
//  4. With nothing retrieved at all, the turn is answered from general
//     knowledge with an explicit disclaimer.
func Decide(classification agents.Classification, faq agents.FAQResult, retrieval agents.RetrievalResult) Route {
	switch classification.Label {
	case agents.LabelChatter:
		return RouteChatter
	case agents.LabelReporter:
		return RouteReporter
	case agents.LabelOther:
		return RouteOther
	}

	if faq.Status == agents.StatusSuccess {
		return RouteFAQAnswer
	}

	if len(retrieval.Documents) > 0 {
		return RouteGrader
	}

	return RouteNotEnoughInfo
}
