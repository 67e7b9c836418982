// Package workflow executes one conversation turn end to end: three
// analysis branches run in parallel on the incoming question, a router
// picks the terminal agent from their verdicts, and that agent's answer
// is relayed to the caller as a stream of events or as one buffered
// answer.
package workflow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vietbot-labs/ragcore/agents"
	"github.com/vietbot-labs/ragcore/config"
	"github.com/vietbot-labs/ragcore/conversation"
)

// ============================================================================
// WORKFLOW ENGINE
// ============================================================================

// Agents bundles the nine agents the engine routes between.
type Agents struct {
	Classifier    *agents.Classifier
	FAQ           *agents.FAQResponder
	Retriever     *agents.Retriever
	Grader        *agents.Grader
	Generator     *agents.Generator
	Chatter       *agents.Chatter
	Reporter      *agents.Reporter
	Other         *agents.Other
	NotEnoughInfo *agents.NotEnoughInfo
}

// Engine coordinates the agents for single conversation turns. It holds
// no per-turn state, so one engine serves concurrent requests.
type Engine struct {
	agents Agents
	cfg    *config.WorkflowConfig
}

func NewEngine(ag Agents, cfg *config.WorkflowConfig) *Engine {
	return &Engine{agents: ag, cfg: cfg}
}

// emitFn delivers one event to the caller. A false return means the
// caller is gone and the run should stop producing.
type emitFn func(Event) bool

// RunStreaming executes a turn and delivers it as a stream of events.
// The channel closes when the turn completes, fails, or ctx ends. A
// failed run emits a single error event with a user-facing message; the
// cause goes to the log.
func (e *Engine) RunStreaming(ctx context.Context, question string, history []conversation.Turn) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		emit := func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		if err := e.execute(ctx, question, history, emit); err != nil {
			slog.Error("Workflow run failed", "error", err)
			emit(ErrorEvent(pipelineFailureAnswer))
		}
	}()
	return events
}

// Run executes a turn and buffers the whole answer. The answer text is
// exactly the concatenation of the chunks a streamed run would emit.
func (e *Engine) Run(ctx context.Context, question string, history []conversation.Turn) (Answer, error) {
	var (
		text   strings.Builder
		refs   []agents.Reference
		status = agents.StatusError
	)
	emit := func(ev Event) bool {
		switch ev.Type {
		case EventChunk:
			if ev.Content != nil {
				text.WriteString(*ev.Content)
			}
		case EventReferences:
			refs = ev.References
		case EventEnd:
			if ev.Status != nil {
				status = *ev.Status
			}
		}
		return true
	}
	if err := e.execute(ctx, question, history, emit); err != nil {
		return Answer{}, err
	}
	return Answer{Answer: text.String(), References: refs, Status: status}, nil
}

// execute is the turn pipeline shared by Run and RunStreaming.
func (e *Engine) execute(ctx context.Context, question string, history []conversation.Turn, emit emitFn) error {
	if !emit(StartEvent()) {
		return nil
	}

	res, err := e.fanOut(ctx, question, history)
	if err != nil {
		return err
	}

	route := Decide(res.classification, res.faq, res.retrieval)
	slog.Info("Routing decision",
		"route", route,
		"label", res.classification.Label,
		"faq_status", res.faq.Status,
		"retrieval_status", res.retrieval.Status,
		"candidates", len(res.retrieval.Documents))

	// Terminal agents work on the contextualized question so follow-ups
	// like "còn cái thứ hai?" keep their subject.
	question = res.classification.ContextualizedQuestion

	var answer agents.StreamedAnswer
	switch route {
	case RouteChatter:
		answer = e.agents.Chatter.Respond(ctx, question, history)
	case RouteReporter:
		answer = e.agents.Reporter.Respond(ctx)
	case RouteOther:
		answer = e.agents.Other.Respond(ctx, question)
	case RouteFAQAnswer:
		answer = agents.StreamedAnswer{
			Chunks:     agents.BufferedAnswer(res.faq.Answer),
			References: res.faq.References,
			Status:     res.faq.Status,
		}
	case RouteGrader:
		grade, err := e.agents.Grader.Grade(ctx, question, res.retrieval.Documents)
		if err != nil {
			return err
		}
		if grade.Status == agents.StatusInsufficient {
			answer = e.agents.NotEnoughInfo.Respond(ctx, question)
			break
		}
		answer = e.agents.Generator.Respond(ctx, agents.GeneratorInput{
			Question:       question,
			Documents:      grade.Qualified,
			References:     grade.References,
			History:        history,
			IsFollowUp:     res.classification.IsFollowUp,
			ContextSummary: res.classification.ContextSummary,
		})
	default:
		answer = e.agents.NotEnoughInfo.Respond(ctx, question)
	}

	relay(answer, emit)
	return nil
}

// relay pumps a terminal agent's answer to the caller: its chunks in
// order, its references when it has any, then the closing status.
func relay(answer agents.StreamedAnswer, emit emitFn) {
	for chunk := range answer.Chunks {
		if !emit(ChunkEvent(chunk)) {
			for range answer.Chunks {
			}
			return
		}
	}
	if len(answer.References) > 0 && !emit(ReferencesEvent(answer.References)) {
		return
	}
	emit(EndEvent(answer.Status))
}
