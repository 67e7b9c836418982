package workflow

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietbot-labs/ragcore/agents"
	"github.com/vietbot-labs/ragcore/conversation"
)

// ============================================================================
// PARALLEL ANALYSIS
// ============================================================================

// analysis bundles the three branch verdicts the router decides on.
type analysis struct {
	classification agents.Classification
	faq            agents.FAQResult
	retrieval      agents.RetrievalResult
}

// fanOut runs the classifier, FAQ and retriever branches concurrently on
// the original question. A branch that misses its deadline is replaced by
// a neutral fallback so one slow dependency cannot stall the whole turn.
// Only a reranker failure in the FAQ branch can fail the run.
func (e *Engine) fanOut(ctx context.Context, question string, history []conversation.Turn) (analysis, error) {
	res := analysis{
		classification: agents.Classification{Label: agents.LabelFAQ, ContextualizedQuestion: question},
		faq:            agents.FAQResult{Status: agents.StatusNotFound},
		retrieval:      agents.RetrievalResult{Status: agents.StatusError},
	}

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	g.Go(func() error {
		c, err := runBranch(groupCtx, branchTimeout(e.cfg.ClassifierTimeout), res.classification,
			func(branchCtx context.Context) (agents.Classification, error) {
				return e.agents.Classifier.Classify(branchCtx, question, history), nil
			})
		if err != nil {
			return err
		}
		res.classification = c
		return nil
	})

	g.Go(func() error {
		// The FAQ branch sees the raw question; the contextualized form
		// is not available until the classifier branch finishes.
		f, err := runBranch(groupCtx, branchTimeout(e.cfg.FAQTimeout), res.faq,
			func(branchCtx context.Context) (agents.FAQResult, error) {
				return e.agents.FAQ.Answer(branchCtx, question, false, "")
			})
		if err != nil {
			return err
		}
		res.faq = f
		return nil
	})

	g.Go(func() error {
		r, err := runBranch(groupCtx, branchTimeout(e.cfg.RetrieverTimeout), res.retrieval,
			func(branchCtx context.Context) (agents.RetrievalResult, error) {
				return e.agents.Retriever.Retrieve(branchCtx, question), nil
			})
		if err != nil {
			return err
		}
		res.retrieval = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return analysis{}, err
	}
	return res, nil
}

func branchTimeout(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// runBranch executes fn under its own deadline and yields fallback when
// that deadline passes. An error is surfaced only while the branch context
// is still live; once the deadline has expired, whatever the aborted call
// returns is discarded in favor of the fallback.
func runBranch[T any](ctx context.Context, timeout time.Duration, fallback T, fn func(context.Context) (T, error)) (T, error) {
	branchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		value, err := fn(branchCtx)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		// Outcomes that land after the deadline lost the race even when
		// both select cases are ready, so the fallback stays deterministic.
		if branchCtx.Err() != nil {
			return fallback, nil
		}
		if out.err != nil {
			var zero T
			return zero, out.err
		}
		return out.value, nil
	case <-branchCtx.Done():
		return fallback, nil
	}
}
