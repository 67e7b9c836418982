package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/vietbot-labs/ragcore/agents"
	"github.com/vietbot-labs/ragcore/conversation"
	"github.com/vietbot-labs/ragcore/utils"
	"github.com/vietbot-labs/ragcore/workflow"
)

// AskCmd answers one question from the command line, without the HTTP
// server. Useful for smoke-testing a deployment's config.
type AskCmd struct {
	Question string `arg:"" help:"Question to answer."`
	Stream   bool   `default:"true" negatable:"" help:"Print tokens as they arrive (use --no-stream for the buffered answer)."`
	History  string `help:"Path to a JSON file with prior turns ([{role, content}, ...])." type:"path"`
}

func (c *AskCmd) Run(cli *CLI) error {
	ctx := context.Background()

	if ok, msg := utils.ValidateQuestion(c.Question); !ok {
		return fmt.Errorf("%s", msg)
	}

	history, err := loadHistory(c.History)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	pl, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer pl.Close()

	if !c.Stream {
		answer, err := pl.engine.Run(ctx, c.Question, history)
		if err != nil {
			return err
		}
		fmt.Println(answer.Answer)
		printReferences(answer.References)
		return nil
	}

	var refs []agents.Reference
	for event := range pl.engine.RunStreaming(ctx, c.Question, history) {
		switch event.Type {
		case workflow.EventChunk:
			if event.Content != nil {
				fmt.Print(*event.Content)
			}
		case workflow.EventReferences:
			refs = append(refs, event.References...)
		case workflow.EventError:
			if event.Content != nil {
				fmt.Fprintln(os.Stderr, *event.Content)
			}
		}
	}
	fmt.Println()
	printReferences(refs)
	return nil
}

// loadHistory reads prior turns from a JSON file. An empty path means
// no history.
func loadHistory(path string) ([]conversation.Turn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}
	var turns []conversation.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return turns, nil
}

func printReferences(refs []agents.Reference) {
	if len(refs) == 0 {
		return
	}
	dim, reset := "", ""
	if term.IsTerminal(int(os.Stdout.Fd())) {
		dim, reset = "\033[90m", "\033[0m"
	}
	fmt.Printf("%sNguồn tham khảo:%s\n", dim, reset)
	for _, ref := range refs {
		fmt.Printf("%s  - [%s] %s%s\n", dim, ref.Type, ref.DocumentID, reset)
	}
}
