package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/vietbot-labs/ragcore/config"
)

// SchemaCmd generates a JSON Schema from the config structs, for
// editor completion and deployment-time validation. Output goes to
// stdout so it can be redirected.
type SchemaCmd struct {
	Compact bool `short:"c" help:"Compact JSON output (no indentation)."`
}

func (c *SchemaCmd) Run(cli *CLI) error {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&config.Config{})

	schema.ID = "https://vietbot-labs.github.io/ragcore/schemas/config.json"
	schema.Title = "ragcore Configuration Schema"
	schema.Description = "Configuration schema for the ragcore RAG chat service"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	schema.Examples = []interface{}{
		map[string]interface{}{
			"llm": map[string]interface{}{
				"provider": "ollama",
				"base_url": "http://localhost:11434",
				"model":    "qwen2.5:7b",
			},
			"vectorstore": map[string]interface{}{
				"provider":            "milvus",
				"host":                "localhost",
				"port":                19530,
				"document_collection": "document_embeddings",
				"faq_collection":      "faq_embeddings",
			},
		},
	}

	encoder := json.NewEncoder(os.Stdout)
	if !c.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(schema); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	return nil
}
