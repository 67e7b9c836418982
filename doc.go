// Package ragcore is a Vietnamese-language multi-agent RAG chatbot service.
//
// A question entering the service is analyzed by three branches running in
// parallel: a classifier that labels the request and resolves follow-up
// context, an FAQ responder that checks the curated FAQ collection, and a
// document retriever that searches the knowledge base. A decision router
// then dispatches the turn to one of nine agents, from direct FAQ answers
// through graded document generation to responders for complaints, outage
// reports and out-of-scope requests.
//
// # Quick Start
//
// Install the binary:
//
//	go install github.com/vietbot-labs/ragcore/cmd/ragcore@latest
//
// Write a configuration:
//
//	llm:
//	  provider: "ollama"
//	  base_url: "http://localhost:11434"
//	  model: "qwen2.5:7b"
//
//	vectorstore:
//	  provider: "milvus"
//	  host: "localhost"
//	  port: 19530
//
// Start the server:
//
//	ragcore serve --config ragcore.yaml
//
// Then POST questions to /chat, optionally with "stream": true for a
// Server-Sent Events answer stream.
//
// # Packages
//
// Import specific packages when embedding the service:
//
//	import (
//	    "github.com/vietbot-labs/ragcore/agents"
//	    "github.com/vietbot-labs/ragcore/workflow"
//	    "github.com/vietbot-labs/ragcore/server"
//	)
//
// The workflow package exposes the turn engine; the server package wraps
// it in the HTTP surface (REST + SSE, health, metrics).
package ragcore
