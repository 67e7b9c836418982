package workflow

import (
	"github.com/vietbot-labs/ragcore/agents"
)

// ============================================================================
// STREAM EVENTS
// ============================================================================

// Event types carried on a workflow stream, in emission order.
const (
	EventStart      = "start"
	EventChunk      = "chunk"
	EventReferences = "references"
	EventEnd        = "end"
	EventError      = "error"
)

// statusProcessing marks the opening event of a stream; terminal events
// carry an answer status from the agents package instead.
const statusProcessing = "processing"

// pipelineFailureAnswer is the only text shown to users when the workflow
// itself breaks. The underlying cause goes to the log, never to the client.
const pipelineFailureAnswer = "Xin lỗi, hệ thống gặp sự cố. Vui lòng thử lại sau."

// Event is a single frame of a streamed answer. Every frame carries all
// four fields so clients can decode one shape; unused fields are null.
type Event struct {
	Type       string             `json:"type"`
	Content    *string            `json:"content"`
	References []agents.Reference `json:"references"`
	Status     *string            `json:"status"`
}

// Answer is the buffered form of a workflow run: the concatenation of every
// chunk a streamed run would have produced, plus its references and status.
type Answer struct {
	Answer     string             `json:"answer"`
	References []agents.Reference `json:"references"`
	Status     string             `json:"status"`
}

func StartEvent() Event {
	return Event{Type: EventStart, Status: ptr(statusProcessing)}
}

func ChunkEvent(text string) Event {
	return Event{Type: EventChunk, Content: ptr(text)}
}

func ReferencesEvent(refs []agents.Reference) Event {
	return Event{Type: EventReferences, References: refs}
}

func EndEvent(status string) Event {
	return Event{Type: EventEnd, Status: ptr(status)}
}

func ErrorEvent(message string) Event {
	return Event{Type: EventError, Content: ptr(message), Status: ptr(agents.StatusError)}
}

func ptr(s string) *string {
	return &s
}
