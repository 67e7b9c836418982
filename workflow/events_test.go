package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietbot-labs/ragcore/agents"
)

// Clients decode every frame into one shape, so unused fields must
// marshal as explicit nulls.
func TestEventWireShapes(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "start",
			event: StartEvent(),
			want:  `{"type":"start","content":null,"references":null,"status":"processing"}`,
		},
		{
			name:  "chunk",
			event: ChunkEvent("xin chào "),
			want:  `{"type":"chunk","content":"xin chào ","references":null,"status":null}`,
		},
		{
			name: "references",
			event: ReferencesEvent([]agents.Reference{
				{DocumentID: "doc-1", Type: agents.ReferenceDocument, RerankScore: 0.91, SimilarityScore: 0.82},
			}),
			want: `{"type":"references","content":null,"references":[{"document_id":"doc-1","type":"DOCUMENT","rerank_score":0.91,"similarity_score":0.82}],"status":null}`,
		},
		{
			name:  "end",
			event: EndEvent(agents.StatusSuccess),
			want:  `{"type":"end","content":null,"references":null,"status":"SUCCESS"}`,
		},
		{
			name:  "error",
			event: ErrorEvent("Xin lỗi, hệ thống gặp sự cố. Vui lòng thử lại sau."),
			want:  `{"type":"error","content":"Xin lỗi, hệ thống gặp sự cố. Vui lòng thử lại sau.","references":null,"status":"ERROR"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}
