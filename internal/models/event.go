package models

import "time"

// EventType is the closed set of tags an Event may carry. The sink
// decides framing (SSE, websocket, log line); the core never couples
// emission to a transport.
type EventType string

const (
	EventStatus         EventType = "status"
	EventThought        EventType = "thought"
	EventWorkerStart    EventType = "worker_start"
	EventWorkerUpdate   EventType = "worker_update"
	EventWorkerComplete EventType = "worker_complete"
	EventLeadBatch      EventType = "lead_batch"
	EventCompleted      EventType = "completed"
	EventCancelled      EventType = "cancelled"
	EventError          EventType = "error"
)

// Event is a tagged union streamed to the job's subscriber. Timestamp is
// monotonically non-decreasing across a single job's event stream.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source,omitempty"` // source_platform tag, for worker_* events
	Message   string      `json:"message,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LeadBatchPayload is the Payload carried by a lead_batch event.
type LeadBatchPayload struct {
	SourcePlatform string `json:"source_platform"`
	Leads          []Lead `json:"leads"`
}

// CompletedPayload is the Payload carried by a completed event.
type CompletedPayload struct {
	Result RunResult `json:"result"`
}
