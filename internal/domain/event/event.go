package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain event about one submission (or a batch, when
// SubmissionID is empty)
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	FormType      string                 `json:"form_type"`
	SubmissionID  string                 `json:"submission_id,omitempty"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates an event with a fresh ID that starts its own correlation chain
func NewEvent(eventType Type, formType, submissionID string, payload map[string]interface{}) *Event {
	id := uuid.NewString()
	return &Event{
		ID:            id,
		Type:          eventType,
		FormType:      formType,
		SubmissionID:  submissionID,
		Payload:       copyPayload(payload, 0),
		Timestamp:     time.Now(),
		CorrelationID: id,
	}
}

// Follow creates an event in the same correlation chain as e
func (e *Event) Follow(eventType Type, payload map[string]interface{}) *Event {
	next := NewEvent(eventType, e.FormType, e.SubmissionID, payload)
	next.CorrelationID = e.CorrelationID
	return next
}

// WithPayload returns a copy of the event with key set; e is not modified
func (e *Event) WithPayload(key string, value interface{}) *Event {
	clone := *e
	clone.Payload = copyPayload(e.Payload, 1)
	clone.Payload[key] = value
	return &clone
}

// GetPayloadString returns a string payload value or ""
func (e *Event) GetPayloadString(key string) string {
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}

// GetPayloadBool returns a bool payload value or false
func (e *Event) GetPayloadBool(key string) bool {
	b, _ := e.Payload[key].(bool)
	return b
}

// GetPayloadInt returns an integer payload value, accepting JSON float64
func (e *Event) GetPayloadInt(key string) int64 {
	switch v := e.Payload[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func copyPayload(p map[string]interface{}, extra int) map[string]interface{} {
	out := make(map[string]interface{}, len(p)+extra)
	for k, v := range p {
		out[k] = v
	}
	return out
}
