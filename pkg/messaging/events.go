package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventResumeParsed = "resume.parsed"
	EventResumeFailed = "resume.failed"
)

// Exchange names
const (
	ExchangeResumeEvents = "resume.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Resume Events

// ResumeParsedEvent is published when a run reaches the done stage.
// The structured record itself is not part of the event.
type ResumeParsedEvent struct {
	JobID      string `json:"job_id,omitempty"`
	FileName   string `json:"file_name"`
	Strategy   string `json:"strategy"`
	TextLength int    `json:"text_length"`
	Warnings   int    `json:"warnings"`
	DurationMS int64  `json:"duration_ms"`
}

// ResumeFailedEvent is published when a run ends in the failed stage
type ResumeFailedEvent struct {
	JobID      string `json:"job_id,omitempty"`
	FileName   string `json:"file_name"`
	Strategy   string `json:"strategy,omitempty"`
	ErrorKind  string `json:"error_kind"`
	Message    string `json:"message"`
	Stage      string `json:"stage"`
	DurationMS int64  `json:"duration_ms"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
