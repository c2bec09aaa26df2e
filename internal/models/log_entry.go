package models

import "time"

// Overall validation statuses for a stored log entry.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Verdict is the validation outcome for a single payload field (or array
// element) of one event instance.
type Verdict struct {
	EventName        string      `json:"eventName"`
	Key              string      `json:"key"`
	Value            interface{} `json:"value"`
	ExpectedType     string      `json:"expectedType"`
	ReceivedType     string      `json:"receivedType"`
	ValidationStatus string      `json:"validationStatus"`
	Comment          string      `json:"comment,omitempty"`
}

// LogEntry is one received event instance with its validation outcome.
// PayloadHash fingerprints the business-relevant content (event name +
// inner payload) and excludes envelope metadata, so repeats of the same
// logical event hash identically.
type LogEntry struct {
	ID                int64                  `json:"id"`
	AppID             int64                  `json:"app_id"`
	EventName         string                 `json:"event_name"`
	Payload           map[string]interface{} `json:"payload"`
	PayloadHash       string                 `json:"payload_hash,omitempty"`
	ValidationStatus  string                 `json:"validation_status"`
	ValidationResults []Verdict              `json:"validation_results"`
	CreatedAt         time.Time              `json:"created_at"`
}
