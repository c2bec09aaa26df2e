package models

import "time"

// Supported rule data types. Anything else in an uploaded CSV is coerced
// to "text" by the rule loader.
const (
	TypeText    = "text"
	TypeDate    = "date"
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeBoolean = "boolean"
)

// Condition is an optional conditional check attached to a field rule:
// when the payload's IfField equals IfValue, ThenField must be present
// and of type ThenType.
type Condition struct {
	IfField   string      `json:"if_field"`
	IfValue   interface{} `json:"if_value"`
	ThenField string      `json:"then_field"`
	ThenType  string      `json:"then_type"`
}

// Empty reports whether the condition carries no trigger.
func (c *Condition) Empty() bool {
	return c == nil || (c.IfField == "" && c.ThenField == "")
}

// FieldRule is one field's expected type/required spec for a given
// (app, event name) pair. FieldName may address nested payload values
// with dots ("user.city") or array elements ("items[].price").
type FieldRule struct {
	ID         int64      `json:"id,omitempty"`
	AppID      int64      `json:"app_id,omitempty"`
	EventName  string     `json:"event_name"`
	FieldName  string     `json:"field_name"`
	DataType   string     `json:"data_type"`
	IsRequired bool       `json:"is_required"`
	Condition  *Condition `json:"condition,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
}
