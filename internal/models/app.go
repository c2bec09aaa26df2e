package models

import "time"

// App is a registered application whose telemetry is being monitored.
type App struct {
	ID          int64      `json:"id"`
	AppID       string     `json:"app_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Platform    string     `json:"platform"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
