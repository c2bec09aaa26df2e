package service

import (
	"context"
	"time"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
)

// AppStore provides app registry lookups. A nil app with a nil error
// means the app does not exist.
type AppStore interface {
	GetByAppID(ctx context.Context, appID string) (*models.App, error)
	Create(ctx context.Context, app *models.App) error
	List(ctx context.Context) ([]models.App, error)
}

// RuleStore holds the field rules per (app, event name).
type RuleStore interface {
	GetByEvent(ctx context.Context, appID int64, eventName string) ([]models.FieldRule, error)
	GetByApp(ctx context.Context, appID int64) ([]models.FieldRule, error)
	EventNames(ctx context.Context, appID int64) ([]string, error)
	// ReplaceForApp atomically deletes the app's prior rules and inserts
	// the new set; on error nothing is changed.
	ReplaceForApp(ctx context.Context, appID int64, rules []models.FieldRule) (deleted int64, err error)
}

// LogFilter narrows log queries.
type LogFilter struct {
	EventName string
	Status    string
	Since     time.Time
	Limit     int
	Offset    int
}

// LogStore is the durable event store. Insert assigns ID and CreatedAt.
type LogStore interface {
	Insert(ctx context.Context, entry *models.LogEntry) error
	// DeleteOlderSameEvent removes every record for (app, event name)
	// except keepID, and returns how many were removed.
	DeleteOlderSameEvent(ctx context.Context, appID int64, eventName string, keepID int64) (int64, error)
	// LatestPerEvent returns the most recent record per distinct event
	// name created at or after since.
	LatestPerEvent(ctx context.Context, appID int64, since time.Time) ([]models.LogEntry, error)
	Filter(ctx context.Context, appID int64, f LogFilter) ([]models.LogEntry, int64, error)
	CapturedEventNames(ctx context.Context, appID int64) ([]string, error)
	DeleteBefore(ctx context.Context, appID int64, cutoff time.Time) (int64, error)
}
