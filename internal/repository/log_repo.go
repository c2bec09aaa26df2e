package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
	"github.com/Allono07/live-event-validation-netcore/internal/service"
)

// LogRepository handles database operations for stored event records
type LogRepository struct {
	pool *pgxpool.Pool
}

func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

const logColumns = "id, app_id, event_name, payload, payload_hash, validation_status, validation_results, created_at"

// Insert stores a new log entry and fills in its ID and creation time
func (r *LogRepository) Insert(ctx context.Context, entry *models.LogEntry) error {
	payloadJSON, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	resultsJSON, err := json.Marshal(entry.ValidationResults)
	if err != nil {
		return fmt.Errorf("marshal validation results: %w", err)
	}

	query := `
		INSERT INTO log_entries (app_id, event_name, payload, payload_hash, validation_status, validation_results)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		entry.AppID, entry.EventName, payloadJSON, entry.PayloadHash,
		entry.ValidationStatus, resultsJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// DeleteOlderSameEvent removes every record for (app, event name) except
// the one just inserted. Safe to retry: it never touches keepID.
func (r *LogRepository) DeleteOlderSameEvent(ctx context.Context, appID int64, eventName string, keepID int64) (int64, error) {
	query := `
		DELETE FROM log_entries
		WHERE app_id = $1 AND event_name = $2 AND id <> $3
	`
	ct, err := r.pool.Exec(ctx, query, appID, eventName, keepID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// LatestPerEvent returns the most recent record per distinct event name
// created at or after since.
func (r *LogRepository) LatestPerEvent(ctx context.Context, appID int64, since time.Time) ([]models.LogEntry, error) {
	query := `
		SELECT DISTINCT ON (event_name) ` + logColumns + `
		FROM log_entries
		WHERE app_id = $1 AND created_at >= $2
		ORDER BY event_name, created_at DESC, id DESC
	`
	rows, err := r.pool.Query(ctx, query, appID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLogEntries(rows)
}

// Filter returns matching log entries newest first, plus the total match
// count for pagination.
func (r *LogRepository) Filter(ctx context.Context, appID int64, f service.LogFilter) ([]models.LogEntry, int64, error) {
	cond := "WHERE app_id = $1"
	args := []any{appID}

	if !f.Since.IsZero() {
		args = append(args, f.Since)
		cond += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if f.EventName != "" {
		args = append(args, f.EventName)
		cond += fmt.Sprintf(" AND event_name = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		cond += fmt.Sprintf(" AND validation_status = $%d", len(args))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM log_entries "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + logColumns + " FROM log_entries " + cond + " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries, err := scanLogEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// CapturedEventNames returns the distinct event names captured for an app
func (r *LogRepository) CapturedEventNames(ctx context.Context, appID int64) ([]string, error) {
	query := `
		SELECT DISTINCT event_name
		FROM log_entries
		WHERE app_id = $1
		ORDER BY event_name
	`
	rows, err := r.pool.Query(ctx, query, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteBefore removes records created before the cutoff
func (r *LogRepository) DeleteBefore(ctx context.Context, appID int64, cutoff time.Time) (int64, error) {
	ct, err := r.pool.Exec(ctx,
		"DELETE FROM log_entries WHERE app_id = $1 AND created_at < $2",
		appID, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

type logRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanLogEntries(rows logRows) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	for rows.Next() {
		var entry models.LogEntry
		var payloadJSON, resultsJSON []byte
		if err := rows.Scan(
			&entry.ID, &entry.AppID, &entry.EventName, &payloadJSON,
			&entry.PayloadHash, &entry.ValidationStatus, &resultsJSON, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &entry.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload for log %d: %w", entry.ID, err)
			}
		}
		if len(resultsJSON) > 0 {
			if err := json.Unmarshal(resultsJSON, &entry.ValidationResults); err != nil {
				return nil, fmt.Errorf("unmarshal validation results for log %d: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
