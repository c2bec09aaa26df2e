package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
)

// RuleRepository handles database operations for validation rules
type RuleRepository struct {
	pool *pgxpool.Pool
}

func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

const ruleColumns = "id, app_id, event_name, field_name, data_type, is_required, condition, created_at"

// GetByEvent returns the rules for one event name in insertion order
func (r *RuleRepository) GetByEvent(ctx context.Context, appID int64, eventName string) ([]models.FieldRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM validation_rules
		WHERE app_id = $1 AND event_name = $2
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, appID, eventName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

// GetByApp returns all rules for an app in insertion order
func (r *RuleRepository) GetByApp(ctx context.Context, appID int64) ([]models.FieldRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM validation_rules
		WHERE app_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

// EventNames returns the distinct event names the schema covers
func (r *RuleRepository) EventNames(ctx context.Context, appID int64) ([]string, error) {
	query := `
		SELECT DISTINCT event_name
		FROM validation_rules
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

// ReplaceForApp swaps the app's entire rule set inside one transaction,
// so concurrent validations never observe the deleted-but-not-reinserted
// window.
func (r *RuleRepository) ReplaceForApp(ctx context.Context, appID int64, rules []models.FieldRule) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx, "DELETE FROM validation_rules WHERE app_id = $1", appID)
	if err != nil {
		return 0, err
	}
	deleted := ct.RowsAffected()

	insert := `
		INSERT INTO validation_rules (app_id, event_name, field_name, data_type, is_required, condition)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, rule := range rules {
		var condJSON []byte
		if !rule.Condition.Empty() {
			condJSON, err = json.Marshal(rule.Condition)
			if err != nil {
				return 0, err
			}
		}
		if _, err := tx.Exec(ctx, insert,
			appID, rule.EventName, rule.FieldName, rule.DataType, rule.IsRequired, condJSON,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return deleted, nil
}

type ruleRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRules(rows ruleRows) ([]models.FieldRule, error) {
	var rules []models.FieldRule
	for rows.Next() {
		var rule models.FieldRule
		var condJSON []byte
		if err := rows.Scan(
			&rule.ID, &rule.AppID, &rule.EventName, &rule.FieldName,
			&rule.DataType, &rule.IsRequired, &condJSON, &rule.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(condJSON) > 0 {
			var cond models.Condition
			if err := json.Unmarshal(condJSON, &cond); err == nil && !cond.Empty() {
				rule.Condition = &cond
			}
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
