package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
)

// AppRepository handles database operations for registered apps
type AppRepository struct {
	pool *pgxpool.Pool
}

func NewAppRepository(pool *pgxpool.Pool) *AppRepository {
	return &AppRepository{pool: pool}
}

// GetByAppID fetches an app by its public identifier. Returns (nil, nil)
// when no such app exists.
func (r *AppRepository) GetByAppID(ctx context.Context, appID string) (*models.App, error) {
	query := `
		SELECT id, app_id, name, description, platform, is_active, created_at, updated_at
		FROM apps
		WHERE app_id = $1
	`

	var app models.App
	err := r.pool.QueryRow(ctx, query, appID).Scan(
		&app.ID, &app.AppID, &app.Name, &app.Description,
		&app.Platform, &app.IsActive, &app.CreatedAt, &app.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Create inserts a new app and fills in its generated ID and timestamps
func (r *AppRepository) Create(ctx context.Context, app *models.App) error {
	query := `
		INSERT INTO apps (app_id, name, description, platform, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		app.AppID, app.Name, app.Description, app.Platform, app.IsActive,
	).Scan(&app.ID, &app.CreatedAt)
}

// List returns all apps, newest first
func (r *AppRepository) List(ctx context.Context) ([]models.App, error) {
	query := `
		SELECT id, app_id, name, description, platform, is_active, created_at, updated_at
		FROM apps
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.App
	for rows.Next() {
		var app models.App
		if err := rows.Scan(
			&app.ID, &app.AppID, &app.Name, &app.Description,
			&app.Platform, &app.IsActive, &app.CreatedAt, &app.UpdatedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}
