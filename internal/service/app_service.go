package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/Allono07/live-event-validation-netcore/internal/errors"
	"github.com/Allono07/live-event-validation-netcore/internal/models"
)

// AppService manages the registry of monitored applications.
type AppService struct {
	apps   AppStore
	logger *zap.Logger
}

func NewAppService(apps AppStore, logger *zap.Logger) *AppService {
	return &AppService{apps: apps, logger: logger}
}

// CreateApp registers a new app. With no custom ID a random one is
// generated.
func (s *AppService) CreateApp(ctx context.Context, name, description, platform, customAppID string) (*models.App, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("App name is required")
	}

	appID := strings.TrimSpace(customAppID)
	if appID == "" {
		appID = uuid.NewString()
	} else {
		existing, err := s.apps.GetByAppID(ctx, appID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if existing != nil {
			return nil, apperrors.NewValidationError("App ID already exists")
		}
	}

	if platform == "" {
		platform = "android"
	}

	app := &models.App{
		AppID:       appID,
		Name:        name,
		Description: description,
		Platform:    platform,
		IsActive:    true,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("app created", zap.String("app_id", appID), zap.String("name", name))
	return app, nil
}

// GetApp fetches one app by its public ID.
func (s *AppService) GetApp(ctx context.Context, appID string) (*models.App, error) {
	app, err := s.apps.GetByAppID(ctx, appID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("App not found")
	}
	return app, nil
}

// ListApps returns all registered apps.
func (s *AppService) ListApps(ctx context.Context) ([]models.App, error) {
	apps, err := s.apps.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return apps, nil
}
