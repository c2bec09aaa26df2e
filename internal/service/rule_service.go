package service

import (
	"context"
	"io"

	"go.uber.org/zap"

	apperrors "github.com/Allono07/live-event-validation-netcore/internal/errors"
	"github.com/Allono07/live-event-validation-netcore/internal/models"
	"github.com/Allono07/live-event-validation-netcore/internal/rules"
)

// RuleService manages the validation rule sets uploaded per app.
type RuleService struct {
	apps   AppStore
	rules  RuleStore
	logger *zap.Logger
}

func NewRuleService(apps AppStore, ruleStore RuleStore, logger *zap.Logger) *RuleService {
	return &RuleService{apps: apps, rules: ruleStore, logger: logger}
}

// UploadResult summarizes a rules upload.
type UploadResult struct {
	RulesCount   int      `json:"rules_count"`
	DeletedCount int64    `json:"deleted_count"`
	SkippedRows  int      `json:"skipped_rows"`
	EventNames   []string `json:"event_names"`
}

// UploadRules parses a rule definition CSV and replaces the app's entire
// rule set with it. Parsing happens before any deletion: a CSV that
// yields zero rules leaves the existing schema untouched.
func (s *RuleService) UploadRules(ctx context.Context, appID string, csvContent io.Reader) (*UploadResult, error) {
	app, err := s.apps.GetByAppID(ctx, appID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("App not found")
	}

	parsed, err := rules.Parse(csvContent)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if len(parsed.Rules) == 0 {
		return nil, apperrors.NewValidationError("No valid rules found in CSV")
	}

	deleted, err := s.rules.ReplaceForApp(ctx, app.ID, parsed.Rules)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("validation rules replaced",
		zap.String("app_id", appID),
		zap.Int("rules", len(parsed.Rules)),
		zap.Int64("deleted", deleted),
		zap.Int("skipped_rows", parsed.Skipped))

	return &UploadResult{
		RulesCount:   len(parsed.Rules),
		DeletedCount: deleted,
		SkippedRows:  parsed.Skipped,
		EventNames:   parsed.EventNames,
	}, nil
}

// AppRules lists all rules configured for an app.
func (s *RuleService) AppRules(ctx context.Context, appID string) ([]models.FieldRule, error) {
	app, err := s.apps.GetByAppID(ctx, appID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("App not found")
	}
	fieldRules, err := s.rules.GetByApp(ctx, app.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return fieldRules, nil
}
