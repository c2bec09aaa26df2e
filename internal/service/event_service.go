package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/Allono07/live-event-validation-netcore/internal/errors"
	"github.com/Allono07/live-event-validation-netcore/internal/models"
	"github.com/Allono07/live-event-validation-netcore/internal/validator"
)

// EventService validates incoming events against the app's schema and
// persists the outcome, keeping only the latest record per event name.
type EventService struct {
	apps      AppStore
	rules     RuleStore
	logs      LogStore
	validator *validator.Validator
	logger    *zap.Logger
}

func NewEventService(apps AppStore, rules RuleStore, logs LogStore, v *validator.Validator, logger *zap.Logger) *EventService {
	return &EventService{
		apps:      apps,
		rules:     rules,
		logs:      logs,
		validator: v,
		logger:    logger,
	}
}

// ProcessResult is the ingestion acknowledgment for one event.
type ProcessResult struct {
	LogID             int64            `json:"log_id"`
	EventName         string           `json:"event_name"`
	Status            string           `json:"status"`
	Verdicts          []models.Verdict `json:"validation_results"`
	DuplicatesRemoved int64            `json:"duplicates_removed"`
}

// ProcessEvent runs the full ingestion pipeline for one raw event
// envelope: app lookup, envelope extraction, validation (or the fallback
// path when no rules exist), content hashing, storage, and pruning of
// older records for the same event name.
//
// Validation problems surface through the stored verdicts, never as an
// error return; only unknown apps, malformed envelopes, and storage
// failures fail the call.
func (s *EventService) ProcessEvent(ctx context.Context, appID string, raw map[string]interface{}) (*ProcessResult, error) {
	app, err := s.apps.GetByAppID(ctx, appID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("App not found")
	}

	eventName, payload, ok := models.ExtractEvent(raw)
	if !ok {
		return nil, apperrors.NewValidationError("Missing eventName in log data")
	}

	fieldRules, err := s.rules.GetByEvent(ctx, app.ID, eventName)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	status, verdicts := s.safeValidate(eventName, payload, fieldRules)

	hash, err := ContentHash(eventName, payload)
	if err != nil {
		// Unhashable payloads still get stored; they just never
		// participate in hash-based identity.
		s.logger.Warn("content hash failed", zap.String("event_name", eventName), zap.Error(err))
		hash = ""
	}

	entry := &models.LogEntry{
		AppID:             app.ID,
		EventName:         eventName,
		Payload:           payload,
		PayloadHash:       hash,
		ValidationStatus:  status,
		ValidationResults: verdicts,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	// Keep only the latest record per (app, event name). Pruning targets
	// strictly other rows than the one just inserted, so a retry after a
	// partial failure is harmless.
	removed, err := s.logs.DeleteOlderSameEvent(ctx, app.ID, eventName, entry.ID)
	if err != nil {
		s.logger.Warn("dedup prune failed",
			zap.String("event_name", eventName),
			zap.Int64("log_id", entry.ID),
			zap.Error(err))
		removed = 0
	}

	s.logger.Info("event processed",
		zap.String("app_id", appID),
		zap.String("event_name", eventName),
		zap.String("status", status),
		zap.Int64("log_id", entry.ID),
		zap.Int64("duplicates_removed", removed))

	return &ProcessResult{
		LogID:             entry.ID,
		EventName:         eventName,
		Status:            status,
		Verdicts:          verdicts,
		DuplicatesRemoved: removed,
	}, nil
}

// safeValidate guards the validation engine: a panic inside it becomes a
// stored "error" outcome with the message attached, never a failed
// ingestion.
func (s *EventService) safeValidate(eventName string, payload map[string]interface{}, fieldRules []models.FieldRule) (status string, verdicts []models.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("validation engine panic",
				zap.String("event_name", eventName),
				zap.Any("panic", r))
			status = models.StatusError
			verdicts = []models.Verdict{{
				EventName:        eventName,
				ValidationStatus: models.StatusError,
				Comment:          fmt.Sprintf("validation error: %v", r),
			}}
		}
	}()
	return s.validator.Validate(eventName, payload, fieldRules)
}
