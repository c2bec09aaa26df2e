package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/Allono07/live-event-validation-netcore/internal/errors"
	"github.com/Allono07/live-event-validation-netcore/internal/models"
	"github.com/Allono07/live-event-validation-netcore/internal/validator"
)

// ReportingService answers the dashboard queries: aggregate stats,
// schema coverage, fully-valid events, and filtered log listings.
type ReportingService struct {
	apps   AppStore
	rules  RuleStore
	logs   LogStore
	logger *zap.Logger
}

func NewReportingService(apps AppStore, rules RuleStore, logs LogStore, logger *zap.Logger) *ReportingService {
	return &ReportingService{apps: apps, rules: rules, logs: logs, logger: logger}
}

// Stats are aggregate validation counts over a time window. The counts
// reflect only the most recent record per distinct event name, so
// total == valid + invalid + error holds by construction.
type Stats struct {
	Total   int `json:"total"`
	Valid   int `json:"valid"`
	Invalid int `json:"invalid"`
	Error   int `json:"error"`
}

// Coverage compares the schema's event names against what the store has
// actually captured.
type Coverage struct {
	Captured      int      `json:"captured"`
	Missing       int      `json:"missing"`
	Total         int      `json:"total"`
	MissingEvents []string `json:"missing_events"`
	EventNames    []string `json:"event_names"`
}

func (s *ReportingService) lookupApp(ctx context.Context, appID string) (*models.App, error) {
	app, err := s.apps.GetByAppID(ctx, appID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("App not found")
	}
	return app, nil
}

// Stats classifies the latest record per event name within the last
// `hours` hours.
func (s *ReportingService) Stats(ctx context.Context, appID string, hours int) (*Stats, error) {
	app, err := s.lookupApp(ctx, appID)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	entries, err := s.logs.LatestPerEvent(ctx, app.ID, since)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return ComputeStats(entries), nil
}

// ComputeStats classifies one record per event name. An event counts as
// invalid when its overall status says so or when any of its verdicts is
// not "Valid" (extra keys included); errors take precedence.
func ComputeStats(latest []models.LogEntry) *Stats {
	stats := &Stats{Total: len(latest)}
	for _, entry := range latest {
		switch classify(entry) {
		case models.StatusError:
			stats.Error++
		case models.StatusInvalid:
			stats.Invalid++
		default:
			stats.Valid++
		}
	}
	return stats
}

func classify(entry models.LogEntry) string {
	if entry.ValidationStatus == models.StatusError {
		return models.StatusError
	}
	if entry.ValidationStatus == models.StatusInvalid {
		return models.StatusInvalid
	}
	for _, v := range entry.ValidationResults {
		if v.ValidationStatus != validator.StatusValid {
			return models.StatusInvalid
		}
	}
	return models.StatusValid
}

// FullyValidEvents returns the latest record per event name that was
// matched against a real schema (no fallback-tagged verdicts) and whose
// verdicts are all "Valid".
func (s *ReportingService) FullyValidEvents(ctx context.Context, appID string, hours int) ([]models.LogEntry, error) {
	app, err := s.lookupApp(ctx, appID)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	entries, err := s.logs.LatestPerEvent(ctx, app.ID, since)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	fullyValid := make([]models.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if IsFullyValid(entry) {
			fullyValid = append(fullyValid, entry)
		}
	}
	return fullyValid, nil
}

// IsFullyValid reports whether an entry passed schema validation with no
// deviations at all: overall valid, no fallback verdicts, every verdict
// "Valid".
func IsFullyValid(entry models.LogEntry) bool {
	if entry.ValidationStatus != models.StatusValid {
		return false
	}
	for _, v := range entry.ValidationResults {
		if v.ExpectedType == validator.ExpectedTypeExtra {
			return false
		}
		if v.ValidationStatus != validator.StatusValid {
			return false
		}
	}
	return true
}

// Coverage reports which schema event names have been captured at least
// once.
func (s *ReportingService) Coverage(ctx context.Context, appID string) (*Coverage, error) {
	app, err := s.lookupApp(ctx, appID)
	if err != nil {
		return nil, err
	}

	schemaNames, err := s.rules.EventNames(ctx, app.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	capturedNames, err := s.logs.CapturedEventNames(ctx, app.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return ComputeCoverage(schemaNames, capturedNames), nil
}

// ComputeCoverage intersects the schema's event names with the captured
// set. Totals are relative to the schema.
func ComputeCoverage(schemaNames, capturedNames []string) *Coverage {
	captured := make(map[string]struct{}, len(capturedNames))
	for _, name := range capturedNames {
		captured[name] = struct{}{}
	}

	cov := &Coverage{
		Total:         len(schemaNames),
		MissingEvents: []string{},
		EventNames:    append([]string{}, schemaNames...),
	}
	sort.Strings(cov.EventNames)
	for _, name := range cov.EventNames {
		if _, ok := captured[name]; ok {
			cov.Captured++
		} else {
			cov.MissingEvents = append(cov.MissingEvents, name)
		}
	}
	cov.Missing = len(cov.MissingEvents)
	return cov
}

// Logs returns filtered, paginated log entries plus the total match count.
func (s *ReportingService) Logs(ctx context.Context, appID string, filter LogFilter) ([]models.LogEntry, int64, error) {
	app, err := s.lookupApp(ctx, appID)
	if err != nil {
		return nil, 0, err
	}
	entries, total, err := s.logs.Filter(ctx, app.ID, filter)
	if err != nil {
		return nil, 0, apperrors.NewInternalError(err)
	}
	return entries, total, nil
}

// PurgeOldLogs deletes records older than the given number of days and
// returns how many were removed.
func (s *ReportingService) PurgeOldLogs(ctx context.Context, appID string, days int) (int64, error) {
	app, err := s.lookupApp(ctx, appID)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	removed, err := s.logs.DeleteBefore(ctx, app.ID, cutoff)
	if err != nil {
		return 0, apperrors.NewInternalError(err)
	}
	s.logger.Info("purged old logs",
		zap.String("app_id", appID),
		zap.Int("days", days),
		zap.Int64("removed", removed))
	return removed, nil
}
