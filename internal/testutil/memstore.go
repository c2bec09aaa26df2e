// Package testutil provides in-memory store implementations for tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
	"github.com/Allono07/live-event-validation-netcore/internal/service"
)

// MemStore is an in-memory implementation of the service store
// interfaces. Clock is injectable so tests can control time windows.
type MemStore struct {
	mu     sync.Mutex
	apps   []models.App
	rules  []models.FieldRule
	logs   []models.LogEntry
	nextID int64

	Clock func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{Clock: func() time.Time { return time.Now().UTC() }}
}

func (m *MemStore) next() int64 {
	m.nextID++
	return m.nextID
}

// --- AppStore ---

func (m *MemStore) GetByAppID(_ context.Context, appID string) (*models.App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.apps {
		if m.apps[i].AppID == appID {
			app := m.apps[i]
			return &app, nil
		}
	}
	return nil, nil
}

func (m *MemStore) Create(_ context.Context, app *models.App) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app.ID = m.next()
	app.CreatedAt = m.Clock()
	m.apps = append(m.apps, *app)
	return nil
}

func (m *MemStore) List(_ context.Context) ([]models.App, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.App{}, m.apps...), nil
}

// --- RuleStore ---

func (m *MemStore) GetByEvent(_ context.Context, appID int64, eventName string) ([]models.FieldRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FieldRule
	for _, r := range m.rules {
		if r.AppID == appID && r.EventName == eventName {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemStore) GetByApp(_ context.Context, appID int64) ([]models.FieldRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FieldRule
	for _, r := range m.rules {
		if r.AppID == appID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemStore) EventNames(_ context.Context, appID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]struct{}{}
	var names []string
	for _, r := range m.rules {
		if r.AppID == appID {
			if _, ok := seen[r.EventName]; !ok {
				seen[r.EventName] = struct{}{}
				names = append(names, r.EventName)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemStore) ReplaceForApp(_ context.Context, appID int64, rules []models.FieldRule) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.FieldRule
	var deleted int64
	for _, r := range m.rules {
		if r.AppID == appID {
			deleted++
		} else {
			kept = append(kept, r)
		}
	}
	for _, r := range rules {
		r.ID = m.next()
		r.AppID = appID
		kept = append(kept, r)
	}
	m.rules = kept
	return deleted, nil
}

// --- LogStore ---

func (m *MemStore) Insert(_ context.Context, entry *models.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.next()
	entry.CreatedAt = m.Clock()
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *MemStore) DeleteOlderSameEvent(_ context.Context, appID int64, eventName string, keepID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.LogEntry
	var removed int64
	for _, l := range m.logs {
		if l.AppID == appID && l.EventName == eventName && l.ID != keepID {
			removed++
		} else {
			kept = append(kept, l)
		}
	}
	m.logs = kept
	return removed, nil
}

func (m *MemStore) LatestPerEvent(_ context.Context, appID int64, since time.Time) ([]models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	latest := map[string]models.LogEntry{}
	for _, l := range m.logs {
		if l.AppID != appID || l.CreatedAt.Before(since) {
			continue
		}
		cur, ok := latest[l.EventName]
		if !ok || l.CreatedAt.After(cur.CreatedAt) || (l.CreatedAt.Equal(cur.CreatedAt) && l.ID > cur.ID) {
			latest[l.EventName] = l
		}
	}
	names := make([]string, 0, len(latest))
	for name := range latest {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]models.LogEntry, 0, len(names))
	for _, name := range names {
		out = append(out, latest[name])
	}
	return out, nil
}

func (m *MemStore) Filter(_ context.Context, appID int64, f service.LogFilter) ([]models.LogEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []models.LogEntry
	for _, l := range m.logs {
		if l.AppID != appID {
			continue
		}
		if !f.Since.IsZero() && l.CreatedAt.Before(f.Since) {
			continue
		}
		if f.EventName != "" && l.EventName != f.EventName {
			continue
		}
		if f.Status != "" && l.ValidationStatus != f.Status {
			continue
		}
		matches = append(matches, l)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	total := int64(len(matches))
	if f.Offset > 0 {
		if f.Offset >= len(matches) {
			matches = nil
		} else {
			matches = matches[f.Offset:]
		}
	}
	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}
	return matches, total, nil
}

func (m *MemStore) CapturedEventNames(_ context.Context, appID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]struct{}{}
	var names []string
	for _, l := range m.logs {
		if l.AppID == appID {
			if _, ok := seen[l.EventName]; !ok {
				seen[l.EventName] = struct{}{}
				names = append(names, l.EventName)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemStore) DeleteBefore(_ context.Context, appID int64, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.LogEntry
	var removed int64
	for _, l := range m.logs {
		if l.AppID == appID && l.CreatedAt.Before(cutoff) {
			removed++
		} else {
			kept = append(kept, l)
		}
	}
	m.logs = kept
	return removed, nil
}

// CountLogs reports how many stored records exist for (app, event name).
func (m *MemStore) CountLogs(appID int64, eventName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.logs {
		if l.AppID == appID && l.EventName == eventName {
			n++
		}
	}
	return n
}

// AllLogs returns a copy of every stored record.
func (m *MemStore) AllLogs() []models.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.LogEntry{}, m.logs...)
}
