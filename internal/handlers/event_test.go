package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
	"github.com/Allono07/live-event-validation-netcore/internal/service"
	"github.com/Allono07/live-event-validation-netcore/internal/testutil"
	"github.com/Allono07/live-event-validation-netcore/internal/validator"
)

func newEventRouter(t *testing.T) (*gin.Engine, *testutil.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewMemStore()
	events := service.NewEventService(store, store, store,
		validator.New(validator.Options{}), zap.NewNop())
	handler := NewEventHandler(events, zap.NewNop())

	router := gin.New()
	router.POST("/api/logs/:app_id", handler.ReceiveLog)
	return router, store
}

func seedApp(t *testing.T, store *testutil.MemStore, appID string) *models.App {
	t.Helper()
	app := &models.App{AppID: appID, Name: appID, Platform: "android", IsActive: true}
	require.NoError(t, store.Create(context.Background(), app))
	return app
}

func seedRule(t *testing.T, store *testutil.MemStore, appID int64, event, field, dataType string, required bool) {
	t.Helper()
	_, err := store.ReplaceForApp(context.Background(), appID, []models.FieldRule{{
		EventName:  event,
		FieldName:  field,
		DataType:   dataType,
		IsRequired: required,
	}})
	require.NoError(t, err)
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestReceiveLogSingleEvent(t *testing.T) {
	router, store := newEventRouter(t)
	app := seedApp(t, store, "app-1")
	seedRule(t, store, app.ID, "purchase", "quantity", models.TypeInteger, true)

	w := postJSON(router, "/api/logs/app-1",
		`{"eventName":"purchase","payload":{"quantity":3}}`)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "purchase", resp["event_name"])
	assert.Equal(t, models.StatusValid, resp["status"])
	assert.NotZero(t, resp["log_id"])
}

func TestReceiveLogBatch(t *testing.T) {
	router, store := newEventRouter(t)
	seedApp(t, store, "app-1")

	w := postJSON(router, "/api/logs/app-1",
		`[{"eventName":"login","payload":{"user_id":"u-1"}},
		  {"eventName":"logout","payload":{"user_id":"u-1"}}]`)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp["processed"])
	assert.Len(t, resp["results"], 2)
}

func TestReceiveLogUnknownApp(t *testing.T) {
	router, _ := newEventRouter(t)

	w := postJSON(router, "/api/logs/ghost",
		`{"eventName":"login","payload":{}}`)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "App not found", resp["error"])
	assert.EqualValues(t, http.StatusNotFound, resp["status"])
}

func TestReceiveLogInvalidJSON(t *testing.T) {
	router, store := newEventRouter(t)
	seedApp(t, store, "app-1")

	w := postJSON(router, "/api/logs/app-1", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiveLogMissingEventName(t *testing.T) {
	router, store := newEventRouter(t)
	seedApp(t, store, "app-1")

	w := postJSON(router, "/api/logs/app-1", `{"payload":{"user_id":"u-1"}}`)

	// A malformed envelope fails only that event; the request itself is
	// still acknowledged.
	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Missing eventName in log data", resp["error"])
}

func TestReceiveLogEmptyBody(t *testing.T) {
	router, store := newEventRouter(t)
	seedApp(t, store, "app-1")

	w := postJSON(router, "/api/logs/app-1", `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiveLogPlainTextFormat(t *testing.T) {
	router, store := newEventRouter(t)
	app := seedApp(t, store, "app-1")
	seedRule(t, store, app.ID, "purchase", "quantity", models.TypeInteger, true)

	body := strings.Join([]string{
		"2024-01-15 10:00:00 DEBUG SDK initialized",
		`Event Payload: {"eventName":"purchase","payload":{"quantity":2}}`,
		"some other noise line",
		`Event Payload: {"eventName":"login","payload":{"user_id":"u-1"}}`,
	}, "\n")

	req := httptest.NewRequest(http.MethodPost, "/api/logs/app-1", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp["processed"])

	assert.Equal(t, 1, store.CountLogs(app.ID, "purchase"))
	assert.Equal(t, 1, store.CountLogs(app.ID, "login"))
}

func TestReceiveLogPlainTextNoMarkers(t *testing.T) {
	router, store := newEventRouter(t)
	seedApp(t, store, "app-1")

	req := httptest.NewRequest(http.MethodPost, "/api/logs/app-1",
		strings.NewReader("just some log noise\nwith no payloads\n"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceiveLogIntegerFloatDistinction(t *testing.T) {
	router, store := newEventRouter(t)
	app := seedApp(t, store, "app-1")
	seedRule(t, store, app.ID, "checkout", "total", models.TypeFloat, true)

	// A bare integer in the wire JSON must not satisfy a float rule.
	w := postJSON(router, "/api/logs/app-1",
		`{"eventName":"checkout","payload":{"total":5}}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusInvalid, resp["status"])

	w = postJSON(router, "/api/logs/app-1",
		`{"eventName":"checkout","payload":{"total":5.5}}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusValid, resp["status"])
}
