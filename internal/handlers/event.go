package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Allono07/live-event-validation-netcore/internal/service"
)

// EventHandler receives telemetry logs from mobile apps.
type EventHandler struct {
	events *service.EventService
	logger *zap.Logger
}

func NewEventHandler(events *service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

const eventPayloadMarker = "Event Payload:"

// ReceiveLog handles POST /api/logs/:app_id. The body may be a single
// JSON event, a JSON array of events, or plain text carrying one
// "Event Payload: {...}" JSON object per line (the format some SDK debug
// builds emit). Each event is validated and stored; the response
// acknowledges all of them with their computed statuses.
func (h *EventHandler) ReceiveLog(c *gin.Context) {
	appID := c.Param("app_id")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Failed to read request body",
			"status": http.StatusBadRequest,
		})
		return
	}

	var events []map[string]interface{}
	if strings.Contains(c.ContentType(), "text/plain") {
		events = parsePlainTextEvents(body)
	} else {
		events, err = parseJSONEvents(body)
		if err != nil {
			h.logger.Warn("invalid JSON log body", zap.String("app_id", appID), zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Invalid JSON",
				"status": http.StatusBadRequest,
			})
			return
		}
	}

	if len(events) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "No valid events found",
			"status": http.StatusBadRequest,
		})
		return
	}

	results := make([]gin.H, 0, len(events))
	for _, raw := range events {
		res, err := h.events.ProcessEvent(c.Request.Context(), appID, raw)
		if err != nil {
			// An unknown app fails the whole request before any
			// validation work; per-event input problems only fail
			// that event.
			if isNotFound(err) {
				respondError(c, err)
				return
			}
			results = append(results, gin.H{"error": errMessage(err)})
			continue
		}
		results = append(results, gin.H{
			"event_name": res.EventName,
			"status":     res.Status,
			"log_id":     res.LogID,
			"message":    "Event processed",
		})
	}

	if len(results) == 1 {
		c.JSON(http.StatusAccepted, results[0])
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"processed": len(results),
		"results":   results,
	})
}

// parseJSONEvents decodes a single object or an array of objects. Numbers
// are kept as json.Number so the validator can tell integers and floats
// apart.
func parseJSONEvents(body []byte) ([]map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var parsed interface{}
	if err := dec.Decode(&parsed); err != nil {
		return nil, err
	}

	switch v := parsed.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{v}, nil
	case []interface{}:
		events := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				events = append(events, obj)
			}
		}
		return events, nil
	default:
		return nil, nil
	}
}

// parsePlainTextEvents extracts JSON objects from "Event Payload: {...}"
// lines; unparsable lines are skipped.
func parsePlainTextEvents(body []byte) []map[string]interface{} {
	var events []map[string]interface{}
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, eventPayloadMarker) {
			continue
		}
		jsonPart := strings.TrimSpace(strings.TrimPrefix(line, eventPayloadMarker))

		dec := json.NewDecoder(strings.NewReader(jsonPart))
		dec.UseNumber()
		var obj map[string]interface{}
		if err := dec.Decode(&obj); err != nil {
			continue
		}
		events = append(events, obj)
	}
	return events
}
