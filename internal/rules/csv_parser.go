// Package rules parses tabular validation-rule definitions uploaded for
// an app. The expected format lists the event name once and leaves it
// blank on subsequent rows for the same event:
//
//	eventName,eventPayload,dataType,required,condition
//	user_login,user_id,integer,true,
//	,timestamp,date,true,
//	,device_type,text,,
package rules

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
	"github.com/Allono07/live-event-validation-netcore/internal/validator"
)

var validTypes = map[string]struct{}{
	models.TypeText:    {},
	models.TypeDate:    {},
	models.TypeInteger: {},
	models.TypeFloat:   {},
	models.TypeBoolean: {},
}

// ParseResult carries the parsed rules plus counters surfaced to the
// uploader.
type ParseResult struct {
	Rules      []models.FieldRule
	Skipped    int
	EventNames []string
}

// Parse reads a rule definition CSV and returns the rules in document
// order. Per-row recovery rules:
//   - a blank eventName inherits the last seen event name; rows before
//     any event name are skipped
//   - rows with a blank eventPayload are skipped
//   - a repeated field path for the same event (compared after
//     normalization, "payload." prefix ignored) is skipped; the first
//     row wins
//   - unknown data types are coerced to "text"
//   - a condition cell that is not valid JSON is treated as no condition
//   - required means the literal string "true", case-insensitive
func Parse(r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"eventName", "eventPayload", "dataType"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv is missing required header %q", required)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := &ParseResult{}
	seenEvents := map[string]struct{}{}
	seenFields := map[string]map[string]struct{}{}
	currentEvent := ""

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row (bad quoting, etc): skip and continue.
			result.Skipped++
			continue
		}

		if name := cell(row, "eventName"); name != "" {
			currentEvent = strings.ToLower(name)
		}
		if currentEvent == "" {
			result.Skipped++
			continue
		}

		fieldName := cell(row, "eventPayload")
		if fieldName == "" {
			result.Skipped++
			continue
		}

		// Field paths are unique per event after normalization.
		normField := strings.TrimPrefix(validator.NormalizeKey(fieldName), "payload.")
		if _, dup := seenFields[currentEvent][normField]; dup {
			result.Skipped++
			continue
		}
		if seenFields[currentEvent] == nil {
			seenFields[currentEvent] = map[string]struct{}{}
		}
		seenFields[currentEvent][normField] = struct{}{}

		dataType := strings.ToLower(cell(row, "dataType"))
		if _, ok := validTypes[dataType]; !ok {
			dataType = models.TypeText
		}

		rule := models.FieldRule{
			EventName:  currentEvent,
			FieldName:  fieldName,
			DataType:   dataType,
			IsRequired: strings.EqualFold(cell(row, "required"), "true"),
			Condition:  parseCondition(cell(row, "condition")),
		}
		result.Rules = append(result.Rules, rule)

		if _, ok := seenEvents[currentEvent]; !ok {
			seenEvents[currentEvent] = struct{}{}
			result.EventNames = append(result.EventNames, currentEvent)
		}
	}

	return result, nil
}

// parseCondition decodes the optional condition JSON; anything unparsable
// means no condition.
func parseCondition(raw string) *models.Condition {
	if raw == "" || raw == "{}" {
		return nil
	}
	var cond models.Condition
	if err := json.Unmarshal([]byte(raw), &cond); err != nil {
		return nil
	}
	if cond.Empty() {
		return nil
	}
	return &cond
}
