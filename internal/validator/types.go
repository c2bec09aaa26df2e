package validator

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Per-field validation statuses recorded on verdicts.
const (
	StatusValid           = "Valid"
	StatusNotPresent      = "Payload not present in the log"
	StatusEmpty           = "Payload value is Empty"
	StatusWrongType       = "Invalid/Wrong datatype/value"
	StatusExtraKey        = "Extra key present in the log"
	StatusExtraEvent      = "Extra event (not in sheet)"
	StatusExtraEventField = "Payload from extra event"
	StatusBadRule         = "Invalid CSV row"
)

// ExpectedTypeExtra marks verdicts produced outside any schema rule
// (extra keys and the no-schema fallback path).
const ExpectedTypeExtra = "EXTRA"

var (
	dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)
	dateOnlyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateLikePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}( \d{2}:\d{2}:\d{2})?$`)
)

// TypeOf infers the wire type of a decoded JSON value. Numbers decoded
// with json.Number keep the integer/float distinction; native Go ints and
// floats from direct callers are classified the same way.
func TypeOf(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number:
		if numberIsInt(v) {
			return "integer"
		}
		return "float"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "integer"
	case float32, float64:
		return "float"
	case string:
		if dateLikePattern.MatchString(v) {
			return "date"
		}
		return "text"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return "unknown"
	}
}

// numberIsInt reports whether a json.Number carries an integer literal
// (no fraction or exponent).
func numberIsInt(n json.Number) bool {
	return !strings.ContainsAny(n.String(), ".eE")
}

func isEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func validText(value interface{}) bool {
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) != ""
}

func validDate(value interface{}, dateOnly bool) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	if dateOnly {
		return dateOnlyPattern.MatchString(s)
	}
	return dateTimePattern.MatchString(s)
}

func validInteger(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return false
	case json.Number:
		return numberIsInt(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

func validFloat(value interface{}, acceptInt bool) bool {
	switch v := value.(type) {
	case bool:
		return false
	case json.Number:
		if numberIsInt(v) {
			return acceptInt
		}
		return true
	case float32, float64:
		return true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return acceptInt
	default:
		return false
	}
}

func validBoolean(value interface{}) bool {
	_, ok := value.(bool)
	return ok
}
