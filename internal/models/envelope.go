package models

import "strings"

// ExtractEvent pulls the event name and the inner payload object out of a
// raw incoming event envelope. The name is accepted under "eventName",
// "event_name" or "event"; it is returned lower-cased. Everything at the
// envelope level other than "payload" is metadata (identity, session,
// device time, ...) and is never validated.
//
// A missing or non-object "payload" yields an empty map so callers always
// get something validatable; ok is false only when no event name is found.
func ExtractEvent(raw map[string]interface{}) (name string, payload map[string]interface{}, ok bool) {
	for _, key := range []string{"eventName", "event_name", "event"} {
		if v, present := raw[key]; present {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
				name = strings.ToLower(strings.TrimSpace(s))
				break
			}
		}
	}
	if name == "" {
		return "", nil, false
	}

	payload = map[string]interface{}{}
	if inner, present := raw["payload"]; present {
		if m, isMap := inner.(map[string]interface{}); isMap {
			payload = m
		}
	}
	return name, payload, true
}
