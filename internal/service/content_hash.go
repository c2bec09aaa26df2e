package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ContentHash fingerprints the business-relevant content of an event:
// its name and inner payload, nothing else. Envelope metadata (identity,
// session, device time) never participates, so semantically identical
// repeats from different sessions hash identically. encoding/json sorts
// map keys, which makes the serialization deterministic.
func ContentHash(eventName string, payload map[string]interface{}) (string, error) {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	doc := struct {
		EventName string                 `json:"eventName"`
		Payload   map[string]interface{} `json:"payload"`
	}{EventName: eventName, Payload: payload}

	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
