package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
)

var arrayFieldPattern = regexp.MustCompile(`^(.+)\[\]\.(.+)$`)

// Options tune the validation engine.
type Options struct {
	// AcceptIntAsFloat makes integer payload values satisfy float rules.
	AcceptIntAsFloat bool
	// DateOnlyEvents lists event names whose date fields use the
	// YYYY-MM-DD pattern instead of the full timestamp pattern.
	DateOnlyEvents map[string]struct{}
}

// Validator checks event payloads against field rules. It holds no mutable
// state; one instance is safe for concurrent use.
type Validator struct {
	opts Options
}

func New(opts Options) *Validator {
	return &Validator{opts: opts}
}

// NormalizeKey lower-cases a field name and replaces spaces with
// underscores. Payload keys and rule field names are matched in this form.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, " ", "_"))
}

// stripPayloadPrefix removes a leading "payload." from a rule field name;
// rules may be authored either way.
func stripPayloadPrefix(field string) string {
	if len(field) > 8 && strings.EqualFold(field[:8], "payload.") {
		return field[8:]
	}
	return field
}

// Validate checks one event's inner payload against the ordered rules for
// its event name and returns the overall status ("valid" or "invalid")
// plus one verdict per checked field. With no rules it routes through the
// permissive fallback path.
func (v *Validator) Validate(eventName string, payload map[string]interface{}, rules []models.FieldRule) (string, []models.Verdict) {
	if len(rules) == 0 {
		return v.validateFallback(eventName, payload)
	}

	dateOnly := false
	if _, ok := v.opts.DateOnlyEvents[eventName]; ok {
		dateOnly = true
	}

	normalized := make(map[string]interface{}, len(payload))
	originalKey := make(map[string]string, len(payload))
	for k, val := range payload {
		nk := NormalizeKey(k)
		normalized[nk] = val
		originalKey[nk] = k
	}

	var verdicts []models.Verdict
	matched := make(map[string]struct{})
	arrayRoots := make(map[string]struct{})

	for _, rule := range rules {
		if strings.TrimSpace(rule.FieldName) == "" || strings.TrimSpace(rule.DataType) == "" {
			verdicts = append(verdicts, models.Verdict{
				EventName:        eventName,
				Key:              rule.FieldName,
				ExpectedType:     rule.DataType,
				ReceivedType:     "unknown",
				ValidationStatus: StatusBadRule,
				Comment:          "rule is missing field name or data type",
			})
			continue
		}

		field := stripPayloadPrefix(rule.FieldName)

		if m := arrayFieldPattern.FindStringSubmatch(field); m != nil {
			root, sub := m[1], m[2]
			arrayRoots[NormalizeKey(root)] = struct{}{}
			verdicts = append(verdicts, v.validateArrayField(eventName, field, root, sub, rule, normalized, dateOnly)...)
		} else {
			nf := NormalizeKey(field)
			matched[nf] = struct{}{}

			value, present := normalized[nf]
			if !present && strings.Contains(field, ".") {
				value, present = lookupPath(payload, field)
			}

			if !present {
				if rule.IsRequired {
					verdicts = append(verdicts, models.Verdict{
						EventName:        eventName,
						Key:              rule.FieldName,
						ExpectedType:     rule.DataType,
						ReceivedType:     "not present",
						ValidationStatus: StatusNotPresent,
					})
				}
			} else {
				verdicts = append(verdicts, models.Verdict{
					EventName:        eventName,
					Key:              rule.FieldName,
					Value:            value,
					ExpectedType:     rule.DataType,
					ReceivedType:     TypeOf(value),
					ValidationStatus: v.checkValue(value, rule.DataType, dateOnly),
				})
			}
		}

		if !rule.Condition.Empty() {
			if cv := v.checkCondition(eventName, rule.Condition, normalized, dateOnly); cv != nil {
				verdicts = append(verdicts, *cv)
			}
		}
	}

	// Extra-field pass over sorted keys so repeated runs produce
	// identical verdict order.
	extraKeys := make([]string, 0, len(normalized))
	for nk := range normalized {
		if _, ok := matched[nk]; ok {
			continue
		}
		if _, ok := arrayRoots[nk]; ok {
			continue
		}
		extraKeys = append(extraKeys, nk)
	}
	sort.Strings(extraKeys)
	for _, nk := range extraKeys {
		value := normalized[nk]
		verdicts = append(verdicts, models.Verdict{
			EventName:        eventName,
			Key:              originalKey[nk],
			Value:            value,
			ExpectedType:     ExpectedTypeExtra,
			ReceivedType:     TypeOf(value),
			ValidationStatus: StatusExtraKey,
		})
	}

	overall := models.StatusValid
	for _, vd := range verdicts {
		if vd.ValidationStatus != StatusValid && vd.ValidationStatus != StatusExtraKey {
			overall = models.StatusInvalid
			break
		}
	}
	return overall, verdicts
}

// validateArrayField handles a <root>[].<subfield> rule: the root must be
// a non-empty array and the subfield is checked on every element.
func (v *Validator) validateArrayField(eventName, field, root, sub string, rule models.FieldRule, normalized map[string]interface{}, dateOnly bool) []models.Verdict {
	rootVal, present := normalized[NormalizeKey(root)]
	if !present {
		if !rule.IsRequired {
			return nil
		}
		return []models.Verdict{{
			EventName:        eventName,
			Key:              rule.FieldName,
			ExpectedType:     rule.DataType,
			ReceivedType:     "not present",
			ValidationStatus: StatusNotPresent,
			Comment:          fmt.Sprintf("array %q missing from payload", root),
		}}
	}

	items, isArray := rootVal.([]interface{})
	if !isArray {
		return []models.Verdict{{
			EventName:        eventName,
			Key:              rule.FieldName,
			Value:            rootVal,
			ExpectedType:     "array",
			ReceivedType:     TypeOf(rootVal),
			ValidationStatus: StatusWrongType,
			Comment:          fmt.Sprintf("%q is not an array", root),
		}}
	}
	if len(items) == 0 {
		return []models.Verdict{{
			EventName:        eventName,
			Key:              rule.FieldName,
			Value:            items,
			ExpectedType:     rule.DataType,
			ReceivedType:     "array",
			ValidationStatus: StatusEmpty,
			Comment:          fmt.Sprintf("array %q is empty", root),
		}}
	}

	subNorm := NormalizeKey(sub)
	verdicts := make([]models.Verdict, 0, len(items))
	for i, item := range items {
		key := fmt.Sprintf("%s[%d].%s", root, i, sub)

		obj, isObj := item.(map[string]interface{})
		if !isObj {
			verdicts = append(verdicts, models.Verdict{
				EventName:        eventName,
				Key:              key,
				Value:            item,
				ExpectedType:     "object",
				ReceivedType:     TypeOf(item),
				ValidationStatus: StatusWrongType,
				Comment:          "array element is not an object",
			})
			continue
		}

		value, found := lookupNormalized(obj, subNorm)
		if !found {
			if rule.IsRequired {
				verdicts = append(verdicts, models.Verdict{
					EventName:        eventName,
					Key:              key,
					ExpectedType:     rule.DataType,
					ReceivedType:     "not present",
					ValidationStatus: StatusNotPresent,
				})
			}
			continue
		}
		verdicts = append(verdicts, models.Verdict{
			EventName:        eventName,
			Key:              key,
			Value:            value,
			ExpectedType:     rule.DataType,
			ReceivedType:     TypeOf(value),
			ValidationStatus: v.checkValue(value, rule.DataType, dateOnly),
		})
	}
	return verdicts
}

// checkCondition verifies a rule's conditional clause. A verdict is
// returned only when the trigger matches and the dependent field is
// missing or mistyped.
func (v *Validator) checkCondition(eventName string, cond *models.Condition, normalized map[string]interface{}, dateOnly bool) *models.Verdict {
	trigger, present := normalized[NormalizeKey(cond.IfField)]
	if !present || !looseEqual(trigger, cond.IfValue) {
		return nil
	}

	value, found := normalized[NormalizeKey(cond.ThenField)]
	if !found {
		return &models.Verdict{
			EventName:        eventName,
			Key:              cond.ThenField,
			ExpectedType:     cond.ThenType,
			ReceivedType:     "not present",
			ValidationStatus: StatusNotPresent,
			Comment:          fmt.Sprintf("required when %s=%v", cond.IfField, cond.IfValue),
		}
	}
	if status := v.checkValue(value, cond.ThenType, dateOnly); status != StatusValid {
		return &models.Verdict{
			EventName:        eventName,
			Key:              cond.ThenField,
			Value:            value,
			ExpectedType:     cond.ThenType,
			ReceivedType:     TypeOf(value),
			ValidationStatus: status,
			Comment:          fmt.Sprintf("checked because %s=%v", cond.IfField, cond.IfValue),
		}
	}
	return nil
}

// validateFallback handles events with no schema: every payload key is
// reported back, and only empty values make the event invalid.
func (v *Validator) validateFallback(eventName string, payload map[string]interface{}) (string, []models.Verdict) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	verdicts := make([]models.Verdict, 0, len(keys))
	anyEmpty := false
	for i, k := range keys {
		value := payload[k]
		status := StatusExtraEventField
		if i == 0 {
			status = StatusExtraEvent
		}
		if isEmptyValue(value) {
			status = StatusEmpty
			anyEmpty = true
		}
		verdicts = append(verdicts, models.Verdict{
			EventName:        eventName,
			Key:              k,
			Value:            value,
			ExpectedType:     ExpectedTypeExtra,
			ReceivedType:     TypeOf(value),
			ValidationStatus: status,
			Comment:          "no validation rules for this event",
		})
	}

	if anyEmpty {
		return models.StatusInvalid, verdicts
	}
	return models.StatusValid, verdicts
}

// checkValue type-checks one payload value against an expected rule type.
func (v *Validator) checkValue(value interface{}, expectedType string, dateOnly bool) string {
	if isEmptyValue(value) {
		return StatusEmpty
	}

	var ok bool
	switch expectedType {
	case models.TypeText:
		ok = validText(value)
	case models.TypeDate:
		ok = validDate(value, dateOnly)
	case models.TypeInteger:
		ok = validInteger(value)
	case models.TypeFloat:
		ok = validFloat(value, v.opts.AcceptIntAsFloat)
	case models.TypeBoolean:
		ok = validBoolean(value)
	default:
		return StatusWrongType
	}

	if ok {
		return StatusValid
	}
	return StatusWrongType
}

// lookupNormalized finds a value in an object by normalized key.
func lookupNormalized(obj map[string]interface{}, normKey string) (interface{}, bool) {
	for k, v := range obj {
		if NormalizeKey(k) == normKey {
			return v, true
		}
	}
	return nil, false
}

// lookupPath walks a dotted path through nested objects, matching each
// segment by normalized key.
func lookupPath(payload map[string]interface{}, path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = payload
	for _, seg := range segments {
		obj, isObj := current.(map[string]interface{})
		if !isObj {
			return nil, false
		}
		value, found := lookupNormalized(obj, NormalizeKey(seg))
		if !found {
			return nil, false
		}
		current = value
	}
	return current, true
}

// looseEqual compares a payload value with a condition trigger value,
// tolerating the string/number mismatches typical of CSV-authored rules.
func looseEqual(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
