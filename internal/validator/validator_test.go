package validator

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Allono07/live-event-validation-netcore/internal/models"
)

func rule(event, field, dataType string, required bool) models.FieldRule {
	return models.FieldRule{
		EventName:  event,
		FieldName:  field,
		DataType:   dataType,
		IsRequired: required,
	}
}

func TestValidateSingleIntegerField(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("purchase", "quantity", models.TypeInteger, true)}
	payload := map[string]interface{}{"quantity": json.Number("3")}

	status, verdicts := v.Validate("purchase", payload, rules)

	assert.Equal(t, models.StatusValid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, "quantity", verdicts[0].Key)
	assert.Equal(t, StatusValid, verdicts[0].ValidationStatus)
	assert.Equal(t, models.TypeInteger, verdicts[0].ExpectedType)
	assert.Equal(t, "integer", verdicts[0].ReceivedType)
}

func TestValidateMissingRequiredField(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("purchase", "quantity", models.TypeInteger, true)}

	status, verdicts := v.Validate("purchase", map[string]interface{}{}, rules)

	assert.Equal(t, models.StatusInvalid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, StatusNotPresent, verdicts[0].ValidationStatus)
	assert.Equal(t, "not present", verdicts[0].ReceivedType)
}

func TestValidateMissingOptionalFieldSkipped(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("purchase", "coupon", models.TypeText, false)}

	status, verdicts := v.Validate("purchase", map[string]interface{}{}, rules)

	assert.Equal(t, models.StatusValid, status)
	assert.Empty(t, verdicts)
}

func TestValidateWrongType(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("purchase", "quantity", models.TypeInteger, true)}
	payload := map[string]interface{}{"quantity": "three"}

	status, verdicts := v.Validate("purchase", payload, rules)

	assert.Equal(t, models.StatusInvalid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, StatusWrongType, verdicts[0].ValidationStatus)
	assert.Equal(t, "text", verdicts[0].ReceivedType)
}

func TestValidateEmptyValue(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("login", "user_id", models.TypeText, true)}

	for _, empty := range []interface{}{"", "   ", nil} {
		status, verdicts := v.Validate("login", map[string]interface{}{"user_id": empty}, rules)
		assert.Equal(t, models.StatusInvalid, status)
		require.Len(t, verdicts, 1)
		assert.Equal(t, StatusEmpty, verdicts[0].ValidationStatus)
	}
}

func TestValidateExtraKeyDoesNotInvalidate(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("login", "user_id", models.TypeText, true)}
	payload := map[string]interface{}{
		"user_id": "u-1",
		"debug":   true,
	}

	status, verdicts := v.Validate("login", payload, rules)

	assert.Equal(t, models.StatusValid, status)
	require.Len(t, verdicts, 2)

	var extra *models.Verdict
	for i := range verdicts {
		if verdicts[i].ValidationStatus == StatusExtraKey {
			extra = &verdicts[i]
		}
	}
	require.NotNil(t, extra)
	assert.Equal(t, "debug", extra.Key)
	assert.Equal(t, ExpectedTypeExtra, extra.ExpectedType)
}

func TestValidateKeyNormalization(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("login", "User ID", models.TypeText, true)}
	payload := map[string]interface{}{"user_id": "u-1"}

	status, verdicts := v.Validate("login", payload, rules)

	assert.Equal(t, models.StatusValid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, StatusValid, verdicts[0].ValidationStatus)
}

func TestValidatePayloadPrefixStripped(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("login", "payload.user_id", models.TypeText, true)}
	payload := map[string]interface{}{"user_id": "u-1"}

	status, _ := v.Validate("login", payload, rules)
	assert.Equal(t, models.StatusValid, status)
}

func TestValidateDottedPathLookup(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("login", "device.os", models.TypeText, true)}
	payload := map[string]interface{}{
		"device": map[string]interface{}{"os": "android"},
	}

	status, verdicts := v.Validate("login", payload, rules)

	assert.Equal(t, models.StatusValid, status)
	found := false
	for _, vd := range verdicts {
		if vd.Key == "device.os" && vd.ValidationStatus == StatusValid {
			found = true
		}
	}
	assert.True(t, found, "dotted path verdict missing: %+v", verdicts)
}

func TestValidateBadRuleRow(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("login", "", models.TypeText, true)}

	status, verdicts := v.Validate("login", map[string]interface{}{}, rules)

	assert.Equal(t, models.StatusInvalid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, StatusBadRule, verdicts[0].ValidationStatus)
}

func TestValidateArrayField(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("checkout", "items[].price", models.TypeFloat, true)}
	payload := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"price": json.Number("9.99")},
			map[string]interface{}{"price": "free"},
		},
	}

	status, verdicts := v.Validate("checkout", payload, rules)

	assert.Equal(t, models.StatusInvalid, status)
	require.Len(t, verdicts, 2)
	assert.Equal(t, "items[0].price", verdicts[0].Key)
	assert.Equal(t, StatusValid, verdicts[0].ValidationStatus)
	assert.Equal(t, "items[1].price", verdicts[1].Key)
	assert.Equal(t, StatusWrongType, verdicts[1].ValidationStatus)
}

func TestValidateArrayFieldShieldsRootFromExtraPass(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("checkout", "items[].price", models.TypeFloat, true)}
	payload := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"price": json.Number("1.5")},
		},
	}

	_, verdicts := v.Validate("checkout", payload, rules)
	for _, vd := range verdicts {
		assert.NotEqual(t, StatusExtraKey, vd.ValidationStatus)
	}
}

func TestValidateArrayFieldRootNotArray(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("checkout", "items[].price", models.TypeFloat, true)}
	payload := map[string]interface{}{"items": "nope"}

	status, verdicts := v.Validate("checkout", payload, rules)

	assert.Equal(t, models.StatusInvalid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, StatusWrongType, verdicts[0].ValidationStatus)
	assert.Equal(t, "array", verdicts[0].ExpectedType)
}

func TestValidateArrayFieldEmptyArray(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("checkout", "items[].price", models.TypeFloat, true)}
	payload := map[string]interface{}{"items": []interface{}{}}

	status, verdicts := v.Validate("checkout", payload, rules)

	assert.Equal(t, models.StatusInvalid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, StatusEmpty, verdicts[0].ValidationStatus)
}

func TestValidateArrayFieldMissingOptionalRoot(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("checkout", "items[].price", models.TypeFloat, false)}

	status, verdicts := v.Validate("checkout", map[string]interface{}{}, rules)

	assert.Equal(t, models.StatusValid, status)
	assert.Empty(t, verdicts)
}

func TestValidateConditionTriggered(t *testing.T) {
	v := New(Options{})
	r := rule("payment", "method", models.TypeText, true)
	r.Condition = &models.Condition{
		IfField:   "method",
		IfValue:   "card",
		ThenField: "card_last4",
		ThenType:  models.TypeText,
	}
	payload := map[string]interface{}{"method": "card"}

	status, verdicts := v.Validate("payment", payload, []models.FieldRule{r})

	assert.Equal(t, models.StatusInvalid, status)
	var condVerdict *models.Verdict
	for i := range verdicts {
		if verdicts[i].Key == "card_last4" {
			condVerdict = &verdicts[i]
		}
	}
	require.NotNil(t, condVerdict)
	assert.Equal(t, StatusNotPresent, condVerdict.ValidationStatus)
}

func TestValidateConditionNotTriggered(t *testing.T) {
	v := New(Options{})
	r := rule("payment", "method", models.TypeText, true)
	r.Condition = &models.Condition{
		IfField:   "method",
		IfValue:   "card",
		ThenField: "card_last4",
		ThenType:  models.TypeText,
	}
	payload := map[string]interface{}{"method": "cash"}

	status, verdicts := v.Validate("payment", payload, []models.FieldRule{r})

	assert.Equal(t, models.StatusValid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, "method", verdicts[0].Key)
}

func TestValidateConditionSatisfied(t *testing.T) {
	v := New(Options{})
	r := rule("payment", "method", models.TypeText, true)
	r.Condition = &models.Condition{
		IfField:   "method",
		IfValue:   "card",
		ThenField: "card_last4",
		ThenType:  models.TypeText,
	}
	payload := map[string]interface{}{
		"method":     "card",
		"card_last4": "4242",
	}

	status, verdicts := v.Validate("payment", payload, []models.FieldRule{r})

	assert.Equal(t, models.StatusValid, status)
	// card_last4 is not named by a plain rule, so it shows up in the
	// extra pass, but the condition itself adds nothing when satisfied.
	for _, vd := range verdicts {
		assert.NotEqual(t, StatusNotPresent, vd.ValidationStatus)
		assert.NotEqual(t, StatusWrongType, vd.ValidationStatus)
	}
}

func TestValidateFallbackNoRules(t *testing.T) {
	v := New(Options{})
	payload := map[string]interface{}{
		"alpha": "x",
		"beta":  json.Number("1"),
	}

	status, verdicts := v.Validate("mystery_event", payload, nil)

	assert.Equal(t, models.StatusValid, status)
	require.Len(t, verdicts, 2)
	assert.Equal(t, "alpha", verdicts[0].Key)
	assert.Equal(t, StatusExtraEvent, verdicts[0].ValidationStatus)
	assert.Equal(t, "beta", verdicts[1].Key)
	assert.Equal(t, StatusExtraEventField, verdicts[1].ValidationStatus)
}

func TestValidateFallbackEmptyValueInvalid(t *testing.T) {
	v := New(Options{})
	payload := map[string]interface{}{"alpha": ""}

	status, verdicts := v.Validate("mystery_event", payload, nil)

	assert.Equal(t, models.StatusInvalid, status)
	require.Len(t, verdicts, 1)
	assert.Equal(t, StatusEmpty, verdicts[0].ValidationStatus)
}

func TestValidateDateOnlyEvents(t *testing.T) {
	v := New(Options{DateOnlyEvents: map[string]struct{}{"user_profile_push": {}}})
	rules := []models.FieldRule{rule("user_profile_push", "birth_date", models.TypeDate, true)}

	status, _ := v.Validate("user_profile_push", map[string]interface{}{"birth_date": "1990-05-01"}, rules)
	assert.Equal(t, models.StatusValid, status)

	status, _ = v.Validate("user_profile_push", map[string]interface{}{"birth_date": "1990-05-01 10:00:00"}, rules)
	assert.Equal(t, models.StatusInvalid, status)
}

func TestValidateAcceptIntAsFloat(t *testing.T) {
	strict := New(Options{})
	lenient := New(Options{AcceptIntAsFloat: true})
	rules := []models.FieldRule{rule("checkout", "total", models.TypeFloat, true)}
	payload := map[string]interface{}{"total": json.Number("5")}

	status, _ := strict.Validate("checkout", payload, rules)
	assert.Equal(t, models.StatusInvalid, status)

	status, _ = lenient.Validate("checkout", payload, rules)
	assert.Equal(t, models.StatusValid, status)
}

func TestValidateDeterministicVerdictOrder(t *testing.T) {
	v := New(Options{})
	rules := []models.FieldRule{rule("login", "user_id", models.TypeText, true)}
	payload := map[string]interface{}{
		"user_id": "u-1",
		"zz":      1,
		"aa":      2,
		"mm":      3,
	}

	_, first := v.Validate("login", payload, rules)
	for i := 0; i < 20; i++ {
		_, again := v.Validate("login", payload, rules)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("verdict order changed between runs:\n%+v\nvs\n%+v", first, again)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "user_id", NormalizeKey("User ID"))
	assert.Equal(t, "plain", NormalizeKey("plain"))
	assert.Equal(t, "a_b_c", NormalizeKey("A b C"))
}
