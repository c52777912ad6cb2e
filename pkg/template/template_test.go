package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_NoPlaceholders(t *testing.T) {
	result := Resolve("plain text", map[string]any{"a": 1})

	assert.Equal(t, "plain text", result)
}

func TestResolve_WholeStringPlaceholderKeepsType(t *testing.T) {
	context := map[string]any{"a": map[string]any{"b": 5}}

	result := Resolve("{{a.b}}", context)

	assert.Equal(t, 5, result)
}

func TestResolve_EmbeddedPlaceholderCoercesToString(t *testing.T) {
	context := map[string]any{"a": map[string]any{"b": 5}}

	result := Resolve("x={{a.b}}", context)

	assert.Equal(t, "x=5", result)
}

func TestResolve_MissingPathPreservedVerbatim(t *testing.T) {
	result := Resolve("{{missing.path}}", map[string]any{})

	assert.Equal(t, "{{missing.path}}", result)
}

func TestResolve_IntermediateNonMapPreservedVerbatim(t *testing.T) {
	context := map[string]any{"a": "scalar"}

	result := Resolve("{{a.b}}", context)

	assert.Equal(t, "{{a.b}}", result)
}

func TestResolve_WholeStringFloatFromJSON(t *testing.T) {
	context := map[string]any{"amount": 1250.0}

	typed := Resolve("{{amount}}", context)
	embedded := Resolve("KES {{amount}}", context)

	assert.Equal(t, 1250.0, typed)
	assert.Equal(t, "KES 1250", embedded)
}

func TestResolve_NestedObjectPassthrough(t *testing.T) {
	contact := map[string]any{"email": "a@b.com", "name": "Asha"}
	context := map[string]any{"contact": contact}

	result := Resolve("{{contact}}", context)

	assert.Equal(t, contact, result)
}

func TestResolve_MultiplePlaceholders(t *testing.T) {
	context := map[string]any{
		"contact": map[string]any{"name": "Asha"},
		"unit":    map[string]any{"number": "B12"},
	}

	result := Resolve("Hi {{contact.name}}, unit {{unit.number}} is ready", context)

	assert.Equal(t, "Hi Asha, unit B12 is ready", result)
}

func TestResolve_PartialMatchStaysString(t *testing.T) {
	context := map[string]any{"a": map[string]any{"b": 5}}

	result := Resolve("{{a.b}} and {{missing}}", context)

	assert.Equal(t, "5 and {{missing}}", result)
}

func TestResolve_NonStringLeavesUnchanged(t *testing.T) {
	assert.Equal(t, 42, Resolve(42, nil))
	assert.Equal(t, true, Resolve(true, nil))
	assert.Nil(t, Resolve(nil, nil))
}

func TestResolve_RecursesIntoMapsAndSlices(t *testing.T) {
	context := map[string]any{"tenant": map[string]any{"phone": "+254700000001"}}

	params := map[string]any{
		"to":   "{{tenant.phone}}",
		"tags": []any{"rent", "{{tenant.phone}}"},
		"meta": map[string]any{"retries": 3},
	}

	result := Resolve(params, context).(map[string]any)

	assert.Equal(t, "+254700000001", result["to"])
	assert.Equal(t, []any{"rent", "+254700000001"}, result["tags"])
	assert.Equal(t, map[string]any{"retries": 3}, result["meta"])
}

func TestResolveParams_NilParams(t *testing.T) {
	result := ResolveParams(nil, map[string]any{"a": 1})

	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestLookup(t *testing.T) {
	context := map[string]any{
		"payment": map[string]any{"amount": 500, "method": "mpesa"},
	}

	amount, ok := Lookup(context, "payment.amount")
	assert.True(t, ok)
	assert.Equal(t, 500, amount)

	_, ok = Lookup(context, "payment.amount.cents")
	assert.False(t, ok)

	_, ok = Lookup(context, "lease.id")
	assert.False(t, ok)
}

func TestResolve_PlaceholderWithSpacesInsideBraces(t *testing.T) {
	context := map[string]any{"tag": "first-time-buyer"}

	result := Resolve("{{ tag }}", context)

	assert.Equal(t, "first-time-buyer", result)
}
