// Package conditions evaluates the declarative condition list of a flow
// against event context. Conditions are ANDed and short-circuit on the first
// mismatch; an empty list matches unconditionally.
package conditions

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/kodisha/flowd/pkg/models"
	"github.com/kodisha/flowd/pkg/template"
)

// Supported operators.
const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not_equals"
	OperatorGreaterThan = "greater_than"
	OperatorLessThan    = "less_than"
	OperatorContains    = "contains"
	OperatorNotContains = "not_contains"
	OperatorExists      = "exists"
	OperatorIn          = "in"
)

// Evaluate reports whether every condition holds for the context. Unknown
// operators and non-numeric comparison operands make the condition false
// rather than erroring, matching the log-and-continue posture of the engine.
func Evaluate(conds []models.Condition, context map[string]any) bool {
	for _, cond := range conds {
		if !evaluateOne(cond, context) {
			return false
		}
	}

	return true
}

func evaluateOne(cond models.Condition, context map[string]any) bool {
	fieldValue, found := template.Lookup(context, cond.Field)

	switch cond.Operator {
	case OperatorEquals:
		return found && looseEqual(fieldValue, cond.Value)
	case OperatorNotEquals:
		return !found || !looseEqual(fieldValue, cond.Value)
	case OperatorGreaterThan:
		left, right, ok := numericPair(fieldValue, cond.Value)

		return found && ok && left > right
	case OperatorLessThan:
		left, right, ok := numericPair(fieldValue, cond.Value)

		return found && ok && left < right
	case OperatorContains:
		return found && contains(fieldValue, cond.Value)
	case OperatorNotContains:
		return found && !contains(fieldValue, cond.Value)
	case OperatorExists:
		return found
	case OperatorIn:
		seq, ok := cond.Value.([]any)
		if !ok {
			return false
		}

		for _, item := range seq {
			if found && looseEqual(fieldValue, item) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

// looseEqual is strict equality except that it bridges the int/float split
// JSON decoding introduces. "5" never equals 5.
func looseEqual(a, b any) bool {
	left, leftOK := strictNumeric(a)
	right, rightOK := strictNumeric(b)

	if leftOK && rightOK {
		return left == right
	}

	return reflect.DeepEqual(a, b)
}

func strictNumeric(v any) (float64, bool) {
	switch typed := v.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func numericPair(a, b any) (float64, float64, bool) {
	left, leftOK := toFloat(a)
	right, rightOK := toFloat(b)

	return left, right, leftOK && rightOK
}

func toFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)

		return parsed, err == nil
	default:
		return 0, false
	}
}

// contains applies substring matching to strings and membership to slices.
func contains(haystack, needle any) bool {
	switch typed := haystack.(type) {
	case string:
		needleStr, ok := needle.(string)

		return ok && strings.Contains(typed, needleStr)
	case []any:
		for _, item := range typed {
			if looseEqual(item, needle) {
				return true
			}
		}

		return false
	case []string:
		needleStr, ok := needle.(string)
		if !ok {
			return false
		}

		for _, item := range typed {
			if item == needleStr {
				return true
			}
		}

		return false
	default:
		return false
	}
}
