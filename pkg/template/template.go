// Package template resolves {{dotted.path}} placeholders inside flow action
// parameters against the event context of one flow-matching pass.
//
// Flow definitions stay plain data so the registration API can accept them
// from JSON bodies; this package is the only interpreter of the placeholder
// micro-language.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z0-9_]+)*)\s*\}\}`)

// Resolve walks value and substitutes placeholders found in string leaves.
// Non-string scalars are returned unchanged; maps and slices are resolved
// leaf by leaf. A string that is exactly one placeholder resolves to the
// typed context value, so numbers and nested objects survive templating.
// Unresolvable paths are left verbatim in place.
func Resolve(value any, context map[string]any) any {
	switch typed := value.(type) {
	case string:
		return resolveString(typed, context)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = Resolve(v, context)
		}

		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = Resolve(v, context)
		}

		return out
	default:
		return value
	}
}

// ResolveParams resolves every parameter of an action against the context.
func ResolveParams(params map[string]any, context map[string]any) map[string]any {
	if params == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = Resolve(v, context)
	}

	return out
}

func resolveString(s string, context map[string]any) any {
	// Whole-string placeholder: pass the typed value through.
	if match := placeholderPattern.FindStringSubmatch(s); match != nil && match[0] == s {
		if resolved, ok := Lookup(context, match[1]); ok {
			return resolved
		}

		return s
	}

	return placeholderPattern.ReplaceAllStringFunc(s, func(placeholder string) string {
		path := placeholderPattern.FindStringSubmatch(placeholder)[1]

		resolved, ok := Lookup(context, path)
		if !ok {
			return placeholder
		}

		return stringify(resolved)
	})
}

// Lookup walks context along a dotted path, consuming one segment per step.
// It reports false when a segment is absent or an intermediate value is not
// a map.
func Lookup(context map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	var current any = context

	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func stringify(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		// Render whole floats without a trailing ".0" so templated ids and
		// counters read naturally after a JSON round trip.
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}

		return fmt.Sprintf("%v", typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
