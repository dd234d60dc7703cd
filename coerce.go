package gobucket

import "strconv"

// Attribute coercion rules. Attributes arrive as a JSON-shaped map, but the
// evaluator needs two narrow views of them: the bucketing attribute must
// become a string (it is concatenated into the hash seed) and the namespace
// attribute must become a number (it is compared against the namespace
// window). The rules below are part of the cross-SDK contract and must not
// drift per platform.

// coerceString converts an attribute value to the string used for hash seeds.
//   - string: as-is
//   - float64/int variants: decimal formatting, integers without a fraction
//   - bool: "true" / "false"
//   - nil, lists, maps: "" (not hashable, fails the empty-attribute gate)
func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// coerceNumber converts an attribute value to the number used for namespace
// membership checks. Numeric strings parse; anything else reports false and
// the user is treated as not being in the namespace.
func coerceNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
