package normalize

import "reflect"

// Denoise returns a copy of m without keys whose value is null, the empty
// string or an empty sequence. It is not a validity check.
func Denoise(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if isNoise(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isNoise(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	return (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() == 0
}
