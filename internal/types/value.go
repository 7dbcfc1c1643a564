package types

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// VariableSource is a named, priority-ranked lookup capability consulted
// during resolution. Higher priority wins; lookups may be asynchronous,
// hence the context. Get returns (value, found, error); absence is not
// an error, it falls through to the next source.
type VariableSource interface {
	Name() string
	Priority() int
	Get(ctx context.Context, key string) (string, bool, error)
}

// NormalizeValue maps an arbitrary script-produced value into the closed
// value domain the rest of the pipeline reasons about: string, float64,
// bool, nil, []any and map[string]any. Integer kinds collapse to float64
// so equality behaves the same regardless of which side produced the
// number.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64:
		return val
	case int:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = NormalizeValue(item)
		}
		return out
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FormatValue renders a normalized value as the string substituted into
// templates and exported session files. Floats that carry an integral
// value print without a fractional part so `{{userId}}` interpolates as
// "42", not "42.000000". Lists and maps serialize as JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
