package kvdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// timeKey marks an encoded time.Time: {"@time": "<RFC 3339>"}.
const timeKey = "@time"

func encode(data map[string]any) ([]byte, error) {
	return json.Marshal(encodeValue(data))
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return map[string]any{timeKey: val.UTC().Format(time.RFC3339Nano)}
	case float64:
		return encodeFloat(val)
	case float32:
		return encodeFloat(float64(val))
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = encodeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = encodeValue(item)
		}
		return out
	default:
		return v
	}
}

// encodeFloat keeps a decimal point on integral floats so they decode back
// as float64 rather than int64.
func encodeFloat(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return f
	}
	return json.Number(strconv.FormatFloat(f, 'f', 1, 64))
}

func decode(value []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if raw == nil {
		return map[string]any{}, nil
	}

	out, err := decodeValue(raw)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func decodeValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		return val.Float64()
	case map[string]any:
		if s, ok := val[timeKey].(string); ok && len(val) == 1 {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return nil, fmt.Errorf("decode time %q: %w", s, err)
			}
			return t, nil
		}
		for k, item := range val {
			decoded, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			val[k] = decoded
		}
		return val, nil
	case []any:
		for i, item := range val {
			decoded, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			val[i] = decoded
		}
		return val, nil
	default:
		return v, nil
	}
}
