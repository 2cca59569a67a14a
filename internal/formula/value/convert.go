package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrUnsupportedType = errors.New("unsupported value type")

// FromAny converts decoded JSON (or plain Go scalars) into a Value.
func FromAny(raw any) (Value, error) {
	switch raw := raw.(type) {
	case nil:
		return Null{}, nil

	case Value:
		return Copy(raw), nil

	case bool:
		return Bool(raw), nil

	case string:
		return String(raw), nil

	case float64:
		return Number(raw), nil

	case float32:
		return Number(raw), nil

	case int:
		return Number(raw), nil

	case int32:
		return Number(raw), nil

	case int64:
		return Number(raw), nil

	case uint:
		return Number(raw), nil

	case uint32:
		return Number(raw), nil

	case uint64:
		return Number(raw), nil

	case []byte:
		return String(raw), nil

	case json.Number:
		number, err := raw.Float64()
		if err != nil {
			return nil, fmt.Errorf("convert json number %q: %w", raw, err)
		}

		return Number(number), nil

	case []any:
		list := make(List, 0, len(raw))
		for index, item := range raw {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("convert list item %d: %w", index, err)
			}

			list = append(list, converted)
		}

		return list, nil

	case map[string]any:
		m := make(Map, len(raw))
		for key, item := range raw {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("convert map key %q: %w", key, err)
			}

			m[key] = converted
		}

		return m, nil

	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, raw)
	}
}

// MapFromAny converts a decoded JSON object into a Map of input values.
func MapFromAny(raw map[string]any) (Map, error) {
	converted, err := FromAny(raw)
	if err != nil {
		return nil, err
	}

	return converted.(Map), nil
}

// ToAny converts v into plain Go values suitable for JSON or CBOR encoding.
// Non-finite numbers have no JSON form and become nil.
func ToAny(v Value) any {
	switch v := v.(type) {
	case Bool:
		return bool(v)

	case Number:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil
		}

		return float64(v)

	case String:
		return string(v)

	case List:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = ToAny(item)
		}

		return out

	case Map:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = ToAny(item)
		}

		return out

	default:
		return nil
	}
}

func Encode(v Value) ([]byte, error) {
	data, err := json.Marshal(ToAny(v))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}

	return data, nil
}

func Decode(data []byte) (Value, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	return FromAny(raw)
}
