package value

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("value: failed to create CBOR enc mode: %v", err))
	}

	dm, err := cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("value: failed to create CBOR dec mode: %v", err))
	}

	cborEncMode = em
	cborDecMode = dm
}

// MarshalCBOR encodes v canonically: map keys are sorted, so equal values
// encode identically. Unlike Encode it keeps NaN and ±Inf.
func MarshalCBOR(v Value) ([]byte, error) {
	data, err := cborEncMode.Marshal(toPlain(v))
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}

	return data, nil
}

func UnmarshalCBOR(data []byte) (Value, error) {
	var raw any
	if err := cborDecMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}

	return FromAny(raw)
}

// toPlain is ToAny without the JSON restriction on numbers.
func toPlain(v Value) any {
	switch v := v.(type) {
	case Number:
		return float64(v)

	case List:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = toPlain(item)
		}

		return out

	case Map:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = toPlain(item)
		}

		return out

	default:
		return ToAny(v)
	}
}
