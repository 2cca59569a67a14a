package natives

import (
	"context"
	"fmt"

	"github.com/artuross/formula-engine/internal/formula/value"
)

func count(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	switch arg := args[0].(type) {
	case value.List:
		return value.Number(len(arg)), nil

	case value.Map:
		return value.Number(len(arg)), nil

	case value.Null:
		return value.Number(0), nil

	default:
		return value.Number(1), nil
	}
}

func inArray(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 2, 3); err != nil {
		return nil, err
	}

	items, err := elements(args[1])
	if err != nil {
		return nil, err
	}

	strict := len(args) == 3 && value.Truthy(args[2])

	for _, item := range items {
		if (strict && value.StrictEqual(args[0], item)) || (!strict && value.LooseEqual(args[0], item)) {
			return value.Bool(true), nil
		}
	}

	return value.Bool(false), nil
}

// arraySum adds every numeric element. Non-numeric elements count as zero.
func arraySum(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	items, err := elements(args[0])
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, item := range items {
		if number, ok := value.ToNumber(item); ok {
			total += number
		}
	}

	return value.Number(total), nil
}

func arrayKeys(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	switch arg := args[0].(type) {
	case value.Map:
		keys := make(value.List, 0, len(arg))
		for _, key := range value.Keys(arg) {
			keys = append(keys, value.String(key))
		}

		return keys, nil

	case value.List:
		keys := make(value.List, 0, len(arg))
		for i := range arg {
			keys = append(keys, value.Number(i))
		}

		return keys, nil

	default:
		return nil, fmt.Errorf("%w: expects a list or map, got %s", ErrArgumentType, value.TypeOf(arg))
	}
}

// elements returns list items, or map values in key order.
func elements(v value.Value) ([]value.Value, error) {
	switch v := v.(type) {
	case value.List:
		return v, nil

	case value.Map:
		items := make([]value.Value, 0, len(v))
		for _, key := range value.Keys(v) {
			items = append(items, v[key])
		}

		return items, nil

	default:
		return nil, fmt.Errorf("%w: expects a list or map, got %s", ErrArgumentType, value.TypeOf(v))
	}
}
