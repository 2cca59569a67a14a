package natives

import (
	"context"
	"fmt"

	"github.com/artuross/formula-engine/internal/formula/value"
)

// getOption reads a named input. The interpreter appends the input data as
// the last argument, so the formula itself passes the name and an optional
// default.
func getOption(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 2, 3); err != nil {
		return nil, err
	}

	inputs, err := inputData(args)
	if err != nil {
		return nil, err
	}

	var fallback value.Value = value.Null{}
	if len(args) == 3 {
		fallback = args[1]
	}

	option, ok := inputs[value.ToString(args[0])]
	if !ok {
		return fallback, nil
	}

	if _, isNull := option.(value.Null); isNull || option == nil {
		return fallback, nil
	}

	return option, nil
}

func getAllOptions(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	inputs, err := inputData(args)
	if err != nil {
		return nil, err
	}

	return value.Copy(inputs), nil
}

func inputData(args []value.Value) (value.Map, error) {
	inputs, ok := args[len(args)-1].(value.Map)
	if !ok {
		return nil, fmt.Errorf("%w: input data is missing", ErrArgumentType)
	}

	return inputs, nil
}
