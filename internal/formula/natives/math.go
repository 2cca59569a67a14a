package natives

import (
	"context"
	"fmt"
	"math"

	"github.com/artuross/formula-engine/internal/formula/value"
)

func unary(fn func(float64) float64) func(context.Context, []value.Value) (value.Value, error) {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		if err := arity(args, 1, 1); err != nil {
			return nil, err
		}

		number, err := numberArg(args, 0)
		if err != nil {
			return nil, err
		}

		return value.Number(fn(number)), nil
	}
}

// extremum implements max (sign 1) and min (sign -1) over either the
// arguments or a single list argument. The winning value is returned as is.
func extremum(sign int) func(context.Context, []value.Value) (value.Value, error) {
	return func(_ context.Context, args []value.Value) (value.Value, error) {
		if err := arity(args, 1, -1); err != nil {
			return nil, err
		}

		candidates := args
		if list, ok := args[0].(value.List); ok && len(args) == 1 {
			candidates = list
		}

		if len(candidates) == 0 {
			return nil, fmt.Errorf("%w: list must not be empty", ErrArgumentType)
		}

		numbers, err := numbersArg(candidates)
		if err != nil {
			return nil, err
		}

		best := 0
		for i := range numbers {
			if (sign > 0 && numbers[i] > numbers[best]) || (sign < 0 && numbers[i] < numbers[best]) {
				best = i
			}
		}

		return candidates[best], nil
	}
}

func pow(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 2, 2); err != nil {
		return nil, err
	}

	numbers, err := numbersArg(args)
	if err != nil {
		return nil, err
	}

	return value.Number(math.Pow(numbers[0], numbers[1])), nil
}

// round rounds half away from zero to the given number of decimals, which
// may be negative.
func round(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 2); err != nil {
		return nil, err
	}

	numbers, err := numbersArg(args)
	if err != nil {
		return nil, err
	}

	precision := 0.0
	if len(numbers) == 2 {
		precision = math.Trunc(numbers[1])
	}

	scale := math.Pow(10, precision)

	return value.Number(math.Round(numbers[0]*scale) / scale), nil
}

func sqrt(_ context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, 1); err != nil {
		return nil, err
	}

	number, err := numberArg(args, 0)
	if err != nil {
		return nil, err
	}

	if number < 0 {
		return nil, fmt.Errorf("%w: square root of a negative number", ErrArgumentType)
	}

	return value.Number(math.Sqrt(number)), nil
}
