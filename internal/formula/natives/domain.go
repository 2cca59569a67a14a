package natives

import (
	"context"

	"github.com/artuross/formula-engine/internal/formula/value"
)

// Dimensions are authored in millimetres.
const (
	millimetresPerMetre       = 1e3
	squareMillimetresPerMetre = 1e6
	cubicMillimetresPerMetre  = 1e9
)

func calculateSquareMeters(_ context.Context, args []value.Value) (value.Value, error) {
	numbers, err := dimensions(args, 2)
	if err != nil {
		return nil, err
	}

	return value.Number(numbers[0] * numbers[1] / squareMillimetresPerMetre), nil
}

func calculateLinearMeters(_ context.Context, args []value.Value) (value.Value, error) {
	numbers, err := dimensions(args, 1)
	if err != nil {
		return nil, err
	}

	return value.Number(numbers[0] / millimetresPerMetre), nil
}

func calculatePerimeter(_ context.Context, args []value.Value) (value.Value, error) {
	numbers, err := dimensions(args, 2)
	if err != nil {
		return nil, err
	}

	return value.Number(2 * (numbers[0] + numbers[1]) / millimetresPerMetre), nil
}

func calculateVolume(_ context.Context, args []value.Value) (value.Value, error) {
	numbers, err := dimensions(args, 3)
	if err != nil {
		return nil, err
	}

	return value.Number(numbers[0] * numbers[1] * numbers[2] / cubicMillimetresPerMetre), nil
}

func dimensions(args []value.Value, n int) ([]float64, error) {
	if err := arity(args, n, n); err != nil {
		return nil, err
	}

	return numbersArg(args)
}
