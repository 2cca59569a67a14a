package natives

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/artuross/formula-engine/internal/formula/interpreter"
	"github.com/artuross/formula-engine/internal/formula/sandbox"
	"github.com/artuross/formula-engine/internal/formula/value"
)

var (
	ErrArgumentCount = errors.New("wrong number of arguments")
	ErrArgumentType  = errors.New("invalid argument")
	ErrNoTables      = errors.New("lookup tables are not configured")
)

const (
	DefaultCurrency = "USD"
	DefaultLanguage = "en-US"
)

// Querier runs a validated read-only query and returns its rows.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

// QueryGuard validates queries and identifiers supplied by formulas.
type QueryGuard interface {
	CheckQuery(query string) error
	CheckIdentifier(name string) error
}

type Option func(*config)

type config struct {
	querier  Querier
	guard    QueryGuard
	currency string
	language string
}

func WithQuerier(querier Querier) Option {
	return func(c *config) {
		c.querier = querier
	}
}

func WithSandbox(guard QueryGuard) Option {
	return func(c *config) {
		c.guard = guard
	}
}

func WithCurrency(code string) Option {
	return func(c *config) {
		c.currency = code
	}
}

func WithLanguage(tag string) Option {
	return func(c *config) {
		c.language = tag
	}
}

// Table returns an implementation for every allow-listed call.
func Table(options ...Option) map[string]interpreter.Function {
	cfg := config{
		guard:    sandbox.New(),
		currency: DefaultCurrency,
		language: DefaultLanguage,
	}

	for _, apply := range options {
		apply(&cfg)
	}

	return map[string]interpreter.Function{
		// arithmetic
		"abs":   unary(math.Abs),
		"ceil":  unary(math.Ceil),
		"floor": unary(math.Floor),
		"max":   extremum(1),
		"min":   extremum(-1),
		"pow":   pow,
		"round": round,
		"sqrt":  sqrt,

		// conversion and strings
		"concat":          concat,
		"floatval":        floatval,
		"format_currency": cfg.formatCurrency,
		"intval":          intval,
		"is_numeric":      isNumeric,
		"number_format":   numberFormat,
		"str_replace":     strReplace,
		"strlen":          strlen,
		"strtolower":      strtolower,
		"strtoupper":      strtoupper,
		"substr":          substr,
		"trim":            trim,

		// lists
		"array_keys": arrayKeys,
		"array_sum":  arraySum,
		"count":      count,
		"in_array":   inArray,

		// option accessors
		"get_all_options": getAllOptions,
		"get_option":      getOption,

		// domain calculators
		"calculate_linear_meters": calculateLinearMeters,
		"calculate_perimeter":     calculatePerimeter,
		"calculate_sqm":           calculateSquareMeters,
		"calculate_volume":        calculateVolume,

		// lookup tables
		"lookup_value": cfg.lookupValue,
		"query_table":  cfg.queryTable,
	}
}

func arity(args []value.Value, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		switch {
		case min == max:
			return fmt.Errorf("%w: expects %d, got %d", ErrArgumentCount, min, len(args))

		case max < 0:
			return fmt.Errorf("%w: expects at least %d, got %d", ErrArgumentCount, min, len(args))

		default:
			return fmt.Errorf("%w: expects %d to %d, got %d", ErrArgumentCount, min, max, len(args))
		}
	}

	return nil
}

func numberArg(args []value.Value, index int) (float64, error) {
	number, ok := value.ToNumber(args[index])
	if !ok {
		return 0, fmt.Errorf("%w: argument %d must be numeric, got %s", ErrArgumentType, index+1, value.TypeOf(args[index]))
	}

	return number, nil
}

func numbersArg(args []value.Value) ([]float64, error) {
	numbers := make([]float64, 0, len(args))

	for i := range args {
		number, err := numberArg(args, i)
		if err != nil {
			return nil, err
		}

		numbers = append(numbers, number)
	}

	return numbers, nil
}

func stringArg(args []value.Value, index int, fallback string) string {
	if index >= len(args) {
		return fallback
	}

	if _, isNull := args[index].(value.Null); isNull {
		return fallback
	}

	return value.ToString(args[index])
}
