package natives_test

import (
	"context"
	"errors"
	"testing"

	"github.com/artuross/formula-engine/internal/formula/interpreter"
	"github.com/artuross/formula-engine/internal/formula/natives"
	"github.com/artuross/formula-engine/internal/formula/sandbox"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	query string
	args  []any
	rows  []map[string]any
	err   error
}

func (q *fakeQuerier) Query(_ context.Context, query string, args ...any) ([]map[string]any, error) {
	q.query = query
	q.args = args

	return q.rows, q.err
}

func call(t *testing.T, table map[string]interpreter.Function, name string, args ...value.Value) (value.Value, error) {
	t.Helper()

	fn, ok := table[name]
	require.True(t, ok, name)

	return fn(context.Background(), args)
}

func TestTableCoversAllowList(t *testing.T) {
	table := natives.Table()

	for _, name := range sandbox.AllowedCalls() {
		assert.Contains(t, table, name)
	}

	for name := range table {
		assert.True(t, sandbox.IsCallAllowed(name), name)
	}
}

func TestFunctions(t *testing.T) {
	type testCase struct {
		name     string
		function string
		args     []value.Value
		expected value.Value
	}

	n := func(f float64) value.Value { return value.Number(f) }
	s := func(str string) value.Value { return value.String(str) }

	testCases := []testCase{
		{name: "sqm", function: "calculate_sqm", args: []value.Value{n(500), n(300)}, expected: n(0.15)},
		{name: "linear meters", function: "calculate_linear_meters", args: []value.Value{n(2500)}, expected: n(2.5)},
		{name: "perimeter", function: "calculate_perimeter", args: []value.Value{n(500), n(300)}, expected: n(1.6)},
		{name: "volume", function: "calculate_volume", args: []value.Value{n(1000), n(500), n(200)}, expected: n(0.1)},
		{name: "numeric strings as dimensions", function: "calculate_sqm", args: []value.Value{s("1000"), s("1000")}, expected: n(1)},

		{name: "abs", function: "abs", args: []value.Value{n(-3)}, expected: n(3)},
		{name: "ceil", function: "ceil", args: []value.Value{n(1.2)}, expected: n(2)},
		{name: "floor", function: "floor", args: []value.Value{n(1.8)}, expected: n(1)},
		{name: "pow", function: "pow", args: []value.Value{n(2), n(10)}, expected: n(1024)},
		{name: "sqrt", function: "sqrt", args: []value.Value{n(81)}, expected: n(9)},
		{name: "round half up", function: "round", args: []value.Value{n(2.5)}, expected: n(3)},
		{name: "round half away from zero", function: "round", args: []value.Value{n(-2.5)}, expected: n(-3)},
		{name: "round to decimals", function: "round", args: []value.Value{n(1234.5678), n(2)}, expected: n(1234.57)},
		{name: "round to hundreds", function: "round", args: []value.Value{n(1250), n(-2)}, expected: n(1300)},
		{name: "max of arguments", function: "max", args: []value.Value{n(1), n(5), n(3)}, expected: n(5)},
		{name: "min of list", function: "min", args: []value.Value{value.List{n(4), n(2), n(8)}}, expected: n(2)},
		{name: "max keeps the winning value", function: "max", args: []value.Value{s("7"), n(3)}, expected: s("7")},

		{name: "concat", function: "concat", args: []value.Value{s("w="), n(12.5), value.Bool(true)}, expected: s("w=12.5true")},
		{name: "floatval prefix", function: "floatval", args: []value.Value{s("12.5cm")}, expected: n(12.5)},
		{name: "floatval garbage", function: "floatval", args: []value.Value{s("cm")}, expected: n(0)},
		{name: "intval truncates", function: "intval", args: []value.Value{s("-7.9")}, expected: n(-7)},
		{name: "is_numeric exponent", function: "is_numeric", args: []value.Value{s(" 1e3 ")}, expected: value.Bool(true)},
		{name: "is_numeric text", function: "is_numeric", args: []value.Value{s("abc")}, expected: value.Bool(false)},
		{name: "is_numeric bool", function: "is_numeric", args: []value.Value{value.Bool(true)}, expected: value.Bool(false)},
		{name: "number_format default", function: "number_format", args: []value.Value{n(1234.5)}, expected: s("1,235")},
		{name: "number_format decimals", function: "number_format", args: []value.Value{n(1234.5678), n(2)}, expected: s("1,234.57")},
		{name: "number_format separators", function: "number_format", args: []value.Value{n(1234567.891), n(2), s(","), s(" ")}, expected: s("1 234 567,89")},
		{name: "str_replace", function: "str_replace", args: []value.Value{s("x"), s(" by "), s("500x300")}, expected: s("500 by 300")},
		{name: "str_replace empty search", function: "str_replace", args: []value.Value{s(""), s("-"), s("abc")}, expected: s("abc")},
		{name: "strlen counts characters", function: "strlen", args: []value.Value{s("żółw")}, expected: n(4)},
		{name: "strtolower", function: "strtolower", args: []value.Value{s("OAK")}, expected: s("oak")},
		{name: "strtoupper", function: "strtoupper", args: []value.Value{s("oak")}, expected: s("OAK")},
		{name: "substr", function: "substr", args: []value.Value{s("abcdef"), n(1), n(3)}, expected: s("bcd")},
		{name: "substr negative start", function: "substr", args: []value.Value{s("abcdef"), n(-2)}, expected: s("ef")},
		{name: "substr negative length", function: "substr", args: []value.Value{s("abcdef"), n(0), n(-1)}, expected: s("abcde")},
		{name: "substr past the end", function: "substr", args: []value.Value{s("abc"), n(5)}, expected: s("")},
		{name: "trim", function: "trim", args: []value.Value{s("  oak \n")}, expected: s("oak")},
		{name: "trim characters", function: "trim", args: []value.Value{s("--oak--"), s("-")}, expected: s("oak")},

		{name: "count list", function: "count", args: []value.Value{value.List{n(1), n(2)}}, expected: n(2)},
		{name: "count null", function: "count", args: []value.Value{value.Null{}}, expected: n(0)},
		{name: "count scalar", function: "count", args: []value.Value{s("x")}, expected: n(1)},
		{name: "in_array loose", function: "in_array", args: []value.Value{s("2"), value.List{n(1), n(2)}}, expected: value.Bool(true)},
		{name: "in_array strict", function: "in_array", args: []value.Value{s("2"), value.List{n(1), n(2)}, value.Bool(true)}, expected: value.Bool(false)},
		{name: "in_array map values", function: "in_array", args: []value.Value{s("oak"), value.Map{"a": s("oak")}}, expected: value.Bool(true)},
		{name: "array_sum", function: "array_sum", args: []value.Value{value.List{n(1), s("2"), s("x"), value.Bool(true)}}, expected: n(4)},
		{name: "array_keys map", function: "array_keys", args: []value.Value{value.Map{"b": n(1), "a": n(2)}}, expected: value.List{s("a"), s("b")}},
		{name: "array_keys list", function: "array_keys", args: []value.Value{value.List{s("x"), s("y")}}, expected: value.List{n(0), n(1)}},

		{name: "get_option", function: "get_option", args: []value.Value{s("width"), value.Map{"width": n(800)}}, expected: n(800)},
		{name: "get_option default", function: "get_option", args: []value.Value{s("depth"), n(20), value.Map{"width": n(800)}}, expected: n(20)},
		{name: "get_option null uses default", function: "get_option", args: []value.Value{s("depth"), n(20), value.Map{"depth": value.Null{}}}, expected: n(20)},
		{name: "get_option missing", function: "get_option", args: []value.Value{s("depth"), value.Map{}}, expected: value.Null{}},
		{name: "get_all_options", function: "get_all_options", args: []value.Value{value.Map{"w": n(1)}}, expected: value.Map{"w": n(1)}},
	}

	table := natives.Table()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := call(t, table, tc.function, tc.args...)
			require.NoError(t, err)

			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestFunctionErrors(t *testing.T) {
	type testCase struct {
		name     string
		function string
		args     []value.Value
		err      error
	}

	testCases := []testCase{
		{name: "too few arguments", function: "calculate_sqm", args: []value.Value{value.Number(1)}, err: natives.ErrArgumentCount},
		{name: "too many arguments", function: "abs", args: []value.Value{value.Number(1), value.Number(2)}, err: natives.ErrArgumentCount},
		{name: "non numeric dimension", function: "calculate_sqm", args: []value.Value{value.String("wide"), value.Number(1)}, err: natives.ErrArgumentType},
		{name: "negative square root", function: "sqrt", args: []value.Value{value.Number(-1)}, err: natives.ErrArgumentType},
		{name: "empty list extremum", function: "max", args: []value.Value{value.List{}}, err: natives.ErrArgumentType},
		{name: "keys of a number", function: "array_keys", args: []value.Value{value.Number(1)}, err: natives.ErrArgumentType},
		{name: "option without input data", function: "get_option", args: []value.Value{value.String("a"), value.Number(1)}, err: natives.ErrArgumentType},
		{name: "unknown currency", function: "format_currency", args: []value.Value{value.Number(1), value.String("NOPE")}, err: natives.ErrArgumentType},
		{name: "query without tables", function: "query_table", args: []value.Value{value.String("SELECT * FROM rates")}, err: natives.ErrNoTables},
		{name: "rejected query", function: "query_table", args: []value.Value{value.String("DELETE FROM rates")}, err: sandbox.ErrQueryRejected},
		{name: "rejected identifier", function: "lookup_value", args: []value.Value{value.String("rates; --"), value.String("price"), value.String("code"), value.String("x")}, err: sandbox.ErrQueryRejected},
	}

	table := natives.Table()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := call(t, table, tc.function, tc.args...)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	table := natives.Table(natives.WithCurrency("EUR"), natives.WithLanguage("de-DE"))

	result, err := call(t, table, "format_currency", value.Number(12.5), value.String("usd"), value.String("en-US"))
	require.NoError(t, err)
	assert.Contains(t, value.ToString(result), "$")
	assert.Contains(t, value.ToString(result), "12")

	result, err = call(t, table, "format_currency", value.Number(99))
	require.NoError(t, err)
	assert.Contains(t, value.ToString(result), "€")
	assert.Contains(t, value.ToString(result), "99")
}

func TestQueryTable(t *testing.T) {
	querier := &fakeQuerier{
		rows: []map[string]any{
			{"code": "H1", "price": int64(12)},
			{"code": "H2", "price": 14.5},
		},
	}

	table := natives.Table(natives.WithQuerier(querier))

	result, err := call(t, table, "query_table",
		value.String("SELECT code, price FROM hinge_prices WHERE price > ?"),
		value.Number(10),
	)
	require.NoError(t, err)

	assert.Equal(t, "SELECT code, price FROM hinge_prices WHERE price > ?", querier.query)
	assert.Equal(t, []any{float64(10)}, querier.args)
	assert.Equal(t, value.List{
		value.Map{"code": value.String("H1"), "price": value.Number(12)},
		value.Map{"code": value.String("H2"), "price": value.Number(14.5)},
	}, result)
}

func TestQueryTableFailure(t *testing.T) {
	cause := errors.New("disk I/O error")
	table := natives.Table(natives.WithQuerier(&fakeQuerier{err: cause}))

	_, err := call(t, table, "query_table", value.String("SELECT * FROM rates"))
	require.ErrorIs(t, err, cause)
}

func TestLookupValue(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		querier := &fakeQuerier{
			rows: []map[string]any{{"price": 42.0}},
		}

		table := natives.Table(natives.WithQuerier(querier))

		result, err := call(t, table, "lookup_value",
			value.String("glass_types"), value.String("price"), value.String("code"), value.String("float-4mm"),
		)
		require.NoError(t, err)

		assert.Equal(t, value.Number(42), result)
		assert.Equal(t, "SELECT price FROM glass_types WHERE code = ? LIMIT 1", querier.query)
		assert.Equal(t, []any{"float-4mm"}, querier.args)
	})

	t.Run("missing", func(t *testing.T) {
		table := natives.Table(natives.WithQuerier(&fakeQuerier{}))

		result, err := call(t, table, "lookup_value",
			value.String("glass_types"), value.String("price"), value.String("code"), value.String("none"),
		)
		require.NoError(t, err)

		assert.Equal(t, value.Null{}, result)
	})

	t.Run("rejections are reported", func(t *testing.T) {
		events := make([]sandbox.Event, 0)
		sb := sandbox.New(sandbox.WithReporter(sandbox.ReporterFunc(func(event sandbox.Event) {
			events = append(events, event)
		})))

		table := natives.Table(natives.WithQuerier(&fakeQuerier{}), natives.WithSandbox(sb))

		_, err := call(t, table, "lookup_value",
			value.String("glass_types"), value.String("price, secret"), value.String("code"), value.String("x"),
		)
		require.ErrorIs(t, err, sandbox.ErrQueryRejected)

		require.Len(t, events, 1)
		assert.Equal(t, "price, secret", events[0].Identifier)
	})
}
