package natives

import (
	"context"
	"fmt"

	"github.com/artuross/formula-engine/internal/formula/value"
)

// queryTable runs a single-table read-only SELECT and returns its rows as
// maps. Extra arguments bind to the query placeholders.
func (c *config) queryTable(ctx context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 1, -1); err != nil {
		return nil, err
	}

	query := value.ToString(args[0])

	if err := c.guard.CheckQuery(query); err != nil {
		return nil, err
	}

	return c.query(ctx, query, args[1:])
}

// lookupValue returns column from the first row of table whose keyColumn
// equals key, or null when there is none.
func (c *config) lookupValue(ctx context.Context, args []value.Value) (value.Value, error) {
	if err := arity(args, 4, 4); err != nil {
		return nil, err
	}

	table := value.ToString(args[0])
	column := value.ToString(args[1])
	keyColumn := value.ToString(args[2])

	for _, identifier := range []string{table, column, keyColumn} {
		if err := c.guard.CheckIdentifier(identifier); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? LIMIT 1", column, table, keyColumn)

	if err := c.guard.CheckQuery(query); err != nil {
		return nil, err
	}

	result, err := c.query(ctx, query, args[3:])
	if err != nil {
		return nil, err
	}

	rows := result.(value.List)
	if len(rows) == 0 {
		return value.Null{}, nil
	}

	return getColumn(rows[0], column), nil
}

func (c *config) query(ctx context.Context, query string, args []value.Value) (value.Value, error) {
	if c.querier == nil {
		return nil, ErrNoTables
	}

	params := make([]any, 0, len(args))
	for _, arg := range args {
		params = append(params, value.ToAny(arg))
	}

	rows, err := c.querier.Query(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}

	result := make(value.List, 0, len(rows))
	for _, row := range rows {
		converted, err := value.MapFromAny(row)
		if err != nil {
			return nil, fmt.Errorf("convert row: %w", err)
		}

		result = append(result, converted)
	}

	return result, nil
}

func getColumn(row value.Value, column string) value.Value {
	m, ok := row.(value.Map)
	if !ok {
		return value.Null{}
	}

	v, ok := m[column]
	if !ok {
		return value.Null{}
	}

	return value.Normalize(v)
}
