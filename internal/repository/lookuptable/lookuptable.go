// Package lookuptable exposes a SQLite database of reference data (price
// lists, surcharges) to formulas. The connection is opened query-only.
package lookuptable

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/artuross/formula-engine/internal/defaults"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

const (
	tracerName = "github.com/artuross/formula-engine/internal/repository/lookuptable"
)

type Tables struct {
	db     *sql.DB
	tracer trace.Tracer
}

func Open(ctx context.Context, path string, options ...func(*Tables)) (*Tables, error) {
	dsn := (&url.URL{
		Scheme:   "file",
		Opaque:   path,
		RawQuery: "_pragma=query_only(1)&_pragma=busy_timeout(5000)",
	}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	tables := Tables{
		db:     db,
		tracer: defaults.TraceProvider.Tracer(tracerName),
	}

	for _, apply := range options {
		apply(&tables)
	}

	return &tables, nil
}

func WithTracerProvider(tp trace.TracerProvider) func(*Tables) {
	return func(t *Tables) {
		t.tracer = tp.Tracer(tracerName)
	}
}

// Query runs query and returns every row keyed by column name. Byte slices
// are returned as strings.
func (t *Tables) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	ctx, span := t.tracer.Start(ctx, "Query", trace.WithAttributes(attribute.String("db.statement", query)))
	defer span.End()

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("run query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			row[column] = normalize(values[i])
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(result)))

	return result, nil
}

func (t *Tables) Close() error {
	return t.db.Close()
}

func normalize(raw any) any {
	switch v := raw.(type) {
	case []byte:
		return string(v)

	case int64:
		return float64(v)

	default:
		return v
	}
}
