package resultcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/artuross/formula-engine/internal/defaults"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/artuross/formula-engine/internal/util/timeutil"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

const (
	tracerName = "github.com/artuross/formula-engine/internal/repository/resultcache"
)

const schema = `CREATE TABLE IF NOT EXISTS formula_results (
	cache_key  TEXT PRIMARY KEY,
	result     BLOB NOT NULL,
	expires_at INTEGER NOT NULL
)`

// SQLite persists results across processes as canonical CBOR, which keeps
// non-finite numbers. Expiry is stored as unix nanoseconds, 0 meaning never.
type SQLite struct {
	db     *sql.DB
	clock  timeutil.Clock
	tracer trace.Tracer
}

func OpenSQLite(ctx context.Context, path string, options ...func(*SQLite)) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	cache := SQLite{
		db:     db,
		clock:  defaults.Clock,
		tracer: defaults.TraceProvider.Tracer(tracerName),
	}

	for _, apply := range options {
		apply(&cache)
	}

	return &cache, nil
}

func WithSQLiteClock(clock timeutil.Clock) func(*SQLite) {
	return func(s *SQLite) {
		s.clock = clock
	}
}

func WithTracerProvider(tp trace.TracerProvider) func(*SQLite) {
	return func(s *SQLite) {
		s.tracer = tp.Tracer(tracerName)
	}
}

func (s *SQLite) Get(ctx context.Context, key string) (value.Value, bool, error) {
	ctx, span := s.tracer.Start(ctx, "Get")
	defer span.End()

	var (
		encoded   []byte
		expiresAt int64
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT result, expires_at FROM formula_results WHERE cache_key = ?", key,
	).Scan(&encoded, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query result: %w", err)
	}

	if expiresAt != 0 && s.clock.Now().UnixNano() >= expiresAt {
		return nil, false, nil
	}

	decoded, err := value.UnmarshalCBOR(encoded)
	if err != nil {
		return nil, false, fmt.Errorf("decode result: %w", err)
	}

	return decoded, true, nil
}

// Set stores v under key, replacing any previous result. A non-positive ttl
// never expires.
func (s *SQLite) Set(ctx context.Context, key string, v value.Value, ttl time.Duration) error {
	ctx, span := s.tracer.Start(ctx, "Set")
	defer span.End()

	encoded, err := value.MarshalCBOR(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	expiresAt := int64(0)
	if ttl > 0 {
		expiresAt = s.clock.Now().Add(ttl).UnixNano()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO formula_results (cache_key, result, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE SET result = excluded.result, expires_at = excluded.expires_at`,
		key, encoded, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("store result: %w", err)
	}

	return nil
}

// Purge deletes expired results and returns how many were removed.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "Purge")
	defer span.End()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM formula_results WHERE expires_at != 0 AND expires_at <= ?", s.clock.Now().UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired results: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted results: %w", err)
	}

	return removed, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
