package lookuptable_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/artuross/formula-engine/internal/repository/lookuptable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tables.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	statements := []string{
		"CREATE TABLE glass (code TEXT PRIMARY KEY, name TEXT, price_sqm REAL, stock INTEGER)",
		"INSERT INTO glass VALUES ('G4', 'Float 4mm', 21.5, 10)",
		"INSERT INTO glass VALUES ('G6', 'Float 6mm', 29.0, NULL)",
	}

	for _, statement := range statements {
		_, err := db.Exec(statement)
		require.NoError(t, err)
	}

	return path
}

func TestQuery(t *testing.T) {
	ctx := context.Background()

	tables, err := lookuptable.Open(ctx, seed(t))
	require.NoError(t, err)
	defer tables.Close()

	t.Run("rows", func(t *testing.T) {
		rows, err := tables.Query(ctx, "SELECT code, price_sqm, stock FROM glass ORDER BY code")
		require.NoError(t, err)

		assert.Equal(t, []map[string]any{
			{"code": "G4", "price_sqm": 21.5, "stock": float64(10)},
			{"code": "G6", "price_sqm": 29.0, "stock": nil},
		}, rows)
	})

	t.Run("placeholders", func(t *testing.T) {
		rows, err := tables.Query(ctx, "SELECT name FROM glass WHERE code = ? LIMIT 1", "G6")
		require.NoError(t, err)

		assert.Equal(t, []map[string]any{{"name": "Float 6mm"}}, rows)
	})

	t.Run("no rows", func(t *testing.T) {
		rows, err := tables.Query(ctx, "SELECT name FROM glass WHERE code = ?", "G8")
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("read only", func(t *testing.T) {
		_, err := tables.Query(ctx, "DELETE FROM glass")
		assert.Error(t, err)
	})

	t.Run("invalid query", func(t *testing.T) {
		_, err := tables.Query(ctx, "SELECT nope FROM glass")
		assert.ErrorContains(t, err, "run query")
	})
}
