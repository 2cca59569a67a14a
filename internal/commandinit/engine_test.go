package commandinit_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/artuross/formula-engine/internal/commandinit"
	"github.com/artuross/formula-engine/internal/defaults"
	"github.com/artuross/formula-engine/internal/engineconfig"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/artuross/formula-engine/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tablesPath := filepath.Join(dir, "tables.db")

	db, err := sql.Open("sqlite", tablesPath)
	require.NoError(t, err)

	_, err = db.Exec("CREATE TABLE profiles (code TEXT, price REAL)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO profiles VALUES ('P1', 12.5)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := engineconfig.Default()
	cfg.Cache.Path = filepath.Join(dir, "results.db")
	cfg.Tables.Path = tablesPath

	engine, err := commandinit.NewEngine(ctx, cfg, zerolog.Nop(), defaults.TraceProvider)
	require.NoError(t, err)
	defer engine.Close()

	formula := pipeline.Formula{
		ID:     "profile",
		Source: "return lookup_value('profiles', 'price', 'code', get_option('profile')) * 2;",
		Cache:  engine.Policy,
	}
	inputs := value.Map{"profile": value.String("P1")}

	first := engine.Pipeline.Execute(ctx, formula, inputs)
	require.True(t, first.Success, "error: %+v", first.Error)
	assert.Equal(t, value.Value(value.Number(25)), first.Value)

	second := engine.Pipeline.Execute(ctx, formula, inputs)
	require.True(t, second.Success)
	assert.True(t, second.Cached)
}

func TestNewEngineWithoutCache(t *testing.T) {
	cfg := engineconfig.Default()
	cfg.Cache.Enabled = false

	engine, err := commandinit.NewEngine(context.Background(), cfg, zerolog.Nop(), defaults.TraceProvider)
	require.NoError(t, err)
	defer engine.Close()

	formula := pipeline.Formula{Source: "return 1;", Cache: engine.Policy}

	for range 2 {
		result := engine.Pipeline.Execute(context.Background(), formula, nil)
		require.True(t, result.Success)
		assert.False(t, result.Cached)
	}
}

func TestNewEngineMemoryCache(t *testing.T) {
	ctx := context.Background()

	engine, err := commandinit.NewEngine(ctx, engineconfig.Default(), zerolog.Nop(), defaults.TraceProvider)
	require.NoError(t, err)

	formula := pipeline.Formula{Source: "return 6 * 7;", Cache: engine.Policy}

	first := engine.Pipeline.Execute(ctx, formula, nil)
	second := engine.Pipeline.Execute(ctx, formula, nil)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, value.Value(value.Number(42)), second.Value)

	// stops the purge loop
	require.NoError(t, engine.Close())
}
