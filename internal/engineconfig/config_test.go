package engineconfig_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/artuross/formula-engine/internal/engineconfig"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "formula.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestReadFile(t *testing.T) {
	t.Run("no path", func(t *testing.T) {
		cfg, err := engineconfig.ReadFile("")
		require.NoError(t, err)
		assert.Equal(t, engineconfig.Default(), cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg, err := engineconfig.ReadFile(filepath.Join(t.TempDir(), "nope.toml"))
		require.NoError(t, err)
		assert.Equal(t, engineconfig.Default(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		path := write(t, `
[cache]
enabled = false
path = "/var/lib/formula/results.db"
ttl = "15m"

[tables]
path = "tables.db"

[locale]
currency = "EUR"

[log]
level = "debug"
`)

		cfg, err := engineconfig.ReadFile(path)
		require.NoError(t, err)

		assert.False(t, cfg.Cache.Enabled)
		assert.Equal(t, "/var/lib/formula/results.db", cfg.Cache.Path)
		assert.Equal(t, 15*time.Minute, cfg.Cache.TTL.Duration)
		assert.Equal(t, "tables.db", cfg.Tables.Path)
		assert.Equal(t, "EUR", cfg.Locale.Currency)
		assert.Equal(t, "en-US", cfg.Locale.Language)
		assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel())
		assert.Len(t, cfg.NativeOptions(), 2)
	})
}

func TestReadFileErrors(t *testing.T) {
	type testCase struct {
		name    string
		content string
		message string
	}

	testCases := []testCase{
		{
			name:    "malformed",
			content: "[cache\nenabled = true",
			message: "unmarshal engine config file",
		},
		{
			name:    "bad duration",
			content: "[cache]\nttl = \"soon\"",
			message: "unmarshal engine config file",
		},
		{
			name:    "negative ttl",
			content: "[cache]\nttl = \"-1m\"",
			message: "cache ttl must not be negative",
		},
		{
			name:    "unknown key",
			content: "[cache]\nsize = 10",
			message: "unknown engine config keys: cache.size",
		},
		{
			name:    "unknown level",
			content: "[log]\nlevel = \"loud\"",
			message: "log level",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engineconfig.ReadFile(write(t, tc.content))
			assert.ErrorContains(t, err, tc.message)
		})
	}
}
