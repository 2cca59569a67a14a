package engineconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/artuross/formula-engine/internal/formula/natives"
	"github.com/rs/zerolog"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "FORMULA_CONFIG"

type Config struct {
	Cache     CacheConfig     `toml:"cache"`
	Tables    TablesConfig    `toml:"tables"`
	Locale    LocaleConfig    `toml:"locale"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Log       LogConfig       `toml:"log"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled"`

	// Path of the SQLite result store. Empty keeps results in memory.
	Path string   `toml:"path"`
	TTL  Duration `toml:"ttl"`
}

type TablesConfig struct {
	// Path of the SQLite database behind query_table and lookup_value.
	Path string `toml:"path"`
}

type LocaleConfig struct {
	Currency string `toml:"currency"`
	Language string `toml:"language"`
}

type TelemetryConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service-name"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as "90s" or "1h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}

	d.Duration = parsed

	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled: true,
			TTL:     Duration{time.Hour},
		},
		Locale: LocaleConfig{
			Currency: natives.DefaultCurrency,
			Language: natives.DefaultLanguage,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "formula",
		},
		Log: LogConfig{
			Level: zerolog.InfoLevel.String(),
		},
	}
}

// ReadFile loads the config at path over the defaults. An empty path or a
// missing file yields the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read engine config file: %w", err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshal engine config file: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}

		return nil, fmt.Errorf("unknown engine config keys: %s", strings.Join(keys, ", "))
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

func (c *Config) LogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}

	return level
}

// NativeOptions configures the native function table from the locale.
func (c *Config) NativeOptions() []natives.Option {
	return []natives.Option{
		natives.WithCurrency(c.Locale.Currency),
		natives.WithLanguage(c.Locale.Language),
	}
}
