package commandinit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/artuross/formula-engine/internal/engineconfig"
	"github.com/artuross/formula-engine/internal/eventlog"
	"github.com/artuross/formula-engine/internal/formula/natives"
	"github.com/artuross/formula-engine/internal/pipeline"
	"github.com/artuross/formula-engine/internal/repository/lookuptable"
	"github.com/artuross/formula-engine/internal/repository/resultcache"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func NewLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).
		Level(level).
		With().
		Timestamp().
		Logger()
}

const purgeInterval = 5 * time.Minute

// Engine is a pipeline with the stores it owns.
type Engine struct {
	Pipeline *pipeline.Pipeline
	Policy   pipeline.CachePolicy

	closers []func() error
}

// NewEngine builds a pipeline from cfg: the SQLite or in-memory result
// cache, lookup tables when configured, and the event log reporter.
func NewEngine(ctx context.Context, cfg *engineconfig.Config, logger zerolog.Logger, tp trace.TracerProvider) (*Engine, error) {
	engine := Engine{
		Policy: pipeline.CachePolicy{
			Enabled: cfg.Cache.Enabled,
			TTL:     cfg.Cache.TTL.Duration,
		},
	}

	events := eventlog.New(logger)

	options := []func(*pipeline.Pipeline){
		pipeline.WithReporter(events),
		pipeline.WithSecurityReporter(events),
		pipeline.WithTracerProvider(tp),
		pipeline.WithNatives(cfg.NativeOptions()...),
	}

	if cfg.Cache.Enabled {
		cache, err := engine.openCache(ctx, cfg.Cache.Path, tp)
		if err != nil {
			engine.Close()
			return nil, err
		}

		options = append(options, pipeline.WithCache(cache))
	}

	if cfg.Tables.Path != "" {
		tables, err := lookuptable.Open(ctx, cfg.Tables.Path, lookuptable.WithTracerProvider(tp))
		if err != nil {
			engine.Close()
			return nil, fmt.Errorf("open lookup tables: %w", err)
		}

		engine.closers = append(engine.closers, tables.Close)
		options = append(options, pipeline.WithNatives(natives.WithQuerier(tables)))
	}

	engine.Pipeline = pipeline.New(options...)

	return &engine, nil
}

func (e *Engine) openCache(ctx context.Context, path string, tp trace.TracerProvider) (pipeline.Cache, error) {
	if path == "" {
		memory := resultcache.NewMemory()

		ctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})

		go func() {
			defer close(done)
			_ = memory.Run(ctx, purgeInterval)
		}()

		e.closers = append(e.closers, func() error {
			cancel()
			<-done

			return nil
		})

		return memory, nil
	}

	cache, err := resultcache.OpenSQLite(ctx, path, resultcache.WithTracerProvider(tp))
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}

	e.closers = append(e.closers, cache.Close)

	return cache, nil
}

func (e *Engine) Close() error {
	var errs []error
	for _, closer := range e.closers {
		errs = append(errs, closer())
	}

	return errors.Join(errs...)
}
