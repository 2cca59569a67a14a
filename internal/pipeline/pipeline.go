package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/artuross/formula-engine/internal/defaults"
	"github.com/artuross/formula-engine/internal/formula/ast"
	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/artuross/formula-engine/internal/formula/interpreter"
	"github.com/artuross/formula-engine/internal/formula/lexer"
	"github.com/artuross/formula-engine/internal/formula/natives"
	"github.com/artuross/formula-engine/internal/formula/parser"
	"github.com/artuross/formula-engine/internal/formula/sandbox"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/artuross/formula-engine/internal/log/semconv"
	"github.com/artuross/formula-engine/internal/pipeline/cachekey"
	"github.com/artuross/formula-engine/internal/util/timeutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	tracerName = "github.com/artuross/formula-engine/internal/pipeline"
)

type CachePolicy struct {
	Enabled bool
	TTL     time.Duration
}

type Formula struct {
	// ID is empty for ad-hoc sources.
	ID          string
	Source      string
	Cache       CachePolicy
	InputSchema []byte
}

type Result struct {
	Success     bool
	Value       value.Value
	Error       *formulaerr.Info
	Cached      bool
	ExecutionID string
	Duration    time.Duration
}

// Cache stores successful results. Implementations must be safe for
// concurrent use; the last writer for a key wins.
type Cache interface {
	Get(ctx context.Context, key string) (value.Value, bool, error)
	Set(ctx context.Context, key string, v value.Value, ttl time.Duration) error
}

type ExecutionReport struct {
	FormulaID   string
	ExecutionID string
	Success     bool
	ErrorKind   formulaerr.Kind
	Cached      bool
	Duration    time.Duration
}

// Reporter receives one report per Execute call. Implementations must not
// block.
type Reporter interface {
	ReportExecution(report ExecutionReport)
}

type nopReporter struct{}

func (nopReporter) ReportExecution(ExecutionReport) {}

type Pipeline struct {
	cache       Cache
	reporter    Reporter
	security    sandbox.Reporter
	natives     []natives.Option
	schemas     *schemaCache
	clock       timeutil.Clock
	tracer      trace.Tracer
	concurrency int
}

func New(options ...func(*Pipeline)) *Pipeline {
	pipeline := Pipeline{
		reporter:    nopReporter{},
		security:    sandbox.ReporterFunc(func(sandbox.Event) {}),
		schemas:     newSchemaCache(),
		clock:       defaults.Clock,
		tracer:      defaults.TraceProvider.Tracer(tracerName),
		concurrency: runtime.GOMAXPROCS(0),
	}

	for _, apply := range options {
		apply(&pipeline)
	}

	return &pipeline
}

func WithCache(cache Cache) func(*Pipeline) {
	return func(p *Pipeline) {
		p.cache = cache
	}
}

func WithReporter(reporter Reporter) func(*Pipeline) {
	return func(p *Pipeline) {
		p.reporter = reporter
	}
}

func WithSecurityReporter(reporter sandbox.Reporter) func(*Pipeline) {
	return func(p *Pipeline) {
		p.security = reporter
	}
}

func WithNatives(options ...natives.Option) func(*Pipeline) {
	return func(p *Pipeline) {
		p.natives = append(p.natives, options...)
	}
}

func WithClock(clock timeutil.Clock) func(*Pipeline) {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

func WithTracerProvider(tp trace.TracerProvider) func(*Pipeline) {
	return func(p *Pipeline) {
		p.tracer = tp.Tracer(tracerName)
	}
}

// WithConcurrency bounds the number of evaluations ExecuteAll runs at once.
func WithConcurrency(n int) func(*Pipeline) {
	return func(p *Pipeline) {
		p.concurrency = max(n, 1)
	}
}

// Execute evaluates formula against inputs. It never returns an error: every
// failure is described in the result, and the reporter hears about every
// call.
func (p *Pipeline) Execute(ctx context.Context, formula Formula, inputs value.Map) Result {
	start := p.clock.Now()
	executionID := uuid.NewString()

	ctx, span := p.tracer.Start(ctx, "Execute", trace.WithAttributes(
		attribute.String(semconv.FormulaID, formula.ID),
		attribute.String(semconv.ExecutionID, executionID),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx).With().
		Str(semconv.FormulaID, formula.ID).
		Str(semconv.ExecutionID, executionID).
		Logger()
	ctx = logger.WithContext(ctx)

	if inputs == nil {
		inputs = value.Map{}
	}

	result := p.execute(ctx, formula, inputs, executionID)
	result.ExecutionID = executionID
	result.Duration = p.clock.Since(start)

	report := ExecutionReport{
		FormulaID:   formula.ID,
		ExecutionID: executionID,
		Success:     result.Success,
		Cached:      result.Cached,
		Duration:    result.Duration,
	}

	span.SetAttributes(attribute.Bool(semconv.Cached, result.Cached))

	if result.Error != nil {
		report.ErrorKind = result.Error.Kind
		span.SetStatus(codes.Error, string(result.Error.Kind))

		logger.Info().
			Str(semconv.ErrorKind, string(result.Error.Kind)).
			Dur("duration", result.Duration).
			Msg(result.Error.Message)
	} else {
		logger.Debug().
			Bool(semconv.Cached, result.Cached).
			Dur("duration", result.Duration).
			Msg("formula executed")
	}

	p.reporter.ReportExecution(report)

	return result
}

func (p *Pipeline) execute(ctx context.Context, formula Formula, inputs value.Map, executionID string) Result {
	logger := zerolog.Ctx(ctx)

	key := ""
	if formula.Cache.Enabled && p.cache != nil {
		k, err := cachekey.Compute(formula.ID, formula.Source, formula.InputSchema, inputs)
		if err != nil {
			logger.Warn().Err(err).Msg("cache key unavailable, evaluating uncached")
		} else {
			key = k
		}
	}

	if key != "" {
		cached, found, err := p.lookup(ctx, key)
		if err != nil {
			logger.Warn().Err(err).Str(semconv.CacheKey, key).Msg("cache lookup failed")
		}

		if found {
			return Result{
				Success: true,
				Value:   cached,
				Cached:  true,
			}
		}
	}

	if err := p.validate(formula.InputSchema, inputs); err != nil {
		return failure(err)
	}

	sb := sandbox.New(
		sandbox.WithReporter(p.security),
		sandbox.WithFormulaID(formula.ID),
		sandbox.WithExecutionID(executionID),
	)

	program, err := p.parse(ctx, sb, formula.Source)
	if err != nil {
		return failure(err)
	}

	result, err := p.evaluate(ctx, sb, program, inputs)
	if err != nil {
		return failure(err)
	}

	if key != "" {
		if err := p.store(ctx, key, result, formula.Cache.TTL); err != nil {
			logger.Warn().Err(err).Str(semconv.CacheKey, key).Msg("cache store failed")
		}
	}

	return Result{
		Success: true,
		Value:   result,
	}
}

func (p *Pipeline) lookup(ctx context.Context, key string) (value.Value, bool, error) {
	ctx, span := p.tracer.Start(ctx, "CacheLookup", trace.WithAttributes(attribute.String(semconv.CacheKey, key)))
	defer span.End()

	cached, found, err := p.cache.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("get cached result: %w", err)
	}

	return cached, found, nil
}

func (p *Pipeline) store(ctx context.Context, key string, result value.Value, ttl time.Duration) error {
	ctx, span := p.tracer.Start(ctx, "CacheStore", trace.WithAttributes(attribute.String(semconv.CacheKey, key)))
	defer span.End()

	if err := p.cache.Set(ctx, key, result, ttl); err != nil {
		return fmt.Errorf("set cached result: %w", err)
	}

	return nil
}

func (p *Pipeline) parse(ctx context.Context, sb *sandbox.Sandbox, source string) (*ast.Program, error) {
	_, span := p.tracer.Start(ctx, "Parse")
	defer span.End()

	sanitized := sb.Sanitize(source)

	lex := lexer.NewLexer(sanitized, lexer.WithLogger(*zerolog.Ctx(ctx)))

	return parser.NewParser(lex, parser.WithCallGuard(sb)).Parse()
}

func (p *Pipeline) evaluate(ctx context.Context, sb *sandbox.Sandbox, program *ast.Program, inputs value.Map) (value.Value, error) {
	ctx, span := p.tracer.Start(ctx, "Evaluate")
	defer span.End()

	options := append([]natives.Option{natives.WithSandbox(sb)}, p.natives...)
	evalContext := interpreter.NewContext(inputs, natives.Table(options...))

	result, err := interpreter.New(program, interpreter.WithCallGuard(sb)).Evaluate(ctx, evalContext)

	span.SetAttributes(attribute.Int(semconv.LoopIterations, evalContext.Iterations()))
	zerolog.Ctx(ctx).Debug().
		Int(semconv.LoopIterations, evalContext.Iterations()).
		Msg("formula evaluated")

	return result, err
}

// ExecuteAll evaluates formula once per input set, concurrently. Results are
// in input order and each is independent of the others.
func (p *Pipeline) ExecuteAll(ctx context.Context, formula Formula, inputs []value.Map) []Result {
	results := make([]Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			results[i] = p.Execute(ctx, formula, in)
			return nil
		})
	}

	// callbacks never fail
	_ = g.Wait()

	return results
}

func failure(err error) Result {
	return Result{
		Success: false,
		Error:   formulaerr.Describe(err),
	}
}
