package eval

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/artuross/formula-engine/internal/commandinit"
	"github.com/artuross/formula-engine/internal/commands/eval/config"
	"github.com/artuross/formula-engine/internal/engineconfig"
	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/artuross/formula-engine/internal/pipeline"
	cli "github.com/urfave/cli/v2"
)

var ErrEvaluationFailed = errors.New("evaluation failed")

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "eval",
		Usage: "Evaluates a formula file and prints the result as JSON.",
		Flags: []cli.Flag{
			// required
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path of the formula source.",
				Required: true,
			},

			// optional
			&cli.StringFlag{
				Name:  "inputs",
				Usage: "Path of a JSON object with the option values.",
			},
			&cli.StringSliceFlag{
				Name:  "input",
				Usage: "Option value as name=value. Overrides --inputs. Repeatable.",
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "Formula ID used in logs and cache keys.",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "Path of a JSON Schema the inputs must satisfy.",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path of the engine configuration file. Defaults to $" + engineconfig.EnvPath + ".",
			},
		},
		Action: run,
	}
}

type output struct {
	Success     bool             `json:"success"`
	Value       any              `json:"value,omitempty"`
	Error       *formulaerr.Info `json:"error,omitempty"`
	Cached      bool             `json:"cached"`
	ExecutionID string           `json:"execution_id"`
	DurationMS  float64          `json:"duration_ms"`
}

func run(cliCtx *cli.Context) error {
	ctx := cliCtx.Context

	cfg, err := config.Read(cliCtx, os.Getenv)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	engineConfig, err := engineconfig.ReadFile(cfg.EngineConfigPath)
	if err != nil {
		return fmt.Errorf("read engine config: %w", err)
	}

	source, err := os.ReadFile(cfg.FormulaFilePath)
	if err != nil {
		return fmt.Errorf("read formula file: %w", err)
	}

	var schema []byte
	if cfg.SchemaFilePath != "" {
		schema, err = os.ReadFile(cfg.SchemaFilePath)
		if err != nil {
			return fmt.Errorf("read schema file: %w", err)
		}
	}

	logger := commandinit.NewLogger(engineConfig.LogLevel()).With().Str("command", "eval").Logger()
	ctx = logger.WithContext(ctx)

	tracerProvider, tpShutdown, err := commandinit.NewOpenTelemetry(ctx, engineConfig.Telemetry.ServiceName, engineConfig.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("create OTEL provider: %w", err)
	}
	defer tpShutdown(ctx)

	engine, err := commandinit.NewEngine(ctx, engineConfig, logger, tracerProvider)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	defer engine.Close()

	formula := pipeline.Formula{
		ID:          cfg.FormulaID,
		Source:      string(source),
		Cache:       engine.Policy,
		InputSchema: schema,
	}

	result := engine.Pipeline.Execute(ctx, formula, cfg.Inputs)

	if err := writeResult(cliCtx.App.Writer, result); err != nil {
		return err
	}

	if !result.Success {
		return ErrEvaluationFailed
	}

	return nil
}

func writeResult(w io.Writer, result pipeline.Result) error {
	out := output{
		Success:     result.Success,
		Error:       result.Error,
		Cached:      result.Cached,
		ExecutionID: result.ExecutionID,
		DurationMS:  float64(result.Duration.Microseconds()) / 1000,
	}

	if result.Value != nil {
		out.Value = value.ToAny(result.Value)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}
