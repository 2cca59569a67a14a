package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/artuross/formula-engine/internal/commandinit"
	"github.com/artuross/formula-engine/internal/commands/repl/config"
	"github.com/artuross/formula-engine/internal/engineconfig"
	"github.com/peterh/liner"
	cli "github.com/urfave/cli/v2"
)

const (
	promptMain = "formula> "
	promptCont = "    ...> "
)

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Starts an interactive session. Entries without return are evaluated as expressions.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path of the engine configuration file. Defaults to $" + engineconfig.EnvPath + ".",
			},
			&cli.StringFlag{
				Name:  "history-file",
				Usage: "Where to keep the line history. Empty disables history.",
				Value: defaultHistoryFile(),
			},
		},
		Action: run,
	}
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

	logger := commandinit.NewLogger(engineConfig.LogLevel()).With().Str("command", "repl").Logger()
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

	session := NewSession(engine.Pipeline, engine.Policy)

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if cfg.HistoryFilePath != "" {
		if f, err := os.Open(cfg.HistoryFilePath); err == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}

		defer func() {
			if f, err := os.Create(cfg.HistoryFilePath); err == nil {
				_, _ = line.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	out := cliCtx.App.Writer

	for {
		entry, ok := readEntry(line)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}

		result, quit := session.Handle(ctx, entry)
		if quit {
			return nil
		}

		if result != "" {
			fmt.Fprintln(out, result)
		}

		line.AppendHistory(strings.ReplaceAll(entry, "\n", " "))
	}
}

// readEntry keeps prompting while brackets are open. ok is false on EOF or
// Ctrl-C.
func readEntry(line *liner.State) (string, bool) {
	var sb strings.Builder

	for {
		prompt := promptMain
		if sb.Len() > 0 {
			prompt = promptCont
		}

		text, err := line.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", false
		}
		if err != nil {
			return sb.String(), true
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)

		if !Incomplete(sb.String()) {
			return sb.String(), true
		}
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".formula_history")
}
