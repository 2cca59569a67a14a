package check

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/artuross/formula-engine/internal/formula/ast"
	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/artuross/formula-engine/internal/formula/lexer"
	"github.com/artuross/formula-engine/internal/formula/parser"
	"github.com/artuross/formula-engine/internal/formula/sandbox"
	cli "github.com/urfave/cli/v2"
)

var ErrCheckFailed = errors.New("check failed")

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Parses a formula file without evaluating it.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path of the formula source.",
				Required: true,
			},
		},
		Action: run,
	}
}

func run(cliCtx *cli.Context) error {
	path := cliCtx.String("file")

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read formula file: %w", err)
	}

	report, ok := Check(string(source))
	fmt.Fprintln(cliCtx.App.Writer, report)

	if !ok {
		return ErrCheckFailed
	}

	return nil
}

// Check sanitizes and parses source. It returns a human readable report and
// whether the formula is accepted.
func Check(source string) (string, bool) {
	var events []sandbox.Event

	sb := sandbox.New(sandbox.WithReporter(sandbox.ReporterFunc(func(event sandbox.Event) {
		events = append(events, event)
	})))

	sanitized := sb.Sanitize(source)

	program, err := parser.NewParser(lexer.NewLexer(sanitized), parser.WithCallGuard(sb)).Parse()

	report := ""
	for _, event := range events {
		if event.Kind != sandbox.EventKindSanitizedSource {
			continue
		}

		report += fmt.Sprintf("warning: %s at %d:%d (%s)\n", event.Message, event.Line, event.Column, event.Identifier)
	}

	if err != nil {
		return report + formulaerr.Render(err, sanitized), false
	}

	if calls := ast.FunctionNames(program); len(calls) > 0 {
		report += "calls: " + strings.Join(calls, ", ") + "\n"
	}

	return report + "ok", true
}
