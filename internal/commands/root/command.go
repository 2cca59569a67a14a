package root

import (
	"github.com/artuross/formula-engine/internal/commands/check"
	"github.com/artuross/formula-engine/internal/commands/eval"
	"github.com/artuross/formula-engine/internal/commands/repl"
	cli "github.com/urfave/cli/v2"
)

func NewCommand() *cli.App {
	return &cli.App{
		Name:  "formula",
		Usage: "Evaluates sandboxed pricing formulas.",
		Commands: []*cli.Command{
			check.NewCommand(),
			eval.NewCommand(),
			repl.NewCommand(),
		},
	}
}
