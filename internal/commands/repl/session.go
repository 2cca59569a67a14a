package repl

import (
	"context"
	"fmt"
	"sort"
	"strings"

	evalconfig "github.com/artuross/formula-engine/internal/commands/eval/config"
	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/artuross/formula-engine/internal/formula/lexer"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/artuross/formula-engine/internal/pipeline"
)

const help = `:set name value   set an option value (JSON or plain text)
:unset name       remove an option value
:inputs           show the current option values
:quit             leave the session`

// Session evaluates one formula per entry against a mutable set of option
// values.
type Session struct {
	pipeline *pipeline.Pipeline
	policy   pipeline.CachePolicy
	inputs   value.Map
}

func NewSession(p *pipeline.Pipeline, policy pipeline.CachePolicy) *Session {
	return &Session{
		pipeline: p,
		policy:   policy,
		inputs:   value.Map{},
	}
}

// Handle runs one entry and returns the text to print. quit reports whether
// the session should end.
func (s *Session) Handle(ctx context.Context, entry string) (out string, quit bool) {
	entry = strings.TrimSpace(entry)

	switch {
	case entry == "":
		return "", false

	case strings.HasPrefix(entry, ":"):
		return s.command(entry)

	default:
		return s.evaluate(ctx, entry), false
	}
}

func (s *Session) command(entry string) (string, bool) {
	name, args, _ := strings.Cut(entry, " ")
	args = strings.TrimSpace(args)

	switch strings.ToLower(name) {
	case ":quit", ":q", ":exit":
		return "", true

	case ":help":
		return help, false

	case ":set":
		key, raw, ok := strings.Cut(args, " ")
		if !ok {
			return "usage: :set name value", false
		}

		key, v, err := evalconfig.ParseInput(key + "=" + strings.TrimSpace(raw))
		if err != nil {
			return err.Error(), false
		}

		s.inputs[key] = v

		return fmt.Sprintf("%s = %s", key, render(v)), false

	case ":unset":
		if args == "" {
			return "usage: :unset name", false
		}

		delete(s.inputs, args)

		return "", false

	case ":inputs":
		keys := value.Keys(s.inputs)
		sort.Strings(keys)

		lines := make([]string, 0, len(keys))
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("%s = %s", key, render(s.inputs[key])))
		}

		return strings.Join(lines, "\n"), false

	default:
		return fmt.Sprintf("unknown command %s, type :help", name), false
	}
}

func (s *Session) evaluate(ctx context.Context, entry string) string {
	source := entry
	if !hasReturn(entry) {
		source = "return " + strings.TrimSuffix(entry, ";") + ";"
	}

	formula := pipeline.Formula{
		Source: source,
		Cache:  s.policy,
	}

	result := s.pipeline.Execute(ctx, formula, s.inputs)
	if !result.Success {
		return formulaerr.RenderInfo(result.Error, source)
	}

	return render(result.Value)
}

// Incomplete reports whether entry still has unclosed brackets, so the
// prompt should continue on the next line.
func Incomplete(entry string) bool {
	depth := 0

	for _, token := range lexer.Tokenize(entry) {
		if token.Type != lexer.TokenTypePunctuation {
			continue
		}

		switch token.Value {
		case "(", "[", "{":
			depth++

		case ")", "]", "}":
			depth--
		}
	}

	return depth > 0
}

func hasReturn(entry string) bool {
	for _, token := range lexer.Tokenize(entry) {
		if token.Is(lexer.TokenTypeKeyword, "return") {
			return true
		}
	}

	return false
}

func render(v value.Value) string {
	data, err := value.Encode(v)
	if err != nil {
		return value.ToString(v)
	}

	return string(data)
}
