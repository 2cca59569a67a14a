package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/artuross/formula-engine/internal/engineconfig"
	"github.com/artuross/formula-engine/internal/formula/value"
)

type Flagger interface {
	String(name string) string
	StringSlice(name string) []string
}

type Config struct {
	EngineConfigPath string
	FormulaFilePath  string
	FormulaID        string
	Inputs           value.Map
	SchemaFilePath   string
}

func Read(flags Flagger, getEnv func(string) string) (*Config, error) {
	// flags - required
	formulaFile := flags.String("file")
	if formulaFile == "" {
		return nil, fmt.Errorf("flag --file is required")
	}

	// flags - optional
	engineConfig := flags.String("config")
	if engineConfig == "" {
		engineConfig = getEnv(engineconfig.EnvPath)
	}

	inputs := value.Map{}

	if path := flags.String("inputs"); path != "" {
		fromFile, err := readInputsFile(path)
		if err != nil {
			return nil, err
		}

		inputs = fromFile
	}

	for _, assignment := range flags.StringSlice("input") {
		name, v, err := ParseInput(assignment)
		if err != nil {
			return nil, err
		}

		inputs[name] = v
	}

	cfg := Config{
		EngineConfigPath: engineConfig,
		FormulaFilePath:  formulaFile,
		FormulaID:        flags.String("id"),
		Inputs:           inputs,
		SchemaFilePath:   flags.String("schema"),
	}

	return &cfg, nil
}

// ParseInput splits a name=value assignment. The value is read as JSON
// when it parses as JSON and as a plain string otherwise.
func ParseInput(assignment string) (string, value.Value, error) {
	name, raw, ok := strings.Cut(assignment, "=")
	name = strings.TrimSpace(name)

	if !ok || name == "" {
		return "", nil, fmt.Errorf("invalid input %q, expected name=value", assignment)
	}

	decoded, err := value.Decode([]byte(raw))
	if err != nil {
		return name, value.String(raw), nil
	}

	return name, decoded, nil
}

func readInputsFile(path string) (value.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inputs file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal inputs file: %w", err)
	}

	inputs, err := value.MapFromAny(raw)
	if err != nil {
		return nil, fmt.Errorf("convert inputs: %w", err)
	}

	return inputs, nil
}
