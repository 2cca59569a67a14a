package config

import (
	"github.com/artuross/formula-engine/internal/engineconfig"
)

type Flagger interface {
	String(name string) string
}

type Config struct {
	EngineConfigPath string
	HistoryFilePath  string
}

func Read(flags Flagger, getEnv func(string) string) (*Config, error) {
	engineConfig := flags.String("config")
	if engineConfig == "" {
		engineConfig = getEnv(engineconfig.EnvPath)
	}

	cfg := Config{
		EngineConfigPath: engineConfig,
		HistoryFilePath:  flags.String("history-file"),
	}

	return &cfg, nil
}
