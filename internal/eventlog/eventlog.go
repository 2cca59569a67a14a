// Package eventlog writes execution reports and security events as
// structured log lines.
package eventlog

import (
	"github.com/artuross/formula-engine/internal/formula/sandbox"
	"github.com/artuross/formula-engine/internal/log/semconv"
	"github.com/artuross/formula-engine/internal/pipeline"
	"github.com/rs/zerolog"
)

var (
	_ pipeline.Reporter = (*Logger)(nil)
	_ sandbox.Reporter  = (*Logger)(nil)
)

type Logger struct {
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Logger {
	return &Logger{
		logger: logger.With().Str("component", "eventlog").Logger(),
	}
}

func (l *Logger) ReportExecution(report pipeline.ExecutionReport) {
	event := l.logger.Info()
	if !report.Success {
		event = l.logger.Warn().Str(semconv.ErrorKind, string(report.ErrorKind))
	}

	event.
		Str(semconv.FormulaID, report.FormulaID).
		Str(semconv.ExecutionID, report.ExecutionID).
		Bool("success", report.Success).
		Bool(semconv.Cached, report.Cached).
		Dur("duration", report.Duration).
		Msg("formula execution")
}

// Security events are logged at error level.
func (l *Logger) ReportSecurityEvent(event sandbox.Event) {
	entry := l.logger.Error().
		Str(semconv.SecurityEvent, string(event.Kind)).
		Str(semconv.FormulaID, event.FormulaID).
		Str(semconv.ExecutionID, event.ExecutionID)

	if event.Identifier != "" {
		entry = entry.Str(semconv.Identifier, event.Identifier)
	}

	if event.Line != 0 {
		entry = entry.Int("line", event.Line).Int("column", event.Column)
	}

	entry.Msg(event.Message)
}
