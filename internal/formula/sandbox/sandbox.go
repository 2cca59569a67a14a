package sandbox

import (
	"github.com/artuross/formula-engine/internal/formula/formulaerr"
)

type EventKind string

const (
	EventKindRejectedQuery    EventKind = "rejected_query"
	EventKindSanitizedSource  EventKind = "sanitized_source"
	EventKindUnauthorizedCall EventKind = "unauthorized_call"
)

// Event describes a single sandbox rejection.
type Event struct {
	Kind        EventKind
	Message     string
	Identifier  string
	FormulaID   string
	ExecutionID string
	Line        int
	Column      int
}

// Reporter receives security events. Implementations must not block.
type Reporter interface {
	ReportSecurityEvent(event Event)
}

type ReporterFunc func(event Event)

func (f ReporterFunc) ReportSecurityEvent(event Event) {
	f(event)
}

type nopReporter struct{}

func (nopReporter) ReportSecurityEvent(Event) {}

// Sandbox applies the call, source and query checks for one formula
// execution and reports every rejection. A nil *Sandbox is usable and
// reports nothing.
type Sandbox struct {
	reporter    Reporter
	formulaID   string
	executionID string
}

func New(options ...func(*Sandbox)) *Sandbox {
	sandbox := Sandbox{
		reporter: nopReporter{},
	}

	for _, apply := range options {
		apply(&sandbox)
	}

	return &sandbox
}

func WithReporter(reporter Reporter) func(*Sandbox) {
	return func(s *Sandbox) {
		s.reporter = reporter
	}
}

func WithFormulaID(formulaID string) func(*Sandbox) {
	return func(s *Sandbox) {
		s.formulaID = formulaID
	}
}

func WithExecutionID(executionID string) func(*Sandbox) {
	return func(s *Sandbox) {
		s.executionID = executionID
	}
}

// CheckCall returns an UnauthorizedCallError for names off the allow-list.
func (s *Sandbox) CheckCall(name string, line, column int) error {
	if IsCallAllowed(name) {
		return nil
	}

	s.report(Event{
		Kind:       EventKindUnauthorizedCall,
		Message:    "call rejected: not on the allow-list",
		Identifier: name,
		Line:       line,
		Column:     column,
	})

	return &formulaerr.UnauthorizedCallError{
		Name:   name,
		Line:   line,
		Column: column,
	}
}

func (s *Sandbox) report(event Event) {
	if s == nil || s.reporter == nil {
		return
	}

	event.FormulaID = s.formulaID
	event.ExecutionID = s.executionID

	s.reporter.ReportSecurityEvent(event)
}
