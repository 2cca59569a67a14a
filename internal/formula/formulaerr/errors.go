package formulaerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindSyntax                     Kind = "SyntaxError"
	KindUnauthorizedCall           Kind = "UnauthorizedCallError"
	KindDivisionByZero             Kind = "DivisionByZeroError"
	KindUndefinedVariable          Kind = "UndefinedVariableError"
	KindLoopIterationLimitExceeded Kind = "LoopIterationLimitExceededError"
	KindNoReturnValue              Kind = "NoReturnValueError"
	KindEvaluation                 Kind = "EvaluationError"
	KindInputValidation            Kind = "InputValidationError"
	KindInternal                   Kind = "InternalError"
)

var (
	_ Error = (*DivisionByZeroError)(nil)
	_ Error = (*EvaluationError)(nil)
	_ Error = (*InputValidationError)(nil)
	_ Error = (*LoopIterationLimitExceededError)(nil)
	_ Error = (*NoReturnValueError)(nil)
	_ Error = (*SyntaxError)(nil)
	_ Error = (*UnauthorizedCallError)(nil)
	_ Error = (*UndefinedVariableError)(nil)
)

// Error is implemented by every failure an evaluation can surface to the
// caller. Position returns zeros when the failure has no source location.
type Error interface {
	error
	Kind() Kind
	Position() (line, column int)
}

type (
	// SyntaxError covers unexpected tokens, unbalanced structure and a
	// formula without any return statement (Reason is KindNoReturnValue).
	SyntaxError struct {
		Message string
		Line    int
		Column  int
		Reason  Kind
	}

	UnauthorizedCallError struct {
		Name   string
		Line   int
		Column int
	}

	DivisionByZeroError struct {
		Line   int
		Column int
	}

	UndefinedVariableError struct {
		Name   string
		Line   int
		Column int
		Hint   string
	}

	LoopIterationLimitExceededError struct {
		Limit  int
		Line   int
		Column int
	}

	NoReturnValueError struct{}

	EvaluationError struct {
		Message string
		Line    int
		Column  int
		Err     error
	}

	InputValidationError struct {
		Message string
		Err     error
	}
)

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
}

func (e *SyntaxError) Kind() Kind                   { return KindSyntax }
func (e *SyntaxError) Position() (line, column int) { return e.Line, e.Column }

func (e *UnauthorizedCallError) Error() string {
	return fmt.Sprintf("call to %q is not permitted", e.Name)
}

func (e *UnauthorizedCallError) Kind() Kind                   { return KindUnauthorizedCall }
func (e *UnauthorizedCallError) Position() (line, column int) { return e.Line, e.Column }

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("division by zero on line %d", e.Line)
}

func (e *DivisionByZeroError) Kind() Kind                   { return KindDivisionByZero }
func (e *DivisionByZeroError) Position() (line, column int) { return e.Line, e.Column }

func (e *UndefinedVariableError) Error() string {
	msg := fmt.Sprintf("undefined variable %q on line %d", e.Name, e.Line)
	if e.Hint != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Hint)
	}

	return msg
}

func (e *UndefinedVariableError) Kind() Kind                   { return KindUndefinedVariable }
func (e *UndefinedVariableError) Position() (line, column int) { return e.Line, e.Column }

func (e *LoopIterationLimitExceededError) Error() string {
	return fmt.Sprintf("loop iteration limit of %d exceeded on line %d", e.Limit, e.Line)
}

func (e *LoopIterationLimitExceededError) Kind() Kind { return KindLoopIterationLimitExceeded }

func (e *LoopIterationLimitExceededError) Position() (line, column int) {
	return e.Line, e.Column
}

func (e *NoReturnValueError) Error() string {
	return "formula finished without returning a value"
}

func (e *NoReturnValueError) Kind() Kind                   { return KindNoReturnValue }
func (e *NoReturnValueError) Position() (line, column int) { return 0, 0 }

func (e *EvaluationError) Error() string {
	if e.Line == 0 {
		return e.Message
	}

	return fmt.Sprintf("%s on line %d", e.Message, e.Line)
}

func (e *EvaluationError) Unwrap() error                { return e.Err }
func (e *EvaluationError) Kind() Kind                   { return KindEvaluation }
func (e *EvaluationError) Position() (line, column int) { return e.Line, e.Column }

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid inputs: %s", e.Message)
}

func (e *InputValidationError) Unwrap() error                { return e.Err }
func (e *InputValidationError) Kind() Kind                   { return KindInputValidation }
func (e *InputValidationError) Position() (line, column int) { return 0, 0 }

// Info is the caller-facing description of a failed evaluation.
type Info struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Describe flattens err into an Info. Errors outside the taxonomy are
// reported as KindInternal. A nil error yields nil.
func Describe(err error) *Info {
	if err == nil {
		return nil
	}

	var formulaErr Error
	if !errors.As(err, &formulaErr) {
		return &Info{
			Kind:    KindInternal,
			Message: err.Error(),
		}
	}

	line, column := formulaErr.Position()

	return &Info{
		Kind:    formulaErr.Kind(),
		Message: formulaErr.Error(),
		Line:    line,
		Column:  column,
	}
}

// KindOf returns the kind of err, or an empty Kind for nil.
func KindOf(err error) Kind {
	info := Describe(err)
	if info == nil {
		return ""
	}

	return info.Kind
}
