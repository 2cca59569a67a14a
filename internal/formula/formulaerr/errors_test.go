package formulaerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	type testCase struct {
		name     string
		err      error
		expected *formulaerr.Info
	}

	testCases := []testCase{
		{
			name:     "nil",
			err:      nil,
			expected: nil,
		},
		{
			name: "syntax error",
			err:  &formulaerr.SyntaxError{Message: "unexpected ')'", Line: 2, Column: 7},
			expected: &formulaerr.Info{
				Kind:    formulaerr.KindSyntax,
				Message: "syntax error at 2:7: unexpected ')'",
				Line:    2,
				Column:  7,
			},
		},
		{
			name: "wrapped division by zero",
			err:  fmt.Errorf("evaluate: %w", &formulaerr.DivisionByZeroError{Line: 1, Column: 10}),
			expected: &formulaerr.Info{
				Kind:    formulaerr.KindDivisionByZero,
				Message: "division by zero on line 1",
				Line:    1,
				Column:  10,
			},
		},
		{
			name: "unauthorized call names only the call",
			err:  &formulaerr.UnauthorizedCallError{Name: "system", Line: 1, Column: 8},
			expected: &formulaerr.Info{
				Kind:    formulaerr.KindUnauthorizedCall,
				Message: `call to "system" is not permitted`,
				Line:    1,
				Column:  8,
			},
		},
		{
			name: "foreign error",
			err:  errors.New("disk on fire"),
			expected: &formulaerr.Info{
				Kind:    formulaerr.KindInternal,
				Message: "disk on fire",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, formulaerr.Describe(tc.err))
		})
	}
}

func TestUndefinedVariableHint(t *testing.T) {
	err := &formulaerr.UndefinedVariableError{Name: "widht", Line: 3, Hint: "width"}

	assert.Equal(t, `undefined variable "widht" on line 3 (did you mean "width"?)`, err.Error())
	assert.Equal(t, formulaerr.KindUndefinedVariable, formulaerr.KindOf(err))
}

func TestEvaluationErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &formulaerr.EvaluationError{Message: "native failed", Err: cause}

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "native failed", err.Error())
}

func TestSnippet(t *testing.T) {
	source := "var w = 1;\nreturn w +;\nvar x = 2;"

	expected := "" +
		" 1 | var w = 1;\n" +
		" 2 | return w +;\n" +
		"   |           ^\n" +
		" 3 | var x = 2;"

	assert.Equal(t, expected, formulaerr.Snippet(source, 2, 11))
}

func TestSnippetClampsPosition(t *testing.T) {
	expected := "" +
		" 1 | return 1\n" +
		"   |         ^"

	assert.Equal(t, expected, formulaerr.Snippet("return 1", 9, 99))
}

func TestRender(t *testing.T) {
	err := &formulaerr.SyntaxError{Message: "expected ';'", Line: 1, Column: 3}

	rendered := formulaerr.Render(err, "a b")

	assert.Equal(t, "SyntaxError: syntax error at 1:3: expected ';'\n\n 1 | a b\n   |   ^", rendered)
	assert.Equal(t, "NoReturnValueError: formula finished without returning a value", formulaerr.Render(&formulaerr.NoReturnValueError{}, ""))
}
