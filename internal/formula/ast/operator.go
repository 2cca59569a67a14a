package ast

type Operator string

const (
	OperatorOr  Operator = "||"
	OperatorAnd Operator = "&&"

	OperatorEqual          Operator = "=="
	OperatorNotEqual       Operator = "!="
	OperatorStrictEqual    Operator = "==="
	OperatorStrictNotEqual Operator = "!=="

	OperatorGreaterThan        Operator = ">"
	OperatorGreaterThanOrEqual Operator = ">="
	OperatorLessThan           Operator = "<"
	OperatorLessThanOrEqual    Operator = "<="

	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
	OperatorMultiply Operator = "*"
	OperatorDivide   Operator = "/"
	OperatorModulo   Operator = "%"

	OperatorNot Operator = "!"

	OperatorAssign         Operator = "="
	OperatorAddAssign      Operator = "+="
	OperatorSubtractAssign Operator = "-="
	OperatorMultiplyAssign Operator = "*="
	OperatorDivideAssign   Operator = "/="
	OperatorModuloAssign   Operator = "%="
)

// IsAssignment reports whether op stores into its left operand.
func (op Operator) IsAssignment() bool {
	switch op {
	case OperatorAssign, OperatorAddAssign, OperatorSubtractAssign,
		OperatorMultiplyAssign, OperatorDivideAssign, OperatorModuloAssign:
		return true

	default:
		return false
	}
}

// Arithmetic returns the arithmetic operator behind a compound assignment,
// e.g. "+" for "+=". It returns "" for plain "=" and non-assignments.
func (op Operator) Arithmetic() Operator {
	switch op {
	case OperatorAddAssign:
		return OperatorAdd

	case OperatorSubtractAssign:
		return OperatorSubtract

	case OperatorMultiplyAssign:
		return OperatorMultiply

	case OperatorDivideAssign:
		return OperatorDivide

	case OperatorModuloAssign:
		return OperatorModulo

	default:
		return ""
	}
}
