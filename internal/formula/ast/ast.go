package ast

import "github.com/artuross/formula-engine/internal/formula/value"

var (
	_ Node = (*ArrayLiteral)(nil)
	_ Node = (*BinaryExpression)(nil)
	_ Node = (*Conditional)(nil)
	_ Node = (*FunctionCall)(nil)
	_ Node = (*Identifier)(nil)
	_ Node = (*Literal)(nil)
	_ Node = (*Loop)(nil)
	_ Node = (*MemberAccess)(nil)
	_ Node = (*ObjectLiteral)(nil)
	_ Node = (*Return)(nil)
	_ Node = (*VariableDeclaration)(nil)
)

// Node is a statement or expression. The set of implementations is closed.
type Node interface {
	Position() Position
	isNode()
}

type Position struct {
	Line   int
	Column int
}

type DeclarationKind string

const (
	DeclarationKindConst DeclarationKind = "const"
	DeclarationKindLet   DeclarationKind = "let"
	DeclarationKindVar   DeclarationKind = "var"
)

type LoopKind string

const (
	LoopKindFor   LoopKind = "for"
	LoopKindWhile LoopKind = "while"
)

// Program is a parsed formula.
type Program struct {
	Statements []Node
}

type (
	ArrayLiteral struct {
		Pos      Position
		Elements []Node
	}

	// BinaryExpression with a nil Left is the unary form of Operator.
	// Assignments use the assignment operator and an Identifier or
	// MemberAccess on the left.
	BinaryExpression struct {
		Pos      Position
		Operator Operator
		Left     Node
		Right    Node
	}

	// Conditional is both the if statement and the ternary expression. A
	// ternary has exactly one expression in Then and in Else.
	Conditional struct {
		Pos       Position
		Condition Node
		Then      []Node
		Else      []Node
		Ternary   bool
	}

	FunctionCall struct {
		Pos       Position
		Name      string
		Arguments []Node
	}

	Identifier struct {
		Pos  Position
		Name string
	}

	Literal struct {
		Pos   Position
		Value value.Value
	}

	Loop struct {
		Pos       Position
		Kind      LoopKind
		Init      Node
		Condition Node
		Update    Node
		Body      []Node
	}

	MemberAccess struct {
		Pos      Position
		Object   Node
		Property Node
		Computed bool
	}

	ObjectLiteral struct {
		Pos        Position
		Properties []Property
	}

	Return struct {
		Pos   Position
		Value Node
	}

	VariableDeclaration struct {
		Pos  Position
		Kind DeclarationKind
		Name string
		Init Node
	}
)

// Property is a single key of an object literal, kept in source order.
type Property struct {
	Key   string
	Value Node
}

func (n ArrayLiteral) Position() Position        { return n.Pos }
func (n BinaryExpression) Position() Position    { return n.Pos }
func (n Conditional) Position() Position         { return n.Pos }
func (n FunctionCall) Position() Position        { return n.Pos }
func (n Identifier) Position() Position          { return n.Pos }
func (n Literal) Position() Position             { return n.Pos }
func (n Loop) Position() Position                { return n.Pos }
func (n MemberAccess) Position() Position        { return n.Pos }
func (n ObjectLiteral) Position() Position       { return n.Pos }
func (n Return) Position() Position              { return n.Pos }
func (n VariableDeclaration) Position() Position { return n.Pos }

func (n ArrayLiteral) isNode()        {}
func (n BinaryExpression) isNode()    {}
func (n Conditional) isNode()         {}
func (n FunctionCall) isNode()        {}
func (n Identifier) isNode()          {}
func (n Literal) isNode()             {}
func (n Loop) isNode()                {}
func (n MemberAccess) isNode()        {}
func (n ObjectLiteral) isNode()       {}
func (n Return) isNode()              {}
func (n VariableDeclaration) isNode() {}
