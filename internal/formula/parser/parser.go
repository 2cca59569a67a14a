package parser

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/artuross/formula-engine/internal/formula/ast"
	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/artuross/formula-engine/internal/formula/lexer"
	"github.com/artuross/formula-engine/internal/formula/sandbox"
	"github.com/artuross/formula-engine/internal/formula/value"
)

// maxDepth bounds statement and expression nesting.
const maxDepth = 200

type OperatorPrecedence int

const (
	OperatorPrecedenceUnset          OperatorPrecedence = 0
	OperatorPrecedenceOr             OperatorPrecedence = 5  // "||"
	OperatorPrecedenceAnd            OperatorPrecedence = 6  // "&&"
	OperatorPrecedenceEquality       OperatorPrecedence = 10 // "==" "!=" "===" "!=="
	OperatorPrecedenceGreaterLess    OperatorPrecedence = 11 // ">" ">=" "<" "<="
	OperatorPrecedenceAdditive       OperatorPrecedence = 13 // "+" "-"
	OperatorPrecedenceMultiplicative OperatorPrecedence = 14 // "*" "/" "%"
)

var operators = map[string]OperatorPrecedence{
	"||":  OperatorPrecedenceOr,
	"&&":  OperatorPrecedenceAnd,
	"==":  OperatorPrecedenceEquality,
	"!=":  OperatorPrecedenceEquality,
	"===": OperatorPrecedenceEquality,
	"!==": OperatorPrecedenceEquality,
	">":   OperatorPrecedenceGreaterLess,
	"<":   OperatorPrecedenceGreaterLess,
	">=":  OperatorPrecedenceGreaterLess,
	"<=":  OperatorPrecedenceGreaterLess,
	"+":   OperatorPrecedenceAdditive,
	"-":   OperatorPrecedenceAdditive,
	"*":   OperatorPrecedenceMultiplicative,
	"/":   OperatorPrecedenceMultiplicative,
	"%":   OperatorPrecedenceMultiplicative,
}

var closers = map[string]string{
	"(": ")",
	"[": "]",
	"{": "}",
}

type Lexer interface {
	ReadToken() (*lexer.Token, error)
}

// CallGuard decides whether a function call may be constructed.
type CallGuard interface {
	CheckCall(name string, line, column int) error
}

type Parser struct {
	lexer  Lexer
	guard  CallGuard
	tokens []*lexer.Token
	pos    int
	depth  int
	end    lexer.Point
}

func NewParser(lexer Lexer, options ...func(*Parser)) *Parser {
	parser := Parser{
		lexer: lexer,
		guard: sandbox.New(),
	}

	for _, apply := range options {
		apply(&parser)
	}

	return &parser
}

func WithCallGuard(guard CallGuard) func(*Parser) {
	return func(p *Parser) {
		p.guard = guard
	}
}

// ParseSource tokenizes and parses source in one step.
func ParseSource(source string, options ...func(*Parser)) (*ast.Program, error) {
	return NewParser(lexer.NewLexer(source), options...).Parse()
}

// Parse reads the whole token stream and builds the program. Unbalanced
// brackets are rejected before the grammar runs, and a program without any
// return statement is rejected after it.
func (p *Parser) Parse() (*ast.Program, error) {
	if err := p.load(); err != nil {
		return nil, err
	}

	if err := p.checkBalance(); err != nil {
		return nil, err
	}

	statements, err := p.parseStatementList(false)
	if err != nil {
		return nil, err
	}

	program := ast.Program{
		Statements: statements,
	}

	if !ast.ContainsReturn(&program) {
		return nil, &formulaerr.SyntaxError{
			Message: "formula has no return statement",
			Line:    p.end.Line,
			Column:  p.end.Column,
			Reason:  formulaerr.KindNoReturnValue,
		}
	}

	return &program, nil
}

func (p *Parser) load() error {
	p.end = lexer.Point{Line: 1, Column: 1}

	for {
		token, err := p.lexer.ReadToken()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}

		p.tokens = append(p.tokens, token)
		p.end = token.Position.End
	}
}

func (p *Parser) checkBalance() error {
	stack := make([]*lexer.Token, 0)

	for _, token := range p.tokens {
		if token.Type != lexer.TokenTypePunctuation {
			continue
		}

		if _, isOpener := closers[token.Value]; isOpener {
			stack = append(stack, token)
			continue
		}

		if token.Value != ")" && token.Value != "]" && token.Value != "}" {
			continue
		}

		if len(stack) == 0 {
			return p.errorAtPoint(token.Position.Start, "unexpected '%s' without matching opener", token.Value)
		}

		opener := stack[len(stack)-1]
		if expected := closers[opener.Value]; expected != token.Value {
			return p.errorAtPoint(token.Position.Start, "expected '%s' to close '%s' but found '%s'", expected, opener.Value, token.Value)
		}

		stack = stack[:len(stack)-1]
	}

	if len(stack) > 0 {
		opener := stack[len(stack)-1]
		return p.errorAtPoint(opener.Position.Start, "unclosed '%s'", opener.Value)
	}

	return nil
}

// parseStatementList parses statements until the end of input or, when
// block is set, until the closing brace (which is left unread).
func (p *Parser) parseStatementList(block bool) ([]ast.Node, error) {
	statements := make([]ast.Node, 0)

	for {
		token := p.peekToken()
		if token == nil {
			if block {
				return nil, p.errorAt(nil, "expected '}'")
			}

			return statements, nil
		}

		if block && token.Is(lexer.TokenTypePunctuation, "}") {
			return statements, nil
		}

		// bare blocks share the single variable scope, so they flatten
		if token.Is(lexer.TokenTypePunctuation, "{") {
			nested, err := p.parseBlock()
			if err != nil {
				return nil, err
			}

			statements = append(statements, nested...)
			continue
		}

		statement, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		if statement != nil {
			statements = append(statements, statement)
		}
	}
}

func (p *Parser) parseBlock() ([]ast.Node, error) {
	if _, err := p.expectPunctuation("{"); err != nil {
		return nil, err
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	statements, err := p.parseStatementList(true)
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation("}"); err != nil {
		return nil, err
	}

	return statements, nil
}

// parseBody parses the body of an if or loop: a block or one statement.
func (p *Parser) parseBody() ([]ast.Node, error) {
	if token := p.peekToken(); token.Is(lexer.TokenTypePunctuation, "{") {
		return p.parseBlock()
	}

	statement, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	if statement == nil {
		return []ast.Node{}, nil
	}

	return []ast.Node{statement}, nil
}

// parseStatement returns a nil node for an empty statement.
func (p *Parser) parseStatement() (ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	token := p.peekToken()
	if token == nil {
		return nil, p.errorAt(nil, "expected statement")
	}

	if token.Is(lexer.TokenTypePunctuation, ";") {
		p.readToken()
		return nil, nil
	}

	var (
		statement ast.Node
		err       error
	)

	switch {
	case token.Type == lexer.TokenTypeKeyword && (token.Value == "var" || token.Value == "let" || token.Value == "const"):
		statement, err = p.parseDeclaration()

	case token.Is(lexer.TokenTypeKeyword, "return"):
		statement, err = p.parseReturn()

	case token.Is(lexer.TokenTypeKeyword, "if"):
		return p.parseIf()

	case token.Is(lexer.TokenTypeKeyword, "for"):
		return p.parseFor()

	case token.Is(lexer.TokenTypeKeyword, "while"):
		return p.parseWhile()

	case token.Is(lexer.TokenTypeKeyword, "foreach"), token.Is(lexer.TokenTypeKeyword, "function"):
		return nil, p.errorAt(token, "'%s' is not supported in formulas", token.Value)

	case token.Is(lexer.TokenTypeKeyword, "else"):
		return nil, p.errorAt(token, "unexpected 'else' without 'if'")

	default:
		statement, err = p.parseExpression()
	}

	if err != nil {
		return nil, err
	}

	p.skipSemicolon()

	return statement, nil
}

func (p *Parser) parseDeclaration() (ast.Node, error) {
	keyword := p.readToken()

	name := p.readToken()
	if name == nil || name.Type != lexer.TokenTypeIdentifier {
		return nil, p.errorAt(name, "expected variable name after '%s'", keyword.Value)
	}

	declaration := &ast.VariableDeclaration{
		Pos:  position(keyword),
		Kind: ast.DeclarationKind(keyword.Value),
		Name: name.Value,
	}

	if next := p.peekToken(); next.Is(lexer.TokenTypeOperator, "=") {
		p.readToken()

		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		declaration.Init = init
	}

	if declaration.Kind == ast.DeclarationKindConst && declaration.Init == nil {
		return nil, p.errorAt(name, "missing initializer in const declaration")
	}

	return declaration, nil
}

func (p *Parser) parseReturn() (ast.Node, error) {
	keyword := p.readToken()

	statement := &ast.Return{
		Pos: position(keyword),
	}

	next := p.peekToken()
	if next == nil || next.Is(lexer.TokenTypePunctuation, ";") || next.Is(lexer.TokenTypePunctuation, "}") {
		return statement, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	statement.Value = expr

	return statement, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	keyword := p.readToken()

	condition, err := p.parseParenthesized()
	if err != nil {
		return nil, err
	}

	then, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	statement := &ast.Conditional{
		Pos:       position(keyword),
		Condition: condition,
		Then:      then,
	}

	if next := p.peekToken(); !next.Is(lexer.TokenTypeKeyword, "else") {
		return statement, nil
	}

	p.readToken()

	if next := p.peekToken(); next.Is(lexer.TokenTypeKeyword, "if") {
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}

		statement.Else = []ast.Node{nested}

		return statement, nil
	}

	otherwise, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	statement.Else = otherwise

	return statement, nil
}

func (p *Parser) parseFor() (ast.Node, error) {
	keyword := p.readToken()

	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}

	loop := &ast.Loop{
		Pos:  position(keyword),
		Kind: ast.LoopKindFor,
	}

	if next := p.peekToken(); !next.Is(lexer.TokenTypePunctuation, ";") {
		var (
			init ast.Node
			err  error
		)

		if next != nil && next.Type == lexer.TokenTypeKeyword && (next.Value == "var" || next.Value == "let" || next.Value == "const") {
			init, err = p.parseDeclaration()
		} else {
			init, err = p.parseExpression()
		}
		if err != nil {
			return nil, err
		}

		loop.Init = init
	}

	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}

	if next := p.peekToken(); !next.Is(lexer.TokenTypePunctuation, ";") {
		condition, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		loop.Condition = condition
	}

	if _, err := p.expectPunctuation(";"); err != nil {
		return nil, err
	}

	if next := p.peekToken(); !next.Is(lexer.TokenTypePunctuation, ")") {
		update, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		loop.Update = update
	}

	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	loop.Body = body

	return loop, nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	keyword := p.readToken()

	condition, err := p.parseParenthesized()
	if err != nil {
		return nil, err
	}

	body, err := p.parseBody()
	if err != nil {
		return nil, err
	}

	loop := &ast.Loop{
		Pos:       position(keyword),
		Kind:      ast.LoopKindWhile,
		Condition: condition,
		Body:      body,
	}

	return loop, nil
}

func (p *Parser) parseParenthesized() (ast.Node, error) {
	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}

	return expr, nil
}

func (p *Parser) parseExpression() (ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	return p.parseAssignment()
}

// parseAssignment handles the right-associative assignment operators, which
// bind looser than everything else.
func (p *Parser) parseAssignment() (ast.Node, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	token := p.peekToken()
	if token == nil || token.Type != lexer.TokenTypeOperator || !ast.Operator(token.Value).IsAssignment() {
		return left, nil
	}

	p.readToken()

	if !isAssignable(left) {
		return nil, p.errorAt(token, "invalid assignment target")
	}

	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	expr := &ast.BinaryExpression{
		Pos:      position(token),
		Operator: ast.Operator(token.Value),
		Left:     left,
		Right:    right,
	}

	return expr, nil
}

func (p *Parser) parseTernary() (ast.Node, error) {
	condition, err := p.parseBinaryExpression(OperatorPrecedenceOr)
	if err != nil {
		return nil, err
	}

	token := p.peekToken()
	if !token.Is(lexer.TokenTypePunctuation, "?") {
		return condition, nil
	}

	p.readToken()

	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation(":"); err != nil {
		return nil, err
	}

	otherwise, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	expr := &ast.Conditional{
		Pos:       position(token),
		Condition: condition,
		Then:      []ast.Node{then},
		Else:      []ast.Node{otherwise},
		Ternary:   true,
	}

	return expr, nil
}

func (p *Parser) parseBinaryExpression(minPrec OperatorPrecedence) (ast.Node, error) {
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}

	for {
		token := p.peekToken()
		if token == nil || token.Type != lexer.TokenTypeOperator {
			return left, nil
		}

		prec, isOp := operators[token.Value]
		if !isOp || prec < minPrec {
			// not ours to consume
			return left, nil
		}

		p.readToken()

		right, err := p.parseBinaryExpression(prec + 1)
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryExpression{
			Pos:      position(token),
			Operator: ast.Operator(token.Value),
			Left:     left,
			Right:    right,
		}
	}
}

func (p *Parser) parseUnaryExpression() (ast.Node, error) {
	token := p.peekToken()
	if token == nil || token.Type != lexer.TokenTypeOperator {
		return p.parsePostfixExpression()
	}

	switch token.Value {
	case "!", "-":
		p.readToken()

		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		operand, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}

		expr := &ast.BinaryExpression{
			Pos:      position(token),
			Operator: ast.Operator(token.Value),
			Right:    operand,
		}

		return expr, nil

	case "++", "--":
		p.readToken()

		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		operand, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}

		return p.increment(token, operand)
	}

	return p.parsePostfixExpression()
}

func (p *Parser) parsePostfixExpression() (ast.Node, error) {
	expr, err := p.parsePrimaryExpression()
	if err != nil {
		return nil, err
	}

	token := p.peekToken()
	if token.Is(lexer.TokenTypeOperator, "++") || token.Is(lexer.TokenTypeOperator, "--") {
		p.readToken()

		return p.increment(token, expr)
	}

	return expr, nil
}

// increment desugars ++ and -- into a compound assignment by one.
func (p *Parser) increment(token *lexer.Token, target ast.Node) (ast.Node, error) {
	if !isAssignable(target) {
		return nil, p.errorAt(token, "invalid %s operand", token.Value)
	}

	operator := ast.OperatorAddAssign
	if token.Value == "--" {
		operator = ast.OperatorSubtractAssign
	}

	expr := &ast.BinaryExpression{
		Pos:      position(token),
		Operator: operator,
		Left:     target,
		Right: &ast.Literal{
			Pos:   position(token),
			Value: value.Number(1),
		},
	}

	return expr, nil
}

func (p *Parser) parsePrimaryExpression() (ast.Node, error) {
	token := p.readToken()
	if token == nil {
		return nil, p.errorAtPoint(p.end, "unexpected end of input")
	}

	var left ast.Node

	switch {
	case token.Type == lexer.TokenTypeNumber:
		// out of range literals become ±Inf or 0, like the same value computed at run time
		number, err := strconv.ParseFloat(token.Value, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, p.errorAt(token, "invalid number '%s'", token.RawValue)
		}

		left = &ast.Literal{
			Pos:   position(token),
			Value: value.Number(number),
		}

	case token.Type == lexer.TokenTypeString:
		left = &ast.Literal{
			Pos:   position(token),
			Value: value.String(token.Value),
		}

	case token.Is(lexer.TokenTypeKeyword, "true"), token.Is(lexer.TokenTypeKeyword, "false"):
		left = &ast.Literal{
			Pos:   position(token),
			Value: value.Bool(token.Value == "true"),
		}

	case token.Is(lexer.TokenTypeKeyword, "null"):
		left = &ast.Literal{
			Pos:   position(token),
			Value: value.Null{},
		}

	case token.Type == lexer.TokenTypeIdentifier:
		if next := p.peekToken(); next.Is(lexer.TokenTypePunctuation, "(") {
			call, err := p.parseCallExpression(token)
			if err != nil {
				return nil, err
			}

			left = call
		} else {
			left = &ast.Identifier{
				Pos:  position(token),
				Name: token.Value,
			}
		}

	case token.Is(lexer.TokenTypePunctuation, "("):
		expr, err := p.parseGroupedExpression()
		if err != nil {
			return nil, err
		}

		left = expr

	case token.Is(lexer.TokenTypePunctuation, "["):
		expr, err := p.parseArrayLiteral(token)
		if err != nil {
			return nil, err
		}

		left = expr

	case token.Is(lexer.TokenTypePunctuation, "{"):
		expr, err := p.parseObjectLiteral(token)
		if err != nil {
			return nil, err
		}

		left = expr

	default:
		return nil, p.errorAtPoint(token.Position.Start, "unexpected '%s'", token.RawValue)
	}

	for {
		token := p.peekToken()
		if token == nil || token.Type != lexer.TokenTypePunctuation {
			return left, nil
		}

		switch token.Value {
		case ".":
			p.readToken()

			expr, err := p.parseMemberExpression(left, token)
			if err != nil {
				return nil, err
			}

			left = expr

		case "[":
			p.readToken()

			expr, err := p.parseIndexExpression(left, token)
			if err != nil {
				return nil, err
			}

			left = expr

		case "(":
			return nil, p.errorAt(token, "only named functions can be called")

		default:
			return left, nil
		}
	}
}

func (p *Parser) parseCallExpression(name *lexer.Token) (ast.Node, error) {
	// authorization happens before any argument is parsed
	if err := p.guard.CheckCall(name.Value, name.Position.Start.Line, name.Position.Start.Column); err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation("("); err != nil {
		return nil, err
	}

	args, err := p.parseList(")")
	if err != nil {
		return nil, err
	}

	expr := &ast.FunctionCall{
		Pos:       position(name),
		Name:      name.Value,
		Arguments: args,
	}

	return expr, nil
}

func (p *Parser) parseGroupedExpression() (ast.Node, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation(")"); err != nil {
		return nil, err
	}

	return expr, nil
}

func (p *Parser) parseArrayLiteral(open *lexer.Token) (ast.Node, error) {
	elements, err := p.parseList("]")
	if err != nil {
		return nil, err
	}

	expr := &ast.ArrayLiteral{
		Pos:      position(open),
		Elements: elements,
	}

	return expr, nil
}

// parseList parses comma separated expressions up to and including the
// closing punctuation. A trailing comma is accepted.
func (p *Parser) parseList(closing string) ([]ast.Node, error) {
	items := make([]ast.Node, 0)

	for {
		if next := p.peekToken(); next.Is(lexer.TokenTypePunctuation, closing) {
			p.readToken()
			return items, nil
		}

		item, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		token := p.readToken()
		switch {
		case token.Is(lexer.TokenTypePunctuation, closing):
			return items, nil

		case token.Is(lexer.TokenTypePunctuation, ","):
			continue

		default:
			return nil, p.errorAt(token, "expected ',' or '%s'", closing)
		}
	}
}

func (p *Parser) parseObjectLiteral(open *lexer.Token) (ast.Node, error) {
	expr := &ast.ObjectLiteral{
		Pos:        position(open),
		Properties: make([]ast.Property, 0),
	}

	for {
		key := p.readToken()
		if key.Is(lexer.TokenTypePunctuation, "}") {
			return expr, nil
		}

		if key == nil || (key.Type != lexer.TokenTypeIdentifier && key.Type != lexer.TokenTypeString &&
			key.Type != lexer.TokenTypeNumber && key.Type != lexer.TokenTypeKeyword) {
			return nil, p.errorAt(key, "expected property name")
		}

		if _, err := p.expectPunctuation(":"); err != nil {
			return nil, err
		}

		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		expr.Properties = append(expr.Properties, ast.Property{
			Key:   key.Value,
			Value: val,
		})

		token := p.readToken()
		switch {
		case token.Is(lexer.TokenTypePunctuation, "}"):
			return expr, nil

		case token.Is(lexer.TokenTypePunctuation, ","):
			continue

		default:
			return nil, p.errorAt(token, "expected ',' or '}'")
		}
	}
}

func (p *Parser) parseIndexExpression(base ast.Node, open *lexer.Token) (ast.Node, error) {
	property, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if _, err := p.expectPunctuation("]"); err != nil {
		return nil, err
	}

	expr := &ast.MemberAccess{
		Pos:      position(open),
		Object:   base,
		Property: property,
		Computed: true,
	}

	return expr, nil
}

func (p *Parser) parseMemberExpression(base ast.Node, dot *lexer.Token) (ast.Node, error) {
	token := p.readToken()
	if token == nil || (token.Type != lexer.TokenTypeIdentifier && token.Type != lexer.TokenTypeKeyword) {
		return nil, p.errorAt(token, "expected property name after '.'")
	}

	expr := &ast.MemberAccess{
		Pos:    position(dot),
		Object: base,
		Property: &ast.Identifier{
			Pos:  position(token),
			Name: token.Value,
		},
	}

	return expr, nil
}

func (p *Parser) expectPunctuation(value string) (*lexer.Token, error) {
	token := p.readToken()
	if !token.Is(lexer.TokenTypePunctuation, value) {
		return nil, p.errorAt(token, "expected '%s'", value)
	}

	return token, nil
}

func (p *Parser) skipSemicolon() {
	if token := p.peekToken(); token.Is(lexer.TokenTypePunctuation, ";") {
		p.readToken()
	}
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return p.errorAt(p.peekToken(), "formula is nested too deeply")
	}

	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// errorAt builds a SyntaxError located at token, or at the end of input
// when token is nil.
func (p *Parser) errorAt(token *lexer.Token, format string, args ...any) error {
	point := p.end
	found := "end of input"

	if token != nil {
		point = token.Position.Start
		found = fmt.Sprintf("'%s'", token.RawValue)
	}

	return p.errorAtPoint(point, format+", found %s", append(args, found)...)
}

func (p *Parser) errorAtPoint(point lexer.Point, format string, args ...any) error {
	return &formulaerr.SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Line:    point.Line,
		Column:  point.Column,
	}
}

func (p *Parser) peekToken() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}

	return p.tokens[p.pos]
}

func (p *Parser) readToken() *lexer.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}

	token := p.tokens[p.pos]
	p.pos++

	return token
}

func isAssignable(node ast.Node) bool {
	switch node.(type) {
	case *ast.Identifier, *ast.MemberAccess:
		return true

	default:
		return false
	}
}

func position(token *lexer.Token) ast.Position {
	return ast.Position{
		Line:   token.Position.Start.Line,
		Column: token.Position.Start.Column,
	}
}
