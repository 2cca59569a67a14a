package interpreter

import (
	"context"
	"fmt"
	"math"

	"github.com/artuross/formula-engine/internal/formula/ast"
	"github.com/artuross/formula-engine/internal/formula/formulaerr"
	"github.com/artuross/formula-engine/internal/formula/sandbox"
	"github.com/artuross/formula-engine/internal/formula/value"
	"github.com/rs/zerolog"
)

// LoopIterationLimit is the number of loop iterations a single evaluation
// may run, summed over all loops.
const LoopIterationLimit = 10000

type Function func(ctx context.Context, args []value.Value) (value.Value, error)

type CallGuard interface {
	CheckCall(name string, line, column int) error
}

// Context is the state of one evaluation. It must not be reused.
type Context struct {
	Variables map[string]value.Value
	InputData value.Map
	Functions map[string]Function

	constants   map[string]struct{}
	returned    bool
	returnValue value.Value
	iterations  int
}

func NewContext(inputs value.Map, functions map[string]Function) *Context {
	return &Context{
		Variables: make(map[string]value.Value),
		InputData: inputs,
		Functions: functions,
	}
}

// Iterations returns the number of loop iterations run so far.
func (c *Context) Iterations() int {
	return c.iterations
}

type Interpreter struct {
	program *ast.Program
	guard   CallGuard
	limit   int
}

func New(program *ast.Program, options ...func(*Interpreter)) *Interpreter {
	interpreter := Interpreter{
		program: program,
		guard:   sandbox.New(),
		limit:   LoopIterationLimit,
	}

	for _, apply := range options {
		apply(&interpreter)
	}

	return &interpreter
}

func WithCallGuard(guard CallGuard) func(*Interpreter) {
	return func(i *Interpreter) {
		i.guard = guard
	}
}

func WithIterationLimit(limit int) func(*Interpreter) {
	return func(i *Interpreter) {
		i.limit = limit
	}
}

// Evaluate runs the program against evalContext and returns the value of
// the first return statement reached.
func (i *Interpreter) Evaluate(ctx context.Context, evalContext *Context) (value.Value, error) {
	if evalContext == nil {
		evalContext = NewContext(nil, nil)
	}

	if evalContext.Variables == nil {
		evalContext.Variables = make(map[string]value.Value)
	}

	if evalContext.constants == nil {
		evalContext.constants = make(map[string]struct{})
	}

	e := evaluation{
		ctx:   ctx,
		state: evalContext,
		guard: i.guard,
		limit: i.limit,
	}

	if err := e.executeBlock(i.program.Statements); err != nil {
		return nil, err
	}

	if !evalContext.returned {
		return nil, &formulaerr.NoReturnValueError{}
	}

	zerolog.Ctx(ctx).Debug().
		Int("iterations", evalContext.iterations).
		Msg("formula evaluated")

	return value.Copy(evalContext.returnValue), nil
}

type evaluation struct {
	ctx   context.Context
	state *Context
	guard CallGuard
	limit int
}

func (e *evaluation) executeBlock(statements []ast.Node) error {
	for _, statement := range statements {
		if _, err := e.evaluate(statement); err != nil {
			return err
		}

		if e.state.returned {
			return nil
		}
	}

	return nil
}

func (e *evaluation) evaluate(node ast.Node) (value.Value, error) {
	switch node := node.(type) {
	case *ast.ArrayLiteral:
		return e.evaluateArrayLiteral(node)

	case *ast.BinaryExpression:
		return e.evaluateBinary(node)

	case *ast.Conditional:
		return e.evaluateConditional(node)

	case *ast.FunctionCall:
		return e.evaluateFunctionCall(node)

	case *ast.Identifier:
		return e.evaluateIdentifier(node)

	case *ast.Literal:
		return value.Normalize(node.Value), nil

	case *ast.Loop:
		return e.evaluateLoop(node)

	case *ast.MemberAccess:
		return e.evaluateMemberAccess(node)

	case *ast.ObjectLiteral:
		return e.evaluateObjectLiteral(node)

	case *ast.Return:
		return e.evaluateReturn(node)

	case *ast.VariableDeclaration:
		return e.evaluateVariableDeclaration(node)

	default:
		return nil, &formulaerr.EvaluationError{
			Message: fmt.Sprintf("unsupported node %T", node),
		}
	}
}

func (e *evaluation) evaluateArrayLiteral(node *ast.ArrayLiteral) (value.Value, error) {
	list := make(value.List, 0, len(node.Elements))

	for _, element := range node.Elements {
		item, err := e.evaluate(element)
		if err != nil {
			return nil, err
		}

		list = append(list, item)
	}

	return list, nil
}

func (e *evaluation) evaluateObjectLiteral(node *ast.ObjectLiteral) (value.Value, error) {
	object := make(value.Map, len(node.Properties))

	for _, property := range node.Properties {
		item, err := e.evaluate(property.Value)
		if err != nil {
			return nil, err
		}

		object[property.Key] = value.Copy(item)
	}

	return object, nil
}

func (e *evaluation) evaluateConditional(node *ast.Conditional) (value.Value, error) {
	condition, err := e.evaluate(node.Condition)
	if err != nil {
		return nil, err
	}

	branch := node.Else
	if value.Truthy(condition) {
		branch = node.Then
	}

	if node.Ternary {
		if len(branch) != 1 {
			return nil, evaluationError(node, "malformed conditional expression")
		}

		return e.evaluate(branch[0])
	}

	if err := e.executeBlock(branch); err != nil {
		return nil, err
	}

	return value.Null{}, nil
}

func (e *evaluation) evaluateLoop(node *ast.Loop) (value.Value, error) {
	if node.Init != nil {
		if _, err := e.evaluate(node.Init); err != nil {
			return nil, err
		}
	}

	for {
		if node.Condition != nil {
			condition, err := e.evaluate(node.Condition)
			if err != nil {
				return nil, err
			}

			if !value.Truthy(condition) {
				return value.Null{}, nil
			}
		}

		e.state.iterations++
		if e.state.iterations > e.limit {
			return nil, &formulaerr.LoopIterationLimitExceededError{
				Limit:  e.limit,
				Line:   node.Pos.Line,
				Column: node.Pos.Column,
			}
		}

		if err := e.executeBlock(node.Body); err != nil {
			return nil, err
		}

		if e.state.returned {
			return value.Null{}, nil
		}

		if node.Update != nil {
			if _, err := e.evaluate(node.Update); err != nil {
				return nil, err
			}
		}
	}
}

func (e *evaluation) evaluateReturn(node *ast.Return) (value.Value, error) {
	var result value.Value = value.Null{}

	if node.Value != nil {
		v, err := e.evaluate(node.Value)
		if err != nil {
			return nil, err
		}

		result = v
	}

	e.state.returned = true
	e.state.returnValue = result

	return result, nil
}

func (e *evaluation) evaluateVariableDeclaration(node *ast.VariableDeclaration) (value.Value, error) {
	var initial value.Value = value.Null{}

	if node.Init != nil {
		v, err := e.evaluate(node.Init)
		if err != nil {
			return nil, err
		}

		initial = v
	}

	if _, isConst := e.state.constants[node.Name]; isConst {
		return nil, evaluationError(node, "cannot redeclare constant '%s'", node.Name)
	}

	e.state.Variables[node.Name] = value.Copy(initial)

	if node.Kind == ast.DeclarationKindConst {
		e.state.constants[node.Name] = struct{}{}
	}

	return value.Null{}, nil
}

func (e *evaluation) evaluateBinary(node *ast.BinaryExpression) (value.Value, error) {
	if node.Operator.IsAssignment() {
		return e.evaluateAssignment(node)
	}

	if node.Left == nil {
		return e.evaluateUnary(node)
	}

	// both operands are always evaluated, including for && and ||
	left, err := e.evaluate(node.Left)
	if err != nil {
		return nil, err
	}

	right, err := e.evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case ast.OperatorAnd:
		return value.Bool(value.Truthy(left) && value.Truthy(right)), nil

	case ast.OperatorOr:
		return value.Bool(value.Truthy(left) || value.Truthy(right)), nil

	case ast.OperatorEqual:
		return value.Bool(value.LooseEqual(left, right)), nil

	case ast.OperatorNotEqual:
		return value.Bool(!value.LooseEqual(left, right)), nil

	case ast.OperatorStrictEqual:
		return value.Bool(value.StrictEqual(left, right)), nil

	case ast.OperatorStrictNotEqual:
		return value.Bool(!value.StrictEqual(left, right)), nil

	case ast.OperatorGreaterThan, ast.OperatorGreaterThanOrEqual, ast.OperatorLessThan, ast.OperatorLessThanOrEqual:
		return compare(node.Operator, left, right), nil

	default:
		return arithmetic(node, node.Operator, left, right)
	}
}

func (e *evaluation) evaluateUnary(node *ast.BinaryExpression) (value.Value, error) {
	operand, err := e.evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	switch node.Operator {
	case ast.OperatorNot:
		return value.Bool(!value.Truthy(operand)), nil

	case ast.OperatorSubtract:
		number, ok := value.ToNumber(operand)
		if !ok {
			return nil, evaluationError(node, "cannot negate a %s", value.TypeOf(operand))
		}

		return value.Number(-number), nil

	default:
		return nil, evaluationError(node, "unsupported unary operator '%s'", node.Operator)
	}
}

func (e *evaluation) evaluateAssignment(node *ast.BinaryExpression) (value.Value, error) {
	result, err := e.evaluate(node.Right)
	if err != nil {
		return nil, err
	}

	if operator := node.Operator.Arithmetic(); operator != "" {
		current, err := e.evaluate(node.Left)
		if err != nil {
			return nil, err
		}

		result, err = arithmetic(node, operator, current, result)
		if err != nil {
			return nil, err
		}
	}

	result = value.Copy(result)

	if err := e.assign(node.Left, result); err != nil {
		return nil, err
	}

	return result, nil
}

// assign stores v into target. Member targets rebuild each container on the
// path from a copy, so neither input data nor other variables are mutated.
func (e *evaluation) assign(target ast.Node, v value.Value) error {
	switch target := target.(type) {
	case *ast.Identifier:
		if _, isConst := e.state.constants[target.Name]; isConst {
			return evaluationError(target, "cannot assign to constant '%s'", target.Name)
		}

		e.state.Variables[target.Name] = v

		return nil

	case *ast.MemberAccess:
		container, err := e.evaluate(target.Object)
		if err != nil {
			return err
		}

		key, err := e.propertyKey(target)
		if err != nil {
			return err
		}

		updated, err := setMember(target, value.Copy(container), key, v)
		if err != nil {
			return err
		}

		return e.assign(target.Object, updated)

	default:
		return evaluationError(target, "invalid assignment target")
	}
}

func (e *evaluation) evaluateIdentifier(node *ast.Identifier) (value.Value, error) {
	if v, ok := e.state.Variables[node.Name]; ok {
		return v, nil
	}

	if v, ok := e.state.InputData[node.Name]; ok {
		return value.Normalize(v), nil
	}

	return nil, &formulaerr.UndefinedVariableError{
		Name:   node.Name,
		Line:   node.Pos.Line,
		Column: node.Pos.Column,
		Hint:   suggest(node.Name, e.knownNames()),
	}
}

func (e *evaluation) knownNames() []string {
	names := make([]string, 0, len(e.state.Variables)+len(e.state.InputData))

	for name := range e.state.Variables {
		names = append(names, name)
	}

	for name := range e.state.InputData {
		if _, shadowed := e.state.Variables[name]; !shadowed {
			names = append(names, name)
		}
	}

	return names
}

func (e *evaluation) evaluateMemberAccess(node *ast.MemberAccess) (value.Value, error) {
	object, err := e.evaluate(node.Object)
	if err != nil {
		return nil, err
	}

	key, err := e.propertyKey(node)
	if err != nil {
		return nil, err
	}

	return getMember(object, key), nil
}

func (e *evaluation) propertyKey(node *ast.MemberAccess) (value.Value, error) {
	if !node.Computed {
		if identifier, ok := node.Property.(*ast.Identifier); ok {
			return value.String(identifier.Name), nil
		}
	}

	return e.evaluate(node.Property)
}

func (e *evaluation) evaluateFunctionCall(node *ast.FunctionCall) (value.Value, error) {
	if err := e.guard.CheckCall(node.Name, node.Pos.Line, node.Pos.Column); err != nil {
		return nil, err
	}

	function, ok := e.state.Functions[node.Name]
	if !ok {
		return nil, evaluationError(node, "function '%s' is not available", node.Name)
	}

	args := make([]value.Value, 0, len(node.Arguments)+1)
	for _, argument := range node.Arguments {
		arg, err := e.evaluate(argument)
		if err != nil {
			return nil, err
		}

		args = append(args, value.Copy(arg))
	}

	if sandbox.ReceivesInputData(node.Name) {
		inputs := value.Map{}
		if e.state.InputData != nil {
			inputs = value.Copy(e.state.InputData).(value.Map)
		}

		args = append(args, inputs)
	}

	result, err := function(e.ctx, args)
	if err != nil {
		if _, isFormulaErr := err.(formulaerr.Error); isFormulaErr {
			return nil, err
		}

		return nil, &formulaerr.EvaluationError{
			Message: fmt.Sprintf("%s: %s", node.Name, err),
			Line:    node.Pos.Line,
			Column:  node.Pos.Column,
			Err:     err,
		}
	}

	return value.Normalize(result), nil
}

func compare(operator ast.Operator, left, right value.Value) value.Value {
	order, ok := value.Compare(left, right)
	if !ok {
		return value.Bool(false)
	}

	switch operator {
	case ast.OperatorGreaterThan:
		return value.Bool(order > 0)

	case ast.OperatorGreaterThanOrEqual:
		return value.Bool(order >= 0)

	case ast.OperatorLessThan:
		return value.Bool(order < 0)

	default:
		return value.Bool(order <= 0)
	}
}

func arithmetic(node ast.Node, operator ast.Operator, left, right value.Value) (value.Value, error) {
	if operator == ast.OperatorAdd {
		_, leftString := left.(value.String)
		_, rightString := right.(value.String)

		if leftString || rightString {
			return value.String(value.ToString(left) + value.ToString(right)), nil
		}
	}

	a, ok := value.ToNumber(left)
	if !ok {
		return nil, evaluationError(node, "cannot use a %s in arithmetic", value.TypeOf(left))
	}

	b, ok := value.ToNumber(right)
	if !ok {
		return nil, evaluationError(node, "cannot use a %s in arithmetic", value.TypeOf(right))
	}

	switch operator {
	case ast.OperatorAdd:
		return value.Number(a + b), nil

	case ast.OperatorSubtract:
		return value.Number(a - b), nil

	case ast.OperatorMultiply:
		return value.Number(a * b), nil

	case ast.OperatorDivide, ast.OperatorModulo:
		if b == 0 {
			position := node.Position()

			return nil, &formulaerr.DivisionByZeroError{
				Line:   position.Line,
				Column: position.Column,
			}
		}

		if operator == ast.OperatorModulo {
			return value.Number(math.Mod(a, b)), nil
		}

		return value.Number(a / b), nil

	default:
		return nil, evaluationError(node, "unsupported operator '%s'", operator)
	}
}

func evaluationError(node ast.Node, format string, args ...any) error {
	position := node.Position()

	return &formulaerr.EvaluationError{
		Message: fmt.Sprintf(format, args...),
		Line:    position.Line,
		Column:  position.Column,
	}
}
