package ast

import "sort"

// Walk visits node and its children depth-first. Children are skipped when
// visit returns false. Nil nodes are ignored.
func Walk(node Node, visit func(Node) bool) {
	if node == nil || !visit(node) {
		return
	}

	switch node := node.(type) {
	case *ArrayLiteral:
		walkAll(node.Elements, visit)

	case *BinaryExpression:
		Walk(node.Left, visit)
		Walk(node.Right, visit)

	case *Conditional:
		Walk(node.Condition, visit)
		walkAll(node.Then, visit)
		walkAll(node.Else, visit)

	case *FunctionCall:
		walkAll(node.Arguments, visit)

	case *Loop:
		Walk(node.Init, visit)
		Walk(node.Condition, visit)
		Walk(node.Update, visit)
		walkAll(node.Body, visit)

	case *MemberAccess:
		Walk(node.Object, visit)
		Walk(node.Property, visit)

	case *ObjectLiteral:
		for _, property := range node.Properties {
			Walk(property.Value, visit)
		}

	case *Return:
		Walk(node.Value, visit)

	case *VariableDeclaration:
		Walk(node.Init, visit)
	}
}

func walkAll(nodes []Node, visit func(Node) bool) {
	for _, node := range nodes {
		Walk(node, visit)
	}
}

// ContainsReturn reports whether any statement, at any depth, is a return.
func ContainsReturn(program *Program) bool {
	found := false

	for _, statement := range program.Statements {
		Walk(statement, func(node Node) bool {
			if _, ok := node.(*Return); ok {
				found = true
			}

			return !found
		})
	}

	return found
}

// FunctionNames returns the distinct names called anywhere in program,
// sorted.
func FunctionNames(program *Program) []string {
	seen := make(map[string]struct{})

	for _, statement := range program.Statements {
		Walk(statement, func(node Node) bool {
			if call, ok := node.(*FunctionCall); ok {
				seen[call.Name] = struct{}{}
			}

			return true
		})
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
