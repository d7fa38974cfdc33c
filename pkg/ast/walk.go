package ast

// Inspect walks the tree rooted at n depth first, calling f for every node
// in source order. The children of a node are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	each := func(nodes ...Node) {
		for _, child := range nodes {
			Inspect(child, f)
		}
	}

	switch n := n.(type) {
	case *VariableDeclaration:
		each(exprs(n.Type.Dims...)...)
		each(n.Value)
	case *PrintStatement:
		each(exprs(n.Args...)...)
	case *ConditionalStatement:
		each(n.Condition)
		each(n.Then...)
		for _, elif := range n.Elifs {
			each(elif.Condition)
			each(elif.Then...)
		}
		each(n.Else...)
	case *LoopStatement:
		each(n.Init, n.Iterable, n.Condition, n.Update)
		each(n.Body...)
	case *ArrayDeclaration:
		each(exprs(n.Sizes...)...)
		each(exprs(n.Values...)...)
	case *FunctionDeclaration:
		each(n.Body...)
	case *CallExpression:
		each(n.Receiver)
		each(exprs(n.Args...)...)
	case *ReturnStatement:
		each(n.Value)
	case *BinaryExpression:
		each(n.Left, n.Right)
	case *UnaryExpression:
		each(n.Operand)
	case *LogicalExpression:
		each(n.Left, n.Right)
	case *ComparisonExpression:
		each(n.Left, n.Right)
	case *BitwiseExpression:
		each(n.Left, n.Right)
	case *TernaryExpression:
		each(n.Condition, n.Then, n.Else)
	case *AssignmentExpression:
		each(n.Left, n.Right)
	case *Subscript:
		each(n.Array, n.Index)
	case *Attribute:
		each(n.Object)
	case *ArrayLiteral:
		each(exprs(n.Elements...)...)
	}
}

// InspectAll walks every node of nodes.
func InspectAll(nodes []Node, f func(Node) bool) {
	for _, n := range nodes {
		Inspect(n, f)
	}
}

func exprs(list ...Expr) []Node {
	nodes := make([]Node, 0, len(list))
	for _, e := range list {
		if e != nil {
			nodes = append(nodes, e)
		}
	}

	return nodes
}
