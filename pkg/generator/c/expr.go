package c

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

const (
	precAssign = iota + 1
	precTernary
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

func rank(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.AssignmentExpression:
		return precAssign
	case *ast.TernaryExpression:
		return precTernary
	case *ast.LogicalExpression:
		switch e.Operator {
		case ast.LogicalOr:
			return precOr
		case ast.LogicalAnd:
			return precAnd
		}
		return precUnary
	case *ast.ComparisonExpression:
		if e.Operator == ast.CompareEqual || e.Operator == ast.CompareNotEqual {
			return precEquality
		}
		return precRelational
	case *ast.BitwiseExpression:
		switch e.Operator {
		case ast.BitwiseOr:
			return precBitOr
		case ast.BitwiseXor:
			return precBitXor
		case ast.BitwiseAnd:
			return precBitAnd
		case ast.BitwiseShiftLeft, ast.BitwiseShiftRight:
			return precShift
		}
		return precUnary
	case *ast.BinaryExpression:
		switch e.Operator {
		case ast.BinaryAddition, ast.BinarySubtraction:
			return precAdditive
		case ast.BinaryFloorDivision, ast.BinaryPower:
			// casts or calls
			return precUnary
		}
		return precMultiplicative
	case *ast.UnaryExpression:
		if e.Postfix {
			return precPostfix
		}
		return precUnary
	case *ast.CallExpression:
		switch e.FunctionName {
		case "int", "float", "chr", "ord":
			if e.Receiver == nil {
				return precUnary
			}
		case "len":
			// sizeof(x) / sizeof(x[0])
			return precMultiplicative
		}
	}

	return generator.Atom
}

func operand(e ast.Expr, prec int, right bool, ctx *core.Context) (string, error) {
	return generator.Operand(e, prec, right, rank, ctx)
}

func cast(typ string, e ast.Expr, ctx *core.Context) (string, error) {
	s, err := operand(e, precUnary, false, ctx)
	if err != nil {
		return "", err
	}

	return "(" + typ + ") " + s, nil
}

// truth renders a condition. C tests numbers and pointers as they are; a
// Python string is true when it is not empty.
func truth(e ast.Expr, prec int, ctx *core.Context) (string, error) {
	if ctx.Source == core.Python && ctx.TypeOf(e).IsString() {
		s, err := operand(e, precPostfix, false, ctx)
		if err != nil {
			return "", err
		}

		return operandText(s+`[0] != '\0'`, precEquality, prec), nil
	}

	return operand(e, prec, false, ctx)
}

// operandText parenthesises an already rendered expression of rank r used
// where prec is expected.
func operandText(s string, r, prec int) string {
	if r < prec {
		return "(" + s + ")"
	}

	return s
}

func identifier(node ast.Node, _ *core.Context) (string, error) {
	return name(node.(*ast.Identifier).Name), nil
}

func literal(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.Literal)

	switch n.Type {
	case ast.LiteralInt, ast.LiteralFloat:
		return generator.Number(n, generator.StyleC), nil
	case ast.LiteralBool:
		ctx.Require(core.FeatureBool)
		return n.Value, nil
	case ast.LiteralString:
		return generator.Quote(n.Value, '"', generator.StyleC), nil
	case ast.LiteralChar:
		if n.Value == "" {
			return `'\0'`, nil
		}
		return generator.Quote(n.Value, '\'', generator.StyleC), nil
	case ast.LiteralNull:
		ctx.Require(core.FeatureStdlib)
		return "NULL", nil
	}

	return "", generator.Fail(n, "unknown literal "+n.Type.String())
}

func binary(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.BinaryExpression)
	prec := rank(n)
	lt, rt := ctx.TypeOf(n.Left), ctx.TypeOf(n.Right)

	if lt.IsString() || rt.IsString() {
		return "", generator.Fail(n, "string "+operation(n.Operator)+" in C")
	}

	op := string(n.Operator)
	switch n.Operator {
	case ast.BinaryTrueDivision:
		op = "/"
		if lt.IsIntegral() && rt.IsIntegral() {
			left, err := cast("double", n.Left, ctx)
			if err != nil {
				return "", err
			}

			right, err := operand(n.Right, precMultiplicative, true, ctx)
			if err != nil {
				return "", err
			}

			return left + " / " + right, nil
		}
	case ast.BinaryFloorDivision:
		ctx.Require(core.FeatureMath)

		if lt.IsIntegral() && rt.IsIntegral() {
			left, err := cast("double", n.Left, ctx)
			if err != nil {
				return "", err
			}

			right, err := operand(n.Right, precMultiplicative, true, ctx)
			if err != nil {
				return "", err
			}

			return "(int) floor(" + left + " / " + right + ")", nil
		}

		div, err := binary(&ast.BinaryExpression{Operator: ast.BinaryDivision, Left: n.Left, Right: n.Right}, ctx)
		if err != nil {
			return "", err
		}

		return "floor(" + div + ")", nil
	case ast.BinaryModulo:
		if generator.FloorsRemainder(n.Left, n.Right, ctx) {
			ctx.Warnf("Approximation", lexer.Position{}, "remainder of possibly negative operands truncates in C")
		}
	case ast.BinaryPower:
		ctx.Require(core.FeatureMath)

		args, err := generator.Join([]ast.Expr{n.Left, n.Right}, ctx)
		if err != nil {
			return "", err
		}

		if ctx.TypeOf(n).IsIntegral() {
			return "(int) pow(" + args + ")", nil
		}
		return "pow(" + args + ")", nil
	}

	left, err := operand(n.Left, prec, false, ctx)
	if err != nil {
		return "", err
	}

	right, err := operand(n.Right, prec, true, ctx)
	if err != nil {
		return "", err
	}

	return left + " " + op + " " + right, nil
}

func operation(op ast.BinaryOp) string {
	if op == ast.BinaryAddition {
		return "concatenation"
	}

	return "arithmetic"
}

func unary(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.UnaryExpression)

	if n.Postfix {
		s, err := operand(n.Operand, precPostfix, false, ctx)
		if err != nil {
			return "", err
		}

		return s + string(n.Operator), nil
	}

	s, err := operand(n.Operand, precUnary, false, ctx)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		s = "(" + s + ")"
	}

	return string(n.Operator) + s, nil
}

func logical(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.LogicalExpression)
	prec := rank(n)

	if n.Operator == ast.LogicalNot || n.Right == nil {
		s, err := truth(n.Left, precUnary, ctx)
		if err != nil {
			return "", err
		}

		return "!" + s, nil
	}

	left, err := truth(n.Left, prec, ctx)
	if err != nil {
		return "", err
	}

	right, err := truth(n.Right, prec+1, ctx)
	if err != nil {
		return "", err
	}

	op := "&&"
	if n.Operator == ast.LogicalOr {
		op = "||"
	}

	return left + " " + op + " " + right, nil
}

func comparison(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ComparisonExpression)
	prec := rank(n)

	left, right := n.Left, n.Right
	lt, rt := ctx.TypeOf(left), ctx.TypeOf(right)

	if generator.IsChar(lt) {
		right = generator.CharLiteral(right)
	}
	if generator.IsChar(rt) {
		left = generator.CharLiteral(left)
	}

	// strings compare by content
	if lt.IsString() && rt.IsString() && !isNull(left) && !isNull(right) {
		ctx.Require(core.FeatureString)

		args, err := generator.Join([]ast.Expr{left, right}, ctx)
		if err != nil {
			return "", err
		}

		return "strcmp(" + args + ") " + string(n.Operator) + " 0", nil
	}

	l, err := operand(left, prec, false, ctx)
	if err != nil {
		return "", err
	}

	r, err := operand(right, prec, true, ctx)
	if err != nil {
		return "", err
	}

	return l + " " + string(n.Operator) + " " + r, nil
}

func isNull(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Type == ast.LiteralNull
}

func bitwise(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.BitwiseExpression)
	prec := rank(n)

	if n.IsUnary() {
		s, err := operand(n.Left, prec, false, ctx)
		if err != nil {
			return "", err
		}

		return "~" + s, nil
	}

	left, err := operand(n.Left, prec, false, ctx)
	if err != nil {
		return "", err
	}

	right, err := operand(n.Right, prec, true, ctx)
	if err != nil {
		return "", err
	}

	return left + " " + string(n.Operator) + " " + right, nil
}

func ternary(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.TernaryExpression)

	cond, err := truth(n.Condition, precOr, ctx)
	if err != nil {
		return "", err
	}

	then, err := operand(n.Then, precTernary, false, ctx)
	if err != nil {
		return "", err
	}

	els, err := operand(n.Else, precTernary, false, ctx)
	if err != nil {
		return "", err
	}

	return cond + " ? " + then + " : " + els, nil
}

// assignment copies strings into character buffers and points string
// variables at their new value.
func assignment(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.AssignmentExpression)
	t := ctx.TypeOf(n.Left)

	switch {
	case n.Operator == ast.AssignPower, n.Operator == ast.AssignFloorDivide:
		return assignment(n.Expand(), ctx)
	case n.Operator == ast.AssignModulo && generator.FloorsRemainder(n.Left, n.Right, ctx):
		return assignment(n.Expand(), ctx)
	}

	if t.IsString() && (n.Operator == ast.Assign || n.Operator == ast.AssignAdd) {
		return stringAssignment(n, t, ctx)
	}

	left, err := ctx.Generate(n.Left)
	if err != nil {
		return "", err
	}

	op := string(n.Operator)
	if n.Operator == ast.AssignTrueDivide {
		op = "/="
	}

	value, err := operand(n.Right, precAssign, n.Operator != ast.Assign, ctx)
	if err != nil {
		return "", err
	}

	return left + " " + op + " " + value, nil
}

func stringAssignment(n *ast.AssignmentExpression, t ast.Type, ctx *core.Context) (string, error) {
	if _, ok := generator.Concat(n.Right, ctx); ok {
		return "", generator.Fail(n, "string concatenation in C")
	}

	args, err := generator.Join([]ast.Expr{n.Left, n.Right}, ctx)
	if err != nil {
		return "", err
	}

	switch {
	case t.IsCharBuffer() && n.Operator == ast.Assign:
		ctx.Require(core.FeatureString)
		return "strcpy(" + args + ")", nil
	case t.IsCharBuffer():
		ctx.Require(core.FeatureString)
		return "strcat(" + args + ")", nil
	case n.Operator == ast.AssignAdd:
		return "", generator.Fail(n, "appending to a string without a buffer")
	}

	left, err := ctx.Generate(n.Left)
	if err != nil {
		return "", err
	}

	value, err := ctx.Generate(n.Right)
	if err != nil {
		return "", err
	}

	return left + " = " + value, nil
}

func call(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.CallExpression)

	if n.Receiver != nil {
		return "", generator.Unsupported("method call "+n.FunctionName, ctx)
	}

	if ctx.IsBuiltin(n.FunctionName) {
		return builtin(n, ctx)
	}

	args, err := generator.Join(n.Args, ctx)
	if err != nil {
		return "", err
	}

	return name(n.FunctionName) + "(" + args + ")", nil
}

// builtin maps the canonical builtins onto the C library, operators and
// casts.
func builtin(n *ast.CallExpression, ctx *core.Context) (string, error) {
	args, err := generator.Exprs(n.Args, ctx)
	if err != nil {
		return "", err
	}

	if len(args) == 0 {
		return "", generator.Fail(n, n.FunctionName+" without arguments")
	}

	arg := n.Args[0]
	t := ctx.TypeOf(arg)

	switch n.FunctionName {
	case "len":
		if t.IsString() {
			ctx.Require(core.FeatureString)
			return "strlen(" + args[0] + ")", nil
		}

		recv, err := operand(arg, precPostfix, false, ctx)
		if err != nil {
			return "", err
		}
		return "sizeof(" + args[0] + ") / sizeof(" + recv + "[0])", nil
	case "abs":
		if t.IsFloating() {
			ctx.Require(core.FeatureMath)
			return "fabs(" + args[0] + ")", nil
		}
		ctx.Require(core.FeatureStdlib)
		return "abs(" + args[0] + ")", nil
	case "sqrt":
		ctx.Require(core.FeatureMath)
		return "sqrt(" + args[0] + ")", nil
	case "max", "min":
		return extremum(n, ctx)
	case "int":
		switch {
		case t.IsString():
			ctx.Require(core.FeatureStdlib)
			return "atoi(" + args[0] + ")", nil
		case generator.IsChar(t):
			return digit(arg, ctx)
		case t.IsIntegral():
			return args[0], nil
		}
		return cast("int", arg, ctx)
	case "float":
		switch {
		case t.IsString():
			ctx.Require(core.FeatureStdlib)
			return "atof(" + args[0] + ")", nil
		case generator.IsChar(t):
			d, err := digit(arg, ctx)
			if err != nil {
				return "", err
			}
			return "(double) " + d, nil
		case t.IsFloating():
			return args[0], nil
		}
		return cast("double", arg, ctx)
	case "str":
		return "", generator.Fail(n, "str outside a print has no C counterpart")
	case "chr":
		if generator.IsChar(t) {
			return args[0], nil
		}
		return cast("char", arg, ctx)
	case "ord":
		return cast("int", generator.CharLiteral(arg), ctx)
	}

	return "", generator.Unsupported(n.FunctionName, ctx)
}

// digit is the value of a digit character.
func digit(e ast.Expr, ctx *core.Context) (string, error) {
	s, err := operand(e, precAdditive, false, ctx)
	if err != nil {
		return "", err
	}

	return "(" + s + " - '0')", nil
}

// extremum folds max and min into conditional expressions.
func extremum(n *ast.CallExpression, ctx *core.Context) (string, error) {
	op := " > "
	if n.FunctionName == "min" {
		op = " < "
	}

	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		var err error
		if parts[i], err = operand(a, precShift, false, ctx); err != nil {
			return "", err
		}
	}

	out := parts[len(parts)-1]
	for i := len(parts) - 2; i >= 0; i-- {
		out = "(" + parts[i] + op + out + " ? " + parts[i] + " : " + out + ")"
	}

	return out, nil
}

func subscript(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.Subscript)

	arr, err := operand(n.Array, precPostfix, false, ctx)
	if err != nil {
		return "", err
	}

	idx, err := ctx.Generate(n.Index)
	if err != nil {
		return "", err
	}

	return arr + "[" + idx + "]", nil
}

func attribute(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.Attribute)

	if n.Attribute == "length" {
		return builtin(&ast.CallExpression{FunctionName: "len", Args: []ast.Expr{n.Object}}, ctx)
	}

	obj, err := operand(n.Object, precPostfix, false, ctx)
	if err != nil {
		return "", err
	}

	return obj + "." + n.Attribute, nil
}

// arrayLiteral renders an initialiser list.
func arrayLiteral(node ast.Node, ctx *core.Context) (string, error) {
	elems, err := generator.Join(node.(*ast.ArrayLiteral).Elements, ctx)
	if err != nil {
		return "", err
	}

	return "{" + elems + "}", nil
}
