package python

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
)

const (
	precWalrus = iota
	_
	precTernary
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPower
)

func rank(e ast.Expr) int {
	switch e := e.(type) {
	case *ast.TernaryExpression:
		return precTernary
	case *ast.LogicalExpression:
		switch e.Operator {
		case ast.LogicalOr:
			return precOr
		case ast.LogicalAnd:
			return precAnd
		}
		return precNot
	case *ast.ComparisonExpression:
		return precCompare
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
		case ast.BinaryPower:
			return precPower
		}
		return precMultiplicative
	case *ast.UnaryExpression:
		return precUnary
	}

	return generator.Atom
}

func operand(e ast.Expr, prec int, right bool, ctx *core.Context) (string, error) {
	return generator.Operand(e, prec, right, rank, ctx)
}

// numeric renders an arithmetic operand. Characters are strings in Python
// and take part in arithmetic through their code point.
func numeric(e ast.Expr, prec int, right bool, ctx *core.Context) (string, error) {
	if !generator.IsChar(ctx.TypeOf(e)) {
		return operand(e, prec, right, ctx)
	}

	s, err := ctx.Generate(e)
	if err != nil {
		return "", err
	}

	return "ord(" + s + ")", nil
}

func identifier(node ast.Node, _ *core.Context) (string, error) {
	return name(node.(*ast.Identifier).Name), nil
}

func literal(node ast.Node, _ *core.Context) (string, error) {
	n := node.(*ast.Literal)

	switch n.Type {
	case ast.LiteralInt, ast.LiteralFloat:
		return generator.Number(n, generator.StylePython), nil
	case ast.LiteralBool:
		if n.Value == "true" {
			return "True", nil
		}
		return "False", nil
	case ast.LiteralString:
		return generator.Quote(n.Value, '"', generator.StylePython), nil
	case ast.LiteralChar:
		return generator.Quote(n.Value, '\'', generator.StylePython), nil
	case ast.LiteralNull:
		return "None", nil
	}

	return "", generator.Fail(n, "unknown literal "+n.Type.String())
}

func binary(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.BinaryExpression)
	prec := rank(n)

	op := string(n.Operator)
	switch n.Operator {
	case ast.BinaryAddition:
		if ctx.TypeOf(n).IsString() {
			return concat(n, ctx)
		}
	case ast.BinaryDivision:
		op = "/"
		if ctx.IsIntegral(n.Left) && ctx.IsIntegral(n.Right) {
			op = "//"
		}
		if truncates(n.Left, n.Right, ctx) {
			return truncated(n, ctx)
		}
	case ast.BinaryModulo:
		if truncates(n.Left, n.Right, ctx) {
			return truncated(n, ctx)
		}
	case ast.BinaryTrueDivision:
		op = "/"
	case ast.BinaryPower:
		// ** binds to the right and tighter than a unary minus on its left
		left, err := numeric(n.Left, prec+1, false, ctx)
		if err != nil {
			return "", err
		}

		right, err := numeric(n.Right, prec, false, ctx)
		if err != nil {
			return "", err
		}

		return left + " ** " + right, nil
	}

	left, err := numeric(n.Left, prec, false, ctx)
	if err != nil {
		return "", err
	}

	right, err := numeric(n.Right, prec, true, ctx)
	if err != nil {
		return "", err
	}

	return left + " " + op + " " + right, nil
}

// truncates reports an integer division or remainder from C or Java that
// Python's flooring operators would get wrong. They agree when neither
// operand is negative.
func truncates(left, right ast.Expr, ctx *core.Context) bool {
	if ctx.Source == core.Python || !ctx.IsIntegral(left) || !ctx.IsIntegral(right) {
		return false
	}

	return !generator.NonNegative(left, ctx) || !generator.NonNegative(right, ctx)
}

// truncated rounds an integer quotient or remainder toward zero.
func truncated(n *ast.BinaryExpression, ctx *core.Context) (string, error) {
	if n.Operator == ast.BinaryModulo {
		left, err := numeric(n.Left, precTernary, false, ctx)
		if err != nil {
			return "", err
		}

		right, err := numeric(n.Right, precTernary, false, ctx)
		if err != nil {
			return "", err
		}

		ctx.Require(core.FeatureMath)
		return "int(math.fmod(" + left + ", " + right + "))", nil
	}

	left, err := numeric(n.Left, precMultiplicative, false, ctx)
	if err != nil {
		return "", err
	}

	right, err := numeric(n.Right, precMultiplicative, true, ctx)
	if err != nil {
		return "", err
	}

	return "int(" + left + " / " + right + ")", nil
}

// concat joins strings with +, converting the other operands with str.
func concat(n *ast.BinaryExpression, ctx *core.Context) (string, error) {
	left, err := text(n.Left, false, ctx)
	if err != nil {
		return "", err
	}

	right, err := text(n.Right, true, ctx)
	if err != nil {
		return "", err
	}

	return left + " + " + right, nil
}

func text(e ast.Expr, right bool, ctx *core.Context) (string, error) {
	t := ctx.TypeOf(e)
	if !t.Known() || t.IsString() || generator.IsChar(t) {
		return operand(e, precAdditive, right, ctx)
	}

	s, err := ctx.Generate(e)
	if err != nil {
		return "", err
	}

	return "str(" + s + ")", nil
}

func unary(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.UnaryExpression)

	if n.Operator == ast.UnaryIncrement || n.Operator == ast.UnaryDecrement {
		return "", generator.Fail(n, "increment inside an expression")
	}

	s, err := numeric(n.Operand, precUnary, false, ctx)
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
		s, err := operand(n.Left, prec, false, ctx)
		if err != nil {
			return "", err
		}

		return "not " + s, nil
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

func comparison(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ComparisonExpression)

	op := string(n.Operator)
	if isNull(n.Left) || isNull(n.Right) {
		switch n.Operator {
		case ast.CompareEqual:
			op = "is"
		case ast.CompareNotEqual:
			op = "is not"
		}
	}

	left, err := compared(n.Left, n.Right, ctx)
	if err != nil {
		return "", err
	}

	right, err := compared(n.Right, n.Left, ctx)
	if err != nil {
		return "", err
	}

	return left + " " + op + " " + right, nil
}

// compared renders one side of a comparison. Comparisons chain in Python,
// so a nested one is always parenthesised. A character compared with a
// number is compared by code point.
func compared(e, other ast.Expr, ctx *core.Context) (string, error) {
	t, o := ctx.TypeOf(e), ctx.TypeOf(other)
	if generator.IsChar(t) && o.IsIntegral() && !generator.IsChar(o) {
		return numeric(e, precCompare+1, false, ctx)
	}

	return operand(e, precCompare+1, false, ctx)
}

func isNull(e ast.Expr) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Type == ast.LiteralNull
}

func bitwise(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.BitwiseExpression)
	prec := rank(n)

	if n.IsUnary() {
		s, err := numeric(n.Left, prec, false, ctx)
		if err != nil {
			return "", err
		}

		return "~" + s, nil
	}

	left, err := numeric(n.Left, prec, false, ctx)
	if err != nil {
		return "", err
	}

	right, err := numeric(n.Right, prec, true, ctx)
	if err != nil {
		return "", err
	}

	return left + " " + string(n.Operator) + " " + right, nil
}

func ternary(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.TernaryExpression)

	then, err := operand(n.Then, precOr, false, ctx)
	if err != nil {
		return "", err
	}

	cond, err := operand(n.Condition, precOr, false, ctx)
	if err != nil {
		return "", err
	}

	els, err := operand(n.Else, precTernary, false, ctx)
	if err != nil {
		return "", err
	}

	return then + " if " + cond + " else " + els, nil
}

// walrus renders an assignment used as a value.
func walrus(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.AssignmentExpression)

	id, ok := n.Left.(*ast.Identifier)
	if !ok || n.Operator != ast.Assign {
		return "", generator.Fail(n, "assignment inside an expression")
	}

	value, err := operand(n.Right, precTernary, false, ctx)
	if err != nil {
		return "", err
	}

	return "(" + name(id.Name) + " := " + value + ")", nil
}

func call(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.CallExpression)

	args, err := generator.Exprs(n.Args, ctx)
	if err != nil {
		return "", err
	}

	if n.Receiver != nil {
		recv, err := operand(n.Receiver, generator.Atom, false, ctx)
		if err != nil {
			return "", err
		}

		return recv + "." + n.FunctionName + "(" + strings.Join(args, ", ") + ")", nil
	}

	if ctx.IsBuiltin(n.FunctionName) {
		return builtin(n, args, ctx), nil
	}

	return name(n.FunctionName) + "(" + strings.Join(args, ", ") + ")", nil
}

// builtin renders the canonical builtins, which Python mostly has under the
// same name.
func builtin(n *ast.CallExpression, args []string, ctx *core.Context) string {
	joined := strings.Join(args, ", ")

	var arg ast.Type
	if len(n.Args) == 1 {
		arg = ctx.TypeOf(n.Args[0])
	}

	switch n.FunctionName {
	case "sqrt":
		ctx.Require(core.FeatureMath)
		return "math.sqrt(" + joined + ")"
	case "chr":
		if generator.IsChar(arg) {
			return joined
		}
	case "ord":
		if arg.IsIntegral() && !generator.IsChar(arg) {
			return joined
		}
	}

	return n.FunctionName + "(" + joined + ")"
}

func subscript(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.Subscript)

	arr, err := operand(n.Array, generator.Atom, false, ctx)
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

	obj, err := operand(n.Object, generator.Atom, false, ctx)
	if err != nil {
		return "", err
	}

	if n.Attribute == "length" {
		return "len(" + obj + ")", nil
	}

	return obj + "." + n.Attribute, nil
}

func arrayLiteral(node ast.Node, ctx *core.Context) (string, error) {
	elems, err := generator.Join(node.(*ast.ArrayLiteral).Elements, ctx)
	if err != nil {
		return "", err
	}

	return "[" + elems + "]", nil
}
