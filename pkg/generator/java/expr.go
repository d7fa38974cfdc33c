package java

import (
	"math"
	"strconv"
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
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
		case ast.BinaryFloorDivision:
			return generator.Atom
		case ast.BinaryPower:
			return precUnary
		}
		return precMultiplicative
	case *ast.UnaryExpression:
		if e.Postfix {
			return precPostfix
		}
		return precUnary
	case *ast.CallExpression:
		// conversions render as casts
		switch e.FunctionName {
		case "int", "float", "chr", "ord":
			if e.Receiver == nil {
				return precUnary
			}
		}
	}

	return generator.Atom
}

func operand(e ast.Expr, prec int, right bool, ctx *core.Context) (string, error) {
	return generator.Operand(e, prec, right, rank, ctx)
}

// truth renders a condition. Java only tests booleans, so numbers are
// compared with zero and references with null.
func truth(e ast.Expr, prec int, ctx *core.Context) (string, error) {
	t := ctx.TypeOf(e)

	switch {
	case t.IsString() && ctx.Source == core.Python:
		s, err := operand(e, generator.Atom, false, ctx)
		if err != nil {
			return "", err
		}
		return "!" + s + ".isEmpty()", nil
	case t.IsNumeric():
		e = &ast.ComparisonExpression{Operator: ast.CompareNotEqual, Left: e, Right: &ast.Literal{Value: "0", Type: ast.LiteralInt}}
	case t.IsReference() || t.IsArray():
		e = &ast.ComparisonExpression{Operator: ast.CompareNotEqual, Left: e, Right: &ast.Literal{Type: ast.LiteralNull}}
	}

	return operand(e, prec, false, ctx)
}

func cast(typ string, e ast.Expr, ctx *core.Context) (string, error) {
	s, err := operand(e, precUnary, false, ctx)
	if err != nil {
		return "", err
	}

	return "(" + typ + ") " + s, nil
}

// coerce renders value for a variable of type t, adding the casts Java
// wants for narrowing conversions.
func coerce(t ast.Type, value ast.Expr, ctx *core.Context) (string, error) {
	v := ctx.TypeOf(value)
	scalar := !t.IsArray() && t.Pointer == 0

	switch {
	case scalar && t.Name == ast.TypeFloat && v.Name == ast.TypeDouble:
		if lit, ok := value.(*ast.Literal); ok && lit.Type == ast.LiteralFloat {
			return generator.Number(lit, generator.StyleJava) + "f", nil
		}
		return cast("float", value, ctx)
	case generator.IsChar(t) && v.IsIntegral() && !generator.IsChar(v):
		return cast("char", value, ctx)
	case scalar && (t.Name == ast.TypeInt || t.Name == ast.TypeShort) && (v.Name == ast.TypeLong || v.IsFloating()):
		return cast(string(t.Name), value, ctx)
	case scalar && t.Name == ast.TypeLong && v.IsFloating():
		return cast("long", value, ctx)
	case t.IsString() && generator.IsChar(v):
		s, err := ctx.Generate(value)
		if err != nil {
			return "", err
		}
		return "String.valueOf(" + s + ")", nil
	}

	return ctx.Generate(value)
}

func identifier(node ast.Node, _ *core.Context) (string, error) {
	return name(node.(*ast.Identifier).Name), nil
}

func literal(node ast.Node, _ *core.Context) (string, error) {
	n := node.(*ast.Literal)

	switch n.Type {
	case ast.LiteralInt:
		s := generator.Number(n, generator.StyleJava)
		if !strings.HasSuffix(s, "L") {
			if v, err := strconv.ParseInt(strings.ReplaceAll(n.Value, "0o", "0"), 0, 64); err == nil && (v > math.MaxInt32 || v < math.MinInt32) {
				s += "L"
			}
		}
		return s, nil
	case ast.LiteralFloat:
		return generator.Number(n, generator.StyleJava), nil
	case ast.LiteralBool:
		return n.Value, nil
	case ast.LiteralString:
		return generator.Quote(n.Value, '"', generator.StyleJava), nil
	case ast.LiteralChar:
		if n.Value == "" {
			return `'\0'`, nil
		}
		return generator.Quote(n.Value, '\'', generator.StyleJava), nil
	case ast.LiteralNull:
		return "null", nil
	}

	return "", generator.Fail(n, "unknown literal "+n.Type.String())
}

func binary(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.BinaryExpression)
	prec := rank(n)
	lt, rt := ctx.TypeOf(n.Left), ctx.TypeOf(n.Right)

	op := string(n.Operator)
	switch n.Operator {
	case ast.BinaryTrueDivision:
		op = "/"
		if lt.IsIntegral() && rt.IsIntegral() {
			left, err := cast("double", n.Left, ctx)
			if err != nil {
				return "", err
			}

			right, err := operand(n.Right, prec, true, ctx)
			if err != nil {
				return "", err
			}

			return left + " / " + right, nil
		}
	case ast.BinaryFloorDivision:
		if lt.IsIntegral() && rt.IsIntegral() {
			args, err := generator.Join([]ast.Expr{n.Left, n.Right}, ctx)
			if err != nil {
				return "", err
			}

			return "Math.floorDiv(" + args + ")", nil
		}

		div, err := binary(&ast.BinaryExpression{Operator: ast.BinaryDivision, Left: n.Left, Right: n.Right}, ctx)
		if err != nil {
			return "", err
		}

		return "Math.floor(" + div + ")", nil
	case ast.BinaryPower:
		args, err := generator.Join([]ast.Expr{n.Left, n.Right}, ctx)
		if err != nil {
			return "", err
		}

		if ctx.TypeOf(n).IsIntegral() {
			return "(int) Math.pow(" + args + ")", nil
		}
		return "Math.pow(" + args + ")", nil
	case ast.BinaryModulo:
		if generator.FloorsRemainder(n.Left, n.Right, ctx) {
			args, err := generator.Join([]ast.Expr{n.Left, n.Right}, ctx)
			if err != nil {
				return "", err
			}

			return "Math.floorMod(" + args + ")", nil
		}
	case ast.BinaryMultiplication:
		// Python's string repetition
		if lt.IsString() && rt.IsIntegral() {
			return repeat(n.Left, n.Right, ctx)
		}
		if rt.IsString() && lt.IsIntegral() {
			return repeat(n.Right, n.Left, ctx)
		}
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

func repeat(s, count ast.Expr, ctx *core.Context) (string, error) {
	recv, err := operand(s, generator.Atom, false, ctx)
	if err != nil {
		return "", err
	}

	n, err := ctx.Generate(count)
	if err != nil {
		return "", err
	}

	return recv + ".repeat(" + n + ")", nil
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

	// a character against a one character string literal
	if generator.IsChar(lt) {
		right = generator.CharLiteral(right)
	}
	if generator.IsChar(rt) {
		left = generator.CharLiteral(left)
	}

	if lt.IsString() && rt.IsString() && !isNull(left) && !isNull(right) {
		return compareStrings(n.Operator, left, right, ctx)
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

// compareStrings compares by value rather than identity.
func compareStrings(op ast.ComparisonOp, left, right ast.Expr, ctx *core.Context) (string, error) {
	recv, err := operand(left, generator.Atom, false, ctx)
	if err != nil {
		return "", err
	}

	arg, err := ctx.Generate(right)
	if err != nil {
		return "", err
	}

	switch op {
	case ast.CompareEqual:
		return recv + ".equals(" + arg + ")", nil
	case ast.CompareNotEqual:
		return "!" + recv + ".equals(" + arg + ")", nil
	}

	return recv + ".compareTo(" + arg + ") " + string(op) + " 0", nil
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

func assignment(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.AssignmentExpression)

	if sub, ok := n.Left.(*ast.Subscript); ok && ctx.TypeOf(sub.Array).IsString() {
		return "", generator.Fail(n, "assignment to a character of an immutable string")
	}

	switch {
	case n.Operator == ast.AssignPower, n.Operator == ast.AssignFloorDivide:
		return assignment(n.Expand(), ctx)
	case n.Operator == ast.AssignModulo && generator.FloorsRemainder(n.Left, n.Right, ctx):
		return assignment(n.Expand(), ctx)
	}

	left, err := ctx.Generate(n.Left)
	if err != nil {
		return "", err
	}

	if n.Operator == ast.Assign {
		value, err := coerce(ctx.TypeOf(n.Left), n.Right, ctx)
		if err != nil {
			return "", err
		}

		return left + " = " + value, nil
	}

	op := string(n.Operator)
	if n.Operator == ast.AssignTrueDivide {
		op = "/="
	}

	value, err := operand(n.Right, precAssign, true, ctx)
	if err != nil {
		return "", err
	}

	return left + " " + op + " " + value, nil
}

func call(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.CallExpression)

	if n.Receiver != nil {
		recv, err := operand(n.Receiver, generator.Atom, false, ctx)
		if err != nil {
			return "", err
		}

		args, err := generator.Join(n.Args, ctx)
		if err != nil {
			return "", err
		}

		return recv + "." + n.FunctionName + "(" + args + ")", nil
	}

	if ctx.IsBuiltin(n.FunctionName) {
		return builtin(n, ctx)
	}

	// arguments take the parameter types
	var params []ast.Type
	if sym := ctx.GetSymbol(n.FunctionName); sym != nil && len(sym.Params) == len(n.Args) {
		params = sym.Params
	}

	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		var err error
		if params != nil && params[i].Known() {
			args[i], err = coerce(params[i], a, ctx)
		} else {
			args[i], err = ctx.Generate(a)
		}
		if err != nil {
			return "", err
		}
	}

	return name(n.FunctionName) + "(" + strings.Join(args, ", ") + ")", nil
}

// builtin maps the canonical builtins onto Math, the wrapper classes and
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
		recv, err := operand(arg, generator.Atom, false, ctx)
		if err != nil {
			return "", err
		}

		if t.IsString() {
			return recv + ".length()", nil
		}
		return recv + ".length", nil
	case "abs", "sqrt":
		return "Math." + n.FunctionName + "(" + args[0] + ")", nil
	case "max", "min":
		// Math.max takes two arguments
		out := args[len(args)-1]
		for i := len(args) - 2; i >= 0; i-- {
			out = "Math." + n.FunctionName + "(" + args[i] + ", " + out + ")"
		}
		return out, nil
	case "int":
		switch {
		case t.IsString():
			return "Integer.parseInt(" + args[0] + ")", nil
		case generator.IsChar(t):
			return "Integer.parseInt(String.valueOf(" + args[0] + "))", nil
		case t.IsIntegral():
			return args[0], nil
		}
		return cast("int", arg, ctx)
	case "float":
		switch {
		case t.IsString():
			return "Double.parseDouble(" + args[0] + ")", nil
		case generator.IsChar(t):
			return "Double.parseDouble(String.valueOf(" + args[0] + "))", nil
		case t.IsFloating():
			return args[0], nil
		}
		return cast("double", arg, ctx)
	case "str":
		if t.IsArray() && !t.IsCharBuffer() {
			ctx.Require(core.FeatureArrays)
			return "Arrays.toString(" + args[0] + ")", nil
		}
		return "String.valueOf(" + args[0] + ")", nil
	case "chr":
		if generator.IsChar(t) {
			return args[0], nil
		}
		return cast("char", arg, ctx)
	case "ord":
		arg = generator.CharLiteral(arg)
		if t.IsString() {
			if _, ok := arg.(*ast.Literal); !ok {
				recv, err := operand(arg, generator.Atom, false, ctx)
				if err != nil {
					return "", err
				}
				return "(int) " + recv + ".charAt(0)", nil
			}
		}
		return cast("int", arg, ctx)
	}

	return "", generator.Unsupported(n.FunctionName, ctx)
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

	if ctx.TypeOf(n.Array).IsString() {
		return arr + ".charAt(" + idx + ")", nil
	}

	return arr + "[" + idx + "]", nil
}

func attribute(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.Attribute)

	if n.Attribute == "length" {
		return builtin(&ast.CallExpression{FunctionName: "len", Args: []ast.Expr{n.Object}}, ctx)
	}

	obj, err := operand(n.Object, generator.Atom, false, ctx)
	if err != nil {
		return "", err
	}

	return obj + "." + n.Attribute, nil
}

// arrayLiteral renders a literal outside a declaration, where Java needs
// the element type spelled out.
func arrayLiteral(node ast.Node, ctx *core.Context) (string, error) {
	n := node.(*ast.ArrayLiteral)

	t := ctx.TypeOf(n)
	elem := t
	elem.Dims = nil

	init, err := initializer(n.Elements, elem, ctx)
	if err != nil {
		return "", err
	}

	return "new " + typeName(t, ctx) + init, nil
}

// initializer renders the braces of an array initialiser; nested literals
// become nested braces.
func initializer(values []ast.Expr, elem ast.Type, ctx *core.Context) (string, error) {
	parts := make([]string, len(values))
	for i, v := range values {
		var err error
		if inner, ok := v.(*ast.ArrayLiteral); ok {
			parts[i], err = initializer(inner.Elements, elem, ctx)
		} else {
			parts[i], err = coerce(elem, v, ctx)
		}
		if err != nil {
			return "", err
		}
	}

	return "{" + strings.Join(parts, ", ") + "}", nil
}
