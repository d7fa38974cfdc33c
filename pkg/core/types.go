package core

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
)

// Builtins are the canonical names visitors map library calls onto.
var Builtins = map[string]bool{
	"len":   true,
	"abs":   true,
	"sqrt":  true,
	"max":   true,
	"min":   true,
	"int":   true,
	"float": true,
	"str":   true,
	"chr":   true,
	"ord":   true,
}

// IsBuiltin reports whether a call to name refers to a canonical builtin
// rather than a user function of the same name.
func (c *Context) IsBuiltin(name string) bool {
	if !Builtins[name] {
		return false
	}

	sym := c.GetSymbol(name)
	return sym == nil || sym.Kind != SymbolFunction
}

// TypeOf infers the type of expr from literals, the symbol table and the
// operators involved. The result is unknown when nothing can be said.
func (c *Context) TypeOf(expr ast.Expr) ast.Type {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalType(e)
	case *ast.Identifier:
		if sym := c.GetSymbol(e.Name); sym != nil && sym.Kind != SymbolFunction {
			return sym.Type
		}
	case *ast.BinaryExpression:
		return c.binaryType(e)
	case *ast.UnaryExpression:
		return c.TypeOf(e.Operand)
	case *ast.LogicalExpression, *ast.ComparisonExpression:
		return ast.Named(ast.TypeBool)
	case *ast.BitwiseExpression:
		if e.IsUnary() {
			return c.TypeOf(e.Left)
		}
		return ast.Promote(c.TypeOf(e.Left), c.TypeOf(e.Right))
	case *ast.TernaryExpression:
		then := c.TypeOf(e.Then)
		if then.Known() {
			return then
		}
		return c.TypeOf(e.Else)
	case *ast.AssignmentExpression:
		return c.TypeOf(e.Left)
	case *ast.Subscript:
		return c.TypeOf(e.Array).Element()
	case *ast.Attribute:
		if e.Attribute == "length" {
			return ast.Named(ast.TypeInt)
		}
	case *ast.CallExpression:
		return c.callType(e)
	case *ast.ArrayLiteral:
		elem := ast.Named(ast.TypeUnknown)
		for _, el := range e.Elements {
			if t := c.TypeOf(el); t.Known() {
				elem = t
				break
			}
		}

		elem.Dims = append([]ast.Expr{nil}, elem.Dims...)
		return elem
	}

	return ast.Named(ast.TypeUnknown)
}

func literalType(lit *ast.Literal) ast.Type {
	switch lit.Type {
	case ast.LiteralInt:
		if strings.ContainsAny(lit.Suffix, "lL") {
			return ast.Named(ast.TypeLong)
		}
		return ast.Named(ast.TypeInt)
	case ast.LiteralFloat:
		if strings.ContainsAny(lit.Suffix, "fF") {
			return ast.Named(ast.TypeFloat)
		}
		return ast.Named(ast.TypeDouble)
	case ast.LiteralBool:
		return ast.Named(ast.TypeBool)
	case ast.LiteralString:
		return ast.Named(ast.TypeString)
	case ast.LiteralChar:
		return ast.Named(ast.TypeChar)
	}

	return ast.Named(ast.TypeUnknown)
}

func (c *Context) binaryType(e *ast.BinaryExpression) ast.Type {
	left, right := c.TypeOf(e.Left), c.TypeOf(e.Right)

	switch e.Operator {
	case ast.BinaryTrueDivision:
		return ast.Named(ast.TypeDouble)
	case ast.BinaryPower:
		if c.Source == Python && left.IsIntegral() && right.IsIntegral() {
			return ast.Named(ast.TypeInt)
		}
		return ast.Named(ast.TypeDouble)
	case ast.BinaryAddition:
		return ast.Promote(left, right)
	}

	if left.IsString() || right.IsString() {
		// only + is defined on strings
		return ast.Named(ast.TypeUnknown)
	}

	t := ast.Promote(left, right)
	if t.Name == ast.TypeChar {
		return ast.Named(ast.TypeInt)
	}

	return t
}

func (c *Context) callType(e *ast.CallExpression) ast.Type {
	if e.Receiver == nil && c.IsBuiltin(e.FunctionName) {
		switch e.FunctionName {
		case "len", "ord", "int":
			return ast.Named(ast.TypeInt)
		case "sqrt", "float":
			return ast.Named(ast.TypeDouble)
		case "str":
			return ast.Named(ast.TypeString)
		case "chr":
			return ast.Named(ast.TypeChar)
		case "abs":
			if len(e.Args) == 1 {
				return c.TypeOf(e.Args[0])
			}
		case "max", "min":
			t := ast.Named(ast.TypeUnknown)
			for _, arg := range e.Args {
				t = ast.Promote(t, c.TypeOf(arg))
			}
			return t
		}

		return ast.Named(ast.TypeUnknown)
	}

	if sym := c.GetSymbol(e.FunctionName); sym != nil && sym.Kind == SymbolFunction && e.Receiver == nil {
		return sym.Type
	}

	return ast.Named(ast.TypeUnknown)
}

// IsIntegral is a shorthand for TypeOf(expr).IsIntegral.
func (c *Context) IsIntegral(expr ast.Expr) bool {
	return c.TypeOf(expr).IsIntegral()
}
