package generator

import (
	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
)

// Concat splits a string concatenation into its parts, in order. Additions
// that happen before the first string operand stay whole, since they are
// numeric. It reports false when e is not a string concatenation.
func Concat(e ast.Expr, ctx *core.Context) ([]ast.Expr, bool) {
	bin, ok := e.(*ast.BinaryExpression)
	if !ok || bin.Operator != ast.BinaryAddition || !ctx.TypeOf(bin).IsString() {
		return nil, false
	}

	var parts []ast.Expr
	if left, ok := Concat(bin.Left, ctx); ok {
		parts = left
	} else {
		parts = []ast.Expr{bin.Left}
	}

	return append(parts, bin.Right), true
}

// StringLiteral returns the text of a string literal.
func StringLiteral(e ast.Expr) (string, bool) {
	lit, ok := e.(*ast.Literal)
	if !ok || lit.Type != ast.LiteralString {
		return "", false
	}

	return lit.Value, true
}

// CharLiteral turns a one character string literal into a char literal,
// as used by ord.
func CharLiteral(e ast.Expr) ast.Expr {
	if text, ok := StringLiteral(e); ok && len([]rune(text)) == 1 {
		return &ast.Literal{Value: text, Type: ast.LiteralChar}
	}

	return e
}
