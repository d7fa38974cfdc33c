package llvm

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
)

var predicates = map[ast.ComparisonOp]enum.IPred{
	ast.CompareEqual:        enum.IPredEQ,
	ast.CompareNotEqual:     enum.IPredNE,
	ast.CompareLess:         enum.IPredSLT,
	ast.CompareLessEqual:    enum.IPredSLE,
	ast.CompareGreater:      enum.IPredSGT,
	ast.CompareGreaterEqual: enum.IPredSGE,
}

// literal returns the constant of an integer, boolean or character literal.
// Integers that do not fit in 32 bits become i64.
func literal(lit *ast.Literal) (*constant.Int, error) {
	switch lit.Type {
	case ast.LiteralInt:
		v, err := strconv.ParseInt(strings.ReplaceAll(lit.Value, "_", ""), 0, 64)
		if err != nil {
			return nil, generator.Fail(lit, "integer literal "+lit.Value+" out of range")
		}

		if strings.ContainsAny(lit.Suffix, "lL") || v > math.MaxInt32 || v < math.MinInt32 {
			return constant.NewInt(types.I64, v), nil
		}
		return constant.NewInt(types.I32, v), nil
	case ast.LiteralBool:
		return constant.NewBool(lit.Value == "true"), nil
	case ast.LiteralChar:
		r, size := utf8.DecodeRuneInString(lit.Value)
		if size == 0 {
			r = 0
		}
		return constant.NewInt(types.I8, int64(r)), nil
	}

	return nil, generator.Fail(lit, lit.Type.String()+" values are not lowered to LLVM")
}

// expr emits the instructions of e into the open block and returns its
// value.
func (b *builder) expr(e ast.Expr, ctx *core.Context) (value.Value, error) {
	switch e := e.(type) {
	case *ast.Literal:
		return literal(e)
	case *ast.Identifier:
		v, err := b.lookup(e)
		if err != nil {
			return nil, err
		}
		return b.block.NewLoad(v.typ, v.ptr), nil
	case *ast.BinaryExpression:
		return b.binary(e, ctx)
	case *ast.UnaryExpression:
		return b.unary(e, ctx)
	case *ast.LogicalExpression:
		return b.logical(e, ctx)
	case *ast.ComparisonExpression:
		return b.comparison(e, ctx)
	case *ast.BitwiseExpression:
		return b.bitwise(e, ctx)
	case *ast.TernaryExpression:
		return b.ternary(e, ctx)
	case *ast.AssignmentExpression:
		return b.assign(e, ctx)
	case *ast.CallExpression:
		return b.call(e, ctx)
	}

	return nil, generator.Unsupported(e.Kind().String(), ctx)
}

// integer is expr for operands, which must have an integer value.
func (b *builder) integer(e ast.Expr, ctx *core.Context) (value.Value, *types.IntType, error) {
	v, err := b.expr(e, ctx)
	if err != nil {
		return nil, nil, err
	}

	t, ok := v.Type().(*types.IntType)
	if !ok {
		return nil, nil, generator.Fail(e, "expression has no value")
	}

	return v, t, nil
}

func (b *builder) lookup(id *ast.Identifier) (*variable, error) {
	v, ok := b.values.Get(id.Name)
	if !ok {
		return nil, generator.Fail(id, "undefined name "+id.Name)
	}

	return v, nil
}

// convert changes the width of an integer; booleans widen without sign.
func (b *builder) convert(v value.Value, to *types.IntType) value.Value {
	from, ok := v.Type().(*types.IntType)
	if !ok || from.BitSize == to.BitSize {
		return v
	}

	if to.BitSize == 1 {
		return b.truth(v)
	}

	if c, ok := v.(*constant.Int); ok && from.BitSize < to.BitSize {
		return constant.NewInt(to, c.X.Int64())
	}

	switch {
	case from.BitSize == 1:
		return b.block.NewZExt(v, to)
	case from.BitSize < to.BitSize:
		return b.block.NewSExt(v, to)
	}

	return b.block.NewTrunc(v, to)
}

// truth turns an integer into a condition.
func (b *builder) truth(v value.Value) value.Value {
	t, ok := v.Type().(*types.IntType)
	if !ok || t.BitSize == 1 {
		return v
	}

	return b.block.NewICmp(enum.IPredNE, v, zero(t))
}

func (b *builder) condition(e ast.Expr, ctx *core.Context) (value.Value, error) {
	if e == nil {
		return constant.True, nil
	}

	v, _, err := b.integer(e, ctx)
	if err != nil {
		return nil, err
	}

	return b.truth(v), nil
}

// arithmetic widens both operands to the type arithmetic is done in: i64
// when either is, i32 otherwise.
func arithmetic(x, y *types.IntType) *types.IntType {
	if x.BitSize == 64 || y.BitSize == 64 {
		return types.I64
	}

	return types.I32
}

func (b *builder) operands(l, r ast.Expr, ctx *core.Context) (value.Value, value.Value, *types.IntType, error) {
	x, xt, err := b.integer(l, ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	y, yt, err := b.integer(r, ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	t := arithmetic(xt, yt)
	return b.convert(x, t), b.convert(y, t), t, nil
}

func (b *builder) binary(n *ast.BinaryExpression, ctx *core.Context) (value.Value, error) {
	if n.Operator == ast.BinaryTrueDivision {
		return nil, generator.Fail(n, "true division needs floating point")
	}

	if n.Operator == ast.BinaryPower {
		return b.power(n, ctx)
	}

	x, y, t, err := b.operands(n.Left, n.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case ast.BinaryAddition:
		return b.block.NewAdd(x, y), nil
	case ast.BinarySubtraction:
		return b.block.NewSub(x, y), nil
	case ast.BinaryMultiplication:
		return b.block.NewMul(x, y), nil
	case ast.BinaryDivision:
		return b.block.NewSDiv(x, y), nil
	case ast.BinaryFloorDivision:
		q, _ := b.floor(x, y, t)
		return q, nil
	case ast.BinaryModulo:
		if ctx.Source == core.Python {
			_, r := b.floor(x, y, t)
			return r, nil
		}
		return b.block.NewSRem(x, y), nil
	}

	return nil, generator.Unsupported("operator "+string(n.Operator), ctx)
}

// floor divides rounding towards negative infinity. The truncated quotient
// is one too big when the remainder is not zero and its sign differs from
// the divisor's.
func (b *builder) floor(x, y value.Value, t *types.IntType) (value.Value, value.Value) {
	q := b.block.NewSDiv(x, y)
	r := b.block.NewSRem(x, y)

	inexact := b.block.NewICmp(enum.IPredNE, r, zero(t))
	signs := b.block.NewICmp(enum.IPredSLT, b.block.NewXor(r, y), zero(t))
	adjust := b.block.NewAnd(inexact, signs)

	quotient := b.block.NewSub(q, b.block.NewZExt(adjust, t))
	remainder := b.block.NewAdd(r, b.block.NewSelect(adjust, y, zero(t)))

	return quotient, remainder
}

// power multiplies out a constant exponent.
func (b *builder) power(n *ast.BinaryExpression, ctx *core.Context) (value.Value, error) {
	exp, ok := generator.IntValue(n.Right)
	if !ok || exp < 0 || exp > 64 {
		return nil, generator.Fail(n, "power with an exponent that is not a small constant")
	}

	x, xt, err := b.integer(n.Left, ctx)
	if err != nil {
		return nil, err
	}

	t := arithmetic(xt, types.I32)
	x = b.convert(x, t)

	var result value.Value = constant.NewInt(t, 1)
	for i := int64(0); i < exp; i++ {
		if i == 0 {
			result = x
			continue
		}
		result = b.block.NewMul(result, x)
	}

	return result, nil
}

func (b *builder) unary(n *ast.UnaryExpression, ctx *core.Context) (value.Value, error) {
	switch n.Operator {
	case ast.UnaryIncrement, ast.UnaryDecrement:
		return b.step(n, ctx)
	}

	v, vt, err := b.integer(n.Operand, ctx)
	if err != nil {
		return nil, err
	}

	t := arithmetic(vt, types.I32)
	v = b.convert(v, t)

	if n.Operator == ast.UnaryNegative {
		return b.block.NewSub(zero(t), v), nil
	}

	return v, nil
}

// step increments or decrements a variable, yielding the old value for
// postfix operators.
func (b *builder) step(n *ast.UnaryExpression, ctx *core.Context) (value.Value, error) {
	id, ok := n.Operand.(*ast.Identifier)
	if !ok {
		return nil, generator.Unsupported(string(n.Operator)+" on "+n.Operand.Kind().String(), ctx)
	}

	v, err := b.lookup(id)
	if err != nil {
		return nil, err
	}

	old := b.block.NewLoad(v.typ, v.ptr)
	one := constant.NewInt(v.typ, 1)

	var updated value.Value
	if n.Operator == ast.UnaryIncrement {
		updated = b.block.NewAdd(old, one)
	} else {
		updated = b.block.NewSub(old, one)
	}
	b.block.NewStore(updated, v.ptr)

	if n.Postfix {
		return old, nil
	}

	return updated, nil
}

// logical short-circuits: the right operand is only evaluated in a block
// of its own.
func (b *builder) logical(n *ast.LogicalExpression, ctx *core.Context) (value.Value, error) {
	left, err := b.condition(n.Left, ctx)
	if err != nil {
		return nil, err
	}

	if n.Operator == ast.LogicalNot || n.Right == nil {
		return b.block.NewXor(left, constant.True), nil
	}

	start := b.block
	rhs := b.newBlock(string(n.Operator) + ".rhs")
	end := b.newBlock(string(n.Operator) + ".end")

	short := constant.False
	if n.Operator == ast.LogicalAnd {
		start.NewCondBr(left, rhs, end)
	} else {
		short = constant.True
		start.NewCondBr(left, end, rhs)
	}

	b.block = rhs
	right, err := b.condition(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	rhsEnd := b.block
	rhsEnd.NewBr(end)

	b.block = end
	return end.NewPhi(ir.NewIncoming(short, start), ir.NewIncoming(right, rhsEnd)), nil
}

func (b *builder) comparison(n *ast.ComparisonExpression, ctx *core.Context) (value.Value, error) {
	left, right := n.Left, n.Right
	if generator.IsChar(ctx.TypeOf(left)) {
		right = generator.CharLiteral(right)
	}
	if generator.IsChar(ctx.TypeOf(right)) {
		left = generator.CharLiteral(left)
	}

	x, y, _, err := b.operands(left, right, ctx)
	if err != nil {
		return nil, err
	}

	return b.block.NewICmp(predicates[n.Operator], x, y), nil
}

func (b *builder) bitwise(n *ast.BitwiseExpression, ctx *core.Context) (value.Value, error) {
	if n.IsUnary() {
		v, vt, err := b.integer(n.Left, ctx)
		if err != nil {
			return nil, err
		}

		t := arithmetic(vt, types.I32)
		return b.block.NewXor(b.convert(v, t), constant.NewInt(t, -1)), nil
	}

	x, y, _, err := b.operands(n.Left, n.Right, ctx)
	if err != nil {
		return nil, err
	}

	switch n.Operator {
	case ast.BitwiseAnd:
		return b.block.NewAnd(x, y), nil
	case ast.BitwiseOr:
		return b.block.NewOr(x, y), nil
	case ast.BitwiseXor:
		return b.block.NewXor(x, y), nil
	case ast.BitwiseShiftLeft:
		return b.block.NewShl(x, y), nil
	case ast.BitwiseShiftRight:
		return b.block.NewAShr(x, y), nil
	}

	return nil, generator.Unsupported("operator "+string(n.Operator), ctx)
}

// ternary evaluates each branch in its own block and merges them with a
// phi. Widening happens at the end of the branch that needs it.
func (b *builder) ternary(n *ast.TernaryExpression, ctx *core.Context) (value.Value, error) {
	cond, err := b.condition(n.Condition, ctx)
	if err != nil {
		return nil, err
	}

	then := b.newBlock("cond.then")
	els := b.newBlock("cond.else")
	end := b.newBlock("cond.end")
	b.block.NewCondBr(cond, then, els)

	b.block = then
	x, xt, err := b.integer(n.Then, ctx)
	if err != nil {
		return nil, err
	}
	thenEnd := b.block

	b.block = els
	y, yt, err := b.integer(n.Else, ctx)
	if err != nil {
		return nil, err
	}
	elseEnd := b.block

	t := xt
	if xt.BitSize != yt.BitSize {
		t = arithmetic(xt, yt)
	}

	b.block = thenEnd
	x = b.convert(x, t)
	thenEnd.NewBr(end)

	b.block = elseEnd
	y = b.convert(y, t)
	elseEnd.NewBr(end)

	b.block = end
	return end.NewPhi(ir.NewIncoming(x, thenEnd), ir.NewIncoming(y, elseEnd)), nil
}

func (b *builder) assign(n *ast.AssignmentExpression, ctx *core.Context) (value.Value, error) {
	n = n.Expand()

	id, ok := n.Left.(*ast.Identifier)
	if !ok {
		return nil, generator.Unsupported("assignment to "+n.Left.Kind().String(), ctx)
	}

	v, err := b.lookup(id)
	if err != nil {
		return nil, err
	}

	val, _, err := b.integer(n.Right, ctx)
	if err != nil {
		return nil, err
	}

	val = b.convert(val, v.typ)
	b.block.NewStore(val, v.ptr)

	return val, nil
}

func (b *builder) call(n *ast.CallExpression, ctx *core.Context) (value.Value, error) {
	if n.Receiver != nil {
		return nil, generator.Unsupported("method call "+n.FunctionName, ctx)
	}

	if ctx.IsBuiltin(n.FunctionName) {
		return b.builtin(n, ctx)
	}

	sig, ok := b.funcs[n.FunctionName]
	if !ok {
		return nil, generator.Fail(n, "call to unknown function "+n.FunctionName)
	}

	if len(n.Args) != len(sig.params) {
		return nil, generator.Fail(n, "wrong number of arguments to "+n.FunctionName)
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, _, err := b.integer(a, ctx)
		if err != nil {
			return nil, err
		}
		args[i] = b.convert(v, sig.params[i])
	}

	return b.block.NewCall(sig.fn, args...), nil
}
