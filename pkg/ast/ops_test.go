package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNot(t *testing.T) {
	n := &Identifier{Name: "n"}
	zero := &Literal{Value: "0", Type: LiteralInt}

	cmp := &ComparisonExpression{Operator: CompareGreater, Left: n, Right: zero}
	assert.Equal(t, &ComparisonExpression{Operator: CompareLessEqual, Left: n, Right: zero}, Not(cmp))

	done := &Identifier{Name: "done"}
	assert.Equal(t, done, Not(&LogicalExpression{Operator: LogicalNot, Left: done}))
	assert.Equal(t, &LogicalExpression{Operator: LogicalNot, Left: done}, Not(done))
	assert.Equal(t, &Literal{Value: "false", Type: LiteralBool}, Not(&Literal{Value: "true", Type: LiteralBool}))
}

func TestExpand(t *testing.T) {
	x := &Identifier{Name: "x"}
	two := &Literal{Value: "2", Type: LiteralInt}

	got := (&AssignmentExpression{Left: x, Operator: AssignPower, Right: two}).Expand()
	assert.Equal(t, &AssignmentExpression{
		Left:     x,
		Operator: Assign,
		Right:    &BinaryExpression{Operator: BinaryPower, Left: x, Right: two},
	}, got)

	got = (&AssignmentExpression{Left: x, Operator: AssignShiftLeft, Right: two}).Expand()
	assert.Equal(t, &BitwiseExpression{Operator: BitwiseShiftLeft, Left: x, Right: two}, got.Right)

	plain := &AssignmentExpression{Left: x, Operator: Assign, Right: two}
	assert.Same(t, plain, plain.Expand())
}
