// Package ast holds the language-agnostic tree shared by every visitor and
// generator. The node set is closed: every node implements Node through an
// unexported marker method, so only this package can add kinds.
package ast

type Node interface {
	Kind() Kind
	node()
}

// Expr is a Node that can appear in value position.
type Expr interface {
	Node
	expr()
}

type Program struct {
	Includes  []*IncludeStatement
	Globals   []Node
	Functions []*FunctionDeclaration
	Main      []Node
}

type VariableDeclaration struct {
	Name  string
	Type  Type
	Value Expr
	Const bool
}

type PrintStatement struct {
	Args []Expr
	// Formatted means Args[0] is a string literal holding a printf-style format.
	Formatted bool
	Newline   bool
	// Sep joins plain (non formatted) arguments.
	Sep string
}

type Comment struct {
	Text    string
	IsBlock bool
}

type ElifBranch struct {
	Condition Expr
	Then      []Node
}

type ConditionalStatement struct {
	Condition Expr
	Then      []Node
	Elifs     []ElifBranch
	Else      []Node
}

type LoopKind int

const (
	LoopFor LoopKind = iota
	LoopWhile
	LoopDoWhile
)

func (k LoopKind) String() string {
	switch k {
	case LoopFor:
		return "for"
	case LoopWhile:
		return "while"
	case LoopDoWhile:
		return "doWhile"
	}

	return "unknown"
}

// LoopStatement is either an iteration (LoopVar over Iterable) or a
// condition-driven loop with optional Init and Update.
type LoopStatement struct {
	Loop      LoopKind
	LoopVar   string
	Iterable  Expr
	Init      Node
	Condition Expr
	Update    Node
	Body      []Node
}

// IsIteration reports whether the loop walks an iterable.
func (l *LoopStatement) IsIteration() bool {
	return l.LoopVar != "" && l.Iterable != nil
}

type ArrayDeclaration struct {
	Name        string
	ElementType Type
	Values      []Expr
	Sizes       []Expr
}

// Rank is the number of dimensions, taken from the sizes or from the nesting of
// the literal values.
func (a *ArrayDeclaration) Rank() int {
	if len(a.Sizes) > 0 {
		return len(a.Sizes)
	}

	rank := 1
	values := a.Values
	for len(values) > 0 {
		inner, ok := values[0].(*ArrayLiteral)
		if !ok {
			break
		}

		rank++
		values = inner.Elements
	}

	return rank
}

type Parameter struct {
	Name string
	Type Type
}

type FunctionDeclaration struct {
	Name       string
	ReturnType Type
	Parameters []Parameter
	Body       []Node
}

type CallExpression struct {
	FunctionName string
	Receiver     Expr
	Args         []Expr
}

type ReturnStatement struct {
	Value Expr
}

type IncludeStatement struct {
	Header string
}

type BreakStatement struct{}

type ContinueStatement struct{}

// Placeholder stands in for a construct that could not be lowered.
type Placeholder struct {
	Text   string
	Reason string
}

type BinaryExpression struct {
	Operator BinaryOp
	Left     Expr
	Right    Expr
}

type UnaryExpression struct {
	Operator UnaryOp
	Operand  Expr
	Postfix  bool
}

// LogicalExpression with a nil Right is a negation.
type LogicalExpression struct {
	Operator LogicalOp
	Left     Expr
	Right    Expr
}

type ComparisonExpression struct {
	Operator ComparisonOp
	Left     Expr
	Right    Expr
}

// BitwiseExpression with a nil Right is the unary complement.
type BitwiseExpression struct {
	Operator BitwiseOp
	Left     Expr
	Right    Expr
}

// IsUnary tells the complement apart from the binary forms by arity.
func (b *BitwiseExpression) IsUnary() bool {
	return b.Right == nil
}

type TernaryExpression struct {
	Condition Expr
	Then      Expr
	Else      Expr
}

type AssignmentExpression struct {
	Left     Expr
	Operator AssignOp
	Right    Expr
}

type Identifier struct {
	Name string
}

type Literal struct {
	Value string
	Type  LiteralType
	// Suffix keeps numeric suffixes such as f or L.
	Suffix string
}

type Subscript struct {
	Array Expr
	Index Expr
}

type Attribute struct {
	Object    Expr
	Attribute string
}

type ArrayLiteral struct {
	Elements []Expr
}
