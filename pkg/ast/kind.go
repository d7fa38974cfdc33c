package ast

type Kind int

const (
	KindVariableDeclaration Kind = iota
	KindPrintStatement
	KindComment
	KindConditionalStatement
	KindLoopStatement
	KindArrayDeclaration
	KindFunctionDeclaration
	KindCallExpression
	KindReturnStatement
	KindIncludeStatement
	KindBreakStatement
	KindContinueStatement
	KindPlaceholder
	KindBinaryExpression
	KindUnaryExpression
	KindLogicalExpression
	KindComparisonExpression
	KindBitwiseExpression
	KindTernaryExpression
	KindAssignmentExpression
	KindIdentifier
	KindLiteral
	KindSubscript
	KindAttribute
	KindArrayLiteral

	kindCount
)

var kindNames = [...]string{
	KindVariableDeclaration:  "VariableDeclaration",
	KindPrintStatement:       "PrintStatement",
	KindComment:              "Comment",
	KindConditionalStatement: "ConditionalStatement",
	KindLoopStatement:        "LoopStatement",
	KindArrayDeclaration:     "ArrayDeclaration",
	KindFunctionDeclaration:  "FunctionDeclaration",
	KindCallExpression:       "CallExpression",
	KindReturnStatement:      "ReturnStatement",
	KindIncludeStatement:     "IncludeStatement",
	KindBreakStatement:       "BreakStatement",
	KindContinueStatement:    "ContinueStatement",
	KindPlaceholder:          "Placeholder",
	KindBinaryExpression:     "BinaryExpression",
	KindUnaryExpression:      "UnaryExpression",
	KindLogicalExpression:    "LogicalExpression",
	KindComparisonExpression: "ComparisonExpression",
	KindBitwiseExpression:    "BitwiseExpression",
	KindTernaryExpression:    "TernaryExpression",
	KindAssignmentExpression: "AssignmentExpression",
	KindIdentifier:           "Identifier",
	KindLiteral:              "Literal",
	KindSubscript:            "Subscript",
	KindAttribute:            "Attribute",
	KindArrayLiteral:         "ArrayLiteral",
}

func (k Kind) String() string {
	if k >= 0 && k < kindCount {
		return kindNames[k]
	}

	return "Unknown"
}

// Kinds lists every node kind.
func Kinds() []Kind {
	kinds := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}

	return kinds
}

func (*VariableDeclaration) Kind() Kind  { return KindVariableDeclaration }
func (*PrintStatement) Kind() Kind       { return KindPrintStatement }
func (*Comment) Kind() Kind              { return KindComment }
func (*ConditionalStatement) Kind() Kind { return KindConditionalStatement }
func (*LoopStatement) Kind() Kind        { return KindLoopStatement }
func (*ArrayDeclaration) Kind() Kind     { return KindArrayDeclaration }
func (*FunctionDeclaration) Kind() Kind  { return KindFunctionDeclaration }
func (*CallExpression) Kind() Kind       { return KindCallExpression }
func (*ReturnStatement) Kind() Kind      { return KindReturnStatement }
func (*IncludeStatement) Kind() Kind     { return KindIncludeStatement }
func (*BreakStatement) Kind() Kind       { return KindBreakStatement }
func (*ContinueStatement) Kind() Kind    { return KindContinueStatement }
func (*Placeholder) Kind() Kind          { return KindPlaceholder }
func (*BinaryExpression) Kind() Kind     { return KindBinaryExpression }
func (*UnaryExpression) Kind() Kind      { return KindUnaryExpression }
func (*LogicalExpression) Kind() Kind    { return KindLogicalExpression }
func (*ComparisonExpression) Kind() Kind { return KindComparisonExpression }
func (*BitwiseExpression) Kind() Kind    { return KindBitwiseExpression }
func (*TernaryExpression) Kind() Kind    { return KindTernaryExpression }
func (*AssignmentExpression) Kind() Kind { return KindAssignmentExpression }
func (*Identifier) Kind() Kind           { return KindIdentifier }
func (*Literal) Kind() Kind              { return KindLiteral }
func (*Subscript) Kind() Kind            { return KindSubscript }
func (*Attribute) Kind() Kind            { return KindAttribute }
func (*ArrayLiteral) Kind() Kind         { return KindArrayLiteral }

func (*VariableDeclaration) node()  {}
func (*PrintStatement) node()       {}
func (*Comment) node()              {}
func (*ConditionalStatement) node() {}
func (*LoopStatement) node()        {}
func (*ArrayDeclaration) node()     {}
func (*FunctionDeclaration) node()  {}
func (*CallExpression) node()       {}
func (*ReturnStatement) node()      {}
func (*IncludeStatement) node()     {}
func (*BreakStatement) node()       {}
func (*ContinueStatement) node()    {}
func (*Placeholder) node()          {}
func (*BinaryExpression) node()     {}
func (*UnaryExpression) node()      {}
func (*LogicalExpression) node()    {}
func (*ComparisonExpression) node() {}
func (*BitwiseExpression) node()    {}
func (*TernaryExpression) node()    {}
func (*AssignmentExpression) node() {}
func (*Identifier) node()           {}
func (*Literal) node()              {}
func (*Subscript) node()            {}
func (*Attribute) node()            {}
func (*ArrayLiteral) node()         {}

func (*CallExpression) expr()       {}
func (*BinaryExpression) expr()     {}
func (*UnaryExpression) expr()      {}
func (*LogicalExpression) expr()    {}
func (*ComparisonExpression) expr() {}
func (*BitwiseExpression) expr()    {}
func (*TernaryExpression) expr()    {}
func (*AssignmentExpression) expr() {}
func (*Identifier) expr()           {}
func (*Literal) expr()              {}
func (*Subscript) expr()            {}
func (*Attribute) expr()            {}
func (*ArrayLiteral) expr()         {}
