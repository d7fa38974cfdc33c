package ast

type BinaryOp string

const (
	BinaryAddition       BinaryOp = "+"
	BinarySubtraction    BinaryOp = "-"
	BinaryMultiplication BinaryOp = "*"
	// BinaryDivision truncates when both operands are integers, as in C and Java.
	BinaryDivision BinaryOp = "/"
	// BinaryTrueDivision always yields a floating point result (Python /).
	BinaryTrueDivision  BinaryOp = "true/"
	BinaryFloorDivision BinaryOp = "//"
	BinaryModulo        BinaryOp = "%"
	BinaryPower         BinaryOp = "**"
)

type UnaryOp string

const (
	UnaryNegative  UnaryOp = "-"
	UnaryPositive  UnaryOp = "+"
	UnaryIncrement UnaryOp = "++"
	UnaryDecrement UnaryOp = "--"
)

type LogicalOp string

const (
	LogicalAnd LogicalOp = "and"
	LogicalOr  LogicalOp = "or"
	LogicalNot LogicalOp = "not"
)

type ComparisonOp string

const (
	CompareEqual        ComparisonOp = "=="
	CompareNotEqual     ComparisonOp = "!="
	CompareLess         ComparisonOp = "<"
	CompareLessEqual    ComparisonOp = "<="
	CompareGreater      ComparisonOp = ">"
	CompareGreaterEqual ComparisonOp = ">="
)

// Negate returns the comparison that holds exactly when c does not.
func (c ComparisonOp) Negate() ComparisonOp {
	switch c {
	case CompareEqual:
		return CompareNotEqual
	case CompareNotEqual:
		return CompareEqual
	case CompareLess:
		return CompareGreaterEqual
	case CompareLessEqual:
		return CompareGreater
	case CompareGreater:
		return CompareLessEqual
	default:
		return CompareLess
	}
}

type BitwiseOp string

const (
	BitwiseAnd        BitwiseOp = "&"
	BitwiseOr         BitwiseOp = "|"
	BitwiseXor        BitwiseOp = "^"
	BitwiseShiftLeft  BitwiseOp = "<<"
	BitwiseShiftRight BitwiseOp = ">>"
	BitwiseNot        BitwiseOp = "~"
)

type AssignOp string

const (
	Assign            AssignOp = "="
	AssignAdd         AssignOp = "+="
	AssignSubtract    AssignOp = "-="
	AssignMultiply    AssignOp = "*="
	AssignDivide      AssignOp = "/="
	AssignTrueDivide  AssignOp = "true/="
	AssignFloorDivide AssignOp = "//="
	AssignModulo      AssignOp = "%="
	AssignPower       AssignOp = "**="
	AssignBitAnd      AssignOp = "&="
	AssignBitOr       AssignOp = "|="
	AssignBitXor      AssignOp = "^="
	AssignShiftLeft   AssignOp = "<<="
	AssignShiftRight  AssignOp = ">>="
)

var compoundArithmetic = map[AssignOp]BinaryOp{
	AssignAdd:         BinaryAddition,
	AssignSubtract:    BinarySubtraction,
	AssignMultiply:    BinaryMultiplication,
	AssignDivide:      BinaryDivision,
	AssignTrueDivide:  BinaryTrueDivision,
	AssignFloorDivide: BinaryFloorDivision,
	AssignModulo:      BinaryModulo,
	AssignPower:       BinaryPower,
}

var compoundBitwise = map[AssignOp]BitwiseOp{
	AssignBitAnd:     BitwiseAnd,
	AssignBitOr:      BitwiseOr,
	AssignBitXor:     BitwiseXor,
	AssignShiftLeft:  BitwiseShiftLeft,
	AssignShiftRight: BitwiseShiftRight,
}

// Expand rewrites a compound assignment `x op= y` as `x = x op y`.
func (a *AssignmentExpression) Expand() *AssignmentExpression {
	if op, ok := compoundArithmetic[a.Operator]; ok {
		return &AssignmentExpression{
			Left:     a.Left,
			Operator: Assign,
			Right:    &BinaryExpression{Operator: op, Left: a.Left, Right: a.Right},
		}
	}

	if op, ok := compoundBitwise[a.Operator]; ok {
		return &AssignmentExpression{
			Left:     a.Left,
			Operator: Assign,
			Right:    &BitwiseExpression{Operator: op, Left: a.Left, Right: a.Right},
		}
	}

	return a
}

// CompoundFor returns the compound assignment operator for an arithmetic
// operator, if one exists.
func CompoundFor(op BinaryOp) (AssignOp, bool) {
	for assign, binary := range compoundArithmetic {
		if binary == op {
			return assign, true
		}
	}

	return "", false
}

type LiteralType int

const (
	LiteralInt LiteralType = iota
	LiteralFloat
	LiteralBool
	LiteralString
	LiteralChar
	LiteralNull
)

func (t LiteralType) String() string {
	switch t {
	case LiteralInt:
		return "int"
	case LiteralFloat:
		return "float"
	case LiteralBool:
		return "bool"
	case LiteralString:
		return "string"
	case LiteralChar:
		return "char"
	case LiteralNull:
		return "null"
	}

	return "unknown"
}

// Not builds the condition that holds exactly when cond does not.
func Not(cond Expr) Expr {
	switch e := cond.(type) {
	case *LogicalExpression:
		if e.Operator == LogicalNot {
			return e.Left
		}
	case *ComparisonExpression:
		return &ComparisonExpression{Operator: e.Operator.Negate(), Left: e.Left, Right: e.Right}
	case *Literal:
		if e.Type == LiteralBool {
			if e.Value == "true" {
				return &Literal{Value: "false", Type: LiteralBool}
			}
			return &Literal{Value: "true", Type: LiteralBool}
		}
	}

	return &LogicalExpression{Operator: LogicalNot, Left: cond}
}
