// Package cst is the concrete syntax tree produced by the source parsers. The
// shape follows tree-sitter: every node has a kind, an ordered list of
// children, optional named fields and the source span it covers.
package cst

import (
	"fmt"
	"sort"
	"strings"

	"go.crosslang.dev/pkg/lexer"
)

type Kind string

const (
	// Containers
	KindTranslationUnit Kind = "translation_unit"
	KindModule          Kind = "module"
	KindClass           Kind = "class_declaration"
	KindBlock           Kind = "block"

	// Declarations
	KindFunction      Kind = "function_definition"
	KindPrototype     Kind = "function_prototype"
	KindParameter     Kind = "parameter"
	KindDeclaration   Kind = "declaration"
	KindDeclarator    Kind = "init_declarator"
	KindType          Kind = "type"
	KindField         Kind = "field_declaration"
	KindInclude       Kind = "preproc_include"
	KindDefine        Kind = "preproc_define"
	KindDirective     Kind = "preproc_directive"
	KindImport        Kind = "import_statement"
	KindPackage       Kind = "package_declaration"
	KindUnsupported   Kind = "unsupported"
	KindAnnotatedDecl Kind = "annotated_assignment"

	// Statements
	KindExpressionStatement Kind = "expression_statement"
	KindIf                  Kind = "if_statement"
	KindElif                Kind = "elif_clause"
	KindElse                Kind = "else_clause"
	KindFor                 Kind = "for_statement"
	KindForEach             Kind = "enhanced_for_statement"
	KindForIn               Kind = "for_in_statement"
	KindWhile               Kind = "while_statement"
	KindDoWhile             Kind = "do_statement"
	KindReturn              Kind = "return_statement"
	KindBreak               Kind = "break_statement"
	KindContinue            Kind = "continue_statement"
	KindPass                Kind = "pass_statement"
	KindComment             Kind = "comment"
	KindEmpty               Kind = "empty_statement"

	// Expressions
	KindAssignment    Kind = "assignment_expression"
	KindAugmented     Kind = "augmented_assignment"
	KindConditional   Kind = "conditional_expression"
	KindBinary        Kind = "binary_expression"
	KindBooleanOp     Kind = "boolean_operator"
	KindNot           Kind = "not_operator"
	KindComparison    Kind = "comparison_operator"
	KindUnary         Kind = "unary_expression"
	KindUpdate        Kind = "update_expression"
	KindCast          Kind = "cast_expression"
	KindSizeof        Kind = "sizeof_expression"
	KindCall          Kind = "call_expression"
	KindArguments     Kind = "argument_list"
	KindKeywordArg    Kind = "keyword_argument"
	KindSubscript     Kind = "subscript_expression"
	KindMember        Kind = "field_expression"
	KindParenthesized Kind = "parenthesized_expression"
	KindInitializer   Kind = "initializer_list"
	KindNewArray      Kind = "array_creation_expression"
	KindList          Kind = "list"
	KindTuple         Kind = "tuple"
	KindDict          Kind = "dictionary"
	KindLambda        Kind = "lambda"

	// Leaves
	KindIdentifier Kind = "identifier"
	KindNumber     Kind = "number_literal"
	KindString     Kind = "string_literal"
	KindChar       Kind = "char_literal"
	KindTrue       Kind = "true"
	KindFalse      Kind = "false"
	KindNull       Kind = "null"
	KindOperator   Kind = "operator"
)

type Node struct {
	Kind     Kind
	Token    lexer.Token
	Children []*Node
	Fields   map[string]*Node

	Start lexer.Position
	End   int
}

// Leaf wraps a single token.
func Leaf(kind Kind, tok lexer.Token) *Node {
	return &Node{
		Kind:  kind,
		Token: tok,
		Start: tok.Pos,
		End:   tok.End,
	}
}

func New(kind Kind, start lexer.Position) *Node {
	return &Node{
		Kind:  kind,
		Start: start,
		End:   start.Offset,
	}
}

// Text is the token value of a leaf.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}

	return n.Token.Value
}

// Source returns the original text the node spans.
func (n *Node) Source(src string) string {
	if n == nil || n.Start.Offset > n.End || n.End > len(src) {
		return ""
	}

	return src[n.Start.Offset:n.End]
}

func (n *Node) Field(name string) *Node {
	if n == nil || n.Fields == nil {
		return nil
	}

	return n.Fields[name]
}

func (n *Node) SetField(name string, child *Node) *Node {
	if child == nil {
		return n
	}

	if n.Fields == nil {
		n.Fields = make(map[string]*Node)
	}

	n.Fields[name] = child
	n.extend(child)

	return n
}

func (n *Node) Append(children ...*Node) *Node {
	for _, child := range children {
		if child == nil {
			continue
		}

		n.Children = append(n.Children, child)
		n.extend(child)
	}

	return n
}

// Close extends the node span to the end of tok.
func (n *Node) Close(tok lexer.Token) *Node {
	if tok.End > n.End {
		n.End = tok.End
	}

	return n
}

func (n *Node) extend(child *Node) {
	if child.End > n.End {
		n.End = child.End
	}

	if child.Start.Offset < n.Start.Offset {
		n.Start = child.Start
	}
}

func (n *Node) Is(kinds ...Kind) bool {
	if n == nil {
		return false
	}

	for _, k := range kinds {
		if n.Kind == k {
			return true
		}
	}

	return false
}

// String renders the tree as an S-expression, the way tree-sitter prints it.
// Leaves print their token text.
func (n *Node) String() string {
	var str strings.Builder
	n.write(&str)

	return str.String()
}

func (n *Node) write(str *strings.Builder) {
	if n == nil {
		str.WriteString("nil")
		return
	}

	if len(n.Children) == 0 && len(n.Fields) == 0 {
		fmt.Fprintf(str, "(%s %q)", n.Kind, n.Token.Value)
		return
	}

	str.WriteString("(")
	str.WriteString(string(n.Kind))

	if n.Token.Value != "" {
		fmt.Fprintf(str, " %q", n.Token.Value)
	}

	names := make([]string, 0, len(n.Fields))
	for name := range n.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		str.WriteString(" ")
		str.WriteString(name)
		str.WriteString(": ")
		n.Fields[name].write(str)
	}

	for _, child := range n.Children {
		str.WriteString(" ")
		child.write(str)
	}

	str.WriteString(")")
}
