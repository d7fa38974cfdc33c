// Package visitor lowers the concrete syntax trees of the source languages
// into the shared AST. There is one visitor per source language; C and Java
// share the statement and expression lowering of the C family.
package visitor

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/cst"
	"go.crosslang.dev/pkg/lexer"
)

// base holds the state every visitor needs while walking one tree.
type base struct {
	ctx *core.Context

	// Comments waiting for the next top level declaration.
	pending []ast.Node
}

// bail abandons the statement being lowered. The statement becomes a
// placeholder; see guard.
func (b *base) bail(n *cst.Node, construct string) {
	panic(&core.UnsupportedError{Position: n.Start, Construct: construct})
}

// guard turns a bailout inside a statement into a placeholder for the whole
// statement. It must be deferred.
func (b *base) guard(n *cst.Node, nodes *[]ast.Node) {
	r := recover()
	if r == nil {
		return
	}

	err, ok := r.(*core.UnsupportedError)
	if !ok {
		panic(r)
	}

	*nodes = []ast.Node{b.ctx.Unsupported(err.Position, err.Construct, n.Source(b.ctx.Input))}
}

func (b *base) placeholder(n *cst.Node) *ast.Placeholder {
	return b.ctx.Unsupported(n.Start, construct(n), n.Source(b.ctx.Input))
}

// within runs fn with ctx swapped for a nested context.
func (b *base) within(ctx *core.Context, fn func()) {
	saved := b.ctx
	b.ctx = ctx
	defer func() { b.ctx = saved }()

	fn()
}

// flush returns the pending comments followed by nodes.
func (b *base) flush(nodes ...ast.Node) []ast.Node {
	out := append(b.pending, nodes...)
	b.pending = nil

	return out
}

func comment(n *cst.Node) *ast.Comment {
	text := n.Text()
	if n.Token.Typ == lexer.TokenBlockComment || strings.Contains(text, "\n") {
		return &ast.Comment{Text: blockText(text), IsBlock: true}
	}

	return &ast.Comment{Text: strings.TrimSpace(text)}
}

// blockText strips the decoration of a block comment: leading stars and the
// blank first and last lines.
func blockText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "*/") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
		}
		lines[i] = line
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}

// construct names an opaque node for warnings.
func construct(n *cst.Node) string {
	switch n.Kind {
	case cst.KindDict:
		return "dictionary"
	case cst.KindLambda:
		return "lambda"
	case cst.KindImport:
		return "import"
	case cst.KindDirective:
		return "preprocessor directive"
	case cst.KindPackage:
		return "package declaration"
	case cst.KindClass:
		return "class declaration"
	}

	switch word := n.Token.Value; word {
	case "class", "interface", "enum", "struct", "union", "typedef", "record":
		return word + " declaration"
	case "slice":
		return "slice"
	case ":=":
		return "assignment expression"
	case "new":
		return "object creation"
	case "*", "**":
		return "unpacking"
	case "[":
		return "list comprehension"
	case "(":
		return "generator expression"
	case "@":
		return "decorated definition"
	case "":
		return string(n.Kind)
	default:
		return word + " statement"
	}
}

// literal classifies a literal leaf by its lexical shape.
func literal(n *cst.Node) *ast.Literal {
	switch n.Kind {
	case cst.KindNumber:
		return number(n.Text())
	case cst.KindString:
		text, _ := unquote(n.Text())
		return &ast.Literal{Value: text, Type: ast.LiteralString}
	case cst.KindChar:
		text, _ := unquote(n.Text())
		return &ast.Literal{Value: text, Type: ast.LiteralChar}
	case cst.KindTrue:
		return &ast.Literal{Value: "true", Type: ast.LiteralBool}
	case cst.KindFalse:
		return &ast.Literal{Value: "false", Type: ast.LiteralBool}
	case cst.KindNull:
		return &ast.Literal{Value: "null", Type: ast.LiteralNull}
	}

	return nil
}

// number splits a numeric literal into value and suffix. Octal literals
// written with a leading zero are normalised to the 0o form.
func number(text string) *ast.Literal {
	text = strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(text)

	suffixes := "uUlLfFdD"
	hex := strings.HasPrefix(lower, "0x")
	if hex {
		suffixes = "uUlL"
	}

	value := strings.TrimRight(text, suffixes)
	lit := &ast.Literal{Value: value, Suffix: text[len(value):], Type: ast.LiteralInt}

	switch {
	case hex || strings.HasPrefix(lower, "0b") || strings.HasPrefix(lower, "0o"):
	case strings.ContainsAny(value, ".eE") || strings.ContainsAny(lit.Suffix, "fFdD"):
		lit.Type = ast.LiteralFloat
	case len(value) > 1 && value[0] == '0':
		digits := strings.TrimLeft(value, "0")
		if digits == "" {
			lit.Value = "0"
		} else {
			lit.Value = "0o" + digits
		}
	}

	return lit
}

// unquote removes the quotes of a string or character token and decodes its
// escape sequences. A Python prefix such as f or r is returned separately;
// raw strings are not decoded.
func unquote(raw string) (text, prefix string) {
	i := strings.IndexAny(raw, `"'`)
	if i < 0 {
		return raw, ""
	}
	prefix, raw = raw[:i], raw[i:]

	quote := 1
	if len(raw) >= 6 && (strings.HasPrefix(raw, `"""`) || strings.HasPrefix(raw, `'''`)) {
		quote = 3
	}

	if len(raw) < 2*quote {
		return "", prefix
	}
	body := raw[quote : len(raw)-quote]

	if strings.ContainsAny(prefix, "rR") {
		return body, prefix
	}

	return decode(body), prefix
}

func decode(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var str strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			str.WriteByte(c)
			continue
		}

		i++
		switch e := s[i]; e {
		case 'n':
			str.WriteByte('\n')
		case 't':
			str.WriteByte('\t')
		case 'r':
			str.WriteByte('\r')
		case 'a':
			str.WriteByte('\a')
		case 'b':
			str.WriteByte('\b')
		case 'f':
			str.WriteByte('\f')
		case 'v':
			str.WriteByte('\v')
		case '\\', '\'', '"', '?':
			str.WriteByte(e)
		case '\n':
			// line continuation
		case 'x', 'u', 'U':
			width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[e]
			j := i + 1
			for j < len(s) && j-i-1 < width && isHex(s[j]) {
				j++
			}

			code, err := strconv.ParseUint(s[i+1:j], 16, 32)
			if err != nil || !utf8.ValidRune(rune(code)) {
				str.WriteByte('\\')
				str.WriteByte(e)
				continue
			}

			str.WriteRune(rune(code))
			i = j - 1
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j-i < 3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}

			code, _ := strconv.ParseUint(s[i:j], 8, 32)
			str.WriteRune(rune(code))
			i = j - 1
		default:
			str.WriteByte('\\')
			str.WriteByte(e)
		}
	}

	return str.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// builtin builds a call to one of the canonical builtins.
func builtin(name string, args ...ast.Expr) *ast.CallExpression {
	return &ast.CallExpression{FunctionName: name, Args: args}
}

func intLiteral(n int) *ast.Literal {
	return &ast.Literal{Value: strconv.Itoa(n), Type: ast.LiteralInt}
}

func arrayType(elem ast.Type, rank int) ast.Type {
	t := elem
	t.Dims = make([]ast.Expr, rank)

	return t
}

// containsContinue reports a continue that belongs to the loop owning body,
// ignoring the ones of nested loops.
func containsContinue(body []ast.Node) bool {
	for _, node := range body {
		switch n := node.(type) {
		case *ast.ContinueStatement:
			return true
		case *ast.ConditionalStatement:
			if containsContinue(n.Then) || containsContinue(n.Else) {
				return true
			}
			for _, elif := range n.Elifs {
				if containsContinue(elif.Then) {
					return true
				}
			}
		}
	}

	return false
}

var comparisonOperators = map[string]ast.ComparisonOp{
	"==": ast.CompareEqual,
	"!=": ast.CompareNotEqual,
	"<":  ast.CompareLess,
	"<=": ast.CompareLessEqual,
	">":  ast.CompareGreater,
	">=": ast.CompareGreaterEqual,
}

var bitwiseOperators = map[string]ast.BitwiseOp{
	"&":  ast.BitwiseAnd,
	"|":  ast.BitwiseOr,
	"^":  ast.BitwiseXor,
	"<<": ast.BitwiseShiftLeft,
	">>": ast.BitwiseShiftRight,
}
