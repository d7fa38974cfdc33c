package visitor

import (
	"strings"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/cst"
	"go.crosslang.dev/pkg/parser"
)

// C lowers C translation units. The entry point is the main function.
type C struct{}

func NewC() *C {
	return &C{}
}

func (*C) EntryPoint(root *cst.Node) (*cst.Node, error) {
	for _, child := range root.Children {
		if child.Is(cst.KindFunction) && child.Field("name").Text() == "main" {
			return child, nil
		}
	}

	return nil, &core.EntryPointError{Position: root.Start, Msg: "no main function"}
}

func (*C) Visit(root, entry *cst.Node, ctx *core.Context) (*ast.Program, error) {
	v := &clike{base: base{ctx: ctx}}
	prog := &ast.Program{}

	for _, child := range root.Children {
		if child.Is(cst.KindFunction, cst.KindPrototype) {
			v.declareFunction(child)
		}
	}

	for _, child := range root.Children {
		switch {
		case child.Is(cst.KindComment):
			v.pending = append(v.pending, comment(child))
		case child.Is(cst.KindInclude):
			prog.Includes = append(prog.Includes, include(child))
		case child == entry:
			prog.Main = v.flush(v.mainBody(child)...)
		case child.Is(cst.KindFunction):
			fn := v.function(child)
			fn.Body = v.flush(fn.Body...)
			prog.Functions = append(prog.Functions, fn)
		case child.Is(cst.KindPrototype):
		default:
			prog.Globals = append(prog.Globals, v.flush(v.statement(child)...)...)
		}
	}

	prog.Main = append(prog.Main, v.flush()...)
	return prog, nil
}

var intTypeWords = map[string]bool{
	"int": true, "signed": true, "unsigned": true, "size_t": true, "ssize_t": true, "ptrdiff_t": true,
	"int8_t": true, "int16_t": true, "int32_t": true, "int64_t": true,
	"uint8_t": true, "uint16_t": true, "uint32_t": true, "uint64_t": true,
}

// cType resolves a C type node, with the pointer stars of declarator. A
// pointer to char is a string.
func cType(typ, declarator *cst.Node) ast.Type {
	if typ == nil {
		return ast.Named(ast.TypeUnknown)
	}

	t := ast.Type{Name: cTypeName(typ.Text())}

	for _, child := range typ.Children {
		switch child.Text() {
		case "*":
			t.Pointer++
		case "[]":
			t.Dims = append(t.Dims, nil)
		}
	}

	if pointer := declarator.Field("pointer"); pointer != nil {
		t.Pointer += len(pointer.Text())
	}

	if t.Name == ast.TypeChar && t.Pointer > 0 {
		t.Name = ast.TypeString
		t.Pointer--
	}

	return t
}

func cTypeName(name string) ast.TypeName {
	words := strings.Fields(name)
	has := func(word string) bool {
		for _, w := range words {
			if w == word {
				return true
			}
		}
		return false
	}

	switch {
	case has("char"):
		return ast.TypeChar
	case has("double"):
		return ast.TypeDouble
	case has("float"):
		return ast.TypeFloat
	case has("short"):
		return ast.TypeShort
	case has("long"):
		return ast.TypeLong
	case has("bool") || has("_Bool"):
		return ast.TypeBool
	case has("void"):
		return ast.TypeVoid
	}

	for _, w := range words {
		if !intTypeWords[w] {
			return ast.TypeUnknown
		}
	}

	return ast.TypeInt
}

// include keeps the header name; quoted local headers keep their quotes.
func include(n *cst.Node) *ast.IncludeStatement {
	header := strings.TrimSpace(directiveArgument(n.Text(), "include"))
	header = strings.TrimSuffix(strings.TrimPrefix(header, "<"), ">")

	return &ast.IncludeStatement{Header: header}
}

func directiveArgument(text, name string) string {
	text = strings.TrimSpace(strings.TrimPrefix(text, "#"))
	return strings.TrimSpace(strings.TrimPrefix(text, name))
}

// define lowers an object-like macro to a constant.
func (v *clike) define(n *cst.Node) ast.Node {
	text := directiveArgument(n.Text(), "define")

	end := strings.IndexAny(text, " \t(")
	if end < 0 {
		v.bail(n, "macro without a value")
	}

	if text[end] == '(' {
		v.bail(n, "function-like macro")
	}

	name, value := text[:end], strings.TrimSpace(text[end:])
	expr := v.macroValue(n, value)

	decl := &ast.VariableDeclaration{
		Name:  name,
		Type:  v.ctx.TypeOf(expr),
		Value: expr,
		Const: true,
	}
	v.ctx.AddSymbol(&core.Symbol{Name: name, Type: decl.Type, Value: expr, Kind: core.SymbolConstant})

	return decl
}

// macroValue parses the replacement text of a macro as an expression.
func (v *clike) macroValue(n *cst.Node, value string) ast.Expr {
	root, err := parser.NewC().Parse("void f() { " + value + "; }")
	if err != nil {
		v.bail(n, "macro value")
	}

	body := root.Children[0].Field("body")
	if len(body.Children) != 1 || !body.Children[0].Is(cst.KindExpressionStatement) || len(body.Children[0].Children) != 1 {
		v.bail(n, "macro value")
	}

	return v.expr(body.Children[0].Children[0])
}

func (v *clike) cPrint(call *cst.Node) *ast.PrintStatement {
	fn := call.Field("function")
	if !fn.Is(cst.KindIdentifier) || v.ctx.HasSymbol(fn.Text()) {
		return nil
	}

	args := call.Field("arguments").Children

	switch fn.Text() {
	case "printf":
		if len(args) == 0 || !args[0].Is(cst.KindString) {
			v.bail(call, "printf without a literal format")
		}

		return &ast.PrintStatement{Args: v.exprs(args), Formatted: true}
	case "puts":
		if len(args) != 1 {
			v.bail(call, "puts call")
		}

		return &ast.PrintStatement{Args: v.exprs(args), Newline: true}
	case "putchar":
		if len(args) != 1 {
			v.bail(call, "putchar call")
		}

		arg := v.expr(args[0])
		if v.ctx.TypeOf(arg).Name != ast.TypeChar {
			arg = builtin("chr", arg)
		}

		return &ast.PrintStatement{Args: []ast.Expr{arg}}
	}

	return nil
}

// cLibrary maps calls into the C standard library onto builtins and
// operators. It returns nil for anything else.
func (v *clike) cLibrary(call *cst.Node) ast.Expr {
	fn := call.Field("function")
	if !fn.Is(cst.KindIdentifier) || v.ctx.HasSymbol(fn.Text()) {
		return nil
	}

	name := fn.Text()
	switch name {
	case "printf", "puts", "putchar":
		v.bail(call, "output inside an expression")
	case "scanf", "getchar", "gets", "fgets":
		v.bail(call, "input")
	case "malloc", "calloc", "realloc", "free":
		v.bail(call, "manual memory management")
	}

	args := v.args(call)

	switch name {
	case "pow":
		if len(args) == 2 {
			return &ast.BinaryExpression{Operator: ast.BinaryPower, Left: args[0], Right: args[1]}
		}
	case "sqrt":
		return builtin("sqrt", args...)
	case "abs", "labs", "fabs":
		return builtin("abs", args...)
	case "fmax", "fmin":
		return builtin(name[1:], args...)
	case "strlen":
		return builtin("len", args...)
	case "atoi", "atol":
		return builtin("int", args...)
	case "atof":
		return builtin("float", args...)
	}

	return nil
}

// arrayLength recognises sizeof(a) / sizeof(a[0]) and sizeof(a) /
// sizeof(T).
func (v *clike) arrayLength(n *cst.Node) (ast.Expr, bool) {
	left, right := n.Field("left"), n.Field("right")
	if v.java || n.Field("operator").Text() != "/" || !left.Is(cst.KindSizeof) || !right.Is(cst.KindSizeof) {
		return nil, false
	}

	arr := unparen(left.Field("value"))
	if !arr.Is(cst.KindIdentifier) {
		return nil, false
	}

	sym := v.ctx.GetSymbol(arr.Text())
	if sym == nil || !sym.Type.IsArray() {
		return nil, false
	}

	return builtin("len", &ast.Identifier{Name: arr.Text()}), true
}

func unparen(n *cst.Node) *cst.Node {
	for n.Is(cst.KindParenthesized) {
		n = n.Children[0]
	}

	return n
}
