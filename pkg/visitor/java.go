package visitor

import (
	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/cst"
)

// Java lowers a compilation unit. The entry point is the static main method;
// the other members of its class become functions and globals.
type Java struct{}

func NewJava() *Java {
	return &Java{}
}

func (*Java) EntryPoint(root *cst.Node) (*cst.Node, error) {
	for _, class := range root.Children {
		if !class.Is(cst.KindClass) {
			continue
		}

		for _, member := range class.Children {
			if member.Is(cst.KindFunction) && member.Field("name").Text() == "main" && member.Field("type").Field("static") != nil {
				return member, nil
			}
		}
	}

	return nil, &core.EntryPointError{Position: root.Start, Msg: "no class with a static main method"}
}

func (*Java) Visit(root, entry *cst.Node, ctx *core.Context) (*ast.Program, error) {
	v := &clike{base: base{ctx: ctx}, java: true}
	prog := &ast.Program{}

	var main *cst.Node
	for _, class := range root.Children {
		for _, member := range class.Children {
			if member == entry {
				main = class
			}
		}
	}

	if main == nil {
		return nil, &core.EntryPointError{Position: entry.Start, Msg: "main method outside a class"}
	}

	ctx.CurrentClass = main.Field("name").Text()
	for _, member := range main.Children {
		if member.Is(cst.KindFunction) && member != entry {
			v.declareFunction(member)
		}
	}

	for _, child := range root.Children {
		switch {
		case child.Is(cst.KindComment):
			v.pending = append(v.pending, comment(child))
		case child == main:
			v.class(child, entry, prog)
		case child.Is(cst.KindPackage, cst.KindImport):
		default:
			prog.Globals = append(prog.Globals, v.flush(v.placeholder(child))...)
		}
	}

	prog.Main = append(prog.Main, v.flush()...)
	return prog, nil
}

func (v *clike) class(class, entry *cst.Node, prog *ast.Program) {
	for _, member := range class.Children {
		switch {
		case member.Is(cst.KindComment):
			v.pending = append(v.pending, comment(member))
		case member == entry:
			prog.Main = append(prog.Main, v.flush(v.mainBody(member)...)...)
		case member.Is(cst.KindFunction):
			fn := v.function(member)
			fn.Body = v.flush(fn.Body...)
			prog.Functions = append(prog.Functions, fn)
		case member.Is(cst.KindField):
			prog.Globals = append(prog.Globals, v.flush(v.statement(member)...)...)
		case member.Is(cst.KindPrototype):
			// abstract and native methods
		default:
			member := v.ctx.Unsupported(member.Start, "class member", member.Source(v.ctx.Input))
			prog.Globals = append(prog.Globals, v.flush(member)...)
		}
	}
}

func javaType(typ *cst.Node) ast.Type {
	if typ == nil {
		return ast.Named(ast.TypeUnknown)
	}

	t := ast.Type{Name: javaTypeName(typ.Text())}
	for _, child := range typ.Children {
		if child.Text() == "[]" {
			t.Dims = append(t.Dims, nil)
		}
	}

	return t
}

func javaTypeName(name string) ast.TypeName {
	switch name {
	case "int", "Integer", "byte", "Byte":
		return ast.TypeInt
	case "short", "Short":
		return ast.TypeShort
	case "long", "Long":
		return ast.TypeLong
	case "float", "Float":
		return ast.TypeFloat
	case "double", "Double":
		return ast.TypeDouble
	case "char", "Character":
		return ast.TypeChar
	case "boolean", "Boolean":
		return ast.TypeBool
	case "String", "java.lang.String":
		return ast.TypeString
	case "void":
		return ast.TypeVoid
	}

	return ast.TypeUnknown
}

// javaPrint recognises System.out.print, println, printf and format. A
// String.format call as the only argument of print or println is a
// formatted print.
func (v *clike) javaPrint(call *cst.Node) *ast.PrintStatement {
	fn := call.Field("function")
	if !fn.Is(cst.KindMember) || qualified(fn.Field("argument")) != "System.out" {
		return nil
	}

	args := call.Field("arguments").Children

	switch method := fn.Field("field").Text(); method {
	case "println", "print":
		p := &ast.PrintStatement{Newline: method == "println"}

		if len(args) == 1 && args[0].Is(cst.KindCall) && qualified(args[0].Field("function")) == "String.format" {
			inner := args[0].Field("arguments").Children
			if len(inner) == 0 || !inner[0].Is(cst.KindString) {
				v.bail(call, "String.format without a literal format")
			}

			p.Formatted = true
			p.Args = v.exprs(inner)

			return p
		}

		p.Args = v.exprs(args)
		return p
	case "printf", "format":
		if len(args) == 0 || !args[0].Is(cst.KindString) {
			v.bail(call, "printf without a literal format")
		}

		return &ast.PrintStatement{Args: v.exprs(args), Formatted: true}
	}

	v.bail(call, "System.out."+fn.Field("field").Text())
	return nil
}

// javaLibrary maps the Math, wrapper class and String methods onto
// builtins and operators. It returns nil for anything else.
func (v *clike) javaLibrary(call *cst.Node) ast.Expr {
	fn := call.Field("function")
	if !fn.Is(cst.KindMember) {
		return nil
	}

	method := fn.Field("field").Text()
	recv := fn.Field("argument")

	switch qualified(recv) + "." + method {
	case "Math.pow":
		args := v.args(call)
		if len(args) == 2 {
			return &ast.BinaryExpression{Operator: ast.BinaryPower, Left: args[0], Right: args[1]}
		}
	case "Math.floorDiv":
		args := v.args(call)
		if len(args) == 2 {
			return &ast.BinaryExpression{Operator: ast.BinaryFloorDivision, Left: args[0], Right: args[1]}
		}
	case "Math.sqrt":
		return builtin("sqrt", v.args(call)...)
	case "Math.abs":
		return builtin("abs", v.args(call)...)
	case "Math.max":
		return builtin("max", v.args(call)...)
	case "Math.min":
		return builtin("min", v.args(call)...)
	case "Integer.parseInt", "Long.parseLong":
		return builtin("int", v.args(call)...)
	case "Double.parseDouble", "Float.parseFloat":
		return builtin("float", v.args(call)...)
	case "String.valueOf", "Integer.toString", "Long.toString", "Double.toString",
		"Character.toString", "Boolean.toString", "Arrays.toString":
		return builtin("str", v.args(call)...)
	case "String.format":
		v.bail(call, "String.format outside a print")
	case "System.out.println", "System.out.print", "System.out.printf":
		v.bail(call, "output inside an expression")
	}

	switch args := call.Field("arguments").Children; {
	case method == "length" && len(args) == 0:
		return builtin("len", v.expr(recv))
	case method == "charAt" && len(args) == 1:
		return &ast.Subscript{Array: v.expr(recv), Index: v.expr(args[0])}
	case method == "equals" && len(args) == 1:
		return &ast.ComparisonExpression{Operator: ast.CompareEqual, Left: v.expr(recv), Right: v.expr(args[0])}
	}

	return nil
}
