package llvm

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/format"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

type funcDefinition = func(mod *ir.Module) *ir.Func

// builtinFuncs are the library functions the module declares on first use.
var builtinFuncs = map[string]funcDefinition{
	"printf": declarePrintf,
}

func declarePrintf(mod *ir.Module) *ir.Func {
	printf := mod.NewFunc("printf", types.I32, ir.NewParam("format", types.I8Ptr))
	printf.Sig.Variadic = true

	return printf
}

func (b *builder) libraryFunc(name string) *ir.Func {
	if f, ok := b.builtins[name]; ok {
		return f
	}

	f := builtinFuncs[name](b.mod)
	b.builtins[name] = f

	return f
}

// stringPtr returns a pointer to the first byte of a NUL terminated string
// constant. Equal strings share one global.
func (b *builder) stringPtr(s string) constant.Constant {
	if p, ok := b.strings[s]; ok {
		return p
	}

	first := constant.NewInt(types.I64, 0)
	data := constant.NewCharArrayFromString(s + "\x00")

	g := b.mod.NewGlobalDef(fmt.Sprintf(".str.%d", len(b.strings)), data)
	g.Immutable = true
	g.Linkage = enum.LinkagePrivate

	p := constant.NewGetElementPtr(types.NewArray(uint64(len(s)+1), types.I8), g, first, first)
	b.strings[s] = p

	return p
}

func (b *builder) callPrintf(text string, args []value.Value) {
	b.block.NewCall(b.libraryFunc("printf"), append([]value.Value{b.stringPtr(text)}, args...)...)
}

func percent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

func (b *builder) print(n *ast.PrintStatement, ctx *core.Context) error {
	if n.Formatted {
		return b.printf(n, ctx)
	}

	var text strings.Builder
	var args []value.Value

	for i, a := range n.Args {
		if i > 0 {
			text.WriteString(percent(n.Sep))
		}

		parts, ok := generator.Concat(a, ctx)
		if !ok {
			parts = []ast.Expr{a}
		}

		for _, p := range parts {
			if err := b.field(p, &text, &args, ctx); err != nil {
				return err
			}
		}
	}

	if n.Newline {
		text.WriteString("\n")
	}

	b.callPrintf(text.String(), args)
	return nil
}

// field adds one printed value to the format, picking the conversion from
// its width.
func (b *builder) field(e ast.Expr, text *strings.Builder, args *[]value.Value, ctx *core.Context) error {
	if lit, ok := e.(*ast.Literal); ok && (lit.Type == ast.LiteralString || lit.Type == ast.LiteralChar) {
		text.WriteString(percent(lit.Value))
		return nil
	}

	if c, ok := e.(*ast.CallExpression); ok && c.FunctionName == "str" && c.Receiver == nil && len(c.Args) == 1 && ctx.IsBuiltin("str") {
		e = c.Args[0]
	}

	v, t, err := b.integer(e, ctx)
	if err != nil {
		return err
	}

	switch t.BitSize {
	case 1:
		text.WriteString("%s")
		*args = append(*args, b.boolText(v, ctx))
	case 8:
		text.WriteString("%c")
		*args = append(*args, b.convert(v, types.I32))
	case 64:
		text.WriteString("%ld")
		*args = append(*args, v)
	default:
		text.WriteString("%d")
		*args = append(*args, v)
	}

	return nil
}

// boolText selects the spelling of a boolean in the source language.
func (b *builder) boolText(v value.Value, ctx *core.Context) value.Value {
	yes, no := "true", "false"
	if ctx.Source == core.Python {
		yes, no = "True", "False"
	}

	return b.block.NewSelect(v, b.stringPtr(yes), b.stringPtr(no))
}

// printf keeps a literal format, converting the values to what each
// specifier reads.
func (b *builder) printf(n *ast.PrintStatement, ctx *core.Context) error {
	if len(n.Args) == 0 {
		return generator.Fail(n, "print without a format")
	}

	lit, ok := n.Args[0].(*ast.Literal)
	if !ok || lit.Type != ast.LiteralString {
		return generator.Fail(n, "print format is not a literal")
	}

	f := format.Parse(lit.Value)
	values := n.Args[1:]

	if f.Arity() != len(values) {
		ctx.Warnf("Approximation", lexer.Position{}, "format %q takes %d arguments, got %d", lit.Value, f.Arity(), len(values))
	}

	var args []value.Value
	next := 0
	for _, spec := range f.Specs() {
		for _, star := range []bool{spec.Width == "*", spec.Precision == "*"} {
			if star && next < len(values) {
				v, _, err := b.integer(values[next], ctx)
				if err != nil {
					return err
				}
				args = append(args, b.convert(v, types.I32))
				next++
			}
		}

		if next >= len(values) {
			break
		}

		v, err := b.specArg(spec, values[next], ctx)
		if err != nil {
			return err
		}
		args = append(args, v)
		next++
	}

	text := f.C()
	if n.Newline {
		text += "\n"
	}

	b.callPrintf(text, args)
	return nil
}

func (b *builder) specArg(spec *format.Spec, e ast.Expr, ctx *core.Context) (value.Value, error) {
	if s, ok := generator.StringLiteral(e); ok && spec.Verb == 's' {
		return b.stringPtr(s), nil
	}

	if spec.Floating() {
		return nil, generator.Fail(e, "floating point conversion %"+string(spec.Verb))
	}

	v, t, err := b.integer(e, ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case t.BitSize == 1 && (spec.Verb == 's' || spec.Verb == 'b'):
		spec.Verb = 's'
		return b.boolText(v, ctx), nil
	case spec.Verb == 's' || spec.Verb == 'b':
		spec.Verb = 'd'
		if t.BitSize == 64 {
			spec.Length = "l"
		}
	case t.BitSize == 64 && spec.Integer() && spec.Length == "":
		spec.Length = "l"
	}

	if t.BitSize == 64 {
		return v, nil
	}

	return b.convert(v, types.I32), nil
}

// builtin lowers the canonical builtins that stay within integers.
func (b *builder) builtin(n *ast.CallExpression, ctx *core.Context) (value.Value, error) {
	if len(n.Args) == 0 {
		return nil, generator.Fail(n, n.FunctionName+" without arguments")
	}

	switch n.FunctionName {
	case "abs":
		v, vt, err := b.integer(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}

		t := arithmetic(vt, types.I32)
		v = b.convert(v, t)
		negative := b.block.NewICmp(enum.IPredSLT, v, zero(t))
		return b.block.NewSelect(negative, b.block.NewSub(zero(t), v), v), nil
	case "max", "min":
		return b.extremum(n, ctx)
	case "int", "ord":
		v, _, err := b.integer(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		return b.convert(v, types.I32), nil
	case "chr":
		v, _, err := b.integer(n.Args[0], ctx)
		if err != nil {
			return nil, err
		}
		return b.convert(v, types.I8), nil
	}

	return nil, generator.Unsupported(n.FunctionName, ctx)
}

// extremum folds max and min into selects.
func (b *builder) extremum(n *ast.CallExpression, ctx *core.Context) (value.Value, error) {
	pred := enum.IPredSGT
	if n.FunctionName == "min" {
		pred = enum.IPredSLT
	}

	vals := make([]value.Value, len(n.Args))
	t := types.I32
	for i, a := range n.Args {
		v, vt, err := b.integer(a, ctx)
		if err != nil {
			return nil, err
		}

		vals[i] = v
		t = arithmetic(t, vt)
	}

	out := b.convert(vals[0], t)
	for _, v := range vals[1:] {
		v = b.convert(v, t)
		out = b.block.NewSelect(b.block.NewICmp(pred, out, v), out, v)
	}

	return out, nil
}
