// Package llvm lowers the integer and boolean subset of a program to
// textual LLVM IR. Statements outside the subset are dropped with a
// warning.
package llvm

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
	"go.crosslang.dev/pkg/lexer"
)

// Functions of the generated module that user code cannot take the name of.
var reserved = generator.Reserved("main", "printf")

type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (*Backend) Language() core.Language {
	return core.LLVM
}

// Generators is nil: the module is built as a whole rather than node by node.
func (*Backend) Generators() *core.GeneratorRegistry {
	return nil
}

func (*Backend) Assemble(p *ast.Program, ctx *core.Context) (string, error) {
	ctx.CurrentFunction = ""

	b := newBuilder()
	generator.DeclareFunctions(p.Functions, ctx)

	for _, g := range p.Globals {
		if err := b.global(g, ctx); err != nil {
			generator.Degrade(err, ctx)
		}
	}

	for _, fn := range p.Functions {
		if err := b.declare(fn, ctx); err != nil {
			generator.Degrade(err, ctx)
		}
	}

	for _, fn := range p.Functions {
		b.function(fn, ctx)
	}

	b.main(p.Main, ctx)

	return b.mod.String(), nil
}

// variable is the stack slot or global holding a named value.
type variable struct {
	ptr value.Value
	typ *types.IntType
}

// valueLookup maps names to variables. A lookup made with Inherit reads
// through to its parent.
type valueLookup struct {
	vals   map[string]*variable
	parent *valueLookup
}

func newValueLookup() *valueLookup {
	return &valueLookup{
		vals: make(map[string]*variable),
	}
}

func (l *valueLookup) Inherit() *valueLookup {
	child := newValueLookup()
	child.parent = l

	return child
}

func (l *valueLookup) Get(id string) (*variable, bool) {
	for scope := l; scope != nil; scope = scope.parent {
		if v, ok := scope.vals[id]; ok {
			return v, true
		}
	}

	return nil, false
}

func (l *valueLookup) Set(id string, v *variable) {
	l.vals[id] = v
}

type signature struct {
	fn     *ir.Func
	params []*types.IntType
	ret    types.Type
}

// loopTargets are the blocks continue and break jump to.
type loopTargets struct {
	next, done *ir.Block
}

type builder struct {
	mod *ir.Module

	fn    *ir.Func
	ret   types.Type
	entry *ir.Block
	block *ir.Block

	values  *valueLookup
	globals *valueLookup
	funcs   map[string]*signature
	loops   []loopTargets

	strings  map[string]constant.Constant
	builtins map[string]*ir.Func
	labels   int
}

func newBuilder() *builder {
	globals := newValueLookup()

	return &builder{
		mod:      ir.NewModule(),
		values:   globals,
		globals:  globals,
		funcs:    make(map[string]*signature),
		strings:  make(map[string]constant.Constant),
		builtins: make(map[string]*ir.Func),
	}
}

// intType maps a scalar type onto an LLVM integer type. Unknown types are
// taken as i32.
func intType(t ast.Type, what string, ctx *core.Context) (*types.IntType, error) {
	if t.IsArray() || t.Pointer > 0 {
		return nil, generator.Unsupported(fmt.Sprintf("%s of type %s", what, t), ctx)
	}

	switch t.Name {
	case ast.TypeInt, ast.TypeShort:
		return types.I32, nil
	case ast.TypeLong:
		return types.I64, nil
	case ast.TypeChar:
		return types.I8, nil
	case ast.TypeBool:
		return types.I1, nil
	case ast.TypeUnknown:
		ctx.Warnf("Approximation", lexer.Position{}, "unknown type of %s taken as i32", what)
		return types.I32, nil
	}

	return nil, generator.Unsupported(fmt.Sprintf("%s of type %s", what, t), ctx)
}

func zero(t *types.IntType) *constant.Int {
	return constant.NewInt(t, 0)
}

// newBlock adds a block with a label unique in the module.
func (b *builder) newBlock(name string) *ir.Block {
	b.labels++
	return b.fn.NewBlock(fmt.Sprintf("%s.%d", name, b.labels))
}

func (b *builder) enter(f *ir.Func, ret types.Type) {
	b.fn = f
	b.ret = ret
	b.entry = f.NewBlock("entry")
	b.block = b.entry
	b.loops = nil
	b.values = b.globals.Inherit()
}

// finish returns ret from the open block and closes every block left
// without a terminator.
func (b *builder) finish(ret value.Value) {
	if b.block.Term == nil {
		b.block.NewRet(ret)
	}

	for _, blk := range b.fn.Blocks {
		if blk.Term == nil {
			blk.NewUnreachable()
		}
	}
}

// slot allocates a variable in the entry block so that it dominates every
// use.
func (b *builder) slot(name string, typ *types.IntType) *variable {
	v := &variable{ptr: b.entry.NewAlloca(typ), typ: typ}
	b.values.Set(name, v)

	return v
}

// global defines a module level variable initialised with a constant.
func (b *builder) global(node ast.Node, ctx *core.Context) error {
	n, ok := node.(*ast.VariableDeclaration)
	if !ok {
		return generator.Unsupported("global "+node.Kind().String(), ctx)
	}

	t := n.Type
	if !t.Known() && n.Value != nil {
		t = ctx.TypeOf(n.Value)
	}

	typ, err := intType(t, n.Name, ctx)
	if err != nil {
		return err
	}

	init := zero(typ)
	if n.Value != nil {
		c, ok := constantOf(n.Value)
		if !ok {
			return generator.Fail(n, "global initialised with a non-constant value")
		}
		init = constant.NewInt(typ, c.X.Int64())
	}

	g := b.mod.NewGlobalDef(n.Name, init)
	g.Immutable = n.Const

	b.globals.Set(n.Name, &variable{ptr: g, typ: typ})
	generator.Declare(ctx, n.Name, t, n.Value)

	return nil
}

// constantOf folds literals and negated literals.
func constantOf(e ast.Expr) (*constant.Int, bool) {
	switch e := e.(type) {
	case *ast.Literal:
		c, err := literal(e)
		return c, err == nil
	case *ast.UnaryExpression:
		if e.Operator != ast.UnaryNegative {
			return nil, false
		}
		c, ok := constantOf(e.Operand)
		if !ok {
			return nil, false
		}
		return constant.NewInt(c.Typ, -c.X.Int64()), true
	}

	return nil, false
}

// declare adds the function of fn to the module so that calls may precede
// the definition.
func (b *builder) declare(fn *ast.FunctionDeclaration, ctx *core.Context) error {
	sig := &signature{ret: types.Void}

	if fn.ReturnType.Name != ast.TypeVoid {
		ret, err := intType(fn.ReturnType, "result of "+fn.Name, ctx)
		if err != nil {
			return err
		}
		sig.ret = ret
	}

	params := make([]*ir.Param, len(fn.Parameters))
	for i, p := range fn.Parameters {
		typ, err := intType(p.Type, p.Name, ctx)
		if err != nil {
			return err
		}

		sig.params = append(sig.params, typ)
		params[i] = ir.NewParam(p.Name, typ)
	}

	sig.fn = b.mod.NewFunc(generator.Rename(fn.Name, reserved), sig.ret, params...)
	b.funcs[fn.Name] = sig

	return nil
}

func (b *builder) function(fn *ast.FunctionDeclaration, ctx *core.Context) {
	sig, ok := b.funcs[fn.Name]
	if !ok {
		return
	}

	inner := generator.Function(fn, ctx)
	b.enter(sig.fn, sig.ret)

	for i, p := range fn.Parameters {
		v := b.slot(p.Name, sig.params[i])
		b.block.NewStore(sig.fn.Params[i], v.ptr)
	}

	b.body(fn.Body, inner)

	var ret value.Value
	if t, ok := sig.ret.(*types.IntType); ok {
		ret = zero(t)
	}
	b.finish(ret)
}

func (b *builder) main(body []ast.Node, ctx *core.Context) {
	b.enter(b.mod.NewFunc("main", types.I32), types.I32)
	b.body(body, ctx.Block())
	b.finish(zero(types.I32))
}
