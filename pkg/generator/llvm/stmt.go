package llvm

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/core"
	"go.crosslang.dev/pkg/generator"
)

// body lowers statements one after the other. A statement that cannot be
// lowered is left out with a warning, along with the code and blocks it
// emitted before failing.
func (b *builder) body(nodes []ast.Node, ctx *core.Context) {
	for _, n := range nodes {
		mark := b.checkpoint()
		if err := b.statement(n, ctx); err != nil {
			b.rollback(mark)
			generator.Degrade(err, ctx)
		}
	}
}

// checkpoint is the extent of the function being built.
type checkpoint struct {
	block  *ir.Block
	term   ir.Terminator
	insts  int
	blocks int
}

func (b *builder) checkpoint() checkpoint {
	return checkpoint{block: b.block, term: b.block.Term, insts: len(b.block.Insts), blocks: len(b.fn.Blocks)}
}

// rollback drops the blocks and instructions added since c and reopens its
// block. Slots allocated in the entry block meanwhile stay; an unused
// alloca is harmless.
func (b *builder) rollback(c checkpoint) {
	b.fn.Blocks = b.fn.Blocks[:c.blocks]
	c.block.Insts = c.block.Insts[:c.insts]
	c.block.Term = c.term
	b.block = c.block
}

// scoped lowers a nested block with its own names.
func (b *builder) scoped(nodes []ast.Node, ctx *core.Context) {
	prev := b.values
	b.values = prev.Inherit()
	defer func() { b.values = prev }()

	b.body(nodes, ctx.Block())
}

func (b *builder) statement(node ast.Node, ctx *core.Context) error {
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		return b.variableDecl(n, ctx)
	case *ast.PrintStatement:
		return b.print(n, ctx)
	case *ast.ConditionalStatement:
		return b.conditional(n, ctx)
	case *ast.LoopStatement:
		return b.loop(n, ctx)
	case *ast.ReturnStatement:
		return b.returnStatement(n, ctx)
	case *ast.BreakStatement:
		return b.jump(n, func(l loopTargets) *ir.Block { return l.done })
	case *ast.ContinueStatement:
		return b.jump(n, func(l loopTargets) *ir.Block { return l.next })
	case *ast.Comment, *ast.IncludeStatement, *ast.Placeholder:
		return nil
	case ast.Expr:
		_, err := b.expr(n, ctx)
		return err
	}

	return generator.Unsupported(node.Kind().String(), ctx)
}

func (b *builder) variableDecl(n *ast.VariableDeclaration, ctx *core.Context) error {
	t := n.Type
	if !t.Known() && n.Value != nil {
		t = ctx.TypeOf(n.Value)
	}

	typ, err := intType(t, n.Name, ctx)
	if err != nil {
		return err
	}

	var init value.Value = zero(typ)
	if n.Value != nil {
		v, _, err := b.integer(n.Value, ctx)
		if err != nil {
			return err
		}
		init = b.convert(v, typ)
	}

	v := b.slot(n.Name, typ)
	b.block.NewStore(init, v.ptr)
	generator.Declare(ctx, n.Name, t, n.Value)

	return nil
}

// terminate leaves the open block for a fresh one collecting whatever
// follows a jump.
func (b *builder) terminate() {
	b.block = b.newBlock("dead")
}

func (b *builder) jump(n ast.Node, target func(loopTargets) *ir.Block) error {
	if len(b.loops) == 0 {
		return generator.Fail(n, n.Kind().String()+" outside a loop")
	}

	b.block.NewBr(target(b.loops[len(b.loops)-1]))
	b.terminate()

	return nil
}

func (b *builder) returnStatement(n *ast.ReturnStatement, ctx *core.Context) error {
	t, ok := b.ret.(*types.IntType)
	if !ok {
		if n.Value != nil {
			return generator.Fail(n, "value returned from a void function")
		}

		b.block.NewRet(nil)
		b.terminate()
		return nil
	}

	var v value.Value = zero(t)
	if n.Value != nil {
		val, _, err := b.integer(n.Value, ctx)
		if err != nil {
			return err
		}
		v = b.convert(val, t)
	}

	b.block.NewRet(v)
	b.terminate()

	return nil
}

func (b *builder) conditional(n *ast.ConditionalStatement, ctx *core.Context) error {
	branches := append([]ast.ElifBranch{{Condition: n.Condition, Then: n.Then}}, n.Elifs...)
	end := b.newBlock("if.end")

	for _, br := range branches {
		cond, err := b.condition(br.Condition, ctx)
		if err != nil {
			return err
		}

		then := b.newBlock("if.then")
		next := b.newBlock("if.else")
		b.block.NewCondBr(cond, then, next)

		b.block = then
		b.scoped(br.Then, ctx)
		b.fallThrough(end)

		b.block = next
	}

	b.scoped(n.Else, ctx)
	b.fallThrough(end)
	b.block = end

	return nil
}

// fallThrough branches to next unless the open block already jumped away.
func (b *builder) fallThrough(next *ir.Block) {
	if b.block.Term == nil {
		b.block.NewBr(next)
	}
}

func (b *builder) loop(n *ast.LoopStatement, ctx *core.Context) error {
	if n.IsIteration() {
		return generator.Unsupported("iteration over a sequence", ctx)
	}

	if n.Loop == ast.LoopFor {
		return b.forLoop(n, ctx)
	}

	cond := b.newBlock("loop.cond")
	body := b.newBlock("loop.body")
	end := b.newBlock("loop.end")

	if n.Loop == ast.LoopDoWhile {
		b.block.NewBr(body)
	} else {
		b.block.NewBr(cond)
	}

	b.block = cond
	c, err := b.condition(n.Condition, ctx)
	if err != nil {
		return err
	}
	b.block.NewCondBr(c, body, end)

	b.block = body
	b.inLoop(loopTargets{next: cond, done: end}, n.Body, ctx)
	b.fallThrough(cond)

	b.block = end
	return nil
}

// forLoop keeps the init in a scope of its own and steps in a block that
// continue jumps to.
func (b *builder) forLoop(n *ast.LoopStatement, ctx *core.Context) error {
	prev := b.values
	b.values = prev.Inherit()
	defer func() { b.values = prev }()

	inner := ctx.Block()

	if n.Init != nil {
		if err := b.statement(n.Init, inner); err != nil {
			return err
		}
	}

	cond := b.newBlock("for.cond")
	body := b.newBlock("for.body")
	step := b.newBlock("for.step")
	end := b.newBlock("for.end")

	b.block.NewBr(cond)

	b.block = cond
	c, err := b.condition(n.Condition, inner)
	if err != nil {
		return err
	}
	b.block.NewCondBr(c, body, end)

	b.block = body
	b.inLoop(loopTargets{next: step, done: end}, n.Body, inner)
	b.fallThrough(step)

	b.block = step
	if n.Update != nil {
		if err := b.statement(n.Update, inner); err != nil {
			return err
		}
	}
	b.block.NewBr(cond)

	b.block = end
	return nil
}

func (b *builder) inLoop(targets loopTargets, body []ast.Node, ctx *core.Context) {
	b.loops = append(b.loops, targets)
	defer func() { b.loops = b.loops[:len(b.loops)-1] }()

	b.scoped(body, ctx)
}
