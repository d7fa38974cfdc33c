package core

import (
	"errors"
	"testing"

	"go.crosslang.dev/pkg/ast"
	"go.crosslang.dev/pkg/lexer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type GeneratorMocker struct {
	out   string
	err   error
	calls int
}

func (g *GeneratorMocker) CanGenerate(node ast.Node) bool {
	return node.Kind() == ast.KindIdentifier
}

func (g *GeneratorMocker) Generate(node ast.Node, _ *Context) (string, error) {
	g.calls++
	return g.out, g.err
}

func intSym(name string) *Symbol {
	return &Symbol{Name: name, Type: ast.Named(ast.TypeInt)}
}

func TestSymbolTable(t *testing.T) {
	global := NewSymbolTable()
	global.Add(intSym("x"))

	child := global.Inherit()
	child.Add(&Symbol{Name: "x", Type: ast.Named(ast.TypeString)})
	child.Add(intSym("y"))

	assert.Equal(t, ast.TypeString, child.Get("x").Type.Name)
	assert.Equal(t, ast.TypeInt, global.Get("x").Type.Name)
	assert.True(t, child.Has("y"))
	assert.False(t, global.Has("y"))
	assert.True(t, child.Local("x"))
	assert.False(t, child.Inherit().Local("x"))
	assert.Equal(t, []string{"x", "y"}, child.Names())

	cp := child.Copy()
	cp.Add(intSym("z"))
	assert.False(t, child.Has("z"))
	assert.True(t, cp.Has("x"))

	global.Merge(cp)
	assert.True(t, global.Has("z"))
	assert.Equal(t, ast.TypeString, global.Get("x").Type.Name)
}

func TestContextNested(t *testing.T) {
	cases := []struct {
		mode      ScopeMode
		seesOuter bool
	}{
		{ScopeInherit, true},
		{ScopeIsolated, false},
	}

	for _, c := range cases {
		ctx := NewContext(C, Python, "")
		ctx.AddSymbol(intSym("outer"))

		nested := ctx.Nested(c.mode)
		nested.AddSymbol(intSym("inner"))
		nested.Warnf("Test", lexer.Position{}, "from %s", c.mode)
		nested.Require(FeatureMath)

		assert.Equal(t, c.seesOuter, nested.HasSymbol("outer"), c.mode.String())
		assert.False(t, ctx.HasSymbol("inner"), c.mode.String())
		assert.Len(t, ctx.Warnings(), 1, c.mode.String())
		assert.True(t, ctx.Requires(FeatureMath), c.mode.String())
		assert.False(t, ctx.Requires(FeatureBool), c.mode.String())
	}
}

func TestContextBlockUsesConfiguredScope(t *testing.T) {
	ctx := NewContext(C, Python, "")
	ctx.AddSymbol(intSym("n"))

	assert.True(t, ctx.Block().HasSymbol("n"))

	ctx.Scope = ScopeIsolated
	assert.False(t, ctx.Block().HasSymbol("n"))
}

func TestContextGenerate(t *testing.T) {
	mock := &GeneratorMocker{out: "x"}

	ctx := NewContext(Java, C, "")
	ctx.Generators = NewGeneratorRegistry(C).Register(ast.KindIdentifier, mock)

	out, err := ctx.Generate(&ast.Identifier{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", out)
	assert.Equal(t, 1, mock.calls)

	_, err = ctx.Generate(&ast.BreakStatement{})
	var unsupported *UnsupportedError
	assert.ErrorAs(t, err, &unsupported)

	mock.err = errors.New("boom")
	_, err = ctx.Generate(&ast.Identifier{Name: "x"})
	assert.EqualError(t, err, "boom")
}

func TestRegistryValidate(t *testing.T) {
	r := NewGeneratorRegistry(Python)
	for _, kind := range ast.Kinds() {
		if kind != ast.KindComment {
			r.Func(kind, func(ast.Node, *Context) (string, error) { return "", nil })
		}
	}

	assert.Equal(t, []ast.Kind{ast.KindComment}, r.Missing())
	assert.Error(t, r.Validate())

	r.Func(ast.KindComment, func(ast.Node, *Context) (string, error) { return "", nil })
	assert.NoError(t, r.Validate())
}

func TestTypeOf(t *testing.T) {
	ctx := NewContext(Java, Python, "")
	ctx.AddSymbol(intSym("n"))
	ctx.AddSymbol(&Symbol{Name: "d", Type: ast.Named(ast.TypeDouble)})
	ctx.AddSymbol(&Symbol{Name: "s", Type: ast.Named(ast.TypeString)})
	ctx.AddSymbol(&Symbol{Name: "xs", Type: ast.Type{Name: ast.TypeInt, Dims: []ast.Expr{nil}}, Kind: SymbolArray})
	ctx.AddSymbol(&Symbol{Name: "half", Type: ast.Named(ast.TypeFloat), Kind: SymbolFunction})

	n := &ast.Identifier{Name: "n"}
	d := &ast.Identifier{Name: "d"}
	s := &ast.Identifier{Name: "s"}

	cases := []struct {
		expr   ast.Expr
		expect ast.TypeName
	}{
		{&ast.Literal{Value: "1", Type: ast.LiteralInt}, ast.TypeInt},
		{&ast.Literal{Value: "1", Type: ast.LiteralInt, Suffix: "L"}, ast.TypeLong},
		{&ast.Literal{Value: "1.5", Type: ast.LiteralFloat, Suffix: "f"}, ast.TypeFloat},
		{&ast.Literal{Value: "a", Type: ast.LiteralChar}, ast.TypeChar},
		{&ast.BinaryExpression{Operator: ast.BinaryDivision, Left: n, Right: n}, ast.TypeInt},
		{&ast.BinaryExpression{Operator: ast.BinaryTrueDivision, Left: n, Right: n}, ast.TypeDouble},
		{&ast.BinaryExpression{Operator: ast.BinaryMultiplication, Left: n, Right: d}, ast.TypeDouble},
		{&ast.BinaryExpression{Operator: ast.BinaryAddition, Left: s, Right: n}, ast.TypeString},
		{&ast.BinaryExpression{Operator: ast.BinaryPower, Left: n, Right: n}, ast.TypeDouble},
		{&ast.ComparisonExpression{Operator: ast.CompareLess, Left: n, Right: d}, ast.TypeBool},
		{&ast.Subscript{Array: &ast.Identifier{Name: "xs"}, Index: n}, ast.TypeInt},
		{&ast.Subscript{Array: s, Index: n}, ast.TypeChar},
		{&ast.CallExpression{FunctionName: "len", Args: []ast.Expr{s}}, ast.TypeInt},
		{&ast.CallExpression{FunctionName: "max", Args: []ast.Expr{n, d}}, ast.TypeDouble},
		{&ast.CallExpression{FunctionName: "half", Args: []ast.Expr{n}}, ast.TypeFloat},
		{&ast.TernaryExpression{Condition: n, Then: &ast.Identifier{Name: "unknown"}, Else: s}, ast.TypeString},
		{&ast.Identifier{Name: "missing"}, ast.TypeUnknown},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, ctx.TypeOf(c.expr).Name, "%#v", c.expr)
	}

	ctx.Source = Python
	assert.Equal(t, ast.TypeInt, ctx.TypeOf(&ast.BinaryExpression{Operator: ast.BinaryPower, Left: n, Right: n}).Name)

	list := ctx.TypeOf(&ast.ArrayLiteral{Elements: []ast.Expr{&ast.Literal{Value: "1", Type: ast.LiteralInt}}})
	assert.Equal(t, "int[]", list.String())
}

func TestUserFunctionShadowsBuiltin(t *testing.T) {
	ctx := NewContext(Python, C, "")
	assert.True(t, ctx.IsBuiltin("max"))

	ctx.AddSymbol(&Symbol{Name: "max", Type: ast.Named(ast.TypeString), Kind: SymbolFunction})
	assert.False(t, ctx.IsBuiltin("max"))
	assert.Equal(t, ast.TypeString, ctx.TypeOf(&ast.CallExpression{FunctionName: "max"}).Name)
}

func TestLanguages(t *testing.T) {
	cases := []struct {
		name    string
		expect  Language
		display string
	}{
		{"py", Python, "Python"},
		{"Java", Java, "Java"},
		{" c ", C, "C"},
		{"ll", LLVM, "LLVM IR"},
	}

	for _, c := range cases {
		lang, err := ParseLanguage(c.name)
		require.NoError(t, err, c.name)
		assert.Equal(t, c.expect, lang)
		assert.Equal(t, c.display, lang.DisplayName())
	}

	_, err := ParseLanguage("cobol")
	assert.Error(t, err)

	assert.False(t, LLVM.IsSource())
	assert.True(t, LLVM.IsTarget())
}

func TestWarningString(t *testing.T) {
	w := WarningFrom(&UnsupportedError{Position: lexer.Position{Line: 3, Column: 5}, Construct: "class declaration"})
	assert.Equal(t, "unsupported at 3:5: unsupported class declaration", w.String())

	assert.Equal(t, "generation: bad", Warning{Kind: "Generation", Message: "bad"}.String())
}
